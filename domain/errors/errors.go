package errors

import (
	"errors"
	"fmt"
)

// ================= 业务领域错误定义 =================
// 所有业务逻辑相关的错误统一在此定义，避免跨包重复定义
// 调用方一律使用 errors.Is 判断类别

// ErrNotFound 引用的实体（父实体、语言、内容等）不存在
var ErrNotFound = errors.New("not found")

// ErrConstraintViolation 写入会破坏内容存储不变量（A–C）或请求参数非法
var ErrConstraintViolation = errors.New("constraint violation")

// ErrCapabilityFailure 外部能力（联网检索、翻译、审核、语音合成、对象存储）调用失败或超时
var ErrCapabilityFailure = errors.New("capability failure")

// ErrModerationRejected 翻译结果多次未通过审核，已降级为原文（非致命，仅记录）
var ErrModerationRejected = errors.New("moderation rejected")

// ErrNoContent 没有可以合成语音或可以落库的内容
var ErrNoContent = errors.New("no content")

// ErrConflict 删除仍被引用的实体
var ErrConflict = errors.New("conflict")

// ========== 带上下文的错误类型 ==========

// NotFoundError 指明哪个实体不存在
type NotFoundError struct {
	Entity string
	ID     any
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %v not found", e.Entity, e.ID)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// NotFound 构造 NotFoundError
func NotFound(entity string, id any) error {
	return &NotFoundError{Entity: entity, ID: id}
}

// ConstraintViolationError 指明哪条不变量被破坏
type ConstraintViolationError struct {
	Invariant string
	Reason    string
}

func (e *ConstraintViolationError) Error() string {
	return fmt.Sprintf("constraint violation (invariant %s): %s", e.Invariant, e.Reason)
}

func (e *ConstraintViolationError) Is(target error) bool {
	return target == ErrConstraintViolation
}

// Violation 构造 ConstraintViolationError
func Violation(invariant, reason string) error {
	return &ConstraintViolationError{Invariant: invariant, Reason: reason}
}

// CapabilityError 包装外部能力返回的底层错误
type CapabilityError struct {
	Capability string
	Err        error
}

func (e *CapabilityError) Error() string {
	return fmt.Sprintf("%s capability failed: %v", e.Capability, e.Err)
}

func (e *CapabilityError) Unwrap() error {
	return e.Err
}

func (e *CapabilityError) Is(target error) bool {
	return target == ErrCapabilityFailure
}

// Capability 构造 CapabilityError，err 为 nil 时返回 nil
func Capability(capability string, err error) error {
	if err == nil {
		return nil
	}
	var ce *CapabilityError
	if errors.As(err, &ce) {
		return err
	}
	return &CapabilityError{Capability: capability, Err: err}
}

// Conflict 构造一个可被 errors.Is(err, ErrConflict) 识别的错误
func Conflict(reason string) error {
	return fmt.Errorf("%w: %s", ErrConflict, reason)
}

// ================= 实时推送 =================

// ErrRoomClosing 房间正在关闭，客户端应稍后重连
var ErrRoomClosing = errors.New("room is closing")
