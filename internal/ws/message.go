package ws

import "encoding/json"

type MessageType string

const (
	// 页面事件（服务端推送）
	TypePageUpdated      MessageType = "page-updated"      // 页面内容已保存，payload 为最新页面
	TypeBootstrapStarted MessageType = "bootstrap-started" // 开始自动填充
	TypeBootstrapFailed  MessageType = "bootstrap-failed"  // 自动填充失败
	TypeAudioUpdated     MessageType = "audio-updated"     // 语音已重新生成

	// 系统消息
	TypeSync  MessageType = "sync"  // 全量同步（订阅时发送，或客户端请求）
	TypePing  MessageType = "ping"  // 客户端应用层心跳
	TypePong  MessageType = "pong"  // 心跳回应
	TypeError MessageType = "error" // 错误消息
)

// WSMessage 统一的 WebSocket 消息结构
type WSMessage struct {
	Type      MessageType     `json:"type"`              // 消息类型
	SenderID  string          `json:"senderId"`          // 发送者 id，服务端消息为 "server"
	Payload   json.RawMessage `json:"payload,omitempty"` // 消息内容
	Version   int64           `json:"version,omitempty"` // 房间内页面版本，仅 sync / page-updated 携带
	Timestamp int64           `json:"ts"`                // 时间戳（毫秒）
}

// SyncPayload sync 消息的 payload
type SyncPayload struct {
	Page    json.RawMessage `json:"page"`
	Version int64           `json:"version"`
	Viewers int             `json:"viewers"` // 当前订阅该页面的连接数（含自己）
}

// ========== 错误码系统 ==========
// 前端根据 Code 判断错误类型，而不是匹配 Message 字符串

type ErrorCode string

const (
	ErrUnsupportedMessage ErrorCode = "UNSUPPORTED_MESSAGE" // 未知的客户端消息类型
	ErrInvalidMessage     ErrorCode = "INVALID_MESSAGE"     // 消息不是合法 JSON
	ErrRoomNotFound       ErrorCode = "ROOM_NOT_FOUND"      // 房间不存在
	ErrInternalError      ErrorCode = "INTERNAL_ERROR"      // 服务器内部错误
)

// ErrorPayload 错误消息的 payload 结构
type ErrorPayload struct {
	Code    ErrorCode `json:"code"`    // 错误码（前端用于判断逻辑）
	Message string    `json:"message"` // 错误描述（用于调试/日志）
}
