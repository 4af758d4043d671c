package entity

import (
	"fmt"
	"time"

	domainErrors "museum-tour-server/domain/errors"
)

// 位置约定
const (
	// AudioPosition 自动生成的语音块占用的哨兵位置，正文读取时必须排除
	AudioPosition = 99
	// MaxPosition position 的合法上限（含）
	MaxPosition = 99
	// MaxPageBlocks 一页最多的正文块数量：正文从 1 开始编号，99 留给语音块
	MaxPageBlocks = AudioPosition - 1
)

// ParentKind 内容块所属的父实体类型
type ParentKind string

const (
	ParentLocation ParentKind = "location"
	ParentPlant    ParentKind = "plant"
)

// Valid 是否为已知的父实体类型
func (k ParentKind) Valid() bool {
	return k == ParentLocation || k == ParentPlant
}

// ParentRef 指向一个地点或植物
type ParentRef struct {
	Kind ParentKind
	ID   uint
}

// Key 页面键（同时作为 single-flight 与 WebSocket 房间的 key）
func (p ParentRef) Key(languageID uint) string {
	return fmt.Sprintf("%s:%d:%d", p.Kind, p.ID, languageID)
}

func (p ParentRef) String() string {
	return fmt.Sprintf("%s#%d", p.Kind, p.ID)
}

// Content 多语言内容条目（文本或图片 URL）
type Content struct {
	ID         uint      `gorm:"primaryKey" json:"content_id"`
	Body       string    `gorm:"type:text;not null" json:"content"`
	IsURL      bool      `gorm:"not null;default:false" json:"is_url"`
	LanguageID uint      `gorm:"not null;index" json:"language_id"`
	Language   *Language `gorm:"constraint:OnDelete:RESTRICT" json:"-"`
	CreatedAt  time.Time `json:"-"`
	UpdatedAt  time.Time `json:"-"`
}

// Block 页面中的一行（左右两侧各引用一个 Content）
// Position 为 nil 表示标题块；99 为语音哨兵块
type Block struct {
	ID             uint       `gorm:"primaryKey" json:"block_id"`
	ParentKind     ParentKind `gorm:"size:16;not null;index:idx_blocks_page,priority:1" json:"parent_kind"`
	ParentID       uint       `gorm:"not null;index:idx_blocks_page,priority:2" json:"parent_id"`
	LanguageID     uint       `gorm:"not null;index:idx_blocks_page,priority:3" json:"language_id"`
	LeftContentID  *uint      `json:"content_id_left"`
	RightContentID *uint      `json:"content_id_right"`
	Position       *int       `json:"position"`
	LeftContent    *Content   `gorm:"foreignKey:LeftContentID;constraint:OnDelete:RESTRICT" json:"-"`
	RightContent   *Content   `gorm:"foreignKey:RightContentID;constraint:OnDelete:RESTRICT" json:"-"`
	CreatedAt      time.Time  `json:"-"`
	UpdatedAt      time.Time  `json:"-"`
}

// Parent 返回块所属的父实体
func (b *Block) Parent() ParentRef {
	return ParentRef{Kind: b.ParentKind, ID: b.ParentID}
}

// IsTitle 标题块
func (b *Block) IsTitle() bool {
	return b.Position == nil
}

// IsAudio 语音哨兵块
func (b *Block) IsAudio() bool {
	return b.Position != nil && *b.Position == AudioPosition
}

// Validate 检查块的存储不变量，所有写路径在落库前调用
//
//	A: 标题块左右两侧都必须有内容
//	B: 普通块至少一侧有内容
//	C: position ∈ [0, 99]
func (b *Block) Validate() error {
	if !b.ParentKind.Valid() {
		return domainErrors.Violation("parent", fmt.Sprintf("unknown parent kind %q", b.ParentKind))
	}
	if b.Position == nil {
		if b.LeftContentID == nil || b.RightContentID == nil {
			return domainErrors.Violation("A", "title block requires both left and right content")
		}
		return nil
	}
	if b.LeftContentID == nil && b.RightContentID == nil {
		return domainErrors.Violation("B", "content block requires left or right content")
	}
	if *b.Position < 0 || *b.Position > MaxPosition {
		return domainErrors.Violation("C", fmt.Sprintf("position %d out of range [0, %d]", *b.Position, MaxPosition))
	}
	return nil
}

// IntPtr 小工具：取 int 指针
func IntPtr(v int) *int {
	return &v
}

// UintPtr 小工具：取 uint 指针
func UintPtr(v uint) *uint {
	return &v
}
