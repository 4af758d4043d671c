package repository

import (
	"context"

	"museum-tour-server/domain/entity"
)

// ContentRepository 内容存储（contents + blocks 两张表）
// 所有块写入在落库前都会调用 Block.Validate()
type ContentRepository interface {
	// Transaction 在同一个事务里执行 fn，fn 返回错误则整体回滚
	Transaction(ctx context.Context, fn func(repo ContentRepository) error) error

	// ---- contents ----

	GetContent(ctx context.Context, id uint) (*entity.Content, error)
	CreateContent(ctx context.Context, content *entity.Content) error
	// UpdateContent 原地修改 body / is_url / language_id
	UpdateContent(ctx context.Context, content *entity.Content) error
	// DeleteContents 批量删除，调用方保证已无块引用
	DeleteContents(ctx context.Context, ids ...uint) error
	// ContentReferenced 是否还有块引用该内容
	ContentReferenced(ctx context.Context, id uint) (bool, error)
	// LanguageInUse 是否还有内容使用该语言
	LanguageInUse(ctx context.Context, languageID uint) (bool, error)

	// ---- blocks ----

	GetBlock(ctx context.Context, id uint) (*entity.Block, error)
	CreateBlock(ctx context.Context, block *entity.Block) error
	// UpdateBlock 更新左右引用与位置
	UpdateBlock(ctx context.Context, block *entity.Block) error
	DeleteBlocks(ctx context.Context, ids ...uint) error

	// FindTitleBlock 某父实体在某语言下的标题块（position IS NULL），不存在返回 (nil, nil)
	// 返回的块已加载左右 Content
	FindTitleBlock(ctx context.Context, parent entity.ParentRef, languageID uint) (*entity.Block, error)
	// ListPageBlocks 某父实体在某语言下的正文块（排除标题与语音哨兵），按 position 升序
	ListPageBlocks(ctx context.Context, parent entity.ParentRef, languageID uint) ([]*entity.Block, error)
	// ListBlocksAt 某父实体在某语言下指定位置的全部块（用于语音哨兵替换）
	ListBlocksAt(ctx context.Context, parent entity.ParentRef, languageID uint, position int) ([]*entity.Block, error)
	// ListLanguageBlocks 某父实体在某语言下的全部块（含标题与哨兵）
	ListLanguageBlocks(ctx context.Context, parent entity.ParentRef, languageID uint) ([]*entity.Block, error)
	// CountParentBlocks 父实体下所有语言的块数量（删除父实体前检查）
	CountParentBlocks(ctx context.Context, parent entity.ParentRef) (int64, error)
}
