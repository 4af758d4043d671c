package repository

import (
	"context"

	"museum-tour-server/domain/capability"
	"museum-tour-server/domain/entity"
)

// CrudRepository 单表增删改查
type CrudRepository[T any] interface {
	List(ctx context.Context) ([]T, error)
	// Get 不存在时返回 NotFoundError
	Get(ctx context.Context, id uint) (*T, error)
	Create(ctx context.Context, item *T) error
	// Update 只更新 fields 中给出的列，返回更新后的记录
	Update(ctx context.Context, id uint, fields map[string]interface{}) (*T, error)
	Delete(ctx context.Context, id uint) error
	// Count 满足条件的记录数，例如 Count(ctx, "tour_id = ?", 3)
	Count(ctx context.Context, query string, args ...interface{}) (int64, error)
}

// LanguageRepository 语言表
type LanguageRepository interface {
	CrudRepository[entity.Language]
	// GetByCode 根据语言代码（如 "en"）查询，不存在时返回 NotFoundError
	GetByCode(ctx context.Context, code string) (*entity.Language, error)
}

// PlantRepository 植物表
type PlantRepository interface {
	CrudRepository[entity.Plant]
	// Search 按名称 / 学名模糊查询；query 为空时返回全部（最多 500 条）
	Search(ctx context.Context, query string) ([]entity.Plant, error)
}

// ParentRepository 页面父实体（地点 / 植物）的统一视图
type ParentRepository interface {
	// Exists 父实体是否存在
	Exists(ctx context.Context, parent entity.ParentRef) (bool, error)
	// Subject 父实体的检索对象（名称等），不存在时返回 NotFoundError
	Subject(ctx context.Context, parent entity.ParentRef) (*capability.Subject, error)
	// IDs 某类父实体的全部 ID（批量预填充使用）
	IDs(ctx context.Context, kind entity.ParentKind) ([]uint, error)
	// SaveFactSheet 缓存最近一次联网检索结果
	SaveFactSheet(ctx context.Context, parent entity.ParentRef, facts *capability.FactSheet) error
}
