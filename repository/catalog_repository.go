package repository

import (
	"context"
	"errors"
	"strings"

	"museum-tour-server/domain/entity"
	domainErrors "museum-tour-server/domain/errors"
	domainRepo "museum-tour-server/domain/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// crudRepository 通用单表 GORM 实现
type crudRepository[T any] struct {
	db   *gorm.DB
	name string // 用于 NotFound 错误信息
}

func newCrudRepository[T any](db *gorm.DB, name string) *crudRepository[T] {
	return &crudRepository[T]{db: db, name: name}
}

// NewDomeRepository 温室仓库
func NewDomeRepository(db *gorm.DB) domainRepo.CrudRepository[entity.Dome] {
	return newCrudRepository[entity.Dome](db, "dome")
}

// NewTourRepository 路线仓库
func NewTourRepository(db *gorm.DB) domainRepo.CrudRepository[entity.Tour] {
	return newCrudRepository[entity.Tour](db, "tour")
}

// NewLocationRepository 地点仓库
func NewLocationRepository(db *gorm.DB) domainRepo.CrudRepository[entity.Location] {
	return newCrudRepository[entity.Location](db, "location")
}

func (r *crudRepository[T]) List(ctx context.Context) ([]T, error) {
	var items []T
	err := r.db.WithContext(ctx).Order("id ASC").Find(&items).Error
	return items, err
}

func (r *crudRepository[T]) Get(ctx context.Context, id uint) (*T, error) {
	var item T
	err := r.db.WithContext(ctx).First(&item, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domainErrors.NotFound(r.name, id)
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *crudRepository[T]) Create(ctx context.Context, item *T) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(item).Error
}

// Update 先确认记录存在，再按列更新
func (r *crudRepository[T]) Update(ctx context.Context, id uint, fields map[string]interface{}) (*T, error) {
	item, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return item, nil
	}
	if err := r.db.WithContext(ctx).Model(item).Omit(clause.Associations).Updates(fields).Error; err != nil {
		return nil, err
	}
	return r.Get(ctx, id)
}

func (r *crudRepository[T]) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(new(T), id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainErrors.NotFound(r.name, id)
	}
	return nil
}

func (r *crudRepository[T]) Count(ctx context.Context, query string, args ...interface{}) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(new(T)).Where(query, args...).Count(&n).Error
	return n, err
}

// ================= 语言 =================

type languageRepository struct {
	*crudRepository[entity.Language]
}

// NewLanguageRepository 语言仓库
func NewLanguageRepository(db *gorm.DB) domainRepo.LanguageRepository {
	return &languageRepository{crudRepository: newCrudRepository[entity.Language](db, "language")}
}

func (r *languageRepository) GetByCode(ctx context.Context, code string) (*entity.Language, error) {
	var lang entity.Language
	err := r.db.WithContext(ctx).Where("code = ?", strings.ToLower(code)).First(&lang).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domainErrors.NotFound("language", code)
	}
	if err != nil {
		return nil, err
	}
	return &lang, nil
}

// ================= 植物 =================

const (
	plantListLimit   = 500
	plantSearchLimit = 50
)

type plantRepository struct {
	*crudRepository[entity.Plant]
}

// NewPlantRepository 植物仓库
func NewPlantRepository(db *gorm.DB) domainRepo.PlantRepository {
	return &plantRepository{crudRepository: newCrudRepository[entity.Plant](db, "plant")}
}

// Search 名称 / 学名大小写不敏感的子串匹配
// 排序：名称完全匹配 > 名称包含 > 学名完全匹配 > 其他，同级按名称
func (r *plantRepository) Search(ctx context.Context, query string) ([]entity.Plant, error) {
	var plants []entity.Plant
	query = strings.ToLower(strings.TrimSpace(query))

	if query == "" {
		err := r.db.WithContext(ctx).Order("name ASC").Limit(plantListLimit).Find(&plants).Error
		return plants, err
	}

	pattern := "%" + escapeLike(query) + "%"
	err := r.db.WithContext(ctx).
		Where("LOWER(name) LIKE ? OR LOWER(scientific_name) LIKE ?", pattern, pattern).
		Clauses(clause.OrderBy{Expression: clause.Expr{
			SQL: "CASE WHEN LOWER(name) = ? THEN 1 WHEN LOWER(name) LIKE ? THEN 2 " +
				"WHEN LOWER(scientific_name) = ? THEN 3 ELSE 4 END, name ASC",
			Vars:               []interface{}{query, pattern, query},
			WithoutParentheses: true,
		}}).
		Limit(plantSearchLimit).
		Find(&plants).Error
	return plants, err
}

// escapeLike 去掉用户输入里的 LIKE 通配符
func escapeLike(s string) string {
	return strings.NewReplacer("%", "", "_", "").Replace(s)
}
