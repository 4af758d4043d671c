package usecase

import (
	"context"
	"fmt"

	"museum-tour-server/domain/entity"
	domainErrors "museum-tour-server/domain/errors"
	"museum-tour-server/domain/repository"
)

// CatalogUseCase 单表资源的增删改查，附带引用完整性检查
type CatalogUseCase[T any] struct {
	repo repository.CrudRepository[T]

	// 可选钩子，返回错误则中止写入
	beforeCreate func(ctx context.Context, item *T) error
	beforeUpdate func(ctx context.Context, id uint, fields map[string]interface{}) error
	beforeDelete func(ctx context.Context, id uint) error
}

func (uc *CatalogUseCase[T]) List(ctx context.Context) ([]T, error) {
	items, err := uc.repo.List(ctx)
	if items == nil {
		items = []T{}
	}
	return items, err
}

func (uc *CatalogUseCase[T]) Get(ctx context.Context, id uint) (*T, error) {
	return uc.repo.Get(ctx, id)
}

func (uc *CatalogUseCase[T]) Create(ctx context.Context, item *T) error {
	if uc.beforeCreate != nil {
		if err := uc.beforeCreate(ctx, item); err != nil {
			return err
		}
	}
	return uc.repo.Create(ctx, item)
}

func (uc *CatalogUseCase[T]) Update(ctx context.Context, id uint, fields map[string]interface{}) (*T, error) {
	if uc.beforeUpdate != nil {
		if err := uc.beforeUpdate(ctx, id, fields); err != nil {
			return nil, err
		}
	}
	return uc.repo.Update(ctx, id, fields)
}

func (uc *CatalogUseCase[T]) Delete(ctx context.Context, id uint) error {
	if _, err := uc.repo.Get(ctx, id); err != nil {
		return err
	}
	if uc.beforeDelete != nil {
		if err := uc.beforeDelete(ctx, id); err != nil {
			return err
		}
	}
	return uc.repo.Delete(ctx, id)
}

// ========== 各资源的构造函数 ==========

// NewDomeCatalog 温室没有外部引用
func NewDomeCatalog(domes repository.CrudRepository[entity.Dome]) *CatalogUseCase[entity.Dome] {
	return &CatalogUseCase[entity.Dome]{repo: domes}
}

// NewLanguageCatalog 仍有内容使用的语言不能删除
func NewLanguageCatalog(languages repository.LanguageRepository, contents repository.ContentRepository) *CatalogUseCase[entity.Language] {
	return &CatalogUseCase[entity.Language]{
		repo: languages,
		beforeDelete: func(ctx context.Context, id uint) error {
			inUse, err := contents.LanguageInUse(ctx, id)
			if err != nil {
				return err
			}
			if inUse {
				return domainErrors.Conflict(fmt.Sprintf("language %d is still used by contents", id))
			}
			return nil
		},
	}
}

// NewTourCatalog 仍有地点的路线不能删除
func NewTourCatalog(tours repository.CrudRepository[entity.Tour], locations repository.CrudRepository[entity.Location]) *CatalogUseCase[entity.Tour] {
	return &CatalogUseCase[entity.Tour]{
		repo: tours,
		beforeDelete: func(ctx context.Context, id uint) error {
			n, err := locations.Count(ctx, "tour_id = ?", id)
			if err != nil {
				return err
			}
			if n > 0 {
				return domainErrors.Conflict(fmt.Sprintf("tour %d still has %d locations", id, n))
			}
			return nil
		},
	}
}

// NewLocationCatalog 地点必须挂在已存在的路线上；有内容块的地点不能删除
func NewLocationCatalog(
	locations repository.CrudRepository[entity.Location],
	tours repository.CrudRepository[entity.Tour],
	contents repository.ContentRepository,
) *CatalogUseCase[entity.Location] {
	tourExists := func(ctx context.Context, tourID uint) error {
		_, err := tours.Get(ctx, tourID)
		return err
	}
	return &CatalogUseCase[entity.Location]{
		repo: locations,
		beforeCreate: func(ctx context.Context, item *entity.Location) error {
			return tourExists(ctx, item.TourID)
		},
		beforeUpdate: func(ctx context.Context, _ uint, fields map[string]interface{}) error {
			if tourID, ok := fields["tour_id"].(uint); ok {
				return tourExists(ctx, tourID)
			}
			return nil
		},
		beforeDelete: parentHasNoBlocks(contents, entity.ParentLocation),
	}
}

// NewPlantCatalog 有内容块的植物不能删除
func NewPlantCatalog(plants repository.PlantRepository, contents repository.ContentRepository) *CatalogUseCase[entity.Plant] {
	return &CatalogUseCase[entity.Plant]{
		repo:         plants,
		beforeDelete: parentHasNoBlocks(contents, entity.ParentPlant),
	}
}

func parentHasNoBlocks(contents repository.ContentRepository, kind entity.ParentKind) func(context.Context, uint) error {
	return func(ctx context.Context, id uint) error {
		parent := entity.ParentRef{Kind: kind, ID: id}
		n, err := contents.CountParentBlocks(ctx, parent)
		if err != nil {
			return err
		}
		if n > 0 {
			return domainErrors.Conflict(fmt.Sprintf("%s still has %d blocks", parent, n))
		}
		return nil
	}
}

// ================= 植物搜索 =================

// PlantSearchUseCase 植物搜索
type PlantSearchUseCase struct {
	plants repository.PlantRepository
}

func NewPlantSearchUseCase(plants repository.PlantRepository) *PlantSearchUseCase {
	return &PlantSearchUseCase{plants: plants}
}

// Search query 为空时按名称列出全部
func (uc *PlantSearchUseCase) Search(ctx context.Context, query string) ([]entity.Plant, error) {
	plants, err := uc.plants.Search(ctx, query)
	if plants == nil {
		plants = []entity.Plant{}
	}
	return plants, err
}
