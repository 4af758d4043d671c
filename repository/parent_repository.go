package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"museum-tour-server/domain/capability"
	"museum-tour-server/domain/entity"
	domainErrors "museum-tour-server/domain/errors"
	domainRepo "museum-tour-server/domain/repository"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// parentRepository 把 locations / plants 两张表统一成页面父实体
type parentRepository struct {
	db *gorm.DB
}

// NewParentRepository 构造函数
func NewParentRepository(db *gorm.DB) domainRepo.ParentRepository {
	return &parentRepository{db: db}
}

// model 父实体类型对应的表模型
func model(kind entity.ParentKind) (interface{}, error) {
	switch kind {
	case entity.ParentLocation:
		return &entity.Location{}, nil
	case entity.ParentPlant:
		return &entity.Plant{}, nil
	default:
		return nil, domainErrors.Violation("parent", fmt.Sprintf("unknown parent kind %q", kind))
	}
}

func (r *parentRepository) Exists(ctx context.Context, parent entity.ParentRef) (bool, error) {
	m, err := model(parent.Kind)
	if err != nil {
		return false, err
	}
	var n int64
	err = r.db.WithContext(ctx).Model(m).Where("id = ?", parent.ID).Count(&n).Error
	return n > 0, err
}

func (r *parentRepository) Subject(ctx context.Context, parent entity.ParentRef) (*capability.Subject, error) {
	switch parent.Kind {
	case entity.ParentPlant:
		var plant entity.Plant
		if err := r.first(ctx, &plant, parent); err != nil {
			return nil, err
		}
		return &capability.Subject{Kind: parent.Kind, Name: plant.Name, ScientificName: plant.ScientificName}, nil
	case entity.ParentLocation:
		var location entity.Location
		if err := r.first(ctx, &location, parent); err != nil {
			return nil, err
		}
		return &capability.Subject{Kind: parent.Kind, Name: location.Name, Label: location.Label}, nil
	default:
		return nil, domainErrors.Violation("parent", fmt.Sprintf("unknown parent kind %q", parent.Kind))
	}
}

func (r *parentRepository) first(ctx context.Context, dest interface{}, parent entity.ParentRef) error {
	err := r.db.WithContext(ctx).First(dest, parent.ID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domainErrors.NotFound(string(parent.Kind), parent.ID)
	}
	return err
}

func (r *parentRepository) IDs(ctx context.Context, kind entity.ParentKind) ([]uint, error) {
	m, err := model(kind)
	if err != nil {
		return nil, err
	}
	var ids []uint
	err = r.db.WithContext(ctx).Model(m).Order("id ASC").Pluck("id", &ids).Error
	return ids, err
}

func (r *parentRepository) SaveFactSheet(ctx context.Context, parent entity.ParentRef, facts *capability.FactSheet) error {
	m, err := model(parent.Kind)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(facts)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Model(m).
		Where("id = ?", parent.ID).
		Update("fact_sheet", datatypes.JSON(raw)).Error
}
