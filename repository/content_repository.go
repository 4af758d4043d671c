package repository

import (
	"context"
	"errors"

	"museum-tour-server/domain/entity"
	domainErrors "museum-tour-server/domain/errors"
	domainRepo "museum-tour-server/domain/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// contentRepository GORM 实现 ContentRepository 接口
// db 可能是普通连接，也可能是事务句柄（见 Transaction）
type contentRepository struct {
	db *gorm.DB
}

// NewContentRepository 构造函数
func NewContentRepository(db *gorm.DB) domainRepo.ContentRepository {
	return &contentRepository{db: db}
}

// Transaction 把 fn 包在一个数据库事务里
// fn 收到的 repo 绑定到事务句柄，返回错误时整体回滚
func (r *contentRepository) Transaction(ctx context.Context, fn func(repo domainRepo.ContentRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&contentRepository{db: tx})
	})
}

// ================= contents =================

func (r *contentRepository) GetContent(ctx context.Context, id uint) (*entity.Content, error) {
	var content entity.Content
	err := r.db.WithContext(ctx).First(&content, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domainErrors.NotFound("content", id)
	}
	if err != nil {
		return nil, err
	}
	return &content, nil
}

func (r *contentRepository) CreateContent(ctx context.Context, content *entity.Content) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(content).Error
}

// UpdateContent 原地修改内容
// ⚠️ 使用 map 更新，保证 false / 空字符串也会被写入
func (r *contentRepository) UpdateContent(ctx context.Context, content *entity.Content) error {
	return r.db.WithContext(ctx).Model(&entity.Content{}).
		Where("id = ?", content.ID).
		Updates(map[string]interface{}{
			"body":        content.Body,
			"is_url":      content.IsURL,
			"language_id": content.LanguageID,
		}).Error
}

func (r *contentRepository) DeleteContents(ctx context.Context, ids ...uint) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Delete(&entity.Content{}, ids).Error
}

func (r *contentRepository) ContentReferenced(ctx context.Context, id uint) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&entity.Block{}).
		Where("left_content_id = ? OR right_content_id = ?", id, id).
		Count(&n).Error
	return n > 0, err
}

func (r *contentRepository) LanguageInUse(ctx context.Context, languageID uint) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&entity.Content{}).
		Where("language_id = ?", languageID).
		Count(&n).Error
	return n > 0, err
}

// ================= blocks =================

func (r *contentRepository) GetBlock(ctx context.Context, id uint) (*entity.Block, error) {
	var block entity.Block
	err := r.db.WithContext(ctx).First(&block, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domainErrors.NotFound("block", id)
	}
	if err != nil {
		return nil, err
	}
	return &block, nil
}

// CreateBlock 校验不变量后插入
func (r *contentRepository) CreateBlock(ctx context.Context, block *entity.Block) error {
	if err := block.Validate(); err != nil {
		return err
	}
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(block).Error
}

// UpdateBlock 校验不变量后更新引用与位置
// nil 指针会写成 NULL
func (r *contentRepository) UpdateBlock(ctx context.Context, block *entity.Block) error {
	if err := block.Validate(); err != nil {
		return err
	}
	result := r.db.WithContext(ctx).Model(&entity.Block{}).
		Where("id = ?", block.ID).
		Updates(map[string]interface{}{
			"parent_kind":      block.ParentKind,
			"parent_id":        block.ParentID,
			"language_id":      block.LanguageID,
			"left_content_id":  block.LeftContentID,
			"right_content_id": block.RightContentID,
			"position":         block.Position,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainErrors.NotFound("block", block.ID)
	}
	return nil
}

func (r *contentRepository) DeleteBlocks(ctx context.Context, ids ...uint) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Delete(&entity.Block{}, ids).Error
}

// pageScope 限定到某父实体 + 某语言，并预加载左右内容
func (r *contentRepository) pageScope(ctx context.Context, parent entity.ParentRef, languageID uint) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("LeftContent").
		Preload("RightContent").
		Where("parent_kind = ? AND parent_id = ? AND language_id = ?", parent.Kind, parent.ID, languageID)
}

// FindTitleBlock 标题块不由数据库保证唯一，存在多个时取最早创建的那个
func (r *contentRepository) FindTitleBlock(ctx context.Context, parent entity.ParentRef, languageID uint) (*entity.Block, error) {
	var blocks []*entity.Block
	err := r.pageScope(ctx, parent, languageID).
		Where("position IS NULL").
		Order("id ASC").
		Limit(1).
		Find(&blocks).Error
	if err != nil {
		return nil, err
	}
	if len(blocks) == 0 {
		return nil, nil
	}
	return blocks[0], nil
}

func (r *contentRepository) ListPageBlocks(ctx context.Context, parent entity.ParentRef, languageID uint) ([]*entity.Block, error) {
	var blocks []*entity.Block
	err := r.pageScope(ctx, parent, languageID).
		Where("position IS NOT NULL AND position <> ?", entity.AudioPosition).
		Order("position ASC, id ASC").
		Find(&blocks).Error
	return blocks, err
}

func (r *contentRepository) ListBlocksAt(ctx context.Context, parent entity.ParentRef, languageID uint, position int) ([]*entity.Block, error) {
	var blocks []*entity.Block
	err := r.pageScope(ctx, parent, languageID).
		Where("position = ?", position).
		Order("id ASC").
		Find(&blocks).Error
	return blocks, err
}

func (r *contentRepository) ListLanguageBlocks(ctx context.Context, parent entity.ParentRef, languageID uint) ([]*entity.Block, error) {
	var blocks []*entity.Block
	err := r.pageScope(ctx, parent, languageID).
		Order("id ASC").
		Find(&blocks).Error
	return blocks, err
}

func (r *contentRepository) CountParentBlocks(ctx context.Context, parent entity.ParentRef) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&entity.Block{}).
		Where("parent_kind = ? AND parent_id = ?", parent.Kind, parent.ID).
		Count(&n).Error
	return n, err
}
