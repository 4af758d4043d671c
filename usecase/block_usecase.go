package usecase

import (
	"context"
	"fmt"

	"museum-tour-server/domain/entity"
	domainErrors "museum-tour-server/domain/errors"
	"museum-tour-server/domain/repository"
)

// BlockUseCase 管理后台直接操作 contents / blocks 两张表
// 页面级别的编辑请走 ContentUseCase，这里只做单行增删改查
type BlockUseCase struct {
	contents  repository.ContentRepository
	parents   repository.ParentRepository
	languages repository.LanguageRepository
}

func NewBlockUseCase(
	contents repository.ContentRepository,
	parents repository.ParentRepository,
	languages repository.LanguageRepository,
) *BlockUseCase {
	return &BlockUseCase{contents: contents, parents: parents, languages: languages}
}

// ================= contents =================

func (uc *BlockUseCase) GetContent(ctx context.Context, id uint) (*entity.Content, error) {
	return uc.contents.GetContent(ctx, id)
}

// CreateContent 语言必须存在
func (uc *BlockUseCase) CreateContent(ctx context.Context, content *entity.Content) error {
	if _, err := uc.languages.Get(ctx, content.LanguageID); err != nil {
		return err
	}
	content.ID = 0
	return uc.contents.CreateContent(ctx, content)
}

// UpdateContent 整体替换 body / is_url / language_id
func (uc *BlockUseCase) UpdateContent(ctx context.Context, id uint, next *entity.Content) (*entity.Content, error) {
	if _, err := uc.contents.GetContent(ctx, id); err != nil {
		return nil, err
	}
	if _, err := uc.languages.Get(ctx, next.LanguageID); err != nil {
		return nil, err
	}
	next.ID = id
	if err := uc.contents.UpdateContent(ctx, next); err != nil {
		return nil, err
	}
	return uc.contents.GetContent(ctx, id)
}

// DeleteContent 仍被块引用的内容不能删除
func (uc *BlockUseCase) DeleteContent(ctx context.Context, id uint) error {
	if _, err := uc.contents.GetContent(ctx, id); err != nil {
		return err
	}
	referenced, err := uc.contents.ContentReferenced(ctx, id)
	if err != nil {
		return err
	}
	if referenced {
		return domainErrors.Conflict(fmt.Sprintf("content %d is still referenced by a block", id))
	}
	return uc.contents.DeleteContents(ctx, id)
}

// ================= blocks =================

func (uc *BlockUseCase) GetBlock(ctx context.Context, id uint) (*entity.Block, error) {
	return uc.contents.GetBlock(ctx, id)
}

// CreateBlock 父实体、语言、引用的内容都必须存在；不变量 A–C 由仓库校验
func (uc *BlockUseCase) CreateBlock(ctx context.Context, block *entity.Block) error {
	if err := uc.checkReferences(ctx, block); err != nil {
		return err
	}
	block.ID = 0
	return uc.contents.CreateBlock(ctx, block)
}

// UpdateBlock 整体替换块的引用与位置
func (uc *BlockUseCase) UpdateBlock(ctx context.Context, id uint, next *entity.Block) (*entity.Block, error) {
	if _, err := uc.contents.GetBlock(ctx, id); err != nil {
		return nil, err
	}
	if err := uc.checkReferences(ctx, next); err != nil {
		return nil, err
	}
	next.ID = id
	if err := uc.contents.UpdateBlock(ctx, next); err != nil {
		return nil, err
	}
	return uc.contents.GetBlock(ctx, id)
}

func (uc *BlockUseCase) DeleteBlock(ctx context.Context, id uint) error {
	if _, err := uc.contents.GetBlock(ctx, id); err != nil {
		return err
	}
	return uc.contents.DeleteBlocks(ctx, id)
}

func (uc *BlockUseCase) checkReferences(ctx context.Context, block *entity.Block) error {
	// 先做不依赖数据库的校验，非法请求不必查库
	if err := block.Validate(); err != nil {
		return err
	}
	parent := block.Parent()
	exists, err := uc.parents.Exists(ctx, parent)
	if err != nil {
		return err
	}
	if !exists {
		return domainErrors.NotFound(string(parent.Kind), parent.ID)
	}
	if _, err := uc.languages.Get(ctx, block.LanguageID); err != nil {
		return err
	}
	for _, id := range []*uint{block.LeftContentID, block.RightContentID} {
		if id == nil {
			continue
		}
		if _, err := uc.contents.GetContent(ctx, *id); err != nil {
			return err
		}
	}
	return nil
}
