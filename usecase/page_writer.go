package usecase

import (
	"context"

	"museum-tour-server/domain/entity"
	"museum-tour-server/domain/repository"
)

// pageWriter 在一个事务内把页面写成目标状态
// 已有块按位置顺序逐一复用，多余的块删除，缺少的块新建
type pageWriter struct {
	repo       repository.ContentRepository
	parent     entity.ParentRef
	languageID uint
}

func (w *pageWriter) write(ctx context.Context, title string, blocks []entity.PageBlock) error {
	if err := w.writeTitle(ctx, title); err != nil {
		return err
	}

	existing, err := w.repo.ListPageBlocks(ctx, w.parent, w.languageID)
	if err != nil {
		return err
	}

	for i, next := range blocks {
		position := i + 1
		if i < len(existing) {
			err = w.updateBlock(ctx, existing[i], next, position)
		} else {
			err = w.createBlock(ctx, next, position)
		}
		if err != nil {
			return err
		}
	}

	// 多余的块直接删除，内容保留（可能被其他块引用）
	if len(existing) > len(blocks) {
		surplus := make([]uint, 0, len(existing)-len(blocks))
		for _, b := range existing[len(blocks):] {
			surplus = append(surplus, b.ID)
		}
		return w.repo.DeleteBlocks(ctx, surplus...)
	}
	return nil
}

// writeTitle 标题块：左侧为标题文字，右侧为空占位
func (w *pageWriter) writeTitle(ctx context.Context, title string) error {
	block, err := w.repo.FindTitleBlock(ctx, w.parent, w.languageID)
	if err != nil {
		return err
	}

	if block == nil {
		left, err := w.newContent(ctx, title, false)
		if err != nil {
			return err
		}
		right, err := w.newContent(ctx, "", false)
		if err != nil {
			return err
		}
		return w.repo.CreateBlock(ctx, w.newBlock(left.ID, right.ID, nil))
	}

	leftID, leftCreated, err := w.syncSide(ctx, block.LeftContent, title, false)
	if err != nil {
		return err
	}

	rightCreated := false
	if ownSide(block.RightContent, w.languageID) == nil {
		placeholder, err := w.newContent(ctx, "", false)
		if err != nil {
			return err
		}
		block.RightContentID = entity.UintPtr(placeholder.ID)
		rightCreated = true
	}

	if !leftCreated && !rightCreated {
		return nil
	}
	block.LeftContentID = entity.UintPtr(leftID)
	return w.repo.UpdateBlock(ctx, block)
}

// updateBlock 复用已有块：同语言的内容原地改写，其余新建后重新指向
func (w *pageWriter) updateBlock(ctx context.Context, block *entity.Block, next entity.PageBlock, position int) error {
	leftID, leftCreated, err := w.syncSide(ctx, block.LeftContent, next.LeftContent, next.LeftType == entity.KindImage)
	if err != nil {
		return err
	}
	rightID, rightCreated, err := w.syncSide(ctx, block.RightContent, next.RightContent, next.RightType == entity.KindImage)
	if err != nil {
		return err
	}

	moved := block.Position == nil || *block.Position != position
	if !leftCreated && !rightCreated && !moved {
		return nil
	}
	block.LeftContentID = entity.UintPtr(leftID)
	block.RightContentID = entity.UintPtr(rightID)
	block.Position = entity.IntPtr(position)
	return w.repo.UpdateBlock(ctx, block)
}

func (w *pageWriter) createBlock(ctx context.Context, next entity.PageBlock, position int) error {
	left, err := w.newContent(ctx, next.LeftContent, next.LeftType == entity.KindImage)
	if err != nil {
		return err
	}
	right, err := w.newContent(ctx, next.RightContent, next.RightType == entity.KindImage)
	if err != nil {
		return err
	}
	return w.repo.CreateBlock(ctx, w.newBlock(left.ID, right.ID, entity.IntPtr(position)))
}

// syncSide 返回该侧最终引用的内容 ID，以及是否新建了内容
func (w *pageWriter) syncSide(ctx context.Context, current *entity.Content, body string, isURL bool) (uint, bool, error) {
	if own := ownSide(current, w.languageID); own != nil {
		if own.Body != body || own.IsURL != isURL {
			own.Body = body
			own.IsURL = isURL
			if err := w.repo.UpdateContent(ctx, own); err != nil {
				return 0, false, err
			}
		}
		return own.ID, false, nil
	}

	created, err := w.newContent(ctx, body, isURL)
	if err != nil {
		return 0, false, err
	}
	return created.ID, true, nil
}

func (w *pageWriter) newContent(ctx context.Context, body string, isURL bool) (*entity.Content, error) {
	content := &entity.Content{Body: body, IsURL: isURL, LanguageID: w.languageID}
	if err := w.repo.CreateContent(ctx, content); err != nil {
		return nil, err
	}
	return content, nil
}

func (w *pageWriter) newBlock(leftID, rightID uint, position *int) *entity.Block {
	return &entity.Block{
		ParentKind:     w.parent.Kind,
		ParentID:       w.parent.ID,
		LanguageID:     w.languageID,
		LeftContentID:  entity.UintPtr(leftID),
		RightContentID: entity.UintPtr(rightID),
		Position:       position,
	}
}
