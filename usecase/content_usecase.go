package usecase

import (
	"context"
	"encoding/json"
	"fmt"

	"museum-tour-server/domain/entity"
	domainErrors "museum-tour-server/domain/errors"
	"museum-tour-server/domain/repository"

	jsonpatch "github.com/evanphx/json-patch/v5"
	"github.com/rs/zerolog"
)

// 推送给页面订阅者的事件类型
const (
	EventPageUpdated      = "page-updated"
	EventBootstrapStarted = "bootstrap-started"
	EventBootstrapFailed  = "bootstrap-failed"
	EventAudioUpdated     = "audio-updated"
)

// PageNotifier 页面变更通知（WebSocket Hub 实现）
type PageNotifier interface {
	NotifyPage(parent entity.ParentRef, languageID uint, event string, payload interface{})
}

type noopNotifier struct{}

func (noopNotifier) NotifyPage(entity.ParentRef, uint, string, interface{}) {}

// ContentUseCase 页面读取与同步
// ✅ 语言隔离：所有写操作只触碰目标语言的块与内容
// ✅ 原子性：一次 Upsert / Create 在同一个事务里完成
type ContentUseCase struct {
	contents  repository.ContentRepository
	parents   repository.ParentRepository
	languages repository.LanguageRepository
	notifier  PageNotifier
	log       zerolog.Logger
}

// NewContentUseCase 构造函数，notifier 可以为 nil
func NewContentUseCase(
	contents repository.ContentRepository,
	parents repository.ParentRepository,
	languages repository.LanguageRepository,
	notifier PageNotifier,
	log zerolog.Logger,
) *ContentUseCase {
	if notifier == nil {
		notifier = noopNotifier{}
	}
	return &ContentUseCase{
		contents:  contents,
		parents:   parents,
		languages: languages,
		notifier:  notifier,
		log:       log.With().Str("component", "content").Logger(),
	}
}

// ================= 读取 =================

// ReadPage 组装某父实体在某语言下的页面
// 没有任何块时返回空页面而不是错误；父实体 / 语言是否存在由调用方负责校验
func (uc *ContentUseCase) ReadPage(ctx context.Context, parent entity.ParentRef, languageID uint) (*entity.Page, error) {
	titleBlock, err := uc.contents.FindTitleBlock(ctx, parent, languageID)
	if err != nil {
		return nil, fmt.Errorf("read title of %s: %w", parent.Key(languageID), err)
	}
	blocks, err := uc.contents.ListPageBlocks(ctx, parent, languageID)
	if err != nil {
		return nil, fmt.Errorf("read blocks of %s: %w", parent.Key(languageID), err)
	}

	page := entity.EmptyPage()
	if titleBlock != nil {
		if left := ownSide(titleBlock.LeftContent, languageID); left != nil {
			page.Title = left.Body
		}
	}
	for _, b := range blocks {
		page.Content = append(page.Content, toPageBlock(b, languageID))
	}
	return page, nil
}

// Snapshot 校验父实体与语言后读取页面（订阅实时推送时使用）
func (uc *ContentUseCase) Snapshot(ctx context.Context, parent entity.ParentRef, languageID uint) (*entity.Page, error) {
	if err := uc.checkTarget(ctx, parent, languageID); err != nil {
		return nil, err
	}
	return uc.ReadPage(ctx, parent, languageID)
}

// ownSide 只有属于该语言的内容才可见
func ownSide(c *entity.Content, languageID uint) *entity.Content {
	if c == nil || c.LanguageID != languageID {
		return nil
	}
	return c
}

func toPageBlock(b *entity.Block, languageID uint) entity.PageBlock {
	pb := entity.PageBlock{LeftType: entity.KindText, RightType: entity.KindText}
	if left := ownSide(b.LeftContent, languageID); left != nil {
		pb.LeftType = entity.KindOf(left.IsURL)
		pb.LeftContent = left.Body
	}
	if right := ownSide(b.RightContent, languageID); right != nil {
		pb.RightType = entity.KindOf(right.IsURL)
		pb.RightContent = right.Body
	}
	return pb
}

// ================= 写入 =================

// UpsertPage 创建或原地更新某语言的页面，不影响其他语言
// 相同输入重复调用结果不变（幂等）
func (uc *ContentUseCase) UpsertPage(ctx context.Context, parent entity.ParentRef, languageID uint, title string, blocks []entity.PageBlock) error {
	if err := uc.checkTarget(ctx, parent, languageID); err != nil {
		return err
	}
	blocks, err := normalizeBlocks(blocks)
	if err != nil {
		return err
	}

	err = uc.contents.Transaction(ctx, func(repo repository.ContentRepository) error {
		w := &pageWriter{repo: repo, parent: parent, languageID: languageID}
		return w.write(ctx, title, blocks)
	})
	if err != nil {
		return fmt.Errorf("upsert page %s: %w", parent.Key(languageID), err)
	}

	uc.log.Info().Str("page", parent.Key(languageID)).Int("blocks", len(blocks)).Msg("[Sync] ✅ 页面已同步")
	uc.notifier.NotifyPage(parent, languageID, EventPageUpdated, &entity.Page{Title: title, Content: blocks})
	return nil
}

// CreatePage 用新内容整体替换某语言的页面
// ⚠️ 只清理目标语言的块（含语音哨兵块）与其内容，其他语言保持不变
func (uc *ContentUseCase) CreatePage(ctx context.Context, parent entity.ParentRef, languageID uint, title string, blocks []entity.PageBlock) error {
	if err := uc.checkTarget(ctx, parent, languageID); err != nil {
		return err
	}
	blocks, err := normalizeBlocks(blocks)
	if err != nil {
		return err
	}

	err = uc.contents.Transaction(ctx, func(repo repository.ContentRepository) error {
		old, err := repo.ListLanguageBlocks(ctx, parent, languageID)
		if err != nil {
			return err
		}
		if err := deleteBlocksWithContents(ctx, repo, old, languageID); err != nil {
			return err
		}
		w := &pageWriter{repo: repo, parent: parent, languageID: languageID}
		return w.write(ctx, title, blocks)
	})
	if err != nil {
		return fmt.Errorf("create page %s: %w", parent.Key(languageID), err)
	}

	uc.log.Info().Str("page", parent.Key(languageID)).Int("blocks", len(blocks)).Msg("[Sync] 🆕 页面已重建")
	uc.notifier.NotifyPage(parent, languageID, EventPageUpdated, &entity.Page{Title: title, Content: blocks})
	return nil
}

// PatchPage 对页面的 JSON 表示应用 RFC 6902 补丁后落库
// 管理后台只改一两个字段时使用，省去回传整页
func (uc *ContentUseCase) PatchPage(ctx context.Context, parent entity.ParentRef, languageID uint, patch []byte) (*entity.Page, error) {
	if err := uc.checkTarget(ctx, parent, languageID); err != nil {
		return nil, err
	}
	current, err := uc.ReadPage(ctx, parent, languageID)
	if err != nil {
		return nil, err
	}

	doc, err := json.Marshal(current)
	if err != nil {
		return nil, err
	}
	decoded, err := jsonpatch.DecodePatch(patch)
	if err != nil {
		return nil, domainErrors.Violation("patch", fmt.Sprintf("patch 解析失败: %v", err))
	}
	modified, err := decoded.Apply(doc)
	if err != nil {
		return nil, domainErrors.Violation("patch", fmt.Sprintf("patch 应用失败: %v", err))
	}

	var next entity.Page
	if err := json.Unmarshal(modified, &next); err != nil {
		return nil, domainErrors.Violation("patch", fmt.Sprintf("patch 结果不是合法页面: %v", err))
	}
	next.Normalize()

	if err := uc.UpsertPage(ctx, parent, languageID, next.Title, next.Content); err != nil {
		return nil, err
	}
	return &next, nil
}

// checkTarget 写入前校验父实体与语言存在，任何写操作之前完成
func (uc *ContentUseCase) checkTarget(ctx context.Context, parent entity.ParentRef, languageID uint) error {
	if !parent.Kind.Valid() {
		return domainErrors.Violation("parent", fmt.Sprintf("unknown parent kind %q", parent.Kind))
	}
	exists, err := uc.parents.Exists(ctx, parent)
	if err != nil {
		return err
	}
	if !exists {
		return domainErrors.NotFound(string(parent.Kind), parent.ID)
	}
	if _, err := uc.languages.Get(ctx, languageID); err != nil {
		return err
	}
	return nil
}

// normalizeBlocks 补全缺省类型并校验块数量与类型
func normalizeBlocks(blocks []entity.PageBlock) ([]entity.PageBlock, error) {
	if len(blocks) > entity.MaxPageBlocks {
		return nil, domainErrors.Violation("C",
			fmt.Sprintf("page has %d blocks, at most %d fit before the audio position", len(blocks), entity.MaxPageBlocks))
	}
	page := &entity.Page{Content: append([]entity.PageBlock{}, blocks...)}
	page.Normalize()
	for i, b := range page.Content {
		if !b.LeftType.Valid() || !b.RightType.Valid() {
			return nil, domainErrors.Violation("type",
				fmt.Sprintf("block %d: type must be %q or %q", i, entity.KindText, entity.KindImage))
		}
	}
	return page.Content, nil
}

// deleteBlocksWithContents 删除块，以及块引用的、属于该语言且不再被引用的内容
func deleteBlocksWithContents(ctx context.Context, repo repository.ContentRepository, blocks []*entity.Block, languageID uint) error {
	if len(blocks) == 0 {
		return nil
	}
	blockIDs := make([]uint, 0, len(blocks))
	var contentIDs []uint
	for _, b := range blocks {
		blockIDs = append(blockIDs, b.ID)
		for _, c := range []*entity.Content{b.LeftContent, b.RightContent} {
			if c != nil && c.LanguageID == languageID {
				contentIDs = append(contentIDs, c.ID)
			}
		}
	}
	if err := repo.DeleteBlocks(ctx, blockIDs...); err != nil {
		return err
	}

	orphans := make([]uint, 0, len(contentIDs))
	for _, id := range contentIDs {
		referenced, err := repo.ContentReferenced(ctx, id)
		if err != nil {
			return err
		}
		if !referenced {
			orphans = append(orphans, id)
		}
	}
	return repo.DeleteContents(ctx, orphans...)
}
