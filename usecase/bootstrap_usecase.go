package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"museum-tour-server/domain/capability"
	"museum-tour-server/domain/entity"
	domainErrors "museum-tour-server/domain/errors"
	"museum-tour-server/domain/repository"

	"github.com/rs/zerolog"
	"github.com/sethvargo/go-retry"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// BootstrapConfig 自动填充参数
type BootstrapConfig struct {
	EnglishCode string        // 源语言代码，默认 "en"
	Attempts    int           // 单个字段翻译 + 审核的最多尝试次数，默认 3
	Backoff     time.Duration // 两次尝试之间的等待，默认 500ms
	Concurrency int           // 并发翻译的字段数，默认 4
}

func (c BootstrapConfig) withDefaults() BootstrapConfig {
	if c.EnglishCode == "" {
		c.EnglishCode = "en"
	}
	if c.Attempts < 1 {
		c.Attempts = 3
	}
	if c.Backoff <= 0 {
		c.Backoff = 500 * time.Millisecond
	}
	if c.Concurrency < 1 {
		c.Concurrency = 4
	}
	return c
}

// BootstrapUseCase 首次访问空页面时自动填充
//
// 流程：英文页面为空 → 联网检索生成英文页面 → 逐字段翻译 + 审核 → 写入目标语言
// ✅ 同一页面键的并发请求合并为一次填充（singleflight）
// ✅ 翻译 / 审核失败不致命，重试耗尽后回退为英文原文
type BootstrapUseCase struct {
	pages      *ContentUseCase
	parents    repository.ParentRepository
	languages  repository.LanguageRepository
	search     capability.WebSearcher
	translator capability.Translator
	moderator  capability.Moderator
	notifier   PageNotifier
	cfg        BootstrapConfig
	group      singleflight.Group
	log        zerolog.Logger
}

// NewBootstrapUseCase 构造函数
func NewBootstrapUseCase(
	pages *ContentUseCase,
	parents repository.ParentRepository,
	languages repository.LanguageRepository,
	search capability.WebSearcher,
	translator capability.Translator,
	moderator capability.Moderator,
	notifier PageNotifier,
	cfg BootstrapConfig,
	log zerolog.Logger,
) *BootstrapUseCase {
	if notifier == nil {
		notifier = noopNotifier{}
	}
	return &BootstrapUseCase{
		pages:      pages,
		parents:    parents,
		languages:  languages,
		search:     search,
		translator: translator,
		moderator:  moderator,
		notifier:   notifier,
		cfg:        cfg.withDefaults(),
		log:        log.With().Str("component", "bootstrap").Logger(),
	}
}

// EnsurePage 页面非空时直接返回，否则执行自动填充后返回
func (uc *BootstrapUseCase) EnsurePage(ctx context.Context, parent entity.ParentRef, languageID uint) (*entity.Page, error) {
	page, err := uc.pages.ReadPage(ctx, parent, languageID)
	if err != nil {
		return nil, err
	}
	if !page.IsEmpty() {
		return page, nil
	}

	key := parent.Key(languageID)
	// 填充结果由所有等待者共享，不随单个请求取消而中断
	detached := context.WithoutCancel(ctx)
	v, err, shared := uc.group.Do(key, func() (interface{}, error) {
		return uc.bootstrap(detached, parent, languageID)
	})
	if shared {
		uc.log.Debug().Str("page", key).Msg("[Bootstrap] 🔗 复用进行中的填充")
	}
	if err != nil {
		return nil, err
	}
	return v.(*entity.Page), nil
}

// PrefillReport 批量填充结果
type PrefillReport struct {
	Filled  int    `json:"filled"`
	Skipped int    `json:"skipped"` // 已有内容
	Failed  []uint `json:"failed"`
}

// Prefill 依次为某类父实体的全部记录执行 EnsurePage
// 单个失败只记录，不中断；ctx 取消时立即返回
func (uc *BootstrapUseCase) Prefill(ctx context.Context, kind entity.ParentKind, languageID uint) (*PrefillReport, error) {
	ids, err := uc.parents.IDs(ctx, kind)
	if err != nil {
		return nil, err
	}

	report := &PrefillReport{}
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		parent := entity.ParentRef{Kind: kind, ID: id}
		page, err := uc.pages.ReadPage(ctx, parent, languageID)
		if err != nil {
			return report, err
		}
		if !page.IsEmpty() {
			report.Skipped++
			continue
		}
		if _, err := uc.EnsurePage(ctx, parent, languageID); err != nil {
			uc.log.Warn().Err(err).Str("parent", parent.String()).Msg("[Bootstrap] ⚠️ 预填充失败，跳过")
			report.Failed = append(report.Failed, id)
			continue
		}
		report.Filled++
	}
	return report, nil
}

func (uc *BootstrapUseCase) bootstrap(ctx context.Context, parent entity.ParentRef, languageID uint) (*entity.Page, error) {
	key := parent.Key(languageID)
	started := time.Now()
	uc.log.Info().Str("page", key).Msg("[Bootstrap] 🚀 开始自动填充")
	uc.notifier.NotifyPage(parent, languageID, EventBootstrapStarted, nil)

	page, err := uc.fill(ctx, parent, languageID)
	if err != nil {
		uc.log.Error().Err(err).Str("page", key).Msg("[Bootstrap] ❌ 自动填充失败")
		uc.notifier.NotifyPage(parent, languageID, EventBootstrapFailed, map[string]string{"error": err.Error()})
		return nil, err
	}

	uc.log.Info().Str("page", key).Dur("took", time.Since(started)).Msg("[Bootstrap] ✅ 自动填充完成")
	return page, nil
}

func (uc *BootstrapUseCase) fill(ctx context.Context, parent entity.ParentRef, languageID uint) (*entity.Page, error) {
	if err := uc.pages.checkTarget(ctx, parent, languageID); err != nil {
		return nil, err
	}
	target, err := uc.languages.Get(ctx, languageID)
	if err != nil {
		return nil, err
	}
	english, err := uc.languages.GetByCode(ctx, uc.cfg.EnglishCode)
	if err != nil {
		return nil, fmt.Errorf("source language %q: %w", uc.cfg.EnglishCode, err)
	}

	// 等锁期间可能已被其他实例填充
	current, err := uc.pages.ReadPage(ctx, parent, languageID)
	if err != nil {
		return nil, err
	}
	if !current.IsEmpty() {
		return current, nil
	}

	source, err := uc.pages.ReadPage(ctx, parent, english.ID)
	if err != nil {
		return nil, err
	}
	if source.IsEmpty() {
		if source, err = uc.seedEnglish(ctx, parent, english.ID); err != nil {
			return nil, err
		}
	}
	if languageID == english.ID {
		return source, nil
	}

	translated := uc.translatePage(ctx, source, english.Name, target.Name)
	if err := uc.pages.UpsertPage(ctx, parent, languageID, translated.Title, translated.Content); err != nil {
		return nil, err
	}
	return translated, nil
}

// seedEnglish 联网检索生成英文页面，标题为父实体名称
func (uc *BootstrapUseCase) seedEnglish(ctx context.Context, parent entity.ParentRef, englishID uint) (*entity.Page, error) {
	facts, subject, err := uc.lookup(ctx, parent)
	if err != nil {
		return nil, err
	}

	blocks := facts.Blocks()
	if err := uc.pages.UpsertPage(ctx, parent, englishID, subject.Name, blocks); err != nil {
		return nil, err
	}
	return &entity.Page{Title: subject.Name, Content: blocks}, nil
}

// LookupFacts 联网检索父实体资料并缓存到父实体上，不写页面
func (uc *BootstrapUseCase) LookupFacts(ctx context.Context, parent entity.ParentRef) (*capability.FactSheet, error) {
	facts, _, err := uc.lookup(ctx, parent)
	return facts, err
}

func (uc *BootstrapUseCase) lookup(ctx context.Context, parent entity.ParentRef) (*capability.FactSheet, *capability.Subject, error) {
	subject, err := uc.parents.Subject(ctx, parent)
	if err != nil {
		return nil, nil, err
	}

	facts, err := uc.search.Lookup(ctx, *subject)
	if err != nil {
		return nil, nil, domainErrors.Capability("websearch", err)
	}
	if len(facts.Blocks()) == 0 {
		return nil, nil, domainErrors.Capability("websearch",
			fmt.Errorf("%w: no usable record for %q", domainErrors.ErrNoContent, subject.Name))
	}

	if err := uc.parents.SaveFactSheet(ctx, parent, facts); err != nil {
		uc.log.Warn().Err(err).Str("parent", parent.String()).Msg("[Bootstrap] ⚠️ 检索结果缓存失败")
	}
	return facts, subject, nil
}

// translatePage 标题与所有文本侧并发翻译，图片侧原样保留
// 每个字段写入自己的槽位，结果顺序与输入一致
func (uc *BootstrapUseCase) translatePage(ctx context.Context, source *entity.Page, from, to string) *entity.Page {
	out := &entity.Page{
		Title:   source.Title,
		Content: append([]entity.PageBlock{}, source.Content...),
	}

	fields := []*string{&out.Title}
	for i := range out.Content {
		b := &out.Content[i]
		if b.LeftType == entity.KindText {
			fields = append(fields, &b.LeftContent)
		}
		if b.RightType == entity.KindText {
			fields = append(fields, &b.RightContent)
		}
	}

	var g errgroup.Group
	g.SetLimit(uc.cfg.Concurrency)
	for _, field := range fields {
		field := field
		g.Go(func() error {
			*field = uc.translateField(ctx, *field, from, to)
			return nil
		})
	}
	_ = g.Wait()
	return out
}

// translateField 翻译 + 审核，失败按固定间隔重试；重试耗尽返回原文
func (uc *BootstrapUseCase) translateField(ctx context.Context, text, from, to string) string {
	if strings.TrimSpace(text) == "" {
		return text
	}

	var translated string
	attempt := 0
	backoff := retry.WithMaxRetries(uint64(uc.cfg.Attempts-1), retry.NewConstant(uc.cfg.Backoff))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		out, err := uc.translator.Translate(ctx, text, from, to)
		if err != nil {
			uc.log.Warn().Err(err).Int("attempt", attempt).Msg("[Bootstrap] ⚠️ 翻译失败")
			return retry.RetryableError(domainErrors.Capability("translate", err))
		}

		safe, err := uc.moderator.IsSafe(ctx, out)
		if err != nil {
			uc.log.Warn().Err(err).Int("attempt", attempt).Msg("[Bootstrap] ⚠️ 审核调用失败")
			return retry.RetryableError(domainErrors.Capability("moderate", err))
		}
		if !safe {
			uc.log.Warn().Int("attempt", attempt).Msg("[Bootstrap] 🚫 译文未通过审核")
			return retry.RetryableError(domainErrors.ErrModerationRejected)
		}

		translated = out
		return nil
	})
	if err != nil {
		uc.log.Warn().Err(err).Str("to", to).Msg("[Bootstrap] ↩️ 回退为原文")
		return text
	}
	return translated
}
