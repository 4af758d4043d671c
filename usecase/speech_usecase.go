package usecase

import (
	"context"
	"fmt"
	"strings"

	"museum-tour-server/domain/capability"
	"museum-tour-server/domain/entity"
	domainErrors "museum-tour-server/domain/errors"
	"museum-tour-server/domain/repository"

	"github.com/rs/zerolog"
)

// SpeechUseCase 把页面朗读成音频，并以语音哨兵块（position 99）记录音频地址
type SpeechUseCase struct {
	pages     *ContentUseCase
	contents  repository.ContentRepository
	languages repository.LanguageRepository
	tts       capability.SpeechSynthesizer
	blobs     capability.BlobStore
	notifier  PageNotifier
	log       zerolog.Logger
}

// NewSpeechUseCase 构造函数
func NewSpeechUseCase(
	pages *ContentUseCase,
	contents repository.ContentRepository,
	languages repository.LanguageRepository,
	tts capability.SpeechSynthesizer,
	blobs capability.BlobStore,
	notifier PageNotifier,
	log zerolog.Logger,
) *SpeechUseCase {
	if notifier == nil {
		notifier = noopNotifier{}
	}
	return &SpeechUseCase{
		pages:     pages,
		contents:  contents,
		languages: languages,
		tts:       tts,
		blobs:     blobs,
		notifier:  notifier,
		log:       log.With().Str("component", "speech").Logger(),
	}
}

// ComposeUtterance 朗读顺序：标题，然后每个块先左后右；只读非空文本侧，以 ". " 连接
func ComposeUtterance(page *entity.Page) string {
	if page == nil {
		return ""
	}
	parts := make([]string, 0, 1+2*len(page.Content))
	add := func(kind entity.BlockKind, text string) {
		if kind != entity.KindText {
			return
		}
		if text = strings.TrimSpace(text); text != "" {
			parts = append(parts, text)
		}
	}

	add(entity.KindText, page.Title)
	for _, b := range page.Content {
		add(b.LeftType, b.LeftContent)
		add(b.RightType, b.RightContent)
	}
	return strings.Join(parts, ". ")
}

// AudioFileName 同一页面的音频使用固定文件名，重新生成时覆盖
func AudioFileName(parent entity.ParentRef, languageCode string) string {
	return fmt.Sprintf("%s-%d-%s.mp3", parent.Kind, parent.ID, languageCode)
}

// SynthesizeAudio 合成音频、上传，并替换该语言的语音哨兵块，返回音频 URL
func (uc *SpeechUseCase) SynthesizeAudio(ctx context.Context, parent entity.ParentRef, languageID uint) (string, error) {
	if err := uc.pages.checkTarget(ctx, parent, languageID); err != nil {
		return "", err
	}
	lang, err := uc.languages.Get(ctx, languageID)
	if err != nil {
		return "", err
	}

	page, err := uc.pages.ReadPage(ctx, parent, languageID)
	if err != nil {
		return "", err
	}
	text := ComposeUtterance(page)
	if text == "" {
		return "", fmt.Errorf("page %s has nothing to read: %w", parent.Key(languageID), domainErrors.ErrNoContent)
	}

	audio, err := uc.tts.Synthesize(ctx, capability.SpeechRequest{Text: text})
	if err != nil {
		return "", domainErrors.Capability("tts", err)
	}
	url, err := uc.blobs.Put(ctx, AudioFileName(parent, lang.Code), audio, "audio/mpeg")
	if err != nil {
		return "", domainErrors.Capability("blob", err)
	}

	err = uc.contents.Transaction(ctx, func(repo repository.ContentRepository) error {
		return replaceAudioBlock(ctx, repo, parent, languageID, url)
	})
	if err != nil {
		return "", fmt.Errorf("record audio for %s: %w", parent.Key(languageID), err)
	}

	uc.log.Info().Str("page", parent.Key(languageID)).Str("url", url).Int("bytes", len(audio)).Msg("[Speech] 🔊 语音已生成")
	uc.notifier.NotifyPage(parent, languageID, EventAudioUpdated, map[string]string{"url": url})
	return url, nil
}

// AudioURL 当前语音哨兵块记录的音频地址，没有时返回 NotFound
func (uc *SpeechUseCase) AudioURL(ctx context.Context, parent entity.ParentRef, languageID uint) (string, error) {
	blocks, err := uc.contents.ListBlocksAt(ctx, parent, languageID, entity.AudioPosition)
	if err != nil {
		return "", err
	}
	for _, b := range blocks {
		if b.LeftContent != nil && b.LeftContent.IsURL {
			return b.LeftContent.Body, nil
		}
	}
	return "", domainErrors.NotFound("audio", parent.Key(languageID))
}

// replaceAudioBlock 删除旧的哨兵块及其内容，再写入新的
// 左侧为音频 URL，右侧为空占位
func replaceAudioBlock(ctx context.Context, repo repository.ContentRepository, parent entity.ParentRef, languageID uint, url string) error {
	old, err := repo.ListBlocksAt(ctx, parent, languageID, entity.AudioPosition)
	if err != nil {
		return err
	}
	if err := deleteBlocksWithContents(ctx, repo, old, languageID); err != nil {
		return err
	}

	w := &pageWriter{repo: repo, parent: parent, languageID: languageID}
	left, err := w.newContent(ctx, url, true)
	if err != nil {
		return err
	}
	right, err := w.newContent(ctx, "", false)
	if err != nil {
		return err
	}
	return repo.CreateBlock(ctx, w.newBlock(left.ID, right.ID, entity.IntPtr(entity.AudioPosition)))
}
