// Package capability 定义核心逻辑依赖的外部能力契约。
// 具体实现见 internal/assistant（OpenAI）与 internal/blob（对象存储）。
package capability

import (
	"context"

	"museum-tour-server/domain/entity"
)

// Subject 联网检索的对象
type Subject struct {
	Kind           entity.ParentKind
	Name           string
	ScientificName string // 仅植物有
	Label          string // 仅地点有
}

// FactSheet 联网检索返回的结构化信息
// 植物：产地 / 生境 / 形态特征 / 趣闻；地点沿用同样四个字段（来历 / 环境 / 看点 / 趣闻）
type FactSheet struct {
	Origin           string `json:"origin"`
	Habitat          string `json:"habitat"`
	Characteristics  string `json:"characteristics"`
	InterestingFacts string `json:"interesting_facts"`
}

// Blocks 把检索结果拼成 1–2 个文本块：产地|生境，特征|趣闻；两侧都为空的块丢弃
func (f *FactSheet) Blocks() []entity.PageBlock {
	if f == nil {
		return nil
	}
	blocks := make([]entity.PageBlock, 0, 2)
	if f.Origin != "" || f.Habitat != "" {
		blocks = append(blocks, entity.PageBlock{
			LeftType: entity.KindText, LeftContent: f.Origin,
			RightType: entity.KindText, RightContent: f.Habitat,
		})
	}
	if f.Characteristics != "" || f.InterestingFacts != "" {
		blocks = append(blocks, entity.PageBlock{
			LeftType: entity.KindText, LeftContent: f.Characteristics,
			RightType: entity.KindText, RightContent: f.InterestingFacts,
		})
	}
	return blocks
}

// WebSearcher 联网检索。结果无法解析时返回 (nil, nil)
type WebSearcher interface {
	Lookup(ctx context.Context, subject Subject) (*FactSheet, error)
}

// Translator 翻译，语言参数为语言的英文名（例如 "English"、"Spanish"）
type Translator interface {
	Translate(ctx context.Context, text, sourceLanguage, targetLanguage string) (string, error)
}

// Moderator 内容审核，返回 true 表示安全
type Moderator interface {
	IsSafe(ctx context.Context, text string) (bool, error)
}

// SpeechRequest 语音合成参数，Voice / Format 为空时使用默认值
type SpeechRequest struct {
	Text   string
	Voice  string
	Format string
}

// SpeechSynthesizer 文本转语音
type SpeechSynthesizer interface {
	Synthesize(ctx context.Context, req SpeechRequest) ([]byte, error)
}

// BlobStore 存字节、返回可访问的 URL；同名覆盖
type BlobStore interface {
	Put(ctx context.Context, name string, data []byte, contentType string) (string, error)
}
