package assistant

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

var translationTag = regexp.MustCompile(`(?s)<translation>(.*?)</translation>`)

// ErrNoTranslation 回复里没有 <translation> 标签
var ErrNoTranslation = errors.New("translation tags not found in response")

// Translate 翻译一段文本；语言参数为英文名
func (c *Client) Translate(ctx context.Context, text, sourceLanguage, targetLanguage string) (string, error) {
	prompt := fmt.Sprintf(`Translate the following text from %s to %s. Wrap your translation in <translation> and </translation> tags. Only return the translation, nothing else.

Text to translate:
%s`, sourceLanguage, targetLanguage, text)

	out, err := c.call(ctx, "translate", func(ctx context.Context) (interface{}, error) {
		reply, err := c.chat(ctx, prompt)
		if err != nil {
			return nil, err
		}
		m := translationTag.FindStringSubmatch(reply)
		if m == nil || strings.TrimSpace(m[1]) == "" {
			return nil, fmt.Errorf("%w: %q", ErrNoTranslation, reply)
		}
		return strings.TrimSpace(m[1]), nil
	})
	if err != nil {
		return "", err
	}
	return out.(string), nil
}

// Moderate 调用审核接口，返回原始结果（/api/moderate 直接透传）
func (c *Client) Moderate(ctx context.Context, input string) (*openai.ModerationResponse, error) {
	out, err := c.call(ctx, "moderation", func(ctx context.Context) (interface{}, error) {
		resp, err := c.api.Moderations(ctx, openai.ModerationRequest{
			Input: input,
			Model: c.cfg.ModerationModel,
		})
		if err != nil {
			return nil, err
		}
		return &resp, nil
	})
	if err != nil {
		return nil, err
	}
	return out.(*openai.ModerationResponse), nil
}

// IsSafe 任意一条结果被标记即视为不安全
func (c *Client) IsSafe(ctx context.Context, text string) (bool, error) {
	resp, err := c.Moderate(ctx, text)
	if err != nil {
		return false, err
	}
	if len(resp.Results) == 0 {
		return false, errors.New("moderation returned no results")
	}
	for _, r := range resp.Results {
		if r.Flagged {
			return false, nil
		}
	}
	return true, nil
}
