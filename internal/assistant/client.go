// Package assistant 用 OpenAI 实现所有 AI 能力：联网检索、翻译、审核、语音合成。
// 每次调用都有超时，并经过同一个熔断器；失败统一包装成 CapabilityError。
package assistant

import (
	"context"
	"errors"
	"time"

	domainErrors "museum-tour-server/domain/errors"

	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
	"github.com/sony/gobreaker"
)

// ErrNotConfigured 没有配置 OPENAI_API_KEY
var ErrNotConfigured = errors.New("OPENAI_API_KEY environment variable is not set")

// Config OpenAI 客户端配置
type Config struct {
	APIKey          string
	BaseURL         string // 为空时使用官方地址
	ChatModel       string
	ModerationModel string
	TTSModel        string
	Voice           string
	Timeout         time.Duration // 单次调用超时

	// 熔断：连续失败 TripAfter 次后打开，OpenFor 之后半开试探
	TripAfter uint32
	OpenFor   time.Duration
}

func (c Config) withDefaults() Config {
	if c.ChatModel == "" {
		c.ChatModel = "gpt-5.1"
	}
	if c.ModerationModel == "" {
		c.ModerationModel = "omni-moderation-latest"
	}
	if c.TTSModel == "" {
		c.TTSModel = string(openai.TTSModel1)
	}
	if c.Voice == "" {
		c.Voice = string(openai.VoiceEcho)
	}
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
	if c.TripAfter == 0 {
		c.TripAfter = 5
	}
	if c.OpenFor <= 0 {
		c.OpenFor = 30 * time.Second
	}
	return c
}

// Client 实现 capability.WebSearcher / Translator / Moderator / SpeechSynthesizer
type Client struct {
	api     *openai.Client
	cfg     Config
	breaker *gobreaker.CircuitBreaker
	log     zerolog.Logger
}

// New 创建客户端；APIKey 为空时仍返回实例，但每次调用都失败（与原先“缺 key 返回 500”一致）
func New(cfg Config, log zerolog.Logger) *Client {
	cfg = cfg.withDefaults()

	apiCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		apiCfg.BaseURL = cfg.BaseURL
	}

	c := &Client{
		api: openai.NewClientWithConfig(apiCfg),
		cfg: cfg,
		log: log.With().Str("component", "assistant").Logger(),
	}
	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "openai",
		Timeout: cfg.OpenFor,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.TripAfter
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			c.log.Warn().Str("from", from.String()).Str("to", to.String()).Msg("[Assistant] ⚡ 熔断器状态变化")
		},
	})
	return c
}

// Configured 是否配置了 API key
func (c *Client) Configured() bool {
	return c.cfg.APIKey != ""
}

// call 统一处理：缺 key、超时、熔断、错误包装
func (c *Client) call(ctx context.Context, capability string, fn func(ctx context.Context) (interface{}, error)) (interface{}, error) {
	if !c.Configured() {
		return nil, domainErrors.Capability(capability, ErrNotConfigured)
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	start := time.Now()
	out, err := c.breaker.Execute(func() (interface{}, error) {
		return fn(ctx)
	})
	if err != nil {
		c.log.Warn().Err(err).Str("capability", capability).Dur("elapsed", time.Since(start)).Msg("[Assistant] ❌ 调用失败")
		return nil, domainErrors.Capability(capability, err)
	}

	c.log.Debug().Str("capability", capability).Dur("elapsed", time.Since(start)).Msg("[Assistant] ✅ 调用完成")
	return out, nil
}

// chat 发送单条 user 消息，返回第一条回复
func (c *Client) chat(ctx context.Context, prompt string) (string, error) {
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.cfg.ChatModel,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", errors.New("no response from OpenAI")
	}
	return resp.Choices[0].Message.Content, nil
}
