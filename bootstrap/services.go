package bootstrap

import (
	"context"

	"museum-tour-server/domain/capability"
	"museum-tour-server/internal/assistant"
	"museum-tour-server/internal/blob"

	"github.com/rs/zerolog"
)

// NewAssistant 创建 OpenAI 客户端
func NewAssistant(env *Env, log zerolog.Logger) *assistant.Client {
	return assistant.New(env.AssistantConfig(), log)
}

// AssistantConfig OpenAI 客户端配置
func (e *Env) AssistantConfig() assistant.Config {
	return assistant.Config{
		APIKey:          e.OpenAIKey,
		BaseURL:         e.OpenAIBaseURL,
		ChatModel:       e.ChatModel,
		ModerationModel: e.ModerationModel,
		TTSModel:        e.TTSModel,
		Voice:           e.TTSVoice,
		Timeout:         e.AITimeout,
		TripAfter:       uint32(e.AIBreakerTrip),
		OpenFor:         e.AIBreakerOpen,
	}
}

// NewBlobStore 按 BLOB_BACKEND 选择音频存储，失败直接退出
func NewBlobStore(ctx context.Context, env *Env, log zerolog.Logger) capability.BlobStore {
	store, err := blob.New(ctx, env.BlobConfig())
	if err != nil {
		log.Fatal().Err(err).Str("backend", env.BlobBackend).Msg("❌ 音频存储初始化失败")
	}

	log.Info().Str("backend", env.BlobBackend).Msg("✅ 音频存储已就绪")
	return store
}

// BlobConfig 存储配置
func (e *Env) BlobConfig() blob.Config {
	return blob.Config{
		Backend:     e.BlobBackend,
		Dir:         e.BlobDir,
		PublicURL:   e.BlobPublicURL,
		S3Bucket:    e.S3Bucket,
		S3Region:    e.S3Region,
		S3Endpoint:  e.S3Endpoint,
		S3AccessKey: e.S3AccessKey,
		S3SecretKey: e.S3SecretKey,
		S3Prefix:    e.S3Prefix,
	}
}
