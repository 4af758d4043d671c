package bootstrap

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Env 环境变量配置结构
type Env struct {
	DatabaseURL string   // 数据库连接字符串
	DBDriver    string   // postgres | mysql
	Port        string   // 服务端口
	LogLevel    string   // debug | info | warn | error
	LogFormat   string   // json | console
	CORSOrigins []string // 允许的前端地址

	// OpenAI
	OpenAIKey       string
	OpenAIBaseURL   string
	ChatModel       string
	ModerationModel string
	TTSModel        string
	TTSVoice        string
	AITimeout       time.Duration
	AIBreakerTrip   int           // 连续失败多少次后熔断
	AIBreakerOpen   time.Duration // 熔断持续时间

	// 自动填充
	EnglishCode          string
	TranslateAttempts    int
	TranslateBackoff     time.Duration
	TranslateConcurrency int

	// 音频存储
	BlobBackend   string
	BlobDir       string
	BlobPublicURL string
	S3Bucket      string
	S3Region      string
	S3Endpoint    string
	S3AccessKey   string
	S3SecretKey   string
	S3Prefix      string
}

// LoadEnv 加载环境变量
// 开发环境从 .env 文件加载，生产环境从系统环境变量读取
func LoadEnv() *Env {
	// 尝试加载 .env 文件（生产环境可能没有）
	if err := godotenv.Load(); err != nil {
		log.Info().Msg("⚠️ .env 文件未找到，将使用系统环境变量")
	}

	env := &Env{
		DatabaseURL: os.Getenv("DATABASE_URL"),
		DBDriver:    getString("DB_DRIVER", "postgres"),
		Port:        getString("PORT", "8080"),
		LogLevel:    getString("LOG_LEVEL", "info"),
		LogFormat:   getString("LOG_FORMAT", "json"),
		CORSOrigins: getList("CORS_ORIGINS", []string{"http://localhost:3000", "http://localhost:5173"}),

		OpenAIKey:       os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL:   os.Getenv("OPENAI_BASE_URL"),
		ChatModel:       getString("OPENAI_CHAT_MODEL", "gpt-5.1"),
		ModerationModel: getString("OPENAI_MODERATION_MODEL", "omni-moderation-latest"),
		TTSModel:        getString("OPENAI_TTS_MODEL", "tts-1"),
		TTSVoice:        getString("OPENAI_TTS_VOICE", "echo"),
		AITimeout:       getDuration("AI_TIMEOUT", 30*time.Second),
		AIBreakerTrip:   getInt("AI_BREAKER_TRIP", 5),
		AIBreakerOpen:   getDuration("AI_BREAKER_OPEN", 30*time.Second),

		EnglishCode:          getString("ENGLISH_CODE", "en"),
		TranslateAttempts:    getInt("TRANSLATE_ATTEMPTS", 3),
		TranslateBackoff:     getDuration("TRANSLATE_BACKOFF", 500*time.Millisecond),
		TranslateConcurrency: getInt("TRANSLATE_CONCURRENCY", 4),

		BlobBackend:   getString("BLOB_BACKEND", "filesystem"),
		BlobDir:       getString("BLOB_DIR", "./public/audio"),
		BlobPublicURL: getString("BLOB_PUBLIC_URL", "/audio"),
		S3Bucket:      os.Getenv("S3_BUCKET"),
		S3Region:      os.Getenv("S3_REGION"),
		S3Endpoint:    os.Getenv("S3_ENDPOINT"),
		S3AccessKey:   os.Getenv("S3_ACCESS_KEY"),
		S3SecretKey:   os.Getenv("S3_SECRET_KEY"),
		S3Prefix:      getString("S3_PREFIX", "audio"),
	}

	// 必需变量检查
	if env.DatabaseURL == "" {
		log.Fatal().Msg("❌ 缺少必需环境变量: DATABASE_URL")
	}
	if env.OpenAIKey == "" {
		log.Warn().Msg("⚠️ 未设置 OPENAI_API_KEY，AI 相关接口将返回 502")
	}

	log.Info().Str("port", env.Port).Str("db_driver", env.DBDriver).Str("blob_backend", env.BlobBackend).Msg("✅ 环境变量加载完成")
	return env
}

func getString(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		log.Warn().Str("key", key).Str("value", v).Msg("⚠️ 环境变量不是正整数，使用默认值")
		return def
	}
	return n
}

func getDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		log.Warn().Str("key", key).Str("value", v).Msg("⚠️ 环境变量不是合法时长，使用默认值")
		return def
	}
	return d
}

func getList(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
