package controller

import (
	"context"
	"net/http"

	"museum-tour-server/domain/capability"
	"museum-tour-server/internal/assistant"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
)

// Assistant AI 代理接口需要的能力
type Assistant interface {
	capability.Translator
	capability.SpeechSynthesizer
	Moderate(ctx context.Context, input string) (*openai.ModerationResponse, error)
}

// TranslateRequest POST /api/translate
type TranslateRequest struct {
	Text           string `json:"text" binding:"required"`
	SourceLanguage string `json:"source_language" binding:"required"`
	TargetLanguage string `json:"target_language" binding:"required"`
}

// TranslateResponse 翻译结果
type TranslateResponse struct {
	Translation string `json:"translation"`
}

// ModerateRequest POST /api/moderate
type ModerateRequest struct {
	Input string `json:"input" binding:"required"`
}

// AudioRequest POST /api/audio
type AudioRequest struct {
	Prompt string `json:"prompt" binding:"required"`
	Voice  string `json:"voice" binding:"omitempty,oneof=alloy echo fable onyx nova shimmer"`
	Format string `json:"format" binding:"omitempty,oneof=wav mp3 opus aac flac"`
}

// AIController 直接代理 AI 能力，供编辑器里的“翻译 / 审核 / 试听”按钮使用
type AIController struct {
	ai  Assistant
	log zerolog.Logger
}

func NewAIController(ai Assistant, log zerolog.Logger) *AIController {
	return &AIController{ai: ai, log: log.With().Str("component", "ai-controller").Logger()}
}

// Translate POST /api/translate
func (ac *AIController) Translate(c *gin.Context) {
	var req TranslateRequest
	if !bindJSON(c, &req) {
		return
	}
	out, err := ac.ai.Translate(c.Request.Context(), req.Text, req.SourceLanguage, req.TargetLanguage)
	if err != nil {
		respondError(c, ac.log, err)
		return
	}
	respondOK(c, http.StatusOK, TranslateResponse{Translation: out})
}

// Moderate POST /api/moderate，原样返回审核结果
func (ac *AIController) Moderate(c *gin.Context) {
	var req ModerateRequest
	if !bindJSON(c, &req) {
		return
	}
	resp, err := ac.ai.Moderate(c.Request.Context(), req.Input)
	if err != nil {
		respondError(c, ac.log, err)
		return
	}
	respondOK(c, http.StatusOK, resp)
}

// Audio POST /api/audio，直接返回音频字节
func (ac *AIController) Audio(c *gin.Context) {
	var req AudioRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.Voice == "" {
		req.Voice = "alloy"
	}
	if req.Format == "" {
		req.Format = "mp3"
	}

	audio, err := ac.ai.Synthesize(c.Request.Context(), capability.SpeechRequest{
		Text:   req.Prompt,
		Voice:  req.Voice,
		Format: req.Format,
	})
	if err != nil {
		respondError(c, ac.log, err)
		return
	}

	ext, contentType := assistant.AudioFormat(req.Format)
	c.Header("Content-Disposition", `attachment; filename="audio.`+ext+`"`)
	c.Data(http.StatusOK, contentType, audio)
}
