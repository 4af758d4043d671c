package controller

import (
	"errors"
	"net/http"

	"museum-tour-server/domain/entity"
	domainErrors "museum-tour-server/domain/errors"
	"museum-tour-server/usecase"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// --- 请求结构定义 ---

// PageRequest 写入整页
type PageRequest struct {
	Title      string             `json:"title"`
	Content    []entity.PageBlock `json:"content"`
	LanguageID uint               `json:"language_id" binding:"required"`
}

// LanguageRequest 只带语言的请求（bootstrap / tts）
type LanguageRequest struct {
	LanguageID uint `json:"language_id" binding:"required"`
}

// AudioResponse 语音地址
type AudioResponse struct {
	AudioURL string `json:"audio_url"`
}

// FactSheetResponse 联网检索结果
type FactSheetResponse struct {
	ParentKind entity.ParentKind `json:"parent_kind"`
	ParentID   uint              `json:"parent_id"`
	FactSheet  interface{}       `json:"fact_sheet"`
}

// --- 控制器定义 ---

// PageController 地点 / 植物页面的 HTTP 控制器，一个实例服务一种父实体
type PageController struct {
	kind      entity.ParentKind
	pages     *usecase.ContentUseCase
	bootstrap *usecase.BootstrapUseCase
	speech    *usecase.SpeechUseCase
	log       zerolog.Logger
}

// NewPageController 创建 PageController 实例
func NewPageController(
	kind entity.ParentKind,
	pages *usecase.ContentUseCase,
	bootstrap *usecase.BootstrapUseCase,
	speech *usecase.SpeechUseCase,
	log zerolog.Logger,
) *PageController {
	return &PageController{
		kind:      kind,
		pages:     pages,
		bootstrap: bootstrap,
		speech:    speech,
		log:       log.With().Str("component", "page-controller").Str("kind", string(kind)).Logger(),
	}
}

func (pc *PageController) parent(c *gin.Context) (entity.ParentRef, bool) {
	id, ok := pathID(c)
	return entity.ParentRef{Kind: pc.kind, ID: id}, ok
}

// GetContent 读取页面
// GET /api/{locations|plants}/:id/content?language_id=&autofill=
// autofill=true 时页面为空会自动填充（联网检索 → 翻译 → 审核）；外部能力失败时仍返回当前页面
func (pc *PageController) GetContent(c *gin.Context) {
	parent, ok := pc.parent(c)
	if !ok {
		return
	}
	languageID, ok := queryLanguageID(c)
	if !ok {
		return
	}

	var (
		page *entity.Page
		err  error
	)
	if c.Query("autofill") == "true" {
		page, err = pc.bootstrap.EnsurePage(c.Request.Context(), parent, languageID)
		// 自动填充失败不影响读页面：记录后返回当前（可能为空的）页面
		if errors.Is(err, domainErrors.ErrCapabilityFailure) {
			pc.log.Warn().Err(err).Str("page", parent.Key(languageID)).Msg("[API] ⚠️ 自动填充失败，返回当前页面")
			page, err = pc.pages.Snapshot(c.Request.Context(), parent, languageID)
		}
	} else {
		page, err = pc.pages.Snapshot(c.Request.Context(), parent, languageID)
	}
	if err != nil {
		respondError(c, pc.log, err)
		return
	}
	respondOK(c, http.StatusOK, page)
}

// CreateContent 重建某语言的整页
// POST /api/{locations|plants}/:id/content
func (pc *PageController) CreateContent(c *gin.Context) {
	parent, ok := pc.parent(c)
	if !ok {
		return
	}
	var req PageRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.Title == "" || req.Content == nil {
		respondFail(c, http.StatusBadRequest, "title, content array, and language_id are required")
		return
	}

	if err := pc.pages.CreatePage(c.Request.Context(), parent, req.LanguageID, req.Title, req.Content); err != nil {
		respondError(c, pc.log, err)
		return
	}
	respondOK(c, http.StatusCreated, MessageResponse{Message: "Content created successfully"})
}

// UpsertContent 按位置同步整页（保留未变化的内容条目）
// PUT /api/{locations|plants}/:id/content
func (pc *PageController) UpsertContent(c *gin.Context) {
	parent, ok := pc.parent(c)
	if !ok {
		return
	}
	var req PageRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := pc.pages.UpsertPage(c.Request.Context(), parent, req.LanguageID, req.Title, req.Content); err != nil {
		respondError(c, pc.log, err)
		return
	}
	respondOK(c, http.StatusOK, MessageResponse{Message: "Content updated successfully"})
}

// PatchContent 对页面应用 RFC 6902 JSON Patch
// PATCH /api/{locations|plants}/:id/content?language_id=
func (pc *PageController) PatchContent(c *gin.Context) {
	parent, ok := pc.parent(c)
	if !ok {
		return
	}
	languageID, ok := queryLanguageID(c)
	if !ok {
		return
	}
	patch, err := c.GetRawData()
	if err != nil || len(patch) == 0 {
		respondFail(c, http.StatusBadRequest, "JSON Patch body is required")
		return
	}

	page, err := pc.pages.PatchPage(c.Request.Context(), parent, languageID, patch)
	if err != nil {
		respondError(c, pc.log, err)
		return
	}
	respondOK(c, http.StatusOK, page)
}

// Bootstrap 页面为空时自动填充，已有内容则原样返回
// POST /api/{locations|plants}/:id/bootstrap
func (pc *PageController) Bootstrap(c *gin.Context) {
	parent, ok := pc.parent(c)
	if !ok {
		return
	}
	var req LanguageRequest
	if !bindJSON(c, &req) {
		return
	}

	page, err := pc.bootstrap.EnsurePage(c.Request.Context(), parent, req.LanguageID)
	if err != nil {
		respondError(c, pc.log, err)
		return
	}
	respondOK(c, http.StatusOK, page)
}

// Synthesize 生成页面朗读音频并写入语音块
// POST /api/{locations|plants}/:id/tts
func (pc *PageController) Synthesize(c *gin.Context) {
	parent, ok := pc.parent(c)
	if !ok {
		return
	}
	var req LanguageRequest
	if !bindJSON(c, &req) {
		return
	}

	url, err := pc.speech.SynthesizeAudio(c.Request.Context(), parent, req.LanguageID)
	if err != nil {
		respondError(c, pc.log, err)
		return
	}
	respondOK(c, http.StatusOK, AudioResponse{AudioURL: url})
}

// Audio 读取已生成的音频地址
// GET /api/{locations|plants}/:id/audio?language_id=
func (pc *PageController) Audio(c *gin.Context) {
	parent, ok := pc.parent(c)
	if !ok {
		return
	}
	languageID, ok := queryLanguageID(c)
	if !ok {
		return
	}

	url, err := pc.speech.AudioURL(c.Request.Context(), parent, languageID)
	if err != nil {
		respondError(c, pc.log, err)
		return
	}
	respondOK(c, http.StatusOK, AudioResponse{AudioURL: url})
}

// WebSearch 联网检索父实体的资料（不落页面）
// GET /api/{locations|plants}/:id/websearch
func (pc *PageController) WebSearch(c *gin.Context) {
	parent, ok := pc.parent(c)
	if !ok {
		return
	}

	facts, err := pc.bootstrap.LookupFacts(c.Request.Context(), parent)
	if err != nil {
		respondError(c, pc.log, err)
		return
	}
	respondOK(c, http.StatusOK, FactSheetResponse{ParentKind: parent.Kind, ParentID: parent.ID, FactSheet: facts})
}
