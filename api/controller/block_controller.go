package controller

import (
	"net/http"

	"museum-tour-server/domain/entity"
	"museum-tour-server/usecase"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// ContentBody /api/contents，字段可选；更新时与现有记录合并
type ContentBody struct {
	Body       *string `json:"content"`
	IsURL      *bool   `json:"is_url"`
	LanguageID *uint   `json:"language_id" binding:"omitempty,gt=0"`
}

// BlockBody /api/blocks
// content_id_left / content_id_right / position 允许显式传 null，
// 所以用 optional 包一层区分“没传”和“传了 null”
type BlockBody struct {
	ParentKind     *entity.ParentKind `json:"parent_kind"`
	ParentID       *uint              `json:"parent_id" binding:"omitempty,gt=0"`
	LanguageID     *uint              `json:"language_id" binding:"omitempty,gt=0"`
	LeftContentID  optional[uint]     `json:"content_id_left"`
	RightContentID optional[uint]     `json:"content_id_right"`
	Position       optional[int]      `json:"position"`
}

// BlockController 内容条目与块的底层管理接口（编辑器之外的直接维护）
type BlockController struct {
	uc  *usecase.BlockUseCase
	log zerolog.Logger
}

func NewBlockController(uc *usecase.BlockUseCase, log zerolog.Logger) *BlockController {
	return &BlockController{uc: uc, log: log.With().Str("component", "block-controller").Logger()}
}

// ================= contents =================

// GetContent GET /api/contents/:id
func (bc *BlockController) GetContent(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	content, err := bc.uc.GetContent(c.Request.Context(), id)
	if err != nil {
		respondError(c, bc.log, err)
		return
	}
	respondOK(c, http.StatusOK, content)
}

// CreateContent POST /api/contents
func (bc *BlockController) CreateContent(c *gin.Context) {
	var req ContentBody
	if !bindJSON(c, &req) {
		return
	}
	if req.Body == nil || req.IsURL == nil || req.LanguageID == nil {
		respondFail(c, http.StatusBadRequest, "Validation error: content, is_url and language_id are required")
		return
	}

	content := &entity.Content{Body: *req.Body, IsURL: *req.IsURL, LanguageID: *req.LanguageID}
	if err := bc.uc.CreateContent(c.Request.Context(), content); err != nil {
		respondError(c, bc.log, err)
		return
	}
	respondOK(c, http.StatusCreated, content)
}

// UpdateContent PUT /api/contents/:id
func (bc *BlockController) UpdateContent(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req ContentBody
	if !bindJSON(c, &req) {
		return
	}

	current, err := bc.uc.GetContent(c.Request.Context(), id)
	if err != nil {
		respondError(c, bc.log, err)
		return
	}
	next := *current
	if req.Body != nil {
		next.Body = *req.Body
	}
	if req.IsURL != nil {
		next.IsURL = *req.IsURL
	}
	if req.LanguageID != nil {
		next.LanguageID = *req.LanguageID
	}

	updated, err := bc.uc.UpdateContent(c.Request.Context(), id, &next)
	if err != nil {
		respondError(c, bc.log, err)
		return
	}
	respondOK(c, http.StatusOK, updated)
}

// DeleteContent DELETE /api/contents/:id
func (bc *BlockController) DeleteContent(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := bc.uc.DeleteContent(c.Request.Context(), id); err != nil {
		respondError(c, bc.log, err)
		return
	}
	respondOK(c, http.StatusOK, MessageResponse{Message: "Deleted successfully"})
}

// ================= blocks =================

// GetBlock GET /api/blocks/:id
func (bc *BlockController) GetBlock(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	block, err := bc.uc.GetBlock(c.Request.Context(), id)
	if err != nil {
		respondError(c, bc.log, err)
		return
	}
	respondOK(c, http.StatusOK, block)
}

// CreateBlock POST /api/blocks
func (bc *BlockController) CreateBlock(c *gin.Context) {
	var req BlockBody
	if !bindJSON(c, &req) {
		return
	}
	if req.ParentKind == nil || req.ParentID == nil || req.LanguageID == nil {
		respondFail(c, http.StatusBadRequest, "Validation error: parent_kind, parent_id and language_id are required")
		return
	}

	block := &entity.Block{ParentKind: *req.ParentKind, ParentID: *req.ParentID, LanguageID: *req.LanguageID}
	req.apply(block)
	if err := bc.uc.CreateBlock(c.Request.Context(), block); err != nil {
		respondError(c, bc.log, err)
		return
	}
	respondOK(c, http.StatusCreated, block)
}

// UpdateBlock PUT /api/blocks/:id
func (bc *BlockController) UpdateBlock(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req BlockBody
	if !bindJSON(c, &req) {
		return
	}

	current, err := bc.uc.GetBlock(c.Request.Context(), id)
	if err != nil {
		respondError(c, bc.log, err)
		return
	}
	next := *current
	if req.ParentKind != nil {
		next.ParentKind = *req.ParentKind
	}
	if req.ParentID != nil {
		next.ParentID = *req.ParentID
	}
	if req.LanguageID != nil {
		next.LanguageID = *req.LanguageID
	}
	req.apply(&next)

	updated, err := bc.uc.UpdateBlock(c.Request.Context(), id, &next)
	if err != nil {
		respondError(c, bc.log, err)
		return
	}
	respondOK(c, http.StatusOK, updated)
}

// DeleteBlock DELETE /api/blocks/:id
func (bc *BlockController) DeleteBlock(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := bc.uc.DeleteBlock(c.Request.Context(), id); err != nil {
		respondError(c, bc.log, err)
		return
	}
	respondOK(c, http.StatusOK, MessageResponse{Message: "Deleted successfully"})
}

// apply 写入请求中出现的可空字段
func (b BlockBody) apply(block *entity.Block) {
	if b.LeftContentID.Set {
		block.LeftContentID = b.LeftContentID.Value
	}
	if b.RightContentID.Set {
		block.RightContentID = b.RightContentID.Value
	}
	if b.Position.Set {
		block.Position = b.Position.Value
	}
}
