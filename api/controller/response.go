package controller

import (
	"errors"
	"net/http"
	"strconv"

	domainErrors "museum-tour-server/domain/errors"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// --- 响应结构定义 ---

// Response 统一响应信封
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// MessageResponse 只有提示信息的响应数据
type MessageResponse struct {
	Message string `json:"message"`
}

func respondOK(c *gin.Context, status int, data interface{}) {
	c.JSON(status, Response{Success: true, Data: data})
}

func respondFail(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, Response{Success: false, Error: message})
}

// statusOf 领域错误 → HTTP 状态码
func statusOf(err error) int {
	switch {
	case errors.Is(err, domainErrors.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domainErrors.ErrConstraintViolation):
		return http.StatusBadRequest
	case errors.Is(err, domainErrors.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, domainErrors.ErrCapabilityFailure):
		return http.StatusBadGateway
	case errors.Is(err, domainErrors.ErrNoContent):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// respondError 按错误类别返回；5xx 记日志
func respondError(c *gin.Context, log zerolog.Logger, err error) {
	status := statusOf(err)
	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.FullPath()).Msg("[API] ❌ 请求处理失败")
	}
	respondFail(c, status, err.Error())
}

// --- 参数解析 ---

// pathID 解析路径参数 :id
func pathID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		respondFail(c, http.StatusBadRequest, "Invalid id")
		return 0, false
	}
	return uint(id), true
}

// queryLanguageID 解析必填的 ?language_id=
func queryLanguageID(c *gin.Context) (uint, bool) {
	raw := c.Query("language_id")
	if raw == "" {
		respondFail(c, http.StatusBadRequest, "language_id query parameter is required")
		return 0, false
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		respondFail(c, http.StatusBadRequest, "Invalid language_id")
		return 0, false
	}
	return uint(id), true
}

// bindJSON 绑定并校验请求体，失败时直接返回 400
func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		respondFail(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return false
	}
	return true
}
