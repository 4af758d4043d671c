package controller

import (
	"net/http"

	"museum-tour-server/usecase"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// SearchController 植物搜索
type SearchController struct {
	uc  *usecase.PlantSearchUseCase
	log zerolog.Logger
}

func NewSearchController(uc *usecase.PlantSearchUseCase, log zerolog.Logger) *SearchController {
	return &SearchController{uc: uc, log: log.With().Str("component", "search-controller").Logger()}
}

// Search GET /api/search?q=
// 空查询返回全部植物（按名称排序）
func (sc *SearchController) Search(c *gin.Context) {
	plants, err := sc.uc.Search(c.Request.Context(), c.Query("q"))
	if err != nil {
		respondError(c, sc.log, err)
		return
	}
	respondOK(c, http.StatusOK, plants)
}
