package controller

import (
	"net/http"

	"museum-tour-server/domain/entity"
	"museum-tour-server/usecase"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// catalogRequest 单表资源的请求体：字段全部可选，创建时再检查必填项
type catalogRequest[T any] interface {
	// toEntity 创建用；缺少必填字段时返回错误信息
	toEntity() (*T, string)
	// toFields 更新用；只包含请求里出现的列
	toFields() map[string]interface{}
}

// CatalogController 单表资源的通用增删改查
type CatalogController[T any, R catalogRequest[T]] struct {
	uc  *usecase.CatalogUseCase[T]
	log zerolog.Logger
}

// NewCatalogController 创建通用资源控制器
func NewCatalogController[T any, R catalogRequest[T]](uc *usecase.CatalogUseCase[T], name string, log zerolog.Logger) *CatalogController[T, R] {
	return &CatalogController[T, R]{
		uc:  uc,
		log: log.With().Str("component", "catalog-controller").Str("resource", name).Logger(),
	}
}

// Register 挂载 GET / POST / GET :id / PUT :id / DELETE :id
func (cc *CatalogController[T, R]) Register(group *gin.RouterGroup) {
	group.GET("", cc.List)
	group.POST("", cc.Create)
	group.GET("/:id", cc.Get)
	group.PUT("/:id", cc.Update)
	group.DELETE("/:id", cc.Delete)
}

func (cc *CatalogController[T, R]) List(c *gin.Context) {
	items, err := cc.uc.List(c.Request.Context())
	if err != nil {
		respondError(c, cc.log, err)
		return
	}
	respondOK(c, http.StatusOK, items)
}

func (cc *CatalogController[T, R]) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	item, err := cc.uc.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, cc.log, err)
		return
	}
	respondOK(c, http.StatusOK, item)
}

func (cc *CatalogController[T, R]) Create(c *gin.Context) {
	var req R
	if !bindJSON(c, &req) {
		return
	}
	item, missing := req.toEntity()
	if missing != "" {
		respondFail(c, http.StatusBadRequest, "Validation error: "+missing)
		return
	}
	if err := cc.uc.Create(c.Request.Context(), item); err != nil {
		respondError(c, cc.log, err)
		return
	}
	respondOK(c, http.StatusCreated, item)
}

func (cc *CatalogController[T, R]) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req R
	if !bindJSON(c, &req) {
		return
	}
	item, err := cc.uc.Update(c.Request.Context(), id, req.toFields())
	if err != nil {
		respondError(c, cc.log, err)
		return
	}
	respondOK(c, http.StatusOK, item)
}

func (cc *CatalogController[T, R]) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := cc.uc.Delete(c.Request.Context(), id); err != nil {
		respondError(c, cc.log, err)
		return
	}
	respondOK(c, http.StatusOK, MessageResponse{Message: "Deleted successfully"})
}

// ========== 各资源的请求体 ==========

type fieldSet map[string]interface{}

func (f fieldSet) str(column string, v *string) {
	if v != nil {
		f[column] = *v
	}
}

func (f fieldSet) num(column string, v *float64) {
	if v != nil {
		f[column] = *v
	}
}

// LanguageBody /api/languages
type LanguageBody struct {
	Code       *string `json:"language_code" binding:"omitempty,min=1,max=3"`
	Name       *string `json:"language_name"`
	NativeName *string `json:"language_native_name"`
}

func (b LanguageBody) toEntity() (*entity.Language, string) {
	if b.Code == nil || b.Name == nil || b.NativeName == nil {
		return nil, "language_code, language_name and language_native_name are required"
	}
	return &entity.Language{Code: *b.Code, Name: *b.Name, NativeName: *b.NativeName}, ""
}

func (b LanguageBody) toFields() map[string]interface{} {
	f := fieldSet{}
	f.str("code", b.Code)
	f.str("name", b.Name)
	f.str("native_name", b.NativeName)
	return f
}

// DomeBody /api/domes
type DomeBody struct {
	Name         *string `json:"dome_name" binding:"omitempty,max=255"`
	ImageURL     *string `json:"dome_image_url"`
	PathImageURL *string `json:"dome_path_image_url"`
}

func (b DomeBody) toEntity() (*entity.Dome, string) {
	if b.Name == nil || b.ImageURL == nil {
		return nil, "dome_name and dome_image_url are required"
	}
	d := &entity.Dome{Name: *b.Name, ImageURL: *b.ImageURL}
	if b.PathImageURL != nil {
		d.PathImageURL = *b.PathImageURL
	}
	return d, ""
}

func (b DomeBody) toFields() map[string]interface{} {
	f := fieldSet{}
	f.str("name", b.Name)
	f.str("image_url", b.ImageURL)
	f.str("path_image_url", b.PathImageURL)
	return f
}

// TourBody /api/tours
type TourBody struct {
	Name         *string `json:"tour_name" binding:"omitempty,max=255"`
	Description  *string `json:"tour_description"`
	PathImageURL *string `json:"tour_path_image_url"`
}

func (b TourBody) toEntity() (*entity.Tour, string) {
	if b.Name == nil {
		return nil, "tour_name is required"
	}
	t := &entity.Tour{Name: *b.Name}
	if b.Description != nil {
		t.Description = *b.Description
	}
	if b.PathImageURL != nil {
		t.PathImageURL = *b.PathImageURL
	}
	return t, ""
}

func (b TourBody) toFields() map[string]interface{} {
	f := fieldSet{}
	f.str("name", b.Name)
	f.str("description", b.Description)
	f.str("path_image_url", b.PathImageURL)
	return f
}

// LocationBody /api/locations
type LocationBody struct {
	TourID    *uint    `json:"tour_id" binding:"omitempty,gt=0"`
	Name      *string  `json:"location_name" binding:"omitempty,max=255"`
	Label     *string  `json:"location_label" binding:"omitempty,max=255"`
	PositionX *float64 `json:"position_x" binding:"omitempty,gte=0,lte=1"`
	PositionY *float64 `json:"position_y" binding:"omitempty,gte=0,lte=1"`
}

func (b LocationBody) toEntity() (*entity.Location, string) {
	if b.TourID == nil || b.Name == nil || b.PositionX == nil || b.PositionY == nil {
		return nil, "tour_id, location_name, position_x and position_y are required"
	}
	l := &entity.Location{TourID: *b.TourID, Name: *b.Name, PositionX: *b.PositionX, PositionY: *b.PositionY}
	if b.Label != nil {
		l.Label = *b.Label
	}
	return l, ""
}

func (b LocationBody) toFields() map[string]interface{} {
	f := fieldSet{}
	if b.TourID != nil {
		f["tour_id"] = *b.TourID
	}
	f.str("name", b.Name)
	f.str("label", b.Label)
	f.num("position_x", b.PositionX)
	f.num("position_y", b.PositionY)
	return f
}

// PlantBody /api/plants
type PlantBody struct {
	Name           *string `json:"plant_name" binding:"omitempty,max=255"`
	ScientificName *string `json:"plant_scientific_name" binding:"omitempty,max=255"`
}

func (b PlantBody) toEntity() (*entity.Plant, string) {
	if b.Name == nil {
		return nil, "plant_name is required"
	}
	p := &entity.Plant{Name: *b.Name}
	if b.ScientificName != nil {
		p.ScientificName = *b.ScientificName
	}
	return p, ""
}

func (b PlantBody) toFields() map[string]interface{} {
	f := fieldSet{}
	f.str("name", b.Name)
	f.str("scientific_name", b.ScientificName)
	return f
}
