package route

import (
	"museum-tour-server/api/controller"
	"museum-tour-server/domain/entity"

	"github.com/gin-gonic/gin"
)

// Dependencies 路由依赖注入结构
type Dependencies struct {
	LocationPages *controller.PageController
	PlantPages    *controller.PageController

	Languages *controller.CatalogController[entity.Language, controller.LanguageBody]
	Domes     *controller.CatalogController[entity.Dome, controller.DomeBody]
	Tours     *controller.CatalogController[entity.Tour, controller.TourBody]
	Locations *controller.CatalogController[entity.Location, controller.LocationBody]
	Plants    *controller.CatalogController[entity.Plant, controller.PlantBody]

	Blocks *controller.BlockController
	Search *controller.SearchController
	AI     *controller.AIController
	WS     *controller.WSHandler

	// AudioDir 非空时以 /audio 对外提供本地音频文件
	AudioDir string
}

// Setup 配置所有路由
func Setup(router *gin.Engine, deps *Dependencies) {
	// 健康检查
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": "museum-tour-server",
		})
	})

	// --- WebSocket 路由 ---
	router.GET("/ws", deps.WS.HandleWS)

	// --- 本地音频文件 ---
	if deps.AudioDir != "" {
		router.Static("/audio", deps.AudioDir)
	}

	api := router.Group("/api")
	{
		// 页面内容（地点 / 植物共用一套接口）
		registerPages(api.Group("/locations/:id"), deps.LocationPages)
		registerPages(api.Group("/plants/:id"), deps.PlantPages)

		// 单表资源
		deps.Languages.Register(api.Group("/languages"))
		deps.Domes.Register(api.Group("/domes"))
		deps.Tours.Register(api.Group("/tours"))
		deps.Locations.Register(api.Group("/locations"))
		deps.Plants.Register(api.Group("/plants"))

		// 内容条目与块
		api.GET("/contents/:id", deps.Blocks.GetContent)
		api.POST("/contents", deps.Blocks.CreateContent)
		api.PUT("/contents/:id", deps.Blocks.UpdateContent)
		api.DELETE("/contents/:id", deps.Blocks.DeleteContent)

		api.GET("/blocks/:id", deps.Blocks.GetBlock)
		api.POST("/blocks", deps.Blocks.CreateBlock)
		api.PUT("/blocks/:id", deps.Blocks.UpdateBlock)
		api.DELETE("/blocks/:id", deps.Blocks.DeleteBlock)

		// 搜索
		api.GET("/search", deps.Search.Search)

		// AI 代理
		api.POST("/translate", deps.AI.Translate)
		api.POST("/moderate", deps.AI.Moderate)
		api.POST("/audio", deps.AI.Audio)
	}
}

func registerPages(group *gin.RouterGroup, pc *controller.PageController) {
	group.GET("/content", pc.GetContent)
	group.POST("/content", pc.CreateContent)
	group.PUT("/content", pc.UpsertContent)
	group.PATCH("/content", pc.PatchContent)
	group.POST("/bootstrap", pc.Bootstrap)
	group.POST("/tts", pc.Synthesize)
	group.GET("/audio", pc.Audio)
	group.GET("/websearch", pc.WebSearch)
}
