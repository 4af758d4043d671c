package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"museum-tour-server/api/controller"
	"museum-tour-server/api/middleware"
	"museum-tour-server/api/route"
	"museum-tour-server/bootstrap"
	"museum-tour-server/domain/entity"
	"museum-tour-server/internal/blob"
	"museum-tour-server/internal/ws"
	"museum-tour-server/usecase"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	// 加载环境变量
	env := bootstrap.LoadEnv()
	log := bootstrap.NewLogger(env.LogLevel, env.LogFormat)
	log.Info().Msg("[Server] Museum Tour Server 启动中...")

	// 连接数据库
	db := bootstrap.NewDatabase(env, log)

	// 依赖注入 - Repository 层
	repos := bootstrap.NewRepositories(db)

	// 外部能力
	ai := bootstrap.NewAssistant(env, log)
	blobs := bootstrap.NewBlobStore(context.Background(), env, log)

	// WebSocket Hub：只读快照不需要推送
	hub := ws.NewHub(usecase.NewContentUseCase(repos.Contents, repos.Parents, repos.Languages, nil, log), log)

	// 依赖注入 - UseCase 层
	uc := bootstrap.NewUseCases(repos, bootstrap.Capabilities{
		Search:     ai,
		Translator: ai,
		Moderator:  ai,
		Speech:     ai,
		Blobs:      blobs,
	}, hub, env.BootstrapConfig(), log)

	// 依赖注入 - Controller 层
	deps := &route.Dependencies{
		LocationPages: controller.NewPageController(entity.ParentLocation, uc.Pages, uc.Bootstrap, uc.Speech, log),
		PlantPages:    controller.NewPageController(entity.ParentPlant, uc.Pages, uc.Bootstrap, uc.Speech, log),
		Languages:     controller.NewCatalogController[entity.Language, controller.LanguageBody](uc.Languages, "languages", log),
		Domes:         controller.NewCatalogController[entity.Dome, controller.DomeBody](uc.Domes, "domes", log),
		Tours:         controller.NewCatalogController[entity.Tour, controller.TourBody](uc.Tours, "tours", log),
		Locations:     controller.NewCatalogController[entity.Location, controller.LocationBody](uc.Locations, "locations", log),
		Plants:        controller.NewCatalogController[entity.Plant, controller.PlantBody](uc.Plants, "plants", log),
		Blocks:        controller.NewBlockController(uc.Blocks, log),
		Search:        controller.NewSearchController(uc.Search, log),
		AI:            controller.NewAIController(ai, log),
		WS:            controller.NewWSHandler(hub, env.CORSOrigins, log),
	}
	if fs, ok := blobs.(*blob.FileStore); ok {
		deps.AudioDir = fs.Dir()
	}

	// 启动 Hub 事件循环
	go hub.Run()

	// 配置 Gin 路由
	if env.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger(log))

	// CORS 配置
	router.Use(cors.New(cors.Config{
		AllowOrigins:     env.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", middleware.HeaderRequestID},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", middleware.HeaderRequestID},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// 设置路由
	route.Setup(router, deps)

	// 启动 HTTP 服务
	srv := &http.Server{
		Addr:    ":" + env.Port,
		Handler: router,
	}

	go func() {
		log.Info().Str("addr", "http://localhost:"+env.Port).Msg("[Server] 服务已启动")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("[Server] 服务启动失败")
		}
	}()

	// 优雅停机
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("[Server] 收到停机信号，正在优雅关闭...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("[Server] 服务强制关闭")
	}
	// 关闭所有订阅房间，断开 WebSocket
	hub.Shutdown()

	log.Info().Msg("[Server] 服务已安全停止")
}
