package bootstrap

import (
	"museum-tour-server/domain/capability"
	"museum-tour-server/domain/entity"
	domainRepo "museum-tour-server/domain/repository"
	"museum-tour-server/repository"
	"museum-tour-server/usecase"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// Repositories 依赖注入 - Repository 层
type Repositories struct {
	Contents  domainRepo.ContentRepository
	Parents   domainRepo.ParentRepository
	Languages domainRepo.LanguageRepository
	Domes     domainRepo.CrudRepository[entity.Dome]
	Tours     domainRepo.CrudRepository[entity.Tour]
	Locations domainRepo.CrudRepository[entity.Location]
	Plants    domainRepo.PlantRepository
}

func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Contents:  repository.NewContentRepository(db),
		Parents:   repository.NewParentRepository(db),
		Languages: repository.NewLanguageRepository(db),
		Domes:     repository.NewDomeRepository(db),
		Tours:     repository.NewTourRepository(db),
		Locations: repository.NewLocationRepository(db),
		Plants:    repository.NewPlantRepository(db),
	}
}

// Capabilities 外部能力
type Capabilities struct {
	Search     capability.WebSearcher
	Translator capability.Translator
	Moderator  capability.Moderator
	Speech     capability.SpeechSynthesizer
	Blobs      capability.BlobStore
}

// UseCases 依赖注入 - UseCase 层（HTTP 服务与命令行工具共用）
type UseCases struct {
	Pages     *usecase.ContentUseCase
	Bootstrap *usecase.BootstrapUseCase
	Speech    *usecase.SpeechUseCase
	Blocks    *usecase.BlockUseCase
	Search    *usecase.PlantSearchUseCase

	Languages *usecase.CatalogUseCase[entity.Language]
	Domes     *usecase.CatalogUseCase[entity.Dome]
	Tours     *usecase.CatalogUseCase[entity.Tour]
	Locations *usecase.CatalogUseCase[entity.Location]
	Plants    *usecase.CatalogUseCase[entity.Plant]
}

// NewUseCases notifier 可以为 nil（命令行工具没有订阅者）
func NewUseCases(repos *Repositories, caps Capabilities, notifier usecase.PageNotifier, cfg usecase.BootstrapConfig, log zerolog.Logger) *UseCases {
	pages := usecase.NewContentUseCase(repos.Contents, repos.Parents, repos.Languages, notifier, log)

	return &UseCases{
		Pages: pages,
		Bootstrap: usecase.NewBootstrapUseCase(
			pages, repos.Parents, repos.Languages,
			caps.Search, caps.Translator, caps.Moderator,
			notifier, cfg, log,
		),
		Speech: usecase.NewSpeechUseCase(pages, repos.Contents, repos.Languages, caps.Speech, caps.Blobs, notifier, log),
		Blocks: usecase.NewBlockUseCase(repos.Contents, repos.Parents, repos.Languages),
		Search: usecase.NewPlantSearchUseCase(repos.Plants),

		Languages: usecase.NewLanguageCatalog(repos.Languages, repos.Contents),
		Domes:     usecase.NewDomeCatalog(repos.Domes),
		Tours:     usecase.NewTourCatalog(repos.Tours, repos.Locations),
		Locations: usecase.NewLocationCatalog(repos.Locations, repos.Tours, repos.Contents),
		Plants:    usecase.NewPlantCatalog(repos.Plants, repos.Contents),
	}
}

// BootstrapConfig 自动填充参数
func (e *Env) BootstrapConfig() usecase.BootstrapConfig {
	return usecase.BootstrapConfig{
		EnglishCode: e.EnglishCode,
		Attempts:    e.TranslateAttempts,
		Backoff:     e.TranslateBackoff,
		Concurrency: e.TranslateConcurrency,
	}
}
