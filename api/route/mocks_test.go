package route

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"museum-tour-server/api/controller"
	"museum-tour-server/bootstrap"
	"museum-tour-server/domain/capability"
	"museum-tour-server/domain/entity"
	"museum-tour-server/internal/blob"
	"museum-tour-server/internal/ws"
	"museum-tour-server/usecase"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ========== Mock AI ==========

// MockAssistant 同时充当联网检索、翻译、审核、语音合成
type MockAssistant struct {
	mock.Mock
}

func (m *MockAssistant) Lookup(ctx context.Context, subject capability.Subject) (*capability.FactSheet, error) {
	args := m.Called(ctx, subject)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*capability.FactSheet), args.Error(1)
}

func (m *MockAssistant) Translate(ctx context.Context, text, sourceLanguage, targetLanguage string) (string, error) {
	args := m.Called(ctx, text, sourceLanguage, targetLanguage)
	return args.String(0), args.Error(1)
}

func (m *MockAssistant) IsSafe(ctx context.Context, text string) (bool, error) {
	args := m.Called(ctx, text)
	return args.Bool(0), args.Error(1)
}

func (m *MockAssistant) Moderate(ctx context.Context, input string) (*openai.ModerationResponse, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*openai.ModerationResponse), args.Error(1)
}

func (m *MockAssistant) Synthesize(ctx context.Context, req capability.SpeechRequest) ([]byte, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

// ========== 测试服务 ==========

type testServer struct {
	router   *gin.Engine
	db       *gorm.DB
	ai       *MockAssistant
	blobs    *blob.MemoryStore
	hub      *ws.Hub
	english  entity.Language
	spanish  entity.Language
	tour     entity.Tour
	location entity.Location
	plant    entity.Plant
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(entity.AllModels()...))

	s := &testServer{
		db:    db,
		ai:    new(MockAssistant),
		blobs: blob.NewMemoryStore("https://cdn.test"),
	}
	s.english = entity.Language{Code: "en", Name: "English", NativeName: "English"}
	s.spanish = entity.Language{Code: "es", Name: "Spanish", NativeName: "Español"}
	require.NoError(t, db.Create(&s.english).Error)
	require.NoError(t, db.Create(&s.spanish).Error)
	s.tour = entity.Tour{Name: "Highlights"}
	require.NoError(t, db.Create(&s.tour).Error)
	s.location = entity.Location{TourID: s.tour.ID, Name: "Cloud Forest", Label: "A1", PositionX: 0.5, PositionY: 0.5}
	require.NoError(t, db.Create(&s.location).Error)
	s.plant = entity.Plant{Name: "Monstera", ScientificName: "Monstera deliciosa"}
	require.NoError(t, db.Create(&s.plant).Error)

	log := zerolog.Nop()
	repos := bootstrap.NewRepositories(db)
	s.hub = ws.NewHub(usecase.NewContentUseCase(repos.Contents, repos.Parents, repos.Languages, nil, log), log)
	go s.hub.Run()
	t.Cleanup(s.hub.Shutdown)

	uc := bootstrap.NewUseCases(repos, bootstrap.Capabilities{
		Search:     s.ai,
		Translator: s.ai,
		Moderator:  s.ai,
		Speech:     s.ai,
		Blobs:      s.blobs,
	}, s.hub, usecase.BootstrapConfig{Attempts: 2, Backoff: time.Millisecond, Concurrency: 2}, log)

	s.router = gin.New()
	Setup(s.router, &Dependencies{
		LocationPages: controller.NewPageController(entity.ParentLocation, uc.Pages, uc.Bootstrap, uc.Speech, log),
		PlantPages:    controller.NewPageController(entity.ParentPlant, uc.Pages, uc.Bootstrap, uc.Speech, log),
		Languages:     controller.NewCatalogController[entity.Language, controller.LanguageBody](uc.Languages, "languages", log),
		Domes:         controller.NewCatalogController[entity.Dome, controller.DomeBody](uc.Domes, "domes", log),
		Tours:         controller.NewCatalogController[entity.Tour, controller.TourBody](uc.Tours, "tours", log),
		Locations:     controller.NewCatalogController[entity.Location, controller.LocationBody](uc.Locations, "locations", log),
		Plants:        controller.NewCatalogController[entity.Plant, controller.PlantBody](uc.Plants, "plants", log),
		Blocks:        controller.NewBlockController(uc.Blocks, log),
		Search:        controller.NewSearchController(uc.Search, log),
		AI:            controller.NewAIController(s.ai, log),
		WS:            controller.NewWSHandler(s.hub, nil, log),
	})
	return s
}

// envelope 统一响应信封
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

// do 发送请求；body 为 string 时原样发送，否则编码为 JSON
func (s *testServer) do(t *testing.T, method, path string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var env envelope
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w, env
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v), string(raw))
	return v
}

func (s *testServer) plantPath(suffix string) string {
	return fmt.Sprintf("/api/plants/%d/%s", s.plant.ID, suffix)
}
