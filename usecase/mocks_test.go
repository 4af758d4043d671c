package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"museum-tour-server/domain/capability"
	"museum-tour-server/domain/entity"
	"museum-tour-server/repository"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ========== MockWebSearcher ==========

type MockWebSearcher struct {
	mock.Mock
}

func (m *MockWebSearcher) Lookup(ctx context.Context, subject capability.Subject) (*capability.FactSheet, error) {
	args := m.Called(ctx, subject)
	// 处理 nil 情况
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*capability.FactSheet), args.Error(1)
}

// ========== MockTranslator ==========

type MockTranslator struct {
	mock.Mock
}

func (m *MockTranslator) Translate(ctx context.Context, text, sourceLanguage, targetLanguage string) (string, error) {
	args := m.Called(ctx, text, sourceLanguage, targetLanguage)
	return args.String(0), args.Error(1)
}

// ========== MockModerator ==========

type MockModerator struct {
	mock.Mock
}

func (m *MockModerator) IsSafe(ctx context.Context, text string) (bool, error) {
	args := m.Called(ctx, text)
	return args.Bool(0), args.Error(1)
}

// ========== MockSpeechSynthesizer ==========

type MockSpeechSynthesizer struct {
	mock.Mock
}

func (m *MockSpeechSynthesizer) Synthesize(ctx context.Context, req capability.SpeechRequest) ([]byte, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

// ========== MockBlobStore ==========

type MockBlobStore struct {
	mock.Mock
}

func (m *MockBlobStore) Put(ctx context.Context, name string, data []byte, contentType string) (string, error) {
	args := m.Called(ctx, name, data, contentType)
	return args.String(0), args.Error(1)
}

// ========== recordingNotifier ==========
// 记录所有推送，供断言使用

type notification struct {
	Key   string
	Event string
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []notification
}

func (n *recordingNotifier) NotifyPage(parent entity.ParentRef, languageID uint, event string, _ interface{}) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, notification{Key: parent.Key(languageID), Event: event})
}

func (n *recordingNotifier) Events() []notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]notification(nil), n.events...)
}

// ========== 测试数据库 ==========

// fixture 一个已迁移的 SQLite 内存库，预置英语 / 西班牙语、一条路线、一个地点和一株植物
type fixture struct {
	db       *gorm.DB
	english  *entity.Language
	spanish  *entity.Language
	location entity.ParentRef
	plant    entity.ParentRef
}

func (f *fixture) countBlocks(t *testing.T, parent entity.ParentRef, languageID uint) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(&entity.Block{}).
		Where("parent_kind = ? AND parent_id = ? AND language_id = ?", parent.Kind, parent.ID, languageID).
		Count(&n).Error)
	return n
}

func (f *fixture) countContents(t *testing.T) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(&entity.Content{}).Count(&n).Error)
	return n
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	// 每个测试独立的内存库
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(entity.AllModels()...))
	return db
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := openTestDB(t)

	en := &entity.Language{Code: "en", Name: "English", NativeName: "English"}
	es := &entity.Language{Code: "es", Name: "Spanish", NativeName: "Español"}
	require.NoError(t, db.Create(en).Error)
	require.NoError(t, db.Create(es).Error)

	tour := &entity.Tour{Name: "Main Tour"}
	require.NoError(t, db.Create(tour).Error)
	location := &entity.Location{TourID: tour.ID, Name: "Cloud Forest", Label: "A1"}
	require.NoError(t, db.Omit("Tour").Create(location).Error)
	plant := &entity.Plant{Name: "Monstera", ScientificName: "Monstera deliciosa"}
	require.NoError(t, db.Create(plant).Error)

	return &fixture{
		db:       db,
		english:  en,
		spanish:  es,
		location: entity.ParentRef{Kind: entity.ParentLocation, ID: location.ID},
		plant:    entity.ParentRef{Kind: entity.ParentPlant, ID: plant.ID},
	}
}

func (f *fixture) contentUseCase(notifier PageNotifier) *ContentUseCase {
	return NewContentUseCase(
		repository.NewContentRepository(f.db),
		repository.NewParentRepository(f.db),
		repository.NewLanguageRepository(f.db),
		notifier,
		zerolog.Nop(),
	)
}
