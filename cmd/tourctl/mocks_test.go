package main

import (
	"context"
	"io"
	"testing"
	"time"

	"museum-tour-server/bootstrap"
	"museum-tour-server/domain/capability"
	"museum-tour-server/internal/blob"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/mock"
)

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

func (m *MockAssistant) Synthesize(ctx context.Context, req capability.SpeechRequest) ([]byte, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

// newTestApp 已执行 seed 的内存库 + mock AI + 内存音频存储
func newTestApp(t *testing.T) (*app, *MockAssistant, *blob.MemoryStore) {
	t.Helper()
	db := openTestDB(t)
	if err := seed(db, io.Discard); err != nil {
		t.Fatal(err)
	}

	ai := new(MockAssistant)
	blobs := blob.NewMemoryStore("https://cdn.test")
	a := &app{
		env: &bootstrap.Env{
			EnglishCode:          "en",
			TranslateAttempts:    1,
			TranslateBackoff:     time.Millisecond,
			TranslateConcurrency: 2,
		},
		log: zerolog.Nop(),
		db:  db,
		caps: &bootstrap.Capabilities{
			Search:     ai,
			Translator: ai,
			Moderator:  ai,
			Speech:     ai,
			Blobs:      blobs,
		},
	}
	return a, ai, blobs
}
