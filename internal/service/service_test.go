package service

import (
	"context"
	"kvk-ranker/internal/api"
	"kvk-ranker/internal/config"
	"kvk-ranker/internal/domain"
	"kvk-ranker/internal/report"
	"kvk-ranker/internal/repository"
	"kvk-ranker/internal/session"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/text/language"
)

type fakeExtractor struct {
	content []byte
	err     error
	calls   int
	gotKey  string
	before  func()
}

func (f *fakeExtractor) Provider() string { return config.ProviderOpenAI }

func (f *fakeExtractor) Extract(_ context.Context, apiKey string, _ api.Image) ([]byte, error) {
	f.calls++
	f.gotKey = apiKey
	if f.before != nil {
		f.before()
	}
	return f.content, f.err
}

type fakeCredentials struct {
	saved map[string]string
}

func (f *fakeCredentials) APIKey(_ context.Context, key, fallback string) (string, error) {
	if v, ok := f.saved[key]; ok {
		return v, nil
	}
	return fallback, nil
}

func (f *fakeCredentials) Set(_ context.Context, key, value string) error {
	if f.saved == nil {
		f.saved = map[string]string{}
	}
	f.saved[key] = value
	return nil
}

type memoryHandoffs struct {
	mu      sync.Mutex
	records map[string]domain.Handoff
}

func (m *memoryHandoffs) Save(_ context.Context, sessionID, key string, h domain.Handoff) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.records == nil {
		m.records = map[string]domain.Handoff{}
	}
	m.records[sessionID+"/"+key] = h
	return nil
}

func (m *memoryHandoffs) Load(_ context.Context, sessionID, key string) (*domain.Handoff, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	h, ok := m.records[sessionID+"/"+key]
	if !ok {
		return nil, repository.ErrHandoffMissing
	}
	return &h, nil
}

type fakeExporter struct {
	gotHTML   []byte
	gotPreset report.Preset
}

func (f *fakeExporter) Export(_ context.Context, html []byte, preset report.Preset) ([]byte, error) {
	f.gotHTML = html
	f.gotPreset = preset
	return []byte("png"), nil
}

func newManager() *session.Manager {
	return session.NewManager(time.Hour, zerolog.Nop())
}

var englishTag = language.AmericanEnglish
