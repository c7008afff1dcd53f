package session

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/text/language"
)

var ErrSessionNotFound = errors.New("session not found")

// Manager keeps sessions in memory. Nothing here outlives the process.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	ttl      time.Duration
	logger   zerolog.Logger
}

func NewManager(ttl time.Duration, logger zerolog.Logger) *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		logger:   logger,
	}
}

// Create starts a session with one empty kingdom, ready for the first upload.
func (m *Manager) Create(lang language.Tag) (*Session, error) {
	s := New(uuid.New().String(), lang)
	if _, err := s.AddKingdom(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()

	m.logger.Debug().Str("session_id", s.ID).Msg("session created")
	return s, nil
}

func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

func (m *Manager) Delete(id string) {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
}

// Sweep drops sessions idle for longer than the TTL and returns their ids.
func (m *Manager) Sweep(now time.Time) []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	var expired []string
	for id, s := range m.sessions {
		if now.Sub(s.LastActivity()) > m.ttl {
			delete(m.sessions, id)
			expired = append(expired, id)
		}
	}
	if len(expired) > 0 {
		m.logger.Info().Int("count", len(expired)).Msg("expired sessions removed")
	}
	return expired
}
