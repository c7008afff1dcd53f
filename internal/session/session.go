// Package session holds the per-user working set: the kingdoms being scored,
// the weights and the display language.
package session

import (
	"errors"
	"fmt"
	"kvk-ranker/internal/domain"
	"kvk-ranker/internal/scoring"
	"sync"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"golang.org/x/text/language"
)

var (
	ErrKingdomNotFound  = errors.New("kingdom not found")
	ErrLastKingdom      = errors.New("at least one kingdom is required")
	ErrUploadSuperseded = errors.New("a newer upload for this kingdom replaced this one")
)

type kingdom struct {
	domain.KingdomEntry
	uploadSeq uint64
}

// Ticket identifies one upload attempt. Only the most recently started upload
// of a kingdom may commit its reading.
type Ticket struct {
	KingdomID string
	seq       uint64
}

type Session struct {
	ID string

	mu       sync.RWMutex
	kingdoms []*kingdom
	weights  domain.ScoringWeights
	lang     language.Tag
	touched  time.Time
}

func New(id string, lang language.Tag) *Session {
	return &Session{
		ID:      id,
		weights: scoring.DefaultWeights(),
		lang:    lang,
		touched: time.Now(),
	}
}

func (s *Session) touch() {
	s.touched = time.Now()
}

func (s *Session) LastActivity() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.touched
}

func (s *Session) AddKingdom() (domain.KingdomEntry, error) {
	id, err := gonanoid.New()
	if err != nil {
		return domain.KingdomEntry{}, fmt.Errorf("failed to generate nanoid: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	k := &kingdom{KingdomEntry: domain.KingdomEntry{ID: id}}
	s.kingdoms = append(s.kingdoms, k)
	return k.KingdomEntry, nil
}

func (s *Session) RemoveKingdom(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	idx := s.indexOf(id)
	if idx < 0 {
		return ErrKingdomNotFound
	}
	if len(s.kingdoms) <= 1 {
		return ErrLastKingdom
	}
	s.kingdoms = append(s.kingdoms[:idx], s.kingdoms[idx+1:]...)
	return nil
}

func (s *Session) RenameKingdom(id, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	idx := s.indexOf(id)
	if idx < 0 {
		return ErrKingdomNotFound
	}
	s.kingdoms[idx].Name = name
	return nil
}

// BeginUpload starts an upload for a kingdom and supersedes any upload still
// in flight for it.
func (s *Session) BeginUpload(id string) (Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	idx := s.indexOf(id)
	if idx < 0 {
		return Ticket{}, ErrKingdomNotFound
	}
	s.kingdoms[idx].uploadSeq++
	return Ticket{KingdomID: id, seq: s.kingdoms[idx].uploadSeq}, nil
}

// CommitReading stores the reading of a finished upload. The reading replaces
// the previous one wholesale; a stale ticket leaves everything untouched.
func (s *Session) CommitReading(t Ticket, reading domain.TroopReading) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	idx := s.indexOf(t.KingdomID)
	if idx < 0 {
		return ErrKingdomNotFound
	}
	if s.kingdoms[idx].uploadSeq != t.seq {
		return ErrUploadSuperseded
	}
	r := reading
	s.kingdoms[idx].Reading = &r
	return nil
}

func (s *Session) ResetReading(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	idx := s.indexOf(id)
	if idx < 0 {
		return ErrKingdomNotFound
	}
	// Also invalidates an upload that is still running.
	s.kingdoms[idx].uploadSeq++
	s.kingdoms[idx].Reading = nil
	return nil
}

func (s *Session) SetWeights(w domain.ScoringWeights) error {
	if err := scoring.ValidateWeights(w); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	s.weights = w
	return nil
}

func (s *Session) Weights() domain.ScoringWeights {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.weights
}

func (s *Session) SetLanguage(lang language.Tag) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	s.lang = lang
}

func (s *Session) Language() language.Tag {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lang
}

// Entries returns a copy of the kingdoms in the order they were added.
func (s *Session) Entries() []domain.KingdomEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.KingdomEntry, len(s.kingdoms))
	for i, k := range s.kingdoms {
		out[i] = k.KingdomEntry
		if k.Reading != nil {
			r := *k.Reading
			out[i].Reading = &r
		}
	}
	return out
}

func (s *Session) Entry(id string) (domain.KingdomEntry, error) {
	for _, e := range s.Entries() {
		if e.ID == id {
			return e, nil
		}
	}
	return domain.KingdomEntry{}, ErrKingdomNotFound
}

// Rank scores the current entries with the session's weights.
func (s *Session) Rank(label scoring.DefaultLabel) (scoring.Ranking, domain.ScoringWeights, error) {
	entries := s.Entries()
	w := s.Weights()
	ranking, err := scoring.Rank(entries, w, label)
	return ranking, w, err
}

func (s *Session) indexOf(id string) int {
	for i, k := range s.kingdoms {
		if k.ID == id {
			return i
		}
	}
	return -1
}
