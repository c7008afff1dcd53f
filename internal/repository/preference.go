package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"kvk-ranker/internal/domain"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const (
	PrefOpenAIAPIKey = "openai_api_key"
	PrefGeminiAPIKey = "gemini_api_key"
	PrefLanguage     = "lang"
)

var ErrPreferenceNotFound = errors.New("preference not found")

type PreferenceRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewPreferenceRepository(sqlDB *sql.DB, logger zerolog.Logger) *PreferenceRepository {
	return &PreferenceRepository{db: sqlDB, logger: logger}
}

func (r *PreferenceRepository) Get(ctx context.Context, key string) (*domain.Preference, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT key, value, updated_at FROM preferences WHERE key = ?`, key)

	var p domain.Preference
	if err := row.Scan(&p.Key, &p.Value, &p.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPreferenceNotFound
		}
		return nil, fmt.Errorf("failed to get preference %s: %w", key, err)
	}
	return &p, nil
}

func (r *PreferenceRepository) Set(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO preferences (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to set preference %s: %w", key, err)
	}
	r.logger.Debug().Str("key", key).Msg("preference saved")
	return nil
}

func (r *PreferenceRepository) Delete(ctx context.Context, key string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM preferences WHERE key = ?`, key); err != nil {
		return fmt.Errorf("failed to delete preference %s: %w", key, err)
	}
	return nil
}

// APIKey resolves the extraction credential: a saved preference first, then
// the configured fallback. Saved OpenAI keys must look like one ("sk-").
func (r *PreferenceRepository) APIKey(ctx context.Context, key, fallback string) (string, error) {
	p, err := r.Get(ctx, key)
	switch {
	case errors.Is(err, ErrPreferenceNotFound):
	case err != nil:
		return "", err
	default:
		v := strings.TrimSpace(p.Value)
		if v != "" && (key != PrefOpenAIAPIKey || strings.HasPrefix(v, "sk-")) {
			return v, nil
		}
	}
	return strings.TrimSpace(fallback), nil
}
