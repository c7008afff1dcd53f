package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"kvk-ranker/internal/domain"
	"time"

	"github.com/rs/zerolog"
)

// ErrHandoffMissing covers both an absent and an unreadable record; the report
// view treats them the same way and sends the user back to the entry view.
var ErrHandoffMissing = errors.New("no ranking found for this session, calculate it again")

type HandoffRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewHandoffRepository(sqlDB *sql.DB, logger zerolog.Logger) *HandoffRepository {
	return &HandoffRepository{db: sqlDB, logger: logger}
}

func (r *HandoffRepository) Save(ctx context.Context, sessionID, key string, h domain.Handoff) error {
	payload, err := json.Marshal(h)
	if err != nil {
		return fmt.Errorf("failed to encode handoff: %w", err)
	}
	return r.SaveRaw(ctx, sessionID, key, payload)
}

func (r *HandoffRepository) SaveRaw(ctx context.Context, sessionID, key string, payload []byte) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO handoffs (session_id, key, payload, created_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(session_id, key) DO UPDATE SET payload = excluded.payload, created_at = excluded.created_at`,
		sessionID, key, string(payload), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to save handoff: %w", err)
	}
	return nil
}

func (r *HandoffRepository) Load(ctx context.Context, sessionID, key string) (*domain.Handoff, error) {
	var payload string
	err := r.db.QueryRowContext(ctx,
		`SELECT payload FROM handoffs WHERE session_id = ? AND key = ?`, sessionID, key).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrHandoffMissing
		}
		return nil, fmt.Errorf("failed to load handoff: %w", err)
	}

	var h domain.Handoff
	if err := json.Unmarshal([]byte(payload), &h); err != nil {
		r.logger.Warn().Err(err).Str("session_id", sessionID).Msg("malformed handoff record")
		return nil, ErrHandoffMissing
	}
	if len(h.Ranking) == 0 {
		r.logger.Warn().Str("session_id", sessionID).Msg("handoff record has no ranking")
		return nil, ErrHandoffMissing
	}
	return &h, nil
}

func (r *HandoffRepository) Delete(ctx context.Context, sessionID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM handoffs WHERE session_id = ?`, sessionID); err != nil {
		return fmt.Errorf("failed to delete handoffs: %w", err)
	}
	return nil
}

// PurgeExpired removes records created before cutoff and reports how many went.
func (r *HandoffRepository) PurgeExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM handoffs WHERE created_at < ?`, cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to purge handoffs: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return n, nil
}
