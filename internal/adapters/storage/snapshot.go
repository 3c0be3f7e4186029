package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/alejandrodnm/truthbounty/internal/domain"
)

// SaveSnapshot guarda el leaderboard unificado (una sola fila, upsert).
func (s *SQLStore) SaveSnapshot(ctx context.Context, snap domain.Snapshot) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("storage.SaveSnapshot: marshal: %w", err)
	}

	_, err = s.exec(ctx, `
		INSERT INTO leaderboard_snapshots (id, payload, updated_at)
		VALUES (1, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			payload    = excluded.payload,
			updated_at = excluded.updated_at`,
		string(payload), formatTime(snap.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("storage.SaveSnapshot: %w", classify(err))
	}
	return nil
}

// LoadSnapshot devuelve el último snapshot o domain.ErrNotFound.
func (s *SQLStore) LoadSnapshot(ctx context.Context) (domain.Snapshot, error) {
	var payload string
	err := s.queryRow(ctx, `SELECT payload FROM leaderboard_snapshots WHERE id = 1`).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Snapshot{}, fmt.Errorf("storage.LoadSnapshot: %w", domain.ErrNotFound)
	}
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("storage.LoadSnapshot: %w", classify(err))
	}

	var snap domain.Snapshot
	if err := json.Unmarshal([]byte(payload), &snap); err != nil {
		return domain.Snapshot{}, fmt.Errorf("storage.LoadSnapshot: unmarshal: %w", err)
	}
	return snap, nil
}
