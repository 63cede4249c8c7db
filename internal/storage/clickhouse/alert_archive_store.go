package clickhouse

import (
	"context"
	"fmt"

	"alpha-radar/internal/domain"
	"alpha-radar/internal/storage"
)

// AlertArchiveStore implements storage.ArchiveStore using ClickHouse.
// The archive is an analytics sink only: MergeTree enforces no uniqueness,
// and the radar never reads it back.
type AlertArchiveStore struct {
	conn *Conn
}

// NewAlertArchiveStore creates a new AlertArchiveStore.
func NewAlertArchiveStore(conn *Conn) *AlertArchiveStore {
	return &AlertArchiveStore{conn: conn}
}

// Compile-time interface check.
var _ storage.ArchiveStore = (*AlertArchiveStore)(nil)

// Append writes one emitted alert to the archive.
func (s *AlertArchiveStore) Append(ctx context.Context, a *domain.AlertRecord) error {
	if a == nil || a.Contract == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO alert_archive (contract, chain, score, mentions, unique_chats, velocity, alerted_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	err := s.conn.Exec(ctx, query,
		a.Contract,
		a.Chain,
		a.Score,
		uint32(a.Mentions),
		uint32(a.UniqueChats),
		a.Velocity,
		a.AlertedAt,
	)
	if err != nil {
		return fmt.Errorf("archive alert: %w", err)
	}
	return nil
}
