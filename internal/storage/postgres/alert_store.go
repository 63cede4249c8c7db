package postgres

import (
	"context"
	"fmt"

	"alpha-radar/internal/domain"
	"alpha-radar/internal/storage"
)

// AlertStore implements storage.AlertStore using PostgreSQL.
type AlertStore struct {
	pool *Pool
}

// NewAlertStore creates a new AlertStore.
func NewAlertStore(pool *Pool) *AlertStore {
	return &AlertStore{pool: pool}
}

// Compile-time interface check.
var _ storage.AlertStore = (*AlertStore)(nil)

// Append records one emitted alert.
func (s *AlertStore) Append(ctx context.Context, a *domain.AlertRecord) error {
	if a == nil || a.Contract == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO alert_history (contract, chain, score, mentions, unique_chats, velocity, alerted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := s.pool.Exec(ctx, query,
		a.Contract,
		a.Chain,
		a.Score,
		a.Mentions,
		a.UniqueChats,
		a.Velocity,
		a.AlertedAt,
	)
	if err != nil {
		return fmt.Errorf("append alert: %w", err)
	}
	return nil
}

// GetByContract returns the most recent alerts for a contract, newest first.
// Backed by the (contract, alerted_at) index.
func (s *AlertStore) GetByContract(ctx context.Context, contract string, limit int) ([]*domain.AlertRecord, error) {
	query := `
		SELECT contract, chain, score, mentions, unique_chats, velocity, alerted_at
		FROM alert_history
		WHERE contract = $1
		ORDER BY alerted_at DESC
		LIMIT $2
	`

	rows, err := s.pool.Query(ctx, query, contract, limit)
	if err != nil {
		return nil, fmt.Errorf("get alerts by contract: %w", err)
	}
	defer rows.Close()

	var alerts []*domain.AlertRecord
	for rows.Next() {
		var a domain.AlertRecord
		err := rows.Scan(&a.Contract, &a.Chain, &a.Score, &a.Mentions, &a.UniqueChats, &a.Velocity, &a.AlertedAt)
		if err != nil {
			return nil, fmt.Errorf("scan alert row: %w", err)
		}
		alerts = append(alerts, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate alert rows: %w", err)
	}

	return alerts, nil
}
