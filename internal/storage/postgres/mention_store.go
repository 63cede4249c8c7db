package postgres

import (
	"context"
	"fmt"
	"time"

	"alpha-radar/internal/domain"
	"alpha-radar/internal/storage"
)

// MentionStore implements storage.MentionStore using PostgreSQL.
type MentionStore struct {
	pool *Pool
}

// NewMentionStore creates a new MentionStore.
func NewMentionStore(pool *Pool) *MentionStore {
	return &MentionStore{pool: pool}
}

// Compile-time interface check.
var _ storage.MentionStore = (*MentionStore)(nil)

// Record inserts one mention. The UNIQUE(contract, chat_id, message_id)
// constraint does the dedup; a conflicting insert returns false without
// error so retries and duplicate events never double-count.
func (s *MentionStore) Record(ctx context.Context, m *domain.Match) (bool, error) {
	if m == nil || m.Contract == "" || m.Chain == "" {
		return false, storage.ErrInvalidInput
	}

	query := `
		INSERT INTO contract_mentions (contract, chain, chat_id, message_id, observed_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (contract, chat_id, message_id) DO NOTHING
		RETURNING id
	`

	var id int64
	err := s.pool.QueryRow(ctx, query,
		m.Contract,
		m.Chain,
		m.ChatID,
		m.MessageID,
		m.ObservedAt,
	).Scan(&id)
	if err != nil {
		if isNotFoundError(err) {
			// DO NOTHING returned no row: the triple already exists.
			return false, nil
		}
		if isDuplicateKeyError(err) {
			// Raced with a concurrent insert of the same triple.
			return false, nil
		}
		return false, fmt.Errorf("record mention: %w", err)
	}
	return true, nil
}

// Trending returns contracts whose aggregate in [since, now) clears both
// gates. Backed by the (chain, observed_at) and (contract, observed_at)
// composite indexes.
func (s *MentionStore) Trending(ctx context.Context, q storage.TrendingQuery) ([]*domain.Aggregate, error) {
	query := `
		SELECT contract, chain,
		       COUNT(*)::int                AS mentions,
		       COUNT(DISTINCT chat_id)::int AS unique_chats,
		       MIN(observed_at)             AS first_seen,
		       MAX(observed_at)             AS last_seen
		FROM contract_mentions
		WHERE observed_at >= $1
		  AND ($2 = '' OR chain = $2)
		GROUP BY contract, chain
		HAVING COUNT(*) >= $3
		   AND COUNT(DISTINCT chat_id) >= $4
	`

	rows, err := s.pool.Query(ctx, query, q.Since, q.Chain, q.MinMentions, q.MinUniqueChats)
	if err != nil {
		return nil, fmt.Errorf("query trending aggregates: %w", err)
	}
	defer rows.Close()

	var aggs []*domain.Aggregate
	for rows.Next() {
		var a domain.Aggregate
		if err := rows.Scan(&a.Contract, &a.Chain, &a.Mentions, &a.UniqueChats, &a.FirstSeen, &a.LastSeen); err != nil {
			return nil, fmt.Errorf("scan aggregate row: %w", err)
		}
		aggs = append(aggs, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate aggregate rows: %w", err)
	}

	return aggs, nil
}

// Count returns total mentions for one contract in [since, until).
func (s *MentionStore) Count(ctx context.Context, contract string, since, until time.Time) (int, error) {
	query := `
		SELECT COUNT(*)::int
		FROM contract_mentions
		WHERE contract = $1 AND observed_at >= $2 AND observed_at < $3
	`

	var count int
	if err := s.pool.QueryRow(ctx, query, contract, since, until).Scan(&count); err != nil {
		return 0, fmt.Errorf("count mentions: %w", err)
	}
	return count, nil
}

// Purge deletes all mentions observed before the cutoff.
func (s *MentionStore) Purge(ctx context.Context, before time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM contract_mentions WHERE observed_at < $1`, before)
	if err != nil {
		return 0, fmt.Errorf("purge mentions: %w", err)
	}
	return tag.RowsAffected(), nil
}

// Healthy implements storage.MentionStore.
func (s *MentionStore) Healthy(ctx context.Context) bool {
	return s.pool.Healthy(ctx)
}
