// Package storage defines the persistence contracts for the radar pipeline.
// Backends live in subpackages (postgres, memory, clickhouse).
package storage

import (
	"context"
	"time"

	"alpha-radar/internal/domain"
)

// TrendingQuery selects contracts whose windowed aggregate clears both gates.
// The window is half-open [Since, now); Chain empty means all chains.
type TrendingQuery struct {
	Since          time.Time
	MinMentions    int
	MinUniqueChats int
	Chain          string
}

// MentionStore persists contract mentions and serves windowed aggregates.
type MentionStore interface {
	// Record persists one mention. Returns true when the mention is new,
	// false when the (contract, chat_id, message_id) triple was already
	// recorded. The uniqueness is enforced by the store itself so that
	// retries and duplicate events never double-count.
	Record(ctx context.Context, m *domain.Match) (bool, error)

	// Trending returns aggregates meeting the query thresholds. Ordering of
	// the result is unspecified; ranking is the trending engine's job.
	Trending(ctx context.Context, q TrendingQuery) ([]*domain.Aggregate, error)

	// Count returns the total mentions for one contract in [since, until).
	Count(ctx context.Context, contract string, since, until time.Time) (int, error)

	// Purge deletes all mentions observed before the cutoff and returns the
	// number of rows removed.
	Purge(ctx context.Context, before time.Time) (int64, error)

	// Healthy is a fast liveness probe used by the health endpoint.
	Healthy(ctx context.Context) bool
}

// AlertStore keeps the append-only alert audit trail.
type AlertStore interface {
	// Append records one emitted alert.
	Append(ctx context.Context, a *domain.AlertRecord) error

	// GetByContract returns the most recent alerts for a contract,
	// newest first, up to limit.
	GetByContract(ctx context.Context, contract string, limit int) ([]*domain.AlertRecord, error)
}

// ArchiveStore is an optional analytics sink for emitted alerts.
// Archive failures are logged by callers and never block alerting.
type ArchiveStore interface {
	Append(ctx context.Context, a *domain.AlertRecord) error
}
