// Package trending computes scored trending candidates from windowed
// mention aggregates.
package trending

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"alpha-radar/internal/domain"
	"alpha-radar/internal/storage"
)

// Oracle answers liquidity lookups for trending candidates. ok=false means
// the lookup could not be completed; the engine then fails open and keeps
// the candidate.
type Oracle interface {
	Liquidity(ctx context.Context, contract, chain string) (usd float64, ok bool)
}

// Config holds the trending thresholds.
type Config struct {
	Window         time.Duration
	MinMentions    int
	MinUniqueChats int

	// MinLiquidityUSD is only consulted when an Oracle is set.
	MinLiquidityUSD float64
}

// Engine runs one trending scan per tick: aggregate, velocity, score,
// optional liquidity filter, per-chain ranking.
type Engine struct {
	store  storage.MentionStore
	oracle Oracle // nil disables the liquidity filter
	cfg    Config
	logger *slog.Logger
	now    func() time.Time
}

// Option configures the Engine.
type Option func(*Engine)

// WithOracle enables the liquidity filter.
func WithOracle(o Oracle) Option {
	return func(e *Engine) { e.oracle = o }
}

// WithClock overrides the engine clock.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// NewEngine creates a trending engine.
func NewEngine(store storage.MentionStore, cfg Config, logger *slog.Logger, opts ...Option) *Engine {
	e := &Engine{
		store:  store,
		cfg:    cfg,
		logger: logger.With("component", "trending"),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Scan returns the current trending tokens, grouped by chain and sorted by
// score within each group. A repository error aborts the scan; the caller
// logs and retries on the next tick.
func (e *Engine) Scan(ctx context.Context) ([]*domain.TrendingToken, error) {
	now := e.now().UTC()
	since := now.Add(-e.cfg.Window)
	priorSince := now.Add(-2 * e.cfg.Window)

	aggs, err := e.store.Trending(ctx, storage.TrendingQuery{
		Since:          since,
		MinMentions:    e.cfg.MinMentions,
		MinUniqueChats: e.cfg.MinUniqueChats,
	})
	if err != nil {
		return nil, fmt.Errorf("query trending aggregates: %w", err)
	}
	if len(aggs) == 0 {
		return nil, nil
	}

	tokens := make([]*domain.TrendingToken, 0, len(aggs))
	for _, a := range aggs {
		previous, err := e.store.Count(ctx, a.Contract, priorSince, since)
		if err != nil {
			return nil, fmt.Errorf("count prior window for %s: %w", a.Contract, err)
		}

		t := &domain.TrendingToken{
			Contract:    a.Contract,
			Chain:       a.Chain,
			Mentions:    a.Mentions,
			UniqueChats: a.UniqueChats,
			Velocity:    velocity(a.Mentions, previous),
		}
		t.ComputeScore()
		tokens = append(tokens, t)
	}

	if e.oracle != nil {
		tokens = e.filterByLiquidity(ctx, tokens)
	}

	return rank(tokens), nil
}

// velocity is relative growth versus the prior window; the current count
// when the prior window is empty.
func velocity(current, previous int) float64 {
	if previous == 0 {
		return float64(current)
	}
	return float64(current-previous) / float64(previous)
}

// filterByLiquidity drops candidates whose known liquidity is below the
// threshold. Unavailable lookups fail open: the candidate is kept.
func (e *Engine) filterByLiquidity(ctx context.Context, tokens []*domain.TrendingToken) []*domain.TrendingToken {
	kept := tokens[:0]
	for _, t := range tokens {
		usd, ok := e.oracle.Liquidity(ctx, t.Contract, t.Chain)
		if !ok {
			e.logger.Warn("liquidity lookup unavailable, keeping candidate",
				"contract", t.Contract, "chain", t.Chain)
			kept = append(kept, t)
			continue
		}
		if usd < e.cfg.MinLiquidityUSD {
			e.logger.Info("candidate dropped on liquidity",
				"contract", t.Contract, "chain", t.Chain,
				"liquidity_usd", usd, "threshold_usd", e.cfg.MinLiquidityUSD)
			continue
		}
		kept = append(kept, t)
	}
	return kept
}

// rank groups tokens by chain and sorts each group by score descending with
// deterministic tie-breaks: mentions, then unique chats, then contract.
func rank(tokens []*domain.TrendingToken) []*domain.TrendingToken {
	byChain := make(map[string][]*domain.TrendingToken)
	for _, t := range tokens {
		byChain[t.Chain] = append(byChain[t.Chain], t)
	}

	chains := make([]string, 0, len(byChain))
	for chain := range byChain {
		chains = append(chains, chain)
	}
	sort.Strings(chains)

	ranked := make([]*domain.TrendingToken, 0, len(tokens))
	for _, chain := range chains {
		group := byChain[chain]
		sort.Slice(group, func(i, j int) bool {
			a, b := group[i], group[j]
			if a.Score != b.Score {
				return a.Score > b.Score
			}
			if a.Mentions != b.Mentions {
				return a.Mentions > b.Mentions
			}
			if a.UniqueChats != b.UniqueChats {
				return a.UniqueChats > b.UniqueChats
			}
			return a.Contract < b.Contract
		})
		ranked = append(ranked, group...)
	}
	return ranked
}
