package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alpha-radar/internal/domain"
	"alpha-radar/internal/storage"
)

func match(contract string, chatID, messageID int64, at time.Time) *domain.Match {
	return &domain.Match{
		Contract:   contract,
		Chain:      domain.ChainEVM,
		ChatID:     chatID,
		MessageID:  messageID,
		ObservedAt: at,
	}
}

func TestMentionStore_RecordDedup(t *testing.T) {
	s := NewMentionStore()
	ctx := context.Background()
	now := time.Now().UTC()

	inserted, err := s.Record(ctx, match("X", 1, 1, now))
	require.NoError(t, err)
	assert.True(t, inserted)

	// Second insert of the same triple is a no-op.
	inserted, err = s.Record(ctx, match("X", 1, 1, now.Add(time.Second)))
	require.NoError(t, err)
	assert.False(t, inserted)

	count, err := s.Count(ctx, "X", now.Add(-time.Minute), now.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestMentionStore_CountIndependentOfInsertionOrder(t *testing.T) {
	s := NewMentionStore()
	ctx := context.Background()
	base := time.Now().UTC()

	// Duplicated and out-of-order inserts; distinct triples are (X,1,1),
	// (X,1,2), (X,2,1).
	inputs := []*domain.Match{
		match("X", 1, 2, base.Add(2*time.Second)),
		match("X", 1, 1, base),
		match("X", 2, 1, base.Add(time.Second)),
		match("X", 1, 1, base),
		match("X", 1, 2, base.Add(2*time.Second)),
	}
	for _, m := range inputs {
		_, err := s.Record(ctx, m)
		require.NoError(t, err)
	}

	count, err := s.Count(ctx, "X", base, base.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestMentionStore_CountWindowIsHalfOpen(t *testing.T) {
	s := NewMentionStore()
	ctx := context.Background()
	t0 := time.Now().UTC().Truncate(time.Second)
	t1 := t0.Add(time.Minute)

	_, err := s.Record(ctx, match("X", 1, 1, t0))
	require.NoError(t, err)
	_, err = s.Record(ctx, match("X", 1, 2, t1))
	require.NoError(t, err)

	// Mention at the upper bound is excluded.
	count, err := s.Count(ctx, "X", t0, t1)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestMentionStore_RecordThenTrendingRoundTrip(t *testing.T) {
	s := NewMentionStore()
	ctx := context.Background()
	now := time.Now().UTC()

	m := match("0xabc0000000000000000000000000000000000001", 5, 9, now)
	_, err := s.Record(ctx, m)
	require.NoError(t, err)

	aggs, err := s.Trending(ctx, storage.TrendingQuery{
		Since:          m.ObservedAt,
		MinMentions:    1,
		MinUniqueChats: 1,
	})
	require.NoError(t, err)
	require.Len(t, aggs, 1)
	assert.Equal(t, m.Contract, aggs[0].Contract)
	assert.Equal(t, 1, aggs[0].Mentions)
	assert.Equal(t, 1, aggs[0].UniqueChats)
}

func TestMentionStore_TrendingThresholdsAndChainFilter(t *testing.T) {
	s := NewMentionStore()
	ctx := context.Background()
	now := time.Now().UTC()

	sol := &domain.Match{Contract: "SoMintAbc", Chain: domain.ChainSolana, ChatID: 1, MessageID: 1, ObservedAt: now}
	_, err := s.Record(ctx, sol)
	require.NoError(t, err)

	for i := int64(0); i < 3; i++ {
		_, err := s.Record(ctx, match("Y", i%2, i, now))
		require.NoError(t, err)
	}

	// Y has 3 mentions in 2 chats; the solana contract has 1/1.
	aggs, err := s.Trending(ctx, storage.TrendingQuery{
		Since:          now.Add(-time.Minute),
		MinMentions:    3,
		MinUniqueChats: 2,
	})
	require.NoError(t, err)
	require.Len(t, aggs, 1)
	assert.Equal(t, "Y", aggs[0].Contract)

	// Chain filter keeps only solana rows.
	aggs, err = s.Trending(ctx, storage.TrendingQuery{
		Since:          now.Add(-time.Minute),
		MinMentions:    1,
		MinUniqueChats: 1,
		Chain:          domain.ChainSolana,
	})
	require.NoError(t, err)
	require.Len(t, aggs, 1)
	assert.Equal(t, "SoMintAbc", aggs[0].Contract)
}

func TestMentionStore_Purge(t *testing.T) {
	s := NewMentionStore()
	ctx := context.Background()
	now := time.Now().UTC()

	_, err := s.Record(ctx, match("old", 1, 1, now.Add(-48*time.Hour)))
	require.NoError(t, err)
	_, err = s.Record(ctx, match("fresh", 1, 2, now))
	require.NoError(t, err)

	deleted, err := s.Purge(ctx, now.Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)
	assert.Equal(t, 1, s.Len())

	count, err := s.Count(ctx, "old", now.Add(-72*time.Hour), now)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestMentionStore_RejectsInvalidInput(t *testing.T) {
	s := NewMentionStore()

	_, err := s.Record(context.Background(), &domain.Match{})
	assert.ErrorIs(t, err, storage.ErrInvalidInput)
}
