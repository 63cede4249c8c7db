package clickhouse_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alpha-radar/internal/domain"
	"alpha-radar/internal/storage/clickhouse"
	"alpha-radar/internal/storage"
)

func TestAlertArchiveStore_Append(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()
	store := clickhouse.NewAlertArchiveStore(conn)
	ctx := context.Background()

	err := store.Append(ctx, &domain.AlertRecord{
		Contract:    "SomeMint1",
		Chain:       domain.ChainSolana,
		Score:       27,
		Mentions:    3,
		UniqueChats: 2,
		Velocity:    3,
		AlertedAt:   time.Now().UTC(),
	})
	require.NoError(t, err)

	var (
		contract string
		score    float64
		mentions uint32
	)
	row := conn.QueryRow(ctx, `SELECT contract, score, mentions FROM alert_archive WHERE contract = 'SomeMint1'`)
	require.NoError(t, row.Scan(&contract, &score, &mentions))
	assert.Equal(t, "SomeMint1", contract)
	assert.InDelta(t, 27.0, score, 1e-9)
	assert.Equal(t, uint32(3), mentions)
}

func TestAlertArchiveStore_AppendIsNotDeduplicated(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()
	store := clickhouse.NewAlertArchiveStore(conn)
	ctx := context.Background()

	rec := &domain.AlertRecord{
		Contract: "RepeatMint", Chain: domain.ChainSolana,
		Score: 10, AlertedAt: time.Now().UTC(),
	}
	require.NoError(t, store.Append(ctx, rec))
	require.NoError(t, store.Append(ctx, rec))

	var count uint64
	row := conn.QueryRow(ctx, `SELECT count() FROM alert_archive WHERE contract = 'RepeatMint'`)
	require.NoError(t, row.Scan(&count))
	assert.Equal(t, uint64(2), count)
}

func TestAlertArchiveStore_InvalidInput(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()
	store := clickhouse.NewAlertArchiveStore(conn)

	assert.ErrorIs(t, store.Append(context.Background(), nil), storage.ErrInvalidInput)
	assert.ErrorIs(t, store.Append(context.Background(), &domain.AlertRecord{}), storage.ErrInvalidInput)
}
