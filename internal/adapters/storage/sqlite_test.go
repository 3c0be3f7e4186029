package storage_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alejandrodnm/truthbounty/internal/adapters/storage"
	"github.com/alejandrodnm/truthbounty/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const user = "0xabc0000000000000000000000000000000000001"

func openMemory(t *testing.T) *storage.SQLStore {
	t.Helper()
	db, err := storage.Open(context.Background(), storage.Config{Driver: storage.DriverSQLite, DSN: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func makeBet(id string, p domain.Platform, market string, created time.Time) domain.Bet {
	return domain.Bet{
		ID:           id,
		Platform:     p,
		User:         user,
		MarketID:     market,
		Question:     "Will X happen?",
		Outcome:      0,
		OutcomeLabel: "YES",
		Amount:       100,
		Price:        0.4,
		Status:       domain.BetPending,
		CreatedAt:    created,
	}
}

func TestSQLStore_SaveAndGetBet(t *testing.T) {
	db := openMemory(t)
	ctx := context.Background()
	created := time.Date(2025, 3, 1, 12, 0, 0, 123456000, time.UTC)

	require.NoError(t, db.SaveBet(ctx, makeBet("b1", domain.PlatformPolymarket, "0xm1", created)))

	got, err := db.GetBet(ctx, "b1")
	require.NoError(t, err)
	assert.Equal(t, domain.PlatformPolymarket, got.Platform)
	assert.Equal(t, "YES", got.OutcomeLabel)
	assert.Equal(t, domain.BetPending, got.Status)
	assert.True(t, created.Equal(got.CreatedAt))
	assert.Nil(t, got.ResolvedAt)

	_, err = db.GetBet(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSQLStore_DuplicateBet(t *testing.T) {
	db := openMemory(t)
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, db.SaveBet(ctx, makeBet("b1", domain.PlatformPolymarket, "0xm1", now)))

	err := db.SaveBet(ctx, makeBet("b2", domain.PlatformPolymarket, "0xm1", now))
	assert.ErrorIs(t, err, domain.ErrDuplicateBet)

	// Mismo id de mercado en otra plataforma es otro mercado.
	assert.NoError(t, db.SaveBet(ctx, makeBet("b3", domain.PlatformManifold, "0xm1", now)))
}

func TestSQLStore_PendingBetsOldestFirst(t *testing.T) {
	db := openMemory(t)
	ctx := context.Background()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	for i := 3; i >= 1; i-- {
		b := makeBet(fmt.Sprintf("b%d", i), domain.PlatformAzuro, fmt.Sprintf("c%d", i), base.Add(time.Duration(i)*time.Hour))
		require.NoError(t, db.SaveBet(ctx, b))
	}
	require.NoError(t, db.SaveBet(ctx, makeBet("other", domain.PlatformOmen, "c9", base)))

	pending, err := db.PendingBets(ctx, domain.PlatformAzuro, domain.BetCursor{}, 2)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, "b1", pending[0].ID)
	assert.Equal(t, "b2", pending[1].ID)
}

func TestSQLStore_PendingBetsCursor(t *testing.T) {
	db := openMemory(t)
	ctx := context.Background()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	// b2 y b3 comparten created_at: el id desempata.
	require.NoError(t, db.SaveBet(ctx, makeBet("b1", domain.PlatformAzuro, "c1", base)))
	require.NoError(t, db.SaveBet(ctx, makeBet("b2", domain.PlatformAzuro, "c2", base.Add(time.Hour))))
	require.NoError(t, db.SaveBet(ctx, makeBet("b3", domain.PlatformAzuro, "c3", base.Add(time.Hour))))
	require.NoError(t, db.SaveBet(ctx, makeBet("b4", domain.PlatformAzuro, "c4", base.Add(2*time.Hour))))

	var ids []string
	var after domain.BetCursor
	for {
		page, err := db.PendingBets(ctx, domain.PlatformAzuro, after, 2)
		require.NoError(t, err)
		for _, b := range page {
			ids = append(ids, b.ID)
		}
		if len(page) < 2 {
			break
		}
		after = domain.After(page[len(page)-1])
	}
	assert.Equal(t, []string{"b1", "b2", "b3", "b4"}, ids)
}

func TestSQLStore_ResolveBetOnlyOnce(t *testing.T) {
	db := openMemory(t)
	ctx := context.Background()
	require.NoError(t, db.SaveBet(ctx, makeBet("b1", domain.PlatformManifold, "m1", time.Now())))

	resolvedAt := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, db.ResolveBet(ctx, "b1", domain.BetWon, 150, resolvedAt))

	got, err := db.GetBet(ctx, "b1")
	require.NoError(t, err)
	assert.Equal(t, domain.BetWon, got.Status)
	assert.InDelta(t, 150.0, got.PnL, 1e-9)
	require.NotNil(t, got.ResolvedAt)
	assert.True(t, resolvedAt.Equal(*got.ResolvedAt))

	err = db.ResolveBet(ctx, "b1", domain.BetLost, -100, resolvedAt)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	pending, err := db.PendingBets(ctx, domain.PlatformManifold, domain.BetCursor{}, 10)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestSQLStore_ListBetsFilters(t *testing.T) {
	db := openMemory(t)
	ctx := context.Background()
	base := time.Now().Add(-time.Hour)

	require.NoError(t, db.SaveBet(ctx, makeBet("b1", domain.PlatformPolymarket, "m1", base)))
	require.NoError(t, db.SaveBet(ctx, makeBet("b2", domain.PlatformPolymarket, "m2", base.Add(time.Minute))))
	require.NoError(t, db.SaveBet(ctx, makeBet("b3", domain.PlatformLimitless, "m3", base.Add(2*time.Minute))))
	require.NoError(t, db.ResolveBet(ctx, "b2", domain.BetLost, -100, time.Now()))

	all, err := db.ListBets(ctx, domain.BetFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "b3", all[0].ID, "más recientes primero")

	poly, err := db.ListBets(ctx, domain.BetFilter{Platform: domain.PlatformPolymarket, Status: domain.BetPending})
	require.NoError(t, err)
	require.Len(t, poly, 1)
	assert.Equal(t, "b1", poly[0].ID)

	limited, err := db.ListBets(ctx, domain.BetFilter{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestSQLStore_UserStats(t *testing.T) {
	db := openMemory(t)
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, db.SaveBet(ctx, makeBet("b1", domain.PlatformPolymarket, "m1", now)))
	require.NoError(t, db.SaveBet(ctx, makeBet("b2", domain.PlatformPolymarket, "m2", now)))
	require.NoError(t, db.SaveBet(ctx, makeBet("b3", domain.PlatformPolymarket, "m3", now)))
	require.NoError(t, db.ResolveBet(ctx, "b1", domain.BetWon, 150, now))
	require.NoError(t, db.ResolveBet(ctx, "b2", domain.BetLost, -100, now))

	stats, err := db.UserStats(ctx, user)
	require.NoError(t, err)
	require.Len(t, stats, 1)

	s := stats[0]
	assert.Equal(t, 3, s.TotalBets)
	assert.Equal(t, 1, s.Wins)
	assert.Equal(t, 1, s.Losses)
	assert.Equal(t, 1, s.Pending)
	assert.InDelta(t, 200.0, s.Volume, 1e-9, "las pendientes no cuentan volumen")
	assert.InDelta(t, 50.0, s.PnL, 1e-9)
	assert.InDelta(t, 0.5, s.WinRate, 1e-9)
}

func TestSQLStore_Snapshot(t *testing.T) {
	db := openMemory(t)
	ctx := context.Background()

	_, err := db.LoadSnapshot(ctx)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	first := domain.Snapshot{
		Entries:   []domain.LeaderboardEntry{{Rank: 1, Address: user, Score: 700, Tier: domain.TierGold}},
		Sources:   []domain.SourceStatus{{Platform: domain.PlatformAzuro, OK: true, Count: 1}},
		UpdatedAt: time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, db.SaveSnapshot(ctx, first))

	second := first
	second.UpdatedAt = first.UpdatedAt.Add(time.Minute)
	second.Entries = nil
	require.NoError(t, db.SaveSnapshot(ctx, second))

	got, err := db.LoadSnapshot(ctx)
	require.NoError(t, err)
	assert.True(t, second.UpdatedAt.Equal(got.UpdatedAt))
	assert.Empty(t, got.Entries)
	assert.Equal(t, domain.PlatformAzuro, got.Sources[0].Platform)
}

func TestSQLStore_MissingTable(t *testing.T) {
	db, err := storage.Open(context.Background(), storage.Config{DSN: ":memory:", SkipSchema: true})
	require.NoError(t, err)
	defer db.Close()

	_, err = db.PendingBets(context.Background(), domain.PlatformPolymarket, domain.BetCursor{}, 10)
	assert.ErrorIs(t, err, domain.ErrTableMissing)
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := storage.Open(context.Background(), storage.Config{Driver: "mysql"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
