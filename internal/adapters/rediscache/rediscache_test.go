package rediscache_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alejandrodnm/truthbounty/internal/adapters/rediscache"
	"github.com/alejandrodnm/truthbounty/internal/domain"
	"github.com/alejandrodnm/truthbounty/pkg/reputation"
)

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb, err := rediscache.Connect(context.Background(), rediscache.Config{Addr: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { rdb.Close() })
	return mr, rdb
}

func TestLock_Exclusive(t *testing.T) {
	_, rdb := newRedis(t)
	ctx := context.Background()
	a := rediscache.NewLock(rdb, "")
	b := rediscache.NewLock(rdb, "")

	release, ok, err := a.TryAcquire(ctx, time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	_, ok, err = b.TryAcquire(ctx, time.Minute)
	require.NoError(t, err)
	assert.False(t, ok, "otra instancia ya tiene el lock")

	release()

	release2, ok, err := b.TryAcquire(ctx, time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
	release2()
}

func TestLock_ReleaseDoesNotStealNewOwner(t *testing.T) {
	mr, rdb := newRedis(t)
	ctx := context.Background()
	lock := rediscache.NewLock(rdb, "k")

	release, ok, err := lock.TryAcquire(ctx, time.Second)
	require.NoError(t, err)
	require.True(t, ok)

	// El lock expira y otra instancia lo toma.
	mr.FastForward(2 * time.Second)
	_, ok, err = lock.TryAcquire(ctx, time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	release()
	assert.True(t, mr.Exists("k"), "el release viejo no borra el lock del nuevo dueño")
}

func TestSnapshotStore_RoundTripAndTTL(t *testing.T) {
	mr, rdb := newRedis(t)
	ctx := context.Background()
	store := rediscache.NewSnapshotStore(rdb, "", time.Hour)

	_, err := store.LoadSnapshot(ctx)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	snap := domain.Snapshot{
		Entries:   []domain.LeaderboardEntry{{Rank: 1, Address: "0xabc", Score: 900, Tier: domain.TierPlatinum}},
		UpdatedAt: time.Date(2025, 2, 3, 4, 5, 6, 0, time.UTC),
	}
	require.NoError(t, store.SaveSnapshot(ctx, snap))

	got, err := store.LoadSnapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, snap.Entries, got.Entries)
	assert.True(t, snap.UpdatedAt.Equal(got.UpdatedAt))

	mr.FastForward(2 * time.Hour)
	_, err = store.LoadSnapshot(ctx)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestReputationStore(t *testing.T) {
	_, rdb := newRedis(t)
	ctx := context.Background()
	store := rediscache.NewReputationStore(rdb, "", time.Hour)

	_, err := store.GetReputation(ctx, "0xabc")
	assert.ErrorIs(t, err, reputation.ErrNotFound)

	rep := reputation.Reputation{
		Address:   "0xabc",
		Score:     640,
		Tier:      "GOLD",
		Platforms: []reputation.PlatformScore{{Platform: "azuro", Score: 640, Weight: 1}},
		UpdatedAt: time.Date(2025, 2, 3, 4, 5, 6, 0, time.UTC),
	}
	require.NoError(t, store.SaveReputation(ctx, rep))

	got, err := store.GetReputation(ctx, "0xabc")
	require.NoError(t, err)
	assert.Equal(t, rep, got)
}
