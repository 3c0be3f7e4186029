package reputation_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alejandrodnm/truthbounty/pkg/reputation"
)

const addr = "0x00000000000000000000000000000000000000aa"

type stubAdapter struct {
	name  string
	stats reputation.Stats
	err   error
	calls atomic.Int32
}

func (s *stubAdapter) Platform() string { return s.name }

func (s *stubAdapter) UserStats(context.Context, string) (reputation.Stats, error) {
	s.calls.Add(1)
	return s.stats, s.err
}

func TestEngine_ComputeAggregates(t *testing.T) {
	store := reputation.NewMemoryStorage()
	poly := &stubAdapter{name: "polymarket", stats: reputation.Stats{PnL: 20_000, Volume: 300_000, Trades: 200}}
	sim := &stubAdapter{name: "simulated", stats: reputation.Stats{PnL: 150, Volume: 500, Trades: 10, Wins: 7, Losses: 3, HasCounts: true}}
	idle := &stubAdapter{name: "manifold", err: reputation.ErrNoActivity}
	broken := &stubAdapter{name: "azuro", err: errors.New("subgraph down")}

	engine := reputation.New(store, poly, sim, idle, broken)
	rep, err := engine.Compute(context.Background(), "0x00000000000000000000000000000000000000AA")
	require.NoError(t, err)

	assert.Equal(t, addr, rep.Address)
	assert.Positive(t, rep.Score)
	assert.NotEmpty(t, rep.Tier)
	require.Len(t, rep.Platforms, 2, "los adapters sin actividad o con error no cuentan")
	assert.GreaterOrEqual(t, rep.Platforms[0].Score, rep.Platforms[1].Score)

	var weights float64
	for _, p := range rep.Platforms {
		weights += p.Weight
	}
	assert.InDelta(t, 1, weights, 1e-3)

	saved, err := store.GetReputation(context.Background(), addr)
	require.NoError(t, err)
	assert.Equal(t, rep.Score, saved.Score)
}

func TestEngine_NoActivity(t *testing.T) {
	engine := reputation.New(reputation.NewMemoryStorage(),
		&stubAdapter{name: "manifold", err: reputation.ErrNoActivity},
	)
	_, err := engine.Compute(context.Background(), addr)
	assert.ErrorIs(t, err, reputation.ErrNoActivity)
}

func TestEngine_GetUsesFreshStoredValue(t *testing.T) {
	store := reputation.NewMemoryStorage()
	a := &stubAdapter{name: "polymarket", stats: reputation.Stats{PnL: 100, Volume: 1000, Trades: 5}}
	engine := reputation.New(store, a)

	require.NoError(t, store.SaveReputation(context.Background(), reputation.Reputation{
		Address:   addr,
		Score:     777,
		UpdatedAt: time.Now(),
	}))
	rep, err := engine.Get(context.Background(), addr, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 777, rep.Score)
	assert.Zero(t, a.calls.Load())

	require.NoError(t, store.SaveReputation(context.Background(), reputation.Reputation{
		Address:   addr,
		Score:     777,
		UpdatedAt: time.Now().Add(-time.Hour),
	}))
	rep, err = engine.Get(context.Background(), addr, time.Minute)
	require.NoError(t, err)
	assert.NotEqual(t, 777, rep.Score)
	assert.Equal(t, int32(1), a.calls.Load())
}

func TestEngine_EmptyAddress(t *testing.T) {
	_, err := reputation.New(reputation.NewMemoryStorage()).Compute(context.Background(), "  ")
	assert.Error(t, err)
}
