package resolver_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alejandrodnm/truthbounty/internal/adapters/storage"
	"github.com/alejandrodnm/truthbounty/internal/domain"
	"github.com/alejandrodnm/truthbounty/internal/resolver"
)

// --- mocks ---

type mockResolver struct {
	platform domain.Platform
	results  map[string]domain.Resolution
	errs     map[string]error

	mu    sync.Mutex
	calls map[string]int
}

func newMockResolver(p domain.Platform) *mockResolver {
	return &mockResolver{
		platform: p,
		results:  map[string]domain.Resolution{},
		errs:     map[string]error{},
		calls:    map[string]int{},
	}
}

func (m *mockResolver) Platform() domain.Platform { return m.platform }

func (m *mockResolver) ResolveMarket(_ context.Context, id string) (domain.Resolution, error) {
	m.mu.Lock()
	m.calls[id]++
	m.mu.Unlock()
	if err := m.errs[id]; err != nil {
		return domain.Resolution{}, err
	}
	r := m.results[id]
	r.MarketID = id
	return r, nil
}

type mockPublisher struct {
	events []domain.TradeResolved
	err    error
}

func (m *mockPublisher) PublishResolution(_ context.Context, evt domain.TradeResolved) error {
	m.events = append(m.events, evt)
	return m.err
}

func (m *mockPublisher) Close() error { return nil }

type countRecorder map[domain.BetStatus]int

func (c countRecorder) TradeResolved(_ domain.Platform, s domain.BetStatus) { c[s]++ }

// --- helpers ---

var t0 = time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

func openStore(t *testing.T) *storage.SQLStore {
	t.Helper()
	s, err := storage.Open(context.Background(), storage.Config{Driver: storage.DriverSQLite, DSN: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func seed(t *testing.T, s *storage.SQLStore, id, user, market string, outcome int, price float64, offset time.Duration) {
	t.Helper()
	require.NoError(t, s.SaveBet(context.Background(), domain.Bet{
		ID:        id,
		Platform:  domain.PlatformAzuro,
		User:      user,
		MarketID:  market,
		Outcome:   outcome,
		Amount:    100,
		Price:     price,
		Status:    domain.BetPending,
		CreatedAt: t0.Add(offset),
	}))
}

// --- tests ---

func TestJob_Run(t *testing.T) {
	store := openStore(t)
	seed(t, store, "b1", "0xa1", "c-won", 0, 0.25, 0)
	seed(t, store, "b2", "0xa2", "c-won", 1, 0.75, time.Minute)
	seed(t, store, "b3", "0xa1", "c-void", 0, 0.5, 2*time.Minute)
	seed(t, store, "b4", "0xa1", "c-open", 0, 0.5, 3*time.Minute)
	seed(t, store, "b5", "0xa1", "c-broken", 0, 0.5, 4*time.Minute)

	rv := newMockResolver(domain.PlatformAzuro)
	rv.results["c-won"] = domain.Resolution{Resolved: true, WinningOutcome: 0}
	rv.results["c-void"] = domain.Resolution{Resolved: true, Refund: true}
	rv.errs["c-broken"] = errors.New("subgraph 502")

	pub := &mockPublisher{}
	rec := countRecorder{}
	job := resolver.NewJob(rv, store,
		resolver.WithPublisher(pub),
		resolver.WithMetrics(rec),
		resolver.WithClock(func() time.Time { return t0.Add(time.Hour) }),
	)

	report, err := job.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, resolver.RunReport{
		Platform: domain.PlatformAzuro,
		Checked:  5,
		Markets:  4,
		Won:      1,
		Lost:     1,
		Refunded: 1,
		Skipped:  2,
		Errors:   1,
	}, report)
	assert.Equal(t, 1, rv.calls["c-won"], "un mercado se consulta una sola vez")

	won, err := store.GetBet(context.Background(), "b1")
	require.NoError(t, err)
	assert.Equal(t, domain.BetWon, won.Status)
	assert.InDelta(t, 300, won.PnL, 1e-9) // 100·(1/0.25 − 1)
	require.NotNil(t, won.ResolvedAt)

	lost, err := store.GetBet(context.Background(), "b2")
	require.NoError(t, err)
	assert.Equal(t, domain.BetLost, lost.Status)
	assert.InDelta(t, -100, lost.PnL, 1e-9)

	open, err := store.GetBet(context.Background(), "b4")
	require.NoError(t, err)
	assert.Equal(t, domain.BetPending, open.Status)

	require.Len(t, pub.events, 3)
	assert.Equal(t, "b1", pub.events[0].BetID)
	assert.Equal(t, domain.BetWon, pub.events[0].Status)
	assert.Equal(t, 1, rec[domain.BetRefunded])

	// Segunda pasada: solo quedan los mercados sin resolver.
	report, err = job.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, report.Checked)
	assert.Zero(t, report.Resolved())
}

func TestJob_PublishFailureDoesNotAbort(t *testing.T) {
	store := openStore(t)
	seed(t, store, "b1", "0xa1", "c1", 0, 0.5, 0)
	seed(t, store, "b2", "0xa2", "c1", 0, 0.5, time.Minute)

	rv := newMockResolver(domain.PlatformAzuro)
	rv.results["c1"] = domain.Resolution{Resolved: true, WinningOutcome: 1}
	job := resolver.NewJob(rv, store, resolver.WithPublisher(&mockPublisher{err: errors.New("kafka down")}))

	report, err := job.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, report.Lost)
	assert.Zero(t, report.Errors)
}

func TestJob_MissingTableIsSoftPass(t *testing.T) {
	store, err := storage.Open(context.Background(), storage.Config{
		Driver:     storage.DriverSQLite,
		DSN:        ":memory:",
		SkipSchema: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	job := resolver.NewJob(newMockResolver(domain.PlatformAzuro), store)
	report, err := job.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, resolver.RunReport{Platform: domain.PlatformAzuro}, report)
}

func TestJob_PagesThroughPending(t *testing.T) {
	store := openStore(t)
	// Las dos más antiguas llenan la primera página y su mercado sigue abierto.
	seed(t, store, "b1", "0xa1", "c-open", 0, 0.5, 0)
	seed(t, store, "b2", "0xa2", "c-open", 0, 0.5, time.Minute)
	seed(t, store, "b3", "0xa3", "c-done", 0, 0.5, 2*time.Minute)

	rv := newMockResolver(domain.PlatformAzuro)
	rv.results["c-done"] = domain.Resolution{Resolved: true, WinningOutcome: 0}
	job := resolver.NewJob(rv, store, resolver.WithBatchSize(2))

	report, err := job.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, report.Checked)
	assert.Equal(t, 2, report.Markets)
	assert.Equal(t, 1, report.Won)
	assert.Equal(t, 2, report.Skipped)
	assert.Equal(t, 1, rv.calls["c-open"])

	done, err := store.GetBet(context.Background(), "b3")
	require.NoError(t, err)
	assert.Equal(t, domain.BetWon, done.Status, "la apuesta nueva no queda detrás de un mercado abierto")
}

func TestJob_MarketQueriedOncePerRun(t *testing.T) {
	store := openStore(t)
	// El mismo mercado aparece en dos páginas distintas.
	seed(t, store, "b1", "0xa1", "c-broken", 0, 0.5, 0)
	seed(t, store, "b2", "0xa2", "c-other", 0, 0.5, time.Minute)
	seed(t, store, "b3", "0xa3", "c-broken", 0, 0.5, 2*time.Minute)

	rv := newMockResolver(domain.PlatformAzuro)
	rv.errs["c-broken"] = errors.New("subgraph 502")
	job := resolver.NewJob(rv, store, resolver.WithBatchSize(2))

	report, err := job.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, report.Checked)
	assert.Equal(t, 1, report.Errors)
	assert.Equal(t, 3, report.Skipped)
	assert.Equal(t, 1, rv.calls["c-broken"])
}

func TestScheduler(t *testing.T) {
	store := openStore(t)
	seed(t, store, "b1", "0xa1", "c1", 0, 0.5, 0)

	azuro := newMockResolver(domain.PlatformAzuro)
	azuro.results["c1"] = domain.Resolution{Resolved: true, WinningOutcome: 0}
	omen := newMockResolver(domain.PlatformOmen)

	sched, err := resolver.NewScheduler("@every 1h",
		resolver.NewJob(azuro, store),
		resolver.NewJob(omen, store),
	)
	require.NoError(t, err)
	assert.Equal(t, []domain.Platform{domain.PlatformAzuro, domain.PlatformOmen}, sched.Platforms())

	report, err := sched.RunByPlatform(context.Background(), domain.PlatformAzuro)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Won)

	_, err = sched.RunByPlatform(context.Background(), domain.PlatformKalshi)
	assert.ErrorIs(t, err, domain.ErrNotSupported)

	reports, err := sched.RunAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, reports, 2)

	sched.Start()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	sched.Stop(ctx)
}

func TestScheduler_InvalidSpec(t *testing.T) {
	_, err := resolver.NewScheduler("every now and then", resolver.NewJob(newMockResolver(domain.PlatformAzuro), openStore(t)))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
