package leaderboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/alejandrodnm/truthbounty/internal/domain"
	"github.com/alejandrodnm/truthbounty/internal/ports"
)

// Recorder recibe los eventos del cache. *metrics.Metrics lo implementa.
type Recorder interface {
	CacheResult(result string)
	RefreshDone(outcome string)
	SetEntries(n int)
}

type noopRecorder struct{}

func (noopRecorder) CacheResult(string) {}
func (noopRecorder) RefreshDone(string) {}
func (noopRecorder) SetEntries(int)     {}

// Option configura el Service.
type Option func(*Service)

// WithSnapshotStore comparte el snapshot con otras instancias y sobrevive reinicios.
func WithSnapshotStore(store ports.SnapshotStore) Option {
	return func(s *Service) { s.store = store }
}

// WithLock evita que varias instancias refresquen a la vez.
func WithLock(lock ports.RefreshLock) Option {
	return func(s *Service) { s.lock = lock }
}

// WithMetrics registra hits/misses y resultados de refresh.
func WithMetrics(rec Recorder) Option {
	return func(s *Service) {
		if rec != nil {
			s.rec = rec
		}
	}
}

// WithClock reemplaza time.Now (tests).
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// Service es el cache del leaderboard unificado.
type Service struct {
	cfg       Config
	providers []ports.LeaderboardProvider
	store     ports.SnapshotStore
	lock      ports.RefreshLock
	rec       Recorder
	now       func() time.Time

	mu   sync.RWMutex
	snap domain.Snapshot

	group      singleflight.Group
	refreshing atomic.Bool
}

// New crea el Service. Los providers suelen venir de platforms.Registry.Leaderboards().
func New(cfg Config, providers []ports.LeaderboardProvider, opts ...Option) *Service {
	s := &Service{
		cfg:       cfg.withDefaults(),
		providers: providers,
		rec:       noopRecorder{},
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Config devuelve la configuración efectiva.
func (s *Service) Config() Config { return s.cfg }

// Current devuelve el snapshot en memoria (vacío si nunca se llenó).
func (s *Service) Current() domain.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

func (s *Service) set(snap domain.Snapshot) {
	s.mu.Lock()
	if snap.UpdatedAt.After(s.snap.UpdatedAt) {
		s.snap = snap
	}
	s.mu.Unlock()
}

// Get devuelve una página del leaderboard. Sirve desde cache siempre que puede.
func (s *Service) Get(ctx context.Context, q Query) (Page, error) {
	if err := q.Validate(s.cfg.MaxPageSize); err != nil {
		return Page{}, err
	}
	snap, stale, err := s.snapshot(ctx)
	if err != nil {
		return Page{}, err
	}
	page := q.apply(snap, s.cfg)
	page.Stale = stale
	return page, nil
}

// Find busca una dirección ya normalizada en el leaderboard actual.
func (s *Service) Find(ctx context.Context, address string) (domain.LeaderboardEntry, error) {
	snap, _, err := s.snapshot(ctx)
	if err != nil {
		return domain.LeaderboardEntry{}, err
	}
	e, ok := snap.Find(address)
	if !ok {
		return domain.LeaderboardEntry{}, fmt.Errorf("leaderboard.Find: %s: %w", address, domain.ErrNotFound)
	}
	return e, nil
}

// snapshot aplica la política fresh / stale / miss.
func (s *Service) snapshot(ctx context.Context) (domain.Snapshot, bool, error) {
	cur := s.Current()
	if cur.IsEmpty() {
		if shared, ok := s.loadShared(ctx); ok && shared.Age(s.now()) < s.cfg.StaleAfter {
			s.set(shared)
			cur = shared
		}
	}

	age := cur.Age(s.now())
	switch {
	case age < s.cfg.TTL:
		s.rec.CacheResult("fresh")
		return cur, false, nil
	case age < s.cfg.StaleAfter:
		s.rec.CacheResult("stale")
		s.refreshAsync()
		return cur, true, nil
	}

	s.rec.CacheResult("miss")
	snap, err := s.refreshShared(ctx)
	if err == nil {
		// Un snapshot adoptado de otra instancia puede venir ya pasado de TTL.
		return snap, snap.Age(s.now()) >= s.cfg.TTL, nil
	}
	if !cur.IsEmpty() {
		slog.Warn("leaderboard refresh failed, serving stale snapshot",
			"age", age.Round(time.Second),
			"err", err,
		)
		return cur, true, nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return domain.Snapshot{}, false, fmt.Errorf("leaderboard.Get: %w", err)
	}
	return domain.Snapshot{}, false, fmt.Errorf("leaderboard.Get: %w: %w", domain.ErrUpstream, err)
}

// Refresh fuerza un refresh. Si ya hay uno en curso se une a él.
func (s *Service) Refresh(ctx context.Context) (domain.Snapshot, error) {
	return s.refreshShared(ctx)
}

// refreshAsync lanza un refresh en background si no hay ninguno en curso.
func (s *Service) refreshAsync() {
	if !s.refreshing.CompareAndSwap(false, true) {
		return
	}
	go func() {
		defer s.refreshing.Store(false)
		if _, err := s.refreshShared(context.Background()); err != nil {
			slog.Warn("background leaderboard refresh failed", "err", err)
		}
	}()
}

// refreshShared agrupa los refresh concurrentes del proceso en uno solo.
// El refresh corre desacoplado del ctx del caller: si ese request se cancela,
// los demás que esperan el mismo resultado no se ven afectados.
func (s *Service) refreshShared(ctx context.Context) (domain.Snapshot, error) {
	ch := s.group.DoChan("refresh", func() (any, error) {
		rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.RefreshTimeout)
		defer cancel()
		return s.doRefresh(rctx)
	})

	select {
	case <-ctx.Done():
		return domain.Snapshot{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return domain.Snapshot{}, res.Err
		}
		return res.Val.(domain.Snapshot), nil
	}
}

func (s *Service) doRefresh(ctx context.Context) (domain.Snapshot, error) {
	// Otra instancia pudo haber refrescado ya.
	if shared, ok := s.loadShared(ctx); ok && shared.Age(s.now()) < s.cfg.TTL {
		s.set(shared)
		s.rec.RefreshDone("shared")
		slog.Debug("adopted shared leaderboard snapshot", "updated_at", shared.UpdatedAt)
		return shared, nil
	}

	if s.lock != nil {
		release, ok, err := s.lock.TryAcquire(ctx, s.cfg.LockTTL)
		switch {
		case err != nil:
			slog.Warn("refresh lock unavailable, refreshing locally", "err", err)
		case !ok:
			// Solo se adopta lo que aún puede servirse como stale.
			now := s.now()
			if shared, found := s.loadShared(ctx); found && shared.Age(now) < s.cfg.StaleAfter {
				s.set(shared)
				s.rec.RefreshDone("shared")
				return shared, nil
			}
			if cur := s.Current(); !cur.IsEmpty() && cur.Age(now) < s.cfg.StaleAfter {
				return cur, nil
			}
			slog.Info("refresh lock held by another instance and no usable snapshot, refreshing locally")
		default:
			defer release()
		}
	}

	start := s.now()
	results := fetchAll(ctx, s.providers, s.cfg.PerSourceLimit, s.cfg.SourceTimeout, s.cfg.Concurrency)

	sources := make([]domain.SourceStatus, 0, len(results))
	withEntries, failed := 0, 0
	for _, r := range results {
		sources = append(sources, r.status)
		if !r.status.OK {
			failed++
		} else if len(r.entries) > 0 {
			withEntries++
		}
	}

	if withEntries == 0 {
		s.rec.RefreshDone("error")
		return domain.Snapshot{}, fmt.Errorf("leaderboard.refresh: %w: %d of %d sources failed",
			domain.ErrNoData, failed, len(results))
	}

	snap := domain.Snapshot{
		Entries:   merge(results),
		Sources:   sources,
		UpdatedAt: s.now(),
	}
	s.set(snap)
	s.rec.SetEntries(len(snap.Entries))
	if failed > 0 {
		s.rec.RefreshDone("partial")
	} else {
		s.rec.RefreshDone("ok")
	}

	if s.store != nil {
		if err := s.store.SaveSnapshot(ctx, snap); err != nil {
			slog.Warn("snapshot store save failed", "err", err)
		}
	}

	slog.Info("leaderboard refreshed",
		"entries", len(snap.Entries),
		"sources", len(results),
		"failed", failed,
		"duration", s.now().Sub(start).Round(time.Millisecond),
	)
	return snap, nil
}

func (s *Service) loadShared(ctx context.Context) (domain.Snapshot, bool) {
	if s.store == nil {
		return domain.Snapshot{}, false
	}
	snap, err := s.store.LoadSnapshot(ctx)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			slog.Warn("snapshot store load failed", "err", err)
		}
		return domain.Snapshot{}, false
	}
	return snap, true
}

// Run mantiene el cache caliente refrescando antes de que expire el TTL,
// hasta que el contexto se cancele.
func (s *Service) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = s.cfg.TTL * 4 / 5
	}
	slog.Info("leaderboard warm loop starting",
		"interval", interval,
		"sources", len(s.providers),
	)

	if _, err := s.Refresh(ctx); err != nil && ctx.Err() == nil {
		slog.Error("leaderboard refresh failed", "err", err)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("leaderboard warm loop stopped")
			return nil
		case <-ticker.C:
			if _, err := s.Refresh(ctx); err != nil && ctx.Err() == nil {
				slog.Error("leaderboard refresh failed", "err", err)
			}
		}
	}
}
