package reputation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/sync/errgroup"

	"github.com/alejandrodnm/truthbounty/internal/domain"
)

// Engine calcula reputaciones consultando todos los adapters en paralelo.
type Engine struct {
	storage  StorageProvider
	adapters []PlatformAdapter
	now      func() time.Time
}

// New crea un Engine. storage no puede ser nil: usar NewMemoryStorage si no hace falta persistir.
func New(storage StorageProvider, adapters ...PlatformAdapter) *Engine {
	return &Engine{storage: storage, adapters: adapters, now: time.Now}
}

// Compute recalcula la reputación de address y la persiste.
// Devuelve ErrNoActivity si ningún adapter tiene actividad para la dirección.
func (e *Engine) Compute(ctx context.Context, address string) (Reputation, error) {
	addr := normalize(address)
	if addr == "" {
		return Reputation{}, fmt.Errorf("reputation.Compute: %w: empty address", domain.ErrInvalidInput)
	}

	stats := make([]*Stats, len(e.adapters))
	g, gctx := errgroup.WithContext(ctx)
	for i, a := range e.adapters {
		g.Go(func() error {
			s, err := a.UserStats(gctx, addr)
			switch {
			case errors.Is(err, ErrNoActivity):
			case err != nil:
				slog.Warn("reputation adapter failed", "platform", a.Platform(), "address", addr, "err", err)
			default:
				stats[i] = &s
			}
			return nil
		})
	}
	g.Wait()

	var parts []domain.PlatformScore
	for i, s := range stats {
		if s == nil {
			continue
		}
		ts := domain.ComputeTruthScore(domain.ScoreInput{
			PnL:       s.PnL,
			Volume:    s.Volume,
			Trades:    s.Trades,
			Wins:      s.Wins,
			Losses:    s.Losses,
			HasCounts: s.HasCounts,
		})
		parts = append(parts, domain.PlatformScore{
			Platform: domain.Platform(e.adapters[i].Platform()),
			Score:    ts.Score,
			Trades:   ts.Trades,
			PnL:      s.PnL,
			Volume:   s.Volume,
			WinRate:  ts.WinRate,
		})
	}
	if len(parts) == 0 {
		return Reputation{}, fmt.Errorf("reputation.Compute: %s: %w", addr, ErrNoActivity)
	}

	sort.SliceStable(parts, func(i, j int) bool { return parts[i].Score > parts[j].Score })
	score, weighted := domain.AggregateTruthScore(parts)

	rep := Reputation{
		Address:   addr,
		Score:     score,
		Tier:      string(domain.TierFor(score)),
		Platforms: make([]PlatformScore, len(weighted)),
		UpdatedAt: e.now().UTC(),
	}
	for i, p := range weighted {
		rep.Platforms[i] = PlatformScore{
			Platform: string(p.Platform),
			Score:    p.Score,
			Tier:     string(domain.TierFor(p.Score)),
			Trades:   p.Trades,
			Weight:   p.Weight,
			PnL:      p.PnL,
			Volume:   p.Volume,
			WinRate:  p.WinRate,
		}
	}

	if err := e.storage.SaveReputation(ctx, rep); err != nil {
		return rep, fmt.Errorf("reputation.Compute: save: %w", err)
	}
	return rep, nil
}

// Get devuelve la reputación guardada si tiene menos de maxAge; si no, la recalcula.
func (e *Engine) Get(ctx context.Context, address string, maxAge time.Duration) (Reputation, error) {
	addr := normalize(address)
	rep, err := e.storage.GetReputation(ctx, addr)
	switch {
	case err == nil && e.now().Sub(rep.UpdatedAt) < maxAge:
		return rep, nil
	case err != nil && !errors.Is(err, ErrNotFound):
		slog.Warn("reputation storage read failed, recomputing", "address", addr, "err", err)
	}
	return e.Compute(ctx, addr)
}

// normalize pasa las wallets EVM a minúsculas; otros ids se dejan tal cual.
func normalize(address string) string {
	a := strings.TrimSpace(address)
	if common.IsHexAddress(a) {
		return strings.ToLower(common.HexToAddress(a).Hex())
	}
	return a
}
