// Package truthscore conecta el SDK de reputación con los datos de la aplicación:
// el leaderboard unificado y las apuestas simuladas.
package truthscore

import (
	"context"
	"errors"
	"fmt"

	"github.com/alejandrodnm/truthbounty/internal/domain"
	"github.com/alejandrodnm/truthbounty/internal/ports"
	"github.com/alejandrodnm/truthbounty/pkg/reputation"
)

// SimulatedPlatform es el nombre con el que aparecen las apuestas simuladas en el breakdown.
const SimulatedPlatform = "simulated"

// EntryFinder busca una dirección en el leaderboard. *leaderboard.Service lo implementa.
type EntryFinder interface {
	Find(ctx context.Context, address string) (domain.LeaderboardEntry, error)
}

// LeaderboardAdapter expone la actividad de una plataforma tal como aparece en el leaderboard.
type LeaderboardAdapter struct {
	platform domain.Platform
	finder   EntryFinder
}

// NewLeaderboardAdapters crea un adapter por plataforma.
func NewLeaderboardAdapters(finder EntryFinder, platforms ...domain.Platform) []reputation.PlatformAdapter {
	out := make([]reputation.PlatformAdapter, 0, len(platforms))
	for _, p := range platforms {
		out = append(out, &LeaderboardAdapter{platform: p, finder: finder})
	}
	return out
}

func (a *LeaderboardAdapter) Platform() string { return string(a.platform) }

func (a *LeaderboardAdapter) UserStats(ctx context.Context, address string) (reputation.Stats, error) {
	e, err := a.finder.Find(ctx, address)
	if errors.Is(err, domain.ErrNotFound) {
		return reputation.Stats{}, reputation.ErrNoActivity
	}
	if err != nil {
		return reputation.Stats{}, fmt.Errorf("truthscore.LeaderboardAdapter: %s: %w", a.platform, err)
	}

	// Entrada de una sola plataforma: conserva wins/losses observados.
	if len(e.Platforms) <= 1 && e.Platform == a.platform {
		return reputation.Stats{
			PnL:       e.PnL,
			Volume:    e.Volume,
			Trades:    e.Trades,
			Wins:      e.Wins,
			Losses:    e.Losses,
			HasCounts: e.Wins+e.Losses > 0,
		}, nil
	}

	for _, b := range e.Breakdown {
		if b.Platform == a.platform {
			return reputation.Stats{
				PnL:       b.PnL,
				Volume:    b.Volume,
				Trades:    b.Trades,
				Wins:      b.Wins,
				Losses:    b.Losses,
				HasCounts: b.HasCounts && b.Wins+b.Losses > 0,
			}, nil
		}
	}
	return reputation.Stats{}, reputation.ErrNoActivity
}

// SimulatedAdapter expone las apuestas simuladas ya decididas del usuario.
type SimulatedAdapter struct {
	store ports.TradeStore
}

// NewSimulatedAdapter crea el adapter sobre el TradeStore.
func NewSimulatedAdapter(store ports.TradeStore) *SimulatedAdapter {
	return &SimulatedAdapter{store: store}
}

func (a *SimulatedAdapter) Platform() string { return SimulatedPlatform }

func (a *SimulatedAdapter) UserStats(ctx context.Context, address string) (reputation.Stats, error) {
	stats, err := a.store.UserStats(ctx, address)
	if errors.Is(err, domain.ErrTableMissing) {
		return reputation.Stats{}, reputation.ErrNoActivity
	}
	if err != nil {
		return reputation.Stats{}, fmt.Errorf("truthscore.SimulatedAdapter: %w", err)
	}

	var out reputation.Stats
	for _, s := range stats {
		out.PnL += s.PnL
		out.Volume += s.Volume
		out.Wins += s.Wins
		out.Losses += s.Losses
	}
	out.Trades = out.Wins + out.Losses
	out.HasCounts = true
	if out.Trades == 0 {
		return reputation.Stats{}, reputation.ErrNoActivity
	}
	return out, nil
}
