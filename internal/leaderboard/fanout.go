package leaderboard

// fanout.go: consulta todas las plataformas en paralelo.
//
// Cada fuente tiene su propio timeout: una plataforma lenta no retrasa el
// leaderboard más allá de SourceTimeout, y su fallo no tumba al resto.

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/alejandrodnm/truthbounty/internal/domain"
	"github.com/alejandrodnm/truthbounty/internal/ports"
)

// sourceResult es lo que devolvió una plataforma durante un refresh.
type sourceResult struct {
	platform domain.Platform
	entries  []domain.LeaderboardEntry
	status   domain.SourceStatus
}

// fetchAll pide el leaderboard a cada provider con concurrencia acotada.
// Nunca devuelve error: los fallos quedan en el SourceStatus de cada fuente.
func fetchAll(
	ctx context.Context,
	providers []ports.LeaderboardProvider,
	limit int,
	timeout time.Duration,
	workers int,
) []sourceResult {
	results := make([]sourceResult, len(providers))

	g, gctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}

	for i, p := range providers {
		g.Go(func() error {
			results[i] = fetchOne(gctx, p, limit, timeout)
			return nil
		})
	}
	g.Wait()

	ok := 0
	for _, r := range results {
		if r.status.OK {
			ok++
		}
	}
	slog.Debug("leaderboard fan-out complete",
		"sources", len(providers),
		"ok", ok,
		"workers", workers,
	)
	return results
}

func fetchOne(ctx context.Context, p ports.LeaderboardProvider, limit int, timeout time.Duration) sourceResult {
	platform := p.Platform()
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	start := time.Now()
	entries, err := p.FetchLeaderboard(ctx, limit)
	latency := time.Since(start)

	res := sourceResult{
		platform: platform,
		status: domain.SourceStatus{
			Platform:  platform,
			LatencyMs: latency.Milliseconds(),
		},
	}
	if err != nil {
		slog.Warn("leaderboard source failed", "platform", platform, "latency", latency, "err", err)
		res.status.Err = err.Error()
		return res
	}

	res.entries = entries
	res.status.OK = true
	res.status.Count = len(entries)
	return res
}
