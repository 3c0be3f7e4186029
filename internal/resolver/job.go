// Package resolver marca las apuestas simuladas como ganadas, perdidas o
// reembolsadas consultando el oráculo de cada plataforma.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/alejandrodnm/truthbounty/internal/domain"
	"github.com/alejandrodnm/truthbounty/internal/ports"
)

// DefaultBatchSize es cuántas apuestas pendientes se leen por página.
const DefaultBatchSize = 500

// MaxBatchSize coincide con el límite de listado del store.
const MaxBatchSize = 1000

// Recorder cuenta las apuestas resueltas. *metrics.Metrics lo implementa.
type Recorder interface {
	TradeResolved(p domain.Platform, status domain.BetStatus)
}

// RunReport resume una ejecución del job.
type RunReport struct {
	Platform domain.Platform `json:"platform"`
	Checked  int             `json:"checked"`
	Markets  int             `json:"markets"`
	Won      int             `json:"won"`
	Lost     int             `json:"lost"`
	Refunded int             `json:"refunded"`
	Skipped  int             `json:"skipped"`
	Errors   int             `json:"errors"`
}

// Resolved devuelve cuántas apuestas cambiaron de estado.
func (r RunReport) Resolved() int { return r.Won + r.Lost + r.Refunded }

// JobOption configura un Job.
type JobOption func(*Job)

// WithPublisher emite un TradeResolved por cada apuesta resuelta.
func WithPublisher(p ports.EventPublisher) JobOption {
	return func(j *Job) { j.publisher = p }
}

// WithMetrics registra las resoluciones.
func WithMetrics(rec Recorder) JobOption {
	return func(j *Job) { j.rec = rec }
}

// WithBatchSize fija el tamaño de página al leer pendientes (máximo MaxBatchSize).
func WithBatchSize(n int) JobOption {
	return func(j *Job) {
		if n > 0 {
			j.batchSize = min(n, MaxBatchSize)
		}
	}
}

// WithClock reemplaza time.Now (tests).
func WithClock(now func() time.Time) JobOption {
	return func(j *Job) { j.now = now }
}

// Job resuelve las apuestas pendientes de una plataforma.
type Job struct {
	platform  domain.Platform
	resolver  ports.Resolver
	store     ports.TradeStore
	publisher ports.EventPublisher
	rec       Recorder
	batchSize int
	now       func() time.Time

	mu sync.Mutex // una ejecución a la vez por plataforma
}

// NewJob crea el job de la plataforma del resolver.
func NewJob(resolver ports.Resolver, store ports.TradeStore, opts ...JobOption) *Job {
	j := &Job{
		platform:  resolver.Platform(),
		resolver:  resolver,
		store:     store,
		batchSize: DefaultBatchSize,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(j)
	}
	return j
}

// Platform devuelve la plataforma del job.
func (j *Job) Platform() domain.Platform { return j.platform }

// Run recorre todas las apuestas pendientes en páginas de batchSize. Cada
// mercado se consulta una sola vez por ejecución; el fallo de un mercado no
// aborta el resto.
func (j *Job) Run(ctx context.Context) (RunReport, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	report := RunReport{Platform: j.platform}
	start := time.Now()
	seen := make(map[string]marketResult)

	var after domain.BetCursor
	for {
		bets, err := j.store.PendingBets(ctx, j.platform, after, j.batchSize)
		if errors.Is(err, domain.ErrTableMissing) {
			slog.Info("bets table missing, nothing to resolve", "platform", j.platform)
			return report, nil
		}
		if err != nil {
			return report, fmt.Errorf("resolver.Run: %s: load pending: %w", j.platform, err)
		}

		report.Checked += len(bets)
		order, byMarket := groupByMarket(bets)
		for _, marketID := range order {
			if err := ctx.Err(); err != nil {
				return report, fmt.Errorf("resolver.Run: %s: %w", j.platform, err)
			}
			j.resolveMarket(ctx, marketID, byMarket[marketID], seen, &report)
		}

		if len(bets) < j.batchSize {
			break
		}
		after = domain.After(bets[len(bets)-1])
	}
	report.Markets = len(seen)

	if report.Checked > 0 {
		slog.Info("resolution run complete",
			"platform", j.platform,
			"checked", report.Checked,
			"markets", report.Markets,
			"won", report.Won,
			"lost", report.Lost,
			"refunded", report.Refunded,
			"skipped", report.Skipped,
			"errors", report.Errors,
			"duration", time.Since(start).Round(time.Millisecond),
		)
	}
	return report, nil
}

// marketResult guarda la consulta de un mercado dentro de una ejecución.
type marketResult struct {
	res domain.Resolution
	err error
}

func (j *Job) resolveMarket(ctx context.Context, marketID string, bets []domain.Bet, seen map[string]marketResult, report *RunReport) {
	mr, ok := seen[marketID]
	if !ok {
		mr.res, mr.err = j.resolver.ResolveMarket(ctx, marketID)
		seen[marketID] = mr
		if mr.err != nil {
			slog.Warn("market resolution failed", "platform", j.platform, "market", marketID, "err", mr.err)
			report.Errors++
		}
	}
	if mr.err != nil || !mr.res.Resolved {
		report.Skipped += len(bets)
		return
	}
	res := mr.res

	resolvedAt := j.now().UTC()
	for _, bet := range bets {
		status, pnl := bet.Payout(res)

		err := j.store.ResolveBet(ctx, bet.ID, status, pnl, resolvedAt)
		switch {
		case errors.Is(err, domain.ErrNotFound):
			// Otra ejecución la resolvió antes.
			report.Skipped++
			continue
		case err != nil:
			slog.Warn("persist resolution failed", "platform", j.platform, "bet", bet.ID, "err", err)
			report.Errors++
			continue
		}

		switch status {
		case domain.BetWon:
			report.Won++
		case domain.BetLost:
			report.Lost++
		case domain.BetRefunded:
			report.Refunded++
		}
		if j.rec != nil {
			j.rec.TradeResolved(j.platform, status)
		}
		j.publish(ctx, domain.TradeResolved{
			BetID:      bet.ID,
			Platform:   j.platform,
			User:       bet.User,
			MarketID:   bet.MarketID,
			Status:     status,
			PnL:        pnl,
			ResolvedAt: resolvedAt,
		})
	}
}

func (j *Job) publish(ctx context.Context, evt domain.TradeResolved) {
	if j.publisher == nil {
		return
	}
	if err := j.publisher.PublishResolution(ctx, evt); err != nil {
		slog.Warn("publish resolution failed", "bet", evt.BetID, "err", err)
	}
}

// groupByMarket agrupa conservando el orden de llegada (más antiguas primero).
func groupByMarket(bets []domain.Bet) ([]string, map[string][]domain.Bet) {
	var order []string
	byMarket := make(map[string][]domain.Bet)
	for _, b := range bets {
		if _, ok := byMarket[b.MarketID]; !ok {
			order = append(order, b.MarketID)
		}
		byMarket[b.MarketID] = append(byMarket[b.MarketID], b)
	}
	return order, byMarket
}
