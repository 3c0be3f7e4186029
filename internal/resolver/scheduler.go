package resolver

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/alejandrodnm/truthbounty/internal/domain"
)

// DefaultSchedule es la frecuencia por defecto de los jobs.
const DefaultSchedule = "@every 5m"

// runTimeout acota cada ejecución programada.
const runTimeout = 2 * time.Minute

// Scheduler ejecuta un Job por plataforma según una expresión cron.
type Scheduler struct {
	cron  *cron.Cron
	jobs  map[domain.Platform]*Job
	order []domain.Platform
	spec  string
}

// NewScheduler registra los jobs con la expresión dada (cron estándar o @every).
func NewScheduler(spec string, jobs ...*Job) (*Scheduler, error) {
	if spec == "" {
		spec = DefaultSchedule
	}
	logger := slogLogger{}
	s := &Scheduler{
		cron: cron.New(
			cron.WithLogger(logger),
			cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
		),
		jobs: make(map[domain.Platform]*Job, len(jobs)),
		spec: spec,
	}

	for _, job := range jobs {
		p := job.Platform()
		if _, dup := s.jobs[p]; dup {
			continue
		}
		if _, err := s.cron.AddFunc(spec, s.scheduled(job)); err != nil {
			return nil, fmt.Errorf("resolver.NewScheduler: %w: schedule %q: %v", domain.ErrInvalidInput, spec, err)
		}
		s.jobs[p] = job
		s.order = append(s.order, p)
	}
	return s, nil
}

func (s *Scheduler) scheduled(job *Job) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
		defer cancel()
		if _, err := job.Run(ctx); err != nil {
			slog.Error("scheduled resolution failed", "platform", job.Platform(), "err", err)
		}
	}
}

// Platforms devuelve las plataformas con job registrado.
func (s *Scheduler) Platforms() []domain.Platform {
	out := make([]domain.Platform, len(s.order))
	copy(out, s.order)
	return out
}

// RunByPlatform ejecuta ahora el job de la plataforma.
func (s *Scheduler) RunByPlatform(ctx context.Context, p domain.Platform) (RunReport, error) {
	job, ok := s.jobs[p]
	if !ok {
		return RunReport{Platform: p}, fmt.Errorf("resolver.RunByPlatform: %w: %s has no resolver", domain.ErrNotSupported, p)
	}
	return job.Run(ctx)
}

// RunAll ejecuta todos los jobs en secuencia. Un fallo no detiene al resto.
func (s *Scheduler) RunAll(ctx context.Context) ([]RunReport, error) {
	reports := make([]RunReport, 0, len(s.order))
	var firstErr error
	for _, p := range s.order {
		report, err := s.jobs[p].Run(ctx)
		if err != nil {
			slog.Error("resolution failed", "platform", p, "err", err)
			if firstErr == nil {
				firstErr = err
			}
		}
		reports = append(reports, report)
	}
	return reports, firstErr
}

// Start arranca el cron en background.
func (s *Scheduler) Start() {
	slog.Info("resolver scheduler starting", "schedule", s.spec, "platforms", s.order)
	s.cron.Start()
}

// Stop detiene el cron y espera a las ejecuciones en curso o a que ctx expire.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		slog.Info("resolver scheduler stopped")
	case <-ctx.Done():
		slog.Warn("resolver scheduler stop timed out")
	}
}

// slogLogger adapta cron.Logger a slog.
type slogLogger struct{}

func (slogLogger) Info(msg string, keysAndValues ...any) {
	slog.Debug("cron: "+msg, keysAndValues...)
}

func (slogLogger) Error(err error, msg string, keysAndValues ...any) {
	slog.Error("cron: "+msg, append(keysAndValues, "err", err)...)
}
