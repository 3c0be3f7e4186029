package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/alejandrodnm/truthbounty/config"
	"github.com/alejandrodnm/truthbounty/internal/adapters/events"
	"github.com/alejandrodnm/truthbounty/internal/adapters/httpapi"
	"github.com/alejandrodnm/truthbounty/internal/adapters/metrics"
	"github.com/alejandrodnm/truthbounty/internal/adapters/platforms"
	"github.com/alejandrodnm/truthbounty/internal/adapters/rediscache"
	"github.com/alejandrodnm/truthbounty/internal/adapters/storage"
	"github.com/alejandrodnm/truthbounty/internal/domain"
	"github.com/alejandrodnm/truthbounty/internal/leaderboard"
	"github.com/alejandrodnm/truthbounty/internal/ports"
	"github.com/alejandrodnm/truthbounty/internal/resolver"
	"github.com/alejandrodnm/truthbounty/internal/simulation"
	"github.com/alejandrodnm/truthbounty/internal/truthscore"
	"github.com/alejandrodnm/truthbounty/pkg/reputation"
)

// app agrupa las dependencias construidas desde la config.
type app struct {
	cfg         *config.Config
	metrics     *metrics.Metrics
	registry    *platforms.Registry
	store       *storage.SQLStore
	rdb         *redis.Client
	publisher   ports.EventPublisher
	leaderboard *leaderboard.Service
	scheduler   *resolver.Scheduler
	simulator   *simulation.Simulator
	scores      *truthscore.Service

	closeOnce sync.Once
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	a := &app{cfg: cfg, metrics: metrics.New()}

	settings, err := platformSettings(cfg.Platforms)
	if err != nil {
		return nil, err
	}
	a.registry = platforms.NewRegistry(settings, a.metrics)
	slog.Info("platforms enabled", "platforms", a.registry.Enabled())

	a.store, err = storage.Open(ctx, storage.Config{
		Driver:     cfg.Storage.Driver,
		DSN:        cfg.Storage.DSN,
		SkipSchema: cfg.Storage.SkipSchema,
	})
	if err != nil {
		return nil, err
	}

	if cfg.Redis.Enabled() {
		a.rdb, err = rediscache.Connect(ctx, rediscache.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			a.Close()
			return nil, err
		}
	}

	a.publisher = events.Noop{}
	if cfg.Kafka.Enabled() {
		a.publisher, err = events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		if err != nil {
			a.Close()
			return nil, err
		}
	}

	a.leaderboard = a.newLeaderboard()

	a.scheduler, err = a.newScheduler()
	if err != nil {
		a.Close()
		return nil, err
	}

	a.simulator = simulation.New(a.registry, a.store)
	a.scores = a.newTruthScore()
	return a, nil
}

func platformSettings(in map[string]config.PlatformConfig) (map[domain.Platform]platforms.Settings, error) {
	out := make(map[domain.Platform]platforms.Settings, len(in))
	for name, pc := range in {
		p, err := domain.ParsePlatform(name)
		if err != nil {
			return nil, fmt.Errorf("config platforms: %w", err)
		}
		out[p] = platforms.Settings{
			Enabled:    pc.IsEnabled(),
			BaseURL:    pc.BaseURL,
			DataURL:    pc.DataURL,
			RatePerSec: pc.RatePerSec,
			Burst:      pc.Burst,
		}
	}
	return out, nil
}

func (a *app) newLeaderboard() *leaderboard.Service {
	lbCfg := leaderboard.Config{
		TTL:            a.cfg.TTL(),
		StaleAfter:     a.cfg.StaleAfter(),
		SourceTimeout:  a.cfg.SourceTimeout(),
		PerSourceLimit: a.cfg.Leaderboard.PerSourceLimit,
		PageSize:       a.cfg.Leaderboard.PageSize,
		MaxPageSize:    a.cfg.Leaderboard.MaxPageSize,
		Concurrency:    a.cfg.Leaderboard.Concurrency,
	}

	opts := []leaderboard.Option{leaderboard.WithMetrics(a.metrics)}
	if a.rdb != nil {
		opts = append(opts,
			leaderboard.WithSnapshotStore(rediscache.NewSnapshotStore(a.rdb, "", a.cfg.StaleAfter())),
			leaderboard.WithLock(rediscache.NewLock(a.rdb, "")),
		)
	} else {
		opts = append(opts, leaderboard.WithSnapshotStore(a.store))
	}
	return leaderboard.New(lbCfg, a.registry.Leaderboards(), opts...)
}

func (a *app) newScheduler() (*resolver.Scheduler, error) {
	var jobs []*resolver.Job
	for _, r := range a.registry.Resolvers() {
		jobs = append(jobs, resolver.NewJob(r, a.store,
			resolver.WithPublisher(a.publisher),
			resolver.WithMetrics(a.metrics),
			resolver.WithBatchSize(a.cfg.Resolver.BatchSize),
		))
	}
	return resolver.NewScheduler(a.cfg.Resolver.Schedule, jobs...)
}

func (a *app) newTruthScore() *truthscore.Service {
	var repStore reputation.StorageProvider = reputation.NewMemoryStorage()
	if a.rdb != nil {
		repStore = rediscache.NewReputationStore(a.rdb, "", a.cfg.ScoreMaxAge()*2)
	}

	var lbPlatforms []domain.Platform
	for _, lp := range a.registry.Leaderboards() {
		lbPlatforms = append(lbPlatforms, lp.Platform())
	}
	adapters := truthscore.NewLeaderboardAdapters(a.leaderboard, lbPlatforms...)
	adapters = append(adapters, truthscore.NewSimulatedAdapter(a.store))

	engine := reputation.New(repStore, adapters...)
	return truthscore.New(engine, a.leaderboard, a.cfg.ScoreMaxAge())
}

func (a *app) healthChecks() []httpapi.HealthCheck {
	checks := []httpapi.HealthCheck{{Name: "storage", Ping: a.store.Ping}}
	if a.rdb != nil {
		checks = append(checks, httpapi.HealthCheck{
			Name: "redis",
			Ping: func(ctx context.Context) error { return a.rdb.Ping(ctx).Err() },
		})
	}
	return checks
}

// Serve levanta HTTP, el cron de resolución y el warm loop del leaderboard
// hasta que ctx se cancele.
func (a *app) Serve(ctx context.Context) error {
	server := httpapi.New(httpapi.Config{
		Addr:           a.cfg.Server.Addr,
		AllowedOrigins: a.cfg.Server.AllowedOrigins,
		ReadTimeout:    a.cfg.ReadTimeout(),
	}, httpapi.Deps{
		Platforms:   a.registry,
		Leaderboard: a.leaderboard,
		TruthScore:  a.scores,
		Simulator:   a.simulator,
		Resolver:    a.scheduler,
		Bets:        a.store,
		Health:      a.healthChecks(),
		Metrics:     a.metrics.Handler(),
	})

	a.scheduler.Start()
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		a.scheduler.Stop(stopCtx)
	}()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return a.leaderboard.Run(gctx, 0) })
	g.Go(func() error { return server.Run(gctx) })

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// Close libera conexiones. Es idempotente.
func (a *app) Close() {
	a.closeOnce.Do(func() {
		if a.publisher != nil {
			if err := a.publisher.Close(); err != nil {
				slog.Warn("close publisher", "err", err)
			}
		}
		if a.rdb != nil {
			if err := a.rdb.Close(); err != nil {
				slog.Warn("close redis", "err", err)
			}
		}
		if a.store != nil {
			if err := a.store.Close(); err != nil {
				slog.Warn("close storage", "err", err)
			}
		}
	})
}
