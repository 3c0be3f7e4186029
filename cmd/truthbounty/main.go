package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alejandrodnm/truthbounty/config"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	leaderboardOnce := flag.Bool("leaderboard", false, "refresh the unified leaderboard once, print it and exit")
	resolveOnce := flag.String("resolve", "", "run the resolution job once for a platform (or \"all\") and exit")
	verbose := flag.Bool("verbose", false, "set log level to debug")
	logFormat := flag.String("format", "", "log format: text|json (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err, "path", *configPath)
		os.Exit(1)
	}

	if *verbose {
		cfg.Log.Level = "debug"
	}
	if *logFormat != "" {
		cfg.Log.Format = *logFormat
	}
	setupLogger(cfg.Log)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	slog.Info("truthbounty starting",
		"config", *configPath,
		"storage", cfg.Storage.Driver,
		"redis", cfg.Redis.Enabled(),
		"kafka", cfg.Kafka.Enabled(),
	)

	a, err := newApp(ctx, cfg)
	if err != nil {
		slog.Error("failed to start", "err", err)
		os.Exit(1)
	}
	defer a.Close()

	switch {
	case *leaderboardOnce:
		err = runLeaderboard(ctx, a)
	case *resolveOnce != "":
		err = runResolve(ctx, a, *resolveOnce)
	default:
		err = a.Serve(ctx)
	}
	if err != nil {
		slog.Error("truthbounty exited with error", "err", err)
		a.Close()
		os.Exit(1)
	}

	slog.Info("truthbounty stopped cleanly")
}

func setupLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}
