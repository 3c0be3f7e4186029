package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/alejandrodnm/truthbounty/internal/adapters/notify"
	"github.com/alejandrodnm/truthbounty/internal/domain"
	"github.com/alejandrodnm/truthbounty/internal/leaderboard"
)

// runLeaderboard refresca el leaderboard una vez e imprime la primera página.
func runLeaderboard(ctx context.Context, a *app) error {
	slog.Info("=== LEADERBOARD: one refresh across all platforms ===")

	snap, err := a.leaderboard.Refresh(ctx)
	if err != nil {
		return fmt.Errorf("leaderboard refresh: %w", err)
	}

	page, err := a.leaderboard.Get(ctx, leaderboard.Query{Limit: a.cfg.Leaderboard.MaxPageSize})
	if err != nil {
		return fmt.Errorf("leaderboard page: %w", err)
	}
	notify.NewConsole().PrintLeaderboard(page)

	slog.Info("leaderboard complete", "entries", len(snap.Entries), "sources", len(snap.Sources))
	return nil
}

// runResolve ejecuta el job de resolución de una plataforma ("all" para todas).
func runResolve(ctx context.Context, a *app, target string) error {
	console := notify.NewConsole()

	if strings.EqualFold(target, "all") {
		reports, err := a.scheduler.RunAll(ctx)
		console.PrintReports(reports)
		if err != nil {
			return fmt.Errorf("resolve all: %w", err)
		}
		return nil
	}

	p, err := domain.ParsePlatform(target)
	if err != nil {
		return fmt.Errorf("resolve: %w", err)
	}
	report, err := a.scheduler.RunByPlatform(ctx, p)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", p, err)
	}
	console.PrintReport(report)
	return nil
}
