package ports

import (
	"context"
	"time"

	"github.com/alejandrodnm/truthbounty/internal/domain"
)

// TradeStore persiste las apuestas simuladas.
type TradeStore interface {
	// SaveBet inserta una apuesta nueva. Devuelve domain.ErrDuplicateBet si el
	// usuario ya apostó en ese mercado.
	SaveBet(ctx context.Context, bet domain.Bet) error

	GetBet(ctx context.Context, id string) (domain.Bet, error)
	ListBets(ctx context.Context, filter domain.BetFilter) ([]domain.Bet, error)

	// PendingBets devuelve hasta limit apuestas pendientes de la plataforma
	// posteriores al cursor, las más antiguas primero.
	PendingBets(ctx context.Context, platform domain.Platform, after domain.BetCursor, limit int) ([]domain.Bet, error)

	ResolveBet(ctx context.Context, id string, status domain.BetStatus, pnl float64, resolvedAt time.Time) error

	// UserStats agrega las apuestas del usuario por plataforma.
	UserStats(ctx context.Context, user string) ([]domain.UserStats, error)

	Ping(ctx context.Context) error
	Close() error
}

// SnapshotStore persiste el último leaderboard unificado (arranque en caliente, multi-instancia).
type SnapshotStore interface {
	SaveSnapshot(ctx context.Context, snap domain.Snapshot) error
	// LoadSnapshot devuelve domain.ErrNotFound si no hay snapshot guardado.
	LoadSnapshot(ctx context.Context) (domain.Snapshot, error)
}

// RefreshLock coordina el refresh del leaderboard entre instancias.
type RefreshLock interface {
	// TryAcquire devuelve un release y true si obtuvo el lock.
	TryAcquire(ctx context.Context, ttl time.Duration) (release func(), ok bool, err error)
}
