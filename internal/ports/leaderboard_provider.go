package ports

import (
	"context"

	"github.com/alejandrodnm/truthbounty/internal/domain"
)

// LeaderboardProvider obtiene el top de traders de una plataforma, ya puntuados.
type LeaderboardProvider interface {
	PlatformAdapter
	FetchLeaderboard(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error)
}
