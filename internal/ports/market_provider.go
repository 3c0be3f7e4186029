package ports

import (
	"context"

	"github.com/alejandrodnm/truthbounty/internal/domain"
)

// PlatformAdapter es lo mínimo que expone cada adapter de plataforma.
type PlatformAdapter interface {
	Platform() domain.Platform
}

// MarketProvider obtiene los mercados abiertos de una plataforma
// ya traducidos a domain.MarketData.
type MarketProvider interface {
	PlatformAdapter
	FetchMarkets(ctx context.Context, limit int) ([]domain.MarketData, error)
}
