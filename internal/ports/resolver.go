package ports

import (
	"context"

	"github.com/alejandrodnm/truthbounty/internal/domain"
)

// Resolver consulta el oráculo/subgraph de la plataforma para saber si un mercado se resolvió.
type Resolver interface {
	PlatformAdapter
	ResolveMarket(ctx context.Context, marketID string) (domain.Resolution, error)
}
