package ports

import (
	"context"

	"github.com/alejandrodnm/truthbounty/internal/domain"
)

// EventPublisher emite eventos de dominio hacia sistemas externos.
type EventPublisher interface {
	PublishResolution(ctx context.Context, evt domain.TradeResolved) error
	Close() error
}
