// Package reputation es el SDK reutilizable de TruthScore: cualquier aplicación
// puede registrar sus propios adapters de plataforma y un storage, y obtener
// una reputación agregada por dirección con el mismo motor de scoring.
//
// Uso típico:
//
//	engine := reputation.New(reputation.NewMemoryStorage(), myAdapter)
//	rep, err := engine.Get(ctx, "0xabc...", 10*time.Minute)
package reputation

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNoActivity indica que la dirección no tiene actividad en la plataforma
	// (o en ninguna, cuando lo devuelve Engine.Compute).
	ErrNoActivity = errors.New("reputation: no activity")

	// ErrNotFound lo devuelve un StorageProvider cuando no hay reputación guardada.
	ErrNotFound = errors.New("reputation: not found")
)

// Stats es la actividad de una dirección en una plataforma.
type Stats struct {
	PnL    float64
	Volume float64
	Trades int

	// Wins/Losses observados. Si HasCounts es false se estiman desde el ROI.
	Wins      int
	Losses    int
	HasCounts bool
}

// PlatformScore es la contribución de una plataforma a la reputación.
type PlatformScore struct {
	Platform string  `json:"platform"`
	Score    int     `json:"score"`
	Tier     string  `json:"tier"`
	Trades   int     `json:"trades"`
	Weight   float64 `json:"weight"`
	PnL      float64 `json:"pnl"`
	Volume   float64 `json:"volume"`
	WinRate  float64 `json:"winRate"`
}

// Reputation es el TruthScore agregado de una dirección.
type Reputation struct {
	Address   string          `json:"address"`
	Score     int             `json:"score"`
	Tier      string          `json:"tier"`
	Platforms []PlatformScore `json:"platforms"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// StorageProvider persiste reputaciones calculadas.
type StorageProvider interface {
	// GetReputation devuelve ErrNotFound si no hay nada guardado.
	GetReputation(ctx context.Context, address string) (Reputation, error)
	SaveReputation(ctx context.Context, rep Reputation) error
}

// PlatformAdapter expone la actividad de una dirección en una plataforma.
type PlatformAdapter interface {
	Platform() string
	// UserStats devuelve ErrNoActivity si la dirección no operó en la plataforma.
	UserStats(ctx context.Context, address string) (Stats, error)
}
