package truthscore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/alejandrodnm/truthbounty/internal/domain"
	"github.com/alejandrodnm/truthbounty/pkg/reputation"
)

// DefaultMaxAge es cuánto vale una reputación calculada antes de recalcularla.
const DefaultMaxAge = 5 * time.Minute

// Result es la respuesta de /api/truthscore/:address.
type Result struct {
	reputation.Reputation
	Rank     int         `json:"rank,omitempty"`
	NextTier domain.Tier `json:"nextTier,omitempty"`
	Progress float64     `json:"progress"`
}

// Service calcula el TruthScore de una dirección.
type Service struct {
	engine *reputation.Engine
	finder EntryFinder
	maxAge time.Duration
}

// New crea el Service. finder puede ser nil (sin rank).
func New(engine *reputation.Engine, finder EntryFinder, maxAge time.Duration) *Service {
	if maxAge <= 0 {
		maxAge = DefaultMaxAge
	}
	return &Service{engine: engine, finder: finder, maxAge: maxAge}
}

// Get devuelve la reputación de address. domain.ErrNotFound si no tiene actividad.
func (s *Service) Get(ctx context.Context, address string) (Result, error) {
	addr := strings.TrimSpace(address)
	if strings.HasPrefix(strings.ToLower(addr), "0x") {
		norm, err := domain.NormalizeAddress(addr)
		if err != nil {
			return Result{}, fmt.Errorf("truthscore.Get: %w", err)
		}
		addr = norm
	}
	if addr == "" {
		return Result{}, fmt.Errorf("truthscore.Get: %w: empty address", domain.ErrInvalidInput)
	}

	rep, err := s.engine.Get(ctx, addr, s.maxAge)
	if errors.Is(err, reputation.ErrNoActivity) {
		return Result{}, fmt.Errorf("truthscore.Get: %s: %w", addr, domain.ErrNotFound)
	}
	if err != nil {
		return Result{}, fmt.Errorf("truthscore.Get: %w", err)
	}

	res := Result{
		Reputation: rep,
		Progress:   domain.ProgressToNext(rep.Score),
	}
	if t := domain.TierFor(rep.Score); t != domain.TierDiamond {
		res.NextTier, _ = t.Next()
	}
	if s.finder != nil {
		if e, err := s.finder.Find(ctx, addr); err == nil {
			res.Rank = e.Rank
		}
	}
	return res, nil
}
