// Package simulation registra apuestas simuladas (demo) sobre mercados reales.
package simulation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/alejandrodnm/truthbounty/internal/domain"
	"github.com/alejandrodnm/truthbounty/internal/ports"
)

// MaxAmount es el stake máximo de una apuesta simulada.
const MaxAmount = 10_000

// marketScanLimit es cuántos mercados abiertos se consultan para localizar el de la apuesta.
const marketScanLimit = 200

// Platforms resuelve los adapters por plataforma. *platforms.Registry lo implementa.
type Platforms interface {
	Markets(p domain.Platform) (ports.MarketProvider, error)
	Resolver(p domain.Platform) (ports.Resolver, error)
}

// Request es una apuesta tal como llega del cliente.
type Request struct {
	Platform domain.Platform
	User     string
	MarketID string
	Outcome  int
	Amount   float64
	Price    float64 // opcional: si es 0 se usa el precio actual del mercado
}

// Simulator valida y persiste apuestas simuladas.
type Simulator struct {
	platforms Platforms
	store     ports.TradeStore
	now       func() time.Time
}

// New crea un Simulator.
func New(platforms Platforms, store ports.TradeStore) *Simulator {
	return &Simulator{platforms: platforms, store: store, now: time.Now}
}

// Place valida la apuesta contra el mercado y la guarda como pending.
// Devuelve domain.ErrDuplicateBet si el usuario ya apostó en ese mercado.
func (s *Simulator) Place(ctx context.Context, req Request) (domain.Bet, error) {
	platform, err := domain.ParsePlatform(string(req.Platform))
	if err != nil {
		return domain.Bet{}, fmt.Errorf("simulation.Place: %w", err)
	}
	req.Platform = platform

	user, err := validate(req)
	if err != nil {
		return domain.Bet{}, err
	}

	bet := domain.Bet{
		ID:        uuid.NewString(),
		Platform:  req.Platform,
		User:      user,
		MarketID:  strings.TrimSpace(req.MarketID),
		Outcome:   req.Outcome,
		Amount:    req.Amount,
		Price:     req.Price,
		Status:    domain.BetPending,
		CreatedAt: s.now().UTC(),
	}

	if err := s.checkMarket(ctx, &bet); err != nil {
		return domain.Bet{}, err
	}
	if bet.Price <= 0 || bet.Price >= 1 {
		return domain.Bet{}, fmt.Errorf("simulation.Place: %w: price must be between 0 and 1 (market price unavailable)", domain.ErrInvalidInput)
	}
	if bet.OutcomeLabel == "" {
		bet.OutcomeLabel = domain.MarketData{}.OutcomeLabel(bet.Outcome)
	}

	if err := s.store.SaveBet(ctx, bet); err != nil {
		return domain.Bet{}, fmt.Errorf("simulation.Place: %w", err)
	}

	slog.Info("simulated bet placed",
		"id", bet.ID,
		"platform", bet.Platform,
		"user", bet.User,
		"market", bet.MarketID,
		"question", domain.TruncateQuestion(bet.Question, bet.MarketID, 60),
		"outcome", bet.Outcome,
		"amount", bet.Amount,
		"price", bet.Price,
	)
	return bet, nil
}

func validate(req Request) (string, error) {
	user, err := domain.NormalizeUser(req.Platform, req.User)
	if err != nil {
		return "", fmt.Errorf("simulation.Place: %w", err)
	}
	if strings.TrimSpace(req.MarketID) == "" {
		return "", fmt.Errorf("simulation.Place: %w: marketId is required", domain.ErrInvalidInput)
	}
	if req.Outcome < 0 {
		return "", fmt.Errorf("simulation.Place: %w: outcome must be >= 0", domain.ErrInvalidInput)
	}
	if req.Amount <= 0 || req.Amount > MaxAmount {
		return "", fmt.Errorf("simulation.Place: %w: amount must be in (0, %d]", domain.ErrInvalidInput, MaxAmount)
	}
	if req.Price < 0 || req.Price >= 1 {
		return "", fmt.Errorf("simulation.Place: %w: price must be between 0 and 1", domain.ErrInvalidInput)
	}
	return user, nil
}

// checkMarket completa la apuesta con los datos del mercado si la plataforma
// los expone, y rechaza mercados cerrados o resueltos.
func (s *Simulator) checkMarket(ctx context.Context, bet *domain.Bet) error {
	market, found := s.findMarket(ctx, bet.Platform, bet.MarketID)
	if found {
		if !market.IsOpen() {
			return fmt.Errorf("simulation.Place: %w: %s", domain.ErrMarketClosed, bet.MarketID)
		}
		if len(market.Outcomes) > 0 && bet.Outcome >= len(market.Outcomes) {
			return fmt.Errorf("simulation.Place: %w: outcome %d out of range (market has %d)",
				domain.ErrInvalidInput, bet.Outcome, len(market.Outcomes))
		}
		if bet.Price == 0 {
			bet.Price = market.PriceOf(bet.Outcome)
		}
		bet.MarketID = market.ID
		bet.Question = market.Question
		bet.OutcomeLabel = market.OutcomeLabel(bet.Outcome)
		return nil
	}

	resolver, err := s.platforms.Resolver(bet.Platform)
	if err != nil {
		return nil
	}
	res, err := resolver.ResolveMarket(ctx, bet.MarketID)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return fmt.Errorf("simulation.Place: market %s: %w", bet.MarketID, domain.ErrNotFound)
	case err != nil:
		slog.Warn("market status check failed, accepting bet", "platform", bet.Platform, "market", bet.MarketID, "err", err)
		return nil
	case res.Resolved:
		return fmt.Errorf("simulation.Place: %w: %s already resolved", domain.ErrMarketClosed, bet.MarketID)
	}
	return nil
}

func (s *Simulator) findMarket(ctx context.Context, p domain.Platform, id string) (domain.MarketData, bool) {
	provider, err := s.platforms.Markets(p)
	if err != nil {
		return domain.MarketData{}, false
	}
	markets, err := provider.FetchMarkets(ctx, marketScanLimit)
	if err != nil {
		slog.Warn("market lookup failed", "platform", p, "market", id, "err", err)
		return domain.MarketData{}, false
	}
	for _, m := range markets {
		if m.ID == id || (m.Slug != "" && m.Slug == id) {
			return m, true
		}
	}
	return domain.MarketData{}, false
}
