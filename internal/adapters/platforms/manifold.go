package platforms

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/alejandrodnm/truthbounty/internal/adapters/httpx"
	"github.com/alejandrodnm/truthbounty/internal/domain"
)

const (
	manifoldBase     = "https://api.manifold.markets"
	manifoldMaxLimit = 1000
)

// Manifold usa dinero ficticio (mana); los usuarios se identifican por id de cuenta.
type Manifold struct {
	client *httpx.Client
	base   string
}

func NewManifold(client *httpx.Client, base string) *Manifold {
	if base == "" {
		base = manifoldBase
	}
	return &Manifold{client: client, base: strings.TrimRight(base, "/")}
}

func (m *Manifold) Platform() domain.Platform { return domain.PlatformManifold }

// FetchLeaderboard devuelve el top por profit. Manifold no expone volumen ni
// nº de apuestas en este endpoint: solo puntúa el bonus de profit.
func (m *Manifold) FetchLeaderboard(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error) {
	limit = clampLimit(limit, 100, manifoldMaxLimit)
	u := fmt.Sprintf("%s/v0/leaderboard?kind=profit&limit=%d", m.base, limit)

	var raw []manifoldLeader
	if err := m.client.GetJSON(ctx, u, &raw); err != nil {
		return nil, fmt.Errorf("manifold.FetchLeaderboard: %w", err)
	}

	entries := make([]domain.LeaderboardEntry, 0, len(raw))
	for _, l := range raw {
		entries = append(entries, domain.LeaderboardEntry{
			Address:  l.UserID,
			Username: l.Username,
			PnL:      toFloat(l.Score),
		})
	}
	return finalizeEntries(domain.PlatformManifold, entries), nil
}

func (m *Manifold) FetchMarkets(ctx context.Context, limit int) ([]domain.MarketData, error) {
	limit = clampLimit(limit, 50, manifoldMaxLimit)
	u := fmt.Sprintf("%s/v0/search-markets?sort=liquidity&filter=open&contractType=BINARY&limit=%d", m.base, limit)

	var raw []manifoldMarket
	if err := m.client.GetJSON(ctx, u, &raw); err != nil {
		return nil, fmt.Errorf("manifold.FetchMarkets: %w", err)
	}

	markets := make([]domain.MarketData, 0, len(raw))
	for _, mm := range raw {
		if mm.OutcomeType != "" && mm.OutcomeType != "BINARY" {
			continue
		}
		markets = append(markets, mm.toDomain())
	}
	return markets, nil
}

// ResolveMarket: YES/NO liquidan el outcome; CANCEL y MKT devuelven el stake.
func (m *Manifold) ResolveMarket(ctx context.Context, marketID string) (domain.Resolution, error) {
	u := fmt.Sprintf("%s/v0/market/%s", m.base, url.PathEscape(marketID))

	var mm manifoldMarket
	if err := m.client.GetJSON(ctx, u, &mm); err != nil {
		return domain.Resolution{}, fmt.Errorf("manifold.ResolveMarket: %w", err)
	}

	res := domain.Resolution{MarketID: marketID}
	if !mm.IsResolved {
		return res, nil
	}
	switch strings.ToUpper(mm.Resolution) {
	case "YES":
		res.Resolved, res.WinningOutcome = true, 0
	case "NO":
		res.Resolved, res.WinningOutcome = true, 1
	case "CANCEL", "MKT":
		res.Resolved, res.Refund = true, true
	}
	return res, nil
}

func (mm manifoldMarket) toDomain() domain.MarketData {
	status := domain.MarketOpen
	if mm.IsResolved {
		status = domain.MarketResolved
	}
	return domain.MarketData{
		Platform:  domain.PlatformManifold,
		ID:        mm.ID,
		Question:  mm.Question,
		Slug:      mm.Slug,
		URL:       mm.URL,
		Outcomes:  []string{"YES", "NO"},
		Prices:    []float64{mm.Probability, 1 - mm.Probability},
		Volume:    toFloat(mm.Volume),
		Liquidity: toFloat(mm.Liquidity),
		EndDate:   fromUnix(mm.CloseTime),
		Status:    status,
	}
}
