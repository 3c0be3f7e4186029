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
	polymarketDataBase  = "https://data-api.polymarket.com"
	polymarketGammaBase = "https://gamma-api.polymarket.com"
	polymarketSiteBase  = "https://polymarket.com/event/"

	polymarketMaxLimit = 500
)

// Polymarket lee el leaderboard de la data-api y los mercados/resoluciones de Gamma.
type Polymarket struct {
	client    *httpx.Client
	dataBase  string
	gammaBase string
}

// NewPolymarket crea el adapter. Bases vacías usan las URLs públicas.
func NewPolymarket(client *httpx.Client, gammaBase, dataBase string) *Polymarket {
	if gammaBase == "" {
		gammaBase = polymarketGammaBase
	}
	if dataBase == "" {
		dataBase = polymarketDataBase
	}
	return &Polymarket{
		client:    client,
		dataBase:  strings.TrimRight(dataBase, "/"),
		gammaBase: strings.TrimRight(gammaBase, "/"),
	}
}

func (p *Polymarket) Platform() domain.Platform { return domain.PlatformPolymarket }

// FetchLeaderboard devuelve el top por PnL all-time. La data-api no da nº de
// trades, así que el scoring los estima a partir del volumen.
func (p *Polymarket) FetchLeaderboard(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error) {
	limit = clampLimit(limit, 100, polymarketMaxLimit)
	u := fmt.Sprintf("%s/v1/leaderboard?timePeriod=ALL&orderBy=PNL&limit=%d", p.dataBase, limit)

	var raw []polymarketTrader
	if err := p.client.GetJSON(ctx, u, &raw); err != nil {
		return nil, fmt.Errorf("polymarket.FetchLeaderboard: %w", err)
	}

	entries := make([]domain.LeaderboardEntry, 0, len(raw))
	for _, t := range raw {
		entries = append(entries, domain.LeaderboardEntry{
			Address:  t.ProxyWallet,
			Username: t.UserName,
			PnL:      toFloat(t.PnL),
			Volume:   toFloat(t.Vol),
		})
	}
	return finalizeEntries(domain.PlatformPolymarket, entries), nil
}

// FetchMarkets devuelve los mercados activos ordenados por volumen 24h.
func (p *Polymarket) FetchMarkets(ctx context.Context, limit int) ([]domain.MarketData, error) {
	limit = clampLimit(limit, 50, polymarketMaxLimit)
	u := fmt.Sprintf("%s/markets?active=true&closed=false&order=volume24hr&ascending=false&limit=%d", p.gammaBase, limit)

	var raw []gammaMarket
	if err := p.client.GetJSON(ctx, u, &raw); err != nil {
		return nil, fmt.Errorf("polymarket.FetchMarkets: %w", err)
	}

	markets := make([]domain.MarketData, 0, len(raw))
	for _, gm := range raw {
		markets = append(markets, gm.toDomain())
	}
	return markets, nil
}

// ResolveMarket consulta Gamma por condition_id. Un mercado cerrado está
// resuelto cuando algún outcome liquida a 1; si todos liquidan igual se anuló.
func (p *Polymarket) ResolveMarket(ctx context.Context, marketID string) (domain.Resolution, error) {
	u := fmt.Sprintf("%s/markets?condition_ids=%s", p.gammaBase, url.QueryEscape(marketID))

	var raw []gammaMarket
	if err := p.client.GetJSON(ctx, u, &raw); err != nil {
		return domain.Resolution{}, fmt.Errorf("polymarket.ResolveMarket: %w", err)
	}
	if len(raw) == 0 {
		return domain.Resolution{}, fmt.Errorf("polymarket.ResolveMarket: %w: market %s", domain.ErrNotFound, marketID)
	}

	gm := raw[0]
	res := domain.Resolution{MarketID: marketID}
	if !gm.Closed {
		return res, nil
	}
	winner, refund, ok := winnerFromPrices(parsePrices(parseStringArray(gm.OutcomePrices)))
	if !ok {
		return res, nil
	}
	res.Resolved = true
	res.WinningOutcome = winner
	res.Refund = refund
	return res, nil
}

func (gm gammaMarket) toDomain() domain.MarketData {
	id := gm.ConditionID
	if id == "" {
		id = gm.ID
	}
	status := domain.MarketOpen
	if gm.Closed {
		status = domain.MarketClosed
	}
	m := domain.MarketData{
		Platform:  domain.PlatformPolymarket,
		ID:        id,
		Question:  gm.Question,
		Slug:      gm.Slug,
		Category:  gm.Category,
		Outcomes:  parseStringArray(gm.Outcomes),
		Prices:    parsePrices(parseStringArray(gm.OutcomePrices)),
		Volume:    toFloat(gm.Volume),
		Liquidity: toFloat(gm.Liquidity),
		EndDate:   parseTime(gm.EndDate),
		Status:    status,
	}
	if gm.Slug != "" {
		m.URL = polymarketSiteBase + gm.Slug
	}
	return m
}
