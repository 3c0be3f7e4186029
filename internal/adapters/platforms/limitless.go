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
	limitlessBase     = "https://api.limitless.exchange"
	limitlessSiteBase = "https://limitless.exchange/markets/"
	limitlessMaxLimit = 100
)

// Limitless identifica los mercados por slug y da los precios en porcentaje.
type Limitless struct {
	client *httpx.Client
	base   string
}

func NewLimitless(client *httpx.Client, base string) *Limitless {
	if base == "" {
		base = limitlessBase
	}
	return &Limitless{client: client, base: strings.TrimRight(base, "/")}
}

func (l *Limitless) Platform() domain.Platform { return domain.PlatformLimitless }

func (l *Limitless) FetchLeaderboard(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error) {
	limit = clampLimit(limit, 100, limitlessMaxLimit)
	u := fmt.Sprintf("%s/leaderboard?limit=%d", l.base, limit)

	var out limitlessLeaderboard
	if err := l.client.GetJSON(ctx, u, &out); err != nil {
		return nil, fmt.Errorf("limitless.FetchLeaderboard: %w", err)
	}

	entries := make([]domain.LeaderboardEntry, 0, len(out.Data))
	for _, t := range out.Data {
		entries = append(entries, domain.LeaderboardEntry{
			Address:  t.Account,
			Username: t.DisplayName,
			PnL:      toFloat(t.PnL),
			Volume:   toFloat(t.TotalVolume),
			Trades:   t.TotalTrades,
		})
	}
	return finalizeEntries(domain.PlatformLimitless, entries), nil
}

func (l *Limitless) FetchMarkets(ctx context.Context, limit int) ([]domain.MarketData, error) {
	limit = clampLimit(limit, 50, limitlessMaxLimit)
	u := fmt.Sprintf("%s/markets/active?limit=%d", l.base, limit)

	var out limitlessMarkets
	if err := l.client.GetJSON(ctx, u, &out); err != nil {
		return nil, fmt.Errorf("limitless.FetchMarkets: %w", err)
	}

	markets := make([]domain.MarketData, 0, len(out.Data))
	for _, lm := range out.Data {
		markets = append(markets, lm.toDomain())
	}
	return markets, nil
}

func (l *Limitless) ResolveMarket(ctx context.Context, marketID string) (domain.Resolution, error) {
	u := fmt.Sprintf("%s/markets/%s", l.base, url.PathEscape(marketID))

	var lm limitlessMarket
	if err := l.client.GetJSON(ctx, u, &lm); err != nil {
		return domain.Resolution{}, fmt.Errorf("limitless.ResolveMarket: %w", err)
	}

	res := domain.Resolution{MarketID: marketID}
	if !strings.EqualFold(lm.Status, "RESOLVED") || lm.WinningOutcomeIndex == nil {
		return res, nil
	}
	res.Resolved = true
	res.WinningOutcome = *lm.WinningOutcomeIndex
	return res, nil
}

func (lm limitlessMarket) toDomain() domain.MarketData {
	prices := make([]float64, len(lm.Prices))
	for i, p := range lm.Prices {
		prices[i] = toFloat(p.Shift(-2))
	}
	status := domain.MarketOpen
	if strings.EqualFold(lm.Status, "RESOLVED") {
		status = domain.MarketResolved
	}
	category := ""
	if len(lm.Categories) > 0 {
		category = lm.Categories[0]
	}
	id := lm.Slug
	if id == "" {
		id = fmt.Sprintf("%d", lm.ID)
	}
	return domain.MarketData{
		Platform:  domain.PlatformLimitless,
		ID:        id,
		Question:  lm.Title,
		Slug:      lm.Slug,
		URL:       limitlessSiteBase + lm.Slug,
		Category:  category,
		Outcomes:  []string{"YES", "NO"},
		Prices:    prices,
		Volume:    toFloat(lm.Volume),
		Liquidity: toFloat(lm.Liquidity),
		EndDate:   fromUnix(lm.ExpirationTimestamp),
		Status:    status,
	}
}
