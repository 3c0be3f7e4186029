package platforms

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/alejandrodnm/truthbounty/internal/adapters/httpx"
	"github.com/alejandrodnm/truthbounty/internal/domain"
)

const sxbetBase = "https://api.sx.bet"

// Estados y outcomes de los mercados de SX Bet.
const (
	sxStatusActive  = "ACTIVE"
	sxStatusSettled = "SETTLED"

	sxOutcomeVoid = 0
	sxOutcomeOne  = 1
	sxOutcomeTwo  = 2
)

// SXBet es un exchange deportivo. La API pública no da precios sin libro de órdenes,
// así que los mercados se devuelven sin Prices.
type SXBet struct {
	client *httpx.Client
	base   string
}

func NewSXBet(client *httpx.Client, base string) *SXBet {
	if base == "" {
		base = sxbetBase
	}
	return &SXBet{client: client, base: strings.TrimRight(base, "/")}
}

func (s *SXBet) Platform() domain.Platform { return domain.PlatformSXBet }

func (s *SXBet) FetchMarkets(ctx context.Context, limit int) ([]domain.MarketData, error) {
	limit = clampLimit(limit, 50, 500)
	u := s.base + "/markets/active?onlyMainLine=true"

	var resp sxMarketsResponse
	if err := s.client.GetJSON(ctx, u, &resp); err != nil {
		return nil, fmt.Errorf("sxbet.FetchMarkets: %w", err)
	}

	markets := make([]domain.MarketData, 0, min(limit, len(resp.Data.Markets)))
	for _, sm := range resp.Data.Markets {
		if len(markets) >= limit {
			break
		}
		markets = append(markets, sm.toDomain())
	}
	return markets, nil
}

// ResolveMarket: outcome 1/2 liquidan el primer/segundo outcome; 0 con SETTLED es void.
func (s *SXBet) ResolveMarket(ctx context.Context, marketID string) (domain.Resolution, error) {
	u := fmt.Sprintf("%s/markets/find?marketHashes=%s", s.base, url.QueryEscape(marketID))

	var resp sxFindResponse
	if err := s.client.GetJSON(ctx, u, &resp); err != nil {
		return domain.Resolution{}, fmt.Errorf("sxbet.ResolveMarket: %w", err)
	}
	if len(resp.Data) == 0 {
		return domain.Resolution{}, fmt.Errorf("sxbet.ResolveMarket: %w: market %s", domain.ErrNotFound, marketID)
	}

	sm := resp.Data[0]
	res := domain.Resolution{MarketID: marketID}
	if sm.Status != sxStatusSettled {
		return res, nil
	}
	switch sm.Outcome {
	case sxOutcomeOne:
		res.Resolved, res.WinningOutcome = true, 0
	case sxOutcomeTwo:
		res.Resolved, res.WinningOutcome = true, 1
	case sxOutcomeVoid:
		res.Resolved, res.Refund = true, true
	}
	return res, nil
}

func (sm sxMarket) toDomain() domain.MarketData {
	question := sm.TeamOneName + " vs " + sm.TeamTwoName
	if sm.TeamOneName == "" || sm.TeamTwoName == "" {
		question = sm.OutcomeOneName + " / " + sm.OutcomeTwoName
	}
	status := domain.MarketOpen
	switch sm.Status {
	case sxStatusActive, "":
	case sxStatusSettled:
		status = domain.MarketResolved
	default:
		status = domain.MarketClosed
	}
	return domain.MarketData{
		Platform: domain.PlatformSXBet,
		ID:       sm.MarketHash,
		Question: question,
		Category: strings.TrimSpace(sm.SportLabel + " " + sm.LeagueLabel),
		Outcomes: []string{sm.OutcomeOneName, sm.OutcomeTwoName},
		EndDate:  fromUnix(sm.GameTime),
		Status:   status,
	}
}
