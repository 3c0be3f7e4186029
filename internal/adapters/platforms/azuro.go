package platforms

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/alejandrodnm/truthbounty/internal/adapters/httpx"
	"github.com/alejandrodnm/truthbounty/internal/domain"
)

const (
	azuroSubgraph = "https://thegraph.azuro.org/subgraphs/name/azuro-protocol/azuro-api-polygon-v3"
	azuroMaxLimit = 1000
)

const azuroBettorsQuery = `query Bettors($first: Int!) {
  bettors(first: $first, orderBy: profit, orderDirection: desc) {
    id address betsCount wonBetsCount lostBetsCount profit turnover
  }
}`

const azuroConditionsQuery = `query Conditions($first: Int!) {
  conditions(first: $first, where: {status: Created}, orderBy: turnover, orderDirection: desc) {
    id conditionId status turnover
    game { title startsAt sport { name } }
    outcomes { outcomeId currentOdds }
  }
}`

const azuroConditionQuery = `query Condition($id: ID!) {
  condition(id: $id) {
    id conditionId status wonOutcomeIds
    outcomes { outcomeId }
  }
}`

// Azuro expone bettors con conteos reales de ganadas/perdidas, así que su
// TruthScore usa la cota de Wilson observada.
type Azuro struct {
	client   *httpx.Client
	subgraph string
}

func NewAzuro(client *httpx.Client, subgraph string) *Azuro {
	if subgraph == "" {
		subgraph = azuroSubgraph
	}
	return &Azuro{client: client, subgraph: strings.TrimRight(subgraph, "/")}
}

func (a *Azuro) Platform() domain.Platform { return domain.PlatformAzuro }

func (a *Azuro) FetchLeaderboard(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error) {
	limit = clampLimit(limit, 100, azuroMaxLimit)

	var out azuroBettors
	if err := a.client.Query(ctx, a.subgraph, azuroBettorsQuery, map[string]any{"first": limit}, &out); err != nil {
		return nil, fmt.Errorf("azuro.FetchLeaderboard: %w", err)
	}

	entries := make([]domain.LeaderboardEntry, 0, len(out.Bettors))
	for _, b := range out.Bettors {
		addr := b.Address
		if addr == "" {
			addr = b.ID
		}
		entries = append(entries, domain.LeaderboardEntry{
			Address:   addr,
			PnL:       toFloat(b.Profit),
			Volume:    toFloat(b.Turnover),
			Trades:    int(b.BetsCount.IntPart()),
			Wins:      int(b.WonBetsCount.IntPart()),
			Losses:    int(b.LostBetsCount.IntPart()),
			HasCounts: true,
		})
	}
	return finalizeEntries(domain.PlatformAzuro, entries), nil
}

func (a *Azuro) FetchMarkets(ctx context.Context, limit int) ([]domain.MarketData, error) {
	limit = clampLimit(limit, 50, azuroMaxLimit)

	var out azuroConditions
	if err := a.client.Query(ctx, a.subgraph, azuroConditionsQuery, map[string]any{"first": limit}, &out); err != nil {
		return nil, fmt.Errorf("azuro.FetchMarkets: %w", err)
	}

	markets := make([]domain.MarketData, 0, len(out.Conditions))
	for _, c := range out.Conditions {
		markets = append(markets, c.toDomain())
	}
	return markets, nil
}

// ResolveMarket: Resolved liquida el outcome ganador por posición; Canceled devuelve el stake.
func (a *Azuro) ResolveMarket(ctx context.Context, marketID string) (domain.Resolution, error) {
	var out azuroConditionByID
	if err := a.client.Query(ctx, a.subgraph, azuroConditionQuery, map[string]any{"id": marketID}, &out); err != nil {
		return domain.Resolution{}, fmt.Errorf("azuro.ResolveMarket: %w", err)
	}
	if out.Condition == nil {
		return domain.Resolution{}, fmt.Errorf("azuro.ResolveMarket: %w: condition %s", domain.ErrNotFound, marketID)
	}

	c := out.Condition
	res := domain.Resolution{MarketID: marketID}
	switch c.Status {
	case "Canceled":
		res.Resolved, res.Refund = true, true
	case "Resolved":
		if len(c.WonOutcomeIDs) == 0 {
			return res, nil
		}
		idx := slices.IndexFunc(c.Outcomes, func(o azuroOutcome) bool {
			return o.OutcomeID == c.WonOutcomeIDs[0]
		})
		if idx < 0 {
			return res, nil
		}
		res.Resolved, res.WinningOutcome = true, idx
	}
	return res, nil
}

func (c azuroCondition) toDomain() domain.MarketData {
	outcomes := make([]string, len(c.Outcomes))
	odds := make([]float64, len(c.Outcomes))
	for i, o := range c.Outcomes {
		outcomes[i] = o.OutcomeID
		odds[i] = toFloat(o.CurrentOdds)
	}
	id := c.ID
	if id == "" {
		id = c.ConditionID
	}
	return domain.MarketData{
		Platform: domain.PlatformAzuro,
		ID:       id,
		Question: c.Game.Title,
		Category: c.Game.Sport.Name,
		Outcomes: outcomes,
		Prices:   oddsToPrices(odds),
		Volume:   toFloat(c.Turnover),
		EndDate:  parseTime(c.Game.StartsAt),
		Status:   domain.MarketOpen,
	}
}
