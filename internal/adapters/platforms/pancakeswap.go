package platforms

import (
	"context"
	"fmt"
	"strings"

	"github.com/alejandrodnm/truthbounty/internal/adapters/httpx"
	"github.com/alejandrodnm/truthbounty/internal/domain"
)

const (
	pancakeSubgraph = "https://api.thegraph.com/subgraphs/name/pancakeswap/prediction-v2"
	pancakeMaxLimit = 1000
)

const pancakeUsersQuery = `query Users($first: Int!) {
  users(first: $first, orderBy: netBNB, orderDirection: desc) {
    id totalBets totalBetsClaimed totalBNB netBNB
  }
}`

const pancakeRoundQuery = `query Round($id: ID!) {
  round(id: $id) { id epoch position failed }
}`

// PancakeSwap Prediction: rondas Bull/Bear de 5 minutos sobre BNB.
// El id de mercado de una apuesta es el epoch de la ronda; outcome 0 = Bull, 1 = Bear.
type PancakeSwap struct {
	client   *httpx.Client
	subgraph string
}

func NewPancakeSwap(client *httpx.Client, subgraph string) *PancakeSwap {
	if subgraph == "" {
		subgraph = pancakeSubgraph
	}
	return &PancakeSwap{client: client, subgraph: strings.TrimRight(subgraph, "/")}
}

func (p *PancakeSwap) Platform() domain.Platform { return domain.PlatformPancakeSwap }

// FetchLeaderboard usa totalBetsClaimed como victorias: solo se reclaman las rondas ganadas.
func (p *PancakeSwap) FetchLeaderboard(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error) {
	limit = clampLimit(limit, 100, pancakeMaxLimit)

	var out pancakeUsers
	if err := p.client.Query(ctx, p.subgraph, pancakeUsersQuery, map[string]any{"first": limit}, &out); err != nil {
		return nil, fmt.Errorf("pancakeswap.FetchLeaderboard: %w", err)
	}

	entries := make([]domain.LeaderboardEntry, 0, len(out.Users))
	for _, u := range out.Users {
		total := int(u.TotalBets.IntPart())
		wins := int(u.TotalBetsClaimed.IntPart())
		entries = append(entries, domain.LeaderboardEntry{
			Address:   u.ID,
			PnL:       toFloat(u.NetBNB),
			Volume:    toFloat(u.TotalBNB),
			Trades:    total,
			Wins:      wins,
			Losses:    max(total-wins, 0),
			HasCounts: true,
		})
	}
	return finalizeEntries(domain.PlatformPancakeSwap, entries), nil
}

// ResolveMarket: una ronda fallida o ganada por la casa devuelve el stake.
func (p *PancakeSwap) ResolveMarket(ctx context.Context, marketID string) (domain.Resolution, error) {
	var out pancakeRound
	if err := p.client.Query(ctx, p.subgraph, pancakeRoundQuery, map[string]any{"id": strings.TrimSpace(marketID)}, &out); err != nil {
		return domain.Resolution{}, fmt.Errorf("pancakeswap.ResolveMarket: %w", err)
	}
	if out.Round == nil {
		return domain.Resolution{}, fmt.Errorf("pancakeswap.ResolveMarket: %w: round %s", domain.ErrNotFound, marketID)
	}

	r := out.Round
	res := domain.Resolution{MarketID: marketID}
	if r.Failed != nil && *r.Failed {
		res.Resolved, res.Refund = true, true
		return res, nil
	}
	if r.Position == nil {
		return res, nil
	}
	switch strings.ToLower(*r.Position) {
	case "bull":
		res.Resolved, res.WinningOutcome = true, 0
	case "bear":
		res.Resolved, res.WinningOutcome = true, 1
	case "house":
		res.Resolved, res.Refund = true, true
	}
	return res, nil
}
