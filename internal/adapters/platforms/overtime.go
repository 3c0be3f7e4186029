package platforms

import (
	"context"
	"fmt"
	"strings"

	"github.com/alejandrodnm/truthbounty/internal/adapters/httpx"
	"github.com/alejandrodnm/truthbounty/internal/domain"
)

const (
	overtimeSubgraph = "https://api.thegraph.com/subgraphs/name/thales-markets/overtime-optimism"
	overtimeMaxLimit = 1000
)

const overtimeUsersQuery = `query Users($first: Int!) {
  users(first: $first, orderBy: pnl, orderDirection: desc) {
    id volume pnl trades
  }
}`

// Overtime (Thales) solo aporta leaderboard. volume y pnl son BigInt de 18 decimales.
type Overtime struct {
	client   *httpx.Client
	subgraph string
}

func NewOvertime(client *httpx.Client, subgraph string) *Overtime {
	if subgraph == "" {
		subgraph = overtimeSubgraph
	}
	return &Overtime{client: client, subgraph: strings.TrimRight(subgraph, "/")}
}

func (o *Overtime) Platform() domain.Platform { return domain.PlatformOvertime }

func (o *Overtime) FetchLeaderboard(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error) {
	limit = clampLimit(limit, 100, overtimeMaxLimit)

	var out overtimeUsers
	if err := o.client.Query(ctx, o.subgraph, overtimeUsersQuery, map[string]any{"first": limit}, &out); err != nil {
		return nil, fmt.Errorf("overtime.FetchLeaderboard: %w", err)
	}

	entries := make([]domain.LeaderboardEntry, 0, len(out.Users))
	for _, u := range out.Users {
		entries = append(entries, domain.LeaderboardEntry{
			Address: u.ID,
			PnL:     fromWei(u.PnL),
			Volume:  fromWei(u.Volume),
			Trades:  int(u.Trades.IntPart()),
		})
	}
	return finalizeEntries(domain.PlatformOvertime, entries), nil
}
