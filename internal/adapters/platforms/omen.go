package platforms

import (
	"context"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"github.com/alejandrodnm/truthbounty/internal/adapters/httpx"
	"github.com/alejandrodnm/truthbounty/internal/domain"
)

const (
	omenSubgraph = "https://api.thegraph.com/subgraphs/name/protofire/omen-xdai"
	omenSiteBase = "https://presagio.pages.dev/markets?id="
	omenMaxLimit = 1000
)

const omenMarketsQuery = `query Markets($first: Int!) {
  fixedProductMarketMakers(first: $first, where: {outcomeSlotCount: 2, answerFinalizedTimestamp: null},
    orderBy: scaledCollateralVolume, orderDirection: desc) {
    id title category outcomes outcomeTokenMarginalPrices
    scaledCollateralVolume scaledLiquidityParameter openingTimestamp
  }
}`

const omenMarketQuery = `query Market($id: ID!) {
  fixedProductMarketMaker(id: $id) {
    id outcomes currentAnswer answerFinalizedTimestamp
  }
}`

// omenInvalidAnswer es la respuesta que Reality.eth usa para preguntas inválidas (0xff..ff).
var omenInvalidAnswer = common.HexToHash("0xffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffff").Big()

// Omen resuelve vía Reality.eth: currentAnswer es un bytes32 con el índice del outcome.
type Omen struct {
	client   *httpx.Client
	subgraph string
}

func NewOmen(client *httpx.Client, subgraph string) *Omen {
	if subgraph == "" {
		subgraph = omenSubgraph
	}
	return &Omen{client: client, subgraph: strings.TrimRight(subgraph, "/")}
}

func (o *Omen) Platform() domain.Platform { return domain.PlatformOmen }

func (o *Omen) FetchMarkets(ctx context.Context, limit int) ([]domain.MarketData, error) {
	limit = clampLimit(limit, 50, omenMaxLimit)

	var out omenMarkets
	if err := o.client.Query(ctx, o.subgraph, omenMarketsQuery, map[string]any{"first": limit}, &out); err != nil {
		return nil, fmt.Errorf("omen.FetchMarkets: %w", err)
	}

	markets := make([]domain.MarketData, 0, len(out.Markets))
	for _, om := range out.Markets {
		markets = append(markets, om.toDomain())
	}
	return markets, nil
}

// ResolveMarket: sin answerFinalizedTimestamp el mercado sigue abierto.
// La respuesta inválida devuelve el stake.
func (o *Omen) ResolveMarket(ctx context.Context, marketID string) (domain.Resolution, error) {
	id := strings.ToLower(strings.TrimSpace(marketID))

	var out omenMarketByID
	if err := o.client.Query(ctx, o.subgraph, omenMarketQuery, map[string]any{"id": id}, &out); err != nil {
		return domain.Resolution{}, fmt.Errorf("omen.ResolveMarket: %w", err)
	}
	if out.Market == nil {
		return domain.Resolution{}, fmt.Errorf("omen.ResolveMarket: %w: market %s", domain.ErrNotFound, marketID)
	}

	m := out.Market
	res := domain.Resolution{MarketID: marketID}
	if m.AnswerFinalizedTimestamp == nil || m.CurrentAnswer == nil {
		return res, nil
	}

	answer := common.HexToHash(*m.CurrentAnswer).Big()
	if answer.Cmp(omenInvalidAnswer) == 0 {
		res.Resolved, res.Refund = true, true
		return res, nil
	}
	if !answer.IsInt64() || answer.Int64() >= int64(max(len(m.Outcomes), 2)) {
		return res, fmt.Errorf("omen.ResolveMarket: %w: unexpected answer %s", domain.ErrUpstream, *m.CurrentAnswer)
	}
	res.Resolved = true
	res.WinningOutcome = int(answer.Int64())
	return res, nil
}

func (om omenMarket) toDomain() domain.MarketData {
	prices := make([]float64, len(om.OutcomeTokenMarginalPrices))
	for i, p := range om.OutcomeTokenMarginalPrices {
		prices[i] = toFloat(p)
	}
	return domain.MarketData{
		Platform:  domain.PlatformOmen,
		ID:        om.ID,
		Question:  om.Title,
		URL:       omenSiteBase + om.ID,
		Category:  om.Category,
		Outcomes:  om.Outcomes,
		Prices:    prices,
		Volume:    toFloat(om.ScaledCollateralVolume),
		Liquidity: toFloat(om.ScaledLiquidityParameter),
		EndDate:   parseTime(om.OpeningTimestamp),
		Status:    domain.MarketOpen,
	}
}
