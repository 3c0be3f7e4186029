package platforms

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// DTOs raw de las APIs upstream. Solo se usan dentro de este paquete.
// Los importes llegan como string o número según la API: decimal.Decimal acepta ambos.

// --- Polymarket ---

// polymarketTrader es una fila de GET /v1/leaderboard de la data-api.
type polymarketTrader struct {
	Rank        string          `json:"rank"`
	ProxyWallet string          `json:"proxyWallet"`
	UserName    string          `json:"userName"`
	Vol         decimal.Decimal `json:"vol"`
	PnL         decimal.Decimal `json:"pnl"`
}

// gammaMarket es un mercado de GET /markets de Gamma.
// outcomes y outcomePrices llegan como arrays serializados dentro de un string.
type gammaMarket struct {
	ID            string          `json:"id"`
	ConditionID   string          `json:"conditionId"`
	Question      string          `json:"question"`
	Slug          string          `json:"slug"`
	Category      string          `json:"category"`
	EndDate       string          `json:"endDate"`
	Outcomes      string          `json:"outcomes"`
	OutcomePrices string          `json:"outcomePrices"`
	Volume        decimal.Decimal `json:"volume"`
	Liquidity     decimal.Decimal `json:"liquidity"`
	Active        bool            `json:"active"`
	Closed        bool            `json:"closed"`
}

// --- Manifold ---

type manifoldLeader struct {
	UserID   string          `json:"userId"`
	Username string          `json:"username"`
	Score    decimal.Decimal `json:"score"`
}

type manifoldMarket struct {
	ID          string          `json:"id"`
	Question    string          `json:"question"`
	Slug        string          `json:"slug"`
	URL         string          `json:"url"`
	OutcomeType string          `json:"outcomeType"`
	Probability float64         `json:"probability"`
	Volume      decimal.Decimal `json:"volume"`
	Liquidity   decimal.Decimal `json:"totalLiquidity"`
	CloseTime   int64           `json:"closeTime"`
	IsResolved  bool            `json:"isResolved"`
	Resolution  string          `json:"resolution"`
}

// --- Metaculus ---

type metaculusPage struct {
	Results []metaculusQuestion `json:"results"`
}

type metaculusQuestion struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	PageURL     string `json:"page_url"`
	Status      string `json:"status"`
	CloseTime   string `json:"scheduled_close_time"`
	Forecasters int    `json:"nr_forecasters"`
	Community   struct {
		Full struct {
			Q2 float64 `json:"q2"`
		} `json:"full"`
	} `json:"community_prediction"`
	// Resolution puede ser número (1/0/-1/-2), string ("yes"/"no"/"annulled") o null.
	Resolution json.RawMessage `json:"resolution"`
}

// --- SX Bet ---

type sxMarketsResponse struct {
	Status string `json:"status"`
	Data   struct {
		Markets []sxMarket `json:"markets"`
	} `json:"data"`
}

type sxFindResponse struct {
	Status string     `json:"status"`
	Data   []sxMarket `json:"data"`
}

type sxMarket struct {
	MarketHash     string `json:"marketHash"`
	OutcomeOneName string `json:"outcomeOneName"`
	OutcomeTwoName string `json:"outcomeTwoName"`
	TeamOneName    string `json:"teamOneName"`
	TeamTwoName    string `json:"teamTwoName"`
	GameTime       int64  `json:"gameTime"`
	Status         string `json:"status"`
	SportLabel     string `json:"sportLabel"`
	LeagueLabel    string `json:"leagueLabel"`
	Outcome        int    `json:"outcome"`
}

// --- Azuro ---

type azuroBettors struct {
	Bettors []struct {
		ID            string          `json:"id"`
		Address       string          `json:"address"`
		BetsCount     decimal.Decimal `json:"betsCount"`
		WonBetsCount  decimal.Decimal `json:"wonBetsCount"`
		LostBetsCount decimal.Decimal `json:"lostBetsCount"`
		Profit        decimal.Decimal `json:"profit"`
		Turnover      decimal.Decimal `json:"turnover"`
	} `json:"bettors"`
}

type azuroCondition struct {
	ID            string          `json:"id"`
	ConditionID   string          `json:"conditionId"`
	Status        string          `json:"status"`
	WonOutcomeIDs []string        `json:"wonOutcomeIds"`
	Turnover      decimal.Decimal `json:"turnover"`
	Game          struct {
		Title    string `json:"title"`
		StartsAt string `json:"startsAt"`
		Sport    struct {
			Name string `json:"name"`
		} `json:"sport"`
	} `json:"game"`
	Outcomes []azuroOutcome `json:"outcomes"`
}

type azuroOutcome struct {
	OutcomeID   string          `json:"outcomeId"`
	CurrentOdds decimal.Decimal `json:"currentOdds"`
}

type azuroConditions struct {
	Conditions []azuroCondition `json:"conditions"`
}

type azuroConditionByID struct {
	Condition *azuroCondition `json:"condition"`
}

// --- Overtime (Thales) ---

type overtimeUsers struct {
	Users []struct {
		ID     string          `json:"id"`
		Volume decimal.Decimal `json:"volume"`
		PnL    decimal.Decimal `json:"pnl"`
		Trades decimal.Decimal `json:"trades"`
	} `json:"users"`
}

// --- Omen ---

type omenMarket struct {
	ID                         string            `json:"id"`
	Title                      string            `json:"title"`
	Category                   string            `json:"category"`
	Outcomes                   []string          `json:"outcomes"`
	OutcomeTokenMarginalPrices []decimal.Decimal `json:"outcomeTokenMarginalPrices"`
	ScaledCollateralVolume     decimal.Decimal   `json:"scaledCollateralVolume"`
	ScaledLiquidityParameter   decimal.Decimal   `json:"scaledLiquidityParameter"`
	OpeningTimestamp           string            `json:"openingTimestamp"`
	AnswerFinalizedTimestamp   *string           `json:"answerFinalizedTimestamp"`
	CurrentAnswer              *string           `json:"currentAnswer"`
}

type omenMarkets struct {
	Markets []omenMarket `json:"fixedProductMarketMakers"`
}

type omenMarketByID struct {
	Market *omenMarket `json:"fixedProductMarketMaker"`
}

// --- PancakeSwap Prediction ---

type pancakeUsers struct {
	Users []struct {
		ID               string          `json:"id"`
		TotalBets        decimal.Decimal `json:"totalBets"`
		TotalBetsClaimed decimal.Decimal `json:"totalBetsClaimed"`
		TotalBNB         decimal.Decimal `json:"totalBNB"`
		NetBNB           decimal.Decimal `json:"netBNB"`
	} `json:"users"`
}

type pancakeRound struct {
	Round *struct {
		ID       string  `json:"id"`
		Epoch    string  `json:"epoch"`
		Position *string `json:"position"`
		Failed   *bool   `json:"failed"`
	} `json:"round"`
}

// --- Limitless ---

type limitlessLeader struct {
	Account     string          `json:"account"`
	DisplayName string          `json:"displayName"`
	TotalVolume decimal.Decimal `json:"totalVolume"`
	PnL         decimal.Decimal `json:"pnl"`
	TotalTrades int             `json:"totalTrades"`
}

type limitlessLeaderboard struct {
	Data []limitlessLeader `json:"data"`
}

type limitlessMarket struct {
	ID                  int64             `json:"id"`
	Slug                string            `json:"slug"`
	Title               string            `json:"title"`
	Prices              []decimal.Decimal `json:"prices"` // en porcentaje (0..100)
	Volume              decimal.Decimal   `json:"volumeFormatted"`
	Liquidity           decimal.Decimal   `json:"liquidityFormatted"`
	ExpirationTimestamp int64             `json:"expirationTimestamp"`
	Status              string            `json:"status"`
	Categories          []string          `json:"categories"`
	WinningOutcomeIndex *int              `json:"winningOutcomeIndex"`
}

type limitlessMarkets struct {
	Data []limitlessMarket `json:"data"`
}
