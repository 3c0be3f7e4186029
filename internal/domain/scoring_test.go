package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// --- WilsonLowerBound ---

func TestWilsonLowerBound_ZeroTrades(t *testing.T) {
	assert.Equal(t, 0.0, WilsonLowerBound(0, 0, DefaultWilsonZ))
	assert.Equal(t, 0.0, WilsonLowerBound(3, -1, DefaultWilsonZ))
}

func TestWilsonLowerBound_KnownValues(t *testing.T) {
	// 5/10 → 0.2366, 10/10 → 0.7225 (tablas estándar de Wilson al 95%)
	assert.InDelta(t, 0.2366, WilsonLowerBound(5, 10, DefaultWilsonZ), 0.0005)
	assert.InDelta(t, 0.7225, WilsonLowerBound(10, 10, DefaultWilsonZ), 0.0005)
}

func TestWilsonLowerBound_MonotonicInWins(t *testing.T) {
	prev := -1.0
	for w := 0; w <= 20; w++ {
		lb := WilsonLowerBound(w, 20, DefaultWilsonZ)
		assert.Greater(t, lb, prev, "wins=%d", w)
		prev = lb
	}
}

func TestWilsonLowerBound_NeverAboveObservedRate(t *testing.T) {
	for _, tc := range []struct{ w, n int }{{1, 1}, {3, 4}, {50, 100}, {999, 1000}} {
		p := float64(tc.w) / float64(tc.n)
		assert.LessOrEqual(t, WilsonLowerBound(tc.w, tc.n, DefaultWilsonZ), p)
	}
}

func TestWilsonLowerBound_LargerSampleScoresHigher(t *testing.T) {
	// Mismo win rate, más evidencia → bound más alto.
	assert.Greater(t,
		WilsonLowerBound(300, 300, DefaultWilsonZ),
		WilsonLowerBound(3, 3, DefaultWilsonZ),
	)
}

func TestWilsonLowerBound_ClampsWinsAboveN(t *testing.T) {
	assert.Equal(t, WilsonLowerBound(10, 10, DefaultWilsonZ), WilsonLowerBound(15, 10, DefaultWilsonZ))
}

// --- EstimateWinRate / EstimateTrades ---

func TestEstimateWinRate(t *testing.T) {
	assert.InDelta(t, 0.75, EstimateWinRate(50, 100), 1e-9)
	assert.InDelta(t, 0.5, EstimateWinRate(0, 100), 1e-9)
	assert.InDelta(t, 0.95, EstimateWinRate(1000, 100), 1e-9)
	assert.InDelta(t, 0.05, EstimateWinRate(-1000, 100), 1e-9)
	assert.InDelta(t, 0.5, EstimateWinRate(10, 0), 1e-9)
}

func TestEstimateTrades(t *testing.T) {
	assert.Equal(t, 0, EstimateTrades(0))
	assert.Equal(t, 1, EstimateTrades(10))
	assert.Equal(t, 3, EstimateTrades(250))
	assert.Equal(t, 1000, EstimateTrades(100_000))
}

// --- componentes ---

func TestActivityScore(t *testing.T) {
	assert.Equal(t, 0.0, ActivityScore(0))
	assert.InDelta(t, 125.0, ActivityScore(9), 0.001)
	assert.InDelta(t, 250.0, ActivityScore(99), 0.001)
	assert.Equal(t, MaxActivityScore, ActivityScore(99_999))
}

func TestProfitBonus(t *testing.T) {
	assert.Equal(t, 0.0, ProfitBonus(0))
	assert.Equal(t, 0.0, ProfitBonus(-500))
	assert.InDelta(t, 60.0, ProfitBonus(9), 0.001)
	assert.Equal(t, MaxProfitBonus, ProfitBonus(1_000_000))
}

// --- ComputeTruthScore ---

func TestComputeTruthScore_Empty(t *testing.T) {
	ts := ComputeTruthScore(ScoreInput{})
	assert.Equal(t, 0, ts.Score)
	assert.Equal(t, TierBronze, ts.Tier)
	assert.Equal(t, 0, ts.Trades)
}

func TestComputeTruthScore_ObservedCounts(t *testing.T) {
	// 10/10 wins: skill=500·0.7225=361.2, activity=125·log10(11)=130.2, profit=60·log10(10)=60
	ts := ComputeTruthScore(ScoreInput{PnL: 9, Wins: 10, Losses: 0, HasCounts: true})

	assert.Equal(t, 10, ts.Trades)
	assert.InDelta(t, 551, ts.Score, 1)
	assert.Equal(t, TierGold, ts.Tier)
	assert.InDelta(t, 1.0, ts.WinRate, 1e-9)
	assert.InDelta(t, 361.24, ts.Skill, 0.05)
	assert.InDelta(t, 130.17, ts.Activity, 0.05)
	assert.InDelta(t, 60.0, ts.Profit, 0.01)
}

func TestComputeTruthScore_EstimatedFromROI(t *testing.T) {
	// Sin conteos: trades=volume/100=100, winRate=0.5+0.5·0.2=0.6 → 60 wins estimados
	ts := ComputeTruthScore(ScoreInput{PnL: 2000, Volume: 10_000})

	assert.Equal(t, 100, ts.Trades)
	assert.InDelta(t, 0.6, ts.WinRate, 1e-9)
	assert.Greater(t, ts.Score, 0)
	assert.LessOrEqual(t, ts.Score, MaxTruthScore)
}

func TestComputeTruthScore_CappedAtMax(t *testing.T) {
	ts := ComputeTruthScore(ScoreInput{PnL: 1e9, Wins: 9999, HasCounts: true})
	assert.Equal(t, MaxTruthScore, ts.Score)
	assert.Equal(t, TierDiamond, ts.Tier)
}

func TestComputeTruthScore_LossesDoNotGoNegative(t *testing.T) {
	ts := ComputeTruthScore(ScoreInput{PnL: -5000, Volume: 5000, Trades: 40})
	assert.GreaterOrEqual(t, ts.Score, 0)
	assert.Equal(t, 0.0, ts.Profit)
}

func TestComputeTruthScore_BetterTraderScoresHigher(t *testing.T) {
	good := ComputeTruthScore(ScoreInput{Wins: 70, Losses: 30, PnL: 500, HasCounts: true})
	bad := ComputeTruthScore(ScoreInput{Wins: 30, Losses: 70, PnL: -500, HasCounts: true})
	assert.Greater(t, good.Score, bad.Score)
}

// --- AggregateTruthScore ---

func TestAggregateTruthScore_WeightedByTrades(t *testing.T) {
	score, parts := AggregateTruthScore([]PlatformScore{
		{Platform: PlatformPolymarket, Score: 800, Trades: 300},
		{Platform: PlatformAzuro, Score: 400, Trades: 100},
	})

	// (0.75·800 + 0.25·400) × 1.02 = 714
	assert.Equal(t, 714, score)
	assert.InDelta(t, 0.75, parts[0].Weight, 1e-9)
	assert.InDelta(t, 0.25, parts[1].Weight, 1e-9)
}

func TestAggregateTruthScore_SinglePlatformNoBonus(t *testing.T) {
	score, parts := AggregateTruthScore([]PlatformScore{{Platform: PlatformManifold, Score: 500}})
	assert.Equal(t, 500, score)
	assert.InDelta(t, 1.0, parts[0].Weight, 1e-9)
}

func TestAggregateTruthScore_Empty(t *testing.T) {
	score, parts := AggregateTruthScore(nil)
	assert.Equal(t, 0, score)
	assert.Nil(t, parts)
}

func TestAggregateTruthScore_Capped(t *testing.T) {
	parts := make([]PlatformScore, 0, 8)
	for _, p := range AllPlatforms()[:8] {
		parts = append(parts, PlatformScore{Platform: p, Score: 1300, Trades: 10})
	}
	score, _ := AggregateTruthScore(parts)
	assert.Equal(t, MaxTruthScore, score)
}

// --- Tiers ---

func TestTierFor_Thresholds(t *testing.T) {
	cases := map[int]Tier{
		0:    TierBronze,
		249:  TierBronze,
		250:  TierSilver,
		499:  TierSilver,
		500:  TierGold,
		750:  TierPlatinum,
		1000: TierDiamond,
		1300: TierDiamond,
	}
	for score, want := range cases {
		assert.Equal(t, want, TierFor(score), "score=%d", score)
	}
}

func TestProgressToNext(t *testing.T) {
	assert.Equal(t, 0.0, ProgressToNext(0))
	assert.InDelta(t, 50.0, ProgressToNext(375), 0.001)
	assert.Equal(t, 100.0, ProgressToNext(1200))

	next, target := TierSilver.Next()
	assert.Equal(t, TierGold, next)
	assert.Equal(t, ThresholdGold, target)
}
