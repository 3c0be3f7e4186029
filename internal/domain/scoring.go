package domain

import "math"

const (
	// DefaultWilsonZ es el z de un intervalo de confianza del 95%.
	DefaultWilsonZ = 1.96

	MaxSkillScore    = 500.0
	MaxActivityScore = 500.0
	MaxProfitBonus   = 300.0
	MaxTruthScore    = 1300

	activityPerDecade = 125.0 // 500 con 9999 trades
	profitPerDecade   = 60.0  // 300 con ~$100k de PnL

	minEstimatedWinRate = 0.05
	maxEstimatedWinRate = 0.95

	// avgTradeSizeUSD se usa para estimar el nº de trades cuando la plataforma no lo reporta.
	avgTradeSizeUSD = 100.0

	diversityBonusPerPlatform = 0.02
	maxDiversityBonus         = 0.10
)

// ScoreInput son los datos mínimos para puntuar a un trader en una plataforma.
type ScoreInput struct {
	PnL       float64
	Volume    float64
	Trades    int
	Wins      int
	Losses    int
	HasCounts bool // Wins/Losses observados; si false se estiman desde el ROI
}

// TruthScore es la reputación derivada de un trader.
type TruthScore struct {
	Address   string          `json:"address,omitempty"`
	Score     int             `json:"score"`
	Tier      Tier            `json:"tier"`
	Skill     float64         `json:"skill"`
	Activity  float64         `json:"activity"`
	Profit    float64         `json:"profit"`
	WinRate   float64         `json:"winRate"`
	Wilson    float64         `json:"wilson"`
	Trades    int             `json:"trades"`
	PnL       float64         `json:"pnl"`
	Volume    float64         `json:"volume"`
	Breakdown []PlatformScore `json:"breakdown,omitempty"`
}

// PlatformScore es la contribución de una plataforma al TruthScore agregado.
type PlatformScore struct {
	Platform Platform `json:"platform"`
	Score    int      `json:"score"`
	Trades   int      `json:"trades"`
	Weight   float64  `json:"weight"`
	PnL      float64  `json:"pnl"`
	Volume   float64  `json:"volume"`
	WinRate  float64  `json:"winRate"`

	// Wins/Losses observados en la plataforma, si los publica.
	Wins      int  `json:"wins,omitempty"`
	Losses    int  `json:"losses,omitempty"`
	HasCounts bool `json:"hasCounts,omitempty"`
}

// WilsonLowerBound calcula el límite inferior del intervalo de Wilson para wins/n.
// Penaliza muestras pequeñas: 3/3 puntúa menos que 300/300.
//
// Fórmula:
//
//	(p + z²/2n − z·√(p(1−p)/n + z²/4n²)) / (1 + z²/n)
//
// Devuelve 0 si n <= 0.
func WilsonLowerBound(wins, n int, z float64) float64 {
	if n <= 0 {
		return 0
	}
	if wins < 0 {
		wins = 0
	}
	if wins > n {
		wins = n
	}
	nf := float64(n)
	p := float64(wins) / nf
	z2 := z * z

	centre := p + z2/(2*nf)
	margin := z * math.Sqrt(p*(1-p)/nf+z2/(4*nf*nf))
	lb := (centre - margin) / (1 + z2/nf)
	return clamp(lb, 0, 1)
}

// EstimateWinRate estima el win rate a partir del ROI cuando la plataforma
// no expone conteos de wins/losses: 0.5 + 0.5·(pnl/volume), acotado a [0.05, 0.95].
func EstimateWinRate(pnl, volume float64) float64 {
	if volume <= 0 {
		return 0.5
	}
	return clamp(0.5+0.5*(pnl/volume), minEstimatedWinRate, maxEstimatedWinRate)
}

// EstimateTrades estima el número de trades desde el volumen (volumen / $100, mínimo 1).
func EstimateTrades(volume float64) int {
	if volume <= 0 {
		return 0
	}
	n := int(math.Round(volume / avgTradeSizeUSD))
	if n < 1 {
		n = 1
	}
	return n
}

// SkillScore escala el Wilson lower bound a [0, 500].
func SkillScore(wins, n int) float64 {
	return MaxSkillScore * WilsonLowerBound(wins, n, DefaultWilsonZ)
}

// ActivityScore premia la actividad con crecimiento logarítmico: 125·log10(1+trades), máx 500.
func ActivityScore(trades int) float64 {
	if trades <= 0 {
		return 0
	}
	return math.Min(MaxActivityScore, activityPerDecade*math.Log10(1+float64(trades)))
}

// ProfitBonus premia el PnL positivo: 60·log10(1+pnl), máx 300. Pérdidas no restan.
func ProfitBonus(pnl float64) float64 {
	if pnl <= 0 {
		return 0
	}
	return math.Min(MaxProfitBonus, profitPerDecade*math.Log10(1+pnl))
}

// ComputeTruthScore calcula el TruthScore (0–1300) de un trader en una plataforma.
func ComputeTruthScore(in ScoreInput) TruthScore {
	trades := in.Trades
	if trades <= 0 && in.HasCounts {
		trades = in.Wins + in.Losses
	}
	if trades <= 0 {
		trades = EstimateTrades(in.Volume)
	}

	var wins, decided int
	var winRate float64
	if in.HasCounts {
		wins = in.Wins
		decided = in.Wins + in.Losses
		if decided > 0 {
			winRate = float64(wins) / float64(decided)
		}
	} else {
		winRate = EstimateWinRate(in.PnL, in.Volume)
		decided = trades
		wins = int(math.Round(float64(trades) * winRate))
	}

	wilson := WilsonLowerBound(wins, decided, DefaultWilsonZ)
	skill := SkillScore(wins, decided)
	activity := ActivityScore(trades)
	profit := ProfitBonus(in.PnL)

	total := int(math.Round(clamp(skill+activity+profit, 0, MaxTruthScore)))

	return TruthScore{
		Score:    total,
		Tier:     TierFor(total),
		Skill:    round2(skill),
		Activity: round2(activity),
		Profit:   round2(profit),
		WinRate:  round4(winRate),
		Wilson:   round4(wilson),
		Trades:   trades,
		PnL:      in.PnL,
		Volume:   in.Volume,
	}
}

// AggregateTruthScore combina los scores por plataforma en uno solo.
// Media ponderada por nº de trades, más un bonus del 2% por plataforma extra (máx 10%).
// Rellena Weight en cada PlatformScore.
func AggregateTruthScore(parts []PlatformScore) (int, []PlatformScore) {
	if len(parts) == 0 {
		return 0, nil
	}

	out := make([]PlatformScore, len(parts))
	copy(out, parts)

	totalTrades := 0
	for _, p := range out {
		if p.Trades > 0 {
			totalTrades += p.Trades
		}
	}

	var weighted float64
	for i := range out {
		w := 1.0 / float64(len(out))
		if totalTrades > 0 {
			w = float64(max(out[i].Trades, 0)) / float64(totalTrades)
		}
		out[i].Weight = round4(w)
		weighted += w * float64(out[i].Score)
	}

	bonus := math.Min(maxDiversityBonus, diversityBonusPerPlatform*float64(len(out)-1))
	score := int(math.Round(clamp(weighted*(1+bonus), 0, MaxTruthScore)))
	return score, out
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
func round4(v float64) float64 { return math.Round(v*10000) / 10000 }
