package domain

import "math"

// Tier es el rango de reputación derivado del TruthScore.
type Tier string

const (
	TierBronze   Tier = "BRONZE"
	TierSilver   Tier = "SILVER"
	TierGold     Tier = "GOLD"
	TierPlatinum Tier = "PLATINUM"
	TierDiamond  Tier = "DIAMOND"
)

// Umbrales mínimos de score por tier.
const (
	ThresholdSilver   = 250
	ThresholdGold     = 500
	ThresholdPlatinum = 750
	ThresholdDiamond  = 1000
)

// TierFor devuelve el tier correspondiente al score.
func TierFor(score int) Tier {
	switch {
	case score >= ThresholdDiamond:
		return TierDiamond
	case score >= ThresholdPlatinum:
		return TierPlatinum
	case score >= ThresholdGold:
		return TierGold
	case score >= ThresholdSilver:
		return TierSilver
	default:
		return TierBronze
	}
}

// Next devuelve el siguiente tier y su umbral. DIAMOND es el máximo.
func (t Tier) Next() (Tier, int) {
	switch t {
	case TierBronze:
		return TierSilver, ThresholdSilver
	case TierSilver:
		return TierGold, ThresholdGold
	case TierGold:
		return TierPlatinum, ThresholdPlatinum
	case TierPlatinum:
		return TierDiamond, ThresholdDiamond
	default:
		return TierDiamond, ThresholdDiamond
	}
}

func (t Tier) floor() int {
	switch t {
	case TierSilver:
		return ThresholdSilver
	case TierGold:
		return ThresholdGold
	case TierPlatinum:
		return ThresholdPlatinum
	case TierDiamond:
		return ThresholdDiamond
	default:
		return 0
	}
}

// ProgressToNext devuelve el % (0-100, 2 decimales) recorrido desde el tier actual al siguiente.
func ProgressToNext(score int) float64 {
	t := TierFor(score)
	if t == TierDiamond {
		return 100
	}
	_, target := t.Next()
	lo := t.floor()
	p := float64(score-lo) / float64(target-lo) * 100
	return math.Round(clamp(p, 0, 100)*100) / 100
}
