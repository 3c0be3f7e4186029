package domain

import (
	"fmt"
	"strings"
)

// Platform identifica un mercado de predicción upstream.
type Platform string

const (
	PlatformPolymarket   Platform = "polymarket"
	PlatformManifold     Platform = "manifold"
	PlatformMetaculus    Platform = "metaculus"
	PlatformSXBet        Platform = "sxbet"
	PlatformAzuro        Platform = "azuro"
	PlatformOvertime     Platform = "overtime"
	PlatformOmen         Platform = "omen"
	PlatformPancakeSwap  Platform = "pancakeswap"
	PlatformLimitless    Platform = "limitless"
	PlatformKalshi       Platform = "kalshi"
	PlatformDrift        Platform = "drift"
	PlatformSpeedMarkets Platform = "speedmarkets"
)

// AllPlatforms devuelve todas las plataformas conocidas, en orden estable.
func AllPlatforms() []Platform {
	return []Platform{
		PlatformPolymarket,
		PlatformManifold,
		PlatformMetaculus,
		PlatformSXBet,
		PlatformAzuro,
		PlatformOvertime,
		PlatformOmen,
		PlatformPancakeSwap,
		PlatformLimitless,
		PlatformKalshi,
		PlatformDrift,
		PlatformSpeedMarkets,
	}
}

// ParsePlatform normaliza y valida un nombre de plataforma.
func ParsePlatform(s string) (Platform, error) {
	p := Platform(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range AllPlatforms() {
		if p == known {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownPlatform, s)
}

// IsEVM devuelve true si los usuarios de la plataforma se identifican por wallet EVM.
// Manifold y Metaculus usan ids de cuenta propios.
func (p Platform) IsEVM() bool {
	switch p {
	case PlatformManifold, PlatformMetaculus, PlatformKalshi, PlatformDrift:
		return false
	default:
		return true
	}
}

func (p Platform) String() string { return string(p) }
