package platforms

import (
	"encoding/json"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/alejandrodnm/truthbounty/internal/domain"
)

// weiDecimals es la escala de los BigInt de subgraphs con tokens de 18 decimales.
const weiDecimals = 18

// toFloat convierte un decimal a float64 (la precisión sobrante no importa para puntuar).
func toFloat(d decimal.Decimal) float64 {
	return d.InexactFloat64()
}

// fromWei escala un BigInt de 18 decimales a unidades.
func fromWei(d decimal.Decimal) float64 {
	return d.Shift(-weiDecimals).InexactFloat64()
}

// parseStringArray decodifica los arrays que algunas APIs (Gamma) devuelven
// serializados dentro de un string: "[\"Yes\",\"No\"]".
func parseStringArray(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		return nil
	}
	return out
}

// parsePrices convierte precios en string a float64. Valores inválidos cuentan como 0.
func parsePrices(raw []string) []float64 {
	out := make([]float64, len(raw))
	for i, r := range raw {
		if d, err := decimal.NewFromString(strings.TrimSpace(r)); err == nil {
			out[i] = toFloat(d)
		}
	}
	return out
}

// oddsToPrices convierte cuotas decimales en probabilidades implícitas normalizadas (sin margen).
func oddsToPrices(odds []float64) []float64 {
	out := make([]float64, len(odds))
	var sum float64
	for i, o := range odds {
		if o > 1 {
			out[i] = 1 / o
			sum += out[i]
		}
	}
	if sum <= 0 {
		return out
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}

// parseTime intenta los formatos más comunes de las APIs upstream.
func parseTime(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return fromUnix(n)
	}
	for _, layout := range []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02T15:04:05.000Z",
		"2006-01-02T15:04:05Z",
		"2006-01-02 15:04:05Z07:00",
		"2006-01-02",
	} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

// fromUnix acepta segundos o milisegundos.
func fromUnix(n int64) time.Time {
	if n <= 0 {
		return time.Time{}
	}
	if n > 1e12 {
		return time.UnixMilli(n).UTC()
	}
	return time.Unix(n, 0).UTC()
}

// winnerFromPrices devuelve el índice del outcome liquidado a 1.0.
// Si todos los precios son iguales (p.ej. 50/50) el mercado se anuló.
func winnerFromPrices(prices []float64) (winner int, refund, ok bool) {
	if len(prices) == 0 {
		return 0, false, false
	}
	allEqual := true
	for i, p := range prices {
		if p >= 0.99 {
			return i, false, true
		}
		if i > 0 && p != prices[0] {
			allEqual = false
		}
	}
	if allEqual && prices[0] > 0 {
		return 0, true, true
	}
	return 0, false, false
}

// finalizeEntries normaliza direcciones, descarta entradas inválidas, puntúa
// y asigna el rank dentro de la plataforma.
func finalizeEntries(p domain.Platform, entries []domain.LeaderboardEntry) []domain.LeaderboardEntry {
	out := make([]domain.LeaderboardEntry, 0, len(entries))
	for _, e := range entries {
		addr, err := domain.NormalizeUser(p, e.Address)
		if err != nil {
			slog.Debug("dropping leaderboard entry", "platform", p, "address", e.Address, "err", err)
			continue
		}
		e.Address = addr
		e.Platform = p
		out = append(out, e.Scored())
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].PnL > out[j].PnL
	})
	for i := range out {
		out[i].Rank = i + 1
	}
	return out
}

func clampLimit(limit, def, max int) int {
	if limit <= 0 {
		return def
	}
	if limit > max {
		return max
	}
	return limit
}
