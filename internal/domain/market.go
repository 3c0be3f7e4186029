package domain

import "time"

// MarketStatus es el estado de un mercado en su plataforma.
type MarketStatus string

const (
	MarketOpen     MarketStatus = "open"
	MarketClosed   MarketStatus = "closed"
	MarketResolved MarketStatus = "resolved"
)

// MarketData es la forma común a la que cada adapter traduce los mercados de su plataforma.
type MarketData struct {
	Platform  Platform     `json:"platform"`
	ID        string       `json:"id"`
	Question  string       `json:"question"`
	Slug      string       `json:"slug,omitempty"`
	URL       string       `json:"url,omitempty"`
	Category  string       `json:"category,omitempty"`
	Outcomes  []string     `json:"outcomes"`
	Prices    []float64    `json:"prices"` // probabilidad implícita por outcome (0..1)
	Volume    float64      `json:"volume"`
	Liquidity float64      `json:"liquidity"`
	EndDate   time.Time    `json:"endDate,omitempty"`
	Status    MarketStatus `json:"status"`
}

// IsOpen devuelve true si el mercado acepta apuestas.
func (m MarketData) IsOpen() bool {
	if m.Status != MarketOpen {
		return false
	}
	return m.EndDate.IsZero() || m.EndDate.After(time.Now())
}

// PriceOf devuelve el precio del outcome dado, o 0 si el índice no existe.
func (m MarketData) PriceOf(outcome int) float64 {
	if outcome < 0 || outcome >= len(m.Prices) {
		return 0
	}
	return m.Prices[outcome]
}

// OutcomeLabel devuelve la etiqueta del outcome, con "YES"/"NO" como fallback binario.
func (m MarketData) OutcomeLabel(outcome int) string {
	if outcome >= 0 && outcome < len(m.Outcomes) {
		return m.Outcomes[outcome]
	}
	switch outcome {
	case 0:
		return "YES"
	case 1:
		return "NO"
	}
	return ""
}

// Resolution es el resultado de consultar el oráculo de una plataforma por un mercado.
type Resolution struct {
	MarketID       string
	Resolved       bool
	WinningOutcome int
	Refund         bool // mercado anulado/cancelado: se devuelve el stake
}

// TruncateQuestion devuelve la pregunta truncada a maxLen caracteres (runas).
// Si la pregunta está vacía usa el id del mercado como fallback.
func TruncateQuestion(question, id string, maxLen int) string {
	q := question
	if q == "" {
		q = cutRunes(id, 23)
	}
	return cutRunes(q, maxLen)
}

func cutRunes(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}
