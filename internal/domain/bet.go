package domain

import "time"

// BetStatus representa el ciclo de vida de una apuesta simulada.
type BetStatus string

const (
	BetPending  BetStatus = "pending"
	BetWon      BetStatus = "won"
	BetLost     BetStatus = "lost"
	BetRefunded BetStatus = "refunded"
)

// ParseBetStatus valida un status recibido desde fuera (query params, DB).
func ParseBetStatus(s string) (BetStatus, bool) {
	switch BetStatus(s) {
	case BetPending, BetWon, BetLost, BetRefunded:
		return BetStatus(s), true
	}
	return "", false
}

// Bet es una apuesta simulada (demo) sobre un mercado de una plataforma.
// (User, Platform, MarketID) es único.
type Bet struct {
	ID           string     `json:"id"`
	Platform     Platform   `json:"platform"`
	User         string     `json:"user"`
	MarketID     string     `json:"marketId"`
	Question     string     `json:"question,omitempty"`
	Outcome      int        `json:"outcome"`
	OutcomeLabel string     `json:"outcomeLabel,omitempty"`
	Amount       float64    `json:"amount"`
	Price        float64    `json:"price"` // probabilidad implícita al apostar (0 < p < 1)
	Status       BetStatus  `json:"status"`
	PnL          float64    `json:"pnl"`
	CreatedAt    time.Time  `json:"createdAt"`
	ResolvedAt   *time.Time `json:"resolvedAt,omitempty"`
}

// Payout calcula status y PnL al aplicar la resolución del mercado.
// Ganada: amount·(1/price − 1). Perdida: −amount. Reembolso: 0.
func (b Bet) Payout(r Resolution) (BetStatus, float64) {
	switch {
	case r.Refund:
		return BetRefunded, 0
	case r.WinningOutcome == b.Outcome:
		if b.Price <= 0 || b.Price >= 1 {
			return BetWon, 0
		}
		return BetWon, round2(b.Amount * (1/b.Price - 1))
	default:
		return BetLost, -b.Amount
	}
}

// BetFilter filtra listados de apuestas. Campos vacíos no filtran.
type BetFilter struct {
	Platform Platform
	User     string
	Status   BetStatus
	Limit    int
}

// BetCursor marca la última apuesta leída al paginar pendientes por
// (CreatedAt, ID). El valor cero empieza desde el principio.
type BetCursor struct {
	CreatedAt time.Time
	ID        string
}

// IsZero indica si el cursor apunta al inicio.
func (c BetCursor) IsZero() bool { return c.ID == "" && c.CreatedAt.IsZero() }

// After devuelve el cursor que sigue a la apuesta b.
func After(b Bet) BetCursor { return BetCursor{CreatedAt: b.CreatedAt, ID: b.ID} }

// TradeResolved es el evento emitido al resolver una apuesta simulada.
type TradeResolved struct {
	BetID      string    `json:"betId"`
	Platform   Platform  `json:"platform"`
	User       string    `json:"user"`
	MarketID   string    `json:"marketId"`
	Status     BetStatus `json:"status"`
	PnL        float64   `json:"pnl"`
	ResolvedAt time.Time `json:"resolvedAt"`
}
