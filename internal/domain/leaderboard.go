package domain

import "time"

// LeaderboardEntry es una fila del leaderboard, ya puntuada.
type LeaderboardEntry struct {
	Rank      int             `json:"rank"`
	Address   string          `json:"address"`
	Username  string          `json:"username,omitempty"`
	Platform  Platform        `json:"platform"`
	Platforms []Platform      `json:"platforms"`
	PnL       float64         `json:"pnl"`
	Volume    float64         `json:"volume"`
	Trades    int             `json:"trades"`
	Wins      int             `json:"wins"`
	Losses    int             `json:"losses"`
	WinRate   float64         `json:"winRate"`
	Score     int             `json:"score"`
	Tier      Tier            `json:"tier"`
	Breakdown []PlatformScore `json:"breakdown,omitempty"`

	// HasCounts indica que Wins/Losses son observados y no estimados.
	HasCounts bool `json:"-"`
}

// ScoreInput extrae los datos de entrada del motor de scoring.
func (e LeaderboardEntry) ScoreInput() ScoreInput {
	return ScoreInput{
		PnL:       e.PnL,
		Volume:    e.Volume,
		Trades:    e.Trades,
		Wins:      e.Wins,
		Losses:    e.Losses,
		HasCounts: e.HasCounts,
	}
}

// Scored devuelve la entrada con Score, Tier, WinRate y el breakdown de su plataforma.
func (e LeaderboardEntry) Scored() LeaderboardEntry {
	ts := ComputeTruthScore(e.ScoreInput())
	e.Score = ts.Score
	e.Tier = ts.Tier
	e.WinRate = ts.WinRate
	if e.Trades == 0 {
		e.Trades = ts.Trades
	}
	if len(e.Platforms) == 0 && e.Platform != "" {
		e.Platforms = []Platform{e.Platform}
	}
	if len(e.Breakdown) == 0 && e.Platform != "" {
		e.Breakdown = []PlatformScore{{
			Platform: e.Platform,
			Score:    ts.Score,
			Trades:   ts.Trades,
			Weight:   1,
			PnL:      e.PnL,
			Volume:   e.Volume,
			WinRate:  ts.WinRate,

			Wins:      e.Wins,
			Losses:    e.Losses,
			HasCounts: e.HasCounts,
		}}
	}
	return e
}

// SourceStatus describe el resultado de consultar una plataforma durante un refresh.
type SourceStatus struct {
	Platform  Platform `json:"platform"`
	OK        bool     `json:"ok"`
	Count     int      `json:"count"`
	Err       string   `json:"error,omitempty"`
	LatencyMs int64    `json:"latencyMs"`
}

// Snapshot es el leaderboard unificado tras un refresh completo.
type Snapshot struct {
	Entries   []LeaderboardEntry `json:"entries"`
	Sources   []SourceStatus     `json:"sources"`
	UpdatedAt time.Time          `json:"updatedAt"`
}

// Age devuelve la antigüedad del snapshot respecto a now.
func (s Snapshot) Age(now time.Time) time.Duration {
	if s.UpdatedAt.IsZero() {
		return time.Duration(1<<63 - 1)
	}
	return now.Sub(s.UpdatedAt)
}

// IsEmpty devuelve true si el snapshot nunca se llenó.
func (s Snapshot) IsEmpty() bool {
	return s.UpdatedAt.IsZero()
}

// Find busca una dirección en el snapshot (comparación exacta, ya normalizada).
func (s Snapshot) Find(address string) (LeaderboardEntry, bool) {
	for _, e := range s.Entries {
		if e.Address == address {
			return e, true
		}
	}
	return LeaderboardEntry{}, false
}
