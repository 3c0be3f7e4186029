package domain

import "sort"

// UserStats es el agregado por plataforma de las apuestas de un usuario.
type UserStats struct {
	Platform  Platform `json:"platform"`
	Address   string   `json:"address"`
	TotalBets int      `json:"totalBets"`
	Wins      int      `json:"wins"`
	Losses    int      `json:"losses"`
	Refunds   int      `json:"refunds"`
	Pending   int      `json:"pending"`
	Volume    float64  `json:"volume"`
	PnL       float64  `json:"pnl"`
	WinRate   float64  `json:"winRate"`
	Score     int      `json:"score"`
}

// ScoreInput convierte las stats en la entrada del motor de scoring.
// Solo cuentan las apuestas decididas; las pendientes y reembolsos no puntúan.
func (s UserStats) ScoreInput() ScoreInput {
	return ScoreInput{
		PnL:       s.PnL,
		Volume:    s.Volume,
		Trades:    s.Wins + s.Losses,
		Wins:      s.Wins,
		Losses:    s.Losses,
		HasCounts: true,
	}
}

// StatsFromBets agrega apuestas por plataforma y calcula WinRate y Score.
// El resultado está ordenado por plataforma.
func StatsFromBets(bets []Bet) []UserStats {
	byPlatform := make(map[Platform]*UserStats)
	for _, b := range bets {
		s, ok := byPlatform[b.Platform]
		if !ok {
			s = &UserStats{Platform: b.Platform, Address: b.User}
			byPlatform[b.Platform] = s
		}
		s.TotalBets++
		switch b.Status {
		case BetPending:
			s.Pending++
			continue
		case BetWon:
			s.Wins++
		case BetLost:
			s.Losses++
		case BetRefunded:
			s.Refunds++
		}
		s.Volume += b.Amount
		s.PnL += b.PnL
	}

	out := make([]UserStats, 0, len(byPlatform))
	for _, s := range byPlatform {
		if decided := s.Wins + s.Losses; decided > 0 {
			s.WinRate = round4(float64(s.Wins) / float64(decided))
		}
		s.PnL = round2(s.PnL)
		if s.Wins+s.Losses > 0 {
			s.Score = ComputeTruthScore(s.ScoreInput()).Score
		}
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Platform < out[j].Platform })
	return out
}
