package leaderboard

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/alejandrodnm/truthbounty/internal/domain"
)

// Criterios de orden aceptados en Query.Sort.
const (
	SortScore   = "score"
	SortPnL     = "pnl"
	SortVolume  = "volume"
	SortWinRate = "winrate"
)

// Query filtra y pagina el leaderboard.
type Query struct {
	Platform domain.Platform
	Search   string
	Page     int
	Limit    int
	Sort     string
}

// Page es una página del leaderboard unificado.
type Page struct {
	Entries    []domain.LeaderboardEntry `json:"entries"`
	Total      int                       `json:"total"`
	Page       int                       `json:"page"`
	Limit      int                       `json:"limit"`
	TotalPages int                       `json:"totalPages"`
	UpdatedAt  time.Time                 `json:"updatedAt"`
	Stale      bool                      `json:"stale"`
	Sources    []domain.SourceStatus     `json:"sources"`
}

// Validate comprueba la query antes de tocar el cache.
func (q Query) Validate(maxLimit int) error {
	if q.Page < 0 {
		return fmt.Errorf("leaderboard.Query: %w: page must be >= 1", domain.ErrInvalidInput)
	}
	if q.Limit < 0 || q.Limit > maxLimit {
		return fmt.Errorf("leaderboard.Query: %w: limit must be between 1 and %d", domain.ErrInvalidInput, maxLimit)
	}
	if q.Platform != "" {
		if _, err := domain.ParsePlatform(string(q.Platform)); err != nil {
			return fmt.Errorf("leaderboard.Query: %w", err)
		}
	}
	switch q.Sort {
	case "", SortScore, SortPnL, SortVolume, SortWinRate:
	default:
		return fmt.Errorf("leaderboard.Query: %w: unknown sort %q", domain.ErrInvalidInput, q.Sort)
	}
	return nil
}

// apply filtra, ordena y pagina las entradas del snapshot.
func (q Query) apply(snap domain.Snapshot, cfg Config) Page {
	if q.Page == 0 {
		q.Page = 1
	}
	if q.Limit == 0 {
		q.Limit = cfg.PageSize
	}

	entries := snap.Entries
	if q.Platform != "" {
		entries = filterPlatform(entries, q.Platform)
	}
	if s := strings.ToLower(strings.TrimSpace(q.Search)); s != "" {
		entries = filterSearch(entries, s)
	}
	if q.Sort != "" && q.Sort != SortScore {
		entries = sortBy(entries, q.Sort)
	}

	total := len(entries)
	start := (q.Page - 1) * q.Limit
	if start > total {
		start = total
	}
	end := min(start+q.Limit, total)

	page := make([]domain.LeaderboardEntry, end-start)
	copy(page, entries[start:end])

	return Page{
		Entries:    page,
		Total:      total,
		Page:       q.Page,
		Limit:      q.Limit,
		TotalPages: (total + q.Limit - 1) / q.Limit,
		UpdatedAt:  snap.UpdatedAt,
		Sources:    snap.Sources,
	}
}

// filterPlatform deja las entradas presentes en la plataforma y las reordena
// por su score en esa plataforma. Para entradas multi-plataforma los números
// mostrados son los de esa plataforma.
func filterPlatform(entries []domain.LeaderboardEntry, p domain.Platform) []domain.LeaderboardEntry {
	out := make([]domain.LeaderboardEntry, 0, len(entries))
	for _, e := range entries {
		if !hasPlatform(e, p) {
			continue
		}
		if len(e.Platforms) > 1 {
			e = projectPlatform(e, p)
		}
		out = append(out, e)
	}
	sortEntries(out)
	for i := range out {
		out[i].Rank = i + 1
	}
	return out
}

func hasPlatform(e domain.LeaderboardEntry, p domain.Platform) bool {
	if e.Platform == p {
		return true
	}
	for _, ep := range e.Platforms {
		if ep == p {
			return true
		}
	}
	return false
}

func projectPlatform(e domain.LeaderboardEntry, p domain.Platform) domain.LeaderboardEntry {
	for _, b := range e.Breakdown {
		if b.Platform != p {
			continue
		}
		e.Platform = p
		e.Score = b.Score
		e.Tier = domain.TierFor(b.Score)
		e.Trades = b.Trades
		e.PnL = b.PnL
		e.Volume = b.Volume
		e.WinRate = b.WinRate
		e.Wins, e.Losses = b.Wins, b.Losses
		e.HasCounts = b.HasCounts
		return e
	}
	return e
}

func filterSearch(entries []domain.LeaderboardEntry, s string) []domain.LeaderboardEntry {
	out := make([]domain.LeaderboardEntry, 0)
	for _, e := range entries {
		if strings.Contains(strings.ToLower(e.Address), s) ||
			strings.Contains(strings.ToLower(e.Username), s) {
			out = append(out, e)
		}
	}
	return out
}

// sortBy reordena sin tocar el rank (que sigue siendo el de score).
func sortBy(entries []domain.LeaderboardEntry, key string) []domain.LeaderboardEntry {
	out := make([]domain.LeaderboardEntry, len(entries))
	copy(out, entries)

	metric := func(e domain.LeaderboardEntry) float64 {
		switch key {
		case SortPnL:
			return e.PnL
		case SortVolume:
			return e.Volume
		case SortWinRate:
			return e.WinRate
		}
		return float64(e.Score)
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := metric(out[i]), metric(out[j])
		if a != b {
			return a > b
		}
		return out[i].Rank < out[j].Rank
	})
	return out
}
