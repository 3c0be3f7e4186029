package leaderboard

import (
	"sort"

	"github.com/alejandrodnm/truthbounty/internal/domain"
)

// merge combina los leaderboards de todas las plataformas en uno unificado:
//  1. dedup (platform, address) quedándose con el score más alto
//  2. agrupa por address; si aparece en varias plataformas el score es el agregado
//  3. ordena por Score desc, PnL desc, Address asc y asigna rank desde 1
func merge(results []sourceResult) []domain.LeaderboardEntry {
	type key struct {
		platform domain.Platform
		address  string
	}

	best := make(map[key]domain.LeaderboardEntry)
	for _, r := range results {
		for _, e := range r.entries {
			if e.Address == "" {
				continue
			}
			if e.Platform == "" {
				e.Platform = r.platform
			}
			k := key{e.Platform, e.Address}
			if prev, ok := best[k]; !ok || e.Score > prev.Score {
				best[k] = e
			}
		}
	}

	byAddress := make(map[string][]domain.LeaderboardEntry)
	var order []string
	for k, e := range best {
		if _, seen := byAddress[k.address]; !seen {
			order = append(order, k.address)
		}
		byAddress[k.address] = append(byAddress[k.address], e)
	}

	out := make([]domain.LeaderboardEntry, 0, len(order))
	for _, addr := range order {
		out = append(out, combine(byAddress[addr]))
	}

	sortEntries(out)
	for i := range out {
		out[i].Rank = i + 1
	}
	return out
}

// combine une las entradas de una misma dirección en varias plataformas.
func combine(parts []domain.LeaderboardEntry) domain.LeaderboardEntry {
	sort.Slice(parts, func(i, j int) bool {
		if parts[i].Score != parts[j].Score {
			return parts[i].Score > parts[j].Score
		}
		return parts[i].Platform < parts[j].Platform
	})

	if len(parts) == 1 {
		e := parts[0]
		if len(e.Platforms) == 0 {
			e.Platforms = []domain.Platform{e.Platform}
		}
		return e
	}

	top := parts[0]
	merged := domain.LeaderboardEntry{
		Address:   top.Address,
		Platform:  top.Platform,
		HasCounts: true,
	}

	scores := make([]domain.PlatformScore, 0, len(parts))
	var weightedWinRate float64
	for _, p := range parts {
		if merged.Username == "" {
			merged.Username = p.Username
		}
		merged.Platforms = append(merged.Platforms, p.Platform)
		merged.PnL += p.PnL
		merged.Volume += p.Volume
		merged.Trades += p.Trades
		merged.Wins += p.Wins
		merged.Losses += p.Losses
		merged.HasCounts = merged.HasCounts && p.HasCounts
		weightedWinRate += p.WinRate * float64(p.Trades)

		scores = append(scores, platformScoreOf(p))
	}

	merged.Score, merged.Breakdown = domain.AggregateTruthScore(scores)
	merged.Tier = domain.TierFor(merged.Score)

	switch {
	case merged.HasCounts && merged.Wins+merged.Losses > 0:
		merged.WinRate = float64(merged.Wins) / float64(merged.Wins+merged.Losses)
	case merged.Trades > 0:
		merged.WinRate = weightedWinRate / float64(merged.Trades)
	}
	return merged
}

// platformScoreOf devuelve el breakdown de la entrada para su plataforma.
func platformScoreOf(e domain.LeaderboardEntry) domain.PlatformScore {
	for _, b := range e.Breakdown {
		if b.Platform == e.Platform {
			return b
		}
	}
	return domain.PlatformScore{
		Platform: e.Platform,
		Score:    e.Score,
		Trades:   e.Trades,
		PnL:      e.PnL,
		Volume:   e.Volume,
		WinRate:  e.WinRate,

		Wins:      e.Wins,
		Losses:    e.Losses,
		HasCounts: e.HasCounts,
	}
}

func sortEntries(entries []domain.LeaderboardEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.PnL != b.PnL {
			return a.PnL > b.PnL
		}
		return a.Address < b.Address
	})
}
