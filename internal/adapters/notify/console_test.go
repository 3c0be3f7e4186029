package notify_test

import (
	"bytes"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"

	"github.com/alejandrodnm/truthbounty/internal/adapters/notify"
	"github.com/alejandrodnm/truthbounty/internal/domain"
	"github.com/alejandrodnm/truthbounty/internal/leaderboard"
	"github.com/alejandrodnm/truthbounty/internal/resolver"
)

func TestConsole_PrintLeaderboard(t *testing.T) {
	var buf bytes.Buffer
	c := notify.NewConsoleWriter(&buf)

	c.PrintLeaderboard(leaderboard.Page{
		Entries: []domain.LeaderboardEntry{
			{
				Rank:      1,
				Address:   "0xabc0000000000000000000000000000000000001",
				Username:  "whale",
				Platforms: []domain.Platform{domain.PlatformPolymarket, domain.PlatformAzuro},
				Score:     812,
				Tier:      domain.TierDiamond,
				PnL:       1_250_000,
				Volume:    42_000,
				Trades:    310,
				WinRate:   0.64,
			},
		},
		Total:      1,
		Page:       1,
		Limit:      25,
		TotalPages: 1,
		UpdatedAt:  time.Now(),
		Stale:      true,
		Sources: []domain.SourceStatus{
			{Platform: domain.PlatformPolymarket, OK: true, Count: 100, LatencyMs: 120},
			{Platform: domain.PlatformLimitless, Err: "timeout"},
		},
	})

	out := buf.String()
	assert.Contains(t, out, "whale")
	assert.Contains(t, out, "0xabc0…0001")
	assert.Contains(t, out, "polymarket,azuro")
	assert.Contains(t, out, "812")
	assert.Contains(t, out, "$1.25M")
	assert.Contains(t, out, "$42.0k")
	assert.Contains(t, out, "64.0%")
	assert.Contains(t, out, "(stale)")
	assert.Contains(t, out, "polymarket ok(100, 120ms)")
	assert.Contains(t, out, "limitless FAIL(timeout)")
}

func TestConsole_SourceErrorTruncatesRunes(t *testing.T) {
	var buf bytes.Buffer
	notify.NewConsoleWriter(&buf).PrintLeaderboard(leaderboard.Page{
		Entries: []domain.LeaderboardEntry{{Rank: 1, Address: "0xabc0000000000000000000000000000000000001"}},
		Sources: []domain.SourceStatus{{Platform: domain.PlatformManifold, Err: strings.Repeat("é", 45)}},
	})

	out := buf.String()
	assert.True(t, utf8.ValidString(out), "no se parte ningún carácter multibyte")
	assert.Contains(t, out, "manifold FAIL("+strings.Repeat("é", 37)+"...)")
}

func TestConsole_PrintLeaderboard_Empty(t *testing.T) {
	var buf bytes.Buffer
	notify.NewConsoleWriter(&buf).PrintLeaderboard(leaderboard.Page{})
	assert.Contains(t, buf.String(), "leaderboard is empty")
}

func TestConsole_PrintReports(t *testing.T) {
	var buf bytes.Buffer
	c := notify.NewConsoleWriter(&buf)

	c.PrintReports([]resolver.RunReport{
		{Platform: domain.PlatformAzuro, Checked: 4, Markets: 2, Won: 1, Lost: 2, Skipped: 1},
		{Platform: domain.PlatformPolymarket, Checked: 3, Markets: 1, Refunded: 3},
	})

	out := buf.String()
	assert.Contains(t, out, "azuro")
	assert.Contains(t, out, "polymarket")
	assert.Contains(t, out, "resolved 6 of 7 pending bets (0 errors)")

	buf.Reset()
	c.PrintReports(nil)
	assert.Contains(t, buf.String(), "No platforms with a resolver")

	buf.Reset()
	c.PrintReport(resolver.RunReport{Platform: domain.PlatformAzuro, Checked: 2, Won: 2})
	assert.Contains(t, buf.String(), "checked:2")
	assert.Contains(t, buf.String(), "won:2")
}
