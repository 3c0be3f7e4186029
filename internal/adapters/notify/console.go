package notify

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/alejandrodnm/truthbounty/internal/domain"
	"github.com/alejandrodnm/truthbounty/internal/leaderboard"
	"github.com/alejandrodnm/truthbounty/internal/resolver"
)

// Console imprime leaderboards y reportes de resolución en la terminal.
type Console struct {
	out io.Writer
}

// NewConsole crea un Console que escribe a stdout.
func NewConsole() *Console {
	return &Console{out: os.Stdout}
}

// NewConsoleWriter crea un Console sobre cualquier writer (tests).
func NewConsoleWriter(w io.Writer) *Console {
	return &Console{out: w}
}

// PrintLeaderboard imprime la página como tabla y una línea por fuente.
func (c *Console) PrintLeaderboard(page leaderboard.Page) {
	if len(page.Entries) == 0 {
		fmt.Fprintf(c.out, "[%s] leaderboard is empty\n", time.Now().Format("15:04:05"))
		c.printSources(page.Sources)
		return
	}

	stale := ""
	if page.Stale {
		stale = " (stale)"
	}
	fmt.Fprintf(c.out, "\n[%s] %d traders, page %d/%d, updated %s%s\n",
		time.Now().Format("15:04:05"), page.Total, page.Page, max(page.TotalPages, 1),
		page.UpdatedAt.Format("2006-01-02 15:04:05"), stale)

	table := tablewriter.NewWriter(c.out)
	table.Header("#", "Address", "Platforms", "Score", "Tier", "PnL", "Volume", "Trades", "WinRate")
	for _, e := range page.Entries {
		table.Append(
			fmt.Sprintf("%d", e.Rank),
			addressLabel(e),
			platformsLabel(e.Platforms),
			fmt.Sprintf("%d", e.Score),
			string(e.Tier),
			money(e.PnL),
			money(e.Volume),
			fmt.Sprintf("%d", e.Trades),
			fmt.Sprintf("%.1f%%", e.WinRate*100),
		)
	}
	table.Render()

	c.printSources(page.Sources)
}

func (c *Console) printSources(sources []domain.SourceStatus) {
	if len(sources) == 0 {
		return
	}
	parts := make([]string, 0, len(sources))
	for _, s := range sources {
		if s.OK {
			parts = append(parts, fmt.Sprintf("%s ok(%d, %dms)", s.Platform, s.Count, s.LatencyMs))
		} else {
			parts = append(parts, fmt.Sprintf("%s FAIL(%s)", s.Platform, truncate(s.Err, 40)))
		}
	}
	fmt.Fprintf(c.out, "  sources: %s\n\n", strings.Join(parts, " | "))
}

// PrintReport imprime el resultado de una ejecución de resolución.
func (c *Console) PrintReport(r resolver.RunReport) {
	fmt.Fprintf(c.out, "[%s] resolve %-12s checked:%d markets:%d won:%d lost:%d refunded:%d skipped:%d errors:%d\n",
		time.Now().Format("15:04:05"), r.Platform,
		r.Checked, r.Markets, r.Won, r.Lost, r.Refunded, r.Skipped, r.Errors)
}

// PrintReports imprime varios reportes como tabla con totales.
func (c *Console) PrintReports(reports []resolver.RunReport) {
	if len(reports) == 0 {
		fmt.Fprintln(c.out, "  No platforms with a resolver.")
		return
	}

	table := tablewriter.NewWriter(c.out)
	table.Header("Platform", "Checked", "Markets", "Won", "Lost", "Refunded", "Skipped", "Errors")

	var total resolver.RunReport
	for _, r := range reports {
		table.Append(
			string(r.Platform),
			fmt.Sprintf("%d", r.Checked),
			fmt.Sprintf("%d", r.Markets),
			fmt.Sprintf("%d", r.Won),
			fmt.Sprintf("%d", r.Lost),
			fmt.Sprintf("%d", r.Refunded),
			fmt.Sprintf("%d", r.Skipped),
			fmt.Sprintf("%d", r.Errors),
		)
		total.Checked += r.Checked
		total.Won += r.Won
		total.Lost += r.Lost
		total.Refunded += r.Refunded
		total.Errors += r.Errors
	}
	table.Render()

	fmt.Fprintf(c.out, "  resolved %d of %d pending bets (%d errors)\n\n",
		total.Resolved(), total.Checked, total.Errors)
}

// --- helpers ---

func addressLabel(e domain.LeaderboardEntry) string {
	addr := e.Address
	if len(addr) == 42 && strings.HasPrefix(addr, "0x") {
		addr = addr[:6] + "…" + addr[38:]
	}
	if e.Username != "" {
		return truncate(e.Username, 18) + " " + addr
	}
	return addr
}

func platformsLabel(ps []domain.Platform) string {
	names := make([]string, len(ps))
	for i, p := range ps {
		names[i] = string(p)
	}
	return strings.Join(names, ",")
}

func money(v float64) string {
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	switch {
	case v >= 1_000_000:
		return fmt.Sprintf("%s$%.2fM", sign, v/1_000_000)
	case v >= 10_000:
		return fmt.Sprintf("%s$%.1fk", sign, v/1_000)
	default:
		return fmt.Sprintf("%s$%.2f", sign, v)
	}
}

// truncate corta por runas para no partir caracteres multibyte.
func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}
