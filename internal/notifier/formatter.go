package notifier

import (
	"fmt"
	"math"
	"strings"

	"MacroSentinel/internal/allocation"
	"MacroSentinel/internal/model"
)

const barWidth = 10

// bar renders |w| relative to max as a fixed-width text bar. Negative weights use a lighter fill.
func bar(w, max float64) string {
	if max <= 0 {
		return strings.Repeat("·", barWidth)
	}
	n := int(math.Round(math.Abs(w) / max * barWidth))
	fill := "█"
	if w < 0 {
		fill = "░"
	}
	return strings.Repeat(fill, n) + strings.Repeat("·", barWidth-n)
}

// FormatAllocationReport formats an allocation run as a ranked Telegram message.
func FormatAllocationReport(run *model.AllocationRun) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("📊 <b>MacroSentinel Allocation</b> | %s\n\n", run.At.Format("2006-01-02")))

	regime := allocation.ClassifyRegime(run.Economic)
	b.WriteString(fmt.Sprintf("Regime: <b>%s</b>\n", regime))
	b.WriteString(fmt.Sprintf("Inflation: %.2f%% | GDP growth: %.2f%% | 10y: %.2f%%\n\n",
		run.Economic.Inflation, run.Economic.GDPGrowth, run.Economic.InterestRate))

	ranked := allocation.Rank(run.Weights)
	var max float64
	for _, r := range ranked {
		max = math.Max(max, math.Abs(r.Weight))
	}

	b.WriteString("<pre>")
	for i, r := range ranked {
		b.WriteString(fmt.Sprintf("%2d. %-6s %s %+.2f\n", i+1, r.Label, bar(r.Weight, max), r.Weight))
	}
	b.WriteString("</pre>\n")

	if len(run.Missing) > 0 {
		labels := make([]string, len(run.Missing))
		for i, s := range run.Missing {
			labels[i] = s.Label()
		}
		b.WriteString(fmt.Sprintf("⚠️ No market data: %s (macro tilt only)\n", strings.Join(labels, ", ")))
	}

	if pie := FormatPieShares(run.Weights); pie != "" {
		b.WriteString("\n" + pie)
	}
	return b.String()
}

// FormatPieShares lists each positively weighted sector's share of the positive total.
// It returns "" when no weight is positive.
func FormatPieShares(w model.SectorWeightMap) string {
	shares := allocation.PositiveShares(w)
	var parts []string
	for _, r := range allocation.Rank(shares) {
		if r.Weight <= 0 {
			break
		}
		parts = append(parts, fmt.Sprintf("%s %.0f%%", r.Label, r.Weight*100))
	}
	if len(parts) == 0 {
		return ""
	}
	return "🥧 " + strings.Join(parts, " | ") + "\n"
}

// FormatMacroReport formats the macro dashboard.
func FormatMacroReport(d *model.MacroDashboard) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("🏛 <b>Macro Dashboard</b> | %s\n\n", d.FetchedAt.Format("2006-01-02 15:04")))
	b.WriteString(fmt.Sprintf("Inflation (CPI YoY): %.2f%%\n", d.Inflation))
	b.WriteString(fmt.Sprintf("Unemployment: %.1f%%\n", d.UnemploymentRate))
	b.WriteString(fmt.Sprintf("Real GDP growth: %.2f%%\n", d.GDPGrowth))
	b.WriteString(fmt.Sprintf("10y Treasury: %.2f%%\n", d.RiskFreeRate))
	b.WriteString(fmt.Sprintf("\nRegime: <b>%s</b>\n", allocation.ClassifyRegime(d.Snapshot())))
	return b.String()
}

// FormatHelp lists the bot commands.
func FormatHelp() string {
	return "Available commands:\n• /allocation - latest sector weights\n• /refresh - run allocation now\n• /macro - macro dashboard"
}

var htmlTags = strings.NewReplacer("<b>", "", "</b>", "", "<pre>", "", "</pre>", "")

// PlainText strips the Telegram HTML markup used by the formatters, for terminal output.
func PlainText(s string) string {
	return htmlTags.Replace(s)
}
