package notifier

import (
	"fmt"
	"html"
	"sort"
	"strings"

	"VRSentinel/internal/model"
)

var classIcon = map[model.RiskClass]string{
	model.ClassAggressive:   "🔴",
	model.ClassModerate:     "🟡",
	model.ClassConservative: "🟢",
	model.ClassUnclassified: "⚪",
}

// FormatBatchReport formats a scored batch into a Telegram message, one block per
// symbol in request order. Failed symbols render as N/A with their error kind.
func FormatBatchReport(title string, res *model.BatchResult) string {
	var b strings.Builder

	counts := res.Counts()
	scored := counts[model.KindNone]
	b.WriteString(fmt.Sprintf("📊 <b>VR report: %s</b> | %s\n", html.EscapeString(title), res.End.Format("2006-01-02")))
	b.WriteString(fmt.Sprintf("Benchmark: %s | scored %d/%d\n\n", res.Benchmark, scored, len(res.Order)))

	for _, row := range res.Rows() {
		b.WriteString(formatRow(row))
	}

	if failed := len(res.Order) - scored; failed > 0 {
		kinds := make([]string, 0, len(counts))
		for k, n := range counts {
			if k != model.KindNone {
				kinds = append(kinds, fmt.Sprintf("%s×%d", k, n))
			}
		}
		sort.Strings(kinds)
		b.WriteString(fmt.Sprintf("\n⚠️ not scored: %s\n", strings.Join(kinds, ", ")))
	}
	return b.String()
}

func formatRow(row model.ResultRow) string {
	var b strings.Builder
	icon := classIcon[row.Classification]
	if row.VR == nil {
		b.WriteString(fmt.Sprintf("%s <b>%s</b> N/A (%s)\n", icon, row.Symbol, row.ErrorKind))
	} else {
		b.WriteString(fmt.Sprintf("%s <b>%s</b> VR %.2f | DERI %.4f | MEVAR %.4f | %s\n",
			icon, row.Symbol, *row.VR, *row.DERI, *row.MEVAR, row.Classification))
	}
	if s := row.Snapshot; s != nil {
		line := fmt.Sprintf("   spot %.2f", s.Spot)
		if s.WeeklyChange != nil {
			line += fmt.Sprintf(" (%+.1f%% vs %s)", *s.WeeklyChange, s.ReferenceDate.Format("01-02"))
		}
		if s.Upside != nil {
			line += fmt.Sprintf(" | target %+.1f%%", *s.Upside)
		}
		if s.EMA10w != nil && s.EMA20w != nil {
			line += fmt.Sprintf(" | EMA10w %.2f EMA20w %.2f", *s.EMA10w, *s.EMA20w)
		}
		b.WriteString(line + "\n")
	}
	return b.String()
}

// FormatBenchmarkFailure reports a batch aborted because its benchmark could not be scored.
func FormatBenchmarkFailure(title string, err error) string {
	return fmt.Sprintf("❌ <b>VR report: %s</b>\nbenchmark unavailable, batch aborted:\n%s",
		html.EscapeString(title), html.EscapeString(err.Error()))
}

// FormatWatchlists lists configured watchlists and their symbols.
func FormatWatchlists(lists map[string][]string) string {
	if len(lists) == 0 {
		return "no watchlists configured"
	}
	names := make([]string, 0, len(lists))
	for name := range lists {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString("📋 <b>Watchlists</b>\n")
	for _, name := range names {
		b.WriteString(fmt.Sprintf("• %s: %s\n", html.EscapeString(name), strings.Join(lists[name], ", ")))
	}
	return b.String()
}
