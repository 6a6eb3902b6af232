// Package report renders an assembled comparison table as a markdown
// document: one section per metric plus the composite health score,
// companies as columns, periods as rows. Presentation only; all numbers
// arrive already computed.
package report

import (
	"fmt"
	"strings"

	"findash/pkg/core/compare"
	"findash/pkg/core/metrics"
	"findash/pkg/core/utils"
)

// metricLabels maps metric names to section headings.
var metricLabels = map[string]string{
	metrics.RevenueGrowth:   "Revenue Growth",
	metrics.GrossMargin:     "Gross Margin",
	metrics.OperatingMargin: "Operating Margin",
	metrics.NetMargin:       "Net Margin",
	metrics.FreeCashFlow:    "Free Cash Flow",
	metrics.ROE:             "Return on Equity",
	metrics.ROA:             "Return on Assets",
	metrics.CurrentRatio:    "Current Ratio",
	metrics.DebtToEquity:    "Debt to Equity",
}

// percentMetrics render as percentages; the rest render as plain numbers.
var percentMetrics = map[string]bool{
	metrics.RevenueGrowth:   true,
	metrics.GrossMargin:     true,
	metrics.OperatingMargin: true,
	metrics.NetMargin:       true,
	metrics.ROE:             true,
	metrics.ROA:             true,
}

// RenderComparison produces the full markdown report for a table.
func RenderComparison(table *compare.Table, commentary string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Financial Comparison Report\n\n")
	fmt.Fprintf(&b, "Period type: %s\n\n", table.PeriodType)
	fmt.Fprintf(&b, "Companies: %s\n", strings.Join(table.Companies, ", "))

	if commentary != "" {
		fmt.Fprintf(&b, "\n## Analyst Commentary\n\n%s\n", strings.TrimSpace(commentary))
	}

	b.WriteString("\n## Health Score\n\n")
	renderSection(&b, table, func(cell compare.Cell) string {
		if cell.Health == nil || !cell.Health.Defined {
			return "N/A"
		}
		return fmt.Sprintf("%.1f", cell.Health.Value)
	})

	for _, name := range metrics.Names() {
		fmt.Fprintf(&b, "\n## %s\n\n", metricLabels[name])
		renderSection(&b, table, func(cell compare.Cell) string {
			if cell.Metrics == nil {
				return "N/A"
			}
			return formatValue(name, cell.Metrics.Get(name))
		})
	}

	out := b.String()
	if !utils.ValidateMarkdown(out) {
		// Goldmark accepts nearly anything; a nil parse means something is
		// badly broken upstream, so surface a stub instead of garbage.
		return "# Financial Comparison Report\n\n(render error)\n"
	}
	return out
}

func renderSection(b *strings.Builder, table *compare.Table, format func(compare.Cell) string) {
	fmt.Fprintf(b, "| Period | %s |\n", strings.Join(table.Companies, " | "))
	b.WriteString("|---")
	for range table.Companies {
		b.WriteString("|---")
	}
	b.WriteString("|\n")

	for _, row := range table.Rows {
		fmt.Fprintf(b, "| %s ", row.PeriodEnd.Format("2006-01-02"))
		for _, company := range table.Companies {
			cell, ok := row.Cells[company]
			if !ok || !cell.Present {
				b.WriteString("| N/A ")
				continue
			}
			fmt.Fprintf(b, "| %s ", format(cell))
		}
		b.WriteString("|\n")
	}
}

// formatValue renders one metric value; undefined values carry their reason
// code so the report never shows a blank or a fake zero.
func formatValue(name string, v metrics.Value) string {
	if !v.Defined {
		return fmt.Sprintf("N/A (%s)", v.Reason)
	}
	if percentMetrics[name] {
		return fmt.Sprintf("%.2f%%", v.Num*100)
	}
	if name == metrics.FreeCashFlow {
		return fmt.Sprintf("%.0f", v.Num)
	}
	return fmt.Sprintf("%.2f", v.Num)
}
