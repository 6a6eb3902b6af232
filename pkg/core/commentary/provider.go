// Package commentary generates an optional analyst-style narrative for an
// assembled comparison table. The pipeline works without it; callers plug a
// Provider in when they want prose next to the numbers.
package commentary

import (
	"context"
	"fmt"
	"strings"

	"findash/pkg/core/compare"
	"findash/pkg/core/metrics"
)

// Provider is the interface for all LLM providers.
type Provider interface {
	GenerateResponse(ctx context.Context, prompt string, systemPrompt string) (string, error)
}

const systemPrompt = "You are a sell-side equity analyst. Summarize the " +
	"comparative financial metrics you are given in plain language, three " +
	"paragraphs maximum. Mention undefined metrics only when they matter " +
	"(e.g. negative equity). Do not invent numbers."

// Summarize renders the table into a prompt and asks the provider for a
// short narrative.
func Summarize(ctx context.Context, p Provider, table *compare.Table) (string, error) {
	if p == nil {
		return "", fmt.Errorf("no commentary provider configured")
	}
	return p.GenerateResponse(ctx, buildPrompt(table), systemPrompt)
}

// buildPrompt flattens the latest row per company into a compact textual
// snapshot. Only the most recent period goes to the model; the history is a
// chart concern, not a narrative one.
func buildPrompt(table *compare.Table) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Period type: %s\n", table.PeriodType)

	for _, company := range table.Companies {
		// Walk rows newest-first until this company has a present cell.
		for i := len(table.Rows) - 1; i >= 0; i-- {
			cell, ok := table.Rows[i].Cells[company]
			if !ok || !cell.Present || cell.Metrics == nil {
				continue
			}
			fmt.Fprintf(&b, "\n%s (period ending %s):\n",
				company, table.Rows[i].PeriodEnd.Format("2006-01-02"))
			for _, name := range metrics.Names() {
				v := cell.Metrics.Get(name)
				if v.Defined {
					fmt.Fprintf(&b, "  %s: %.4f\n", name, v.Num)
				} else {
					fmt.Fprintf(&b, "  %s: undefined (%s)\n", name, v.Reason)
				}
			}
			if cell.Health != nil && cell.Health.Defined {
				fmt.Fprintf(&b, "  health_score: %.1f\n", cell.Health.Value)
			}
			break
		}
	}
	return b.String()
}
