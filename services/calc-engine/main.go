// calc-engine is a one-shot compute tool: feed it a statements payload and
// it prints metric records and health scores as JSON. Useful for verifying
// the calculation layer against known filings without a provider or server.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"findash/pkg/core/fetch"
	"findash/pkg/core/health"
	"findash/pkg/core/metrics"
	"findash/pkg/core/statement"
)

type output struct {
	Company string           `json:"company"`
	Records []metrics.Record `json:"records"`
	Scores  []health.Score   `json:"scores"`
}

func main() {
	mode := flag.String("mode", "calculate", "Mode: check or calculate")
	company := flag.String("company", "", "Company ID (ticker)")
	dataStr := flag.String("data", "", "JSON statements payload")
	filePath := flag.String("file", "", "Path to JSON statements payload")
	periodStr := flag.String("period", "annual", "Period type: annual or quarterly")
	flag.Parse()

	payload := *dataStr
	if payload == "" && *filePath != "" {
		raw, err := os.ReadFile(*filePath)
		if err != nil {
			fmt.Printf("Error reading %s: %v\n", *filePath, err)
			os.Exit(1)
		}
		payload = string(raw)
	}
	if payload == "" {
		fmt.Println("Error: No data provided (use -data or -file)")
		os.Exit(1)
	}
	if *company == "" {
		fmt.Println("Error: No company provided")
		os.Exit(1)
	}

	pt, err := statement.ParsePeriodType(*periodStr)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	periods, err := fetch.DecodeStatements(*company, pt, payload)
	if err != nil {
		fmt.Printf("Error decoding payload: %v\n", err)
		os.Exit(1)
	}

	series, err := statement.Normalize(*company, periods)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	switch *mode {
	case "check":
		runChecks(series)
	case "calculate":
		runCalculations(series)
	default:
		fmt.Printf("Unknown mode: %s\n", *mode)
	}
}

// runChecks validates the normalized series shape: reports period count,
// gaps, and which canonical line items each period is missing.
func runChecks(series statement.NormalizedSeries) {
	fmt.Printf("Success: %d periods normalized (%s)\n", len(series.Periods), series.PeriodType)
	for _, p := range series.Periods {
		var missing []string
		for _, name := range statement.LineItems() {
			if _, ok := p.Item(name); !ok {
				missing = append(missing, name)
			}
		}
		status := "complete"
		if len(missing) > 0 {
			status = fmt.Sprintf("missing %v", missing)
		}
		gap := ""
		if p.Gap {
			gap = " [gap before this period]"
		}
		fmt.Printf("  %s: %s%s\n", p.EndDate.Format("2006-01-02"), status, gap)
	}
}

func runCalculations(series statement.NormalizedSeries) {
	records := metrics.Compute(series)
	scores := health.ComputeSeries(records)

	out := output{Company: series.CompanyID, Records: records, Scores: scores}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		fmt.Printf("Error encoding output: %v\n", err)
		os.Exit(1)
	}
}
