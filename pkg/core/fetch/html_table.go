package fetch

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"findash/pkg/core/statement"
)

// labelMap translates the row labels providers print in HTML statement
// tables onto the canonical line item vocabulary. Lookup is lowercase.
var labelMap = map[string]string{
	"total revenue":        statement.TotalRevenue,
	"revenue":              statement.TotalRevenue,
	"cost of revenue":      statement.CostOfRevenue,
	"gross profit":         statement.GrossProfit,
	"operating income":     statement.OperatingIncome,
	"net income":           statement.NetIncome,
	"total assets":         statement.TotalAssets,
	"stockholders equity":  statement.TotalEquity,
	"total equity":         statement.TotalEquity,
	"total debt":           statement.TotalDebt,
	"current assets":       statement.CurrentAssets,
	"current liabilities":  statement.CurrentLiabilities,
	"operating cash flow":  statement.OperatingCashFlow,
	"capital expenditure":  statement.CapitalExpenditures,
	"capital expenditures": statement.CapitalExpenditures,
}

// ParseStatementTable extracts statement periods from a provider HTML table.
// Expected shape: a header row whose cells after the first hold period end
// dates (YYYY-MM-DD), then one row per line item with the label in the first
// cell. Empty, "-" and "N/A" cells are treated as not reported. Labels
// outside the canonical vocabulary are skipped.
//
// This is the fallback ingestion path for providers that only expose
// rendered statement pages.
func ParseStatementTable(r io.Reader, companyID string, pt statement.PeriodType) ([]statement.StatementPeriod, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse statement table: %w", err)
	}

	rows := doc.Find("table tr")
	if rows.Length() < 2 {
		return nil, fmt.Errorf("parse statement table: no data rows found")
	}

	// Header row: period end dates, column order preserved.
	var ends []time.Time
	var headerErr error
	rows.First().Find("td, th").Each(func(i int, cell *goquery.Selection) {
		if i == 0 || headerErr != nil {
			return
		}
		text := strings.TrimSpace(cell.Text())
		end, err := time.Parse("2006-01-02", text)
		if err != nil {
			headerErr = fmt.Errorf("parse statement table: bad period header %q", text)
			return
		}
		ends = append(ends, end)
	})
	if headerErr != nil {
		return nil, headerErr
	}
	if len(ends) == 0 {
		return nil, fmt.Errorf("parse statement table: header has no period columns")
	}

	itemsByCol := make([]map[string]statement.Value, len(ends))
	for i := range itemsByCol {
		itemsByCol[i] = make(map[string]statement.Value)
	}

	rows.Slice(1, rows.Length()).Each(func(_ int, tr *goquery.Selection) {
		cells := tr.Find("td, th")
		if cells.Length() < 2 {
			return
		}
		label := strings.ToLower(strings.TrimSpace(cells.First().Text()))
		name, ok := labelMap[label]
		if !ok {
			return
		}
		cells.Slice(1, cells.Length()).Each(func(col int, cell *goquery.Selection) {
			if col >= len(ends) {
				return
			}
			v, ok := parseAmount(cell.Text())
			if !ok {
				itemsByCol[col][name] = statement.NotReported()
				return
			}
			itemsByCol[col][name] = statement.Reported(v)
		})
	})

	periods := make([]statement.StatementPeriod, len(ends))
	for i, end := range ends {
		periods[i] = statement.NewStatementPeriod(companyID, end, pt, itemsByCol[i])
	}
	return periods, nil
}

// parseAmount handles the usual statement table formatting: thousands
// separators, leading $, and (1,234) accounting negatives.
func parseAmount(raw string) (float64, bool) {
	s := strings.TrimSpace(raw)
	if s == "" || s == "-" || strings.EqualFold(s, "n/a") {
		return 0, false
	}
	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = s[1 : len(s)-1]
	}
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimPrefix(s, "$")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	if negative {
		v = -v
	}
	return v, true
}
