// Package statement defines the raw financial statement data model and the
// normalizer that aligns irregular per-period filings onto a clean time axis.
// Everything in this package is a pure transformation over already-fetched
// data; no I/O happens here.
package statement

import (
	"fmt"
	"time"
)

// PeriodType distinguishes annual from quarterly reporting periods.
type PeriodType string

const (
	Annual    PeriodType = "annual"
	Quarterly PeriodType = "quarterly"
)

// ParsePeriodType converts a string into a PeriodType.
func ParsePeriodType(s string) (PeriodType, error) {
	switch s {
	case "annual", "A", "FY", "yearly":
		return Annual, nil
	case "quarterly", "Q", "quarter":
		return Quarterly, nil
	default:
		return "", fmt.Errorf("unknown period type %q", s)
	}
}

// Canonical line item names. Providers report under many labels; the fetch
// layer maps everything onto this fixed vocabulary before the calculators
// ever see it.
const (
	TotalRevenue        = "total_revenue"
	CostOfRevenue       = "cost_of_revenue"
	GrossProfit         = "gross_profit"
	OperatingIncome     = "operating_income"
	NetIncome           = "net_income"
	TotalAssets         = "total_assets"
	TotalEquity         = "total_equity"
	TotalDebt           = "total_debt"
	CurrentAssets       = "current_assets"
	CurrentLiabilities  = "current_liabilities"
	OperatingCashFlow   = "operating_cash_flow"
	CapitalExpenditures = "capital_expenditures"
)

// LineItems returns the canonical line item vocabulary in display order.
func LineItems() []string {
	return []string{
		TotalRevenue, CostOfRevenue, GrossProfit, OperatingIncome, NetIncome,
		TotalAssets, TotalEquity, TotalDebt, CurrentAssets, CurrentLiabilities,
		OperatingCashFlow, CapitalExpenditures,
	}
}

// Value is a tagged line item value: either a reported number or an explicit
// "not reported" marker. Raw nullable floats never flow through arithmetic;
// every consumer must check Reported first.
type Value struct {
	Num      float64 `json:"num"`
	Reported bool    `json:"reported"`
}

// Reported wraps a number that the filing actually contains.
func Reported(v float64) Value { return Value{Num: v, Reported: true} }

// NotReported marks a line item absent from the filing.
func NotReported() Value { return Value{} }

// StatementPeriod is one reporting period for one company: the union of the
// income statement, balance sheet and cash flow line items we care about.
// Treat it as immutable once constructed; NewStatementPeriod copies the map.
type StatementPeriod struct {
	CompanyID  string           `json:"company_id"`
	EndDate    time.Time        `json:"end_date"`
	PeriodType PeriodType       `json:"period_type"`
	Items      map[string]Value `json:"items"`
}

// NewStatementPeriod builds an immutable period. The items map is copied so
// later caller mutations cannot leak in.
func NewStatementPeriod(companyID string, endDate time.Time, pt PeriodType, items map[string]Value) StatementPeriod {
	copied := make(map[string]Value, len(items))
	for k, v := range items {
		copied[k] = v
	}
	return StatementPeriod{
		CompanyID:  companyID,
		EndDate:    endDate,
		PeriodType: pt,
		Items:      copied,
	}
}

// Item returns the value for a canonical line item name and whether the
// filing reported it at all.
func (p StatementPeriod) Item(name string) (float64, bool) {
	v, ok := p.Items[name]
	if !ok || !v.Reported {
		return 0, false
	}
	return v.Num, true
}

// NormalizedPeriod is a StatementPeriod placed on the series axis, with a
// gap flag when the expected prior period is missing. Downstream growth
// metrics must treat a flagged period as having no usable predecessor.
type NormalizedPeriod struct {
	StatementPeriod
	Gap bool `json:"gap"`
}

// NormalizedSeries is one company's periods sorted by end date ascending.
// Invariant: no two periods share (end date, period type).
type NormalizedSeries struct {
	CompanyID  string             `json:"company_id"`
	PeriodType PeriodType         `json:"period_type"`
	Periods    []NormalizedPeriod `json:"periods"`
}

// DuplicatePeriodError reports two raw periods sharing the same
// (end date, period type) for one company. Structural, fatal to the call.
type DuplicatePeriodError struct {
	CompanyID  string
	EndDate    time.Time
	PeriodType PeriodType
}

func (e *DuplicatePeriodError) Error() string {
	return fmt.Sprintf("duplicate period for %s: %s (%s)",
		e.CompanyID, e.EndDate.Format("2006-01-02"), e.PeriodType)
}

// InconsistentPeriodTypeError reports annual and quarterly data mixed in a
// single call without an explicit period-type selector.
type InconsistentPeriodTypeError struct {
	CompanyID string
	Found     []PeriodType
}

func (e *InconsistentPeriodTypeError) Error() string {
	if e.CompanyID != "" {
		return fmt.Sprintf("inconsistent period types for %s: %v", e.CompanyID, e.Found)
	}
	return fmt.Sprintf("inconsistent period types across companies: %v", e.Found)
}
