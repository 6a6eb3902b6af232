// Package metrics computes the standard ratio/growth/margin set from a
// normalized statement series. Every metric is either a defined number or
// an explicit undefined-with-reason; nothing here ever divides blind or
// emits NaN/Inf.
package metrics

import (
	"time"

	"findash/pkg/core/statement"
)

// Reason codes for undefined metrics. These are expected output states, not
// errors; they flow all the way to the comparison table so a UI can render a
// meaningful placeholder.
type Reason string

const (
	ReasonMissingInput    Reason = "missing_input"
	ReasonZeroDenominator Reason = "zero_denominator"
	ReasonNegativeEquity  Reason = "negative_equity"
	ReasonPeriodGap       Reason = "period_gap"
)

// Metric names. The set is fixed; every name has a deterministic derivation
// from the period's line items and, for growth, its immediate predecessor.
const (
	RevenueGrowth   = "revenue_growth"
	GrossMargin     = "gross_margin"
	OperatingMargin = "operating_margin"
	NetMargin       = "net_margin"
	FreeCashFlow    = "free_cash_flow"
	ROE             = "roe"
	ROA             = "roa"
	CurrentRatio    = "current_ratio"
	DebtToEquity    = "debt_to_equity"
)

// Names returns all metric names in display order.
func Names() []string {
	return []string{
		RevenueGrowth, GrossMargin, OperatingMargin, NetMargin,
		FreeCashFlow, ROE, ROA, CurrentRatio, DebtToEquity,
	}
}

// Value is a computed metric: a defined number, or undefined with a reason.
type Value struct {
	Num     float64 `json:"num"`
	Defined bool    `json:"defined"`
	Reason  Reason  `json:"reason,omitempty"`
}

// Defined wraps a successfully computed number.
func Defined(v float64) Value { return Value{Num: v, Defined: true} }

// Undefined marks a metric that could not be computed, with the reason.
func Undefined(r Reason) Value { return Value{Reason: r} }

// Record holds all computed metrics for one company and one period.
type Record struct {
	CompanyID  string               `json:"company_id"`
	PeriodEnd  time.Time            `json:"period_end"`
	PeriodType statement.PeriodType `json:"period_type"`
	Values     map[string]Value     `json:"values"`
}

// Get returns the value for a metric name, defaulting to missing_input for
// names the record does not carry.
func (r Record) Get(name string) Value {
	if v, ok := r.Values[name]; ok {
		return v
	}
	return Undefined(ReasonMissingInput)
}
