// Package health aggregates a subset of computed metrics into a single
// bounded 0-100 composite score per company per period.
//
// Each contributing metric is first mapped through a clamped linear ramp
// against a fixed reference range into a 0-100 sub-score, then combined by
// fixed weights summing to 1.0. Undefined metrics are excluded and their
// weight is redistributed proportionally over the defined ones; treating
// missing data as zero would bias the score downward. When every
// contributing metric is undefined, the score itself is undefined.
package health

import (
	"time"

	"findash/pkg/core/metrics"
)

// component defines one contributing metric: its weight and the reference
// range mapped onto 0-100. For inverted metrics (lower is better) the ramp
// runs downhill: lo maps to 100, hi maps to 0.
type component struct {
	name     string
	weight   float64
	lo, hi   float64
	inverted bool
}

// Fixed scoring model. The reference ranges follow the original dashboard's
// normalization (metrics clamped onto 0-100, current ratio of 2.0 scoring
// full marks) extended with explicit ranges per ratio. Weights sum to 1.0.
var componentModel = []component{
	{name: metrics.GrossMargin, weight: 0.15, lo: 0, hi: 0.60},
	{name: metrics.OperatingMargin, weight: 0.15, lo: 0, hi: 0.30},
	{name: metrics.NetMargin, weight: 0.15, lo: 0, hi: 0.25},
	{name: metrics.ROE, weight: 0.20, lo: 0, hi: 0.30},
	{name: metrics.ROA, weight: 0.10, lo: 0, hi: 0.15},
	{name: metrics.CurrentRatio, weight: 0.15, lo: 0, hi: 2.0},
	{name: metrics.DebtToEquity, weight: 0.10, lo: 0, hi: 2.0, inverted: true},
}

// Contribution records how one metric entered the composite score.
type Contribution struct {
	Metric          string  `json:"metric"`
	SubScore        float64 `json:"sub_score"`        // 0-100 after range mapping
	Weight          float64 `json:"weight"`           // nominal model weight
	EffectiveWeight float64 `json:"effective_weight"` // after redistribution
}

// Score is the composite health score for one company and period. When
// Defined is false every contributing metric was undefined and Value is
// meaningless.
type Score struct {
	CompanyID     string         `json:"company_id"`
	PeriodEnd     time.Time      `json:"period_end"`
	Defined       bool           `json:"defined"`
	Value         float64        `json:"value"` // 0-100
	Contributions []Contribution `json:"contributions"`
}

// Compute scores one metric record. Pure function: identical input yields
// bit-identical output.
func Compute(rec metrics.Record) Score {
	score := Score{
		CompanyID: rec.CompanyID,
		PeriodEnd: rec.PeriodEnd,
	}

	defined := make([]component, 0, len(componentModel))
	definedWeight := 0.0
	for _, c := range componentModel {
		if rec.Get(c.name).Defined {
			defined = append(defined, c)
			definedWeight += c.weight
		}
	}
	if len(defined) == 0 || definedWeight == 0 {
		return score
	}

	total := 0.0
	score.Contributions = make([]Contribution, 0, len(defined))
	for _, c := range defined {
		sub := subScore(c, rec.Get(c.name).Num)
		effective := c.weight / definedWeight
		total += sub * effective
		score.Contributions = append(score.Contributions, Contribution{
			Metric:          c.name,
			SubScore:        sub,
			Weight:          c.weight,
			EffectiveWeight: effective,
		})
	}

	score.Defined = true
	score.Value = clamp(total, 0, 100)
	return score
}

// ComputeSeries scores an ordered metric record sequence in order.
func ComputeSeries(records []metrics.Record) []Score {
	scores := make([]Score, len(records))
	for i, rec := range records {
		scores[i] = Compute(rec)
	}
	return scores
}

func subScore(c component, v float64) float64 {
	span := c.hi - c.lo
	pos := clamp((v-c.lo)/span, 0, 1)
	if c.inverted {
		pos = 1 - pos
	}
	return pos * 100
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
