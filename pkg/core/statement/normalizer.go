package statement

import (
	"sort"
	"time"
)

// Cadence tolerances for gap detection. Fiscal calendars drift (52/53 week
// years, 13-week quarters), so the threshold sits halfway between one
// expected interval and two: anything longer than 1.5 intervals means a
// whole reporting period went missing in between.
const (
	maxAnnualSpacing    = 550 * 24 * time.Hour // ~1.5 years
	maxQuarterlySpacing = 135 * 24 * time.Hour // ~1.5 quarters
)

// Normalize aligns one company's raw periods onto an ascending time axis.
//
// It sorts by period end date, rejects duplicate (end date, period type)
// pairs with DuplicatePeriodError, rejects mixed annual/quarterly input with
// InconsistentPeriodTypeError, and flags a gap on any period whose distance
// to its predecessor exceeds the expected cadence. Gaps are never
// interpolated; the flag tells growth metrics to declare themselves
// undefined instead of silently computing a multi-period rate.
//
// The input slice and its periods are not mutated.
func Normalize(companyID string, rawPeriods []StatementPeriod) (NormalizedSeries, error) {
	series := NormalizedSeries{CompanyID: companyID}
	if len(rawPeriods) == 0 {
		return series, nil
	}

	pt := rawPeriods[0].PeriodType
	for _, p := range rawPeriods {
		if p.PeriodType != pt {
			return NormalizedSeries{}, &InconsistentPeriodTypeError{
				CompanyID: companyID,
				Found:     []PeriodType{pt, p.PeriodType},
			}
		}
	}
	series.PeriodType = pt

	sorted := make([]StatementPeriod, len(rawPeriods))
	copy(sorted, rawPeriods)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].EndDate.Before(sorted[j].EndDate)
	})

	for i := 1; i < len(sorted); i++ {
		if sorted[i].EndDate.Equal(sorted[i-1].EndDate) {
			return NormalizedSeries{}, &DuplicatePeriodError{
				CompanyID:  companyID,
				EndDate:    sorted[i].EndDate,
				PeriodType: pt,
			}
		}
	}

	maxSpacing := maxAnnualSpacing
	if pt == Quarterly {
		maxSpacing = maxQuarterlySpacing
	}

	series.Periods = make([]NormalizedPeriod, len(sorted))
	for i, p := range sorted {
		np := NormalizedPeriod{StatementPeriod: p}
		if i > 0 && p.EndDate.Sub(sorted[i-1].EndDate) > maxSpacing {
			np.Gap = true
		}
		series.Periods[i] = np
	}
	return series, nil
}
