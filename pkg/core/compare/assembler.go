// Package compare joins per-company metric and health series into a single
// cross-company table keyed by (company, period end date). The table is
// built fresh per call and never mutated afterwards.
package compare

import (
	"sort"
	"time"

	"findash/pkg/core/health"
	"findash/pkg/core/metrics"
	"findash/pkg/core/statement"
)

// CompanyResults is one company's computed output, both sequences ordered by
// period end date ascending and index-aligned.
type CompanyResults struct {
	Metrics []metrics.Record `json:"metrics"`
	Scores  []health.Score   `json:"scores"`
}

// Cell is one (company, period) intersection. Present is false when the
// company reported nothing for that period; the row still exists and the
// cell renders as undefined, never as a dropped row.
type Cell struct {
	Present bool            `json:"present"`
	Metrics *metrics.Record `json:"metrics,omitempty"`
	Health  *health.Score   `json:"health,omitempty"`
}

// Row is all companies' cells for one period end date.
type Row struct {
	PeriodEnd time.Time       `json:"period_end"`
	Cells     map[string]Cell `json:"cells"` // keyed by company ID
}

// Table is the outer join across companies and periods: one row for every
// distinct period end date appearing in ANY company's series.
type Table struct {
	PeriodType statement.PeriodType `json:"period_type"`
	Companies  []string             `json:"companies"` // sorted
	Rows       []Row                `json:"rows"`      // ascending by period end
}

// Snapshot is one complete assembled run: the joined table plus the
// per-company series it was built from and any narrative attached to it.
// Caching a bare table loses the per-company view, so this is the unit
// caches store and return.
type Snapshot struct {
	Table      *Table                    `json:"table"`
	PerCompany map[string]CompanyResults `json:"per_company"`
	Commentary string                    `json:"commentary,omitempty"`
}

// Assemble outer-joins per-company results on period end date. All input
// records must share one period type; mixing annual and quarterly data
// fails with InconsistentPeriodTypeError. Callers holding mixed data must
// select explicitly via AssembleForPeriodType.
func Assemble(perCompany map[string]CompanyResults) (*Table, error) {
	var pt statement.PeriodType
	for company, res := range perCompany {
		for _, rec := range res.Metrics {
			if pt == "" {
				pt = rec.PeriodType
				continue
			}
			if rec.PeriodType != pt {
				return nil, &statement.InconsistentPeriodTypeError{
					CompanyID: company,
					Found:     []statement.PeriodType{pt, rec.PeriodType},
				}
			}
		}
	}
	return assemble(perCompany, pt), nil
}

// AssembleForPeriodType is the explicit-selector variant: records of other
// period types are filtered out rather than rejected.
func AssembleForPeriodType(perCompany map[string]CompanyResults, pt statement.PeriodType) *Table {
	filtered := make(map[string]CompanyResults, len(perCompany))
	for company, res := range perCompany {
		var keep CompanyResults
		for i, rec := range res.Metrics {
			if rec.PeriodType != pt {
				continue
			}
			keep.Metrics = append(keep.Metrics, rec)
			if i < len(res.Scores) {
				keep.Scores = append(keep.Scores, res.Scores[i])
			}
		}
		filtered[company] = keep
	}
	return assemble(filtered, pt)
}

func assemble(perCompany map[string]CompanyResults, pt statement.PeriodType) *Table {
	table := &Table{PeriodType: pt}

	for company := range perCompany {
		table.Companies = append(table.Companies, company)
	}
	sort.Strings(table.Companies)

	// Collect every distinct period end across all companies. Keyed by unix
	// time so equal instants in different locations still dedupe.
	endSet := make(map[int64]time.Time)
	for _, res := range perCompany {
		for _, rec := range res.Metrics {
			endSet[rec.PeriodEnd.Unix()] = rec.PeriodEnd
		}
	}
	ends := make([]time.Time, 0, len(endSet))
	for _, end := range endSet {
		ends = append(ends, end)
	}
	sort.Slice(ends, func(i, j int) bool { return ends[i].Before(ends[j]) })

	for _, end := range ends {
		row := Row{PeriodEnd: end, Cells: make(map[string]Cell, len(table.Companies))}
		for _, company := range table.Companies {
			row.Cells[company] = cellFor(perCompany[company], end)
		}
		table.Rows = append(table.Rows, row)
	}
	return table
}

func cellFor(res CompanyResults, end time.Time) Cell {
	for i := range res.Metrics {
		if res.Metrics[i].PeriodEnd.Equal(end) {
			cell := Cell{Present: true, Metrics: &res.Metrics[i]}
			if i < len(res.Scores) {
				cell.Health = &res.Scores[i]
			}
			return cell
		}
	}
	return Cell{}
}
