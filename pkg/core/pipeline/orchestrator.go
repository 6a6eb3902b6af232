// Package pipeline ties the system together for one request:
// fetch -> normalize -> metrics -> health score -> comparison table.
//
// Per-company work shares no state and has no ordering dependency, so the
// orchestrator fans it out across goroutines, one per company. The core
// calculators stay synchronous and pure; all concurrency lives here.
package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"findash/pkg/core/commentary"
	"findash/pkg/core/compare"
	"findash/pkg/core/health"
	"findash/pkg/core/metrics"
	"findash/pkg/core/statement"
)

// StatementFetcher retrieves raw statement periods for one company.
// Implementations may hit a live provider, a local fixture set, or a cache.
type StatementFetcher interface {
	FetchStatements(ctx context.Context, companyID string, pt statement.PeriodType) ([]statement.StatementPeriod, error)
}

// Cache is the optional comparison cache boundary. It stores whole run
// snapshots so a hit serves the same shape as a fresh computation. Best
// effort: the orchestrator treats every error as a miss.
type Cache interface {
	GetComparison(ctx context.Context, companies []string, pt statement.PeriodType, asOf time.Time) (*compare.Snapshot, error)
	PutComparison(ctx context.Context, companies []string, pt statement.PeriodType, asOf time.Time, snap *compare.Snapshot) error
}

// Result is the output of one pipeline run.
type Result struct {
	RunID      string                            `json:"run_id"`
	Table      *compare.Table                    `json:"table"`
	PerCompany map[string]compare.CompanyResults `json:"per_company"`
	Failures   map[string]string                 `json:"failures,omitempty"` // company -> error
	Commentary string                            `json:"commentary,omitempty"`
	CacheHit   bool                              `json:"cache_hit"`
}

// Orchestrator runs the full computation for a set of companies.
type Orchestrator struct {
	fetcher     StatementFetcher
	cache       Cache
	commentator commentary.Provider
	now         func() time.Time
}

// New creates an orchestrator. Cache and commentary are optional and off by
// default.
func New(fetcher StatementFetcher) *Orchestrator {
	return &Orchestrator{
		fetcher: fetcher,
		now:     time.Now,
	}
}

// SetCache enables the best-effort comparison cache.
func (o *Orchestrator) SetCache(c Cache) { o.cache = c }

// SetCommentaryProvider enables narrative generation for the final table.
func (o *Orchestrator) SetCommentaryProvider(p commentary.Provider) { o.commentator = p }

// Run executes the pipeline for the given companies and period type.
//
// Companies that fail to fetch or normalize are reported in Result.Failures
// and excluded from the table; the run only fails outright when no company
// succeeds. Structural input errors (duplicate periods, mixed period types)
// therefore surface per company, never silently.
func (o *Orchestrator) Run(ctx context.Context, companies []string, pt statement.PeriodType) (*Result, error) {
	if len(companies) == 0 {
		return nil, fmt.Errorf("no companies requested")
	}

	runID := uuid.NewString()
	asOf := o.now()
	fmt.Printf("[PIPELINE] Run %s: %d companies, %s periods\n", runID, len(companies), pt)

	if o.cache != nil {
		if snap, err := o.cache.GetComparison(ctx, companies, pt, asOf); err == nil && snap != nil {
			fmt.Printf("[PIPELINE] Run %s: cache hit\n", runID)
			return &Result{
				RunID:      runID,
				Table:      snap.Table,
				PerCompany: snap.PerCompany,
				Commentary: snap.Commentary,
				CacheHit:   true,
			}, nil
		}
	}

	perCompany := make(map[string]compare.CompanyResults, len(companies))
	failures := make(map[string]string)
	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, company := range companies {
		wg.Add(1)
		go func(company string) {
			defer wg.Done()
			res, err := o.runCompany(ctx, company, pt)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				fmt.Printf("[PIPELINE] Warning: %s failed: %v\n", company, err)
				failures[company] = err.Error()
				return
			}
			perCompany[company] = res
		}(company)
	}
	wg.Wait()

	if len(perCompany) == 0 {
		return nil, fmt.Errorf("run %s: all %d companies failed", runID, len(companies))
	}

	// The caller chose pt explicitly, so the explicit-selector join applies.
	table := compare.AssembleForPeriodType(perCompany, pt)

	result := &Result{
		RunID:      runID,
		Table:      table,
		PerCompany: perCompany,
		Failures:   failures,
	}

	if o.commentator != nil {
		text, err := commentary.Summarize(ctx, o.commentator, table)
		if err != nil {
			fmt.Printf("[PIPELINE] Warning: commentary failed: %v\n", err)
		} else {
			result.Commentary = text
		}
	}

	if o.cache != nil {
		snap := &compare.Snapshot{
			Table:      table,
			PerCompany: perCompany,
			Commentary: result.Commentary,
		}
		if err := o.cache.PutComparison(ctx, companies, pt, asOf, snap); err != nil {
			fmt.Printf("[PIPELINE] Warning: cache store failed: %v\n", err)
		}
	}

	fmt.Printf("[PIPELINE] Run %s: %d companies computed, %d failed\n",
		runID, len(perCompany), len(failures))
	return result, nil
}

// runCompany is the per-company unit of work: fetch, normalize, compute.
func (o *Orchestrator) runCompany(ctx context.Context, company string, pt statement.PeriodType) (compare.CompanyResults, error) {
	raw, err := o.fetcher.FetchStatements(ctx, company, pt)
	if err != nil {
		return compare.CompanyResults{}, fmt.Errorf("fetch: %w", err)
	}

	series, err := statement.Normalize(company, raw)
	if err != nil {
		return compare.CompanyResults{}, fmt.Errorf("normalize: %w", err)
	}

	records := metrics.Compute(series)
	scores := health.ComputeSeries(records)
	return compare.CompanyResults{Metrics: records, Scores: scores}, nil
}
