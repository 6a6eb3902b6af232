package pipeline

import (
	"context"
	"fmt"
	"testing"
	"time"

	"findash/pkg/core/compare"
	"findash/pkg/core/metrics"
	"findash/pkg/core/statement"
)

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

// fixtureFetcher serves canned statement periods per company.
type fixtureFetcher struct {
	data map[string][]statement.StatementPeriod
}

func (f *fixtureFetcher) FetchStatements(ctx context.Context, companyID string, pt statement.PeriodType) ([]statement.StatementPeriod, error) {
	periods, ok := f.data[companyID]
	if !ok {
		return nil, fmt.Errorf("no fixture for %s", companyID)
	}
	return periods, nil
}

// memCache is an in-memory Cache for tests.
type memCache struct {
	snaps map[string]*compare.Snapshot
	puts  int
}

func (m *memCache) key(companies []string, pt statement.PeriodType) string {
	return fmt.Sprintf("%v|%s", companies, pt)
}

func (m *memCache) GetComparison(ctx context.Context, companies []string, pt statement.PeriodType, asOf time.Time) (*compare.Snapshot, error) {
	return m.snaps[m.key(companies, pt)], nil
}

func (m *memCache) PutComparison(ctx context.Context, companies []string, pt statement.PeriodType, asOf time.Time, snap *compare.Snapshot) error {
	if m.snaps == nil {
		m.snaps = make(map[string]*compare.Snapshot)
	}
	m.snaps[m.key(companies, pt)] = snap
	m.puts++
	return nil
}

func fixtures() *fixtureFetcher {
	period := func(company, end string, revenue float64) statement.StatementPeriod {
		return statement.NewStatementPeriod(company, date(end), statement.Annual, map[string]statement.Value{
			statement.TotalRevenue:       statement.Reported(revenue),
			statement.NetIncome:          statement.Reported(revenue * 0.2),
			statement.TotalEquity:        statement.Reported(revenue * 2),
			statement.TotalAssets:        statement.Reported(revenue * 4),
			statement.CurrentAssets:      statement.Reported(revenue),
			statement.CurrentLiabilities: statement.Reported(revenue / 2),
		})
	}
	return &fixtureFetcher{data: map[string][]statement.StatementPeriod{
		"AAPL": {
			period("AAPL", "2023-12-31", 100),
			period("AAPL", "2024-12-31", 120),
		},
		"MSFT": {
			period("MSFT", "2024-12-31", 200),
		},
	}}
}

func TestRunComputesAllCompanies(t *testing.T) {
	o := New(fixtures())

	result, err := o.Run(context.Background(), []string{"AAPL", "MSFT"}, statement.Annual)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.RunID == "" {
		t.Error("expected a run ID")
	}
	if result.CacheHit {
		t.Error("no cache configured, cannot be a hit")
	}
	if len(result.PerCompany) != 2 {
		t.Fatalf("expected 2 companies, got %d", len(result.PerCompany))
	}
	// Outer join: 2023 (AAPL only) and 2024.
	if len(result.Table.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(result.Table.Rows))
	}

	growth := result.Table.Rows[1].Cells["AAPL"].Metrics.Get(metrics.RevenueGrowth)
	if !growth.Defined || growth.Num != 0.2 {
		t.Errorf("AAPL 2024 growth: got %+v", growth)
	}
}

func TestRunSkipsFailedCompanies(t *testing.T) {
	o := New(fixtures())

	result, err := o.Run(context.Background(), []string{"AAPL", "NOPE"}, statement.Annual)
	if err != nil {
		t.Fatalf("expected partial success, got: %v", err)
	}
	if _, ok := result.Failures["NOPE"]; !ok {
		t.Error("expected NOPE in failures")
	}
	if _, ok := result.PerCompany["AAPL"]; !ok {
		t.Error("AAPL should still be computed")
	}
	if len(result.Table.Companies) != 1 {
		t.Errorf("table should only hold AAPL, got %v", result.Table.Companies)
	}
}

func TestRunFailsWhenAllCompaniesFail(t *testing.T) {
	o := New(&fixtureFetcher{})
	if _, err := o.Run(context.Background(), []string{"A", "B"}, statement.Annual); err == nil {
		t.Fatal("expected error when every company fails")
	}
}

func TestRunFailsOnEmptyInput(t *testing.T) {
	o := New(fixtures())
	if _, err := o.Run(context.Background(), nil, statement.Annual); err == nil {
		t.Fatal("expected error on empty company list")
	}
}

func TestRunSurfacesStructuralErrors(t *testing.T) {
	dup := statement.NewStatementPeriod("DUP", date("2024-12-31"), statement.Annual, nil)
	o := New(&fixtureFetcher{data: map[string][]statement.StatementPeriod{
		"DUP": {dup, dup},
	}})

	_, err := o.Run(context.Background(), []string{"DUP"}, statement.Annual)
	if err == nil {
		t.Fatal("expected run failure: only company has duplicate periods")
	}
}

func TestRunUsesCache(t *testing.T) {
	cache := &memCache{}
	o := New(fixtures())
	o.SetCache(cache)
	ctx := context.Background()
	companies := []string{"AAPL", "MSFT"}

	first, err := o.Run(ctx, companies, statement.Annual)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.CacheHit {
		t.Error("first run cannot hit the cache")
	}
	if cache.puts != 1 {
		t.Errorf("expected 1 cache put, got %d", cache.puts)
	}

	second, err := o.Run(ctx, companies, statement.Annual)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !second.CacheHit {
		t.Error("second run should hit the cache")
	}
	if len(second.Table.Rows) != len(first.Table.Rows) {
		t.Error("cached table differs from computed table")
	}
	// A hit must serve the whole run, not a table-only shell.
	if len(second.PerCompany) != len(first.PerCompany) {
		t.Errorf("per-company results lost on cache hit: first=%d, second=%d",
			len(first.PerCompany), len(second.PerCompany))
	}
	if len(second.PerCompany["AAPL"].Metrics) != 2 {
		t.Errorf("AAPL metric series lost on cache hit: %d records",
			len(second.PerCompany["AAPL"].Metrics))
	}
}
