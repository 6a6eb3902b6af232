package metrics

import (
	"math"
	"testing"
	"time"

	"findash/pkg/core/statement"
)

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func seriesOf(t *testing.T, periods ...statement.StatementPeriod) statement.NormalizedSeries {
	t.Helper()
	series, err := statement.Normalize("X", periods)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	return series
}

func annual(end string, items map[string]statement.Value) statement.StatementPeriod {
	return statement.NewStatementPeriod("X", date(end), statement.Annual, items)
}

func assertDefined(t *testing.T, v Value, want float64) {
	t.Helper()
	if !v.Defined {
		t.Fatalf("expected defined value %f, got undefined (%s)", want, v.Reason)
	}
	if math.Abs(v.Num-want) > 1e-9 {
		t.Fatalf("expected %f, got %f", want, v.Num)
	}
}

func assertUndefined(t *testing.T, v Value, reason Reason) {
	t.Helper()
	if v.Defined {
		t.Fatalf("expected undefined (%s), got %f", reason, v.Num)
	}
	if v.Reason != reason {
		t.Fatalf("expected reason %s, got %s", reason, v.Reason)
	}
}

func TestRevenueGrowth(t *testing.T) {
	// Revenue 100 -> 120: growth = (120-100)/100 = 0.20
	series := seriesOf(t,
		annual("2023-12-31", map[string]statement.Value{statement.TotalRevenue: statement.Reported(100)}),
		annual("2024-12-31", map[string]statement.Value{statement.TotalRevenue: statement.Reported(120)}),
	)
	records := Compute(series)

	assertUndefined(t, records[0].Get(RevenueGrowth), ReasonMissingInput) // no predecessor
	assertDefined(t, records[1].Get(RevenueGrowth), 0.20)
}

func TestRevenueGrowthNegativePriorUsesAbs(t *testing.T) {
	// Prior -100, current -50: (-50 - -100)/abs(-100) = 0.50 (moving up)
	series := seriesOf(t,
		annual("2023-12-31", map[string]statement.Value{statement.TotalRevenue: statement.Reported(-100)}),
		annual("2024-12-31", map[string]statement.Value{statement.TotalRevenue: statement.Reported(-50)}),
	)
	records := Compute(series)
	assertDefined(t, records[1].Get(RevenueGrowth), 0.50)
}

func TestRevenueGrowthZeroPrior(t *testing.T) {
	series := seriesOf(t,
		annual("2023-12-31", map[string]statement.Value{statement.TotalRevenue: statement.Reported(0)}),
		annual("2024-12-31", map[string]statement.Value{statement.TotalRevenue: statement.Reported(120)}),
	)
	records := Compute(series)
	assertUndefined(t, records[1].Get(RevenueGrowth), ReasonZeroDenominator)
}

func TestRevenueGrowthMissingPrior(t *testing.T) {
	// Company B from the cross-company example: no 2023 revenue value.
	series := seriesOf(t,
		annual("2023-12-31", map[string]statement.Value{statement.TotalRevenue: statement.NotReported()}),
		annual("2024-12-31", map[string]statement.Value{statement.TotalRevenue: statement.Reported(80)}),
	)
	records := Compute(series)
	assertUndefined(t, records[1].Get(RevenueGrowth), ReasonMissingInput)
}

func TestRevenueGrowthAcrossGap(t *testing.T) {
	// 2021 -> 2023 skips a year; growth over the gap must be undefined, not
	// a silently computed two-year rate.
	series := seriesOf(t,
		annual("2021-12-31", map[string]statement.Value{statement.TotalRevenue: statement.Reported(100)}),
		annual("2023-12-31", map[string]statement.Value{statement.TotalRevenue: statement.Reported(150)}),
	)
	records := Compute(series)
	assertUndefined(t, records[1].Get(RevenueGrowth), ReasonPeriodGap)
}

func TestMarginsZeroRevenue(t *testing.T) {
	// revenue == 0: every margin undefined with zero_denominator, never a
	// division error or an infinite value.
	series := seriesOf(t, annual("2024-12-31", map[string]statement.Value{
		statement.TotalRevenue:    statement.Reported(0),
		statement.CostOfRevenue:   statement.Reported(10),
		statement.OperatingIncome: statement.Reported(-5),
		statement.NetIncome:       statement.Reported(-8),
	}))
	rec := Compute(series)[0]

	assertUndefined(t, rec.Get(GrossMargin), ReasonZeroDenominator)
	assertUndefined(t, rec.Get(OperatingMargin), ReasonZeroDenominator)
	assertUndefined(t, rec.Get(NetMargin), ReasonZeroDenominator)
}

func TestMargins(t *testing.T) {
	series := seriesOf(t, annual("2024-12-31", map[string]statement.Value{
		statement.TotalRevenue:    statement.Reported(200),
		statement.CostOfRevenue:   statement.Reported(120),
		statement.OperatingIncome: statement.Reported(50),
		statement.NetIncome:       statement.Reported(30),
	}))
	rec := Compute(series)[0]

	// gross = (200-120)/200 = 0.40; operating = 50/200 = 0.25; net = 30/200 = 0.15
	assertDefined(t, rec.Get(GrossMargin), 0.40)
	assertDefined(t, rec.Get(OperatingMargin), 0.25)
	assertDefined(t, rec.Get(NetMargin), 0.15)
}

func TestGrossMarginPrefersReportedGrossProfit(t *testing.T) {
	series := seriesOf(t, annual("2024-12-31", map[string]statement.Value{
		statement.TotalRevenue: statement.Reported(200),
		statement.GrossProfit:  statement.Reported(90),
		// cost_of_revenue absent: reported gross profit must still work
	}))
	rec := Compute(series)[0]
	assertDefined(t, rec.Get(GrossMargin), 0.45)
}

func TestMarginMissingNumerator(t *testing.T) {
	series := seriesOf(t, annual("2024-12-31", map[string]statement.Value{
		statement.TotalRevenue: statement.Reported(200),
	}))
	rec := Compute(series)[0]
	assertUndefined(t, rec.Get(OperatingMargin), ReasonMissingInput)
	assertUndefined(t, rec.Get(NetMargin), ReasonMissingInput)
	assertUndefined(t, rec.Get(GrossMargin), ReasonMissingInput)
}

func TestFreeCashFlowSignConvention(t *testing.T) {
	// ocf=50, capex reported as -20 (outflow convention):
	// FCF = 50 - |-20| = 30, not 50 - (-20) = 70.
	series := seriesOf(t, annual("2024-12-31", map[string]statement.Value{
		statement.OperatingCashFlow:   statement.Reported(50),
		statement.CapitalExpenditures: statement.Reported(-20),
	}))
	rec := Compute(series)[0]
	assertDefined(t, rec.Get(FreeCashFlow), 30)
}

func TestFreeCashFlowPositiveCapex(t *testing.T) {
	// Same filing with capex already positive must give the same answer.
	series := seriesOf(t, annual("2024-12-31", map[string]statement.Value{
		statement.OperatingCashFlow:   statement.Reported(50),
		statement.CapitalExpenditures: statement.Reported(20),
	}))
	rec := Compute(series)[0]
	assertDefined(t, rec.Get(FreeCashFlow), 30)
}

func TestFreeCashFlowMissingInput(t *testing.T) {
	series := seriesOf(t, annual("2024-12-31", map[string]statement.Value{
		statement.OperatingCashFlow: statement.Reported(50),
	}))
	rec := Compute(series)[0]
	assertUndefined(t, rec.Get(FreeCashFlow), ReasonMissingInput)
}

func TestROENegativeEquity(t *testing.T) {
	// Negative equity is a distinct reason code from zero_denominator.
	series := seriesOf(t, annual("2024-12-31", map[string]statement.Value{
		statement.NetIncome:   statement.Reported(10),
		statement.TotalEquity: statement.Reported(-5),
		statement.TotalDebt:   statement.Reported(100),
	}))
	rec := Compute(series)[0]
	assertUndefined(t, rec.Get(ROE), ReasonNegativeEquity)
	assertUndefined(t, rec.Get(DebtToEquity), ReasonNegativeEquity)
}

func TestROEZeroEquityIsNegativeEquityPolicy(t *testing.T) {
	// equity == 0 falls under the same economic-meaninglessness policy.
	series := seriesOf(t, annual("2024-12-31", map[string]statement.Value{
		statement.NetIncome:   statement.Reported(10),
		statement.TotalEquity: statement.Reported(0),
	}))
	rec := Compute(series)[0]
	assertUndefined(t, rec.Get(ROE), ReasonNegativeEquity)
}

func TestROEAndDebtToEquity(t *testing.T) {
	series := seriesOf(t, annual("2024-12-31", map[string]statement.Value{
		statement.NetIncome:   statement.Reported(30),
		statement.TotalEquity: statement.Reported(200),
		statement.TotalDebt:   statement.Reported(100),
	}))
	rec := Compute(series)[0]
	assertDefined(t, rec.Get(ROE), 0.15)         // 30/200
	assertDefined(t, rec.Get(DebtToEquity), 0.5) // 100/200
}

func TestROA(t *testing.T) {
	series := seriesOf(t, annual("2024-12-31", map[string]statement.Value{
		statement.NetIncome:   statement.Reported(30),
		statement.TotalAssets: statement.Reported(600),
	}))
	rec := Compute(series)[0]
	assertDefined(t, rec.Get(ROA), 0.05) // 30/600

	series = seriesOf(t, annual("2025-12-31", map[string]statement.Value{
		statement.NetIncome:   statement.Reported(30),
		statement.TotalAssets: statement.Reported(0),
	}))
	assertUndefined(t, Compute(series)[0].Get(ROA), ReasonZeroDenominator)
}

func TestCurrentRatio(t *testing.T) {
	series := seriesOf(t, annual("2024-12-31", map[string]statement.Value{
		statement.CurrentAssets:      statement.Reported(300),
		statement.CurrentLiabilities: statement.Reported(150),
	}))
	rec := Compute(series)[0]
	assertDefined(t, rec.Get(CurrentRatio), 2.0)

	series = seriesOf(t, annual("2025-12-31", map[string]statement.Value{
		statement.CurrentAssets:      statement.Reported(300),
		statement.CurrentLiabilities: statement.Reported(0),
	}))
	assertUndefined(t, Compute(series)[0].Get(CurrentRatio), ReasonZeroDenominator)
}

func TestComputeProducesOneRecordPerPeriodInOrder(t *testing.T) {
	series := seriesOf(t,
		annual("2022-12-31", map[string]statement.Value{statement.TotalRevenue: statement.Reported(100)}),
		annual("2023-12-31", map[string]statement.Value{statement.TotalRevenue: statement.Reported(110)}),
		annual("2024-12-31", map[string]statement.Value{statement.TotalRevenue: statement.Reported(121)}),
	)
	records := Compute(series)

	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}
	for i, rec := range records {
		if !rec.PeriodEnd.Equal(series.Periods[i].EndDate) {
			t.Errorf("record %d out of order", i)
		}
		// Every metric name appears, defined or not.
		for _, name := range Names() {
			if _, ok := rec.Values[name]; !ok {
				t.Errorf("record %d missing metric %s", i, name)
			}
		}
	}
}
