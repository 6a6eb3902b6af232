package metrics

import (
	"math"

	"findash/pkg/core/statement"
)

// Compute derives one Record per period in the series, in series order.
// Pure function: no I/O, no shared state, deterministic for a given input.
func Compute(series statement.NormalizedSeries) []Record {
	records := make([]Record, 0, len(series.Periods))
	for i, p := range series.Periods {
		var prev *statement.NormalizedPeriod
		if i > 0 {
			prev = &series.Periods[i-1]
		}
		records = append(records, computePeriod(p, prev))
	}
	return records
}

func computePeriod(p statement.NormalizedPeriod, prev *statement.NormalizedPeriod) Record {
	rec := Record{
		CompanyID:  p.CompanyID,
		PeriodEnd:  p.EndDate,
		PeriodType: p.PeriodType,
		Values:     make(map[string]Value, len(Names())),
	}

	rec.Values[RevenueGrowth] = revenueGrowth(p, prev)

	revenue, revOK := p.Item(statement.TotalRevenue)
	rec.Values[GrossMargin] = margin(grossProfit(p), revenue, revOK)
	opIncome, opOK := p.Item(statement.OperatingIncome)
	rec.Values[OperatingMargin] = margin(numerator(opIncome, opOK), revenue, revOK)
	netIncome, niOK := p.Item(statement.NetIncome)
	rec.Values[NetMargin] = margin(numerator(netIncome, niOK), revenue, revOK)

	rec.Values[FreeCashFlow] = freeCashFlow(p)
	rec.Values[ROE] = returnOnEquity(p)
	rec.Values[ROA] = returnOnAssets(p)
	rec.Values[CurrentRatio] = currentRatio(p)
	rec.Values[DebtToEquity] = debtToEquity(p)

	return rec
}

// revenueGrowth is YoY/QoQ growth against the immediate predecessor period:
// (rev[t] - rev[t-1]) / abs(rev[t-1]). A gap flag on period t means the
// predecessor in the slice is not the expected prior period, so the rate is
// undefined rather than a silent multi-period growth figure.
func revenueGrowth(p statement.NormalizedPeriod, prev *statement.NormalizedPeriod) Value {
	if prev == nil {
		return Undefined(ReasonMissingInput)
	}
	if p.Gap {
		return Undefined(ReasonPeriodGap)
	}
	cur, curOK := p.Item(statement.TotalRevenue)
	prior, priorOK := prev.Item(statement.TotalRevenue)
	if !curOK || !priorOK {
		return Undefined(ReasonMissingInput)
	}
	if prior == 0 {
		return Undefined(ReasonZeroDenominator)
	}
	return Defined((cur - prior) / math.Abs(prior))
}

type maybe struct {
	v  float64
	ok bool
}

func numerator(v float64, ok bool) maybe { return maybe{v: v, ok: ok} }

// grossProfit prefers the reported gross_profit line, falling back to
// revenue - cost_of_revenue when the filing only itemizes costs.
func grossProfit(p statement.NormalizedPeriod) maybe {
	if gp, ok := p.Item(statement.GrossProfit); ok {
		return maybe{v: gp, ok: true}
	}
	rev, revOK := p.Item(statement.TotalRevenue)
	cost, costOK := p.Item(statement.CostOfRevenue)
	if !revOK || !costOK {
		return maybe{}
	}
	return maybe{v: rev - cost, ok: true}
}

func margin(num maybe, revenue float64, revOK bool) Value {
	if !revOK || !num.ok {
		return Undefined(ReasonMissingInput)
	}
	if revenue == 0 {
		return Undefined(ReasonZeroDenominator)
	}
	return Defined(num.v / revenue)
}

// freeCashFlow = operating cash flow - capex. Filings disagree on the capex
// sign (many report it as a negative investing outflow), so the magnitude is
// normalized before subtraction: ocf=50, capex=-20 yields 30, never 70.
func freeCashFlow(p statement.NormalizedPeriod) Value {
	ocf, ocfOK := p.Item(statement.OperatingCashFlow)
	capex, capexOK := p.Item(statement.CapitalExpenditures)
	if !ocfOK || !capexOK {
		return Undefined(ReasonMissingInput)
	}
	return Defined(ocf - math.Abs(capex))
}

// returnOnEquity = net income / total equity. Negative or zero equity makes
// the ratio economically meaningless, not merely non-computable, so it gets
// the distinct negative_equity reason code.
func returnOnEquity(p statement.NormalizedPeriod) Value {
	ni, niOK := p.Item(statement.NetIncome)
	eq, eqOK := p.Item(statement.TotalEquity)
	if !niOK || !eqOK {
		return Undefined(ReasonMissingInput)
	}
	if eq <= 0 {
		return Undefined(ReasonNegativeEquity)
	}
	return Defined(ni / eq)
}

// returnOnAssets = net income / total assets. A non-positive asset base is
// a degenerate denominator (assets cannot meaningfully be negative).
func returnOnAssets(p statement.NormalizedPeriod) Value {
	ni, niOK := p.Item(statement.NetIncome)
	ta, taOK := p.Item(statement.TotalAssets)
	if !niOK || !taOK {
		return Undefined(ReasonMissingInput)
	}
	if ta <= 0 {
		return Undefined(ReasonZeroDenominator)
	}
	return Defined(ni / ta)
}

func currentRatio(p statement.NormalizedPeriod) Value {
	ca, caOK := p.Item(statement.CurrentAssets)
	cl, clOK := p.Item(statement.CurrentLiabilities)
	if !caOK || !clOK {
		return Undefined(ReasonMissingInput)
	}
	if cl == 0 {
		return Undefined(ReasonZeroDenominator)
	}
	return Defined(ca / cl)
}

func debtToEquity(p statement.NormalizedPeriod) Value {
	debt, debtOK := p.Item(statement.TotalDebt)
	eq, eqOK := p.Item(statement.TotalEquity)
	if !debtOK || !eqOK {
		return Undefined(ReasonMissingInput)
	}
	if eq <= 0 {
		return Undefined(ReasonNegativeEquity)
	}
	return Defined(debt / eq)
}
