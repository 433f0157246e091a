package finsight

import (
	"math"

	"github.com/shopspring/decimal"
)

// revenueService implements the RevenueService interface
type revenueService struct {
	client *Client
}

// GetMonth returns one month's USD revenue summed across entities, with an
// optional actual-vs-budget comparison.
func (s *revenueService) GetMonth(month string, vsBudget bool) (*RevenueMonth, error) {
	rows := filterRows(s.client.store.Actuals, func(cat string) bool { return cat == categoryRevenue })
	if len(rows) == 0 {
		return nil, notFoundError("no revenue data found in actuals")
	}

	target, err := ParseMonth(month)
	if err != nil {
		return nil, invalidMonthError(err)
	}

	total := decimal.Zero
	var details []EntityAmount
	for _, row := range rows {
		if row.Month.Key() != target.Key() {
			continue
		}
		usd := s.client.fx.ToUSD(row.Amount, row.Currency, row.Month)
		total = total.Add(usd)
		details = append(details, EntityAmount{
			Entity:    row.Entity,
			AmountUSD: usd.InexactFloat64(),
		})
	}

	if details == nil {
		return nil, monthNotFoundError("no revenue data found for %s", month)
	}
	if total.Sign() <= 0 {
		return nil, invalidInputError("invalid revenue amount (%s) for %s", formatUSD(total), month)
	}

	result := &RevenueMonth{
		Month:            target.Key(),
		ActualRevenue:    total.InexactFloat64(),
		ActualRevenueUSD: formatUSD(total),
		Details:          details,
	}

	if vsBudget {
		s.addBudgetComparison(result, target, total)
	}

	return result, nil
}

// addBudgetComparison attaches variance fields, or an advisory note when the
// budget is absent or zero. A missing budget never fails the request.
func (s *revenueService) addBudgetComparison(result *RevenueMonth, target Month, actual decimal.Decimal) {
	budgetTotal := decimal.Zero
	found := false
	for _, row := range s.client.store.Budget {
		if row.AccountCategory != categoryRevenue || row.Month.Key() != target.Key() {
			continue
		}
		found = true
		budgetTotal = budgetTotal.Add(s.client.fx.ToUSD(row.Amount, row.Currency, row.Month))
	}

	if !found {
		result.BudgetNote = "No budget data available for this month"
		return
	}
	if budgetTotal.Sign() <= 0 {
		result.BudgetNote = "Budget data found but amount is zero"
		return
	}

	variance := actual.Sub(budgetTotal)
	variancePct := variance.Div(budgetTotal).InexactFloat64() * 100

	result.BudgetRevenue = budgetTotal.InexactFloat64()
	result.BudgetRevenueUSD = formatUSD(budgetTotal)
	result.Variance = variance.InexactFloat64()
	result.VarianceUSD = formatUSD(variance)
	result.VariancePercent = formatPercent(variancePct)
}

// Summary returns every month with positive USD revenue, a grand total and
// an advisory when growth looks synthetic.
func (s *revenueService) Summary() (*RevenueSummary, error) {
	rows := filterRows(s.client.store.Actuals, func(cat string) bool { return cat == categoryRevenue })
	if len(rows) == 0 {
		return nil, notFoundError("no revenue data found in actuals")
	}

	sums := s.client.monthlySums(rows)

	var months []MonthAmount
	grandTotal := decimal.Zero
	for _, key := range sortedKeys(sums) {
		total := sums[key]
		if total.Sign() <= 0 {
			continue
		}
		months = append(months, MonthAmount{
			Month:     key,
			AmountUSD: total.InexactFloat64(),
		})
		grandTotal = grandTotal.Add(total)
	}

	return &RevenueSummary{
		AllMonths:       months,
		TotalRevenueUSD: formatUSD(grandTotal),
		MonthsCount:     len(months),
		Advisories:      revenueGrowthAdvisories(months),
	}, nil
}

// revenueGrowthAdvisories flags average month-over-month growth above 20%,
// which usually means demo data rather than a real business.
func revenueGrowthAdvisories(months []MonthAmount) []string {
	if len(months) < 2 {
		return nil
	}

	var growthSum float64
	var growthCount int
	for i := 1; i < len(months); i++ {
		prev := months[i-1].AmountUSD
		if prev <= 0 {
			continue
		}
		growthSum += (months[i].AmountUSD - prev) / prev * 100
		growthCount++
	}
	if growthCount == 0 {
		return nil
	}

	avgGrowth := growthSum / float64(growthCount)
	if math.Abs(avgGrowth) > 20 {
		return []string{formatPercent(avgGrowth) + " average monthly revenue growth is unusually high"}
	}
	return nil
}
