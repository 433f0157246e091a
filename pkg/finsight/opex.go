package finsight

import (
	"sort"

	"github.com/finsight/finsight-go/internal/dataset"
	"github.com/shopspring/decimal"
)

// opexService implements the OpexService interface
type opexService struct {
	client *Client
}

func (s *opexService) rows() ([]dataset.LedgerRow, error) {
	rows := filterRows(s.client.store.Actuals, isOpexCategory)
	if len(rows) == 0 {
		return nil, notFoundError("no operating expense data found")
	}
	return rows, nil
}

// Breakdown returns one month's OpEx grouped by display category, sorted
// descending by amount, with each category's share of the month's total.
func (s *opexService) Breakdown(month string) (*OpexMonth, error) {
	rows, err := s.rows()
	if err != nil {
		return nil, err
	}

	target, err := ParseMonth(month)
	if err != nil {
		return nil, invalidMonthError(err)
	}

	byCategory := make(map[string]decimal.Decimal)
	for _, row := range rows {
		if row.Month.Key() != target.Key() {
			continue
		}
		cat := opexDisplayCategory(row.AccountCategory)
		byCategory[cat] = byCategory[cat].Add(s.client.fx.ToUSD(row.Amount, row.Currency, row.Month))
	}
	if len(byCategory) == 0 {
		return nil, monthNotFoundError("no OpEx data found for %s", month)
	}

	total := decimal.Zero
	for _, amount := range byCategory {
		total = total.Add(amount)
	}

	breakdown := make([]OpexCategory, 0, len(byCategory))
	for cat, amount := range byCategory {
		pct := 0.0
		if total.Sign() > 0 {
			pct = amount.Div(total).InexactFloat64() * 100
		}
		breakdown = append(breakdown, OpexCategory{
			Category:   cat,
			Amount:     amount.InexactFloat64(),
			AmountUSD:  formatUSD(amount),
			Percentage: formatPercent(pct),
		})
	}
	sortCategoriesDesc(breakdown)

	return &OpexMonth{
		Month:           target.Key(),
		Breakdown:       breakdown,
		TotalOpex:       total.InexactFloat64(),
		TotalOpexUSD:    formatUSD(total),
		CategoriesCount: len(breakdown),
	}, nil
}

// BreakdownByEntity returns one month's OpEx with entity sums nested inside
// each category; the category total is the sum of its entities.
func (s *opexService) BreakdownByEntity(month string) (*OpexEntityMonth, error) {
	rows, err := s.rows()
	if err != nil {
		return nil, err
	}

	target, err := ParseMonth(month)
	if err != nil {
		return nil, invalidMonthError(err)
	}

	type pair struct{ category, entity string }
	byPair := make(map[pair]decimal.Decimal)
	for _, row := range rows {
		if row.Month.Key() != target.Key() {
			continue
		}
		key := pair{opexDisplayCategory(row.AccountCategory), row.Entity}
		byPair[key] = byPair[key].Add(s.client.fx.ToUSD(row.Amount, row.Currency, row.Month))
	}
	if len(byPair) == 0 {
		return nil, monthNotFoundError("no OpEx data found for %s", month)
	}

	grouped := make(map[string][]OpexEntityShare)
	totals := make(map[string]decimal.Decimal)
	for key, amount := range byPair {
		grouped[key.category] = append(grouped[key.category], OpexEntityShare{
			Entity:    key.entity,
			Amount:    amount.InexactFloat64(),
			Formatted: formatUSD(amount),
		})
		totals[key.category] = totals[key.category].Add(amount)
	}

	grandTotal := decimal.Zero
	categories := make([]OpexEntityCategory, 0, len(grouped))
	for cat, entities := range grouped {
		sort.Slice(entities, func(i, j int) bool { return entities[i].Amount > entities[j].Amount })
		categories = append(categories, OpexEntityCategory{
			Category:       cat,
			Total:          totals[cat].InexactFloat64(),
			TotalFormatted: formatUSD(totals[cat]),
			Entities:       entities,
		})
		grandTotal = grandTotal.Add(totals[cat])
	}
	sort.Slice(categories, func(i, j int) bool { return categories[i].Total > categories[j].Total })

	return &OpexEntityMonth{
		Month:           target.Key(),
		Categories:      categories,
		TotalOpex:       grandTotal.InexactFloat64(),
		TotalOpexUSD:    formatUSD(grandTotal),
		CategoriesCount: len(categories),
	}, nil
}

// Summary returns all-time category totals plus the per-month totals trend.
func (s *opexService) Summary() (*OpexSummary, error) {
	rows, err := s.rows()
	if err != nil {
		return nil, err
	}

	byCategory := make(map[string]decimal.Decimal)
	byMonth := make(map[string]decimal.Decimal)
	for _, row := range rows {
		usd := s.client.fx.ToUSD(row.Amount, row.Currency, row.Month)
		cat := opexDisplayCategory(row.AccountCategory)
		byCategory[cat] = byCategory[cat].Add(usd)
		byMonth[row.Month.Key()] = byMonth[row.Month.Key()].Add(usd)
	}

	total := decimal.Zero
	for _, amount := range byCategory {
		total = total.Add(amount)
	}

	breakdown := make([]OpexCategory, 0, len(byCategory))
	for cat, amount := range byCategory {
		pct := 0.0
		if total.Sign() > 0 {
			pct = amount.Div(total).InexactFloat64() * 100
		}
		breakdown = append(breakdown, OpexCategory{
			Category:   cat,
			Amount:     amount.InexactFloat64(),
			AmountUSD:  formatUSD(amount),
			Percentage: formatPercent(pct),
		})
	}
	sortCategoriesDesc(breakdown)

	monthly := make([]MonthAmount, 0, len(byMonth))
	for _, key := range sortedKeys(byMonth) {
		monthly = append(monthly, MonthAmount{
			Month:     key,
			AmountUSD: byMonth[key].InexactFloat64(),
			Formatted: formatUSD(byMonth[key]),
		})
	}

	return &OpexSummary{
		CategoryBreakdown: breakdown,
		MonthlyTotals:     monthly,
		TotalOpexUSD:      formatUSD(total),
		MonthsAnalyzed:    len(monthly),
	}, nil
}

func sortCategoriesDesc(categories []OpexCategory) {
	sort.Slice(categories, func(i, j int) bool {
		if categories[i].Amount != categories[j].Amount {
			return categories[i].Amount > categories[j].Amount
		}
		return categories[i].Category < categories[j].Category
	})
}
