package finsight

import (
	"sort"
	"strings"

	"github.com/finsight/finsight-go/internal/dataset"
	"github.com/shopspring/decimal"
)

// Account category literals used by the ledger tables.
const (
	categoryRevenue = "Revenue"
	categoryCOGS    = "COGS"
	opexPrefix      = "Opex:"
)

func isOpexCategory(category string) bool {
	return strings.HasPrefix(category, opexPrefix)
}

// opexDisplayCategory strips the "Opex:" prefix for display grouping.
func opexDisplayCategory(category string) string {
	return strings.TrimPrefix(category, opexPrefix)
}

// filterRows returns the ledger rows whose category matches.
func filterRows(rows []dataset.LedgerRow, match func(category string) bool) []dataset.LedgerRow {
	var out []dataset.LedgerRow
	for _, row := range rows {
		if match(row.AccountCategory) {
			out = append(out, row)
		}
	}
	return out
}

// monthlySums normalizes each row to USD and sums by month key.
func (c *Client) monthlySums(rows []dataset.LedgerRow) map[string]decimal.Decimal {
	sums := make(map[string]decimal.Decimal)
	for _, row := range rows {
		usd := c.fx.ToUSD(row.Amount, row.Currency, row.Month)
		sums[row.Month.Key()] = sums[row.Month.Key()].Add(usd)
	}
	return sums
}

// sortedKeys returns the month keys of a series in chronological order.
// "YYYY-MM" keys sort correctly as strings.
func sortedKeys(sums map[string]decimal.Decimal) []string {
	keys := make([]string, 0, len(sums))
	for key := range sums {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// lastN returns the trailing n elements of a slice, or the whole slice when
// fewer are available.
func lastN[T any](s []T, n int) []T {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
