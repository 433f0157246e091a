package finsight

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpexService_Breakdown(t *testing.T) {
	client := newTestClient(t, standardTables(t))

	result, err := client.Opex.Breakdown("2025-06")
	require.NoError(t, err)

	assert.Equal(t, "2025-06", result.Month)
	assert.Equal(t, "$390,000", result.TotalOpexUSD)
	assert.Equal(t, 3, result.CategoriesCount)

	// Sorted by amount, largest first, with the ledger prefix stripped.
	require.Len(t, result.Breakdown, 3)
	assert.Equal(t, "Payroll", result.Breakdown[0].Category)
	assert.Equal(t, "$260,000", result.Breakdown[0].AmountUSD)
	assert.Equal(t, "66.7%", result.Breakdown[0].Percentage)
	assert.Equal(t, "Marketing", result.Breakdown[1].Category)
	assert.Equal(t, "Cloud", result.Breakdown[2].Category)
}

func TestOpexService_Breakdown_MonthNotFound(t *testing.T) {
	client := newTestClient(t, standardTables(t))

	_, err := client.Opex.Breakdown("2024-01")
	assert.ErrorIs(t, err, ErrMonthNotFound)
}

func TestOpexService_Breakdown_InvalidMonth(t *testing.T) {
	client := newTestClient(t, standardTables(t))

	_, err := client.Opex.Breakdown("soonish")
	assert.ErrorIs(t, err, ErrInvalidMonth)
}

func TestOpexService_BreakdownByEntity(t *testing.T) {
	client := newTestClient(t, standardTables(t))

	result, err := client.Opex.BreakdownByEntity("2025-06")
	require.NoError(t, err)

	assert.Equal(t, "$390,000", result.TotalOpexUSD)
	require.Len(t, result.Categories, 3)

	payroll := result.Categories[0]
	assert.Equal(t, "Payroll", payroll.Category)
	assert.Equal(t, "$260,000", payroll.TotalFormatted)
	require.Len(t, payroll.Entities, 1)
	assert.Equal(t, "US", payroll.Entities[0].Entity)

	cloud := result.Categories[2]
	assert.Equal(t, "Cloud", cloud.Category)
	assert.Equal(t, "EU", cloud.Entities[0].Entity)
}

func TestOpexService_BreakdownByEntity_SortsEntitiesWithinCategory(t *testing.T) {
	tables := &Tables{
		Actuals: []LedgerRow{
			ledgerRow(t, "2025-06", "US", "Revenue", "USD", 1000),
			ledgerRow(t, "2025-06", "EU", "Opex:Payroll", "USD", 5000),
			ledgerRow(t, "2025-06", "US", "Opex:Payroll", "USD", 9000),
			ledgerRow(t, "2025-06", "APAC", "Opex:Payroll", "USD", 1000),
		},
	}
	client := newTestClient(t, tables)

	result, err := client.Opex.BreakdownByEntity("2025-06")
	require.NoError(t, err)

	require.Len(t, result.Categories, 1)
	entities := result.Categories[0].Entities
	require.Len(t, entities, 3)
	assert.Equal(t, "US", entities[0].Entity)
	assert.Equal(t, "EU", entities[1].Entity)
	assert.Equal(t, "APAC", entities[2].Entity)
}

func TestOpexService_Summary(t *testing.T) {
	client := newTestClient(t, standardTables(t))

	result, err := client.Opex.Summary()
	require.NoError(t, err)

	assert.Equal(t, "$1,060,000", result.TotalOpexUSD)
	assert.Equal(t, 3, result.MonthsAnalyzed)

	require.NotEmpty(t, result.CategoryBreakdown)
	assert.Equal(t, "Payroll", result.CategoryBreakdown[0].Category)
	assert.Equal(t, "$765,000", result.CategoryBreakdown[0].AmountUSD)

	require.Len(t, result.MonthlyTotals, 3)
	assert.Equal(t, "2025-04", result.MonthlyTotals[0].Month)
	assert.Equal(t, "$330,000", result.MonthlyTotals[0].Formatted)
	assert.Equal(t, "$390,000", result.MonthlyTotals[2].Formatted)
}

func TestOpexService_NoData(t *testing.T) {
	client := newTestClient(t, &Tables{
		Actuals: []LedgerRow{
			ledgerRow(t, "2025-06", "US", "Revenue", "USD", 1000),
		},
	})

	_, err := client.Opex.Summary()
	assert.ErrorIs(t, err, ErrNoData)
}
