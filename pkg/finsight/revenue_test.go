package finsight

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRevenueService_GetMonth(t *testing.T) {
	client := newTestClient(t, standardTables(t))

	result, err := client.Revenue.GetMonth("2025-06", false)
	require.NoError(t, err)

	// 890,000 USD + 100,000 EUR at 1.10
	assert.Equal(t, "2025-06", result.Month)
	assert.Equal(t, "$1,000,000", result.ActualRevenueUSD)
	assert.InDelta(t, 1000000, result.ActualRevenue, 0.01)
	assert.Len(t, result.Details, 2)
	assert.Empty(t, result.VariancePercent)
}

func TestRevenueService_GetMonth_VsBudget(t *testing.T) {
	client := newTestClient(t, standardTables(t))

	result, err := client.Revenue.GetMonth("2025-06", true)
	require.NoError(t, err)

	assert.Equal(t, "$900,000", result.BudgetRevenueUSD)
	assert.Equal(t, "$100,000", result.VarianceUSD)
	assert.Equal(t, "11.1%", result.VariancePercent)
	assert.Empty(t, result.BudgetNote)
}

func TestRevenueService_GetMonth_NoBudgetForMonth(t *testing.T) {
	client := newTestClient(t, standardTables(t))

	result, err := client.Revenue.GetMonth("2025-05", true)
	require.NoError(t, err)

	assert.Equal(t, "No budget data available for this month", result.BudgetNote)
	assert.Empty(t, result.VariancePercent)
}

func TestRevenueService_GetMonth_ZeroBudget(t *testing.T) {
	tables := standardTables(t)
	tables.Budget = []LedgerRow{
		ledgerRow(t, "2025-06", "US", "Revenue", "USD", 0),
	}
	client := newTestClient(t, tables)

	result, err := client.Revenue.GetMonth("2025-06", true)
	require.NoError(t, err)

	assert.Equal(t, "Budget data found but amount is zero", result.BudgetNote)
}

func TestRevenueService_GetMonth_MonthNotFound(t *testing.T) {
	client := newTestClient(t, standardTables(t))

	_, err := client.Revenue.GetMonth("2024-01", false)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMonthNotFound)
}

func TestRevenueService_GetMonth_InvalidMonth(t *testing.T) {
	client := newTestClient(t, standardTables(t))

	_, err := client.Revenue.GetMonth("not-a-month", false)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidMonth)
}

func TestRevenueService_GetMonth_NegativeRevenue(t *testing.T) {
	tables := &Tables{
		Actuals: []LedgerRow{
			ledgerRow(t, "2025-06", "US", "Revenue", "USD", -5000),
		},
	}
	client := newTestClient(t, tables)

	_, err := client.Revenue.GetMonth("2025-06", false)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Contains(t, err.Error(), "invalid revenue amount")
}

func TestRevenueService_Summary(t *testing.T) {
	client := newTestClient(t, standardTables(t))

	result, err := client.Revenue.Summary()
	require.NoError(t, err)

	assert.Equal(t, 3, result.MonthsCount)
	assert.Equal(t, "$2,870,000", result.TotalRevenueUSD)
	require.Len(t, result.AllMonths, 3)
	assert.Equal(t, "2025-04", result.AllMonths[0].Month)
	assert.Equal(t, "2025-06", result.AllMonths[2].Month)
	assert.Empty(t, result.Advisories)
}

func TestRevenueService_Summary_SkipsNonPositiveMonths(t *testing.T) {
	tables := standardTables(t)
	tables.Actuals = append(tables.Actuals,
		ledgerRow(t, "2025-07", "US", "Revenue", "USD", -100))
	client := newTestClient(t, tables)

	result, err := client.Revenue.Summary()
	require.NoError(t, err)
	assert.Equal(t, 3, result.MonthsCount)
}

func TestRevenueService_Summary_GrowthAdvisory(t *testing.T) {
	tables := &Tables{
		Actuals: []LedgerRow{
			ledgerRow(t, "2025-01", "US", "Revenue", "USD", 100000),
			ledgerRow(t, "2025-02", "US", "Revenue", "USD", 150000),
			ledgerRow(t, "2025-03", "US", "Revenue", "USD", 225000),
		},
	}
	client := newTestClient(t, tables)

	result, err := client.Revenue.Summary()
	require.NoError(t, err)
	require.Len(t, result.Advisories, 1)
	assert.Contains(t, result.Advisories[0], "unusually high")
}

func TestRevenueService_NoData(t *testing.T) {
	client := newTestClient(t, &Tables{})

	_, err := client.Revenue.GetMonth("2025-06", false)
	assert.ErrorIs(t, err, ErrNoData)

	_, err = client.Revenue.Summary()
	assert.ErrorIs(t, err, ErrNoData)
}
