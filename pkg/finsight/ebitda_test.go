package finsight

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEbitdaService_GetMonth(t *testing.T) {
	client := newTestClient(t, standardTables(t))

	result, err := client.Ebitda.GetMonth("2025-06")
	require.NoError(t, err)

	// 1,000,000 - 330,000 - 390,000
	assert.Equal(t, "$1,000,000", result.RevenueFormatted)
	assert.Equal(t, "$330,000", result.CogsFormatted)
	assert.Equal(t, "$390,000", result.OpexFormatted)
	assert.Equal(t, "$280,000", result.EbitdaFormatted)
	assert.Equal(t, 28.0, result.EbitdaMarginPercent)
	assert.Equal(t, 67.0, result.GrossMarginPercent)
	assert.Nil(t, result.Status)

	assert.Equal(t, "EBITDA = Revenue - COGS - OpEx", result.Breakdown.Formula)
	assert.Equal(t, "$280,000", result.Breakdown.EqualsEbitda)
}

func TestEbitdaService_GetMonth_NotFound(t *testing.T) {
	client := newTestClient(t, standardTables(t))

	_, err := client.Ebitda.GetMonth("2023-01")
	assert.ErrorIs(t, err, ErrMonthNotFound)
}

func TestEbitdaService_Trend(t *testing.T) {
	client := newTestClient(t, standardTables(t))

	result, err := client.Ebitda.Trend(3)
	require.NoError(t, err)

	require.Len(t, result.Data, 3)
	assert.Equal(t, 30.0, result.Summary.AvgEbitdaMargin)
	assert.Equal(t, 28.0, result.Summary.LatestEbitdaMargin)
	assert.Equal(t, "$280,000", result.Summary.LatestEbitda)
	assert.Equal(t, 3, result.Summary.ValidMonths)
}

func TestEbitdaService_Trend_RejectsNonPositiveWindow(t *testing.T) {
	client := newTestClient(t, standardTables(t))

	_, err := client.Ebitda.Trend(0)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestEbitdaService_StatusLadder(t *testing.T) {
	tables := &Tables{
		Actuals: []LedgerRow{
			// EBITDA negative: 1000 - 400 - 800
			ledgerRow(t, "2025-01", "US", "Revenue", "USD", 1000),
			ledgerRow(t, "2025-01", "US", "COGS", "USD", 400),
			ledgerRow(t, "2025-01", "US", "Opex:Payroll", "USD", 800),
			// EBITDA margin 5%: 1000 - 450 - 500
			ledgerRow(t, "2025-02", "US", "Revenue", "USD", 1000),
			ledgerRow(t, "2025-02", "US", "COGS", "USD", 450),
			ledgerRow(t, "2025-02", "US", "Opex:Payroll", "USD", 500),
			// Healthy: 1000 - 300 - 400
			ledgerRow(t, "2025-03", "US", "Revenue", "USD", 1000),
			ledgerRow(t, "2025-03", "US", "COGS", "USD", 300),
			ledgerRow(t, "2025-03", "US", "Opex:Payroll", "USD", 400),
		},
	}
	client := newTestClient(t, tables)

	result, err := client.Ebitda.All()
	require.NoError(t, err)
	require.Len(t, result.Data, 3)

	jan, feb, mar := result.Data[0], result.Data[1], result.Data[2]

	require.NotNil(t, jan.Status)
	assert.Equal(t, StatusWarning, jan.Status.Code)
	assert.Equal(t, "Negative EBITDA", jan.Status.Detail)

	require.NotNil(t, feb.Status)
	assert.Equal(t, StatusAlert, feb.Status.Code)
	assert.Equal(t, "Low EBITDA margin (<10%)", feb.Status.Detail)

	assert.Nil(t, mar.Status)

	assert.Equal(t, 1, result.Summary.MonthsWithNegativeEbitda)
	assert.Equal(t, 3, result.Summary.TotalMonths)
}

func TestEbitdaService_All_Totals(t *testing.T) {
	client := newTestClient(t, standardTables(t))

	result, err := client.Ebitda.All()
	require.NoError(t, err)

	// 280,000 + 300,000 + 280,000
	assert.Equal(t, "$860,000", result.Summary.TotalEbitdaUSD)
	assert.Equal(t, 0, result.Summary.MonthsWithNegativeEbitda)
}
