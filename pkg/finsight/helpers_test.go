package finsight

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// newTestClient builds a client over in-memory tables.
func newTestClient(t *testing.T, tables *Tables) *Client {
	t.Helper()
	client, err := NewClient(&ClientOptions{Tables: tables})
	require.NoError(t, err)
	return client
}

func mustMonth(t *testing.T, s string) Month {
	t.Helper()
	m, err := ParseMonth(s)
	require.NoError(t, err)
	return m
}

func ledgerRow(t *testing.T, month, entity, category, currency string, amount float64) LedgerRow {
	t.Helper()
	return LedgerRow{
		Month:           mustMonth(t, month),
		Entity:          entity,
		AccountCategory: category,
		Currency:        currency,
		Amount:          decimal.NewFromFloat(amount),
	}
}

func cashSnapshot(t *testing.T, month string, amount float64) CashRow {
	t.Helper()
	return CashRow{
		Month:   mustMonth(t, month),
		CashUSD: decimal.NewNullDecimal(decimal.NewFromFloat(amount)),
	}
}

func fxRate(t *testing.T, month, currency string, rate float64) FXRate {
	t.Helper()
	return FXRate{
		Month:     mustMonth(t, month),
		Currency:  currency,
		RateToUSD: decimal.NewFromFloat(rate),
	}
}

// standardTables is a small six-month company used by tests that do not
// need bespoke numbers: steady revenue, one EUR entity, three OpEx
// categories, and a shrinking cash balance.
func standardTables(t *testing.T) *Tables {
	t.Helper()
	return &Tables{
		Actuals: []LedgerRow{
			ledgerRow(t, "2025-04", "US", "Revenue", "USD", 800000),
			ledgerRow(t, "2025-04", "EU", "Revenue", "EUR", 100000),
			ledgerRow(t, "2025-04", "US", "COGS", "USD", 300000),
			ledgerRow(t, "2025-04", "US", "Opex:Payroll", "USD", 250000),
			ledgerRow(t, "2025-04", "US", "Opex:Marketing", "USD", 80000),

			ledgerRow(t, "2025-05", "US", "Revenue", "USD", 850000),
			ledgerRow(t, "2025-05", "EU", "Revenue", "EUR", 100000),
			ledgerRow(t, "2025-05", "US", "COGS", "USD", 320000),
			ledgerRow(t, "2025-05", "US", "Opex:Payroll", "USD", 255000),
			ledgerRow(t, "2025-05", "US", "Opex:Marketing", "USD", 85000),

			ledgerRow(t, "2025-06", "US", "Revenue", "USD", 890000),
			ledgerRow(t, "2025-06", "EU", "Revenue", "EUR", 100000),
			ledgerRow(t, "2025-06", "US", "COGS", "USD", 330000),
			ledgerRow(t, "2025-06", "US", "Opex:Payroll", "USD", 260000),
			ledgerRow(t, "2025-06", "US", "Opex:Marketing", "USD", 90000),
			ledgerRow(t, "2025-06", "EU", "Opex:Cloud", "USD", 40000),
		},
		Budget: []LedgerRow{
			ledgerRow(t, "2025-06", "US", "Revenue", "USD", 900000),
		},
		Cash: []CashRow{
			cashSnapshot(t, "2025-03", 5000000),
			cashSnapshot(t, "2025-04", 4800000),
			cashSnapshot(t, "2025-05", 4620000),
			cashSnapshot(t, "2025-06", 4400000),
		},
		FX: []FXRate{
			fxRate(t, "2025-04", "EUR", 1.10),
			fxRate(t, "2025-05", "EUR", 1.10),
			fxRate(t, "2025-06", "EUR", 1.10),
		},
	}
}
