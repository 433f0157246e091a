package main

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/finsight/finsight-go/pkg/finsight"
)

func testClient(t *testing.T) *finsight.Client {
	t.Helper()

	row := func(month, entity, category string, amount int64) finsight.LedgerRow {
		m, err := finsight.ParseMonth(month)
		if err != nil {
			t.Fatalf("bad month %q: %v", month, err)
		}
		return finsight.LedgerRow{
			Month:           m,
			Entity:          entity,
			AccountCategory: category,
			Currency:        "USD",
			Amount:          decimal.NewFromInt(amount),
		}
	}
	cash := func(month string, amount int64) finsight.CashRow {
		m, err := finsight.ParseMonth(month)
		if err != nil {
			t.Fatalf("bad month %q: %v", month, err)
		}
		return finsight.CashRow{Month: m, CashUSD: decimal.NewNullDecimal(decimal.NewFromInt(amount))}
	}

	client, err := finsight.NewClient(&finsight.ClientOptions{
		Tables: &finsight.Tables{
			Actuals: []finsight.LedgerRow{
				row("2025-05", "US", "Revenue", 950000),
				row("2025-05", "US", "COGS", 310000),
				row("2025-05", "US", "Opex:Payroll", 300000),
				row("2025-06", "US", "Revenue", 1000000),
				row("2025-06", "US", "COGS", 330000),
				row("2025-06", "US", "Opex:Payroll", 310000),
				row("2025-06", "US", "Opex:Marketing", 80000),
			},
			Budget: []finsight.LedgerRow{
				row("2025-06", "US", "Revenue", 900000),
			},
			Cash: []finsight.CashRow{
				cash("2025-04", 5000000),
				cash("2025-05", 4800000),
				cash("2025-06", 4600000),
			},
		},
	})
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}
	return client
}

func TestAskCFOTool(t *testing.T) {
	tools := &cfoTools{client: testClient(t)}

	_, output, err := tools.AskCFO(context.Background(), nil, AskCFOInput{
		Question: "What was June 2025 revenue vs budget?",
	})
	if err != nil {
		t.Fatalf("AskCFO failed: %v", err)
	}
	if output.Error != "" {
		t.Fatalf("unexpected answer error: %s", output.Error)
	}
	if output.Response == "" {
		t.Error("expected a formatted response")
	}
}

func TestGetRevenueTool(t *testing.T) {
	tools := &cfoTools{client: testClient(t)}

	_, output, err := tools.GetRevenue(context.Background(), nil, GetRevenueInput{
		Month:    "2025-06",
		VsBudget: true,
	})
	if err != nil {
		t.Fatalf("GetRevenue failed: %v", err)
	}
	if output.ActualRevenueUSD != "$1,000,000" {
		t.Errorf("unexpected revenue: %s", output.ActualRevenueUSD)
	}
	if output.VariancePercent != "11.1%" {
		t.Errorf("unexpected variance: %s", output.VariancePercent)
	}
}

func TestGetRevenueTool_BadMonth(t *testing.T) {
	tools := &cfoTools{client: testClient(t)}

	_, _, err := tools.GetRevenue(context.Background(), nil, GetRevenueInput{Month: "nonsense"})
	if err == nil {
		t.Fatal("expected an error for an unparseable month")
	}
}

func TestGetGrossMarginTool(t *testing.T) {
	tools := &cfoTools{client: testClient(t)}

	_, output, err := tools.GetGrossMargin(context.Background(), nil, GetGrossMarginInput{})
	if err != nil {
		t.Fatalf("GetGrossMargin failed: %v", err)
	}
	if len(output.Data) != 2 {
		t.Errorf("expected 2 months of data, got %d", len(output.Data))
	}
}

func TestGetOpexBreakdownTool(t *testing.T) {
	tools := &cfoTools{client: testClient(t)}

	_, output, err := tools.GetOpexBreakdown(context.Background(), nil, GetOpexBreakdownInput{Month: "2025-06"})
	if err != nil {
		t.Fatalf("GetOpexBreakdown failed: %v", err)
	}
	if output.ByCategory == nil || output.ByCategory.TotalOpexUSD != "$390,000" {
		t.Errorf("unexpected breakdown: %+v", output.ByCategory)
	}

	_, output, err = tools.GetOpexBreakdown(context.Background(), nil, GetOpexBreakdownInput{Month: "2025-06", ByEntity: true})
	if err != nil {
		t.Fatalf("GetOpexBreakdown by entity failed: %v", err)
	}
	if output.ByEntity == nil {
		t.Error("expected an entity breakdown")
	}
}

func TestGetEbitdaTool(t *testing.T) {
	tools := &cfoTools{client: testClient(t)}

	_, output, err := tools.GetEbitda(context.Background(), nil, GetEbitdaInput{Month: "2025-06"})
	if err != nil {
		t.Fatalf("GetEbitda failed: %v", err)
	}
	// 1,000,000 - 330,000 - 390,000
	if output.Month == nil || output.Month.EbitdaFormatted != "$280,000" {
		t.Errorf("unexpected EBITDA: %+v", output.Month)
	}

	_, output, err = tools.GetEbitda(context.Background(), nil, GetEbitdaInput{})
	if err != nil {
		t.Fatalf("GetEbitda trend failed: %v", err)
	}
	if output.Trend == nil {
		t.Error("expected a trend")
	}
}

func TestGetCashRunwayTool(t *testing.T) {
	tools := &cfoTools{client: testClient(t)}

	_, output, err := tools.GetCashRunway(context.Background(), nil, GetCashRunwayInput{})
	if err != nil {
		t.Fatalf("GetCashRunway failed: %v", err)
	}
	if output.AvgMonthlyBurnUSD != "$200,000" {
		t.Errorf("unexpected burn: %s", output.AvgMonthlyBurnUSD)
	}
}

func TestExecutiveDashboardTool(t *testing.T) {
	tools := &cfoTools{client: testClient(t)}

	_, output, err := tools.ExecutiveDashboard(context.Background(), nil, ExecutiveDashboardInput{})
	if err != nil {
		t.Fatalf("ExecutiveDashboard failed: %v", err)
	}
	if output.Error != "" {
		t.Fatalf("unexpected dashboard error: %s", output.Error)
	}
	if output.Response == "" {
		t.Error("expected a formatted dashboard")
	}
}
