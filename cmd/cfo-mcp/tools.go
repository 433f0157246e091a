package main

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/finsight/finsight-go/pkg/finsight"
)

func registerTools(server *mcp.Server, client *finsight.Client) {
	tools := &cfoTools{client: client}

	mcp.AddTool(server, &mcp.Tool{
		Name:        "ask_cfo",
		Description: "Answer a free-text CFO question about revenue, gross margin, operating expenses, EBITDA, or cash runway. Returns a formatted markdown answer plus the underlying structured data.",
	}, tools.AskCFO)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_revenue",
		Description: "Get revenue for a specific month in USD, optionally compared against budget with variance amount and percentage.",
	}, tools.GetRevenue)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_gross_margin",
		Description: "Get the gross margin trend over the last N months, including per-month revenue, COGS, gross profit, margin percentage, and data quality warnings.",
	}, tools.GetGrossMargin)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_opex_breakdown",
		Description: "Break down operating expenses for a month by category, optionally nested by entity, with each category's share of the total.",
	}, tools.GetOpexBreakdown)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_ebitda",
		Description: "Get EBITDA (revenue minus COGS minus OpEx) for a specific month with the full calculation breakdown, or a trend over the last N months.",
	}, tools.GetEbitda)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_cash_runway",
		Description: "Analyze cash runway: current cash, average monthly burn over recent months, months of runway remaining, estimated depletion date, and recommendations.",
	}, tools.GetCashRunway)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "executive_dashboard",
		Description: "Render a composite executive dashboard for the latest month: revenue vs budget, profitability health, cost structure, cash runway, and an overall health score.",
	}, tools.ExecutiveDashboard)
}

// cfoTools holds the engine client and implements all tool handlers
type cfoTools struct {
	client *finsight.Client
}

type AskCFOInput struct {
	Question string `json:"question" jsonschema:"Free-text question, e.g. 'What was June 2025 revenue vs budget?'"`
}

type AskCFOOutput struct {
	Response    string      `json:"response,omitempty" jsonschema:"Formatted markdown answer"`
	Data        interface{} `json:"data,omitempty" jsonschema:"Structured data behind the answer"`
	Error       string      `json:"error,omitempty" jsonschema:"Error message when the question could not be answered"`
	Suggestion  string      `json:"suggestion,omitempty" jsonschema:"Suggested rephrasing when an error occurred"`
	Suggestions []string    `json:"suggestions,omitempty" jsonschema:"Example questions when the intent was unclear"`
}

func (t *cfoTools) AskCFO(ctx context.Context, req *mcp.CallToolRequest, input AskCFOInput) (*mcp.CallToolResult, AskCFOOutput, error) {
	answer := t.client.Planner.Answer(input.Question)

	return nil, AskCFOOutput{
		Response:    answer.Response,
		Data:        answer.Data,
		Error:       answer.Error,
		Suggestion:  answer.Suggestion,
		Suggestions: answer.Suggestions,
	}, nil
}

type GetRevenueInput struct {
	Month    string `json:"month" jsonschema:"Month in YYYY-MM format (e.g. 2025-06)"`
	VsBudget bool   `json:"vsBudget,omitempty" jsonschema:"Include budget comparison (default false)"`
}

func (t *cfoTools) GetRevenue(ctx context.Context, req *mcp.CallToolRequest, input GetRevenueInput) (*mcp.CallToolResult, *finsight.RevenueMonth, error) {
	result, err := t.client.Revenue.GetMonth(input.Month, input.VsBudget)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get revenue: %w", err)
	}
	return nil, result, nil
}

type GetGrossMarginInput struct {
	LastNMonths int `json:"lastNMonths,omitempty" jsonschema:"Number of trailing months to analyze (default 3)"`
}

func (t *cfoTools) GetGrossMargin(ctx context.Context, req *mcp.CallToolRequest, input GetGrossMarginInput) (*mcp.CallToolResult, *finsight.MarginTrend, error) {
	lastN := input.LastNMonths
	if lastN <= 0 {
		lastN = finsight.DefaultTrendMonths
	}

	result, err := t.client.Margins.Trend(lastN)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get gross margin trend: %w", err)
	}
	return nil, result, nil
}

type GetOpexBreakdownInput struct {
	Month    string `json:"month" jsonschema:"Month in YYYY-MM format (e.g. 2025-06)"`
	ByEntity bool   `json:"byEntity,omitempty" jsonschema:"Nest entity sums inside each category (default false)"`
}

type GetOpexBreakdownOutput struct {
	ByCategory *finsight.OpexMonth       `json:"byCategory,omitempty" jsonschema:"Per-category breakdown"`
	ByEntity   *finsight.OpexEntityMonth `json:"byEntity,omitempty" jsonschema:"Per-category breakdown with entity detail"`
}

func (t *cfoTools) GetOpexBreakdown(ctx context.Context, req *mcp.CallToolRequest, input GetOpexBreakdownInput) (*mcp.CallToolResult, GetOpexBreakdownOutput, error) {
	if input.ByEntity {
		result, err := t.client.Opex.BreakdownByEntity(input.Month)
		if err != nil {
			return nil, GetOpexBreakdownOutput{}, fmt.Errorf("failed to get OpEx breakdown: %w", err)
		}
		return nil, GetOpexBreakdownOutput{ByEntity: result}, nil
	}

	result, err := t.client.Opex.Breakdown(input.Month)
	if err != nil {
		return nil, GetOpexBreakdownOutput{}, fmt.Errorf("failed to get OpEx breakdown: %w", err)
	}
	return nil, GetOpexBreakdownOutput{ByCategory: result}, nil
}

type GetEbitdaInput struct {
	Month       string `json:"month,omitempty" jsonschema:"Month in YYYY-MM format; omit for a trend"`
	LastNMonths int    `json:"lastNMonths,omitempty" jsonschema:"Trend window when month is omitted (default 3)"`
}

type GetEbitdaOutput struct {
	Month *finsight.EbitdaMonth `json:"month,omitempty" jsonschema:"Single-month EBITDA with calculation breakdown"`
	Trend *finsight.EbitdaTrend `json:"trend,omitempty" jsonschema:"EBITDA trend over the requested window"`
}

func (t *cfoTools) GetEbitda(ctx context.Context, req *mcp.CallToolRequest, input GetEbitdaInput) (*mcp.CallToolResult, GetEbitdaOutput, error) {
	if input.Month != "" {
		result, err := t.client.Ebitda.GetMonth(input.Month)
		if err != nil {
			return nil, GetEbitdaOutput{}, fmt.Errorf("failed to get EBITDA: %w", err)
		}
		return nil, GetEbitdaOutput{Month: result}, nil
	}

	lastN := input.LastNMonths
	if lastN <= 0 {
		lastN = finsight.DefaultTrendMonths
	}

	result, err := t.client.Ebitda.Trend(lastN)
	if err != nil {
		return nil, GetEbitdaOutput{}, fmt.Errorf("failed to get EBITDA trend: %w", err)
	}
	return nil, GetEbitdaOutput{Trend: result}, nil
}

type GetCashRunwayInput struct {
	AsOfMonth string `json:"asOfMonth,omitempty" jsonschema:"Analyze as of this month in YYYY-MM format; omit for the latest snapshot"`
}

func (t *cfoTools) GetCashRunway(ctx context.Context, req *mcp.CallToolRequest, input GetCashRunwayInput) (*mcp.CallToolResult, *finsight.CashRunway, error) {
	result, err := t.client.Cash.Runway(input.AsOfMonth)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get cash runway: %w", err)
	}
	return nil, result, nil
}

type ExecutiveDashboardInput struct{}

type ExecutiveDashboardOutput struct {
	Response string      `json:"response,omitempty" jsonschema:"Formatted markdown dashboard"`
	Data     interface{} `json:"data,omitempty" jsonschema:"Structured metrics behind the dashboard"`
	Error    string      `json:"error,omitempty" jsonschema:"Error message when the dashboard could not be built"`
}

func (t *cfoTools) ExecutiveDashboard(ctx context.Context, req *mcp.CallToolRequest, input ExecutiveDashboardInput) (*mcp.CallToolResult, ExecutiveDashboardOutput, error) {
	answer := t.client.Planner.Dashboard()

	return nil, ExecutiveDashboardOutput{
		Response: answer.Response,
		Data:     answer.Data,
		Error:    answer.Error,
	}, nil
}
