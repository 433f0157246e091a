package finsight

import (
	"fmt"
	"time"

	"github.com/finsight/finsight-go/internal/dataset"
)

// Month re-exports the dataset month key type.
type Month = dataset.Month

// LedgerRow re-exports the ledger line-item row type.
type LedgerRow = dataset.LedgerRow

// CashRow re-exports the cash snapshot row type.
type CashRow = dataset.CashRow

// FXRate re-exports the FX rate row type.
type FXRate = dataset.FXRate

// ParseMonth parses strings like "2025-06", "June 2025" or "06/2025".
func ParseMonth(s string) (Month, error) {
	return dataset.ParseMonth(s)
}

// StatusCode classifies a metric month's edge-case condition.
type StatusCode string

const (
	StatusNormal  StatusCode = "Normal"
	StatusInvalid StatusCode = "Invalid"
	StatusWarning StatusCode = "Warning"
	StatusAlert   StatusCode = "Alert"
)

// Status tags a metric month that fell into an edge-case range. A nil
// *Status means Normal.
type Status struct {
	Code   StatusCode `json:"code"`
	Detail string     `json:"detail,omitempty"`
}

// String renders the status the way dashboards display it, e.g.
// "Warning: COGS exceeds revenue".
func (s *Status) String() string {
	if s == nil {
		return string(StatusNormal)
	}
	if s.Detail == "" {
		return string(s.Code)
	}
	return fmt.Sprintf("%s: %s", s.Code, s.Detail)
}

// MarshalJSON emits the display string form.
func (s Status) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf("%q", (&s).String())), nil
}

// IsInvalid reports whether the status excludes the month from averages.
func (s *Status) IsInvalid() bool {
	return s != nil && s.Code == StatusInvalid
}

// EntityAmount is one entity's USD contribution to a monthly total.
type EntityAmount struct {
	Entity    string  `json:"entity"`
	AmountUSD float64 `json:"amount_usd"`
}

// MonthAmount is one month's USD total in a series.
type MonthAmount struct {
	Month     string  `json:"month"`
	AmountUSD float64 `json:"amount_usd"`
	Formatted string  `json:"amount_formatted,omitempty"`
}

// RevenueMonth is the single-month revenue result, optionally carrying a
// budget comparison.
type RevenueMonth struct {
	Month            string         `json:"month"`
	ActualRevenue    float64        `json:"actual_revenue"`
	ActualRevenueUSD string         `json:"actual_revenue_usd"`
	Details          []EntityAmount `json:"details"`

	// Budget comparison, present only when requested and budget data exists.
	BudgetRevenue    float64 `json:"budget_revenue,omitempty"`
	BudgetRevenueUSD string  `json:"budget_revenue_usd,omitempty"`
	Variance         float64 `json:"variance,omitempty"`
	VarianceUSD      string  `json:"variance_usd,omitempty"`
	VariancePercent  string  `json:"variance_percent,omitempty"`

	// BudgetNote explains a missing or zero budget instead of a variance.
	BudgetNote string `json:"budget_note,omitempty"`
}

// RevenueSummary is the all-months revenue result.
type RevenueSummary struct {
	AllMonths       []MonthAmount `json:"all_months"`
	TotalRevenueUSD string        `json:"total_revenue_usd"`
	MonthsCount     int           `json:"months_count"`

	// Advisories flag implausible revenue patterns; never fatal.
	Advisories []string `json:"business_logic_warnings,omitempty"`
}

// MarginEntry is one month of the gross-margin series.
type MarginEntry struct {
	Month              string  `json:"month"`
	RevenueUSD         float64 `json:"revenue_usd"`
	CogsUSD            float64 `json:"cogs_usd"`
	GrossProfitUSD     float64 `json:"gross_profit_usd"`
	GrossMarginPercent float64 `json:"gross_margin_percent"`
	Status             *Status `json:"status,omitempty"`
}

// MarginMonth is the single-month gross-margin result with display strings.
type MarginMonth struct {
	MarginEntry
	RevenueFormatted     string `json:"revenue_formatted"`
	CogsFormatted        string `json:"cogs_formatted"`
	GrossProfitFormatted string `json:"gross_profit_formatted"`
}

// MarginSummary aggregates a margin series over valid months only.
type MarginSummary struct {
	AvgMargin    float64 `json:"avg_margin"`
	LatestMargin float64 `json:"latest_margin"`
	ValidMonths  int     `json:"valid_months"`
	TotalMonths  int     `json:"total_months,omitempty"`
}

// MarginTrend is the trend / all-months gross-margin result.
type MarginTrend struct {
	TrendMonths int            `json:"trend_months,omitempty"`
	Data        []MarginEntry  `json:"data"`
	Summary     MarginSummary  `json:"summary"`
	DataQuality *QualityReport `json:"data_quality,omitempty"`
}

// EbitdaEntry is one month of the EBITDA series.
type EbitdaEntry struct {
	Month               string  `json:"month"`
	RevenueUSD          float64 `json:"revenue_usd"`
	CogsUSD             float64 `json:"cogs_usd"`
	OpexUSD             float64 `json:"opex_usd"`
	GrossProfitUSD      float64 `json:"gross_profit_usd"`
	EbitdaUSD           float64 `json:"ebitda_usd"`
	GrossMarginPercent  float64 `json:"gross_margin_percent"`
	EbitdaMarginPercent float64 `json:"ebitda_margin_percent"`
	Status              *Status `json:"status,omitempty"`
}

// CalculationBreakdown spells out the EBITDA arithmetic for audit display.
type CalculationBreakdown struct {
	Formula      string `json:"formula"`
	Revenue      string `json:"revenue"`
	MinusCogs    string `json:"minus_cogs"`
	MinusOpex    string `json:"minus_opex"`
	EqualsEbitda string `json:"equals_ebitda"`
}

// EbitdaMonth is the single-month EBITDA result with display strings.
type EbitdaMonth struct {
	EbitdaEntry
	RevenueFormatted     string               `json:"revenue_formatted"`
	CogsFormatted        string               `json:"cogs_formatted"`
	OpexFormatted        string               `json:"opex_formatted"`
	GrossProfitFormatted string               `json:"gross_profit_formatted"`
	EbitdaFormatted      string               `json:"ebitda_formatted"`
	Breakdown            CalculationBreakdown `json:"calculation_breakdown"`
}

// EbitdaSummary aggregates an EBITDA series over valid months only.
type EbitdaSummary struct {
	AvgEbitdaMargin          float64 `json:"avg_ebitda_margin"`
	AvgGrossMargin           float64 `json:"avg_gross_margin"`
	LatestEbitdaMargin       float64 `json:"latest_ebitda_margin"`
	LatestEbitda             string  `json:"latest_ebitda"`
	TotalEbitdaUSD           string  `json:"total_ebitda_usd,omitempty"`
	ValidMonths              int     `json:"valid_months"`
	TotalMonths              int     `json:"total_months,omitempty"`
	MonthsWithNegativeEbitda int     `json:"months_with_negative_ebitda,omitempty"`
}

// EbitdaTrend is the trend / all-months EBITDA result.
type EbitdaTrend struct {
	TrendMonths int            `json:"trend_months,omitempty"`
	Data        []EbitdaEntry  `json:"data"`
	Summary     EbitdaSummary  `json:"summary"`
	DataQuality *QualityReport `json:"data_quality,omitempty"`
}

// OpexCategory is one category line in an OpEx breakdown.
type OpexCategory struct {
	Category   string  `json:"category"`
	Amount     float64 `json:"amount"`
	AmountUSD  string  `json:"amount_usd"`
	Percentage string  `json:"percentage"`
}

// OpexMonth is the single-month per-category OpEx breakdown.
type OpexMonth struct {
	Month           string         `json:"month"`
	Breakdown       []OpexCategory `json:"breakdown_by_category"`
	TotalOpex       float64        `json:"total_opex"`
	TotalOpexUSD    string         `json:"total_opex_usd"`
	CategoriesCount int            `json:"categories_count"`
}

// OpexEntityShare is one entity's share of a category.
type OpexEntityShare struct {
	Entity    string  `json:"entity"`
	Amount    float64 `json:"amount"`
	Formatted string  `json:"formatted"`
}

// OpexEntityCategory nests entity sums inside a category.
type OpexEntityCategory struct {
	Category       string            `json:"category"`
	Total          float64           `json:"total_usd"`
	TotalFormatted string            `json:"total_formatted"`
	Entities       []OpexEntityShare `json:"entities"`
}

// OpexEntityMonth is the single-month category-and-entity OpEx breakdown.
type OpexEntityMonth struct {
	Month           string               `json:"month"`
	Categories      []OpexEntityCategory `json:"breakdown_by_category_and_entity"`
	TotalOpex       float64              `json:"total_opex"`
	TotalOpexUSD    string               `json:"total_opex_usd"`
	CategoriesCount int                  `json:"categories_count"`
}

// OpexSummary is the all-time OpEx result: category totals plus the
// per-month totals trend.
type OpexSummary struct {
	CategoryBreakdown []OpexCategory `json:"category_breakdown"`
	MonthlyTotals     []MonthAmount  `json:"monthly_totals"`
	TotalOpexUSD      string         `json:"total_opex_usd"`
	MonthsAnalyzed    int            `json:"months_analyzed"`
}

// BurnDetail is one month-over-month cash burn.
type BurnDetail struct {
	Month     string  `json:"month"`
	Burn      float64 `json:"burn"`
	BurnUSD   string  `json:"burn_usd"`
	CashStart string  `json:"cash_start"`
	CashEnd   string  `json:"cash_end"`
}

// BurnAnalysis summarizes the recent burn window.
type BurnAnalysis struct {
	MonthsAnalyzed int          `json:"months_analyzed"`
	MonthlyBurns   []BurnDetail `json:"monthly_burns"`
	BurnTrend      string       `json:"burn_trend"`
}

// CashRunway is the runway analysis result.
type CashRunway struct {
	AsOfMonth         string       `json:"as_of_month"`
	CurrentCash       float64      `json:"current_cash"`
	CurrentCashUSD    string       `json:"current_cash_usd"`
	AvgBurn           float64      `json:"avg_burn"`
	AvgMonthlyBurnUSD string       `json:"avg_monthly_burn_usd"`
	RunwayMonthsValue float64      `json:"runway_months_value"` // +Inf when cash-flow positive
	RunwayMonths      string       `json:"runway_months"`
	RunwayDetailed    string       `json:"runway_detailed"`
	DepletionDate     string       `json:"estimated_depletion_date"`
	Status            string       `json:"status"`
	BurnAnalysis      BurnAnalysis `json:"burn_analysis"`
	Recommendations   []string     `json:"recommendations"`

	// Advisories flag implausible burn patterns; never fatal.
	Advisories []string `json:"business_logic_warnings,omitempty"`
}

// QualityStats is the statistics block attached to data-quality warnings.
type QualityStats struct {
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Range  float64 `json:"range"`
}

// QualityReport carries advisory data-quality warnings for a metric series.
// It flags synthetic-looking data, not business failures, and never blocks
// the primary computation.
type QualityReport struct {
	Warnings   []string     `json:"data_quality_warnings"`
	Statistics QualityStats `json:"statistics"`
}

// Answer is the planner's final payload: either a rendered response plus
// structured data, or an error with a suggested rephrasing.
type Answer struct {
	Response    string      `json:"response,omitempty"`
	Data        interface{} `json:"data,omitempty"`
	Error       string      `json:"error,omitempty"`
	Suggestion  string      `json:"suggestion,omitempty"`
	Suggestions []string    `json:"suggestions,omitempty"`
}

// OK reports whether the answer carries a response rather than an error.
func (a *Answer) OK() bool {
	return a != nil && a.Error == ""
}

// Exchange is one question/answer pair in a session's history.
type Exchange struct {
	Question string    `json:"question"`
	Answer   *Answer   `json:"answer"`
	AskedAt  time.Time `json:"asked_at"`
}
