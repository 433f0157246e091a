package finsight

// RevenueService answers revenue questions from the actuals and budget tables
type RevenueService interface {
	// GetMonth returns one month's revenue, optionally compared to budget
	GetMonth(month string, vsBudget bool) (*RevenueMonth, error)

	// Summary returns all months with positive revenue plus a grand total
	Summary() (*RevenueSummary, error)
}

// MarginService computes gross margin per month
type MarginService interface {
	// GetMonth returns one month's gross margin record
	GetMonth(month string) (*MarginMonth, error)

	// Trend returns the most recent lastN months of the margin series
	Trend(lastN int) (*MarginTrend, error)

	// All returns the full margin series
	All() (*MarginTrend, error)
}

// OpexService breaks operating expenses down by category and entity
type OpexService interface {
	// Breakdown returns one month's per-category OpEx breakdown
	Breakdown(month string) (*OpexMonth, error)

	// BreakdownByEntity nests entity sums inside each category
	BreakdownByEntity(month string) (*OpexEntityMonth, error)

	// Summary returns all-time category totals plus the monthly trend
	Summary() (*OpexSummary, error)
}

// EbitdaService computes EBITDA (revenue - COGS - OpEx) per month
type EbitdaService interface {
	// GetMonth returns one month's EBITDA record with the audit breakdown
	GetMonth(month string) (*EbitdaMonth, error)

	// Trend returns the most recent lastN months of the EBITDA series
	Trend(lastN int) (*EbitdaTrend, error)

	// All returns the full EBITDA series
	All() (*EbitdaTrend, error)
}

// CashService computes burn rate and runway from cash snapshots
type CashService interface {
	// Runway analyzes burn and runway as of the given month, or the
	// latest snapshot when month is empty
	Runway(asOfMonth string) (*CashRunway, error)
}

// PlannerService routes free-text questions to the calculators
type PlannerService interface {
	// Answer classifies the question and returns a formatted answer.
	// It never returns an error; failures become Answer.Error.
	Answer(question string) *Answer

	// Classify exposes the rule-based classification for a question
	Classify(question string) *Classification

	// Dashboard renders the executive composite view of the latest month
	Dashboard() *Answer

	// NewSession starts an append-only conversation history
	NewSession() *Session
}
