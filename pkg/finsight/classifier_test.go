package finsight

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifier_Classify_Revenue(t *testing.T) {
	c := NewClassifier()

	result := c.Classify("What was June 2025 revenue vs budget?")

	assert.Equal(t, IntentRevenue, result.Intent)
	assert.Equal(t, "2025-06", result.Month)
	assert.True(t, result.VsBudget)
	assert.False(t, result.TrendAnalysis)
	assert.GreaterOrEqual(t, result.Confidence, 1.0)
}

func TestClassifier_Classify_MarginTrend(t *testing.T) {
	c := NewClassifier()

	result := c.Classify("Show me gross margin trends for the last 3 months")

	assert.Equal(t, IntentMargin, result.Intent)
	assert.True(t, result.TrendAnalysis)
	assert.Equal(t, 3, result.TrendMonths)
	assert.Equal(t, "3 months", result.DisplayPeriod)
	assert.Equal(t, UnitMonths, result.OriginalUnit)
	assert.Empty(t, result.Month)
}

func TestClassifier_Classify_Cash(t *testing.T) {
	c := NewClassifier()

	result := c.Classify("What's our current cash runway?")

	assert.Equal(t, IntentCash, result.Intent)
	assert.False(t, result.TrendAnalysis)
}

func TestClassifier_Classify_OpexByEntity(t *testing.T) {
	c := NewClassifier()

	result := c.Classify("OpEx breakdown by entity for June")

	assert.Equal(t, IntentOpex, result.Intent)
	assert.True(t, result.ByEntity)
	assert.Equal(t, "2025-06", result.Month)
}

func TestClassifier_Classify_Unknown(t *testing.T) {
	c := NewClassifier()

	result := c.Classify("What is the meaning of life?")

	assert.Equal(t, IntentUnknown, result.Intent)
	assert.Less(t, result.Confidence, minConfidence)
}

func TestClassifier_Classify_ConfidenceCapped(t *testing.T) {
	c := NewClassifier()

	result := c.Classify("revenue sales income topline budget vs budget rev")
	assert.Equal(t, maxConfidence, result.Confidence)
}

func TestClassifier_Classify_Deterministic(t *testing.T) {
	c := NewClassifier()
	question := "Show me gross margin trends for the last 3 months"

	first := c.Classify(question)
	for i := 0; i < 50; i++ {
		assert.Equal(t, first, c.Classify(question))
	}
}

func TestClassifier_ExtractMonth(t *testing.T) {
	c := NewClassifier()

	tests := []struct {
		question string
		want     string
	}{
		{"revenue for 2025-06", "2025-06"},
		{"revenue for 2025-6", "2025-06"},
		{"revenue for 06/2025", "2025-06"},
		{"revenue for 6/2025", "2025-06"},
		{"June 2024 revenue", "2024-06"},
		{"Jun 2024 revenue", "2024-06"},
		{"revenue for june", "2025-06"},
		{"revenue in december", "2025-12"},
		{"revenue during aug", "2025-08"},
		{"may revenue", "2025-05"},
		{"no month here at all", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, c.ExtractMonth(tt.question), "question: %s", tt.question)
	}
}

func TestClassifier_ExtractMonth_FirstPatternWins(t *testing.T) {
	c := NewClassifier()

	// ISO form outranks the month name.
	assert.Equal(t, "2025-03", c.ExtractMonth("compare june against 2025-03"))
}

func TestClassifier_ExtractMonth_NoRangeValidation(t *testing.T) {
	c := NewClassifier()

	// Out-of-range month numbers pass through; parsing rejects them later.
	got := c.ExtractMonth("show me 2025-13")
	assert.Equal(t, "2025-13", got)

	_, err := ParseMonth(got)
	assert.Error(t, err)
}

func TestClassifier_ExtractMonth_ReferenceYear(t *testing.T) {
	c := NewClassifierWithYear(2030)

	assert.Equal(t, "2030-06", c.ExtractMonth("revenue for june"))
}

func TestClassifier_ExtractTrendWindow(t *testing.T) {
	c := NewClassifier()

	tests := []struct {
		question string
		months   int
		display  string
		unit     Unit
	}{
		{"last 3 months", 3, "3 months", UnitMonths},
		{"past 6 months", 6, "6 months", UnitMonths},
		{"last 1 month", 1, "1 month", UnitMonths},
		{"trailing 6mo", 6, "6 months", UnitMonths},
		{"last year", 12, "1 year", UnitYears},
		{"past 2 years", 24, "2 years", UnitYears},
		{"last quarter", 3, "1 quarter", UnitQuarters},
		{"past 2 quarters", 6, "2 quarters", UnitQuarters},
		{"no duration named", 3, "3 months", UnitMonths},
	}
	for _, tt := range tests {
		window := c.ExtractTrendWindow(tt.question)
		assert.Equal(t, tt.months, window.Months, "question: %s", tt.question)
		assert.Equal(t, tt.display, window.DisplayPeriod, "question: %s", tt.question)
		assert.Equal(t, tt.unit, window.Unit, "question: %s", tt.question)
	}
}

func TestClassifier_ExtractTrendWindow_RejectsOutOfRange(t *testing.T) {
	c := NewClassifier()

	// Implausible durations fall through to the default.
	window := c.ExtractTrendWindow("last 500 months")
	assert.Equal(t, DefaultTrendMonths, window.Months)

	window = c.ExtractTrendWindow("last 50 years")
	assert.Equal(t, DefaultTrendMonths, window.Months)
}

func TestClassifier_ExtractTrendWindow_YearsBeforeMonths(t *testing.T) {
	c := NewClassifier()

	// When both units appear, years win.
	window := c.ExtractTrendWindow("2 years not 6 months")
	assert.Equal(t, 24, window.Months)
	assert.Equal(t, UnitYears, window.Unit)
}
