package finsight

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Intent is the metric category a question is asking about.
type Intent string

const (
	IntentRevenue Intent = "revenue"
	IntentMargin  Intent = "margin"
	IntentOpex    Intent = "opex"
	IntentEbitda  Intent = "ebitda"
	IntentCash    Intent = "cash"
	IntentUnknown Intent = "unknown"
)

// Unit records which duration unit the question actually used, so answers
// can display "1 year" instead of "12 months".
type Unit string

const (
	UnitMonths   Unit = "months"
	UnitYears    Unit = "years"
	UnitQuarters Unit = "quarters"
)

// Classification is the structured reading of one question. It is produced
// fresh per request and never persisted.
type Classification struct {
	Intent        Intent  `json:"intent"`
	Month         string  `json:"month,omitempty"`
	VsBudget      bool    `json:"vs_budget"`
	TrendAnalysis bool    `json:"trend_analysis"`
	TrendMonths   int     `json:"trend_months,omitempty"`
	DisplayPeriod string  `json:"display_period,omitempty"`
	OriginalUnit  Unit    `json:"original_unit,omitempty"`
	ByEntity      bool    `json:"by_entity"`
	Confidence    float64 `json:"confidence"`
}

// TrendWindow is an extracted trend duration normalized to months.
type TrendWindow struct {
	Months        int
	DisplayPeriod string
	Unit          Unit
}

// maxConfidence caps the keyword score.
const maxConfidence = 3.0

// minConfidence is the floor below which the intent is forced to unknown.
const minConfidence = 0.3

// Keyword tables per intent, checked in declaration order; ties resolve to
// the earlier category. The order is load-bearing: do not sort these.
var intentKeywords = []struct {
	intent   Intent
	keywords []string
}{
	{IntentRevenue, []string{"revenue", "sales", "income", "topline", "budget", "vs budget", "actual vs budget", "rev", "top line", "versus budget", "against budget", "compared to budget"}},
	{IntentMargin, []string{"margin", "gross margin", "profit margin", "profitability", "margins", "gm", "gross", "profit"}},
	{IntentOpex, []string{"opex", "operating expense", "expenses", "spending", "costs", "breakdown", "categories", "operational expenses", "operating costs", "spend", "expense", "cost breakdown"}},
	{IntentEbitda, []string{"ebitda", "earnings", "profit", "profitability", "operational profit", "operating profit", "ebit"}},
	{IntentCash, []string{"cash", "runway", "burn", "cash flow", "months left", "depletion", "burn rate", "cash position", "how long", "cash runway", "funding runway"}},
}

var trendKeywords = []string{"trend", "trends", "last", "recent", "months", "quarterly", "over time", "past", "historical", "history", "show", "track", "analysis", "pattern", "change", "evolution", "progression"}

var vsBudgetPhrases = []string{"vs budget", "versus budget", "compared to budget", "against budget"}

var byEntityPhrases = []string{"by entity", "by company", "parentco", "emea", "breakdown by"}

// meaningfulShortTokens are the only substring keywords of three characters
// or fewer that count for a full point.
var meaningfulShortTokens = map[string]bool{"rev": true, "gm": true}

var monthNumbers = map[string]string{
	"january": "01", "jan": "01",
	"february": "02", "feb": "02",
	"march": "03", "mar": "03",
	"april": "04", "apr": "04",
	"may":  "05",
	"june": "06", "jun": "06",
	"july": "07", "jul": "07",
	"august": "08", "aug": "08",
	"september": "09", "sep": "09",
	"october": "10", "oct": "10",
	"november": "11", "nov": "11",
	"december": "12", "dec": "12",
}

const (
	fullMonthNames  = `january|february|march|april|may|june|july|august|september|october|november|december`
	abbrMonthNames  = `jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec`
	monthNamePrefix = `(?:for|in|about|during)\s+`
)

// monthPatternKind tells extractMonth how to read the capture groups.
type monthPatternKind int

const (
	monthKindISO   monthPatternKind = iota // (year)(month)
	monthKindSlash                         // (month)(year)
	monthKindName                          // (name)(optional year)
)

// monthPatterns are tried in order; the first match wins even when a later
// pattern would also match.
var monthPatterns = []struct {
	re   *regexp.Regexp
	kind monthPatternKind
}{
	{regexp.MustCompile(`(\d{4})-(\d{1,2})`), monthKindISO},
	{regexp.MustCompile(`(\d{1,2})/(\d{4})`), monthKindSlash},
	{regexp.MustCompile(`(` + fullMonthNames + `)\s+(\d{4})`), monthKindName},
	{regexp.MustCompile(`(` + abbrMonthNames + `)\s+(\d{4})`), monthKindName},
	{regexp.MustCompile(monthNamePrefix + `(` + fullMonthNames + `)(?:\s+(\d{4}))?`), monthKindName},
	{regexp.MustCompile(monthNamePrefix + `(` + abbrMonthNames + `)(?:\s+(\d{4}))?`), monthKindName},
	{regexp.MustCompile(`\b(` + fullMonthNames + `)\b(?:\s+(\d{4}))?`), monthKindName},
	{regexp.MustCompile(`\b(` + abbrMonthNames + `)\b(?:\s+(\d{4}))?`), monthKindName},
}

// durationKind tells extractTrendWindow how to turn a match into months.
type durationKind int

const (
	durationYears durationKind = iota
	durationMonths
	durationQuarters
)

// durationPatterns are tried in order: years first, then months, then
// quarters. fixed is the unit count for patterns without a capture group.
var durationPatterns = []struct {
	re    *regexp.Regexp
	kind  durationKind
	fixed int
}{
	{regexp.MustCompile(`last\s+(\d+)\s+years?`), durationYears, 0},
	{regexp.MustCompile(`past\s+(\d+)\s+years?`), durationYears, 0},
	{regexp.MustCompile(`(\d+)\s+years?`), durationYears, 0},
	{regexp.MustCompile(`last\s+year`), durationYears, 1},
	{regexp.MustCompile(`past\s+year`), durationYears, 1},

	{regexp.MustCompile(`last\s+(\d+)\s+months?`), durationMonths, 0},
	{regexp.MustCompile(`past\s+(\d+)\s+months?`), durationMonths, 0},
	{regexp.MustCompile(`recent\s+(\d+)\s+months?`), durationMonths, 0},
	{regexp.MustCompile(`previous\s+(\d+)\s+months?`), durationMonths, 0},
	{regexp.MustCompile(`(\d+)\s+months?`), durationMonths, 0},
	{regexp.MustCompile(`(\d+)\s*mo\b`), durationMonths, 0},
	{regexp.MustCompile(`(\d+)\s*m\b`), durationMonths, 0},

	{regexp.MustCompile(`last\s+quarter`), durationQuarters, 1},
	{regexp.MustCompile(`past\s+quarter`), durationQuarters, 1},
	{regexp.MustCompile(`this\s+quarter`), durationQuarters, 1},
	{regexp.MustCompile(`q\d`), durationQuarters, 1},
	{regexp.MustCompile(`(\d+)\s*quarters?`), durationQuarters, 0},
}

// Classifier maps free-text questions to a structured classification using
// keyword scoring and ordered regex extraction. It is a pure function of
// its input: no hidden state affects the output across calls.
type Classifier struct {
	referenceYear int
}

// NewClassifier creates a classifier with the default reference year.
func NewClassifier() *Classifier {
	return NewClassifierWithYear(DefaultReferenceYear)
}

// NewClassifierWithYear creates a classifier that assumes the given year
// for bare month names.
func NewClassifierWithYear(year int) *Classifier {
	return &Classifier{referenceYear: year}
}

// Classify analyzes a question and determines its intent, target month,
// trend window and modifier flags. Matching is case-insensitive; the
// original question text is never mutated.
func (c *Classifier) Classify(question string) *Classification {
	lower := strings.ToLower(question)

	result := &Classification{
		Month:    c.ExtractMonth(question),
		VsBudget: containsAny(lower, vsBudgetPhrases),
		ByEntity: containsAny(lower, byEntityPhrases),
	}

	result.TrendAnalysis = containsAny(lower, trendKeywords)
	if result.TrendAnalysis {
		window := c.ExtractTrendWindow(question)
		result.TrendMonths = window.Months
		result.DisplayPeriod = window.DisplayPeriod
		result.OriginalUnit = window.Unit
	}

	best := IntentUnknown
	bestScore := -1.0
	for _, entry := range intentKeywords {
		score := scoreKeywords(lower, entry.keywords)
		if score > bestScore {
			best = entry.intent
			bestScore = score
		}
	}

	result.Intent = best
	result.Confidence = bestScore
	if result.Confidence < minConfidence {
		result.Intent = IntentUnknown
	}

	return result
}

// ExtractMonth pulls a month reference out of the question, returning the
// "YYYY-MM" key or "" when nothing matches. The year defaults to the
// classifier's reference year when a month name appears without one. The
// returned key is not range-validated; downstream parsing rejects values
// like "2025-13".
func (c *Classifier) ExtractMonth(question string) string {
	lower := strings.ToLower(question)

	for _, pattern := range monthPatterns {
		match := pattern.re.FindStringSubmatch(lower)
		if match == nil {
			continue
		}

		switch pattern.kind {
		case monthKindISO:
			return fmt.Sprintf("%s-%s", match[1], zeroPad(match[2]))
		case monthKindSlash:
			return fmt.Sprintf("%s-%s", match[2], zeroPad(match[1]))
		case monthKindName:
			num, ok := monthNumbers[match[1]]
			if !ok {
				continue
			}
			year := match[2]
			if year == "" {
				year = strconv.Itoa(c.referenceYear)
			}
			return fmt.Sprintf("%s-%s", year, num)
		}
	}

	return ""
}

// ExtractTrendWindow pulls a trend duration out of the question, converting
// years (x12) and quarters (x3) to months. It defaults to 3 months when no
// duration is named. Callers should only invoke it when a trend keyword is
// present.
func (c *Classifier) ExtractTrendWindow(question string) TrendWindow {
	lower := strings.ToLower(question)

	for _, pattern := range durationPatterns {
		match := pattern.re.FindStringSubmatch(lower)
		if match == nil {
			continue
		}

		count := pattern.fixed
		if count == 0 {
			n, err := strconv.Atoi(match[1])
			if err != nil {
				continue
			}
			count = n
		}

		switch pattern.kind {
		case durationYears:
			if count < 1 || count > 10 {
				continue
			}
			return TrendWindow{
				Months:        count * 12,
				DisplayPeriod: pluralize(count, "year"),
				Unit:          UnitYears,
			}
		case durationMonths:
			if count < 1 || count > 120 {
				continue
			}
			return TrendWindow{
				Months:        count,
				DisplayPeriod: pluralize(count, "month"),
				Unit:          UnitMonths,
			}
		case durationQuarters:
			return TrendWindow{
				Months:        count * 3,
				DisplayPeriod: pluralize(count, "quarter"),
				Unit:          UnitQuarters,
			}
		}
	}

	return TrendWindow{
		Months:        DefaultTrendMonths,
		DisplayPeriod: pluralize(DefaultTrendMonths, "month"),
		Unit:          UnitMonths,
	}
}

// scoreKeywords computes the relevance score for one keyword table: a full
// point per meaningful keyword present as a substring, plus 0.2 for every
// (question word, keyword phrase) pair where the word appears standalone in
// the phrase. Phrase and word matches deliberately double-count: questions
// containing several related terms score higher. Capped at 3.0.
func scoreKeywords(lowerQuestion string, keywords []string) float64 {
	score := 0.0

	for _, keyword := range keywords {
		if !strings.Contains(lowerQuestion, keyword) {
			continue
		}
		if len(keyword) > 3 || meaningfulShortTokens[keyword] {
			score += 1.0
		}
	}

	for _, word := range strings.Fields(lowerQuestion) {
		if len(word) <= 2 {
			continue
		}
		for _, keyword := range keywords {
			for _, keywordWord := range strings.Fields(keyword) {
				if word == keywordWord {
					score += 0.2
					break
				}
			}
		}
	}

	if score > maxConfidence {
		return maxConfidence
	}
	return score
}

func containsAny(s string, substrings []string) bool {
	for _, sub := range substrings {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func zeroPad(s string) string {
	if len(s) == 1 {
		return "0" + s
	}
	return s
}

func pluralize(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
