package finsight

import (
	"fmt"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/google/uuid"
)

// helpResponse is returned for questions the classifier cannot place.
const helpResponse = "**I can help with:**\n" +
	"- Revenue analysis (actual vs budget)\n" +
	"- Gross margin trends\n" +
	"- Operating expense breakdowns\n" +
	"- EBITDA calculations\n" +
	"- Cash runway analysis\n\n" +
	"**Try asking:**\n" +
	"- 'What was June 2025 revenue vs budget?'\n" +
	"- 'Show me gross margin trends for last 3 months'\n" +
	"- 'Break down OpEx by category for June'\n" +
	"- 'What's our current cash runway?'"

// helpSuggestions is the fixed example-question list for unknown questions.
var helpSuggestions = []string{
	"What was June 2025 revenue vs budget?",
	"Show me gross margin trends",
	"Break down OpEx by category",
	"What's our EBITDA for June?",
	"What's our current cash runway?",
}

const rephraseSuggestion = "Please try rephrasing your question or ask about revenue, margins, expenses, EBITDA, or cash runway."

// plannerService implements the PlannerService interface
type plannerService struct {
	client     *Client
	classifier *Classifier
}

func newPlannerService(client *Client) *plannerService {
	return &plannerService{
		client:     client,
		classifier: NewClassifierWithYear(client.referenceYear()),
	}
}

// Classify exposes the rule-based classification for a question.
func (s *plannerService) Classify(question string) *Classification {
	return s.classifier.Classify(question)
}

// Answer classifies the question, routes it to the matching calculator and
// renders a formatted response. Failures never propagate: calculator errors
// become Answer.Error, and anything that panics is recovered into a generic
// error-plus-suggestion pair.
func (s *plannerService) Answer(question string) (answer *Answer) {
	defer func() {
		if r := recover(); r != nil {
			err := calculationError("planner", fmt.Errorf("panic: %v", r))
			sentry.CaptureException(err)
			if log := s.client.logger(); log != nil {
				log.Error("recovered while answering question", "error", err)
			}
			answer = &Answer{
				Error:      fmt.Sprintf("Error processing question: %v", r),
				Suggestion: rephraseSuggestion,
			}
		}
	}()

	classification := s.classifier.Classify(question)

	switch classification.Intent {
	case IntentRevenue:
		return s.answerRevenue(classification)
	case IntentMargin:
		return s.answerMargin(classification)
	case IntentOpex:
		return s.answerOpex(classification)
	case IntentEbitda:
		return s.answerEbitda(classification)
	case IntentCash:
		return s.answerCash(classification)
	}
	return s.answerUnknown(question)
}

func errorAnswer(err error) *Answer {
	return &Answer{Error: err.Error()}
}

func (s *plannerService) answerRevenue(c *Classification) *Answer {
	if c.Month == "" {
		result, err := s.client.Revenue.Summary()
		if err != nil {
			return errorAnswer(err)
		}

		var b strings.Builder
		fmt.Fprintf(&b, "**Revenue Summary (%d months):**\n\n", result.MonthsCount)
		fmt.Fprintf(&b, "- Total Revenue: %s\n\n", result.TotalRevenueUSD)
		b.WriteString("**Monthly Breakdown:**\n")
		for _, month := range lastN(result.AllMonths, 6) {
			fmt.Fprintf(&b, "- %s: %s\n", month.Month, formatUSDFloat(month.AmountUSD))
		}

		return &Answer{Response: b.String(), Data: result}
	}

	result, err := s.client.Revenue.GetMonth(c.Month, c.VsBudget)
	if err != nil {
		return errorAnswer(err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "**Revenue Analysis for %s:**\n\n", result.Month)
	fmt.Fprintf(&b, "- Actual Revenue: %s\n", result.ActualRevenueUSD)

	if c.VsBudget && result.VariancePercent != "" {
		fmt.Fprintf(&b, "- Budget Revenue: %s\n", result.BudgetRevenueUSD)
		fmt.Fprintf(&b, "- Variance: %s (%s)\n", result.VarianceUSD, result.VariancePercent)

		variancePct := result.Variance / result.BudgetRevenue * 100
		b.WriteString(varianceComment(variancePct))
	} else if result.BudgetNote != "" {
		fmt.Fprintf(&b, "- Note: %s\n", result.BudgetNote)
	}

	return &Answer{Response: b.String(), Data: result}
}

// varianceComment ranks a budget variance by severity.
func varianceComment(variancePct float64) string {
	switch {
	case variancePct < -10:
		return "**Significantly under budget**"
	case variancePct < -5:
		return "**Slightly under budget**"
	case variancePct > 5:
		return "**Exceeding budget!**"
	}
	return "**On target**"
}

func (s *plannerService) answerMargin(c *Classification) *Answer {
	switch {
	case c.TrendAnalysis:
		result, err := s.client.Margins.Trend(c.TrendMonths)
		if err != nil {
			return errorAnswer(err)
		}

		var b strings.Builder
		fmt.Fprintf(&b, "**Gross Margin Trend (Last %s):**\n\n", displayPeriod(c))
		for _, entry := range result.Data {
			fmt.Fprintf(&b, "- %s: %s\n", entry.Month, formatPercent(entry.GrossMarginPercent))
		}
		fmt.Fprintf(&b, "\n**Average Margin:** %s\n", formatPercent(result.Summary.AvgMargin))
		fmt.Fprintf(&b, "**Latest Margin:** %s\n\n", formatPercent(result.Summary.LatestMargin))
		b.WriteString(marginComment(result.Summary.LatestMargin))
		writeQualityAlerts(&b, result.DataQuality)

		return &Answer{Response: b.String(), Data: result}

	case c.Month != "":
		result, err := s.client.Margins.GetMonth(c.Month)
		if err != nil {
			return errorAnswer(err)
		}

		var b strings.Builder
		fmt.Fprintf(&b, "**Gross Margin for %s:**\n\n", result.Month)
		fmt.Fprintf(&b, "- Revenue: %s\n", result.RevenueFormatted)
		fmt.Fprintf(&b, "- COGS: %s\n", result.CogsFormatted)
		fmt.Fprintf(&b, "- Gross Profit: %s\n", result.GrossProfitFormatted)
		fmt.Fprintf(&b, "- **Gross Margin: %s**\n", formatPercent(result.GrossMarginPercent))
		b.WriteString("\n" + marginComment(result.GrossMarginPercent))

		return &Answer{Response: b.String(), Data: result}
	}

	// Neither a trend nor a month: default to the standard trend window.
	return s.answerMargin(withDefaultTrend(c))
}

func marginComment(marginPct float64) string {
	switch {
	case marginPct > 70:
		return "**Excellent margin!**"
	case marginPct > 50:
		return "**Good margin**"
	case marginPct > 30:
		return "**Moderate margin**"
	}
	return "**Low margin - needs attention**"
}

func (s *plannerService) answerEbitda(c *Classification) *Answer {
	switch {
	case c.TrendAnalysis:
		result, err := s.client.Ebitda.Trend(c.TrendMonths)
		if err != nil {
			return errorAnswer(err)
		}

		var b strings.Builder
		fmt.Fprintf(&b, "**EBITDA Trend (Last %s):**\n\n", displayPeriod(c))
		for _, entry := range result.Data {
			fmt.Fprintf(&b, "- %s: %s (%s)%s\n",
				entry.Month, formatUSDFloat(entry.EbitdaUSD),
				formatPercent(entry.EbitdaMarginPercent), statusSuffix(entry.Status))
		}
		b.WriteString("\n**Summary:**\n")
		fmt.Fprintf(&b, "- Average EBITDA Margin: %s\n", formatPercent(result.Summary.AvgEbitdaMargin))
		fmt.Fprintf(&b, "- Latest EBITDA: %s\n\n", result.Summary.LatestEbitda)
		b.WriteString(ebitdaComment(result.Summary.LatestEbitdaMargin))
		writeQualityAlerts(&b, result.DataQuality)

		return &Answer{Response: b.String(), Data: result}

	case c.Month != "":
		result, err := s.client.Ebitda.GetMonth(c.Month)
		if err != nil {
			return errorAnswer(err)
		}

		var b strings.Builder
		fmt.Fprintf(&b, "**EBITDA Analysis for %s:**\n\n", result.Month)
		fmt.Fprintf(&b, "- Revenue: %s\n", result.RevenueFormatted)
		fmt.Fprintf(&b, "- COGS: %s\n", result.CogsFormatted)
		fmt.Fprintf(&b, "- OpEx: %s\n", result.OpexFormatted)
		fmt.Fprintf(&b, "- **EBITDA: %s (%s)**\n", result.EbitdaFormatted, formatPercent(result.EbitdaMarginPercent))
		b.WriteString("\n" + ebitdaComment(result.EbitdaMarginPercent))

		return &Answer{Response: b.String(), Data: result}
	}

	return s.answerEbitda(withDefaultTrend(c))
}

func ebitdaComment(marginPct float64) string {
	switch {
	case marginPct > 30:
		return "**Excellent profitability!**"
	case marginPct > 15:
		return "**Good profitability**"
	case marginPct > 5:
		return "**Moderate profitability**"
	}
	return "**Low profitability - needs attention**"
}

func (s *plannerService) answerOpex(c *Classification) *Answer {
	if c.Month == "" {
		result, err := s.client.Opex.Summary()
		if err != nil {
			return errorAnswer(err)
		}

		var b strings.Builder
		b.WriteString("**OpEx Summary (All Time):**\n\n")
		fmt.Fprintf(&b, "**Total OpEx: %s**\n\n", result.TotalOpexUSD)
		b.WriteString("**Top Categories:**\n")
		for i, category := range result.CategoryBreakdown {
			if i >= 5 {
				break
			}
			fmt.Fprintf(&b, "- %s: %s (%s)\n", category.Category, category.AmountUSD, category.Percentage)
		}

		return &Answer{Response: b.String(), Data: result}
	}

	if c.ByEntity {
		result, err := s.client.Opex.BreakdownByEntity(c.Month)
		if err != nil {
			return errorAnswer(err)
		}

		var b strings.Builder
		fmt.Fprintf(&b, "**OpEx Breakdown for %s:**\n\n", result.Month)
		fmt.Fprintf(&b, "**Total OpEx: %s**\n\n", result.TotalOpexUSD)
		for _, category := range result.Categories {
			fmt.Fprintf(&b, "**%s:** %s\n", category.Category, category.TotalFormatted)
			for _, entity := range category.Entities {
				fmt.Fprintf(&b, "  - %s: %s\n", entity.Entity, entity.Formatted)
			}
		}

		return &Answer{Response: b.String(), Data: result}
	}

	result, err := s.client.Opex.Breakdown(c.Month)
	if err != nil {
		return errorAnswer(err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "**OpEx Breakdown for %s:**\n\n", result.Month)
	fmt.Fprintf(&b, "**Total OpEx: %s**\n\n", result.TotalOpexUSD)
	b.WriteString("**By Category:**\n")
	for _, category := range result.Breakdown {
		fmt.Fprintf(&b, "- %s: %s (%s)\n", category.Category, category.AmountUSD, category.Percentage)
	}

	return &Answer{Response: b.String(), Data: result}
}

func (s *plannerService) answerCash(c *Classification) *Answer {
	result, err := s.client.Cash.Runway(c.Month)
	if err != nil {
		return errorAnswer(err)
	}

	var b strings.Builder
	b.WriteString("**Cash Runway Analysis:**\n\n")
	fmt.Fprintf(&b, "- Current Cash: %s\n", result.CurrentCashUSD)
	fmt.Fprintf(&b, "- Monthly Burn Rate: %s\n", result.AvgMonthlyBurnUSD)
	fmt.Fprintf(&b, "- **Runway: %s**\n", result.RunwayMonths)
	fmt.Fprintf(&b, "- Estimated Depletion: %s\n", result.DepletionDate)
	fmt.Fprintf(&b, "- Status: %s\n\n", result.Status)

	b.WriteString("**Recent Burn Analysis:**\n")
	for _, burn := range result.BurnAnalysis.MonthlyBurns {
		fmt.Fprintf(&b, "- %s: %s burn\n", burn.Month, burn.BurnUSD)
	}

	b.WriteString("\n**Recommendations:**\n")
	for i, rec := range result.Recommendations {
		fmt.Fprintf(&b, "%d. %s\n", i+1, rec)
	}

	return &Answer{Response: b.String(), Data: result}
}

// answerUnknown returns the fixed help payload. Low confidence is not an
// error condition.
func (s *plannerService) answerUnknown(question string) *Answer {
	return &Answer{
		Response:    fmt.Sprintf("I'm not sure how to answer: '%s'\n\n%s", question, helpResponse),
		Suggestions: helpSuggestions,
	}
}

// displayPeriod prefers the unit the question actually used.
func displayPeriod(c *Classification) string {
	if c.DisplayPeriod != "" {
		return c.DisplayPeriod
	}
	return pluralize(c.TrendMonths, "month")
}

// withDefaultTrend copies the classification with the default trend window
// forced on.
func withDefaultTrend(c *Classification) *Classification {
	forced := *c
	forced.TrendAnalysis = true
	forced.TrendMonths = DefaultTrendMonths
	forced.DisplayPeriod = pluralize(DefaultTrendMonths, "month")
	forced.OriginalUnit = UnitMonths
	return &forced
}

func statusSuffix(status *Status) string {
	if status == nil {
		return ""
	}
	return fmt.Sprintf(" (%s)", status.String())
}

func writeQualityAlerts(b *strings.Builder, quality *QualityReport) {
	if quality == nil || len(quality.Warnings) == 0 {
		return
	}
	b.WriteString("\n\n**Data Quality Alerts:**\n")
	for _, warning := range quality.Warnings {
		fmt.Fprintf(b, "- %s\n", warning)
	}
}

// Dashboard renders the executive composite view: revenue vs budget,
// profitability, cost structure and runway for the latest month, with an
// overall health score.
func (s *plannerService) Dashboard() (answer *Answer) {
	defer func() {
		if r := recover(); r != nil {
			err := calculationError("dashboard", fmt.Errorf("panic: %v", r))
			sentry.CaptureException(err)
			answer = &Answer{
				Error:      fmt.Sprintf("Error generating executive dashboard: %v", r),
				Suggestion: "Please try asking about specific metrics like revenue, margins, or cash runway.",
			}
		}
	}()

	month := s.latestMonth()
	if month == "" {
		return &Answer{
			Error:      "No financial data available for the dashboard",
			Suggestion: "Please try asking about specific metrics like revenue, margins, or cash runway.",
		}
	}

	var b strings.Builder
	b.WriteString("# Executive Financial Dashboard\n\n")

	data := map[string]interface{}{
		"dashboard_type": "executive_overview",
		"analysis_month": month,
	}
	var healthy, total int

	revenue, err := s.client.Revenue.GetMonth(month, true)
	if err == nil {
		data["revenue"] = revenue
		b.WriteString("## Revenue Performance\n")
		fmt.Fprintf(&b, "- **Latest Month (%s):** %s\n", month, revenue.ActualRevenueUSD)
		if revenue.VariancePercent != "" {
			variancePct := revenue.Variance / revenue.BudgetRevenue * 100
			label := "On Track"
			if variancePct > 0 {
				label = "Above Budget"
			} else if variancePct < -5 {
				label = "Below Budget"
			}
			fmt.Fprintf(&b, "- **vs Budget:** %s (%s) %s\n\n", revenue.VarianceUSD, revenue.VariancePercent, label)

			total++
			if variancePct > -10 {
				healthy++
			}
		} else {
			b.WriteString("\n")
		}
	}

	ebitda, ebitdaErr := s.client.Ebitda.GetMonth(month)
	margin, marginErr := s.client.Margins.GetMonth(month)
	if ebitdaErr == nil && marginErr == nil {
		data["ebitda"] = ebitda
		data["margin"] = margin
		b.WriteString("## Profitability Health\n")
		fmt.Fprintf(&b, "- **Gross Margin:** %s\n", formatPercent(margin.GrossMarginPercent))
		fmt.Fprintf(&b, "- **EBITDA:** %s (%s)\n", ebitda.EbitdaFormatted, formatPercent(ebitda.EbitdaMarginPercent))

		switch {
		case ebitda.EbitdaMarginPercent > 30:
			b.WriteString("- **Status:** Excellent profitability\n\n")
		case ebitda.EbitdaMarginPercent > 15:
			b.WriteString("- **Status:** Good profitability\n\n")
		default:
			b.WriteString("- **Status:** Profitability needs attention\n\n")
		}

		total++
		if ebitda.EbitdaMarginPercent > 20 {
			healthy++
		}
	}

	opex, opexErr := s.client.Opex.Breakdown(month)
	if opexErr == nil {
		data["opex"] = opex
		b.WriteString("## Cost Structure\n")
		fmt.Fprintf(&b, "- **Total OpEx:** %s\n", opex.TotalOpexUSD)
		b.WriteString("- **Top Categories:**\n")
		for i, category := range opex.Breakdown {
			if i >= 3 {
				break
			}
			fmt.Fprintf(&b, "  - %s: %s (%s)\n", category.Category, category.AmountUSD, category.Percentage)
		}
		b.WriteString("\n")
	}

	cash, cashErr := s.client.Cash.Runway("")
	if cashErr == nil {
		data["cash"] = cash
		b.WriteString("## Cash & Runway\n")
		fmt.Fprintf(&b, "- **Current Cash:** %s\n", cash.CurrentCashUSD)
		fmt.Fprintf(&b, "- **Monthly Burn:** %s\n", cash.AvgMonthlyBurnUSD)
		fmt.Fprintf(&b, "- **Runway:** %s\n", cash.RunwayMonths)

		switch {
		case cash.RunwayMonthsValue > 18:
			b.WriteString("- **Status:** Strong cash position\n\n")
		case cash.RunwayMonthsValue > 12:
			b.WriteString("- **Status:** Adequate runway\n\n")
		case cash.RunwayMonthsValue > 6:
			b.WriteString("- **Status:** Monitor closely\n\n")
		default:
			b.WriteString("- **Status:** Critical - need funding\n\n")
		}

		total++
		if cash.RunwayMonthsValue > 12 {
			healthy++
		}
	}

	b.WriteString("## Executive Summary\n")
	if healthy >= 2 {
		b.WriteString("**Overall Assessment:** **Strong Performance** - Company fundamentals are solid\n\n")
		b.WriteString("**Key Recommendations:**\n")
		b.WriteString("1. Continue current growth trajectory\n")
		b.WriteString("2. Consider strategic investments or expansion\n")
		b.WriteString("3. Monitor market opportunities\n")
	} else {
		b.WriteString("**Overall Assessment:** **Areas Need Attention** - Some metrics require focus\n\n")
		b.WriteString("**Key Recommendations:**\n")
		b.WriteString("1. Review underperforming metrics closely\n")
		b.WriteString("2. Consider cost optimization strategies\n")
		b.WriteString("3. Accelerate revenue initiatives if needed\n")
	}

	data["health_score"] = fmt.Sprintf("%d/%d", healthy, total)

	return &Answer{Response: b.String(), Data: data}
}

// latestMonth finds the most recent month key in the revenue series.
func (s *plannerService) latestMonth() string {
	rows := filterRows(s.client.store.Actuals, func(cat string) bool { return cat == categoryRevenue })
	latest := ""
	for _, row := range rows {
		if key := row.Month.Key(); key > latest {
			latest = key
		}
	}
	return latest
}

// Session is an append-only conversation history scoped to one interactive
// session. It is not safe for concurrent use.
type Session struct {
	ID      string     `json:"id"`
	History []Exchange `json:"history"`

	planner PlannerService
}

// NewSession starts a conversation with an empty history.
func (s *plannerService) NewSession() *Session {
	return &Session{
		ID:      uuid.NewString(),
		planner: s,
	}
}

// Ask answers the question and appends the exchange to the history.
func (s *Session) Ask(question string) *Answer {
	answer := s.planner.Answer(question)
	s.History = append(s.History, Exchange{
		Question: question,
		Answer:   answer,
		AskedAt:  time.Now(),
	})
	return answer
}
