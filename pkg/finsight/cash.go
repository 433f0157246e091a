package finsight

import (
	"fmt"
	"math"
	"sort"

	"github.com/finsight/finsight-go/internal/dataset"
	"github.com/shopspring/decimal"
)

// Runway status thresholds in months.
const (
	runwayCritical = 6
	runwayWarning  = 12
	runwayCaution  = 18
)

// burnWindow is the maximum number of snapshots used for the burn average,
// yielding up to burnWindow-1 month-over-month burns.
const burnWindow = 4

// cashService implements the CashService interface
type cashService struct {
	client *Client
}

// Runway computes the average recent burn rate and months of cash remaining.
// An empty asOfMonth uses the latest snapshot.
func (s *cashService) Runway(asOfMonth string) (*CashRunway, error) {
	snapshots := validSnapshots(s.client.store.Cash)
	if len(snapshots) == 0 {
		return nil, notFoundError("no valid cash data found")
	}

	sort.Slice(snapshots, func(i, j int) bool { return snapshots[i].Month.Before(snapshots[j].Month) })

	window := snapshots
	var asOf Month
	if asOfMonth != "" {
		target, err := ParseMonth(asOfMonth)
		if err != nil {
			return nil, invalidMonthError(err)
		}

		idx := -1
		for i, snap := range snapshots {
			if snap.Month.Key() == target.Key() {
				idx = i
				break
			}
		}
		if idx < 0 {
			return nil, monthNotFoundError("no cash data found for %s", asOfMonth)
		}
		window = snapshots[:idx+1]
		asOf = target
	} else {
		asOf = snapshots[len(snapshots)-1].Month
	}

	if len(window) < 2 {
		return nil, insufficientDataError("need at least 2 months of cash data to calculate burn rate")
	}

	currentCash := window[len(window)-1].CashUSD.Decimal
	recent := lastN(window, burnWindow)

	burns := make([]decimal.Decimal, 0, len(recent)-1)
	details := make([]BurnDetail, 0, len(recent)-1)
	for i := 1; i < len(recent); i++ {
		prev := recent[i-1].CashUSD.Decimal
		curr := recent[i].CashUSD.Decimal
		burn := prev.Sub(curr) // positive = cash decreasing
		burns = append(burns, burn)
		details = append(details, BurnDetail{
			Month:     recent[i].Month.Key(),
			Burn:      burn.InexactFloat64(),
			BurnUSD:   formatUSD(burn),
			CashStart: formatUSD(prev),
			CashEnd:   formatUSD(curr),
		})
	}

	avgBurn := decimal.Zero
	for _, burn := range burns {
		avgBurn = avgBurn.Add(burn)
	}
	avgBurn = avgBurn.Div(decimal.NewFromInt(int64(len(burns))))

	result := &CashRunway{
		AsOfMonth:         asOf.Key(),
		CurrentCash:       currentCash.InexactFloat64(),
		CurrentCashUSD:    formatUSD(currentCash),
		AvgBurn:           avgBurn.InexactFloat64(),
		AvgMonthlyBurnUSD: formatUSD(avgBurn),
		BurnAnalysis: BurnAnalysis{
			MonthsAnalyzed: len(burns),
			MonthlyBurns:   details,
			BurnTrend:      burnTrend(burns),
		},
		Advisories: burnConsistencyAdvisories(burns),
	}

	if avgBurn.Sign() <= 0 {
		result.RunwayMonthsValue = math.Inf(1)
		result.RunwayMonths = "Infinite (Cash Flow Positive)"
		result.RunwayDetailed = "N/A - Growing Cash"
		result.DepletionDate = "Never (if current trend continues)"
		result.Status = "Infinite - company is cash flow positive or stable"
	} else {
		runwayMonths := currentCash.Div(avgBurn).InexactFloat64()
		whole := int(runwayMonths)

		result.RunwayMonthsValue = runwayMonths
		result.RunwayMonths = fmt.Sprintf("%.1f months", runwayMonths)
		result.RunwayDetailed = fmt.Sprintf("%d months, %d days", whole, int((runwayMonths-float64(whole))*30))
		// 30-day month approximation for the depletion estimate.
		result.DepletionDate = asOf.AddDate(0, 0, int(runwayMonths*30)).Format("2006-01-02")
		result.Status = runwayStatus(runwayMonths)
	}

	result.Recommendations = runwayRecommendations(result.RunwayMonthsValue)

	return result, nil
}

func validSnapshots(rows []dataset.CashRow) []dataset.CashRow {
	var out []dataset.CashRow
	for _, row := range rows {
		if row.Valid() {
			out = append(out, row)
		}
	}
	return out
}

func burnTrend(burns []decimal.Decimal) string {
	if len(burns) > 1 && burns[len(burns)-1].GreaterThan(burns[0]) {
		return "Increasing"
	}
	return "Stable/Decreasing"
}

func runwayStatus(runwayMonths float64) string {
	switch {
	case runwayMonths < runwayCritical:
		return "Critical: Less than 6 months runway"
	case runwayMonths < runwayWarning:
		return "Warning: Less than 12 months runway"
	case runwayMonths < runwayCaution:
		return "Caution: Less than 18 months runway"
	}
	return "Normal"
}

// runwayRecommendations is a deterministic list keyed off the runway bucket.
func runwayRecommendations(runwayMonths float64) []string {
	switch {
	case math.IsInf(runwayMonths, 1):
		return []string{
			"Excellent: Company is cash flow positive",
			"Consider investing excess cash or expanding operations",
		}
	case runwayMonths < runwayCritical:
		return []string{
			"URGENT: Immediate action required",
			"Consider emergency fundraising or cost reduction",
			"Review all non-essential expenses",
		}
	case runwayMonths < runwayWarning:
		return []string{
			"Start fundraising process immediately",
			"Review OpEx for potential cost savings",
			"Accelerate revenue initiatives",
		}
	case runwayMonths < runwayCaution:
		return []string{
			"Begin planning next funding round",
			"Monitor burn rate closely",
			"Optimize operational efficiency",
		}
	}
	return []string{
		"Healthy runway - continue monitoring",
		"Plan for future growth initiatives",
	}
}

// burnConsistencyAdvisories flags burns that sit within $1,000 of each
// other across the whole window, which usually means synthetic data.
func burnConsistencyAdvisories(burns []decimal.Decimal) []string {
	if len(burns) < 2 {
		return nil
	}
	tolerance := decimal.NewFromInt(1000)
	for _, burn := range burns {
		if burn.Sub(burns[0]).Abs().GreaterThanOrEqual(tolerance) {
			return nil
		}
	}
	return []string{"Cash burn rates are unusually consistent across months"}
}
