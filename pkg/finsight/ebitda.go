package finsight

import "github.com/shopspring/decimal"

// ebitdaService implements the EbitdaService interface
type ebitdaService struct {
	client *Client
}

// series aggregates revenue, COGS and OpEx independently per month and
// derives the EBITDA record for every month with revenue rows.
func (s *ebitdaService) series() ([]EbitdaEntry, error) {
	revenueRows := filterRows(s.client.store.Actuals, func(cat string) bool { return cat == categoryRevenue })
	if len(revenueRows) == 0 {
		return nil, notFoundError("no revenue data found for EBITDA calculation")
	}
	cogsRows := filterRows(s.client.store.Actuals, func(cat string) bool { return cat == categoryCOGS })
	opexRows := filterRows(s.client.store.Actuals, isOpexCategory)

	revenueByMonth := s.client.monthlySums(revenueRows)
	cogsByMonth := s.client.monthlySums(cogsRows)
	opexByMonth := s.client.monthlySums(opexRows)

	var entries []EbitdaEntry
	for _, key := range sortedKeys(revenueByMonth) {
		revenue := revenueByMonth[key]
		cogs := cogsByMonth[key]
		opex := opexByMonth[key]

		grossProfit := revenue.Sub(cogs)
		ebitda := revenue.Sub(cogs).Sub(opex)

		var grossMarginPct, ebitdaMarginPct float64
		if revenue.Sign() > 0 {
			grossMarginPct = grossProfit.Div(revenue).InexactFloat64() * 100
			ebitdaMarginPct = ebitda.Div(revenue).InexactFloat64() * 100
		}

		var status *Status
		switch {
		case revenue.Sign() <= 0:
			status = &Status{Code: StatusInvalid, Detail: "Zero or negative revenue"}
		case ebitda.Sign() < 0:
			status = &Status{Code: StatusWarning, Detail: "Negative EBITDA"}
		case ebitdaMarginPct < 10:
			status = &Status{Code: StatusAlert, Detail: "Low EBITDA margin (<10%)"}
		}

		entries = append(entries, EbitdaEntry{
			Month:               key,
			RevenueUSD:          revenue.InexactFloat64(),
			CogsUSD:             cogs.InexactFloat64(),
			OpexUSD:             opex.InexactFloat64(),
			GrossProfitUSD:      grossProfit.InexactFloat64(),
			EbitdaUSD:           ebitda.InexactFloat64(),
			GrossMarginPercent:  round1(grossMarginPct),
			EbitdaMarginPercent: round1(ebitdaMarginPct),
			Status:              status,
		})
	}

	return entries, nil
}

// GetMonth returns one month's EBITDA record including the audit breakdown.
func (s *ebitdaService) GetMonth(month string) (*EbitdaMonth, error) {
	entries, err := s.series()
	if err != nil {
		return nil, err
	}

	target, err := ParseMonth(month)
	if err != nil {
		return nil, invalidMonthError(err)
	}

	for _, entry := range entries {
		if entry.Month != target.Key() {
			continue
		}
		return &EbitdaMonth{
			EbitdaEntry:          entry,
			RevenueFormatted:     formatUSDFloat(entry.RevenueUSD),
			CogsFormatted:        formatUSDFloat(entry.CogsUSD),
			OpexFormatted:        formatUSDFloat(entry.OpexUSD),
			GrossProfitFormatted: formatUSDFloat(entry.GrossProfitUSD),
			EbitdaFormatted:      formatUSDFloat(entry.EbitdaUSD),
			Breakdown: CalculationBreakdown{
				Formula:      "EBITDA = Revenue - COGS - OpEx",
				Revenue:      formatUSDFloat(entry.RevenueUSD),
				MinusCogs:    formatUSDFloat(entry.CogsUSD),
				MinusOpex:    formatUSDFloat(entry.OpexUSD),
				EqualsEbitda: formatUSDFloat(entry.EbitdaUSD),
			},
		}, nil
	}

	return nil, monthNotFoundError("no EBITDA data found for %s", month)
}

// Trend returns the most recent lastN entries of the EBITDA series.
func (s *ebitdaService) Trend(lastN int) (*EbitdaTrend, error) {
	if lastN <= 0 {
		return nil, invalidInputError("last_n_months must be positive")
	}
	return s.trend(lastN)
}

// All returns the full EBITDA series.
func (s *ebitdaService) All() (*EbitdaTrend, error) {
	trend, err := s.trend(0)
	if err != nil {
		return nil, err
	}

	trend.Summary.TotalMonths = len(trend.Data)

	totalEbitda := decimal.Zero
	negative := 0
	for _, entry := range trend.Data {
		if entry.EbitdaUSD < 0 {
			negative++
		}
		if !entry.Status.IsInvalid() {
			totalEbitda = totalEbitda.Add(decimal.NewFromFloat(entry.EbitdaUSD))
		}
	}
	trend.Summary.TotalEbitdaUSD = formatUSD(totalEbitda)
	trend.Summary.MonthsWithNegativeEbitda = negative

	return trend, nil
}

func (s *ebitdaService) trend(lastNMonths int) (*EbitdaTrend, error) {
	entries, err := s.series()
	if err != nil {
		return nil, err
	}

	recent := entries
	if lastNMonths > 0 {
		recent = lastN(entries, lastNMonths)
	}
	if len(recent) == 0 {
		return nil, notFoundError("no EBITDA data available for trend analysis")
	}

	var valid []EbitdaEntry
	for _, entry := range recent {
		if !entry.Status.IsInvalid() {
			valid = append(valid, entry)
		}
	}

	var avgEbitdaMargin, avgGrossMargin float64
	var validMargins []float64
	if len(valid) > 0 {
		var ebitdaSum, grossSum float64
		for _, entry := range valid {
			ebitdaSum += entry.EbitdaMarginPercent
			grossSum += entry.GrossMarginPercent
			validMargins = append(validMargins, entry.EbitdaMarginPercent)
		}
		avgEbitdaMargin = round1(ebitdaSum / float64(len(valid)))
		avgGrossMargin = round1(grossSum / float64(len(valid)))
	}

	latest := recent[len(recent)-1]

	return &EbitdaTrend{
		TrendMonths: lastNMonths,
		Data:        recent,
		Summary: EbitdaSummary{
			AvgEbitdaMargin:    avgEbitdaMargin,
			AvgGrossMargin:     avgGrossMargin,
			LatestEbitdaMargin: latest.EbitdaMarginPercent,
			LatestEbitda:       formatUSDFloat(latest.EbitdaUSD),
			ValidMonths:        len(valid),
		},
		DataQuality: validateMarginConsistency(validMargins, "EBITDA Margin", DefaultQualityThreshold),
	}, nil
}
