package finsight

// marginService implements the MarginService interface
type marginService struct {
	client *Client
}

// series aggregates revenue and COGS independently per month and derives the
// margin record for every month that has revenue rows. COGS defaults to zero
// where absent so ratios never see a missing value.
func (s *marginService) series() ([]MarginEntry, error) {
	revenueRows := filterRows(s.client.store.Actuals, func(cat string) bool { return cat == categoryRevenue })
	if len(revenueRows) == 0 {
		return nil, notFoundError("no revenue data found for gross margin calculation")
	}
	cogsRows := filterRows(s.client.store.Actuals, func(cat string) bool { return cat == categoryCOGS })

	revenueByMonth := s.client.monthlySums(revenueRows)
	cogsByMonth := s.client.monthlySums(cogsRows)

	var entries []MarginEntry
	for _, key := range sortedKeys(revenueByMonth) {
		revenue := revenueByMonth[key]
		cogs := cogsByMonth[key] // zero when absent
		grossProfit := revenue.Sub(cogs)

		var marginPct float64
		var status *Status
		switch {
		case revenue.Sign() <= 0:
			status = &Status{Code: StatusInvalid, Detail: "Zero or negative revenue"}
		case cogs.Sign() < 0:
			status = &Status{Code: StatusWarning, Detail: "Negative COGS"}
		case cogs.GreaterThan(revenue):
			marginPct = grossProfit.Div(revenue).InexactFloat64() * 100
			status = &Status{Code: StatusWarning, Detail: "COGS exceeds revenue"}
		default:
			marginPct = grossProfit.Div(revenue).InexactFloat64() * 100
		}

		entries = append(entries, MarginEntry{
			Month:              key,
			RevenueUSD:         revenue.InexactFloat64(),
			CogsUSD:            cogs.InexactFloat64(),
			GrossProfitUSD:     grossProfit.InexactFloat64(),
			GrossMarginPercent: round1(marginPct),
			Status:             status,
		})
	}

	return entries, nil
}

// GetMonth returns one month's gross margin record.
func (s *marginService) GetMonth(month string) (*MarginMonth, error) {
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
		return &MarginMonth{
			MarginEntry:          entry,
			RevenueFormatted:     formatUSDFloat(entry.RevenueUSD),
			CogsFormatted:        formatUSDFloat(entry.CogsUSD),
			GrossProfitFormatted: formatUSDFloat(entry.GrossProfitUSD),
		}, nil
	}

	return nil, monthNotFoundError("no gross margin data found for %s", month)
}

// Trend returns the most recent lastN entries of the margin series. Fewer
// entries than requested is not an error.
func (s *marginService) Trend(lastN int) (*MarginTrend, error) {
	if lastN <= 0 {
		return nil, invalidInputError("last_n_months must be positive")
	}
	return s.trend(lastN)
}

// All returns the full margin series.
func (s *marginService) All() (*MarginTrend, error) {
	trend, err := s.trend(0)
	if err != nil {
		return nil, err
	}
	trend.Summary.TotalMonths = len(trend.Data)
	return trend, nil
}

func (s *marginService) trend(lastNMonths int) (*MarginTrend, error) {
	entries, err := s.series()
	if err != nil {
		return nil, err
	}

	recent := entries
	if lastNMonths > 0 {
		recent = lastN(entries, lastNMonths)
	}
	if len(recent) == 0 {
		return nil, notFoundError("no data available for trend analysis")
	}

	// Averages use only months with valid revenue.
	var validMargins []float64
	for _, entry := range recent {
		if !entry.Status.IsInvalid() {
			validMargins = append(validMargins, entry.GrossMarginPercent)
		}
	}

	avg := 0.0
	if len(validMargins) > 0 {
		sum := 0.0
		for _, m := range validMargins {
			sum += m
		}
		avg = round1(sum / float64(len(validMargins)))
	}

	return &MarginTrend{
		TrendMonths: lastNMonths,
		Data:        recent,
		Summary: MarginSummary{
			AvgMargin:    avg,
			LatestMargin: recent[len(recent)-1].GrossMarginPercent,
			ValidMonths:  len(validMargins),
		},
		DataQuality: validateMarginConsistency(validMargins, "Gross Margin", DefaultQualityThreshold),
	}, nil
}
