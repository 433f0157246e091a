package finsight

import "math"

// DefaultQualityThreshold is the standard-deviation floor below which a
// margin series is flagged as suspiciously consistent.
const DefaultQualityThreshold = 2.0

// validateMarginConsistency inspects a margin series for patterns that look
// like synthetic or demo data: near-zero variance, identical values, or
// implausibly high averages. It returns nil when fewer than three values are
// available or nothing is suspicious. All triggered warnings are reported
// together; callers surface them as a non-blocking advisory, never an error.
func validateMarginConsistency(values []float64, metricName string, threshold float64) *QualityReport {
	if len(values) < 3 {
		return nil
	}

	mean := meanOf(values)
	stdDev := sampleStdDev(values, mean)
	min, max := minMax(values)
	valueRange := max - min

	var warnings []string

	if stdDev < threshold {
		warnings = append(warnings, metricName+" shows unusually low variation (std dev: "+formatPercent(stdDev)+")")
	}

	if valueRange == 0 {
		warnings = append(warnings, "All "+metricName+" values are identical ("+formatPercent(mean)+")")
	}

	if metricName == "Gross Margin" && mean > 80 {
		warnings = append(warnings, metricName+" average ("+formatPercent(mean)+") is unusually high for most businesses")
	} else if metricName == "EBITDA Margin" && mean > 40 {
		warnings = append(warnings, metricName+" average ("+formatPercent(mean)+") is unusually high for most businesses")
	}

	if valueRange < 1.0 && stdDev < 0.5 {
		warnings = append(warnings, metricName+" varies by less than 1% across all periods (range: "+formatPercent(valueRange)+")")
	}

	if len(warnings) == 0 {
		return nil
	}

	return &QualityReport{
		Warnings: warnings,
		Statistics: QualityStats{
			Mean:   round2(mean),
			StdDev: round2(stdDev),
			Min:    min,
			Max:    max,
			Range:  round2(valueRange),
		},
	}
}

func meanOf(values []float64) float64 {
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// sampleStdDev is the n-1 standard deviation.
func sampleStdDev(values []float64, mean float64) float64 {
	if len(values) < 2 {
		return 0
	}
	var sq float64
	for _, v := range values {
		d := v - mean
		sq += d * d
	}
	return math.Sqrt(sq / float64(len(values)-1))
}

func minMax(values []float64) (float64, float64) {
	min, max := values[0], values[0]
	for _, v := range values[1:] {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	return min, max
}
