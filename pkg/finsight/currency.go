package finsight

import (
	"strings"

	"github.com/finsight/finsight-go/internal/dataset"
	"github.com/shopspring/decimal"
)

// converter normalizes (amount, currency, month) triples to USD. Conversion
// is best effort and never fails: an exact (month, currency) rate is used
// when present, otherwise the last-loaded rate for that currency, otherwise
// the amount passes through unchanged. The two fallback tiers log advisories.
type converter struct {
	rates  map[string]decimal.Decimal // "2025-06|EUR" -> rate
	latest map[string]decimal.Decimal // currency -> last-loaded rate
	log    Logger
}

func newConverter(fx []dataset.FXRate, log Logger) *converter {
	cv := &converter{
		rates:  make(map[string]decimal.Decimal, len(fx)),
		latest: make(map[string]decimal.Decimal),
		log:    log,
	}
	for _, rate := range fx {
		currency := strings.ToUpper(rate.Currency)
		cv.rates[rateKey(rate.Month, currency)] = rate.RateToUSD
		cv.latest[currency] = rate.RateToUSD
	}
	return cv
}

// ToUSD converts amount to USD for the given currency and month.
func (cv *converter) ToUSD(amount decimal.Decimal, currency string, month Month) decimal.Decimal {
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if currency == "" || currency == "USD" {
		return amount
	}

	if rate, ok := cv.rates[rateKey(month, currency)]; ok {
		return amount.Mul(rate)
	}

	if rate, ok := cv.latest[currency]; ok {
		cv.logWarn("using latest available FX rate",
			"currency", currency, "month", month.Key(), "rate", rate.String())
		return amount.Mul(rate)
	}

	cv.logWarn("no FX rate found, assuming USD", "currency", currency, "month", month.Key())
	return amount
}

func (cv *converter) logWarn(msg string, keysAndValues ...interface{}) {
	if cv.log != nil {
		cv.log.Warn(msg, keysAndValues...)
	}
}

func rateKey(month Month, currency string) string {
	return month.Key() + "|" + currency
}
