package dataset

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// monthLayouts are tried in order when parsing a month string.
var monthLayouts = []string{
	"2006-01",
	"January 2006",
	"01/2006",
	"2006/01",
	"2006-01-02",
}

// Month is a calendar month used as the key for all financial series.
// The underlying time is always the first day of the month in UTC.
type Month struct {
	time.Time
}

// ParseMonth parses strings like "2025-06", "June 2025" or "06/2025".
func ParseMonth(s string) (Month, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Month{}, fmt.Errorf("could not parse month: empty string, please use a format like '2025-06'")
	}
	for _, layout := range monthLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return NewMonth(t.Year(), t.Month()), nil
		}
	}
	return Month{}, fmt.Errorf("could not parse month: %q, please use a format like '2025-06'", s)
}

// NewMonth builds a Month from a year and month number.
func NewMonth(year int, month time.Month) Month {
	return Month{time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)}
}

// Key returns the canonical "YYYY-MM" form used to index series.
func (m Month) Key() string {
	if m.IsZero() {
		return ""
	}
	return m.Format("2006-01")
}

// Before reports whether m is chronologically before other.
func (m Month) Before(other Month) bool {
	return m.Time.Before(other.Time)
}

// UnmarshalJSON accepts "YYYY-MM" and full date strings.
func (m *Month) UnmarshalJSON(data []byte) error {
	str := strings.Trim(string(data), `"`)
	if str == "" || str == "null" {
		m.Time = time.Time{}
		return nil
	}
	parsed, err := ParseMonth(str)
	if err != nil {
		return err
	}
	m.Time = parsed.Time
	return nil
}

// MarshalJSON emits the canonical "YYYY-MM" form.
func (m Month) MarshalJSON() ([]byte, error) {
	if m.IsZero() {
		return []byte("null"), nil
	}
	return []byte(fmt.Sprintf("%q", m.Key())), nil
}

// String implements fmt.Stringer.
func (m Month) String() string {
	return m.Key()
}

// LedgerRow is one line item from the actuals or budget table.
// Many rows share a (month, entity, category) triple.
type LedgerRow struct {
	Month           Month           `json:"month"`
	Entity          string          `json:"entity"`
	AccountCategory string          `json:"account_category"`
	Currency        string          `json:"currency"`
	Amount          decimal.Decimal `json:"amount"`
}

// CashRow is one month-end cash balance snapshot. Rows from the source
// table may be missing the month or the balance; callers drop those.
type CashRow struct {
	Month   Month               `json:"month"`
	CashUSD decimal.NullDecimal `json:"cash_usd"`
}

// Valid reports whether the snapshot carries both a month and a balance.
func (r CashRow) Valid() bool {
	return !r.Month.IsZero() && r.CashUSD.Valid
}

// FXRate is one row of the sparse currency-to-USD rate table.
type FXRate struct {
	Month     Month           `json:"month"`
	Currency  string          `json:"currency"`
	RateToUSD decimal.Decimal `json:"rate_to_usd"`
}

// Store holds the four loaded tables. It is read-only after load and safe
// for concurrent readers.
type Store struct {
	Actuals []LedgerRow
	Budget  []LedgerRow
	Cash    []CashRow
	FX      []FXRate
}
