package dataset

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// File names expected inside a data directory.
const (
	ActualsFile = "actuals.csv"
	BudgetFile  = "budget.csv"
	CashFile    = "cash.csv"
	FXFile      = "fx.csv"
)

// LoadDir reads the four CSV tables from dir.
func LoadDir(dir string) (*Store, error) {
	store := &Store{}

	actuals, err := loadLedgerFile(filepath.Join(dir, ActualsFile))
	if err != nil {
		return nil, errors.Wrap(err, "failed to load actuals")
	}
	store.Actuals = actuals

	budget, err := loadLedgerFile(filepath.Join(dir, BudgetFile))
	if err != nil {
		return nil, errors.Wrap(err, "failed to load budget")
	}
	store.Budget = budget

	cash, err := loadCashFile(filepath.Join(dir, CashFile))
	if err != nil {
		return nil, errors.Wrap(err, "failed to load cash")
	}
	store.Cash = cash

	fx, err := loadFXFile(filepath.Join(dir, FXFile))
	if err != nil {
		return nil, errors.Wrap(err, "failed to load fx rates")
	}
	store.FX = fx

	return store, nil
}

func loadLedgerFile(path string) ([]LedgerRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadLedger(f)
}

func loadCashFile(path string) ([]CashRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadCash(f)
}

func loadFXFile(path string) ([]FXRate, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadFX(f)
}

// ReadLedger parses ledger rows (actuals or budget) from CSV with a
// month,entity,account_category,currency,amount header.
func ReadLedger(r io.Reader) ([]LedgerRow, error) {
	records, cols, err := readTable(r)
	if err != nil {
		return nil, err
	}

	var rows []LedgerRow
	for i, rec := range records {
		month, err := ParseMonth(field(rec, cols, "month"))
		if err != nil {
			return nil, errors.Wrapf(err, "row %d", i+2)
		}

		amount, err := parseAmount(field(rec, cols, "amount"))
		if err != nil {
			return nil, errors.Wrapf(err, "row %d", i+2)
		}

		rows = append(rows, LedgerRow{
			Month:           month,
			Entity:          field(rec, cols, "entity"),
			AccountCategory: field(rec, cols, "account_category"),
			Currency:        strings.ToUpper(field(rec, cols, "currency")),
			Amount:          amount,
		})
	}
	return rows, nil
}

// ReadCash parses cash snapshots from CSV with a month,cash_usd header.
// Rows with an unparseable month or missing balance are kept with the
// corresponding field unset; the runway calculator drops them.
func ReadCash(r io.Reader) ([]CashRow, error) {
	records, cols, err := readTable(r)
	if err != nil {
		return nil, err
	}

	var rows []CashRow
	for _, rec := range records {
		row := CashRow{}
		if month, err := ParseMonth(field(rec, cols, "month")); err == nil {
			row.Month = month
		}
		if raw := strings.TrimSpace(field(rec, cols, "cash_usd")); raw != "" {
			if amount, err := decimal.NewFromString(raw); err == nil {
				row.CashUSD = decimal.NewNullDecimal(amount)
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// ReadFX parses FX rates from CSV with a month,currency,rate_to_usd header.
func ReadFX(r io.Reader) ([]FXRate, error) {
	records, cols, err := readTable(r)
	if err != nil {
		return nil, err
	}

	var rows []FXRate
	for i, rec := range records {
		month, err := ParseMonth(field(rec, cols, "month"))
		if err != nil {
			return nil, errors.Wrapf(err, "row %d", i+2)
		}

		rate, err := decimal.NewFromString(strings.TrimSpace(field(rec, cols, "rate_to_usd")))
		if err != nil {
			return nil, errors.Wrapf(err, "row %d: invalid rate", i+2)
		}

		rows = append(rows, FXRate{
			Month:     month,
			Currency:  strings.ToUpper(field(rec, cols, "currency")),
			RateToUSD: rate,
		})
	}
	return rows, nil
}

// readTable reads all CSV records and returns them with a header index.
func readTable(r io.Reader) ([][]string, map[string]int, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to read csv")
	}
	if len(records) == 0 {
		return nil, nil, errors.New("csv is empty")
	}

	cols := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}

	return records[1:], cols, nil
}

func field(rec []string, cols map[string]int, name string) string {
	idx, ok := cols[name]
	if !ok || idx >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[idx])
}

// parseAmount converts an amount cell to a decimal, treating blanks as zero.
func parseAmount(raw string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, nil
	}
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, errors.Wrapf(err, "invalid amount %q", raw)
	}
	return amount, nil
}
