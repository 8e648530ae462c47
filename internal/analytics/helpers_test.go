package analytics

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("bad decimal %q: %v", s, err)
	}
	return d
}

func tx(id, amount, date, desc string, categories ...string) Transaction {
	return Transaction{
		ID:          id,
		Amount:      decimal.RequireFromString(amount),
		Date:        date,
		Description: desc,
		Categories:  categories,
	}
}

func withMerchant(t Transaction, merchant string) Transaction {
	t.MerchantName = merchant
	return t
}

// rentScenario is the four-transaction batch used across the package tests.
func rentScenario() []Transaction {
	return []Transaction{
		tx("1", "-1200", "2024-01-01", "Rent", "Home"),
		tx("2", "-1200", "2024-02-01", "Rent", "Home"),
		tx("3", "-1200", "2024-03-01", "Rent", "Home"),
		tx("4", "3000", "2024-01-15", "Payroll", "Income"),
	}
}

func mustDate(t *testing.T, raw string) time.Time {
	t.Helper()
	at, err := ParseDate(raw)
	if err != nil {
		t.Fatalf("bad date %q: %v", raw, err)
	}
	return at
}
