package analytics

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	// minOccurrences is the group size at which a payment counts as recurring.
	minOccurrences = 3
	// recurringLimit caps the number of recurring groups returned.
	recurringLimit = 10
)

// NormalizeMerchantKey lowercases s and drops every character outside
// [a-z0-9], so "STARBUCKS #4821" and "Starbucks   4821" share a key.
func NormalizeMerchantKey(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		}
		return -1
	}, s)
}

type occurrence struct {
	tx     Transaction
	at     time.Time
	parsed bool
}

// DetectRecurring groups settled outflows by normalized description and
// returns the groups seen at least three times, largest total first.
// An empty batch yields an empty, non-nil result.
func DetectRecurring(txns []Transaction) []RecurringTransaction {
	var keys []string
	groups := make(map[string][]occurrence)

	for _, tx := range txns {
		if tx.Pending || !tx.IsOutflow() {
			continue
		}
		key := NormalizeMerchantKey(tx.Description)
		at, err := ParseDate(tx.Date)
		if _, ok := groups[key]; !ok {
			keys = append(keys, key)
		}
		groups[key] = append(groups[key], occurrence{tx: tx, at: at, parsed: err == nil})
	}

	result := make([]RecurringTransaction, 0)
	for _, key := range keys {
		members := groups[key]
		if len(members) < minOccurrences {
			continue
		}
		result = append(result, summarizeGroup(members))
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].TotalAmount.GreaterThan(result[j].TotalAmount)
	})
	if len(result) > recurringLimit {
		result = result[:recurringLimit]
	}
	return result
}

func summarizeGroup(members []occurrence) RecurringTransaction {
	ordered := make([]occurrence, len(members))
	copy(ordered, members)
	sort.SliceStable(ordered, func(i, j int) bool {
		a, b := ordered[i], ordered[j]
		if a.parsed != b.parsed {
			return a.parsed
		}
		return a.at.Before(b.at)
	})

	total := decimal.Zero
	for _, m := range ordered {
		total = total.Add(m.tx.Amount.Abs())
	}

	latest := ordered[0]
	for _, m := range ordered[1:] {
		if m.parsed && !m.at.Before(latest.at) {
			latest = m
		}
	}

	return RecurringTransaction{
		Name:         ordered[0].tx.Description,
		Amount:       total.Div(decimal.NewFromInt(int64(len(ordered)))),
		Frequency:    classifyFrequency(ordered),
		NextExpected: latest.tx.Date,
		Occurrences:  len(ordered),
		TotalAmount:  total,
	}
}

// classifyFrequency guesses a cadence from markers in the raw date strings.
// It does not look at the spacing between occurrences.
func classifyFrequency(members []occurrence) Frequency {
	for _, m := range members {
		if strings.Contains(m.tx.Date, "-W") {
			return FrequencyWeekly
		}
	}
	for _, m := range members {
		if strings.Contains(m.tx.Date, "-Q") {
			return FrequencyQuarterly
		}
	}
	return FrequencyMonthly
}
