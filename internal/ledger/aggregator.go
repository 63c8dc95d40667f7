// Package ledger computes sales and credit summaries over bill records.
// All functions are pure: callers load the bills, this package reduces
// them. Monetary math is decimal throughout to keep two-decimal amounts
// exact.
package ledger

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/billzio/billzio/internal/domain"
)

// BillRecord is the slice of a bill the aggregator needs
type BillRecord struct {
	Total         decimal.Decimal
	Mode          string
	CustomerPhone string
	CreatedAt     time.Time
}

// Summary is the sales breakdown for a window of bills
type Summary struct {
	Total  decimal.Decimal `json:"total"`
	Cash   decimal.Decimal `json:"cash"`
	UPI    decimal.Decimal `json:"upi"`
	Credit decimal.Decimal `json:"credit"`
	Count  int             `json:"count"`
}

// CustomerBalance is the outstanding credit owed by one customer
type CustomerBalance struct {
	Phone      string          `json:"phone"`
	Due        decimal.Decimal `json:"due"`
	LastBillAt time.Time       `json:"last_bill_at"`
}

// FromBills converts stored bills into aggregator records
func FromBills(bills []domain.Bill) []BillRecord {
	records := make([]BillRecord, 0, len(bills))
	for _, b := range bills {
		records = append(records, BillRecord{
			Total:         b.TotalAmount,
			Mode:          b.PaymentMode,
			CustomerPhone: b.CustomerPhone,
			CreatedAt:     b.CreatedAt,
		})
	}
	return records
}

// Aggregate sums bills created at or after since. A zero since applies
// no window. Empty input yields a zero summary.
func Aggregate(bills []BillRecord, since time.Time) Summary {
	var s Summary
	for _, b := range bills {
		if !since.IsZero() && b.CreatedAt.Before(since) {
			continue
		}
		s.Total = s.Total.Add(b.Total)
		s.Count++
		switch b.Mode {
		case domain.PayModeCash:
			s.Cash = s.Cash.Add(b.Total)
		case domain.PayModeUPI:
			s.UPI = s.UPI.Add(b.Total)
		case domain.PayModeCredit:
			s.Credit = s.Credit.Add(b.Total)
		}
	}
	return s
}

// CreditBalances groups all-time credit bills by customer phone. Bills
// whose mode is not credit, or credit bills missing a phone, are ignored.
// Results are ordered by amount due descending, phone ascending on ties,
// so the same input always yields the same output.
func CreditBalances(bills []BillRecord) []CustomerBalance {
	byPhone := make(map[string]*CustomerBalance)
	for _, b := range bills {
		if b.Mode != domain.PayModeCredit || b.CustomerPhone == "" {
			continue
		}
		entry, ok := byPhone[b.CustomerPhone]
		if !ok {
			entry = &CustomerBalance{Phone: b.CustomerPhone}
			byPhone[b.CustomerPhone] = entry
		}
		entry.Due = entry.Due.Add(b.Total)
		if b.CreatedAt.After(entry.LastBillAt) {
			entry.LastBillAt = b.CreatedAt
		}
	}

	balances := make([]CustomerBalance, 0, len(byPhone))
	for _, entry := range byPhone {
		balances = append(balances, *entry)
	}
	sort.Slice(balances, func(i, j int) bool {
		if c := balances[i].Due.Cmp(balances[j].Due); c != 0 {
			return c > 0
		}
		return balances[i].Phone < balances[j].Phone
	})
	return balances
}

// TotalPending sums all outstanding credit balances
func TotalPending(balances []CustomerBalance) decimal.Decimal {
	var total decimal.Decimal
	for _, b := range balances {
		total = total.Add(b.Due)
	}
	return total
}

// DayStart returns midnight of the given instant in its location
func DayStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// MonthStart returns the first midnight of the month of the given instant
func MonthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}
