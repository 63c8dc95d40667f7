package ledger

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/billzio/billzio/internal/domain"
)

func rec(total int64, mode, phone string, at time.Time) BillRecord {
	return BillRecord{
		Total:         decimal.NewFromInt(total),
		Mode:          mode,
		CustomerPhone: phone,
		CreatedAt:     at,
	}
}

func TestAggregateBreakdown(t *testing.T) {
	day := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	bills := []BillRecord{
		rec(1000, domain.PayModeCash, "", day),
		rec(500, domain.PayModeUPI, "", day.Add(time.Hour)),
		rec(250, domain.PayModeCredit, "9876500001", day.Add(2*time.Hour)),
	}

	s := Aggregate(bills, time.Time{})
	assert.Equal(t, "1750", s.Total.String())
	assert.Equal(t, "1000", s.Cash.String())
	assert.Equal(t, "500", s.UPI.String())
	assert.Equal(t, "250", s.Credit.String())
	assert.Equal(t, 3, s.Count)
}

func TestAggregateWindow(t *testing.T) {
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	bills := []BillRecord{
		rec(100, domain.PayModeCash, "", day.Add(-time.Hour)), // yesterday
		rec(200, domain.PayModeCash, "", day.Add(time.Hour)),
	}

	s := Aggregate(bills, day)
	assert.Equal(t, "200", s.Total.String())
	assert.Equal(t, 1, s.Count)

	// zero since applies no window
	all := Aggregate(bills, time.Time{})
	assert.Equal(t, "300", all.Total.String())
}

func TestAggregateEmpty(t *testing.T) {
	s := Aggregate(nil, time.Time{})
	assert.True(t, s.Total.IsZero())
	assert.Equal(t, 0, s.Count)
}

func TestCreditBalancesGroupAndOrder(t *testing.T) {
	day := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	bills := []BillRecord{
		rec(100, domain.PayModeCredit, "9000000002", day),
		rec(300, domain.PayModeCredit, "9000000001", day.Add(time.Hour)),
		rec(250, domain.PayModeCredit, "9000000002", day.Add(2*time.Hour)),
		rec(999, domain.PayModeCash, "9000000003", day), // not credit
		rec(50, domain.PayModeCredit, "", day),          // no phone
	}

	balances := CreditBalances(bills)
	assert.Len(t, balances, 2)
	assert.Equal(t, "9000000002", balances[0].Phone)
	assert.Equal(t, "350", balances[0].Due.String())
	assert.Equal(t, "9000000001", balances[1].Phone)
	assert.Equal(t, "300", balances[1].Due.String())

	assert.Equal(t, "650", TotalPending(balances).String())
}

func TestCreditBalancesTieBreakByPhone(t *testing.T) {
	day := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	bills := []BillRecord{
		rec(100, domain.PayModeCredit, "9000000009", day),
		rec(100, domain.PayModeCredit, "9000000001", day),
	}

	balances := CreditBalances(bills)
	assert.Equal(t, "9000000001", balances[0].Phone)
	assert.Equal(t, "9000000009", balances[1].Phone)
}

func TestDayAndMonthStart(t *testing.T) {
	loc := time.FixedZone("IST", 5*3600+1800)
	at := time.Date(2025, 3, 10, 23, 45, 12, 0, loc)

	assert.Equal(t, time.Date(2025, 3, 10, 0, 0, 0, 0, loc), DayStart(at))
	assert.Equal(t, time.Date(2025, 3, 1, 0, 0, 0, 0, loc), MonthStart(at))
}

func TestFromBills(t *testing.T) {
	day := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	bills := []domain.Bill{{
		TotalAmount:   decimal.RequireFromString("123.45"),
		PaymentMode:   domain.PayModeUPI,
		CustomerPhone: "9000000001",
		CreatedAt:     day,
	}}

	records := FromBills(bills)
	assert.Len(t, records, 1)
	assert.Equal(t, "123.45", records[0].Total.String())
	assert.Equal(t, domain.PayModeUPI, records[0].Mode)
	assert.Equal(t, day, records[0].CreatedAt)
}
