package summary

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/billzio/billzio/internal/ledger"
)

func TestFormatOwnerMessage(t *testing.T) {
	date := time.Date(2025, 5, 20, 21, 0, 0, 0, time.UTC)
	sales := ledger.Summary{
		Total:  decimal.NewFromInt(150000),
		Cash:   decimal.NewFromInt(100000),
		UPI:    decimal.NewFromInt(40000),
		Credit: decimal.NewFromInt(10000),
		Count:  42,
	}

	msg := FormatOwnerMessage("Palani's Shop", date, sales, decimal.NewFromInt(2500))

	assert.Contains(t, msg, "Daily Summary - 20/05/2025")
	assert.Contains(t, msg, "Shop: Palani's Shop")
	// en-IN digit grouping: lakhs, not thousands
	assert.Contains(t, msg, "₹1,50,000")
	assert.Contains(t, msg, "Cash: ₹1,00,000")
	assert.Contains(t, msg, "UPI: ₹40,000")
	assert.Contains(t, msg, "Credit: ₹10,000")
	assert.Contains(t, msg, "Pending Collection:* ₹2,500")
	assert.Contains(t, msg, "Good night! 🌙")
}

func TestFormatAmountFractions(t *testing.T) {
	assert.Equal(t, "1,234.56", formatAmount(decimal.RequireFromString("1234.56")))
	assert.Equal(t, "0", formatAmount(decimal.Zero))
}
