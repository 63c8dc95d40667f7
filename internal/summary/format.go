package summary

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/billzio/billzio/internal/ledger"
)

// en-IN printer: lakh/crore digit grouping for rupee figures
var inPrinter = message.NewPrinter(language.MustParse("en-IN"))

func formatAmount(d decimal.Decimal) string {
	f, _ := d.Float64()
	return inPrinter.Sprintf("%v", number.Decimal(f, number.MaxFractionDigits(2)))
}

// FormatOwnerMessage renders the end-of-day summary sent to a shop owner
func FormatOwnerMessage(shopName string, date time.Time, sales ledger.Summary, pending decimal.Decimal) string {
	return fmt.Sprintf(`📅 *Daily Summary - %s*
Shop: %s

✅ *Total Sales:* ₹%s

💵 Cash: ₹%s
📱 UPI: ₹%s
📝 Credit: ₹%s

⚠️ *Total Pending Collection:* ₹%s

Good night! 🌙`,
		date.Format("02/01/2006"),
		shopName,
		formatAmount(sales.Total),
		formatAmount(sales.Cash),
		formatAmount(sales.UPI),
		formatAmount(sales.Credit),
		formatAmount(pending),
	)
}
