package notify

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/billzio/billzio/config"
)

type recordingDispatcher struct {
	recipient string
	message   string
	calls     int
}

func (d *recordingDispatcher) Send(_ context.Context, recipient, message string) error {
	d.recipient = recipient
	d.message = message
	d.calls++
	return nil
}

func TestBillCreatedHandlerShares(t *testing.T) {
	d := &recordingDispatcher{}
	handler := BillCreatedHandler(d)

	handler(BillCreatedEvent{
		ShopName:      "Palani's Shop",
		CustomerPhone: "9876500001",
		Total:         decimal.RequireFromString("166.00"),
		Shareable:     true,
	})

	assert.Equal(t, 1, d.calls)
	assert.Equal(t, "9876500001", d.recipient)
	assert.Equal(t, "Bill from Palani's Shop: Total ₹166.00. Thanks for visiting!", d.message)
}

func TestBillCreatedHandlerSkips(t *testing.T) {
	d := &recordingDispatcher{}
	handler := BillCreatedHandler(d)

	// free plan bill: not shareable
	handler(BillCreatedEvent{ShopName: "Shop", CustomerPhone: "9876500001", Shareable: false})
	// no customer phone on the bill
	handler(BillCreatedEvent{ShopName: "Shop", Shareable: true})

	assert.Zero(t, d.calls)
}

func TestNewFromConfigFallsBackToLog(t *testing.T) {
	d := NewFromConfig(config.NotifyConfig{Channel: "smtp"})
	assert.IsType(t, LogDispatcher{}, d)

	d = NewFromConfig(config.NotifyConfig{Channel: "log"})
	assert.IsType(t, LogDispatcher{}, d)

	d = NewFromConfig(config.NotifyConfig{Channel: "smtp", SmtpHost: "mail.example.com"})
	assert.IsType(t, &MailDispatcher{}, d)
}
