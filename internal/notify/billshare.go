package notify

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// BillCreatedEvent is published on the application bus after a bill is
// written. Shareable is the shop's whatsapp_customer_bill entitlement at
// creation time.
type BillCreatedEvent struct {
	ShopName      string
	CustomerPhone string
	Total         decimal.Decimal
	Shareable     bool
}

// TopicBillCreated is the bus topic for BillCreatedEvent
const TopicBillCreated = "bill.created"

// BillCreatedHandler returns a bus subscriber that shares the bill total
// with the customer, for shops whose plan includes customer bill share.
func BillCreatedHandler(dispatcher Dispatcher) func(evt BillCreatedEvent) {
	return func(evt BillCreatedEvent) {
		if !evt.Shareable || evt.CustomerPhone == "" {
			return
		}
		message := fmt.Sprintf("Bill from %s: Total ₹%s. Thanks for visiting!",
			evt.ShopName, evt.Total.StringFixed(2))
		if err := dispatcher.Send(context.Background(), evt.CustomerPhone, message); err != nil {
			zap.L().Warn("customer bill share failed",
				zap.String("recipient", evt.CustomerPhone),
				zap.Error(err))
		}
	}
}
