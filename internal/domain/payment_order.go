package domain

import "time"

const (
	PaymentOrderCreated = "created"
	PaymentOrderPaid    = "paid"
	PaymentOrderFailed  = "failed"
)

// PaymentOrder is the audit trail of gateway order creation and
// verification. Amount is in minor currency units (paise).
type PaymentOrder struct {
	ID             int64     `json:"id,string"`
	ShopID         int64     `gorm:"index" json:"shop_id,string"`
	GatewayOrderID string    `gorm:"uniqueIndex;size:64" json:"gateway_order_id"`
	PlanID         string    `gorm:"size:16" json:"plan_id"`
	Amount         int64     `json:"amount"`
	Currency       string    `gorm:"size:8" json:"currency"`
	Status         string    `gorm:"size:16;index" json:"status"`
	PaymentID      string    `gorm:"size:64" json:"payment_id"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (PaymentOrder) TableName() string {
	return "payment_orders"
}
