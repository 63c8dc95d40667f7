package domain

import (
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/shopspring/decimal"
)

const (
	PayModeCash   = "cash"
	PayModeUPI    = "upi"
	PayModeCredit = "credit"
)

// Bill is an immutable sales transaction. TotalAmount is a snapshot of the
// cart priced at creation time; it is never recomputed against current
// product prices. CustomerPhone is required when PaymentMode is credit.
type Bill struct {
	ID            int64           `json:"id,string" form:"id"`
	ShopID        int64           `gorm:"index" json:"shop_id,string"`
	OwnerID       int64           `gorm:"index" json:"owner_id,string"`
	TotalAmount   decimal.Decimal `gorm:"type:decimal(14,2)" json:"total_amount"`
	PaymentMode   string          `gorm:"size:16;index" json:"payment_mode"`
	CustomerPhone string          `gorm:"size:32;index" json:"customer_phone"`
	Items         string          `gorm:"type:text" json:"items"` // JSON: productID -> qty
	CreatedAt     time.Time       `gorm:"index" json:"created_at"`
}

func (Bill) TableName() string {
	return "bills"
}

var billJSON = jsoniter.ConfigCompatibleWithStandardLibrary

// ItemMap decodes the stored line items
func (b *Bill) ItemMap() (map[int64]int, error) {
	items := make(map[int64]int)
	if b.Items == "" {
		return items, nil
	}
	if err := billJSON.UnmarshalFromString(b.Items, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// SetItems encodes the line items for storage
func (b *Bill) SetItems(items map[int64]int) error {
	s, err := billJSON.MarshalToString(items)
	if err != nil {
		return err
	}
	b.Items = s
	return nil
}
