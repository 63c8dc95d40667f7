package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a sellable item in a shop's catalog. Stock is decremented
// inside the bill creation transaction and is never allowed below zero.
type Product struct {
	ID        int64           `json:"id,string" form:"id"`
	ShopID    int64           `gorm:"index" json:"shop_id,string" form:"shop_id"`
	OwnerID   int64           `gorm:"index" json:"owner_id,string" form:"owner_id"`
	Name      string          `gorm:"index" json:"name" form:"name"`
	Price     decimal.Decimal `gorm:"type:decimal(14,2)" json:"price"`
	Stock     int             `json:"stock" form:"stock"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

func (Product) TableName() string {
	return "products"
}
