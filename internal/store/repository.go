package store

import (
	"context"
	"errors"
	"time"

	"github.com/billzio/billzio/internal/domain"
)

// ErrInsufficientStock is returned when a bill would drive a product's
// stock below zero. The whole bill transaction rolls back.
var ErrInsufficientStock = errors.New("insufficient stock")

// OwnerRepository handles owner account data access
type OwnerRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Owner, error)
	GetByPhone(ctx context.Context, phone string) (*domain.Owner, error)
	Create(ctx context.Context, owner *domain.Owner) error
	UpdateLastLogin(ctx context.Context, id int64, at time.Time) error
}

// ShopRepository handles shop data access. ListSummaryEligible and
// DowngradeExpired run in admin scope: they cross owner boundaries and
// are reserved for the background jobs and payment verification paths.
type ShopRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Shop, error)
	GetByOwner(ctx context.Context, ownerID int64) (*domain.Shop, error)
	Create(ctx context.Context, shop *domain.Shop) error
	Update(ctx context.Context, shop *domain.Shop) error

	// UpdateSubscription applies a subscription patch by shop id
	UpdateSubscription(ctx context.Context, id int64, patch map[string]interface{}) error

	// ListSummaryEligible returns shops on a live paid plan with the
	// daily summary toggle on
	ListSummaryEligible(ctx context.Context) ([]domain.Shop, error)

	// DowngradeExpired moves every lapsed active shop back to FREE and
	// returns the number of rows changed
	DowngradeExpired(ctx context.Context, now time.Time) (int64, error)
}

// ProductRepository handles catalog data access
type ProductRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Product, error)
	GetByShop(ctx context.Context, shopID int64, ids []int64) ([]domain.Product, error)
	Create(ctx context.Context, product *domain.Product) error
	Update(ctx context.Context, product *domain.Product) error
	Delete(ctx context.Context, shopID, id int64) error
	CountLowStock(ctx context.Context, shopID int64, threshold int) (int64, error)
}

// BillRepository handles bill data access. Bills are append-only.
type BillRepository interface {
	// CreateWithStock inserts the bill and decrements stock for every
	// line item in one transaction. Any failure, including a stock
	// underflow, rolls back the whole write.
	CreateWithStock(ctx context.Context, bill *domain.Bill, items map[int64]int) error

	ListByShopSince(ctx context.Context, shopID int64, since time.Time) ([]domain.Bill, error)
	ListCredit(ctx context.Context, shopID int64) ([]domain.Bill, error)
	CountByShopSince(ctx context.Context, shopID int64, since time.Time) (int64, error)
}

// PaymentOrderRepository is the gateway order audit trail
type PaymentOrderRepository interface {
	Create(ctx context.Context, order *domain.PaymentOrder) error
	MarkPaid(ctx context.Context, gatewayOrderID, paymentID string) error
	MarkFailed(ctx context.Context, gatewayOrderID string) error
}
