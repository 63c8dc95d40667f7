// Package billing creates bills against a cart. It owns cart validation,
// plan gating, snapshot pricing, and the atomic bill+stock write.
package billing

import (
	"context"
	"errors"
	"time"

	"github.com/asaskevich/EventBus"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/billzio/billzio/internal/domain"
	"github.com/billzio/billzio/internal/ledger"
	"github.com/billzio/billzio/internal/notify"
	"github.com/billzio/billzio/internal/plans"
	"github.com/billzio/billzio/internal/store"
	"github.com/billzio/billzio/pkg/common"
)

var (
	ErrEmptyCart             = errors.New("cart is empty")
	ErrInvalidPaymentMode    = errors.New("payment mode must be cash, upi or credit")
	ErrCustomerPhoneRequired = errors.New("customer phone is required for credit bills")
	ErrUnknownProduct        = errors.New("cart references a product not in this shop")
	ErrBillingLimitReached   = errors.New("monthly billing limit reached for current plan")
	ErrInsufficientStock     = store.ErrInsufficientStock
)

// CreateBillRequest is a cart checkout for one shop
type CreateBillRequest struct {
	ShopID        int64
	OwnerID       int64
	Mode          string
	CustomerPhone string
	Items         map[int64]int // productID -> qty
}

// Service wires the checkout path
type Service struct {
	shops    store.ShopRepository
	products store.ProductRepository
	bills    store.BillRepository
	bus      EventBus.Bus
	now      func() time.Time
}

func NewService(shops store.ShopRepository, products store.ProductRepository, bills store.BillRepository, bus EventBus.Bus) *Service {
	return &Service{
		shops:    shops,
		products: products,
		bills:    bills,
		bus:      bus,
		now:      time.Now,
	}
}

// SetClock overrides the service clock (tests)
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// CreateBill validates the cart, prices it against the current catalog,
// enforces the plan's billing limit, and writes bill plus stock
// decrements in one transaction. The stored total is a snapshot; later
// price edits do not touch historical bills.
func (s *Service) CreateBill(ctx context.Context, req CreateBillRequest) (*domain.Bill, error) {
	switch req.Mode {
	case domain.PayModeCash, domain.PayModeUPI, domain.PayModeCredit:
	default:
		return nil, ErrInvalidPaymentMode
	}
	if req.Mode == domain.PayModeCredit && req.CustomerPhone == "" {
		return nil, ErrCustomerPhoneRequired
	}
	if len(req.Items) == 0 {
		return nil, ErrEmptyCart
	}
	for _, qty := range req.Items {
		if qty <= 0 {
			return nil, ErrEmptyCart
		}
	}

	shop, err := s.shops.GetByOwner(ctx, req.OwnerID)
	if err != nil {
		return nil, err
	}
	if shop.ID != req.ShopID {
		return nil, ErrUnknownProduct
	}

	now := s.now()
	ent := plans.EffectivePlan(shop, now)
	if !ent.UnlimitedBilling() {
		count, err := s.bills.CountByShopSince(ctx, shop.ID, ledger.MonthStart(now))
		if err != nil {
			return nil, err
		}
		if count >= int64(ent.BillingLimit) {
			return nil, ErrBillingLimitReached
		}
	}

	ids := make([]int64, 0, len(req.Items))
	for id := range req.Items {
		ids = append(ids, id)
	}
	products, err := s.products.GetByShop(ctx, shop.ID, ids)
	if err != nil {
		return nil, err
	}
	priceByID := make(map[int64]decimal.Decimal, len(products))
	for _, p := range products {
		priceByID[p.ID] = p.Price
	}

	var total decimal.Decimal
	for id, qty := range req.Items {
		price, ok := priceByID[id]
		if !ok {
			return nil, ErrUnknownProduct
		}
		total = total.Add(price.Mul(decimal.NewFromInt(int64(qty))))
	}

	bill := &domain.Bill{
		ID:            common.UUIDint64(),
		ShopID:        shop.ID,
		OwnerID:       req.OwnerID,
		TotalAmount:   total,
		PaymentMode:   req.Mode,
		CustomerPhone: req.CustomerPhone,
		CreatedAt:     now,
	}
	if err := bill.SetItems(req.Items); err != nil {
		return nil, err
	}

	if err := s.bills.CreateWithStock(ctx, bill, req.Items); err != nil {
		return nil, err
	}

	zap.L().Info("bill created",
		zap.Int64("shop_id", shop.ID),
		zap.String("mode", bill.PaymentMode),
		zap.String("total", bill.TotalAmount.StringFixed(2)))

	if s.bus != nil {
		s.bus.Publish(notify.TopicBillCreated, notify.BillCreatedEvent{
			ShopName:      shop.Name,
			CustomerPhone: req.CustomerPhone,
			Total:         total,
			Shareable:     ent.WhatsAppCustomerBill,
		})
	}

	return bill, nil
}
