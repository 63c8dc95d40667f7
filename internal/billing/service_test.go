package billing

import (
	"context"
	"testing"
	"time"

	"github.com/asaskevich/EventBus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/billzio/billzio/internal/domain"
	"github.com/billzio/billzio/internal/notify"
	"github.com/billzio/billzio/internal/plans"
	"github.com/billzio/billzio/internal/store"
)

type fakeShops struct {
	shop *domain.Shop
}

func (r *fakeShops) GetByID(ctx context.Context, id int64) (*domain.Shop, error) {
	if r.shop != nil && r.shop.ID == id {
		return r.shop, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeShops) GetByOwner(ctx context.Context, ownerID int64) (*domain.Shop, error) {
	if r.shop != nil && r.shop.OwnerID == ownerID {
		return r.shop, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeShops) Create(ctx context.Context, shop *domain.Shop) error { return nil }
func (r *fakeShops) Update(ctx context.Context, shop *domain.Shop) error { return nil }
func (r *fakeShops) UpdateSubscription(ctx context.Context, id int64, patch map[string]interface{}) error {
	return nil
}
func (r *fakeShops) ListSummaryEligible(ctx context.Context) ([]domain.Shop, error) {
	return nil, nil
}
func (r *fakeShops) DowngradeExpired(ctx context.Context, now time.Time) (int64, error) {
	return 0, nil
}

type fakeProducts struct {
	byID map[int64]domain.Product
}

func (r *fakeProducts) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	p, ok := r.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &p, nil
}

func (r *fakeProducts) GetByShop(ctx context.Context, shopID int64, ids []int64) ([]domain.Product, error) {
	var out []domain.Product
	for _, id := range ids {
		if p, ok := r.byID[id]; ok && p.ShopID == shopID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakeProducts) Create(ctx context.Context, product *domain.Product) error { return nil }
func (r *fakeProducts) Update(ctx context.Context, product *domain.Product) error { return nil }
func (r *fakeProducts) Delete(ctx context.Context, shopID, id int64) error        { return nil }
func (r *fakeProducts) CountLowStock(ctx context.Context, shopID int64, threshold int) (int64, error) {
	return 0, nil
}

type fakeBills struct {
	created    []*domain.Bill
	monthCount int64
	stock      map[int64]int
}

func (r *fakeBills) CreateWithStock(ctx context.Context, bill *domain.Bill, items map[int64]int) error {
	// mirror the transactional guard: all or nothing
	for id, qty := range items {
		if r.stock[id] < qty {
			return store.ErrInsufficientStock
		}
	}
	for id, qty := range items {
		r.stock[id] -= qty
	}
	r.created = append(r.created, bill)
	return nil
}

func (r *fakeBills) ListByShopSince(ctx context.Context, shopID int64, since time.Time) ([]domain.Bill, error) {
	return nil, nil
}
func (r *fakeBills) ListCredit(ctx context.Context, shopID int64) ([]domain.Bill, error) {
	return nil, nil
}
func (r *fakeBills) CountByShopSince(ctx context.Context, shopID int64, since time.Time) (int64, error) {
	return r.monthCount, nil
}

func testFixture() (*Service, *fakeBills, *domain.Shop) {
	expiry := time.Now().AddDate(0, 1, 0)
	shop := &domain.Shop{
		ID:                 10,
		OwnerID:            1,
		Name:               "Palani's Shop",
		SubscriptionPlan:   plans.PlanBasic,
		SubscriptionStatus: domain.SubscriptionActive,
		SubscriptionExpiry: &expiry,
	}
	products := &fakeProducts{byID: map[int64]domain.Product{
		101: {ID: 101, ShopID: 10, Name: "Rice 1kg", Price: decimal.RequireFromString("60.50"), Stock: 10},
		102: {ID: 102, ShopID: 10, Name: "Sugar 1kg", Price: decimal.RequireFromString("45.00"), Stock: 5},
	}}
	bills := &fakeBills{stock: map[int64]int{101: 10, 102: 5}}

	svc := NewService(&fakeShops{shop: shop}, products, bills, EventBus.New())
	return svc, bills, shop
}

func TestCreateBillSnapshotTotal(t *testing.T) {
	svc, bills, _ := testFixture()

	bill, err := svc.CreateBill(context.Background(), CreateBillRequest{
		ShopID:  10,
		OwnerID: 1,
		Mode:    domain.PayModeCash,
		Items:   map[int64]int{101: 2, 102: 1},
	})
	require.NoError(t, err)
	assert.Equal(t, "166.00", bill.TotalAmount.StringFixed(2))
	assert.Len(t, bills.created, 1)
	assert.Equal(t, 8, bills.stock[101])
	assert.Equal(t, 4, bills.stock[102])

	items, err := bill.ItemMap()
	require.NoError(t, err)
	assert.Equal(t, map[int64]int{101: 2, 102: 1}, items)
}

func TestCreateBillValidation(t *testing.T) {
	svc, _, _ := testFixture()
	ctx := context.Background()

	_, err := svc.CreateBill(ctx, CreateBillRequest{ShopID: 10, OwnerID: 1, Mode: "card", Items: map[int64]int{101: 1}})
	assert.ErrorIs(t, err, ErrInvalidPaymentMode)

	_, err = svc.CreateBill(ctx, CreateBillRequest{ShopID: 10, OwnerID: 1, Mode: domain.PayModeCash})
	assert.ErrorIs(t, err, ErrEmptyCart)

	_, err = svc.CreateBill(ctx, CreateBillRequest{ShopID: 10, OwnerID: 1, Mode: domain.PayModeCash, Items: map[int64]int{101: 0}})
	assert.ErrorIs(t, err, ErrEmptyCart)

	_, err = svc.CreateBill(ctx, CreateBillRequest{ShopID: 10, OwnerID: 1, Mode: domain.PayModeCredit, Items: map[int64]int{101: 1}})
	assert.ErrorIs(t, err, ErrCustomerPhoneRequired)

	_, err = svc.CreateBill(ctx, CreateBillRequest{ShopID: 10, OwnerID: 1, Mode: domain.PayModeCash, Items: map[int64]int{999: 1}})
	assert.ErrorIs(t, err, ErrUnknownProduct)
}

func TestCreateBillCreditKeepsPhone(t *testing.T) {
	svc, bills, _ := testFixture()

	bill, err := svc.CreateBill(context.Background(), CreateBillRequest{
		ShopID:        10,
		OwnerID:       1,
		Mode:          domain.PayModeCredit,
		CustomerPhone: "9876500001",
		Items:         map[int64]int{101: 1},
	})
	require.NoError(t, err)
	assert.Equal(t, "9876500001", bill.CustomerPhone)
	assert.Len(t, bills.created, 1)
}

func TestCreateBillInsufficientStockRollsBack(t *testing.T) {
	svc, bills, _ := testFixture()

	_, err := svc.CreateBill(context.Background(), CreateBillRequest{
		ShopID:  10,
		OwnerID: 1,
		Mode:    domain.PayModeCash,
		Items:   map[int64]int{101: 1, 102: 50},
	})
	assert.ErrorIs(t, err, ErrInsufficientStock)
	assert.Empty(t, bills.created)
	assert.Equal(t, 10, bills.stock[101]) // untouched
}

func TestCreateBillFreePlanLimit(t *testing.T) {
	svc, bills, shop := testFixture()
	shop.SubscriptionPlan = plans.PlanFree
	shop.SubscriptionStatus = domain.SubscriptionInactive
	bills.monthCount = 20

	_, err := svc.CreateBill(context.Background(), CreateBillRequest{
		ShopID:  10,
		OwnerID: 1,
		Mode:    domain.PayModeCash,
		Items:   map[int64]int{101: 1},
	})
	assert.ErrorIs(t, err, ErrBillingLimitReached)

	bills.monthCount = 19
	_, err = svc.CreateBill(context.Background(), CreateBillRequest{
		ShopID:  10,
		OwnerID: 1,
		Mode:    domain.PayModeCash,
		Items:   map[int64]int{101: 1},
	})
	assert.NoError(t, err)
}

func TestCreateBillExpiredPlanGatesAsFree(t *testing.T) {
	svc, bills, shop := testFixture()
	past := time.Now().AddDate(0, -1, 0)
	shop.SubscriptionExpiry = &past
	bills.monthCount = 20

	_, err := svc.CreateBill(context.Background(), CreateBillRequest{
		ShopID:  10,
		OwnerID: 1,
		Mode:    domain.PayModeCash,
		Items:   map[int64]int{101: 1},
	})
	assert.ErrorIs(t, err, ErrBillingLimitReached)
}

func TestCreateBillPublishesShareEvent(t *testing.T) {
	svc, _, _ := testFixture()

	bus := EventBus.New()
	var got notify.BillCreatedEvent
	require.NoError(t, bus.Subscribe(notify.TopicBillCreated, func(ev notify.BillCreatedEvent) {
		got = ev
	}))
	svc.bus = bus

	_, err := svc.CreateBill(context.Background(), CreateBillRequest{
		ShopID:        10,
		OwnerID:       1,
		Mode:          domain.PayModeCredit,
		CustomerPhone: "9876500001",
		Items:         map[int64]int{102: 2},
	})
	require.NoError(t, err)

	bus.WaitAsync()
	assert.Equal(t, "Palani's Shop", got.ShopName)
	assert.Equal(t, "9876500001", got.CustomerPhone)
	assert.Equal(t, "90.00", got.Total.StringFixed(2))
	assert.True(t, got.Shareable)
}
