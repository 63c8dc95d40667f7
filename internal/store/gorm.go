package store

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/billzio/billzio/internal/domain"
	"github.com/billzio/billzio/internal/plans"
)

// GormOwnerRepository is the GORM implementation of OwnerRepository
type GormOwnerRepository struct {
	db *gorm.DB
}

func NewGormOwnerRepository(db *gorm.DB) *GormOwnerRepository {
	return &GormOwnerRepository{db: db}
}

func (r *GormOwnerRepository) GetByID(ctx context.Context, id int64) (*domain.Owner, error) {
	var owner domain.Owner
	if err := r.db.WithContext(ctx).First(&owner, id).Error; err != nil {
		return nil, errors.Wrap(err, "query owner")
	}
	return &owner, nil
}

func (r *GormOwnerRepository) GetByPhone(ctx context.Context, phone string) (*domain.Owner, error) {
	var owner domain.Owner
	if err := r.db.WithContext(ctx).Where("phone = ?", phone).First(&owner).Error; err != nil {
		return nil, errors.Wrap(err, "query owner by phone")
	}
	return &owner, nil
}

func (r *GormOwnerRepository) Create(ctx context.Context, owner *domain.Owner) error {
	return errors.Wrap(r.db.WithContext(ctx).Create(owner).Error, "create owner")
}

func (r *GormOwnerRepository) UpdateLastLogin(ctx context.Context, id int64, at time.Time) error {
	err := r.db.WithContext(ctx).Model(&domain.Owner{}).
		Where("id = ?", id).Update("last_login", at).Error
	return errors.Wrap(err, "update owner last_login")
}

// GormShopRepository is the GORM implementation of ShopRepository
type GormShopRepository struct {
	db *gorm.DB
}

func NewGormShopRepository(db *gorm.DB) *GormShopRepository {
	return &GormShopRepository{db: db}
}

func (r *GormShopRepository) GetByID(ctx context.Context, id int64) (*domain.Shop, error) {
	var shop domain.Shop
	if err := r.db.WithContext(ctx).First(&shop, id).Error; err != nil {
		return nil, errors.Wrap(err, "query shop")
	}
	return &shop, nil
}

func (r *GormShopRepository) GetByOwner(ctx context.Context, ownerID int64) (*domain.Shop, error) {
	var shop domain.Shop
	if err := r.db.WithContext(ctx).Where("owner_id = ?", ownerID).First(&shop).Error; err != nil {
		return nil, errors.Wrap(err, "query shop by owner")
	}
	return &shop, nil
}

func (r *GormShopRepository) Create(ctx context.Context, shop *domain.Shop) error {
	return errors.Wrap(r.db.WithContext(ctx).Create(shop).Error, "create shop")
}

func (r *GormShopRepository) Update(ctx context.Context, shop *domain.Shop) error {
	return errors.Wrap(r.db.WithContext(ctx).Save(shop).Error, "update shop")
}

func (r *GormShopRepository) UpdateSubscription(ctx context.Context, id int64, patch map[string]interface{}) error {
	err := r.db.WithContext(ctx).Model(&domain.Shop{}).
		Where("id = ?", id).Updates(patch).Error
	return errors.Wrap(err, "update shop subscription")
}

func (r *GormShopRepository) ListSummaryEligible(ctx context.Context) ([]domain.Shop, error) {
	var shops []domain.Shop
	err := r.db.WithContext(ctx).
		Where("subscription_plan IN ?", []string{plans.PlanBasic, plans.PlanPro}).
		Where("subscription_status = ?", domain.SubscriptionActive).
		Where("subscription_expiry IS NULL OR subscription_expiry > ?", time.Now()).
		Where("daily_summary_enabled = ?", true).
		Find(&shops).Error
	if err != nil {
		return nil, errors.Wrap(err, "list summary eligible shops")
	}
	return shops, nil
}

func (r *GormShopRepository) DowngradeExpired(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Model(&domain.Shop{}).
		Where("subscription_plan IN ?", []string{plans.PlanBasic, plans.PlanPro}).
		Where("subscription_status = ?", domain.SubscriptionActive).
		Where("subscription_expiry IS NOT NULL AND subscription_expiry < ?", now).
		Updates(map[string]interface{}{
			"subscription_plan":   plans.PlanFree,
			"subscription_status": domain.SubscriptionInactive,
			"subscription_expiry": nil,
			"updated_at":          now,
		})
	if result.Error != nil {
		return 0, errors.Wrap(result.Error, "downgrade expired shops")
	}
	return result.RowsAffected, nil
}

// GormProductRepository is the GORM implementation of ProductRepository
type GormProductRepository struct {
	db *gorm.DB
}

func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

func (r *GormProductRepository) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	var product domain.Product
	if err := r.db.WithContext(ctx).First(&product, id).Error; err != nil {
		return nil, errors.Wrap(err, "query product")
	}
	return &product, nil
}

func (r *GormProductRepository) GetByShop(ctx context.Context, shopID int64, ids []int64) ([]domain.Product, error) {
	var products []domain.Product
	q := r.db.WithContext(ctx).Where("shop_id = ?", shopID)
	if len(ids) > 0 {
		q = q.Where("id IN ?", ids)
	}
	if err := q.Find(&products).Error; err != nil {
		return nil, errors.Wrap(err, "query shop products")
	}
	return products, nil
}

func (r *GormProductRepository) Create(ctx context.Context, product *domain.Product) error {
	return errors.Wrap(r.db.WithContext(ctx).Create(product).Error, "create product")
}

func (r *GormProductRepository) Update(ctx context.Context, product *domain.Product) error {
	return errors.Wrap(r.db.WithContext(ctx).Save(product).Error, "update product")
}

func (r *GormProductRepository) Delete(ctx context.Context, shopID, id int64) error {
	err := r.db.WithContext(ctx).
		Where("shop_id = ? AND id = ?", shopID, id).
		Delete(&domain.Product{}).Error
	return errors.Wrap(err, "delete product")
}

func (r *GormProductRepository) CountLowStock(ctx context.Context, shopID int64, threshold int) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Product{}).
		Where("shop_id = ? AND stock < ?", shopID, threshold).
		Count(&count).Error
	return count, errors.Wrap(err, "count low stock")
}

// GormBillRepository is the GORM implementation of BillRepository
type GormBillRepository struct {
	db *gorm.DB
}

func NewGormBillRepository(db *gorm.DB) *GormBillRepository {
	return &GormBillRepository{db: db}
}

// CreateWithStock writes the bill and all stock decrements atomically.
// The conditional UPDATE guards against overselling: a line whose stock
// would go negative matches zero rows and the transaction rolls back.
func (r *GormBillRepository) CreateWithStock(ctx context.Context, bill *domain.Bill, items map[int64]int) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(bill).Error; err != nil {
			return errors.Wrap(err, "create bill")
		}
		for productID, qty := range items {
			result := tx.Model(&domain.Product{}).
				Where("id = ? AND shop_id = ? AND stock >= ?", productID, bill.ShopID, qty).
				Updates(map[string]interface{}{
					"stock":      gorm.Expr("stock - ?", qty),
					"updated_at": time.Now(),
				})
			if result.Error != nil {
				return errors.Wrap(result.Error, "decrement stock")
			}
			if result.RowsAffected == 0 {
				return ErrInsufficientStock
			}
		}
		return nil
	})
}

func (r *GormBillRepository) ListByShopSince(ctx context.Context, shopID int64, since time.Time) ([]domain.Bill, error) {
	var bills []domain.Bill
	q := r.db.WithContext(ctx).Where("shop_id = ?", shopID)
	if !since.IsZero() {
		q = q.Where("created_at >= ?", since)
	}
	if err := q.Order("created_at DESC").Find(&bills).Error; err != nil {
		return nil, errors.Wrap(err, "query bills")
	}
	return bills, nil
}

func (r *GormBillRepository) ListCredit(ctx context.Context, shopID int64) ([]domain.Bill, error) {
	var bills []domain.Bill
	err := r.db.WithContext(ctx).
		Where("shop_id = ? AND payment_mode = ?", shopID, domain.PayModeCredit).
		Find(&bills).Error
	if err != nil {
		return nil, errors.Wrap(err, "query credit bills")
	}
	return bills, nil
}

func (r *GormBillRepository) CountByShopSince(ctx context.Context, shopID int64, since time.Time) (int64, error) {
	var count int64
	q := r.db.WithContext(ctx).Model(&domain.Bill{}).Where("shop_id = ?", shopID)
	if !since.IsZero() {
		q = q.Where("created_at >= ?", since)
	}
	err := q.Count(&count).Error
	return count, errors.Wrap(err, "count bills")
}

// GormPaymentOrderRepository is the GORM implementation of PaymentOrderRepository
type GormPaymentOrderRepository struct {
	db *gorm.DB
}

func NewGormPaymentOrderRepository(db *gorm.DB) *GormPaymentOrderRepository {
	return &GormPaymentOrderRepository{db: db}
}

func (r *GormPaymentOrderRepository) Create(ctx context.Context, order *domain.PaymentOrder) error {
	return errors.Wrap(r.db.WithContext(ctx).Create(order).Error, "create payment order")
}

func (r *GormPaymentOrderRepository) MarkPaid(ctx context.Context, gatewayOrderID, paymentID string) error {
	err := r.db.WithContext(ctx).Model(&domain.PaymentOrder{}).
		Where("gateway_order_id = ?", gatewayOrderID).
		Updates(map[string]interface{}{
			"status":     domain.PaymentOrderPaid,
			"payment_id": paymentID,
			"updated_at": time.Now(),
		}).Error
	return errors.Wrap(err, "mark payment order paid")
}

func (r *GormPaymentOrderRepository) MarkFailed(ctx context.Context, gatewayOrderID string) error {
	err := r.db.WithContext(ctx).Model(&domain.PaymentOrder{}).
		Where("gateway_order_id = ?", gatewayOrderID).
		Updates(map[string]interface{}{
			"status":     domain.PaymentOrderFailed,
			"updated_at": time.Now(),
		}).Error
	return errors.Wrap(err, "mark payment order failed")
}
