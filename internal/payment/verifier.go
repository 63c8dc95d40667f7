package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/billzio/billzio/internal/store"
	"github.com/billzio/billzio/internal/subscription"
)

// VerifyRequest carries the gateway callback fields plus the shop and
// plan the payment was made for.
type VerifyRequest struct {
	OrderID   string `json:"orderId"`
	PaymentID string `json:"paymentId"`
	Signature string `json:"signature"`
	ShopID    int64  `json:"shopId,string"`
	PlanID    string `json:"planId"`
}

// VerifyResult reports the applied transition
type VerifyResult struct {
	Plan     string     `json:"plan"`
	Expiry   *time.Time `json:"expiry"`
	Replayed bool       `json:"replayed"`
}

// Verifier checks gateway signatures and applies verified payments to
// shop subscriptions. It owns the idempotency receipt store.
type Verifier struct {
	secret   string
	shops    store.ShopRepository
	orders   store.PaymentOrderRepository
	receipts ReceiptStore
	now      func() time.Time
}

func NewVerifier(secret string, shops store.ShopRepository, orders store.PaymentOrderRepository, receipts ReceiptStore) *Verifier {
	return &Verifier{
		secret:   secret,
		shops:    shops,
		orders:   orders,
		receipts: receipts,
		now:      time.Now,
	}
}

// SetClock overrides the verifier clock (tests)
func (v *Verifier) SetClock(now func() time.Time) {
	v.now = now
}

// Signature computes the expected hex HMAC-SHA256 of orderId|paymentId
func Signature(secret, orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifyAndApply recomputes the signature and, on a match, moves the
// shop onto the paid plan. A mismatch applies no state change. A replay
// of an already applied orderId+paymentId pair returns the recorded
// success without touching the subscription again.
func (v *Verifier) VerifyAndApply(ctx context.Context, req VerifyRequest) (*VerifyResult, error) {
	if v.secret == "" {
		return nil, ErrGatewayNotConfigured
	}

	expected := Signature(v.secret, req.OrderID, req.PaymentID)
	if !hmac.Equal([]byte(expected), []byte(req.Signature)) {
		zap.L().Warn("payment signature mismatch",
			zap.String("order_id", req.OrderID),
			zap.Int64("shop_id", req.ShopID))
		return nil, ErrSignatureMismatch
	}

	receiptKey := req.OrderID + "|" + req.PaymentID
	seen, err := v.receipts.Seen(receiptKey)
	if err != nil {
		zap.L().Warn("receipt store read failed, continuing without replay check", zap.Error(err))
	}
	if seen {
		shop, err := v.shops.GetByID(ctx, req.ShopID)
		if err != nil {
			return &VerifyResult{Plan: req.PlanID, Replayed: true}, nil
		}
		return &VerifyResult{Plan: shop.SubscriptionPlan, Expiry: shop.SubscriptionExpiry, Replayed: true}, nil
	}

	shop, err := v.shops.GetByID(ctx, req.ShopID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrShopNotFound
		}
		// Signature was valid: money is captured. Any store failure
		// from here on is the critical dual-failure case.
		return nil, v.persistFailed(req, err)
	}

	updated, err := subscription.ApplyPayment(*shop, req.PlanID, v.now())
	if err != nil {
		return nil, err
	}

	if err := v.shops.UpdateSubscription(ctx, shop.ID, subscription.SubscriptionPatch(updated)); err != nil {
		return nil, v.persistFailed(req, err)
	}

	if err := v.receipts.Record(receiptKey); err != nil {
		// The subscription is granted; a replayed call will re-apply the
		// same transition, which is harmless.
		zap.L().Warn("failed to record payment receipt", zap.String("order_id", req.OrderID), zap.Error(err))
	}
	if v.orders != nil {
		if err := v.orders.MarkPaid(ctx, req.OrderID, req.PaymentID); err != nil {
			zap.L().Warn("failed to mark payment order paid", zap.String("order_id", req.OrderID), zap.Error(err))
		}
	}

	zap.L().Info("subscription payment applied",
		zap.Int64("shop_id", shop.ID),
		zap.String("plan", updated.SubscriptionPlan),
		zap.Timep("expiry", updated.SubscriptionExpiry))

	return &VerifyResult{Plan: updated.SubscriptionPlan, Expiry: updated.SubscriptionExpiry}, nil
}

func (v *Verifier) persistFailed(req VerifyRequest, cause error) error {
	zap.L().Error("payment verified but persistence failed",
		zap.Bool("alert", true),
		zap.String("order_id", req.OrderID),
		zap.String("payment_id", req.PaymentID),
		zap.Int64("shop_id", req.ShopID),
		zap.String("plan_id", req.PlanID),
		zap.Error(cause))
	return fmt.Errorf("%w: %v", ErrPaymentVerifiedPersistFailed, cause)
}
