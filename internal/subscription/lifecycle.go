// Package subscription holds the plan state machine for shops. The two
// states are FREE/inactive and ACTIVE(plan, expiry); ApplyPayment moves a
// shop to ACTIVE, Reconcile drops lapsed shops back to FREE.
package subscription

import (
	"errors"
	"time"

	"github.com/billzio/billzio/internal/domain"
	"github.com/billzio/billzio/internal/plans"
)

// ErrInvalidPlan is returned when a payment names an identifier that does
// not resolve to a purchasable plan.
var ErrInvalidPlan = errors.New("invalid subscription plan")

// ApplyPayment transitions a shop onto a paid plan. Callers must have
// verified the payment signature already; this function never re-checks
// it. Expiry is one calendar month out, and the daily summary is switched
// on as the plan default. The input shop is not mutated.
func ApplyPayment(shop domain.Shop, planID string, now time.Time) (domain.Shop, error) {
	if !plans.Paid(planID) {
		return shop, ErrInvalidPlan
	}
	ent := plans.Resolve(planID)
	expiry := now.AddDate(0, 1, 0)
	shop.SubscriptionPlan = ent.Plan
	shop.SubscriptionStatus = domain.SubscriptionActive
	shop.SubscriptionExpiry = &expiry
	shop.DailySummaryEnabled = true
	if shop.DailySummaryTime == "" {
		shop.DailySummaryTime = "21:00"
	}
	return shop, nil
}

// Reconcile downgrades a shop whose paid subscription has lapsed. It
// reports whether the record changed and should be persisted. Shops
// already on FREE are left alone.
func Reconcile(shop domain.Shop, now time.Time) (domain.Shop, bool) {
	if !plans.Paid(shop.SubscriptionPlan) {
		return shop, false
	}
	if !plans.Expired(&shop, now) {
		return shop, false
	}
	shop.SubscriptionPlan = plans.PlanFree
	shop.SubscriptionStatus = domain.SubscriptionInactive
	shop.SubscriptionExpiry = nil
	return shop, true
}

// SubscriptionPatch is the store update emitted after ApplyPayment
func SubscriptionPatch(shop domain.Shop) map[string]interface{} {
	return map[string]interface{}{
		"subscription_plan":     shop.SubscriptionPlan,
		"subscription_status":   shop.SubscriptionStatus,
		"subscription_expiry":   shop.SubscriptionExpiry,
		"daily_summary_enabled": shop.DailySummaryEnabled,
		"daily_summary_time":    shop.DailySummaryTime,
		"updated_at":            time.Now(),
	}
}
