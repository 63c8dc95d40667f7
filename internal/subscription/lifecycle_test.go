package subscription

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/billzio/billzio/internal/domain"
	"github.com/billzio/billzio/internal/plans"
)

func TestApplyPayment(t *testing.T) {
	now := time.Date(2025, 1, 31, 10, 0, 0, 0, time.UTC)
	shop := domain.Shop{
		SubscriptionPlan:   plans.PlanFree,
		SubscriptionStatus: domain.SubscriptionInactive,
	}

	updated, err := ApplyPayment(shop, "basic", now)
	require.NoError(t, err)
	assert.Equal(t, plans.PlanBasic, updated.SubscriptionPlan)
	assert.Equal(t, domain.SubscriptionActive, updated.SubscriptionStatus)
	require.NotNil(t, updated.SubscriptionExpiry)
	assert.Equal(t, now.AddDate(0, 1, 0), *updated.SubscriptionExpiry)
	assert.True(t, updated.DailySummaryEnabled)
	assert.Equal(t, "21:00", updated.DailySummaryTime)

	// input not mutated
	assert.Equal(t, plans.PlanFree, shop.SubscriptionPlan)
}

func TestApplyPaymentKeepsCustomSummaryTime(t *testing.T) {
	now := time.Now()
	shop := domain.Shop{DailySummaryTime: "20:30"}

	updated, err := ApplyPayment(shop, plans.PlanPro, now)
	require.NoError(t, err)
	assert.Equal(t, "20:30", updated.DailySummaryTime)
}

func TestApplyPaymentRejectsFreeAndUnknown(t *testing.T) {
	now := time.Now()
	_, err := ApplyPayment(domain.Shop{}, plans.PlanFree, now)
	assert.ErrorIs(t, err, ErrInvalidPlan)

	_, err = ApplyPayment(domain.Shop{}, "GOLD", now)
	assert.ErrorIs(t, err, ErrInvalidPlan)
}

func TestReconcile(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	past := now.AddDate(0, -1, 0)
	future := now.AddDate(0, 1, 0)

	lapsed := domain.Shop{
		SubscriptionPlan:   plans.PlanPro,
		SubscriptionStatus: domain.SubscriptionActive,
		SubscriptionExpiry: &past,
	}
	updated, changed := Reconcile(lapsed, now)
	assert.True(t, changed)
	assert.Equal(t, plans.PlanFree, updated.SubscriptionPlan)
	assert.Equal(t, domain.SubscriptionInactive, updated.SubscriptionStatus)
	assert.Nil(t, updated.SubscriptionExpiry)

	current := domain.Shop{
		SubscriptionPlan:   plans.PlanBasic,
		SubscriptionStatus: domain.SubscriptionActive,
		SubscriptionExpiry: &future,
	}
	_, changed = Reconcile(current, now)
	assert.False(t, changed)

	free := domain.Shop{SubscriptionPlan: plans.PlanFree}
	_, changed = Reconcile(free, now)
	assert.False(t, changed)
}

func TestSubscriptionPatchFields(t *testing.T) {
	now := time.Now()
	shop, err := ApplyPayment(domain.Shop{}, plans.PlanBasic, now)
	require.NoError(t, err)

	patch := SubscriptionPatch(shop)
	assert.Equal(t, plans.PlanBasic, patch["subscription_plan"])
	assert.Equal(t, domain.SubscriptionActive, patch["subscription_status"])
	assert.Equal(t, shop.SubscriptionExpiry, patch["subscription_expiry"])
	assert.Equal(t, true, patch["daily_summary_enabled"])
}
