package plans

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/billzio/billzio/internal/domain"
)

func TestResolveFallsBackToFree(t *testing.T) {
	assert.Equal(t, PlanFree, Resolve("").Plan)
	assert.Equal(t, PlanFree, Resolve("GOLD").Plan)
	assert.Equal(t, PlanBasic, Resolve("basic").Plan)
	assert.Equal(t, PlanPro, Resolve(" pro ").Plan)
}

func TestEntitlementShape(t *testing.T) {
	free := Resolve(PlanFree)
	assert.Equal(t, 20, free.BillingLimit)
	assert.False(t, free.UnlimitedBilling())
	assert.False(t, free.ReportsEnabled)
	assert.True(t, free.PendingTracking)

	basic := Resolve(PlanBasic)
	assert.True(t, basic.UnlimitedBilling())
	assert.True(t, basic.ReportsEnabled)
	assert.False(t, basic.AdvancedReports)

	pro := Resolve(PlanPro)
	assert.True(t, pro.AdvancedReports)
	assert.True(t, pro.PrioritySupport)
}

func TestEffectivePlanGatesExpired(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	past := now.AddDate(0, -1, 0)
	future := now.AddDate(0, 1, 0)

	active := &domain.Shop{
		SubscriptionPlan:   PlanPro,
		SubscriptionStatus: domain.SubscriptionActive,
		SubscriptionExpiry: &future,
	}
	assert.Equal(t, PlanPro, EffectivePlan(active, now).Plan)

	lapsed := &domain.Shop{
		SubscriptionPlan:   PlanPro,
		SubscriptionStatus: domain.SubscriptionActive,
		SubscriptionExpiry: &past,
	}
	assert.Equal(t, PlanFree, EffectivePlan(lapsed, now).Plan)

	inactive := &domain.Shop{
		SubscriptionPlan:   PlanBasic,
		SubscriptionStatus: domain.SubscriptionInactive,
		SubscriptionExpiry: &future,
	}
	assert.Equal(t, PlanFree, EffectivePlan(inactive, now).Plan)

	noExpiry := &domain.Shop{
		SubscriptionPlan:   PlanBasic,
		SubscriptionStatus: domain.SubscriptionActive,
	}
	assert.Equal(t, PlanFree, EffectivePlan(noExpiry, now).Plan)

	assert.Equal(t, PlanFree, EffectivePlan(nil, now).Plan)
}

func TestAllOrdered(t *testing.T) {
	all := All()
	assert.Len(t, all, 3)
	assert.Equal(t, PlanFree, all[0].Plan)
	assert.Equal(t, PlanPro, all[2].Plan)
}
