// Package plans is the static registry of subscription tiers and the
// feature entitlements attached to each tier.
package plans

import (
	"strings"
	"time"

	"github.com/billzio/billzio/internal/domain"
)

const (
	PlanFree  = "FREE"
	PlanBasic = "BASIC"
	PlanPro   = "PRO"
)

// Unlimited marks a billing limit with no cap
const Unlimited = -1

// Entitlement is the read-only feature bundle of a plan
type Entitlement struct {
	Plan                 string   `json:"plan"`
	Price                int64    `json:"price"` // whole rupees per month
	BillingLimit         int      `json:"billing_limit"`
	StockEnabled         bool     `json:"stock_enabled"`
	PendingTracking      bool     `json:"pending_tracking"`
	WhatsAppCustomerBill bool     `json:"whatsapp_customer_bill"`
	WhatsAppDailySummary bool     `json:"whatsapp_daily_summary"`
	ReportsEnabled       bool     `json:"reports_enabled"`
	AdvancedReports      bool     `json:"advanced_reports"`
	ExportEnabled        bool     `json:"export_enabled"`
	PrioritySupport      bool     `json:"priority_support"`
	Languages            []string `json:"language_support"`
}

func (e Entitlement) UnlimitedBilling() bool {
	return e.BillingLimit == Unlimited
}

var registry = map[string]Entitlement{
	PlanFree: {
		Plan:            PlanFree,
		Price:           0,
		BillingLimit:    20,
		PendingTracking: true,
		Languages:       []string{"EN"},
	},
	PlanBasic: {
		Plan:                 PlanBasic,
		Price:                299,
		BillingLimit:         Unlimited,
		StockEnabled:         true,
		PendingTracking:      true,
		WhatsAppCustomerBill: true,
		WhatsAppDailySummary: true,
		ReportsEnabled:       true,
		ExportEnabled:        true,
		Languages:            []string{"EN", "TA", "HI"},
	},
	PlanPro: {
		Plan:                 PlanPro,
		Price:                499,
		BillingLimit:         Unlimited,
		StockEnabled:         true,
		PendingTracking:      true,
		WhatsAppCustomerBill: true,
		WhatsAppDailySummary: true,
		ReportsEnabled:       true,
		AdvancedReports:      true,
		ExportEnabled:        true,
		PrioritySupport:      true,
		Languages:            []string{"EN", "TA", "HI"},
	},
}

// All returns the tiers in display order
func All() []Entitlement {
	return []Entitlement{registry[PlanFree], registry[PlanBasic], registry[PlanPro]}
}

// Resolve maps a plan identifier to its entitlement bundle. Lookup is
// case-insensitive; empty or unknown identifiers resolve to FREE.
func Resolve(name string) Entitlement {
	key := strings.ToUpper(strings.TrimSpace(name))
	if e, ok := registry[key]; ok {
		return e
	}
	return registry[PlanFree]
}

// Paid reports whether the identifier names a purchasable tier
func Paid(name string) bool {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case PlanBasic, PlanPro:
		return true
	}
	return false
}

// Expired reports whether a shop's paid subscription has lapsed
func Expired(shop *domain.Shop, now time.Time) bool {
	if shop == nil {
		return true
	}
	if shop.SubscriptionStatus != domain.SubscriptionActive {
		return true
	}
	if shop.SubscriptionExpiry == nil {
		return true
	}
	return now.After(*shop.SubscriptionExpiry)
}

// EffectivePlan resolves the entitlements a shop may actually use right
// now. A stored BASIC/PRO plan on a shop whose subscription is inactive
// or past expiry gates as FREE, regardless of the stored plan field.
func EffectivePlan(shop *domain.Shop, now time.Time) Entitlement {
	if shop == nil {
		return Resolve(PlanFree)
	}
	if !Paid(shop.SubscriptionPlan) {
		return Resolve(PlanFree)
	}
	if Expired(shop, now) {
		return Resolve(PlanFree)
	}
	return Resolve(shop.SubscriptionPlan)
}
