package domain

import "time"

const (
	SubscriptionActive   = "active"
	SubscriptionInactive = "inactive"
)

const (
	ShopCategoryRetail  = "retail"
	ShopCategoryService = "service"
	ShopCategoryOther   = "other"
)

// Shop is the tenant entity owning products and bills. One shop per owner.
// Subscription fields are written by the payment verification path and the
// subscription sweep only.
type Shop struct {
	ID                  int64      `json:"id,string" form:"id"`
	OwnerID             int64      `gorm:"uniqueIndex" json:"owner_id,string" form:"owner_id"`
	Name                string     `gorm:"index" json:"name" form:"name"`
	Category            string     `gorm:"size:32" json:"category" form:"category"`
	Phone               string     `gorm:"size:32" json:"phone" form:"phone"`
	SubscriptionPlan    string     `gorm:"size:16;index" json:"subscription_plan"`
	SubscriptionStatus  string     `gorm:"size:16" json:"subscription_status"`
	SubscriptionExpiry  *time.Time `json:"subscription_expiry"`
	DailySummaryEnabled bool       `gorm:"index" json:"daily_summary_enabled"`
	DailySummaryTime    string     `gorm:"size:8" json:"daily_summary_time"` // "HH:MM"
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

func (Shop) TableName() string {
	return "shops"
}

// SummaryHour parses the configured send time, defaulting to 21:00.
func (s Shop) SummaryHour() int {
	t := s.DailySummaryTime
	if len(t) < 2 {
		return 21
	}
	hour := 0
	for i := 0; i < 2 && i < len(t); i++ {
		c := t[i]
		if c == ':' {
			break
		}
		if c < '0' || c > '9' {
			return 21
		}
		hour = hour*10 + int(c-'0')
	}
	if hour > 23 {
		return 21
	}
	return hour
}
