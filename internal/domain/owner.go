package domain

import "time"

// Owner is a shop owner account. Password holds a bcrypt hash.
type Owner struct {
	ID        int64     `json:"id,string" form:"id"`
	Phone     string    `gorm:"uniqueIndex;size:32" json:"phone" form:"phone"`
	Name      string    `json:"name" form:"name"`
	Password  string    `json:"-"`
	Status    string    `gorm:"size:16" json:"status"`
	LastLogin time.Time `json:"last_login"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Owner) TableName() string {
	return "owners"
}
