package app

import (
	"github.com/robfig/cron/v3"
	"gorm.io/gorm"

	"github.com/billzio/billzio/config"
	"github.com/billzio/billzio/internal/billing"
	"github.com/billzio/billzio/internal/notify"
	"github.com/billzio/billzio/internal/payment"
	"github.com/billzio/billzio/internal/store"
	"github.com/billzio/billzio/internal/summary"
)

// DBProvider provides database access
type DBProvider interface {
	DB() *gorm.DB
}

// ConfigProvider provides application configuration
type ConfigProvider interface {
	Config() *config.AppConfig
}

// SettingsProvider provides system settings access
type SettingsProvider interface {
	GetSettingsStringValue(category, key string) string
	GetSettingsInt64Value(category, key string) int64
	GetSettingsBoolValue(category, key string) bool
}

// SchedulerProvider provides task scheduling capability
type SchedulerProvider interface {
	Scheduler() *cron.Cron
}

// RepositoryProvider provides store access for handlers
type RepositoryProvider interface {
	Owners() store.OwnerRepository
	Shops() store.ShopRepository
	Products() store.ProductRepository
	Bills() store.BillRepository
	PaymentOrders() store.PaymentOrderRepository
}

// ServiceProvider provides the domain services behind the HTTP surface
type ServiceProvider interface {
	BillingService() *billing.Service
	SummaryService() *summary.Service
	PaymentGateway() payment.Gateway
	PaymentVerifier() *payment.Verifier
	Dispatcher() notify.Dispatcher
}

// AppContext combines all provider interfaces for full application context.
// Services should depend on specific providers or this combined interface.
type AppContext interface {
	DBProvider
	ConfigProvider
	SettingsProvider
	SchedulerProvider
	RepositoryProvider
	ServiceProvider

	// Application lifecycle methods
	MigrateDB(track bool) error
	InitDb()
	DropAll()
	// RunSchedulerNow triggers a scheduler execution immediately by ID
	RunSchedulerNow(id int64) error
}
