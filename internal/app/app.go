package app

import (
	"context"
	"os"
	"runtime/debug"
	"time"
	_ "time/tzdata"

	"github.com/asaskevich/EventBus"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
	"gorm.io/gorm"

	"github.com/billzio/billzio/config"
	"github.com/billzio/billzio/internal/billing"
	"github.com/billzio/billzio/internal/domain"
	"github.com/billzio/billzio/internal/notify"
	"github.com/billzio/billzio/internal/payment"
	"github.com/billzio/billzio/internal/store"
	"github.com/billzio/billzio/internal/summary"
	"github.com/billzio/billzio/pkg/metrics"
)

type Application struct {
	appConfig     *config.AppConfig
	gormDB        *gorm.DB
	sched         *cron.Cron
	configManager *ConfigManager
	location      *time.Location

	bus        EventBus.Bus
	dispatcher notify.Dispatcher

	owners   store.OwnerRepository
	shops    store.ShopRepository
	products store.ProductRepository
	bills    store.BillRepository
	orders   store.PaymentOrderRepository

	billingSvc *billing.Service
	summarySvc *summary.Service
	gateway    payment.Gateway
	verifier   *payment.Verifier
	receipts   payment.ReceiptStore
}

// Ensure Application implements all interfaces
var (
	_ DBProvider        = (*Application)(nil)
	_ ConfigProvider    = (*Application)(nil)
	_ SettingsProvider  = (*Application)(nil)
	_ SchedulerProvider = (*Application)(nil)
	_ AppContext        = (*Application)(nil)
)

func NewApplication(appConfig *config.AppConfig) *Application {
	return &Application{appConfig: appConfig}
}

func (a *Application) Config() *config.AppConfig {
	return a.appConfig
}

func (a *Application) DB() *gorm.DB {
	return a.gormDB
}

// OverrideDB replaces the application's database handle (used in tests).
func (a *Application) OverrideDB(db *gorm.DB) {
	a.gormDB = db
}

func (a *Application) Init(cfg *config.AppConfig) {
	loc, err := time.LoadLocation(cfg.System.Location)
	if err != nil {
		zap.S().Error("timezone config error")
		loc = time.Local
	} else {
		time.Local = loc
	}
	a.location = loc

	// Initialize zap logger
	var zapConfig zap.Config
	if cfg.Logger.Mode == "production" {
		zapConfig = zap.NewProductionConfig()
	} else {
		zapConfig = zap.NewDevelopmentConfig()
	}

	zapConfig.OutputPaths = []string{"stdout"}

	// Build logger with file rotation if enabled
	var logger *zap.Logger
	if cfg.Logger.FileEnable {
		lumberJackLogger := &lumberjack.Logger{
			Filename:   cfg.Logger.Filename,
			MaxSize:    64,
			MaxBackups: 7,
			MaxAge:     7,
			Compress:   false,
		}

		core := zapcore.NewTee(
			zapcore.NewCore(
				zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
				zapcore.AddSync(lumberJackLogger),
				zapConfig.Level,
			),
			zapcore.NewCore(
				zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
				zapcore.AddSync(os.Stdout),
				zapConfig.Level,
			),
		)
		logger = zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1))
	} else {
		logger, err = zapConfig.Build(zap.AddCaller(), zap.AddCallerSkip(1))
		if err != nil {
			panic(err)
		}
	}

	zap.ReplaceGlobals(logger)

	cfg.InitDirs()

	// Initialize metrics with workdir convention
	if err := metrics.InitMetrics(cfg.System.Workdir); err != nil {
		zap.S().Warn("Failed to initialize metrics:", err)
	}

	// Initialize database connection
	if cfg.Database.Type == "" {
		cfg.Database.Type = "postgres"
	}
	a.gormDB = getDatabase(cfg.Database, loc)
	zap.S().Infof("Database connection successful, type: %s", cfg.Database.Type)

	// Ensure database schema is migrated before loading configs
	if err := a.MigrateDB(false); err != nil {
		zap.S().Errorf("database migration failed: %v", err)
	}

	// wait for database initialization to complete
	go func() {
		time.Sleep(3 * time.Second)
		a.checkSettings()
		a.checkSchedulers()
		a.checkDemoData()
	}()

	// Initialize the configuration manager
	a.configManager = NewConfigManager(a.gormDB)

	// Repositories
	a.owners = store.NewGormOwnerRepository(a.gormDB)
	a.shops = store.NewGormShopRepository(a.gormDB)
	a.products = store.NewGormProductRepository(a.gormDB)
	a.bills = store.NewGormBillRepository(a.gormDB)
	a.orders = store.NewGormPaymentOrderRepository(a.gormDB)

	// Notification channel and event bus
	a.dispatcher = notify.NewFromConfig(cfg.Notify)
	a.bus = EventBus.New()
	if err := a.bus.Subscribe(notify.TopicBillCreated, notify.BillCreatedHandler(a.dispatcher)); err != nil {
		zap.S().Errorf("event bus subscribe failed: %v", err)
	}

	// Payment gateway; the server still runs without credentials, but
	// payment endpoints reject requests until they are configured.
	gateway, err := payment.NewRazorpayGateway(cfg.Gateway)
	if err != nil {
		zap.L().Warn("payment gateway not configured, payment endpoints disabled")
	} else {
		a.gateway = gateway
	}

	a.receipts, err = payment.NewBoltReceiptStore(cfg.GetDataDir())
	if err != nil {
		zap.S().Errorf("receipt store init failed: %v", err)
	}
	a.verifier = payment.NewVerifier(cfg.Gateway.KeySecret, a.shops, a.orders, a.receipts)

	a.billingSvc = billing.NewService(a.shops, a.products, a.bills, a.bus)
	a.summarySvc = summary.NewService(
		a.shops, a.bills, a.dispatcher,
		cfg.Job.ServiceKey, loc,
		cfg.Job.MaxWorkers,
		time.Duration(cfg.Job.ShopTimeout)*time.Second,
	)

	a.initJob()
}

func (a *Application) MigrateDB(track bool) (err error) {
	defer func() {
		if err1 := recover(); err1 != nil {
			if os.Getenv("GO_DEBUG_TRACE") != "" {
				debug.PrintStack()
			}
			err2, ok := err1.(error)
			if ok {
				err = err2
				zap.S().Error(err2.Error())
			}
		}
	}()
	if track {
		if err := a.gormDB.Debug().Migrator().AutoMigrate(domain.Tables...); err != nil {
			zap.S().Error(err)
		}
	} else {
		if err := a.gormDB.Migrator().AutoMigrate(domain.Tables...); err != nil {
			zap.S().Error(err)
		}
	}
	return nil
}

func (a *Application) DropAll() {
	_ = a.gormDB.Migrator().DropTable(domain.Tables...)
}

func (a *Application) InitDb() {
	_ = a.gormDB.Migrator().DropTable(domain.Tables...)
	err := a.gormDB.Migrator().AutoMigrate(domain.Tables...)
	if err != nil {
		zap.S().Error(err)
	}
}

// ConfigMgr returns the configuration manager
func (a *Application) ConfigMgr() *ConfigManager {
	return a.configManager
}

// Scheduler returns the cron scheduler
func (a *Application) Scheduler() *cron.Cron {
	return a.sched
}

// Location returns the configured timezone
func (a *Application) Location() *time.Location {
	return a.location
}

// GetSettingsStringValue retrieves a string configuration value
func (a *Application) GetSettingsStringValue(category, key string) string {
	return a.configManager.GetString(category, key)
}

// GetSettingsInt64Value retrieves an int64 configuration value
func (a *Application) GetSettingsInt64Value(category, key string) int64 {
	return a.configManager.GetInt64(category, key)
}

// GetSettingsBoolValue retrieves a boolean configuration value
func (a *Application) GetSettingsBoolValue(category, key string) bool {
	return a.configManager.GetBool(category, key)
}

func (a *Application) Owners() store.OwnerRepository          { return a.owners }
func (a *Application) Shops() store.ShopRepository            { return a.shops }
func (a *Application) Products() store.ProductRepository      { return a.products }
func (a *Application) Bills() store.BillRepository            { return a.bills }
func (a *Application) PaymentOrders() store.PaymentOrderRepository { return a.orders }

func (a *Application) BillingService() *billing.Service   { return a.billingSvc }
func (a *Application) SummaryService() *summary.Service   { return a.summarySvc }
func (a *Application) PaymentGateway() payment.Gateway    { return a.gateway }
func (a *Application) PaymentVerifier() *payment.Verifier { return a.verifier }
func (a *Application) Dispatcher() notify.Dispatcher      { return a.dispatcher }

// Start scheduler job runner
func (a *Application) StartBackgroundJobs(ctx context.Context) {
	a.StartSchedulerService(ctx)
}

// Release releases application resources
func (a *Application) Release() {
	if a.sched != nil {
		a.sched.Stop()
	}

	if a.receipts != nil {
		_ = a.receipts.Close()
	}

	_ = metrics.Close()
	_ = zap.L().Sync()
}
