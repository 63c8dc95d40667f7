package app

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/billzio/billzio/internal/domain"
	"github.com/billzio/billzio/internal/plans"
	"github.com/billzio/billzio/pkg/common"
)

type settingDefault struct {
	Category string
	Name     string
	Value    string
	Remark   string
}

var defaultSettings = []settingDefault{
	{"summary", "max_workers", "8", "Daily summary worker pool size"},
	{"billing", "low_stock_threshold", "5", "Stock level that counts as low on the dashboard"},
	{"system", "opr_log_days", "90", "Days to keep operation logs"},
}

// checkSettings initializes missing sys_config rows with defaults
func (a *Application) checkSettings() {
	for sortid, item := range defaultSettings {
		var count int64
		a.gormDB.Model(&domain.SysConfig{}).
			Where("type = ? and name = ?", item.Category, item.Name).
			Count(&count)

		if count == 0 {
			a.gormDB.Create(&domain.SysConfig{
				ID:     common.UUIDint64(),
				Sort:   sortid,
				Type:   item.Category,
				Name:   item.Name,
				Value:  item.Value,
				Remark: item.Remark,
			})
			zap.L().Info("initialized config",
				zap.String("key", item.Category+"."+item.Name),
				zap.String("default", item.Value))
		}
	}
}

type schedulerDefault struct {
	Name     string
	TaskType string
	Interval int
	Remark   string
}

var defaultSchedulers = []schedulerDefault{
	{"Daily sales summary", SchedDailySummary, 3600, "Sends the end of day summary to eligible shops"},
	{"Subscription expiry sweep", SchedSubscriptionSweep, 3600, "Downgrades shops whose paid plan expired"},
}

// checkSchedulers seeds the database driven maintenance tasks
func (a *Application) checkSchedulers() {
	for _, item := range defaultSchedulers {
		var count int64
		a.gormDB.Model(&domain.SysScheduler{}).
			Where("task_type = ?", item.TaskType).
			Count(&count)

		if count == 0 {
			a.gormDB.Create(&domain.SysScheduler{
				ID:        common.UUIDint64(),
				Name:      item.Name,
				TaskType:  item.TaskType,
				Interval:  item.Interval,
				Status:    common.ENABLED,
				NextRunAt: time.Now(),
				Remark:    item.Remark,
			})
			zap.L().Info("initialized scheduler", zap.String("task_type", item.TaskType))
		}
	}
}

// checkDemoData creates a demo owner, shop and products on first start.
// Only runs when system.demo_data is enabled.
func (a *Application) checkDemoData() {
	if !a.appConfig.System.DemoData {
		return
	}

	const demoPhone = "9000000001"

	var owner domain.Owner
	err := a.gormDB.Where("phone = ?", demoPhone).First(&owner).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		hashed, herr := bcrypt.GenerateFromPassword([]byte("billzio"), bcrypt.DefaultCost)
		if herr != nil {
			zap.L().Error("failed to hash demo password", zap.Error(herr))
			return
		}
		owner = domain.Owner{
			ID:        common.UUIDint64(),
			Phone:     demoPhone,
			Name:      "Demo Owner",
			Password:  string(hashed),
			Status:    common.ENABLED,
			LastLogin: time.Now(),
		}
		if err := a.gormDB.Create(&owner).Error; err != nil {
			zap.L().Error("failed to create demo owner", zap.Error(err))
			return
		}
		zap.L().Info("initialized demo owner", zap.String("phone", demoPhone))
	case err != nil:
		zap.L().Error("failed to query demo owner", zap.Error(err))
		return
	}

	var shop domain.Shop
	err = a.gormDB.Where("owner_id = ?", owner.ID).First(&shop).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		shop = domain.Shop{
			ID:                 common.UUIDint64(),
			OwnerID:            owner.ID,
			Name:               "Demo Kirana Store",
			Category:           domain.ShopCategoryRetail,
			Phone:              demoPhone,
			SubscriptionPlan:   plans.PlanFree,
			SubscriptionStatus: domain.SubscriptionInactive,
			DailySummaryTime:   "21:00",
		}
		if err := a.gormDB.Create(&shop).Error; err != nil {
			zap.L().Error("failed to create demo shop", zap.Error(err))
			return
		}
	case err != nil:
		zap.L().Error("failed to query demo shop", zap.Error(err))
		return
	}

	a.checkDemoProducts(shop)
}

func (a *Application) checkDemoProducts(shop domain.Shop) {
	var count int64
	a.gormDB.Model(&domain.Product{}).Where("shop_id = ?", shop.ID).Count(&count)
	if count > 0 {
		return
	}

	demo := []struct {
		Name  string
		Price string
		Stock int
	}{
		{"Rice 1kg", "60.00", 100},
		{"Toor Dal 1kg", "140.00", 50},
		{"Sunflower Oil 1L", "130.00", 40},
		{"Sugar 1kg", "45.00", 80},
		{"Tea Powder 250g", "120.00", 30},
	}

	for _, item := range demo {
		price, err := decimal.NewFromString(item.Price)
		if err != nil {
			continue
		}
		a.gormDB.Create(&domain.Product{
			ID:      common.UUIDint64(),
			ShopID:  shop.ID,
			OwnerID: shop.OwnerID,
			Name:    item.Name,
			Price:   price,
			Stock:   item.Stock,
		})
	}
	zap.L().Info("initialized demo products", zap.Int("count", len(demo)))
}
