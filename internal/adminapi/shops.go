package adminapi

import (
	"errors"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/billzio/billzio/internal/domain"
	"github.com/billzio/billzio/internal/plans"
	"github.com/billzio/billzio/internal/webserver"
	"github.com/billzio/billzio/pkg/common"
)

var summaryTimeRe = regexp.MustCompile(`^([01]?\d|2[0-3]):[0-5]\d$`)

type shopPayload struct {
	Name             string `json:"name" validate:"required,min=1,max=200"`
	Category         string `json:"category" validate:"omitempty,oneof=retail service other"`
	Phone            string `json:"phone" validate:"omitempty,max=32"`
	DailySummaryTime string `json:"daily_summary_time" validate:"omitempty,max=8"`
}

func registerShopRoutes() {
	webserver.ApiGET("/shop", getShop)
	webserver.ApiPOST("/shop", createShop)
	webserver.ApiPUT("/shop", updateShop)
}

type shopView struct {
	domain.Shop
	EffectivePlan plans.Entitlement `json:"effective_plan"`
}

func getShop(c echo.Context) error {
	shop, err := ownerShop(c)
	if shop == nil {
		return err
	}
	return ok(c, shopView{Shop: *shop, EffectivePlan: plans.EffectivePlan(shop, time.Now())})
}

func createShop(c echo.Context) error {
	ownerID := currentOwnerID(c)
	appCtx := GetAppContext(c)

	if existing, err := appCtx.Shops().GetByOwner(c.Request().Context(), ownerID); err == nil && existing != nil {
		return fail(c, http.StatusConflict, "SHOP_EXISTS", "This account already has a shop", nil)
	}

	var payload shopPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse shop", err.Error())
	}
	payload.Name = strings.TrimSpace(payload.Name)
	if payload.Name == "" {
		return fail(c, http.StatusBadRequest, "VALIDATION_ERROR", "Shop name is required", nil)
	}
	if payload.Category == "" {
		payload.Category = domain.ShopCategoryRetail
	}
	if payload.DailySummaryTime != "" && !summaryTimeRe.MatchString(payload.DailySummaryTime) {
		return fail(c, http.StatusBadRequest, "VALIDATION_ERROR", "daily_summary_time must be HH:MM", nil)
	}
	if payload.DailySummaryTime == "" {
		payload.DailySummaryTime = "21:00"
	}

	shop := domain.Shop{
		ID:                 common.UUIDint64(),
		OwnerID:            ownerID,
		Name:               payload.Name,
		Category:           payload.Category,
		Phone:              strings.TrimSpace(payload.Phone),
		SubscriptionPlan:   plans.PlanFree,
		SubscriptionStatus: domain.SubscriptionInactive,
		DailySummaryTime:   payload.DailySummaryTime,
	}
	if err := appCtx.Shops().Create(c.Request().Context(), &shop); err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to create shop", err.Error())
	}
	return ok(c, shop)
}

func updateShop(c echo.Context) error {
	shop, err := ownerShop(c)
	if shop == nil {
		return err
	}

	var payload struct {
		Name                string `json:"name"`
		Category            string `json:"category"`
		Phone               string `json:"phone"`
		DailySummaryEnabled *bool  `json:"daily_summary_enabled"`
		DailySummaryTime    string `json:"daily_summary_time"`
	}
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse shop", err.Error())
	}

	if name := strings.TrimSpace(payload.Name); name != "" {
		shop.Name = name
	}
	if payload.Category != "" {
		switch payload.Category {
		case domain.ShopCategoryRetail, domain.ShopCategoryService, domain.ShopCategoryOther:
			shop.Category = payload.Category
		default:
			return fail(c, http.StatusBadRequest, "VALIDATION_ERROR", "Unknown shop category", nil)
		}
	}
	if payload.Phone != "" {
		shop.Phone = strings.TrimSpace(payload.Phone)
	}
	if payload.DailySummaryTime != "" {
		if !summaryTimeRe.MatchString(payload.DailySummaryTime) {
			return fail(c, http.StatusBadRequest, "VALIDATION_ERROR", "daily_summary_time must be HH:MM", nil)
		}
		shop.DailySummaryTime = payload.DailySummaryTime
	}
	if payload.DailySummaryEnabled != nil {
		// the toggle only takes effect on a paid plan; stored anyway so
		// it survives an upgrade
		shop.DailySummaryEnabled = *payload.DailySummaryEnabled
	}

	if err := GetAppContext(c).Shops().Update(c.Request().Context(), shop); err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update shop", err.Error())
	}
	return ok(c, shop)
}

// ownerShop loads the caller's shop. On failure the error response is
// already written and a nil shop is returned; callers must check the
// shop pointer.
func ownerShop(c echo.Context) (*domain.Shop, error) {
	ownerID := currentOwnerID(c)
	shop, err := GetAppContext(c).Shops().GetByOwner(c.Request().Context(), ownerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fail(c, http.StatusNotFound, "NOT_FOUND", "No shop registered for this account", nil)
		}
		return nil, fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query shop", err.Error())
	}
	return shop, nil
}
