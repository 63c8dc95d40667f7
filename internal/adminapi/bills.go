package adminapi

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/billzio/billzio/internal/billing"
	"github.com/billzio/billzio/internal/ledger"
	"github.com/billzio/billzio/internal/webserver"
)

type billPayload struct {
	Mode          string         `json:"payment_mode" validate:"required,oneof=cash upi credit"`
	CustomerPhone string         `json:"customer_phone" validate:"omitempty,max=32"`
	Items         map[string]int `json:"items" validate:"required"` // productID -> qty
}

func registerBillRoutes() {
	webserver.ApiPOST("/bills", createBill)
	webserver.ApiGET("/bills", listBills)
	webserver.ApiGET("/dashboard", getDashboard)
	webserver.ApiGET("/credits", listCredits)
}

func createBill(c echo.Context) error {
	shop, err := ownerShop(c)
	if shop == nil {
		return err
	}

	var payload billPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse bill", err.Error())
	}

	items := make(map[int64]int, len(payload.Items))
	for key, qty := range payload.Items {
		id, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			return fail(c, http.StatusBadRequest, "VALIDATION_ERROR", "Item keys must be product IDs", nil)
		}
		items[id] = qty
	}

	bill, err := GetAppContext(c).BillingService().CreateBill(c.Request().Context(), billing.CreateBillRequest{
		ShopID:        shop.ID,
		OwnerID:       shop.OwnerID,
		Mode:          payload.Mode,
		CustomerPhone: payload.CustomerPhone,
		Items:         items,
	})
	if err != nil {
		switch {
		case errors.Is(err, billing.ErrEmptyCart),
			errors.Is(err, billing.ErrInvalidPaymentMode),
			errors.Is(err, billing.ErrCustomerPhoneRequired),
			errors.Is(err, billing.ErrUnknownProduct):
			return fail(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
		case errors.Is(err, billing.ErrInsufficientStock):
			return fail(c, http.StatusConflict, "INSUFFICIENT_STOCK", "Not enough stock to fulfil this bill", nil)
		case errors.Is(err, billing.ErrBillingLimitReached):
			return fail(c, http.StatusForbidden, "LIMIT_REACHED", "Monthly billing limit reached, upgrade to continue", nil)
		default:
			return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to create bill", err.Error())
		}
	}
	return ok(c, bill)
}

func listBills(c echo.Context) error {
	shop, err := ownerShop(c)
	if shop == nil {
		return err
	}

	since := time.Time{}
	switch c.QueryParam("range") {
	case "today":
		since = ledger.DayStart(time.Now())
	case "month":
		since = ledger.MonthStart(time.Now())
	}

	bills, err := GetAppContext(c).Bills().ListByShopSince(c.Request().Context(), shop.ID, since)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query bills", err.Error())
	}
	return ok(c, bills)
}

// getDashboard returns today's aggregate figures, the outstanding credit
// total and the low stock count in a single call.
func getDashboard(c echo.Context) error {
	shop, err := ownerShop(c)
	if shop == nil {
		return err
	}
	appCtx := GetAppContext(c)
	ctx := c.Request().Context()
	now := time.Now()

	todayBills, err := appCtx.Bills().ListByShopSince(ctx, shop.ID, ledger.DayStart(now))
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query bills", err.Error())
	}
	today := ledger.Aggregate(ledger.FromBills(todayBills), time.Time{})

	creditBills, err := appCtx.Bills().ListCredit(ctx, shop.ID)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query credit bills", err.Error())
	}
	balances := ledger.CreditBalances(ledger.FromBills(creditBills))

	threshold := int(appCtx.GetSettingsInt64Value("billing", "low_stock_threshold"))
	if threshold <= 0 {
		threshold = 5
	}
	lowStock, err := appCtx.Products().CountLowStock(ctx, shop.ID, threshold)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query stock", err.Error())
	}

	return ok(c, map[string]interface{}{
		"today":         today,
		"pending_total": ledger.TotalPending(balances),
		"low_stock":     lowStock,
	})
}

// listCredits returns outstanding credit balances grouped by customer
// phone, largest due first.
func listCredits(c echo.Context) error {
	shop, err := ownerShop(c)
	if shop == nil {
		return err
	}

	creditBills, err := GetAppContext(c).Bills().ListCredit(c.Request().Context(), shop.ID)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query credit bills", err.Error())
	}
	balances := ledger.CreditBalances(ledger.FromBills(creditBills))
	return ok(c, map[string]interface{}{
		"balances": balances,
		"total":    ledger.TotalPending(balances),
	})
}
