package adminapi

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/spf13/cast"

	"github.com/billzio/billzio/internal/ledger"
	"github.com/billzio/billzio/internal/plans"
	"github.com/billzio/billzio/internal/summary"
	"github.com/billzio/billzio/internal/webserver"
)

// serviceKeyPresented reports whether the request carries the live job
// service key. An empty configured key means simulation mode, which
// needs no gate.
func serviceKeyPresented(c echo.Context, key string) bool {
	return key == "" || c.Request().Header.Get("X-Service-Key") == key
}

func registerSummaryRoutes() {
	webserver.ApiGET("/daily-summary", runDailySummary)
	webserver.ApiGET("/daily-summary/preview", previewDailySummary)
}

// previewDailySummary renders today's summary message for the caller's
// shop without sending anything.
func previewDailySummary(c echo.Context) error {
	shop, err := ownerShop(c)
	if shop == nil {
		return err
	}
	if !plans.EffectivePlan(shop, time.Now()).WhatsAppDailySummary {
		return fail(c, http.StatusForbidden, "PLAN_REQUIRED", "Daily summary requires a paid plan", nil)
	}

	now := time.Now()
	bills, err := GetAppContext(c).Bills().ListByShopSince(c.Request().Context(), shop.ID, ledger.DayStart(now))
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query bills", err.Error())
	}
	creditBills, err := GetAppContext(c).Bills().ListCredit(c.Request().Context(), shop.ID)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query credit bills", err.Error())
	}

	day := ledger.Aggregate(ledger.FromBills(bills), time.Time{})
	pending := ledger.TotalPending(ledger.CreditBalances(ledger.FromBills(creditBills)))

	return ok(c, map[string]interface{}{
		"message": summary.FormatOwnerMessage(shop.Name, now, day, pending),
	})
}

// runDailySummary triggers the batch immediately. With force=true the
// per-shop send hour gate is skipped. The batch crosses owner
// boundaries, so with a live service key configured the caller must
// present it; without one the run is simulation-only and open to any
// authenticated owner.
func runDailySummary(c echo.Context) error {
	if !serviceKeyPresented(c, GetAppContext(c).Config().Job.ServiceKey) {
		return fail(c, http.StatusForbidden, "SERVICE_KEY_REQUIRED", "Daily summary trigger requires the service key", nil)
	}

	force := cast.ToBool(c.QueryParam("force"))

	report, err := GetAppContext(c).SummaryService().Run(c.Request().Context(), force)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "SUMMARY_FAILED", "Daily summary run failed", err.Error())
	}
	return c.JSON(http.StatusOK, report)
}
