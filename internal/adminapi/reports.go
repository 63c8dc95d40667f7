package adminapi

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/gocarina/gocsv"
	"github.com/labstack/echo/v4"
	"github.com/montanaflynn/stats"

	"github.com/billzio/billzio/internal/domain"
	"github.com/billzio/billzio/internal/ledger"
	"github.com/billzio/billzio/internal/plans"
	"github.com/billzio/billzio/internal/webserver"
)

func registerReportRoutes() {
	webserver.ApiGET("/reports", getReport)
	webserver.ApiGET("/reports/export", exportReport)
}

// reportWindow parses from/to query params. Defaults to the current
// month when absent.
func reportWindow(c echo.Context) (from, to time.Time, err error) {
	now := time.Now()
	from = ledger.MonthStart(now)
	to = now

	if raw := strings.TrimSpace(c.QueryParam("from")); raw != "" {
		from, err = dateparse.ParseIn(raw, now.Location())
		if err != nil {
			return from, to, err
		}
	}
	if raw := strings.TrimSpace(c.QueryParam("to")); raw != "" {
		to, err = dateparse.ParseIn(raw, now.Location())
		if err != nil {
			return from, to, err
		}
		// inclusive day end when only a date is given
		if to.Hour() == 0 && to.Minute() == 0 && to.Second() == 0 {
			to = to.Add(24*time.Hour - time.Nanosecond)
		}
	}
	return from, to, nil
}

func getReport(c echo.Context) error {
	shop, err := ownerShop(c)
	if shop == nil {
		return err
	}
	entitlement := plans.EffectivePlan(shop, time.Now())
	if !entitlement.ReportsEnabled {
		return fail(c, http.StatusForbidden, "PLAN_REQUIRED", "Reports require a paid plan", nil)
	}

	from, to, err := reportWindow(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "VALIDATION_ERROR", "Unable to parse report dates", err.Error())
	}

	bills, err := GetAppContext(c).Bills().ListByShopSince(c.Request().Context(), shop.ID, from)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query bills", err.Error())
	}

	windowed := bills[:0:0]
	for _, b := range bills {
		if b.CreatedAt.After(to) {
			continue
		}
		windowed = append(windowed, b)
	}

	records := ledger.FromBills(windowed)
	summary := ledger.Aggregate(records, time.Time{})

	result := map[string]interface{}{
		"from":    from,
		"to":      to,
		"summary": summary,
	}

	if entitlement.AdvancedReports && len(windowed) > 0 {
		totals := make([]float64, 0, len(windowed))
		for _, b := range windowed {
			f, _ := b.TotalAmount.Float64()
			totals = append(totals, f)
		}
		mean, _ := stats.Mean(totals)
		median, _ := stats.Median(totals)
		max, _ := stats.Max(totals)
		result["stats"] = map[string]float64{
			"mean_bill":   mean,
			"median_bill": median,
			"max_bill":    max,
		}
	}

	return ok(c, result)
}

type billExportRow struct {
	BillID        string `csv:"bill_id"`
	CreatedAt     string `csv:"created_at"`
	PaymentMode   string `csv:"payment_mode"`
	CustomerPhone string `csv:"customer_phone"`
	TotalAmount   string `csv:"total_amount"`
}

func exportReport(c echo.Context) error {
	shop, err := ownerShop(c)
	if shop == nil {
		return err
	}
	if !plans.EffectivePlan(shop, time.Now()).ExportEnabled {
		return fail(c, http.StatusForbidden, "PLAN_REQUIRED", "CSV export requires a paid plan", nil)
	}

	from, to, err := reportWindow(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "VALIDATION_ERROR", "Unable to parse report dates", err.Error())
	}

	bills, err := GetAppContext(c).Bills().ListByShopSince(c.Request().Context(), shop.ID, from)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query bills", err.Error())
	}

	rows := make([]billExportRow, 0, len(bills))
	for _, b := range bills {
		if b.CreatedAt.After(to) {
			continue
		}
		rows = append(rows, toExportRow(b))
	}

	csvText, err := gocsv.MarshalString(&rows)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "EXPORT_ERROR", "Failed to build CSV", err.Error())
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="bills.csv"`)
	return c.Blob(http.StatusOK, "text/csv", []byte(csvText))
}

func toExportRow(b domain.Bill) billExportRow {
	return billExportRow{
		BillID:        strconv.FormatInt(b.ID, 10),
		CreatedAt:     b.CreatedAt.Format(time.RFC3339),
		PaymentMode:   b.PaymentMode,
		CustomerPhone: b.CustomerPhone,
		TotalAmount:   b.TotalAmount.StringFixed(2),
	}
}
