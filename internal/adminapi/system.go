package adminapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/spf13/cast"

	"github.com/billzio/billzio/internal/webserver"
	"github.com/billzio/billzio/pkg/metrics"
)

// gauge names the monitor tasks record
var knownGauges = map[string]bool{
	"system_cpuuse":                 true,
	"system_memuse":                 true,
	"process_cpuuse":                true,
	"process_memuse":                true,
	"business_shops":                true,
	"business_bills_today":          true,
	"business_active_subscriptions": true,
}

func registerSystemRoutes() {
	webserver.ApiGET("/system/metrics", getMetricRange)
}

// getMetricRange returns the recorded points of one gauge over the last
// N hours (default 24).
func getMetricRange(c echo.Context) error {
	name := strings.TrimSpace(c.QueryParam("name"))
	if !knownGauges[name] {
		return fail(c, http.StatusBadRequest, "VALIDATION_ERROR", "Unknown metric name", nil)
	}

	hours := cast.ToInt(c.QueryParam("hours"))
	if hours <= 0 || hours > 24*30 {
		hours = 24
	}

	end := time.Now().Unix()
	start := end - int64(hours)*3600
	points, err := metrics.GetRange(name, start, end)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "METRICS_ERROR", "Failed to read metrics", err.Error())
	}
	return ok(c, points)
}
