package adminapi

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func summaryRequest(header map[string]string) echo.Context {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/daily-summary?force=true", nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	return echo.New().NewContext(req, httptest.NewRecorder())
}

func TestServiceKeyGatesLiveSummaryTrigger(t *testing.T) {
	// unconfigured key: simulation mode, any owner may trigger
	assert.True(t, serviceKeyPresented(summaryRequest(nil), ""))

	// configured key: the batch crosses owner boundaries, so the
	// caller must present it
	assert.False(t, serviceKeyPresented(summaryRequest(nil), "svc-key"))
	assert.False(t, serviceKeyPresented(summaryRequest(map[string]string{"X-Service-Key": "wrong"}), "svc-key"))
	assert.True(t, serviceKeyPresented(summaryRequest(map[string]string{"X-Service-Key": "svc-key"}), "svc-key"))
}
