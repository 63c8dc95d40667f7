package adminapi

import "github.com/billzio/billzio/internal/webserver"

// RegisterRoutes installs every API route on the initialized web server
func RegisterRoutes() {
	webserver.RegisterHealth()

	registerAuthRoutes()
	registerShopRoutes()
	registerProductRoutes()
	registerBillRoutes()
	registerReportRoutes()
	registerPaymentRoutes()
	registerSummaryRoutes()
	registerSchedulerRoutes()
	registerSystemRoutes()
}
