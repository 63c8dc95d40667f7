package adminapi

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/billzio/billzio/internal/domain"
	"github.com/billzio/billzio/internal/payment"
	"github.com/billzio/billzio/internal/plans"
	"github.com/billzio/billzio/internal/webserver"
	"github.com/billzio/billzio/pkg/common"
)

type createOrderPayload struct {
	PlanID   string `json:"planId"`
	Amount   int64  `json:"amount"` // whole rupees, used when no planId is given
	Currency string `json:"currency"`
}

type verifyPayload struct {
	OrderID   string `json:"orderId" validate:"required"`
	PaymentID string `json:"paymentId" validate:"required"`
	Signature string `json:"signature" validate:"required"`
	PlanID    string `json:"planId" validate:"required"`
}

func registerPaymentRoutes() {
	webserver.PubGET("/api/v1/plans", listPlans)
	webserver.ApiPOST("/payment/create-order", createPaymentOrder)
	webserver.ApiPOST("/payment/verify", verifyPayment)
}

func listPlans(c echo.Context) error {
	return ok(c, plans.All())
}

// createPaymentOrder opens a gateway order for a plan purchase and
// records it in the audit trail. The amount sent to the gateway is in
// minor units (paise).
func createPaymentOrder(c echo.Context) error {
	shop, err := ownerShop(c)
	if shop == nil {
		return err
	}

	var payload createOrderPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse request", err.Error())
	}

	// plan purchases price server-side from the registry; a raw amount
	// is accepted only without a planId
	planName := ""
	amountRupees := payload.Amount
	if payload.PlanID != "" {
		if !plans.Paid(payload.PlanID) {
			return fail(c, http.StatusBadRequest, "VALIDATION_ERROR", "planId must be BASIC or PRO", nil)
		}
		entitlement := plans.Resolve(payload.PlanID)
		planName = entitlement.Plan
		amountRupees = entitlement.Price
	}
	if amountRupees <= 0 {
		return fail(c, http.StatusBadRequest, "VALIDATION_ERROR", "amount must be a positive number", nil)
	}
	currency := payload.Currency
	if currency == "" {
		currency = "INR"
	}

	appCtx := GetAppContext(c)
	gateway := appCtx.PaymentGateway()
	if gateway == nil {
		return fail(c, http.StatusServiceUnavailable, "GATEWAY_UNCONFIGURED", "Payment gateway is not configured", nil)
	}

	amountMinor := amountRupees * 100
	order, err := gateway.CreateOrder(c.Request().Context(), amountMinor, currency, common.ReceiptNo())
	if err != nil {
		var gwErr *payment.GatewayError
		if errors.As(err, &gwErr) {
			return fail(c, http.StatusBadGateway, "GATEWAY_ERROR", "Payment gateway rejected the order", gwErr.Message)
		}
		return fail(c, http.StatusBadGateway, "GATEWAY_ERROR", "Payment gateway unreachable", nil)
	}

	record := domain.PaymentOrder{
		ID:             common.UUIDint64(),
		ShopID:         shop.ID,
		GatewayOrderID: order.ID,
		PlanID:         planName,
		Amount:         order.Amount,
		Currency:       order.Currency,
		Status:         domain.PaymentOrderCreated,
	}
	if err := appCtx.PaymentOrders().Create(c.Request().Context(), &record); err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to record payment order", err.Error())
	}

	return ok(c, map[string]interface{}{
		"orderId":  order.ID,
		"amount":   order.Amount,
		"currency": order.Currency,
		"keyId":    appCtx.Config().Gateway.KeyID,
	})
}

// verifyPayment checks the gateway callback signature and applies the
// plan upgrade. Signature mismatches change no state and leak no
// expected value.
func verifyPayment(c echo.Context) error {
	shop, err := ownerShop(c)
	if shop == nil {
		return err
	}

	var payload verifyPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse request", err.Error())
	}
	if payload.OrderID == "" || payload.PaymentID == "" || payload.Signature == "" {
		return fail(c, http.StatusBadRequest, "VALIDATION_ERROR", "orderId, paymentId and signature are required", nil)
	}

	result, err := GetAppContext(c).PaymentVerifier().VerifyAndApply(c.Request().Context(), payment.VerifyRequest{
		OrderID:   payload.OrderID,
		PaymentID: payload.PaymentID,
		Signature: payload.Signature,
		ShopID:    shop.ID,
		PlanID:    payload.PlanID,
	})
	if err != nil {
		switch {
		case errors.Is(err, payment.ErrGatewayNotConfigured):
			return fail(c, http.StatusServiceUnavailable, "GATEWAY_UNCONFIGURED", "Payment gateway is not configured", nil)
		case errors.Is(err, payment.ErrShopNotFound):
			return fail(c, http.StatusNotFound, "SHOP_NOT_FOUND", "Shop not found", nil)
		case errors.Is(err, payment.ErrSignatureMismatch):
			return fail(c, http.StatusBadRequest, "SIGNATURE_MISMATCH", "Payment verification failed", nil)
		case errors.Is(err, payment.ErrPaymentVerifiedPersistFailed):
			return fail(c, http.StatusInternalServerError, "PERSIST_FAILED", "Payment verified but activation failed, retry verification", nil)
		default:
			return fail(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
		}
	}

	expiry := ""
	if result.Expiry != nil {
		expiry = result.Expiry.Format(time.RFC3339)
	}
	return ok(c, map[string]interface{}{
		"plan":     result.Plan,
		"expiry":   expiry,
		"replayed": result.Replayed,
	})
}
