package payment

import (
	"errors"
	"fmt"
)

var (
	// ErrGatewayNotConfigured means the gateway credentials are absent.
	// Payment endpoints hard-fail on this; there is no simulation mode
	// for money movement.
	ErrGatewayNotConfigured = errors.New("payment gateway not configured")

	// ErrShopNotFound means the verify request names a shop id with no
	// record. The signature may be valid, but there is nothing to grant;
	// this is a request error, not the persist-failure case.
	ErrShopNotFound = errors.New("shop not found")

	// ErrSignatureMismatch means the supplied signature does not match
	// the HMAC of orderId|paymentId. No state change may follow it.
	ErrSignatureMismatch = errors.New("invalid payment signature")

	// ErrPaymentVerifiedPersistFailed means the signature was valid but
	// the subscription write failed: money captured, entitlement not
	// granted. Callers must alert on it, and the verify call stays
	// retryable because no receipt is recorded.
	ErrPaymentVerifiedPersistFailed = errors.New("payment verified but subscription update failed")
)

// GatewayError is a rejection or transport failure from the external
// payment provider.
type GatewayError struct {
	Status  int
	Message string
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("gateway error (status %d): %s", e.Status, e.Message)
}
