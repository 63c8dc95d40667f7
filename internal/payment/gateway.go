package payment

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"time"

	"github.com/guonaihong/gout"
	"go.uber.org/zap"

	"github.com/billzio/billzio/config"
)

// Order is the handle returned by the gateway for a created order
type Order struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"` // minor units
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
}

// Gateway creates payment orders on the external provider
type Gateway interface {
	CreateOrder(ctx context.Context, amountMinor int64, currency, receipt string) (*Order, error)
}

// razorpayGateway talks to a Razorpay compatible orders API
type razorpayGateway struct {
	endpoint  string
	keyID     string
	keySecret string
	timeout   time.Duration
}

// NewRazorpayGateway builds a gateway client from config. Returns
// ErrGatewayNotConfigured when credentials are missing.
func NewRazorpayGateway(cfg config.GatewayConfig) (Gateway, error) {
	if cfg.KeyID == "" || cfg.KeySecret == "" {
		return nil, ErrGatewayNotConfigured
	}
	timeout := time.Duration(cfg.Timeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &razorpayGateway{
		endpoint:  cfg.Endpoint,
		keyID:     cfg.KeyID,
		keySecret: cfg.KeySecret,
		timeout:   timeout,
	}, nil
}

func (g *razorpayGateway) CreateOrder(ctx context.Context, amountMinor int64, currency, receipt string) (*Order, error) {
	if amountMinor <= 0 {
		return nil, &GatewayError{Status: http.StatusBadRequest, Message: "amount must be a positive number of minor units"}
	}
	if currency == "" {
		currency = "INR"
	}

	auth := base64.StdEncoding.EncodeToString([]byte(g.keyID + ":" + g.keySecret))

	var rsp struct {
		ID       string `json:"id"`
		Amount   int64  `json:"amount"`
		Currency string `json:"currency"`
		Receipt  string `json:"receipt"`
		Error    struct {
			Description string `json:"description"`
		} `json:"error"`
	}
	var code int
	err := gout.POST(g.endpoint+"/v1/orders").
		WithContext(ctx).
		SetTimeout(g.timeout).
		SetHeader(gout.H{"Authorization": "Basic " + auth}).
		SetJSON(gout.H{
			"amount":   amountMinor,
			"currency": currency,
			"receipt":  receipt,
		}).
		BindJSON(&rsp).
		Code(&code).
		Do()
	if err != nil {
		zap.L().Warn("payment gateway unreachable", zap.Error(err))
		return nil, &GatewayError{Status: http.StatusBadGateway, Message: "gateway unreachable"}
	}
	if code < 200 || code >= 300 {
		msg := rsp.Error.Description
		if msg == "" {
			msg = fmt.Sprintf("order rejected with status %d", code)
		}
		return nil, &GatewayError{Status: code, Message: msg}
	}

	return &Order{ID: rsp.ID, Amount: rsp.Amount, Currency: rsp.Currency, Receipt: rsp.Receipt}, nil
}
