// Package summary implements the scheduled end-of-day owner report: for
// every eligible shop it aggregates today's ledger plus all-time credit
// exposure and hands the rendered message to the notification
// dispatcher. Without a privileged service key it runs in simulation
// mode on fabricated data and never contacts a real recipient.
package summary

import (
	"context"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/billzio/billzio/internal/domain"
	"github.com/billzio/billzio/internal/ledger"
	"github.com/billzio/billzio/internal/notify"
	"github.com/billzio/billzio/internal/subscription"
)

const (
	ModeLive       = "LIVE"
	ModeSimulation = "SIMULATION"
)

const (
	StatusSent    = "sent"
	StatusSkipped = "skipped"
	StatusFailed  = "failed"
)

// ShopSource lists shops eligible for the daily summary (admin scope)
type ShopSource interface {
	ListSummaryEligible(ctx context.Context) ([]domain.Shop, error)
}

// BillSource loads a shop's bills for aggregation
type BillSource interface {
	ListByShopSince(ctx context.Context, shopID int64, since time.Time) ([]domain.Bill, error)
	ListCredit(ctx context.Context, shopID int64) ([]domain.Bill, error)
}

// ShopResult is the per-shop outcome in a run report
type ShopResult struct {
	Shop         string `json:"shop"`
	Status       string `json:"status"`
	Error        string `json:"error,omitempty"`
	TotalSales   string `json:"total_sales,omitempty"`
	TotalPending string `json:"total_pending,omitempty"`
}

// Report is the outcome of one job run
type Report struct {
	Success   bool         `json:"success"`
	Mode      string       `json:"mode"`
	Processed int          `json:"processed"`
	Details   []ShopResult `json:"details"`
}

// Service runs the daily summary job
type Service struct {
	shops       ShopSource
	bills       BillSource
	dispatcher  notify.Dispatcher
	serviceKey  string
	loc         *time.Location
	maxWorkers  int
	shopTimeout time.Duration
	now         func() time.Time
}

func NewService(shops ShopSource, bills BillSource, dispatcher notify.Dispatcher,
	serviceKey string, loc *time.Location, maxWorkers int, shopTimeout time.Duration) *Service {
	if loc == nil {
		loc = time.Local
	}
	if maxWorkers <= 0 {
		maxWorkers = 8
	}
	if shopTimeout <= 0 {
		shopTimeout = 30 * time.Second
	}
	return &Service{
		shops:       shops,
		bills:       bills,
		dispatcher:  dispatcher,
		serviceKey:  serviceKey,
		loc:         loc,
		maxWorkers:  maxWorkers,
		shopTimeout: shopTimeout,
		now:         time.Now,
	}
}

// SetClock overrides the service clock (tests)
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// Run executes the job. With force, the per-shop send-hour gate is
// skipped. Shops run on a bounded worker pool, each under its own
// timeout; one shop's failure is reported and the batch continues.
func (s *Service) Run(ctx context.Context, force bool) (*Report, error) {
	if s.serviceKey == "" {
		return s.runSimulation(), nil
	}

	shops, err := s.shops.ListSummaryEligible(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now().In(s.loc)
	report := &Report{Success: true, Mode: ModeLive}
	if len(shops) == 0 {
		return report, nil
	}

	pool, err := ants.NewPool(s.maxWorkers)
	if err != nil {
		return nil, err
	}
	defer pool.Release()

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	for _, shop := range shops {
		// Expiry is checked per run, not left to the nightly sweep: a
		// lapsed shop is FREE from the moment its subscription ends.
		if _, lapsed := subscription.Reconcile(shop, now); lapsed {
			report.Details = append(report.Details, ShopResult{
				Shop:   shop.Name,
				Status: StatusSkipped,
				Error:  "subscription expired",
			})
			continue
		}
		if !force && shop.SummaryHour() != now.Hour() {
			continue
		}

		shop := shop
		wg.Add(1)
		err := pool.Submit(func() {
			defer wg.Done()
			result := s.processShop(ctx, shop, now)
			mu.Lock()
			report.Details = append(report.Details, result)
			if result.Status == StatusSent {
				report.Processed++
			}
			mu.Unlock()
		})
		if err != nil {
			wg.Done()
			mu.Lock()
			report.Details = append(report.Details, ShopResult{Shop: shop.Name, Status: StatusFailed, Error: err.Error()})
			mu.Unlock()
		}
	}
	wg.Wait()

	return report, nil
}

func (s *Service) processShop(ctx context.Context, shop domain.Shop, now time.Time) ShopResult {
	ctx, cancel := context.WithTimeout(ctx, s.shopTimeout)
	defer cancel()

	todays, err := s.bills.ListByShopSince(ctx, shop.ID, ledger.DayStart(now))
	if err != nil {
		zap.L().Error("daily summary: load bills failed",
			zap.Int64("shop_id", shop.ID), zap.Error(err))
		return ShopResult{Shop: shop.Name, Status: StatusFailed, Error: err.Error()}
	}
	creditBills, err := s.bills.ListCredit(ctx, shop.ID)
	if err != nil {
		zap.L().Error("daily summary: load credit bills failed",
			zap.Int64("shop_id", shop.ID), zap.Error(err))
		return ShopResult{Shop: shop.Name, Status: StatusFailed, Error: err.Error()}
	}

	sales := ledger.Aggregate(ledger.FromBills(todays), time.Time{})
	pending := ledger.TotalPending(ledger.CreditBalances(ledger.FromBills(creditBills)))

	message := FormatOwnerMessage(shop.Name, now, sales, pending)
	if err := s.dispatcher.Send(ctx, shop.Phone, message); err != nil {
		zap.L().Error("daily summary: dispatch failed",
			zap.Int64("shop_id", shop.ID), zap.Error(err))
		return ShopResult{Shop: shop.Name, Status: StatusFailed, Error: err.Error()}
	}

	return ShopResult{
		Shop:         shop.Name,
		Status:       StatusSent,
		TotalSales:   sales.Total.StringFixed(2),
		TotalPending: pending.StringFixed(2),
	}
}

// runSimulation fabricates example shops and logs their summaries. No
// store reads, no dispatcher calls: safe to hit on an unconfigured
// deployment.
func (s *Service) runSimulation() *Report {
	zap.L().Warn("no service key configured, daily summary running in simulation mode")

	now := s.now().In(s.loc)
	mockShops := []struct {
		name    string
		sales   ledger.Summary
		pending decimal.Decimal
	}{
		{
			name: "Palani's Shop (Simulated)",
			sales: ledger.Summary{
				Total: decimal.NewFromInt(1500),
				Cash:  decimal.NewFromInt(1000),
				UPI:   decimal.NewFromInt(500),
				Count: 2,
			},
			pending: decimal.NewFromInt(250),
		},
		{
			name: "Demo Store (Simulated)",
			sales: ledger.Summary{
				Total: decimal.NewFromInt(1500),
				Cash:  decimal.NewFromInt(1000),
				UPI:   decimal.NewFromInt(500),
				Count: 2,
			},
			pending: decimal.NewFromInt(250),
		},
	}

	report := &Report{Success: true, Mode: ModeSimulation}
	for _, mock := range mockShops {
		message := FormatOwnerMessage(mock.name, now, mock.sales, mock.pending)
		zap.L().Info("daily summary (simulated)",
			zap.String("shop", mock.name),
			zap.String("message", message))
		report.Details = append(report.Details, ShopResult{
			Shop:         mock.name,
			Status:       "sent (simulated)",
			TotalSales:   mock.sales.Total.StringFixed(2),
			TotalPending: mock.pending.StringFixed(2),
		})
		report.Processed++
	}
	return report
}
