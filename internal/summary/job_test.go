package summary

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/billzio/billzio/internal/domain"
	"github.com/billzio/billzio/internal/plans"
)

type fakeShopSource struct {
	shops []domain.Shop
	err   error
}

func (f *fakeShopSource) ListSummaryEligible(ctx context.Context) ([]domain.Shop, error) {
	return f.shops, f.err
}

type fakeBillSource struct {
	bills   map[int64][]domain.Bill
	credits map[int64][]domain.Bill
	failFor int64
}

func (f *fakeBillSource) ListByShopSince(ctx context.Context, shopID int64, since time.Time) ([]domain.Bill, error) {
	if shopID == f.failFor {
		return nil, errors.New("db timeout")
	}
	return f.bills[shopID], nil
}

func (f *fakeBillSource) ListCredit(ctx context.Context, shopID int64) ([]domain.Bill, error) {
	if shopID == f.failFor {
		return nil, errors.New("db timeout")
	}
	return f.credits[shopID], nil
}

type captureDispatcher struct {
	mu   sync.Mutex
	sent map[string]string // recipient -> message
	err  error
}

func newCaptureDispatcher() *captureDispatcher {
	return &captureDispatcher{sent: make(map[string]string)}
}

func (d *captureDispatcher) Send(ctx context.Context, recipient, message string) error {
	if d.err != nil {
		return d.err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sent[recipient] = message
	return nil
}

func bill(total int64, mode string, at time.Time) domain.Bill {
	return domain.Bill{TotalAmount: decimal.NewFromInt(total), PaymentMode: mode, CreatedAt: at}
}

func TestRunSimulationWithoutServiceKey(t *testing.T) {
	dispatcher := newCaptureDispatcher()
	svc := NewService(&fakeShopSource{}, &fakeBillSource{}, dispatcher, "", time.UTC, 4, time.Second)

	report, err := svc.Run(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, ModeSimulation, report.Mode)
	assert.True(t, report.Success)
	assert.Equal(t, 2, report.Processed)
	// simulation never contacts a real recipient
	assert.Empty(t, dispatcher.sent)
}

func TestRunSendsAtConfiguredHour(t *testing.T) {
	now := time.Date(2025, 5, 20, 21, 5, 0, 0, time.UTC)
	day := now.Truncate(24 * time.Hour)

	shops := &fakeShopSource{shops: []domain.Shop{
		{ID: 1, Name: "Palani's Shop", Phone: "9000000001", DailySummaryTime: "21:00"},
		{ID: 2, Name: "Late Shop", Phone: "9000000002", DailySummaryTime: "22:00"},
	}}
	bills := &fakeBillSource{
		bills: map[int64][]domain.Bill{
			1: {bill(1000, domain.PayModeCash, now.Add(-time.Hour)), bill(500, domain.PayModeUPI, now.Add(-2*time.Hour))},
		},
		credits: map[int64][]domain.Bill{
			1: {{TotalAmount: decimal.NewFromInt(250), PaymentMode: domain.PayModeCredit, CustomerPhone: "9876500001", CreatedAt: day}},
		},
	}
	dispatcher := newCaptureDispatcher()

	svc := NewService(shops, bills, dispatcher, "svc-key", time.UTC, 4, time.Second)
	svc.SetClock(func() time.Time { return now })

	report, err := svc.Run(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, ModeLive, report.Mode)
	assert.Equal(t, 1, report.Processed)

	msg, okk := dispatcher.sent["9000000001"]
	require.True(t, okk)
	assert.Contains(t, msg, "Palani's Shop")
	assert.Contains(t, msg, "₹1,500")
	assert.Contains(t, msg, "₹250")
	assert.Contains(t, msg, "Good night!")
	assert.Contains(t, msg, now.Format("02/01/2006"))

	// 22:00 shop was gated
	_, sentLate := dispatcher.sent["9000000002"]
	assert.False(t, sentLate)
}

func TestRunForceSkipsHourGate(t *testing.T) {
	now := time.Date(2025, 5, 20, 9, 0, 0, 0, time.UTC)
	shops := &fakeShopSource{shops: []domain.Shop{
		{ID: 1, Name: "Palani's Shop", Phone: "9000000001", DailySummaryTime: "21:00"},
	}}
	bills := &fakeBillSource{bills: map[int64][]domain.Bill{}, credits: map[int64][]domain.Bill{}}
	dispatcher := newCaptureDispatcher()

	svc := NewService(shops, bills, dispatcher, "svc-key", time.UTC, 4, time.Second)
	svc.SetClock(func() time.Time { return now })

	report, err := svc.Run(context.Background(), true)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Processed)
	assert.Contains(t, dispatcher.sent["9000000001"], "₹0")
}

func TestRunSkipsLapsedSubscription(t *testing.T) {
	now := time.Date(2025, 5, 20, 21, 0, 0, 0, time.UTC)
	lapsed := now.Add(-24 * time.Hour)
	shops := &fakeShopSource{shops: []domain.Shop{
		{
			ID: 1, Name: "Lapsed Shop", Phone: "9000000001",
			DailySummaryTime:   "21:00",
			SubscriptionPlan:   plans.PlanBasic,
			SubscriptionStatus: domain.SubscriptionActive,
			SubscriptionExpiry: &lapsed,
		},
	}}
	bills := &fakeBillSource{bills: map[int64][]domain.Bill{}, credits: map[int64][]domain.Bill{}}
	dispatcher := newCaptureDispatcher()

	svc := NewService(shops, bills, dispatcher, "svc-key", time.UTC, 4, time.Second)
	svc.SetClock(func() time.Time { return now })

	report, err := svc.Run(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, 0, report.Processed)
	assert.Empty(t, dispatcher.sent)

	require.Len(t, report.Details, 1)
	assert.Equal(t, StatusSkipped, report.Details[0].Status)

	// force does not override the expiry gate
	report, err = svc.Run(context.Background(), true)
	require.NoError(t, err)
	assert.Equal(t, 0, report.Processed)
	assert.Empty(t, dispatcher.sent)
}

func TestRunContinuesAfterShopFailure(t *testing.T) {
	now := time.Date(2025, 5, 20, 21, 0, 0, 0, time.UTC)
	shops := &fakeShopSource{shops: []domain.Shop{
		{ID: 1, Name: "Broken Shop", Phone: "9000000001", DailySummaryTime: "21:00"},
		{ID: 2, Name: "Healthy Shop", Phone: "9000000002", DailySummaryTime: "21:00"},
	}}
	bills := &fakeBillSource{
		bills:   map[int64][]domain.Bill{},
		credits: map[int64][]domain.Bill{},
		failFor: 1,
	}
	dispatcher := newCaptureDispatcher()

	svc := NewService(shops, bills, dispatcher, "svc-key", time.UTC, 4, time.Second)
	svc.SetClock(func() time.Time { return now })

	report, err := svc.Run(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Processed)
	assert.Len(t, report.Details, 2)

	statuses := map[string]string{}
	for _, d := range report.Details {
		statuses[d.Shop] = d.Status
	}
	assert.Equal(t, StatusFailed, statuses["Broken Shop"])
	assert.Equal(t, StatusSent, statuses["Healthy Shop"])
}

func TestRunPropagatesListError(t *testing.T) {
	shops := &fakeShopSource{err: errors.New("db down")}
	svc := NewService(shops, &fakeBillSource{}, newCaptureDispatcher(), "svc-key", time.UTC, 4, time.Second)

	_, err := svc.Run(context.Background(), false)
	assert.Error(t, err)
}
