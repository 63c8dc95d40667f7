package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/billzio/billzio/internal/domain"
	"github.com/billzio/billzio/pkg/common"
)

const (
	SchedDailySummary      = "daily_summary"
	SchedSubscriptionSweep = "subscription_sweep"
)

// StartSchedulerService runs enabled schedulers periodically
func (a *Application) StartSchedulerService(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(10 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				a.runSchedulers()
			}
		}
	}()
}

// runSchedulers executes enabled schedulers whose next_run_at has passed
func (a *Application) runSchedulers() {
	var schedulers []domain.SysScheduler
	a.gormDB.Where("status = ?", common.ENABLED).Find(&schedulers)
	now := time.Now()
	for _, sched := range schedulers {
		if sched.NextRunAt.IsZero() || !now.Before(sched.NextRunAt) {
			a.runScheduler(&sched)
			a.gormDB.Model(&domain.SysScheduler{}).
				Where("id = ?", sched.ID).
				Update("next_run_at", now.Add(time.Duration(sched.Interval)*time.Second))
		}
	}
}

func (a *Application) runScheduler(sched *domain.SysScheduler) {
	defer func() {
		if err := recover(); err != nil {
			zap.S().Error(err)
		}
	}()

	var result = "success"
	var message string

	switch sched.TaskType {
	case SchedDailySummary:
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		report, err := a.summarySvc.Run(ctx, false)
		cancel()
		if err != nil {
			result = "failed"
			message = err.Error()
		} else {
			message = fmt.Sprintf("mode=%s processed=%d", report.Mode, report.Processed)
		}
	case SchedSubscriptionSweep:
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		count, err := a.shops.DowngradeExpired(ctx, time.Now())
		cancel()
		if err != nil {
			result = "failed"
			message = err.Error()
		} else {
			message = fmt.Sprintf("downgraded=%d", count)
		}
	default:
		result = "skipped"
		message = "unknown task type"
	}

	if result == "failed" {
		zap.L().Error("scheduler task failed",
			zap.String("task_type", sched.TaskType), zap.String("message", message))
	} else {
		zap.L().Info("scheduler task finished",
			zap.String("task_type", sched.TaskType), zap.String("message", message))
	}

	a.gormDB.Model(&domain.SysScheduler{}).Where("id = ?", sched.ID).Updates(map[string]interface{}{
		"last_run_at":  time.Now(),
		"last_result":  result,
		"last_message": message,
	})
}

// RunSchedulerNow triggers a scheduler row immediately, regardless of its
// next_run_at.
func (a *Application) RunSchedulerNow(id int64) error {
	var sched domain.SysScheduler
	if err := a.gormDB.First(&sched, id).Error; err != nil {
		return err
	}
	a.runScheduler(&sched)
	a.gormDB.Model(&domain.SysScheduler{}).
		Where("id = ?", sched.ID).
		Update("next_run_at", time.Now().Add(time.Duration(sched.Interval)*time.Second))
	return nil
}
