package scheduler

import (
	"context"
	"time"

	planservice "estate_sales_backend/internal/paymentplans/service"
	"estate_sales_backend/platform/logger"
)

// PlanScanner periodically asks the payment plans service to publish
// reminders for installments that have come due.
type PlanScanner struct {
	plans    *planservice.Service
	interval time.Duration
	log      *logger.Logger
}

func NewPlanScanner(plans *planservice.Service, interval time.Duration, log *logger.Logger) *PlanScanner {
	if interval <= 0 {
		interval = 15 * time.Minute
	}
	return &PlanScanner{plans: plans, interval: interval, log: log}
}

func (s *PlanScanner) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		n, err := s.plans.DispatchDue(ctx)
		if err != nil {
			s.log.Warn("payment plan scan failed", "error", err)
			continue
		}
		if n > 0 {
			s.log.Info("payment plan reminders dispatched", "count", n)
		}
	}
}
