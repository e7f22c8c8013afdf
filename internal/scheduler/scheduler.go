package scheduler

import (
	"context"
	"time"

	"taskhub/pkg/logger"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Expirer flips overdue pending invitations to expired.
type Expirer interface {
	ExpireOverdue(ctx context.Context, now time.Time) (int64, error)
}

// Scheduler wraps cron-based jobs.
type Scheduler struct {
	cron *cron.Cron
}

func New() *Scheduler {
	return &Scheduler{cron: cron.New()}
}

// ScheduleInvitationSweep runs SweepInvitations on spec ("@every 1h",
// "0 * * * *", ...).
func (s *Scheduler) ScheduleInvitationSweep(spec string, invitations Expirer) (cron.EntryID, error) {
	return s.cron.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		SweepInvitations(ctx, invitations, time.Now().UTC())
	})
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop waits for running jobs to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

// SweepInvitations is one pass of the expiry job.
func SweepInvitations(ctx context.Context, invitations Expirer, now time.Time) int64 {
	n, err := invitations.ExpireOverdue(ctx, now)
	if err != nil {
		logger.ErrorLogger.Error("Error expiring invitations", zap.Error(err))
		return 0
	}
	if n > 0 {
		logger.SystemLogger.Info("Invitations expired", zap.Int64("count", n))
	}
	return n
}
