package services

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

const sweepTimeout = time.Minute

// TokenSweeper clears verification tokens that are past their expiry.
type TokenSweeper interface {
	SweepExpiredTokens(ctx context.Context) (int64, error)
}

// Scheduler 定时任务：目前只有过期令牌清理
type Scheduler struct {
	cron    *cron.Cron
	sweeper TokenSweeper
}

func NewScheduler(sweeper TokenSweeper) *Scheduler {
	l := cron.PrintfLogger(logrus.WithField("system", "cron"))
	return &Scheduler{
		cron: cron.New(cron.WithChain(
			cron.Recover(l),
			cron.SkipIfStillRunning(l),
		)),
		sweeper: sweeper,
	}
}

// Register adds the token sweep on schedule (standard cron syntax or a
// descriptor such as "@hourly").
func (s *Scheduler) Register(schedule string) error {
	if _, err := s.cron.AddFunc(schedule, s.sweepTokens); err != nil {
		return fmt.Errorf("register token sweep %q: %w", schedule, err)
	}
	logrus.WithField("schedule", schedule).Info("Registered token sweep job")
	return nil
}

func (s *Scheduler) sweepTokens() {
	ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
	defer cancel()

	n, err := s.sweeper.SweepExpiredTokens(ctx)
	if err != nil {
		logrus.WithError(err).Error("Token sweep failed")
		return
	}
	if n > 0 {
		logrus.WithField("cleared", n).Info("Expired verification tokens cleared")
	}
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop waits for a running job to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}
