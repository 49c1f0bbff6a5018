package services

import (
	"context"
	"sync"
	"time"

	"resepi/internal/metrics"

	"github.com/codeGROOVE-dev/retry"
	"github.com/sirupsen/logrus"
)

// EngagementService 食谱点赞/浏览计数。递增是 fire-and-forget：调用方不等待结果，
// 失败只记录日志，不影响页面渲染。
type EngagementService struct {
	store    CounterStore
	timeout  time.Duration
	attempts uint
	delay    time.Duration
	inflight sync.WaitGroup
}

func NewEngagementService(store CounterStore, timeout time.Duration) *EngagementService {
	return &EngagementService{
		store:    store,
		timeout:  timeout,
		attempts: 3,
		delay:    50 * time.Millisecond,
	}
}

// IncrementLike schedules one like increment for recipeID.
func (s *EngagementService) IncrementLike(recipeID string) {
	s.fire(LikesKey, recipeID)
}

// IncrementView schedules one view increment for recipeID.
func (s *EngagementService) IncrementView(recipeID string) {
	s.fire(ViewsKey, recipeID)
}

func (s *EngagementService) fire(key, recipeID string) {
	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()
		_ = s.Increment(ctx, key, recipeID)
	}()
}

// Increment performs a single counter increment synchronously, retrying
// transient failures. A retry after a lost reply may count twice; counters
// are at-least-once. The error is logged and returned for callers that care.
func (s *EngagementService) Increment(ctx context.Context, key, recipeID string) error {
	err := retry.Do(
		func() error {
			_, err := s.store.Incr(ctx, key, recipeID)
			return err
		},
		retry.Attempts(s.attempts),
		retry.Delay(s.delay),
		retry.Context(ctx),
		retry.OnRetry(func(n uint, err error) {
			logrus.WithError(err).WithFields(logrus.Fields{"key": key, "attempt": n}).Debug("Retrying counter increment")
		}),
	)
	if err != nil {
		metrics.EngagementIncrements.WithLabelValues(key, "error").Inc()
		logrus.WithError(err).WithFields(logrus.Fields{
			"key":       key,
			"recipe_id": recipeID,
		}).Warn("Engagement counter increment failed")
		return err
	}
	metrics.EngagementIncrements.WithLabelValues(key, "ok").Inc()
	return nil
}

// Counts 读取点赞数与浏览数；存储不可用时返回 0
type Counts struct {
	Likes int64 `json:"likes"`
	Views int64 `json:"views"`
}

// Counts is bounded by the counter timeout so a stalled store cannot hold up
// the page.
func (s *EngagementService) Counts(ctx context.Context, recipeID string) Counts {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	vals, err := s.store.Get(ctx, recipeID, LikesKey, ViewsKey)
	if err != nil {
		logrus.WithError(err).WithField("recipe_id", recipeID).Warn("Read engagement counters failed")
		return Counts{}
	}
	return Counts{Likes: vals[0], Views: vals[1]}
}

// Wait blocks until every scheduled increment has finished.
func (s *EngagementService) Wait() {
	s.inflight.Wait()
}
