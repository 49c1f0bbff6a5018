package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingSweeper struct {
	calls atomic.Int32
	err   error
}

func (c *countingSweeper) SweepExpiredTokens(context.Context) (int64, error) {
	c.calls.Add(1)
	return 2, c.err
}

func TestSchedulerRegister(t *testing.T) {
	s := NewScheduler(&countingSweeper{})
	require.NoError(t, s.Register("@hourly"))
	require.NoError(t, s.Register("*/5 * * * *"))
	assert.Error(t, s.Register("bukan jadual"))
}

func TestSweepTokensSurvivesErrors(t *testing.T) {
	sweeper := &countingSweeper{err: errors.New("db down")}
	s := NewScheduler(sweeper)

	s.sweepTokens()
	sweeper.err = nil
	s.sweepTokens()
	assert.Equal(t, int32(2), sweeper.calls.Load())
}
