package cron

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type countingRefresher struct {
	calls atomic.Int32
	err   error
}

func (c *countingRefresher) RefreshCandidates(ctx context.Context) (int, error) {
	c.calls.Add(1)
	return 3, c.err
}

func TestScheduler_RunOnce(t *testing.T) {
	s := NewScheduler(nil)
	r := &countingRefresher{}
	RegisterCandidateRefresh(s, r, time.Minute)

	s.RunOnce(context.Background())
	assert.Equal(t, int32(1), r.calls.Load())
}

func TestScheduler_FailingJobKeepsRunning(t *testing.T) {
	s := NewScheduler(nil)
	r := &countingRefresher{err: errors.New("db down")}
	RegisterCandidateRefresh(s, r, 5*time.Millisecond)

	s.Start(context.Background())
	assert.Eventually(t, func() bool { return r.calls.Load() >= 3 }, time.Second, 5*time.Millisecond)
	s.Stop()

	after := r.calls.Load()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, after, r.calls.Load())
}

func TestScheduler_IgnoresNonPositiveInterval(t *testing.T) {
	s := NewScheduler(nil)
	s.AddJob(Job{Name: "broken", Interval: 0, Fn: func(context.Context) error { return nil }})
	assert.Empty(t, s.jobs)
}

func TestScheduler_StopWithoutStart(t *testing.T) {
	s := NewScheduler(nil)
	s.Stop()
}
