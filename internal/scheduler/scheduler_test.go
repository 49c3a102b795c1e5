package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type countingPurger struct {
	mu     sync.Mutex
	calls  int
	maxAge time.Duration
	err    error
}

func (p *countingPurger) PurgeExpired(_ context.Context, maxAge time.Duration) (int64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	p.maxAge = maxAge
	return 3, p.err
}

func TestStartPurgesImmediately(t *testing.T) {
	p := &countingPurger{}
	s := NewScheduler(p, 2*time.Hour, zap.NewNop())

	assert.NoError(t, s.Start("@hourly"))
	defer s.Stop()

	p.mu.Lock()
	defer p.mu.Unlock()
	assert.Equal(t, 1, p.calls)
	assert.Equal(t, 2*time.Hour, p.maxAge)
}

func TestStartRejectsBadSchedule(t *testing.T) {
	s := NewScheduler(&countingPurger{}, time.Hour, zap.NewNop())
	assert.Error(t, s.Start("every tuesday"))
}

func TestPurgeFailureIsLogged(t *testing.T) {
	p := &countingPurger{err: errors.New("db down")}
	s := NewScheduler(p, time.Hour, zap.NewNop())

	assert.NotPanics(t, s.runPurge)
	assert.Equal(t, 1, p.calls)
}
