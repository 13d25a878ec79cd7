package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"collabtrack/internal/pkg/config"
)

type fakeSweeper struct {
	idle  time.Duration
	calls int
}

func (f *fakeSweeper) Cleanup(idle time.Duration) int {
	f.idle = idle
	f.calls++
	return 3
}

func TestStartRegistersLimiterCleanup(t *testing.T) {
	sweeper := &fakeSweeper{}
	s := NewScheduler(zap.NewNop(), sweeper)

	require.NoError(t, s.Start(&config.RateLimitConfig{IdleTTL: 60}))
	defer s.Stop()

	assert.Contains(t, s.Entries(), "limiter_cleanup")
}

func TestStartRejectsBadSchedule(t *testing.T) {
	s := NewScheduler(zap.NewNop(), &fakeSweeper{})
	assert.Error(t, s.Start(&config.RateLimitConfig{CleanupSchedule: "not a cron"}))
}

func TestCleanupLimiter(t *testing.T) {
	sweeper := &fakeSweeper{}
	s := NewScheduler(zap.NewNop(), sweeper)

	assert.Equal(t, 3, s.CleanupLimiter(0))
	assert.Equal(t, 10*time.Minute, sweeper.idle)

	assert.Zero(t, NewScheduler(zap.NewNop(), nil).CleanupLimiter(time.Minute))
}
