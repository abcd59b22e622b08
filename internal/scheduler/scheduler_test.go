package scheduler

import (
	"io"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingPruner struct {
	calls atomic.Int32
}

func (p *countingPruner) Prune() int {
	p.calls.Add(1)
	return 1
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestSchedulerRunsPruneJob(t *testing.T) {
	s := NewScheduler(quietLogger())
	p := &countingPruner{}

	require.NoError(t, s.SchedulePrune("@every 1s", "estimates", p))
	require.NoError(t, s.Start())
	defer s.Stop()

	assert.True(t, s.IsRunning())
	assert.False(t, s.NextRun().IsZero())
	assert.Eventually(t, func() bool { return p.calls.Load() > 0 }, 3*time.Second, 50*time.Millisecond)
}

func TestSchedulerRejectsBadJobs(t *testing.T) {
	s := NewScheduler(quietLogger())

	assert.Error(t, s.Start(), "no jobs scheduled")
	assert.Error(t, s.SchedulePrune("not a schedule", "estimates", &countingPruner{}))
	assert.Error(t, s.SchedulePrune("@every 1m", "estimates", nil))
	assert.Zero(t, s.JobCount())
}

func TestSchedulerLifecycle(t *testing.T) {
	s := NewScheduler(quietLogger())
	require.NoError(t, s.SchedulePrune("@every 1h", "estimates", &countingPruner{}))
	require.NoError(t, s.Start())

	assert.Error(t, s.Start())
	assert.Error(t, s.SchedulePrune("@every 1h", "other", &countingPruner{}))

	s.Stop()
	assert.False(t, s.IsRunning())
	assert.True(t, s.NextRun().IsZero())
	s.Stop()
}
