package core

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestScheduler(syncFn SyncFunc) *AutoSyncScheduler {
	return NewAutoSyncScheduler(syncFn, testLogger())
}

func TestSchedulerStartsOnlyWhenEnabledAndConnected(t *testing.T) {
	s := newTestScheduler(func(context.Context) error { return nil })
	defer s.Stop()

	require.NoError(t, s.Configure(true, 5, false))
	assert.False(t, s.Enabled(), "no task without a connection")

	require.NoError(t, s.Configure(false, 5, true))
	assert.False(t, s.Enabled())

	require.NoError(t, s.Configure(true, 5, true))
	assert.True(t, s.Enabled())
}

func TestSchedulerRejectsUnsupportedInterval(t *testing.T) {
	s := newTestScheduler(func(context.Context) error { return nil })
	defer s.Stop()

	err := s.Configure(true, 7, true)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.False(t, s.Enabled())

	for _, minutes := range AllowedSyncIntervals {
		assert.NoError(t, s.Configure(true, minutes, true))
	}
}

func TestSchedulerDisableStopsTask(t *testing.T) {
	s := newTestScheduler(func(context.Context) error { return nil })

	require.NoError(t, s.Configure(true, 1, true))
	require.True(t, s.Enabled())

	require.NoError(t, s.Configure(false, 1, true))
	assert.False(t, s.Enabled())
}

func TestSchedulerDisconnectStopsTask(t *testing.T) {
	s := newTestScheduler(func(context.Context) error { return nil })

	require.NoError(t, s.Configure(true, 1, true))
	require.NoError(t, s.Configure(true, 1, false))
	assert.False(t, s.Enabled())
}

func TestSchedulerReconfigureSameSettingsIsNoop(t *testing.T) {
	s := newTestScheduler(func(context.Context) error { return nil })
	defer s.Stop()

	require.NoError(t, s.Configure(true, 5, true))
	first := s.stop
	require.NoError(t, s.Configure(true, 5, true))
	assert.Equal(t, first, s.stop, "unchanged settings keep the running task")

	require.NoError(t, s.Configure(true, 10, true))
	assert.NotEqual(t, first, s.stop, "interval change recreates the task")
}

func TestSchedulerTickInvokesSync(t *testing.T) {
	var calls atomic.Int32
	s := newTestScheduler(func(context.Context) error {
		calls.Add(1)
		return nil
	})

	s.tick()
	s.tick()
	assert.Equal(t, int32(2), calls.Load())
}

func TestSchedulerTickFailureNotifiesAndContinues(t *testing.T) {
	tickErr := errors.New("mailbox unreachable")
	var notified []error
	s := newTestScheduler(func(context.Context) error { return tickErr })
	s.SetTickErrorHandler(func(err error) { notified = append(notified, err) })

	s.tick()
	s.tick()

	require.Len(t, notified, 2)
	assert.Equal(t, tickErr, notified[0])
}

func TestSchedulerStopIsIdempotent(t *testing.T) {
	s := newTestScheduler(func(context.Context) error { return nil })
	require.NoError(t, s.Configure(true, 1, true))

	s.Stop()
	s.Stop()
	assert.False(t, s.Enabled())
}
