package core

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// AllowedSyncIntervals are the selectable auto-sync intervals in minutes.
var AllowedSyncIntervals = []int{1, 2, 5, 10, 15, 30}

// SyncFunc re-enters the standard fetch path on every scheduler tick.
type SyncFunc func(ctx context.Context) error

// AutoSyncScheduler re-triggers mailbox refresh on a fixed interval while
// enabled and connected. Every tick is fire-and-forget: a failed sync is
// logged and reported but never stops the schedule.
type AutoSyncScheduler struct {
	sync   SyncFunc
	logger *zap.Logger

	// onTickError, when set, surfaces tick failures as a notification
	// level event to the UI layer.
	onTickError func(error)

	mu       sync.Mutex
	enabled  bool
	interval time.Duration
	stop     chan struct{}
}

// NewAutoSyncScheduler creates a scheduler in the disabled state.
func NewAutoSyncScheduler(syncFn SyncFunc, logger *zap.Logger) *AutoSyncScheduler {
	return &AutoSyncScheduler{sync: syncFn, logger: logger}
}

// SetTickErrorHandler installs the notification hook for failed ticks.
func (s *AutoSyncScheduler) SetTickErrorHandler(fn func(error)) {
	s.mu.Lock()
	s.onTickError = fn
	s.mu.Unlock()
}

// Enabled reports whether a recurring task is currently scheduled.
func (s *AutoSyncScheduler) Enabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enabled
}

// Configure moves the scheduler between Disabled and Enabled. The task
// runs only when the sync flag is on and a connection exists, and is
// recreated whenever the interval changes. Intervals are bounded to
// AllowedSyncIntervals.
func (s *AutoSyncScheduler) Configure(enabled bool, intervalMin int, connected bool) error {
	want := enabled && connected
	if want && !allowedInterval(intervalMin) {
		return &ValidationError{Detail: "auto-sync interval not supported"}
	}
	interval := time.Duration(intervalMin) * time.Minute

	s.mu.Lock()
	defer s.mu.Unlock()

	if want == s.enabled && (!want || interval == s.interval) {
		return nil
	}

	s.stopLocked()
	if !want {
		s.logger.Info("Auto-sync disabled")
		return nil
	}

	s.interval = interval
	s.enabled = true
	s.stop = make(chan struct{})
	go s.run(s.stop, interval)

	s.logger.Info("Auto-sync enabled", zap.Duration("interval", interval))
	return nil
}

// Stop cancels any scheduled task.
func (s *AutoSyncScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
}

func (s *AutoSyncScheduler) stopLocked() {
	if s.stop != nil {
		close(s.stop)
		s.stop = nil
	}
	s.enabled = false
}

func (s *AutoSyncScheduler) run(stop chan struct{}, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			s.tick()
		}
	}
}

func (s *AutoSyncScheduler) tick() {
	if err := s.sync(context.Background()); err != nil {
		s.logger.Warn("Auto-sync tick failed", zap.Error(err))
		s.mu.Lock()
		notify := s.onTickError
		s.mu.Unlock()
		if notify != nil {
			notify(err)
		}
	}
}

func allowedInterval(minutes int) bool {
	for _, v := range AllowedSyncIntervals {
		if v == minutes {
			return true
		}
	}
	return false
}
