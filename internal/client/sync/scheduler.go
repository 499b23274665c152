package sync

import (
	"sync"
	"time"
)

// Scheduler fires a callback at a fixed interval. It exists as an interface
// so engine tests can drive ticks by hand.
type Scheduler interface {
	Start(interval time.Duration, fn func())
	Stop()
}

// TickerScheduler runs the callback on a time.Ticker in its own goroutine.
// Start and Stop are safe for concurrent use; Start replaces any previously
// running ticker.
type TickerScheduler struct {
	mu   sync.Mutex
	done chan struct{}
}

func NewTickerScheduler() *TickerScheduler {
	return &TickerScheduler{}
}

func (s *TickerScheduler) Start(interval time.Duration, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.done != nil {
		close(s.done)
	}
	done := make(chan struct{})
	s.done = done

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				fn()
			case <-done:
				return
			}
		}
	}()
}

func (s *TickerScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.done != nil {
		close(s.done)
		s.done = nil
	}
}
