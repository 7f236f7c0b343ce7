// internal/playback/session.go
package playback

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/ColonelBlimp/cwtrainer/internal/scheduler"
)

// Session is one scheduled transmission. It fires the timeline's
// notifications in order from a single goroutine and drops every unfired
// entry when stopped.
type Session struct {
	ID       uuid.UUID
	Timeline scheduler.Timeline
	Started  time.Time

	hooks Hooks

	mu       sync.Mutex // held while a notification is checked and dispatched
	canceled atomic.Bool
	finished atomic.Bool

	stateMu     sync.Mutex // guards the two fields below
	inCallback  bool
	afterCancel func()

	stopCh   chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

func newSession(tl scheduler.Timeline, hooks Hooks, started time.Time) *Session {
	return &Session{
		ID:       uuid.New(),
		Timeline: tl,
		Started:  started,
		hooks:    hooks,
		stopCh:   make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Done is closed when the session has fired its last notification or was
// canceled.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Canceled reports whether the session was stopped before completing.
func (s *Session) Canceled() bool {
	return s.canceled.Load()
}

// active reports whether the session still owns the output.
func (s *Session) active() bool {
	return !s.finished.Load() && !s.canceled.Load()
}

// fireAt converts a cursor time into a wall-clock deadline.
func (s *Session) fireAt(at float64) time.Time {
	return s.Started.Add(scheduler.Delay(at, s.Timeline.Origin))
}

func (s *Session) run() {
	defer close(s.done)

	timer := time.NewTimer(time.Hour)
	timer.Stop()
	defer timer.Stop()

	for _, n := range s.Timeline.Notifications {
		if wait := time.Until(s.fireAt(n.At)); wait > 0 {
			timer.Reset(wait)
			select {
			case <-timer.C:
			case <-s.stopCh:
				return
			}
		}
		if !s.fire(n) {
			return
		}
	}
}

// fire dispatches n unless the session was canceled first. A cancel that
// arrived during the dispatch has its AfterCancel run here, once the hook
// has returned.
func (s *Session) fire(n scheduler.Notification) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stateMu.Lock()
	if s.canceled.Load() {
		s.stateMu.Unlock()
		return false
	}
	s.inCallback = true
	s.stateMu.Unlock()

	if n.Kind == scheduler.AfterSend {
		s.finished.Store(true)
	}
	s.hooks.dispatch(n)

	s.stateMu.Lock()
	s.inCallback = false
	afterCancel := s.afterCancel
	s.afterCancel = nil
	s.stateMu.Unlock()

	if afterCancel != nil {
		afterCancel()
		return false
	}
	return !s.canceled.Load()
}

// stop cancels the session and runs afterCancel (which may be nil) after
// any hook in progress. No notification starts after stop returns.
//
// If a hook is running, afterCancel is left to the session goroutine and
// stop returns at once; this is also what makes Cancel safe from inside a
// hook. Otherwise afterCancel runs on the caller's goroutine before stop
// returns. Either way it has run by the time Done is closed and stop has
// returned.
func (s *Session) stop(afterCancel func()) {
	s.stateMu.Lock()
	s.canceled.Store(true)
	deferred := s.inCallback
	if deferred {
		s.afterCancel = afterCancel
	}
	s.stateMu.Unlock()

	s.stopOnce.Do(func() { close(s.stopCh) })
	if deferred {
		return
	}

	// Wait out a dispatch that got the lock just before the flag was set.
	s.mu.Lock()
	defer s.mu.Unlock()
	if afterCancel != nil {
		afterCancel()
	}
}
