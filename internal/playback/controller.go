// internal/playback/controller.go

// Package playback sends text through the scheduler and keeps observers in
// step with what is audible.
package playback

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/ColonelBlimp/cwtrainer/internal/cw"
	"github.com/ColonelBlimp/cwtrainer/internal/recovery"
	"github.com/ColonelBlimp/cwtrainer/internal/scheduler"
)

// ErrSessionActive is returned by SendText while an earlier transmission is
// still playing. Cancel it first.
var ErrSessionActive = errors.New("a transmission is already in progress")

// Hooks are the observer callbacks. Any of them may be nil. Character hooks
// receive the character or prosign name being keyed.
//
// Hooks run one at a time. The others run on the session goroutine;
// AfterCancel runs on the goroutine that called Cancel, unless a hook is in
// progress, in which case the session goroutine runs it once that hook
// returns.
type Hooks struct {
	BeforeChar  func(token string)
	AfterChar   func(token string)
	AfterSend   func()
	AfterCancel func()
}

func (h Hooks) dispatch(n scheduler.Notification) {
	switch n.Kind {
	case scheduler.BeforeChar:
		if h.BeforeChar != nil {
			h.BeforeChar(n.Token)
		}
	case scheduler.AfterChar:
		if h.AfterChar != nil {
			h.AfterChar(n.Token)
		}
	case scheduler.AfterSend:
		if h.AfterSend != nil {
			h.AfterSend()
		}
	}
}

// Config is the construction configuration of a Controller.
type Config struct {
	WPM           float64
	FarnsworthWPM float64 // 0 = same as WPM
	Ramp          float64 // 0 = scheduler.DefaultRamp
	StartupDelay  float64 // 0 = scheduler.DefaultStartupDelay
	Hooks
}

// Controller owns the output envelope and at most one live Session.
type Controller struct {
	mu      sync.Mutex
	hooks   Hooks
	wpm     float64
	fw      float64
	timing  cw.Timing
	sched   *scheduler.Scheduler // nil when no audio output is available
	session *Session
}

// New creates a controller driving env. With a nil env the controller runs
// degraded: a warning is logged and sends do nothing.
func New(cfg Config, env scheduler.Envelope) *Controller {
	c := &Controller{
		hooks:  cfg.Hooks,
		wpm:    cfg.WPM,
		fw:     farnsworth(cfg.WPM, cfg.FarnsworthWPM),
		timing: cw.NewTiming(cfg.WPM, farnsworth(cfg.WPM, cfg.FarnsworthWPM)),
	}

	if env == nil {
		log.Warn("no audio output available, transmissions are disabled")
		return c
	}

	var opts []scheduler.Option
	if cfg.Ramp > 0 {
		opts = append(opts, scheduler.WithRamp(cfg.Ramp))
	}
	if cfg.StartupDelay > 0 {
		opts = append(opts, scheduler.WithStartupDelay(cfg.StartupDelay))
	}
	c.sched = scheduler.New(env, c.timing, opts...)
	return c
}

func farnsworth(wpm, fw float64) float64 {
	if fw <= 0 {
		return wpm
	}
	return fw
}

// SetSpeed recomputes the timing used by subsequent sends. Both speeds must
// be positive; a zero Farnsworth speed means "same as wpm".
func (c *Controller) SetSpeed(wpm, farnsworthWPM float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.wpm, c.fw = wpm, farnsworth(wpm, farnsworthWPM)
	c.timing = cw.NewTiming(c.wpm, c.fw)
	if c.sched != nil {
		c.sched.SetTiming(c.timing)
	}
	log.Debug("speed set", "wpm", wpm, "farnsworth_wpm", farnsworthWPM)
}

// Timing returns the current timing profile.
func (c *Controller) Timing() cw.Timing {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.timing
}

// Speed returns the character and spacing speeds in WPM.
func (c *Controller) Speed() (wpm, farnsworthWPM float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.wpm, c.fw
}

// Available reports whether an audio output is attached.
func (c *Controller) Available() bool {
	return c.sched != nil
}

// SendText schedules text and returns immediately; playback and
// notifications continue asynchronously.
func (c *Controller) SendText(text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.sched == nil {
		log.Warn("send ignored, no audio output", "text", text)
		return nil
	}
	if c.session != nil && c.session.active() {
		return ErrSessionActive
	}

	tl := c.sched.Schedule(text)
	s := newSession(tl, c.hooks, time.Now())
	c.session = s
	recovery.Go(s.run, c.silence)

	log.Debug("transmission scheduled",
		"session", s.ID,
		"notifications", len(tl.Notifications),
		"seconds", tl.End-tl.Origin)
	return nil
}

// Cancel silences the output immediately, drops every pending notification
// and then calls AfterCancel. It is valid at any time, including when
// nothing is playing and from inside a hook. When Cancel is called while a
// hook runs on another goroutine, AfterCancel may still be pending when
// Cancel returns; it has run once Cancel has returned and the session's
// Done channel is closed.
func (c *Controller) Cancel() {
	c.mu.Lock()
	s := c.session
	c.session = nil
	if c.sched != nil {
		c.sched.Silence()
	}
	c.mu.Unlock()

	if s == nil {
		if c.hooks.AfterCancel != nil {
			c.hooks.AfterCancel()
		}
		return
	}
	s.stop(c.hooks.AfterCancel)
	log.Debug("transmission canceled", "session", s.ID)
}

// silence mutes the output after a hook panicked.
func (c *Controller) silence() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sched != nil {
		c.sched.Silence()
	}
}

// Session returns the most recent session, or nil.
func (c *Controller) Session() *Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

// Busy reports whether a transmission is playing.
func (c *Controller) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session != nil && c.session.active()
}

// Wait blocks until the current session ends or ctx is done.
func (c *Controller) Wait(ctx context.Context) error {
	s := c.Session()
	if s == nil {
		return nil
	}
	select {
	case <-s.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
