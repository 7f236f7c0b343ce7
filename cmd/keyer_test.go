package cmd

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ColonelBlimp/cwtrainer/internal/config"
	"github.com/ColonelBlimp/cwtrainer/internal/history"
	"github.com/ColonelBlimp/cwtrainer/internal/playback"
)

// stillClock is an envelope whose clock never moves.
type stillClock struct{}

func (stillClock) CurrentTime() float64                          { return 0 }
func (stillClock) SetValueAtTime(float64, float64)               {}
func (stillClock) ExponentialRampToValueAtTime(float64, float64) {}
func (stillClock) CancelScheduledValues(float64)                 {}

func newTestKeyer(t *testing.T, wpm float64) (*keyer, *bytes.Buffer) {
	t.Helper()
	store, err := history.Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("history.Open() error = %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	var out bytes.Buffer
	k := &keyer{disp: newDisplay(&out), store: store}
	k.ctrl = playback.New(playback.Config{WPM: wpm, StartupDelay: 0.01, Hooks: k.disp.hooks()}, stillClock{})
	return k, &out
}

func TestKeyer_SendRecordsHistory(t *testing.T) {
	k, out := newTestKeyer(t, 60)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := k.send(ctx, "send", "CQ @KN"); err != nil {
		t.Fatalf("send() error = %v", err)
	}

	if !strings.Contains(out.String(), "CQ <KN>") {
		t.Errorf("display output = %q", out.String())
	}

	entries, err := k.store.Recent(5)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("got %d history entries, want 1", len(entries))
	}
	e := entries[0]
	if e.Mode != "send" || e.Text != "CQ @KN" || e.WPM != 60 || e.FarnsworthWPM != 60 || e.Canceled {
		t.Errorf("entry = %+v", e)
	}
}

func TestKeyer_InterruptMarksCanceled(t *testing.T) {
	k, out := newTestKeyer(t, 20)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	err := k.send(ctx, "groups", "PARIS PARIS PARIS")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("send() error = %v, want DeadlineExceeded", err)
	}

	entries, err := k.store.Recent(1)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(entries) != 1 || !entries[0].Canceled {
		t.Errorf("entries = %+v, want one canceled entry", entries)
	}
	if !strings.Contains(out.String(), "[canceled]") {
		t.Errorf("display output = %q, want cancel marker", out.String())
	}
	if k.ctrl.Busy() {
		t.Error("controller still busy after interrupt")
	}
}

func TestKeyer_ReloadChangesSpeed(t *testing.T) {
	k, _ := newTestKeyer(t, 20)

	k.reload(&config.Settings{WPM: 30, FarnsworthWPM: 15})

	if wpm, fw := k.ctrl.Speed(); wpm != 30 || fw != 15 {
		t.Errorf("Speed() = %v, %v, want 30, 15", wpm, fw)
	}
}
