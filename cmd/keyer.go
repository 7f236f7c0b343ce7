// cmd/keyer.go
package cmd

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/ColonelBlimp/cwtrainer/internal/audio"
	"github.com/ColonelBlimp/cwtrainer/internal/config"
	"github.com/ColonelBlimp/cwtrainer/internal/history"
	"github.com/ColonelBlimp/cwtrainer/internal/playback"
	"github.com/ColonelBlimp/cwtrainer/internal/scheduler"
)

// drain lets the device play out its buffered frames before it is closed.
const drain = 200 * time.Millisecond

// keyer wires the sidetone, the playback controller, the terminal display
// and the history store for the send and practice commands.
type keyer struct {
	settings *config.Settings
	tone     *audio.Tone
	ctrl     *playback.Controller
	disp     *display
	store    *history.Store
}

func audioConfig(s *config.Settings) audio.Config {
	cfg := audio.DefaultConfig()
	cfg.DeviceIndex = s.DeviceIndex
	cfg.SampleRate = uint32(s.SampleRate)
	cfg.BufferSize = uint32(s.BufferSize)
	cfg.Frequency = s.ToneFrequency
	cfg.Volume = s.Volume
	return cfg
}

// newKeyer opens the output device. When no device can be opened the keyer
// still works, with the controller in its degraded mode.
func newKeyer(s *config.Settings, out io.Writer) *keyer {
	k := &keyer{
		settings: s,
		tone:     audio.NewTone(audioConfig(s), scheduler.Off),
		disp:     newDisplay(out),
	}

	var env scheduler.Envelope
	if err := k.tone.Init(); err != nil {
		log.Warn("audio backend unavailable", "err", err)
	} else if err := k.tone.Start(); err != nil {
		log.Warn("audio output unavailable", "err", err)
	} else {
		env = k.tone
	}

	k.ctrl = playback.New(playback.Config{
		WPM:           s.WPM,
		FarnsworthWPM: s.FarnsworthWPM,
		Ramp:          s.Ramp,
		StartupDelay:  s.StartupDelay,
		Hooks:         k.disp.hooks(),
	}, env)

	store, err := history.Open(s.HistoryPath())
	if err != nil {
		log.Warn("history disabled", "err", err)
	} else {
		k.store = store
	}

	config.Watch(k.reload, func(err error) {
		log.Warn("config change ignored", "err", err)
	})
	return k
}

// reload applies a changed config file to subsequent transmissions.
func (k *keyer) reload(s *config.Settings) {
	k.ctrl.SetSpeed(s.WPM, s.FarnsworthWPM)
	log.Info("speed updated", "wpm", s.WPM, "farnsworth_wpm", s.FarnsworthWPM)
}

// send keys text and blocks until it has played out or ctx is done, in
// which case the transmission is canceled and ctx's error returned.
func (k *keyer) send(ctx context.Context, mode, text string) error {
	if !k.ctrl.Available() {
		return k.ctrl.SendText(text)
	}

	k.disp.start(text)
	if err := k.ctrl.SendText(text); err != nil {
		return err
	}
	session := k.ctrl.Session()
	k.record(mode, text, session)

	err := k.ctrl.Wait(ctx)
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		k.ctrl.Cancel()
		<-session.Done()
		k.markCanceled(session)
	}
	return err
}

// record stores the transmission as it starts, so an interrupted run still
// leaves an entry.
func (k *keyer) record(mode, text string, session *playback.Session) {
	if k.store == nil || session == nil {
		return
	}
	wpm, fw := k.ctrl.Speed()
	id, err := k.store.Record(history.Entry{
		ID:            session.ID,
		StartedAt:     session.Started,
		Mode:          mode,
		WPM:           wpm,
		FarnsworthWPM: fw,
		Text:          text,
	})
	if err != nil {
		log.Warn("history not recorded", "err", err)
		return
	}
	log.Debug("history recorded", "id", id)
}

func (k *keyer) markCanceled(session *playback.Session) {
	if k.store == nil || session == nil {
		return
	}
	if err := k.store.MarkCanceled(session.ID); err != nil {
		log.Warn("history not updated", "err", err)
	}
}

// close silences and releases the device.
func (k *keyer) close() {
	if k.ctrl.Busy() {
		k.ctrl.Cancel()
	}
	if k.ctrl.Available() {
		time.Sleep(drain)
	}
	if k.tone.IsRunning() {
		_ = k.tone.Stop()
	}
	if err := k.tone.Close(); err != nil {
		log.Warn("close audio", "err", err)
	}
	if k.store != nil {
		_ = k.store.Close()
	}
}
