// cmd/render.go
package cmd

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/gopxl/beep/v2"
	"github.com/spf13/cobra"

	"github.com/ColonelBlimp/cwtrainer/internal/audio"
	"github.com/ColonelBlimp/cwtrainer/internal/config"
	"github.com/ColonelBlimp/cwtrainer/internal/loopback"
)

var renderCmd = &cobra.Command{
	Use:   "render -o out.wav text...",
	Short: "Render keyed text to a WAV file",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runRender,
}

func init() {
	renderCmd.Flags().StringP("output", "o", "", "output WAV file")
	_ = renderCmd.MarkFlagRequired("output")
}

// loopbackOptions maps settings onto offline rendering options.
func loopbackOptions(s *config.Settings) loopback.Options {
	opts := loopback.DefaultOptions(s.WPM, s.FarnsworthWPM)
	opts.Frequency = s.ToneFrequency
	opts.Ramp = s.Ramp
	return opts
}

func runRender(cmd *cobra.Command, args []string) error {
	s, err := config.Get()
	if err != nil {
		return err
	}
	output, _ := cmd.Flags().GetString("output")

	opts := loopbackOptions(s)
	opts.SampleRate = int(s.SampleRate)
	opts.Volume = s.Volume

	streamer, seconds := loopback.Stream(joinWords(args), opts)

	f, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("create %s: %w", output, err)
	}
	if err := audio.RenderWAV(f, streamer, beep.SampleRate(opts.SampleRate)); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", output, err)
	}

	log.Info("rendered", "file", output, "seconds", fmt.Sprintf("%.2f", seconds))
	return nil
}
