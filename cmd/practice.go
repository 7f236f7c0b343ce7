// cmd/practice.go
package cmd

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/ColonelBlimp/cwtrainer/internal/config"
	"github.com/ColonelBlimp/cwtrainer/internal/practice"
	"github.com/ColonelBlimp/cwtrainer/internal/recovery"
)

const (
	modeGroups    = "groups"
	modeWords     = "words"
	modeCallsigns = "callsigns"
)

var practiceModes = []string{modeGroups, modeWords, modeCallsigns}

var errNothingToSend = errors.New("nothing to send: no character category is enabled")

var practiceCmd = &cobra.Command{
	Use:   "practice",
	Short: "Key randomly generated practice text",
	Long: `Generate practice text and key it. Modes:
  groups     random character groups from the enabled alphabet
  words      common words, with occasional callsigns and prosigns
  callsigns  random callsigns`,
	Args: cobra.NoArgs,
	RunE: runPractice,
}

func init() {
	practiceCmd.Flags().StringP("mode", "m", modeGroups, "practice mode: groups, words or callsigns")
	practiceCmd.Flags().IntP("count", "n", 0, "groups, words or callsigns per round (0 = from config)")
	practiceCmd.Flags().IntP("size", "s", 0, "characters per group (0 = from config)")
	practiceCmd.Flags().IntP("rounds", "r", 1, "number of transmissions")
	practiceCmd.Flags().Uint64("seed", 0, "random seed (0 = time based)")
	practiceCmd.Flags().Bool("dry-run", false, "print the text without keying it")
}

func enabledSet(s *config.Settings) practice.EnabledSet {
	return practice.EnabledSet{
		Letters:   s.EnableLetters,
		Numbers:   s.EnableNumbers,
		Symbols:   s.EnableSymbols,
		Callsigns: s.EnableCallsigns,
		Prosigns:  s.EnableProsigns,
	}
}

// practiceText generates one round of text for mode.
func practiceText(g *practice.Generator, s *config.Settings, mode string, count, size int) (string, error) {
	switch mode {
	case modeGroups:
		return g.RandomGroups(lo.Ternary(count > 0, count, s.GroupCount), lo.Ternary(size > 0, size, s.GroupSize)), nil
	case modeWords:
		return g.RandomText(lo.Ternary(count > 0, count, s.WordCount)), nil
	case modeCallsigns:
		calls := lo.Times(lo.Ternary(count > 0, count, s.WordCount), func(int) string { return g.MakeCallsign() })
		return strings.Join(calls, " "), nil
	default:
		return "", fmt.Errorf("unknown practice mode %q", mode)
	}
}

func runPractice(cmd *cobra.Command, _ []string) error {
	s, err := config.Get()
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	mode, _ := flags.GetString("mode")
	count, _ := flags.GetInt("count")
	size, _ := flags.GetInt("size")
	rounds, _ := flags.GetInt("rounds")
	seed, _ := flags.GetUint64("seed")
	dryRun, _ := flags.GetBool("dry-run")

	if !lo.Contains(practiceModes, mode) {
		return fmt.Errorf("unknown practice mode %q (want one of %s)", mode, strings.Join(practiceModes, ", "))
	}
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	g := practice.New(seed)
	g.Enabled = enabledSet(s)

	if dryRun {
		for range rounds {
			text, err := practiceText(g, s, mode, count, size)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), text)
		}
		return nil
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	k := newKeyer(s, cmd.OutOrStdout())
	defer k.close()
	defer recovery.HandlePanicFunc(k.close)

	for range rounds {
		text, err := practiceText(g, s, mode, count, size)
		if err != nil {
			return err
		}
		if text == "" {
			return errNothingToSend
		}
		if err := k.send(ctx, mode, text); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
	}
	return nil
}
