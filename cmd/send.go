// cmd/send.go
package cmd

import (
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ColonelBlimp/cwtrainer/internal/config"
	"github.com/ColonelBlimp/cwtrainer/internal/recovery"
)

var sendCmd = &cobra.Command{
	Use:   "send text...",
	Short: "Key text through the sidetone",
	Long: `Key the given text. Words are separated by spaces; a word starting with '@'
is keyed as a single prosign, e.g. "CQ DE K1ABC @KN". Ctrl-C stops keying.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSend,
}

func runSend(cmd *cobra.Command, args []string) error {
	s, err := config.Get()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	k := newKeyer(s, cmd.OutOrStdout())
	defer k.close()
	defer recovery.HandlePanicFunc(k.close)

	err = k.send(ctx, "send", joinWords(args))
	if ctx.Err() != nil {
		return nil
	}
	return err
}

// joinWords collapses arguments into single-space separated words.
func joinWords(args []string) string {
	return strings.Join(strings.Fields(strings.Join(args, " ")), " ")
}
