// cmd/verify.go
package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ColonelBlimp/cwtrainer/internal/config"
	"github.com/ColonelBlimp/cwtrainer/internal/loopback"
)

const defaultVerifyText = "PARIS CQ DE K1ABC 73 @AR"

var errVerifyMismatch = errors.New("decoded text does not match")

var verifyCmd = &cobra.Command{
	Use:   "verify [text...]",
	Short: "Render text offline, decode it again and compare",
	Long: `Render text at the configured speeds without a sound card, feed the audio
through a tone detector and Morse decoder, and compare the result with the
input. Exits non-zero when they differ.`,
	RunE: runVerify,
}

func runVerify(cmd *cobra.Command, args []string) error {
	s, err := config.Get()
	if err != nil {
		return err
	}

	text := defaultVerifyText
	if len(args) > 0 {
		text = joinWords(args)
	}

	res, err := loopback.Run(text, loopbackOptions(s))
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "expected: %s\n", res.Expected)
	_, _ = fmt.Fprintf(out, "decoded:  %s\n", res.Decoded)
	if !res.Match() {
		_, _ = fmt.Fprintln(out, canceledStyle.Render("MISMATCH"))
		return errVerifyMismatch
	}
	_, _ = fmt.Fprintln(out, okStyle.Render(fmt.Sprintf("OK (%.2fs of audio)", res.Seconds)))
	return nil
}
