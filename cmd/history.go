// cmd/history.go
package cmd

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/ColonelBlimp/cwtrainer/internal/config"
	"github.com/ColonelBlimp/cwtrainer/internal/history"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent transmissions",
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().IntP("limit", "l", 20, "number of entries to show")
}

func runHistory(cmd *cobra.Command, _ []string) error {
	s, err := config.Get()
	if err != nil {
		return err
	}
	limit, _ := cmd.Flags().GetInt("limit")

	store, err := history.Open(s.HistoryPath())
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	entries, err := store.Recent(limit)
	if err != nil {
		return err
	}

	t := table.NewWriter()
	t.SetOutputMirror(cmd.OutOrStdout())
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Started", "Mode", "WPM", "Farnsworth", "Canceled", "Text"})
	t.SetColumnConfigs([]table.ColumnConfig{{Name: "Text", WidthMax: 60}})
	for _, e := range entries {
		canceled := ""
		if e.Canceled {
			canceled = "yes"
		}
		t.AppendRow(table.Row{
			e.StartedAt.Format("2006-01-02 15:04:05"),
			e.Mode,
			e.WPM,
			e.FarnsworthWPM,
			canceled,
			e.Text,
		})
	}
	t.Render()
	return nil
}
