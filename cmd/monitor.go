package cmd

import (
	"io"
	"time"

	"github.com/bnema/wayime/internal/logger"
	"github.com/bnema/wayime/internal/ui"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

var monitorInterval time.Duration

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Watch the running server's state live",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}

		// Log lines would tear the TUI.
		logger.SetOutput(io.Discard)

		p := tea.NewProgram(ui.NewMonitorModel(client, monitorInterval), tea.WithContext(cmd.Context()))
		_, err = p.Run()
		return err
	},
}

func init() {
	monitorCmd.Flags().DurationVarP(&monitorInterval, "interval", "i", 500*time.Millisecond, "Polling interval")
	rootCmd.AddCommand(monitorCmd)
}
