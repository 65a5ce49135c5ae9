package cmd

import (
	"errors"
	"fmt"

	"github.com/bnema/wayime/internal/ipc"
	"github.com/bnema/wayime/internal/ui"
	"github.com/spf13/cobra"
)

var statusPlain bool

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the state of the running server",
	Long:  `Show the running server's focus chain: keyboard focus, focused text input, input method and keyboard grab, with object counts.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}

		status, err := client.SendStatus()
		if errors.Is(err, ipc.ErrServerNotRunning) {
			fmt.Fprintln(cmd.OutOrStdout(), "wayime server is not running")
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to get server status: %w", err)
		}

		fmt.Fprintln(cmd.OutOrStdout(), ui.RenderStatus(status, statusPlain))
		return nil
	},
}

func init() {
	statusCmd.Flags().BoolVar(&statusPlain, "plain", false, "Print key: value lines")
	rootCmd.AddCommand(statusCmd)
}
