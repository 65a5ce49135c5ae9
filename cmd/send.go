package cmd

import (
	"fmt"
	"strings"

	"github.com/bnema/wayime/internal/scenario"
	"github.com/spf13/cobra"
)

var sendCmd = &cobra.Command{
	Use:   "send <op> [key=value]...",
	Short: "Inject one step into a running server",
	Long: `Inject one step into a running server and print the events it produced.
Arguments use scenario field names, for example:

  wayime send client.focus client=app surface=surface-app
  wayime send virtual_keyboard.key id=vk1 key=30 state=pressed

Known ops:
  ` + strings.Join(scenario.Ops(), "\n  "),
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		step, err := scenario.ParseStep(args[0], args[1:])
		if err != nil {
			return err
		}

		client, err := newClient()
		if err != nil {
			return err
		}

		resp, err := client.SendStep(step)
		if err != nil {
			return fmt.Errorf("failed to send %s: %w", step, err)
		}

		out := cmd.OutOrStdout()
		for _, event := range resp.Events {
			fmt.Fprintln(out, event)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sendCmd)
}
