package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// releaseCmd represents the release command
var releaseCmd = &cobra.Command{
	Use:   "release",
	Short: "Release the input method keyboard grab",
	Long: `Release the active input method keyboard grab, returning keys to the
focused client.

This command is useful for keybindings in window managers like Hyprland.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}

		released, err := client.SendRelease()
		if err != nil {
			return fmt.Errorf("failed to release keyboard grab: %w", err)
		}

		if released {
			fmt.Fprintln(cmd.OutOrStdout(), "Keyboard grab released")
		} else {
			fmt.Fprintln(cmd.OutOrStdout(), "No keyboard grab active")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(releaseCmd)
}
