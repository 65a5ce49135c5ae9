package cmd

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/bnema/wayime/internal/config"
	"github.com/bnema/wayime/internal/input"
	"github.com/bnema/wayime/internal/logger"
	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage wayime configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Get()

		socket := cfg.IPC.SocketPath
		if socket == "" {
			socket = "(default)"
		}
		scenarios := "(none)"
		if len(cfg.Server.Scenarios) > 0 {
			scenarios = strings.Join(cfg.Server.Scenarios, ", ")
		}
		level := cfg.Logging.LogLevel
		if level == "" {
			level = "(LOG_LEVEL)"
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		rows := [][2]string{
			{"Config file", config.GetConfigPath()},
			{"[seat] name", cfg.Seat.Name},
			{"[ipc] socket_path", socket},
			{"[server] release_file", cfg.Server.ReleaseFile},
			{"[server] scenarios", scenarios},
			{"[input] sink", cfg.Input.Sink},
			{"[input] uinput_path", cfg.Input.UInputPath},
			{"[replay] plain", fmt.Sprint(cfg.Replay.Plain)},
			{"[logging] log_level", level},
			{"[logging] file_logging", fmt.Sprint(cfg.Logging.FileLogging)},
			{"[logging] log_file", config.LogFilePath()},
		}
		for _, row := range rows {
			if _, err := fmt.Fprintf(w, "%s\t%s\n", row[0], row[1]); err != nil {
				return err
			}
		}
		return w.Flush()
	},
}

var configSaveCmd = &cobra.Command{
	Use:   "save",
	Short: "Save current configuration to file",
	RunE: func(cmd *cobra.Command, args []string) error {
		config.Set(config.Get())
		if err := config.Save(); err != nil {
			return err
		}
		logger.Infof("Configuration saved to: %s", config.GetConfigPath())
		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration file with defaults",
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath := config.GetConfigPath()
		force, _ := cmd.Flags().GetBool("force")
		if _, err := os.Stat(configPath); err == nil && !force {
			logger.Infof("Configuration file already exists at: %s", configPath)
			logger.Info("Use --force to overwrite")
			return nil
		}

		cfg := config.DefaultConfig
		if interactive, _ := cmd.Flags().GetBool("interactive"); interactive {
			if err := askConfig(&cfg); err != nil {
				return err
			}
		}

		config.Set(&cfg)
		if err := config.Save(); err != nil {
			return err
		}

		logger.Infof("Configuration initialized at: %s", configPath)
		return nil
	},
}

// askConfig fills the main settings from an interactive form.
func askConfig(cfg *config.Config) error {
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Seat name").
				Description("The seat text inputs and input methods bind to").
				Value(&cfg.Seat.Name).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("seat name cannot be empty")
					}
					return nil
				}),
			huh.NewSelect[string]().
				Title("Key sink").
				Description("Where keys that reach no client grab are mirrored").
				Options(
					huh.NewOption("None", input.SinkNone),
					huh.NewOption("Auto (uinput, then dotool/ydotool)", input.SinkAuto),
					huh.NewOption("uinput", input.SinkUInput),
					huh.NewOption("dotool/ydotool", input.SinkTool),
				).
				Value(&cfg.Input.Sink),
			huh.NewSelect[string]().
				Title("Log level").
				Options(
					huh.NewOption("From LOG_LEVEL", ""),
					huh.NewOption("Debug", "debug"),
					huh.NewOption("Info", "info"),
					huh.NewOption("Warn", "warn"),
					huh.NewOption("Error", "error"),
				).
				Value(&cfg.Logging.LogLevel),
			huh.NewConfirm().
				Title("Log to file?").
				Value(&cfg.Logging.FileLogging),
		),
	)

	if err := form.Run(); err != nil {
		return fmt.Errorf("configuration cancelled: %w", err)
	}
	return nil
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSaveCmd)
	configCmd.AddCommand(configInitCmd)

	configInitCmd.Flags().Bool("force", false, "Force overwrite existing configuration")
	configInitCmd.Flags().BoolP("interactive", "i", false, "Choose settings interactively")

	rootCmd.AddCommand(configCmd)
}
