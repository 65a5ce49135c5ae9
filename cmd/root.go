package cmd

import (
	"fmt"
	"io"

	"github.com/bnema/wayime/internal/config"
	"github.com/bnema/wayime/internal/ipc"
	"github.com/bnema/wayime/internal/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	// Version is set during build
	Version = "0.1.0-dev"

	configPath string
	logCloser  io.Closer

	rootCmd = &cobra.Command{
		Use:   "wayime",
		Short: "wayime - Wayland text input and input method mediation",
		Long: `wayime mediates between text-input clients and an input method on a
Wayland seat: it routes focus, forwards preedit and commit state, bridges the
input method keyboard grab and tracks popups and virtual keyboards.

Scenarios of protocol requests can be replayed offline, or injected into a
running server over its control socket.`,
		SilenceUsage:       true,
		PersistentPreRunE:  setup,
		PersistentPostRunE: teardown,
	}
)

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.Version = Version
	rootCmd.SetVersionTemplate(`{{with .Name}}{{printf "%s " .}}{{end}}{{printf "version %s\n" .Version}}`)

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default $XDG_CONFIG_HOME/wayime/wayime.toml)")
	rootCmd.PersistentFlags().String("socket", "", "Control socket path")
	rootCmd.PersistentFlags().String("log-level", "", "Log level (debug, info, warn, error)")
}

// setup loads the configuration and applies its logging settings.
func setup(cmd *cobra.Command, args []string) error {
	// Bound here rather than in init so tests that reset viper keep them.
	if err := viper.BindPFlag("ipc.socket_path", cmd.Root().PersistentFlags().Lookup("socket")); err != nil {
		return err
	}
	if err := viper.BindPFlag("logging.log_level", cmd.Root().PersistentFlags().Lookup("log-level")); err != nil {
		return err
	}

	config.SetConfigPath(configPath)
	if err := config.Init(); err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	cfg := config.Get()
	logger.SetLevel(cfg.Logging.LogLevel)
	if cfg.Logging.FileLogging {
		closer, err := logger.EnableFileLogging(config.LogFilePath())
		if err != nil {
			logger.Warnf("File logging disabled: %v", err)
		} else {
			logCloser = closer
		}
	}
	return nil
}

func teardown(cmd *cobra.Command, args []string) error {
	if logCloser != nil {
		err := logCloser.Close()
		logCloser = nil
		return err
	}
	return nil
}

// newClient creates an IPC client for the configured socket.
func newClient() (*ipc.Client, error) {
	client, err := ipc.NewClient(config.Get().IPC.SocketPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create IPC client: %w", err)
	}
	return client, nil
}
