package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/bnema/wayime/internal/config"
	"github.com/bnema/wayime/internal/input"
	"github.com/bnema/wayime/internal/ipc"
	"github.com/bnema/wayime/internal/logger"
	"github.com/bnema/wayime/internal/scenario"
	"github.com/bnema/wayime/internal/server"
	"github.com/bnema/wayime/internal/transcript"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var serveScenarios []string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the event loop and serve the control socket",
	Long: `Run a seat's event loop until interrupted. Steps can be injected with
'wayime send', inspected with 'wayime status' or 'wayime monitor'.

Keys that reach no client grab are mirrored to the configured input sink.
A stuck input method keyboard grab can be released with 'wayime release',
SIGUSR1, or by creating the release file.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringArrayVarP(&serveScenarios, "scenario", "s", nil, "Scenario to replay before serving (repeatable)")
	serveCmd.Flags().String("seat", "", "Seat name")
	serveCmd.Flags().String("sink", "", "Key sink: none, auto, uinput or tool")
	serveCmd.Flags().String("release-file", "", "File whose creation releases the keyboard grab")

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	// Flags override the config file.
	for key, flag := range map[string]string{
		"seat.name":           "seat",
		"input.sink":          "sink",
		"server.release_file": "release-file",
	} {
		if f := cmd.Flags().Lookup(flag); f.Changed {
			viper.Set(key, f.Value.String())
		}
	}
	if err := config.Init(); err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	cfg := config.Get()

	sink, err := input.NewSink(cfg.Input.Sink, cfg.Input.UInputPath)
	if err != nil {
		return fmt.Errorf("failed to create key sink: %w", err)
	}

	srv := server.New(server.Options{Seat: cfg.Seat.Name, Sink: sink})
	defer func() {
		if err := srv.Close(); err != nil {
			logger.Warnf("Failed to close server: %v", err)
		}
	}()

	srv.Transcript().Appended.Connect(func(e transcript.Entry) {
		logger.Debug("Event sent", "seq", e.Seq, "event", e.String())
	})

	for _, path := range append(cfg.Server.Scenarios, serveScenarios...) {
		sc, err := scenario.Load(path)
		if err != nil {
			return err
		}
		if err := srv.Replay(sc); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		logger.Info("Scenario replayed", "name", sc.Name, "steps", len(sc.Steps))
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	socket, err := ipc.NewSocketServer(server.NewIPCHandler(srv), cfg.IPC.SocketPath)
	if err != nil {
		return err
	}
	if err := socket.Start(); err != nil {
		return fmt.Errorf("failed to start IPC server: %w", err)
	}
	defer socket.Stop()

	release := server.NewEmergencyRelease(srv, cfg.Server.ReleaseFile)
	release.Start(ctx)
	defer release.Stop()

	logger.Infof("Serving %s (socket %s)", cfg.Seat.Name, socket.SocketPath())
	return runLoop(ctx, srv)
}

// runLoop runs the event loop until ctx is done.
func runLoop(ctx context.Context, srv *server.Server) error {
	if err := srv.Run(ctx); err != nil {
		return fmt.Errorf("event loop: %w", err)
	}
	logger.Info("Shutting down")
	return nil
}
