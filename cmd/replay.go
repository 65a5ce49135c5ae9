package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/bnema/wayime/internal/config"
	"github.com/bnema/wayime/internal/logger"
	"github.com/bnema/wayime/internal/scenario"
	"github.com/bnema/wayime/internal/server"
	"github.com/bnema/wayime/internal/ui"
	"github.com/spf13/cobra"
)

var (
	replayPlain bool
	replayWatch bool
	replaySeat  string
)

// errReplayFailed reports that at least one scenario failed; each
// failure has already been printed.
var errReplayFailed = errors.New("replay failed")

var replayCmd = &cobra.Command{
	Use:   "replay <scenario.yaml>...",
	Short: "Replay scenarios offline and print their transcripts",
	Long: `Replay each scenario against a fresh seat and print the events sent to
clients. With --watch, the scenario is replayed again every time the file
changes.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runReplay,
}

func init() {
	replayCmd.Flags().BoolVar(&replayPlain, "plain", false, "Print the transcript without styling")
	replayCmd.Flags().BoolVarP(&replayWatch, "watch", "w", false, "Replay again when the scenario file changes")
	replayCmd.Flags().StringVar(&replaySeat, "seat", "", "Seat name, overriding the scenario and config")

	rootCmd.AddCommand(replayCmd)
}

func runReplay(cmd *cobra.Command, args []string) error {
	plain := replayPlain || config.Get().Replay.Plain
	out := cmd.OutOrStdout()

	if replayWatch {
		if len(args) != 1 {
			return fmt.Errorf("--watch takes exactly one scenario")
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return watchScenario(ctx, out, args[0], plain)
	}

	failed := false
	for _, path := range args {
		sc, err := scenario.Load(path)
		if err != nil {
			fmt.Fprintln(out, ui.FormatResult(false, path, err.Error()))
			failed = true
			continue
		}
		if !replayScenario(out, sc, plain) {
			failed = true
		}
	}
	if failed {
		return errReplayFailed
	}
	return nil
}

// replayScenario replays sc on a fresh server and prints the transcript,
// including the events produced before a failing step.
func replayScenario(out io.Writer, sc *scenario.Scenario, plain bool) bool {
	srv := server.New(server.Options{Seat: seatName(sc)})
	defer func() {
		if err := srv.Close(); err != nil {
			logger.Warnf("Failed to close server: %v", err)
		}
	}()

	err := srv.Replay(sc)

	if !plain {
		fmt.Fprintln(out, ui.FormatHeader(sc.Name))
	}
	fmt.Fprint(out, ui.RenderTranscript(srv.Transcript().Entries(), plain))

	if err != nil {
		fmt.Fprintln(out, ui.FormatResult(false, sc.Name, err.Error()))
		return false
	}
	if !plain {
		fmt.Fprintln(out, ui.FormatResult(true, sc.Name, ui.FormatSummary(len(sc.Steps), srv.Transcript().Len())))
	}
	return true
}

func seatName(sc *scenario.Scenario) string {
	switch {
	case replaySeat != "":
		return replaySeat
	case sc.Seat != "":
		return sc.Seat
	default:
		return config.Get().Seat.Name
	}
}

func watchScenario(ctx context.Context, out io.Writer, path string, plain bool) error {
	sc, err := scenario.Load(path)
	if err != nil {
		fmt.Fprintln(out, ui.FormatResult(false, path, err.Error()))
	} else {
		replayScenario(out, sc, plain)
	}

	logger.Infof("Watching %s for changes (Ctrl+C to stop)", path)
	return scenario.Watch(ctx, path, func(sc *scenario.Scenario, err error) {
		if err != nil {
			fmt.Fprintln(out, ui.FormatResult(false, path, err.Error()))
			return
		}
		replayScenario(out, sc, plain)
	})
}
