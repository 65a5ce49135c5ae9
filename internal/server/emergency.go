package server

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/bnema/wayime/internal/logger"
)

// EmergencyRelease ends a stuck input method keyboard grab from outside
// the protocol: on SIGUSR1, or when the trigger file appears.
type EmergencyRelease struct {
	server      *Server
	triggerFile string
	interval    time.Duration

	stopChan chan struct{}
	stopOnce sync.Once
}

// NewEmergencyRelease creates the release handler for server. An empty
// triggerFile disables the file trigger.
func NewEmergencyRelease(server *Server, triggerFile string) *EmergencyRelease {
	return &EmergencyRelease{
		server:      server,
		triggerFile: triggerFile,
		interval:    time.Second,
		stopChan:    make(chan struct{}),
	}
}

// Start begins watching for release requests.
func (er *EmergencyRelease) Start(ctx context.Context) {
	go er.handleSignals(ctx)
	if er.triggerFile != "" {
		go er.monitorTriggerFile(ctx)
	}
	logger.Info("[EMERGENCY] Keyboard grab release armed", "trigger_file", er.triggerFile)
}

func (er *EmergencyRelease) Stop() {
	er.stopOnce.Do(func() {
		close(er.stopChan)
	})
}

func (er *EmergencyRelease) handleSignals(ctx context.Context) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGUSR1)
	defer signal.Stop(sigChan)

	for {
		select {
		case <-sigChan:
			logger.Warn("[EMERGENCY] SIGUSR1 received")
			er.trigger(ctx, "signal")
		case <-er.stopChan:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (er *EmergencyRelease) monitorTriggerFile(ctx context.Context) {
	ticker := time.NewTicker(er.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if _, err := os.Stat(er.triggerFile); err == nil {
				logger.Warn("[EMERGENCY] Release file detected", "path", er.triggerFile)
				_ = os.Remove(er.triggerFile)
				er.trigger(ctx, "file")
			}
		case <-er.stopChan:
			return
		case <-ctx.Done():
			return
		}
	}
}

// trigger releases the grab on the event loop.
func (er *EmergencyRelease) trigger(ctx context.Context, reason string) {
	var released bool
	if err := er.server.Do(ctx, func() { released = er.server.ReleaseGrab() }); err != nil {
		logger.Errorf("[EMERGENCY] Release failed: %v", err)
		return
	}
	if released {
		logger.Warnf("[EMERGENCY] Keyboard grab released (reason: %s)", reason)
	} else {
		logger.Infof("[EMERGENCY] No keyboard grab to release (reason: %s)", reason)
	}
}
