package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bnema/wayime/internal/ipc"
	"github.com/bnema/wayime/internal/server"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Helper function to execute cobra commands in tests
func executeCommand(root *cobra.Command, args ...string) (string, error) {
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

// isolate points config lookups at an empty temp dir.
func isolate(t *testing.T) string {
	t.Helper()
	tmpDir := t.TempDir()
	t.Setenv("HOME", tmpDir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmpDir, "config"))
	t.Setenv("XDG_STATE_HOME", filepath.Join(tmpDir, "state"))
	t.Chdir(tmpDir)
	viper.Reset()
	t.Cleanup(viper.Reset)
	return tmpDir
}

const focusScenario = `steps:
  - {op: input_method.create, id: im, client: osk}
  - {op: text_input.create, id: ti, client: app, version: v3}
  - {op: client.focus, client: app, surface: surface-app}
  - {op: text_input.enable, id: ti}
  - {op: text_input.commit, id: ti}
`

func TestReplayPlain(t *testing.T) {
	tmpDir := isolate(t)
	path := filepath.Join(tmpDir, "focus.yaml")
	require.NoError(t, os.WriteFile(path, []byte(focusScenario), 0o600))

	out, err := executeCommand(rootCmd, "replay", "--plain", path)
	require.NoError(t, err)
	assert.Equal(t, strings.Join([]string{
		"wl_keyboard[app].enter(surface-app)",
		"ti.enter(surface-app)",
		"im.activate",
		"im.done",
		"im.text_change_cause(0)",
		"im.done",
	}, "\n")+"\n", out)
}

func TestReplayReportsFailures(t *testing.T) {
	tmpDir := isolate(t)
	path := filepath.Join(tmpDir, "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte("steps:\n  - {op: text_input.commit, id: ghost}\n"), 0o600))

	out, err := executeCommand(rootCmd, "replay", "--plain", path, filepath.Join(tmpDir, "missing.yaml"))
	assert.ErrorIs(t, err, errReplayFailed)
	assert.Contains(t, out, "step 0")
	assert.Contains(t, out, "missing.yaml")
}

func TestConfigInit(t *testing.T) {
	tmpDir := isolate(t)
	configPath := filepath.Join(tmpDir, "wayime.toml")

	t.Run("creates config file when it doesn't exist", func(t *testing.T) {
		_, err := executeCommand(rootCmd, "--config", configPath, "config", "init")
		require.NoError(t, err)

		content, err := os.ReadFile(configPath)
		require.NoError(t, err)
		assert.Contains(t, string(content), "seat0")
	})

	t.Run("doesn't overwrite existing config without force", func(t *testing.T) {
		viper.Reset()
		require.NoError(t, os.WriteFile(configPath, []byte("[seat]\nname = \"mine\"\n"), 0o600))

		_, err := executeCommand(rootCmd, "--config", configPath, "config", "init")
		require.NoError(t, err)

		content, _ := os.ReadFile(configPath)
		assert.Contains(t, string(content), "mine")
	})

	t.Run("overwrites with force flag", func(t *testing.T) {
		viper.Reset()
		_, err := executeCommand(rootCmd, "--config", configPath, "config", "init", "--force")
		require.NoError(t, err)

		content, _ := os.ReadFile(configPath)
		assert.NotContains(t, string(content), "mine")
	})

	t.Run("show reads the file", func(t *testing.T) {
		viper.Reset()
		require.NoError(t, os.WriteFile(configPath, []byte("[seat]\nname = \"seat4\"\n"), 0o600))

		out, err := executeCommand(rootCmd, "--config", configPath, "config", "show")
		require.NoError(t, err)
		assert.Contains(t, out, "seat4")
		assert.Contains(t, out, configPath)
	})

	// Later tests use the default search paths.
	t.Cleanup(func() { require.NoError(t, rootCmd.PersistentFlags().Set("config", "")) })
}

func startServer(t *testing.T) string {
	t.Helper()
	socketPath := filepath.Join(t.TempDir(), "wayime.sock")

	srv := server.New(server.Options{})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = srv.Run(ctx)
	}()

	socket, err := ipc.NewSocketServer(server.NewIPCHandler(srv), socketPath)
	require.NoError(t, err)
	require.NoError(t, socket.Start())

	t.Cleanup(func() {
		socket.Stop()
		cancel()
		<-done
	})
	return socketPath
}

func TestSendStatusRelease(t *testing.T) {
	isolate(t)
	socketPath := startServer(t)

	out, err := executeCommand(rootCmd, "--socket", socketPath, "send", "client.focus", "client=app", "surface=surface-app")
	require.NoError(t, err)
	assert.Equal(t, "wl_keyboard[app].enter(surface-app)\n", out)

	_, err = executeCommand(rootCmd, "--socket", socketPath, "send", "input_method.create", "id=im", "client=osk")
	require.NoError(t, err)
	_, err = executeCommand(rootCmd, "--socket", socketPath, "send", "input_method.grab_keyboard", "id=grab", "input_method=im")
	require.NoError(t, err)

	out, err = executeCommand(rootCmd, "--socket", socketPath, "status", "--plain")
	require.NoError(t, err)
	assert.Contains(t, out, "keyboard_focus: surface-app")
	assert.Contains(t, out, "input_method: im")
	assert.Contains(t, out, "keyboard_grab: grab")

	out, err = executeCommand(rootCmd, "--socket", socketPath, "release")
	require.NoError(t, err)
	assert.Contains(t, out, "Keyboard grab released")

	out, err = executeCommand(rootCmd, "--socket", socketPath, "release")
	require.NoError(t, err)
	assert.Contains(t, out, "No keyboard grab active")

	_, err = executeCommand(rootCmd, "--socket", socketPath, "send", "text_input.commit", "id=ghost")
	assert.Error(t, err)

	_, err = executeCommand(rootCmd, "--socket", socketPath, "send", "seat.explode")
	assert.Error(t, err)
}

func TestStatusWithoutServer(t *testing.T) {
	tmpDir := isolate(t)

	out, err := executeCommand(rootCmd, "--socket", filepath.Join(tmpDir, "absent.sock"), "status")
	require.NoError(t, err)
	assert.Contains(t, out, "not running")
}

func TestVersion(t *testing.T) {
	isolate(t)
	out, err := executeCommand(rootCmd, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "wayime "+Version)
}
