package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]log.Level{
		"debug":   log.DebugLevel,
		"INFO":    log.InfoLevel,
		"warn":    log.WarnLevel,
		"Warning": log.WarnLevel,
		"error":   log.ErrorLevel,
		"fatal":   log.FatalLevel,
		"":        log.InfoLevel,
		"verbose": log.InfoLevel,
	}
	for name, want := range tests {
		assert.Equal(t, want, ParseLevel(name), "level %q", name)
	}
}

func TestSetLevelKeepsCurrentOnEmpty(t *testing.T) {
	prev := Logger.GetLevel()
	t.Cleanup(func() { Logger.SetLevel(prev) })

	SetLevel("error")
	assert.Equal(t, log.ErrorLevel, Logger.GetLevel())
	SetLevel("")
	assert.Equal(t, log.ErrorLevel, Logger.GetLevel())
}

func TestKeyValueOutput(t *testing.T) {
	prev := Logger.GetLevel()
	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() {
		SetOutput(os.Stderr)
		Logger.SetLevel(prev)
	})

	SetLevel("debug")
	Debug("Text input focused", "text_input", "ti", "surface", "surface-a")
	Infof("Replayed %d steps", 3)

	out := buf.String()
	assert.Contains(t, out, "Text input focused")
	assert.Contains(t, out, "text_input=ti")
	assert.Contains(t, out, "Replayed 3 steps")
}

func TestEnableFileLogging(t *testing.T) {
	prev := Logger.GetLevel()
	path := filepath.Join(t.TempDir(), "logs", "wayime.log")
	closer, err := EnableFileLogging(path)
	require.NoError(t, err)
	t.Cleanup(func() {
		SetOutput(os.Stderr)
		Logger.SetLevel(prev)
		_ = closer.Close()
	})

	SetLevel("info")

	Info("written to file")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "written to file")
}
