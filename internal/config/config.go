// Package config handles configuration management using Viper
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	Seat    SeatConfig    `mapstructure:"seat"`
	IPC     IPCConfig     `mapstructure:"ipc"`
	Server  ServerConfig  `mapstructure:"server"`
	Input   InputConfig   `mapstructure:"input"`
	Replay  ReplayConfig  `mapstructure:"replay"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// SeatConfig names the seat the mediator serves
type SeatConfig struct {
	Name string `mapstructure:"name"`
}

// IPCConfig contains control socket settings
type IPCConfig struct {
	SocketPath string `mapstructure:"socket_path"` // Empty means $XDG_RUNTIME_DIR/wayime-<user>.sock
}

// ServerConfig contains settings of the long-running server
type ServerConfig struct {
	ReleaseFile string   `mapstructure:"release_file"` // Touching this file releases the keyboard grab
	Scenarios   []string `mapstructure:"scenarios"`    // Replayed on start, in order
}

// InputConfig selects where keys that reach no grab are mirrored
type InputConfig struct {
	Sink       string `mapstructure:"sink"` // none, auto, uinput or tool
	UInputPath string `mapstructure:"uinput_path"`
}

// ReplayConfig contains defaults for the replay command
type ReplayConfig struct {
	Plain bool `mapstructure:"plain"` // Print the transcript without styling
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	FileLogging bool   `mapstructure:"file_logging"` // Enable/disable file logging
	LogLevel    string `mapstructure:"log_level"`    // Override LOG_LEVEL env var
	LogFile     string `mapstructure:"log_file"`     // Empty means the state directory
}

var (
	// DefaultConfig provides sensible defaults
	DefaultConfig = Config{
		Seat: SeatConfig{
			Name: "seat0",
		},
		IPC: IPCConfig{
			SocketPath: "",
		},
		Server: ServerConfig{
			ReleaseFile: "/tmp/wayime-release",
			Scenarios:   []string{},
		},
		Input: InputConfig{
			Sink:       "none",
			UInputPath: "/dev/uinput",
		},
		Replay: ReplayConfig{
			Plain: false,
		},
		Logging: LoggingConfig{
			FileLogging: false,
			LogLevel:    "", // Empty means use LOG_LEVEL env var
			LogFile:     "",
		},
	}

	// Global config instance
	cfg *Config

	// Override config path if set
	configPathOverride string
)

// SetConfigPath allows overriding the config path
func SetConfigPath(path string) {
	configPathOverride = path
}

// Init initializes the configuration system
func Init() error {
	viper.SetConfigName("wayime")
	viper.SetConfigType("toml")

	if configPathOverride != "" {
		viper.SetConfigFile(configPathOverride)
	} else {
		// Highest precedence first
		if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
			viper.AddConfigPath(filepath.Join(dir, "wayime"))
		}
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "wayime"))
		}
		viper.AddConfigPath(".")
	}

	// Set defaults - need to set individual fields for proper merging
	viper.SetDefault("seat.name", DefaultConfig.Seat.Name)

	viper.SetDefault("ipc.socket_path", DefaultConfig.IPC.SocketPath)

	viper.SetDefault("server.release_file", DefaultConfig.Server.ReleaseFile)
	viper.SetDefault("server.scenarios", DefaultConfig.Server.Scenarios)

	viper.SetDefault("input.sink", DefaultConfig.Input.Sink)
	viper.SetDefault("input.uinput_path", DefaultConfig.Input.UInputPath)

	viper.SetDefault("replay.plain", DefaultConfig.Replay.Plain)

	viper.SetDefault("logging.file_logging", DefaultConfig.Logging.FileLogging)
	viper.SetDefault("logging.log_level", DefaultConfig.Logging.LogLevel)
	viper.SetDefault("logging.log_file", DefaultConfig.Logging.LogFile)

	// Read config file if it exists
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !(configPathOverride != "" && os.IsNotExist(err)) {
			return fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found, use defaults
	}

	cfg = &Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		return fmt.Errorf("unable to unmarshal config: %w", err)
	}

	return nil
}

// Get returns the current configuration
func Get() *Config {
	if cfg == nil {
		// Return defaults if not initialized
		c := DefaultConfig
		return &c
	}
	return cfg
}

// Set sets the current configuration
func Set(c *Config) {
	cfg = c
	viper.Set("seat.name", c.Seat.Name)
	viper.Set("ipc.socket_path", c.IPC.SocketPath)
	viper.Set("server.release_file", c.Server.ReleaseFile)
	viper.Set("server.scenarios", c.Server.Scenarios)
	viper.Set("input.sink", c.Input.Sink)
	viper.Set("input.uinput_path", c.Input.UInputPath)
	viper.Set("replay.plain", c.Replay.Plain)
	viper.Set("logging.file_logging", c.Logging.FileLogging)
	viper.Set("logging.log_level", c.Logging.LogLevel)
	viper.Set("logging.log_file", c.Logging.LogFile)
}

// Save saves the current configuration to file
func Save() error {
	configPath := GetConfigPath()

	if err := os.MkdirAll(filepath.Dir(configPath), 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := viper.WriteConfigAs(configPath); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// GetConfigPath returns the path to the config file
func GetConfigPath() string {
	if configPathOverride != "" {
		return configPathOverride
	}

	// Check if config file is already loaded
	if viper.ConfigFileUsed() != "" {
		return viper.ConfigFileUsed()
	}

	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "wayime", "wayime.toml")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "wayime.toml"
	}
	return filepath.Join(home, ".config", "wayime", "wayime.toml")
}

// LogFilePath returns where file logging writes: the configured file,
// or wayime.log under the user's state directory.
func LogFilePath() string {
	if path := Get().Logging.LogFile; path != "" {
		return path
	}
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, "wayime", "wayime.log")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "wayime.log")
	}
	return filepath.Join(home, ".local", "state", "wayime", "wayime.log")
}
