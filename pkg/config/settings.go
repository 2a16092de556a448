package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"runtime"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
)

const (
	EnvPrefix = "CSV2QIF"

	OutputQIF     = "qif"
	OutputGnuCash = "gnucash"
)

// Settings are the run options of the CLI and the server. Values come from
// flags, then CSV2QIF_* environment variables (a .env file is honoured), then
// defaults.
type Settings struct {
	Config       string `mapstructure:"config"`
	Format       string `mapstructure:"format"`
	Account      string `mapstructure:"account"`
	Workers      int    `mapstructure:"workers"`
	LogLevel     string `mapstructure:"log-level"`
	OutputFormat string `mapstructure:"output-format"`
	Addr         string `mapstructure:"addr"`
}

// Build resolves the settings. flags may be nil.
func Build(flags *pflag.FlagSet) (*Settings, error) {
	if err := gotenv.Load(".env"); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	v.SetDefault("config", "config.yaml")
	v.SetDefault("format", "")
	v.SetDefault("account", "")
	v.SetDefault("workers", runtime.NumCPU())
	v.SetDefault("log-level", "info")
	v.SetDefault("output-format", OutputQIF)
	v.SetDefault("addr", ":8080")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, fmt.Errorf("failed to bind flags: %w", err)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("failed to read settings: %w", err)
	}
	if s.Workers < 1 {
		s.Workers = 1
	}
	switch s.OutputFormat {
	case OutputQIF, OutputGnuCash:
	default:
		return nil, fmt.Errorf("unknown output format %q", s.OutputFormat)
	}
	if _, err := log.ParseLevel(s.LogLevel); err != nil {
		return nil, err
	}
	return &s, nil
}

// Level is the parsed log level, info when unset.
func (s *Settings) Level() log.Level {
	level, err := log.ParseLevel(s.LogLevel)
	if err != nil {
		return log.InfoLevel
	}
	return level
}

// NewLogger builds the stderr logger shared by the commands.
func (s *Settings) NewLogger(prefix string) *log.Logger {
	return log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          prefix,
		Level:           s.Level(),
	})
}
