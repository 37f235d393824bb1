// Package logger builds the process logger from configuration.
package logger

import (
	"io"
	"os"
	"time"

	"github.com/jrsteele09/go-pos-console/internal/config"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// New returns a logger at the configured level and installs it as the global logger.
// DEV gets human readable console output; everything else gets JSON lines.
func New(cfg config.EnvConfig) zerolog.Logger {
	return NewWithWriter(cfg, os.Stderr)
}

func NewWithWriter(cfg config.EnvConfig, out io.Writer) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.GetLogLevel())
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	if cfg.GetEnv() == "DEV" {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.Kitchen}
	}

	l := zerolog.New(out).Level(level).With().Timestamp().Str("app", cfg.GetAppName()).Logger()
	log.Logger = l
	return l
}
