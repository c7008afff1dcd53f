package logger

import (
	"io"
	"kvk-ranker/internal/config"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New is the server logger: JSON lines on stdout, at debug until the config
// is loaded.
func New() zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	logger := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Caller().
		Logger()

	logger = logger.Level(zerolog.DebugLevel)

	return logger
}

// NewConsole is the human-readable logger of the command-line tool.
func NewConsole(w io.Writer, verbose bool) zerolog.Logger {
	level := zerolog.WarnLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}).
		With().
		Timestamp().
		Logger().
		Level(level)
}

// ApplyLevel sets the global level to the one named in the config.
// Unknown level names keep the bootstrap level.
func ApplyLevel(logger zerolog.Logger, cfg *config.Config) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || cfg.LogLevel == "" {
		logger.Warn().Str("log_level", cfg.LogLevel).Msg("unknown log level, keeping the default")
		return
	}
	zerolog.SetGlobalLevel(level)
}
