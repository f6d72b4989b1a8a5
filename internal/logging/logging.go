// Package logging builds the journal's zerolog loggers and the structured
// events it writes for trades, unlocks and notification delivery.
package logging

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// LogConfig holds logging configuration.
type LogConfig struct {
	Level      string
	Console    bool
	Color      bool // colorize console output
	File       bool
	FilePath   string
	MaxSize    int // megabytes
	MaxBackups int
	MaxAge     int // days
}

// NewLoggerWithConfig returns a logger writing to stderr, a rotating file,
// both, or nowhere. It also sets the global level.
func NewLoggerWithConfig(cfg LogConfig) zerolog.Logger {
	var writers []io.Writer
	if cfg.Console {
		writers = append(writers, consoleWriter(os.Stderr, cfg.Color))
	}
	if w := fileWriter(cfg); w != nil {
		writers = append(writers, w)
	}

	var writer io.Writer
	switch len(writers) {
	case 0:
		writer = io.Discard
	case 1:
		writer = writers[0]
	default:
		writer = zerolog.MultiLevelWriter(writers...)
	}

	zerolog.SetGlobalLevel(ParseLevel(cfg.Level))
	return zerolog.New(writer).With().Timestamp().Logger()
}

func consoleWriter(out io.Writer, color bool) zerolog.ConsoleWriter {
	return zerolog.ConsoleWriter{
		Out:        out,
		NoColor:    !color,
		TimeFormat: time.Kitchen,
		FormatLevel: func(i interface{}) string {
			ll, _ := i.(string)
			return strings.ToUpper(ll)
		},
	}
}

// fileWriter returns nil when file logging is off or the directory cannot
// be created.
func fileWriter(cfg LogConfig) io.Writer {
	if !cfg.File || cfg.FilePath == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(cfg.FilePath), 0755); err != nil {
		return nil
	}
	return &lumberjack.Logger{
		Filename:   cfg.FilePath,
		MaxSize:    cfg.MaxSize,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAge,
		Compress:   true,
	}
}

// ParseLevel maps a config level name to a zerolog level, defaulting to info.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	}
	return zerolog.InfoLevel
}

// SetDebugLevel sets the global log level to debug.
func SetDebugLevel() {
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
}

// WithComponent adds a component name to the logger context.
func WithComponent(logger zerolog.Logger, component string) zerolog.Logger {
	return logger.With().Str("component", component).Logger()
}

// WithAchievement adds an achievement ID to the logger context.
func WithAchievement(logger zerolog.Logger, achievementID string) zerolog.Logger {
	return logger.With().Str("achievement", achievementID).Logger()
}

// LogTrade logs a trade journal event.
func LogTrade(logger zerolog.Logger, action, tradeID, symbol, direction string, profit float64) {
	logger.Info().
		Str("event", "trade").
		Str("action", action).
		Str("trade_id", tradeID).
		Str("symbol", symbol).
		Str("direction", direction).
		Float64("profit", profit).
		Msg("Trade journal updated")
}

// LogUnlock logs an achievement unlock.
func LogUnlock(logger zerolog.Logger, achievementID, title string, xp int) {
	logger.Info().
		Str("event", "achievement").
		Str("achievement", achievementID).
		Str("title", title).
		Int("xp", xp).
		Msg("Achievement unlocked")
}

// LogLevelUp logs a level change.
func LogLevelUp(logger zerolog.Logger, from, to, experience int) {
	logger.Info().
		Str("event", "level_up").
		Int("from", from).
		Int("to", to).
		Int("experience", experience).
		Msg("Level up")
}

// LogCircuit logs a delivery circuit transition. Opening is a warning.
func LogCircuit(logger zerolog.Logger, channel, from, to string) {
	ev := logger.Info()
	if to == "OPEN" {
		ev = logger.Warn()
	}
	ev.Str("event", "circuit").
		Str("channel", channel).
		Str("from", from).
		Str("to", to).
		Msg("Delivery circuit changed state")
}
