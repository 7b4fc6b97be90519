// Package logging configures the process-wide log15 root handler: a console
// stream and an optional size-rotated log file.
package logging

import (
	"io"
	"os"

	"github.com/inconshreveable/log15"
	"gopkg.in/natefinch/lumberjack.v2"
)

// LevelOff disables a handler entirely.
const LevelOff = "off"

// Config selects log levels and the optional rotated log file.
type Config struct {
	Level        string // file level
	ConsoleLevel string
	File         string // empty disables file logging
	MaxSizeMB    int
	MaxBackups   int
	MaxAgeDays   int
	Compress     bool
	CallerFile   bool
}

// fillDefaultValue keeps unset levels at error so a default install stays quiet.
func fillDefaultValue(cfg *Config) {
	if cfg.Level == "" {
		cfg.Level = log15.LvlError.String()
	}
	if cfg.ConsoleLevel == "" {
		cfg.ConsoleLevel = log15.LvlError.String()
	}
	if cfg.MaxSizeMB == 0 {
		cfg.MaxSizeMB = 64
	}
}

// SetLogLevel routes root output to stderr at the given level.
func SetLogLevel(level string) {
	log15.Root().SetHandler(consoleHandler(os.Stderr, level))
}

// SetFileLog installs the root handler described by cfg. The returned closer
// releases the log file, if any.
func SetFileLog(cfg Config) io.Closer {
	fillDefaultValue(&cfg)
	console := consoleHandler(os.Stderr, cfg.ConsoleLevel)
	if cfg.File == "" {
		log15.Root().SetHandler(console)
		return nopCloser{}
	}

	rotate := &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   cfg.Compress,
	}
	log15.Root().SetHandler(log15.MultiHandler(console, fileHandler(rotate, cfg)))
	return rotate
}

// Discard silences the root logger.
func Discard() {
	log15.Root().SetHandler(log15.DiscardHandler())
}

func isWindows() bool {
	return os.PathSeparator == '\\' && os.PathListSeparator == ';'
}

func consoleHandler(w io.Writer, level string) log15.Handler {
	if level == LevelOff {
		return log15.DiscardHandler()
	}
	format := log15.TerminalFormat()
	if isWindows() {
		format = log15.LogfmtFormat()
	}
	return log15.LvlFilterHandler(GetLevel(level), log15.StreamHandler(w, format))
}

func fileHandler(w io.Writer, cfg Config) log15.Handler {
	h := log15.LvlFilterHandler(GetLevel(cfg.Level), log15.StreamHandler(w, log15.LogfmtFormat()))
	if cfg.CallerFile {
		h = log15.CallerFileHandler(h)
	}
	return h
}

// GetLevel parses a level name, falling back to error for unknown names.
func GetLevel(level string) log15.Lvl {
	lvl, err := log15.LvlFromString(level)
	if err != nil {
		return log15.LvlError
	}
	return lvl
}

// New returns a child of the root logger carrying ctx.
func New(ctx ...interface{}) log15.Logger {
	return log15.Root().New(ctx...)
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
