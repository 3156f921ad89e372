package logging

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Field names shared by every log line.
const (
	FieldPath    = "path"
	FieldLine    = "line"
	FieldReason  = "reason"
	FieldSender  = "sender"
	FieldCommand = "command"
	FieldElapsed = "elapsed_ms"
)

type Config struct {
	Level  string
	Pretty bool
	// Output defaults to stderr so stdout stays usable for TSV/JSON.
	Output io.Writer
}

var (
	global zerolog.Logger
	mu     sync.RWMutex
)

func init() {
	global = zerolog.New(os.Stderr).With().Timestamp().Logger().Level(zerolog.InfoLevel)
}

// New creates a configured zerolog.Logger.
func New(cfg Config) zerolog.Logger {
	w := cfg.Output
	if w == nil {
		w = os.Stderr
	}
	if cfg.Pretty {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	}
	return zerolog.New(w).Level(parseLevel(cfg.Level)).With().Timestamp().Logger()
}

// Init replaces the global logger.
func Init(cfg Config) {
	l := New(cfg)
	mu.Lock()
	global = l
	mu.Unlock()
}

// L returns the global logger.
func L() *zerolog.Logger {
	mu.RLock()
	l := global
	mu.RUnlock()
	return &l
}

func parseLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "off", "disabled":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}
