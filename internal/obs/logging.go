// Package obs contains observability utilities such as logging.
package obs

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"gorm.io/gorm/logger"
)

// NewLogger builds the structured JSON logger used by the service.
// level is one of debug, info, warn, error; anything else means info.
func NewLogger(w io.Writer, level string) *slog.Logger {
	if w == nil {
		w = os.Stdout
	}
	h := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: ParseLevel(level)})
	return slog.New(h)
}

// ParseLevel maps a textual level onto slog levels.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// GormLogger bridges GORM's logger onto l. SQL statements are only traced
// when debug is set; slow queries and errors are always reported.
func GormLogger(l *slog.Logger, debug bool, slow time.Duration) logger.Interface {
	lvl := logger.Warn
	if debug {
		lvl = logger.Info
	}
	return logger.New(
		slog.NewLogLogger(l.Handler(), slog.LevelInfo),
		logger.Config{
			SlowThreshold:             slow,
			LogLevel:                  lvl,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
}
