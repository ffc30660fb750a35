package logger

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
)

// Middleware is chi's request logger writing through slog instead of the
// standard log package. 5xx responses log at error level, 4xx at warn,
// everything else at info.
func Middleware(log *slog.Logger) func(http.Handler) http.Handler {
	return middleware.RequestLogger(&slogFormatter{log: log})
}

// slogFormatter implements middleware.LogFormatter.
type slogFormatter struct {
	log *slog.Logger
}

func (f *slogFormatter) NewLogEntry(r *http.Request) middleware.LogEntry {
	return &slogEntry{log: f.log, r: r}
}

type slogEntry struct {
	log *slog.Logger
	r   *http.Request
}

func (e *slogEntry) Write(status, bytes int, _ http.Header, elapsed time.Duration, _ any) {
	if status == 0 {
		status = http.StatusOK
	}

	level := slog.LevelInfo
	switch {
	case status >= 500:
		level = slog.LevelError
	case status >= 400:
		level = slog.LevelWarn
	}

	e.log.LogAttrs(e.r.Context(), level, "http request",
		slog.String("method", e.r.Method),
		slog.String("path", e.r.URL.Path),
		slog.Int("status", status),
		slog.Int("bytes", bytes),
		slog.Duration("duration", elapsed),
		slog.String("request_id", middleware.GetReqID(e.r.Context())),
	)
}

// Panic is called by middleware.Recoverer in place of its stderr dump.
func (e *slogEntry) Panic(v any, stack []byte) {
	e.log.LogAttrs(e.r.Context(), slog.LevelError, "http handler panic",
		slog.String("method", e.r.Method),
		slog.String("path", e.r.URL.Path),
		slog.String("panic", fmt.Sprint(v)),
		slog.String("stack", string(stack)),
		slog.String("request_id", middleware.GetReqID(e.r.Context())),
	)
}
