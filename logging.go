package xstate

import (
	"fmt"
	"log/slog"
)

// Logger is the capability the interpreter logs through. *slog.Logger
// satisfies it via the adapter below; application code may substitute its
// own sink.
type Logger interface {
	Log(args ...any)
}

// DevMode gates dev-only warnings (unknown delay reference, missing
// service/activity implementation, unknown action tag): true by default,
// flip to false in a production build to suppress them.
var DevMode = true

type slogLogger struct {
	l *slog.Logger
}

// NewSlogLogger adapts l (or slog.Default() if nil) to Logger.
func NewSlogLogger(l *slog.Logger) Logger {
	if l == nil {
		l = slog.Default()
	}
	return &slogLogger{l: l}
}

func (s *slogLogger) Log(args ...any) {
	switch len(args) {
	case 0:
		return
	case 1:
		s.l.Info("xstate", "value", args[0])
	default:
		label := fmt.Sprint(args[0])
		s.l.Info(label, "value", args[1])
	}
}

// devWarn logs a dev-only diagnostic through logger, a no-op unless DevMode
// is set.
func devWarn(logger Logger, format string, args ...any) {
	if !DevMode || logger == nil {
		return
	}
	logger.Log("xstate.dev", fmt.Sprintf(format, args...))
}

func (s *Service) devWarn(format string, args ...any) {
	devWarn(s.logger, format, args...)
}
