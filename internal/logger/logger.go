package logger

import (
	"context"
	"io"
	"log/slog"
)

type contextKey struct{}

var loggerKey = contextKey{}

// Options selects the verbosity and the output format of the process logger.
type Options struct {
	Debug   bool
	Verbose bool
	// Pretty switches from logfmt lines to coloured, human-friendly lines.
	Pretty bool
}

// New builds a logger writing to w. Debug adds source locations.
func New(w io.Writer, o Options) *slog.Logger {
	level := slog.LevelWarn
	if o.Debug {
		level = slog.LevelDebug
	} else if o.Verbose {
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: o.Debug,
	}

	if o.Pretty {
		return slog.New(NewPrettyHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Initialize installs the process-wide default logger.
func Initialize(w io.Writer, o Options) {
	slog.SetDefault(New(w, o))
}

func FromContext(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey).(*slog.Logger); ok {
		return l
	}
	return slog.Default()
}

func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

func With(ctx context.Context, args ...any) context.Context {
	l := FromContext(ctx).With(args...)
	return WithLogger(ctx, l)
}

func Debug(ctx context.Context, msg string, args ...any) {
	FromContext(ctx).Debug(msg, args...)
}

func Info(ctx context.Context, msg string, args ...any) {
	FromContext(ctx).Info(msg, args...)
}

func Warn(ctx context.Context, msg string, args ...any) {
	FromContext(ctx).Warn(msg, args...)
}

func Error(ctx context.Context, msg string, err error, args ...any) {
	if err != nil {
		args = append(args, slog.Any("error", err))
	}
	FromContext(ctx).Error(msg, args...)
}
