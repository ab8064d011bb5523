package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
)

// batchTagLen is how many trailing characters of a batch id the pretty output
// shows. The tail of a ULID is its random part.
const batchTagLen = 6

// PrettyHandler writes one coloured line per record for a terminal. A batch_id
// attribute becomes a short tag in front of the message so interleaved digests
// stay apart, and the bot's usual attributes get readable values.
type PrettyHandler struct {
	opts   *slog.HandlerOptions
	mu     *sync.Mutex
	w      io.Writer
	batch  string
	attrs  []string
	prefix string
}

func NewPrettyHandler(w io.Writer, opts *slog.HandlerOptions) *PrettyHandler {
	if opts == nil {
		opts = &slog.HandlerOptions{}
	}
	return &PrettyHandler{opts: opts, mu: &sync.Mutex{}, w: w}
}

func (h *PrettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	minLevel := slog.LevelWarn
	if h.opts.Level != nil {
		minLevel = h.opts.Level.Level()
	}
	return level >= minLevel
}

func (h *PrettyHandler) Handle(_ context.Context, r slog.Record) error {
	batch := h.batch
	attrs := append([]string(nil), h.attrs...)
	r.Attrs(func(a slog.Attr) bool {
		attrs = h.appendAttr(attrs, &batch, h.prefix, a)
		return true
	})

	var buf strings.Builder
	buf.WriteString(formatLevel(r.Level))
	buf.WriteString(" ")
	if batch != "" {
		buf.WriteString(color.BlueString("[%s]", shortBatch(batch)))
		buf.WriteString(" ")
	}
	buf.WriteString(r.Message)
	if len(attrs) > 0 {
		buf.WriteString(" ")
		buf.WriteString(strings.Join(attrs, " "))
	}
	if h.opts.AddSource && r.PC != 0 {
		frame, _ := runtime.CallersFrames([]uintptr{r.PC}).Next()
		if frame.File != "" {
			buf.WriteString(" ")
			buf.WriteString(color.HiBlackString("(%s:%d)", filepath.Base(frame.File), frame.Line))
		}
	}
	buf.WriteString("\n")

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.w, buf.String())
	return err
}

func (h *PrettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := h.clone()
	for _, a := range attrs {
		next.attrs = next.appendAttr(next.attrs, &next.batch, next.prefix, a)
	}
	return next
}

func (h *PrettyHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := h.clone()
	next.prefix = h.prefix + name + "."
	return next
}

func (h *PrettyHandler) clone() *PrettyHandler {
	return &PrettyHandler{
		opts:   h.opts,
		mu:     h.mu,
		w:      h.w,
		batch:  h.batch,
		attrs:  append([]string(nil), h.attrs...),
		prefix: h.prefix,
	}
}

// appendAttr renders a and appends it to out. An ungrouped batch_id is captured
// into batch instead.
func (h *PrettyHandler) appendAttr(out []string, batch *string, prefix string, a slog.Attr) []string {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return out
	}

	if a.Value.Kind() == slog.KindGroup {
		groupPrefix := prefix
		if a.Key != "" {
			groupPrefix += a.Key + "."
		}
		for _, ga := range a.Value.Group() {
			out = h.appendAttr(out, batch, groupPrefix, ga)
		}
		return out
	}

	if a.Key == "batch_id" && prefix == "" {
		*batch = a.Value.String()
		return out
	}

	return append(out, formatAttr(prefix+a.Key, a.Value))
}

func formatLevel(level slog.Level) string {
	switch level {
	case slog.LevelDebug:
		return color.HiBlackString("[DEBUG]")
	case slog.LevelInfo:
		return color.CyanString("[INFO] ")
	case slog.LevelWarn:
		return color.YellowString("[WARN] ")
	case slog.LevelError:
		return color.RedString("[ERROR]")
	default:
		return fmt.Sprintf("[%s]", level.String())
	}
}

func formatAttr(key string, v slog.Value) string {
	switch key {
	case "error", "err":
		return color.RedString("%s=%s", key, v.String())
	case "issue":
		return color.CyanString("issue=#%s", v.String())
	case "repo":
		return color.New(color.Bold).Sprintf("repo=%s", v.String())
	case "cost_usd":
		if v.Kind() == slog.KindFloat64 {
			return color.GreenString("cost=$%.4f", v.Float64())
		}
	case "duration_ms":
		if v.Kind() == slog.KindInt64 {
			return color.MagentaString("took=%s", time.Duration(v.Int64())*time.Millisecond)
		}
	case "attempt", "attempts":
		if v.Kind() == slog.KindInt64 && v.Int64() > 1 {
			return color.YellowString("%s=%d", key, v.Int64())
		}
	case "sent", "issues", "tokens", "comments":
		return color.GreenString("%s=%s", key, v.String())
	}
	return color.HiBlackString("%s=%s", key, v.String())
}

func shortBatch(id string) string {
	if len(id) <= batchTagLen {
		return id
	}
	return id[len(id)-batchTagLen:]
}
