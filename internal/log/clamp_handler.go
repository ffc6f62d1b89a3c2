package log

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"unicode/utf8"
)

// DefaultMaxValueLength is the string attribute length limit applied
// when no override is given.
const DefaultMaxValueLength = 256

// TruncationMarker is appended to clamped values so the reader knows
// content was dropped.
const TruncationMarker = "...(truncated)"

// ClampHandler wraps an slog.Handler and truncates oversized string
// attribute values before passing records on.
//
// Design decision: We use a handler wrapper rather than a custom logger
// because:
//  1. It integrates seamlessly with standard slog APIs
//  2. It works with any underlying handler (text, JSON, etc.)
//  3. It's compatible with every slog-accepting component in the tree
type ClampHandler struct {
	// handler is the underlying slog handler that receives clamped records.
	handler slog.Handler

	// maxLen is the string value length limit in bytes.
	maxLen int
}

// ClampHandlerOption configures a ClampHandler.
type ClampHandlerOption func(*ClampHandler)

// WithMaxValueLength overrides the string value length limit.
func WithMaxValueLength(n int) ClampHandlerOption {
	return func(h *ClampHandler) {
		h.maxLen = n
	}
}

// NewClampHandler creates a ClampHandler wrapping the given handler.
// If handler is nil, the returned ClampHandler uses slog.Default().Handler().
func NewClampHandler(handler slog.Handler, opts ...ClampHandlerOption) *ClampHandler {
	if handler == nil {
		handler = slog.Default().Handler()
	}

	h := &ClampHandler{
		handler: handler,
		maxLen:  DefaultMaxValueLength,
	}

	for _, opt := range opts {
		opt(h)
	}

	return h
}

// Enabled reports whether the handler handles records at the given level.
// It delegates to the underlying handler.
func (h *ClampHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// Handle clamps the record's attributes and passes it to the underlying
// handler.
func (h *ClampHandler) Handle(ctx context.Context, r slog.Record) error {
	clamped := slog.NewRecord(r.Time, r.Level, r.Message, r.PC)

	r.Attrs(func(a slog.Attr) bool {
		clamped.AddAttrs(h.clampAttr(a))
		return true
	})

	return h.handler.Handle(ctx, clamped)
}

// WithAttrs returns a new handler with the given attributes added.
// Attributes are clamped before being added.
func (h *ClampHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clampedAttrs := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		clampedAttrs[i] = h.clampAttr(a)
	}
	return &ClampHandler{handler: h.handler.WithAttrs(clampedAttrs), maxLen: h.maxLen}
}

// WithGroup returns a new handler with the given group name.
func (h *ClampHandler) WithGroup(name string) slog.Handler {
	return &ClampHandler{handler: h.handler.WithGroup(name), maxLen: h.maxLen}
}

// clampAttr clamps a single attribute, recursively handling groups.
func (h *ClampHandler) clampAttr(a slog.Attr) slog.Attr {
	if a.Value.Kind() == slog.KindGroup {
		attrs := a.Value.Group()
		clampedAttrs := make([]slog.Attr, len(attrs))
		for i, groupAttr := range attrs {
			clampedAttrs[i] = h.clampAttr(groupAttr)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(clampedAttrs...)}
	}

	if a.Value.Kind() == slog.KindString {
		if v := a.Value.String(); len(v) > h.maxLen {
			return slog.String(a.Key, clampString(v, h.maxLen))
		}
	}

	return a
}

// clampString cuts v to at most maxLen bytes without splitting a UTF-8
// sequence and appends the truncation marker.
func clampString(v string, maxLen int) string {
	cut := v[:maxLen]
	for !utf8.ValidString(cut) && len(cut) > 0 {
		cut = cut[:len(cut)-1]
	}
	// Avoid ending mid-word when there is a nearby space.
	if i := strings.LastIndexByte(cut, ' '); i > maxLen/2 {
		cut = cut[:i]
	}
	return cut + TruncationMarker
}

// NewLogger creates a *slog.Logger with value clamping over a text
// handler.
//
// Parameters:
//   - w: The io.Writer to write log output to (typically os.Stderr)
//   - verbose: If true, sets log level to Debug; otherwise Warn
func NewLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	textHandler := slog.NewTextHandler(w, opts)
	return slog.New(NewClampHandler(textHandler))
}

// NewJSONLogger creates a *slog.Logger with value clamping that outputs
// JSON format. Useful for structured log aggregation.
func NewJSONLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	jsonHandler := slog.NewJSONHandler(w, opts)
	return slog.New(NewClampHandler(jsonHandler))
}
