/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package log sets up the process-wide slog logger: a compact console
// handler (or JSON), an optional rotating file sink and a few static
// attributes.
package log

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"sync"

	"gridtrace/internal/version"

	lj "gopkg.in/natefinch/lumberjack.v2"
)

// Options controls logger initialization. The same settings can come from
// the environment:
//   - GT_LOG_LEVEL=debug|info|warn|error
//   - GT_LOG_FORMAT=console|json
//   - GT_LOG_FILE=<path> (rotated JSON log)
//   - GT_LOG_SOURCE=true|false
type Options struct {
	Level     string
	Format    string // "console" or "json"
	AddSource bool
	File      string
	// Console receives console output; nil means stderr. The terminal UI
	// passes io.Discard since it owns the screen.
	Console io.Writer
}

var (
	mu      sync.RWMutex
	current *slog.Logger
	level   = new(slog.LevelVar)
	closers []io.Closer
)

// L returns the application logger, initializing it from the environment on
// first use.
func L() *slog.Logger {
	mu.RLock()
	l := current
	mu.RUnlock()
	if l != nil {
		return l
	}
	return Init(FromEnv())
}

// Init replaces the application logger and slog.Default.
func Init(opts Options) *slog.Logger {
	level.Set(ParseLevel(opts.Level))
	hopts := &slog.HandlerOptions{Level: level, AddSource: opts.AddSource}

	console := opts.Console
	if console == nil {
		console = os.Stderr
	}
	var hs []slog.Handler
	if console != io.Discard {
		if strings.EqualFold(strings.TrimSpace(opts.Format), "json") {
			hs = append(hs, slog.NewJSONHandler(console, hopts))
		} else {
			hs = append(hs, newConsoleHandler(console, hopts))
		}
	}

	var fileCloser io.Closer
	if path := strings.TrimSpace(opts.File); path != "" {
		w := &lj.Logger{Filename: path, MaxSize: 10, MaxBackups: 3, MaxAge: 28, Compress: true}
		hs = append(hs, slog.NewJSONHandler(w, hopts))
		fileCloser = w
	}

	var h slog.Handler
	switch len(hs) {
	case 0:
		h = slog.NewTextHandler(io.Discard, hopts)
	case 1:
		h = hs[0]
	default:
		h = fanout(hs)
	}
	l := slog.New(h).With(
		slog.String("app", "gridtrace"),
		slog.String("ver", version.String()),
	)

	mu.Lock()
	old := closers
	closers = nil
	if fileCloser != nil {
		closers = append(closers, fileCloser)
	}
	current = l
	mu.Unlock()
	for _, c := range old {
		_ = c.Close()
	}
	slog.SetDefault(l)
	return l
}

// Close flushes and closes the rotating file sink, if any.
func Close() error {
	mu.Lock()
	cs := closers
	closers = nil
	mu.Unlock()
	var first error
	for _, c := range cs {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// SetLevel changes the level of the running logger.
func SetLevel(s string) { level.Set(ParseLevel(s)) }

// FromEnv builds Options from GT_LOG_* variables.
func FromEnv() Options {
	return Options{
		Level:     getenv("GT_LOG_LEVEL", "info"),
		Format:    getenv("GT_LOG_FORMAT", "console"),
		AddSource: strings.EqualFold(getenv("GT_LOG_SOURCE", "false"), "true"),
		File:      os.Getenv("GT_LOG_FILE"),
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// WithComponent returns a logger with the component attribute pre-set.
func WithComponent(name string) *slog.Logger { return L().With(slog.String("component", name)) }

// WithOperation annotates l with an operation name.
func WithOperation(l *slog.Logger, op string) *slog.Logger { return l.With(slog.String("op", op)) }

// ParseLevel maps a level name to slog.Level. Unknown names mean info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
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

type fanout []slog.Handler

func (f fanout) Enabled(ctx context.Context, l slog.Level) bool {
	for _, h := range f {
		if h.Enabled(ctx, l) {
			return true
		}
	}
	return false
}

func (f fanout) Handle(ctx context.Context, r slog.Record) error {
	var first error
	for _, h := range f {
		if !h.Enabled(ctx, r.Level) {
			continue
		}
		if err := h.Handle(ctx, r.Clone()); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (f fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithAttrs(attrs)
	}
	return out
}

func (f fanout) WithGroup(name string) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithGroup(name)
	}
	return out
}

// consoleHandler writes one line per record:
//
//	15:04:05.000 DBG [interact] transition from=selected to=deselected
//
// The component attribute is lifted into the bracket; app and ver are
// dropped from console output.
type consoleHandler struct {
	w         io.Writer
	mu        *sync.Mutex
	level     slog.Leveler
	addSource bool
	component string
	prefix    string
	attrs     []string
}

func newConsoleHandler(w io.Writer, o *slog.HandlerOptions) *consoleHandler {
	return &consoleHandler{w: w, mu: new(sync.Mutex), level: o.Level, addSource: o.AddSource}
}

func (h *consoleHandler) Enabled(_ context.Context, l slog.Level) bool {
	lo := slog.LevelInfo
	if h.level != nil {
		lo = h.level.Level()
	}
	return l >= lo
}

func (h *consoleHandler) Handle(_ context.Context, r slog.Record) error {
	var b strings.Builder
	b.Grow(128)
	b.WriteString(r.Time.Format("15:04:05.000"))
	b.WriteByte(' ')
	b.WriteString(levelTag(r.Level))
	if h.component != "" {
		b.WriteString(" [")
		b.WriteString(h.component)
		b.WriteByte(']')
	}
	b.WriteByte(' ')
	b.WriteString(r.Message)
	for _, a := range h.attrs {
		b.WriteByte(' ')
		b.WriteString(a)
	}
	r.Attrs(func(a slog.Attr) bool {
		b.WriteByte(' ')
		b.WriteString(formatAttr(h.prefix, a))
		return true
	})
	if h.addSource {
		if r.PC != 0 {
			f, _ := runtime.CallersFrames([]uintptr{r.PC}).Next()
			b.WriteString(" src=")
			b.WriteString(filepath.Base(f.File))
			b.WriteByte(':')
			b.WriteString(strconv.Itoa(f.Line))
		}
	}
	b.WriteByte('\n')
	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.w, b.String())
	return err
}

func (h *consoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	n := *h
	n.attrs = append([]string(nil), h.attrs...)
	for _, a := range attrs {
		switch {
		case h.prefix == "" && a.Key == "component":
			n.component = a.Value.String()
		case h.prefix == "" && (a.Key == "app" || a.Key == "ver"):
		default:
			n.attrs = append(n.attrs, formatAttr(h.prefix, a))
		}
	}
	return &n
}

func (h *consoleHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	n := *h
	n.prefix = h.prefix + name + "."
	return &n
}

func levelTag(l slog.Level) string {
	switch {
	case l < slog.LevelInfo:
		return "DBG"
	case l < slog.LevelWarn:
		return "INF"
	case l < slog.LevelError:
		return "WRN"
	default:
		return "ERR"
	}
}

func formatAttr(prefix string, a slog.Attr) string {
	v := a.Value.Resolve()
	var s string
	switch v.Kind() {
	case slog.KindFloat64:
		s = strconv.FormatFloat(v.Float64(), 'g', -1, 64)
	case slog.KindGroup:
		parts := make([]string, 0, len(v.Group()))
		for _, ga := range v.Group() {
			parts = append(parts, formatAttr(prefix+a.Key+".", ga))
		}
		return strings.Join(parts, " ")
	default:
		s = v.String()
	}
	if strings.ContainsAny(s, " \t\"=") {
		s = strconv.Quote(s)
	}
	return prefix + a.Key + "=" + s
}
