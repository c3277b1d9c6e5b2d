/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package log

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestInit_FileSinkIsJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gridtrace.log")
	Init(Options{Level: "debug", File: path, Console: io.Discard})
	t.Cleanup(func() { _ = Close() })

	l := WithOperation(WithComponent("testcomp"), "op1")
	l.Debug("hello world", slog.String("k", "v"))
	if err := Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	var last string
	sc := bufio.NewScanner(bytes.NewReader(b))
	for sc.Scan() {
		if s := strings.TrimSpace(sc.Text()); s != "" {
			last = s
		}
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(last), &m); err != nil {
		t.Fatalf("unmarshal %q: %v", last, err)
	}
	want := map[string]string{"app": "gridtrace", "component": "testcomp", "op": "op1", "msg": "hello world", "k": "v"}
	for k, v := range want {
		if m[k] != v {
			t.Fatalf("%s = %v, want %q", k, m[k], v)
		}
	}
	if _, ok := m["ver"].(string); !ok {
		t.Fatalf("missing ver attr")
	}
}

func TestFromEnv(t *testing.T) {
	t.Setenv("GT_LOG_LEVEL", "warn")
	t.Setenv("GT_LOG_FORMAT", "json")
	t.Setenv("GT_LOG_SOURCE", "true")
	t.Setenv("GT_LOG_FILE", "")
	o := FromEnv()
	if o.Level != "warn" || o.Format != "json" || !o.AddSource || o.File != "" {
		t.Fatalf("FromEnv = %+v", o)
	}
	if v := getenv("GT_SURELY_UNSET_VAR", "fallback"); v != "fallback" {
		t.Fatalf("getenv fallback = %q", v)
	}
}

func TestConsoleHandler(t *testing.T) {
	var buf bytes.Buffer
	lv := new(slog.LevelVar)
	lv.Set(slog.LevelWarn)
	h := newConsoleHandler(&buf, &slog.HandlerOptions{Level: lv})
	if h.Enabled(context.Background(), slog.LevelInfo) {
		t.Fatalf("info enabled at warn level")
	}

	var hh slog.Handler = h.WithAttrs([]slog.Attr{
		slog.String("component", "grid"),
		slog.String("app", "gridtrace"),
		slog.String("k", "v"),
	})
	hh = hh.WithGroup("grp")
	r := slog.NewRecord(time.Now(), slog.LevelError, "boom", 0)
	r.AddAttrs(slog.Int("n", 42), slog.Float64("pi", 3.14), slog.Float64("ten", 10), slog.String("s", "a b"))
	if err := hh.Handle(context.Background(), r); err != nil {
		t.Fatalf("handle: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"ERR [grid] boom", "k=v", "grp.n=42", "grp.pi=3.14", "grp.ten=10", `grp.s="a b"`} {
		if !strings.Contains(out, want) {
			t.Fatalf("output %q missing %q", out, want)
		}
	}
	if strings.Contains(out, "app=") {
		t.Fatalf("static attrs should not reach the console: %q", out)
	}
}

func TestSetLevel(t *testing.T) {
	var buf bytes.Buffer
	l := Init(Options{Level: "info", Console: &buf})
	l.Debug("hidden")
	SetLevel("debug")
	l.Debug("shown")
	out := buf.String()
	if strings.Contains(out, "hidden") || !strings.Contains(out, "shown") {
		t.Fatalf("level switch not applied: %q", out)
	}
	if ParseLevel("nonsense") != slog.LevelInfo || ParseLevel("WARNING") != slog.LevelWarn {
		t.Fatalf("ParseLevel mapping wrong")
	}
}
