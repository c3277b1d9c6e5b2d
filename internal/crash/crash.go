/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package crash turns a panic into a report file and a non-zero exit.
package crash

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"time"

	applog "gridtrace/internal/log"
	"gridtrace/internal/telemetry"
	"gridtrace/internal/version"
)

// exitFn, reportDir and upload are swapped out by tests.
var (
	exitFn    = os.Exit
	reportDir = os.TempDir
	upload    = func(report []byte) bool { return telemetry.Default().UploadCrash(report) }
)

// Recover captures a panic, logs it with the stack, writes a report file and
// exits with code 2. describe, if non-nil, contributes a dump of the canvas
// (state, grids, pictures) to the report.
//
// Usage: defer crash.Recover(ctrl.Describe)
func Recover(describe func() string) {
	r := recover()
	if r == nil {
		return
	}
	l := applog.WithComponent("crash")
	stack := debug.Stack()
	l.Error("panic recovered", slog.Any("panic", r), slog.String("stack", string(stack)))

	var canvas string
	if describe != nil {
		canvas = safeDescribe(describe)
	}
	path, report, err := writeReport(r, stack, canvas)
	if err != nil {
		l.Error("crash report failed", slog.Any("err", err), slog.String("path", path))
	}
	if upload(report) {
		l.Info("crash report uploaded")
	}
	_, _ = fmt.Fprintf(os.Stderr, "gridtrace crashed. A crash report was saved to: %s\n", path)
	_, _ = fmt.Fprintf(os.Stderr, "Version: %s\nOS/Arch: %s/%s\n", version.String(), runtime.GOOS, runtime.GOARCH)
	_ = applog.Close()
	exitFn(2)
}

// safeDescribe runs describe, which may itself hit the broken state.
func safeDescribe(describe func() string) (s string) {
	defer func() {
		if r := recover(); r != nil {
			s = fmt.Sprintf("<unavailable: %v>", r)
		}
	}()
	return describe()
}

func writeReport(panicVal any, stack []byte, canvas string) (string, []byte, error) {
	now := time.Now()
	path := filepath.Join(reportDir(), fmt.Sprintf("gridtrace-crash-%s.log", now.Format("20060102-150405")))

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "GridTrace Crash Report\n")
	fmt.Fprintf(&buf, "Timestamp: %s\n", now.Format(time.RFC3339))
	fmt.Fprintf(&buf, "Version: %s\n", version.String())
	fmt.Fprintf(&buf, "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
	fmt.Fprintf(&buf, "\nPanic: %v\n", panicVal)
	if canvas != "" {
		fmt.Fprintf(&buf, "\nCanvas:\n%s\n", canvas)
	}
	fmt.Fprintf(&buf, "\nStack:\n%s\n", stack)

	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return path, buf.Bytes(), fmt.Errorf("write crash report: %w", err)
	}
	return path, buf.Bytes(), nil
}
