/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package crash

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func useReportDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	old := reportDir
	reportDir = func() string { return dir }
	t.Cleanup(func() { reportDir = old })
	return dir
}

func TestWriteReport(t *testing.T) {
	dir := useReportDir(t)
	path, report, err := writeReport("boom", []byte("stacktrace"), "state=selected")
	if err != nil {
		t.Fatalf("writeReport error: %v", err)
	}
	if filepath.Dir(path) != dir || !strings.HasPrefix(filepath.Base(path), "gridtrace-crash-") {
		t.Fatalf("unexpected report path %s", path)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	s := string(b)
	if s != string(report) {
		t.Fatalf("returned report differs from file")
	}
	for _, want := range []string{"GridTrace Crash Report", "Panic: boom", "Canvas:\nstate=selected", "stacktrace"} {
		if !strings.Contains(s, want) {
			t.Fatalf("report missing %q:\n%s", want, s)
		}
	}
}

func TestRecover(t *testing.T) {
	dir := useReportDir(t)
	oldStderr := os.Stderr
	devnull, err := os.Open(os.DevNull)
	if err == nil {
		os.Stderr = devnull
		defer func() { os.Stderr = oldStderr; _ = devnull.Close() }()
	}

	code := 0
	oldExit := exitFn
	exitFn = func(c int) { code = c }
	defer func() { exitFn = oldExit }()

	var uploaded []byte
	oldUpload := upload
	upload = func(b []byte) bool { uploaded = b; return true }
	defer func() { upload = oldUpload }()

	func() {
		defer Recover(func() string { panic("describe broke too") })
		panic("boom")
	}()

	if code != 2 {
		t.Fatalf("exit code = %d, want 2", code)
	}
	files, _ := os.ReadDir(dir)
	if len(files) != 1 {
		t.Fatalf("expected one report, found %d", len(files))
	}
	b, _ := os.ReadFile(filepath.Join(dir, files[0].Name()))
	if !strings.Contains(string(b), "Panic: boom") || !strings.Contains(string(b), "<unavailable: describe broke too>") {
		t.Fatalf("report content:\n%s", b)
	}
	if string(uploaded) != string(b) {
		t.Fatalf("uploaded report differs from file")
	}
}

func TestRecover_NoPanicIsSilent(t *testing.T) {
	dir := useReportDir(t)
	exited := false
	oldExit := exitFn
	exitFn = func(int) { exited = true }
	defer func() { exitFn = oldExit }()

	func() { defer Recover(nil) }()

	if exited {
		t.Fatalf("exit called without a panic")
	}
	if files, _ := os.ReadDir(dir); len(files) != 0 {
		t.Fatalf("report written without a panic")
	}
}
