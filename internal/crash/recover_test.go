/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package crash

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func silenceStderr(t *testing.T) {
	t.Helper()
	old := os.Stderr
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	os.Stderr = w
	t.Cleanup(func() {
		_ = w.Close()
		os.Stderr = old
		_, _ = io.Copy(io.Discard, r)
	})
}

func findReport(t *testing.T, dir string) string {
	t.Helper()
	files, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	for _, f := range files {
		if strings.HasPrefix(f.Name(), "pricerange-crash-") && strings.HasSuffix(f.Name(), ".log") {
			return filepath.Join(dir, f.Name())
		}
	}
	t.Fatalf("no crash report under %s", dir)
	return ""
}

func TestWriteReportDefaultsToTemp(t *testing.T) {
	path, err := writeReport(nil, "boom", []byte("stacktrace"))
	if err != nil {
		t.Fatalf("writeReport error: %v", err)
	}
	t.Cleanup(func() { _ = os.Remove(path) })
	if filepath.Dir(path) != filepath.Clean(os.TempDir()) {
		t.Fatalf("report outside temp dir: %s", path)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	s := string(b)
	if !strings.Contains(s, "pricerange crash report") || !strings.Contains(s, "Panic: boom") {
		t.Fatalf("unexpected report: %s", s)
	}
	if strings.Contains(s, "State:") {
		t.Fatalf("state section written without a State func")
	}
}

func TestRecoverWritesStateAndExits(t *testing.T) {
	silenceStderr(t)
	code := 0
	old := exitFn
	exitFn = func(c int) { code = c }
	t.Cleanup(func() { exitFn = old })

	dir := filepath.Join(t.TempDir(), "reports")
	rep := &Report{Dir: dir, State: func() string { return "range 1: p1=(100,10) p2=(200,20)" }}
	func() {
		defer Recover(rep)
		panic("boom")
	}()

	if code != 2 {
		t.Fatalf("expected exit code 2, got %d", code)
	}
	b, err := os.ReadFile(findReport(t, dir))
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	if !strings.Contains(string(b), "p1=(100,10)") || !strings.Contains(string(b), "Panic: boom") {
		t.Fatalf("report missing content: %s", b)
	}
}

func TestRecoverWithoutPanicIsNoop(t *testing.T) {
	called := false
	old := exitFn
	exitFn = func(int) { called = true }
	t.Cleanup(func() { exitFn = old })

	func() { defer Recover(nil) }()
	if called {
		t.Fatalf("exit called without panic")
	}
}

func TestStatePanicDoesNotEscape(t *testing.T) {
	s := safeState(func() string { panic("nested") })
	if !strings.Contains(s, "state unavailable") {
		t.Fatalf("got %q", s)
	}
}
