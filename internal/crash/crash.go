/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package crash turns a panic at a program entry point into a logged error
// plus a plain-text crash report.
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

	applog "pricerange/internal/log"
	"pricerange/internal/version"
)

// exitFn is swapped out by tests.
var exitFn = os.Exit

// Report describes where a crash report goes and what session state it carries.
// Both fields are optional.
type Report struct {
	// Dir receives the report file; os.TempDir() when empty.
	Dir string
	// State returns a human-readable dump of the live session, e.g. the
	// annotations attached to the chart and their anchors.
	State func() string
}

// Recover captures a panic, logs it with the stack, writes a crash report
// and exits with status 2.
//
// Usage: defer crash.Recover(rep)
func Recover(rep *Report) {
	r := recover()
	if r == nil {
		return
	}
	l := applog.WithComponent("crash")
	stack := debug.Stack()
	l.Error("panic recovered", slog.Any("panic", r), slog.String("stack", string(stack)))

	reportPath, err := writeReport(rep, r, stack)
	if err != nil {
		l.Error("crash report not written", slog.Any("err", err), slog.String("path", reportPath))
	}
	if _, err := fmt.Fprintf(os.Stderr, "A fatal error occurred. A crash report was saved to: %s\nVersion: %s\nOS/Arch: %s/%s\n",
		reportPath, version.String(), runtime.GOOS, runtime.GOARCH); err != nil {
		l.Error("failed to write crash message to stderr", slog.Any("err", err))
	}
	exitFn(2)
}

func writeReport(rep *Report, panicVal any, stack []byte) (string, error) {
	dir := os.TempDir()
	if rep != nil && rep.Dir != "" {
		dir = rep.Dir
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return dir, err
		}
	}
	path := filepath.Join(dir, fmt.Sprintf("pricerange-crash-%s.log", time.Now().Format("20060102-150405")))

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "pricerange crash report\n")
	fmt.Fprintf(&buf, "Timestamp: %s\n", time.Now().Format(time.RFC3339))
	fmt.Fprintf(&buf, "Version: %s\n", version.String())
	fmt.Fprintf(&buf, "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
	fmt.Fprintf(&buf, "\nPanic: %v\n", panicVal)
	if rep != nil && rep.State != nil {
		fmt.Fprintf(&buf, "\nState:\n%s\n", safeState(rep.State))
	}
	fmt.Fprintf(&buf, "\nStack:\n%s\n", stack)

	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return path, err
	}
	return path, nil
}

// safeState shields the report from a second panic inside the state dump.
func safeState(fn func() string) (s string) {
	defer func() {
		if r := recover(); r != nil {
			s = fmt.Sprintf("<state unavailable: %v>", r)
		}
	}()
	return fn()
}
