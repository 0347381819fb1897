/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package log

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func lastJSONLine(t *testing.T, b []byte) map[string]any {
	t.Helper()
	scanner := bufio.NewScanner(bytes.NewReader(b))
	var last string
	for scanner.Scan() {
		if s := strings.TrimSpace(scanner.Text()); s != "" {
			last = s
		}
	}
	if last == "" {
		t.Fatalf("no log lines found")
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(last), &m); err != nil {
		t.Fatalf("unmarshal json log: %v", err)
	}
	return m
}

func TestInitWritesRotatedJSONFile(t *testing.T) {
	fpath := filepath.Join(os.TempDir(), fmt.Sprintf("pr_log_%d.json", time.Now().UnixNano()))
	var console bytes.Buffer
	Init(Options{Level: "debug", Format: "console", File: fpath, Output: &console})
	t.Cleanup(func() { Init(Options{Output: &bytes.Buffer{}}) })

	l := WithOperation(WithComponent("annotation"), "drag")
	l.Info("drag started", slog.String("target", "body"))

	b, err := os.ReadFile(fpath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	m := lastJSONLine(t, b)
	if m["app"] != "pricerange" {
		t.Fatalf("app attr: %v", m["app"])
	}
	if _, ok := m["ver"].(string); !ok {
		t.Fatalf("missing ver attr")
	}
	if m["component"] != "annotation" || m["op"] != "drag" || m["target"] != "body" {
		t.Fatalf("context attrs mismatch: %v", m)
	}
	if !strings.Contains(console.String(), "drag started") {
		t.Fatalf("console sink missed record: %q", console.String())
	}
}

func TestInitJSONConsole(t *testing.T) {
	var buf bytes.Buffer
	Init(Options{Level: "warn", Format: "JSON", Output: &buf})
	t.Cleanup(func() { Init(Options{Output: &bytes.Buffer{}}) })

	L().Info("suppressed")
	L().Warn("kept", slog.Int("n", 3))
	m := lastJSONLine(t, buf.Bytes())
	if m["msg"] != "kept" || m["n"] != float64(3) {
		t.Fatalf("unexpected record: %v", m)
	}
	if strings.Contains(buf.String(), "suppressed") {
		t.Fatalf("info record passed warn filter")
	}
}

func TestFromEnv(t *testing.T) {
	t.Setenv(EnvLevel, "warn")
	t.Setenv(EnvFormat, "json")
	t.Setenv(EnvSource, "yes")
	t.Setenv(EnvFile, "")

	opts := FromEnv()
	if opts.Level != "warn" || opts.Format != "json" || !opts.AddSource || opts.File != "" {
		t.Fatalf("FromEnv mismatch: %+v", opts)
	}
	if v := getenv("PR_SURELY_UNSET_VAR", "fallback"); v != "fallback" {
		t.Fatalf("getenv fallback failed: %q", v)
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" WARN ":  slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range cases {
		if got := parseLevel(in).Level(); got != want {
			t.Errorf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestPrettyTextHandler(t *testing.T) {
	var buf bytes.Buffer
	h := &prettyTextHandler{opts: prettyOpts{Level: slog.LevelWarn}, w: &buf}
	ctx := context.Background()

	if h.Enabled(ctx, slog.LevelInfo) {
		t.Fatalf("info should not be enabled at warn level")
	}
	if !h.Enabled(ctx, slog.LevelError) {
		t.Fatalf("error should be enabled at warn level")
	}

	h2 := h.WithAttrs([]slog.Attr{slog.String("k", "v")}).WithGroup("grp")
	r := slog.Record{Time: time.Now(), Level: slog.LevelError, Message: "boom"}
	r.AddAttrs(slog.Int("n", 42), slog.Float64("pi", 3.14), slog.String("label", "a b"))
	if err := h2.Handle(ctx, r); err != nil {
		t.Fatalf("handle error: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"ERR", "boom", " k=v", "grp.n=42", "grp.pi=3.14", `grp.label="a b"`} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q: %q", want, out)
		}
	}
}

func TestDiscardDropsEverything(t *testing.T) {
	if Discard().Enabled(context.Background(), slog.LevelError) {
		t.Fatalf("discard logger reports enabled")
	}
}

func TestConsoleAddSourceNamesCaller(t *testing.T) {
	var console bytes.Buffer
	Init(Options{Level: "info", Format: "console", AddSource: true, Output: &console})
	t.Cleanup(func() { Init(Options{Output: &bytes.Buffer{}}) })

	WithComponent("cli").Info("exported")
	out := console.String()
	if !strings.Contains(out, " src=") || !strings.Contains(out, "logger_test.go:") {
		t.Fatalf("expected caller location in %q", out)
	}
}
