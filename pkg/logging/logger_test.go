// Copyright (C) 2026 Quayside AI (oss@quayside.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package logging

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestLevel_String(t *testing.T) {
	tests := []struct {
		level Level
		want  string
	}{
		{LevelDebug, "DEBUG"},
		{LevelInfo, "INFO"},
		{LevelWarn, "WARN"},
		{LevelError, "ERROR"},
		{Level(99), "UNKNOWN"},
		{Level(-1), "UNKNOWN"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.level.String(); got != tt.want {
				t.Errorf("Level.String() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLevel_toSlogLevel(t *testing.T) {
	tests := []struct {
		level Level
		want  slog.Level
	}{
		{LevelDebug, slog.LevelDebug},
		{LevelInfo, slog.LevelInfo},
		{LevelWarn, slog.LevelWarn},
		{LevelError, slog.LevelError},
		{Level(99), slog.LevelInfo}, // Unknown defaults to Info
	}

	for _, tt := range tests {
		t.Run(tt.level.String(), func(t *testing.T) {
			if got := tt.level.toSlogLevel(); got != tt.want {
				t.Errorf("Level.toSlogLevel() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNew_FileLogging(t *testing.T) {
	dir := t.TempDir()

	logger := New(Config{
		Level:   LevelInfo,
		LogDir:  dir,
		Service: "agent-test",
		Quiet:   true,
	})
	logger.Info("file entry", "run_id", "run-1")
	if err := logger.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	filename := "agent-test_" + time.Now().Format("2006-01-02") + ".log"
	data, err := os.ReadFile(filepath.Join(dir, filename))
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	if !strings.Contains(string(data), "file entry") {
		t.Errorf("log file missing message, got: %s", data)
	}
	if !strings.Contains(string(data), "agent-test") {
		t.Errorf("log file missing service attribute, got: %s", data)
	}
}

func TestLogger_LevelFiltering(t *testing.T) {
	exporter := NewBufferedExporter()
	logger := New(Config{
		Level:    LevelWarn,
		Quiet:    true,
		Exporter: exporter,
	})
	defer logger.Close()

	logger.Debug("dropped")
	logger.Info("dropped too")
	logger.Warn("kept")
	logger.Error("also kept")

	entries := exporter.Entries()
	if len(entries) != 2 {
		t.Fatalf("got %d exported entries, want 2", len(entries))
	}
	if entries[0].Message != "kept" || entries[1].Message != "also kept" {
		t.Errorf("unexpected entries: %+v", entries)
	}
}

func TestLogger_With(t *testing.T) {
	exporter := NewBufferedExporter()
	logger := New(Config{Quiet: true, Exporter: exporter, Service: "agent"})
	defer logger.Close()

	child := logger.With("run_id", "run-7")
	child.Info("step", "tool", "load_schema")

	entries := exporter.Entries()
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	// With() attributes live on the slog handler; the exporter sees the
	// per-call args.
	if entries[0].Attrs["tool"] != "load_schema" {
		t.Errorf("Attrs = %v, want tool=load_schema", entries[0].Attrs)
	}
	if entries[0].Service != "agent" {
		t.Errorf("Service = %q, want agent", entries[0].Service)
	}
}

func TestBufferedExporter_Concurrent(t *testing.T) {
	exporter := NewBufferedExporter()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				_ = exporter.Export(context.Background(), LogEntry{Message: "m"})
			}
		}()
	}
	wg.Wait()

	if got := len(exporter.Entries()); got != 200 {
		t.Errorf("got %d entries, want 200", got)
	}
}

func TestWriterExporter(t *testing.T) {
	var buf bytes.Buffer
	exporter := NewWriterExporter(&buf)

	err := exporter.Export(context.Background(), LogEntry{
		Level:   LevelError,
		Message: "tool failed",
		Attrs:   map[string]any{"tool": "execute_query"},
	})
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "ERROR tool failed") {
		t.Errorf("output = %q, want prefix 'ERROR tool failed'", out)
	}
	if !strings.Contains(out, "tool=execute_query") {
		t.Errorf("output = %q, want attr tool=execute_query", out)
	}
}

func TestArgsToMap(t *testing.T) {
	m := argsToMap([]any{"a", 1, "b", "two", "dangling"})
	if m["a"] != 1 || m["b"] != "two" {
		t.Errorf("argsToMap = %v", m)
	}
	if v, ok := m["dangling"]; !ok || v != nil {
		t.Errorf("dangling key = %v, %v; want nil, true", v, ok)
	}
}
