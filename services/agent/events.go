// Copyright (C) 2026 Quayside AI (oss@quayside.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package agent

import (
	"sync"
	"time"

	"github.com/QuaysideAI/DockPilot/pkg/logging"
)

// EventType tags run lifecycle events.
type EventType string

const (
	EventRunStarted  EventType = "run_started"
	EventDecision    EventType = "decision"
	EventToolCall    EventType = "tool_call"
	EventCorrection  EventType = "correction"
	EventRunFinished EventType = "run_finished"
)

// Event is one lifecycle notification emitted during a run.
type Event struct {
	// Type tags the event.
	Type EventType `json:"type"`

	// RunID identifies the run.
	RunID string `json:"run_id"`

	// At is when the event was emitted.
	At time.Time `json:"at"`

	// Detail is a short human-readable summary.
	Detail string `json:"detail,omitempty"`
}

// EventSink receives lifecycle events. Emit must not block the run;
// slow consumers should buffer internally.
type EventSink interface {
	Emit(event Event)
}

// NopSink discards all events.
type NopSink struct{}

// Emit implements EventSink.
func (NopSink) Emit(Event) {}

// BufferedSink retains events in memory, mainly for tests.
//
// Thread Safety: BufferedSink is safe for concurrent use.
type BufferedSink struct {
	mu     sync.Mutex
	events []Event
}

// NewBufferedSink creates an empty buffered sink.
func NewBufferedSink() *BufferedSink { return &BufferedSink{} }

// Emit implements EventSink.
func (s *BufferedSink) Emit(event Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
}

// Events returns a copy of the retained events.
func (s *BufferedSink) Events() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Event, len(s.events))
	copy(out, s.events)
	return out
}

// LoggingSink forwards events to a structured logger at info level.
type LoggingSink struct {
	logger *logging.Logger
}

// NewLoggingSink wraps a logger as an event sink. A nil logger falls
// back to the process default.
func NewLoggingSink(logger *logging.Logger) *LoggingSink {
	if logger == nil {
		logger = logging.Default()
	}
	return &LoggingSink{logger: logger}
}

// Emit implements EventSink.
func (s *LoggingSink) Emit(event Event) {
	s.logger.Info("run event",
		"event", string(event.Type),
		"run_id", event.RunID,
		"detail", event.Detail)
}
