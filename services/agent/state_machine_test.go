// Copyright (C) 2026 Quayside AI (oss@quayside.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package agent

import (
	"errors"
	"testing"

	"github.com/QuaysideAI/DockPilot/services/agent/llm"
)

func TestStateMachine_Transitions(t *testing.T) {
	sm := NewStateMachine()

	valid := []struct{ from, to RunState }{
		{StateRunning, StateRunning},
		{StateRunning, StateCompleted},
		{StateRunning, StateExhausted},
		{StateRunning, StateError},
	}
	for _, tt := range valid {
		if !sm.CanTransition(tt.from, tt.to) {
			t.Errorf("CanTransition(%s, %s) = false, want true", tt.from, tt.to)
		}
	}

	// Terminal states are dead ends.
	for _, from := range []RunState{StateCompleted, StateExhausted, StateError} {
		for _, to := range AllStates() {
			if sm.CanTransition(from, to) {
				t.Errorf("CanTransition(%s, %s) = true, want false", from, to)
			}
		}
	}
}

func TestStateMachine_TransitionOnTask(t *testing.T) {
	ts := NewTaskState("q", nil)
	if ts.State() != StateRunning {
		t.Fatalf("initial state = %s, want RUNNING", ts.State())
	}

	if err := DefaultStateMachine.Transition(ts, StateCompleted); err != nil {
		t.Fatalf("Transition() error = %v", err)
	}
	if err := DefaultStateMachine.Transition(ts, StateRunning); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("error = %v, want ErrInvalidTransition", err)
	}
	if ts.State() != StateCompleted {
		t.Errorf("state mutated by rejected transition: %s", ts.State())
	}
}

func TestTaskState_HistoryFrozenAtTerminal(t *testing.T) {
	ts := NewTaskState("q", nil)
	if err := ts.AppendHistory(HistoryEntry{Type: EntryDecision}); err != nil {
		t.Fatalf("AppendHistory() error = %v", err)
	}
	if err := DefaultStateMachine.Transition(ts, StateExhausted); err != nil {
		t.Fatalf("Transition() error = %v", err)
	}
	if err := ts.AppendHistory(HistoryEntry{Type: EntryDecision}); !errors.Is(err, ErrRunFinished) {
		t.Errorf("append after terminal: error = %v, want ErrRunFinished", err)
	}
	if len(ts.History()) != 1 {
		t.Errorf("history length = %d, want 1", len(ts.History()))
	}
}

func TestTaskState_AnswerWriteOnce(t *testing.T) {
	ts := NewTaskState("q", nil)
	ts.SetAnswer("first")
	ts.SetAnswer("second")
	if got := ts.Result().Answer; got != "first" {
		t.Errorf("Answer = %q, want first", got)
	}
}

func TestTaskState_UsageAccumulates(t *testing.T) {
	ts := NewTaskState("q", nil)
	ts.AddUsage(llm.Usage{PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15})
	ts.AddUsage(llm.Usage{PromptTokens: 20, CompletionTokens: 10, TotalTokens: 30})
	got := ts.Usage()
	if got.PromptTokens != 30 || got.CompletionTokens != 15 || got.TotalTokens != 45 {
		t.Errorf("Usage = %+v, want 30/15/45", got)
	}
}

func TestTaskState_MalformedStreak(t *testing.T) {
	ts := NewTaskState("q", nil)
	if got := ts.RecordMalformedDecision(); got != 1 {
		t.Errorf("streak = %d, want 1", got)
	}
	if got := ts.RecordMalformedDecision(); got != 2 {
		t.Errorf("streak = %d, want 2", got)
	}
	ts.ResetMalformedStreak()
	if got := ts.MalformedStreak(); got != 0 {
		t.Errorf("streak after reset = %d, want 0", got)
	}
	// The total count survives the reset.
	if got := ts.Result().MalformedDecisions; got != 2 {
		t.Errorf("MalformedDecisions = %d, want 2", got)
	}
}
