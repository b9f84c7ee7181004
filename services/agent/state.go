// Copyright (C) 2026 Quayside AI (oss@quayside.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package agent

import (
	"time"

	"github.com/google/uuid"

	"github.com/QuaysideAI/DockPilot/services/agent/llm"
	"github.com/QuaysideAI/DockPilot/services/agent/tools"
)

// TaskState is the mutable state of one run: the workspace, the
// append-only history, counters, and token accounting. The loop owns
// it for the duration of Run and freezes it into a RunResult at the
// end.
type TaskState struct {
	// ID uniquely identifies the run.
	ID string

	// Question is the user's question, immutable for the run.
	Question string

	// PriorContext holds hints carried over from earlier exchanges.
	PriorContext []string

	workspace *tools.Workspace

	state     RunState
	answer    string
	errMsg    string
	startedAt time.Time

	history   []HistoryEntry
	toolCalls []tools.CallRecord
	usage     llm.Usage
	timings   PhaseTimings

	iterations         int
	correctionAttempts int
	malformedDecisions int
	malformedStreak    int
}

// NewTaskState creates the state for a fresh run in RUNNING.
func NewTaskState(question string, priorContext []string) *TaskState {
	return &TaskState{
		ID:           uuid.NewString(),
		Question:     question,
		PriorContext: priorContext,
		workspace:    &tools.Workspace{},
		state:        StateRunning,
		startedAt:    time.Now(),
	}
}

// State returns the current run state.
func (ts *TaskState) State() RunState { return ts.state }

func (ts *TaskState) setState(s RunState) { ts.state = s }

// Workspace returns the run's artifact store.
func (ts *TaskState) Workspace() *tools.Workspace { return ts.workspace }

// Invocation builds the tool invocation view of this state.
func (ts *TaskState) Invocation() *tools.Invocation {
	return &tools.Invocation{
		Question:     ts.Question,
		PriorContext: ts.PriorContext,
		Workspace:    ts.workspace,
	}
}

// AppendHistory adds an entry, assigning its step number. Appending to
// a finished run returns ErrRunFinished; history is append-only and
// frozen at terminality.
func (ts *TaskState) AppendHistory(entry HistoryEntry) error {
	if ts.state.IsTerminal() {
		return ErrRunFinished
	}
	entry.Step = len(ts.history)
	entry.Iteration = ts.iterations
	ts.history = append(ts.history, entry)
	return nil
}

// History returns the history recorded so far.
func (ts *TaskState) History() []HistoryEntry { return ts.history }

// RecordToolCall appends a dispatch record.
func (ts *TaskState) RecordToolCall(record tools.CallRecord) {
	ts.toolCalls = append(ts.toolCalls, record)
}

// AddUsage accumulates model token usage.
func (ts *TaskState) AddUsage(u llm.Usage) { ts.usage.Add(u) }

// Usage returns the tokens accumulated so far.
func (ts *TaskState) Usage() llm.Usage { return ts.usage }

// BeginIteration bumps the iteration counter and returns its new
// 1-indexed value.
func (ts *TaskState) BeginIteration() int {
	ts.iterations++
	return ts.iterations
}

// Iterations returns the iterations consumed so far.
func (ts *TaskState) Iterations() int { return ts.iterations }

// RecordCorrectionAttempt counts one revision attempt.
func (ts *TaskState) RecordCorrectionAttempt() { ts.correctionAttempts++ }

// RecordMalformedDecision counts a malformed decision and returns the
// current consecutive streak. The streak resets on any well-formed
// decision, so only sustained failure trips the reminder threshold.
func (ts *TaskState) RecordMalformedDecision() int {
	ts.malformedDecisions++
	ts.malformedStreak++
	return ts.malformedStreak
}

// ResetMalformedStreak clears the consecutive-malformed counter.
func (ts *TaskState) ResetMalformedStreak() { ts.malformedStreak = 0 }

// MalformedStreak returns the current consecutive-malformed count.
func (ts *TaskState) MalformedStreak() int { return ts.malformedStreak }

// AddDecisionTime accumulates decision-phase wall time.
func (ts *TaskState) AddDecisionTime(d time.Duration) { ts.timings.Decision += d }

// AddToolingTime accumulates tool-phase wall time.
func (ts *TaskState) AddToolingTime(d time.Duration) { ts.timings.Tooling += d }

// AddCorrectionTime accumulates correction-phase wall time.
func (ts *TaskState) AddCorrectionTime(d time.Duration) { ts.timings.Correction += d }

// SetAnswer records the final answer. Write-once.
func (ts *TaskState) SetAnswer(answer string) {
	if ts.answer == "" {
		ts.answer = answer
	}
}

// SetError records the fatal failure message.
func (ts *TaskState) SetError(msg string) { ts.errMsg = msg }

// Result freezes the state into the run's single structured outcome.
func (ts *TaskState) Result() *RunResult {
	return &RunResult{
		Answer:             ts.answer,
		Success:            ts.state == StateCompleted,
		State:              ts.state,
		Iterations:         ts.iterations,
		CorrectionAttempts: ts.correctionAttempts,
		MalformedDecisions: ts.malformedDecisions,
		Usage:              ts.usage,
		Timings:            ts.timings,
		ToolCalls:          ts.toolCalls,
		History:            ts.history,
		Error:              ts.errMsg,
		StartedAt:          ts.startedAt,
		Duration:           time.Since(ts.startedAt),
	}
}
