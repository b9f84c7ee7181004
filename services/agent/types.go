// Copyright (C) 2026 Quayside AI (oss@quayside.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package agent implements the dock-operations question-answering loop.
//
// A run is a bounded decide/execute cycle: each iteration asks the
// model what to do next, dispatches the chosen tool against the shared
// workspace, and feeds the observation back into the next decision.
// Failed query executions enter a bounded correction sub-loop before
// the main loop sees the failure. The run ends in COMPLETED,
// EXHAUSTED, or ERROR, and always returns a single RunResult carrying
// the full history and token accounting.
//
// Thread Safety:
//
//	A Loop is safe for concurrent Run calls; each run owns its
//	TaskState. TaskState itself is confined to one run.
package agent

import (
	"time"

	"github.com/QuaysideAI/DockPilot/services/agent/llm"
	"github.com/QuaysideAI/DockPilot/services/agent/tools"
)

// RunState represents a state in the run state machine.
type RunState string

const (
	// StateRunning is the active decide/execute cycle.
	StateRunning RunState = "RUNNING"

	// StateCompleted means the model produced a final answer.
	StateCompleted RunState = "COMPLETED"

	// StateExhausted means the iteration budget ran out first.
	StateExhausted RunState = "EXHAUSTED"

	// StateError means a fatal model failure aborted the run.
	StateError RunState = "ERROR"
)

// String returns the string representation of the state.
func (s RunState) String() string {
	return string(s)
}

// IsTerminal returns true for COMPLETED, EXHAUSTED and ERROR.
func (s RunState) IsTerminal() bool {
	return s == StateCompleted || s == StateExhausted || s == StateError
}

// AllStates returns all valid run states.
func AllStates() []RunState {
	return []RunState{StateRunning, StateCompleted, StateExhausted, StateError}
}

// History entry types.
const (
	EntryDecision   = "decision"
	EntryToolCall   = "tool_call"
	EntryCorrection = "correction"
	EntryNudge      = "nudge"
	EntryFinal      = "final_answer"
)

// HistoryEntry records a single step of a run.
type HistoryEntry struct {
	// Step is the 0-indexed position in the history.
	Step int `json:"step"`

	// Type is one of the Entry* constants.
	Type string `json:"type"`

	// Iteration is the 1-indexed loop iteration this step belongs to.
	Iteration int `json:"iteration"`

	// ToolName is set for tool_call and correction entries.
	ToolName string `json:"tool_name,omitempty"`

	// Input holds the decision text, tool input, or revision prompt
	// summary for this step.
	Input string `json:"input,omitempty"`

	// Output holds the observation or answer produced by this step.
	Output string `json:"output,omitempty"`

	// TokensUsed is the model tokens this step consumed.
	TokensUsed int `json:"tokens_used,omitempty"`

	// Duration is the wall time of this step.
	Duration time.Duration `json:"duration,omitempty"`
}

// PhaseTimings breaks the run's wall time down by phase.
type PhaseTimings struct {
	// Decision is time spent waiting on what-next model calls.
	Decision time.Duration `json:"decision"`

	// Tooling is time spent inside tool invocations.
	Tooling time.Duration `json:"tooling"`

	// Correction is time spent in the correction sub-loop, model and
	// re-execution both.
	Correction time.Duration `json:"correction"`
}

// RunResult is the single structured outcome of a run.
type RunResult struct {
	// Answer is the final answer text. On EXHAUSTED or ERROR it may be
	// empty.
	Answer string `json:"answer"`

	// Success is true only when the run reached COMPLETED.
	Success bool `json:"success"`

	// State is the terminal state of the run.
	State RunState `json:"state"`

	// Iterations is how many decide/execute iterations ran. Backoff
	// retries inside a model call do not count.
	Iterations int `json:"iterations"`

	// CorrectionAttempts counts revision attempts across the whole run.
	CorrectionAttempts int `json:"correction_attempts"`

	// MalformedDecisions counts decisions that parsed to neither a
	// tool invocation nor a final answer.
	MalformedDecisions int `json:"malformed_decisions"`

	// Usage is the exact sum of tokens across every model call the run
	// made, corrections included.
	Usage llm.Usage `json:"usage"`

	// Timings is the per-phase wall-time breakdown.
	Timings PhaseTimings `json:"timings"`

	// ToolCalls records every dispatch attempt in order.
	ToolCalls []tools.CallRecord `json:"tool_calls"`

	// History is the full step history of the run.
	History []HistoryEntry `json:"history"`

	// Error holds the fatal failure message when State is ERROR.
	Error string `json:"error,omitempty"`

	// StartedAt is when the run began.
	StartedAt time.Time `json:"started_at"`

	// Duration is the total wall time of the run.
	Duration time.Duration `json:"duration"`
}
