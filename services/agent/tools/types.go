// Copyright (C) 2026 Quayside AI (oss@quayside.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package tools contains the named capabilities the agent can dispatch
// during a run, the workspace they read and write, and the registry
// that binds names to implementations.
package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/QuaysideAI/DockPilot/services/agent/exec"
	"github.com/QuaysideAI/DockPilot/services/agent/llm"
)

// Artifact slot names. Each tool declares which slots it requires
// filled before invocation and which it produces on success.
const (
	SlotSchema       = "schema"
	SlotLinkedSchema = "linked_schema"
	SlotPlan         = "plan"
	SlotQuery        = "query"
	SlotResult       = "result"
	SlotChart        = "chart"
)

// Workspace is the shared artifact store for one run. Slots are filled
// by tools as the run progresses; a tool whose required slot is empty
// fails its precondition check instead of running.
//
// Thread Safety: Workspace is confined to one run goroutine and is not
// synchronized.
type Workspace struct {
	// Schema is the full catalog loaded from the executor.
	Schema *exec.Catalog

	// LinkedSchema is the catalog pruned to tables relevant to the
	// question.
	LinkedSchema *exec.Catalog

	// Plan is the natural-language query plan.
	Plan string

	// Query is the candidate query awaiting or surviving execution.
	Query string

	// Result is the result set of the last successful execution.
	Result *exec.ResultSet

	// Chart is the rendered visualization of Result.
	Chart string
}

// Filled reports whether the named slot holds an artifact.
func (w *Workspace) Filled(slot string) bool {
	switch slot {
	case SlotSchema:
		return w.Schema != nil
	case SlotLinkedSchema:
		return w.LinkedSchema != nil
	case SlotPlan:
		return w.Plan != ""
	case SlotQuery:
		return w.Query != ""
	case SlotResult:
		return w.Result != nil
	case SlotChart:
		return w.Chart != ""
	}
	return false
}

// FilledSlots returns the filled slot names in pipeline order, for
// embedding into the decision prompt.
func (w *Workspace) FilledSlots() []string {
	var filled []string
	for _, slot := range []string{SlotSchema, SlotLinkedSchema, SlotPlan, SlotQuery, SlotResult, SlotChart} {
		if w.Filled(slot) {
			filled = append(filled, slot)
		}
	}
	return filled
}

// Invocation carries the per-run inputs a tool may consult.
type Invocation struct {
	// Question is the user's original question.
	Question string

	// PriorContext holds optional hints carried over from earlier
	// exchanges.
	PriorContext []string

	// Workspace is the run's artifact store.
	Workspace *Workspace
}

// Outcome is what a successful tool invocation reports back to the
// loop.
type Outcome struct {
	// Observation is the textual observation appended to history and
	// fed back into the next decision prompt.
	Observation string

	// Usage accumulates any model tokens the tool spent.
	Usage llm.Usage
}

// Tool is one named capability.
type Tool interface {
	// Name returns the dispatch name.
	Name() string

	// Description returns a one-line summary for the decision prompt.
	Description() string

	// Requires lists the workspace slots that must be filled before
	// Invoke is called.
	Requires() []string

	// Produces lists the workspace slots filled on success.
	Produces() []string

	// Executable reports whether a failure of this tool should enter
	// the correction sub-loop rather than surface as a plain failed
	// observation.
	Executable() bool

	// Invoke runs the tool against the invocation's workspace.
	Invoke(ctx context.Context, inv *Invocation) (*Outcome, error)
}

// PreconditionError reports a dispatch attempt whose required slots
// were not yet filled.
type PreconditionError struct {
	Tool    string
	Missing []string
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("tool %q requires %s to be filled first", e.Tool, strings.Join(e.Missing, ", "))
}
