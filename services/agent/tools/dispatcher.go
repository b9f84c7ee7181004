// Copyright (C) 2026 Quayside AI (oss@quayside.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package tools

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/QuaysideAI/DockPilot/pkg/logging"
	"github.com/QuaysideAI/DockPilot/services/agent/exec"
	"github.com/QuaysideAI/DockPilot/services/agent/llm"
)

// CallRecord is the accounting entry for one dispatch attempt,
// successful or not.
type CallRecord struct {
	// Tool is the requested tool name, known or not.
	Tool string `json:"tool"`

	// StartedAt is when the dispatch began.
	StartedAt time.Time `json:"started_at"`

	// Duration is the wall time the dispatch took.
	Duration time.Duration `json:"duration"`

	// OK reports whether the tool ran to success.
	OK bool `json:"ok"`

	// Observation is the text fed back to the decision prompt.
	Observation string `json:"observation"`

	// Usage is the model spend attributed to this call. Zero when the
	// tool did not consult the model.
	Usage llm.Usage `json:"usage"`

	// Error holds the failure message when OK is false.
	Error string `json:"error,omitempty"`
}

// Dispatcher resolves tool names against a registry, enforces slot
// preconditions, and times every invocation. Unknown names and
// precondition failures come back as failed records with a usable
// observation rather than as panics or silent drops, so the loop can
// surface them to the model and keep going.
type Dispatcher struct {
	registry *Registry
	logger   *logging.Logger
}

// NewDispatcher creates a dispatcher over the given registry.
func NewDispatcher(registry *Registry, logger *logging.Logger) *Dispatcher {
	if logger == nil {
		logger = logging.Default()
	}
	return &Dispatcher{registry: registry, logger: logger}
}

// Registry exposes the underlying registry, mainly for prompt
// construction.
func (d *Dispatcher) Registry() *Registry { return d.registry }

// Dispatch invokes the named tool. The returned record is always
// populated; err is non-nil exactly when record.OK is false. The error
// from an Executable tool is what the correction sub-loop diagnoses.
func (d *Dispatcher) Dispatch(ctx context.Context, name string, inv *Invocation) (CallRecord, *Outcome, error) {
	record := CallRecord{Tool: name, StartedAt: time.Now()}

	tool, ok := d.registry.Get(name)
	if !ok {
		err := fmt.Errorf("unknown tool %q (available: %s)", name, strings.Join(d.registry.Names(), ", "))
		record.Duration = time.Since(record.StartedAt)
		record.Observation = err.Error()
		record.Error = err.Error()
		d.logger.Warn("dispatch of unknown tool", "tool", name)
		return record, nil, err
	}

	if missing := missingSlots(tool, inv.Workspace); len(missing) > 0 {
		err := &PreconditionError{Tool: name, Missing: missing}
		record.Duration = time.Since(record.StartedAt)
		record.Observation = err.Error()
		record.Error = err.Error()
		d.logger.Warn("dispatch blocked by unmet preconditions", "tool", name, "missing", strings.Join(missing, ","))
		return record, nil, err
	}

	outcome, err := tool.Invoke(ctx, inv)
	record.Duration = time.Since(record.StartedAt)
	if err != nil {
		record.Observation = fmt.Sprintf("tool %s failed: %v", name, err)
		record.Error = err.Error()
		d.logger.Warn("tool failed", "tool", name, "duration_ms", record.Duration.Milliseconds(), "error", err.Error())
		return record, nil, err
	}

	record.OK = true
	record.Observation = outcome.Observation
	record.Usage = outcome.Usage
	d.logger.Debug("tool succeeded", "tool", name, "duration_ms", record.Duration.Milliseconds())
	return record, outcome, nil
}

func missingSlots(tool Tool, ws *Workspace) []string {
	var missing []string
	for _, slot := range tool.Requires() {
		if !ws.Filled(slot) {
			missing = append(missing, slot)
		}
	}
	return missing
}

// NewDefaultRegistry wires the full dock toolset against an executor
// and a model client.
func NewDefaultRegistry(executor exec.Executor, client llm.Client) (*Registry, error) {
	r := NewRegistry()
	for _, tool := range []Tool{
		NewLoadSchemaTool(executor),
		NewLinkSchemaTool(),
		NewPlanQueryTool(client),
		NewGenerateQueryTool(client),
		NewExecuteQueryTool(executor),
		NewRenderChartTool(),
	} {
		if err := r.Register(tool); err != nil {
			return nil, err
		}
	}
	return r, nil
}
