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

	"github.com/QuaysideAI/DockPilot/services/agent/exec"
)

// previewRows caps how many result rows appear in an observation.
const previewRows = 10

// ExecuteQueryTool runs the candidate query. It is the one executable
// tool: its failures carry machine-checkable error messages and are
// routed into the correction sub-loop instead of ending the step.
//
// An empty result set is treated as a failure here. The query ran, but
// an answer built on zero rows is almost always a mis-targeted filter,
// so it goes through correction like any other execution defect.
type ExecuteQueryTool struct {
	executor exec.Executor
}

// NewExecuteQueryTool creates the execute_query tool.
func NewExecuteQueryTool(executor exec.Executor) *ExecuteQueryTool {
	return &ExecuteQueryTool{executor: executor}
}

func (t *ExecuteQueryTool) Name() string { return "execute_query" }

func (t *ExecuteQueryTool) Description() string {
	return "run the candidate query against the dataset"
}

func (t *ExecuteQueryTool) Requires() []string { return []string{SlotQuery} }
func (t *ExecuteQueryTool) Produces() []string { return []string{SlotResult} }
func (t *ExecuteQueryTool) Executable() bool   { return true }

func (t *ExecuteQueryTool) Invoke(ctx context.Context, inv *Invocation) (*Outcome, error) {
	rs, err := t.executor.Execute(ctx, inv.Workspace.Query)
	if err != nil {
		return nil, err
	}
	if rs.RowCount() == 0 {
		return nil, fmt.Errorf("empty result: query matched no rows")
	}
	inv.Workspace.Result = rs
	return &Outcome{
		Observation: fmt.Sprintf("query returned %d row(s):\n%s", rs.RowCount(), RenderTable(rs, previewRows)),
	}, nil
}

// RenderTable renders a result set as pipe-separated text, capped at
// maxRows data rows.
func RenderTable(rs *exec.ResultSet, maxRows int) string {
	var b strings.Builder
	b.WriteString(strings.Join(rs.Columns, " | "))
	b.WriteString("\n")

	rows := rs.Rows
	truncated := 0
	if maxRows > 0 && len(rows) > maxRows {
		truncated = len(rows) - maxRows
		rows = rows[:maxRows]
	}
	for _, row := range rows {
		cells := make([]string, len(row))
		for i, v := range row {
			cells[i] = fmt.Sprint(v)
		}
		b.WriteString(strings.Join(cells, " | "))
		b.WriteString("\n")
	}
	if truncated > 0 {
		fmt.Fprintf(&b, "... %d more row(s)\n", truncated)
	}
	return b.String()
}
