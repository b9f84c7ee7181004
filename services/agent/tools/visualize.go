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

// chartMaxWidth is the widest bar in a rendered chart.
const chartMaxWidth = 40

// RenderChartTool renders the current result as a text chart. Result
// sets shaped like (label, number) become a horizontal bar chart;
// anything else falls back to the plain table rendering.
type RenderChartTool struct{}

// NewRenderChartTool creates the render_chart tool.
func NewRenderChartTool() *RenderChartTool { return &RenderChartTool{} }

func (t *RenderChartTool) Name() string        { return "render_chart" }
func (t *RenderChartTool) Description() string { return "render the query result as a text chart" }
func (t *RenderChartTool) Requires() []string  { return []string{SlotResult} }
func (t *RenderChartTool) Produces() []string  { return []string{SlotChart} }
func (t *RenderChartTool) Executable() bool    { return false }

func (t *RenderChartTool) Invoke(ctx context.Context, inv *Invocation) (*Outcome, error) {
	rs := inv.Workspace.Result
	chart, ok := renderBarChart(rs)
	if !ok {
		chart = RenderTable(rs, 0)
	}
	inv.Workspace.Chart = chart
	return &Outcome{Observation: "chart:\n" + chart}, nil
}

// renderBarChart draws a bar per row when the result is two columns
// with a numeric second column. Returns false when the shape does not
// fit.
func renderBarChart(rs *exec.ResultSet) (string, bool) {
	if len(rs.Columns) != 2 || rs.RowCount() == 0 {
		return "", false
	}

	labels := make([]string, rs.RowCount())
	values := make([]float64, rs.RowCount())
	var maxVal float64
	labelWidth := 0
	for i, row := range rs.Rows {
		labels[i] = fmt.Sprint(row[0])
		v, ok := asFloat(row[1])
		if !ok {
			return "", false
		}
		values[i] = v
		if v > maxVal {
			maxVal = v
		}
		if len(labels[i]) > labelWidth {
			labelWidth = len(labels[i])
		}
	}
	if maxVal <= 0 {
		return "", false
	}

	var b strings.Builder
	for i := range labels {
		width := int(values[i] / maxVal * chartMaxWidth)
		if width == 0 && values[i] > 0 {
			width = 1
		}
		fmt.Fprintf(&b, "%-*s | %s %v\n", labelWidth, labels[i], strings.Repeat("#", width), rs.Rows[i][1])
	}
	return b.String(), true
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}
