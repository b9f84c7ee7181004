// Copyright (C) 2026 Quayside AI (oss@quayside.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/QuaysideAI/DockPilot/services/agent/exec"
	"github.com/QuaysideAI/DockPilot/services/agent/llm"
	"github.com/QuaysideAI/DockPilot/services/agent/tools"
)

func TestClassifyFailure(t *testing.T) {
	tests := []struct {
		msg  string
		want FailureClass
	}{
		{`syntax error near "SELEC"`, FailureSyntax},
		{`unknown table "dock_door" (available: dock_doors)`, FailureReference},
		{`unknown column "doorid" in table "dock_doors"`, FailureReference},
		{`type mismatch: column "is_active" is integer`, FailureTypeMismatch},
		{`empty result: query matched no rows`, FailureEmptyResult},
		{`result does not answer the question`, FailureLogic},
		{`disk on fire`, FailureUnknown},
	}
	for _, tt := range tests {
		t.Run(string(tt.want), func(t *testing.T) {
			if got := ClassifyFailure(errors.New(tt.msg)); got != tt.want {
				t.Errorf("ClassifyFailure(%q) = %s, want %s", tt.msg, got, tt.want)
			}
		})
	}
	if got := ClassifyFailure(nil); got != FailureUnknown {
		t.Errorf("ClassifyFailure(nil) = %s, want unknown", got)
	}
}

func newCorrectionFixture(t *testing.T, client llm.Client, maxAttempts int) (*CorrectionLoop, *TaskState) {
	t.Helper()
	registry, err := tools.NewDefaultRegistry(exec.NewDockDataset(), client)
	if err != nil {
		t.Fatalf("NewDefaultRegistry() error = %v", err)
	}
	dispatcher := tools.NewDispatcher(registry, nil)
	loop := NewCorrectionLoop(client, dispatcher, maxAttempts, nil)

	ts := NewTaskState("How many delay events were there?", nil)
	cat, err := exec.NewDockDataset().Catalog(context.Background())
	if err != nil {
		t.Fatalf("Catalog() error = %v", err)
	}
	ts.Workspace().Schema = cat
	ts.Workspace().LinkedSchema = cat
	return loop, ts
}

func TestCorrectionLoop_FixesSyntaxOnFirstAttempt(t *testing.T) {
	mock := llm.NewMockClient().
		QueueText("SELECT COUNT(*) FROM dock_events WHERE event_type = 'delay'")
	loop, ts := newCorrectionFixture(t, mock, 3)

	ts.Workspace().Query = "SELEC COUNT(*) FROM dock_events"
	execErr := fmt.Errorf(`syntax error near %q: expected SELECT`, "SELEC")

	if err := loop.Run(context.Background(), ts, execErr); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if got := ts.Result().CorrectionAttempts; got != 1 {
		t.Errorf("CorrectionAttempts = %d, want 1", got)
	}
	if ts.Workspace().Result == nil || ts.Workspace().Result.Rows[0][0].(int) != 4 {
		t.Errorf("result = %+v, want count 4", ts.Workspace().Result)
	}
	// The revision prompt carries the failed query and the error.
	prompt := mock.Calls()[0].Request.Prompt
	for _, want := range []string{"SELEC COUNT(*)", "syntax error", "dock_events"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("revision prompt missing %q", want)
		}
	}
}

func TestCorrectionLoop_KFailuresThenSuccess(t *testing.T) {
	// A bad table, then a bad column, then a good query: three
	// attempts consumed.
	mock := llm.NewMockClient().
		QueueText("SELECT COUNT(*) FROM dock_event").
		QueueText("SELECT COUNT(*) FROM dock_events WHERE kind = 'delay'").
		QueueText("SELECT COUNT(*) FROM dock_events WHERE event_type = 'delay'")
	loop, ts := newCorrectionFixture(t, mock, 5)

	ts.Workspace().Query = "SELEC"
	execErr := errors.New("syntax error near \"SELEC\"")

	if err := loop.Run(context.Background(), ts, execErr); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if got := ts.Result().CorrectionAttempts; got != 3 {
		t.Errorf("CorrectionAttempts = %d, want 3", got)
	}
	if got := len(ts.Result().ToolCalls); got != 3 {
		t.Errorf("re-executions recorded = %d, want 3", got)
	}
}

func TestCorrectionLoop_BudgetExhausted(t *testing.T) {
	mock := llm.NewMockClient().WithResponseFunc(func(*llm.Request) (*llm.Response, error) {
		return &llm.Response{Text: "SELECT * FROM nonexistent", Usage: llm.Usage{TotalTokens: 10}}, nil
	})
	loop, ts := newCorrectionFixture(t, mock, 3)

	ts.Workspace().Query = "SELEC"
	err := loop.Run(context.Background(), ts, errors.New("syntax error near \"SELEC\""))
	if !errors.Is(err, ErrCorrectionExhausted) {
		t.Fatalf("error = %v, want ErrCorrectionExhausted", err)
	}
	if got := ts.Result().CorrectionAttempts; got != 3 {
		t.Errorf("CorrectionAttempts = %d, want exactly the budget 3", got)
	}
	// Token spend from the revision calls is still accounted.
	if got := ts.Usage().TotalTokens; got != 30 {
		t.Errorf("TotalTokens = %d, want 30", got)
	}
}

func TestCorrectionLoop_FatalModelFailurePropagates(t *testing.T) {
	mock := llm.NewMockClient().
		QueueError(&llm.FatalError{Provider: "mock", StatusCode: 401, Message: "bad key"})
	loop, ts := newCorrectionFixture(t, mock, 3)

	ts.Workspace().Query = "SELEC"
	err := loop.Run(context.Background(), ts, errors.New("syntax error near \"SELEC\""))
	if !llm.IsFatal(err) {
		t.Fatalf("error = %v, want fatal", err)
	}
}
