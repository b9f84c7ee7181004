// Copyright (C) 2026 Quayside AI (oss@quayside.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package agent

import (
	"strings"
	"testing"

	"github.com/QuaysideAI/DockPilot/services/agent/exec"
	"github.com/QuaysideAI/DockPilot/services/agent/llm"
	"github.com/QuaysideAI/DockPilot/services/agent/tools"
)

func TestParseDecision(t *testing.T) {
	tests := []struct {
		name       string
		text       string
		wantKind   DecisionKind
		wantTool   string
		wantAnswer string
	}{
		{"tool", "TOOL: load_schema", DecisionInvoke, "load_schema", ""},
		{"tool with whitespace", "  TOOL:   execute_query  ", DecisionInvoke, "execute_query", ""},
		{"final", "FINAL_ANSWER: 4 delays today", DecisionFinal, "", "4 delays today"},
		{"final multiline", "FINAL_ANSWER: Two points:\n- doors\n- crews", DecisionFinal, "", "Two points:\n- doors\n- crews"},
		{"final body on next line", "FINAL_ANSWER:\nFremont has 4 active doors.", DecisionFinal, "", "Fremont has 4 active doors."},

		{"empty", "", DecisionMalformed, "", ""},
		{"prose", "I think I should look at the schema first.", DecisionMalformed, "", ""},
		{"tool with trailing words", "TOOL: load_schema because we need it", DecisionMalformed, "", ""},
		{"tool empty name", "TOOL:", DecisionMalformed, "", ""},
		{"final empty", "FINAL_ANSWER:", DecisionMalformed, "", ""},
		{"prefix not at start", "Thought: TOOL: load_schema", DecisionMalformed, "", ""},
		{"lowercase prefix", "tool: load_schema", DecisionMalformed, "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := ParseDecision(tt.text)
			if d.Kind != tt.wantKind {
				t.Fatalf("Kind = %s, want %s (reason: %s)", d.Kind, tt.wantKind, d.Reason)
			}
			if d.Tool != tt.wantTool {
				t.Errorf("Tool = %q, want %q", d.Tool, tt.wantTool)
			}
			if d.Answer != tt.wantAnswer {
				t.Errorf("Answer = %q, want %q", d.Answer, tt.wantAnswer)
			}
			if d.Kind == DecisionMalformed && d.Reason == "" {
				t.Error("malformed decision carries no reason")
			}
			if d.Raw != tt.text {
				t.Errorf("Raw = %q, want original text", d.Raw)
			}
		})
	}
}

func TestBuildDecisionPrompt(t *testing.T) {
	registry, err := tools.NewDefaultRegistry(exec.NewDockDataset(), llm.NewMockClient())
	if err != nil {
		t.Fatalf("NewDefaultRegistry() error = %v", err)
	}

	ts := NewTaskState("How many delays in Fremont?", []string{"user cares about today only"})
	_ = ts.AppendHistory(HistoryEntry{Type: EntryToolCall, ToolName: "load_schema", Output: "schema loaded"})

	prompt := buildDecisionPrompt(decisionPromptInput{
		state:         ts,
		registry:      registry,
		iteration:     2,
		maxIterations: 12,
	})

	for _, want := range []string{
		"How many delays in Fremont?",
		"user cares about today only",
		"load_schema",
		"execute_query",
		"schema loaded",
		"Iteration 2 of 12",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
	if strings.Contains(prompt, "budget is nearly spent") {
		t.Error("conclude nudge present without being requested")
	}

	nudged := buildDecisionPrompt(decisionPromptInput{
		state:         ts,
		registry:      registry,
		iteration:     12,
		maxIterations: 12,
		concludeNudge: true,
	})
	if !strings.Contains(nudged, "budget is nearly spent") {
		t.Error("conclude nudge missing")
	}

	reminded := buildDecisionPrompt(decisionPromptInput{
		state:          ts,
		registry:       registry,
		iteration:      5,
		maxIterations:  12,
		formatReminder: true,
	})
	if !strings.Contains(reminded, "not parseable") {
		t.Error("format reminder missing")
	}
}

func TestBuildDecisionPrompt_HistoryWindow(t *testing.T) {
	registry, err := tools.NewDefaultRegistry(exec.NewDockDataset(), llm.NewMockClient())
	if err != nil {
		t.Fatalf("NewDefaultRegistry() error = %v", err)
	}

	ts := NewTaskState("question", nil)
	for i := 0; i < historyWindow+5; i++ {
		_ = ts.AppendHistory(HistoryEntry{Type: EntryDecision, Output: "obs-" + string(rune('a'+i))})
	}

	prompt := buildDecisionPrompt(decisionPromptInput{
		state: ts, registry: registry, iteration: 1, maxIterations: 12,
	})
	if strings.Contains(prompt, "obs-a") {
		t.Error("oldest entry should fall outside the window")
	}
	if !strings.Contains(prompt, "obs-"+string(rune('a'+historyWindow+4))) {
		t.Error("newest entry missing from the window")
	}
}
