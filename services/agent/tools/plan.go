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

	"github.com/QuaysideAI/DockPilot/services/agent/llm"
)

const planSystemPrompt = `You are a dock operations analyst. Given a table catalog and a
question, write a short numbered plan (at most 4 steps) describing how
to answer the question with a single query over the catalog. Name the
table and columns you will use. Do not write the query itself.`

// PlanQueryTool asks the model for a short query plan over the linked
// schema before any query text is generated. Planning first keeps the
// generated query anchored to real tables and columns.
type PlanQueryTool struct {
	client llm.Client
}

// NewPlanQueryTool creates the plan_query tool.
func NewPlanQueryTool(client llm.Client) *PlanQueryTool {
	return &PlanQueryTool{client: client}
}

func (t *PlanQueryTool) Name() string { return "plan_query" }

func (t *PlanQueryTool) Description() string {
	return "draft a step-by-step plan for answering the question"
}

func (t *PlanQueryTool) Requires() []string { return []string{SlotLinkedSchema} }
func (t *PlanQueryTool) Produces() []string { return []string{SlotPlan} }
func (t *PlanQueryTool) Executable() bool   { return false }

func (t *PlanQueryTool) Invoke(ctx context.Context, inv *Invocation) (*Outcome, error) {
	prompt := fmt.Sprintf("Catalog:\n%s\nQuestion: %s\n\nPlan:",
		inv.Workspace.LinkedSchema.Describe(), inv.Question)
	if len(inv.PriorContext) > 0 {
		prompt = "Context from earlier exchanges:\n- " +
			strings.Join(inv.PriorContext, "\n- ") + "\n\n" + prompt
	}

	resp, err := t.client.Generate(ctx, &llm.Request{
		SystemPrompt: planSystemPrompt,
		Prompt:       prompt,
		MaxTokens:    300,
		Temperature:  0.2,
	})
	if err != nil {
		return nil, err
	}

	plan := strings.TrimSpace(resp.Text)
	if plan == "" {
		return nil, fmt.Errorf("model returned an empty plan")
	}
	inv.Workspace.Plan = plan
	return &Outcome{Observation: "plan:\n" + plan, Usage: resp.Usage}, nil
}
