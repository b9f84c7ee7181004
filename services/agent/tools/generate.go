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

const generateSystemPrompt = `You translate dock-operations questions into a single SQL query.
Only this subset is supported:

  SELECT * | COUNT(*) | col[, col...]
  FROM table
  [WHERE col op literal [AND ...]]   op: = != < <= > >=
  [GROUP BY col]
  [LIMIT n]

No joins, no subqueries, no ORDER BY, no functions other than
COUNT(*). String literals use single quotes. Respond with the query
only, no prose and no code fences.`

// GenerateQueryTool turns the plan into a candidate query in the
// executor's restricted subset.
type GenerateQueryTool struct {
	client llm.Client
}

// NewGenerateQueryTool creates the generate_query tool.
func NewGenerateQueryTool(client llm.Client) *GenerateQueryTool {
	return &GenerateQueryTool{client: client}
}

func (t *GenerateQueryTool) Name() string { return "generate_query" }

func (t *GenerateQueryTool) Description() string {
	return "write the candidate query from the plan"
}

func (t *GenerateQueryTool) Requires() []string { return []string{SlotLinkedSchema, SlotPlan} }
func (t *GenerateQueryTool) Produces() []string { return []string{SlotQuery} }
func (t *GenerateQueryTool) Executable() bool   { return false }

func (t *GenerateQueryTool) Invoke(ctx context.Context, inv *Invocation) (*Outcome, error) {
	prompt := fmt.Sprintf("Catalog:\n%s\nQuestion: %s\n\nPlan:\n%s\n\nQuery:",
		inv.Workspace.LinkedSchema.Describe(), inv.Question, inv.Workspace.Plan)

	resp, err := t.client.Generate(ctx, &llm.Request{
		SystemPrompt: generateSystemPrompt,
		Prompt:       prompt,
		MaxTokens:    200,
		Temperature:  0,
	})
	if err != nil {
		return nil, err
	}

	query := CleanQueryText(resp.Text)
	if query == "" {
		return nil, fmt.Errorf("model returned an empty query")
	}
	inv.Workspace.Query = query
	return &Outcome{Observation: "candidate query: " + query, Usage: resp.Usage}, nil
}

// CleanQueryText strips the decoration models wrap around query text:
// code fences, a leading language tag, and "SQL:" style prefixes.
// Shared with the correction sub-loop, which cleans revised queries
// the same way.
func CleanQueryText(text string) string {
	s := strings.TrimSpace(text)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
		if idx := strings.Index(s, "\n"); idx >= 0 && !strings.ContainsAny(s[:idx], " \t") {
			// drop the language tag line (e.g. "sql")
			s = s[idx+1:]
		}
		if idx := strings.LastIndex(s, "```"); idx >= 0 {
			s = s[:idx]
		}
	}
	s = strings.TrimSpace(s)
	for _, prefix := range []string{"SQL:", "sql:", "Query:", "query:"} {
		if strings.HasPrefix(s, prefix) {
			s = strings.TrimSpace(strings.TrimPrefix(s, prefix))
		}
	}
	// Keep only the first statement if the model rambled on.
	if idx := strings.Index(s, ";"); idx >= 0 {
		s = strings.TrimSpace(s[:idx])
	}
	return s
}
