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

// LoadSchemaTool loads the full catalog from the executor into the
// workspace.
type LoadSchemaTool struct {
	executor exec.Executor
}

// NewLoadSchemaTool creates the load_schema tool.
func NewLoadSchemaTool(executor exec.Executor) *LoadSchemaTool {
	return &LoadSchemaTool{executor: executor}
}

func (t *LoadSchemaTool) Name() string        { return "load_schema" }
func (t *LoadSchemaTool) Description() string { return "load the queryable table catalog" }
func (t *LoadSchemaTool) Requires() []string  { return nil }
func (t *LoadSchemaTool) Produces() []string  { return []string{SlotSchema} }
func (t *LoadSchemaTool) Executable() bool    { return false }

func (t *LoadSchemaTool) Invoke(ctx context.Context, inv *Invocation) (*Outcome, error) {
	cat, err := t.executor.Catalog(ctx)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	if len(cat.Tables) == 0 {
		return nil, fmt.Errorf("catalog is empty")
	}
	inv.Workspace.Schema = cat
	return &Outcome{Observation: "schema loaded:\n" + cat.Describe()}, nil
}

// LinkSchemaTool prunes the loaded catalog to the tables that look
// relevant to the question. The linking is a lexical heuristic: table
// and column names are matched against question tokens, helped by a
// small synonym map for dock vocabulary. When nothing matches, the
// full catalog is kept rather than guessing.
type LinkSchemaTool struct{}

// NewLinkSchemaTool creates the link_schema tool.
func NewLinkSchemaTool() *LinkSchemaTool { return &LinkSchemaTool{} }

func (t *LinkSchemaTool) Name() string { return "link_schema" }

func (t *LinkSchemaTool) Description() string {
	return "narrow the catalog to tables relevant to the question"
}

func (t *LinkSchemaTool) Requires() []string { return []string{SlotSchema} }
func (t *LinkSchemaTool) Produces() []string { return []string{SlotLinkedSchema} }
func (t *LinkSchemaTool) Executable() bool   { return false }

// tableSynonyms maps question vocabulary to the tables it implies.
var tableSynonyms = map[string][]string{
	"truck":      {"inbound_trucks", "dock_assignments"},
	"trucks":     {"inbound_trucks", "dock_assignments"},
	"inbound":    {"inbound_trucks"},
	"eta":        {"inbound_trucks"},
	"load":       {"outbound_loads", "dock_assignments"},
	"loads":      {"outbound_loads", "dock_assignments"},
	"outbound":   {"outbound_loads"},
	"cutoff":     {"outbound_loads"},
	"door":       {"dock_doors"},
	"doors":      {"dock_doors"},
	"delay":      {"dock_events"},
	"delays":     {"dock_events"},
	"delayed":    {"dock_events"},
	"fault":      {"dock_events"},
	"cancelled":  {"dock_events", "dock_assignments"},
	"event":      {"dock_events"},
	"events":     {"dock_events"},
	"assignment": {"dock_assignments"},
	"schedule":   {"dock_assignments"},
	"scheduled":  {"dock_assignments"},
	"crew":       {"dock_assignments"},
	"unload":     {"dock_assignments", "inbound_trucks"},
}

func (t *LinkSchemaTool) Invoke(ctx context.Context, inv *Invocation) (*Outcome, error) {
	tokens := tokenizeQuestion(inv.Question)
	for _, hint := range inv.PriorContext {
		tokens = append(tokens, tokenizeQuestion(hint)...)
	}

	wanted := make(map[string]bool)
	for _, tok := range tokens {
		for _, table := range tableSynonyms[tok] {
			wanted[table] = true
		}
	}

	full := inv.Workspace.Schema
	linked := &exec.Catalog{}
	for _, table := range full.Tables {
		if wanted[table.Name] || matchesTableLexically(table, tokens) {
			linked.Tables = append(linked.Tables, table)
		}
	}
	if len(linked.Tables) == 0 {
		linked.Tables = full.Tables
	}
	inv.Workspace.LinkedSchema = linked

	names := make([]string, len(linked.Tables))
	for i, tab := range linked.Tables {
		names[i] = tab.Name
	}
	return &Outcome{Observation: "linked tables: " + strings.Join(names, ", ")}, nil
}

// matchesTableLexically checks the table or column names against the
// question tokens directly.
func matchesTableLexically(table exec.Table, tokens []string) bool {
	nameParts := strings.Split(table.Name, "_")
	for _, tok := range tokens {
		for _, part := range nameParts {
			if tok == part {
				return true
			}
		}
		for _, col := range table.Columns {
			if tok == col.Name {
				return true
			}
		}
	}
	return false
}

func tokenizeQuestion(q string) []string {
	return strings.FieldsFunc(strings.ToLower(q), func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == '_')
	})
}
