// Copyright (C) 2026 Quayside AI (oss@quayside.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package exec

import (
	"context"
	"strings"
	"testing"
)

func TestMemoryExecutor_Catalog(t *testing.T) {
	m := NewDockDataset()
	cat, err := m.Catalog(context.Background())
	if err != nil {
		t.Fatalf("Catalog() error = %v", err)
	}
	if len(cat.Tables) != 5 {
		t.Fatalf("table count = %d, want 5", len(cat.Tables))
	}
	if cat.Tables[0].Name != "dock_doors" {
		t.Errorf("first table = %q, want dock_doors", cat.Tables[0].Name)
	}

	card := cat.Describe()
	for _, want := range []string{"dock_doors(", "door_id text", "inbound_trucks(", "priority integer"} {
		if !strings.Contains(card, want) {
			t.Errorf("Describe() missing %q:\n%s", want, card)
		}
	}
}

func TestMemoryExecutor_SelectStar(t *testing.T) {
	m := NewDockDataset()
	rs, err := m.Execute(context.Background(), "SELECT * FROM dock_doors")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if rs.RowCount() != 14 {
		t.Errorf("RowCount = %d, want 14", rs.RowCount())
	}
	if len(rs.Columns) != 3 || rs.Columns[0] != "door_id" {
		t.Errorf("Columns = %v", rs.Columns)
	}
}

func TestMemoryExecutor_WhereAndProjection(t *testing.T) {
	m := NewDockDataset()
	rs, err := m.Execute(context.Background(),
		"SELECT door_id FROM dock_doors WHERE location = 'Fremont CA' AND is_active = 1")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if rs.RowCount() != 3 {
		t.Fatalf("RowCount = %d, want 3 active Fremont doors", rs.RowCount())
	}
	got := make(map[string]bool)
	for _, row := range rs.Rows {
		got[row[0].(string)] = true
	}
	for _, want := range []string{"FRE-D01", "FRE-D02", "FRE-D04"} {
		if !got[want] {
			t.Errorf("missing door %s in %v", want, rs.Rows)
		}
	}
}

func TestMemoryExecutor_CountStar(t *testing.T) {
	m := NewDockDataset()
	rs, err := m.Execute(context.Background(),
		"SELECT COUNT(*) FROM dock_events WHERE event_type = 'delay'")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if rs.RowCount() != 1 || rs.Rows[0][0].(int) != 4 {
		t.Errorf("count = %v, want [[4]]", rs.Rows)
	}
}

func TestMemoryExecutor_GroupBy(t *testing.T) {
	m := NewDockDataset()
	rs, err := m.Execute(context.Background(),
		"SELECT location, COUNT(*) FROM dock_events WHERE event_type = 'delay' GROUP BY location")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	counts := make(map[string]int)
	for _, row := range rs.Rows {
		counts[row[0].(string)] = row[1].(int)
	}
	want := map[string]int{"Fremont CA": 1, "Austin TX": 1, "Berlin": 1, "Nevada Gigafactory": 1}
	if len(counts) != len(want) {
		t.Fatalf("groups = %v, want %v", counts, want)
	}
	for k, v := range want {
		if counts[k] != v {
			t.Errorf("counts[%s] = %d, want %d", k, counts[k], v)
		}
	}
}

func TestMemoryExecutor_NumericComparisonAndLimit(t *testing.T) {
	m := NewDockDataset()
	rs, err := m.Execute(context.Background(),
		"SELECT truck_id FROM inbound_trucks WHERE priority <= 2 LIMIT 3")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if rs.RowCount() != 3 {
		t.Errorf("RowCount = %d, want limit 3", rs.RowCount())
	}
}

func TestMemoryExecutor_ErrorTaxonomy(t *testing.T) {
	m := NewDockDataset()
	tests := []struct {
		name       string
		query      string
		wantPrefix string
	}{
		{"missing FROM", "SELECT door_id dock_doors", "syntax error"},
		{"garbage", "DROP TABLE dock_doors", "syntax error"},
		{"unterminated string", "SELECT * FROM dock_doors WHERE location = 'Fre", "syntax error"},
		{"trailing input", "SELECT * FROM dock_doors extra stuff", "syntax error"},
		{"empty select list", "SELECT FROM dock_doors", "syntax error"},
		{"count mixed with columns", "SELECT location, COUNT(*) FROM dock_events", "syntax error"},
		{"bad table", "SELECT * FROM dock_door", "unknown table"},
		{"bad column", "SELECT doorid FROM dock_doors", "unknown column"},
		{"bad where column", "SELECT * FROM dock_doors WHERE site = 'Berlin'", "unknown column"},
		{"text vs number column", "SELECT * FROM dock_doors WHERE is_active = 'yes'", "type mismatch"},
		{"number vs text column", "SELECT * FROM dock_doors WHERE location = 7", "type mismatch"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := m.Execute(context.Background(), tt.query)
			if err == nil {
				t.Fatalf("Execute(%q) succeeded, want %s error", tt.query, tt.wantPrefix)
			}
			if !strings.HasPrefix(err.Error(), tt.wantPrefix) {
				t.Errorf("error = %q, want prefix %q", err.Error(), tt.wantPrefix)
			}
		})
	}
}

func TestMemoryExecutor_EmptyResultIsNotAnError(t *testing.T) {
	m := NewDockDataset()
	rs, err := m.Execute(context.Background(),
		"SELECT * FROM dock_doors WHERE location = 'Atlantis'")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if rs.RowCount() != 0 {
		t.Errorf("RowCount = %d, want 0", rs.RowCount())
	}
}

func TestMemoryExecutor_CaseInsensitiveKeywordsAndIdents(t *testing.T) {
	m := NewDockDataset()
	rs, err := m.Execute(context.Background(),
		"select Door_ID from DOCK_DOORS where IS_ACTIVE = 0;")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if rs.RowCount() != 2 {
		t.Errorf("RowCount = %d, want 2 inactive doors", rs.RowCount())
	}
}

func TestMemoryExecutor_ContextCancelled(t *testing.T) {
	m := NewDockDataset()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := m.Execute(ctx, "SELECT * FROM dock_doors"); err == nil {
		t.Error("Execute() with cancelled context succeeded")
	}
	if _, err := m.Catalog(ctx); err == nil {
		t.Error("Catalog() with cancelled context succeeded")
	}
}

func TestAddTable_Validation(t *testing.T) {
	m := NewMemoryExecutor()
	if err := m.AddTable(Table{Name: "bad name!"}, nil); err == nil {
		t.Error("malformed table name accepted")
	}
	if err := m.AddTable(Table{
		Name:    "t",
		Columns: []Column{{Name: "a", Type: TypeInt}},
	}, [][]any{{1, 2}}); err == nil {
		t.Error("ragged row accepted")
	}
}
