// Copyright (C) 2026 Quayside AI (oss@quayside.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package exec defines the query-execution boundary for the agent.
//
// The agent treats query execution as an external collaborator: it
// hands over a candidate query string and receives either a result set
// or an error whose message the correction sub-loop can classify. The
// package ships one reference implementation, MemoryExecutor, holding
// the dock-operations dataset in memory and evaluating a restricted
// SQL subset. Production deployments substitute their own Executor.
package exec

import "context"

// ColumnType enumerates the value types the boundary understands.
type ColumnType string

const (
	// TypeText holds string values.
	TypeText ColumnType = "text"

	// TypeInt holds integer values.
	TypeInt ColumnType = "integer"

	// TypeFloat holds floating-point values.
	TypeFloat ColumnType = "real"
)

// Column describes one column of a table.
type Column struct {
	// Name is the column name.
	Name string `json:"name"`

	// Type is the column's value type.
	Type ColumnType `json:"type"`
}

// Table describes one table of the catalog.
type Table struct {
	// Name is the table name.
	Name string `json:"name"`

	// Columns lists the table's columns in declaration order.
	Columns []Column `json:"columns"`
}

// Catalog is the queryable schema exposed by an executor.
type Catalog struct {
	// Tables lists all queryable tables.
	Tables []Table `json:"tables"`
}

// Describe renders the catalog as a compact schema card suitable for
// embedding into a model prompt.
func (c *Catalog) Describe() string {
	out := ""
	for _, t := range c.Tables {
		out += t.Name + "("
		for i, col := range t.Columns {
			if i > 0 {
				out += ", "
			}
			out += col.Name + " " + string(col.Type)
		}
		out += ")\n"
	}
	return out
}

// ResultSet is the outcome of a successful execution.
type ResultSet struct {
	// Columns names the result columns in order.
	Columns []string `json:"columns"`

	// Rows holds the result rows; each row aligns with Columns.
	Rows [][]any `json:"rows"`
}

// RowCount returns the number of rows.
func (r *ResultSet) RowCount() int {
	return len(r.Rows)
}

// Executor runs candidate queries against a dataset.
//
// Implementations must return errors whose messages start with one of
// the recognizable failure phrases ("syntax error", "unknown table",
// "unknown column", "type mismatch") when applicable, so the
// correction sub-loop can diagnose them.
type Executor interface {
	// Catalog returns the queryable schema.
	Catalog(ctx context.Context) (*Catalog, error)

	// Execute runs one query and returns its result set.
	Execute(ctx context.Context, query string) (*ResultSet, error)
}
