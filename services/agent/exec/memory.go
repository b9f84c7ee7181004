// Copyright (C) 2026 Quayside AI (oss@quayside.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package exec

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/QuaysideAI/DockPilot/pkg/validation"
)

// MemoryExecutor is the in-memory reference Executor over the dock
// dataset. It evaluates a restricted SQL subset:
//
//	SELECT * | COUNT(*) | col[, col...] [, COUNT(*)]
//	FROM table
//	[WHERE col op literal [AND ...]]      op: = != < <= > >=
//	[GROUP BY col]
//	[LIMIT n]
//
// Failure messages are phrased so the correction sub-loop can classify
// them: "syntax error ...", "unknown table ...", "unknown column ...",
// "type mismatch ...".
//
// Thread Safety: MemoryExecutor is safe for concurrent use.
type MemoryExecutor struct {
	mu     sync.RWMutex
	tables map[string]*memTable
	order  []string
}

type memTable struct {
	def      Table
	colIndex map[string]int
	rows     [][]any
}

// NewMemoryExecutor creates an empty executor. Use AddTable to load
// data, or NewDockDataset for the seeded reference dataset.
func NewMemoryExecutor() *MemoryExecutor {
	return &MemoryExecutor{tables: make(map[string]*memTable)}
}

// AddTable registers a table with its rows. Identifiers are validated
// before registration; rows shorter than the column list are rejected.
func (m *MemoryExecutor) AddTable(def Table, rows [][]any) error {
	if err := validation.ValidateIdentifier(def.Name); err != nil {
		return fmt.Errorf("table name: %w", err)
	}
	colIndex := make(map[string]int, len(def.Columns))
	for i, col := range def.Columns {
		if err := validation.ValidateIdentifier(col.Name); err != nil {
			return fmt.Errorf("column name: %w", err)
		}
		colIndex[col.Name] = i
	}
	for i, row := range rows {
		if len(row) != len(def.Columns) {
			return fmt.Errorf("row %d has %d values, table %q has %d columns", i, len(row), def.Name, len(def.Columns))
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.tables[def.Name]; !exists {
		m.order = append(m.order, def.Name)
	}
	m.tables[def.Name] = &memTable{def: def, colIndex: colIndex, rows: rows}
	return nil
}

// Catalog implements Executor.
func (m *MemoryExecutor) Catalog(ctx context.Context) (*Catalog, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	cat := &Catalog{}
	for _, name := range m.order {
		cat.Tables = append(cat.Tables, m.tables[name].def)
	}
	return cat, nil
}

// Execute implements Executor.
func (m *MemoryExecutor) Execute(ctx context.Context, query string) (*ResultSet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	stmt, err := parseSelect(query)
	if err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	table, ok := m.tables[stmt.table]
	if !ok {
		return nil, fmt.Errorf("unknown table %q (available: %s)", stmt.table, strings.Join(m.order, ", "))
	}

	// Resolve referenced columns up front.
	for _, c := range stmt.columns {
		if _, ok := table.colIndex[c]; !ok {
			return nil, unknownColumn(table, c)
		}
	}
	for _, cond := range stmt.where {
		if _, ok := table.colIndex[cond.column]; !ok {
			return nil, unknownColumn(table, cond.column)
		}
	}
	if stmt.groupBy != "" {
		if _, ok := table.colIndex[stmt.groupBy]; !ok {
			return nil, unknownColumn(table, stmt.groupBy)
		}
	}

	// Filter.
	var matched [][]any
	for _, row := range table.rows {
		keep := true
		for _, cond := range stmt.where {
			ok, err := cond.matches(table, row)
			if err != nil {
				return nil, err
			}
			if !ok {
				keep = false
				break
			}
		}
		if keep {
			matched = append(matched, row)
		}
	}

	result, err := stmt.project(table, matched)
	if err != nil {
		return nil, err
	}
	if stmt.limit > 0 && len(result.Rows) > stmt.limit {
		result.Rows = result.Rows[:stmt.limit]
	}
	return result, nil
}

func unknownColumn(t *memTable, name string) error {
	cols := make([]string, len(t.def.Columns))
	for i, c := range t.def.Columns {
		cols[i] = c.Name
	}
	return fmt.Errorf("unknown column %q in table %q (columns: %s)", name, t.def.Name, strings.Join(cols, ", "))
}

// selectStmt is the parsed form of a restricted SELECT.
type selectStmt struct {
	star      bool
	countStar bool
	columns   []string
	table     string
	where     []condition
	groupBy   string
	limit     int
}

type condition struct {
	column string
	op     string
	value  any // string, int64 or float64 literal
}

// matches evaluates the condition against one row.
func (c condition) matches(t *memTable, row []any) (bool, error) {
	idx := t.colIndex[c.column]
	cell := row[idx]

	switch want := c.value.(type) {
	case string:
		got, ok := cell.(string)
		if !ok {
			return false, fmt.Errorf("type mismatch: column %q is %s, compared against text %q",
				c.column, t.def.Columns[idx].Type, want)
		}
		return compareStrings(got, want, c.op), nil
	case int64:
		return compareNumeric(cell, float64(want), c.op, t, idx)
	case float64:
		return compareNumeric(cell, want, c.op, t, idx)
	default:
		return false, fmt.Errorf("syntax error: unsupported literal %v", c.value)
	}
}

func compareStrings(got, want, op string) bool {
	switch op {
	case "=":
		return got == want
	case "!=":
		return got != want
	case "<":
		return got < want
	case "<=":
		return got <= want
	case ">":
		return got > want
	case ">=":
		return got >= want
	}
	return false
}

func compareNumeric(cell any, want float64, op string, t *memTable, idx int) (bool, error) {
	var got float64
	switch v := cell.(type) {
	case int:
		got = float64(v)
	case int64:
		got = float64(v)
	case float64:
		got = v
	default:
		return false, fmt.Errorf("type mismatch: column %q is %s, compared against a number",
			t.def.Columns[idx].Name, t.def.Columns[idx].Type)
	}
	switch op {
	case "=":
		return got == want, nil
	case "!=":
		return got != want, nil
	case "<":
		return got < want, nil
	case "<=":
		return got <= want, nil
	case ">":
		return got > want, nil
	case ">=":
		return got >= want, nil
	}
	return false, fmt.Errorf("syntax error: unknown operator %q", op)
}

// project builds the result set from the filtered rows.
func (s *selectStmt) project(t *memTable, rows [][]any) (*ResultSet, error) {
	// Plain COUNT(*) without grouping.
	if s.countStar && s.groupBy == "" && len(s.columns) == 0 {
		return &ResultSet{Columns: []string{"count"}, Rows: [][]any{{len(rows)}}}, nil
	}

	// GROUP BY col with COUNT(*).
	if s.groupBy != "" {
		if !s.countStar {
			return nil, fmt.Errorf("syntax error: GROUP BY requires COUNT(*) in the select list")
		}
		idx := t.colIndex[s.groupBy]
		counts := make(map[string]int)
		for _, row := range rows {
			counts[fmt.Sprint(row[idx])]++
		}
		keys := make([]string, 0, len(counts))
		for k := range counts {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		out := &ResultSet{Columns: []string{s.groupBy, "count"}}
		for _, k := range keys {
			out.Rows = append(out.Rows, []any{k, counts[k]})
		}
		return out, nil
	}

	if s.countStar {
		return nil, fmt.Errorf("syntax error: COUNT(*) mixed with column names requires GROUP BY")
	}

	// SELECT * or explicit columns.
	var cols []string
	var indices []int
	if s.star {
		for _, c := range t.def.Columns {
			cols = append(cols, c.Name)
			indices = append(indices, t.colIndex[c.Name])
		}
	} else {
		for _, c := range s.columns {
			cols = append(cols, c)
			indices = append(indices, t.colIndex[c])
		}
	}
	out := &ResultSet{Columns: cols}
	for _, row := range rows {
		projected := make([]any, len(indices))
		for i, idx := range indices {
			projected[i] = row[idx]
		}
		out.Rows = append(out.Rows, projected)
	}
	return out, nil
}

// parseSelect tokenizes and parses the restricted SELECT grammar.
func parseSelect(query string) (*selectStmt, error) {
	tokens, err := tokenize(query)
	if err != nil {
		return nil, err
	}
	p := &parser{tokens: tokens}

	if !p.acceptKeyword("SELECT") {
		return nil, fmt.Errorf("syntax error near %q: expected SELECT", p.peekText())
	}

	stmt := &selectStmt{limit: 0}

	// Select list.
	for {
		switch {
		case p.accept("*"):
			stmt.star = true
		case p.acceptKeyword("COUNT"):
			if !p.accept("(") || !p.accept("*") || !p.accept(")") {
				return nil, fmt.Errorf("syntax error near %q: expected COUNT(*)", p.peekText())
			}
			stmt.countStar = true
		default:
			ident, ok := p.acceptIdent()
			if !ok {
				return nil, fmt.Errorf("syntax error near %q: expected column name", p.peekText())
			}
			stmt.columns = append(stmt.columns, strings.ToLower(ident))
		}
		if !p.accept(",") {
			break
		}
	}

	if !p.acceptKeyword("FROM") {
		return nil, fmt.Errorf("syntax error near %q: expected FROM", p.peekText())
	}
	tableName, ok := p.acceptIdent()
	if !ok {
		return nil, fmt.Errorf("syntax error near %q: expected table name", p.peekText())
	}
	stmt.table = strings.ToLower(tableName)

	if p.acceptKeyword("WHERE") {
		for {
			cond, err := p.parseCondition()
			if err != nil {
				return nil, err
			}
			stmt.where = append(stmt.where, cond)
			if !p.acceptKeyword("AND") {
				break
			}
		}
	}

	if p.acceptKeyword("GROUP") {
		if !p.acceptKeyword("BY") {
			return nil, fmt.Errorf("syntax error near %q: expected BY after GROUP", p.peekText())
		}
		col, ok := p.acceptIdent()
		if !ok {
			return nil, fmt.Errorf("syntax error near %q: expected column after GROUP BY", p.peekText())
		}
		stmt.groupBy = strings.ToLower(col)
	}

	if p.acceptKeyword("LIMIT") {
		n, ok := p.acceptInt()
		if !ok || n < 0 {
			return nil, fmt.Errorf("syntax error near %q: expected row count after LIMIT", p.peekText())
		}
		stmt.limit = n
	}

	// Trailing semicolon is tolerated; anything else is a syntax error.
	p.accept(";")
	if !p.done() {
		return nil, fmt.Errorf("syntax error near %q: unexpected trailing input", p.peekText())
	}
	if !stmt.star && !stmt.countStar && len(stmt.columns) == 0 {
		return nil, fmt.Errorf("syntax error: empty select list")
	}
	return stmt, nil
}

func (p *parser) parseCondition() (condition, error) {
	col, ok := p.acceptIdent()
	if !ok {
		return condition{}, fmt.Errorf("syntax error near %q: expected column in WHERE", p.peekText())
	}
	op, ok := p.acceptOperator()
	if !ok {
		return condition{}, fmt.Errorf("syntax error near %q: expected comparison operator", p.peekText())
	}
	lit, ok := p.acceptLiteral()
	if !ok {
		return condition{}, fmt.Errorf("syntax error near %q: expected literal value", p.peekText())
	}
	return condition{column: strings.ToLower(col), op: op, value: lit}, nil
}

// token kinds
const (
	tokIdent = iota
	tokString
	tokNumber
	tokSymbol
)

type token struct {
	kind int
	text string
}

type parser struct {
	tokens []token
	pos    int
}

func (p *parser) done() bool { return p.pos >= len(p.tokens) }

func (p *parser) peekText() string {
	if p.done() {
		return "end of query"
	}
	return p.tokens[p.pos].text
}

func (p *parser) accept(sym string) bool {
	if p.done() || p.tokens[p.pos].kind != tokSymbol || p.tokens[p.pos].text != sym {
		return false
	}
	p.pos++
	return true
}

func (p *parser) acceptKeyword(kw string) bool {
	if p.done() || p.tokens[p.pos].kind != tokIdent || !strings.EqualFold(p.tokens[p.pos].text, kw) {
		return false
	}
	p.pos++
	return true
}

func (p *parser) acceptIdent() (string, bool) {
	if p.done() || p.tokens[p.pos].kind != tokIdent {
		return "", false
	}
	text := p.tokens[p.pos].text
	p.pos++
	return text, true
}

func (p *parser) acceptOperator() (string, bool) {
	if p.done() || p.tokens[p.pos].kind != tokSymbol {
		return "", false
	}
	switch p.tokens[p.pos].text {
	case "=", "!=", "<>", "<", "<=", ">", ">=":
		op := p.tokens[p.pos].text
		if op == "<>" {
			op = "!="
		}
		p.pos++
		return op, true
	}
	return "", false
}

func (p *parser) acceptLiteral() (any, bool) {
	if p.done() {
		return nil, false
	}
	tok := p.tokens[p.pos]
	switch tok.kind {
	case tokString:
		p.pos++
		return tok.text, true
	case tokNumber:
		p.pos++
		if i, err := strconv.ParseInt(tok.text, 10, 64); err == nil {
			return i, true
		}
		if f, err := strconv.ParseFloat(tok.text, 64); err == nil {
			return f, true
		}
		return nil, false
	}
	return nil, false
}

func (p *parser) acceptInt() (int, bool) {
	if p.done() || p.tokens[p.pos].kind != tokNumber {
		return 0, false
	}
	n, err := strconv.Atoi(p.tokens[p.pos].text)
	if err != nil {
		return 0, false
	}
	p.pos++
	return n, true
}

// tokenize splits a query into identifiers, quoted strings, numbers
// and symbols. Unterminated strings and stray characters are syntax
// errors.
func tokenize(query string) ([]token, error) {
	var tokens []token
	runes := []rune(query)
	i := 0
	for i < len(runes) {
		r := runes[i]
		switch {
		case r == ' ' || r == '\t' || r == '\n' || r == '\r':
			i++
		case r == '\'' || r == '"':
			quote := r
			j := i + 1
			for j < len(runes) && runes[j] != quote {
				j++
			}
			if j >= len(runes) {
				return nil, fmt.Errorf("syntax error: unterminated string starting at %q", string(runes[i:]))
			}
			tokens = append(tokens, token{kind: tokString, text: string(runes[i+1 : j])})
			i = j + 1
		case r >= '0' && r <= '9' || (r == '-' && i+1 < len(runes) && runes[i+1] >= '0' && runes[i+1] <= '9'):
			j := i + 1
			for j < len(runes) && (runes[j] >= '0' && runes[j] <= '9' || runes[j] == '.') {
				j++
			}
			tokens = append(tokens, token{kind: tokNumber, text: string(runes[i:j])})
			i = j
		case isIdentRune(r):
			j := i
			for j < len(runes) && isIdentRune(runes[j]) {
				j++
			}
			tokens = append(tokens, token{kind: tokIdent, text: string(runes[i:j])})
			i = j
		case r == '<' || r == '>' || r == '!':
			if i+1 < len(runes) && (runes[i+1] == '=' || (r == '<' && runes[i+1] == '>')) {
				tokens = append(tokens, token{kind: tokSymbol, text: string(runes[i : i+2])})
				i += 2
			} else if r == '!' {
				return nil, fmt.Errorf("syntax error near %q", string(r))
			} else {
				tokens = append(tokens, token{kind: tokSymbol, text: string(r)})
				i++
			}
		case r == '=' || r == '*' || r == '(' || r == ')' || r == ',' || r == ';':
			tokens = append(tokens, token{kind: tokSymbol, text: string(r)})
			i++
		default:
			return nil, fmt.Errorf("syntax error near %q", string(r))
		}
	}
	return tokens, nil
}

func isIdentRune(r rune) bool {
	return r == '_' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9'
}
