// Copyright (C) 2026 Quayside AI (oss@quayside.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/QuaysideAI/DockPilot/pkg/logging"
	"github.com/QuaysideAI/DockPilot/services/agent/llm"
	"github.com/QuaysideAI/DockPilot/services/agent/tools"
)

// FailureClass is the diagnosis of one failed execution.
type FailureClass string

const (
	// FailureSyntax is a query the executor could not parse.
	FailureSyntax FailureClass = "syntax"

	// FailureReference names a table or column that does not exist.
	FailureReference FailureClass = "reference"

	// FailureTypeMismatch compares a column against the wrong literal
	// type.
	FailureTypeMismatch FailureClass = "type_mismatch"

	// FailureEmptyResult is a query that ran but matched no rows.
	FailureEmptyResult FailureClass = "empty_result"

	// FailureLogic is a query that runs but answers the wrong question.
	FailureLogic FailureClass = "logic"

	// FailureUnknown is anything the classifier cannot place. Revision
	// still proceeds best-effort with generic guidance.
	FailureUnknown FailureClass = "unknown"
)

// ClassifyFailure diagnoses an execution error from its message. The
// executor contract guarantees the recognizable prefixes.
func ClassifyFailure(err error) FailureClass {
	if err == nil {
		return FailureUnknown
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "syntax error"):
		return FailureSyntax
	case strings.Contains(msg, "unknown table"), strings.Contains(msg, "unknown column"):
		return FailureReference
	case strings.Contains(msg, "type mismatch"):
		return FailureTypeMismatch
	case strings.Contains(msg, "empty result"):
		return FailureEmptyResult
	case strings.Contains(msg, "wrong result"), strings.Contains(msg, "does not answer"):
		return FailureLogic
	default:
		return FailureUnknown
	}
}

// revisionGuidance holds the class-specific instruction injected into
// the revision prompt.
var revisionGuidance = map[FailureClass]string{
	FailureSyntax:       "The query is not valid in the supported subset. Rewrite it using only the grammar below.",
	FailureReference:    "The query names a table or column that does not exist. Use only names from the catalog.",
	FailureTypeMismatch: "A comparison uses the wrong literal type. Quote text values; leave numbers unquoted.",
	FailureEmptyResult:  "The query matched no rows. Loosen or fix the filters; check literal spelling against likely values.",
	FailureLogic:        "The query runs but does not answer the question. Re-read the question and adjust what is selected or filtered.",
	FailureUnknown:      "The query failed. Rewrite it so it answers the question within the supported subset.",
}

const correctionSystemPrompt = `You repair failed dock-operations queries. Only this subset is
supported:

  SELECT * | COUNT(*) | col[, col...]
  FROM table
  [WHERE col op literal [AND ...]]   op: = != < <= > >=
  [GROUP BY col]
  [LIMIT n]

Respond with the corrected query only, no prose and no code fences.`

// Correction sub-loop states. Each attempt walks DIAGNOSING →
// REVISING and either re-enters DIAGNOSING on another failure or ends
// in DONE.
const (
	CorrectionDiagnosing = "DIAGNOSING"
	CorrectionRevising   = "REVISING"
	CorrectionDone       = "DONE"
)

// CorrectionLoop revises and re-executes a failed query, bounded by
// maxAttempts. It shares the run's dispatcher so every re-execution
// lands in the run's call records, and its model calls land in the
// run's token accounting.
type CorrectionLoop struct {
	client      llm.Client
	dispatcher  *tools.Dispatcher
	maxAttempts int
	logger      *logging.Logger
}

// NewCorrectionLoop creates a correction loop with the given revision
// budget.
func NewCorrectionLoop(client llm.Client, dispatcher *tools.Dispatcher, maxAttempts int, logger *logging.Logger) *CorrectionLoop {
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &CorrectionLoop{client: client, dispatcher: dispatcher, maxAttempts: maxAttempts, logger: logger}
}

// Run drives the sub-loop after execErr failed the execute step.
// Returns nil once a revised query executes successfully; returns
// ErrCorrectionExhausted (wrapping the last failure) when the budget
// is spent; returns the model error unwrapped if revision itself
// fails fatally.
func (c *CorrectionLoop) Run(ctx context.Context, ts *TaskState, execErr error) error {
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		class := ClassifyFailure(execErr)
		c.logger.Info("correction state change",
			"run_id", ts.ID, "state", CorrectionDiagnosing,
			"attempt", attempt, "class", string(class), "error", execErr.Error())

		c.logger.Debug("correction state change", "run_id", ts.ID, "state", CorrectionRevising)
		ts.RecordCorrectionAttempt()

		revised, usage, err := c.reviseQuery(ctx, ts, class, execErr)
		ts.AddUsage(usage)
		if err != nil {
			return err
		}

		_ = ts.AppendHistory(HistoryEntry{
			Type:       EntryCorrection,
			ToolName:   "execute_query",
			Input:      fmt.Sprintf("attempt %d, class %s", attempt, class),
			Output:     "revised query: " + revised,
			TokensUsed: usage.TotalTokens,
		})

		ts.Workspace().Query = revised
		record, _, dispErr := c.dispatcher.Dispatch(ctx, "execute_query", ts.Invocation())
		ts.RecordToolCall(record)
		_ = ts.AppendHistory(HistoryEntry{
			Type:       EntryCorrection,
			ToolName:   "execute_query",
			Input:      revised,
			Output:     record.Observation,
			TokensUsed: record.Usage.TotalTokens,
			Duration:   record.Duration,
		})

		if dispErr == nil {
			c.logger.Info("correction state change",
				"run_id", ts.ID, "state", CorrectionDone, "attempts", attempt)
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		execErr = dispErr
	}

	return fmt.Errorf("%w after %d attempts: %v", ErrCorrectionExhausted, c.maxAttempts, execErr)
}

// reviseQuery asks the model for a corrected query.
func (c *CorrectionLoop) reviseQuery(ctx context.Context, ts *TaskState, class FailureClass, execErr error) (string, llm.Usage, error) {
	schema := ts.Workspace().LinkedSchema
	if schema == nil {
		schema = ts.Workspace().Schema
	}
	card := ""
	if schema != nil {
		card = schema.Describe()
	}

	prompt := fmt.Sprintf(
		"Catalog:\n%s\nQuestion: %s\n\nFailed query:\n%s\n\nError: %s\n\n%s\n\nCorrected query:",
		card, ts.Question, ts.Workspace().Query, execErr.Error(), revisionGuidance[class])

	resp, err := c.client.Generate(ctx, &llm.Request{
		SystemPrompt: correctionSystemPrompt,
		Prompt:       prompt,
		MaxTokens:    200,
		Temperature:  0,
	})
	if err != nil {
		return "", llm.Usage{}, err
	}

	revised := tools.CleanQueryText(resp.Text)
	if revised == "" {
		// Treat an empty revision as keeping the old query; the
		// re-execution will fail the same way and consume the attempt.
		revised = ts.Workspace().Query
	}
	return revised, resp.Usage, nil
}
