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
	"time"

	"github.com/QuaysideAI/DockPilot/pkg/logging"
	"github.com/QuaysideAI/DockPilot/services/agent/llm"
	"github.com/QuaysideAI/DockPilot/services/agent/tools"
)

// LoopConfig bounds a run.
type LoopConfig struct {
	// MaxIterations caps decide/execute iterations. Default 12.
	MaxIterations int `json:"max_iterations" yaml:"max_iterations"`

	// MaxCorrectionAttempts caps revisions per failed execution.
	// Default 3.
	MaxCorrectionAttempts int `json:"max_correction_attempts" yaml:"max_correction_attempts"`

	// MalformedThreshold is how many consecutive malformed decisions
	// trigger the format reminder in the next prompt. Default 3.
	MalformedThreshold int `json:"malformed_threshold" yaml:"malformed_threshold"`
}

// applyDefaults fills zero fields with defaults.
func (c *LoopConfig) applyDefaults() {
	if c.MaxIterations <= 0 {
		c.MaxIterations = 12
	}
	if c.MaxCorrectionAttempts <= 0 {
		c.MaxCorrectionAttempts = 3
	}
	if c.MalformedThreshold <= 0 {
		c.MalformedThreshold = 3
	}
}

// Loop drives runs: one decision per iteration, one dispatch per
// invoke decision, the correction sub-loop behind failed executions.
type Loop struct {
	client     llm.Client
	dispatcher *tools.Dispatcher
	correction *CorrectionLoop
	cfg        LoopConfig
	logger     *logging.Logger
	sink       EventSink
}

// LoopOption customizes a Loop.
type LoopOption func(*Loop)

// WithLogger sets the loop's logger.
func WithLogger(logger *logging.Logger) LoopOption {
	return func(l *Loop) { l.logger = logger }
}

// WithEventSink sets the lifecycle event sink.
func WithEventSink(sink EventSink) LoopOption {
	return func(l *Loop) { l.sink = sink }
}

// NewLoop creates a loop over a model client and a tool dispatcher.
// Wrap the client in a BackoffClient so transient provider failures
// are absorbed below this layer; the loop itself treats every model
// error as terminal.
func NewLoop(client llm.Client, dispatcher *tools.Dispatcher, cfg LoopConfig, opts ...LoopOption) *Loop {
	cfg.applyDefaults()
	l := &Loop{
		client:     client,
		dispatcher: dispatcher,
		cfg:        cfg,
		logger:     logging.Default(),
		sink:       NopSink{},
	}
	for _, opt := range opts {
		opt(l)
	}
	l.correction = NewCorrectionLoop(client, dispatcher, cfg.MaxCorrectionAttempts, l.logger)
	return l
}

// Run executes one bounded run and always produces a single
// structured result. The returned error is non-nil only for invalid
// input; model failures and budget exhaustion are encoded in the
// result's State, Error and Success fields.
func (l *Loop) Run(ctx context.Context, input RunInput) (*RunResult, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	ts := NewTaskState(input.Question, input.PriorContext)
	l.logger.Info("run started", "run_id", ts.ID, "question", input.Question)
	l.sink.Emit(Event{Type: EventRunStarted, RunID: ts.ID, At: time.Now(), Detail: input.Question})

	for ts.Iterations() < l.cfg.MaxIterations && ts.State() == StateRunning {
		iteration := ts.BeginIteration()
		// Nudge toward a final answer on the last iteration, or once a
		// result is in hand and the budget is nearly gone.
		concludeNudge := iteration == l.cfg.MaxIterations ||
			(ts.Workspace().Filled(tools.SlotResult) && iteration >= l.cfg.MaxIterations-2)
		formatReminder := ts.MalformedStreak() >= l.cfg.MalformedThreshold

		if concludeNudge {
			_ = ts.AppendHistory(HistoryEntry{
				Type:  EntryNudge,
				Input: "budget nearly spent, answer now",
			})
		}

		prompt := buildDecisionPrompt(decisionPromptInput{
			state:          ts,
			registry:       l.dispatcher.Registry(),
			iteration:      iteration,
			maxIterations:  l.cfg.MaxIterations,
			concludeNudge:  concludeNudge,
			formatReminder: formatReminder,
		})

		decisionStart := time.Now()
		resp, err := l.client.Generate(ctx, &llm.Request{
			SystemPrompt: decisionSystemPrompt,
			Prompt:       prompt,
			MaxTokens:    500,
			Temperature:  0.2,
		})
		decisionTime := time.Since(decisionStart)
		ts.AddDecisionTime(decisionTime)

		if err != nil {
			l.abort(ts, fmt.Sprintf("model failure on iteration %d: %v", iteration, err))
			return l.finish(ts), nil
		}
		ts.AddUsage(resp.Usage)

		decision := ParseDecision(resp.Text)
		_ = ts.AppendHistory(HistoryEntry{
			Type:       EntryDecision,
			Input:      truncate(resp.Text, 800),
			Output:     string(decision.Kind),
			TokensUsed: resp.Usage.TotalTokens,
			Duration:   decisionTime,
		})
		l.sink.Emit(Event{Type: EventDecision, RunID: ts.ID, At: time.Now(), Detail: string(decision.Kind)})

		switch decision.Kind {
		case DecisionFinal:
			ts.ResetMalformedStreak()
			ts.SetAnswer(decision.Answer)
			_ = ts.AppendHistory(HistoryEntry{Type: EntryFinal, Output: decision.Answer})
			if err := DefaultStateMachine.Transition(ts, StateCompleted); err != nil {
				l.abort(ts, err.Error())
			}

		case DecisionInvoke:
			ts.ResetMalformedStreak()
			l.dispatch(ctx, ts, decision.Tool)

		case DecisionMalformed:
			streak := ts.RecordMalformedDecision()
			metricMalformedDecisions.Inc()
			l.logger.Warn("malformed decision", "run_id", ts.ID, "streak", streak, "reason", decision.Reason)
		}

		if ctx.Err() != nil && ts.State() == StateRunning {
			l.abort(ts, ctx.Err().Error())
		}
	}

	if ts.State() == StateRunning {
		if err := DefaultStateMachine.Transition(ts, StateExhausted); err != nil {
			l.abort(ts, err.Error())
		}
	}
	return l.finish(ts), nil
}

// dispatch runs one tool and, for executable tools, the correction
// sub-loop behind its failure.
func (l *Loop) dispatch(ctx context.Context, ts *TaskState, toolName string) {
	toolStart := time.Now()
	record, toolOutcome, dispErr := l.dispatcher.Dispatch(ctx, toolName, ts.Invocation())
	ts.AddToolingTime(time.Since(toolStart))
	ts.RecordToolCall(record)
	_ = ts.AppendHistory(HistoryEntry{
		Type:       EntryToolCall,
		ToolName:   toolName,
		Output:     record.Observation,
		TokensUsed: record.Usage.TotalTokens,
		Duration:   record.Duration,
	})

	outcome := "ok"
	if dispErr != nil {
		outcome = "failed"
	}
	metricToolCalls.WithLabelValues(toolName, outcome).Inc()
	l.sink.Emit(Event{Type: EventToolCall, RunID: ts.ID, At: time.Now(), Detail: toolName + " " + outcome})

	if record.OK {
		if toolOutcome != nil {
			ts.AddUsage(toolOutcome.Usage)
		}
		return
	}

	if llm.IsFatal(dispErr) {
		// A model-backed tool hit an unrecoverable provider failure;
		// no amount of looping will help.
		l.abort(ts, fmt.Sprintf("tool %s: %v", toolName, dispErr))
		return
	}

	var pre *tools.PreconditionError
	if errors.As(dispErr, &pre) {
		// A sequencing mistake by the model, not a failed execution.
		// Nothing was run and nothing changed; the observation already
		// names the missing slots.
		return
	}

	tool, known := l.dispatcher.Registry().Get(toolName)
	if !known || !tool.Executable() {
		// Unknown tools and non-executable failures surface as plain
		// observations; the next decision sees them and adjusts.
		return
	}

	class := ClassifyFailure(dispErr)
	metricCorrectionAttempts.WithLabelValues(string(class)).Inc()
	l.sink.Emit(Event{Type: EventCorrection, RunID: ts.ID, At: time.Now(), Detail: string(class)})

	corrStart := time.Now()
	corrErr := l.correction.Run(ctx, ts, dispErr)
	ts.AddCorrectionTime(time.Since(corrStart))

	if corrErr != nil && (llm.IsFatal(corrErr) || ctx.Err() != nil) {
		l.abort(ts, "correction aborted: "+corrErr.Error())
	}
	// ErrCorrectionExhausted is not terminal for the run: the failed
	// observations are in history and the model decides what to do
	// with its remaining budget.
}

// abort transitions to ERROR with the given message.
func (l *Loop) abort(ts *TaskState, msg string) {
	ts.SetError(msg)
	if err := DefaultStateMachine.Transition(ts, StateError); err != nil {
		l.logger.Error("abort on finished run", "run_id", ts.ID, "error", err.Error())
		return
	}
	l.logger.Error("run aborted", "run_id", ts.ID, "reason", msg)
}

// finish records metrics, emits the terminal event and freezes the
// result.
func (l *Loop) finish(ts *TaskState) *RunResult {
	result := ts.Result()

	metricRunsTotal.WithLabelValues(string(result.State)).Inc()
	metricRunIterations.Observe(float64(result.Iterations))
	metricRunDuration.Observe(result.Duration.Seconds())
	metricTokens.WithLabelValues("prompt").Add(float64(result.Usage.PromptTokens))
	metricTokens.WithLabelValues("completion").Add(float64(result.Usage.CompletionTokens))

	l.sink.Emit(Event{Type: EventRunFinished, RunID: ts.ID, At: time.Now(), Detail: string(result.State)})
	l.logger.Info("run finished",
		"run_id", ts.ID,
		"state", string(result.State),
		"iterations", result.Iterations,
		"corrections", result.CorrectionAttempts,
		"tokens", result.Usage.TotalTokens,
		"duration_ms", result.Duration.Milliseconds())
	return result
}
