// Copyright (C) 2026 Quayside AI (oss@quayside.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package agent

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/QuaysideAI/DockPilot/services/agent/tools"
)

// DecisionKind tags the parsed form of a what-next response.
type DecisionKind string

const (
	// DecisionInvoke asks for a tool dispatch.
	DecisionInvoke DecisionKind = "invoke"

	// DecisionFinal carries the final answer.
	DecisionFinal DecisionKind = "final"

	// DecisionMalformed is anything that parsed to neither.
	DecisionMalformed DecisionKind = "malformed"
)

// Decision is the parsed what-next response.
type Decision struct {
	// Kind tags which of the fields below is meaningful.
	Kind DecisionKind

	// Tool is the requested tool name (Kind == DecisionInvoke).
	Tool string

	// Answer is the final answer text (Kind == DecisionFinal).
	Answer string

	// Reason explains the parse failure (Kind == DecisionMalformed).
	Reason string

	// Raw is the unmodified model text.
	Raw string
}

const (
	toolPrefix  = "TOOL:"
	finalPrefix = "FINAL_ANSWER:"
)

// ParseDecision parses a model response by strict prefix. The first
// non-empty line decides: "TOOL: name" or "FINAL_ANSWER: text"
// (remaining lines belong to the answer). Everything else is
// malformed; the loop surfaces it to the model rather than guessing
// intent from free text.
func ParseDecision(text string) Decision {
	d := Decision{Raw: text}

	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		d.Kind = DecisionMalformed
		d.Reason = "empty response"
		return d
	}

	firstLine := trimmed
	rest := ""
	if idx := strings.Index(trimmed, "\n"); idx >= 0 {
		firstLine = strings.TrimSpace(trimmed[:idx])
		rest = strings.TrimSpace(trimmed[idx+1:])
	}

	switch {
	case strings.HasPrefix(firstLine, toolPrefix):
		name := strings.TrimSpace(strings.TrimPrefix(firstLine, toolPrefix))
		if name == "" || strings.ContainsAny(name, " \t") {
			d.Kind = DecisionMalformed
			d.Reason = fmt.Sprintf("TOOL directive needs exactly one tool name, got %q", name)
			return d
		}
		d.Kind = DecisionInvoke
		d.Tool = name
		return d

	case strings.HasPrefix(firstLine, finalPrefix):
		answer := strings.TrimSpace(strings.TrimPrefix(firstLine, finalPrefix))
		if rest != "" {
			if answer != "" {
				answer += "\n"
			}
			answer += rest
		}
		if answer == "" {
			d.Kind = DecisionMalformed
			d.Reason = "FINAL_ANSWER directive with empty answer"
			return d
		}
		d.Kind = DecisionFinal
		d.Answer = answer
		return d
	}

	d.Kind = DecisionMalformed
	d.Reason = fmt.Sprintf("response does not start with %s or %s", toolPrefix, finalPrefix)
	return d
}

const decisionSystemPrompt = `You are the decision engine of a dock-operations assistant. Each turn
you choose exactly one next step and respond in exactly one of two
forms:

TOOL: <tool_name>
FINAL_ANSWER: <answer to the user's question>

No other text before the directive. Use tools to gather what you need,
then finish with FINAL_ANSWER based only on observed results.`

// decisionPromptInput gathers everything the prompt builder renders.
type decisionPromptInput struct {
	state          *TaskState
	registry       *tools.Registry
	iteration      int
	maxIterations  int
	concludeNudge  bool
	formatReminder bool
}

// historyWindow caps how many trailing history entries the prompt
// replays. Older steps are summarized by the filled-slot list instead.
const historyWindow = 12

// buildDecisionPrompt renders the what-next prompt: question, context
// hints, available tools, workspace progress, and recent observations.
func buildDecisionPrompt(in decisionPromptInput) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Question: %s\n", in.state.Question)
	if len(in.state.PriorContext) > 0 {
		b.WriteString("Context from earlier exchanges:\n")
		for _, hint := range in.state.PriorContext {
			fmt.Fprintf(&b, "- %s\n", hint)
		}
	}
	if hints := extractQuestionHints(in.state.Question); len(hints) > 0 {
		fmt.Fprintf(&b, "Detected in question: %s\n", strings.Join(hints, "; "))
	}

	b.WriteString("\nAvailable tools:\n")
	b.WriteString(in.registry.Describe())

	if filled := in.state.Workspace().FilledSlots(); len(filled) > 0 {
		fmt.Fprintf(&b, "\nArtifacts ready: %s\n", strings.Join(filled, ", "))
	} else {
		b.WriteString("\nArtifacts ready: none\n")
	}

	history := in.state.History()
	if len(history) > 0 {
		start := 0
		if len(history) > historyWindow {
			start = len(history) - historyWindow
		}
		b.WriteString("\nRecent steps:\n")
		for _, entry := range history[start:] {
			line := entry.Output
			if line == "" {
				line = entry.Input
			}
			fmt.Fprintf(&b, "[%s] %s\n", entry.Type, truncate(line, 400))
		}
	}

	fmt.Fprintf(&b, "\nIteration %d of %d.\n", in.iteration, in.maxIterations)

	if in.formatReminder {
		b.WriteString("\nYour previous responses were not parseable. Respond with a single\n")
		b.WriteString("line starting with TOOL: or FINAL_ANSWER: and nothing else before it.\n")
	}
	if in.concludeNudge {
		b.WriteString("\nThe iteration budget is nearly spent. You must respond with\n")
		b.WriteString("FINAL_ANSWER: now, using the best information gathered so far.\n")
	}

	b.WriteString("\nNext step:")
	return b.String()
}

// knownSites are the locations that may appear in questions.
var knownSites = []string{
	"Fremont CA", "Austin TX", "Shanghai", "Berlin",
	"Nevada Gigafactory", "Raleigh Service Center",
}

var doorIDPattern = regexp.MustCompile(`\b[A-Z]{3}-D\d{2}\b`)

// extractQuestionHints pulls structured signals out of the question
// text: door IDs, site names, and job types. The hints steer schema
// linking and query generation without any model spend.
func extractQuestionHints(question string) []string {
	var hints []string

	if doors := doorIDPattern.FindAllString(question, -1); len(doors) > 0 {
		hints = append(hints, "door "+strings.Join(doors, ", "))
	}

	lower := strings.ToLower(question)
	for _, site := range knownSites {
		if strings.Contains(lower, strings.ToLower(site)) {
			hints = append(hints, "location "+site)
		}
	}

	switch {
	case strings.Contains(lower, "unload") || strings.Contains(lower, "inbound") || strings.Contains(lower, "truck"):
		hints = append(hints, "job type unload")
	case strings.Contains(lower, "load") || strings.Contains(lower, "outbound"):
		hints = append(hints, "job type load")
	}
	return hints
}

// truncate shortens s to at most n runes, marking the cut.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
