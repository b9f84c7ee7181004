// Copyright (C) 2026 Quayside AI (oss@quayside.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package agent

import (
	"fmt"
	"sync"
)

// StateMachine enforces the run transition graph:
//
//	RUNNING → RUNNING    : Iteration completed, budget remains
//	RUNNING → COMPLETED  : Model produced a final answer
//	RUNNING → EXHAUSTED  : Iteration budget spent without an answer
//	RUNNING → ERROR      : Fatal model failure
//
// Terminal states have no outgoing transitions, which is what makes a
// finished result immutable.
//
// Thread Safety:
//
//	StateMachine is safe for concurrent use.
type StateMachine struct {
	mu          sync.RWMutex
	transitions map[RunState]map[RunState]bool
}

// NewStateMachine creates a state machine with all valid transitions.
func NewStateMachine() *StateMachine {
	sm := &StateMachine{transitions: make(map[RunState]map[RunState]bool)}
	for _, state := range AllStates() {
		sm.transitions[state] = make(map[RunState]bool)
	}
	sm.addTransition(StateRunning, StateRunning)
	sm.addTransition(StateRunning, StateCompleted)
	sm.addTransition(StateRunning, StateExhausted)
	sm.addTransition(StateRunning, StateError)
	return sm
}

func (sm *StateMachine) addTransition(from, to RunState) {
	sm.transitions[from][to] = true
}

// CanTransition checks whether from → to is allowed.
func (sm *StateMachine) CanTransition(from, to RunState) bool {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	if toMap, ok := sm.transitions[from]; ok {
		return toMap[to]
	}
	return false
}

// Transition moves the task to the target state, or returns
// ErrInvalidTransition.
func (sm *StateMachine) Transition(ts *TaskState, to RunState) error {
	from := ts.State()
	if !sm.CanTransition(from, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	ts.setState(to)
	return nil
}

// DefaultStateMachine is the shared state machine instance.
var DefaultStateMachine = NewStateMachine()
