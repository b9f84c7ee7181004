// Copyright (C) 2026 Quayside AI (oss@quayside.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package agent

import "errors"

var (
	// ErrInvalidTransition is returned for disallowed state changes.
	ErrInvalidTransition = errors.New("invalid state transition")

	// ErrRunFinished is returned when a terminal TaskState is mutated.
	ErrRunFinished = errors.New("run already finished")

	// ErrCorrectionExhausted is returned when the correction budget is
	// spent without a passing execution.
	ErrCorrectionExhausted = errors.New("correction attempts exhausted")
)
