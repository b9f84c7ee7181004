// Copyright (C) 2026 Quayside AI (oss@quayside.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package agent

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// RunInput is the validated entry point of a run.
type RunInput struct {
	// Question is the user's natural-language question.
	Question string `json:"question" validate:"required,min=3,max=2000"`

	// PriorContext carries optional hints from earlier exchanges, e.g.
	// "the user cares about Fremont CA".
	PriorContext []string `json:"prior_context,omitempty" validate:"max=16,dive,max=500"`
}

var inputValidator = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the input against its constraints.
func (in *RunInput) Validate() error {
	if err := inputValidator.Struct(in); err != nil {
		return fmt.Errorf("invalid run input: %w", err)
	}
	return nil
}
