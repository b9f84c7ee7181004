// Copyright (C) 2026 Quayside AI (oss@quayside.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package validation provides input validation utilities for security-critical operations.
//
// This package contains validators for identifiers that end up inside
// generated queries (table names, column names, door IDs, locations).
// Using these validators prevents injection through model-generated or
// user-provided text.
package validation

import (
	"fmt"
	"regexp"
	"strings"
)

// identPattern matches SQL-safe identifiers: letters, digits and
// underscores, starting with a letter. Max length 64.
var identPattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]{0,63}$`)

// doorPattern matches dock door codes like FRE-D04 or SHA-D12:
// a three-letter site prefix, a hyphen, 'D' and a two-digit number.
var doorPattern = regexp.MustCompile(`^[A-Z]{3}-D\d{2}$`)

// locationPattern matches plant location names: letters, digits and
// single spaces, 2-40 characters ("Fremont CA", "Nevada Gigafactory").
var locationPattern = regexp.MustCompile(`^[A-Za-z0-9]+(?: [A-Za-z0-9]+){0,4}$`)

// ValidateIdentifier validates a table or column name before it is
// interpolated into a query.
//
// Returns an error if the identifier is empty, too long, or contains
// anything beyond letters, digits and underscores.
//
// Example:
//
//	if err := validation.ValidateIdentifier(col); err != nil {
//	    return nil, fmt.Errorf("invalid column: %w", err)
//	}
func ValidateIdentifier(name string) error {
	if name == "" {
		return fmt.Errorf("identifier cannot be empty")
	}
	if !identPattern.MatchString(name) {
		return fmt.Errorf("invalid identifier: %q (must be 1-64 chars, letters/digits/underscores, leading letter)", name)
	}
	return nil
}

// ValidateDoorID validates a dock door code such as "FRE-D04".
func ValidateDoorID(doorID string) error {
	if doorID == "" {
		return fmt.Errorf("door id cannot be empty")
	}
	if !doorPattern.MatchString(doorID) {
		return fmt.Errorf("invalid door id: %q (expected form ABC-D01)", doorID)
	}
	return nil
}

// ValidateLocation validates a plant location name such as "Fremont CA".
func ValidateLocation(location string) error {
	if location == "" {
		return fmt.Errorf("location cannot be empty")
	}
	if !locationPattern.MatchString(location) {
		return fmt.Errorf("invalid location: %q", location)
	}
	return nil
}

// SanitizeDoorID normalizes and validates a door code. Returns the
// uppercase code if valid.
//
//	safeDoor, err := validation.SanitizeDoorID(userInput)
func SanitizeDoorID(doorID string) (string, error) {
	normalized := strings.ToUpper(strings.TrimSpace(doorID))
	if err := ValidateDoorID(normalized); err != nil {
		return "", err
	}
	return normalized, nil
}
