// Copyright (C) 2026 Quayside AI (oss@quayside.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package validation

import "testing"

func TestValidateIdentifier(t *testing.T) {
	tests := []struct {
		name    string
		ident   string
		wantErr bool
	}{
		{"simple", "dock_doors", false},
		{"single char", "a", false},
		{"mixed case", "doorId", false},
		{"with digits", "events24h", false},

		{"empty", "", true},
		{"leading digit", "1door", true},
		{"sql injection", "doors; DROP TABLE--", true},
		{"quoted", `doors"`, true},
		{"spaces", "dock doors", true},
		{"too long", "a23456789012345678901234567890123456789012345678901234567890123456", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateIdentifier(tt.ident)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateIdentifier(%q) error = %v, wantErr %v", tt.ident, err, tt.wantErr)
			}
		})
	}
}

func TestValidateDoorID(t *testing.T) {
	tests := []struct {
		name    string
		door    string
		wantErr bool
	}{
		{"fremont", "FRE-D04", false},
		{"shanghai", "SHA-D12", false},

		{"empty", "", true},
		{"lowercase", "fre-d04", true},
		{"no prefix", "D04", true},
		{"long number", "FRE-D004", true},
		{"injection", "FRE-D04'; --", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDoorID(tt.door)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateDoorID(%q) error = %v, wantErr %v", tt.door, err, tt.wantErr)
			}
		})
	}
}

func TestValidateLocation(t *testing.T) {
	tests := []struct {
		name     string
		location string
		wantErr  bool
	}{
		{"two words", "Fremont CA", false},
		{"three words", "Raleigh Service Center", false},
		{"single word", "Berlin", false},

		{"empty", "", true},
		{"double space", "Fremont  CA", true},
		{"punctuation", "Fremont, CA", true},
		{"injection", "Berlin' OR 1=1", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateLocation(tt.location)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateLocation(%q) error = %v, wantErr %v", tt.location, err, tt.wantErr)
			}
		})
	}
}

func TestSanitizeDoorID(t *testing.T) {
	got, err := SanitizeDoorID("  fre-d04 ")
	if err != nil {
		t.Fatalf("SanitizeDoorID() error = %v", err)
	}
	if got != "FRE-D04" {
		t.Errorf("SanitizeDoorID() = %q, want FRE-D04", got)
	}

	if _, err := SanitizeDoorID("bogus"); err == nil {
		t.Error("SanitizeDoorID(bogus) expected error")
	}
}
