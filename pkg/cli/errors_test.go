package cli

import (
	"errors"
	"fmt"
	"testing"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitOK},
		{"invalid", &InvalidError{Documents: 2, Invalid: 1}, ExitInvalid},
		{"wrapped invalid", fmt.Errorf("run: %w", &InvalidError{Documents: 1, Invalid: 1}), ExitInvalid},
		{"config", NewConfigError("format", "bad"), ExitError},
		{"command", NewCommandError("validate", errors.New("boom")), ExitError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExitCode(tt.err); got != tt.want {
				t.Errorf("ExitCode() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestErrorMessages(t *testing.T) {
	cause := errors.New("disk full")
	tests := []struct {
		err  error
		want string
	}{
		{NewConfigError("format", "unknown"), "config error in format: unknown"},
		{NewConfigError("", "no schema"), "config error: no schema"},
		{NewCommandError("serve", cause), "command serve failed: disk full"},
		{&InvalidError{Documents: 3, Invalid: 2}, "2 of 3 documents failed validation"},
	}
	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.want {
			t.Errorf("Error() = %q, want %q", got, tt.want)
		}
	}

	if !errors.Is(NewCommandError("serve", cause), cause) {
		t.Error("CommandError should unwrap to its cause")
	}
}
