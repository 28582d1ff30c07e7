package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestNewAndWrap(t *testing.T) {
	err := New(ErrCodeInvalidAlgorithm, "unknown layout algorithm: %s", "spiral")
	if got, want := err.Error(), "INVALID_ALGORITHM: unknown layout algorithm: spiral"; got != want {
		t.Errorf("Error() = %v, want %v", got, want)
	}
	if err.Cause != nil {
		t.Errorf("Cause = %v, want nil", err.Cause)
	}

	cause := errors.New("open roadmap.json: no such file")
	wrapped := Wrap(ErrCodeInvalidGraph, cause, "load %s", "roadmap.json")
	if got, want := wrapped.Error(), "INVALID_GRAPH: load roadmap.json: open roadmap.json: no such file"; got != want {
		t.Errorf("Error() = %v, want %v", got, want)
	}
	if errors.Unwrap(wrapped) != cause {
		t.Errorf("Unwrap() = %v, want %v", errors.Unwrap(wrapped), cause)
	}
	if !errors.Is(wrapped, cause) {
		t.Error("errors.Is(wrapped, cause) = false, want true")
	}
}

func TestIs(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code Code
		want bool
	}{
		{"matching code", New(ErrCodeNodeNotFound, "x"), ErrCodeNodeNotFound, true},
		{"other code", New(ErrCodeNodeNotFound, "x"), ErrCodeEdgeNotFound, false},
		{"outer code wins", Wrap(ErrCodeConflict, New(ErrCodeInvalidInput, "inner"), "outer"), ErrCodeConflict, true},
		{"behind fmt wrapping", fmt.Errorf("undo: %w", New(ErrCodeNothingToUndo, "empty")), ErrCodeNothingToUndo, true},
		{"plain error", errors.New("plain"), ErrCodeInvalidInput, false},
		{"nil error", nil, ErrCodeInvalidInput, false},
		{"empty code", errors.New("plain"), "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Is(tt.err, tt.code); got != tt.want {
				t.Errorf("Is() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGetCode(t *testing.T) {
	ve := &ValidationError{}
	ve.Add("edge e1", "unknown target %q", "z")

	tests := []struct {
		name string
		err  error
		want Code
	}{
		{"coded", New(ErrCodeInvalidFormat, "gif"), ErrCodeInvalidFormat},
		{"validation error", ve, ErrCodeInvalidGraph},
		{"coded wrapper around validation", Wrap(ErrCodeInvalidInput, ve, "load graph"), ErrCodeInvalidInput},
		{"plain", errors.New("plain"), ""},
		{"nil", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetCode(tt.err); got != tt.want {
				t.Errorf("GetCode() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"coded", New(ErrCodeNothingToRedo, "nothing to redo"), "nothing to redo"},
		{"coded with cause", Wrap(ErrCodeInternal, errors.New("disk full"), "write layout"), "write layout"},
		{"plain", errors.New("plain error"), "plain error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UserMessage(tt.err); got != tt.want {
				t.Errorf("UserMessage() = %v, want %v", got, tt.want)
			}
		})
	}
}
