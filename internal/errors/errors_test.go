package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestWarrenError_Error(t *testing.T) {
	tests := []struct {
		name    string
		err     *WarrenError
		wantMsg string
	}{
		{
			name:    "without cause",
			err:     New(ExitGeneralError, "something went wrong"),
			wantMsg: "something went wrong",
		},
		{
			name:    "with cause",
			err:     Wrap(ExitGeneralError, "operation failed", fmt.Errorf("underlying error")),
			wantMsg: "operation failed: underlying error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.wantMsg {
				t.Errorf("Error() = %q, want %q", got, tt.wantMsg)
			}
		})
	}
}

func TestWarrenError_SentinelMatching(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		sentinel error
	}{
		{"backend unavailable", BackendUnavailable("jj", fmt.Errorf("not in PATH")), ErrBackendUnavailable},
		{"ref not found", RefNotFound("main"), ErrRefNotFound},
		{"path collision", PathCollision("/tmp/ws"), ErrPathCollision},
		{"not owned", NotOwned("feat-x", "/tmp/elsewhere"), ErrNotOwned},
		{"duplicate name", DuplicateName("feat-x"), ErrDuplicateName},
		{"persist failure", PersistFailure(fmt.Errorf("disk full")), ErrPersistFailure},
		{"path escape", PathEscape("../../etc"), ErrPathEscape},
		{"workspace not found", WorkspaceNotFound("gone"), ErrWorkspaceNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !errors.Is(tt.err, tt.sentinel) {
				t.Errorf("errors.Is(%v, %v) = false, want true", tt.err, tt.sentinel)
			}
		})
	}
}

func TestWarrenError_CauseUnwrap(t *testing.T) {
	cause := fmt.Errorf("root cause")
	err := Wrap(ExitGeneralError, "wrapped", cause)

	if !errors.Is(err, cause) {
		t.Errorf("errors.Is should find the cause in the chain")
	}

	// Kind and cause are both reachable
	both := BackendUnavailable("git", cause)
	if !errors.Is(both, ErrBackendUnavailable) || !errors.Is(both, cause) {
		t.Errorf("expected both sentinel and cause in the chain")
	}
}

func TestGetExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"warren error", WorkspaceNotFound("x"), ExitWorkspaceNotFound},
		{"backend error", RefNotFound("main"), ExitBackendError},
		{"registry error", DuplicateName("x"), ExitRegistryError},
		{"parse error", &DirectiveParseError{Layer: "repository", Path: "a.toml", Detail: fmt.Errorf("bad key")}, ExitDirectiveParse},
		{"plain error", fmt.Errorf("generic"), ExitGeneralError},
		{"wrapped warren error", fmt.Errorf("outer: %w", PathCollision("/p")), ExitBackendError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetExitCode(tt.err); got != tt.want {
				t.Errorf("GetExitCode() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestDirectiveParseError(t *testing.T) {
	detail := fmt.Errorf("unknown key %q", "triger")
	err := &DirectiveParseError{Layer: "workspace", Path: "/ws/.warren/directives.toml", Detail: detail}

	if got := err.Error(); got == "" {
		t.Fatal("Error() returned empty string")
	}
	if !errors.Is(err, detail) {
		t.Error("Unwrap should expose the detail error")
	}

	var parseErr *DirectiveParseError
	wrapped := fmt.Errorf("resolve failed: %w", err)
	if !errors.As(wrapped, &parseErr) {
		t.Fatal("errors.As failed to find DirectiveParseError")
	}
	if parseErr.Layer != "workspace" {
		t.Errorf("Layer = %q, want %q", parseErr.Layer, "workspace")
	}
}

func TestOrchestrationError(t *testing.T) {
	inner := RefNotFound("nonexistent")
	err := &OrchestrationError{Op: "create", Name: "feat-x", State: "BackendOp", Err: inner}

	if !errors.Is(err, ErrRefNotFound) {
		t.Error("OrchestrationError should unwrap to the inner error")
	}
	if got := err.ExitCode(); got != ExitBackendError {
		t.Errorf("ExitCode() = %d, want %d", got, ExitBackendError)
	}
	if got := GetExitCode(err); got != ExitBackendError {
		t.Errorf("GetExitCode() = %d, want %d", got, ExitBackendError)
	}
}
