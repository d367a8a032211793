package errors

import (
	"errors"
	"fmt"
)

// Exit codes for warren
const (
	ExitSuccess           = 0
	ExitGeneralError      = 1
	ExitWorkspaceNotFound = 2
	ExitBackendError      = 3
	ExitRegistryError     = 4
	ExitDirectiveParse    = 5
	ExitDirectiveFailed   = 6
	ExitConfigError       = 7
)

// Sentinel errors for programmatic matching with errors.Is.
var (
	ErrBackendUnavailable = errors.New("backend unavailable")
	ErrRefNotFound        = errors.New("ref not found")
	ErrPathCollision      = errors.New("destination path already exists")
	ErrNotOwned           = errors.New("path not owned by workspace")
	ErrDuplicateName      = errors.New("duplicate workspace name")
	ErrPersistFailure     = errors.New("registry persist failure")
	ErrPathEscape         = errors.New("working directory escapes workspace root")
	ErrTimeout            = errors.New("directive timed out")
	ErrWorkspaceNotFound  = errors.New("workspace not found")
)

// WarrenError is the base error type for warren. Kind carries the sentinel
// that classifies the failure so callers can match with errors.Is while still
// seeing the underlying cause.
type WarrenError struct {
	Code    int
	Message string
	Kind    error
	Cause   error
}

func (e *WarrenError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *WarrenError) Unwrap() []error {
	var errs []error
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.Cause != nil {
		errs = append(errs, e.Cause)
	}
	return errs
}

// ExitCode returns the exit code for this error
func (e *WarrenError) ExitCode() int {
	return e.Code
}

// New creates a new WarrenError
func New(code int, message string) *WarrenError {
	return &WarrenError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an existing error with a WarrenError
func Wrap(code int, message string, cause error) *WarrenError {
	return &WarrenError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// Common error constructors

// WorkspaceNotFound returns an error for a missing workspace
func WorkspaceNotFound(name string) *WarrenError {
	return &WarrenError{
		Code:    ExitWorkspaceNotFound,
		Message: fmt.Sprintf("workspace not found: %s", name),
		Kind:    ErrWorkspaceNotFound,
	}
}

// BackendUnavailable returns an error when a VCS tool is missing or the
// repository is not initialized for it.
func BackendUnavailable(backend string, cause error) *WarrenError {
	return &WarrenError{
		Code:    ExitBackendError,
		Message: fmt.Sprintf("backend %s unavailable", backend),
		Kind:    ErrBackendUnavailable,
		Cause:   cause,
	}
}

// RefNotFound returns an error for a bad source ref
func RefNotFound(ref string) *WarrenError {
	return &WarrenError{
		Code:    ExitBackendError,
		Message: fmt.Sprintf("source ref not found: %s", ref),
		Kind:    ErrRefNotFound,
	}
}

// PathCollision returns an error when the destination path already exists
func PathCollision(path string) *WarrenError {
	return &WarrenError{
		Code:    ExitBackendError,
		Message: fmt.Sprintf("destination already exists: %s", path),
		Kind:    ErrPathCollision,
	}
}

// NotOwned returns an error when a removal targets a path that does not
// belong to the named workspace.
func NotOwned(name, path string) *WarrenError {
	return &WarrenError{
		Code:    ExitBackendError,
		Message: fmt.Sprintf("path %s is not owned by workspace %s", path, name),
		Kind:    ErrNotOwned,
	}
}

// BackendFailed returns a generic backend operation error
func BackendFailed(op string, cause error) *WarrenError {
	return Wrap(ExitBackendError, fmt.Sprintf("backend %s failed", op), cause)
}

// DuplicateName returns an error for registering an already-active name
func DuplicateName(name string) *WarrenError {
	return &WarrenError{
		Code:    ExitRegistryError,
		Message: fmt.Sprintf("workspace %s already registered", name),
		Kind:    ErrDuplicateName,
	}
}

// PersistFailure returns an error for a failed registry snapshot write
func PersistFailure(cause error) *WarrenError {
	return &WarrenError{
		Code:    ExitRegistryError,
		Message: "failed to persist registry",
		Kind:    ErrPersistFailure,
		Cause:   cause,
	}
}

// PathEscape returns an error for a directive working_dir that resolves
// outside the workspace root.
func PathEscape(workingDir string) *WarrenError {
	return &WarrenError{
		Code:    ExitDirectiveFailed,
		Message: fmt.Sprintf("working_dir %s escapes workspace root", workingDir),
		Kind:    ErrPathEscape,
	}
}

// ConfigError returns an error for configuration issues
func ConfigError(message string, cause error) *WarrenError {
	return Wrap(ExitConfigError, message, cause)
}

// ValidationError returns an error for input validation failures
func ValidationError(message string) *WarrenError {
	return New(ExitGeneralError, message)
}

// DirectiveParseError reports a malformed directive layer. Layer names the
// configuration layer (global, repository, workspace) and Path the file.
type DirectiveParseError struct {
	Layer  string
	Path   string
	Detail error
}

func (e *DirectiveParseError) Error() string {
	return fmt.Sprintf("malformed %s directives (%s): %v", e.Layer, e.Path, e.Detail)
}

func (e *DirectiveParseError) Unwrap() error {
	return e.Detail
}

// ExitCode returns the exit code for this error
func (e *DirectiveParseError) ExitCode() int {
	return ExitDirectiveParse
}

// OrchestrationError wraps a lifecycle failure with the state the request
// was in when it failed.
type OrchestrationError struct {
	Op    string // create, switch, remove
	Name  string // workspace name
	State string // lifecycle state at failure time
	Err   error
}

func (e *OrchestrationError) Error() string {
	return fmt.Sprintf("%s %s failed during %s: %v", e.Op, e.Name, e.State, e.Err)
}

func (e *OrchestrationError) Unwrap() error {
	return e.Err
}

// ExitCode returns the exit code of the wrapped error
func (e *OrchestrationError) ExitCode() int {
	return GetExitCode(e.Err)
}

// exitCoder is implemented by errors that carry a CLI exit code.
type exitCoder interface {
	ExitCode() int
}

// GetExitCode extracts the exit code from an error
func GetExitCode(err error) int {
	var coder exitCoder
	if errors.As(err, &coder) {
		return coder.ExitCode()
	}
	return ExitGeneralError
}

// Is checks if an error is of a specific type
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target any) bool {
	return errors.As(err, target)
}
