// Package errors provides typed errors with exit codes for warren.
//
// # Error Types
//
// WarrenError is the base error type that wraps an error with an exit code:
//
//	type WarrenError struct {
//	    Code    int    // Exit code
//	    Message string // User-facing message
//	    Kind    error  // Classifying sentinel (matchable with errors.Is)
//	    Cause   error  // Wrapped error
//	}
//
// DirectiveParseError reports a malformed configuration layer and
// OrchestrationError wraps a lifecycle failure with the state the request
// was in when it failed.
//
// # Exit Codes
//
// Defined exit codes for different error categories:
//
//	ExitSuccess           = 0  // Success
//	ExitGeneralError      = 1  // General/unknown errors
//	ExitWorkspaceNotFound = 2  // Workspace does not exist
//	ExitBackendError      = 3  // VCS backend operation failed
//	ExitRegistryError     = 4  // Registry mutation or persist failed
//	ExitDirectiveParse    = 5  // Malformed directive layer
//	ExitDirectiveFailed   = 6  // Directive execution failed
//	ExitConfigError       = 7  // Configuration error
//
// # Error Constructors
//
// Use the provided constructors for consistent error creation:
//
//	errors.WorkspaceNotFound("feat-x")
//	errors.RefNotFound("main")
//	errors.NotOwned("feat-x", "/tmp/elsewhere")
//	errors.PersistFailure(err)
//
// # Extracting Exit Codes
//
// Use GetExitCode to extract the exit code from an error chain:
//
//	if err != nil {
//	    os.Exit(errors.GetExitCode(err))
//	}
package errors
