package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/roach88/hitkit/internal/collect"
	"github.com/roach88/hitkit/internal/fixture"
	"github.com/roach88/hitkit/internal/geometry"
	"github.com/roach88/hitkit/internal/hit"
	"github.com/roach88/hitkit/internal/store"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Processing failure (ambiguous refinement, invalid input data, etc.)
	ExitCommandError = 2 // Command error (bad flags, database not found, etc.)
)

// Error codes reported in CLI responses.
const (
	ErrCodeGeneric         = "E001"
	ErrCodeInvalidGeometry = "E002"
	ErrCodeInvalidFixture  = "E003"
	ErrCodeNotFound        = "E004"
	ErrCodeAlreadyWritten  = "E005"
	ErrCodeUnknownChannel  = "E006"
	ErrCodeAmbiguous       = "E007"
	ErrCodeDeclaration     = "E008"
)

// ExitError represents an error with a specific exit code.
type ExitError struct {
	Code    int    // Exit code (use ExitFailure or ExitCommandError)
	Message string // Error message
	Err     error  // Underlying error (optional)

	reported bool // already written to the command output
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates a new ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error.
// Returns ExitFailure (1) if the error is not an ExitError.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// Reported reports whether err was already written as a CLI response, so
// the caller must not print it again.
func Reported(err error) bool {
	var exitErr *ExitError
	return errors.As(err, &exitErr) && exitErr.reported
}

// errorCode maps a processing error to the code shown in CLI responses.
func errorCode(err error) string {
	var (
		loadErr *geometry.LoadError
		fixErrs fixture.ValidationErrors
	)
	switch {
	case errors.As(err, &loadErr):
		return ErrCodeInvalidGeometry
	case errors.As(err, &fixErrs):
		return ErrCodeInvalidFixture
	case errors.Is(err, store.ErrProductNotFound):
		return ErrCodeNotFound
	case errors.Is(err, store.ErrAlreadyCommitted):
		return ErrCodeAlreadyWritten
	case errors.Is(err, geometry.ErrUnknownChannel), errors.Is(err, hit.ErrROIOutOfRange):
		return ErrCodeUnknownChannel
	case collect.IsAmbiguousRefinement(err):
		return ErrCodeAmbiguous
	case collect.IsUndeclaredOutput(err), collect.IsDuplicateOutput(err):
		return ErrCodeDeclaration
	default:
		return ErrCodeGeneric
	}
}

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer // Separate writer for verbose/diagnostic output (defaults to Writer)
	Verbose   bool
}

// CLIResponse is the standard JSON response format for CLI output.
type CLIResponse struct {
	Status string    `json:"status"`          // "ok" or "error"
	Data   any       `json:"data,omitempty"`  // success payload
	Error  *CLIError `json:"error,omitempty"` // error details
}

// CLIError is the error structure for CLI responses.
type CLIError struct {
	Code    string `json:"code"`              // "E001", "E002", etc.
	Message string `json:"message"`           // human-readable message
	Details any    `json:"details,omitempty"` // additional context
}

// Success outputs a successful result in the configured format.
func (f *OutputFormatter) Success(data any) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "ok",
			Data:   data,
		})
	}

	// Human-readable text output
	fmt.Fprintln(f.Writer, data)
	return nil
}

// Error outputs an error in the configured format.
func (f *OutputFormatter) Error(code, message string, details any) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "error",
			Error: &CLIError{
				Code:    code,
				Message: message,
				Details: details,
			},
		})
	}

	fmt.Fprintf(f.Writer, "Error [%s]: %s\n", code, message)
	if f.Verbose && details != nil {
		fmt.Fprintf(f.Writer, "Details: %v\n", details)
	}
	return nil
}

// Fail reports err in the configured format and returns it wrapped with
// exit code.
func (f *OutputFormatter) Fail(exit int, message string, err error) error {
	var details any
	var col *collect.Error
	if errors.As(err, &col) {
		details = col
	}
	if outErr := f.Error(errorCode(err), fmt.Sprintf("%s: %v", message, err), details); outErr != nil {
		return outErr
	}
	exitErr := WrapExitError(exit, message, err)
	exitErr.reported = true
	return exitErr
}

// VerboseLog outputs a message only if verbose mode is enabled.
// When format is JSON, verbose logs go to ErrWriter to avoid corrupting JSON output.
func (f *OutputFormatter) VerboseLog(format string, args ...any) {
	if !f.Verbose {
		return
	}
	w := f.ErrWriter
	if w == nil {
		w = f.Writer
	}
	fmt.Fprintf(w, format+"\n", args...)
}

func newFormatter(opts *RootOptions, w, errW io.Writer) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    w,
		ErrWriter: errW,
		Verbose:   opts.Verbose,
	}
}
