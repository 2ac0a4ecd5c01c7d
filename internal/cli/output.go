package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/roach88/fillertally/internal/session"
	"github.com/roach88/fillertally/internal/tally"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Rejected edit or failed scenario (unknown speaker, duplicate category, etc.)
	ExitCommandError = 2 // Command error (bad config, database unavailable, invalid paths, etc.)
)

// Error codes used in JSON responses for failures that are not tally
// validation errors. Tally errors use their ErrorKind as the code.
const (
	CodeConfig         = "E_CONFIG"
	CodeStore          = "E_STORE"
	CodeConfirm        = "E_CONFIRM_REQUIRED"
	CodeTestFailed     = "E_TEST_FAILED"
	CodeInvalidCommand = "E_INVALID"
)

// ExitError represents an error with a specific exit code.
// Use this to return errors with meaningful exit codes from CLI commands.
type ExitError struct {
	Code    int    // Exit code (use ExitFailure or ExitCommandError)
	Message string // Error message
	Err     error  // Underlying error (optional)
}

func (e *ExitError) Error() string {
	if e.Message == "" && e.Err != nil {
		return e.Err.Error()
	}
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
	Code    string `json:"code"`              // tally ErrorKind or one of the Code* constants
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

	// Human-readable error
	fmt.Fprintf(f.Writer, "Error [%s]: %s\n", code, message)
	if f.Verbose && details != nil {
		fmt.Fprintf(f.Writer, "Details: %v\n", details)
	}
	return nil
}

// Fail reports a command failure and returns the ExitError the command
// should return. Tally validation errors and confirmation refusals exit 1;
// everything else exits 2.
//
// In JSON mode the failure is also written to Writer as an error response,
// so scripted callers always get one JSON document.
func (f *OutputFormatter) Fail(err error) error {
	code, exit := classify(err)
	if f.Format == "json" {
		if encErr := f.Error(code, err.Error(), nil); encErr != nil {
			return encErr
		}
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return err
	}
	if tally.KindOf(err) != "" {
		// Tally errors already lead with their kind.
		return WrapExitError(exit, "", err)
	}
	return WrapExitError(exit, code, err)
}

// classify maps an error to its response code and exit code.
func classify(err error) (string, int) {
	if kind := tally.KindOf(err); kind != "" {
		return string(kind), ExitFailure
	}
	var confirm *session.ConfirmError
	if errors.As(err, &confirm) {
		return CodeConfirm, ExitFailure
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		if exitErr.Code == ExitFailure {
			return CodeInvalidCommand, ExitFailure
		}
		return CodeStore, exitErr.Code
	}
	return CodeStore, ExitCommandError
}

// VerboseLog outputs a message only if verbose mode is enabled.
// Uses ErrWriter if set, otherwise falls back to Writer.
// When format is JSON, verbose logs go to ErrWriter to avoid corrupting JSON output.
func (f *OutputFormatter) VerboseLog(format string, args ...any) {
	if !f.Verbose {
		return
	}
	fmt.Fprintf(f.GetErrWriter(), format+"\n", args...)
}

// GetErrWriter returns the appropriate writer for diagnostic output.
// Returns ErrWriter if set, otherwise Writer.
func (f *OutputFormatter) GetErrWriter() io.Writer {
	if f.ErrWriter != nil {
		return f.ErrWriter
	}
	return f.Writer
}
