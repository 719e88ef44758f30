// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

// Package errors provides structured error handling for the rdftools CLIs.
//
// This package defines UserError, a type that carries structured error information
// including what went wrong, why it happened, and how to fix it. It also defines
// consistent exit codes for the one-shot tools and an error Kind enumeration
// used by the shell to pick a specific warning for each failure.
//
// # Usage Example
//
//	err := errors.NewReadError(
//	    "Cannot read input",
//	    "sample.n3: no such file or directory",
//	    "Check the path passed with -i/--input",
//	    underlyingErr,
//	)
//	errors.FatalError(err, false)
//	// Output (with colors):
//	// Error: Cannot read input
//	// Cause: sample.n3: no such file or directory
//	// Fix:   Check the path passed with -i/--input
//
// # Error Kinds
//
// Collaborators (pkg/rdfio, pkg/sparql) tag their failures with a Kind via
// WithKind. KindOf recovers the Kind from anywhere in an error chain:
//   - KindInput: malformed command arguments, bad URI or prefix syntax
//   - KindFormat: unknown or unsupported serialization format
//   - KindRead: the input could not be opened or read
//   - KindParse: the input was read but is not valid in the declared format
//   - KindWrite: the output could not be created or written
//   - KindQuery: the SPARQL text is malformed or cannot be evaluated
//   - KindConfig: the configuration file is unreadable or invalid
//   - KindInternal: anything else
//
// # Exit Codes
//
//   - ExitSuccess (0): Successful execution
//   - ExitValidation (1): rdf-validate found an invalid input
//   - ExitUsage (2): Invalid command-line flags
//   - ExitRead (3): Input could not be read or parsed
//   - ExitWrite (4): Output could not be written
//   - ExitQuery (5): SPARQL query failed
//   - ExitConfig (6): Configuration errors
//   - ExitInternal (10): Internal errors (bugs, panics)
package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
)

// Exit codes for different error categories.
const (
	// ExitSuccess indicates successful execution.
	ExitSuccess = 0

	// ExitValidation indicates that an input failed validation.
	ExitValidation = 1

	// ExitUsage indicates invalid command-line flags or arguments.
	ExitUsage = 2

	// ExitRead indicates an input could not be read or parsed.
	ExitRead = 3

	// ExitWrite indicates an output could not be written.
	ExitWrite = 4

	// ExitQuery indicates a malformed or failing SPARQL query.
	ExitQuery = 5

	// ExitConfig indicates configuration errors (unreadable/invalid config file).
	ExitConfig = 6

	// ExitInternal indicates internal errors (bugs, unexpected panics).
	// Exit code 10 signals "this is a bug that should be reported".
	ExitInternal = 10
)

// Kind classifies a failure so callers can react to it without matching on
// error strings.
type Kind int

const (
	KindInternal Kind = iota
	KindInput
	KindFormat
	KindRead
	KindParse
	KindWrite
	KindQuery
	KindConfig
)

var kindNames = map[Kind]string{
	KindInternal: "internal",
	KindInput:    "input",
	KindFormat:   "format",
	KindRead:     "read",
	KindParse:    "parse",
	KindWrite:    "write",
	KindQuery:    "query",
	KindConfig:   "config",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// ExitCode returns the process exit code used for failures of this kind.
func (k Kind) ExitCode() int {
	switch k {
	case KindInput, KindFormat:
		return ExitUsage
	case KindRead, KindParse:
		return ExitRead
	case KindWrite:
		return ExitWrite
	case KindQuery:
		return ExitQuery
	case KindConfig:
		return ExitConfig
	default:
		return ExitInternal
	}
}

// kindError attaches a Kind to an error without changing its message.
type kindError struct {
	kind Kind
	err  error
}

func (e *kindError) Error() string { return e.err.Error() }
func (e *kindError) Unwrap() error { return e.err }

// WithKind tags err with kind. A nil err stays nil.
func WithKind(kind Kind, err error) error {
	if err == nil {
		return nil
	}
	return &kindError{kind: kind, err: err}
}

// Errorf formats an error message and tags it with kind. %w verbs are honoured.
func Errorf(kind Kind, format string, args ...any) error {
	return &kindError{kind: kind, err: fmt.Errorf(format, args...)}
}

// KindOf returns the outermost Kind found in err's chain, or KindInternal.
func KindOf(err error) Kind {
	for err != nil {
		switch e := err.(type) {
		case *kindError:
			return e.kind
		case *UserError:
			return e.Kind
		}
		err = stderrors.Unwrap(err)
	}
	return KindInternal
}

// UserError represents an error with structured context for end users.
//
// It provides three levels of information:
//   - Message: What went wrong (user-facing error description)
//   - Cause: Why it happened (diagnostic information)
//   - Fix: How to fix it (actionable suggestion)
//
// UserError also carries an exit code for consistent CLI exit behavior
// and optionally wraps an underlying error for error chain compatibility.
type UserError struct {
	// Message describes what went wrong in user-friendly language.
	Message string

	// Cause explains why the error occurred (diagnostic information).
	Cause string

	// Fix provides an actionable suggestion on how to resolve the error.
	Fix string

	// ExitCode is the exit code that should be used when exiting due to this error.
	ExitCode int

	// Kind classifies the failure.
	Kind Kind

	// Err is the underlying error that caused this error (optional).
	Err error
}

// Error implements the error interface.
func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap implements error unwrapping for compatibility with errors.Is and errors.As.
func (e *UserError) Unwrap() error {
	return e.Err
}

func newUserError(kind Kind, exitCode int, msg, cause, fix string, err error) *UserError {
	return &UserError{
		Message:  msg,
		Cause:    cause,
		Fix:      fix,
		ExitCode: exitCode,
		Kind:     kind,
		Err:      err,
	}
}

// NewUsageError creates a command-line usage error with exit code ExitUsage.
//
// Usage errors typically do not wrap an underlying error.
func NewUsageError(msg, cause, fix string) *UserError {
	return newUserError(KindInput, ExitUsage, msg, cause, fix, nil)
}

// NewValidationError creates an input validation failure with exit code ExitValidation.
//
// Example:
//
//	return NewValidationError(
//	    "File validation failed",
//	    "expected directive or statement at 3:1",
//	    "Fix the syntax error or pass the right format with -r",
//	    err,
//	)
func NewValidationError(msg, cause, fix string, err error) *UserError {
	return newUserError(KindParse, ExitValidation, msg, cause, fix, err)
}

// NewReadError creates an input error with exit code ExitRead.
//
// Use this when an input cannot be opened, read, or parsed. The Kind is taken
// from err when it carries one, so parse failures stay distinguishable.
func NewReadError(msg, cause, fix string, err error) *UserError {
	kind := KindRead
	if k := KindOf(err); k == KindParse || k == KindFormat {
		kind = k
	}
	return newUserError(kind, ExitRead, msg, cause, fix, err)
}

// NewWriteError creates an output error with exit code ExitWrite.
func NewWriteError(msg, cause, fix string, err error) *UserError {
	return newUserError(KindWrite, ExitWrite, msg, cause, fix, err)
}

// NewQueryError creates a query error with exit code ExitQuery.
//
// Example:
//
//	return NewQueryError(
//	    "Query failed",
//	    "expected SELECT, CONSTRUCT, DESCRIBE or ASK, found \"WHAT\"",
//	    "Check the SPARQL syntax",
//	    err,
//	)
func NewQueryError(msg, cause, fix string, err error) *UserError {
	return newUserError(KindQuery, ExitQuery, msg, cause, fix, err)
}

// NewConfigError creates a configuration error with exit code ExitConfig.
//
// Use this for errors related to missing, invalid, or malformed configuration files.
func NewConfigError(msg, cause, fix string, err error) *UserError {
	return newUserError(KindConfig, ExitConfig, msg, cause, fix, err)
}

// NewInternalError creates an internal error with exit code ExitInternal.
//
// Use this for unexpected errors that indicate bugs in the program.
func NewInternalError(msg, cause, fix string, err error) *UserError {
	return newUserError(KindInternal, ExitInternal, msg, cause, fix, err)
}

// Color definitions for error formatting.
var (
	colorError = color.New(color.FgRed, color.Bold)
	colorCause = color.New(color.FgYellow)
	colorFix   = color.New(color.FgGreen)
)

// Format returns a formatted error message for terminal display.
//
// The output includes colored sections for Error (red/bold), Cause (yellow),
// and Fix (green). Color output respects the NO_COLOR environment variable
// and can be explicitly disabled with the noColor parameter.
//
// Example output:
//
//	Error: Cannot read input
//	Cause: sample.n3: no such file or directory
//	Fix:   Check the path passed with -i/--input
//
// Empty Cause or Fix fields are omitted from the output.
func (e *UserError) Format(noColor bool) string {
	// Save and restore global color state to avoid side effects
	originalNoColor := color.NoColor
	defer func() { color.NoColor = originalNoColor }()

	if noColor || os.Getenv("NO_COLOR") != "" {
		color.NoColor = true
	}

	var out strings.Builder
	out.WriteString(colorError.Sprint("Error: "))
	out.WriteString(e.Message)
	out.WriteString("\n")

	if e.Cause != "" {
		out.WriteString(colorCause.Sprint("Cause: "))
		out.WriteString(e.Cause)
		out.WriteString("\n")
	}

	if e.Fix != "" {
		out.WriteString(colorFix.Sprint("Fix:   "))
		out.WriteString(e.Fix)
		out.WriteString("\n")
	}

	return out.String()
}

// ErrorJSON represents error information in JSON format.
type ErrorJSON struct {
	Error    string `json:"error"`
	Cause    string `json:"cause,omitempty"`
	Fix      string `json:"fix,omitempty"`
	Kind     string `json:"kind"`
	ExitCode int    `json:"exit_code"`
}

// ToJSON converts the UserError to a JSON-serializable structure.
func (e *UserError) ToJSON() ErrorJSON {
	return ErrorJSON{
		Error:    e.Message,
		Cause:    e.Cause,
		Fix:      e.Fix,
		Kind:     e.Kind.String(),
		ExitCode: e.ExitCode,
	}
}

// Report writes err to w and returns the exit code the process should use.
//
// UserErrors are rendered with Format (or ToJSON in JSON mode). Other errors
// are printed as "Error: <err>" and mapped to an exit code through their Kind.
// A nil error reports nothing and returns ExitSuccess.
func Report(w io.Writer, err error, jsonOutput bool) int {
	if err == nil {
		return ExitSuccess
	}

	var ue *UserError
	if stderrors.As(err, &ue) {
		if jsonOutput {
			enc := json.NewEncoder(w)
			enc.SetIndent("", "  ")
			_ = enc.Encode(ue.ToJSON())
		} else {
			fmt.Fprint(w, ue.Format(false))
		}
		return ue.ExitCode
	}

	fmt.Fprintf(w, "Error: %v\n", err)
	return KindOf(err).ExitCode()
}

// FatalError prints the error to stderr and exits with the appropriate code.
//
// This function never returns for a non-nil error - it always calls os.Exit().
func FatalError(err error, jsonOutput bool) {
	if err == nil {
		return
	}
	os.Exit(Report(os.Stderr, err, jsonOutput))
}
