// Package errors defines stable error codes for every failure mode of the
// scanner, and the non-fatal diagnostic type attached to analysis runs.
package errors

import (
	"fmt"
)

// ErrorCode represents stable error codes for all failure modes
type ErrorCode string

const (
	// IOError indicates an input path is missing or unreadable. Fatal
	// for that file only.
	IOError ErrorCode = "IO_ERROR"
	// LexError indicates an unrecognized character sequence. Non-fatal;
	// the token is passed through as Unknown.
	LexError ErrorCode = "LEX_ERROR"
	// MacroSyntaxError indicates a malformed #define. Non-fatal; the
	// macro is skipped.
	MacroSyntaxError ErrorCode = "MACRO_SYNTAX_ERROR"
	// DeclSyntaxError indicates an unparseable declarator. Non-fatal;
	// the declaration is skipped and the parser resynchronizes.
	DeclSyntaxError ErrorCode = "DECL_SYNTAX_ERROR"
	// ConfigInvalid indicates a broken config file
	ConfigInvalid ErrorCode = "CONFIG_INVALID"
	// CacheError indicates a summary cache failure
	CacheError ErrorCode = "CACHE_ERROR"
)

// ScanError represents a scanner error with code, message, and cause
type ScanError struct {
	Code    ErrorCode   `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
	cause   error       // Underlying error (not exported to JSON)
}

// New creates a new ScanError
func New(code ErrorCode, message string, cause error) *ScanError {
	return &ScanError{
		Code:    code,
		Message: message,
		cause:   cause,
	}
}

// Error implements the error interface
func (e *ScanError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *ScanError) Unwrap() error {
	return e.cause
}

// WithDetails adds details to the error
func (e *ScanError) WithDetails(details interface{}) *ScanError {
	e.Details = details
	return e
}

// Diagnostic is a non-fatal problem collected while analyzing one file.
// Diagnostics never abort sibling declarations or sibling files.
type Diagnostic struct {
	Code    ErrorCode `json:"code"`
	Path    string    `json:"path"`
	Message string    `json:"message"`
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("[%s] %s: %s", d.Code, d.Path, d.Message)
}
