package config

import (
	"fmt"
	"strings"
)

// Error codes for categorization.
const (
	ErrCodeConfigNotFound = "CONFIG_NOT_FOUND"
	ErrCodeConfigParse    = "CONFIG_PARSE"
	ErrCodeConfigInvalid  = "CONFIG_INVALID"

	// ErrCodeDbtVersionUndetected marks a dbt binary that could not be run
	// or whose output had no "installed:" banner.
	ErrCodeDbtVersionUndetected = "DBT_VERSION_UNDETECTED"
	// ErrCodeDbtVersionUnsupported marks an operator refusing to continue
	// with an unsupported dbt version.
	ErrCodeDbtVersionUnsupported = "DBT_VERSION_UNSUPPORTED"
)

// UserError represents a user-friendly error with actionable suggestions.
type UserError struct {
	Code       string // Error code for categorization (e.g., "CONFIG_NOT_FOUND")
	Message    string // User-friendly error message
	Context    string // File path or other location context
	Suggestion string // Actionable suggestion to fix the error
	Underlying error  // Wrapped error for error chain
}

// Error returns the formatted error message.
func (e *UserError) Error() string {
	var b strings.Builder

	b.WriteString(e.Message)

	if e.Context != "" {
		fmt.Fprintf(&b, " (at %s)", e.Context)
	}

	return b.String()
}

// Unwrap returns the underlying error for error chain support.
func (e *UserError) Unwrap() error {
	return e.Underlying
}

// Is supports errors.Is() for comparing error codes.
func (e *UserError) Is(target error) bool {
	if t, ok := target.(*UserError); ok {
		return e.Code == t.Code
	}
	return false
}

// Format returns a fully formatted error with all details.
func (e *UserError) Format() string {
	var b strings.Builder

	fmt.Fprintf(&b, "[%s] %s", e.Code, e.Message)

	if e.Context != "" {
		fmt.Fprintf(&b, "\n  Location: %s", e.Context)
	}

	if e.Suggestion != "" {
		fmt.Fprintf(&b, "\n  Suggestion: %s", e.Suggestion)
	}

	return b.String()
}

// NewUserError creates a new UserError with the given code and message.
func NewUserError(code, message string) *UserError {
	return &UserError{
		Code:    code,
		Message: message,
	}
}

// WithSuggestion returns a new UserError with suggestion set.
func (e *UserError) WithSuggestion(suggestion string) *UserError {
	c := *e
	c.Suggestion = suggestion
	return &c
}

// WithUnderlying returns a new UserError wrapping another error.
func (e *UserError) WithUnderlying(err error) *UserError {
	c := *e
	c.Underlying = err
	return &c
}

// Sentinels for errors.Is; only the Code is compared.
var (
	ErrConfigNotFound        = &UserError{Code: ErrCodeConfigNotFound}
	ErrConfigParse           = &UserError{Code: ErrCodeConfigParse}
	ErrConfigInvalid         = &UserError{Code: ErrCodeConfigInvalid}
	ErrDbtVersionUndetected  = &UserError{Code: ErrCodeDbtVersionUndetected}
	ErrDbtVersionUnsupported = &UserError{Code: ErrCodeDbtVersionUnsupported}
)

// NewConfigNotFoundError creates an error for an explicitly requested
// settings file that does not exist.
func NewConfigNotFoundError(path string) *UserError {
	return &UserError{
		Code:       ErrCodeConfigNotFound,
		Message:    fmt.Sprintf("configuration file not found: %s", path),
		Context:    path,
		Suggestion: "Check the --config path, or omit it to use the built-in dbt version defaults.",
	}
}

// NewConfigParseError creates an error for YAML or TOML parsing failures.
func NewConfigParseError(path string, err error) *UserError {
	return &UserError{
		Code:       ErrCodeConfigParse,
		Message:    "failed to parse configuration file",
		Context:    path,
		Suggestion: "Check the file syntax. YAML is used for .yaml/.yml files and TOML for .toml files.",
		Underlying: err,
	}
}

// NewConfigInvalidError creates an error for settings that parse but
// cannot be used.
func NewConfigInvalidError(path, message string) *UserError {
	return &UserError{
		Code:       ErrCodeConfigInvalid,
		Message:    message,
		Context:    path,
		Suggestion: "dbt.supported_versions must list <major>.<minor> identifiers in ascending order.",
	}
}

// NewDbtVersionUndetectedError reports a dbt --version run whose output
// could not be used. The raw output is kept in the message for diagnosis.
func NewDbtVersionUndetectedError(output string, err error) *UserError {
	msg := fmt.Sprintf("Can't locate dbt --version: %s", output)
	if err != nil {
		msg = fmt.Sprintf("Failed to get dbt --version:\n  %v", err)
	}
	return &UserError{
		Code:       ErrCodeDbtVersionUndetected,
		Message:    msg,
		Suggestion: "Make sure dbt is installed and on your PATH, or set dbt.binary in the configuration file.",
		Underlying: err,
	}
}

// NewDbtVersionUnsupportedError reports that the operator declined to
// continue with an unsupported dbt version.
func NewDbtVersionUnsupportedError(version, supportedRange string) *UserError {
	return &UserError{
		Code:       ErrCodeDbtVersionUnsupported,
		Message:    fmt.Sprintf("Unsupported dbt version %s. Please consider using a supported version (%s).", version, supportedRange),
		Suggestion: fmt.Sprintf("Install a dbt version in the range %s, or rerun with CI=true to accept the fallback.", supportedRange),
	}
}
