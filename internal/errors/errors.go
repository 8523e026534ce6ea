package errors

import (
	"errors"
	"fmt"
	"time"
)

var (
	Is     = errors.Is
	As     = errors.As
	New    = errors.New
	Unwrap = errors.Unwrap
)

type ErrorCategory string

const (
	CategoryInput   ErrorCategory = "INPUT"   // Bad hash, URI, record or asset name
	CategoryStorage ErrorCategory = "STORAGE" // Ledger failures
	CategoryConfig  ErrorCategory = "CONFIG"  // Unreadable or invalid configuration
	CategoryAborted ErrorCategory = "ABORTED" // Declined by the user
	CategoryUnknown ErrorCategory = "UNKNOWN" // Unclassified errors
)

// Exit codes returned by the command line tool.
const (
	ExitOK      = 0
	ExitFailure = 1
	ExitInput   = 2
	ExitStorage = 3
	ExitAborted = 4
)

// Error is an error raised while handling a link command.
type Error struct {
	Err       error         // Original error
	Category  ErrorCategory // General category
	Op        string        // Operation being performed, e.g. "issue"
	Resource  string        // Asset name, file or URI involved
	Timestamp time.Time     // When the error occurred
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Resource == "" {
		return fmt.Sprintf("[%s] %s: %v", e.Category, e.Op, e.Err)
	}
	return fmt.Sprintf("[%s] %s %s: %v", e.Category, e.Op, e.Resource, e.Err)
}

// Unwrap provides the underlying cause for error unwrapping (compatible with errors.As)
func (e *Error) Unwrap() error {
	return e.Err
}

// Common sentinel errors
var (
	ErrUsage    = New("usage")
	ErrDeclined = New("declined by user")
)

func newError(category ErrorCategory, err error, op, resource string) *Error {
	return &Error{
		Err:       err,
		Category:  category,
		Op:        op,
		Resource:  resource,
		Timestamp: time.Now(),
	}
}

// NewInputError wraps an error caused by user supplied data.
func NewInputError(err error, op, resource string) *Error {
	return newError(CategoryInput, err, op, resource)
}

// NewStorageError wraps a ledger error.
func NewStorageError(err error, op, resource string) *Error {
	return newError(CategoryStorage, err, op, resource)
}

// NewConfigError wraps a configuration error.
func NewConfigError(err error, resource string) *Error {
	return newError(CategoryConfig, err, "config", resource)
}

// NewAbortedError reports an operation the user declined.
func NewAbortedError(op, resource string) *Error {
	return newError(CategoryAborted, ErrDeclined, op, resource)
}

// Usage returns an input error for a malformed command line.
func Usage(format string, args ...interface{}) *Error {
	return NewInputError(fmt.Errorf("%w: %s", ErrUsage, fmt.Sprintf(format, args...)), "usage", "")
}

// CategoryOf returns the category of err, or CategoryUnknown.
func CategoryOf(err error) ErrorCategory {
	var linkErr *Error
	if As(err, &linkErr) {
		return linkErr.Category
	}

	return CategoryUnknown
}

// IsInputError determines if the error was caused by user input
func IsInputError(err error) bool {
	return CategoryOf(err) == CategoryInput
}

// IsStorageError determines if the error came from the ledger
func IsStorageError(err error) bool {
	return CategoryOf(err) == CategoryStorage
}

// IsAborted determines if the user declined the operation
func IsAborted(err error) bool {
	return CategoryOf(err) == CategoryAborted
}

// ExitCode maps an error to the process exit status.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}

	switch CategoryOf(err) {
	case CategoryInput:
		return ExitInput
	case CategoryStorage, CategoryConfig:
		return ExitStorage
	case CategoryAborted:
		return ExitAborted
	default:
		return ExitFailure
	}
}
