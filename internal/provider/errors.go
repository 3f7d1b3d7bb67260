package provider

import "fmt"

// Error indicates a backend failure (API error, rate limit, bad payload).
type Error struct {
	Message   string
	Cause     error
	Retryable bool
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("provider error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("provider error: %s", e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// CountMismatchError indicates the backend returned a different number of
// translations than texts sent.
type CountMismatchError struct {
	Expected int
	Got      int
}

func (e *CountMismatchError) Error() string {
	return fmt.Sprintf("translation count mismatch: expected %d, got %d", e.Expected, e.Got)
}
