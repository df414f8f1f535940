package budget

import (
	"errors"
	"fmt"

	"github.com/atinyakov/ebudget/internal/client/api"
)

var (
	// ErrNotAuthenticated is returned when no usable session is present.
	ErrNotAuthenticated = errors.New("token or user id not found")
	// ErrInvalidInput is returned for input rejected before any remote call.
	ErrInvalidInput = errors.New("invalid input")
)

// RemoteWriteFailedError is a create, update or delete the backend did not
// accept. The cache is left as it was.
type RemoteWriteFailedError struct {
	Operation string
	Detail    string
	Err       error
}

func (e *RemoteWriteFailedError) Error() string {
	return fmt.Sprintf("%s failed: %s", e.Operation, e.Detail)
}

func (e *RemoteWriteFailedError) Unwrap() error { return e.Err }

// SyncFailedError is a refresh that could not list the remote records.
type SyncFailedError struct {
	Entity string
	Err    error
}

func (e *SyncFailedError) Error() string {
	return fmt.Sprintf("sync %s: %v", e.Entity, e.Err)
}

func (e *SyncFailedError) Unwrap() error { return e.Err }

func writeFailed(op string, err error) error {
	detail := err.Error()
	var rej *api.RejectionError
	if errors.As(err, &rej) {
		detail = rej.Message
	}
	return &RemoteWriteFailedError{Operation: op, Detail: detail, Err: err}
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
