package directory

import (
	"errors"
	"fmt"
)

var (
	// ErrRemoteRejected is returned when the directory reports a non-zero status.
	ErrRemoteRejected = errors.New("remote rejected request")
	// ErrNoResponse is returned when the directory returns an empty response list.
	ErrNoResponse = errors.New("no response from directory")
	// ErrConnection is returned when the directory session cannot be established.
	ErrConnection = errors.New("directory connection failed")
	// ErrNotFound is returned by the memory directory for unknown list ids.
	ErrNotFound = errors.New("customer not found")
)

// RemoteError carries the status the directory returned for a request.
type RemoteError struct {
	Op         string
	StatusCode int
	Message    string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("%s failed (status %d): %s", e.Op, e.StatusCode, e.Message)
}

// Is makes errors.Is(err, ErrRemoteRejected) succeed.
func (e *RemoteError) Is(target error) bool {
	return target == ErrRemoteRejected
}
