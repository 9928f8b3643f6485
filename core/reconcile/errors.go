package reconcile

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicateKey is returned when two candidates share a business key.
	ErrDuplicateKey = errors.New("duplicate company id")

	// ErrMissingKey is returned when a candidate has an empty business key.
	ErrMissingKey = errors.New("missing company id")
)

// DuplicateKeyError reports the business key that occurred more than once.
type DuplicateKeyError struct {
	Key string
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("%s: %q", ErrDuplicateKey, e.Key)
}

// Is makes errors.Is(err, ErrDuplicateKey) succeed.
func (e *DuplicateKeyError) Is(target error) bool {
	return target == ErrDuplicateKey
}
