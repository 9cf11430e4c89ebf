package relational

import (
	"errors"

	"github.com/JaimeStill/invoicer/pkg/repository"
)

var (
	ErrNotFound  = errors.New("invoice not found")
	ErrDuplicate = errors.New("invoice already exists")
	// ErrWrite wraps every failure raised while persisting a record.
	ErrWrite = errors.New("relational write failed")
)

// IsRetryable reports whether a persist failure is transient. Constraint,
// duplicate, and schema failures are fatal for the same input.
func IsRetryable(err error) bool {
	if errors.Is(err, ErrDuplicate) {
		return false
	}
	return repository.IsTransient(err)
}
