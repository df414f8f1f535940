package repository

import (
	"errors"

	"github.com/lib/pq"
)

var (
	// ErrNotFound means no live row matched.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate means a unique constraint rejected the row.
	ErrDuplicate = errors.New("duplicate")
)

const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}
