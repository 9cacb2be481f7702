package store

import (
	"errors"

	"github.com/lib/pq"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("not found")

// ErrDuplicate is returned when a unique constraint is violated
// (username, campaign slug, customer phone).
var ErrDuplicate = errors.New("duplicate record")

const uniqueViolationCode = "23505"

// translateError maps driver-level constraint violations onto the
// store's sentinel errors so handlers can respond with 409 instead
// of a generic 500.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolationCode {
		return ErrDuplicate
	}
	return err
}
