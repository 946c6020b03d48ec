package feed

import (
	"errors"
	"fmt"
)

// ErrUnknownKind is returned when Rank is called with a feed kind that is
// neither personalized nor bridging.
var ErrUnknownKind = errors.New("unknown feed kind")

// DataAccessError is the only failure kind a well-formed ranking request
// can surface: the gateway could not retrieve required records. No partial
// ranking is returned alongside it.
type DataAccessError struct {
	Op  string // the gateway query that failed
	Err error
}

func (e *DataAccessError) Error() string {
	return fmt.Sprintf("feed: data access failed during %s: %v", e.Op, e.Err)
}

func (e *DataAccessError) Unwrap() error {
	return e.Err
}

// dataAccess wraps a gateway error, preserving the failed query for logs.
func dataAccess(op string, err error) error {
	return &DataAccessError{Op: op, Err: err}
}
