package merge

import (
	"errors"
	"fmt"

	"github.com/joshuapare/lozenge/mergestep"
)

var (
	// ErrInvalidOptions is returned when Options cannot drive a sort.
	ErrInvalidOptions = errors.New("merge: invalid options")

	// ErrSizeMismatch is returned when a Sorter is given a record slice of
	// a different length than it was configured for.
	ErrSizeMismatch = errors.New("merge: record count does not match sorter size")
)

// InvariantError is the panic value raised when a merge breaks one of its
// internal invariants.
type InvariantError struct {
	Step   mergestep.Step
	Record int // record involved, or record.Nil
	Err    error
}

func (e *InvariantError) Error() string {
	if e.Record >= 0 {
		return fmt.Sprintf("merge: invariant violated at step %v, record %d: %v", e.Step, e.Record, e.Err)
	}
	return fmt.Sprintf("merge: invariant violated at step %v: %v", e.Step, e.Err)
}

func (e *InvariantError) Unwrap() error { return e.Err }
