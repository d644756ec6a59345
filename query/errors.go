package query

import (
	"errors"
	"fmt"
)

// errNotUpdatable is returned when an UpdateScan method is called on a
// wrapper (SelectScan, ProjectScan) whose underlying scan turns out not to
// implement UpdateScan after all — e.g. a ProductScan or a read-only plan.
var errNotUpdatable = errors.New("query: underlying scan does not support update")

// ErrFieldNotFound is the sentinel wrapped by errFieldNotFound.
var ErrFieldNotFound = errors.New("query: field not found")

func errFieldNotFound(fldname string) error {
	return fmt.Errorf("%w: %s", ErrFieldNotFound, fldname)
}
