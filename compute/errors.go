package compute

import "fmt"

// RuntimeError is a backend/device failure: adapter selection, buffer
// mapping, shader compilation, submission. It is distinct from a
// verification mismatch (verify.MismatchError) so callers can branch on
// the kind.
type RuntimeError struct {
	Op  string
	Err error
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("compute: %s: %v", e.Op, e.Err)
}

func (e *RuntimeError) Unwrap() error { return e.Err }
