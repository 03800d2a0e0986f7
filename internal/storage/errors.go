package storage

import "fmt"

// Error is returned when the warehouse rejects a statement or a transaction
// step. It is fatal for the batch; nothing retries it.
type Error struct {
	Backend string
	Op      Op
	Err     error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Backend, e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Transaction steps reported through Error.Op alongside the statement Ops.
const (
	OpBegin    Op = "begin"
	OpCommit   Op = "commit"
	OpRollback Op = "rollback"
	OpSchema   Op = "schema"
)

// Wrap returns nil for a nil err and an *Error otherwise.
func Wrap(backend string, op Op, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Backend: backend, Op: op, Err: err}
}
