package recognizer

import "fmt"

// TransportError indicates the service was unreachable or answered with a
// non-success envelope. Local state must be preserved; the call may be
// retried by the caller.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ValidationError indicates the backend rejected the request content
// (missing fields, roll number already taken, out-of-range image count).
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func transportErr(op string, err error) error {
	return &TransportError{Op: op, Err: err}
}

func transportErrf(op, format string, args ...any) error {
	return &TransportError{Op: op, Err: fmt.Errorf(format, args...)}
}
