package executor

import "fmt"

// ErrorKind classifies why an action execution failed.
type ErrorKind string

const (
	// KindNoHandler means no backend capability is registered for the type.
	KindNoHandler ErrorKind = "no_handler"
	// KindBackend means the backend call itself failed.
	KindBackend ErrorKind = "backend"
	// KindCanceled means the context ended before the backend finished.
	KindCanceled ErrorKind = "canceled"
)

// ExecutionError is the explicit failure result of an action execution.
// It replaces silent catch-and-log: callers see the kind and message, the
// control loop keeps running either way.
type ExecutionError struct {
	Kind    ErrorKind
	Message string
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}
