package nexusflow

import "errors"

// Lifecycle and construction errors. Pipeline and actor operations wrap
// these with %w so callers can match with errors.Is.
var (
	ErrAlreadyStarted     = errors.New("nexusflow: already started")
	ErrAlreadyStopped     = errors.New("nexusflow: already stopped")
	ErrFailedToStartWorker = errors.New("nexusflow: failed to start worker")
	ErrFailedToStopWorker  = errors.New("nexusflow: failed to stop worker")
	ErrUninitialized      = errors.New("nexusflow: pipeline not initialized")

	// ErrTypeMismatch is reported by Borrow/Mut when a message is empty
	// or holds a payload of a different type.
	ErrTypeMismatch = errors.New("nexusflow: message type mismatch or empty")

	// ErrUnknownModuleClass is reported by the factory for class names
	// that were never registered.
	ErrUnknownModuleClass = errors.New("nexusflow: unknown module class")

	ErrCycle          = errors.New("nexusflow: graph has a cycle")
	ErrEmptyGraph     = errors.New("nexusflow: graph is empty")
	ErrInvalidConfig  = errors.New("nexusflow: invalid configuration")
	ErrNodeNotFound   = errors.New("nexusflow: node not found")
	ErrDuplicateNode  = errors.New("nexusflow: duplicate node name")
)

// ProcessStatus is a module's verdict on one Process invocation.
type ProcessStatus int

const (
	// ProcessOK marks the context's outputs as valid and dispatchable.
	ProcessOK ProcessStatus = iota
	// ProcessError tells the worker to skip dispatch for this context
	// and continue with the next one.
	ProcessError
	// ProcessFailedGetInput marks an input the module could not use
	// (absent, or payload of the wrong type). Dispatch is skipped.
	ProcessFailedGetInput
)

func (s ProcessStatus) String() string {
	switch s {
	case ProcessOK:
		return "OK"
	case ProcessError:
		return "ERROR"
	case ProcessFailedGetInput:
		return "FAILED_GET_INPUT"
	default:
		return "UNKNOWN"
	}
}
