package go_akrypt

import (
	"errors"
	"fmt"
)

// Standard akrypt Error Types
//
// These errors follow Go 1.13+ error wrapping conventions and can be
// checked using errors.Is() and errors.As(). Operations never panic on bad
// input; every failure surfaces as one of the sentinels below, possibly
// wrapped in a HandleError or GeneratorError carrying context.

// Sentinel errors for the error kinds of the library
var (
	// ErrNullArgument indicates a nil object, destructor, generator or buffer was passed,
	// or an already destroyed node was destroyed again.
	ErrNullArgument = errors.New("akrypt: null argument")

	// ErrZeroLength indicates an empty buffer was passed where at least one byte is required.
	ErrZeroLength = errors.New("akrypt: zero length")

	// ErrOutOfMemory indicates the context manager table cannot grow any further.
	// The table is left in its last consistent state.
	ErrOutOfMemory = errors.New("akrypt: out of memory")

	// ErrHandleNotFound indicates no live node matches the given handle.
	// This is also returned for every handle once the manager has been destroyed.
	ErrHandleNotFound = errors.New("akrypt: handle not found")

	// ErrUnexpectedState indicates an operation was called in a state that forbids it,
	// e.g. a refill with bytes still available or use of a released generator.
	ErrUnexpectedState = errors.New("akrypt: unexpected state")

	// ErrUndefinedFunction indicates a generator does not implement the requested capability.
	ErrUndefinedFunction = errors.New("akrypt: undefined function")

	// ErrWrongHandle indicates the reserved WrongHandle sentinel was used as a live handle.
	ErrWrongHandle = errors.New("akrypt: wrong handle")

	// ErrWrongLength indicates a length outside what the receiver supports,
	// e.g. a hash function whose digest does not fit the generator buffer.
	ErrWrongLength = errors.New("akrypt: wrong length")

	// ErrEngineMismatch indicates a handle holds an object of another engine than requested.
	ErrEngineMismatch = errors.New("akrypt: engine mismatch")

	// ErrManagerNotInitialized indicates the global context manager was requested
	// before CreateGlobalContextManager or after DestroyGlobalContextManager.
	ErrManagerNotInitialized = fmt.Errorf("%w: context manager not initialized", ErrUnexpectedState)

	// ErrAlreadyInitialized indicates CreateGlobalContextManager was called twice.
	ErrAlreadyInitialized = fmt.Errorf("%w: context manager already initialized", ErrUnexpectedState)

	// ErrUnknownAlgorithm indicates a hash function or generator name is not registered.
	ErrUnknownAlgorithm = errors.New("akrypt: unknown algorithm")
)

// HandleError represents an error related to a context manager handle.
// It includes the handle for debugging and tracing.
type HandleError struct {
	Handle    Handle // Handle the operation was called with
	Operation string // What operation failed
	Err       error  // Underlying error
}

func (e *HandleError) Error() string {
	return fmt.Sprintf("akrypt: handle %s %s failed: %v", e.Handle, e.Operation, e.Err)
}

func (e *HandleError) Unwrap() error {
	return e.Err
}

// NewHandleError creates a HandleError with the given parameters.
//
// Example:
//
//	if node == nil {
//	    return NewHandleError(h, "lookup", ErrHandleNotFound)
//	}
func NewHandleError(handle Handle, operation string, err error) error {
	return &HandleError{
		Handle:    handle,
		Operation: operation,
		Err:       err,
	}
}

// GeneratorError represents an error raised by a pseudorandom generator.
type GeneratorError struct {
	Generator string // Generator name, e.g. "hashrng-sha512"
	Operation string // next, randomize, randomize_ptr, random or free
	Err       error  // Underlying error
}

func (e *GeneratorError) Error() string {
	return fmt.Sprintf("akrypt: generator %s %s failed: %v", e.Generator, e.Operation, e.Err)
}

func (e *GeneratorError) Unwrap() error {
	return e.Err
}

// NewGeneratorError creates a GeneratorError with the given parameters.
func NewGeneratorError(generator, operation string, err error) error {
	return &GeneratorError{
		Generator: generator,
		Operation: operation,
		Err:       err,
	}
}

// IsHandleError reports whether err was raised while resolving or mutating a handle.
func IsHandleError(err error) bool {
	var he *HandleError
	return errors.As(err, &he)
}

// IsRecoverable returns false for the conditions this layer treats as unrecoverable:
// table exhaustion and reuse of a released manager or generator. Everything else is a
// plain argument or lookup failure the caller can correct and retry.
func IsRecoverable(err error) bool {
	if err == nil {
		return true
	}
	if errors.Is(err, ErrOutOfMemory) || errors.Is(err, ErrUnexpectedState) {
		return false
	}
	return true
}

// errorKind maps an error to the short label used by metrics collectors.
func errorKind(err error) string {
	switch {
	case errors.Is(err, ErrNullArgument):
		return "null_argument"
	case errors.Is(err, ErrZeroLength):
		return "zero_length"
	case errors.Is(err, ErrOutOfMemory):
		return "out_of_memory"
	case errors.Is(err, ErrHandleNotFound):
		return "handle_not_found"
	case errors.Is(err, ErrUnexpectedState):
		return "unexpected_state"
	case errors.Is(err, ErrUndefinedFunction):
		return "undefined_function"
	case errors.Is(err, ErrWrongHandle):
		return "wrong_handle"
	case errors.Is(err, ErrWrongLength):
		return "wrong_length"
	case errors.Is(err, ErrEngineMismatch):
		return "engine_mismatch"
	case errors.Is(err, ErrUnknownAlgorithm):
		return "unknown_algorithm"
	default:
		return "other"
	}
}
