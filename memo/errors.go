package memo

import (
	"errors"
	"fmt"
)

// Sentinel errors for memo operations.
var (
	// ErrNilCompute is returned by Value when the cache was built without a computation.
	ErrNilCompute = errors.New("memo: computation is nil")

	// ErrInvalidKey is returned when a derived key is empty or malformed.
	ErrInvalidKey = errors.New("memo: key is invalid")

	// ErrKeyTooLong is returned when a derived key exceeds MaxKeyLength.
	ErrKeyTooLong = errors.New("memo: key exceeds max length")

	// ErrComputePanicked is wrapped by PanicError.
	ErrComputePanicked = errors.New("memo: computation panicked")
)

// PanicError carries a panic recovered from a computation run by Concurrent.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("%s: %v", ErrComputePanicked, e.Value)
}

// Unwrap lets errors.Is match ErrComputePanicked, and the panic value when it is an error.
func (e *PanicError) Unwrap() []error {
	if err, ok := e.Value.(error); ok {
		return []error{ErrComputePanicked, err}
	}
	return []error{ErrComputePanicked}
}
