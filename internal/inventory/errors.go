package inventory

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidSlotIndex is returned (wrapped in *IndexError) when a container
	// operation is given an index outside the slot range.
	ErrInvalidSlotIndex = errors.New("invalid slot index")

	// ErrContainerClosed is returned by mutations on a closed container.
	ErrContainerClosed = errors.New("container closed")

	// ErrListenerRegistered is returned when a listener is added twice.
	ErrListenerRegistered = errors.New("listener already registered")

	// ErrStackLimitExceeded is returned when SetSlotContents is given more
	// items than the slot can hold.
	ErrStackLimitExceeded = errors.New("stack exceeds slot limit")

	// ErrBulkLengthMismatch is returned when a bulk update pairs a different
	// number of slot indexes and stacks.
	ErrBulkLengthMismatch = errors.New("bulk update length mismatch")
)

// IndexError describes an out-of-range slot index.
type IndexError struct {
	Index int
	Size  int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("slot index %d out of range [0,%d)", e.Index, e.Size)
}

func (e *IndexError) Unwrap() error {
	return ErrInvalidSlotIndex
}
