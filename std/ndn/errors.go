package ndn

import (
	"errors"
	"fmt"
)

type ErrInvalidValue struct {
	Item  string
	Value any
}

func (e ErrInvalidValue) Error() string {
	return fmt.Sprintf("invalid value for %s: %v", e.Item, e.Value)
}

type ErrNotSupported struct {
	Item string
}

func (e ErrNotSupported) Error() string {
	return fmt.Sprintf("not supported field: %s", e.Item)
}

var ErrCancelled = errors.New("operation cancelled")

// ErrWrongType is returned when the packet to parse is not of the expected type.
var ErrWrongType = errors.New("packet to parse is not of desired type")

// ErrMultipleHandlers is returned when a second handler is attached to the same prefix.
var ErrMultipleHandlers = errors.New("multiple handlers attached to the same prefix")

// ErrDeadlineExceed is returned when the Interest lifetime passed without Data.
var ErrDeadlineExceed = errors.New("interest deadline exceeded")

// ErrFaceDown is returned when sending on a closed face.
var ErrFaceDown = errors.New("face is down, unable to send packet")

// ErrNotFound is returned by a Store on a miss.
var ErrNotFound = errors.New("not found")
