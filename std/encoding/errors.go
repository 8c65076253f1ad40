package encoding

import (
	"errors"
	"fmt"
)

// ErrDecoding is matched by every error the TLV decoder returns.
// Use errors.Is(err, ErrDecoding) to tell malformed input from other failures.
var ErrDecoding = errors.New("TLV decoding error")

// ErrBufferOverflow means a TLV length points past the end of its enclosing buffer.
var ErrBufferOverflow = fmt.Errorf("%w: buffer overflow when parsing, one of the TLV lengths is wrong", ErrDecoding)

type ErrFormat struct {
	Msg string
}

func (e ErrFormat) Error() string {
	return e.Msg
}

func (e ErrFormat) Is(target error) bool {
	return target == ErrDecoding
}

// ErrUnexpectedType is returned when the decoder finds a TLV of another type
// where a specific type is required.
type ErrUnexpectedType struct {
	Expected TLNum
	Actual   TLNum
}

func (e ErrUnexpectedType) Error() string {
	return fmt.Sprintf("did not get the expected TLV type %d, got %d", e.Expected, e.Actual)
}

func (e ErrUnexpectedType) Is(target error) bool {
	return target == ErrDecoding
}

type ErrUnrecognizedField struct {
	TypeNum TLNum
}

func (e ErrUnrecognizedField) Error() string {
	return fmt.Sprintf("there exists an unrecognized field that has a critical type number: %d", e.TypeNum)
}

func (e ErrUnrecognizedField) Is(target error) bool {
	return target == ErrDecoding
}

type ErrSkipRequired struct {
	Name    string
	TypeNum TLNum
}

func (e ErrSkipRequired) Error() string {
	return fmt.Sprintf("the required field %s(%d) is missing in the input", e.Name, e.TypeNum)
}

func (e ErrSkipRequired) Is(target error) bool {
	return target == ErrDecoding
}
