package optional

import (
	"fmt"

	"golang.org/x/exp/constraints"
)

// Optional holds a value that may be absent, such as an optional TLV field.
type Optional[T any] struct {
	value T
	isSet bool
}

func (o Optional[T]) IsSet() bool {
	return o.isSet
}

func (o *Optional[T]) Set(v T) {
	o.value = v
	o.isSet = true
}

func (o *Optional[T]) Unset() {
	var zero T
	o.value = zero
	o.isSet = false
}

// Get returns the value and whether it is present.
func (o Optional[T]) Get() (T, bool) {
	return o.value, o.isSet
}

// GetOr returns the value, or def if absent.
func (o Optional[T]) GetOr(def T) T {
	if o.isSet {
		return o.value
	}
	return def
}

// Unwrap panics on an absent value.
func (o Optional[T]) Unwrap() T {
	if !o.isSet {
		panic("optional value is not set")
	}
	return o.value
}

func (o Optional[T]) String() string {
	if !o.isSet {
		return "None"
	}
	return fmt.Sprintf("Some(%v)", o.value)
}

func Some[T any](v T) Optional[T] {
	return Optional[T]{value: v, isSet: true}
}

func None[T any]() Optional[T] {
	return Optional[T]{}
}

// CastInt converts between integer optionals, keeping absence.
func CastInt[A, B constraints.Integer](a Optional[A]) (out Optional[B]) {
	if v, ok := a.Get(); ok {
		out.Set(B(v))
	}
	return out
}
