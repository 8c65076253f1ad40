package psync

import (
	"errors"
	"fmt"

	enc "github.com/named-data/ndn-cpp-sub004/std/encoding"
)

// ErrFetchNack is reported when a segment Interest is answered with a Nack.
var ErrFetchNack = errors.New("interest nacked")

// ErrFetch is reported by SegmentFetcher when an object cannot be retrieved.
type ErrFetch struct {
	Name enc.Name
	Err  error
}

func (e *ErrFetch) Error() string {
	return fmt.Sprintf("fetch error [%s]: %v", e.Name, e.Err)
}

func (e *ErrFetch) Unwrap() error {
	return e.Err
}
