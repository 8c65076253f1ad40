package utils

import (
	"time"

	"github.com/named-data/ndn-cpp-sub004/std/types/optional"
)

// Version is set from source control at build time.
var Version string = "unknown"

// MakeTimestamp converts a time into milliseconds since the Unix epoch.
func MakeTimestamp(t time.Time) uint64 {
	return uint64(t.UnixNano() / int64(time.Millisecond))
}

// ConvertNonce folds the first four bytes of a random nonce into an Interest Nonce.
func ConvertNonce(nonce []byte) (ret optional.Optional[uint32]) {
	x := uint32(0)
	for i, b := range nonce {
		if i == 4 {
			break
		}
		x = (x << 8) | uint32(b)
	}
	ret.Set(x)
	return ret
}

// If is the ternary operator (eager evaluation)
func If[T any](cond bool, t, f T) T {
	if cond {
		return t
	} else {
		return f
	}
}
