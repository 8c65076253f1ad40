package basic

import (
	"crypto/rand"
	"errors"
	"sync"
	"time"

	"github.com/named-data/ndn-cpp-sub004/std/ndn"
)

var errCanceled = errors.New("event has already been canceled")

// Timer is the wall clock. Callbacks run on their own goroutine.
type Timer struct{}

func NewTimer() ndn.Timer {
	return Timer{}
}

func (Timer) Schedule(d time.Duration, f func()) func() error {
	t := time.AfterFunc(d, f)
	once := sync.Once{}
	return func() (err error) {
		err = errCanceled
		once.Do(func() {
			if t.Stop() {
				err = nil
			}
		})
		return err
	}
}

func (Timer) Now() time.Time {
	return time.Now()
}

// Nonce returns 8 random bytes.
func (Timer) Nonce() []byte {
	buf := make([]byte, 8)
	n, _ := rand.Read(buf) // Should always succeed
	return buf[:n]
}
