package basic

import (
	"sync"
	"time"
)

type dummyEvent struct {
	id uint64
	t  time.Time
	f  func()
}

// DummyTimer is a manual clock for tests. Time only moves in MoveForward,
// which runs due callbacks in time order on the calling goroutine.
type DummyTimer struct {
	lock   sync.Mutex
	now    time.Time
	nextId uint64
	events map[uint64]*dummyEvent
}

// NewDummyTimer creates a DummyTimer at the Unix epoch.
func NewDummyTimer() *DummyTimer {
	return &DummyTimer{
		now:    time.Unix(0, 0).UTC(),
		events: make(map[uint64]*dummyEvent),
	}
}

func (tm *DummyTimer) Now() time.Time {
	tm.lock.Lock()
	defer tm.lock.Unlock()
	return tm.now
}

// MoveForward advances the clock by d. Every callback due by then is run,
// including callbacks scheduled by other callbacks. While a callback runs,
// Now returns its scheduled time.
func (tm *DummyTimer) MoveForward(d time.Duration) {
	tm.lock.Lock()
	target := tm.now.Add(d)
	tm.lock.Unlock()

	for {
		e := tm.popDue(target)
		if e == nil {
			break
		}
		e.f()
	}
}

func (tm *DummyTimer) popDue(target time.Time) *dummyEvent {
	tm.lock.Lock()
	defer tm.lock.Unlock()

	var first *dummyEvent
	for _, e := range tm.events {
		if e.t.After(target) {
			continue
		}
		if first == nil || e.t.Before(first.t) || (e.t.Equal(first.t) && e.id < first.id) {
			first = e
		}
	}
	if first == nil {
		tm.now = target
		return nil
	}
	delete(tm.events, first.id)
	if first.t.After(tm.now) {
		tm.now = first.t
	}
	return first
}

func (tm *DummyTimer) Schedule(d time.Duration, f func()) func() error {
	tm.lock.Lock()
	defer tm.lock.Unlock()

	id := tm.nextId
	tm.nextId++
	tm.events[id] = &dummyEvent{id: id, t: tm.now.Add(d), f: f}

	return func() error {
		tm.lock.Lock()
		defer tm.lock.Unlock()
		if _, ok := tm.events[id]; !ok {
			return errCanceled
		}
		delete(tm.events, id)
		return nil
	}
}

// Pending returns the number of scheduled callbacks.
func (tm *DummyTimer) Pending() int {
	tm.lock.Lock()
	defer tm.lock.Unlock()
	return len(tm.events)
}

// Nonce returns a fixed 8 byte nonce.
func (*DummyTimer) Nonce() []byte {
	return []byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08}
}
