package face

import (
	"errors"
	"sync"
	"sync/atomic"
)

var (
	errRunning     = errors.New("face is already running")
	errNotRunning  = errors.New("face is not running")
	errNoCallbacks = errors.New("face callbacks are not set")
)

// baseFace is the base struct for face implementations.
type baseFace struct {
	running atomic.Bool
	local   bool
	onPkt   func(frame []byte)
	onError func(err error)
	sendMut sync.Mutex

	onDown   map[int]func()
	onDnHndl int
}

func newBaseFace(local bool) baseFace {
	return baseFace{
		local:  local,
		onDown: make(map[int]func()),
	}
}

func (f *baseFace) IsRunning() bool {
	return f.running.Load()
}

func (f *baseFace) IsLocal() bool {
	return f.local
}

func (f *baseFace) OnPacket(onPkt func(frame []byte)) {
	f.onPkt = onPkt
}

func (f *baseFace) OnError(onError func(err error)) {
	f.onError = onError
}

// OnDown registers a callback for when the connection is lost.
// It is not called on Close.
func (f *baseFace) OnDown(onDown func()) (cancel func()) {
	hndl := f.onDnHndl
	f.onDown[hndl] = onDown
	f.onDnHndl++
	return func() {
		delete(f.onDown, hndl)
	}
}

func (f *baseFace) checkOpen() error {
	if f.IsRunning() {
		return errRunning
	}
	if f.onError == nil || f.onPkt == nil {
		return errNoCallbacks
	}
	return nil
}

// setStateDown sets the face to down state, and makes the down
// callback if the face was previously up.
func (f *baseFace) setStateDown() {
	if f.running.Swap(false) {
		for _, cb := range f.onDown {
			cb()
		}
	}
}

// setStateClosed sets the face to closed state without
// making the onDown callback. Returns if the face was running.
func (f *baseFace) setStateClosed() bool {
	return f.running.Swap(false)
}
