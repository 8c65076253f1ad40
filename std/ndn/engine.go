package ndn

import (
	"time"

	enc "github.com/named-data/ndn-cpp-sub004/std/encoding"
)

// Engine is the packet event loop an application runs on.
// Interest handlers, Data and Nack callbacks run on the engine goroutine.
// Timeout callbacks run wherever the Timer runs its callbacks.
type Engine interface {
	// String is the instance log identifier.
	String() string
	// Timer returns a Timer managed by the engine.
	Timer() Timer

	// Start opens the face and starts processing packets.
	Start() error
	Stop() error
	IsRunning() bool

	// AttachHandler attaches an Interest handler to the namespace of prefix.
	AttachHandler(prefix enc.Name, handler InterestHandler) error
	DetachHandler(prefix enc.Name) error

	// Express sends an Interest and calls callback exactly once, with Data,
	// a Nack or a timeout. The Interest must be complete: Nonce and Lifetime
	// are filled in by the engine if absent.
	Express(interest *Interest, callback ExpressCallbackFunc) error
	// Put sends an encoded Data to the forwarder, satisfying any matching
	// pending Interest there.
	Put(wire []byte) error

	// RegisterRoute asks the local forwarder to route prefix to this engine.
	RegisterRoute(prefix enc.Name) error
	UnregisterRoute(prefix enc.Name) error

	// Post runs a task on the engine goroutine.
	Post(func())
}

// Timer is the clock of an engine. Callbacks of the wall clock timer run on
// their own goroutine; test timers run them inside MoveForward.
type Timer interface {
	Now() time.Time
	// Schedule calls f after d, and returns a cancel function.
	// Cancelling twice, or after the call, is an error but otherwise harmless.
	Schedule(d time.Duration, f func()) func() error
	// Nonce returns random bytes.
	Nonce() []byte
}

// ExpressCallbackFunc receives the outcome of Express.
type ExpressCallbackFunc func(args ExpressCallbackArgs)

type ExpressCallbackArgs struct {
	Result InterestResult
	// Data is set for InterestResultData.
	Data *Data
	// RawData is the Data wire as received.
	RawData []byte
	// SigCovered is the signed portion of RawData.
	SigCovered []byte
	// NackReason is set for InterestResultNack.
	NackReason uint64
	Error      error
}

// InterestHandler is called for every Interest under an attached prefix.
type InterestHandler func(args InterestHandlerArgs)

type InterestHandlerArgs struct {
	Interest *Interest
	// RawInterest is the Interest wire as received.
	RawInterest []byte
	// SigCovered is the signed portion of RawInterest.
	SigCovered []byte
	// Reply sends a Data wire back on the incoming face.
	Reply ReplyFunc
	// Deadline is the arrival time plus the Interest lifetime.
	Deadline time.Time
	PitToken []byte
}

// ReplyFunc sends an encoded Data in response to an Interest.
type ReplyFunc func(wire []byte) error
