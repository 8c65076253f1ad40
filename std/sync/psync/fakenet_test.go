package psync_test

import (
	"sync"
	"time"

	enc "github.com/named-data/ndn-cpp-sub004/std/encoding"
	"github.com/named-data/ndn-cpp-sub004/std/engine/basic"
	"github.com/named-data/ndn-cpp-sub004/std/ndn"
	"github.com/named-data/ndn-cpp-sub004/std/ndn/spec"
)

// fakeNet connects engines on a shared broadcast link. Packets are queued
// and only delivered by flush, on the test goroutine.
type fakeNet struct {
	timer   *basic.DummyTimer
	mutex   sync.Mutex
	engines []*fakeEngine
	queue   []func()
}

func newFakeNet() *fakeNet {
	return &fakeNet{timer: basic.NewDummyTimer()}
}

func (n *fakeNet) newEngine() *fakeEngine {
	e := &fakeEngine{net: n}
	n.mutex.Lock()
	n.engines = append(n.engines, e)
	n.mutex.Unlock()
	return e
}

func (n *fakeNet) post(f func()) {
	n.mutex.Lock()
	defer n.mutex.Unlock()
	n.queue = append(n.queue, f)
}

// flush delivers packets until the link is idle.
func (n *fakeNet) flush() {
	for {
		n.mutex.Lock()
		if len(n.queue) == 0 {
			n.mutex.Unlock()
			return
		}
		f := n.queue[0]
		n.queue = n.queue[1:]
		n.mutex.Unlock()
		f()
	}
}

// advance moves the clock in small steps, flushing after each.
func (n *fakeNet) advance(d time.Duration) {
	n.flush()
	const step = 10 * time.Millisecond
	for elapsed := time.Duration(0); elapsed < d; elapsed += step {
		n.timer.MoveForward(step)
		n.flush()
	}
}

func (n *fakeNet) others(from *fakeEngine) []*fakeEngine {
	n.mutex.Lock()
	defer n.mutex.Unlock()
	ret := make([]*fakeEngine, 0, len(n.engines))
	for _, e := range n.engines {
		if e != from {
			ret = append(ret, e)
		}
	}
	return ret
}

func (n *fakeNet) deliverInterest(from *fakeEngine, interest *ndn.Interest) {
	for _, e := range n.others(from) {
		if h := e.handler(interest.Name); h != nil {
			h(ndn.InterestHandlerArgs{
				Interest: interest,
				Deadline: n.timer.Now().Add(interest.LifetimeOrDefault()),
				Reply: func(wire []byte) error {
					n.post(func() { from.onData(wire) })
					return nil
				},
			})
		}
	}
}

type fakePit struct {
	interest *ndn.Interest
	callback ndn.ExpressCallbackFunc
	cancel   func() error
}

type fakeHandler struct {
	prefix  enc.Name
	handler ndn.InterestHandler
}

// fakeEngine is an ndn.Engine on a fakeNet.
type fakeEngine struct {
	net *fakeNet

	mutex     sync.Mutex
	handlers  []fakeHandler
	pit       []*fakePit
	expressed []*ndn.Interest
	puts      [][]byte
	routes    []enc.Name

	// sendErr makes Express fail after the PIT entry is added
	sendErr error
}

func (e *fakeEngine) String() string   { return "fake-engine" }
func (e *fakeEngine) Timer() ndn.Timer { return e.net.timer }
func (e *fakeEngine) Start() error     { return nil }
func (e *fakeEngine) Stop() error      { return nil }
func (e *fakeEngine) IsRunning() bool  { return true }
func (e *fakeEngine) Post(task func()) { e.net.post(task) }

func (e *fakeEngine) AttachHandler(prefix enc.Name, handler ndn.InterestHandler) error {
	e.mutex.Lock()
	defer e.mutex.Unlock()
	for _, h := range e.handlers {
		if h.prefix.Equal(prefix) {
			return ndn.ErrMultipleHandlers
		}
	}
	e.handlers = append(e.handlers, fakeHandler{prefix: prefix, handler: handler})
	return nil
}

func (e *fakeEngine) DetachHandler(prefix enc.Name) error {
	e.mutex.Lock()
	defer e.mutex.Unlock()
	for i, h := range e.handlers {
		if h.prefix.Equal(prefix) {
			e.handlers = append(e.handlers[:i], e.handlers[i+1:]...)
			return nil
		}
	}
	return ndn.ErrNotFound
}

func (e *fakeEngine) handler(name enc.Name) ndn.InterestHandler {
	e.mutex.Lock()
	defer e.mutex.Unlock()
	var best *fakeHandler
	for i, h := range e.handlers {
		if h.prefix.IsPrefix(name) && (best == nil || len(h.prefix) > len(best.prefix)) {
			best = &e.handlers[i]
		}
	}
	if best == nil {
		return nil
	}
	return best.handler
}

func (e *fakeEngine) Express(interest *ndn.Interest, callback ndn.ExpressCallbackFunc) error {
	if callback == nil {
		callback = func(ndn.ExpressCallbackArgs) {}
	}
	entry := &fakePit{interest: interest, callback: callback}
	e.mutex.Lock()
	e.pit = append(e.pit, entry)
	e.expressed = append(e.expressed, interest)
	e.mutex.Unlock()

	entry.cancel = e.net.timer.Schedule(interest.LifetimeOrDefault(), func() {
		if e.takePit(entry) {
			callback(ndn.ExpressCallbackArgs{
				Result: ndn.InterestResultTimeout,
				Error:  ndn.ErrDeadlineExceed,
			})
		}
	})
	if e.sendErr != nil {
		return e.sendErr
	}
	e.net.post(func() { e.net.deliverInterest(e, interest) })
	return nil
}

func (e *fakeEngine) takePit(entry *fakePit) bool {
	e.mutex.Lock()
	defer e.mutex.Unlock()
	for i, p := range e.pit {
		if p == entry {
			e.pit = append(e.pit[:i], e.pit[i+1:]...)
			return true
		}
	}
	return false
}

func (e *fakeEngine) Put(wire []byte) error {
	e.mutex.Lock()
	e.puts = append(e.puts, wire)
	e.mutex.Unlock()

	e.net.post(func() {
		for _, other := range e.net.others(e) {
			other.onData(wire)
		}
	})
	return nil
}

func (e *fakeEngine) onData(wire []byte) {
	data, sp, err := spec.DecodeData(wire)
	if err != nil {
		return
	}

	e.mutex.Lock()
	var matched []*fakePit
	rest := e.pit[:0]
	for _, p := range e.pit {
		if p.interest.MatchesName(data.Name) {
			matched = append(matched, p)
		} else {
			rest = append(rest, p)
		}
	}
	e.pit = rest
	e.mutex.Unlock()

	for _, p := range matched {
		p.cancel()
		p.callback(ndn.ExpressCallbackArgs{
			Result:     ndn.InterestResultData,
			Data:       data,
			RawData:    wire,
			SigCovered: wire[sp.Begin:sp.End],
		})
	}
}

func (e *fakeEngine) RegisterRoute(prefix enc.Name) error {
	e.mutex.Lock()
	defer e.mutex.Unlock()
	e.routes = append(e.routes, prefix)
	return nil
}

func (e *fakeEngine) UnregisterRoute(enc.Name) error {
	return nil
}

func (e *fakeEngine) putCount() int {
	e.mutex.Lock()
	defer e.mutex.Unlock()
	return len(e.puts)
}

func (e *fakeEngine) expressedCount() int {
	e.mutex.Lock()
	defer e.mutex.Unlock()
	return len(e.expressed)
}

func (e *fakeEngine) routeCount() int {
	e.mutex.Lock()
	defer e.mutex.Unlock()
	return len(e.routes)
}
