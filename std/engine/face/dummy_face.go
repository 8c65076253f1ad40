package face

import (
	"errors"
	"sync"
	"time"
)

// DummyFace is a face for tests. Sent packets are queued for Consume and
// FeedPacket injects received packets.
type DummyFace struct {
	baseFace
	lock     sync.Mutex
	sendPkts [][]byte
}

func NewDummyFace() *DummyFace {
	return &DummyFace{
		baseFace: newBaseFace(true),
		sendPkts: make([][]byte, 0),
	}
}

func (f *DummyFace) String() string {
	return "dummy-face"
}

func (f *DummyFace) Open() error {
	if err := f.checkOpen(); err != nil {
		return err
	}
	f.running.Store(true)
	return nil
}

func (f *DummyFace) Close() error {
	if !f.setStateClosed() {
		return errNotRunning
	}
	return nil
}

func (f *DummyFace) Send(pkt []byte) error {
	if !f.IsRunning() {
		return errNotRunning
	}
	f.lock.Lock()
	defer f.lock.Unlock()
	f.sendPkts = append(f.sendPkts, append([]byte{}, pkt...))
	return nil
}

// FeedPacket feeds a packet for the engine to consume
func (f *DummyFace) FeedPacket(pkt []byte) error {
	if !f.IsRunning() {
		return errNotRunning
	}
	f.onPkt(pkt)

	// hack: yield to give engine time to process the packet
	time.Sleep(10 * time.Millisecond)
	return nil
}

// Consume consumes a packet from the engine
func (f *DummyFace) Consume() ([]byte, error) {
	if !f.IsRunning() {
		return nil, errNotRunning
	}

	// hack: yield to wait for packet to arrive
	time.Sleep(10 * time.Millisecond)

	f.lock.Lock()
	defer f.lock.Unlock()
	if len(f.sendPkts) == 0 {
		return nil, errors.New("no packet to consume")
	}
	pkt := f.sendPkts[0]
	f.sendPkts = f.sendPkts[1:]
	return pkt, nil
}
