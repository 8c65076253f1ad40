package psync

import (
	"sync"
	"time"

	enc "github.com/named-data/ndn-cpp-sub004/std/encoding"
	"github.com/named-data/ndn-cpp-sub004/std/log"
	"github.com/named-data/ndn-cpp-sub004/std/ndn"
	"github.com/named-data/ndn-cpp-sub004/std/ndn/spec"
)

// DefaultSegmentSize leaves room for the name and signature of a segment.
const DefaultSegmentSize = ndn.MaxNDNPacketSize / 2

// SegmentPublisher splits sync replies into segments named
// <dataName>/<version>/<segment>, keeps them in a Store for the freshness
// period, and answers repeated Interests from there.
type SegmentPublisher struct {
	engine ndn.Engine
	store  ndn.Store
	signer ndn.Signer

	WireFormat  spec.WireFormat
	SegmentSize int

	mutex       sync.Mutex
	lastVersion uint64
}

func NewSegmentPublisher(engine ndn.Engine, store ndn.Store, signer ndn.Signer) *SegmentPublisher {
	return &SegmentPublisher{
		engine:      engine,
		store:       store,
		signer:      signer,
		WireFormat:  spec.DefaultWireFormat(),
		SegmentSize: DefaultSegmentSize,
	}
}

func (p *SegmentPublisher) String() string {
	return "psync-segment-publisher"
}

// nextVersion returns the current time in milliseconds, or one more than
// the last version if the clock has not moved past it.
func (p *SegmentPublisher) nextVersion() uint64 {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	version := uint64(p.engine.Timer().Now().UnixMilli())
	if version <= p.lastVersion {
		version = p.lastVersion + 1
	}
	p.lastVersion = version
	return version
}

// Publish segments content under dataName, stores every segment and sends
// the one interestName asks for: the segment it names, or segment 0.
// The segments are removed from the store after freshness.
func (p *SegmentPublisher) Publish(interestName, dataName enc.Name, content []byte, freshness time.Duration) error {
	timer := p.engine.Timer()
	version := p.nextVersion()

	lastSeg := 0
	if len(content) > 0 {
		lastSeg = (len(content) - 1) / p.SegmentSize
	}
	finalBlockId := enc.NewSegmentComponent(uint64(lastSeg))
	requested := uint64(0)
	if len(interestName) > len(dataName) {
		if seg, err := interestName.At(-1).ToSegment(); err == nil {
			requested = seg
		}
	}

	basename := dataName.Append(enc.NewVersionComponent(version))

	tx, err := p.store.Begin()
	if err != nil {
		return err
	}
	var reply []byte
	for seg := 0; seg <= lastSeg; seg++ {
		name := basename.Append(enc.NewSegmentComponent(uint64(seg)))
		segContent := content[min(seg*p.SegmentSize, len(content)):min((seg+1)*p.SegmentSize, len(content))]

		data := &ndn.Data{
			Name:    name,
			Content: segContent,
		}
		data.MetaInfo.FreshnessPeriod.Set(freshness)
		data.MetaInfo.FinalBlockID.Set(finalBlockId)

		encoded, err := p.WireFormat.MakeData(data, p.signer)
		if err != nil {
			tx.Rollback()
			return err
		}
		if err = tx.Put(name, encoded.Wire); err != nil {
			tx.Rollback()
			return err
		}
		if uint64(seg) == requested {
			reply = encoded.Wire
		}
	}
	if err = tx.Commit(); err != nil {
		return err
	}

	timer.Schedule(freshness, func() {
		if err := p.store.RemovePrefix(basename); err != nil {
			log.Warn(p, "Failed to remove expired segments", "name", basename, "err", err)
		}
	})

	if reply == nil {
		log.Debug(p, "Requested segment out of range", "name", interestName, "last", lastSeg)
		return nil
	}
	return p.engine.Put(reply)
}

// ReplyFromStore sends the stored segment matching interestName, if any,
// and reports whether it did.
func (p *SegmentPublisher) ReplyFromStore(interestName enc.Name) bool {
	wire, err := p.store.Get(interestName, true)
	if err != nil {
		log.Warn(p, "Store lookup failed", "name", interestName, "err", err)
		return false
	}
	if wire == nil {
		return false
	}
	if err = p.engine.Put(wire); err != nil {
		log.Warn(p, "Failed to send stored segment", "name", interestName, "err", err)
	}
	return true
}
