// Package psync implements PSync full synchronization: every node in a sync
// group learns the full set of names published by the others. Nodes exchange
// their name sets as IBLTs in sync Interest names and answer with the names
// a peer is missing.
package psync

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	enc "github.com/named-data/ndn-cpp-sub004/std/encoding"
	"github.com/named-data/ndn-cpp-sub004/std/iblt"
	"github.com/named-data/ndn-cpp-sub004/std/log"
	"github.com/named-data/ndn-cpp-sub004/std/ndn"
	"github.com/named-data/ndn-cpp-sub004/std/object/storage"
	sig "github.com/named-data/ndn-cpp-sub004/std/security/signer"
)

const (
	DefaultExpectedNumEntries   = 80
	DefaultSyncInterestLifetime = time.Second
	DefaultSyncReplyFreshness   = time.Second
)

type FullProducerOpts struct {
	// Engine is the transport, required.
	Engine ndn.Engine
	// SyncPrefix is the sync group prefix, required.
	SyncPrefix enc.Name

	ExpectedNumEntries   int
	SyncInterestLifetime time.Duration
	SyncReplyFreshness   time.Duration

	// OnNamesUpdate receives the new names learned from a sync reply.
	// It is called without any lock held.
	OnNamesUpdate func(names []enc.Name)
	// CanAddToSyncData decides whether a name the peer lacks goes into a
	// reply. negative holds, in ascending order, the hashes the peer has and
	// this node lacks.
	CanAddToSyncData func(name enc.Name, negative []uint32) bool
	// CanAddReceivedName decides whether a received name is accepted.
	CanAddReceivedName func(name enc.Name) bool

	// Signer signs sync replies. Defaults to DigestSha256.
	Signer ndn.Signer
	// Validator checks sync reply segments. Defaults to DigestSha256 validation.
	Validator ndn.Validator
	// Store holds published segments. Defaults to a MemoryStore.
	Store ndn.Store
	// Metrics defaults to unregistered collectors.
	Metrics *Metrics
}

// FullProducer is a PSync full sync node.
type FullProducer struct {
	o FullProducerOpts

	mutex   sync.Mutex
	running bool
	base    *ProducerBase
	pending map[string]*pendingEntry

	publisher *SegmentPublisher
	fetcher   *SegmentFetcher

	// name of our outstanding sync Interest
	outstanding enc.Name
	fetch       *Fetch
	fetchGen    uint64
	retryCancel func() error
	retryGen    uint64
}

// pendingEntry is a sync Interest that could not be answered yet.
type pendingEntry struct {
	name    enc.Name
	iblt    *iblt.IBLT
	cancel  func() error
	removed bool
}

// NewFullProducer creates a FullProducer. It does nothing until Start.
func NewFullProducer(opts FullProducerOpts) *FullProducer {
	if opts.Engine == nil {
		panic("FullProducer: Engine is required")
	}
	if len(opts.SyncPrefix) == 0 {
		panic("FullProducer: SyncPrefix is required")
	}

	if opts.ExpectedNumEntries == 0 {
		opts.ExpectedNumEntries = DefaultExpectedNumEntries
	}
	if opts.SyncInterestLifetime == 0 {
		opts.SyncInterestLifetime = DefaultSyncInterestLifetime
	}
	if opts.SyncReplyFreshness == 0 {
		opts.SyncReplyFreshness = DefaultSyncReplyFreshness
	}
	if opts.Signer == nil {
		opts.Signer = sig.NewSha256Signer()
	}
	if opts.Validator == nil {
		opts.Validator = sig.DigestValidator
	}
	if opts.Store == nil {
		opts.Store = storage.NewMemoryStore()
	}
	if opts.Metrics == nil {
		opts.Metrics = NewMetrics(nil)
	}

	opts.SyncPrefix = opts.SyncPrefix.Clone()

	fetcher := NewSegmentFetcher(opts.Engine)
	fetcher.Lifetime = opts.SyncInterestLifetime

	return &FullProducer{
		o:         opts,
		base:      NewProducerBase(opts.ExpectedNumEntries),
		pending:   make(map[string]*pendingEntry),
		publisher: NewSegmentPublisher(opts.Engine, opts.Store, opts.Signer),
		fetcher:   fetcher,
	}
}

func (p *FullProducer) String() string {
	return fmt.Sprintf("psync (%s)", p.o.SyncPrefix)
}

// Start attaches the sync Interest handler, registers the sync prefix in
// the background and sends the first sync Interest.
func (p *FullProducer) Start() error {
	err := p.o.Engine.AttachHandler(p.o.SyncPrefix, p.onSyncInterest)
	if err != nil {
		return err
	}

	go func() {
		if err := p.o.Engine.RegisterRoute(p.o.SyncPrefix); err != nil {
			log.Warn(p, "Failed to register sync prefix", "err", err)
		}
	}()

	p.mutex.Lock()
	defer p.mutex.Unlock()
	p.running = true
	p.sendSyncInterest()
	return nil
}

// Stop cancels all timers and pending Interests and detaches the handler.
func (p *FullProducer) Stop() error {
	p.mutex.Lock()
	p.running = false
	p.retryGen++
	if p.retryCancel != nil {
		p.retryCancel()
		p.retryCancel = nil
	}
	if p.fetch != nil {
		p.fetch.Stop()
		p.fetch = nil
	}
	for key, e := range p.pending {
		p.removePending(key, e)
	}
	p.mutex.Unlock()

	return p.o.Engine.DetachHandler(p.o.SyncPrefix)
}

// PublishName adds a local name and answers the pending sync Interests that
// now have something to learn.
func (p *FullProducer) PublishName(name enc.Name) {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	p.publishName(name)
}

func (p *FullProducer) publishName(name enc.Name) {
	if p.base.Has(name) {
		log.Debug(p, "Name already published", "name", name)
		return
	}
	log.Info(p, "Publish", "name", name)
	p.base.InsertIntoIblt(name)
	p.o.Metrics.NamesPublished.Inc()
	p.satisfyPending()
}

// RemoveName drops a name from the local set. Peers are not told.
func (p *FullProducer) RemoveName(name enc.Name) {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	p.base.RemoveFromIblt(name)
}

// Names returns the known names in canonical order.
func (p *FullProducer) Names() []enc.Name {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return p.base.Names()
}

func (p *FullProducer) Has(name enc.Name) bool {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return p.base.Has(name)
}

// PendingCount is the number of sync Interests waiting for new names.
func (p *FullProducer) PendingCount() int {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return len(p.pending)
}

// jitter returns d shifted by up to 20% either way.
func jitter(d time.Duration) time.Duration {
	spread := int64(d) / 5
	if spread <= 0 {
		return d
	}
	return d + time.Duration(rand.Int63n(2*spread+1)-spread)
}

// scheduleRetry replaces the periodic sync Interest timer. Requires the lock.
func (p *FullProducer) scheduleRetry() {
	if p.retryCancel != nil {
		p.retryCancel()
	}
	p.retryGen++
	gen := p.retryGen
	p.retryCancel = p.o.Engine.Timer().Schedule(jitter(p.o.SyncInterestLifetime/2), func() {
		p.mutex.Lock()
		defer p.mutex.Unlock()
		if gen != p.retryGen {
			return
		}
		p.retryCancel = nil
		p.sendSyncInterest()
	})
}

// sendSyncInterest sends <syncPrefix>/<IBLT> and schedules the next one.
// Requires the lock.
func (p *FullProducer) sendSyncInterest() {
	if !p.running {
		return
	}
	if p.fetch != nil {
		p.fetch.Stop()
		p.fetch = nil
	}

	p.scheduleRetry()

	ibltWire, err := p.base.Iblt().Encode()
	if err != nil {
		log.Error(p, "Failed to encode IBLT", "err", err)
		return
	}
	name := p.o.SyncPrefix.Append(enc.NewGenericComponent(ibltWire))
	p.outstanding = name
	p.fetchGen++
	gen := p.fetchGen

	fetch, err := p.fetcher.Fetch(FetchArgs{
		Name:        name,
		MustBeFresh: true,
		Validator:   p.o.Validator,
		OnComplete: func(content []byte) {
			p.onSyncData(gen, content)
		},
		OnError: func(err error) {
			log.Debug(p, "Sync Interest failed", "err", err)
		},
	})
	if err != nil {
		log.Warn(p, "Failed to express sync Interest", "err", err)
		return
	}
	p.fetch = fetch
	p.o.Metrics.SyncInterestsSent.Inc()
	log.Trace(p, "Sync Interest sent", "names", p.base.Len())
}

func (p *FullProducer) onSyncInterest(args ndn.InterestHandlerArgs) {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	if !p.running {
		return
	}
	p.o.Metrics.SyncInterestsReceived.Inc()

	name := args.Interest.Name
	if p.publisher.ReplyFromStore(name) {
		return
	}

	// <syncPrefix>/<IBLT> or <syncPrefix>/<IBLT>/<version>/<segment>
	var ibltName enc.Name
	switch len(name) - len(p.o.SyncPrefix) {
	case 1:
		ibltName = name
	case 3:
		ibltName = name.Prefix(-2)
	default:
		log.Debug(p, "Ignoring malformed sync Interest", "name", name)
		return
	}

	peer, err := iblt.Decode(p.base.ExpectedNumEntries(), ibltName.At(-1).Val)
	if err != nil {
		log.Warn(p, "Cannot decode IBLT of sync Interest", "err", err)
		return
	}
	diff, err := p.base.Iblt().Difference(peer)
	if err != nil {
		log.Warn(p, "Peer IBLT has a different size", "err", err)
		return
	}

	pos, neg, ok := diff.ListEntries()
	if !ok {
		p.o.Metrics.DecodeFailures.Inc()
		if p.wantsFullSet(pos, neg) {
			log.Debug(p, "Difference cannot be decoded, sending all names", "pos", len(pos), "neg", len(neg))
			p.sendSyncData(name, ibltName, p.fullState())
			return
		}
		p.addPending(ibltName, peer, args.Interest.LifetimeOrDefault())
		return
	}

	state := p.positiveState(pos, neg)
	if len(state.Content) == 0 {
		p.addPending(ibltName, peer, args.Interest.LifetimeOrDefault())
		return
	}
	p.sendSyncData(name, ibltName, state)
}

// wantsFullSet reports whether an undecodable difference is answered with
// every name. An empty local set has nothing to send.
func (p *FullProducer) wantsFullSet(pos, neg []uint32) bool {
	if p.base.Len() == 0 {
		return false
	}
	return len(pos)+len(neg) >= p.base.Threshold() || (len(pos) == 0 && len(neg) == 0)
}

func (p *FullProducer) fullState() *State {
	return &State{Content: p.base.Names()}
}

// positiveState lists the names behind pos that are still known locally.
func (p *FullProducer) positiveState(pos, neg []uint32) *State {
	state := &State{}
	for _, hash := range pos {
		name := p.base.NameOf(hash)
		if name == nil {
			continue
		}
		if p.o.CanAddToSyncData != nil && !p.o.CanAddToSyncData(name, neg) {
			continue
		}
		state.AddContent(name)
	}
	return state
}

// addPending keeps a sync Interest until new names can answer it or its
// lifetime ends. Requires the lock.
func (p *FullProducer) addPending(name enc.Name, peer *iblt.IBLT, lifetime time.Duration) {
	key := name.String()
	if old, ok := p.pending[key]; ok {
		p.removePending(key, old)
	}

	e := &pendingEntry{name: name.Clone(), iblt: peer}
	e.cancel = p.o.Engine.Timer().Schedule(lifetime, func() {
		p.mutex.Lock()
		defer p.mutex.Unlock()
		if e.removed {
			return
		}
		log.Trace(p, "Pending sync Interest expired", "name", e.name)
		e.removed = true
		if p.pending[key] == e {
			delete(p.pending, key)
		}
		p.o.Metrics.PendingInterests.Set(float64(len(p.pending)))
	})
	p.pending[key] = e
	p.o.Metrics.PendingInterests.Set(float64(len(p.pending)))
	log.Trace(p, "Sync Interest pending", "count", len(p.pending))
}

// removePending requires the lock.
func (p *FullProducer) removePending(key string, e *pendingEntry) {
	if e.removed {
		return
	}
	e.removed = true
	e.cancel()
	if p.pending[key] == e {
		delete(p.pending, key)
	}
	p.o.Metrics.PendingInterests.Set(float64(len(p.pending)))
}

// satisfyPending answers every pending sync Interest that the current set
// can now answer. Requires the lock.
func (p *FullProducer) satisfyPending() {
	for key, e := range p.pending {
		diff, err := p.base.Iblt().Difference(e.iblt)
		if err != nil {
			continue
		}
		pos, neg, ok := diff.ListEntries()
		if !ok {
			if p.wantsFullSet(pos, neg) {
				p.removePending(key, e)
				p.sendSyncData(e.name, e.name, p.fullState())
			}
			continue
		}
		state := p.positiveState(pos, neg)
		if len(state.Content) > 0 {
			p.removePending(key, e)
			p.sendSyncData(e.name, e.name, state)
		}
	}
}

// sendSyncData publishes state as the reply to the sync Interest dataName.
// Requires the lock.
func (p *FullProducer) sendSyncData(interestName, dataName enc.Name, state *State) {
	// Replying to a peer that has our own IBLT. Our outstanding Interest
	// would be satisfied by this reply, so start a new one later instead.
	if dataName.Equal(p.outstanding) {
		if p.fetch != nil {
			p.fetch.Stop()
			p.fetch = nil
		}
		p.scheduleRetry()
	}

	err := p.publisher.Publish(interestName, dataName, state.Encode(), p.o.SyncReplyFreshness)
	if err != nil {
		log.Warn(p, "Failed to publish sync reply", "err", err)
		return
	}
	p.o.Metrics.SyncRepliesSent.Inc()
	log.Debug(p, "Sync reply sent", "names", len(state.Content))
}

func (p *FullProducer) onSyncData(gen uint64, content []byte) {
	updates := p.processSyncData(gen, content)
	if len(updates) > 0 && p.o.OnNamesUpdate != nil {
		p.o.OnNamesUpdate(updates)
	}
}

func (p *FullProducer) processSyncData(gen uint64, content []byte) []enc.Name {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	if !p.running || p.fetch == nil || gen != p.fetchGen {
		return nil
	}
	p.fetch = nil

	// peers with the same IBLT as our old one are answered by this reply
	if e, ok := p.pending[p.outstanding.String()]; ok {
		p.removePending(p.outstanding.String(), e)
	}

	state, err := DecodeState(content)
	if err != nil {
		log.Warn(p, "Malformed sync reply", "err", err)
		return nil
	}

	var updates []enc.Name
	for _, name := range state.Content {
		if p.base.Has(name) {
			continue
		}
		if p.o.CanAddReceivedName != nil && !p.o.CanAddReceivedName(name) {
			continue
		}
		p.base.InsertIntoIblt(name)
		updates = append(updates, name)
	}
	if len(updates) == 0 {
		// Same IBLT as before; a new Interest would get the same reply.
		log.Debug(p, "Sync reply has no new names")
		return nil
	}

	log.Info(p, "Names received", "count", len(updates))
	p.o.Metrics.NamesReceived.Add(float64(len(updates)))
	p.satisfyPending()
	p.sendSyncInterest()
	return updates
}
