package psync

import (
	"fmt"
	"slices"

	enc "github.com/named-data/ndn-cpp-sub004/std/encoding"
	"github.com/named-data/ndn-cpp-sub004/std/log"
	"github.com/named-data/ndn-cpp-sub004/std/types/optional"
)

// MissingDataInfo tells the application which sequence numbers of a user
// node it has not seen yet.
type MissingDataInfo struct {
	Prefix  enc.Name
	LowSeq  uint64
	HighSeq uint64
}

// UserNodes runs full sync over user nodes, each publishing a sequence of
// names <prefix>/<seq>. Only the latest name of each node is kept in the
// sync set; a newer sequence number replaces the older name.
type UserNodes struct {
	p        *FullProducer
	onUpdate func([]MissingDataInfo)

	// guarded by p.mutex
	nodes   map[string]*userNode
	missing map[string]MissingDataInfo
}

type userNode struct {
	prefix enc.Name
	seq    uint64
}

// NewUserNodes creates the producer for opts. The name hooks of opts are
// replaced by the sequence number bookkeeping.
func NewUserNodes(opts FullProducerOpts, onUpdate func([]MissingDataInfo)) *UserNodes {
	u := &UserNodes{
		onUpdate: onUpdate,
		nodes:    make(map[string]*userNode),
		missing:  make(map[string]MissingDataInfo),
	}
	opts.CanAddToSyncData = u.canAddToSyncData
	opts.CanAddReceivedName = u.canAddReceivedName
	opts.OnNamesUpdate = u.onNamesUpdate
	u.p = NewFullProducer(opts)
	return u
}

func (u *UserNodes) String() string {
	return u.p.String()
}

func (u *UserNodes) Producer() *FullProducer {
	return u.p
}

func (u *UserNodes) Start() error {
	return u.p.Start()
}

func (u *UserNodes) Stop() error {
	return u.p.Stop()
}

// SequenceName is the sync name of seq published by prefix.
func SequenceName(prefix enc.Name, seq uint64) enc.Name {
	return prefix.Append(enc.NewNumberComponent(enc.TypeGenericNameComponent, seq))
}

func splitSequenceName(name enc.Name) (enc.Name, uint64, bool) {
	if len(name) == 0 {
		return nil, 0, false
	}
	last := name.At(-1)
	if last.Typ != enc.TypeGenericNameComponent {
		return nil, 0, false
	}
	switch len(last.Val) {
	case 1, 2, 4, 8:
	default:
		return nil, 0, false
	}
	return name.Prefix(-1), last.ToNumber(), true
}

// AddUserNode starts tracking prefix at sequence number 0.
// It reports false if prefix is already known.
func (u *UserNodes) AddUserNode(prefix enc.Name) bool {
	u.p.mutex.Lock()
	defer u.p.mutex.Unlock()

	key := prefix.String()
	if _, ok := u.nodes[key]; ok {
		return false
	}
	u.nodes[key] = &userNode{prefix: prefix.Clone()}
	return true
}

// RemoveUserNode stops tracking prefix and drops its name from the sync set.
func (u *UserNodes) RemoveUserNode(prefix enc.Name) {
	u.p.mutex.Lock()
	defer u.p.mutex.Unlock()

	key := prefix.String()
	node, ok := u.nodes[key]
	if !ok {
		return
	}
	if node.seq > 0 {
		u.p.base.RemoveFromIblt(SequenceName(node.prefix, node.seq))
	}
	delete(u.nodes, key)
}

// SeqNo returns the latest sequence number known for prefix.
func (u *UserNodes) SeqNo(prefix enc.Name) (uint64, bool) {
	u.p.mutex.Lock()
	defer u.p.mutex.Unlock()

	node, ok := u.nodes[prefix.String()]
	if !ok {
		return 0, false
	}
	return node.seq, true
}

// Prefixes returns the tracked user node prefixes in canonical order.
func (u *UserNodes) Prefixes() []enc.Name {
	u.p.mutex.Lock()
	defer u.p.mutex.Unlock()

	prefixes := make([]enc.Name, 0, len(u.nodes))
	for _, node := range u.nodes {
		prefixes = append(prefixes, node.prefix)
	}
	slices.SortFunc(prefixes, enc.Name.Compare)
	return prefixes
}

// PublishName publishes seq for prefix, or the next sequence number if seq
// is not set. prefix must have been added with AddUserNode.
func (u *UserNodes) PublishName(prefix enc.Name, seq optional.Optional[uint64]) error {
	u.p.mutex.Lock()
	defer u.p.mutex.Unlock()

	node, ok := u.nodes[prefix.String()]
	if !ok {
		return fmt.Errorf("user node %s is not added", prefix)
	}
	newSeq := seq.GetOr(node.seq + 1)
	if newSeq <= node.seq {
		log.Debug(u, "Sequence number is not newer, ignoring", "prefix", prefix, "seq", newSeq, "current", node.seq)
		return nil
	}
	if node.seq > 0 {
		u.p.base.RemoveFromIblt(SequenceName(node.prefix, node.seq))
	}
	node.seq = newSeq
	u.p.publishName(SequenceName(node.prefix, newSeq))
	return nil
}

// canAddToSyncData holds back prefix/seq if the peer already has prefix/seq+1.
func (u *UserNodes) canAddToSyncData(name enc.Name, negative []uint32) bool {
	prefix, seq, ok := splitSequenceName(name)
	if !ok {
		return true
	}
	_, found := slices.BinarySearch(negative, NameHash(SequenceName(prefix, seq+1)))
	return !found
}

// canAddReceivedName accepts a name newer than what is known for its prefix
// and drops the name it replaces. Runs with p.mutex held.
func (u *UserNodes) canAddReceivedName(name enc.Name) bool {
	prefix, seq, ok := splitSequenceName(name)
	if !ok {
		return false
	}

	key := prefix.String()
	node, known := u.nodes[key]
	if !known {
		node = &userNode{prefix: prefix.Clone()}
		u.nodes[key] = node
	}
	if seq <= node.seq {
		return false
	}
	if node.seq > 0 {
		u.p.base.RemoveFromIblt(SequenceName(node.prefix, node.seq))
	}
	u.missing[name.String()] = MissingDataInfo{
		Prefix:  node.prefix,
		LowSeq:  node.seq + 1,
		HighSeq: seq,
	}
	node.seq = seq
	return true
}

func (u *UserNodes) onNamesUpdate(names []enc.Name) {
	u.p.mutex.Lock()
	infos := make([]MissingDataInfo, 0, len(names))
	for _, name := range names {
		key := name.String()
		if info, ok := u.missing[key]; ok {
			infos = append(infos, info)
			delete(u.missing, key)
		}
	}
	u.p.mutex.Unlock()

	if len(infos) > 0 && u.onUpdate != nil {
		u.onUpdate(infos)
	}
}
