package psync

import (
	"slices"

	enc "github.com/named-data/ndn-cpp-sub004/std/encoding"
	"github.com/named-data/ndn-cpp-sub004/std/iblt"
	"github.com/twmb/murmur3"
)

// NameHash is the IBLT key of a name: MurmurHash3 (x86, 32 bit) of its URI
// with seed NumHashCheck.
func NameHash(name enc.Name) uint32 {
	return murmur3.SeedSum32(iblt.NumHashCheck, []byte(name.String()))
}

// ProducerBase keeps the local name set of a sync node together with its IBLT.
// It is not safe for concurrent use; FullProducer guards it with its lock.
type ProducerBase struct {
	iblt               *iblt.IBLT
	expectedNumEntries int
	threshold          int

	// keyed by the name URI
	nameToHash map[string]uint32
	hashToName map[uint32]enc.Name
}

// NewProducerBase creates an empty name set sized for expectedNumEntries differences.
func NewProducerBase(expectedNumEntries int) *ProducerBase {
	return &ProducerBase{
		iblt:               iblt.New(expectedNumEntries),
		expectedNumEntries: expectedNumEntries,
		threshold:          expectedNumEntries / 2,
		nameToHash:         make(map[string]uint32),
		hashToName:         make(map[uint32]enc.Name),
	}
}

// InsertIntoIblt adds name to the set. Inserting a known name is a no-op.
func (p *ProducerBase) InsertIntoIblt(name enc.Name) {
	key := name.String()
	if _, ok := p.nameToHash[key]; ok {
		return
	}
	hash := NameHash(name)
	p.nameToHash[key] = hash
	p.hashToName[hash] = name.Clone()
	p.iblt.Insert(hash)
}

// RemoveFromIblt removes name from the set. Unknown names are ignored.
func (p *ProducerBase) RemoveFromIblt(name enc.Name) {
	key := name.String()
	hash, ok := p.nameToHash[key]
	if !ok {
		return
	}
	delete(p.nameToHash, key)
	delete(p.hashToName, hash)
	p.iblt.Erase(hash)
}

func (p *ProducerBase) Has(name enc.Name) bool {
	_, ok := p.nameToHash[name.String()]
	return ok
}

// NameOf returns the name with the given hash, or nil.
func (p *ProducerBase) NameOf(hash uint32) enc.Name {
	return p.hashToName[hash]
}

func (p *ProducerBase) Iblt() *iblt.IBLT {
	return p.iblt
}

func (p *ProducerBase) ExpectedNumEntries() int {
	return p.expectedNumEntries
}

// Threshold is the difference size above which a peer is sent the full set.
func (p *ProducerBase) Threshold() int {
	return p.threshold
}

func (p *ProducerBase) Len() int {
	return len(p.nameToHash)
}

// Names returns the set in canonical name order.
func (p *ProducerBase) Names() []enc.Name {
	names := make([]enc.Name, 0, len(p.hashToName))
	for _, name := range p.hashToName {
		names = append(names, name)
	}
	slices.SortFunc(names, enc.Name.Compare)
	return names
}
