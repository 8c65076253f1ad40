package storage

import (
	"sync"

	enc "github.com/named-data/ndn-cpp-sub004/std/encoding"
	"github.com/named-data/ndn-cpp-sub004/std/ndn"
)

// MemoryStore is a name trie of Data wires.
type MemoryStore struct {
	// root of the store
	root *memoryStoreNode
	// thread safety
	mutex sync.RWMutex

	// active transaction
	tx *memoryStoreNode
	// transaction mutex
	txMutex sync.Mutex
}

type memoryStoreNode struct {
	children map[string]*memoryStoreNode
	wire     []byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		root: &memoryStoreNode{},
	}
}

func componentKey(c enc.Component) string {
	return string(c.Bytes())
}

func (s *MemoryStore) Get(name enc.Name, prefix bool) ([]byte, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	if node := s.root.find(name); node != nil {
		if node.wire == nil && prefix {
			node = node.findNewest()
		}
		return node.wire, nil
	}
	return nil, nil
}

func (s *MemoryStore) Put(name enc.Name, wire []byte) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	root := s.root
	if s.tx != nil {
		root = s.tx
	}
	root.insert(name, wire)
	return nil
}

func (s *MemoryStore) Remove(name enc.Name) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.root.remove(name, false)
	return nil
}

func (s *MemoryStore) RemovePrefix(prefix enc.Name) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.root.remove(prefix, true)
	return nil
}

// Begin starts a transaction. Only one transaction runs at a time; others
// wait for Commit or Rollback.
func (s *MemoryStore) Begin() (ndn.Store, error) {
	s.txMutex.Lock()
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.tx = &memoryStoreNode{}
	return s, nil
}

func (s *MemoryStore) Commit() error {
	defer s.txMutex.Unlock()
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.root.merge(s.tx)
	s.tx = nil
	return nil
}

func (s *MemoryStore) Rollback() error {
	defer s.txMutex.Unlock()
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.tx = nil
	return nil
}

// MemSize is the total size of the stored wires.
func (s *MemoryStore) MemSize() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	size := 0
	s.root.walk(func(n *memoryStoreNode) { size += len(n.wire) })
	return size
}

func (n *memoryStoreNode) find(name enc.Name) *memoryStoreNode {
	for _, c := range name {
		if n = n.children[componentKey(c)]; n == nil {
			return nil
		}
	}
	return n
}

func (n *memoryStoreNode) findNewest() *memoryStoreNode {
	if len(n.children) == 0 {
		return n
	}

	newest := ""
	for key := range n.children {
		if key > newest {
			newest = key
		}
	}
	return n.children[newest].findNewest()
}

func (n *memoryStoreNode) insert(name enc.Name, wire []byte) {
	for _, c := range name {
		if n.children == nil {
			n.children = make(map[string]*memoryStoreNode)
		}
		key := componentKey(c)
		child := n.children[key]
		if child == nil {
			child = &memoryStoreNode{}
			n.children[key] = child
		}
		n = child
	}
	n.wire = wire
}

// remove returns true if the parent should prune this node.
func (n *memoryStoreNode) remove(name enc.Name, prefix bool) bool {
	if len(name) == 0 {
		n.wire = nil
		if prefix {
			n.children = nil
		}
		return len(n.children) == 0
	}

	key := componentKey(name[0])
	if child := n.children[key]; child != nil {
		if child.remove(name[1:], prefix) {
			delete(n.children, key)
		}
	}
	return n.wire == nil && len(n.children) == 0
}

func (n *memoryStoreNode) merge(tx *memoryStoreNode) {
	if tx.wire != nil {
		n.wire = tx.wire
	}
	for key, child := range tx.children {
		if n.children == nil {
			n.children = make(map[string]*memoryStoreNode)
		}
		if nchild := n.children[key]; nchild != nil {
			nchild.merge(child)
		} else {
			n.children[key] = child
		}
	}
}

func (n *memoryStoreNode) walk(f func(*memoryStoreNode)) {
	f(n)
	for _, child := range n.children {
		child.walk(f)
	}
}
