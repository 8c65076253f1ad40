package basic

import (
	enc "github.com/named-data/ndn-cpp-sub004/std/encoding"
)

// NameTrie is a trie of name components. Every node is itself a trie rooted
// at its name, and carries a value of type V. The zero value of V means "no
// value" to the pruning helpers.
type NameTrie[V any] struct {
	val V
	key string
	par *NameTrie[V]
	dep int
	chd map[string]*NameTrie[V]
}

// NewNameTrie creates an empty trie, which is the node of the empty name.
func NewNameTrie[V any]() *NameTrie[V] {
	return &NameTrie[V]{chd: map[string]*NameTrie[V]{}}
}

func componentKey(c enc.Component) string {
	return string(c.Bytes())
}

// Value returns the value of the node.
func (n *NameTrie[V]) Value() V {
	return n.val
}

// SetValue sets the value of the node.
func (n *NameTrie[V]) SetValue(value V) {
	n.val = value
}

// Parent returns the parent node, or nil for the root.
func (n *NameTrie[V]) Parent() *NameTrie[V] {
	return n.par
}

// Depth is the number of components of the node's name.
func (n *NameTrie[V]) Depth() int {
	return n.dep
}

// HasChildren reports whether the node has children.
func (n *NameTrie[V]) HasChildren() bool {
	return len(n.chd) > 0
}

// ExactMatch returns the node of name, or nil.
func (n *NameTrie[V]) ExactMatch(name enc.Name) *NameTrie[V] {
	cur := n
	for _, c := range name {
		cur = cur.chd[componentKey(c)]
		if cur == nil {
			return nil
		}
	}
	return cur
}

// PrefixMatch returns the deepest existing node on the path of name.
// It never returns nil.
func (n *NameTrie[V]) PrefixMatch(name enc.Name) *NameTrie[V] {
	cur := n
	for _, c := range name {
		next := cur.chd[componentKey(c)]
		if next == nil {
			break
		}
		cur = next
	}
	return cur
}

// MatchAlways returns the node of name, creating it and any missing
// ancestors.
func (n *NameTrie[V]) MatchAlways(name enc.Name) *NameTrie[V] {
	cur := n
	for _, c := range name {
		key := componentKey(c)
		next := cur.chd[key]
		if next == nil {
			next = &NameTrie[V]{
				key: key,
				par: cur,
				dep: cur.dep + 1,
				chd: map[string]*NameTrie[V]{},
			}
			cur.chd[key] = next
		}
		cur = next
	}
	return cur
}

// Prune removes the node with its subtree, then every ancestor left without
// children, whatever their values. The root is never removed.
func (n *NameTrie[V]) Prune() {
	for cur := n; cur.par != nil; cur = cur.par {
		delete(cur.par.chd, cur.key)
		if cur.par.HasChildren() {
			return
		}
	}
}

// PruneIf removes the node if it is a leaf whose value satisfies pred, then
// does the same for its ancestors. The root is never removed.
func (n *NameTrie[V]) PruneIf(pred func(V) bool) {
	for cur := n; cur.par != nil; cur = cur.par {
		if cur.HasChildren() || !pred(cur.val) {
			return
		}
		delete(cur.par.chd, cur.key)
	}
}
