package basic_test

import (
	"testing"

	enc "github.com/named-data/ndn-cpp-sub004/std/encoding"
	"github.com/named-data/ndn-cpp-sub004/std/engine/basic"
	tu "github.com/named-data/ndn-cpp-sub004/std/utils/testutils"
	"github.com/stretchr/testify/require"
)

func TestBasicMatch(t *testing.T) {
	tu.SetT(t)

	var name enc.Name
	var n *basic.NameTrie[int]
	trie := basic.NewNameTrie[int]()

	// Empty match
	name = tu.NoErr(enc.NameFromStr("/a/b/c"))
	require.Nil(t, trie.ExactMatch(name))
	require.Equal(t, 0, trie.PrefixMatch(name).Depth())
	require.Equal(t, trie, trie.ExactMatch(enc.Name{}))

	// Create /a/b
	name = tu.NoErr(enc.NameFromStr("/a/b"))
	n = trie.MatchAlways(name)
	require.Equal(t, 2, n.Depth())
	n.SetValue(10)
	require.Equal(t, 10, n.Value())
	require.Equal(t, n, trie.MatchAlways(name))
	name = tu.NoErr(enc.NameFromStr("/a/b/c"))
	require.Equal(t, n, trie.PrefixMatch(name))
	require.Nil(t, trie.ExactMatch(name))

	// MatchAlways will create /a/b/c
	n = trie.MatchAlways(name)
	require.Equal(t, 3, n.Depth())
	require.Equal(t, 10, n.Parent().Value())

	// Prefix match can reach /a for /a/c
	name = tu.NoErr(enc.NameFromStr("/a/c"))
	require.Equal(t, 1, trie.PrefixMatch(name).Depth())
	trie.MatchAlways(name)

	// Typed components are distinct from generic ones
	require.Nil(t, trie.ExactMatch(tu.NoErr(enc.NameFromStr("/a/seg=0"))))

	// Remove /a/b/c will remove /a/b but not /a/c
	name = tu.NoErr(enc.NameFromStr("/a/b/c"))
	trie.ExactMatch(name).Prune()
	name = tu.NoErr(enc.NameFromStr("/a/b"))
	require.Nil(t, trie.ExactMatch(name))
	require.Equal(t, 1, trie.PrefixMatch(name).Depth())

	// Remove /a/c will remove everything except the root
	name = tu.NoErr(enc.NameFromStr("/a/c"))
	trie.ExactMatch(name).Prune()
	require.False(t, trie.HasChildren())
	trie.Prune()
}

func TestPruneIf(t *testing.T) {
	tu.SetT(t)

	trie := basic.NewNameTrie[int]()
	ab := trie.MatchAlways(tu.NoErr(enc.NameFromStr("/a/b")))
	ab.SetValue(10)
	abc := trie.MatchAlways(tu.NoErr(enc.NameFromStr("/a/b/c")))
	abd := trie.MatchAlways(tu.NoErr(enc.NameFromStr("/a/b/d")))
	efg := trie.MatchAlways(tu.NoErr(enc.NameFromStr("/e/f/g")))
	efg.SetValue(30)

	noValue := func(x int) bool { return x == 0 }

	// PruneIf /a/b/c will not remove /a/b
	abc.PruneIf(noValue)
	require.Nil(t, trie.ExactMatch(tu.NoErr(enc.NameFromStr("/a/b/c"))))
	require.Equal(t, ab, trie.ExactMatch(tu.NoErr(enc.NameFromStr("/a/b"))))

	// /a/b is kept while it has other children
	ab.SetValue(0)
	require.Equal(t, ab, trie.ExactMatch(tu.NoErr(enc.NameFromStr("/a/b"))))

	// Pruning the last child removes /a/b and /a
	abd.PruneIf(noValue)
	require.Nil(t, trie.ExactMatch(tu.NoErr(enc.NameFromStr("/a"))))

	// Prune /e/f should do nothing
	trie.ExactMatch(tu.NoErr(enc.NameFromStr("/e/f"))).PruneIf(noValue)
	require.Equal(t, efg, trie.ExactMatch(tu.NoErr(enc.NameFromStr("/e/f/g"))))

	// A node with a value is kept
	efg.PruneIf(noValue)
	require.Equal(t, efg, trie.ExactMatch(tu.NoErr(enc.NameFromStr("/e/f/g"))))
	efg.SetValue(0)
	efg.PruneIf(noValue)
	require.False(t, trie.HasChildren())
}
