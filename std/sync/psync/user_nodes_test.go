package psync_test

import (
	"testing"
	"time"

	"github.com/named-data/ndn-cpp-sub004/std/ndn"
	"github.com/named-data/ndn-cpp-sub004/std/sync/psync"
	"github.com/named-data/ndn-cpp-sub004/std/types/optional"
	tu "github.com/named-data/ndn-cpp-sub004/std/utils/testutils"
	"github.com/stretchr/testify/require"
)

type userTestNode struct {
	*psync.UserNodes
	missing []psync.MissingDataInfo
}

func newUserTestNode(net *fakeNet) *userTestNode {
	node := &userTestNode{}
	node.UserNodes = psync.NewUserNodes(psync.FullProducerOpts{
		Engine:             net.newEngine(),
		SyncPrefix:         syncPrefix,
		ExpectedNumEntries: 40,
	}, func(infos []psync.MissingDataInfo) {
		node.missing = append(node.missing, infos...)
	})
	return node
}

func requireSeq(t *testing.T, node *userTestNode, prefix string, want uint64) {
	seq, ok := node.SeqNo(name(prefix))
	require.True(t, ok)
	require.Equal(t, want, seq)
}

func TestSequenceName(t *testing.T) {
	tu.SetT(t)

	n := psync.SequenceName(name("/user/a"), 258)
	require.Equal(t, "/user/a/%01%02", n.String())
}

func TestUserNodesPublish(t *testing.T) {
	tu.SetT(t)

	net := newFakeNet()
	a := newUserTestNode(net)
	prefix := name("/user/a")

	require.Error(t, a.PublishName(prefix, optional.None[uint64]()))
	require.True(t, a.AddUserNode(prefix))
	require.False(t, a.AddUserNode(prefix))

	require.NoError(t, a.PublishName(prefix, optional.None[uint64]()))
	require.NoError(t, a.PublishName(prefix, optional.None[uint64]()))
	requireSeq(t, a, "/user/a", 2)
	requireNames(t, []string{"/user/a/%02"}, a.Producer().Names())

	// older sequence numbers are ignored
	require.NoError(t, a.PublishName(prefix, optional.Some[uint64](1)))
	requireSeq(t, a, "/user/a", 2)

	require.NoError(t, a.PublishName(prefix, optional.Some[uint64](10)))
	requireNames(t, []string{"/user/a/%0A"}, a.Producer().Names())

	a.RemoveUserNode(prefix)
	require.Empty(t, a.Producer().Names())
	require.Empty(t, a.Prefixes())
}

func TestUserNodesSync(t *testing.T) {
	tu.SetT(t)

	net := newFakeNet()
	a := newUserTestNode(net)
	b := newUserTestNode(net)
	prefixA := name("/user/a")
	prefixB := name("/user/b")
	require.True(t, a.AddUserNode(prefixA))
	require.True(t, b.AddUserNode(prefixB))
	require.NoError(t, a.Start())
	require.NoError(t, b.Start())
	net.flush()

	require.NoError(t, a.PublishName(prefixA, optional.None[uint64]()))
	net.advance(time.Second)
	require.Equal(t, []psync.MissingDataInfo{{Prefix: prefixA, LowSeq: 1, HighSeq: 1}}, b.missing)

	// a jump replaces the old name on both sides
	require.NoError(t, a.PublishName(prefixA, optional.Some[uint64](4)))
	require.NoError(t, b.PublishName(prefixB, optional.None[uint64]()))
	net.advance(2 * time.Second)

	require.Equal(t, []psync.MissingDataInfo{
		{Prefix: prefixA, LowSeq: 1, HighSeq: 1},
		{Prefix: prefixA, LowSeq: 2, HighSeq: 4},
	}, b.missing)
	require.Equal(t, []psync.MissingDataInfo{{Prefix: prefixB, LowSeq: 1, HighSeq: 1}}, a.missing)

	requireSeq(t, b, "/user/a", 4)
	requireSeq(t, a, "/user/b", 1)
	requireNames(t, []string{"/user/a/%04", "/user/b/%01"}, a.Producer().Names())
	requireNames(t, []string{"/user/a/%04", "/user/b/%01"}, b.Producer().Names())
	requireNames(t, []string{"/user/a", "/user/b"}, b.Prefixes())
}

func TestUserNodesHoldBackSuperseded(t *testing.T) {
	tu.SetT(t)

	net := newFakeNet()
	a := newUserTestNode(net)
	prefix := name("/user/a")
	require.True(t, a.AddUserNode(prefix))
	require.NoError(t, a.PublishName(prefix, optional.None[uint64]()))
	require.NoError(t, a.PublishName(prefix, optional.None[uint64]()))
	peer := net.newEngine()
	require.NoError(t, a.Start())
	net.flush()

	// the peer already has /user/a/3, newer than our /user/a/2
	table := psync.NewProducerBase(40)
	table.InsertIntoIblt(psync.SequenceName(prefix, 3))
	var replies int
	syncInterest(peer, table.Iblt(), func(*ndn.Data) { replies++ })
	net.flush()

	require.Equal(t, 0, replies)
	require.Equal(t, 1, a.Producer().PendingCount())
}
