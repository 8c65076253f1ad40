package engine_test

import (
	"strings"
	"testing"

	"github.com/named-data/ndn-cpp-sub004/std/engine"
	tu "github.com/named-data/ndn-cpp-sub004/std/utils/testutils"
	"github.com/stretchr/testify/require"
)

func TestReadClientConf(t *testing.T) {
	tu.SetT(t)

	config := engine.DefaultClientConfig()
	require.True(t, strings.HasPrefix(config.TransportUri, "unix://"))

	conf := "; comment\ntransport=tcp4://127.0.0.1:6363\n\nprotocol = ignored\n"
	require.NoError(t, config.ReadClientConf(strings.NewReader(conf)))
	require.Equal(t, "tcp4://127.0.0.1:6363", config.TransportUri)
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv(engine.EnvClientTransport, "ws://localhost:9696/ndn")
	require.Equal(t, "ws://localhost:9696/ndn", engine.GetClientConfig().TransportUri)
}

func TestNewFace(t *testing.T) {
	tu.SetT(t)

	f := tu.NoErr(engine.NewFace("unix:///run/nfd/nfd.sock"))
	require.True(t, f.IsLocal())
	require.False(t, f.IsRunning())

	f = tu.NoErr(engine.NewFace("tcp://127.0.0.1:6363"))
	require.False(t, f.IsLocal())

	f = tu.NoErr(engine.NewFace("wss://testbed.example.net/ws/"))
	require.False(t, f.IsLocal())

	tu.Err(engine.NewFace("udp://127.0.0.1:6363"))
	tu.Err(engine.NewFace("://"))

	require.NotNil(t, engine.NewBasicEngine(engine.NewUnixFace("/tmp/none.sock")))
}
