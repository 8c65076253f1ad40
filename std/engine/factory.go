package engine

import (
	"fmt"
	"net/url"

	"github.com/named-data/ndn-cpp-sub004/std/engine/basic"
	"github.com/named-data/ndn-cpp-sub004/std/engine/face"
	"github.com/named-data/ndn-cpp-sub004/std/ndn"
)

// NewBasicEngine creates an engine on the wall clock.
func NewBasicEngine(face ndn.Face) *basic.Engine {
	return basic.NewEngine(face, basic.NewTimer())
}

func NewUnixFace(addr string) ndn.Face {
	return face.NewStreamFace("unix", addr, true)
}

// NewFace creates a face from a transport URI. Supported schemes are
// unix, tcp, tcp4, tcp6, ws and wss.
func NewFace(transportUri string) (ndn.Face, error) {
	uri, err := url.Parse(transportUri)
	if err != nil {
		return nil, fmt.Errorf("failed to parse transport URI %s: %w", transportUri, err)
	}

	switch uri.Scheme {
	case "unix":
		return NewUnixFace(uri.Path), nil
	case "tcp", "tcp4", "tcp6":
		return face.NewStreamFace(uri.Scheme, uri.Host, false), nil
	case "ws", "wss":
		return face.NewWebSocketFace(uri.String(), false), nil
	default:
		return nil, fmt.Errorf("unsupported transport URI: %s", transportUri)
	}
}

// NewDefaultFace creates the face named by the client configuration.
func NewDefaultFace() (ndn.Face, error) {
	return NewFace(GetClientConfig().TransportUri)
}
