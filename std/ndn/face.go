package ndn

// Face is a link to a forwarder that carries whole TLV packets.
type Face interface {
	// String returns the log identifier.
	String() string
	IsRunning() bool
	// IsLocal is true for faces that reach a forwarder on the same host.
	IsLocal() bool
	// OnPacket sets the receive callback. Only engines call it.
	OnPacket(onPkt func(frame []byte))
	// OnError sets the callback for fatal errors. The engine stops on error.
	OnError(onError func(err error))

	// Open starts the face and may block until it is up.
	Open() error
	Close() error
	Send(pkt []byte) error
}
