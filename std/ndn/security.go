package ndn

import (
	enc "github.com/named-data/ndn-cpp-sub004/std/encoding"
)

// Signer produces the SignatureValue over the signed portion of a packet.
type Signer interface {
	// Type is the SignatureType written into SignatureInfo.
	Type() SigType
	// KeyName goes into the KeyLocator; nil means no KeyLocator.
	KeyName() enc.Name
	// EstimateSize is an upper bound of the signature size in bytes.
	EstimateSize() uint
	// Sign computes the signature of the signed portion.
	Sign(covered []byte) ([]byte, error)
}

// Validator decides whether a received Data is acceptable.
// covered is the exact signed portion of the received wire.
type Validator func(data *Data, covered []byte) bool
