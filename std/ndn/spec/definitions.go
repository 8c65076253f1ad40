// Package spec encodes and decodes NDN packets in the NDN-TLV wire format.
//
// Encoders report the signed portion of the packet as a pair of offsets into
// the produced buffer, and decoders report the same offsets into the buffer
// they were given. Signers and validators work on that byte range only.
package spec

import (
	enc "github.com/named-data/ndn-cpp-sub004/std/encoding"
)

// TLV types of the network layer packet format.
const (
	TypeInterest                  enc.TLNum = 0x05
	TypeData                      enc.TLNum = 0x06
	TypeName                      enc.TLNum = enc.TypeName
	TypeSelectors                 enc.TLNum = 0x09
	TypeNonce                     enc.TLNum = 0x0a
	TypeInterestLifetime          enc.TLNum = 0x0c
	TypeMinSuffixComponents       enc.TLNum = 0x0d
	TypeMaxSuffixComponents       enc.TLNum = 0x0e
	TypePublisherPublicKeyLocator enc.TLNum = 0x0f
	TypeExclude                   enc.TLNum = 0x10
	TypeChildSelector             enc.TLNum = 0x11
	TypeMustBeFresh               enc.TLNum = 0x12
	TypeMetaInfo                  enc.TLNum = 0x14
	TypeContent                   enc.TLNum = 0x15
	TypeSignatureInfo             enc.TLNum = 0x16
	TypeSignatureValue            enc.TLNum = 0x17
	TypeContentType               enc.TLNum = 0x18
	TypeFreshnessPeriod           enc.TLNum = 0x19
	TypeFinalBlockId              enc.TLNum = 0x1a
	TypeSignatureType             enc.TLNum = 0x1b
	TypeKeyLocator                enc.TLNum = 0x1c
	TypeKeyDigest                 enc.TLNum = 0x1d
	TypeForwardingHint            enc.TLNum = 0x1e
	TypeDelegation                enc.TLNum = 0x1f
	TypeCanBePrefix               enc.TLNum = 0x21
	TypeHopLimit                  enc.TLNum = 0x22
	TypeApplicationParameters     enc.TLNum = 0x24
	TypeValidityPeriod            enc.TLNum = 0xfd
	TypeNotBefore                 enc.TLNum = 0xfe
	TypeNotAfter                  enc.TLNum = 0xff
)

// Preference shares its number with ForwardingHint; it only appears inside a Delegation.
const TypePreference enc.TLNum = 0x1e

// TLV types of NDNLPv2.
const (
	TypeLpPacket       enc.TLNum = 0x64
	TypeFragment       enc.TLNum = 0x50
	TypeSequence       enc.TLNum = 0x51
	TypeFragIndex      enc.TLNum = 0x52
	TypeFragCount      enc.TLNum = 0x53
	TypePitToken       enc.TLNum = 0x62
	TypeNack           enc.TLNum = 0x0320
	TypeNackReason     enc.TLNum = 0x0321
	TypeIncomingFaceId enc.TLNum = 0x032c
	TypeNextHopFaceId  enc.TLNum = 0x0330
	TypeCongestionMark enc.TLNum = 0x0340
)

// TLV types of NFD management.
const (
	TypeControlParameters enc.TLNum = 0x68
	TypeFaceId            enc.TLNum = 0x69
	TypeCost              enc.TLNum = 0x6a
	TypeStrategy          enc.TLNum = 0x6b
	TypeFlags             enc.TLNum = 0x6c
	TypeExpirationPeriod  enc.TLNum = 0x6d
	TypeOrigin            enc.TLNum = 0x6f
	TypeMask              enc.TLNum = 0x70
	TypeUri               enc.TLNum = 0x72
	TypeLocalUri          enc.TLNum = 0x81
	TypeCapacity          enc.TLNum = 0x83
	TypeCount             enc.TLNum = 0x84
	TypeFacePersistency   enc.TLNum = 0x85
	TypeControlResponse   enc.TLNum = 0x65
	TypeStatusCode        enc.TLNum = 0x66
	TypeStatusText        enc.TLNum = 0x67
)

// Nack reasons.
const (
	NackReasonNone       uint64 = 0
	NackReasonCongestion uint64 = 50
	NackReasonDuplicate  uint64 = 100
	NackReasonNoRoute    uint64 = 150
)
