package spec

import (
	enc "github.com/named-data/ndn-cpp-sub004/std/encoding"
	"github.com/named-data/ndn-cpp-sub004/std/types/optional"
)

// LpPacket is the subset of an NDNLPv2 frame used by an application:
// a PIT token, a Nack and the face id fields around one unfragmented packet.
type LpPacket struct {
	PitToken       []byte
	Nack           optional.Optional[uint64]
	IncomingFaceId optional.Optional[uint64]
	NextHopFaceId  optional.Optional[uint64]
	Fragment       []byte
}

// EncodeLpPacket wraps a network layer packet.
func EncodeLpPacket(p *LpPacket) []byte {
	e := enc.NewEncoder(len(p.Fragment) + 64)
	e.WriteNestedTlv(TypeLpPacket, func(e *enc.Encoder) error {
		e.WriteOptionalBlob(TypeFragment, p.Fragment)
		e.WriteOptionalNonNegativeInteger(TypeNextHopFaceId, p.NextHopFaceId)
		e.WriteOptionalNonNegativeInteger(TypeIncomingFaceId, p.IncomingFaceId)
		if reason, ok := p.Nack.Get(); ok {
			e.WriteNestedTlv(TypeNack, func(e *enc.Encoder) error {
				if reason != NackReasonNone {
					e.WriteNonNegativeInteger(TypeNackReason, reason)
				}
				return nil
			}, false)
		}
		e.WriteOptionalBlob(TypePitToken, p.PitToken)
		return nil
	}, false)
	return e.Bytes()
}

// DecodeLpPacket decodes an LpPacket. Fragmented packets are rejected.
func DecodeLpPacket(wire []byte) (*LpPacket, error) {
	d := enc.NewDecoder(wire)
	end, err := d.ReadNestedTlvsStart(TypeLpPacket)
	if err != nil {
		return nil, err
	}
	p := &LpPacket{}
	for d.Offset() < end {
		start := d.Offset()
		typ, err := d.ReadVarNumber()
		if err != nil {
			return nil, err
		}
		d.Seek(start)

		switch typ {
		case TypeSequence, TypeCongestionMark:
			_, err = d.Skip()
		case TypeFragIndex, TypeFragCount:
			n, err := d.ReadNonNegativeInteger(typ)
			if err != nil {
				return nil, err
			}
			if (typ == TypeFragIndex && n != 0) || (typ == TypeFragCount && n != 1) {
				return nil, enc.ErrFormat{Msg: "fragmented LpPacket is not supported"}
			}
		case TypePitToken:
			p.PitToken, err = d.ReadBlob(TypePitToken)
		case TypeNack:
			var nackEnd int
			if nackEnd, err = d.ReadNestedTlvsStart(TypeNack); err != nil {
				return nil, err
			}
			var reason optional.Optional[uint64]
			if reason, err = d.ReadOptionalNonNegativeInteger(TypeNackReason, nackEnd); err != nil {
				return nil, err
			}
			p.Nack.Set(reason.GetOr(NackReasonNone))
			err = d.FinishNestedTlvs(nackEnd)
		case TypeIncomingFaceId:
			var id uint64
			id, err = d.ReadNonNegativeInteger(typ)
			p.IncomingFaceId.Set(id)
		case TypeNextHopFaceId:
			var id uint64
			id, err = d.ReadNonNegativeInteger(typ)
			p.NextHopFaceId.Set(id)
		case TypeFragment:
			p.Fragment, err = d.ReadBlob(TypeFragment)
		default:
			// NDNLPv2 header fields in [800, 959] with the two low bits 00 may be ignored
			if typ >= 800 && typ <= 959 && typ&0x03 == 0 {
				_, err = d.Skip()
			} else {
				return nil, enc.ErrUnrecognizedField{TypeNum: typ}
			}
		}
		if err != nil {
			return nil, err
		}
	}
	if d.Offset() != end || end != len(wire) {
		return nil, enc.ErrFormat{Msg: "LpPacket length mismatch"}
	}
	return p, nil
}
