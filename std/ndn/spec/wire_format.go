package spec

import (
	"fmt"
	"sync/atomic"

	enc "github.com/named-data/ndn-cpp-sub004/std/encoding"
	"github.com/named-data/ndn-cpp-sub004/std/ndn"
)

// WireFormat selects a version of the NDN packet format.
type WireFormat int32

const (
	// Tlv0_2 is the packet format with Interest Selectors.
	Tlv0_2 WireFormat = iota
	// Tlv0_3 is the packet format with CanBePrefix, HopLimit and ApplicationParameters.
	Tlv0_3
)

// SignedPortion locates the bytes covered by a signature inside a packet wire.
type SignedPortion struct {
	Begin int
	End   int
}

// Encoded is an encoded packet together with its signed portion.
type Encoded struct {
	Wire []byte
	SignedPortion
	// Name is the final packet name, which may carry components the encoder
	// computed, such as a ParametersSha256Digest.
	Name enc.Name
}

// Covered returns the signed portion of the wire.
func (p *Encoded) Covered() []byte {
	return p.Wire[p.Begin:p.End]
}

type interestCodec struct {
	encode func(e *enc.Encoder, interest *ndn.Interest) (fromEnd SignedPortion, name enc.Name, err error)
	decode func(d *enc.Decoder) (*ndn.Interest, SignedPortion, error)
}

var interestCodecs = [...]interestCodec{
	Tlv0_2: {encode: encodeInterest02, decode: decodeInterest02},
	Tlv0_3: {encode: encodeInterest03, decode: decodeInterest03},
}

var defaultWireFormat atomic.Int32

func init() {
	defaultWireFormat.Store(int32(Tlv0_3))
}

// DefaultWireFormat returns the process-wide wire format.
func DefaultWireFormat() WireFormat {
	return WireFormat(defaultWireFormat.Load())
}

// SetDefaultWireFormat changes the process-wide wire format. Call it once at startup.
func SetDefaultWireFormat(f WireFormat) {
	defaultWireFormat.Store(int32(f))
}

func (f WireFormat) String() string {
	switch f {
	case Tlv0_2:
		return "tlv-0.2"
	case Tlv0_3:
		return "tlv-0.3"
	default:
		return fmt.Sprintf("tlv-unknown(%d)", int32(f))
	}
}

func (f WireFormat) interestCodec() (interestCodec, error) {
	if f < 0 || int(f) >= len(interestCodecs) {
		return interestCodec{}, ndn.ErrNotSupported{Item: f.String()}
	}
	return interestCodecs[f], nil
}

// EncodeInterest encodes an Interest. The signed portion runs from the first
// name component to the end of the second to last one, which is where a
// command Interest keeps its SignatureInfo.
func (f WireFormat) EncodeInterest(interest *ndn.Interest) (*Encoded, error) {
	codec, err := f.interestCodec()
	if err != nil {
		return nil, err
	}
	e := enc.NewEncoder(256 + len(interest.AppParam))
	fromEnd, name, err := codec.encode(e, interest)
	if err != nil {
		return nil, err
	}
	return finishEncoded(e, fromEnd, name), nil
}

// DecodeInterest decodes an Interest. Trailing bytes after the Interest are an error.
func (f WireFormat) DecodeInterest(wire []byte) (*ndn.Interest, SignedPortion, error) {
	codec, err := f.interestCodec()
	if err != nil {
		return nil, SignedPortion{}, err
	}
	d := enc.NewDecoder(wire)
	interest, sp, err := codec.decode(d)
	if err != nil {
		return nil, SignedPortion{}, err
	}
	if d.Offset() != len(wire) {
		return nil, SignedPortion{}, enc.ErrFormat{Msg: "trailing bytes after Interest"}
	}
	return interest, sp, nil
}

// EncodeData encodes a Data as is, with its current SignatureValue.
// The signed portion runs from the start of the Name to the end of SignatureInfo.
func (f WireFormat) EncodeData(data *ndn.Data) (*Encoded, error) {
	e := enc.NewEncoder(256 + len(data.Content))
	fromEnd, err := encodeData(e, data)
	if err != nil {
		return nil, err
	}
	return finishEncoded(e, fromEnd, data.Name), nil
}

// DecodeData decodes a Data. Both wire formats share the Data encoding.
func (f WireFormat) DecodeData(wire []byte) (*ndn.Data, SignedPortion, error) {
	d := enc.NewDecoder(wire)
	data, sp, err := decodeData(d)
	if err != nil {
		return nil, SignedPortion{}, err
	}
	if d.Offset() != len(wire) {
		return nil, SignedPortion{}, enc.ErrFormat{Msg: "trailing bytes after Data"}
	}
	return data, sp, nil
}

// finishEncoded converts offsets measured from the end of the output into
// offsets from its start.
func finishEncoded(e *enc.Encoder, fromEnd SignedPortion, name enc.Name) *Encoded {
	total := e.Length()
	return &Encoded{
		Wire: e.Bytes(),
		SignedPortion: SignedPortion{
			Begin: total - fromEnd.Begin,
			End:   total - fromEnd.End,
		},
		Name: name,
	}
}

// PacketType returns the outer TLV type of a packet wire.
func PacketType(wire []byte) (enc.TLNum, error) {
	typ, _, err := enc.ParseTLNum(wire)
	return typ, err
}

// Package level shortcuts with the default wire format.

func EncodeInterest(interest *ndn.Interest) (*Encoded, error) {
	return DefaultWireFormat().EncodeInterest(interest)
}

func DecodeInterest(wire []byte) (*ndn.Interest, SignedPortion, error) {
	return DefaultWireFormat().DecodeInterest(wire)
}

func EncodeData(data *ndn.Data) (*Encoded, error) {
	return DefaultWireFormat().EncodeData(data)
}

func DecodeData(wire []byte) (*ndn.Data, SignedPortion, error) {
	return DefaultWireFormat().DecodeData(wire)
}
