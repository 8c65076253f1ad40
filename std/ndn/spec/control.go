package spec

import (
	"time"

	enc "github.com/named-data/ndn-cpp-sub004/std/encoding"
	"github.com/named-data/ndn-cpp-sub004/std/types/optional"
)

// Route origins and flags used with rib/register.
const (
	RouteOriginApp        uint64 = 0
	RouteOriginClient     uint64 = 65
	RouteFlagChildInherit uint64 = 1
	RouteFlagCapture      uint64 = 2
)

// ControlParameters are the arguments of an NFD management command.
type ControlParameters struct {
	Name             enc.Name
	FaceId           optional.Optional[uint64]
	Uri              string
	LocalUri         string
	Origin           optional.Optional[uint64]
	Cost             optional.Optional[uint64]
	Capacity         optional.Optional[uint64]
	Count            optional.Optional[uint64]
	Flags            optional.Optional[uint64]
	Mask             optional.Optional[uint64]
	Strategy         enc.Name
	ExpirationPeriod optional.Optional[time.Duration]
	FacePersistency  optional.Optional[uint64]
}

// ControlResponse is the content of the reply to a management command.
type ControlResponse struct {
	StatusCode uint64
	StatusText string
	Body       *ControlParameters
}

// Encode returns the ControlParameters TLV.
func (p *ControlParameters) Encode() []byte {
	e := enc.NewEncoder(128)
	p.writeTo(e)
	return e.Bytes()
}

func (p *ControlParameters) writeTo(e *enc.Encoder) {
	e.WriteNestedTlv(TypeControlParameters, func(e *enc.Encoder) error {
		e.WriteOptionalNonNegativeInteger(TypeFacePersistency, p.FacePersistency)
		if v, ok := p.ExpirationPeriod.Get(); ok {
			e.WriteNonNegativeInteger(TypeExpirationPeriod, uint64(v/time.Millisecond))
		}
		if p.Strategy != nil {
			e.WriteNestedTlv(TypeStrategy, func(e *enc.Encoder) error {
				e.WriteName(p.Strategy)
				return nil
			}, false)
		}
		e.WriteOptionalNonNegativeInteger(TypeMask, p.Mask)
		e.WriteOptionalNonNegativeInteger(TypeFlags, p.Flags)
		e.WriteOptionalNonNegativeInteger(TypeCount, p.Count)
		e.WriteOptionalNonNegativeInteger(TypeCapacity, p.Capacity)
		e.WriteOptionalNonNegativeInteger(TypeCost, p.Cost)
		e.WriteOptionalNonNegativeInteger(TypeOrigin, p.Origin)
		if p.LocalUri != "" {
			e.WriteBlob(TypeLocalUri, []byte(p.LocalUri))
		}
		if p.Uri != "" {
			e.WriteBlob(TypeUri, []byte(p.Uri))
		}
		e.WriteOptionalNonNegativeInteger(TypeFaceId, p.FaceId)
		if p.Name != nil {
			e.WriteName(p.Name)
		}
		return nil
	}, false)
}

// DecodeControlParameters decodes a ControlParameters TLV.
func DecodeControlParameters(wire []byte) (*ControlParameters, error) {
	d := enc.NewDecoder(wire)
	p, err := readControlParameters(d)
	if err != nil {
		return nil, err
	}
	if d.Offset() != len(wire) {
		return nil, enc.ErrFormat{Msg: "trailing bytes after ControlParameters"}
	}
	return p, nil
}

func readControlParameters(d *enc.Decoder) (p *ControlParameters, err error) {
	end, err := d.ReadNestedTlvsStart(TypeControlParameters)
	if err != nil {
		return nil, err
	}
	p = &ControlParameters{}
	if d.PeekType(TypeName, end) {
		if p.Name, err = d.ReadName(); err != nil {
			return nil, err
		}
	}
	readOpt := func(typ enc.TLNum, dst *optional.Optional[uint64]) {
		if err == nil {
			*dst, err = d.ReadOptionalNonNegativeInteger(typ, end)
		}
	}
	readStr := func(typ enc.TLNum, dst *string) {
		if err == nil {
			var val []byte
			val, err = d.ReadOptionalBlob(typ, end)
			*dst = string(val)
		}
	}

	readOpt(TypeFaceId, &p.FaceId)
	readStr(TypeUri, &p.Uri)
	readStr(TypeLocalUri, &p.LocalUri)
	readOpt(TypeOrigin, &p.Origin)
	readOpt(TypeCost, &p.Cost)
	readOpt(TypeCapacity, &p.Capacity)
	readOpt(TypeCount, &p.Count)
	readOpt(TypeFlags, &p.Flags)
	readOpt(TypeMask, &p.Mask)
	if err != nil {
		return nil, err
	}
	if d.PeekType(TypeStrategy, end) {
		strategyEnd, err := d.ReadNestedTlvsStart(TypeStrategy)
		if err != nil {
			return nil, err
		}
		if p.Strategy, err = d.ReadName(); err != nil {
			return nil, err
		}
		if err = d.FinishNestedTlvs(strategyEnd); err != nil {
			return nil, err
		}
	}
	var expiration optional.Optional[uint64]
	readOpt(TypeExpirationPeriod, &expiration)
	readOpt(TypeFacePersistency, &p.FacePersistency)
	if err != nil {
		return nil, err
	}
	if v, ok := expiration.Get(); ok {
		p.ExpirationPeriod.Set(time.Duration(v) * time.Millisecond)
	}
	return p, d.FinishNestedTlvs(end)
}

// Encode returns the ControlResponse TLV.
func (r *ControlResponse) Encode() []byte {
	e := enc.NewEncoder(128)
	e.WriteNestedTlv(TypeControlResponse, func(e *enc.Encoder) error {
		if r.Body != nil {
			r.Body.writeTo(e)
		}
		e.WriteBlob(TypeStatusText, []byte(r.StatusText))
		e.WriteNonNegativeInteger(TypeStatusCode, r.StatusCode)
		return nil
	}, false)
	return e.Bytes()
}

// DecodeControlResponse decodes a ControlResponse TLV, normally the content of a command reply.
func DecodeControlResponse(wire []byte) (*ControlResponse, error) {
	d := enc.NewDecoder(wire)
	end, err := d.ReadNestedTlvsStart(TypeControlResponse)
	if err != nil {
		return nil, err
	}
	r := &ControlResponse{}
	if r.StatusCode, err = d.ReadNonNegativeInteger(TypeStatusCode); err != nil {
		return nil, err
	}
	text, err := d.ReadBlob(TypeStatusText)
	if err != nil {
		return nil, err
	}
	r.StatusText = string(text)
	if d.PeekType(TypeControlParameters, end) {
		if r.Body, err = readControlParameters(d); err != nil {
			return nil, err
		}
	}
	if err = d.FinishNestedTlvs(end); err != nil {
		return nil, err
	}
	if d.Offset() != len(wire) {
		return nil, enc.ErrFormat{Msg: "trailing bytes after ControlResponse"}
	}
	return r, nil
}
