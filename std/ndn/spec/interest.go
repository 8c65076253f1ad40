package spec

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"time"

	enc "github.com/named-data/ndn-cpp-sub004/std/encoding"
	"github.com/named-data/ndn-cpp-sub004/std/ndn"
	"github.com/named-data/ndn-cpp-sub004/std/types/optional"
)

// writeSignedName prepends a Name TLV and returns, measured from the end of
// the output, the start of the first component and the start of the last one.
func writeSignedName(e *enc.Encoder, name enc.Name) SignedPortion {
	valueEnd := e.Length()
	end := valueEnd
	for i := len(name) - 1; i >= 0; i-- {
		e.WriteComponent(name[i])
		if i == len(name)-1 {
			end = e.Length()
		}
	}
	begin := e.Length()
	e.WriteTypeAndLength(TypeName, begin-valueEnd)
	return SignedPortion{Begin: begin, End: end}
}

// readSignedName reads a Name TLV and returns the offsets of its first
// component and of its last component.
func readSignedName(d *enc.Decoder) (enc.Name, SignedPortion, error) {
	end, err := d.ReadNestedTlvsStart(TypeName)
	if err != nil {
		return nil, SignedPortion{}, err
	}
	begin := d.Offset()
	sigEnd := begin
	name := enc.Name{}
	for d.Offset() < end {
		sigEnd = d.Offset()
		c, err := d.ReadComponent()
		if err != nil {
			return nil, SignedPortion{}, err
		}
		name = append(name, c)
	}
	if d.Offset() != end {
		return nil, SignedPortion{}, enc.ErrFormat{Msg: "name component exceeds the Name TLV"}
	}
	return name, SignedPortion{Begin: begin, End: sigEnd}, nil
}

func writeNonce(e *enc.Encoder, nonce optional.Optional[uint32]) {
	if v, ok := nonce.Get(); ok {
		buf := [4]byte{}
		binary.BigEndian.PutUint32(buf[:], v)
		e.WriteBlob(TypeNonce, buf[:])
	}
}

func readNonce(d *enc.Decoder, end int) (ret optional.Optional[uint32], err error) {
	val, err := d.ReadOptionalBlob(TypeNonce, end)
	if err != nil || val == nil {
		return ret, err
	}
	if len(val) != 4 {
		return ret, enc.ErrFormat{Msg: "Interest Nonce is not 4 bytes"}
	}
	ret.Set(binary.BigEndian.Uint32(val))
	return ret, nil
}

func writeLifetime(e *enc.Encoder, lifetime optional.Optional[time.Duration]) {
	if v, ok := lifetime.Get(); ok {
		e.WriteNonNegativeInteger(TypeInterestLifetime, uint64(v/time.Millisecond))
	}
}

func readLifetime(d *enc.Decoder, end int) (ret optional.Optional[time.Duration], err error) {
	ms, err := d.ReadOptionalNonNegativeInteger(TypeInterestLifetime, end)
	if v, ok := ms.Get(); ok && err == nil {
		ret.Set(time.Duration(v) * time.Millisecond)
	}
	return ret, err
}

// withParamsDigest replaces any ParametersSha256DigestComponent of name by
// one holding digest, placed last.
func withParamsDigest(name enc.Name, digest []byte) enc.Name {
	ret := make(enc.Name, 0, len(name)+1)
	for _, c := range name {
		if c.Typ != enc.TypeParametersSha256DigestComponent {
			ret = append(ret, c)
		}
	}
	return append(ret, enc.NewBytesComponent(enc.TypeParametersSha256DigestComponent, digest))
}

func encodeInterest03(e *enc.Encoder, interest *ndn.Interest) (SignedPortion, enc.Name, error) {
	start := e.Length()
	name := interest.Name

	if interest.AppParam != nil {
		e.WriteBlob(TypeApplicationParameters, interest.AppParam)
		out := e.Bytes()
		digest := sha256.Sum256(out[:e.Length()-start])
		name = withParamsDigest(name, digest[:])
	}
	if hop, ok := interest.HopLimit.Get(); ok {
		e.WriteBlob(TypeHopLimit, []byte{hop})
	}
	writeLifetime(e, interest.Lifetime)
	writeNonce(e, interest.Nonce)
	if len(interest.ForwardingHint) > 0 {
		e.WriteNestedTlv(TypeForwardingHint, func(e *enc.Encoder) error {
			for i := len(interest.ForwardingHint) - 1; i >= 0; i-- {
				e.WriteName(interest.ForwardingHint[i])
			}
			return nil
		}, false)
	}
	e.WriteBoolean(TypeMustBeFresh, interest.MustBeFresh)
	e.WriteBoolean(TypeCanBePrefix, interest.CanBePrefix)
	sp := writeSignedName(e, name)
	e.WriteTypeAndLength(TypeInterest, e.Length()-start)
	return sp, name, nil
}

func decodeInterest03(d *enc.Decoder) (*ndn.Interest, SignedPortion, error) {
	start := d.Offset()
	end, err := d.ReadNestedTlvsStart(TypeInterest)
	if err != nil {
		return nil, SignedPortion{}, err
	}
	name, sp, err := readSignedName(d)
	if err != nil {
		return nil, SignedPortion{}, err
	}
	// a packet with Selectors is in the older format
	if d.PeekType(TypeSelectors, end) {
		d.Seek(start)
		return decodeInterest02(d)
	}

	interest := &ndn.Interest{Name: name}
	if interest.CanBePrefix, err = d.ReadBoolean(TypeCanBePrefix, end); err != nil {
		return nil, SignedPortion{}, err
	}
	if interest.MustBeFresh, err = d.ReadBoolean(TypeMustBeFresh, end); err != nil {
		return nil, SignedPortion{}, err
	}
	if d.PeekType(TypeForwardingHint, end) {
		hintEnd, err := d.ReadNestedTlvsStart(TypeForwardingHint)
		if err != nil {
			return nil, SignedPortion{}, err
		}
		for d.PeekType(TypeName, hintEnd) {
			hint, err := d.ReadName()
			if err != nil {
				return nil, SignedPortion{}, err
			}
			interest.ForwardingHint = append(interest.ForwardingHint, hint)
		}
		if err = d.FinishNestedTlvs(hintEnd); err != nil {
			return nil, SignedPortion{}, err
		}
	}
	if interest.Nonce, err = readNonce(d, end); err != nil {
		return nil, SignedPortion{}, err
	}
	if interest.Lifetime, err = readLifetime(d, end); err != nil {
		return nil, SignedPortion{}, err
	}
	hop, err := d.ReadOptionalBlob(TypeHopLimit, end)
	if err != nil {
		return nil, SignedPortion{}, err
	}
	if hop != nil {
		if len(hop) != 1 {
			return nil, SignedPortion{}, enc.ErrFormat{Msg: "Interest HopLimit is not 1 byte"}
		}
		interest.HopLimit.Set(hop[0])
	}
	paramStart := d.Offset()
	if interest.AppParam, err = d.ReadOptionalBlob(TypeApplicationParameters, end); err != nil {
		return nil, SignedPortion{}, err
	}
	if err = d.FinishNestedTlvs(end); err != nil {
		return nil, SignedPortion{}, err
	}

	if interest.AppParam != nil {
		digest := sha256.Sum256(d.Slice(paramStart, end))
		found := false
		for _, c := range name {
			if c.Typ == enc.TypeParametersSha256DigestComponent {
				if !bytes.Equal(c.Val, digest[:]) {
					return nil, SignedPortion{}, enc.ErrFormat{Msg: "ParametersSha256DigestComponent does not match"}
				}
				found = true
			}
		}
		if !found {
			return nil, SignedPortion{}, enc.ErrSkipRequired{
				Name:    "ParametersSha256DigestComponent",
				TypeNum: enc.TypeParametersSha256DigestComponent,
			}
		}
	}
	return interest, sp, nil
}

func encodeInterest02(e *enc.Encoder, interest *ndn.Interest) (SignedPortion, enc.Name, error) {
	if interest.AppParam != nil {
		return SignedPortion{}, nil, ndn.ErrNotSupported{Item: "ApplicationParameters in " + Tlv0_2.String()}
	}
	start := e.Length()

	if len(interest.ForwardingHint) > 0 {
		e.WriteNestedTlv(TypeForwardingHint, func(e *enc.Encoder) error {
			for i := len(interest.ForwardingHint) - 1; i >= 0; i-- {
				e.WriteNestedTlv(TypeDelegation, func(e *enc.Encoder) error {
					e.WriteName(interest.ForwardingHint[i])
					e.WriteNonNegativeInteger(TypePreference, uint64(i))
					return nil
				}, false)
			}
			return nil
		}, false)
	}
	writeLifetime(e, interest.Lifetime)
	writeNonce(e, interest.Nonce)

	maxSuffix := interest.MaxSuffixComponents
	if !interest.CanBePrefix && !maxSuffix.IsSet() {
		maxSuffix.Set(1)
	}
	e.WriteNestedTlv(TypeSelectors, func(e *enc.Encoder) error {
		e.WriteBoolean(TypeMustBeFresh, interest.MustBeFresh)
		e.WriteOptionalNonNegativeInteger(TypeChildSelector, interest.ChildSelector)
		e.WriteOptionalNonNegativeInteger(TypeMaxSuffixComponents, maxSuffix)
		e.WriteOptionalNonNegativeInteger(TypeMinSuffixComponents, interest.MinSuffixComponents)
		return nil
	}, true)

	sp := writeSignedName(e, interest.Name)
	e.WriteTypeAndLength(TypeInterest, e.Length()-start)
	return sp, interest.Name, nil
}

func decodeInterest02(d *enc.Decoder) (*ndn.Interest, SignedPortion, error) {
	end, err := d.ReadNestedTlvsStart(TypeInterest)
	if err != nil {
		return nil, SignedPortion{}, err
	}
	name, sp, err := readSignedName(d)
	if err != nil {
		return nil, SignedPortion{}, err
	}
	interest := &ndn.Interest{Name: name}

	if d.PeekType(TypeSelectors, end) {
		selEnd, err := d.ReadNestedTlvsStart(TypeSelectors)
		if err != nil {
			return nil, SignedPortion{}, err
		}
		if interest.MinSuffixComponents, err = d.ReadOptionalNonNegativeInteger(TypeMinSuffixComponents, selEnd); err != nil {
			return nil, SignedPortion{}, err
		}
		if interest.MaxSuffixComponents, err = d.ReadOptionalNonNegativeInteger(TypeMaxSuffixComponents, selEnd); err != nil {
			return nil, SignedPortion{}, err
		}
		// key locator and exclude selectors are accepted but not kept
		for _, typ := range []enc.TLNum{TypePublisherPublicKeyLocator, TypeExclude} {
			if d.PeekType(typ, selEnd) {
				if _, err = d.Skip(); err != nil {
					return nil, SignedPortion{}, err
				}
			}
		}
		if interest.ChildSelector, err = d.ReadOptionalNonNegativeInteger(TypeChildSelector, selEnd); err != nil {
			return nil, SignedPortion{}, err
		}
		if interest.MustBeFresh, err = d.ReadBoolean(TypeMustBeFresh, selEnd); err != nil {
			return nil, SignedPortion{}, err
		}
		if err = d.FinishNestedTlvs(selEnd); err != nil {
			return nil, SignedPortion{}, err
		}
	}
	interest.CanBePrefix = interest.MaxSuffixComponents.GetOr(0) != 1

	if interest.Nonce, err = readNonce(d, end); err != nil {
		return nil, SignedPortion{}, err
	}
	if interest.Lifetime, err = readLifetime(d, end); err != nil {
		return nil, SignedPortion{}, err
	}
	if d.PeekType(TypeForwardingHint, end) {
		hintEnd, err := d.ReadNestedTlvsStart(TypeForwardingHint)
		if err != nil {
			return nil, SignedPortion{}, err
		}
		for d.PeekType(TypeDelegation, hintEnd) {
			delEnd, err := d.ReadNestedTlvsStart(TypeDelegation)
			if err != nil {
				return nil, SignedPortion{}, err
			}
			if _, err = d.ReadNonNegativeInteger(TypePreference); err != nil {
				return nil, SignedPortion{}, err
			}
			hint, err := d.ReadName()
			if err != nil {
				return nil, SignedPortion{}, err
			}
			if err = d.FinishNestedTlvs(delEnd); err != nil {
				return nil, SignedPortion{}, err
			}
			interest.ForwardingHint = append(interest.ForwardingHint, hint)
		}
		if err = d.FinishNestedTlvs(hintEnd); err != nil {
			return nil, SignedPortion{}, err
		}
	}
	if err = d.FinishNestedTlvs(end); err != nil {
		return nil, SignedPortion{}, err
	}
	return interest, sp, nil
}
