package spec

import (
	"time"

	enc "github.com/named-data/ndn-cpp-sub004/std/encoding"
	"github.com/named-data/ndn-cpp-sub004/std/ndn"
	"github.com/named-data/ndn-cpp-sub004/std/types/optional"
)

// validityTimeFormat is the ISO 8601 basic format of NotBefore and NotAfter.
const validityTimeFormat = "20060102T150405"

func encodeData(e *enc.Encoder, data *ndn.Data) (SignedPortion, error) {
	start := e.Length()

	e.WriteBlob(TypeSignatureValue, data.SignatureValue)
	sigEnd := e.Length()
	if err := writeSignatureInfo(e, TypeSignatureInfo, &data.Signature); err != nil {
		return SignedPortion{}, err
	}
	content := data.Content
	if content == nil {
		content = []byte{}
	}
	e.WriteBlob(TypeContent, content)
	if err := writeMetaInfo(e, &data.MetaInfo); err != nil {
		return SignedPortion{}, err
	}
	e.WriteName(data.Name)
	sigBegin := e.Length()

	e.WriteTypeAndLength(TypeData, e.Length()-start)
	return SignedPortion{Begin: sigBegin, End: sigEnd}, nil
}

func decodeData(d *enc.Decoder) (*ndn.Data, SignedPortion, error) {
	end, err := d.ReadNestedTlvsStart(TypeData)
	if err != nil {
		return nil, SignedPortion{}, err
	}
	data := &ndn.Data{}
	sigBegin := d.Offset()
	if data.Name, err = d.ReadName(); err != nil {
		return nil, SignedPortion{}, err
	}
	if d.PeekType(TypeMetaInfo, end) {
		if err = readMetaInfo(d, &data.MetaInfo); err != nil {
			return nil, SignedPortion{}, err
		}
	}
	if data.Content, err = d.ReadOptionalBlob(TypeContent, end); err != nil {
		return nil, SignedPortion{}, err
	}
	if !d.PeekType(TypeSignatureInfo, end) {
		return nil, SignedPortion{}, enc.ErrSkipRequired{Name: "SignatureInfo", TypeNum: TypeSignatureInfo}
	}
	if err = readSignatureInfo(d, TypeSignatureInfo, &data.Signature); err != nil {
		return nil, SignedPortion{}, err
	}
	sigEnd := d.Offset()
	if data.SignatureValue, err = d.ReadBlob(TypeSignatureValue); err != nil {
		return nil, SignedPortion{}, err
	}
	if err = d.FinishNestedTlvs(end); err != nil {
		return nil, SignedPortion{}, err
	}
	return data, SignedPortion{Begin: sigBegin, End: sigEnd}, nil
}

func writeMetaInfo(e *enc.Encoder, m *ndn.MetaInfo) error {
	return e.WriteNestedTlv(TypeMetaInfo, func(e *enc.Encoder) error {
		if final, ok := m.FinalBlockID.Get(); ok {
			e.WriteNestedTlv(TypeFinalBlockId, func(e *enc.Encoder) error {
				e.WriteComponent(final)
				return nil
			}, false)
		}
		if fresh, ok := m.FreshnessPeriod.Get(); ok {
			if fresh < 0 {
				return ndn.ErrInvalidValue{Item: "FreshnessPeriod", Value: fresh}
			}
			e.WriteNonNegativeInteger(TypeFreshnessPeriod, uint64(fresh/time.Millisecond))
		}
		e.WriteOptionalNonNegativeInteger(TypeContentType, optional.CastInt[ndn.ContentType, uint64](m.ContentType))
		return nil
	}, false)
}

func readMetaInfo(d *enc.Decoder, m *ndn.MetaInfo) error {
	end, err := d.ReadNestedTlvsStart(TypeMetaInfo)
	if err != nil {
		return err
	}
	ct, err := d.ReadOptionalNonNegativeInteger(TypeContentType, end)
	if err != nil {
		return err
	}
	m.ContentType = optional.CastInt[uint64, ndn.ContentType](ct)
	fresh, err := d.ReadOptionalNonNegativeInteger(TypeFreshnessPeriod, end)
	if err != nil {
		return err
	}
	if v, ok := fresh.Get(); ok {
		m.FreshnessPeriod.Set(time.Duration(v) * time.Millisecond)
	}
	if d.PeekType(TypeFinalBlockId, end) {
		finalEnd, err := d.ReadNestedTlvsStart(TypeFinalBlockId)
		if err != nil {
			return err
		}
		c, err := d.ReadComponent()
		if err != nil {
			return err
		}
		if d.Offset() != finalEnd {
			return enc.ErrFormat{Msg: "FinalBlockId must hold exactly one name component"}
		}
		m.FinalBlockID.Set(c)
	}
	return d.FinishNestedTlvs(end)
}

func writeSignatureInfo(e *enc.Encoder, typ enc.TLNum, s *ndn.SignatureInfo) error {
	if s.Type == ndn.SignatureNone {
		return ndn.ErrInvalidValue{Item: "SignatureType", Value: s.Type}
	}
	return e.WriteNestedTlv(typ, func(e *enc.Encoder) error {
		if v := s.ValidityPeriod; v != nil {
			e.WriteNestedTlv(TypeValidityPeriod, func(e *enc.Encoder) error {
				e.WriteBlob(TypeNotAfter, []byte(v.NotAfter.UTC().Format(validityTimeFormat)))
				e.WriteBlob(TypeNotBefore, []byte(v.NotBefore.UTC().Format(validityTimeFormat)))
				return nil
			}, false)
		}
		if kl := s.KeyLocator; kl != nil {
			e.WriteNestedTlv(TypeKeyLocator, func(e *enc.Encoder) error {
				if kl.KeyDigest != nil {
					e.WriteBlob(TypeKeyDigest, kl.KeyDigest)
				} else {
					e.WriteName(kl.Name)
				}
				return nil
			}, false)
		}
		e.WriteNonNegativeInteger(TypeSignatureType, uint64(s.Type))
		return nil
	}, false)
}

func readSignatureInfo(d *enc.Decoder, typ enc.TLNum, s *ndn.SignatureInfo) error {
	end, err := d.ReadNestedTlvsStart(typ)
	if err != nil {
		return err
	}
	sigType, err := d.ReadNonNegativeInteger(TypeSignatureType)
	if err != nil {
		return err
	}
	s.Type = ndn.SigType(sigType)

	if d.PeekType(TypeKeyLocator, end) {
		klEnd, err := d.ReadNestedTlvsStart(TypeKeyLocator)
		if err != nil {
			return err
		}
		kl := &ndn.KeyLocator{}
		switch {
		case d.PeekType(TypeName, klEnd):
			kl.Name, err = d.ReadName()
		case d.PeekType(TypeKeyDigest, klEnd):
			kl.KeyDigest, err = d.ReadBlob(TypeKeyDigest)
		}
		if err != nil {
			return err
		}
		if err = d.FinishNestedTlvs(klEnd); err != nil {
			return err
		}
		s.KeyLocator = kl
	}

	if d.PeekType(TypeValidityPeriod, end) {
		vpEnd, err := d.ReadNestedTlvsStart(TypeValidityPeriod)
		if err != nil {
			return err
		}
		vp := &ndn.ValidityPeriod{}
		for _, field := range []struct {
			typ enc.TLNum
			dst *time.Time
		}{{TypeNotBefore, &vp.NotBefore}, {TypeNotAfter, &vp.NotAfter}} {
			val, err := d.ReadBlob(field.typ)
			if err != nil {
				return err
			}
			if *field.dst, err = time.Parse(validityTimeFormat, string(val)); err != nil {
				return enc.ErrFormat{Msg: "invalid ValidityPeriod time: " + string(val)}
			}
		}
		if err = d.FinishNestedTlvs(vpEnd); err != nil {
			return err
		}
		s.ValidityPeriod = vp
	}
	return d.FinishNestedTlvs(end)
}
