package spec

import (
	"time"

	enc "github.com/named-data/ndn-cpp-sub004/std/encoding"
	"github.com/named-data/ndn-cpp-sub004/std/ndn"
)

func signatureInfoOf(signer ndn.Signer) ndn.SignatureInfo {
	info := ndn.SignatureInfo{Type: signer.Type()}
	if key := signer.KeyName(); key != nil {
		info.KeyLocator = &ndn.KeyLocator{Name: key}
	}
	return info
}

// MakeData fills the SignatureInfo of data from signer, signs the signed
// portion and returns the final wire. data is updated with the signature.
func (f WireFormat) MakeData(data *ndn.Data, signer ndn.Signer) (*Encoded, error) {
	if signer == nil {
		return nil, ndn.ErrInvalidValue{Item: "signer", Value: nil}
	}
	data.Signature = signatureInfoOf(signer)

	// The signed portion is everything but the SignatureValue, which comes
	// last. Encode it alone, sign, then put the packet together.
	inner := enc.NewEncoder(256 + len(data.Content))
	if err := writeSignatureInfo(inner, TypeSignatureInfo, &data.Signature); err != nil {
		return nil, err
	}
	content := data.Content
	if content == nil {
		content = []byte{}
	}
	inner.WriteBlob(TypeContent, content)
	if err := writeMetaInfo(inner, &data.MetaInfo); err != nil {
		return nil, err
	}
	inner.WriteName(data.Name)
	covered := inner.Bytes()

	sig, err := signer.Sign(covered)
	if err != nil {
		return nil, err
	}
	data.SignatureValue = sig

	e := enc.NewEncoder(len(covered) + len(sig) + 16)
	e.WriteBlob(TypeSignatureValue, sig)
	end := e.Length()
	e.WriteBuffer(covered)
	begin := e.Length()
	e.WriteTypeAndLength(TypeData, e.Length())
	return finishEncoded(e, SignedPortion{Begin: begin, End: end}, data.Name), nil
}

// MakeCommandInterest signs an Interest in the command Interest format:
// the name gets a timestamp, a random nonce, the SignatureInfo and the
// SignatureValue as its last four components.
func (f WireFormat) MakeCommandInterest(
	interest *ndn.Interest, signer ndn.Signer, now time.Time, nonce []byte,
) (*Encoded, error) {
	if signer == nil {
		return nil, ndn.ErrInvalidValue{Item: "signer", Value: nil}
	}
	info := signatureInfoOf(signer)
	infoEnc := enc.NewEncoder(64)
	if err := writeSignatureInfo(infoEnc, TypeSignatureInfo, &info); err != nil {
		return nil, err
	}

	signed := *interest
	signed.Name = interest.Name.Append(
		enc.NewNumberComponent(enc.TypeGenericNameComponent, uint64(now.UnixMilli())),
		enc.NewGenericComponent(nonce),
		enc.NewGenericComponent(infoEnc.Bytes()),
		// placeholder; the value component is outside the signed portion
		enc.NewGenericComponent(nil),
	)
	draft, err := f.EncodeInterest(&signed)
	if err != nil {
		return nil, err
	}

	sig, err := signer.Sign(draft.Covered())
	if err != nil {
		return nil, err
	}
	valueEnc := enc.NewEncoder(len(sig) + 8)
	valueEnc.WriteBlob(TypeSignatureValue, sig)
	signed.Name[len(signed.Name)-1] = enc.NewGenericComponent(valueEnc.Bytes())
	return f.EncodeInterest(&signed)
}

// CommandSignature extracts the SignatureInfo and SignatureValue of a command Interest.
func CommandSignature(name enc.Name) (*ndn.SignatureInfo, []byte, error) {
	if len(name) < 2 {
		return nil, nil, enc.ErrFormat{Msg: "command Interest name is too short"}
	}
	info := &ndn.SignatureInfo{}
	if err := readSignatureInfo(enc.NewDecoder(name[len(name)-2].Val), TypeSignatureInfo, info); err != nil {
		return nil, nil, err
	}
	sig, err := enc.NewDecoder(name[len(name)-1].Val).ReadBlob(TypeSignatureValue)
	if err != nil {
		return nil, nil, err
	}
	return info, sig, nil
}
