package spec_test

import (
	"crypto/sha256"
	"errors"
	"testing"
	"time"

	enc "github.com/named-data/ndn-cpp-sub004/std/encoding"
	"github.com/named-data/ndn-cpp-sub004/std/ndn"
	"github.com/named-data/ndn-cpp-sub004/std/ndn/spec"
	sig "github.com/named-data/ndn-cpp-sub004/std/security/signer"
	"github.com/named-data/ndn-cpp-sub004/std/types/optional"
	tu "github.com/named-data/ndn-cpp-sub004/std/utils/testutils"
	"github.com/stretchr/testify/require"
)

func name(s string) enc.Name {
	return tu.NoErr(enc.NameFromStr(s))
}

func TestInterest03(t *testing.T) {
	tu.SetT(t)

	interest := &ndn.Interest{
		Name:        name("/a/b"),
		CanBePrefix: true,
		MustBeFresh: true,
		Nonce:       optional.Some(uint32(0x01020304)),
		Lifetime:    optional.Some(time.Second),
	}
	wire := tu.Hex("05 16 0706 080161 080162 2100 1200 0a04 01020304 0c02 03e8")

	encoded := tu.NoErr(spec.Tlv0_3.EncodeInterest(interest))
	require.Equal(t, wire, encoded.Wire)
	require.Equal(t, spec.SignedPortion{Begin: 4, End: 7}, encoded.SignedPortion)
	require.Equal(t, tu.Hex("080161"), encoded.Covered())

	decoded, sp, err := spec.Tlv0_3.DecodeInterest(wire)
	require.NoError(t, err)
	require.Equal(t, encoded.SignedPortion, sp)
	require.Equal(t, "/a/b", decoded.Name.String())
	require.True(t, decoded.CanBePrefix)
	require.True(t, decoded.MustBeFresh)
	require.Equal(t, uint32(0x01020304), decoded.Nonce.Unwrap())
	require.Equal(t, time.Second, decoded.LifetimeOrDefault())
	require.False(t, decoded.HopLimit.IsSet())
	require.Nil(t, decoded.AppParam)
}

func TestInterestSignedPortionShortNames(t *testing.T) {
	tu.SetT(t)

	empty := tu.NoErr(spec.Tlv0_3.EncodeInterest(&ndn.Interest{Name: enc.Name{}}))
	require.Equal(t, tu.Hex("0502 0700"), empty.Wire)
	require.Equal(t, spec.SignedPortion{Begin: 4, End: 4}, empty.SignedPortion)
	_, sp, err := spec.Tlv0_3.DecodeInterest(empty.Wire)
	require.NoError(t, err)
	require.Equal(t, empty.SignedPortion, sp)

	single := tu.NoErr(spec.Tlv0_3.EncodeInterest(&ndn.Interest{Name: name("/x")}))
	require.Equal(t, single.Begin, single.End)
	require.Empty(t, single.Covered())
}

func TestInterest02(t *testing.T) {
	tu.SetT(t)

	interest := &ndn.Interest{
		Name:  name("/a"),
		Nonce: optional.Some(uint32(1)),
	}
	wire := tu.Hex("05 10 0703 080161 0903 0e0101 0a04 00000001")

	encoded := tu.NoErr(spec.Tlv0_2.EncodeInterest(interest))
	require.Equal(t, wire, encoded.Wire)

	decoded, _, err := spec.Tlv0_2.DecodeInterest(wire)
	require.NoError(t, err)
	require.False(t, decoded.CanBePrefix)
	require.Equal(t, uint64(1), decoded.MaxSuffixComponents.Unwrap())

	// the newer decoder falls back when it sees Selectors
	decoded, _, err = spec.Tlv0_3.DecodeInterest(wire)
	require.NoError(t, err)
	require.False(t, decoded.CanBePrefix)
	require.Equal(t, uint32(1), decoded.Nonce.Unwrap())

	interest.CanBePrefix = true
	interest.MustBeFresh = true
	interest.ForwardingHint = []enc.Name{name("/hint")}
	decoded, _, err = spec.Tlv0_2.DecodeInterest(tu.NoErr(spec.Tlv0_2.EncodeInterest(interest)).Wire)
	require.NoError(t, err)
	require.True(t, decoded.CanBePrefix)
	require.True(t, decoded.MustBeFresh)
	require.Equal(t, "/hint", decoded.ForwardingHint[0].String())

	interest.AppParam = []byte{1}
	tu.Err(spec.Tlv0_2.EncodeInterest(interest))
}

func TestInterestParamsDigest(t *testing.T) {
	tu.SetT(t)

	interest := &ndn.Interest{Name: name("/a"), AppParam: []byte("xy")}
	encoded := tu.NoErr(spec.Tlv0_3.EncodeInterest(interest))

	digest := sha256.Sum256(tu.Hex("2402 7879"))
	require.Len(t, encoded.Name, 2)
	last := encoded.Name.At(-1)
	require.Equal(t, enc.TypeParametersSha256DigestComponent, last.Typ)
	require.Equal(t, digest[:], last.Val)

	decoded, _, err := spec.Tlv0_3.DecodeInterest(encoded.Wire)
	require.NoError(t, err)
	require.Equal(t, []byte("xy"), decoded.AppParam)
	require.True(t, encoded.Name.Equal(decoded.Name))

	// encoding again replaces the digest instead of adding one
	again := tu.NoErr(spec.Tlv0_3.EncodeInterest(decoded))
	require.Equal(t, encoded.Wire, again.Wire)

	tampered := append([]byte{}, encoded.Wire...)
	tampered[len(tampered)-1] ^= 0xff
	_, _, err = spec.Tlv0_3.DecodeInterest(tampered)
	require.ErrorIs(t, err, enc.ErrDecoding)
}

func TestInterestUnknownFields(t *testing.T) {
	tu.SetT(t)

	// non-critical unknown field is skipped
	_, _, err := spec.Tlv0_3.DecodeInterest(tu.Hex("0505 0700 fc0100"))
	require.NoError(t, err)

	_, _, err = spec.Tlv0_3.DecodeInterest(tu.Hex("0505 0700 310100"))
	require.ErrorIs(t, err, enc.ErrDecoding)

	_, _, err = spec.Tlv0_3.DecodeInterest(tu.Hex("0502 0700 00"))
	require.Error(t, err)

	_, _, err = spec.Tlv0_3.DecodeInterest(tu.Hex("0604 0702 0800"))
	var unexpected enc.ErrUnexpectedType
	require.True(t, errors.As(err, &unexpected))
}

func TestData(t *testing.T) {
	tu.SetT(t)

	data := &ndn.Data{
		Name:           name("/a"),
		Content:        []byte("hi"),
		Signature:      ndn.SignatureInfo{Type: ndn.SignatureDigestSha256},
		SignatureValue: []byte{0xaa, 0xbb},
	}
	wire := tu.Hex("06 14 0703 080161 1400 1502 6869 1603 1b0100 1702 aabb")

	encoded := tu.NoErr(spec.EncodeData(data))
	require.Equal(t, wire, encoded.Wire)
	require.Equal(t, spec.SignedPortion{Begin: 2, End: 18}, encoded.SignedPortion)

	decoded, sp, err := spec.DecodeData(wire)
	require.NoError(t, err)
	require.Equal(t, encoded.SignedPortion, sp)
	require.Equal(t, data, decoded)

	// SignatureInfo is required
	_, _, err = spec.DecodeData(tu.Hex("0609 0703 080161 1502 6869"))
	require.ErrorIs(t, err, enc.ErrDecoding)
}

func TestDataMetaInfo(t *testing.T) {
	tu.SetT(t)

	notBefore := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	data := &ndn.Data{
		Name: name("/a/seg=3"),
		MetaInfo: ndn.MetaInfo{
			ContentType:     optional.Some(ndn.ContentTypeNack),
			FreshnessPeriod: optional.Some(1500 * time.Millisecond),
			FinalBlockID:    optional.Some(enc.NewSegmentComponent(9)),
		},
		Signature: ndn.SignatureInfo{
			Type:       ndn.SignatureHmacWithSha256,
			KeyLocator: &ndn.KeyLocator{Name: name("/key")},
			ValidityPeriod: &ndn.ValidityPeriod{
				NotBefore: notBefore,
				NotAfter:  notBefore.Add(24 * time.Hour),
			},
		},
		SignatureValue: []byte{1},
	}
	decoded, _, err := spec.DecodeData(tu.NoErr(spec.EncodeData(data)).Wire)
	require.NoError(t, err)
	require.Equal(t, ndn.ContentTypeNack, decoded.MetaInfo.ContentType.Unwrap())
	require.Equal(t, 1500*time.Millisecond, decoded.Freshness())
	require.Equal(t, uint64(9), tu.NoErr(decoded.MetaInfo.FinalBlockID.Unwrap().ToSegment()))
	require.Equal(t, "/key", decoded.Signature.KeyLocator.Name.String())
	require.Equal(t, notBefore, decoded.Signature.ValidityPeriod.NotBefore)
	require.Equal(t, notBefore.Add(24*time.Hour), decoded.Signature.ValidityPeriod.NotAfter)
	require.Empty(t, decoded.Content)
}

func TestMakeData(t *testing.T) {
	tu.SetT(t)

	data := &ndn.Data{Name: name("/psync/data"), Content: []byte("content")}
	encoded := tu.NoErr(spec.DefaultWireFormat().MakeData(data, sig.NewSha256Signer()))

	decoded, sp, err := spec.DecodeData(encoded.Wire)
	require.NoError(t, err)
	require.Equal(t, encoded.SignedPortion, sp)
	require.Equal(t, ndn.SignatureDigestSha256, decoded.Signature.Type)
	require.Nil(t, decoded.Signature.KeyLocator)

	digest := sha256.Sum256(encoded.Covered())
	require.Equal(t, digest[:], decoded.SignatureValue)
	require.Equal(t, decoded.SignatureValue, data.SignatureValue)
	require.True(t, sig.DigestValidator(decoded, encoded.Covered()))

	// MakeData and EncodeData agree once the signature is set
	require.Equal(t, encoded.Wire, tu.NoErr(spec.EncodeData(data)).Wire)

	tu.Err(spec.Tlv0_3.MakeData(data, nil))
}

func TestCommandInterest(t *testing.T) {
	tu.SetT(t)

	key := []byte("secret")
	signer := sig.NewNamedHmacSigner(name("/key"), key)
	now := time.UnixMilli(1700000000000)
	interest := &ndn.Interest{Name: name("/localhost/nfd/rib/register"), Nonce: optional.Some(uint32(7))}

	encoded := tu.NoErr(spec.Tlv0_3.MakeCommandInterest(interest, signer, now, []byte{1, 2, 3, 4}))
	decoded, sp, err := spec.Tlv0_3.DecodeInterest(encoded.Wire)
	require.NoError(t, err)
	require.Len(t, decoded.Name, 8)
	require.Equal(t, uint64(1700000000000), decoded.Name.At(4).ToNumber())
	require.Equal(t, []byte{1, 2, 3, 4}, decoded.Name.At(5).Val)

	info, sigValue, err := spec.CommandSignature(decoded.Name)
	require.NoError(t, err)
	require.Equal(t, ndn.SignatureHmacWithSha256, info.Type)
	require.Equal(t, "/key", info.KeyLocator.Name.String())
	require.True(t, sig.CheckHmacSig(encoded.Wire[sp.Begin:sp.End], sigValue, key))
	require.False(t, sig.CheckHmacSig(encoded.Wire[sp.Begin:sp.End], sigValue, []byte("other")))

	// the original Interest is not modified
	require.Len(t, interest.Name, 4)

	_, _, err = spec.CommandSignature(name("/a"))
	require.Error(t, err)
}

func TestControlParameters(t *testing.T) {
	tu.SetT(t)

	simple := &spec.ControlParameters{Name: name("/a"), FaceId: optional.Some(uint64(5))}
	require.Equal(t, tu.Hex("6808 0703 080161 690105"), simple.Encode())

	params := &spec.ControlParameters{
		Name:             name("/psync"),
		Origin:           optional.Some(spec.RouteOriginClient),
		Cost:             optional.Some(uint64(0)),
		Flags:            optional.Some(spec.RouteFlagChildInherit),
		Uri:              "tcp4://127.0.0.1:6363",
		Strategy:         name("/localhost/nfd/strategy/multicast"),
		ExpirationPeriod: optional.Some(10 * time.Second),
	}
	decoded := tu.NoErr(spec.DecodeControlParameters(params.Encode()))
	require.Equal(t, params, decoded)

	resp := &spec.ControlResponse{StatusCode: 200, StatusText: "OK", Body: params}
	decodedResp := tu.NoErr(spec.DecodeControlResponse(resp.Encode()))
	require.Equal(t, resp, decodedResp)

	resp = &spec.ControlResponse{StatusCode: 403, StatusText: "authorization rejected"}
	decodedResp = tu.NoErr(spec.DecodeControlResponse(resp.Encode()))
	require.Equal(t, resp, decodedResp)
}

func TestLpPacket(t *testing.T) {
	tu.SetT(t)

	frag := tu.Hex("0502 0700")
	pkt := &spec.LpPacket{
		PitToken:       []byte{9, 9},
		Nack:           optional.Some(spec.NackReasonNoRoute),
		IncomingFaceId: optional.Some(uint64(260)),
		Fragment:       frag,
	}
	decoded := tu.NoErr(spec.DecodeLpPacket(spec.EncodeLpPacket(pkt)))
	require.Equal(t, pkt, decoded)

	// Nack without a reason
	pkt = &spec.LpPacket{Nack: optional.Some(spec.NackReasonNone), Fragment: frag}
	decoded = tu.NoErr(spec.DecodeLpPacket(spec.EncodeLpPacket(pkt)))
	require.Equal(t, spec.NackReasonNone, decoded.Nack.Unwrap())

	// a Nack with no reason, an ignorable header field, then an unknown one
	tu.NoErr(spec.DecodeLpPacket(tu.Hex("640a fd0320 00 5004 05020700")))
	tu.NoErr(spec.DecodeLpPacket(tu.Hex("640a fd0348 00 5004 05020700")))
	tu.Err(spec.DecodeLpPacket(tu.Hex("640a fd0349 00 5004 05020700")))

	// fragmented packets
	tu.Err(spec.DecodeLpPacket(tu.Hex("6409 520100 530102 500105")))
	tu.Err(spec.DecodeLpPacket(tu.Hex("6409 520101 530102 500105")))
}

func TestPacketType(t *testing.T) {
	tu.SetT(t)

	require.Equal(t, spec.TypeInterest, tu.NoErr(spec.PacketType(tu.Hex("0502 0700"))))
	require.Equal(t, spec.TypeLpPacket, tu.NoErr(spec.PacketType(tu.Hex("6400"))))
	tu.Err(spec.PacketType(nil))
	require.Equal(t, "tlv-0.3", spec.DefaultWireFormat().String())
}
