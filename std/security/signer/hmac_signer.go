package signer

import (
	"crypto/hmac"
	"crypto/sha256"

	enc "github.com/named-data/ndn-cpp-sub004/std/encoding"
	"github.com/named-data/ndn-cpp-sub004/std/ndn"
)

// hmacSigner signs with HMAC-SHA256 over a shared key.
type hmacSigner struct {
	name enc.Name
	key  []byte
}

func (*hmacSigner) Type() ndn.SigType {
	return ndn.SignatureHmacWithSha256
}

func (s *hmacSigner) KeyName() enc.Name {
	return s.name
}

func (*hmacSigner) EstimateSize() uint {
	return sha256.Size
}

func (s *hmacSigner) Sign(covered []byte) ([]byte, error) {
	mac := hmac.New(sha256.New, s.key)
	mac.Write(covered)
	return mac.Sum(nil), nil
}

// NewHmacSigner creates a signer that uses HmacWithSha256 without a KeyLocator.
func NewHmacSigner(key []byte) ndn.Signer {
	return &hmacSigner{key: key}
}

// NewNamedHmacSigner is NewHmacSigner with a key name put into the KeyLocator.
func NewNamedHmacSigner(name enc.Name, key []byte) ndn.Signer {
	return &hmacSigner{name: name, key: key}
}

func CheckHmacSig(sigCovered []byte, sigValue []byte, key []byte) bool {
	mac := hmac.New(sha256.New, key)
	mac.Write(sigCovered)
	return hmac.Equal(mac.Sum(nil), sigValue)
}
