package signer

import (
	"crypto/sha256"

	enc "github.com/named-data/ndn-cpp-sub004/std/encoding"
	"github.com/named-data/ndn-cpp-sub004/std/ndn"
)

// sha256Signer signs with DigestSha256. It carries no KeyLocator.
type sha256Signer struct{}

func (sha256Signer) Type() ndn.SigType {
	return ndn.SignatureDigestSha256
}

func (sha256Signer) KeyName() enc.Name {
	return nil
}

func (sha256Signer) EstimateSize() uint {
	return sha256.Size
}

func (sha256Signer) Sign(covered []byte) ([]byte, error) {
	sum := sha256.Sum256(covered)
	return sum[:], nil
}

// NewSha256Signer creates a signer that uses DigestSha256.
func NewSha256Signer() ndn.Signer {
	return sha256Signer{}
}

// CheckDigestSig reports whether sigValue is the sha256 digest of sigCovered.
func CheckDigestSig(sigCovered []byte, sigValue []byte) bool {
	sum := sha256.Sum256(sigCovered)
	return len(sigValue) == sha256.Size && [sha256.Size]byte(sigValue) == sum
}
