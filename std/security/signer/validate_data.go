package signer

import (
	"crypto/ed25519"

	"github.com/named-data/ndn-cpp-sub004/std/ndn"
)

// ValidateData verifies the signature of a Data packet over its signed portion.
// key is ignored for DigestSha256, is the shared secret for HMAC and the raw
// public key for Ed25519.
func ValidateData(data *ndn.Data, sigCovered []byte, key []byte) (bool, error) {
	switch data.Signature.Type {
	case ndn.SignatureDigestSha256:
		return CheckDigestSig(sigCovered, data.SignatureValue), nil
	case ndn.SignatureHmacWithSha256:
		return CheckHmacSig(sigCovered, data.SignatureValue, key), nil
	case ndn.SignatureEd25519:
		return validateEd25519(sigCovered, data.SignatureValue, ed25519.PublicKey(key)), nil
	}

	return false, ndn.ErrInvalidValue{
		Item:  "Signature.SigType",
		Value: data.Signature.Type,
	}
}

// DigestValidator accepts Data signed with DigestSha256 whose digest matches.
func DigestValidator(data *ndn.Data, sigCovered []byte) bool {
	return data.Signature.Type == ndn.SignatureDigestSha256 &&
		CheckDigestSig(sigCovered, data.SignatureValue)
}

// HmacValidator returns a validator for Data signed with the shared key.
func HmacValidator(key []byte) ndn.Validator {
	return func(data *ndn.Data, sigCovered []byte) bool {
		return data.Signature.Type == ndn.SignatureHmacWithSha256 &&
			CheckHmacSig(sigCovered, data.SignatureValue, key)
	}
}
