package ndn

import (
	"time"

	enc "github.com/named-data/ndn-cpp-sub004/std/encoding"
	"github.com/named-data/ndn-cpp-sub004/std/types/optional"
)

// DefaultInterestLifetime applies when an Interest carries no InterestLifetime.
const DefaultInterestLifetime = 4 * time.Second

// Interest is a decoded or to-be-encoded Interest packet.
type Interest struct {
	Name           enc.Name
	CanBePrefix    bool
	MustBeFresh    bool
	ForwardingHint []enc.Name
	Nonce          optional.Optional[uint32]
	Lifetime       optional.Optional[time.Duration]
	HopLimit       optional.Optional[uint8]
	// AppParam is nil when the Interest has no ApplicationParameters.
	AppParam []byte

	// Selectors only exist in the 0.2 wire format.
	MinSuffixComponents optional.Optional[uint64]
	MaxSuffixComponents optional.Optional[uint64]
	ChildSelector       optional.Optional[uint64]
}

// LifetimeOrDefault returns the Interest lifetime, or DefaultInterestLifetime when absent.
func (i *Interest) LifetimeOrDefault() time.Duration {
	return i.Lifetime.GetOr(DefaultInterestLifetime)
}

// MatchesName reports whether a Data of the given name satisfies the Interest,
// ignoring MustBeFresh and implicit digests.
func (i *Interest) MatchesName(name enc.Name) bool {
	if !i.Name.IsPrefix(name) {
		return false
	}
	if len(name) > len(i.Name) && !i.CanBePrefix {
		return false
	}
	suffix := uint64(len(name) - len(i.Name))
	if min, ok := i.MinSuffixComponents.Get(); ok && suffix+1 < min {
		return false
	}
	if max, ok := i.MaxSuffixComponents.Get(); ok && suffix+1 > max {
		return false
	}
	return true
}

// MetaInfo is the MetaInfo element of a Data packet.
type MetaInfo struct {
	ContentType     optional.Optional[ContentType]
	FreshnessPeriod optional.Optional[time.Duration]
	FinalBlockID    optional.Optional[enc.Component]
}

// KeyLocator names the key that produced a signature, or carries its digest.
type KeyLocator struct {
	Name      enc.Name
	KeyDigest []byte
}

// ValidityPeriod bounds the validity of a signature.
type ValidityPeriod struct {
	NotBefore time.Time
	NotAfter  time.Time
}

// SignatureInfo describes the signature of a Data or a signed Interest.
type SignatureInfo struct {
	Type           SigType
	KeyLocator     *KeyLocator
	ValidityPeriod *ValidityPeriod
}

// Data is a decoded or to-be-encoded Data packet.
type Data struct {
	Name           enc.Name
	MetaInfo       MetaInfo
	Content        []byte
	Signature      SignatureInfo
	SignatureValue []byte
}

// Freshness returns the FreshnessPeriod, zero when absent.
func (d *Data) Freshness() time.Duration {
	return d.MetaInfo.FreshnessPeriod.GetOr(0)
}
