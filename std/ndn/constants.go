package ndn

// MaxNDNPacketSize is the largest packet a face accepts.
const MaxNDNPacketSize = 8800

// ContentType of a Data, carried in MetaInfo.
type ContentType uint64

const (
	ContentTypeBlob               ContentType = 0
	ContentTypeLink               ContentType = 1
	ContentTypeKey                ContentType = 2
	ContentTypeNack               ContentType = 3
	ContentTypeManifest           ContentType = 4
	ContentTypePrefixAnnouncement ContentType = 5
	ContentTypeEncapsulatedData   ContentType = 6
	ContentTypeSigningKey         ContentType = 9
)

// SigType is the SignatureType number of a SignatureInfo.
type SigType int

const (
	SignatureNone            SigType = -1
	SignatureDigestSha256    SigType = 0
	SignatureSha256WithRsa   SigType = 1
	SignatureSha256WithEcdsa SigType = 3
	SignatureHmacWithSha256  SigType = 4
	SignatureEd25519         SigType = 5
)

func (t SigType) String() string {
	switch t {
	case SignatureNone:
		return "None"
	case SignatureDigestSha256:
		return "DigestSha256"
	case SignatureSha256WithRsa:
		return "Sha256WithRsa"
	case SignatureSha256WithEcdsa:
		return "Sha256WithEcdsa"
	case SignatureHmacWithSha256:
		return "HmacWithSha256"
	case SignatureEd25519:
		return "Ed25519"
	default:
		return "Unknown"
	}
}

// InterestResult is the outcome of an expressed Interest.
type InterestResult int

const (
	InterestResultNone InterestResult = iota
	InterestResultData
	InterestResultNack
	InterestResultTimeout
	InterestCancelled
	// used by consumers that validate Data, never by the engine
	InterestResultUnverified
	InterestResultError
)

func (r InterestResult) String() string {
	switch r {
	case InterestResultNone:
		return "None"
	case InterestResultData:
		return "Data"
	case InterestResultNack:
		return "Nack"
	case InterestResultTimeout:
		return "Timeout"
	case InterestCancelled:
		return "Cancelled"
	case InterestResultUnverified:
		return "Unverified"
	case InterestResultError:
		return "Error"
	default:
		return "Unknown"
	}
}
