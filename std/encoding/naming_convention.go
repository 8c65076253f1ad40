package encoding

import (
	"fmt"
	"sync/atomic"
)

// NamingConvention selects how numeric components (segment, version, ...)
// are represented in a name.
type NamingConvention int32

const (
	// NamingConventionMarker uses a generic component whose first byte is a marker.
	NamingConventionMarker NamingConvention = iota
	// NamingConventionTyped uses a dedicated component type per meaning.
	NamingConventionTyped
)

// Marker bytes of the marker naming convention.
const (
	MarkerSegment    byte = 0x00
	MarkerByteOffset byte = 0xFB
	MarkerTimestamp  byte = 0xFC
	MarkerVersion    byte = 0xFD
	MarkerSequence   byte = 0xFE
)

var defaultNamingConvention atomic.Int32

func init() {
	defaultNamingConvention.Store(int32(NamingConventionTyped))
}

// DefaultNamingConvention returns the convention used by the New*Component constructors.
func DefaultNamingConvention() NamingConvention {
	return NamingConvention(defaultNamingConvention.Load())
}

// SetDefaultNamingConvention changes the process-wide convention.
// It is meant to be called once during startup.
func SetDefaultNamingConvention(c NamingConvention) {
	defaultNamingConvention.Store(int32(c))
}

func (c NamingConvention) String() string {
	switch c {
	case NamingConventionMarker:
		return "marker"
	case NamingConventionTyped:
		return "typed"
	default:
		return "unknown"
	}
}

func (c NamingConvention) numberComponent(typ TLNum, marker byte, n uint64) Component {
	if c == NamingConventionMarker {
		return NewMarkedNumberComponent(marker, n)
	}
	return NewNumberComponent(typ, n)
}

func (c NamingConvention) SegmentComponent(seg uint64) Component {
	return c.numberComponent(TypeSegmentNameComponent, MarkerSegment, seg)
}

func (c NamingConvention) ByteOffsetComponent(off uint64) Component {
	return c.numberComponent(TypeByteOffsetNameComponent, MarkerByteOffset, off)
}

func (c NamingConvention) VersionComponent(v uint64) Component {
	return c.numberComponent(TypeVersionNameComponent, MarkerVersion, v)
}

func (c NamingConvention) TimestampComponent(t uint64) Component {
	return c.numberComponent(TypeTimestampNameComponent, MarkerTimestamp, t)
}

func (c NamingConvention) SequenceNumComponent(seq uint64) Component {
	return c.numberComponent(TypeSequenceNumNameComponent, MarkerSequence, seq)
}

func NewSegmentComponent(seg uint64) Component {
	return DefaultNamingConvention().SegmentComponent(seg)
}

func NewByteOffsetComponent(off uint64) Component {
	return DefaultNamingConvention().ByteOffsetComponent(off)
}

func NewVersionComponent(v uint64) Component {
	return DefaultNamingConvention().VersionComponent(v)
}

func NewTimestampComponent(t uint64) Component {
	return DefaultNamingConvention().TimestampComponent(t)
}

func NewSequenceNumComponent(seq uint64) Component {
	return DefaultNamingConvention().SequenceNumComponent(seq)
}

// isNumber accepts both conventions regardless of the default.
func (c Component) isNumber(typ TLNum, marker byte) bool {
	if c.Typ == typ {
		return true
	}
	if c.Typ != TypeGenericNameComponent || len(c.Val) < 2 || c.Val[0] != marker {
		return false
	}
	switch len(c.Val) - 1 {
	case 1, 2, 4, 8:
		return true
	}
	return false
}

func (c Component) toNumber(typ TLNum, marker byte) (uint64, error) {
	if c.Typ == typ {
		return c.ToNumber(), nil
	}
	if c.Typ != TypeGenericNameComponent {
		return 0, ErrFormat{fmt.Sprintf("name component has type %d instead of %d", c.Typ, typ)}
	}
	return c.ToNumberWithMarker(marker)
}

func (c Component) IsSegment() bool    { return c.isNumber(TypeSegmentNameComponent, MarkerSegment) }
func (c Component) IsByteOffset() bool { return c.isNumber(TypeByteOffsetNameComponent, MarkerByteOffset) }
func (c Component) IsVersion() bool    { return c.isNumber(TypeVersionNameComponent, MarkerVersion) }
func (c Component) IsTimestamp() bool  { return c.isNumber(TypeTimestampNameComponent, MarkerTimestamp) }
func (c Component) IsSequenceNum() bool {
	return c.isNumber(TypeSequenceNumNameComponent, MarkerSequence)
}

// ToSegment strips the marker or checks the type, then returns the number.
func (c Component) ToSegment() (uint64, error) {
	return c.toNumber(TypeSegmentNameComponent, MarkerSegment)
}

func (c Component) ToByteOffset() (uint64, error) {
	return c.toNumber(TypeByteOffsetNameComponent, MarkerByteOffset)
}

func (c Component) ToVersion() (uint64, error) {
	return c.toNumber(TypeVersionNameComponent, MarkerVersion)
}

func (c Component) ToTimestamp() (uint64, error) {
	return c.toNumber(TypeTimestampNameComponent, MarkerTimestamp)
}

func (c Component) ToSequenceNum() (uint64, error) {
	return c.toNumber(TypeSequenceNumNameComponent, MarkerSequence)
}
