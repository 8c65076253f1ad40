package encoding

import (
	"bytes"
	"strconv"
	"strings"
)

const (
	TypeName                            TLNum = 0x07
	TypeImplicitSha256DigestComponent   TLNum = 0x01
	TypeParametersSha256DigestComponent TLNum = 0x02
	TypeGenericNameComponent            TLNum = 0x08
	TypeKeywordNameComponent            TLNum = 0x20
	TypeSegmentNameComponent            TLNum = 0x32
	TypeByteOffsetNameComponent         TLNum = 0x34
	TypeVersionNameComponent            TLNum = 0x36
	TypeTimestampNameComponent          TLNum = 0x38
	TypeSequenceNumNameComponent        TLNum = 0x3a
)

// Component is one name component: a TLV type and an opaque value.
type Component struct {
	Typ TLNum
	Val []byte
}

func NewGenericComponent(val []byte) Component {
	return Component{Typ: TypeGenericNameComponent, Val: val}
}

func NewStringComponent(typ TLNum, val string) Component {
	return Component{Typ: typ, Val: []byte(val)}
}

func NewBytesComponent(typ TLNum, val []byte) Component {
	return Component{Typ: typ, Val: val}
}

// NewNumberComponent encodes n as a minimal big-endian non-negative integer.
func NewNumberComponent(typ TLNum, n uint64) Component {
	return Component{Typ: typ, Val: Nat(n).Bytes()}
}

// NewMarkedNumberComponent builds a generic component holding a marker byte followed by n.
func NewMarkedNumberComponent(marker byte, n uint64) Component {
	v := Nat(n)
	val := make([]byte, 1+v.EncodingLength())
	val[0] = marker
	v.EncodeInto(val[1:])
	return Component{Typ: TypeGenericNameComponent, Val: val}
}

func (c Component) Clone() Component {
	return Component{
		Typ: c.Typ,
		Val: append([]byte(nil), c.Val...),
	}
}

func (c Component) IsGeneric() bool {
	return c.Typ == TypeGenericNameComponent
}

// String returns the URI form of the component.
func (c Component) String() string {
	sb := strings.Builder{}
	c.writeTo(&sb)
	return sb.String()
}

func (c Component) writeTo(sb *strings.Builder) {
	var vf valueFormat = textFormat{}
	if conv, ok := conventionByType[c.Typ]; ok {
		vf = conv.fmt
		sb.WriteString(conv.name)
		sb.WriteByte('=')
	} else if c.Typ != TypeGenericNameComponent {
		sb.WriteString(strconv.FormatUint(uint64(c.Typ), 10))
		sb.WriteByte('=')
	}
	vf.writeTo(c.Val, sb)
}

func (c Component) EncodingLength() int {
	l := len(c.Val)
	return c.Typ.EncodingLength() + TLNum(l).EncodingLength() + l
}

func (c Component) EncodeInto(buf []byte) int {
	p := c.Typ.EncodeInto(buf)
	p += TLNum(len(c.Val)).EncodeInto(buf[p:])
	return p + copy(buf[p:], c.Val)
}

// Bytes returns the TLV encoding of the component.
func (c Component) Bytes() []byte {
	buf := make([]byte, c.EncodingLength())
	c.EncodeInto(buf)
	return buf
}

func (c Component) Equal(rhs Component) bool {
	return c.Typ == rhs.Typ && bytes.Equal(c.Val, rhs.Val)
}

// Compare follows the NDN canonical order: type first, then value length,
// then the value bytes.
func (c Component) Compare(rhs Component) int {
	switch {
	case c.Typ < rhs.Typ:
		return -1
	case c.Typ > rhs.Typ:
		return 1
	case len(c.Val) < len(rhs.Val):
		return -1
	case len(c.Val) > len(rhs.Val):
		return 1
	}
	return bytes.Compare(c.Val, rhs.Val)
}

// ToNumber interprets the whole value as a big-endian non-negative integer.
func (c Component) ToNumber() uint64 {
	ret := uint64(0)
	for _, v := range c.Val {
		ret = (ret << 8) | uint64(v)
	}
	return ret
}

// ToNumberWithMarker checks the first byte against marker and decodes the rest.
func (c Component) ToNumberWithMarker(marker byte) (uint64, error) {
	if len(c.Val) == 0 || c.Val[0] != marker {
		return 0, ErrFormat{"name component does not begin with the expected marker"}
	}
	n, err := ParseNat(c.Val[1:])
	return uint64(n), err
}

// ComponentFromStr parses the URI form of a single component, which may
// carry a "type=" prefix.
func ComponentFromStr(s string) (Component, error) {
	typStr, valStr, hasTyp := strings.Cut(s, "=")
	if !hasTyp {
		val, err := textFormat{}.parse(s)
		if err != nil {
			return Component{}, err
		}
		return NewGenericComponent(val), nil
	}

	if conv, ok := conventionByName[typStr]; ok {
		val, err := conv.fmt.parse(valStr)
		if err != nil {
			return Component{}, err
		}
		return Component{Typ: conv.typ, Val: val}, nil
	}

	typ, err := strconv.ParseUint(typStr, 10, 16)
	if err != nil || typ == 0 {
		return Component{}, ErrFormat{"invalid component type: " + typStr}
	}
	val, err := textFormat{}.parse(valStr)
	if err != nil {
		return Component{}, err
	}
	return Component{Typ: TLNum(typ), Val: val}, nil
}

// ReadComponent reads one name component TLV of any type.
func (d *Decoder) ReadComponent() (Component, error) {
	typ, err := d.ReadVarNumber()
	if err != nil {
		return Component{}, err
	}
	if typ == 0 || typ > 0xffff {
		return Component{}, ErrFormat{"name component type is out of range"}
	}
	l, err := d.readLength()
	if err != nil {
		return Component{}, err
	}
	val := d.buf[d.pos : d.pos+l]
	d.pos += l
	return Component{Typ: typ, Val: val}, nil
}

// ComponentFromBytes decodes a single component TLV.
func ComponentFromBytes(buf []byte) (Component, error) {
	d := NewDecoder(buf)
	c, err := d.ReadComponent()
	if err != nil {
		return Component{}, err
	}
	if d.pos != len(buf) {
		return Component{}, ErrFormat{"trailing bytes after name component"}
	}
	return c, nil
}
