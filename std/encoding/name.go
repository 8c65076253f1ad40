package encoding

import (
	"strings"
)

// Name is an ordered sequence of name components.
type Name []Component

// String returns the URI form of the name. The empty name is "/".
func (n Name) String() string {
	if len(n) == 0 {
		return "/"
	}
	sb := strings.Builder{}
	for _, c := range n {
		sb.WriteByte('/')
		c.writeTo(&sb)
	}
	return sb.String()
}

// NameFromStr parses a name URI. An "ndn:" scheme and empty path segments are ignored.
func NameFromStr(s string) (Name, error) {
	s = strings.TrimPrefix(s, "ndn:")
	// drop the authority of a "//authority/path" URI
	if strings.HasPrefix(s, "//") {
		rest := s[2:]
		if i := strings.IndexByte(rest, '/'); i >= 0 {
			s = rest[i:]
		} else {
			s = "/"
		}
	}
	if i := strings.IndexAny(s, "?#"); i >= 0 {
		s = s[:i]
	}

	strs := strings.Split(s, "/")
	ret := make(Name, 0, len(strs))
	for _, str := range strs {
		if str == "" {
			continue
		}
		c, err := ComponentFromStr(str)
		if err != nil {
			return nil, err
		}
		ret = append(ret, c)
	}
	return ret, nil
}

// EncodingLength returns the size of the Name value, excluding the Name TL header.
func (n Name) EncodingLength() int {
	ret := 0
	for _, c := range n {
		ret += c.EncodingLength()
	}
	return ret
}

// EncodeInto writes the Name value, excluding the Name TL header.
func (n Name) EncodeInto(buf []byte) int {
	pos := 0
	for _, c := range n {
		pos += c.EncodeInto(buf[pos:])
	}
	return pos
}

// Bytes returns the full Name TLV.
func (n Name) Bytes() []byte {
	l := n.EncodingLength()
	hdr := TypeName.EncodingLength() + TLNum(l).EncodingLength()
	buf := make([]byte, hdr+l)
	p := TypeName.EncodeInto(buf)
	p += TLNum(l).EncodeInto(buf[p:])
	n.EncodeInto(buf[p:])
	return buf
}

// NameFromBytes decodes a full Name TLV.
func NameFromBytes(buf []byte) (Name, error) {
	d := NewDecoder(buf)
	n, err := d.ReadName()
	if err != nil {
		return nil, err
	}
	if d.Offset() != len(buf) {
		return nil, ErrFormat{"trailing bytes after Name"}
	}
	return n, nil
}

// ReadName reads a Name TLV. Components alias the input buffer.
func (d *Decoder) ReadName() (Name, error) {
	end, err := d.ReadNestedTlvsStart(TypeName)
	if err != nil {
		return nil, err
	}
	ret := Name{}
	for d.pos < end {
		c, err := d.ReadComponent()
		if err != nil {
			return nil, err
		}
		ret = append(ret, c)
	}
	if d.pos != end {
		return nil, ErrFormat{"name component exceeds the Name TLV"}
	}
	return ret, nil
}

// WriteName prepends a Name TLV.
func (e *Encoder) WriteName(n Name) {
	l := n.EncodingLength()
	n.EncodeInto(e.reserve(l))
	e.WriteTypeAndLength(TypeName, l)
}

// WriteComponent prepends a single name component TLV.
func (e *Encoder) WriteComponent(c Component) {
	c.EncodeInto(e.reserve(c.EncodingLength()))
}

// Clone returns a deep copy sharing one backing array for all values.
func (n Name) Clone() Name {
	ret := make(Name, len(n))
	valLen := 0
	for _, c := range n {
		valLen += len(c.Val)
	}
	buf := make([]byte, valLen)
	for i, c := range n {
		l := copy(buf, c.Val)
		ret[i] = Component{Typ: c.Typ, Val: buf[:l:l]}
		buf = buf[l:]
	}
	return ret
}

// At returns the ith component; negative indices count from the end.
// Out of range yields a zero Component.
func (n Name) At(i int) Component {
	if i < 0 {
		i += len(n)
	}
	if i < 0 || i >= len(n) {
		return Component{}
	}
	return n[i]
}

// Prefix returns the first i components, or all but the last -i when i is negative.
// The result shares memory with n.
func (n Name) Prefix(i int) Name {
	if i < 0 {
		i += len(n)
	}
	if i <= 0 {
		return Name{}
	}
	if i >= len(n) {
		return n
	}
	return n[:i]
}

// Append returns a new name with the components added. n is not modified.
func (n Name) Append(rest ...Component) Name {
	ret := make(Name, len(n)+len(rest))
	copy(ret, n)
	copy(ret[len(n):], rest)
	return ret
}

// Compare follows the NDN canonical order; a proper prefix sorts first.
func (n Name) Compare(rhs Name) int {
	for i := 0; i < min(len(n), len(rhs)); i++ {
		if c := n[i].Compare(rhs[i]); c != 0 {
			return c
		}
	}
	switch {
	case len(n) < len(rhs):
		return -1
	case len(n) > len(rhs):
		return 1
	}
	return 0
}

func (n Name) Equal(rhs Name) bool {
	if len(n) != len(rhs) {
		return false
	}
	for i := range n {
		if !n[i].Equal(rhs[i]) {
			return false
		}
	}
	return true
}

// IsPrefix reports whether n is a prefix of rhs.
func (n Name) IsPrefix(rhs Name) bool {
	if len(n) > len(rhs) {
		return false
	}
	for i := range n {
		if !n[i].Equal(rhs[i]) {
			return false
		}
	}
	return true
}

// Hash returns the xxhash of the name value, usable as a map key.
func (n Name) Hash() uint64 {
	xx := xxHashPoolGet()
	defer xxHashPoolPut(xx)
	for _, c := range n {
		xx.write(c)
	}
	return xx.hash.Sum64()
}

// PrefixHash returns the hash of every prefix of n, index i for the first i components.
func (n Name) PrefixHash() []uint64 {
	xx := xxHashPoolGet()
	defer xxHashPoolPut(xx)
	ret := make([]uint64, len(n)+1)
	ret[0] = xx.hash.Sum64()
	for i, c := range n {
		xx.write(c)
		ret[i+1] = xx.hash.Sum64()
	}
	return ret
}
