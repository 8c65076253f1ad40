package encoding

import (
	"github.com/named-data/ndn-cpp-sub004/std/types/optional"
)

const defaultEncoderCapacity = 256

// Encoder writes TLV back to front. Every Write call prepends its output in
// front of what was written before, so a nested TLV is produced by writing its
// children in reverse order and then prepending the outer Type and Length,
// which are known at that point.
//
// Offsets inside the output are only stable when measured from the end.
// Callers that need a front offset take Length() at the time of interest and
// subtract it from the final Length().
type Encoder struct {
	buf []byte
	// output occupies buf[off:]
	off int
}

func NewEncoder(capacity int) *Encoder {
	if capacity <= 0 {
		capacity = defaultEncoderCapacity
	}
	return &Encoder{
		buf: make([]byte, capacity),
		off: capacity,
	}
}

// Length returns the number of bytes written so far.
func (e *Encoder) Length() int {
	return len(e.buf) - e.off
}

// Bytes returns the encoded output. The slice aliases the internal buffer.
func (e *Encoder) Bytes() []byte {
	return e.buf[e.off:]
}

// reserve makes room for n more bytes in front and returns that region.
func (e *Encoder) reserve(n int) []byte {
	if e.off < n {
		used := e.Length()
		size := 2 * len(e.buf)
		if size < used+n {
			size = used + n
		}
		nbuf := make([]byte, size)
		copy(nbuf[size-used:], e.Bytes())
		e.buf = nbuf
		e.off = size - used
	}
	e.off -= n
	return e.buf[e.off : e.off+n]
}

// WriteVarNumber prepends a VarNumber.
func (e *Encoder) WriteVarNumber(v TLNum) {
	v.EncodeInto(e.reserve(v.EncodingLength()))
}

// WriteTypeAndLength prepends a TLV header.
func (e *Encoder) WriteTypeAndLength(typ TLNum, length int) {
	l := TLNum(length)
	buf := e.reserve(typ.EncodingLength() + l.EncodingLength())
	p := typ.EncodeInto(buf)
	l.EncodeInto(buf[p:])
}

// WriteBuffer prepends raw bytes.
func (e *Encoder) WriteBuffer(b []byte) {
	copy(e.reserve(len(b)), b)
}

// WriteBlob prepends a TLV whose value is val.
func (e *Encoder) WriteBlob(typ TLNum, val []byte) {
	l := TLNum(len(val))
	buf := e.reserve(typ.EncodingLength() + l.EncodingLength() + len(val))
	p := typ.EncodeInto(buf)
	p += l.EncodeInto(buf[p:])
	copy(buf[p:], val)
}

// WriteOptionalBlob writes nothing when val is nil. An empty non-nil val
// produces a zero-length TLV.
func (e *Encoder) WriteOptionalBlob(typ TLNum, val []byte) {
	if val != nil {
		e.WriteBlob(typ, val)
	}
}

func (e *Encoder) WriteNonNegativeInteger(typ TLNum, n uint64) {
	v := Nat(n)
	l := v.EncodingLength()
	buf := e.reserve(typ.EncodingLength() + 1 + l)
	p := typ.EncodeInto(buf)
	buf[p] = byte(l)
	v.EncodeInto(buf[p+1:])
}

func (e *Encoder) WriteOptionalNonNegativeInteger(typ TLNum, n optional.Optional[uint64]) {
	if v, ok := n.Get(); ok {
		e.WriteNonNegativeInteger(typ, v)
	}
}

// WriteBoolean writes a zero-length TLV for true and nothing for false.
func (e *Encoder) WriteBoolean(typ TLNum, b bool) {
	if b {
		e.WriteTypeAndLength(typ, 0)
	}
}

// WriteNestedTlv runs inner to prepend the children, then prepends the outer
// Type and Length covering them. With omitZeroLength, an inner callback that
// writes nothing leaves no trace at all.
func (e *Encoder) WriteNestedTlv(typ TLNum, inner func(*Encoder) error, omitZeroLength bool) error {
	before := e.Length()
	if err := inner(e); err != nil {
		return err
	}
	l := e.Length() - before
	if l == 0 && omitZeroLength {
		return nil
	}
	e.WriteTypeAndLength(typ, l)
	return nil
}
