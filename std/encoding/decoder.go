package encoding

import (
	"github.com/named-data/ndn-cpp-sub004/std/types/optional"
)

// Decoder reads TLV forward from a single buffer.
// Nested blocks are tracked by their end offset, returned from
// ReadNestedTlvsStart and handed back to FinishNestedTlvs.
type Decoder struct {
	buf []byte
	pos int
}

func NewDecoder(buf []byte) *Decoder {
	return &Decoder{buf: buf}
}

// Offset returns the cursor position from the start of the input.
func (d *Decoder) Offset() int {
	return d.pos
}

func (d *Decoder) Seek(offset int) {
	d.pos = offset
}

// Slice returns the input bytes between two offsets without copying.
func (d *Decoder) Slice(begin, end int) []byte {
	return d.buf[begin:end]
}

func (d *Decoder) Input() []byte {
	return d.buf
}

func (d *Decoder) ReadVarNumber() (TLNum, error) {
	v, n, err := ParseTLNum(d.buf[d.pos:])
	if err != nil {
		return 0, err
	}
	d.pos += n
	return v, nil
}

// ReadTypeAndLength consumes a TLV header of the expected type and returns the value length.
// The length is checked against the input size.
func (d *Decoder) ReadTypeAndLength(expectedType TLNum) (int, error) {
	start := d.pos
	typ, err := d.ReadVarNumber()
	if err != nil {
		return 0, err
	}
	if typ != expectedType {
		d.pos = start
		return 0, ErrUnexpectedType{Expected: expectedType, Actual: typ}
	}
	return d.readLength()
}

func (d *Decoder) readLength() (int, error) {
	l, err := d.ReadVarNumber()
	if err != nil {
		return 0, err
	}
	if uint64(l) > uint64(len(d.buf)-d.pos) {
		return 0, ErrBufferOverflow
	}
	return int(l), nil
}

// ReadNestedTlvsStart consumes the header of a nested TLV and returns the end
// offset of its value.
func (d *Decoder) ReadNestedTlvsStart(expectedType TLNum) (int, error) {
	l, err := d.ReadTypeAndLength(expectedType)
	if err != nil {
		return 0, err
	}
	return d.pos + l, nil
}

// FinishNestedTlvs skips the remaining unknown children up to endOffset.
// A remaining child with a critical type, or a child that crosses endOffset,
// is an error.
func (d *Decoder) FinishNestedTlvs(endOffset int) error {
	if d.pos == endOffset {
		return nil
	}
	for d.pos < endOffset {
		typ, err := d.ReadVarNumber()
		if err != nil {
			return err
		}
		if IsCriticalType(typ) {
			return ErrUnrecognizedField{TypeNum: typ}
		}
		l, err := d.readLength()
		if err != nil {
			return err
		}
		d.pos += l
	}
	if d.pos != endOffset {
		return ErrFormat{"TLV length exceeds the length of the enclosing TLV"}
	}
	return nil
}

// PeekType reports whether the next TLV before endOffset has the given type.
// The cursor does not move.
func (d *Decoder) PeekType(expectedType TLNum, endOffset int) bool {
	if d.pos >= endOffset {
		return false
	}
	typ, _, err := ParseTLNum(d.buf[d.pos:endOffset])
	return err == nil && typ == expectedType
}

// ReadBlob returns the value of the next TLV, which must have the expected type.
// The result aliases the input buffer.
func (d *Decoder) ReadBlob(expectedType TLNum) ([]byte, error) {
	l, err := d.ReadTypeAndLength(expectedType)
	if err != nil {
		return nil, err
	}
	val := d.buf[d.pos : d.pos+l]
	d.pos += l
	return val, nil
}

// ReadOptionalBlob returns nil if the next TLV before endOffset is not of the expected type.
func (d *Decoder) ReadOptionalBlob(expectedType TLNum, endOffset int) ([]byte, error) {
	if !d.PeekType(expectedType, endOffset) {
		return nil, nil
	}
	return d.ReadBlob(expectedType)
}

func (d *Decoder) ReadNonNegativeInteger(expectedType TLNum) (uint64, error) {
	val, err := d.ReadBlob(expectedType)
	if err != nil {
		return 0, err
	}
	n, err := ParseNat(val)
	return uint64(n), err
}

func (d *Decoder) ReadOptionalNonNegativeInteger(expectedType TLNum, endOffset int) (
	ret optional.Optional[uint64], err error,
) {
	if !d.PeekType(expectedType, endOffset) {
		return ret, nil
	}
	n, err := d.ReadNonNegativeInteger(expectedType)
	if err != nil {
		return ret, err
	}
	ret.Set(n)
	return ret, nil
}

// ReadBoolean returns true if a TLV of the expected type is present before
// endOffset, and consumes it.
func (d *Decoder) ReadBoolean(expectedType TLNum, endOffset int) (bool, error) {
	if !d.PeekType(expectedType, endOffset) {
		return false, nil
	}
	_, err := d.ReadBlob(expectedType)
	return err == nil, err
}

// Skip consumes the next TLV whatever its type, and returns that type.
func (d *Decoder) Skip() (TLNum, error) {
	typ, err := d.ReadVarNumber()
	if err != nil {
		return 0, err
	}
	l, err := d.readLength()
	if err != nil {
		return 0, err
	}
	d.pos += l
	return typ, nil
}
