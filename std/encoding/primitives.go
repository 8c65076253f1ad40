package encoding

import (
	"encoding/binary"
)

// TLNum is a TLV Type or Length number, encoded as an NDN VarNumber.
type TLNum uint64

// Nat is a TLV non-negative integer, encoded in 1, 2, 4 or 8 big-endian bytes.
type Nat uint64

// EncodingLength returns the size of the shortest VarNumber that holds v.
func (v TLNum) EncodingLength() int {
	switch x := uint64(v); {
	case x <= 0xfc:
		return 1
	case x <= 0xffff:
		return 3
	case x <= 0xffffffff:
		return 5
	default:
		return 9
	}
}

// EncodeInto writes v at the beginning of buf and returns the number of bytes written.
// buf must hold at least EncodingLength() bytes.
func (v TLNum) EncodeInto(buf []byte) int {
	switch x := uint64(v); {
	case x <= 0xfc:
		buf[0] = byte(x)
		return 1
	case x <= 0xffff:
		buf[0] = 0xfd
		binary.BigEndian.PutUint16(buf[1:], uint16(x))
		return 3
	case x <= 0xffffffff:
		buf[0] = 0xfe
		binary.BigEndian.PutUint32(buf[1:], uint32(x))
		return 5
	default:
		buf[0] = 0xff
		binary.BigEndian.PutUint64(buf[1:], x)
		return 9
	}
}

func (v TLNum) Bytes() []byte {
	buf := make([]byte, v.EncodingLength())
	v.EncodeInto(buf)
	return buf
}

// ParseTLNum reads a VarNumber from the front of buf.
// A marker whose width exceeds the remaining bytes is a decoding error.
func ParseTLNum(buf []byte) (val TLNum, pos int, err error) {
	if len(buf) == 0 {
		return 0, 0, ErrBufferOverflow
	}
	switch x := buf[0]; {
	case x <= 0xfc:
		return TLNum(x), 1, nil
	case x == 0xfd:
		if len(buf) < 3 {
			return 0, 0, ErrFormat{"VarNumber with marker 253 is truncated"}
		}
		return TLNum(binary.BigEndian.Uint16(buf[1:3])), 3, nil
	case x == 0xfe:
		if len(buf) < 5 {
			return 0, 0, ErrFormat{"VarNumber with marker 254 is truncated"}
		}
		return TLNum(binary.BigEndian.Uint32(buf[1:5])), 5, nil
	default:
		if len(buf) < 9 {
			return 0, 0, ErrFormat{"VarNumber with marker 255 is truncated"}
		}
		return TLNum(binary.BigEndian.Uint64(buf[1:9])), 9, nil
	}
}

// EncodingLength returns 1, 2, 4 or 8.
func (v Nat) EncodingLength() int {
	switch x := uint64(v); {
	case x <= 0xff:
		return 1
	case x <= 0xffff:
		return 2
	case x <= 0xffffffff:
		return 4
	default:
		return 8
	}
}

func (v Nat) EncodeInto(buf []byte) int {
	switch x := uint64(v); {
	case x <= 0xff:
		buf[0] = byte(x)
		return 1
	case x <= 0xffff:
		binary.BigEndian.PutUint16(buf, uint16(x))
		return 2
	case x <= 0xffffffff:
		binary.BigEndian.PutUint32(buf, uint32(x))
		return 4
	default:
		binary.BigEndian.PutUint64(buf, x)
		return 8
	}
}

func (v Nat) Bytes() []byte {
	buf := make([]byte, v.EncodingLength())
	v.EncodeInto(buf)
	return buf
}

// ParseNat decodes a non-negative integer value. Only the widths 1, 2, 4 and 8 are legal.
func ParseNat(buf []byte) (Nat, error) {
	switch len(buf) {
	case 1:
		return Nat(buf[0]), nil
	case 2:
		return Nat(binary.BigEndian.Uint16(buf)), nil
	case 4:
		return Nat(binary.BigEndian.Uint32(buf)), nil
	case 8:
		return Nat(binary.BigEndian.Uint64(buf)), nil
	default:
		return 0, ErrFormat{"natural number length is not 1, 2, 4 or 8"}
	}
}

// IsCriticalType reports whether an unrecognized TLV of this type must abort decoding.
func IsCriticalType(typ TLNum) bool {
	return typ < 32 || typ&1 == 1
}
