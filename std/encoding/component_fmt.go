package encoding

import (
	"encoding/hex"
	"strconv"
	"strings"
)

const upperHex = "0123456789ABCDEF"

// valueFormat converts a component value to and from its URI text.
type valueFormat interface {
	writeTo(val []byte, sb *strings.Builder)
	parse(s string) ([]byte, error)
}

type textFormat struct{}
type decimalFormat struct{}
type hexFormat struct{}

// isUnreservedByte lists the bytes that appear unescaped in a component URI.
func isUnreservedByte(b byte) bool {
	return ('a' <= b && b <= 'z') ||
		('A' <= b && b <= 'Z') ||
		('0' <= b && b <= '9') ||
		b == '+' || b == '-' || b == '.' || b == '_'
}

func (textFormat) writeTo(val []byte, sb *strings.Builder) {
	onlyPeriods := true
	for _, b := range val {
		if b != '.' {
			onlyPeriods = false
			break
		}
	}
	// a value of only periods gets three more so it cannot read as "." or ".."
	if onlyPeriods {
		sb.WriteString("...")
	}
	for _, b := range val {
		if isUnreservedByte(b) {
			sb.WriteByte(b)
		} else {
			sb.WriteByte('%')
			sb.WriteByte(upperHex[b>>4])
			sb.WriteByte(upperHex[b&0x0f])
		}
	}
}

func (textFormat) parse(s string) ([]byte, error) {
	if strings.Trim(s, ".") == "" {
		if len(s) < 3 {
			return nil, ErrFormat{"component value \"" + s + "\" is illegal"}
		}
		return []byte(s[3:]), nil
	}

	val := make([]byte, 0, len(s))
	for i := 0; i < len(s); {
		switch c := s[i]; {
		case c == '%':
			if i+2 >= len(s) {
				return nil, ErrFormat{"incomplete percent escape in component: " + s}
			}
			v, err := strconv.ParseUint(s[i+1:i+3], 16, 8)
			if err != nil {
				return nil, ErrFormat{"invalid percent escape in component: " + s}
			}
			val = append(val, byte(v))
			i += 3
		case c == '/':
			return nil, ErrFormat{"component value contains a slash: " + s}
		default:
			// other reserved characters are accepted as is
			val = append(val, c)
			i++
		}
	}
	return val, nil
}

func (decimalFormat) writeTo(val []byte, sb *strings.Builder) {
	x := uint64(0)
	for _, b := range val {
		x = (x << 8) | uint64(b)
	}
	sb.WriteString(strconv.FormatUint(x, 10))
}

func (decimalFormat) parse(s string) ([]byte, error) {
	x, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return nil, ErrFormat{"invalid decimal component value: " + s}
	}
	return Nat(x).Bytes(), nil
}

func (hexFormat) writeTo(val []byte, sb *strings.Builder) {
	sb.WriteString(hex.EncodeToString(val))
}

func (hexFormat) parse(s string) ([]byte, error) {
	val, err := hex.DecodeString(s)
	if err != nil {
		return nil, ErrFormat{"invalid hexadecimal component value: " + s}
	}
	return val, nil
}

type typedConvention struct {
	typ  TLNum
	name string
	fmt  valueFormat
}

var typedConventions = []typedConvention{
	{TypeImplicitSha256DigestComponent, "sha256digest", hexFormat{}},
	{TypeParametersSha256DigestComponent, "params-sha256", hexFormat{}},
	{TypeSegmentNameComponent, "seg", decimalFormat{}},
	{TypeByteOffsetNameComponent, "off", decimalFormat{}},
	{TypeVersionNameComponent, "v", decimalFormat{}},
	{TypeTimestampNameComponent, "t", decimalFormat{}},
	{TypeSequenceNumNameComponent, "seq", decimalFormat{}},
}

var (
	conventionByType = map[TLNum]*typedConvention{}
	conventionByName = map[string]*typedConvention{}
)

func init() {
	for i := range typedConventions {
		c := &typedConventions[i]
		conventionByType[c.typ] = c
		conventionByName[c.name] = c
	}
}
