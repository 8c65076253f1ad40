// Package iblt implements the Invertible Bloom Lookup Table used by PSync
// to reconcile sets of 32-bit name hashes.
package iblt

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/klauspost/compress/zlib"
	enc "github.com/named-data/ndn-cpp-sub004/std/encoding"
	"github.com/twmb/murmur3"
)

const (
	// NumHash is the number of hash views, each over its own region of the table.
	NumHash = 3
	// NumHashCheck is the murmur3 seed of the key check hash.
	NumHashCheck = 11

	entrySize = 12
)

// ErrSizeMismatch is returned when two tables of different sizes are combined.
var ErrSizeMismatch = errors.New("iblt: tables have different sizes")

// Entry is one bucket of the table.
type Entry struct {
	Count    int32
	KeySum   uint32
	KeyCheck uint32
}

// IsEmpty reports whether all fields are zero.
func (e Entry) IsEmpty() bool {
	return e.Count == 0 && e.KeySum == 0 && e.KeyCheck == 0
}

// IsPure reports whether the entry holds exactly one key, inserted or erased.
func (e Entry) IsPure() bool {
	return (e.Count == 1 || e.Count == -1) && e.KeyCheck == checkHash(e.KeySum)
}

// IBLT is an Invertible Bloom Lookup Table of uint32 keys.
// It is not safe for concurrent use.
type IBLT struct {
	table []Entry
}

// New creates a table sized for expectedNumEntries differences:
// 1.5 times the number, rounded up to a multiple of NumHash.
func New(expectedNumEntries int) *IBLT {
	n := expectedNumEntries + (expectedNumEntries+1)/2
	if rem := n % NumHash; rem != 0 {
		n += NumHash - rem
	}
	if n == 0 {
		n = NumHash
	}
	return &IBLT{table: make([]Entry, n)}
}

// Decode creates a table for expectedNumEntries and fills it from an encoded table.
func Decode(expectedNumEntries int, buf []byte) (*IBLT, error) {
	t := New(expectedNumEntries)
	if err := t.Initialize(buf); err != nil {
		return nil, err
	}
	return t, nil
}

func keyBytes(key uint32) []byte {
	buf := [4]byte{}
	binary.LittleEndian.PutUint32(buf[:], key)
	return buf[:]
}

func checkHash(key uint32) uint32 {
	return murmur3.SeedSum32(NumHashCheck, keyBytes(key))
}

// Size is the number of entries.
func (t *IBLT) Size() int {
	return len(t.table)
}

// Entry returns the entry at index i.
func (t *IBLT) Entry(i int) Entry {
	return t.table[i]
}

// Clone returns a deep copy.
func (t *IBLT) Clone() *IBLT {
	return &IBLT{table: slices.Clone(t.table)}
}

// indexes returns the bucket of key in each hash view.
func (t *IBLT) indexes(key uint32) [NumHash]int {
	perHash := uint32(len(t.table) / NumHash)
	kb := keyBytes(key)
	ret := [NumHash]int{}
	for i := range ret {
		ret[i] = i*int(perHash) + int(murmur3.SeedSum32(uint32(i), kb)%perHash)
	}
	return ret
}

func (t *IBLT) update(delta int32, key uint32) {
	check := checkHash(key)
	for _, idx := range t.indexes(key) {
		e := &t.table[idx]
		e.Count += delta
		e.KeySum ^= key
		e.KeyCheck ^= check
	}
}

// Insert adds a key.
func (t *IBLT) Insert(key uint32) {
	t.update(1, key)
}

// Erase removes a key. Erasing a key that was never inserted leaves a
// negative entry, which is what Difference relies on.
func (t *IBLT) Erase(key uint32) {
	t.update(-1, key)
}

// ListEntries peels the table and returns the keys with a positive count
// and the keys with a negative count, in ascending order. On a difference
// table, positive keys are those only the receiver has.
// ok is false when entries remain that cannot be peeled; the lists then hold
// whatever was recovered before peeling got stuck.
func (t *IBLT) ListEntries() (positive, negative []uint32, ok bool) {
	peeled := t.Clone()

	// Every peel removes one key; a valid table cannot hold more keys than
	// entries and still be peelable, so more peels means a corrupted table.
	budget := len(peeled.table)
	for {
		erased := 0
		for i := range peeled.table {
			e := peeled.table[i]
			idx := peeled.indexes(e.KeySum)
			if !e.IsPure() || !slices.Contains(idx[:], i) {
				continue
			}
			if budget == 0 {
				return sortKeys(positive), sortKeys(negative), false
			}
			budget--
			if e.Count == 1 {
				positive = append(positive, e.KeySum)
			} else {
				negative = append(negative, e.KeySum)
			}
			peeled.update(-e.Count, e.KeySum)
			erased++
		}
		if erased == 0 {
			break
		}
	}

	for _, e := range peeled.table {
		if !e.IsEmpty() {
			return sortKeys(positive), sortKeys(negative), false
		}
	}
	return sortKeys(positive), sortKeys(negative), true
}

func sortKeys(keys []uint32) []uint32 {
	slices.Sort(keys)
	return slices.Compact(keys)
}

// Difference returns t minus other, entry by entry.
func (t *IBLT) Difference(other *IBLT) (*IBLT, error) {
	if len(t.table) != len(other.table) {
		return nil, fmt.Errorf("%w: %d != %d", ErrSizeMismatch, len(t.table), len(other.table))
	}
	ret := &IBLT{table: make([]Entry, len(t.table))}
	for i, e := range t.table {
		o := other.table[i]
		ret.table[i] = Entry{
			Count:    e.Count - o.Count,
			KeySum:   e.KeySum ^ o.KeySum,
			KeyCheck: e.KeyCheck ^ o.KeyCheck,
		}
	}
	return ret, nil
}

// Equal reports whether both tables have exactly the same entries.
func (t *IBLT) Equal(other *IBLT) bool {
	return slices.Equal(t.table, other.table)
}

// Encode serializes the entries as little endian {count, keySum, keyCheck}
// triples and compresses them with zlib.
func (t *IBLT) Encode() ([]byte, error) {
	raw := make([]byte, 0, len(t.table)*entrySize)
	for _, e := range t.table {
		raw = binary.LittleEndian.AppendUint32(raw, uint32(e.Count))
		raw = binary.LittleEndian.AppendUint32(raw, e.KeySum)
		raw = binary.LittleEndian.AppendUint32(raw, e.KeyCheck)
	}

	out := bytes.Buffer{}
	w, err := zlib.NewWriterLevel(&out, zlib.BestCompression)
	if err != nil {
		return nil, err
	}
	if _, err = w.Write(raw); err != nil {
		return nil, err
	}
	if err = w.Close(); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

// Initialize replaces the entries with an encoded table of the same size.
func (t *IBLT) Initialize(buf []byte) error {
	r, err := zlib.NewReader(bytes.NewReader(buf))
	if err != nil {
		return enc.ErrFormat{Msg: "iblt: " + err.Error()}
	}
	defer r.Close()

	want := len(t.table) * entrySize
	raw, err := io.ReadAll(io.LimitReader(r, int64(want)+1))
	if err != nil {
		return enc.ErrFormat{Msg: "iblt: " + err.Error()}
	}
	if len(raw) != want {
		return enc.ErrFormat{Msg: fmt.Sprintf("iblt: decoded %d values, expected %d",
			len(raw)/4, len(t.table)*NumHash)}
	}

	for i := range t.table {
		b := raw[i*entrySize:]
		t.table[i] = Entry{
			Count:    int32(binary.LittleEndian.Uint32(b[0:])),
			KeySum:   binary.LittleEndian.Uint32(b[4:]),
			KeyCheck: binary.LittleEndian.Uint32(b[8:]),
		}
	}
	return nil
}
