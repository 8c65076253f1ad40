package psync

import (
	enc "github.com/named-data/ndn-cpp-sub004/std/encoding"
)

// TypePSyncContent is the TLV type of the name list in a sync reply.
const TypePSyncContent enc.TLNum = 128

// State is the content of a sync reply: the names the receiver is missing.
type State struct {
	Content []enc.Name
}

func (s *State) AddContent(name enc.Name) {
	s.Content = append(s.Content, name)
}

// Encode returns the PSyncContent TLV. An empty State still encodes the outer TLV.
func (s *State) Encode() []byte {
	size := 8
	for _, name := range s.Content {
		size += name.EncodingLength() + 8
	}
	e := enc.NewEncoder(size)
	e.WriteNestedTlv(TypePSyncContent, func(e *enc.Encoder) error {
		for i := len(s.Content) - 1; i >= 0; i-- {
			e.WriteName(s.Content[i])
		}
		return nil
	}, false)
	return e.Bytes()
}

// DecodeState parses a PSyncContent TLV. Unknown non-critical elements are skipped.
func DecodeState(wire []byte) (*State, error) {
	d := enc.NewDecoder(wire)
	end, err := d.ReadNestedTlvsStart(TypePSyncContent)
	if err != nil {
		return nil, err
	}
	s := &State{}
	for d.PeekType(enc.TypeName, end) {
		name, err := d.ReadName()
		if err != nil {
			return nil, err
		}
		s.Content = append(s.Content, name)
	}
	if err = d.FinishNestedTlvs(end); err != nil {
		return nil, err
	}
	if end != len(wire) {
		return nil, enc.ErrFormat{Msg: "trailing bytes after PSyncContent"}
	}
	return s, nil
}
