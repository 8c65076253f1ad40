package io

import (
	"errors"
	"fmt"
	"io"

	enc "github.com/named-data/ndn-cpp-sub004/std/encoding"
	"github.com/named-data/ndn-cpp-sub004/std/ndn"
)

// ReadTlvStream reads TLV frames from a byte stream and calls onFrame for
// each complete one. The frame is only valid during the call.
// It returns nil on EOF or when onFrame returns false.
func ReadTlvStream(
	reader io.Reader,
	onFrame func([]byte) bool,
	ignoreError func(error) bool,
) error {
	recvBuf := make([]byte, ndn.MaxNDNPacketSize*8)
	recvOff := 0
	tlvOff := 0

	for {
		// If less than one packet space remains in buffer, shift to beginning
		if len(recvBuf)-recvOff < ndn.MaxNDNPacketSize {
			copy(recvBuf, recvBuf[tlvOff:recvOff])
			recvOff -= tlvOff
			tlvOff = 0
		}

		// Read multiple packets at once
		readSize, err := reader.Read(recvBuf[recvOff:])
		recvOff += readSize
		if err != nil {
			if ignoreError != nil && ignoreError(err) {
				continue
			}
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		for {
			tlvSize, ok := frameSize(recvBuf[tlvOff:recvOff])
			if !ok {
				// Probably incomplete packet
				break
			}

			if tlvSize > ndn.MaxNDNPacketSize {
				return fmt.Errorf("received TLV of %d bytes, larger than MaxNDNPacketSize", tlvSize)
			}
			if recvOff-tlvOff < tlvSize {
				// Incomplete packet (for sure)
				break
			}

			shouldContinue := onFrame(recvBuf[tlvOff : tlvOff+tlvSize])
			if !shouldContinue {
				return nil
			}
			tlvOff += tlvSize
		}
	}
}

// frameSize returns the total size of the TLV at the start of buf, if its
// header is complete.
func frameSize(buf []byte) (int, bool) {
	_, n1, err := enc.ParseTLNum(buf)
	if err != nil {
		return 0, false
	}
	l, n2, err := enc.ParseTLNum(buf[n1:])
	if err != nil {
		return 0, false
	}
	if uint64(l) > uint64(ndn.MaxNDNPacketSize) {
		return ndn.MaxNDNPacketSize + 1, true
	}
	return n1 + n2 + int(l), true
}
