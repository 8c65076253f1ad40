package psync

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"

	enc "github.com/named-data/ndn-cpp-sub004/std/encoding"
	"github.com/named-data/ndn-cpp-sub004/std/ndn/spec"
	"github.com/named-data/ndn-cpp-sub004/std/sync/psync"
	"github.com/spf13/cobra"
)

func CmdTlv() *cobra.Command {
	return &cobra.Command{
		GroupID: "tools",
		Use:     "tlv HEX",
		Short:   "Print the TLV tree of a hex encoded packet",
		Args:    cobra.MinimumNArgs(1),
		Example: `  psync tlv 0507 0703 0801 61 0a04 01020304`,
		Run: func(cmd *cobra.Command, args []string) {
			buf, err := hex.DecodeString(strings.Join(strings.Fields(strings.Join(args, "")), ""))
			if err != nil {
				fmt.Fprintf(os.Stderr, "Invalid hex input: %v\n", err)
				os.Exit(1)
			}
			if err = DumpTlv(os.Stdout, buf); err != nil {
				fmt.Fprintf(os.Stderr, "Malformed TLV: %v\n", err)
				os.Exit(1)
			}
		},
	}
}

var tlvNames = map[enc.TLNum]string{
	spec.TypeInterest:              "Interest",
	spec.TypeData:                  "Data",
	spec.TypeName:                  "Name",
	spec.TypeSelectors:             "Selectors",
	spec.TypeNonce:                 "Nonce",
	spec.TypeInterestLifetime:      "InterestLifetime",
	spec.TypeMustBeFresh:           "MustBeFresh",
	spec.TypeMetaInfo:              "MetaInfo",
	spec.TypeContent:               "Content",
	spec.TypeSignatureInfo:         "SignatureInfo",
	spec.TypeSignatureValue:        "SignatureValue",
	spec.TypeContentType:           "ContentType",
	spec.TypeFreshnessPeriod:       "FreshnessPeriod",
	spec.TypeFinalBlockId:          "FinalBlockId",
	spec.TypeSignatureType:         "SignatureType",
	spec.TypeKeyLocator:            "KeyLocator",
	spec.TypeKeyDigest:             "KeyDigest",
	spec.TypeForwardingHint:        "ForwardingHint",
	spec.TypeCanBePrefix:           "CanBePrefix",
	spec.TypeHopLimit:              "HopLimit",
	spec.TypeApplicationParameters: "ApplicationParameters",
	spec.TypeLpPacket:              "LpPacket",
	spec.TypeFragment:              "Fragment",
	spec.TypePitToken:              "PitToken",
	spec.TypeNack:                  "Nack",
	spec.TypeNackReason:            "NackReason",
	spec.TypeControlParameters:     "ControlParameters",
	spec.TypeControlResponse:       "ControlResponse",
	spec.TypeStatusCode:            "StatusCode",
	spec.TypeStatusText:            "StatusText",
	psync.TypePSyncContent:         "PSyncContent",
}

// nested elements are printed as a tree
var tlvNested = map[enc.TLNum]bool{
	spec.TypeInterest:          true,
	spec.TypeData:              true,
	spec.TypeSelectors:         true,
	spec.TypeMetaInfo:          true,
	spec.TypeSignatureInfo:     true,
	spec.TypeKeyLocator:        true,
	spec.TypeForwardingHint:    true,
	spec.TypeLpPacket:          true,
	spec.TypeNack:              true,
	spec.TypeControlParameters: true,
	spec.TypeControlResponse:   true,
	psync.TypePSyncContent:     true,
}

// DumpTlv writes one line per element of buf, indented by depth.
func DumpTlv(w io.Writer, buf []byte) error {
	return dumpTlv(w, buf, 0)
}

func dumpTlv(w io.Writer, buf []byte, depth int) error {
	for len(buf) > 0 {
		typ, n, err := enc.ParseTLNum(buf)
		if err != nil {
			return err
		}
		l, m, err := enc.ParseTLNum(buf[n:])
		if err != nil {
			return err
		}
		start := n + m
		if uint64(l) > uint64(len(buf)-start) {
			return enc.ErrBufferOverflow
		}
		val := buf[start : start+int(l)]
		buf = buf[start+int(l):]

		label, ok := tlvNames[typ]
		if !ok {
			label = fmt.Sprintf("%d", typ)
		}
		indent := strings.Repeat("  ", depth)

		switch {
		case typ == spec.TypeName:
			name, err := nameOf(val)
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "%s%s (%d) %s\n", indent, label, l, name)
		case tlvNested[typ]:
			fmt.Fprintf(w, "%s%s (%d)\n", indent, label, l)
			if err := dumpTlv(w, val, depth+1); err != nil {
				return err
			}
		default:
			fmt.Fprintf(w, "%s%s (%d) %x\n", indent, label, l, val)
		}
	}
	return nil
}

func nameOf(val []byte) (enc.Name, error) {
	d := enc.NewDecoder(val)
	name := enc.Name{}
	for d.Offset() < len(val) {
		c, err := d.ReadComponent()
		if err != nil {
			return nil, err
		}
		name = append(name, c)
	}
	return name, nil
}
