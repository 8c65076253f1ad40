package psync

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"

	enc "github.com/named-data/ndn-cpp-sub004/std/encoding"
	"github.com/named-data/ndn-cpp-sub004/std/iblt"
	"github.com/named-data/ndn-cpp-sub004/std/sync/psync"
	"github.com/spf13/cobra"
)

type IbltTool struct {
	expected int
}

func NewIbltTool(expected int) *IbltTool {
	return &IbltTool{expected: expected}
}

func CmdIblt() *cobra.Command {
	t := NewIbltTool(psync.DefaultExpectedNumEntries)
	cmd := &cobra.Command{
		GroupID: "tools",
		Use:     "iblt NAME...",
		Short:   "Print the sync Interest IBLT of a set of names",
		Long: `Print the name hash of each name, then the encoded IBLT holding them,
as carried in the last component of a sync Interest.`,
		Args:    cobra.MinimumNArgs(1),
		Example: `  psync iblt /test/memphis/%01 -n 10`,
		Run: func(cmd *cobra.Command, args []string) {
			if err := t.Run(os.Stdout, args); err != nil {
				fmt.Fprintf(os.Stderr, "%v\n", err)
				os.Exit(1)
			}
		},
	}
	cmd.Flags().IntVarP(&t.expected, "expected", "n", t.expected, "expected number of entries")
	return cmd
}

func (t *IbltTool) Run(w io.Writer, names []string) error {
	if t.expected <= 0 {
		return fmt.Errorf("expected number of entries must be positive")
	}
	table := iblt.New(t.expected)
	for _, s := range names {
		name, err := enc.NameFromStr(s)
		if err != nil {
			return fmt.Errorf("invalid name %s: %w", s, err)
		}
		hash := psync.NameHash(name)
		table.Insert(hash)
		fmt.Fprintf(w, "%08x %s\n", hash, name)
	}

	wire, err := table.Encode()
	if err != nil {
		return err
	}
	fmt.Fprintln(w, hex.EncodeToString(wire))
	return nil
}
