package cmd

import (
	"github.com/named-data/ndn-cpp-sub004/node"
	"github.com/named-data/ndn-cpp-sub004/std/utils"
	tools "github.com/named-data/ndn-cpp-sub004/tools/psync"
	"github.com/spf13/cobra"
)

var CmdPSync = &cobra.Command{
	Use:     "psync",
	Short:   "PSync full synchronization over NDN",
	Version: utils.Version,
}

func init() {
	cobra.EnableCommandSorting = false
	CmdPSync.Root().CompletionOptions.HiddenDefaultCmd = true
	CmdPSync.PersistentFlags().BoolP("help", "h", false, "Print usage")
	CmdPSync.PersistentFlags().Lookup("help").Hidden = true

	CmdPSync.AddGroup(&cobra.Group{ID: "run", Title: "Sync Node"})
	CmdPSync.AddCommand(node.CmdNode)

	CmdPSync.AddGroup(&cobra.Group{ID: "tools", Title: "Debug Tools"})
	CmdPSync.AddCommand(tools.CmdTlv())
	CmdPSync.AddCommand(tools.CmdIblt())
}
