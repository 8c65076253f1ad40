package node

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/named-data/ndn-cpp-sub004/std/log"
	"github.com/named-data/ndn-cpp-sub004/std/utils"
	"github.com/named-data/ndn-cpp-sub004/std/utils/toolutils"
	"github.com/spf13/cobra"
)

var CmdNode = &cobra.Command{
	Use:     "run CONFIG-FILE",
	Short:   "Run a PSync full sync node",
	GroupID: "run",
	Version: utils.Version,
	Args:    cobra.ExactArgs(1),
	Run:     run,
}

func run(cmd *cobra.Command, args []string) {
	config := struct {
		Node *Config `json:"node"`
	}{
		Node: DefaultConfig(),
	}
	toolutils.ReadYamlOrExit(&config, args[0])

	if err := config.Node.Parse(); err != nil {
		log.Fatal(nil, "Configuration error", "err", err)
	}

	node := NewNode(config.Node)
	if err := node.Start(); err != nil {
		log.Fatal(nil, "Failed to start node", "err", err)
	}
	defer node.Stop()

	sigChannel := make(chan os.Signal, 1)
	signal.Notify(sigChannel, os.Interrupt, syscall.SIGTERM)
	<-sigChannel
}
