package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/anna-kv/client/cmd/kv"
	"github.com/anna-kv/client/cmd/repl"
	"github.com/anna-kv/client/cmd/util"
)

const (
	Version = "0.1.0"
)

var (

	// RootCmd represents the base command when called without any subcommands
	RootCmd = &cobra.Command{
		Use:   "anna-cli",
		Short: "client for the anna key-value store",
		Long: fmt.Sprintf(`anna-cli (v%s)

A client for a partitioned, replicated key-value store built on
lattice values. Concurrent writes merge deterministically instead of
failing, so every operation is coordination-free.`, Version),
	}
	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of anna-cli",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("anna-cli v%s\n", Version)
		},
	}
)

func init() {
	// Add Commands
	RootCmd.AddCommand(kv.KeyValueCommands)
	RootCmd.AddCommand(repl.ReplCmd)
	RootCmd.AddCommand(versionCmd)

	// Add Flags
	key := "serializer"
	RootCmd.PersistentFlags().String(key, "json", util.WrapString("serializer to use (json, gob)"))
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
