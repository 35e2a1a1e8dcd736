package kv

import (
	"github.com/spf13/cobra"

	"github.com/anna-kv/client/cmd/util"
	"github.com/anna-kv/client/redislike"
)

var (
	conn *redislike.Connection

	// KeyValueCommands represents the KV command group
	KeyValueCommands = &cobra.Command{
		Use:               "kv",
		Short:             "Perform key-value store operations",
		PersistentPreRunE: setupKVClient,
	}
)

func init() {
	// Initialize viper
	cobra.OnInitialize(util.InitClientConfig)

	// Add common connection flags to the KV command
	util.SetupClientFlags(KeyValueCommands)

	// Add subcommands
	KeyValueCommands.AddCommand(setCmd)
	KeyValueCommands.AddCommand(setNXCmd)
	KeyValueCommands.AddCommand(getCmd)
	KeyValueCommands.AddCommand(sAddCmd)
	KeyValueCommands.AddCommand(sMembersCmd)
	KeyValueCommands.AddCommand(hSetCmd)
	KeyValueCommands.AddCommand(hGetAllCmd)
	KeyValueCommands.AddCommand(incrCmd)
	KeyValueCommands.AddCommand(perfTestCmd)
}

// setupKVClient opens the cluster connection the subcommands share
func setupKVClient(cmd *cobra.Command, _ []string) error {
	// Bind command flags to viper
	if err := util.BindCommandFlags(cmd); err != nil {
		return err
	}

	// Get serializer
	s, err := util.GetSerializer()
	if err != nil {
		return err
	}

	// Create the store client
	client, err := redislike.Open(util.GetClientConfig(), s)
	if err != nil {
		return err
	}
	conn, err = client.GetConnection()

	return err
}
