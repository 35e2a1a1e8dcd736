package repl

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/anna-kv/client/cmd/util"
	"github.com/anna-kv/client/protocol"
	"github.com/anna-kv/client/redislike"
)

var (
	// ReplCmd represents the interactive shell
	ReplCmd = &cobra.Command{
		Use:   "repl",
		Short: "Interactive shell for key-value store operations",
		RunE:  runRepl,
	}
)

func init() {
	// Initialize viper
	cobra.OnInitialize(util.InitClientConfig)

	// Add common connection flags
	util.SetupClientFlags(ReplCmd)
}

var completer = readline.NewPrefixCompleter(
	readline.PcItem("get"),
	readline.PcItem("set"),
	readline.PcItem("setnx"),
	readline.PcItem("sadd"),
	readline.PcItem("smembers"),
	readline.PcItem("hset"),
	readline.PcItem("hgetall"),
	readline.PcItem("incr"),
	readline.PcItem("help"),
	readline.PcItem("exit"),
)

func runRepl(cmd *cobra.Command, _ []string) error {
	if err := util.BindCommandFlags(cmd); err != nil {
		return err
	}

	s, err := util.GetSerializer()
	if err != nil {
		return err
	}
	client, err := redislike.Open(util.GetClientConfig(), s)
	if err != nil {
		return err
	}
	conn, err := client.GetConnection()
	if err != nil {
		return err
	}
	defer conn.Close()

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "anna> ",
		HistoryFile:     "/tmp/anna-cli-history",
		AutoComplete:    completer,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return err
	}
	defer rl.Close()

	fmt.Println("Type 'help' for a list of commands, 'exit' to quit.")

	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			continue
		} else if err == io.EOF {
			return nil
		}

		args := strings.Fields(line)
		if len(args) == 0 {
			continue
		}
		if args[0] == "exit" || args[0] == "quit" {
			return nil
		}

		if err := dispatch(conn, args); err != nil {
			fmt.Printf("error: %v\n", err)
		}
	}
}

// dispatch executes one shell command against the connection
func dispatch(conn *redislike.Connection, args []string) error {
	cmd, args := strings.ToLower(args[0]), args[1:]

	switch cmd {
	case "help":
		printHelp()
		return nil

	case "get":
		if len(args) != 1 {
			return fmt.Errorf("usage: get <key>")
		}
		value, err := conn.Get(protocol.ClientKey(args[0]))
		if err != nil {
			return err
		}
		fmt.Printf("%s\n", value)
		return nil

	case "set":
		if len(args) != 2 {
			return fmt.Errorf("usage: set <key> <value>")
		}
		return conn.Set(protocol.ClientKey(args[0]), args[1])

	case "setnx":
		if len(args) != 2 {
			return fmt.Errorf("usage: setnx <key> <value>")
		}
		ok, err := conn.SetNX(protocol.ClientKey(args[0]), args[1])
		if err != nil {
			return err
		}
		fmt.Printf("written=%t\n", ok)
		return nil

	case "sadd":
		if len(args) < 2 {
			return fmt.Errorf("usage: sadd <key> <member>...")
		}
		members := make([]any, 0, len(args)-1)
		for _, m := range args[1:] {
			members = append(members, m)
		}
		return conn.SAdd(protocol.ClientKey(args[0]), members...)

	case "smembers":
		if len(args) != 1 {
			return fmt.Errorf("usage: smembers <key>")
		}
		members, err := conn.SMembers(protocol.ClientKey(args[0]))
		if err != nil {
			return err
		}
		for _, m := range members {
			fmt.Printf("%s\n", m)
		}
		return nil

	case "hset":
		if len(args) < 3 || len(args)%2 != 1 {
			return fmt.Errorf("usage: hset <key> <field> <value>...")
		}
		fields := make(map[string]any, (len(args)-1)/2)
		for i := 1; i < len(args); i += 2 {
			fields[args[i]] = args[i+1]
		}
		return conn.HMSet(protocol.ClientKey(args[0]), fields)

	case "hgetall":
		if len(args) != 1 {
			return fmt.Errorf("usage: hgetall <key>")
		}
		fields, err := conn.HGetAll(protocol.ClientKey(args[0]))
		if err != nil {
			return err
		}
		for field, value := range fields {
			fmt.Printf("%s=%s\n", field, value)
		}
		return nil

	case "incr":
		if len(args) < 1 || len(args) > 2 {
			return fmt.Errorf("usage: incr <key> [delta]")
		}
		delta := int64(1)
		if len(args) == 2 {
			var err error
			delta, err = strconv.ParseInt(args[1], 10, 64)
			if err != nil {
				return fmt.Errorf("delta must be a number: %w", err)
			}
		}
		count, err := conn.IncrBy(protocol.ClientKey(args[0]), delta)
		if err != nil {
			return err
		}
		fmt.Printf("%d\n", count)
		return nil

	default:
		return fmt.Errorf("unknown command %q, type 'help'", cmd)
	}
}

func printHelp() {
	fmt.Print(`commands:
  get <key>                    read the byte-string value of a key
  set <key> <value>            write a byte-string value (last writer wins)
  setnx <key> <value>          write only if the key does not exist yet
  sadd <key> <member>...       add members to a grow-only set
  smembers <key>               list all members of a set
  hset <key> <field> <value>.. set fields of a hash
  hgetall <key>                list all fields of a hash
  incr <key> [delta]           add a signed delta (default 1) to a counter
  exit                         quit the shell
`)
}
