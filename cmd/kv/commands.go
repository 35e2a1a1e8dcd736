package kv

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/anna-kv/client/protocol"
)

var (
	setCmd = &cobra.Command{
		Use:   "set [key] [value]",
		Short: "Sets the value for a key (last writer wins)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := protocol.ClientKey(args[0])
			value := args[1]
			if err := conn.Set(key, value); err != nil {
				return err
			} else {
				fmt.Println("set successfully")
			}
			return nil
		},
	}
	setNXCmd = &cobra.Command{
		Use:   "setnx [key] [value]",
		Short: "Sets the value for a key only if the key does not exist yet",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := protocol.ClientKey(args[0])
			value := args[1]
			if ok, err := conn.SetNX(key, value); err != nil {
				return err
			} else {
				fmt.Printf("key=%s, written=%t\n", key, ok)
			}
			return nil
		},
	}
	getCmd = &cobra.Command{
		Use:   "get [key]",
		Short: "Reads the value for a key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := protocol.ClientKey(args[0])
			if resp, err := conn.Get(key); err != nil {
				return err
			} else {
				fmt.Printf("key=%s, resp=%s\n", key, resp)
			}
			return nil
		},
	}
	sAddCmd = &cobra.Command{
		Use:   "sadd [key] [member]...",
		Short: "Adds members to the grow-only set stored under a key",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := protocol.ClientKey(args[0])
			members := make([]any, 0, len(args)-1)
			for _, m := range args[1:] {
				members = append(members, m)
			}
			if err := conn.SAdd(key, members...); err != nil {
				return err
			} else {
				fmt.Println("sadd successfully")
			}
			return nil
		},
	}
	sMembersCmd = &cobra.Command{
		Use:   "smembers [key]",
		Short: "Reads all members of the set stored under a key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := protocol.ClientKey(args[0])
			if members, err := conn.SMembers(key); err != nil {
				return err
			} else {
				fmt.Printf("key=%s, members=%d\n", key, len(members))
				for _, m := range members {
					fmt.Printf("  %s\n", m)
				}
			}
			return nil
		},
	}
	hSetCmd = &cobra.Command{
		Use:   "hset [key] [field] [value]...",
		Short: "Sets fields of the hash stored under a key",
		Args:  func(cmd *cobra.Command, args []string) error {
			if len(args) < 3 || len(args)%2 != 1 {
				return fmt.Errorf("hset expects a key followed by field/value pairs")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			key := protocol.ClientKey(args[0])
			fields := make(map[string]any, (len(args)-1)/2)
			for i := 1; i < len(args); i += 2 {
				fields[args[i]] = args[i+1]
			}
			if err := conn.HMSet(key, fields); err != nil {
				return err
			} else {
				fmt.Println("hset successfully")
			}
			return nil
		},
	}
	hGetAllCmd = &cobra.Command{
		Use:   "hgetall [key]",
		Short: "Reads all fields of the hash stored under a key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := protocol.ClientKey(args[0])
			if fields, err := conn.HGetAll(key); err != nil {
				return err
			} else {
				fmt.Printf("key=%s, fields=%d\n", key, len(fields))
				for field, value := range fields {
					fmt.Printf("  %s=%s\n", field, value)
				}
			}
			return nil
		},
	}
	incrCmd = &cobra.Command{
		Use:   "incr [key] [delta]",
		Short: "Adds a signed delta to the counter stored under a key",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := protocol.ClientKey(args[0])
			delta := int64(1)
			if len(args) == 2 {
				var err error
				delta, err = strconv.ParseInt(args[1], 10, 64)
				if err != nil {
					return fmt.Errorf("delta must be a number: %w", err)
				}
			}
			if count, err := conn.IncrBy(key, delta); err != nil {
				return err
			} else {
				fmt.Printf("key=%s, count=%d\n", key, count)
			}
			return nil
		},
	}
)
