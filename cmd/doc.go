// Package cmd implements the command-line interface for the anna
// key-value store client. It provides a hierarchical command structure
// for interacting with a running cluster.
//
// The package is organized into several subpackages:
//
//   - kv: Commands for key-value operations (get, set, sadd, incr, etc.)
//   - repl: An interactive shell speaking the same command set
//   - util: Shared utilities for command-line processing and configuration (internal use)
//
// See anna-cli -help for a list of all commands.
package cmd
