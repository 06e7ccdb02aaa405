// Package cmd contains the wallet commands.
package cmd

import (
	"os"

	"github.com/ardanlabs/powledger/foundation/nameservice"
	"github.com/spf13/cobra"
)

var (
	url   string
	seed  int64
	names []string
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&url, "url", "u", "http://localhost:8080", "Url of the ledger service.")
	rootCmd.PersistentFlags().Int64VarP(&seed, "seed", "s", 1, "Seed used to generate the demo accounts.")
	rootCmd.PersistentFlags().StringSliceVarP(&names, "names", "n", []string{"alice", "bob", "carol", "miner"}, "Names of the demo accounts.")
}

var rootCmd = &cobra.Command{
	Use:           "wallet",
	Short:         "Simple wallet for the proof of work ledger",
	SilenceUsage:  true,
	SilenceErrors: false,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func nameService() (*nameservice.NameService, error) {
	return nameservice.New(seed, names)
}
