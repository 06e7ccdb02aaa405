// This program provides a command line client for the ledger service along
// with an in-process simulation of the ledger.
package main

import "github.com/ardanlabs/powledger/app/wallet/cli/cmd"

func main() {
	cmd.Execute()
}
