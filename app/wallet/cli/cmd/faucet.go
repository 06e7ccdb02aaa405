package cmd

import (
	"net/http"

	"github.com/ardanlabs/powledger/foundation/blockchain/database"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var faucetCmd = &cobra.Command{
	Use:   "faucet",
	Short: "Have the network issue coins to an account.",
	RunE:  faucetRun,
}

func init() {
	rootCmd.AddCommand(faucetCmd)
	faucetCmd.Flags().StringVarP(&to, "to", "t", "", "Account or name receiving the value.")
	faucetCmd.Flags().VarP(&value, "value", "v", "Value to issue, such as 0.5.")
}

func faucetRun(cmd *cobra.Command, args []string) error {
	req := struct {
		To    string          `json:"to"`
		Value database.Amount `json:"value"`
	}{
		To:    to,
		Value: value,
	}

	var resp tx
	if err := call(http.MethodPost, "/v1/tx/faucet", req, &resp); err != nil {
		return err
	}

	pterm.Success.Printfln("network -> %s: %s pending as %s", resp.ToName, resp.Value, resp.Hash)
	return nil
}
