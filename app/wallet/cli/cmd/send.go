package cmd

import (
	"net/http"

	"github.com/ardanlabs/powledger/foundation/blockchain/database"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var (
	from  string
	to    string
	value database.Amount
)

type tx struct {
	Hash      string          `json:"hash"`
	From      string          `json:"from"`
	FromName  string          `json:"from_name"`
	To        string          `json:"to"`
	ToName    string          `json:"to_name"`
	Value     database.Amount `json:"value"`
	TimeStamp uint64          `json:"timestamp"`
}

var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Submit a transaction to the pending pool.",
	RunE:  sendRun,
}

func init() {
	rootCmd.AddCommand(sendCmd)
	sendCmd.Flags().StringVarP(&from, "from", "f", "", "Account or name sending the value.")
	sendCmd.Flags().StringVarP(&to, "to", "t", "", "Account or name receiving the value.")
	sendCmd.Flags().VarP(&value, "value", "v", "Value to send, such as 12.5.")
}

func sendRun(cmd *cobra.Command, args []string) error {
	req := struct {
		From  string          `json:"from"`
		To    string          `json:"to"`
		Value database.Amount `json:"value"`
	}{
		From:  from,
		To:    to,
		Value: value,
	}

	var resp tx
	if err := call(http.MethodPost, "/v1/tx/submit", req, &resp); err != nil {
		return err
	}

	pterm.Success.Printfln("%s -> %s: %s pending as %s", resp.FromName, resp.ToName, resp.Value, resp.Hash)
	return nil
}
