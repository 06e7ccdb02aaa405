package cmd

import (
	"net/http"

	"github.com/ardanlabs/powledger/foundation/blockchain/database"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var account string

type balance struct {
	Account  string          `json:"account"`
	Name     string          `json:"name"`
	Balance  database.Amount `json:"balance"`
	Received database.Amount `json:"received"`
	Sent     database.Amount `json:"sent"`
	TxCount  uint64          `json:"tx_count"`
}

type balances struct {
	LatestBlock string    `json:"latest_block"`
	Pending     int       `json:"pending"`
	Balances    []balance `json:"balances"`
}

var balanceCmd = &cobra.Command{
	Use:   "balance",
	Short: "Print the balance of one or every account.",
	RunE:  balanceRun,
}

func init() {
	rootCmd.AddCommand(balanceCmd)
	balanceCmd.Flags().StringVarP(&account, "account", "a", "", "Account or name, every account when empty.")
}

func balanceRun(cmd *cobra.Command, args []string) error {
	path := "/v1/balances/list"
	if account != "" {
		path += "/" + account
	}

	var resp balances
	if err := call(http.MethodGet, path, nil, &resp); err != nil {
		return err
	}

	pterm.Info.Printfln("latest block %s, %d pending", resp.LatestBlock, resp.Pending)

	data := pterm.TableData{{"Name", "Account", "Balance", "Received", "Sent", "Txs"}}
	for _, bal := range resp.Balances {
		data = append(data, []string{
			bal.Name,
			bal.Account,
			bal.Balance.String(),
			bal.Received.String(),
			bal.Sent.String(),
			pterm.Sprint(bal.TxCount),
		})
	}

	return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}
