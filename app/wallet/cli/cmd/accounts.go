package cmd

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var showKeys bool

var accountsCmd = &cobra.Command{
	Use:   "accounts",
	Short: "Print the demo accounts generated from the seed.",
	RunE:  accountsRun,
}

func init() {
	rootCmd.AddCommand(accountsCmd)
	accountsCmd.Flags().BoolVarP(&showKeys, "keys", "k", false, "Show the private keys.")
}

func accountsRun(cmd *cobra.Command, args []string) error {
	ns, err := nameService()
	if err != nil {
		return err
	}

	data := pterm.TableData{{"Name", "Account"}}
	if showKeys {
		data[0] = append(data[0], "Private Key")
	}

	for _, acct := range ns.Accounts() {
		row := []string{acct.Name, string(acct.AccountID)}
		if showKeys {
			key, _ := ns.PrivateKey(acct.Name)
			row = append(row, key)
		}
		data = append(data, row)
	}

	return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}
