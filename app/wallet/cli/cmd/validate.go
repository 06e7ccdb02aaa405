package cmd

import (
	"net/http"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the integrity of the chain.",
	RunE:  validateRun,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func validateRun(cmd *cobra.Command, args []string) error {
	var resp struct {
		Valid  bool   `json:"valid"`
		Reason string `json:"reason"`
	}
	if err := call(http.MethodGet, "/v1/chain/valid", nil, &resp); err != nil {
		return err
	}

	if !resp.Valid {
		pterm.Error.Printfln("chain is invalid: %s", resp.Reason)
		return nil
	}

	pterm.Success.Println("chain is valid")
	return nil
}
