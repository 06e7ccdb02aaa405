package cmd

import (
	"net/http"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Drop every block after genesis and clear the mempool.",
	RunE:  resetRun,
}

func init() {
	rootCmd.AddCommand(resetCmd)
}

func resetRun(cmd *cobra.Command, args []string) error {
	var resp struct {
		Status string `json:"status"`
	}
	if err := call(http.MethodPost, "/v1/chain/reset", nil, &resp); err != nil {
		return err
	}

	pterm.Success.Println(resp.Status)
	return nil
}
