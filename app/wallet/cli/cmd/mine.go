package cmd

import (
	"net/http"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var (
	miner      string
	allowEmpty bool
)

type mined struct {
	Index          uint64  `json:"index"`
	Hash           string  `json:"hash"`
	Difficulty     uint    `json:"difficulty"`
	Nonce          uint64  `json:"nonce"`
	HashOperations uint64  `json:"hash_operations"`
	Duration       string  `json:"duration"`
	HashRate       float64 `json:"hash_rate"`
	Miner          string  `json:"miner"`
}

var mineCmd = &cobra.Command{
	Use:   "mine",
	Short: "Mine the pending transactions into a new block.",
	RunE:  mineRun,
}

func init() {
	rootCmd.AddCommand(mineCmd)
	mineCmd.Flags().StringVarP(&miner, "miner", "m", "miner", "Account or name doing the mining.")
	mineCmd.Flags().BoolVarP(&allowEmpty, "allow-empty", "e", false, "Mine a block even when nothing is pending.")
}

func mineRun(cmd *cobra.Command, args []string) error {
	req := struct {
		Miner      string `json:"miner"`
		AllowEmpty bool   `json:"allow_empty"`
	}{
		Miner:      miner,
		AllowEmpty: allowEmpty,
	}

	spinner, _ := pterm.DefaultSpinner.Start("Searching for a nonce ...")

	var resp mined
	if err := call(http.MethodPost, "/v1/mining/mine", req, &resp); err != nil {
		spinner.Fail(err.Error())
		return err
	}

	spinner.Success(pterm.Sprintf("block %d sealed", resp.Index))

	data := pterm.TableData{
		{"Hash", resp.Hash},
		{"Difficulty", pterm.Sprint(resp.Difficulty)},
		{"Nonce", pterm.Sprint(resp.Nonce)},
		{"Hash Operations", pterm.Sprint(resp.HashOperations)},
		{"Duration", resp.Duration},
		{"Hash Rate", pterm.Sprintf("%.0f H/s", resp.HashRate)},
	}

	return pterm.DefaultTable.WithData(data).Render()
}
