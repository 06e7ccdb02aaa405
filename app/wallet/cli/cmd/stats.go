package cmd

import (
	"net/http"
	"time"

	"github.com/ardanlabs/powledger/foundation/blockchain/database"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

type networkStats struct {
	TotalBlocks         uint64          `json:"total_blocks"`
	TotalTransactions   uint64          `json:"total_transactions"`
	TotalIssued         database.Amount `json:"total_issued"`
	AvgMiningTime       time.Duration   `json:"avg_mining_time"`
	CurrentDifficulty   uint            `json:"current_difficulty"`
	PendingCount        int             `json:"pending_count"`
	TotalHashOperations uint64          `json:"total_hash_operations"`
	AvgHashOperations   float64         `json:"avg_hash_operations"`
	HashRate            float64         `json:"hash_rate"`
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print the network statistics and the mining history.",
	RunE:  statsRun,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func statsRun(cmd *cobra.Command, args []string) error {
	var resp struct {
		Network networkStats `json:"network"`
		Mining  []mined      `json:"mining"`
	}
	if err := call(http.MethodGet, "/v1/stats", nil, &resp); err != nil {
		return err
	}

	return renderStats(resp.Network, resp.Mining)
}

func renderStats(ns networkStats, history []mined) error {
	summary := pterm.TableData{
		{"Blocks", pterm.Sprint(ns.TotalBlocks)},
		{"Transactions", pterm.Sprint(ns.TotalTransactions)},
		{"Issued", ns.TotalIssued.String()},
		{"Pending", pterm.Sprint(ns.PendingCount)},
		{"Difficulty", pterm.Sprint(ns.CurrentDifficulty)},
		{"Avg Mining Time", ns.AvgMiningTime.String()},
		{"Hash Operations", pterm.Sprint(ns.TotalHashOperations)},
		{"Avg Hash Operations", pterm.Sprintf("%.1f", ns.AvgHashOperations)},
		{"Hash Rate", pterm.Sprintf("%.0f H/s", ns.HashRate)},
	}

	pterm.DefaultSection.Println("Network")
	if err := pterm.DefaultTable.WithData(summary).Render(); err != nil {
		return err
	}

	if len(history) == 0 {
		return nil
	}

	data := pterm.TableData{{"Block", "Difficulty", "Nonce", "Hash Ops", "Duration", "Miner", "Hash"}}
	for _, ms := range history {
		data = append(data, []string{
			pterm.Sprint(ms.Index),
			pterm.Sprint(ms.Difficulty),
			pterm.Sprint(ms.Nonce),
			pterm.Sprint(ms.HashOperations),
			ms.Duration,
			ms.Miner,
			ms.Hash,
		})
	}

	pterm.DefaultSection.Println("Mining")
	return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}
