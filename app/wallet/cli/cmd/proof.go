package cmd

import (
	"fmt"
	"net/http"

	"github.com/ardanlabs/powledger/foundation/blockchain/merkle"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var (
	proofIndex  uint64
	proofTxHash string
)

var proofCmd = &cobra.Command{
	Use:   "proof",
	Short: "Fetch and check the merkle proof that a transaction is in a block.",
	RunE:  proofRun,
}

func init() {
	rootCmd.AddCommand(proofCmd)
	proofCmd.Flags().Uint64VarP(&proofIndex, "index", "i", 0, "Number of the block holding the transaction.")
	proofCmd.Flags().StringVarP(&proofTxHash, "tx", "x", "", "Hash of the transaction.")
}

func proofRun(cmd *cobra.Command, args []string) error {
	var resp struct {
		Index      uint64   `json:"index"`
		Tx         tx       `json:"tx"`
		MerkleRoot string   `json:"merkle_root"`
		Proof      []string `json:"proof"`
		Order      []int64  `json:"order"`
		Verified   bool     `json:"verified"`
	}
	path := fmt.Sprintf("/v1/blocks/%d/proof/%s", proofIndex, proofTxHash)
	if err := call(http.MethodGet, path, nil, &resp); err != nil {
		return err
	}

	data := pterm.TableData{{"Step", "Order", "Hash"}}
	for i, hash := range resp.Proof {
		data = append(data, []string{pterm.Sprint(i), pterm.Sprint(resp.Order[i]), hash})
	}
	if err := pterm.DefaultTable.WithHasHeader().WithData(data).Render(); err != nil {
		return err
	}

	// Fold the proof locally as well.
	ok, err := merkle.VerifyProof(resp.Tx.Hash, resp.Proof, resp.Order, resp.MerkleRoot)
	if err != nil {
		return err
	}

	if !ok || !resp.Verified {
		pterm.Error.Printfln("%s -> %s: %s does not fold into root %s", resp.Tx.FromName, resp.Tx.ToName, resp.Tx.Value, resp.MerkleRoot)
		return nil
	}

	pterm.Success.Printfln("%s -> %s: %s is in block %d under root %s", resp.Tx.FromName, resp.Tx.ToName, resp.Tx.Value, resp.Index, resp.MerkleRoot)
	return nil
}
