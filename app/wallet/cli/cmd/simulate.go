package cmd

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/ardanlabs/powledger/foundation/blockchain/accounts"
	"github.com/ardanlabs/powledger/foundation/blockchain/database"
	"github.com/ardanlabs/powledger/foundation/blockchain/database/storage/memory"
	"github.com/ardanlabs/powledger/foundation/blockchain/genesis"
	"github.com/ardanlabs/powledger/foundation/blockchain/state"
	"github.com/ardanlabs/powledger/foundation/blockchain/worker"
	"github.com/ardanlabs/powledger/foundation/nameservice"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var (
	simDifficulty int
	simReward     database.Amount
	simVerbose    bool
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run a ledger in process through a transfer scenario and report on it.",
	RunE:  simulateRun,
}

func init() {
	rootCmd.AddCommand(simulateCmd)
	simulateCmd.Flags().IntVarP(&simDifficulty, "difficulty", "d", 3, "Difficulty used to mine the blocks, between 1 and 6.")
	simulateCmd.Flags().VarP(&simReward, "reward", "r", "Mining reward paid to the miner per block, such as 2.5.")
	simulateCmd.Flags().BoolVarP(&simVerbose, "verbose", "V", false, "Print the ledger events.")
}

// transfer is one step of the scenario. A transfer with an empty from
// account is issued by the network.
type transfer struct {
	from  string
	to    string
	value database.Amount
}

// scenario lists the transfers mined into each block.
var scenario = [][]transfer{
	{{"", "alice", database.MustParseAmount("500")}},
	{{"alice", "bob", database.MustParseAmount("200.5")}},
	{{"alice", "carol", database.MustParseAmount("100.25")}, {"bob", "carol", database.MustParseAmount("50.125")}},
}

// simReport is everything the simulation observed.
type simReport struct {
	ns       *nameservice.NameService
	blocks   []database.Block
	balances map[database.AccountID]accounts.Info
	network  state.Stats
	history  []database.MiningStats
	proof    database.TxProof
	proved   bool
	valid    error
	amend    error
}

func simulateRun(cmd *cobra.Command, args []string) error {
	if !database.IsDifficulty(simDifficulty) {
		return database.ErrInvalidDifficulty
	}

	ev := func(v string, args ...any) {}
	if simVerbose {
		ev = func(v string, args ...any) {
			pterm.Debug.Printfln(v, args...)
		}
		pterm.EnableDebugMessages()
	}

	pterm.DefaultHeader.WithFullWidth().Println("Proof of Work Ledger Simulation")

	spinner, _ := pterm.DefaultSpinner.Start(pterm.Sprintf("Mining %d blocks at difficulty %d ...", len(scenario), simDifficulty))

	rpt, err := simulate(cmd.Context(), simDifficulty, simReward, ev)
	if err != nil {
		spinner.Fail(err.Error())
		return err
	}

	spinner.Success("Scenario complete")

	return rpt.render()
}

// simulate builds a ledger in memory and drives it through the scenario
// using the mining worker.
func simulate(ctx context.Context, difficulty int, reward database.Amount, ev state.EventHandler) (simReport, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	ns, err := nameservice.New(seed, []string{"alice", "bob", "carol", "miner"})
	if err != nil {
		return simReport{}, err
	}

	gen := genesis.Default()
	gen.Difficulty = uint16(difficulty)
	gen.MiningReward = reward

	st, err := state.New(state.Config{
		Genesis:   gen,
		Storage:   memory.New(),
		EvHandler: ev,
	})
	if err != nil {
		return simReport{}, err
	}
	defer st.Shutdown()

	wrk := worker.Run(st, ev)

	for i, block := range scenario {
		for _, tr := range block {
			var err error
			switch tr.from {
			case "":
				_, err = st.Faucet(ns.Resolve(tr.to), tr.value)
			default:
				_, err = st.SubmitTransaction(ns.Resolve(tr.from), ns.Resolve(tr.to), tr.value)
			}
			if err != nil {
				return simReport{}, fmt.Errorf("block %d: %s -> %s: %w", i+1, tr.from, tr.to, err)
			}
		}

		job := wrk.Submit(worker.Request{Miner: ns.Resolve("miner")})
		if _, err := job.Wait(ctx); err != nil {
			return simReport{}, fmt.Errorf("mining block %d: %w", i+1, err)
		}
	}

	rpt := simReport{
		ns:       ns,
		blocks:   st.RetrieveBlocks(),
		balances: st.Balances(),
		network:  st.NetworkStats(),
		history:  st.MiningHistory(),
		valid:    st.Validate(),
		amend:    st.AmendBlock(1, "nonce"),
	}

	// Prove the last transaction of the final block folds into its root.
	last := rpt.blocks[len(rpt.blocks)-1]
	txs := last.Transactions()
	rpt.proof, err = st.RetrieveProof(last.Number(), txs[len(txs)-1].HashHex())
	if err != nil {
		return simReport{}, err
	}
	if rpt.proved, err = rpt.proof.Verify(); err != nil {
		return simReport{}, err
	}

	return rpt, nil
}

func (rpt simReport) render() error {
	blocks := pterm.TableData{{"Block", "Nonce", "Txs", "Previous", "Hash"}}
	for _, blk := range rpt.blocks {
		blocks = append(blocks, []string{
			pterm.Sprint(blk.Number()),
			pterm.Sprint(blk.Nonce()),
			pterm.Sprint(len(blk.Transactions())),
			short(blk.PrevBlockHash()),
			short(blk.Hash()),
		})
	}

	pterm.DefaultSection.Println("Chain")
	if err := pterm.DefaultTable.WithHasHeader().WithData(blocks).Render(); err != nil {
		return err
	}

	ids := make([]database.AccountID, 0, len(rpt.balances))
	for id := range rpt.balances {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		return rpt.ns.Lookup(ids[i]) < rpt.ns.Lookup(ids[j])
	})

	bals := pterm.TableData{{"Name", "Balance", "Received", "Sent", "Txs"}}
	for _, id := range ids {
		info := rpt.balances[id]
		bals = append(bals, []string{
			rpt.ns.Lookup(id),
			info.Balance.String(),
			info.Received.String(),
			info.Sent.String(),
			pterm.Sprint(info.TxCount),
		})
	}

	pterm.DefaultSection.Println("Balances")
	if err := pterm.DefaultTable.WithHasHeader().WithData(bals).Render(); err != nil {
		return err
	}

	history := make([]mined, len(rpt.history))
	for i, ms := range rpt.history {
		var hash string
		if int(ms.Number) < len(rpt.blocks) {
			hash = short(rpt.blocks[ms.Number].Hash())
		}
		history[i] = mined{
			Index:          ms.Number,
			Hash:           hash,
			Difficulty:     ms.Difficulty,
			Nonce:          ms.Nonce,
			HashOperations: ms.HashOperations,
			Duration:       ms.Duration.Round(time.Microsecond).String(),
			HashRate:       ms.HashRate(),
			Miner:          rpt.ns.Lookup(ms.Miner),
		}
	}

	ns := networkStats{
		TotalBlocks:         rpt.network.TotalBlocks,
		TotalTransactions:   rpt.network.TotalTransactions,
		TotalIssued:         rpt.network.TotalIssued,
		AvgMiningTime:       rpt.network.AvgMiningTime,
		CurrentDifficulty:   rpt.network.CurrentDifficulty,
		PendingCount:        rpt.network.PendingCount,
		TotalHashOperations: rpt.network.TotalHashOperations,
		AvgHashOperations:   rpt.network.AvgHashOperations,
		HashRate:            rpt.network.HashRate,
	}
	if err := renderStats(ns, history); err != nil {
		return err
	}

	pterm.DefaultSection.Println("Integrity")
	switch rpt.valid {
	case nil:
		pterm.Success.Println("chain is valid")
	default:
		pterm.Error.Printfln("chain is invalid: %s", rpt.valid)
	}
	pterm.Info.Printfln("amending block 1: %s", rpt.amend)
	pterm.Info.Printfln("merkle proof of %s in block %d: %d hashes, verified %t", short(rpt.proof.TxHash), rpt.proof.BlockNumber, len(rpt.proof.Proof), rpt.proved)

	return nil
}

func short(hash string) string {
	if len(hash) <= 16 {
		return hash
	}
	return hash[:16]
}
