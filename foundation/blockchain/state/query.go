package state

import (
	"sort"
	"time"

	"github.com/ardanlabs/powledger/foundation/blockchain/accounts"
	"github.com/ardanlabs/powledger/foundation/blockchain/database"
)

// HistoryTx is a transaction along with the block that holds it.
type HistoryTx struct {
	database.Tx
	BlockIndex     uint64 `json:"block_index"`
	BlockTimeStamp uint64 `json:"block_timestamp"`
}

// Stats summarizes the chain and the cost of mining it.
type Stats struct {
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

// =============================================================================

// Balance returns the balance of the account by replaying the chain.
func (s *State) Balance(accountID database.AccountID) database.Amount {
	return s.accounts.Balance(s.blocks(), accountID)
}

// Account returns the information held for the account.
func (s *State) Account(accountID database.AccountID) accounts.Info {
	return s.accounts.Info(s.blocks(), accountID)
}

// Balances returns the information for every account seen on the chain.
func (s *State) Balances() map[database.AccountID]accounts.Info {
	return s.accounts.Sheet(s.blocks())
}

// History returns the transactions involving the account, newest first. If
// the account is empty, every transaction is returned.
func (s *State) History(accountID database.AccountID) []HistoryTx {
	blocks := s.blocks()

	var out []HistoryTx
	for i := len(blocks) - 1; i >= 0; i-- {
		trans := blocks[i].Transactions()
		for j := len(trans) - 1; j >= 0; j-- {
			tx := trans[j]
			if accountID != "" && tx.From != accountID && tx.To != accountID {
				continue
			}

			out = append(out, HistoryTx{
				Tx:             tx,
				BlockIndex:     blocks[i].Number(),
				BlockTimeStamp: blocks[i].TimeStamp(),
			})
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].TimeStamp > out[j].TimeStamp
	})

	return out
}

// MiningHistory returns the stats for every block mined by this ledger.
func (s *State) MiningHistory() []database.MiningStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history := make([]database.MiningStats, len(s.history))
	copy(history, s.history)

	return history
}

// NetworkStats summarizes the chain and the mining history.
func (s *State) NetworkStats() Stats {
	blocks := s.blocks()

	var totalTrans uint64
	for _, block := range blocks {
		totalTrans += uint64(len(block.Transactions()))
	}

	history := s.MiningHistory()

	var totalTime time.Duration
	var totalOps uint64
	for _, ms := range history {
		totalTime += ms.Duration
		totalOps += ms.HashOperations
	}

	stats := Stats{
		TotalBlocks:         uint64(len(blocks)),
		TotalTransactions:   totalTrans,
		TotalIssued:         s.accounts.Issued(blocks),
		CurrentDifficulty:   s.Difficulty(),
		PendingCount:        s.mempool.Count(),
		TotalHashOperations: totalOps,
	}

	if n := len(history); n > 0 {
		stats.AvgMiningTime = totalTime / time.Duration(n)
		stats.AvgHashOperations = float64(totalOps) / float64(n)
	}

	if totalTime > 0 {
		stats.HashRate = float64(totalOps) / totalTime.Seconds()
	}

	return stats
}
