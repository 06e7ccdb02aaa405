package state

import (
	"context"
	"fmt"

	"github.com/ardanlabs/powledger/foundation/blockchain/database"
)

// MineBlock seals the pending transactions into the next block. An empty
// mempool is rejected with ErrNoTransactions.
func (s *State) MineBlock(ctx context.Context, miner database.AccountID) (database.MiningStats, error) {
	return s.mine(ctx, miner, false)
}

// MineEmptyBlock seals the pending transactions into the next block even
// when the mempool is empty.
func (s *State) MineEmptyBlock(ctx context.Context, miner database.AccountID) (database.MiningStats, error) {
	return s.mine(ctx, miner, true)
}

// =============================================================================

// mine drafts the next block from a snapshot of the mempool and performs the
// proof of work without holding the state lock. Cancelling the context leaves
// the chain as it was.
func (s *State) mine(ctx context.Context, miner database.AccountID, allowEmpty bool) (database.MiningStats, error) {
	if miner == "" {
		return database.MiningStats{}, ErrNoMinerSelected
	}

	if !miner.IsAccountID() {
		return database.MiningStats{}, fmt.Errorf("miner: %w", database.ErrInvalidAccount)
	}

	s.evHandler("state: mine: MINING: check mempool count")

	var pending []database.Tx
	var latest database.Block
	var difficulty uint
	var ts uint64
	var generation uint64

	s.mu.RLock()
	{
		pending = s.mempool.PickAll()
		latest = s.db.LatestBlock()
		difficulty = s.difficulty
		ts = s.timeStamp()
		generation = s.generation
	}
	s.mu.RUnlock()

	if len(pending) == 0 && !allowEmpty {
		return database.MiningStats{}, ErrNoTransactions
	}

	trans := pending
	if s.genesis.MiningReward > 0 {
		reward, err := database.NewTx(database.NetworkIssuer, miner, s.genesis.MiningReward, ts)
		if err != nil {
			return database.MiningStats{}, err
		}

		trans = append(trans[:len(trans):len(trans)], reward)
	}

	draft, err := database.NewDraft(latest.Number()+1, latest.Hash(), ts, trans)
	if err != nil {
		return database.MiningStats{}, err
	}

	s.evHandler("state: mine: MINING: perform POW: blk[%d]: trans[%d]", latest.Number()+1, len(trans))

	// Attempt to seal the block by solving the POW puzzle. This can be cancelled.
	block, stats, err := database.POW(ctx, draft, difficulty, miner, s.evHandler)
	if err != nil {
		return database.MiningStats{}, err
	}

	// Just check one more time we were not cancelled.
	if ctx.Err() != nil {
		return database.MiningStats{}, ctx.Err()
	}

	s.evHandler("state: mine: MINING: update local state")

	if err := s.updateLocalState(generation, block, pending, stats); err != nil {
		return database.MiningStats{}, err
	}

	return stats, nil
}

// updateLocalState appends the sealed block to the chain, removes the mined
// transactions from the mempool and records the mining stats. The block is
// rejected if the chain was reset or extended since mining started.
func (s *State) updateLocalState(generation uint64, block database.Block, mined []database.Tx, stats database.MiningStats) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// A reset chain rebuilds the same genesis block so the parent hash alone
	// can't tell the chains apart.
	if generation != s.generation {
		return fmt.Errorf("%w: chain was reset: generation[%d]: now[%d]", ErrChainChanged, generation, s.generation)
	}

	if latest := s.db.LatestBlock(); latest.Hash() != block.PrevBlockHash() {
		return fmt.Errorf("%w: tip[%s]: parent[%s]", ErrChainChanged, latest.Hash(), block.PrevBlockHash())
	}

	s.evHandler("state: updateLocalState: write block: blk[%d]", block.Number())

	if err := s.db.Write(block); err != nil {
		return err
	}

	s.evHandler("state: updateLocalState: remove from mempool")

	for _, tx := range mined {
		s.evHandler("state: updateLocalState: tx[%s] remove", tx)
		s.mempool.Delete(tx)
	}

	s.history = append(s.history, stats)

	s.evHandler("viewer: block: blk[%d]: hash[%s]: nonce[%d]: ops[%d]: duration[%s]", block.Number(), block.Hash(), stats.Nonce, stats.HashOperations, stats.Duration)

	return nil
}
