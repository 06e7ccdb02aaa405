package state

import (
	"github.com/ardanlabs/powledger/foundation/blockchain/database"
	"github.com/ardanlabs/powledger/foundation/blockchain/genesis"
)

// RetrieveGenesis returns a copy of the genesis information.
func (s *State) RetrieveGenesis() genesis.Genesis {
	return s.genesis
}

// RetrieveLatestBlock returns a copy the current latest block.
func (s *State) RetrieveLatestBlock() database.Block {
	return s.db.LatestBlock()
}

// RetrieveBlocks returns every block of the chain in order.
func (s *State) RetrieveBlocks() []database.Block {
	return s.blocks()
}

// RetrieveBlock returns the block at the specified index.
func (s *State) RetrieveBlock(index uint64) (database.Block, error) {
	return s.db.GetBlock(index)
}

// RetrievePending returns a copy of the mempool in arrival order.
func (s *State) RetrievePending() []database.Tx {
	return s.mempool.PickAll()
}

// RetrieveProof returns the merkle inclusion proof for the transaction with
// the specified hash in the block at the index.
func (s *State) RetrieveProof(index uint64, txHash string) (database.TxProof, error) {
	block, err := s.db.GetBlock(index)
	if err != nil {
		return database.TxProof{}, err
	}

	return block.ProveTx(txHash)
}
