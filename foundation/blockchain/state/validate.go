package state

import (
	"fmt"

	"github.com/ardanlabs/powledger/foundation/blockchain/database"
)

// IsValid reports whether every stored block recomputes to its stored hash
// and every block after genesis links to the block before it.
func (s *State) IsValid() bool {
	return s.Validate() == nil
}

// Validate reads the chain back from storage and returns the first reason
// it fails integrity checks.
func (s *State) Validate() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	blocks, err := s.db.ReadBlocks()
	if err != nil {
		return err
	}

	if len(blocks) == 0 {
		return fmt.Errorf("%w: chain has no genesis block", database.ErrInvalidBlock)
	}

	// The genesis block is never mined but its allocations are still covered
	// by its hash.
	if err := blocks[0].VerifyHash(); err != nil {
		s.evHandler("state: Validate: blk[0]: INVALID: %s", err)
		return fmt.Errorf("block 0: %w", err)
	}

	for i := 1; i < len(blocks); i++ {
		if err := blocks[i].ValidateBlock(blocks[i-1], s.evHandler); err != nil {
			s.evHandler("state: Validate: blk[%d]: INVALID: %s", blocks[i].Number(), err)
			return fmt.Errorf("block %d: %w", blocks[i].Number(), err)
		}
	}

	return nil
}

// AmendBlock attempts to change a field of a stored block. Sealed blocks
// can't be changed so this always fails with a database.ImmutableBlockError,
// or database.ErrBlockNotFound when the index is not on the chain.
func (s *State) AmendBlock(index uint64, field string) error {
	block, err := s.db.GetBlock(index)
	if err != nil {
		return err
	}

	err = block.Amend(field)
	s.evHandler("state: AmendBlock: blk[%d]: field[%s]: %s", index, field, err)

	return err
}
