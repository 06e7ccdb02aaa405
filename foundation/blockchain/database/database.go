// Package database handles the blocks of the ledger: transactions, draft and
// sealed blocks, the proof of work search, and access to the block storage.
package database

import (
	"errors"
	"fmt"
	"sync"
)

// ErrBlockNotFound is returned when a block number is not on the chain.
var ErrBlockNotFound = errors.New("block not found")

// Storage interface represents the behavior required to be implemented by any
// package providing support for storing and reading the blockchain.
type Storage interface {
	Write(blockData BlockData) error
	GetBlock(num uint64) (BlockData, error)
	ForEach() Iterator
	Close() error
	Reset() error
}

// Iterator interface represents the behavior required to be implemented by any
// package providing support to iterate over the blocks.
type Iterator interface {
	Next() (BlockData, error)
	Done() bool
}

// =============================================================================

// DatabaseIterator walks the stored blocks converting each record into
// a block.
type DatabaseIterator struct {
	iterator Iterator
}

// Next retrieves the next block from storage.
func (di *DatabaseIterator) Next() (Block, error) {
	blockData, err := di.iterator.Next()
	if err != nil {
		return Block{}, err
	}

	return ToBlock(blockData)
}

// Done returns the end of chain value.
func (di *DatabaseIterator) Done() bool {
	return di.iterator.Done()
}

// =============================================================================

// Database manages access to the blocks of the chain. The converted blocks
// are held in memory so queries don't rebuild them from storage. Storage is
// only read again when the chain is opened or its integrity is checked.
type Database struct {
	mu      sync.RWMutex
	blocks  []Block
	storage Storage
}

// New constructs a database over the storage. Any blocks already held by the
// storage are read and linked back to the latest block.
func New(storage Storage, evHandler func(v string, args ...any)) (*Database, error) {
	db := Database{
		storage: storage,
	}

	blocks, err := db.ReadBlocks()
	if err != nil {
		return nil, err
	}

	for i := 1; i < len(blocks); i++ {
		if err := blocks[i].ValidateBlock(blocks[i-1], evHandler); err != nil {
			return nil, err
		}
	}

	db.blocks = blocks

	evHandler("database: New: loaded blocks[%d]", len(blocks))

	return &db, nil
}

// Close closes the storage.
func (db *Database) Close() error {
	return db.storage.Close()
}

// Reset removes every block from storage.
func (db *Database) Reset() error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if err := db.storage.Reset(); err != nil {
		return err
	}

	db.blocks = nil

	return nil
}

// Write appends the block to the chain. The block must carry the next
// block number.
func (db *Database) Write(block Block) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	count := uint64(len(db.blocks))
	if block.header.Number != count {
		return fmt.Errorf("block is out of order, got %d, exp %d", block.header.Number, count)
	}

	if err := db.storage.Write(NewBlockData(block)); err != nil {
		return err
	}

	db.blocks = append(db.blocks, block)

	return nil
}

// LatestBlock returns the latest block.
func (db *Database) LatestBlock() Block {
	db.mu.RLock()
	defer db.mu.RUnlock()

	if len(db.blocks) == 0 {
		return Block{}
	}

	return db.blocks[len(db.blocks)-1]
}

// Count returns the number of blocks on the chain, genesis included.
func (db *Database) Count() uint64 {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return uint64(len(db.blocks))
}

// GetBlock returns the block with the specified number.
func (db *Database) GetBlock(num uint64) (Block, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	if num >= uint64(len(db.blocks)) {
		return Block{}, fmt.Errorf("block %d: %w", num, ErrBlockNotFound)
	}

	return db.blocks[num], nil
}

// Blocks returns every block of the chain in order.
func (db *Database) Blocks() []Block {
	db.mu.RLock()
	defer db.mu.RUnlock()

	blocks := make([]Block, len(db.blocks))
	copy(blocks, db.blocks)

	return blocks
}

// ForEach returns an iterator to walk through all the blocks held by the
// storage starting with the genesis block.
func (db *Database) ForEach() DatabaseIterator {
	return DatabaseIterator{iterator: db.storage.ForEach()}
}

// ReadBlocks reads every block back from storage. The walk ends when the
// storage reports ErrBlockNotFound, any other error is returned.
func (db *Database) ReadBlocks() ([]Block, error) {
	var blocks []Block

	iter := db.ForEach()
	for {
		block, err := iter.Next()
		if err != nil {
			if errors.Is(err, ErrBlockNotFound) {
				return blocks, nil
			}
			return nil, err
		}

		blocks = append(blocks, block)
	}
}
