// Package state is the core API for the ledger and implements all the
// business rules and processing.
package state

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/ardanlabs/powledger/foundation/blockchain/accounts"
	"github.com/ardanlabs/powledger/foundation/blockchain/database"
	"github.com/ardanlabs/powledger/foundation/blockchain/genesis"
	"github.com/ardanlabs/powledger/foundation/blockchain/mempool"
)

// Set of errors returned by the state API.
var (
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrNoMinerSelected     = errors.New("no miner selected")
	ErrNoTransactions      = errors.New("no transactions in mempool")
	ErrChainChanged        = errors.New("chain changed while mining")
)

// =============================================================================

// EventHandler defines a function that is called when events
// occur in the processing of the ledger.
type EventHandler func(v string, args ...any)

// Worker interface represents the behavior required to be implemented by any
// package providing support for running mining operations.
type Worker interface {
	Shutdown()
	SignalCancelMining() (done func())
}

// =============================================================================

// Config represents the configuration required to start the ledger.
type Config struct {
	Genesis   genesis.Genesis
	Storage   database.Storage
	Now       func() time.Time
	EvHandler EventHandler
}

// State manages the ledger.
type State struct {
	mu         sync.RWMutex
	evHandler  EventHandler
	now        func() time.Time
	difficulty uint
	history    []database.MiningStats
	generation uint64

	genesis  genesis.Genesis
	mempool  *mempool.Mempool
	db       *database.Database
	accounts *accounts.Accounts

	Worker Worker
}

// New constructs the ledger, writing the genesis block to storage when the
// storage is empty.
func New(cfg Config) (*State, error) {

	// Build a safe event handler function for use.
	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	// Access the storage for the blockchain.
	db, err := database.New(cfg.Storage, ev)
	if err != nil {
		return nil, err
	}

	difficulty := uint(cfg.Genesis.Difficulty)
	if !database.IsDifficulty(int(difficulty)) {
		difficulty = genesis.DefaultDifficulty
	}

	state := State{
		evHandler:  ev,
		now:        now,
		difficulty: difficulty,

		genesis:  cfg.Genesis,
		mempool:  mempool.New(),
		db:       db,
		accounts: accounts.New(),
	}

	if db.Count() == 0 {
		if err := state.writeGenesis(); err != nil {
			return nil, err
		}
	}

	// The Worker is not set here. The call to worker.Run will assign itself
	// and start everything up and running for the ledger.

	return &state, nil
}

// Shutdown cleanly brings the ledger down.
func (s *State) Shutdown() error {

	// Make sure the database is properly closed.
	defer func() {
		s.db.Close()
	}()

	// Stop all mining activity.
	if s.Worker != nil {
		s.Worker.Shutdown()
	}

	return nil
}

// Truncate resets the chain back to the genesis block and clears the
// mempool and the mining history. A block being mined when the chain is
// reset is discarded.
func (s *State) Truncate() error {
	if s.Worker != nil {
		done := s.Worker.SignalCancelMining()
		defer done()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.mempool.Truncate()
	s.accounts.Reset()
	s.history = nil
	s.generation++

	s.evHandler("state: Truncate: generation[%d]", s.generation)

	if err := s.db.Reset(); err != nil {
		return err
	}

	return s.writeGenesis()
}

// Difficulty returns the current difficulty.
func (s *State) Difficulty() uint {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.difficulty
}

// SetDifficulty changes the difficulty used for the next mined block. The
// difficulty is left unchanged when the level is out of range.
func (s *State) SetDifficulty(level int) bool {
	if !database.IsDifficulty(level) {
		s.evHandler("state: SetDifficulty: rejected: level[%d]", level)
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.difficulty = uint(level)
	s.evHandler("state: SetDifficulty: difficulty[%d]", level)

	return true
}

// =============================================================================

// writeGenesis builds the genesis block from the genesis allocations. The
// allocations are sorted by account so the block is reproducible.
func (s *State) writeGenesis() error {
	var ts uint64
	if !s.genesis.Date.IsZero() {
		ts = uint64(s.genesis.Date.UnixMilli())
	}

	accountIDs := make([]string, 0, len(s.genesis.Balances))
	for accountID := range s.genesis.Balances {
		accountIDs = append(accountIDs, accountID)
	}
	sort.Strings(accountIDs)

	trans := make([]database.Tx, 0, len(accountIDs))
	for _, accountStr := range accountIDs {
		if s.genesis.Balances[accountStr] == 0 {
			continue
		}

		accountID, err := database.ToAccountID(accountStr)
		if err != nil {
			return err
		}

		tx, err := database.NewTx(database.NetworkIssuer, accountID, s.genesis.Balances[accountStr], ts)
		if err != nil {
			return err
		}

		trans = append(trans, tx)
	}

	block, err := database.Genesis(ts, trans)
	if err != nil {
		return err
	}

	s.evHandler("state: writeGenesis: blk[%s]: allocations[%d]", block.Hash(), len(trans))

	return s.db.Write(block)
}

// blocks returns every block of the chain.
func (s *State) blocks() []database.Block {
	return s.db.Blocks()
}
