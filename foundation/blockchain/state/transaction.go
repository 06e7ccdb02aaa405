package state

import (
	"fmt"

	"github.com/ardanlabs/powledger/foundation/blockchain/database"
)

// SubmitTransaction accepts a transaction for inclusion in the next block.
// The sender must hold enough value once the transactions it already has
// pending are taken into account. The network issuer is not checked.
func (s *State) SubmitTransaction(from database.AccountID, to database.AccountID, value database.Amount) (database.Tx, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := database.NewTx(from, to, value, s.timeStamp())
	if err != nil {
		return database.Tx{}, err
	}

	if err := s.validateTransaction(tx); err != nil {
		return database.Tx{}, err
	}

	n := s.mempool.Upsert(tx)
	s.evHandler("state: SubmitTransaction: tx[%s]: pending[%d]", tx, n)

	return tx, nil
}

// Faucet issues new value from the network to the account.
func (s *State) Faucet(to database.AccountID, value database.Amount) (database.Tx, error) {
	return s.SubmitTransaction(database.NetworkIssuer, to, value)
}

// =============================================================================

// validateTransaction checks the sender can cover the transaction. The
// caller must hold the state lock.
func (s *State) validateTransaction(tx database.Tx) error {
	if tx.From.IsIssuer() {
		return nil
	}

	balance := s.accounts.Balance(s.blocks(), tx.From)
	outflow := s.mempool.Outflow(tx.From)

	var available database.Amount
	if balance > outflow {
		available = balance - outflow
	}

	if available < tx.Value {
		return fmt.Errorf("%w: account %s: available %s: needed %s", ErrInsufficientBalance, tx.From, available, tx.Value)
	}

	return nil
}

// timeStamp returns the current time in Unix milliseconds.
func (s *State) timeStamp() uint64 {
	return uint64(s.now().UnixMilli())
}
