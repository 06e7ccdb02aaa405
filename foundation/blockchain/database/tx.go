package database

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ardanlabs/powledger/foundation/blockchain/digest"
)

// ErrInvalidAmount is returned when a transaction moves no value.
var ErrInvalidAmount = errors.New("amount must be greater than zero")

// =============================================================================

// Tx is the transactional information between two parties.
type Tx struct {
	From      AccountID `json:"from"`      // Account sending the value.
	To        AccountID `json:"to"`        // Account receiving the value.
	Value     Amount    `json:"value"`     // Monetary value moved by this transaction.
	TimeStamp uint64    `json:"timestamp"` // Unix milliseconds the transaction was created.
}

// NewTx constructs a new transaction after checking the accounts and amount.
func NewTx(from AccountID, to AccountID, value Amount, timeStamp uint64) (Tx, error) {
	if !from.IsAccountID() {
		return Tx{}, fmt.Errorf("from account: %w", ErrInvalidAccount)
	}

	if !to.IsAccountID() {
		return Tx{}, fmt.Errorf("to account: %w", ErrInvalidAccount)
	}

	if value == 0 {
		return Tx{}, ErrInvalidAmount
	}

	tx := Tx{
		From:      from,
		To:        to,
		Value:     value,
		TimeStamp: timeStamp,
	}

	return tx, nil
}

// Serialize returns the canonical byte form of the transaction that is
// hashed into the merkle tree.
func (tx Tx) Serialize() ([]byte, error) {
	return json.Marshal(tx)
}

// Hash implements the merkle Hashable interface for providing a hash
// of a transaction.
func (tx Tx) Hash() ([]byte, error) {
	data, err := tx.Serialize()
	if err != nil {
		return nil, err
	}

	return digest.Sum(data).Bytes(), nil
}

// HashHex returns the transaction hash as a hex string.
func (tx Tx) HashHex() string {
	data, err := tx.Serialize()
	if err != nil {
		return ""
	}

	return digest.Sum(data).Hex()
}

// Equals implements the merkle Hashable interface for providing an equality
// check between two transactions.
func (tx Tx) Equals(otherTx Tx) bool {
	return tx == otherTx
}

// String implements the fmt.Stringer interface for logging.
func (tx Tx) String() string {
	return fmt.Sprintf("%s->%s:%s", tx.From, tx.To, tx.Value)
}
