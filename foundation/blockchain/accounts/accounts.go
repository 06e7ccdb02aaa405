// Package accounts maintains account balances by replaying the chain.
package accounts

import (
	"sync"

	"github.com/ardanlabs/powledger/foundation/blockchain/database"
)

// Info represents information stored for an individual account.
type Info struct {
	Balance  database.Amount `json:"balance"`
	Received database.Amount `json:"received"`
	Sent     database.Amount `json:"sent"`
	TxCount  uint64          `json:"tx_count"`
}

// Accounts derives balances from the blocks of the chain. The derived sheet
// is remembered for the chain tip it was built from and rebuilt when the tip
// changes.
type Accounts struct {
	mu     sync.RWMutex
	tip    string
	count  int
	info   map[database.AccountID]Info
	issued database.Amount
}

// New constructs an Accounts value with nothing derived.
func New() *Accounts {
	return &Accounts{
		info: make(map[database.AccountID]Info),
	}
}

// Reset forgets the derived sheet.
func (act *Accounts) Reset() {
	act.mu.Lock()
	defer act.mu.Unlock()

	act.tip = ""
	act.count = 0
	act.info = make(map[database.AccountID]Info)
	act.issued = 0
}

// Balance returns the balance of the account as of the last block.
func (act *Accounts) Balance(blocks []database.Block, accountID database.AccountID) database.Amount {
	act.mu.Lock()
	defer act.mu.Unlock()

	act.replay(blocks)

	return act.info[accountID].Balance
}

// Info returns the information for the account as of the last block.
func (act *Accounts) Info(blocks []database.Block, accountID database.AccountID) Info {
	act.mu.Lock()
	defer act.mu.Unlock()

	act.replay(blocks)

	return act.info[accountID]
}

// Sheet returns a copy of the information for every account that appears
// on the chain. The network issuer is left out since it holds no balance.
func (act *Accounts) Sheet(blocks []database.Block) map[database.AccountID]Info {
	act.mu.Lock()
	defer act.mu.Unlock()

	act.replay(blocks)

	sheet := make(map[database.AccountID]Info, len(act.info))
	for accountID, info := range act.info {
		sheet[accountID] = info
	}

	return sheet
}

// Issued returns the total value minted by the network issuer.
func (act *Accounts) Issued(blocks []database.Block) database.Amount {
	act.mu.Lock()
	defer act.mu.Unlock()

	act.replay(blocks)

	return act.issued
}

// =============================================================================

// replay rebuilds the sheet unless it was already built for this tip.
func (act *Accounts) replay(blocks []database.Block) {
	tip := ""
	if len(blocks) > 0 {
		tip = blocks[len(blocks)-1].Hash()
	}

	if tip == act.tip && len(blocks) == act.count {
		return
	}

	act.info = make(map[database.AccountID]Info)
	act.issued = 0

	for _, block := range blocks {
		for _, tx := range block.Transactions() {
			act.applyTransaction(tx)
		}
	}

	act.tip = tip
	act.count = len(blocks)
}

// applyTransaction credits the receiver and debits the sender. The issuer
// mints the value it sends so it is never debited.
func (act *Accounts) applyTransaction(tx database.Tx) {
	to := act.info[tx.To]
	to.Balance += tx.Value
	to.Received += tx.Value
	to.TxCount++
	act.info[tx.To] = to

	if tx.From.IsIssuer() {
		act.issued += tx.Value
		return
	}

	from := act.info[tx.From]
	from.Balance -= min(tx.Value, from.Balance)
	from.Sent += tx.Value
	from.TxCount++
	act.info[tx.From] = from
}
