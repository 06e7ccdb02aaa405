package ledgergrp

import (
	"time"

	"github.com/ardanlabs/powledger/foundation/blockchain/database"
	"github.com/ardanlabs/powledger/foundation/blockchain/state"
	"github.com/ardanlabs/powledger/foundation/validate"
)

// NewTx is what a client submits to move value between two accounts.
type NewTx struct {
	From  string          `json:"from" validate:"required"`
	To    string          `json:"to" validate:"required"`
	Value database.Amount `json:"value" validate:"required,gt=0"`
}

// Validate checks the data in the model is considered clean.
func (ntx NewTx) Validate() error {
	return validate.Check(ntx)
}

// NewFaucet is what a client submits to have the network issue coins.
type NewFaucet struct {
	To    string          `json:"to" validate:"required"`
	Value database.Amount `json:"value" validate:"required,gt=0"`
}

// Validate checks the data in the model is considered clean.
func (nf NewFaucet) Validate() error {
	return validate.Check(nf)
}

// NewMine is what a client submits to mine the pending transactions.
type NewMine struct {
	Miner      string `json:"miner" validate:"required"`
	AllowEmpty bool   `json:"allow_empty"`
}

// Validate checks the data in the model is considered clean.
func (nm NewMine) Validate() error {
	return validate.Check(nm)
}

// AmendBlock is what a client submits to change a field of a block.
type AmendBlock struct {
	Field string `json:"field" validate:"required"`
}

// Validate checks the data in the model is considered clean.
func (ab AmendBlock) Validate() error {
	return validate.Check(ab)
}

// =============================================================================

type tx struct {
	Hash      string             `json:"hash"`
	From      database.AccountID `json:"from"`
	FromName  string             `json:"from_name"`
	To        database.AccountID `json:"to"`
	ToName    string             `json:"to_name"`
	Value     database.Amount    `json:"value"`
	TimeStamp uint64             `json:"timestamp"`
}

type historyTx struct {
	tx
	BlockIndex     uint64 `json:"block_index"`
	BlockTimeStamp uint64 `json:"block_timestamp"`
}

type block struct {
	Hash         string `json:"hash"`
	Index        uint64 `json:"index"`
	PreviousHash string `json:"previous_hash"`
	TimeStamp    uint64 `json:"timestamp"`
	Nonce        uint64 `json:"nonce"`
	MerkleRoot   string `json:"merkle_root"`
	Transactions []tx   `json:"transactions"`
}

type balance struct {
	Account  database.AccountID `json:"account"`
	Name     string             `json:"name"`
	Balance  database.Amount    `json:"balance"`
	Received database.Amount    `json:"received"`
	Sent     database.Amount    `json:"sent"`
	TxCount  uint64             `json:"tx_count"`
}

type balances struct {
	LatestBlock string    `json:"latest_block"`
	Pending     int       `json:"pending"`
	Balances    []balance `json:"balances"`
}

type mined struct {
	Index          uint64             `json:"index"`
	Hash           string             `json:"hash"`
	Difficulty     uint               `json:"difficulty"`
	Nonce          uint64             `json:"nonce"`
	HashOperations uint64             `json:"hash_operations"`
	Duration       string             `json:"duration"`
	HashRate       float64            `json:"hash_rate"`
	Miner          database.AccountID `json:"miner"`
}

type validity struct {
	Valid  bool   `json:"valid"`
	Reason string `json:"reason,omitempty"`
}

type stats struct {
	Network state.Stats `json:"network"`
	Mining  []mined     `json:"mining"`
}

type proof struct {
	Index      uint64   `json:"index"`
	Tx         tx       `json:"tx"`
	MerkleRoot string   `json:"merkle_root"`
	Proof      []string `json:"proof"`
	Order      []int64  `json:"order"`
	Verified   bool     `json:"verified"`
}

type status struct {
	Status string `json:"status"`
}

func toMined(ms database.MiningStats, hash string) mined {
	return mined{
		Index:          ms.Number,
		Hash:           hash,
		Difficulty:     ms.Difficulty,
		Nonce:          ms.Nonce,
		HashOperations: ms.HashOperations,
		Duration:       ms.Duration.Round(time.Microsecond).String(),
		HashRate:       ms.HashRate(),
		Miner:          ms.Miner,
	}
}
