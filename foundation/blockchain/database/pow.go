package database

import (
	"context"
	"errors"
	"time"

	"github.com/ardanlabs/powledger/foundation/blockchain/digest"
)

// Difficulty bounds. Each level multiplies the expected search by 16.
const (
	MinDifficulty = 1
	MaxDifficulty = 6
)

// ErrInvalidDifficulty is returned when a difficulty is outside the
// supported range.
var ErrInvalidDifficulty = errors.New("difficulty must be between 1 and 6")

// MiningStats captures the cost of sealing a block.
type MiningStats struct {
	Number         uint64        `json:"index"`
	Difficulty     uint          `json:"difficulty"`
	Duration       time.Duration `json:"duration"`
	HashOperations uint64        `json:"hash_operations"`
	Nonce          uint64        `json:"nonce"`
	Miner          AccountID     `json:"miner"`
}

// HashRate returns the hash operations performed per second.
func (ms MiningStats) HashRate() float64 {
	if ms.Duration <= 0 {
		return 0
	}

	return float64(ms.HashOperations) / ms.Duration.Seconds()
}

// IsDifficulty reports whether the difficulty is within the supported range.
func IsDifficulty(difficulty int) bool {
	return difficulty >= MinDifficulty && difficulty <= MaxDifficulty
}

// =============================================================================

// POW performs the proof of work search for the draft. Starting at nonce
// zero, the nonce is incremented until the hex form of the block hash starts
// with difficulty zero characters. The draft is discarded when the context
// is cancelled.
func POW(ctx context.Context, draft *DraftBlock, difficulty uint, miner AccountID, ev func(v string, args ...any)) (Block, MiningStats, error) {
	if !IsDifficulty(int(difficulty)) {
		return Block{}, MiningStats{}, ErrInvalidDifficulty
	}

	ev("database: POW: MINING: started: blk[%d]: difficulty[%d]", draft.header.Number, difficulty)
	defer ev("database: POW: MINING: completed: blk[%d]", draft.header.Number)

	// Log the transactions that are a part of this potential block.
	for _, tx := range draft.Transactions() {
		ev("database: POW: MINING: tx[%s]", tx)
	}

	start := time.Now()

	// The draft already holds the hash for nonce zero.
	draft.SetNonce(0)
	attempts := uint64(1)

	for {
		if attempts%1_000_000 == 0 {
			ev("database: POW: MINING: attempts[%d]", attempts)
		}

		// Did we get cancelled while trying to solve the problem.
		if ctx.Err() != nil {
			ev("database: POW: MINING: CANCELLED: attempts[%d]", attempts)
			return Block{}, MiningStats{}, ctx.Err()
		}

		if draft.Solved(difficulty) {
			break
		}

		draft.SetNonce(draft.header.Nonce + 1)
		attempts++
	}

	block, err := draft.Seal(difficulty)
	if err != nil {
		return Block{}, MiningStats{}, err
	}

	stats := MiningStats{
		Number:         block.header.Number,
		Difficulty:     difficulty,
		Duration:       time.Since(start),
		HashOperations: attempts,
		Nonce:          block.header.Nonce,
		Miner:          miner,
	}

	ev("database: POW: MINING: SOLVED: prevBlk[%s]: newBlk[%s]", block.header.PrevBlockHash, block.hash)
	ev("database: POW: MINING: attempts[%d]", attempts)

	return block, stats, nil
}

// isHashSolved checks the digest has difficulty leading zero characters in
// its hex form. Each byte holds two hex characters.
func isHashSolved(difficulty uint, sum digest.Digest) bool {
	if difficulty > 2*digest.Size {
		return false
	}

	for i := uint(0); i < difficulty; i++ {
		nibble := sum[i/2] >> 4
		if i%2 == 1 {
			nibble = sum[i/2] & 0x0f
		}

		if nibble != 0 {
			return false
		}
	}

	return true
}
