// Package genesis maintains access to the genesis file.
package genesis

import (
	"encoding/json"
	"os"
	"time"

	"github.com/ardanlabs/powledger/foundation/blockchain/database"
)

// Default values used when the genesis file leaves a setting out.
const (
	DefaultDifficulty = 2
)

// Genesis represents the genesis file.
type Genesis struct {
	Date         time.Time                  `json:"date"`
	Difficulty   uint16                     `json:"difficulty"`    // How difficult it needs to be to solve the work problem.
	MiningReward database.Amount            `json:"mining_reward"` // Reward for mining a block, zero disables the reward.
	Balances     map[string]database.Amount `json:"balances"`      // Allocations issued by the network in the genesis block.
}

// Default returns the genesis used when no file is provided.
func Default() Genesis {
	return Genesis{
		Date:       time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
		Difficulty: DefaultDifficulty,
		Balances:   map[string]database.Amount{},
	}
}

// =============================================================================

// Load opens and consumes the genesis file. Settings missing from the file
// take the default values.
func Load(path string) (Genesis, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Genesis{}, err
	}

	genesis := Default()
	if err := json.Unmarshal(content, &genesis); err != nil {
		return Genesis{}, err
	}

	if genesis.Balances == nil {
		genesis.Balances = map[string]database.Amount{}
	}

	return genesis, nil
}
