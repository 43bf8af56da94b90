// Package genesis maintains access to the genesis file.
package genesis

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"gopkg.in/yaml.v3"
)

// Set of default values used when a genesis file leaves them out.
const (
	DefaultTransPerBlock uint16          = 10
	DefaultFee           database.Amount = database.MinimumUnit
)

// Genesis represents the genesis file.
type Genesis struct {
	Date          time.Time                  `json:"date" yaml:"date"`
	TransPerBlock uint16                     `json:"trans_per_block" yaml:"trans_per_block"` // The maximum number of transactions that can be in a block.
	Difficulty    uint16                     `json:"difficulty" yaml:"difficulty"`           // How difficult it needs to be to solve the work problem.
	Fee           database.Amount            `json:"fee" yaml:"fee"`                         // Fee charged to the sender of each transaction.
	Balances      map[string]database.Amount `json:"balances" yaml:"balances"`               // Opening balances by wallet address.
}

// Default returns a genesis for a ledger with no opening balances.
func Default() Genesis {
	return Genesis{
		Date:          time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
		TransPerBlock: DefaultTransPerBlock,
		Difficulty:    database.DefaultDifficulty,
		Fee:           DefaultFee,
		Balances:      make(map[string]database.Amount),
	}
}

// =============================================================================

// yamlGenesis mirrors Genesis with amounts as text since yaml doesn't use
// the json marshaling of the amount type.
type yamlGenesis struct {
	Date          time.Time         `yaml:"date"`
	TransPerBlock uint16            `yaml:"trans_per_block"`
	Difficulty    *uint16           `yaml:"difficulty"`
	Fee           string            `yaml:"fee"`
	Balances      map[string]string `yaml:"balances"`
}

// Load opens and consumes the genesis file. Files ending in .yaml or .yml
// are decoded as yaml, everything else as json. Missing settings are
// filled in with the defaults.
func Load(path string) (Genesis, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Genesis{}, err
	}

	var genesis Genesis

	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		genesis, err = decodeYAML(content)
	default:
		genesis, err = decodeJSON(content)
	}
	if err != nil {
		return Genesis{}, fmt.Errorf("decoding %s: %w", path, err)
	}

	return genesis, nil
}

func decodeJSON(content []byte) (Genesis, error) {
	var raw struct {
		Genesis
		Difficulty *uint16 `json:"difficulty"`
	}
	if err := json.Unmarshal(content, &raw); err != nil {
		return Genesis{}, err
	}

	genesis := raw.Genesis
	genesis.Difficulty = database.DefaultDifficulty
	if raw.Difficulty != nil {
		genesis.Difficulty = *raw.Difficulty
	}

	return withDefaults(genesis)
}

func decodeYAML(content []byte) (Genesis, error) {
	var raw yamlGenesis
	if err := yaml.Unmarshal(content, &raw); err != nil {
		return Genesis{}, err
	}

	genesis := Genesis{
		Date:          raw.Date,
		TransPerBlock: raw.TransPerBlock,
		Difficulty:    database.DefaultDifficulty,
		Balances:      make(map[string]database.Amount, len(raw.Balances)),
	}

	if raw.Difficulty != nil {
		genesis.Difficulty = *raw.Difficulty
	}

	if raw.Fee != "" {
		fee, err := database.ParseAmount(raw.Fee)
		if err != nil {
			return Genesis{}, fmt.Errorf("fee: %w", err)
		}
		genesis.Fee = fee
	}

	for address, text := range raw.Balances {
		amount, err := database.ParseAmount(text)
		if err != nil {
			return Genesis{}, fmt.Errorf("balance %s: %w", address, err)
		}
		genesis.Balances[address] = amount
	}

	return withDefaults(genesis)
}

func withDefaults(genesis Genesis) (Genesis, error) {
	if genesis.TransPerBlock == 0 {
		genesis.TransPerBlock = DefaultTransPerBlock
	}
	if genesis.Fee == 0 {
		genesis.Fee = DefaultFee
	}
	if genesis.Balances == nil {
		genesis.Balances = make(map[string]database.Amount)
	}

	if genesis.Difficulty > database.MaxDifficulty {
		return Genesis{}, fmt.Errorf("difficulty %d is above the max of %d", genesis.Difficulty, database.MaxDifficulty)
	}

	return genesis, nil
}
