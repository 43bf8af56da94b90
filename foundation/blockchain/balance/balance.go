// Package balance derives wallet balances from the confirmed history of the
// blockchain.
package balance

import (
	"sync"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
)

// BlockSource represents the behavior required to walk the confirmed
// history.
type BlockSource interface {
	ForEach() database.Iterator
}

// Calculator maintains a cached balance sheet that is rebuilt from the
// opening balances and the chain the first time it's needed after an
// invalidation.
type Calculator struct {
	source  BlockSource
	opening map[string]database.Amount

	mu    sync.Mutex
	sheet map[string]database.Balance
}

// NewCalculator constructs a calculator for the chain with the specified
// opening balances, usually from a genesis file.
func NewCalculator(source BlockSource, opening map[string]database.Amount) *Calculator {
	cpy := make(map[string]database.Amount, len(opening))
	for address, amount := range opening {
		cpy[address] = amount
	}

	return &Calculator{
		source:  source,
		opening: cpy,
	}
}

// BalanceOf returns the balance for the specified address.
func (c *Calculator) BalanceOf(address string) (database.Balance, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.build(); err != nil {
		return 0, err
	}

	return c.sheet[address], nil
}

// Sheet returns a copy of the balance of every address that has one.
func (c *Calculator) Sheet() (map[string]database.Balance, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.build(); err != nil {
		return nil, err
	}

	cpy := make(map[string]database.Balance, len(c.sheet))
	for address, value := range c.sheet {
		cpy[address] = value
	}
	return cpy, nil
}

// Invalidate drops the cached sheet. It must be called every time a block
// is added to the chain.
func (c *Calculator) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.sheet = nil
}

// build walks the chain when there is no cached sheet.
func (c *Calculator) build() error {
	if c.sheet != nil {
		return nil
	}

	sheet := make(map[string]database.Balance, len(c.opening))
	for address, amount := range c.opening {
		sheet[address] = database.Balance(amount)
	}

	iter := c.source.ForEach()
	for blockData, err := iter.Next(); !iter.Done(); blockData, err = iter.Next() {
		if err != nil {
			return err
		}

		for _, tx := range blockData.Trans {
			ApplyTransaction(sheet, tx)
		}
	}

	c.sheet = sheet
	return nil
}

// =============================================================================

// ApplyTransaction performs the business logic for applying a confirmed
// transaction to a balance sheet. The receiver gets the amount and the
// sender pays the amount plus the fee. A transaction without a positive
// amount or with a cost above MaxAmount is corrupt and skipped.
func ApplyTransaction(sheet map[string]database.Balance, tx database.BlockTx) {
	if tx.Validate() != nil {
		return
	}

	sheet[tx.ToID] += database.Balance(tx.Amount)
	sheet[tx.FromID] -= database.Balance(tx.Cost())
}
