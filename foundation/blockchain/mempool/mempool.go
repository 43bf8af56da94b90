// Package mempool maintains the transaction pool for the blockchain in
// memory. Transactions are kept in arrival order and stay in the pool after
// they're confirmed so they can still be queried.
package mempool

import (
	"fmt"
	"sync"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
)

// Mempool represents a cache of transactions organized by id with the
// arrival order kept on the side.
type Mempool struct {
	mu    sync.RWMutex
	pool  map[string]database.BlockTx
	order []string
}

// New constructs a new mempool.
func New() *Mempool {
	return &Mempool{
		pool: make(map[string]database.BlockTx),
	}
}

// Enqueue adds a new transaction to the end of the pool.
func (mp *Mempool) Enqueue(tx database.BlockTx) error {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	if _, exists := mp.pool[tx.ID]; exists {
		return fmt.Errorf("transaction %s already exists", tx.ID)
	}

	mp.pool[tx.ID] = tx
	mp.order = append(mp.order, tx.ID)

	return nil
}

// DequeuePending returns up to limit pending transactions in arrival order.
// The transactions are not removed or changed. A limit of 0 or less returns
// every pending transaction.
func (mp *Mempool) DequeuePending(limit int) ([]database.BlockTx, error) {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	var trans []database.BlockTx
	for _, id := range mp.order {
		if limit > 0 && len(trans) == limit {
			break
		}

		if tx := mp.pool[id]; tx.Status == database.StatusPending {
			trans = append(trans, tx)
		}
	}

	return trans, nil
}

// MarkConfirmed moves the transaction to confirmed and records the block
// that contains it.
func (mp *Mempool) MarkConfirmed(id string, blockID string) error {
	return mp.update(id, func(tx *database.BlockTx) {
		tx.Status = database.StatusConfirmed
		tx.BlockID = blockID
	})
}

// MarkFailed moves the transaction to failed.
func (mp *Mempool) MarkFailed(id string) error {
	return mp.update(id, func(tx *database.BlockTx) {
		tx.Status = database.StatusFailed
	})
}

// Get returns the transaction for the specified id.
func (mp *Mempool) Get(id string) (database.BlockTx, error) {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	tx, exists := mp.pool[id]
	if !exists {
		return database.BlockTx{}, fmt.Errorf("transaction %s: %w", id, database.ErrNotFound)
	}

	return tx, nil
}

// Query returns the page of transactions that match the filter and the
// number of matches before paging.
func (mp *Mempool) Query(filter database.TxFilter) ([]database.BlockTx, int, error) {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	var matched []database.BlockTx
	for _, id := range mp.order {
		if tx := mp.pool[id]; filter.Match(tx) {
			matched = append(matched, tx)
		}
	}

	if filter.Descending {
		for i, j := 0, len(matched)-1; i < j; i, j = i+1, j-1 {
			matched[i], matched[j] = matched[j], matched[i]
		}
	}

	start, end := database.Page(len(matched), filter.Offset, filter.Limit)

	return matched[start:end], len(matched), nil
}

// CountTx returns the number of transactions with the specified status. An
// empty status counts every transaction.
func (mp *Mempool) CountTx(status database.Status) (int, error) {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	if status == "" {
		return len(mp.pool), nil
	}

	var n int
	for _, tx := range mp.pool {
		if tx.Status == status {
			n++
		}
	}

	return n, nil
}

// Truncate clears all the transactions from the pool.
func (mp *Mempool) Truncate() {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	mp.pool = make(map[string]database.BlockTx)
	mp.order = nil
}

// =============================================================================

func (mp *Mempool) update(id string, fn func(tx *database.BlockTx)) error {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	tx, exists := mp.pool[id]
	if !exists {
		return fmt.Errorf("transaction %s: %w", id, database.ErrNotFound)
	}

	fn(&tx)
	mp.pool[id] = tx

	return nil
}
