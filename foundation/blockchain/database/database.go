// Package database defines the data model for the ledger, the proof of work
// and validation rules, and the storage contracts the ledger depends on.
package database

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a requested block, transaction or wallet
// does not exist.
var ErrNotFound = errors.New("not found")

// ErrOutOfOrder is returned when a block is appended that is not the next
// block in the chain.
var ErrOutOfOrder = errors.New("block is out of order")

// =============================================================================

// Iterator interface represents the behavior required to be implemented by any
// package providing support to iterate over the blocks.
type Iterator interface {
	Next() (BlockData, error)
	Done() bool
}

// BlockStore interface represents the behavior required to be implemented by
// any package providing support for storing and reading the blockchain.
type BlockStore interface {
	Append(blockData BlockData) error
	Tip() (BlockData, error)
	GetByID(id string) (BlockData, error)
	GetByIndex(index uint64) (BlockData, error)
	Count() (int, error)
	Range(filter BlockFilter) ([]BlockData, int, error)
	ForEach() Iterator
	Close() error
}

// BlockFilter selects blocks by their timestamp. A zero time leaves that
// side of the range open.
type BlockFilter struct {
	From   time.Time
	To     time.Time
	Limit  int
	Offset int
}

// Match reports whether the block falls inside the time range.
func (f BlockFilter) Match(blockData BlockData) bool {
	ts := time.UnixMilli(int64(blockData.Header.TimeStamp))

	if !f.From.IsZero() && ts.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && ts.After(f.To) {
		return false
	}

	return true
}

// =============================================================================

// TransactionPool interface represents the behavior required to be implemented
// by any package holding transactions. Transactions are kept after they are
// confirmed so they can still be queried.
type TransactionPool interface {
	Enqueue(tx BlockTx) error
	DequeuePending(limit int) ([]BlockTx, error)
	MarkConfirmed(id string, blockID string) error
	MarkFailed(id string) error
	Get(id string) (BlockTx, error)
	Query(filter TxFilter) ([]BlockTx, int, error)
	CountTx(status Status) (int, error)
}

// TxFilter selects transactions. Empty fields don't filter.
type TxFilter struct {
	Status     Status
	Account    string // Matches either side of the transaction.
	MinAmount  Amount
	MaxAmount  Amount
	Limit      int
	Offset     int
	Descending bool // Newest first by timestamp.
}

// Match reports whether the transaction passes the filter. Paging is
// applied by the caller.
func (f TxFilter) Match(tx BlockTx) bool {
	if f.Status != "" && tx.Status != f.Status {
		return false
	}
	if f.Account != "" && tx.FromID != f.Account && tx.ToID != f.Account {
		return false
	}
	if f.MinAmount > 0 && tx.Amount < f.MinAmount {
		return false
	}
	if f.MaxAmount > 0 && tx.Amount > f.MaxAmount {
		return false
	}

	return true
}

// Page applies the offset and limit to a slice of any length and returns
// the start and end positions. A limit of 0 means no limit.
func Page(total int, offset int, limit int) (int, int) {
	if offset < 0 {
		offset = 0
	}
	if offset > total {
		offset = total
	}

	end := total
	if limit > 0 && offset+limit < total {
		end = offset + limit
	}

	return offset, end
}
