// Package bolt implements the ability to read and write blocks and
// transactions to a single bolt database file.
package bolt

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	bolt "go.etcd.io/bbolt"
)

// Set of buckets used by the database file.
var (
	bucketBlocks   = []byte("blocks")    // index -> block data
	bucketBlockIDs = []byte("block_ids") // block id -> index
	bucketTrans    = []byte("trans")     // tx id -> block tx
	bucketTxOrder  = []byte("tx_order")  // arrival sequence -> tx id
)

// Bolt represents the serialization implementation for reading and storing
// blocks and transactions in a bolt file. This implements both the
// database.BlockStore and database.TransactionPool interfaces.
type Bolt struct {
	db *bolt.DB
}

// Open constructs a Bolt value for use, creating the file when it doesn't
// exist.
func Open(path string) (*Bolt, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{bucketBlocks, bucketBlockIDs, bucketTrans, bucketTxOrder} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return fmt.Errorf("bucket %s: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Bolt{db: db}, nil
}

// Close closes the database file.
func (b *Bolt) Close() error {
	return b.db.Close()
}

// Path returns the location of the database file.
func (b *Bolt) Path() string {
	return b.db.Path()
}

// =============================================================================
// BlockStore

// Append takes the specified block and stores it. The block must be the next
// block in the chain.
func (b *Bolt) Append(blockData database.BlockData) error {
	data, err := json.Marshal(blockData)
	if err != nil {
		return fmt.Errorf("marshal block: %w", err)
	}

	return b.db.Update(func(tx *bolt.Tx) error {
		blocks := tx.Bucket(bucketBlocks)

		var next uint64
		if k, _ := blocks.Cursor().Last(); k != nil {
			next = binary.BigEndian.Uint64(k) + 1
		}

		if blockData.Header.Index != next {
			return fmt.Errorf("got index %d, exp %d: %w", blockData.Header.Index, next, database.ErrOutOfOrder)
		}

		key := itob(blockData.Header.Index)
		if err := blocks.Put(key, data); err != nil {
			return err
		}

		return tx.Bucket(bucketBlockIDs).Put([]byte(blockData.ID), key)
	})
}

// Tip returns the last block in the chain.
func (b *Bolt) Tip() (database.BlockData, error) {
	var blockData database.BlockData

	err := b.db.View(func(tx *bolt.Tx) error {
		_, v := tx.Bucket(bucketBlocks).Cursor().Last()
		if v == nil {
			return fmt.Errorf("tip: %w", database.ErrNotFound)
		}

		return json.Unmarshal(v, &blockData)
	})

	return blockData, err
}

// GetByID searches the blockchain to locate and return the contents of
// the specified block by id.
func (b *Bolt) GetByID(id string) (database.BlockData, error) {
	var blockData database.BlockData

	err := b.db.View(func(tx *bolt.Tx) error {
		key := tx.Bucket(bucketBlockIDs).Get([]byte(id))
		if key == nil {
			return fmt.Errorf("block %s: %w", id, database.ErrNotFound)
		}

		return json.Unmarshal(tx.Bucket(bucketBlocks).Get(key), &blockData)
	})

	return blockData, err
}

// GetByIndex searches the blockchain to locate and return the contents of
// the specified block by index.
func (b *Bolt) GetByIndex(index uint64) (database.BlockData, error) {
	var blockData database.BlockData

	err := b.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketBlocks).Get(itob(index))
		if v == nil {
			return fmt.Errorf("block %d: %w", index, database.ErrNotFound)
		}

		return json.Unmarshal(v, &blockData)
	})

	return blockData, err
}

// Count returns the number of blocks in the chain.
func (b *Bolt) Count() (int, error) {
	var n int

	err := b.db.View(func(tx *bolt.Tx) error {
		n = tx.Bucket(bucketBlocks).Stats().KeyN
		return nil
	})

	return n, err
}

// Range returns the page of blocks inside the filter's time range in index
// order and the number of matches before paging.
func (b *Bolt) Range(filter database.BlockFilter) ([]database.BlockData, int, error) {
	var matched []database.BlockData

	err := b.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketBlocks).ForEach(func(_, v []byte) error {
			var blockData database.BlockData
			if err := json.Unmarshal(v, &blockData); err != nil {
				return err
			}

			if filter.Match(blockData) {
				matched = append(matched, blockData)
			}
			return nil
		})
	})
	if err != nil {
		return nil, 0, err
	}

	start, end := database.Page(len(matched), filter.Offset, filter.Limit)

	return matched[start:end], len(matched), nil
}

// ForEach returns an iterator to walk through all the blocks
// starting with block index 0.
func (b *Bolt) ForEach() database.Iterator {
	return &boltIterator{storage: b}
}

// =============================================================================
// TransactionPool

// Enqueue adds a new transaction to the end of the pool.
func (b *Bolt) Enqueue(blockTx database.BlockTx) error {
	data, err := json.Marshal(blockTx)
	if err != nil {
		return fmt.Errorf("marshal transaction: %w", err)
	}

	return b.db.Update(func(tx *bolt.Tx) error {
		trans := tx.Bucket(bucketTrans)
		if trans.Get([]byte(blockTx.ID)) != nil {
			return fmt.Errorf("transaction %s already exists", blockTx.ID)
		}

		if err := trans.Put([]byte(blockTx.ID), data); err != nil {
			return err
		}

		order := tx.Bucket(bucketTxOrder)
		seq, err := order.NextSequence()
		if err != nil {
			return err
		}

		return order.Put(itob(seq), []byte(blockTx.ID))
	})
}

// DequeuePending returns up to limit pending transactions in arrival order.
// The transactions are not removed or changed. A limit of 0 or less returns
// every pending transaction.
func (b *Bolt) DequeuePending(limit int) ([]database.BlockTx, error) {
	var pending []database.BlockTx

	err := b.db.View(func(tx *bolt.Tx) error {
		return b.walk(tx, false, func(blockTx database.BlockTx) bool {
			if blockTx.Status == database.StatusPending {
				pending = append(pending, blockTx)
			}
			return limit <= 0 || len(pending) < limit
		})
	})

	return pending, err
}

// MarkConfirmed moves the transaction to confirmed and records the block
// that contains it.
func (b *Bolt) MarkConfirmed(id string, blockID string) error {
	return b.update(id, func(blockTx *database.BlockTx) {
		blockTx.Status = database.StatusConfirmed
		blockTx.BlockID = blockID
	})
}

// MarkFailed moves the transaction to failed.
func (b *Bolt) MarkFailed(id string) error {
	return b.update(id, func(blockTx *database.BlockTx) {
		blockTx.Status = database.StatusFailed
	})
}

// Get returns the transaction for the specified id.
func (b *Bolt) Get(id string) (database.BlockTx, error) {
	var blockTx database.BlockTx

	err := b.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketTrans).Get([]byte(id))
		if v == nil {
			return fmt.Errorf("transaction %s: %w", id, database.ErrNotFound)
		}

		return json.Unmarshal(v, &blockTx)
	})

	return blockTx, err
}

// Query returns the page of transactions that match the filter and the
// number of matches before paging.
func (b *Bolt) Query(filter database.TxFilter) ([]database.BlockTx, int, error) {
	var matched []database.BlockTx

	err := b.db.View(func(tx *bolt.Tx) error {
		return b.walk(tx, filter.Descending, func(blockTx database.BlockTx) bool {
			if filter.Match(blockTx) {
				matched = append(matched, blockTx)
			}
			return true
		})
	})
	if err != nil {
		return nil, 0, err
	}

	start, end := database.Page(len(matched), filter.Offset, filter.Limit)

	return matched[start:end], len(matched), nil
}

// CountTx returns the number of transactions with the specified status. An
// empty status counts every transaction.
func (b *Bolt) CountTx(status database.Status) (int, error) {
	var n int

	err := b.db.View(func(tx *bolt.Tx) error {
		if status == "" {
			n = tx.Bucket(bucketTrans).Stats().KeyN
			return nil
		}

		return b.walk(tx, false, func(blockTx database.BlockTx) bool {
			if blockTx.Status == status {
				n++
			}
			return true
		})
	})

	return n, err
}

// =============================================================================

// walk visits the transactions in arrival order until fn returns false.
func (b *Bolt) walk(tx *bolt.Tx, descending bool, fn func(blockTx database.BlockTx) bool) error {
	trans := tx.Bucket(bucketTrans)
	c := tx.Bucket(bucketTxOrder).Cursor()

	first, next := c.First, c.Next
	if descending {
		first, next = c.Last, c.Prev
	}

	for k, id := first(); k != nil; k, id = next() {
		var blockTx database.BlockTx
		if err := json.Unmarshal(trans.Get(id), &blockTx); err != nil {
			return fmt.Errorf("transaction %s: %w", id, err)
		}

		if !fn(blockTx) {
			return nil
		}
	}

	return nil
}

func (b *Bolt) update(id string, fn func(blockTx *database.BlockTx)) error {
	return b.db.Update(func(tx *bolt.Tx) error {
		trans := tx.Bucket(bucketTrans)

		v := trans.Get([]byte(id))
		if v == nil {
			return fmt.Errorf("transaction %s: %w", id, database.ErrNotFound)
		}

		var blockTx database.BlockTx
		if err := json.Unmarshal(v, &blockTx); err != nil {
			return err
		}

		fn(&blockTx)

		data, err := json.Marshal(blockTx)
		if err != nil {
			return err
		}

		return trans.Put([]byte(id), data)
	})
}

// itob returns an 8-byte big endian representation of v so keys sort in
// numeric order.
func itob(v uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, v)
	return b
}

// =============================================================================

// boltIterator represents the iteration implementation for walking
// through and reading blocks from the file. This implements the database
// Iterator interface.
type boltIterator struct {
	storage *Bolt  // Access to the storage API.
	current uint64 // Current block index being iterated over.
	eoc     bool   // Represents the iterator is at the end of the chain.
}

// Next retrieves the next block from the file.
func (bi *boltIterator) Next() (database.BlockData, error) {
	if bi.eoc {
		return database.BlockData{}, errors.New("end of chain")
	}

	blockData, err := bi.storage.GetByIndex(bi.current)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			bi.eoc = true
			return database.BlockData{}, nil
		}
		return database.BlockData{}, err
	}

	bi.current++

	return blockData, nil
}

// Done returns the end of chain value.
func (bi *boltIterator) Done() bool {
	return bi.eoc
}
