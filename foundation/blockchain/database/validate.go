package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/ardanlabs/ledger/foundation/blockchain/merkle"
)

// KeyLookup returns the private key material for the wallet at the
// specified address. ErrNotFound is expected for an unknown address.
type KeyLookup func(address string) (string, error)

// IntegrityError describes the first problem found while validating the
// chain. It's a reported result and not a fault in the system.
type IntegrityError struct {
	Index  uint64
	TxID   string
	Reason string
}

// Error implements the error interface.
func (ie *IntegrityError) Error() string {
	if ie.TxID != "" {
		return fmt.Sprintf("block %d: tx %s: %s", ie.Index, ie.TxID, ie.Reason)
	}
	return fmt.Sprintf("block %d: %s", ie.Index, ie.Reason)
}

// IsIntegrityError checks if an error of type IntegrityError exists.
func IsIntegrityError(err error) bool {
	var ie *IntegrityError
	return errors.As(err, &ie)
}

// GetIntegrityError returns a copy of the IntegrityError pointer.
func GetIntegrityError(err error) *IntegrityError {
	var ie *IntegrityError
	if !errors.As(err, &ie) {
		return nil
	}
	return ie
}

// =============================================================================

// ValidateBlock checks a single block against its predecessor. The previous
// block is nil for the first block in the chain, which skips the linkage
// check. The checks run in order and the first failure is returned.
func ValidateBlock(block BlockData, prevBlock *BlockData, keys KeyLookup, evHandler func(v string, args ...any)) error {
	ev := evHandler
	if ev == nil {
		ev = func(string, ...any) {}
	}

	index := block.Header.Index
	fail := func(format string, args ...any) error {
		return &IntegrityError{Index: index, Reason: fmt.Sprintf(format, args...)}
	}

	switch prevBlock {
	case nil:
		ev("database: ValidateBlock: validate: blk[%d]: check: first block is index zero", index)

		if index != 0 {
			return fail("first block has index %d, exp 0", index)
		}

	default:
		ev("database: ValidateBlock: validate: blk[%d]: check: parent hash does match parent block", index)

		if block.Header.PrevBlockHash != prevBlock.Hash {
			return fail("parent block hash doesn't match, got %s, exp %s", block.Header.PrevBlockHash, prevBlock.Hash)
		}

		ev("database: ValidateBlock: validate: blk[%d]: check: block index is the next index", index)

		if index != prevBlock.Header.Index+1 {
			return fail("this block is not the next index, got %d, exp %d", index, prevBlock.Header.Index+1)
		}
	}

	ev("database: ValidateBlock: validate: blk[%d]: check: block hash has been solved", index)

	if !IsHashSolved(block.Header.Difficulty, block.Hash) {
		return fail("%s invalid block hash for difficulty %d", block.Hash, block.Header.Difficulty)
	}

	ev("database: ValidateBlock: validate: blk[%d]: check: block hash matches the header", index)

	if hash := block.Header.Hash(); hash != block.Hash {
		return fail("block hash doesn't match header, got %s, exp %s", block.Hash, hash)
	}

	ev("database: ValidateBlock: validate: blk[%d]: check: merkle root does match transactions", index)

	if block.TransactionCount != len(block.Trans) {
		return fail("transaction count %d doesn't match %d transactions", block.TransactionCount, len(block.Trans))
	}

	hashes := make([]string, len(block.Trans))
	for i, tx := range block.Trans {
		hashes[i] = tx.TxHash
	}
	if root := merkle.Root(hashes); root != block.Header.MerkleRoot {
		return fail("merkle root does not match transactions, got %s, exp %s", root, block.Header.MerkleRoot)
	}

	ev("database: ValidateBlock: validate: blk[%d]: check: transaction signatures", index)

	for _, tx := range block.Trans {
		txFail := func(reason string) error {
			return &IntegrityError{Index: index, TxID: tx.ID, Reason: reason}
		}

		if !tx.VerifyHash() {
			return txFail("content hash does not match transaction")
		}

		privateKey, err := keys(tx.FromID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return txFail("unknown source wallet " + tx.FromID)
			}
			return fmt.Errorf("lookup wallet %s: %w", tx.FromID, err)
		}

		if !tx.VerifySignature(privateKey) {
			return txFail("signature does not match transaction")
		}
	}

	return nil
}

// ValidateChain walks the blocks in index order and validates each block
// against its predecessor. It stops at the first failure which is returned
// as an IntegrityError. Any other error means the chain couldn't be read.
func ValidateChain(ctx context.Context, iter Iterator, keys KeyLookup, evHandler func(v string, args ...any)) error {
	var prevBlock *BlockData

	for blockData, err := iter.Next(); !iter.Done(); blockData, err = iter.Next() {
		if err != nil {
			return err
		}

		if ctx.Err() != nil {
			return ctx.Err()
		}

		if err := ValidateBlock(blockData, prevBlock, keys, evHandler); err != nil {
			return err
		}

		block := blockData
		prevBlock = &block
	}

	return nil
}
