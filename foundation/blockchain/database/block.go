package database

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/ardanlabs/ledger/foundation/blockchain/merkle"
	"github.com/ardanlabs/ledger/foundation/blockchain/signature"
	"github.com/google/uuid"
)

// DefaultDifficulty is the number of leading hex zeros required when a
// difficulty isn't configured.
const DefaultDifficulty uint16 = 4

// MaxDifficulty is the length of a hex encoded sha256 hash.
const MaxDifficulty uint16 = 64

// =============================================================================

// BlockHeader represents common information required for each block.
type BlockHeader struct {
	Index         uint64 `json:"index"`         // Position in the chain, starting at 0.
	TimeStamp     uint64 `json:"timestamp"`     // Unix milliseconds when the block was assembled.
	PrevBlockHash string `json:"previous_hash"` // Hash of the previous block in the chain.
	MerkleRoot    string `json:"merkle_root"`   // Merkle root of the transaction hashes in stored order.
	Nonce         uint64 `json:"nonce"`         // Value identified to solve the hash solution.
	Difficulty    uint16 `json:"difficulty"`    // Number of leading 0's needed to solve the hash solution.
}

// Hash returns the hash of the header fields. The fields are concatenated as
// text in the order index, previous hash, timestamp, merkle root, nonce with
// numbers written in base 10.
func (h BlockHeader) Hash() string {
	s := strconv.FormatUint(h.Index, 10) +
		h.PrevBlockHash +
		strconv.FormatUint(h.TimeStamp, 10) +
		h.MerkleRoot +
		strconv.FormatUint(h.Nonce, 10)

	return signature.HashString(s)
}

// Block represents a group of transactions batched together.
type Block struct {
	ID     string
	Header BlockHeader
	Hash   string
	Trans  *merkle.Tree[BlockTx]
}

// POWArgs represents the set of arguments required to run POW.
type POWArgs struct {
	Difficulty uint16
	PrevBlock  *Block // nil when the chain is empty.
	Trans      []BlockTx
	EvHandler  func(v string, args ...any)
}

// POW constructs a new Block and performs the work to find a nonce that
// solves the cryptographic POW puzzel. The work is cancelled when the
// context is done and no block is returned.
func POW(ctx context.Context, args POWArgs) (Block, error) {
	ev := args.EvHandler
	if ev == nil {
		ev = func(string, ...any) {}
	}

	if args.Difficulty > MaxDifficulty {
		return Block{}, fmt.Errorf("difficulty %d is above the max of %d", args.Difficulty, MaxDifficulty)
	}

	// When mining the first block, the previous block's hash will be zero.
	prevBlockHash := signature.ZeroHash
	var index uint64
	if args.PrevBlock != nil {
		prevBlockHash = args.PrevBlock.Hash
		index = args.PrevBlock.Header.Index + 1
	}

	// Construct a merkle tree from the transaction for this block. The root
	// of this tree will be part of the block to be mined.
	tree, err := merkle.NewTree(args.Trans)
	if err != nil {
		return Block{}, err
	}

	// Construct the block to be mined.
	nb := Block{
		ID: uuid.NewString(),
		Header: BlockHeader{
			Index:         index,
			TimeStamp:     uint64(time.Now().UTC().UnixMilli()),
			PrevBlockHash: prevBlockHash,
			MerkleRoot:    tree.RootHex(),
			Nonce:         0, // Will be identified by the POW algorithm.
			Difficulty:    args.Difficulty,
		},
		Trans: tree,
	}

	// Peform the proof of work mining operation.
	if err := nb.performPOW(ctx, ev); err != nil {
		return Block{}, err
	}

	return nb, nil
}

// performPOW does the work of mining to find a valid hash for a specified
// block. Pointer semantics are being used since a nonce is being discovered.
func (b *Block) performPOW(ctx context.Context, ev func(v string, args ...any)) error {
	ev("database: PerformPOW: MINING: started: blk[%d]: txs[%d]", b.Header.Index, len(b.Trans.Leafs))
	defer ev("database: PerformPOW: MINING: completed")

	// Log the transactions that are a part of this potential block.
	for _, tx := range b.Trans.Values() {
		ev("database: PerformPOW: MINING: tx[%s]", tx)
	}

	// Loop until we find a solution or the caller gives up. The nonce starts
	// at zero and is incremented by 1 until a solution is found.
	var attempts uint64
	for {
		attempts++
		if attempts%1_000_000 == 0 {
			ev("database: PerformPOW: MINING: attempts[%d]", attempts)
		}

		// Did we timeout trying to solve the problem.
		if ctx.Err() != nil {
			ev("database: PerformPOW: MINING: CANCELLED: attempts[%d]", attempts)
			return ctx.Err()
		}

		// Hash the block and check if we have solved the puzzle.
		hash := b.Header.Hash()
		if !IsHashSolved(b.Header.Difficulty, hash) {
			b.Header.Nonce++
			continue
		}

		b.Hash = hash

		ev("database: PerformPOW: MINING: SOLVED: prevBlk[%s]: newBlk[%s]", b.Header.PrevBlockHash, hash)
		ev("database: PerformPOW: MINING: attempts[%d]", attempts)

		return nil
	}
}

// Values returns the transactions in the block in stored order.
func (b Block) Values() []BlockTx {
	if b.Trans == nil {
		return nil
	}

	return b.Trans.Values()
}

// IsHashSolved checks the hash to make sure it complies with
// the POW rules. We need to match a difficulty number of 0's.
func IsHashSolved(difficulty uint16, hash string) bool {
	if len(hash) != 64 || difficulty > MaxDifficulty {
		return false
	}

	return hash[:difficulty] == signature.ZeroHash[:difficulty]
}

// =============================================================================

// BlockData represents what can be serialized to disk and over the network.
type BlockData struct {
	ID               string      `json:"id"`
	Hash             string      `json:"hash"`
	Header           BlockHeader `json:"block"`
	TransactionCount int         `json:"transaction_count"`
	Trans            []BlockTx   `json:"transactions"`
}

// NewBlockData constructs block data from a block.
func NewBlockData(block Block) BlockData {
	trans := block.Values()
	if trans == nil {
		trans = []BlockTx{}
	}

	blockData := BlockData{
		ID:               block.ID,
		Hash:             block.Hash,
		Header:           block.Header,
		TransactionCount: len(trans),
		Trans:            trans,
	}

	return blockData
}

// ToBlock converts a storage block into a database block. The stored header
// is kept as is, so a tampered merkle root is still visible to validation.
func ToBlock(blockData BlockData) (Block, error) {
	if blockData.TransactionCount != len(blockData.Trans) {
		return Block{}, errors.New("transaction count does not match transactions")
	}

	tree, err := merkle.NewTree(blockData.Trans)
	if err != nil {
		return Block{}, err
	}

	block := Block{
		ID:     blockData.ID,
		Header: blockData.Header,
		Hash:   blockData.Hash,
		Trans:  tree,
	}

	return block, nil
}
