package state

import (
	"errors"
	"fmt"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ardanlabs/ledger/foundation/blockchain/merkle"
	"github.com/ardanlabs/ledger/foundation/blockchain/wallet"
)

// Status represents a summary of the chain and the pool.
type Status struct {
	BlockCount       int    `json:"block_count"`
	TransactionCount int    `json:"transaction_count"`
	PendingCount     int    `json:"pending_count"`
	LatestBlockHash  string `json:"latest_block_hash"`
	LatestBlockIndex uint64 `json:"latest_block_index"`
	Difficulty       uint16 `json:"difficulty"`
}

// Proof represents the merkle inclusion proof for a confirmed transaction.
type Proof struct {
	TxID       string   `json:"tx_id"`
	TxHash     string   `json:"tx_hash"`
	BlockID    string   `json:"block_id"`
	BlockIndex uint64   `json:"block_index"`
	MerkleRoot string   `json:"merkle_root"`
	Hashes     []string `json:"hashes"`
	Order      []int64  `json:"order"`
	Verified   bool     `json:"verified"`
}

// =============================================================================

// QueryWallet returns the wallet with the specified address.
func (s *State) QueryWallet(address string) (wallet.Wallet, error) {
	return s.findWallet(address)
}

// BalanceOf returns the balance derived from the opening balance of the
// wallet and its confirmed history.
func (s *State) BalanceOf(address string) (database.Balance, error) {
	if _, err := s.findWallet(address); err != nil {
		return 0, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.balances.BalanceOf(address)
}

// Status returns a summary of the chain and the pool.
func (s *State) Status() (Status, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	blocks, err := s.store.Count()
	if err != nil {
		return Status{}, err
	}

	trans, err := s.pool.CountTx("")
	if err != nil {
		return Status{}, err
	}

	pending, err := s.pool.CountTx(database.StatusPending)
	if err != nil {
		return Status{}, err
	}

	status := Status{
		BlockCount:       blocks,
		TransactionCount: trans,
		PendingCount:     pending,
		Difficulty:       s.genesis.Difficulty,
	}

	tip, err := s.store.Tip()
	switch {
	case err == nil:
		status.LatestBlockHash = tip.Hash
		status.LatestBlockIndex = tip.Header.Index

	case !errors.Is(err, database.ErrNotFound):
		return Status{}, err
	}

	return status, nil
}

// QueryBlocks returns the page of blocks inside the filter's time range and
// the number of blocks in the range.
func (s *State) QueryBlocks(filter database.BlockFilter) ([]database.BlockData, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.store.Range(filter)
}

// QueryBlock returns the block with the specified id.
func (s *State) QueryBlock(id string) (database.BlockData, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.store.GetByID(id)
}

// QueryTransactions returns the page of transactions that match the filter
// and the number of matches.
func (s *State) QueryTransactions(filter database.TxFilter) ([]database.BlockTx, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.pool.Query(filter)
}

// QueryTransaction returns the transaction with the specified id.
func (s *State) QueryTransaction(id string) (database.BlockTx, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.pool.Get(id)
}

// QueryWalletTransactions returns the page of transactions sent or received
// by the wallet with an amount inside the range. A zero amount leaves that
// side of the range open.
func (s *State) QueryWalletTransactions(address string, minAmount database.Amount, maxAmount database.Amount, limit int, offset int) ([]database.BlockTx, int, error) {
	if _, err := s.findWallet(address); err != nil {
		return nil, 0, err
	}

	filter := database.TxFilter{
		Account:   address,
		MinAmount: minAmount,
		MaxAmount: maxAmount,
		Limit:     limit,
		Offset:    offset,
	}

	return s.QueryTransactions(filter)
}

// TransactionProof returns the merkle proof that the confirmed transaction
// is part of its block.
func (s *State) TransactionProof(id string) (Proof, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tx, err := s.pool.Get(id)
	if err != nil {
		return Proof{}, err
	}

	if tx.Status != database.StatusConfirmed {
		return Proof{}, fmt.Errorf("transaction %s is %s: %w", id, tx.Status, ErrNotFound)
	}

	blockData, err := s.store.GetByID(tx.BlockID)
	if err != nil {
		return Proof{}, err
	}

	block, err := database.ToBlock(blockData)
	if err != nil {
		return Proof{}, err
	}

	hashes, order, err := block.Trans.Proof(tx)
	if err != nil {
		return Proof{}, fmt.Errorf("transaction %s in block %s: %w", id, block.ID, err)
	}

	proof := Proof{
		TxID:       tx.ID,
		TxHash:     tx.TxHash,
		BlockID:    block.ID,
		BlockIndex: block.Header.Index,
		MerkleRoot: block.Header.MerkleRoot,
		Hashes:     hashes,
		Order:      order,
		Verified:   merkle.VerifyProof(tx.TxHash, hashes, order, block.Header.MerkleRoot),
	}

	return proof, nil
}
