package state

import (
	"errors"
	"fmt"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ardanlabs/ledger/foundation/blockchain/wallet"
)

// Set of reasons a transaction is rejected, used for metrics.
const (
	reasonMalformed    = "malformed"
	reasonUnknown      = "unknown_wallet"
	reasonInsufficient = "insufficient_funds"
)

// SubmitTransaction constructs a transaction from the source wallet to the
// destination wallet, signs it with the source wallet's key and adds it to
// the pool as pending. The source must be able to cover the amount plus the
// fee after every transaction it already has pending.
func (s *State) SubmitTransaction(fromID string, toID string, amount database.Amount) (database.BlockTx, error) {
	tx, err := database.NewTx(fromID, toID, amount, s.genesis.Fee)
	if err != nil {
		s.recorder.TransactionRejected(reasonMalformed)
		return database.BlockTx{}, fmt.Errorf("%w: %s", ErrMalformedInput, err)
	}

	from, err := s.findWallet(fromID)
	if err != nil {
		s.recorder.TransactionRejected(reasonUnknown)
		return database.BlockTx{}, err
	}

	if _, err := s.findWallet(toID); err != nil {
		s.recorder.TransactionRejected(reasonUnknown)
		return database.BlockTx{}, err
	}

	blockTx, err := tx.Sign(from.PrivateKey)
	if err != nil {
		s.recorder.TransactionRejected(reasonMalformed)
		return database.BlockTx{}, fmt.Errorf("%w: signing: %s", ErrMalformedInput, err)
	}

	pending, err := s.enqueue(blockTx)
	if err != nil {
		return database.BlockTx{}, err
	}

	s.evHandler("viewer: transaction: tx[%s]: pending[%d]", blockTx, pending)

	s.recorder.TransactionSubmitted()
	s.recorder.PendingTransactions(pending)

	if pending >= int(s.genesis.TransPerBlock) {
		s.Worker.SignalStartMining()
	}

	return blockTx, nil
}

// ValidateTransaction recomputes the signature of the specified transaction
// with the source wallet's key and checks the source can currently cover
// the amount plus the fee.
func (s *State) ValidateTransaction(id string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tx, err := s.pool.Get(id)
	if err != nil {
		return false, err
	}

	from, err := s.findWallet(tx.FromID)
	if err != nil {
		return false, err
	}

	if !tx.VerifyHash() || !tx.VerifySignature(from.PrivateKey) {
		s.evHandler("state: ValidateTransaction: tx[%s]: signature does not match", tx)
		return false, nil
	}

	bal, err := s.balances.BalanceOf(tx.FromID)
	if err != nil {
		return false, err
	}

	if !bal.Covers(tx.Cost()) {
		s.evHandler("state: ValidateTransaction: tx[%s]: balance %s can't cover %s", tx, bal, tx.Cost())
		return false, nil
	}

	return true, nil
}

// =============================================================================

// enqueue checks the source wallet can cover the transaction and adds it to
// the pool. The lock makes the check and the add a single step so two
// submissions can't spend the same balance.
func (s *State) enqueue(blockTx database.BlockTx) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	available, err := s.spendable(blockTx.FromID)
	if err != nil {
		return 0, err
	}

	if !available.Covers(blockTx.Cost()) {
		s.recorder.TransactionRejected(reasonInsufficient)
		return 0, fmt.Errorf("%w: %s has %s available, needs %s", ErrInsufficientFunds, blockTx.FromID, available, blockTx.Cost())
	}

	if err := s.pool.Enqueue(blockTx); err != nil {
		return 0, err
	}

	return s.pool.CountTx(database.StatusPending)
}

// spendable returns the derived balance less the cost of every pending
// transaction sent by the address.
func (s *State) spendable(address string) (database.Balance, error) {
	bal, err := s.balances.BalanceOf(address)
	if err != nil {
		return 0, err
	}

	pending, _, err := s.pool.Query(database.TxFilter{Status: database.StatusPending, Account: address})
	if err != nil {
		return 0, err
	}

	for _, tx := range pending {
		if tx.FromID == address {
			bal -= database.Balance(tx.Cost())
		}
	}

	return bal, nil
}

// findWallet looks up the wallet and maps a missing wallet to
// ErrUnknownWallet.
func (s *State) findWallet(address string) (wallet.Wallet, error) {
	w, err := s.wallets.FindByAddress(address)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return wallet.Wallet{}, fmt.Errorf("%w: %s", ErrUnknownWallet, address)
		}
		return wallet.Wallet{}, err
	}

	return w, nil
}
