// Package state is the core API for the blockchain and implements all the
// business rules and processing.
package state

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ardanlabs/ledger/foundation/blockchain/balance"
	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ardanlabs/ledger/foundation/blockchain/genesis"
	"github.com/ardanlabs/ledger/foundation/blockchain/mempool"
	"github.com/ardanlabs/ledger/foundation/blockchain/storage/memory"
	"github.com/ardanlabs/ledger/foundation/blockchain/wallet"
)

// Set of error variables for the ledger operations.
var (
	ErrMalformedInput    = errors.New("malformed input")
	ErrUnknownWallet     = errors.New("unknown wallet")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrNotFound          = database.ErrNotFound
	ErrStaleTip          = errors.New("chain tip changed while mining")
)

// =============================================================================

// EventHandler defines a function that is called when events
// occur in the processing of persisting blocks.
type EventHandler func(v string, args ...any)

// Worker interface represents the behavior required to be implemented by any
// package providing support for background mining.
type Worker interface {
	Shutdown()
	SignalStartMining()
	SignalCancelMining() (done func())
}

// Recorder interface represents the behavior required to be implemented by
// any package collecting metrics about the ledger.
type Recorder interface {
	BlockMined(trans int, duration time.Duration)
	MiningCancelled()
	TransactionSubmitted()
	TransactionRejected(reason string)
	ChainValidated(valid bool)
	PendingTransactions(n int)
}

// =============================================================================

// Config represents the configuration required to start the ledger. A nil
// Store or Pool is replaced by the in memory implementation.
type Config struct {
	Genesis   genesis.Genesis
	Wallets   wallet.Directory
	Store     database.BlockStore
	Pool      database.TransactionPool
	EvHandler EventHandler
	Recorder  Recorder
}

// State manages the blockchain database.
type State struct {
	evHandler EventHandler
	recorder  Recorder
	genesis   genesis.Genesis
	wallets   wallet.Directory
	store     database.BlockStore
	pool      database.TransactionPool
	balances  *balance.Calculator

	// mu provides the atomic visibility of a block and the confirmation of
	// its transactions. miningMu allows one mining operation at a time.
	mu       sync.RWMutex
	miningMu sync.Mutex

	Worker Worker
}

// New constructs a new ledger for data management.
func New(cfg Config) (*State, error) {
	if cfg.Wallets == nil {
		return nil, errors.New("wallet directory is required")
	}

	// Build a safe event handler function for use.
	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	store := cfg.Store
	if store == nil {
		store = memory.New()
	}

	pool := cfg.Pool
	if pool == nil {
		pool = mempool.New()
	}

	recorder := cfg.Recorder
	if recorder == nil {
		recorder = nopRecorder{}
	}

	// Create the State to provide support for managing the blockchain.
	state := State{
		evHandler: ev,
		recorder:  recorder,
		genesis:   cfg.Genesis,
		wallets:   cfg.Wallets,
		store:     store,
		pool:      pool,
		balances:  balance.NewCalculator(store, cfg.Genesis.Balances),
		Worker:    nopWorker{},
	}

	// A crash between the block write and the status updates leaves
	// transactions pending that are already in a block.
	if err := state.reconcile(); err != nil {
		return nil, fmt.Errorf("reconcile pool: %w", err)
	}

	// The Worker is set to do nothing here. The call to worker.Run will
	// assign itself and start the background mining.

	return &state, nil
}

// Shutdown cleanly brings the node down.
func (s *State) Shutdown() error {
	s.evHandler("state: shutdown: started")
	defer s.evHandler("state: shutdown: completed")

	// Stop all blockchain writing activity.
	s.Worker.Shutdown()

	// Make sure the database file is properly closed.
	return s.store.Close()
}

// reconcile marks every pending transaction found in a stored block as
// confirmed by that block.
func (s *State) reconcile() error {
	pending, err := s.pool.DequeuePending(0)
	if err != nil {
		return err
	}

	if len(pending) == 0 {
		return nil
	}

	ids := make(map[string]struct{}, len(pending))
	for _, tx := range pending {
		ids[tx.ID] = struct{}{}
	}

	iter := s.store.ForEach()
	for blockData, err := iter.Next(); !iter.Done(); blockData, err = iter.Next() {
		if err != nil {
			return err
		}

		for _, tx := range blockData.Trans {
			if _, exists := ids[tx.ID]; !exists {
				continue
			}

			s.evHandler("state: reconcile: tx[%s]: confirmed by blk[%d]", tx.ID, blockData.Header.Index)

			if err := s.pool.MarkConfirmed(tx.ID, blockData.ID); err != nil {
				return err
			}
		}
	}

	return nil
}

// =============================================================================

type nopWorker struct{}

func (nopWorker) Shutdown()                        {}
func (nopWorker) SignalStartMining()               {}
func (nopWorker) SignalCancelMining() (done func()) { return func() {} }

type nopRecorder struct{}

func (nopRecorder) BlockMined(int, time.Duration) {}
func (nopRecorder) MiningCancelled()              {}
func (nopRecorder) TransactionSubmitted()         {}
func (nopRecorder) TransactionRejected(string)    {}
func (nopRecorder) ChainValidated(bool)           {}
func (nopRecorder) PendingTransactions(int)       {}
