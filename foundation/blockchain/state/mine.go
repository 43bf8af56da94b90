package state

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
)

// MineNewBlock attempts to create a new block with a proper hash that can become
// the next block in the chain. Up to TransPerBlock pending transactions are
// taken in pool order and an empty block is mined when there are none. The
// work can be cancelled through the context, which leaves the chain and the
// pool untouched.
func (s *State) MineNewBlock(ctx context.Context) (database.Block, error) {
	s.miningMu.Lock()
	defer s.miningMu.Unlock()

	s.evHandler("state: MineNewBlock: MINING: select pending transactions")

	trans, rejected, prevBlock, err := s.selectTransactions()
	if err != nil {
		return database.Block{}, err
	}

	s.evHandler("state: MineNewBlock: MINING: perform POW: txs[%d]", len(trans))

	// Attempt to create a new block by solving the POW puzzle. This can be
	// cancelled and no state is held while the work is performed.
	start := time.Now()
	block, err := database.POW(ctx, database.POWArgs{
		Difficulty: s.genesis.Difficulty,
		PrevBlock:  prevBlock,
		Trans:      trans,
		EvHandler:  s.evHandler,
	})
	if err != nil {
		if ctx.Err() != nil {
			s.recorder.MiningCancelled()
		}
		return database.Block{}, err
	}

	// Just check one more time we were not cancelled.
	if ctx.Err() != nil {
		s.recorder.MiningCancelled()
		return database.Block{}, ctx.Err()
	}

	s.evHandler("state: MineNewBlock: MINING: update local state")

	if err := s.commitBlock(block, prevBlock, rejected); err != nil {
		return database.Block{}, err
	}

	s.recorder.BlockMined(len(trans), time.Since(start))
	s.evHandler("viewer: block: blk[%d]: hash[%s]: txs[%d]", block.Header.Index, block.Hash, len(trans))

	if pending, err := s.pool.CountTx(database.StatusPending); err == nil {
		s.recorder.PendingTransactions(pending)
	}

	return block, nil
}

// =============================================================================

// selectTransactions takes the next batch of pending transactions in pool
// order and the current tip. The ids of transactions whose wallets are gone
// or whose signatures no longer match are returned separately so they can
// be marked failed when the block is committed.
func (s *State) selectTransactions() ([]database.BlockTx, []string, *database.Block, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	prevBlock, err := s.latestBlock()
	if err != nil {
		return nil, nil, nil, err
	}

	pending, err := s.pool.DequeuePending(int(s.genesis.TransPerBlock))
	if err != nil {
		return nil, nil, nil, err
	}

	trans := make([]database.BlockTx, 0, len(pending))
	var rejected []string
	for _, tx := range pending {
		w, err := s.wallets.FindByAddress(tx.FromID)
		switch {
		case errors.Is(err, database.ErrNotFound):
			s.evHandler("state: MineNewBlock: MINING: tx[%s]: WARNING: unknown wallet, leaving out", tx)

		case err != nil:
			return nil, nil, nil, err

		case !tx.VerifyHash() || !tx.VerifySignature(w.PrivateKey):
			s.evHandler("state: MineNewBlock: MINING: tx[%s]: WARNING: invalid signature, leaving out", tx)

		default:
			trans = append(trans, tx)
			continue
		}

		rejected = append(rejected, tx.ID)
	}

	return trans, rejected, prevBlock, nil
}

// commitBlock appends the block to the chain, confirms its transactions and
// fails the rejected ones under the write lock so readers never see one
// without the other.
func (s *State) commitBlock(block database.Block, prevBlock *database.Block, rejected []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tip, err := s.latestBlock()
	if err != nil {
		return err
	}

	if (prevBlock == nil && tip != nil) || (prevBlock != nil && (tip == nil || tip.Hash != prevBlock.Hash)) {
		return ErrStaleTip
	}

	// The transactions inside the stored block carry their final status.
	// The status isn't part of the content hash so the merkle root holds.
	if block.Trans != nil {
		for _, leaf := range block.Trans.Leafs {
			leaf.Value.Status = database.StatusConfirmed
			leaf.Value.BlockID = block.ID
		}
	}

	s.evHandler("state: commitBlock: write blk[%d] to storage", block.Header.Index)

	if err := s.store.Append(database.NewBlockData(block)); err != nil {
		return fmt.Errorf("append block: %w", err)
	}

	// The balances are derived from the chain and must be rebuilt.
	s.balances.Invalidate()

	s.evHandler("state: commitBlock: confirm transactions")

	for _, tx := range block.Values() {
		s.evHandler("state: commitBlock: tx[%s] confirmed", tx)

		if err := s.pool.MarkConfirmed(tx.ID, block.ID); err != nil {
			return fmt.Errorf("confirm %s: %w", tx.ID, err)
		}
	}

	for _, id := range rejected {
		s.evHandler("state: commitBlock: tx[%s] failed", id)

		if err := s.pool.MarkFailed(id); err != nil {
			return fmt.Errorf("fail %s: %w", id, err)
		}
	}

	return nil
}

// latestBlock returns the tip of the chain or nil for an empty chain.
func (s *State) latestBlock() (*database.Block, error) {
	blockData, err := s.store.Tip()
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	block, err := database.ToBlock(blockData)
	if err != nil {
		return nil, err
	}

	return &block, nil
}
