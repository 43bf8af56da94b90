package state

import (
	"context"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
)

// ValidateChain walks the chain in index order and checks every block's
// linkage, proof of work, merkle root and transaction signatures. A chain
// that fails is reported with a *database.IntegrityError. Any other error
// means the chain could not be read. The walk sees a single snapshot of
// the chain.
func (s *State) ValidateChain(ctx context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	s.evHandler("state: ValidateChain: started")
	defer s.evHandler("state: ValidateChain: completed")

	err := database.ValidateChain(ctx, s.store.ForEach(), s.wallets.PrivateKey, s.evHandler)

	switch {
	case err == nil:
		s.recorder.ChainValidated(true)

	case database.IsIntegrityError(err):
		s.evHandler("state: ValidateChain: INTEGRITY FAILURE: %s", err)
		s.recorder.ChainValidated(false)
	}

	return err
}

// IsChainValid reports whether the chain passes validation. Any failure to
// read the chain is reported as invalid.
func (s *State) IsChainValid(ctx context.Context) bool {
	return s.ValidateChain(ctx) == nil
}
