package state

import (
	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ardanlabs/ledger/foundation/blockchain/genesis"
	"github.com/ardanlabs/ledger/foundation/blockchain/wallet"
)

// RetrieveGenesis returns a copy of the genesis information.
func (s *State) RetrieveGenesis() genesis.Genesis {
	return s.genesis
}

// RetrieveWallets returns a copy of the known wallets.
func (s *State) RetrieveWallets() []wallet.Wallet {
	return s.wallets.Copy()
}

// RetrievePendingCount returns the number of transactions waiting to be
// mined.
func (s *State) RetrievePendingCount() int {
	n, err := s.pool.CountTx(database.StatusPending)
	if err != nil {
		s.evHandler("state: RetrievePendingCount: ERROR: %s", err)
		return 0
	}
	return n
}
