// Package commands contains the functionality for the set of commands
// currently supported by the admin CLI tooling.
package commands

import (
	"io"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ardanlabs/ledger/foundation/blockchain/genesis"
	"github.com/ardanlabs/ledger/foundation/blockchain/wallet"
	"github.com/pterm/pterm"
)

// Store represents the ledger database the commands read from.
type Store interface {
	database.BlockStore
	database.TransactionPool
}

// Env carries what the commands need to run.
type Env struct {
	DB      Store
	Wallets *wallet.Memory
	Genesis genesis.Genesis
	Out     io.Writer
}

// table renders the rows with a header to the output.
func table(out io.Writer, data pterm.TableData) error {
	s, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return err
	}

	_, err = io.WriteString(out, s+"\n")
	return err
}

// short returns the first characters of a hash or address.
func short(s string) string {
	const n = 12
	if len(s) <= n {
		return s
	}
	return s[:n]
}
