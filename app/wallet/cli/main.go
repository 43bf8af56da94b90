// This program is a wallet for the ledger. It manages key files and talks to
// a node over the public API.
package main

import "github.com/ardanlabs/ledger/app/wallet/cli/cmd"

func main() {
	cmd.Execute()
}
