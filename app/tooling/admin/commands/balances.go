package commands

import (
	"sort"

	"github.com/ardanlabs/ledger/foundation/blockchain/balance"
)

// Balances returns the balances derived from the chain. An address limits
// the output to that wallet.
func Balances(address string, env Env) error {
	calc := balance.NewCalculator(env.DB, env.Genesis.Balances)

	sheet, err := calc.Sheet()
	if err != nil {
		return err
	}

	addresses := make([]string, 0, len(sheet))
	for addr := range sheet {
		if address != "" && addr != address {
			continue
		}
		addresses = append(addresses, addr)
	}
	sort.Strings(addresses)

	data := [][]string{{"Name", "Address", "Balance"}}
	for _, addr := range addresses {
		data = append(data, []string{env.Wallets.Lookup(addr), addr, sheet[addr].String()})
	}

	return table(env.Out, data)
}
