package commands

import (
	"github.com/ardanlabs/ledger/foundation/blockchain/database"
)

// Transactions lists the transactions in arrival order, optionally limited
// to a single status.
func Transactions(status string, env Env) error {
	var filter database.TxFilter
	if status != "" {
		s, err := database.ParseStatus(status)
		if err != nil {
			return err
		}
		filter.Status = s
	}

	trans, _, err := env.DB.Query(filter)
	if err != nil {
		return err
	}

	data := [][]string{{"ID", "From", "To", "Amount", "Fee", "Status", "Block"}}
	for _, tx := range trans {
		data = append(data, []string{
			tx.ID,
			env.Wallets.Lookup(tx.FromID),
			env.Wallets.Lookup(tx.ToID),
			tx.Amount.String(),
			tx.Fee.String(),
			string(tx.Status),
			tx.BlockID,
		})
	}

	return table(env.Out, data)
}
