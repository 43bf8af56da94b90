package cmd

import (
	"net/http"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var (
	to     string
	amount string
)

// sendCmd represents the send command
var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Send an amount to another wallet",
	RunE:  sendRun,
}

func init() {
	rootCmd.AddCommand(sendCmd)
	sendCmd.Flags().StringVarP(&to, "to", "t", "", "Address of the receiving wallet.")
	sendCmd.Flags().StringVarP(&amount, "amount", "a", "", "Amount to send, like 12.50.")
	sendCmd.MarkFlagRequired("to")
	sendCmd.MarkFlagRequired("amount")
}

func sendRun(cmd *cobra.Command, args []string) error {
	w, err := loadWallet()
	if err != nil {
		return err
	}

	// Reject a malformed amount before the node sees it.
	if _, err := database.ParseAmount(amount); err != nil {
		return err
	}

	nt := struct {
		From   string `json:"from"`
		To     string `json:"to"`
		Amount string `json:"amount"`
	}{
		From:   w.Address,
		To:     to,
		Amount: amount,
	}

	var tx database.BlockTx
	if err := do(http.MethodPost, "/v1/transactions", nt, &tx); err != nil {
		return err
	}

	pterm.Success.Printfln("transaction %s is %s", tx.ID, tx.Status)
	pterm.Info.Printfln("amount: %s fee: %s hash: %s", tx.Amount, tx.Fee, tx.TxHash)

	return nil
}
