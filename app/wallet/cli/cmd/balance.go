package cmd

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"
)

var balanceCmd = &cobra.Command{
	Use:   "balance",
	Short: "Print your balance.",
	RunE:  balanceRun,
}

func init() {
	rootCmd.AddCommand(balanceCmd)
}

func balanceRun(cmd *cobra.Command, args []string) error {
	w, err := loadWallet()
	if err != nil {
		return err
	}

	var bal struct {
		Address string `json:"address"`
		Name    string `json:"name"`
		Balance string `json:"balance"`
	}
	if err := do(http.MethodGet, fmt.Sprintf("/v1/wallets/%s/balance", w.Address), nil, &bal); err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), "For Wallet:", bal.Name, bal.Address)
	fmt.Fprintln(cmd.OutOrStdout(), bal.Balance)

	return nil
}
