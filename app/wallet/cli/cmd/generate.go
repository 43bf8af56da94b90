package cmd

import (
	"fmt"
	"os"

	"github.com/ardanlabs/ledger/foundation/blockchain/wallet"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a new wallet key file",
	RunE:  generateRun,
}

func init() {
	rootCmd.AddCommand(generateCmd)
}

func generateRun(cmd *cobra.Command, args []string) error {
	if _, err := os.Stat(getKeyPath()); err == nil {
		return fmt.Errorf("wallet %s already exists", getKeyPath())
	}

	if err := os.MkdirAll(walletPath, 0755); err != nil {
		return err
	}

	w, privateKey, err := wallet.Generate(walletName)
	if err != nil {
		return err
	}

	fileName, err := wallet.Save(walletPath, w.Name, privateKey)
	if err != nil {
		return err
	}

	pterm.Success.Printfln("wallet %s saved to %s", w.Name, fileName)
	pterm.Info.Printfln("address: %s", w.Address)

	return nil
}
