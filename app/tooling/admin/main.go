// This program performs administrative tasks against a ledger database.
//
//	admin blocks
//	admin validate
//	admin bals [address]
//	admin trans [pending|confirmed|failed]
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/ardanlabs/conf/v3"
	"github.com/ardanlabs/ledger/app/tooling/admin/commands"
	"github.com/ardanlabs/ledger/foundation/blockchain/genesis"
	"github.com/ardanlabs/ledger/foundation/blockchain/storage/bolt"
	"github.com/ardanlabs/ledger/foundation/blockchain/wallet"
	"github.com/ardanlabs/ledger/foundation/logger"
	"go.uber.org/zap"
)

// build is the git version of this program. It is set using build flags in the makefile.
var build = "develop"

func main() {

	// Construct the application logger.
	log, err := logger.New("ADMIN")
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	defer log.Sync()

	// Perform the startup and shutdown sequence.
	if err := run(log); err != nil {
		log.Errorw("startup", "ERROR", err)
		log.Sync()
		os.Exit(1)
	}
}

func run(log *zap.SugaredLogger) error {
	cfg := struct {
		conf.Version
		Args  conf.Args
		State struct {
			DBPath        string `conf:"default:zblock/ledger.db"`
			GenesisPath   string `conf:"default:zblock/genesis.json"`
			WalletsFolder string `conf:"default:zblock/wallets/"`
		}
	}{
		Version: conf.Version{
			Build: build,
			Desc:  "copyright information here",
		},
	}

	const prefix = "LEDGER"
	help, err := conf.Parse(prefix, &cfg)
	if err != nil {
		if errors.Is(err, conf.ErrHelpWanted) {
			fmt.Println(help)
			return nil
		}
		return fmt.Errorf("parsing config: %w", err)
	}

	db, err := bolt.Open(cfg.State.DBPath)
	if err != nil {
		return err
	}
	defer db.Close()

	wallets, err := wallet.LoadFolder(cfg.State.WalletsFolder)
	if err != nil {
		return err
	}

	gen, err := genesis.Load(cfg.State.GenesisPath)
	if err != nil {
		return err
	}

	env := commands.Env{
		DB:      db,
		Wallets: wallets,
		Genesis: gen,
		Out:     os.Stdout,
	}

	return processCommands(cfg.Args, env)
}

// processCommands handles the execution of the commands specified on
// the command line.
func processCommands(args conf.Args, env commands.Env) error {
	switch args.Num(0) {
	case "blocks":
		if err := commands.Blocks(env); err != nil {
			return fmt.Errorf("getting blocks: %w", err)
		}

	case "validate":
		if err := commands.Validate(env); err != nil {
			return fmt.Errorf("validating chain: %w", err)
		}

	case "bals":
		if err := commands.Balances(args.Num(1), env); err != nil {
			return fmt.Errorf("getting balances: %w", err)
		}

	case "trans":
		if err := commands.Transactions(args.Num(1), env); err != nil {
			return fmt.Errorf("getting transactions: %w", err)
		}

	default:
		fmt.Println("blocks: list the blocks in the chain")
		fmt.Println("validate: validate the whole chain")
		fmt.Println("bals [address]: show the derived balances")
		fmt.Println("trans [status]: list the transactions")
	}

	return nil
}
