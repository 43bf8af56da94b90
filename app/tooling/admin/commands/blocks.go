package commands

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
)

// Blocks lists every block in the chain.
func Blocks(env Env) error {
	data := [][]string{{"Index", "ID", "Hash", "Previous", "Merkle Root", "Nonce", "Trans", "Mined"}}

	iter := env.DB.ForEach()
	for bd, err := iter.Next(); !iter.Done(); bd, err = iter.Next() {
		if err != nil {
			return err
		}

		data = append(data, []string{
			strconv.FormatUint(bd.Header.Index, 10),
			bd.ID,
			short(bd.Hash),
			short(bd.Header.PrevBlockHash),
			short(bd.Header.MerkleRoot),
			strconv.FormatUint(bd.Header.Nonce, 10),
			strconv.Itoa(bd.TransactionCount),
			time.UnixMilli(int64(bd.Header.TimeStamp)).UTC().Format(time.RFC3339),
		})
	}

	return table(env.Out, data)
}

// Validate walks the chain and reports the first integrity failure.
func Validate(env Env) error {
	err := database.ValidateChain(context.Background(), env.DB.ForEach(), env.Wallets.PrivateKey, nil)

	switch {
	case err == nil:
		fmt.Fprintln(env.Out, "chain is valid")
		return nil

	case database.IsIntegrityError(err):
		fmt.Fprintf(env.Out, "chain is invalid: %s\n", err)
		return nil
	}

	return err
}
