package balance_test

import (
	"testing"

	"github.com/ardanlabs/ledger/foundation/blockchain/balance"
	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ardanlabs/ledger/foundation/blockchain/storage/memory"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func tx(from string, to string, amount string) database.BlockTx {
	a, err := database.ParseAmount(amount)
	if err != nil {
		panic(err)
	}

	return database.BlockTx{
		ID: from + to + amount,
		Tx: database.Tx{FromID: from, ToID: to, Amount: a, Fee: database.MinimumUnit},
	}
}

func TestBalanceOf(t *testing.T) {
	type table struct {
		name    string
		opening map[string]database.Amount
		blocks  [][]database.BlockTx
		final   map[string]string
	}

	tt := []table{
		{
			name:    "basic",
			opening: map[string]database.Amount{"A": database.NewAmount(100)},
			blocks: [][]database.BlockTx{
				{tx("A", "B", "50")},
			},
			final: map[string]string{"A": "49.99", "B": "50.00", "C": "0.00"},
		},
		{
			name:    "many blocks",
			opening: map[string]database.Amount{"A": database.NewAmount(100), "B": database.NewAmount(10)},
			blocks: [][]database.BlockTx{
				{tx("A", "B", "10"), tx("B", "C", "5.50")},
				{},
				{tx("C", "A", "1.25")},
			},
			final: map[string]string{"A": "91.24", "B": "14.49", "C": "4.24"},
		},
		{
			name:    "overdrawn",
			opening: map[string]database.Amount{},
			blocks: [][]database.BlockTx{
				{tx("A", "B", "1")},
			},
			final: map[string]string{"A": "-1.01", "B": "1.00"},
		},
		{
			name:    "cost above max",
			opening: map[string]database.Amount{"A": database.NewAmount(100)},
			blocks: [][]database.BlockTx{
				{{ID: "huge", Tx: database.Tx{FromID: "A", ToID: "B", Amount: database.MaxAmount, Fee: database.MinimumUnit}}},
			},
			final: map[string]string{"A": "100.00", "B": "0.00"},
		},
	}

	t.Log("Given the need to derive balances from confirmed history.")
	{
		for testID, tst := range tt {
			t.Logf("\tTest %d:\tWhen handling a set of accounts.", testID)
			{
				f := func(t *testing.T) {
					store := memory.New()
					for i, trans := range tst.blocks {
						blockData := database.BlockData{
							Header:           database.BlockHeader{Index: uint64(i)},
							TransactionCount: len(trans),
							Trans:            trans,
						}
						if err := store.Append(blockData); err != nil {
							t.Fatalf("\t%s\tTest %d:\tShould be able to append a block: %s", failed, testID, err)
						}
					}

					calc := balance.NewCalculator(store, tst.opening)

					for address, exp := range tst.final {
						got, err := calc.BalanceOf(address)
						if err != nil {
							t.Fatalf("\t%s\tTest %d:\tShould be able to get a balance: %s", failed, testID, err)
						}

						if got.String() != exp {
							t.Logf("\t%s\tTest %d:\tgot: %s", failed, testID, got)
							t.Logf("\t%s\tTest %d:\texp: %s", failed, testID, exp)
							t.Fatalf("\t%s\tTest %d:\tShould get back the right balance for %s.", failed, testID, address)
						}
						t.Logf("\t%s\tTest %d:\tShould get back the right balance for %s.", success, testID, address)
					}
				}

				t.Run(tst.name, f)
			}
		}
	}
}

func TestInvalidate(t *testing.T) {
	t.Log("Given the need to keep cached balances in step with the chain.")
	{
		t.Logf("\tTest 0:\tWhen a block is appended after a balance is read.")
		{
			store := memory.New()
			calc := balance.NewCalculator(store, map[string]database.Amount{"A": database.NewAmount(10)})

			got, _ := calc.BalanceOf("A")
			if got.String() != "10.00" {
				t.Fatalf("\t%s\tTest 0:\tShould start with the opening balance, got %s.", failed, got)
			}
			t.Logf("\t%s\tTest 0:\tShould start with the opening balance.", success)

			trans := []database.BlockTx{tx("A", "B", "2"), {ID: "corrupt", Tx: database.Tx{FromID: "A", ToID: "B"}}}
			store.Append(database.BlockData{TransactionCount: 2, Trans: trans})

			if got, _ := calc.BalanceOf("A"); got.String() != "10.00" {
				t.Fatalf("\t%s\tTest 0:\tShould serve the cached balance before invalidation, got %s.", failed, got)
			}
			t.Logf("\t%s\tTest 0:\tShould serve the cached balance before invalidation.", success)

			calc.Invalidate()

			if got, _ := calc.BalanceOf("A"); got.String() != "7.99" {
				t.Fatalf("\t%s\tTest 0:\tShould rebuild the balance after invalidation, got %s.", failed, got)
			}
			t.Logf("\t%s\tTest 0:\tShould rebuild the balance after invalidation and skip the corrupt transaction.", success)

			sheet, err := calc.Sheet()
			if err != nil || len(sheet) != 2 || sheet["B"].String() != "2.00" {
				t.Fatalf("\t%s\tTest 0:\tShould get back the full sheet: %v", failed, sheet)
			}
			t.Logf("\t%s\tTest 0:\tShould get back the full sheet.", success)
		}
	}
}
