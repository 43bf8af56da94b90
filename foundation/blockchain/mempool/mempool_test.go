package mempool_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ardanlabs/ledger/foundation/blockchain/mempool"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func sign(from string, to string, amount database.Amount, ts uint64) (database.BlockTx, error) {
	tx := database.Tx{
		FromID:    from,
		ToID:      to,
		Amount:    amount,
		Fee:       database.MinimumUnit,
		TimeStamp: ts,
	}

	return tx.Sign("fae85851bdf5c9f49923722ce38f3c1defcfd3619ef5453230a58ad805499959")
}

func TestCRUD(t *testing.T) {
	type table struct {
		name  string
		count int
		limit int
	}

	tt := []table{
		{name: "basic", count: 4, limit: 2},
		{name: "batch", count: 12, limit: 10},
	}

	t.Log("Given the need to validate mempool api.")
	{
		for testID, tst := range tt {
			t.Logf("\tTest %d:\tWhen handling a set of transaction.", testID)
			{
				f := func(t *testing.T) {
					mp := mempool.New()

					var ids []string
					for i := 0; i < tst.count; i++ {
						tx, err := sign("alice", fmt.Sprintf("bob%d", i), database.NewAmount(uint64(i+1)), uint64(1000+i))
						if err != nil {
							t.Fatalf("\t%s\tTest %d:\tShould be able to sign transaction: %s", failed, testID, err)
						}

						if err := mp.Enqueue(tx); err != nil {
							t.Fatalf("\t%s\tTest %d:\tShould be able to add new transaction: %s", failed, testID, err)
						}
						ids = append(ids, tx.ID)
					}
					t.Logf("\t%s\tTest %d:\tShould be able to add %d transactions.", success, testID, tst.count)

					pending, _ := mp.DequeuePending(tst.limit)
					if len(pending) != tst.limit {
						t.Fatalf("\t%s\tTest %d:\tShould get back %d pending transactions, got %d.", failed, testID, tst.limit, len(pending))
					}
					for i, tx := range pending {
						if tx.ID != ids[i] {
							t.Fatalf("\t%s\tTest %d:\tShould get back transactions in arrival order.", failed, testID)
						}
					}
					t.Logf("\t%s\tTest %d:\tShould get back transactions in arrival order.", success, testID)

					again, _ := mp.DequeuePending(tst.limit)
					if len(again) != tst.limit || again[0].ID != ids[0] {
						t.Fatalf("\t%s\tTest %d:\tShould not remove transactions when dequeuing.", failed, testID)
					}
					t.Logf("\t%s\tTest %d:\tShould not remove transactions when dequeuing.", success, testID)

					for _, tx := range pending {
						if err := mp.MarkConfirmed(tx.ID, "block-1"); err != nil {
							t.Fatalf("\t%s\tTest %d:\tShould be able to confirm a transaction: %s", failed, testID, err)
						}
					}

					next, _ := mp.DequeuePending(0)
					if len(next) != tst.count-tst.limit || next[0].ID != ids[tst.limit] {
						t.Fatalf("\t%s\tTest %d:\tShould skip confirmed transactions.", failed, testID)
					}
					t.Logf("\t%s\tTest %d:\tShould skip confirmed transactions.", success, testID)

					confirmed, _ := mp.Get(ids[0])
					if confirmed.Status != database.StatusConfirmed || confirmed.BlockID != "block-1" {
						t.Fatalf("\t%s\tTest %d:\tShould record the confirming block.", failed, testID)
					}
					t.Logf("\t%s\tTest %d:\tShould record the confirming block.", success, testID)

					n, _ := mp.CountTx(database.StatusConfirmed)
					if n != tst.limit {
						t.Fatalf("\t%s\tTest %d:\tShould count %d confirmed, got %d.", failed, testID, tst.limit, n)
					}
					t.Logf("\t%s\tTest %d:\tShould count the confirmed transactions.", success, testID)

					mp.Truncate()
					if n, _ := mp.CountTx(""); n != 0 {
						t.Fatalf("\t%s\tTest %d:\tShould be able to truncate mempool.", failed, testID)
					}
					t.Logf("\t%s\tTest %d:\tShould be able to truncate mempool.", success, testID)
				}

				t.Run(tst.name, f)
			}
		}
	}
}

func TestQuery(t *testing.T) {
	mp := mempool.New()

	amounts := []uint64{5, 50, 500, 20}
	for i, amount := range amounts {
		to := "bob"
		if i%2 == 1 {
			to = "carol"
		}

		tx, err := sign("alice", to, database.NewAmount(amount), uint64(1000+i))
		if err != nil {
			t.Fatalf("signing: %s", err)
		}
		if err := mp.Enqueue(tx); err != nil {
			t.Fatalf("enqueue: %s", err)
		}
		if i == 0 {
			if err := mp.Enqueue(tx); err == nil {
				t.Fatalf("Should reject a duplicate transaction id.")
			}
		}
	}

	tt := []struct {
		filter database.TxFilter
		total  int
		first  database.Amount
		length int
	}{
		{filter: database.TxFilter{}, total: 4, first: database.NewAmount(5), length: 4},
		{filter: database.TxFilter{Descending: true}, total: 4, first: database.NewAmount(20), length: 4},
		{filter: database.TxFilter{Account: "carol"}, total: 2, first: database.NewAmount(50), length: 2},
		{filter: database.TxFilter{MinAmount: database.NewAmount(20)}, total: 3, first: database.NewAmount(50), length: 3},
		{filter: database.TxFilter{MaxAmount: database.NewAmount(50), Offset: 1, Limit: 1}, total: 3, first: database.NewAmount(50), length: 1},
		{filter: database.TxFilter{Status: database.StatusConfirmed}, total: 0, length: 0},
	}

	for i, tst := range tt {
		trans, total, err := mp.Query(tst.filter)
		if err != nil {
			t.Fatalf("[case:%d] query: %s", i, err)
		}
		if total != tst.total || len(trans) != tst.length {
			t.Fatalf("[case:%d] got total %d len %d, exp total %d len %d", i, total, len(trans), tst.total, tst.length)
		}
		if tst.length > 0 && trans[0].Amount != tst.first {
			t.Fatalf("[case:%d] got first %s, exp %s", i, trans[0].Amount, tst.first)
		}
	}

	if _, err := mp.Get("missing"); !errors.Is(err, database.ErrNotFound) {
		t.Fatalf("Should get not found for a missing transaction: %v", err)
	}
	if err := mp.MarkFailed("missing"); !errors.Is(err, database.ErrNotFound) {
		t.Fatalf("Should get not found marking a missing transaction: %v", err)
	}
}
