package memory_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ardanlabs/ledger/foundation/blockchain/storage/memory"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func newBlock(index uint64) database.BlockData {
	return database.BlockData{
		ID:     fmt.Sprintf("block-%d", index),
		Header: database.BlockHeader{Index: index, TimeStamp: 1000 * (index + 1)},
		Trans:  []database.BlockTx{},
	}
}

func TestMemory(t *testing.T) {
	t.Log("Given the need to store blocks in memory.")
	{
		t.Logf("\tTest 0:\tWhen appending a chain of blocks.")
		{
			m := memory.New()

			for i := uint64(0); i < 3; i++ {
				if err := m.Append(newBlock(i)); err != nil {
					t.Fatalf("\t%s\tTest 0:\tShould be able to append block %d: %s", failed, i, err)
				}
			}
			t.Logf("\t%s\tTest 0:\tShould be able to append blocks in order.", success)

			if err := m.Append(newBlock(5)); !errors.Is(err, database.ErrOutOfOrder) {
				t.Fatalf("\t%s\tTest 0:\tShould reject a block with a gap: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould reject a block with a gap.", success)

			tip, err := m.Tip()
			if err != nil || tip.Header.Index != 2 {
				t.Fatalf("\t%s\tTest 0:\tShould get back the last block as the tip.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould get back the last block as the tip.", success)

			if blockData, err := m.GetByID("block-1"); err != nil || blockData.Header.Index != 1 {
				t.Fatalf("\t%s\tTest 0:\tShould find a block by id.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould find a block by id.", success)

			var n int
			iter := m.ForEach()
			for blockData, err := iter.Next(); !iter.Done(); blockData, err = iter.Next() {
				if err != nil || blockData.Header.Index != uint64(n) {
					t.Fatalf("\t%s\tTest 0:\tShould iterate in index order.", failed)
				}
				n++
			}
			if n != 3 {
				t.Fatalf("\t%s\tTest 0:\tShould iterate over 3 blocks, got %d.", failed, n)
			}
			t.Logf("\t%s\tTest 0:\tShould iterate over every block in index order.", success)

			tampered := newBlock(1)
			tampered.ID = "tampered"
			if err := m.Replace(tampered); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to replace a block: %s", failed, err)
			}
			if _, err := m.GetByID("block-1"); !errors.Is(err, database.ErrNotFound) {
				t.Fatalf("\t%s\tTest 0:\tShould drop the old id after a replace.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould be able to replace a block.", success)

			if err := m.Reset(); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to reset: %s", failed, err)
			}
			if _, err := m.Tip(); !errors.Is(err, database.ErrNotFound) {
				t.Fatalf("\t%s\tTest 0:\tShould have no tip after a reset.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould have no tip after a reset.", success)
		}
	}
}
