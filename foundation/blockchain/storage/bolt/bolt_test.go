package bolt_test

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ardanlabs/ledger/foundation/blockchain/storage/bolt"
	"github.com/stretchr/testify/require"
)

const privateKey = "fae85851bdf5c9f49923722ce38f3c1defcfd3619ef5453230a58ad805499959"

var start = time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)

func newBlock(index uint64) database.BlockData {
	return database.BlockData{
		ID:   fmt.Sprintf("block-%d", index),
		Hash: fmt.Sprintf("hash-%d", index),
		Header: database.BlockHeader{
			Index:     index,
			TimeStamp: uint64(start.Add(time.Duration(index) * time.Hour).UnixMilli()),
		},
		Trans: []database.BlockTx{},
	}
}

func newTx(t *testing.T, to string, amount uint64, ts uint64) database.BlockTx {
	tx := database.Tx{FromID: "alice", ToID: to, Amount: database.NewAmount(amount), Fee: 1, TimeStamp: ts}

	blockTx, err := tx.Sign(privateKey)
	require.NoError(t, err)

	return blockTx
}

func open(t *testing.T) (*bolt.Bolt, string) {
	path := filepath.Join(t.TempDir(), "ledger.db")

	db, err := bolt.Open(path)
	require.NoError(t, err)

	return db, path
}

func TestBlocks(t *testing.T) {
	db, path := open(t)

	_, err := db.Tip()
	require.ErrorIs(t, err, database.ErrNotFound)

	for i := uint64(0); i < 5; i++ {
		require.NoError(t, db.Append(newBlock(i)))
	}

	err = db.Append(newBlock(7))
	require.ErrorIs(t, err, database.ErrOutOfOrder)

	tip, err := db.Tip()
	require.NoError(t, err)
	require.Equal(t, uint64(4), tip.Header.Index)

	n, err := db.Count()
	require.NoError(t, err)
	require.Equal(t, 5, n)

	blockData, err := db.GetByID("block-2")
	require.NoError(t, err)
	require.Equal(t, uint64(2), blockData.Header.Index)

	_, err = db.GetByIndex(9)
	require.ErrorIs(t, err, database.ErrNotFound)

	// The blocks must survive closing and opening the file.
	require.NoError(t, db.Close())

	db, err = bolt.Open(path)
	require.NoError(t, err)
	defer db.Close()

	var indexes []uint64
	iter := db.ForEach()
	for blockData, err := iter.Next(); !iter.Done(); blockData, err = iter.Next() {
		require.NoError(t, err)
		indexes = append(indexes, blockData.Header.Index)
	}
	require.Equal(t, []uint64{0, 1, 2, 3, 4}, indexes)

	filter := database.BlockFilter{
		From:   start.Add(time.Hour),
		To:     start.Add(3 * time.Hour),
		Limit:  2,
		Offset: 1,
	}
	page, total, err := db.Range(filter)
	require.NoError(t, err)
	require.Equal(t, 3, total)
	require.Len(t, page, 2)
	require.Equal(t, uint64(2), page[0].Header.Index)
	require.Equal(t, uint64(3), page[1].Header.Index)
}

func TestTransactions(t *testing.T) {
	db, path := open(t)

	var ids []string
	for i := 0; i < 4; i++ {
		tx := newTx(t, fmt.Sprintf("bob%d", i%2), uint64(10*(i+1)), uint64(1000+i))
		require.NoError(t, db.Enqueue(tx))
		ids = append(ids, tx.ID)
	}

	dup, err := db.Get(ids[0])
	require.NoError(t, err)
	require.Error(t, db.Enqueue(dup))

	pending, err := db.DequeuePending(3)
	require.NoError(t, err)
	require.Len(t, pending, 3)
	for i, tx := range pending {
		require.Equal(t, ids[i], tx.ID)
		require.True(t, tx.VerifySignature(privateKey))
	}

	require.NoError(t, db.MarkConfirmed(ids[0], "block-0"))
	require.NoError(t, db.MarkFailed(ids[1]))
	require.ErrorIs(t, db.MarkConfirmed("missing", "block-0"), database.ErrNotFound)

	require.NoError(t, db.Close())

	db, err = bolt.Open(path)
	require.NoError(t, err)
	defer db.Close()

	pending, err = db.DequeuePending(0)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	require.Equal(t, ids[2], pending[0].ID)

	tx, err := db.Get(ids[0])
	require.NoError(t, err)
	require.Equal(t, database.StatusConfirmed, tx.Status)
	require.Equal(t, "block-0", tx.BlockID)

	counts := map[database.Status]int{
		"":                       4,
		database.StatusPending:   2,
		database.StatusConfirmed: 1,
		database.StatusFailed:    1,
	}
	for status, exp := range counts {
		n, err := db.CountTx(status)
		require.NoError(t, err)
		require.Equal(t, exp, n, "status %q", status)
	}

	trans, total, err := db.Query(database.TxFilter{Account: "bob1", Descending: true})
	require.NoError(t, err)
	require.Equal(t, 2, total)
	require.Equal(t, ids[3], trans[0].ID)
	require.Equal(t, ids[1], trans[1].ID)

	trans, total, err = db.Query(database.TxFilter{MinAmount: database.NewAmount(20), Limit: 1})
	require.NoError(t, err)
	require.Equal(t, 3, total)
	require.Len(t, trans, 1)
	require.Equal(t, ids[1], trans[0].ID)
}
