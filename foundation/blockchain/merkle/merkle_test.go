// Copyright 2017 Cameron Bergoon
// https://github.com/cbergoon/merkletree
// Licensed under the MIT License, see LICENCE file for details.

package merkle_test

import (
	"testing"

	"github.com/ardanlabs/ledger/foundation/blockchain/merkle"
	"github.com/ardanlabs/ledger/foundation/blockchain/signature"
)

// Data uses the sha256 hashing algorithm for the merkle tree.
type Data struct {
	x string
}

// Hash hashes the values using sha256.
func (d Data) Hash() string {
	return signature.HashString(d.x)
}

// Equals tests for equality of two piece of data.
func (d Data) Equals(other Data) bool {
	return d.x == other.x
}

// =============================================================================

func Test_Root(t *testing.T) {
	h1 := signature.HashString("tx1")
	h2 := signature.HashString("tx2")
	h3 := signature.HashString("tx3")

	pair := func(l, r string) string { return signature.HashString(l + r) }

	tt := []struct {
		testCaseId int
		hashes     []string
		expected   string
	}{
		{testCaseId: 1, hashes: nil, expected: ""},
		{testCaseId: 2, hashes: []string{h1}, expected: h1},
		{testCaseId: 3, hashes: []string{h1, h2}, expected: pair(h1, h2)},
		{testCaseId: 4, hashes: []string{h1, h2, h3}, expected: pair(pair(h1, h2), pair(h3, h3))},
		{testCaseId: 5, hashes: []string{h1, h2, h3, h1, h2}, expected: pair(pair(pair(h1, h2), pair(h3, h1)), pair(pair(h2, h2), pair(h2, h2)))},
	}

	for _, tst := range tt {
		if got := merkle.Root(tst.hashes); got != tst.expected {
			t.Errorf("[case:%d] error: expected hash equal to %s got %s", tst.testCaseId, tst.expected, got)
		}
	}
}

func Test_RootOrderSensitive(t *testing.T) {
	h1 := signature.HashString("tx1")
	h2 := signature.HashString("tx2")
	h3 := signature.HashString("tx3")

	a := merkle.Root([]string{h1, h2, h3})
	b := merkle.Root([]string{h2, h1, h3})
	if a == b {
		t.Fatalf("error: expected swapped leaves to produce a different root")
	}

	if a != merkle.Root([]string{h1, h2, h3}) {
		t.Fatalf("error: expected the same input to produce the same root")
	}
}

func Test_NewTree(t *testing.T) {
	for i := 0; i < len(table); i++ {
		tree, err := merkle.NewTree(table[i].data)
		if err != nil {
			t.Fatalf("[case:%d] error: unexpected error: %v", table[i].testCaseId, err)
		}
		if tree.RootHex() != expectedRoot(table[i].data) {
			t.Errorf("[case:%d] error: expected hash equal to %s got %s", table[i].testCaseId, expectedRoot(table[i].data), tree.RootHex())
		}
	}
}

func Test_EmptyTree(t *testing.T) {
	tree, err := merkle.NewTree([]Data{})
	if err != nil {
		t.Fatalf("error: unexpected error: %v", err)
	}
	if tree.MerkleRoot != "" {
		t.Fatalf("error: expected empty root got %s", tree.MerkleRoot)
	}
	if len(tree.Values()) != 0 {
		t.Fatalf("error: expected no values")
	}
	if err := tree.Verify(); err != nil {
		t.Fatalf("error: expected empty tree to verify: %v", err)
	}
}

func Test_RebuildTree(t *testing.T) {
	for i := 0; i < len(table); i++ {
		tree, err := merkle.NewTree(table[i].data)
		if err != nil {
			t.Fatalf("[case:%d] error: unexpected error: %v", table[i].testCaseId, err)
		}
		if err := tree.Rebuild(); err != nil {
			t.Fatalf("[case:%d] error: unexpected error:  %v", table[i].testCaseId, err)
		}
		if tree.RootHex() != expectedRoot(table[i].data) {
			t.Errorf("[case:%d] error: expected hash equal to %s got %s", table[i].testCaseId, expectedRoot(table[i].data), tree.RootHex())
		}
	}
}

func Test_VerifyTree(t *testing.T) {
	for i := 0; i < len(table); i++ {
		tree, err := merkle.NewTree(table[i].data)
		if err != nil {
			t.Fatalf("[case:%d] error: unexpected error: %v", table[i].testCaseId, err)
		}
		if err := tree.Verify(); err != nil {
			t.Errorf("[case:%d] error: expected tree to be valid: %v", table[i].testCaseId, err)
		}
		tree.MerkleRoot = "tampered"
		if err := tree.Verify(); err == nil {
			t.Errorf("[case:%d] error: expected tree to be invalid", table[i].testCaseId)
		}
	}
}

func Test_Values(t *testing.T) {
	for i := 0; i < len(table); i++ {
		tree, err := merkle.NewTree(table[i].data)
		if err != nil {
			t.Fatalf("[case:%d] error: unexpected error: %v", table[i].testCaseId, err)
		}
		values := tree.Values()
		if len(values) != len(table[i].data) {
			t.Fatalf("[case:%d] error: expected %d values got %d", table[i].testCaseId, len(table[i].data), len(values))
		}
		for j := range values {
			if !values[j].Equals(table[i].data[j]) {
				t.Errorf("[case:%d] error: expected value %v at %d got %v", table[i].testCaseId, table[i].data[j], j, values[j])
			}
		}
	}
}

func Test_Proof(t *testing.T) {
	for i := 0; i < len(table); i++ {
		tree, err := merkle.NewTree(table[i].data)
		if err != nil {
			t.Fatalf("[case:%d] error: unexpected error: %v", table[i].testCaseId, err)
		}
		for _, d := range table[i].data {
			proof, order, err := tree.Proof(d)
			if err != nil {
				t.Fatalf("[case:%d] error: unexpected error: %v", table[i].testCaseId, err)
			}
			if !merkle.VerifyProof(d.Hash(), proof, order, tree.MerkleRoot) {
				t.Errorf("[case:%d] error: expected proof for %s to verify", table[i].testCaseId, d.x)
			}
			if merkle.VerifyProof(table[i].notInContents.Hash(), proof, order, tree.MerkleRoot) {
				t.Errorf("[case:%d] error: expected proof to fail for other data", table[i].testCaseId)
			}
		}
		if _, _, err := tree.Proof(table[i].notInContents); err == nil {
			t.Errorf("[case:%d] error: expected no proof for data not in tree", table[i].testCaseId)
		}
	}
}

func Test_String(t *testing.T) {
	for i := 0; i < len(table); i++ {
		tree, err := merkle.NewTree(table[i].data)
		if err != nil {
			t.Fatalf("[case:%d] error: unexpected error: %v", table[i].testCaseId, err)
		}
		if tree.String() == "" {
			t.Errorf("[case:%d] error: expected not empty string", table[i].testCaseId)
		}
	}
}

// =============================================================================

func expectedRoot(data []Data) string {
	hashes := make([]string, len(data))
	for i, d := range data {
		hashes[i] = d.Hash()
	}
	return merkle.Root(hashes)
}

var table = []struct {
	testCaseId    int
	data          []Data
	notInContents Data
}{
	{
		testCaseId:    1,
		data:          []Data{{x: "Hello"}},
		notInContents: Data{x: "NotInTestTable"},
	},
	{
		testCaseId:    2,
		data:          []Data{{x: "Hello"}, {x: "Hi"}, {x: "Hey"}, {x: "Hola"}},
		notInContents: Data{x: "NotInTestTable"},
	},
	{
		testCaseId:    3,
		data:          []Data{{x: "Hello"}, {x: "Hi"}, {x: "Hey"}},
		notInContents: Data{x: "NotInTestTable"},
	},
	{
		testCaseId:    4,
		data:          []Data{{x: "Hello"}, {x: "Hi"}, {x: "Hey"}, {x: "Greetings"}, {x: "Hola"}},
		notInContents: Data{x: "NotInTestTable"},
	},
	{
		testCaseId:    5,
		data:          []Data{{x: "123"}, {x: "234"}, {x: "345"}, {x: "456"}, {x: "1123"}, {x: "2234"}, {x: "3345"}, {x: "4456"}, {x: "5567"}},
		notInContents: Data{x: "NotInTestTable"},
	},
}
