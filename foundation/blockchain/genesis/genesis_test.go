package genesis_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ardanlabs/ledger/foundation/blockchain/genesis"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

const jsonGenesis = `{
	"date": "2024-01-01T00:00:00Z",
	"trans_per_block": 5,
	"difficulty": 2,
	"fee": "0.05",
	"balances": {
		"alice": "100.00",
		"bob": 25
	}
}`

const yamlGenesis = `
date: 2024-01-01T00:00:00Z
difficulty: 0
balances:
  alice: "100.50"
`

func writeFile(t *testing.T, name string, content string) string {
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("writing %s: %s", name, err)
	}
	return path
}

func TestLoad(t *testing.T) {
	type table struct {
		name          string
		file          string
		content       string
		transPerBlock uint16
		difficulty    uint16
		fee           database.Amount
		balances      map[string]database.Amount
	}

	tt := []table{
		{
			name:          "json",
			file:          "genesis.json",
			content:       jsonGenesis,
			transPerBlock: 5,
			difficulty:    2,
			fee:           5,
			balances:      map[string]database.Amount{"alice": 10000, "bob": 2500},
		},
		{
			name:          "yaml",
			file:          "genesis.yaml",
			content:       yamlGenesis,
			transPerBlock: genesis.DefaultTransPerBlock,
			difficulty:    0,
			fee:           genesis.DefaultFee,
			balances:      map[string]database.Amount{"alice": 10050},
		},
		{
			name:          "defaults",
			file:          "genesis.json",
			content:       `{}`,
			transPerBlock: genesis.DefaultTransPerBlock,
			difficulty:    database.DefaultDifficulty,
			fee:           genesis.DefaultFee,
			balances:      map[string]database.Amount{},
		},
	}

	t.Log("Given the need to load a genesis file.")
	{
		for testID, tst := range tt {
			t.Logf("\tTest %d:\tWhen handling a %s file.", testID, tst.name)
			{
				f := func(t *testing.T) {
					path := writeFile(t, tst.file, tst.content)

					gen, err := genesis.Load(path)
					if err != nil {
						t.Fatalf("\t%s\tTest %d:\tShould be able to load the file: %s", failed, testID, err)
					}
					t.Logf("\t%s\tTest %d:\tShould be able to load the file.", success, testID)

					if gen.TransPerBlock != tst.transPerBlock {
						t.Logf("\t%s\tTest %d:\tgot: %d", failed, testID, gen.TransPerBlock)
						t.Logf("\t%s\tTest %d:\texp: %d", failed, testID, tst.transPerBlock)
						t.Errorf("\t%s\tTest %d:\tShould get back the right trans per block.", failed, testID)
					} else {
						t.Logf("\t%s\tTest %d:\tShould get back the right trans per block.", success, testID)
					}

					if gen.Difficulty != tst.difficulty {
						t.Logf("\t%s\tTest %d:\tgot: %d", failed, testID, gen.Difficulty)
						t.Logf("\t%s\tTest %d:\texp: %d", failed, testID, tst.difficulty)
						t.Errorf("\t%s\tTest %d:\tShould get back the right difficulty.", failed, testID)
					} else {
						t.Logf("\t%s\tTest %d:\tShould get back the right difficulty.", success, testID)
					}

					if gen.Fee != tst.fee {
						t.Logf("\t%s\tTest %d:\tgot: %s", failed, testID, gen.Fee)
						t.Logf("\t%s\tTest %d:\texp: %s", failed, testID, tst.fee)
						t.Errorf("\t%s\tTest %d:\tShould get back the right fee.", failed, testID)
					} else {
						t.Logf("\t%s\tTest %d:\tShould get back the right fee.", success, testID)
					}

					if len(gen.Balances) != len(tst.balances) {
						t.Fatalf("\t%s\tTest %d:\tShould get back %d balances, got %d.", failed, testID, len(tst.balances), len(gen.Balances))
					}
					for address, exp := range tst.balances {
						if got := gen.Balances[address]; got != exp {
							t.Errorf("\t%s\tTest %d:\tShould get back %s for %s, got %s.", failed, testID, exp, address, got)
						}
					}
					t.Logf("\t%s\tTest %d:\tShould get back the right balances.", success, testID)
				}

				t.Run(tst.name, f)
			}
		}
	}
}

func TestLoadErrors(t *testing.T) {
	tt := []struct {
		name    string
		file    string
		content string
	}{
		{"bad json", "genesis.json", `{"fee":`},
		{"bad amount", "genesis.json", `{"balances":{"alice":"1.001"}}`},
		{"bad yaml amount", "genesis.yml", "balances:\n  alice: abc\n"},
		{"difficulty", "genesis.json", `{"difficulty":65}`},
	}

	t.Log("Given the need to reject a bad genesis file.")
	{
		for testID, tst := range tt {
			path := writeFile(t, tst.file, tst.content)

			if _, err := genesis.Load(path); err == nil {
				t.Errorf("\t%s\tTest %d:\tShould reject the %s file.", failed, testID, tst.name)
				continue
			}
			t.Logf("\t%s\tTest %d:\tShould reject the %s file.", success, testID, tst.name)
		}
	}
}
