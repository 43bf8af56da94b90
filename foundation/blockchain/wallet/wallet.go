// Package wallet maintains the set of wallets known to the ledger and the key
// material used to sign their transactions.
package wallet

import (
	"crypto/ecdsa"
	"encoding/hex"
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ardanlabs/ledger/foundation/blockchain/signature"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/google/uuid"
)

// KeyExtension is the file extension for wallet key files.
const KeyExtension = ".ecdsa"

// namespace is used to derive stable wallet ids from addresses.
var namespace = uuid.MustParse("6f1f2a56-0d42-4c9b-9d8a-7e3c1b0f5a21")

// Wallet represents an identity that can send and receive amounts.
type Wallet struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Address    string `json:"address"`
	PublicKey  string `json:"public_key"`
	PrivateKey string `json:"-"`
}

// Generate constructs a wallet with new key material.
func Generate(name string) (Wallet, *ecdsa.PrivateKey, error) {
	privateKey, err := crypto.GenerateKey()
	if err != nil {
		return Wallet{}, nil, fmt.Errorf("generating key: %w", err)
	}

	return FromECDSA(name, privateKey), privateKey, nil
}

// FromECDSA constructs the wallet for the specified key. The private key
// material is the hex encoding of the key. The public key is the hash of
// that material and the address is the hash of the public key.
func FromECDSA(name string, privateKey *ecdsa.PrivateKey) Wallet {
	private := hex.EncodeToString(crypto.FromECDSA(privateKey))
	public := signature.HashString(private)
	address := signature.HashString(public)

	return Wallet{
		ID:         uuid.NewSHA1(namespace, []byte(address)).String(),
		Name:       name,
		Address:    address,
		PublicKey:  public,
		PrivateKey: private,
	}
}

// Load reads the key file and constructs the wallet named after the file.
func Load(fileName string) (Wallet, error) {
	privateKey, err := crypto.LoadECDSA(fileName)
	if err != nil {
		return Wallet{}, fmt.Errorf("loading %s: %w", fileName, err)
	}

	name := strings.TrimSuffix(path.Base(fileName), KeyExtension)

	return FromECDSA(name, privateKey), nil
}

// Save writes the key to a file named after the wallet in the specified
// directory.
func Save(dir string, name string, privateKey *ecdsa.PrivateKey) (string, error) {
	fileName := filepath.Join(dir, name+KeyExtension)

	if err := crypto.SaveECDSA(fileName, privateKey); err != nil {
		return "", fmt.Errorf("saving %s: %w", fileName, err)
	}

	return fileName, nil
}

// =============================================================================

// Directory represents the behavior required to find wallets.
type Directory interface {
	FindByAddress(address string) (Wallet, error)
	FindByID(id string) (Wallet, error)
	PrivateKey(address string) (string, error)
	Copy() []Wallet
}

// Memory maintains a map of wallets by address.
type Memory struct {
	mu      sync.RWMutex
	wallets map[string]Wallet
}

// NewMemory constructs an empty wallet directory.
func NewMemory(wallets ...Wallet) *Memory {
	m := Memory{
		wallets: make(map[string]Wallet),
	}

	for _, w := range wallets {
		m.wallets[w.Address] = w
	}

	return &m
}

// LoadFolder constructs a wallet directory with the wallets from every key
// file found under the root folder.
func LoadFolder(root string) (*Memory, error) {
	m := NewMemory()

	fn := func(fileName string, info fs.FileInfo, err error) error {
		if err != nil {
			return fmt.Errorf("walkdir failure: %w", err)
		}

		if path.Ext(fileName) != KeyExtension {
			return nil
		}

		w, err := Load(fileName)
		if err != nil {
			return err
		}

		m.Add(w)

		return nil
	}

	if err := filepath.Walk(root, fn); err != nil {
		return nil, fmt.Errorf("walking directory: %w", err)
	}

	return m, nil
}

// Add adds or replaces the wallet.
func (m *Memory) Add(w Wallet) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.wallets[w.Address] = w
}

// FindByAddress returns the wallet for the specified address.
func (m *Memory) FindByAddress(address string) (Wallet, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	w, exists := m.wallets[address]
	if !exists {
		return Wallet{}, fmt.Errorf("wallet %s: %w", address, database.ErrNotFound)
	}

	return w, nil
}

// FindByID returns the wallet for the specified id.
func (m *Memory) FindByID(id string) (Wallet, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, w := range m.wallets {
		if w.ID == id {
			return w, nil
		}
	}

	return Wallet{}, fmt.Errorf("wallet id %s: %w", id, database.ErrNotFound)
}

// PrivateKey returns the key material for the specified address. It has
// the shape of a database.KeyLookup.
func (m *Memory) PrivateKey(address string) (string, error) {
	w, err := m.FindByAddress(address)
	if err != nil {
		return "", err
	}

	return w.PrivateKey, nil
}

// Lookup returns the name for the specified address or the address when
// the wallet isn't known.
func (m *Memory) Lookup(address string) string {
	w, err := m.FindByAddress(address)
	if err != nil {
		return address
	}
	return w.Name
}

// Copy returns the wallets sorted by name.
func (m *Memory) Copy() []Wallet {
	m.mu.RLock()
	defer m.mu.RUnlock()

	cpy := make([]Wallet, 0, len(m.wallets))
	for _, w := range m.wallets {
		cpy = append(cpy, w)
	}

	sort.Slice(cpy, func(i, j int) bool {
		return cpy[i].Name < cpy[j].Name
	})

	return cpy
}
