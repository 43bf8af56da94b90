// Package memory implements the ability to read and write blocks to memory
// using a slice.
package memory

import (
	"errors"
	"fmt"
	"sync"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
)

// Memory represents the serialization implementation for reading and storing
// blocks in memory using a slice. This implements the database.BlockStore
// interface.
type Memory struct {
	mu     sync.RWMutex
	blocks []database.BlockData
	ids    map[string]int
}

// New constructs an Memory value for use.
func New() *Memory {
	return &Memory{
		ids: make(map[string]int),
	}
}

// Close in this implementation has nothing to do since everything
// is in memory.
func (m *Memory) Close() error {
	return nil
}

// Append takes the specified block and stores it in memory. The block must
// be the next block in the chain.
func (m *Memory) Append(blockData database.BlockData) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if blockData.Header.Index != uint64(len(m.blocks)) {
		return fmt.Errorf("got index %d, exp %d: %w", blockData.Header.Index, len(m.blocks), database.ErrOutOfOrder)
	}

	m.ids[blockData.ID] = len(m.blocks)
	m.blocks = append(m.blocks, blockData)

	return nil
}

// Tip returns the last block in the chain.
func (m *Memory) Tip() (database.BlockData, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if len(m.blocks) == 0 {
		return database.BlockData{}, fmt.Errorf("tip: %w", database.ErrNotFound)
	}

	return m.blocks[len(m.blocks)-1], nil
}

// GetByID searches the blockchain to locate and return the contents of
// the specified block by id.
func (m *Memory) GetByID(id string) (database.BlockData, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	idx, exists := m.ids[id]
	if !exists {
		return database.BlockData{}, fmt.Errorf("block %s: %w", id, database.ErrNotFound)
	}

	return m.blocks[idx], nil
}

// GetByIndex searches the blockchain to locate and return the contents of
// the specified block by index.
func (m *Memory) GetByIndex(index uint64) (database.BlockData, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if index >= uint64(len(m.blocks)) {
		return database.BlockData{}, fmt.Errorf("block %d: %w", index, database.ErrNotFound)
	}

	return m.blocks[index], nil
}

// Count returns the number of blocks in the chain.
func (m *Memory) Count() (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.blocks), nil
}

// Range returns the page of blocks inside the filter's time range in index
// order and the number of matches before paging.
func (m *Memory) Range(filter database.BlockFilter) ([]database.BlockData, int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var matched []database.BlockData
	for _, blockData := range m.blocks {
		if filter.Match(blockData) {
			matched = append(matched, blockData)
		}
	}

	start, end := database.Page(len(matched), filter.Offset, filter.Limit)

	return matched[start:end], len(matched), nil
}

// ForEach returns an iterator to walk through all the blocks
// starting with block index 0.
func (m *Memory) ForEach() database.Iterator {
	return &memoryIterator{storage: m}
}

// Reset will clear out the blockchain in memory.
func (m *Memory) Reset() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.blocks = nil
	m.ids = make(map[string]int)
	return nil
}

// Replace overwrites the stored block at the same index. It exists to
// simulate tampering with stored history in tests and tooling.
func (m *Memory) Replace(blockData database.BlockData) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	idx := blockData.Header.Index
	if idx >= uint64(len(m.blocks)) {
		return fmt.Errorf("block %d: %w", idx, database.ErrNotFound)
	}

	delete(m.ids, m.blocks[idx].ID)
	m.ids[blockData.ID] = int(idx)
	m.blocks[idx] = blockData

	return nil
}

// =============================================================================

// memoryIterator represents the iteration implementation for walking
// through and reading blocks in memory. This implements the database
// Iterator interface.
type memoryIterator struct {
	storage *Memory // Access to the storage API.
	current uint64  // Current block index being iterated over.
	eoc     bool    // Represents the iterator is at the end of the chain.
}

// Next retrieves the next block from memory.
func (mi *memoryIterator) Next() (database.BlockData, error) {
	if mi.eoc {
		return database.BlockData{}, errors.New("end of chain")
	}

	blockData, err := mi.storage.GetByIndex(mi.current)
	if err != nil {
		mi.eoc = true
		return database.BlockData{}, nil
	}

	mi.current++

	return blockData, nil
}

// Done returns the end of chain value.
func (mi *memoryIterator) Done() bool {
	return mi.eoc
}
