// Package cache holds the locally cached view of parties, products, and
// transaction histories, derived entirely from ledger reads. It is a
// possibly-stale read replica: the ledger stays the sole source of truth for
// writes, and every refresh replaces a whole collection so readers never see
// a snapshot mixing two poll generations.
package cache

import (
	"strings"
	"sync"

	"chaintrack/internal/models"
)

// Cache is the entity repository shared by the pollers and the presentation
// boundary. Collections are replaced atomically and read under a shared lock;
// accessors return copies.
type Cache struct {
	mu sync.RWMutex

	parties    []models.Party
	partyIndex map[string]int

	products     []models.Product
	productIndex map[uint64]int

	histories map[uint64][]models.Transaction
}

// New creates an empty cache.
func New() *Cache {
	return &Cache{
		partyIndex:   make(map[string]int),
		productIndex: make(map[uint64]int),
		histories:    make(map[uint64][]models.Transaction),
	}
}

// ReplaceParties swaps the party collection with a new snapshot.
func (c *Cache) ReplaceParties(parties []models.Party) {
	snapshot := make([]models.Party, len(parties))
	copy(snapshot, parties)
	index := make(map[string]int, len(snapshot))
	for i, p := range snapshot {
		// Account addresses compare case-insensitively.
		index[strings.ToLower(p.Address)] = i
	}

	c.mu.Lock()
	c.parties = snapshot
	c.partyIndex = index
	c.mu.Unlock()
}

// ReplaceProducts swaps the product collection with a new snapshot.
func (c *Cache) ReplaceProducts(products []models.Product) {
	snapshot := make([]models.Product, len(products))
	copy(snapshot, products)
	index := make(map[uint64]int, len(snapshot))
	for i, p := range snapshot {
		index[p.ID] = i
	}

	c.mu.Lock()
	c.products = snapshot
	c.productIndex = index
	c.mu.Unlock()
}

// ReplaceHistory swaps one product's transaction history with a new snapshot.
func (c *Cache) ReplaceHistory(productID uint64, txs []models.Transaction) {
	snapshot := make([]models.Transaction, len(txs))
	copy(snapshot, txs)

	c.mu.Lock()
	c.histories[productID] = snapshot
	c.mu.Unlock()
}

// DropHistory removes one product's cached history, used when nothing is
// watching it anymore.
func (c *Cache) DropHistory(productID uint64) {
	c.mu.Lock()
	delete(c.histories, productID)
	c.mu.Unlock()
}

// Clear empties every collection, used on identity disconnect.
func (c *Cache) Clear() {
	c.mu.Lock()
	c.parties = nil
	c.partyIndex = make(map[string]int)
	c.products = nil
	c.productIndex = make(map[uint64]int)
	c.histories = make(map[uint64][]models.Transaction)
	c.mu.Unlock()
}

// Parties returns a copy of the current party snapshot.
func (c *Cache) Parties() []models.Party {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]models.Party, len(c.parties))
	copy(out, c.parties)
	return out
}

// Party looks up a party by address.
func (c *Cache) Party(address string) (models.Party, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	i, ok := c.partyIndex[strings.ToLower(address)]
	if !ok {
		return models.Party{}, false
	}
	return c.parties[i], true
}

// Products returns a copy of the current product snapshot.
func (c *Cache) Products() []models.Product {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]models.Product, len(c.products))
	copy(out, c.products)
	return out
}

// Product looks up a product by id.
func (c *Cache) Product(id uint64) (models.Product, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	i, ok := c.productIndex[id]
	if !ok {
		return models.Product{}, false
	}
	return c.products[i], true
}

// History returns a copy of one product's cached transaction history,
// append-ordered by ledger timestamp.
func (c *Cache) History(productID uint64) []models.Transaction {
	c.mu.RLock()
	defer c.mu.RUnlock()
	txs := c.histories[productID]
	out := make([]models.Transaction, len(txs))
	copy(out, txs)
	return out
}
