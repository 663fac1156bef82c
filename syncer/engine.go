// Package syncer keeps the local cache converging toward the ledger state.
// One poller per collection, each on its own cadence, all scoped to a single
// connected identity. A failed poll keeps the previous snapshot and retries
// on the next tick.
package syncer

import (
	"context"
	"log"
	"sync"
	"time"

	"chaintrack/config"
	"chaintrack/internal/models"
	ledger "chaintrack/ledger/client"
	"chaintrack/storage/cache"
)

// Engine runs the collection pollers. Pollers idle while no identity is
// connected; Connect performs an immediate refresh so callers see fresh data
// without waiting for the first tick.
type Engine struct {
	client ledger.Client
	cache  *cache.Cache
	logger *log.Logger

	partyInterval   time.Duration
	productInterval time.Duration
	historyInterval time.Duration

	mu       sync.Mutex
	identity string
	watches  map[uint64]int // productID -> watcher refcount
}

// New creates an Engine. Invalid interval strings fall back to the documented
// defaults with a warning, the service keeps running.
func New(cfg config.SyncConfig, client ledger.Client, c *cache.Cache, logger *log.Logger) *Engine {
	partyInterval, err := time.ParseDuration(cfg.PartyPollInterval)
	if err != nil {
		logger.Printf("Warning: Invalid party_poll_interval '%s', using default 1s", cfg.PartyPollInterval)
		partyInterval = 1 * time.Second
	}

	productInterval, err := time.ParseDuration(cfg.ProductPollInterval)
	if err != nil {
		logger.Printf("Warning: Invalid product_poll_interval '%s', using default 250ms", cfg.ProductPollInterval)
		productInterval = 250 * time.Millisecond
	}

	historyInterval, err := time.ParseDuration(cfg.HistoryPollInterval)
	if err != nil {
		logger.Printf("Warning: Invalid history_poll_interval '%s', using default 3s", cfg.HistoryPollInterval)
		historyInterval = 3 * time.Second
	}

	return &Engine{
		client:          client,
		cache:           c,
		logger:          logger,
		partyInterval:   partyInterval,
		productInterval: productInterval,
		historyInterval: historyInterval,
		watches:         make(map[uint64]int),
	}
}

// Run starts the pollers and blocks until ctx is cancelled.
func (e *Engine) Run(ctx context.Context) {
	e.logger.Printf("Starting sync engine (parties: %s, products: %s, histories: %s)",
		e.partyInterval, e.productInterval, e.historyInterval)

	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		e.pollLoop(ctx, e.partyInterval, e.refreshParties)
	}()
	go func() {
		defer wg.Done()
		e.pollLoop(ctx, e.productInterval, e.refreshProducts)
	}()
	go func() {
		defer wg.Done()
		e.pollLoop(ctx, e.historyInterval, e.refreshWatchedHistories)
	}()
	wg.Wait()
	e.logger.Println("Sync engine stopped.")
}

func (e *Engine) pollLoop(ctx context.Context, interval time.Duration, refresh func(ctx context.Context)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	refresh(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			refresh(ctx)
		}
	}
}

// Connect scopes the engine to the given identity and refreshes the party and
// product collections immediately. Connecting replaces any prior identity.
func (e *Engine) Connect(ctx context.Context, identity string) {
	e.mu.Lock()
	prev := e.identity
	e.identity = identity
	e.mu.Unlock()

	if prev != "" && prev != identity {
		e.cache.Clear()
	}
	e.logger.Printf("Sync engine connected as %s", identity)

	e.refreshParties(ctx)
	e.refreshProducts(ctx)
}

// Disconnect clears the identity, the watch set, and the cache. The pollers
// idle until the next Connect.
func (e *Engine) Disconnect() {
	e.mu.Lock()
	e.identity = ""
	e.watches = make(map[uint64]int)
	e.mu.Unlock()

	e.cache.Clear()
	e.logger.Println("Sync engine disconnected, cache cleared")
}

// Identity returns the currently connected identity, empty when disconnected.
func (e *Engine) Identity() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.identity
}

// WatchHistory registers interest in a product's transaction history and
// refreshes it immediately on the first watcher. Watches are refcounted so
// overlapping consumers of the same product share one poll.
func (e *Engine) WatchHistory(ctx context.Context, productID uint64) {
	e.mu.Lock()
	e.watches[productID]++
	first := e.watches[productID] == 1
	e.mu.Unlock()

	if first {
		e.RefreshHistory(ctx, productID)
	}
}

// UnwatchHistory drops one watcher. When the last watcher leaves, the cached
// history is released.
func (e *Engine) UnwatchHistory(productID uint64) {
	e.mu.Lock()
	n, ok := e.watches[productID]
	if ok {
		n--
		if n <= 0 {
			delete(e.watches, productID)
		} else {
			e.watches[productID] = n
		}
	}
	last := ok && n <= 0
	e.mu.Unlock()

	if last {
		e.cache.DropHistory(productID)
	}
}

// History returns a product's transaction history, read on demand. The
// snapshot is only retained in the cache while the product is watched, so
// one-off lookups do not accumulate.
func (e *Engine) History(ctx context.Context, productID uint64) []models.Transaction {
	txs, err := e.client.GetTransactionHistory(ctx, productID)
	if err != nil {
		e.logger.Printf("History read failed for product %d, serving cached snapshot: %v", productID, err)
		return e.cache.History(productID)
	}
	e.mu.Lock()
	watched := e.watches[productID] > 0
	e.mu.Unlock()
	if watched {
		e.cache.ReplaceHistory(productID, txs)
	}
	return txs
}

// RefreshHistory reloads one product's transaction history on demand,
// regardless of the watch set.
func (e *Engine) RefreshHistory(ctx context.Context, productID uint64) {
	txs, err := e.client.GetTransactionHistory(ctx, productID)
	if err != nil {
		e.logger.Printf("History refresh failed for product %d, keeping cached snapshot: %v", productID, err)
		return
	}
	e.cache.ReplaceHistory(productID, txs)
}

func (e *Engine) refreshParties(ctx context.Context) {
	if e.Identity() == "" {
		return
	}
	parties, err := e.client.GetAllParties(ctx)
	if err != nil {
		e.logger.Printf("Party refresh failed, keeping cached snapshot: %v", err)
		return
	}
	e.cache.ReplaceParties(parties)
}

func (e *Engine) refreshProducts(ctx context.Context) {
	identity := e.Identity()
	if identity == "" {
		return
	}
	products, err := e.client.GetAllProducts(ctx, identity)
	if err != nil {
		e.logger.Printf("Product refresh failed, keeping cached snapshot: %v", err)
		return
	}
	e.cache.ReplaceProducts(products)
}

func (e *Engine) refreshWatchedHistories(ctx context.Context) {
	if e.Identity() == "" {
		return
	}
	e.mu.Lock()
	ids := make([]uint64, 0, len(e.watches))
	for id := range e.watches {
		ids = append(ids, id)
	}
	e.mu.Unlock()

	for _, id := range ids {
		e.RefreshHistory(ctx, id)
	}
}
