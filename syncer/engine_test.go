package syncer

import (
	"context"
	"errors"
	"io"
	"log"
	"math/big"
	"sync/atomic"
	"testing"
	"time"

	"chaintrack/config"
	"chaintrack/internal/models"
	ledger "chaintrack/ledger/client"
	"chaintrack/storage/cache"
)

const (
	supplierAddr     = "0x00000000000000000000000000000000000000a1"
	manufacturerAddr = "0x00000000000000000000000000000000000000b2"
)

func newTestEngine(t *testing.T) (*Engine, *ledger.MockClient, *cache.Cache) {
	t.Helper()
	logger := log.New(io.Discard, "", 0)
	client := ledger.NewMockClient(logger)
	client.SeedParty(models.Party{Address: supplierAddr, Name: "Supplies Inc", Stage: models.StageSupplier})
	client.SeedParty(models.Party{Address: manufacturerAddr, Name: "Makers Ltd", Stage: models.StageManufacturer})
	client.SeedProduct(models.Product{
		ID:            1,
		Name:          "Widget",
		CurrentStage:  models.StageSupplier,
		CurrentHolder: supplierAddr,
	})

	c := cache.New()
	cfg := config.SyncConfig{PartyPollInterval: "1s", ProductPollInterval: "250ms", HistoryPollInterval: "3s"}
	return New(cfg, client, c, logger), client, c
}

func TestPollersIdleWithoutIdentity(t *testing.T) {
	e, _, c := newTestEngine(t)
	ctx := context.Background()

	e.refreshParties(ctx)
	e.refreshProducts(ctx)

	if len(c.Parties()) != 0 || len(c.Products()) != 0 {
		t.Error("pollers refreshed the cache while disconnected")
	}
}

func TestConnectRefreshesImmediately(t *testing.T) {
	e, _, c := newTestEngine(t)
	e.Connect(context.Background(), supplierAddr)

	if len(c.Parties()) != 2 {
		t.Errorf("cache holds %d parties after Connect, want 2", len(c.Parties()))
	}
	products := c.Products()
	if len(products) != 1 || products[0].ID != 1 {
		t.Errorf("cache holds unexpected products after Connect: %+v", products)
	}
	if e.Identity() != supplierAddr {
		t.Errorf("Identity() = %s, want %s", e.Identity(), supplierAddr)
	}
}

func TestProductsScopedToIdentity(t *testing.T) {
	e, _, c := newTestEngine(t)
	e.Connect(context.Background(), manufacturerAddr)

	// The only seeded product is held by the supplier.
	if got := len(c.Products()); got != 0 {
		t.Errorf("cache holds %d products for a non-holder identity, want 0", got)
	}
}

func TestFailedRefreshKeepsStaleSnapshot(t *testing.T) {
	e, client, c := newTestEngine(t)
	ctx := context.Background()
	e.Connect(ctx, supplierAddr)

	client.ReadErr = errors.New("connection refused")
	e.refreshParties(ctx)
	e.refreshProducts(ctx)

	if len(c.Parties()) != 2 || len(c.Products()) != 1 {
		t.Error("a failed refresh dropped the previous snapshot")
	}

	// Recovery on a later tick replaces the snapshot again.
	client.ReadErr = nil
	client.SeedParty(models.Party{
		Address: "0x00000000000000000000000000000000000000c3",
		Stage:   models.StageDistributor,
	})
	e.refreshParties(ctx)
	if len(c.Parties()) != 3 {
		t.Errorf("cache holds %d parties after recovery, want 3", len(c.Parties()))
	}
}

func TestWatchHistoryRefcounts(t *testing.T) {
	e, client, c := newTestEngine(t)
	ctx := context.Background()
	e.Connect(ctx, supplierAddr)

	if _, err := client.CreateTransaction(ctx, supplierAddr, manufacturerAddr, 1, big.NewInt(1), ""); err != nil {
		t.Fatalf("seeding a transaction failed: %v", err)
	}

	e.WatchHistory(ctx, 1)
	e.WatchHistory(ctx, 1)
	if len(c.History(1)) != 1 {
		t.Fatal("first watcher did not trigger a refresh")
	}

	e.UnwatchHistory(1)
	if len(c.History(1)) != 1 {
		t.Error("history dropped while a watcher remained")
	}

	e.UnwatchHistory(1)
	if len(c.History(1)) != 0 {
		t.Error("history survived the last unwatch")
	}

	// Unwatching an unwatched product must not drop anything.
	c.ReplaceHistory(2, []models.Transaction{{ID: 9, ProductID: 2}})
	e.UnwatchHistory(2)
	if len(c.History(2)) != 1 {
		t.Error("unbalanced unwatch dropped an unrelated history")
	}
}

func TestHistoryReadThrough(t *testing.T) {
	e, client, c := newTestEngine(t)
	ctx := context.Background()
	e.Connect(ctx, supplierAddr)

	if _, err := client.CreateTransaction(ctx, supplierAddr, manufacturerAddr, 1, big.NewInt(1), ""); err != nil {
		t.Fatalf("seeding a transaction failed: %v", err)
	}

	// One-off lookups are served without retaining a cache entry.
	txs := e.History(ctx, 1)
	if len(txs) != 1 {
		t.Fatalf("History returned %d transactions, want 1", len(txs))
	}
	if len(c.History(1)) != 0 {
		t.Error("an unwatched lookup left a cache entry behind")
	}

	// Watched products keep the freshly read snapshot.
	e.WatchHistory(ctx, 1)
	if txs := e.History(ctx, 1); len(txs) != 1 {
		t.Fatalf("History returned %d transactions while watched, want 1", len(txs))
	}
	if len(c.History(1)) != 1 {
		t.Error("a watched lookup did not retain the snapshot")
	}

	// A failed read serves the cached snapshot instead.
	client.ReadErr = errors.New("connection refused")
	if txs := e.History(ctx, 1); len(txs) != 1 {
		t.Errorf("History returned %d transactions on read failure, want the cached 1", len(txs))
	}
}

func TestRunPollersAreIndependent(t *testing.T) {
	logger := log.New(io.Discard, "", 0)
	client := &stallingPartyClient{MockClient: ledger.NewMockClient(logger)}
	client.SeedParty(models.Party{Address: supplierAddr, Stage: models.StageSupplier})
	client.SeedProduct(models.Product{ID: 1, CurrentStage: models.StageSupplier, CurrentHolder: supplierAddr})

	c := cache.New()
	cfg := config.SyncConfig{PartyPollInterval: "2ms", ProductPollInterval: "2ms", HistoryPollInterval: "2ms"}
	e := New(cfg, client, c, logger)
	e.Connect(context.Background(), supplierAddr)

	// From here on every party read blocks until shutdown.
	client.stall.Store(true)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		e.Run(ctx)
		close(done)
	}()

	// The product poller must keep refreshing while the party poller hangs.
	client.SeedProduct(models.Product{ID: 2, CurrentStage: models.StageSupplier, CurrentHolder: supplierAddr})
	deadline := time.Now().Add(2 * time.Second)
	for len(c.Products()) != 2 {
		if time.Now().After(deadline) {
			t.Fatal("product poller starved while the party poller was stalled")
		}
		time.Sleep(5 * time.Millisecond)
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop after cancellation")
	}
}

// stallingPartyClient blocks party reads until the context ends once stall is
// set, leaving every other collection readable.
type stallingPartyClient struct {
	*ledger.MockClient
	stall atomic.Bool
}

func (s *stallingPartyClient) GetAllParties(ctx context.Context) ([]models.Party, error) {
	if s.stall.Load() {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return s.MockClient.GetAllParties(ctx)
}

func TestDisconnectClearsState(t *testing.T) {
	e, _, c := newTestEngine(t)
	ctx := context.Background()
	e.Connect(ctx, supplierAddr)
	e.WatchHistory(ctx, 1)

	e.Disconnect()

	if e.Identity() != "" {
		t.Error("identity survived Disconnect")
	}
	if len(c.Parties()) != 0 || len(c.Products()) != 0 {
		t.Error("cache survived Disconnect")
	}

	// Watched histories are gone too: a poll tick refreshes nothing.
	e.refreshWatchedHistories(ctx)
	if len(c.History(1)) != 0 {
		t.Error("watch set survived Disconnect")
	}
}
