package cache

import (
	"math/big"
	"sync"
	"testing"

	"chaintrack/internal/models"
)

func TestReplacePartiesIsIdempotent(t *testing.T) {
	c := New()
	parties := []models.Party{
		{Address: "0x00000000000000000000000000000000000000A1", Name: "Acme", Stage: models.StageSupplier},
		{Address: "0x00000000000000000000000000000000000000b2", Name: "Bolt", Stage: models.StageManufacturer},
	}

	c.ReplaceParties(parties)
	c.ReplaceParties(parties)

	got := c.Parties()
	if len(got) != 2 {
		t.Fatalf("Parties() returned %d entries, want 2", len(got))
	}
}

func TestPartyLookupIsCaseInsensitive(t *testing.T) {
	c := New()
	c.ReplaceParties([]models.Party{
		{Address: "0x00000000000000000000000000000000000000A1", Name: "Acme"},
	})

	p, ok := c.Party("0x00000000000000000000000000000000000000a1")
	if !ok {
		t.Fatal("Party() missed a lowercased address")
	}
	if p.Name != "Acme" {
		t.Errorf("Party() = %q, want %q", p.Name, "Acme")
	}
}

func TestReplaceRemovesStaleEntries(t *testing.T) {
	c := New()
	c.ReplaceProducts([]models.Product{{ID: 1, Name: "Widget"}, {ID: 2, Name: "Gadget"}})
	c.ReplaceProducts([]models.Product{{ID: 2, Name: "Gadget"}})

	if _, ok := c.Product(1); ok {
		t.Error("Product(1) survived a replace that dropped it")
	}
	if got := len(c.Products()); got != 1 {
		t.Errorf("Products() returned %d entries, want 1", got)
	}
}

func TestHistoryDrop(t *testing.T) {
	c := New()
	c.ReplaceHistory(7, []models.Transaction{{ID: 1, ProductID: 7, Price: big.NewInt(100)}})
	if got := len(c.History(7)); got != 1 {
		t.Fatalf("History(7) returned %d entries, want 1", got)
	}

	c.DropHistory(7)
	if got := len(c.History(7)); got != 0 {
		t.Errorf("History(7) returned %d entries after drop, want 0", got)
	}
}

func TestClearEmptiesEverything(t *testing.T) {
	c := New()
	c.ReplaceParties([]models.Party{{Address: "0x00000000000000000000000000000000000000a1"}})
	c.ReplaceProducts([]models.Product{{ID: 1}})
	c.ReplaceHistory(1, []models.Transaction{{ID: 1}})

	c.Clear()

	if len(c.Parties()) != 0 || len(c.Products()) != 0 || len(c.History(1)) != 0 {
		t.Error("Clear() left data behind")
	}
	if _, ok := c.Party("0x00000000000000000000000000000000000000a1"); ok {
		t.Error("Party index survived Clear()")
	}
}

func TestAccessorsReturnCopies(t *testing.T) {
	c := New()
	c.ReplaceParties([]models.Party{{Address: "0x00000000000000000000000000000000000000a1", Name: "Acme"}})

	got := c.Parties()
	got[0].Name = "Mutated"

	fresh := c.Parties()
	if fresh[0].Name != "Acme" {
		t.Error("mutating a returned slice leaked into the cache")
	}
}

func TestConcurrentReadersDuringReplace(t *testing.T) {
	c := New()
	snapshots := [][]models.Product{
		{{ID: 1}, {ID: 2}},
		{{ID: 1}, {ID: 2}, {ID: 3}},
	}
	c.ReplaceProducts(snapshots[0])

	var wg sync.WaitGroup
	stop := make(chan struct{})
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				// Readers must only ever see a whole generation.
				if n := len(c.Products()); n != 2 && n != 3 {
					t.Errorf("observed mixed snapshot with %d products", n)
					return
				}
			}
		}()
	}

	for i := 0; i < 200; i++ {
		c.ReplaceProducts(snapshots[i%2])
	}
	close(stop)
	wg.Wait()
}
