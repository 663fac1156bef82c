package ledger

import (
	"context"
	"errors"
	"io"
	"log"
	"math/big"
	"testing"

	"chaintrack/internal/models"
	"chaintrack/ledger/types"
)

const (
	supplierAddr     = "0x00000000000000000000000000000000000000a1"
	manufacturerAddr = "0x00000000000000000000000000000000000000b2"
	distributorAddr  = "0x00000000000000000000000000000000000000c3"
	managerAddr      = "0x00000000000000000000000000000000000000d4"
)

func newSeededLedger() *MockClient {
	m := NewMockClient(log.New(io.Discard, "", 0))
	m.SeedParty(models.Party{Address: supplierAddr, Name: "Supplies Inc", Stage: models.StageSupplier})
	m.SeedParty(models.Party{Address: manufacturerAddr, Name: "Makers Ltd", Stage: models.StageManufacturer})
	m.SeedParty(models.Party{Address: distributorAddr, Name: "Movers Co", Stage: models.StageDistributor})
	m.SeedParty(models.Party{Address: managerAddr, Name: "HQ", Stage: models.StageChainManager})
	return m
}

func TestCreateTransactionAuthorized(t *testing.T) {
	m := newSeededLedger()
	ctx := context.Background()
	id := m.SeedProduct(models.Product{
		Name:          "Widget",
		Quantity:      10,
		CurrentStage:  models.StageSupplier,
		CurrentHolder: supplierAddr,
		Creator:       supplierAddr,
	})

	result, err := m.CreateTransaction(ctx, supplierAddr, manufacturerAddr, id, big.NewInt(1e18), "po-1")
	if err != nil {
		t.Fatalf("CreateTransaction failed: %v", err)
	}
	if result.Status != types.StatusAuthorized {
		t.Fatalf("Status = %d, want authorized", result.Status)
	}
	if result.TransactionID == 0 || result.Receipt.TxHash == "" {
		t.Errorf("authorized result missing evidence: %+v", result)
	}

	product, _ := m.Product(id)
	if product.CurrentStage != models.StageManufacturer {
		t.Errorf("product stage = %v, want Manufacturer", product.CurrentStage)
	}
	if product.CurrentHolder != manufacturerAddr {
		t.Errorf("product holder = %s, want %s", product.CurrentHolder, manufacturerAddr)
	}

	history, err := m.GetTransactionHistory(ctx, id)
	if err != nil {
		t.Fatalf("GetTransactionHistory failed: %v", err)
	}
	if len(history) != 1 || history[0].Memo != "po-1" {
		t.Errorf("unexpected history: %+v", history)
	}

	events, err := m.GetProductHistory(ctx, id)
	if err != nil {
		t.Fatalf("GetProductHistory failed: %v", err)
	}
	if len(events) != 1 || events[0].Type != "transfer" {
		t.Errorf("unexpected tracking events: %+v", events)
	}
}

func TestCreateTransactionRejectedLeavesNoTrace(t *testing.T) {
	m := newSeededLedger()
	ctx := context.Background()
	id := m.SeedProduct(models.Product{
		Name:          "Widget",
		CurrentStage:  models.StageSupplier,
		CurrentHolder: supplierAddr,
	})

	// Skipping the manufacturer stage.
	result, err := m.CreateTransaction(ctx, supplierAddr, distributorAddr, id, big.NewInt(1e18), "")
	if err != nil {
		t.Fatalf("CreateTransaction failed: %v", err)
	}
	if result.Status != types.StatusRejected {
		t.Fatalf("Status = %d, want rejected", result.Status)
	}

	product, _ := m.Product(id)
	if product.CurrentHolder != supplierAddr || product.CurrentStage != models.StageSupplier {
		t.Errorf("rejected candidate mutated the product: %+v", product)
	}
	history, _ := m.GetTransactionHistory(ctx, id)
	if len(history) != 0 {
		t.Errorf("rejected candidate left %d history entries", len(history))
	}
}

func TestCreateTransactionChainManagerBypass(t *testing.T) {
	m := newSeededLedger()
	ctx := context.Background()
	id := m.SeedProduct(models.Product{
		Name:          "Widget",
		CurrentStage:  models.StageSupplier,
		CurrentHolder: supplierAddr,
	})

	result, err := m.CreateTransaction(ctx, supplierAddr, managerAddr, id, big.NewInt(1), "recall")
	if err != nil {
		t.Fatalf("CreateTransaction failed: %v", err)
	}
	if result.Status != types.StatusAuthorized {
		t.Fatalf("transfer to the chain manager was rejected")
	}

	// Custody moves but the pipeline position is preserved.
	product, _ := m.Product(id)
	if product.CurrentHolder != managerAddr {
		t.Errorf("product holder = %s, want %s", product.CurrentHolder, managerAddr)
	}
	if product.CurrentStage != models.StageSupplier {
		t.Errorf("product stage = %v, want Supplier", product.CurrentStage)
	}
}

func TestCreateTransactionUnknownEntitiesRejected(t *testing.T) {
	m := newSeededLedger()
	ctx := context.Background()

	result, err := m.CreateTransaction(ctx, supplierAddr, manufacturerAddr, 999, big.NewInt(1), "")
	if err != nil {
		t.Fatalf("CreateTransaction failed: %v", err)
	}
	if result.Status != types.StatusRejected {
		t.Errorf("unknown product was authorized")
	}
}

func TestPartyRegistration(t *testing.T) {
	m := NewMockClient(log.New(io.Discard, "", 0))
	ctx := context.Background()

	isNew, err := m.IsNewParty(ctx, supplierAddr)
	if err != nil || !isNew {
		t.Fatalf("IsNewParty = (%v, %v), want (true, nil)", isNew, err)
	}

	if _, err := m.CreateParty(ctx, "Supplies Inc", "Rotterdam", models.StageSupplier, supplierAddr); err != nil {
		t.Fatalf("CreateParty failed: %v", err)
	}

	// Re-registration under a differently cased address must collide.
	upper := "0x00000000000000000000000000000000000000A1"
	if isNew, _ := m.IsNewParty(ctx, upper); isNew {
		t.Error("IsNewParty missed an existing registration with different casing")
	}
	if _, err := m.CreateParty(ctx, "Copycat", "Nowhere", models.StageSupplier, upper); err == nil {
		t.Error("CreateParty accepted a duplicate address")
	}
}

func TestInjectedErrorsAreGatewayErrors(t *testing.T) {
	m := newSeededLedger()
	ctx := context.Background()
	m.ReadErr = errors.New("connection refused")
	m.CallErr = errors.New("connection refused")

	if _, err := m.GetAllParties(ctx); !isGatewayError(err) {
		t.Errorf("GetAllParties error = %v, want GatewayError", err)
	}
	if _, err := m.CreateTransaction(ctx, supplierAddr, manufacturerAddr, 1, big.NewInt(1), ""); !isGatewayError(err) {
		t.Errorf("CreateTransaction error = %v, want GatewayError", err)
	}
}

func isGatewayError(err error) bool {
	var gw *types.GatewayError
	return errors.As(err, &gw)
}
