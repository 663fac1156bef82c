package ledger

import (
	"context"
	"fmt"
	"log"
	"math/big"
	"strings"
	"sync"
	"time"

	"chaintrack/internal/models"
	"chaintrack/ledger/types"
)

// MockClient simulates the authoritative ledger in process. It re-runs the
// contract's stage-ordering check on createTransaction exactly like the real
// contract would, which makes it the test double for every path where the
// local cache and the ledger disagree.
type MockClient struct {
	logger *log.Logger

	mu          sync.Mutex
	parties     map[string]models.Party
	products    map[uint64]models.Product
	history     map[uint64][]models.Transaction
	nextProduct uint64
	nextTx      uint64
	blockHeight uint64

	// ReadErr and CallErr, when set, are returned (wrapped as gateway
	// errors) by every read or write respectively.
	ReadErr error
	CallErr error

	// Now is the clock used for ledger-assigned timestamps.
	Now func() time.Time
}

// NewMockClient creates an empty in-process ledger.
func NewMockClient(logger *log.Logger) *MockClient {
	return &MockClient{
		logger:      logger,
		parties:     make(map[string]models.Party),
		products:    make(map[uint64]models.Product),
		history:     make(map[uint64][]models.Transaction),
		nextProduct: 1,
		nextTx:      1,
		Now:         time.Now,
	}
}

func addrKey(address string) string { return strings.ToLower(address) }

func (m *MockClient) nextReceipt() types.Receipt {
	m.blockHeight++
	return types.Receipt{
		TxHash:      fmt.Sprintf("0x%064x", m.blockHeight),
		BlockNumber: m.blockHeight,
	}
}

// SeedParty installs a party without going through createParty.
func (m *MockClient) SeedParty(p models.Party) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.parties[addrKey(p.Address)] = p
}

// SeedProduct installs a product and returns its assigned id.
func (m *MockClient) SeedProduct(p models.Product) uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p.ID == 0 {
		p.ID = m.nextProduct
	}
	if p.ID >= m.nextProduct {
		m.nextProduct = p.ID + 1
	}
	m.products[p.ID] = p
	return p.ID
}

// Product returns the current ledger-side view of a product.
func (m *MockClient) Product(id uint64) (models.Product, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	return p, ok
}

func (m *MockClient) GetAllParties(ctx context.Context) ([]models.Party, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ReadErr != nil {
		return nil, types.NewGatewayError("getAllParties", m.ReadErr)
	}
	parties := make([]models.Party, 0, len(m.parties))
	for _, p := range m.parties {
		parties = append(parties, p)
	}
	return parties, nil
}

func (m *MockClient) GetParty(ctx context.Context, address string) (models.Party, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ReadErr != nil {
		return models.Party{}, types.NewGatewayError("getParty", m.ReadErr)
	}
	p, ok := m.parties[addrKey(address)]
	if !ok {
		return models.Party{}, types.NewGatewayError("getParty", fmt.Errorf("no party registered at %s", address))
	}
	return p, nil
}

func (m *MockClient) GetAllProducts(ctx context.Context, address string) ([]models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ReadErr != nil {
		return nil, types.NewGatewayError("getAllProducts", m.ReadErr)
	}
	products := make([]models.Product, 0)
	for _, p := range m.products {
		if addrKey(p.CurrentHolder) == addrKey(address) {
			products = append(products, p)
		}
	}
	return products, nil
}

func (m *MockClient) GetProduct(ctx context.Context, productID uint64) (models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ReadErr != nil {
		return models.Product{}, types.NewGatewayError("getProduct", m.ReadErr)
	}
	p, ok := m.products[productID]
	if !ok {
		return models.Product{}, types.NewGatewayError("getProduct", fmt.Errorf("no product with id %d", productID))
	}
	return p, nil
}

func (m *MockClient) GetProductHistory(ctx context.Context, productID uint64) ([]models.HistoryEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ReadErr != nil {
		return nil, types.NewGatewayError("getProductHistory", m.ReadErr)
	}
	events := make([]models.HistoryEvent, 0)
	for _, tx := range m.history[productID] {
		events = append(events, models.HistoryEvent{
			Type:        "transfer",
			Description: fmt.Sprintf("custody moved from %s to %s", tx.Sender, tx.Receiver),
			Status:      "completed",
			Timestamp:   tx.Timestamp,
		})
	}
	return events, nil
}

func (m *MockClient) GetTransactionHistory(ctx context.Context, productID uint64) ([]models.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ReadErr != nil {
		return nil, types.NewGatewayError("getTransactionHistory", m.ReadErr)
	}
	txs := make([]models.Transaction, len(m.history[productID]))
	copy(txs, m.history[productID])
	return txs, nil
}

func (m *MockClient) IsNewParty(ctx context.Context, address string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ReadErr != nil {
		return false, types.NewGatewayError("isNewParty", m.ReadErr)
	}
	_, ok := m.parties[addrKey(address)]
	return !ok, nil
}

func (m *MockClient) CreateParty(ctx context.Context, name, location string, stage models.Stage, address string) (types.Receipt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CallErr != nil {
		return types.Receipt{}, types.NewGatewayError("createParty", m.CallErr)
	}
	if _, ok := m.parties[addrKey(address)]; ok {
		return types.Receipt{}, types.NewGatewayError("createParty", fmt.Errorf("party already registered at %s", address))
	}
	m.parties[addrKey(address)] = models.Party{
		Address:  address,
		Name:     name,
		Location: location,
		Stage:    stage,
	}
	return m.nextReceipt(), nil
}

func (m *MockClient) CreateProduct(ctx context.Context, creator, name string, quantity uint64) (types.Receipt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CallErr != nil {
		return types.Receipt{}, types.NewGatewayError("createProduct", m.CallErr)
	}
	id := m.nextProduct
	m.nextProduct++
	m.products[id] = models.Product{
		ID:            id,
		Name:          name,
		Quantity:      quantity,
		CurrentStage:  models.StageRawMaterials,
		CurrentHolder: creator,
		Creator:       creator,
	}
	return m.nextReceipt(), nil
}

// CreateTransaction runs the authoritative stage-ordering check. A violation
// answers with StatusRejected and records nothing; an authorized candidate
// advances the product, moves custody, and appends to the history.
func (m *MockClient) CreateTransaction(ctx context.Context, sender, receiver string, productID uint64, priceWei *big.Int, memo string) (types.CreateTransactionResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CallErr != nil {
		return types.CreateTransactionResult{}, types.NewGatewayError("createTransaction", m.CallErr)
	}

	product, okProduct := m.products[productID]
	senderParty, okSender := m.parties[addrKey(sender)]
	receiverParty, okReceiver := m.parties[addrKey(receiver)]
	if !okProduct || !okSender || !okReceiver || !m.transitionAllowed(product, senderParty, receiverParty) {
		return types.CreateTransactionResult{Status: types.StatusRejected}, nil
	}

	id := m.nextTx
	m.nextTx++

	if receiverParty.Stage != models.StageChainManager {
		product.CurrentStage = receiverParty.Stage
	}
	product.CurrentHolder = receiverParty.Address
	m.products[productID] = product

	m.history[productID] = append(m.history[productID], models.Transaction{
		ID:        id,
		Sender:    senderParty.Address,
		Receiver:  receiverParty.Address,
		ProductID: productID,
		Price:     new(big.Int).Set(priceWei),
		Memo:      memo,
		Timestamp: m.Now().UTC(),
	})

	return types.CreateTransactionResult{
		Status:        types.StatusAuthorized,
		TransactionID: id,
		Receipt:       m.nextReceipt(),
	}, nil
}

// transitionAllowed mirrors the contract's ordering rule: the sender must
// hold the product at its current stage and the receiver must be the next
// stage, with chain-manager parties allowed to act outside the line.
func (m *MockClient) transitionAllowed(product models.Product, sender, receiver models.Party) bool {
	if sender.Stage == models.StageChainManager || receiver.Stage == models.StageChainManager {
		return true
	}
	if sender.Stage != product.CurrentStage {
		return false
	}
	next, ok := sender.Stage.Next()
	return ok && receiver.Stage == next
}

func (m *MockClient) Close() error { return nil }

var _ Client = (*MockClient)(nil)
