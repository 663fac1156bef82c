package ethereum

import (
	"context"
	"fmt"
	"log"
	"math/big"
	"strings"
	"time"

	"chaintrack/config"
	"chaintrack/internal/models"
	"chaintrack/ledger/types"

	goethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
)

// Binding structs for ABI tuple decoding. Field names must match the
// camel-cased ABI component names.
type partyRecord struct {
	Addr     common.Address
	Name     string
	Location string
	Role     *big.Int
}

type productRecord struct {
	Id       *big.Int
	Stage    *big.Int
	Name     string
	Quantity *big.Int
	Creator  common.Address
	Holder   common.Address
}

type transactionRecord struct {
	Id        *big.Int
	Sender    common.Address
	Receiver  common.Address
	ProductID *big.Int
	Price     *big.Int
	Memo      string
	Timestamp *big.Int
}

type historyRecord struct {
	EventType   string
	Description string
	Status      string
	Timestamp   *big.Int
}

// Client is the go-ethereum backed ledger gateway. It owns no state and
// performs no retries; every failure is reported as a *types.GatewayError.
type Client struct {
	eth          *ethclient.Client
	abi          abi.ABI
	bound        *bind.BoundContract
	contractAddr common.Address
	auth         *bind.TransactOpts
	account      common.Address
	timeout      time.Duration
	logger       *log.Logger
}

// NewClient initializes the Ethereum gateway from the combined configuration.
func NewClient(cfg *config.LedgerConfig, logger *log.Logger) (*Client, error) {
	ethCfg, ok := cfg.ChainSpecific.(*EthereumConfig)
	if !ok {
		return nil, fmt.Errorf("invalid Ethereum configuration type")
	}

	key, err := crypto.HexToECDSA(strings.TrimPrefix(ethCfg.PrivateKey, "0x"))
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key: %w", err)
	}

	if !common.IsHexAddress(ethCfg.ContractAddress) {
		return nil, fmt.Errorf("invalid contract address %q", ethCfg.ContractAddress)
	}

	parsed, err := abi.JSON(strings.NewReader(contractABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse contract ABI: %w", err)
	}

	eth, err := ethclient.Dial(ethCfg.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RPC endpoint '%s': %w", ethCfg.RPCURL, err)
	}

	auth, err := bind.NewKeyedTransactorWithChainID(key, big.NewInt(ethCfg.ChainID))
	if err != nil {
		eth.Close()
		return nil, fmt.Errorf("failed to build transactor: %w", err)
	}
	if ethCfg.GasLimit > 0 {
		auth.GasLimit = ethCfg.GasLimit
	}

	contractAddr := common.HexToAddress(ethCfg.ContractAddress)
	bound := bind.NewBoundContract(contractAddr, parsed, eth, eth, eth)

	logger.Printf("Ethereum gateway connected: chain=%d contract=%s account=%s",
		ethCfg.ChainID, contractAddr.Hex(), auth.From.Hex())

	return &Client{
		eth:          eth,
		abi:          parsed,
		bound:        bound,
		contractAddr: contractAddr,
		auth:         auth,
		account:      auth.From,
		timeout:      time.Duration(cfg.TimeoutSeconds) * time.Second,
		logger:       logger,
	}, nil
}

// Account returns the connected identity's address.
func (c *Client) Account() string { return c.account.Hex() }

// Close releases the RPC connection.
func (c *Client) Close() error {
	c.eth.Close()
	return nil
}

func (c *Client) callCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, c.timeout)
}

func (c *Client) txOpts(ctx context.Context) *bind.TransactOpts {
	opts := *c.auth
	opts.Context = ctx
	return &opts
}

func parseAddress(s string) (common.Address, error) {
	if !common.IsHexAddress(s) {
		return common.Address{}, fmt.Errorf("invalid account address %q", s)
	}
	return common.HexToAddress(s), nil
}

func toParty(r partyRecord) models.Party {
	return models.Party{
		Address:  r.Addr.Hex(),
		Name:     r.Name,
		Location: r.Location,
		Stage:    models.Stage(r.Role.Int64()),
	}
}

func toProduct(r productRecord) models.Product {
	return models.Product{
		ID:            r.Id.Uint64(),
		Name:          r.Name,
		Quantity:      r.Quantity.Uint64(),
		CurrentStage:  models.Stage(r.Stage.Int64()),
		CurrentHolder: r.Holder.Hex(),
		Creator:       r.Creator.Hex(),
	}
}

func toTransaction(r transactionRecord) models.Transaction {
	return models.Transaction{
		ID:        r.Id.Uint64(),
		Sender:    r.Sender.Hex(),
		Receiver:  r.Receiver.Hex(),
		ProductID: r.ProductID.Uint64(),
		Price:     new(big.Int).Set(r.Price),
		Memo:      r.Memo,
		Timestamp: time.Unix(r.Timestamp.Int64(), 0).UTC(),
	}
}

// GetAllParties reads every registered party.
func (c *Client) GetAllParties(ctx context.Context) ([]models.Party, error) {
	cctx, cancel := c.callCtx(ctx)
	defer cancel()

	var out []interface{}
	if err := c.bound.Call(&bind.CallOpts{Context: cctx}, &out, "getAllParties"); err != nil {
		return nil, types.NewGatewayError("getAllParties", err)
	}
	records := *abi.ConvertType(out[0], new([]partyRecord)).(*[]partyRecord)

	parties := make([]models.Party, 0, len(records))
	for _, r := range records {
		parties = append(parties, toParty(r))
	}
	return parties, nil
}

// GetParty reads the party registered under the given account address.
func (c *Client) GetParty(ctx context.Context, address string) (models.Party, error) {
	addr, err := parseAddress(address)
	if err != nil {
		return models.Party{}, types.NewGatewayError("getParty", err)
	}

	cctx, cancel := c.callCtx(ctx)
	defer cancel()

	var out []interface{}
	if err := c.bound.Call(&bind.CallOpts{Context: cctx}, &out, "getParty", addr); err != nil {
		return models.Party{}, types.NewGatewayError("getParty", err)
	}
	record := *abi.ConvertType(out[0], new(partyRecord)).(*partyRecord)
	return toParty(record), nil
}

// GetAllProducts reads the products visible to the given account.
func (c *Client) GetAllProducts(ctx context.Context, address string) ([]models.Product, error) {
	addr, err := parseAddress(address)
	if err != nil {
		return nil, types.NewGatewayError("getAllProducts", err)
	}

	cctx, cancel := c.callCtx(ctx)
	defer cancel()

	var out []interface{}
	if err := c.bound.Call(&bind.CallOpts{Context: cctx}, &out, "getAllProducts", addr); err != nil {
		return nil, types.NewGatewayError("getAllProducts", err)
	}
	records := *abi.ConvertType(out[0], new([]productRecord)).(*[]productRecord)

	products := make([]models.Product, 0, len(records))
	for _, r := range records {
		products = append(products, toProduct(r))
	}
	return products, nil
}

// GetProduct reads a single product by its ledger-assigned id.
func (c *Client) GetProduct(ctx context.Context, productID uint64) (models.Product, error) {
	cctx, cancel := c.callCtx(ctx)
	defer cancel()

	var out []interface{}
	if err := c.bound.Call(&bind.CallOpts{Context: cctx}, &out, "getProduct", new(big.Int).SetUint64(productID)); err != nil {
		return models.Product{}, types.NewGatewayError("getProduct", err)
	}
	record := *abi.ConvertType(out[0], new(productRecord)).(*productRecord)
	return toProduct(record), nil
}

// GetProductHistory reads the coarse tracking events for a product.
func (c *Client) GetProductHistory(ctx context.Context, productID uint64) ([]models.HistoryEvent, error) {
	cctx, cancel := c.callCtx(ctx)
	defer cancel()

	var out []interface{}
	if err := c.bound.Call(&bind.CallOpts{Context: cctx}, &out, "getProductHistory", new(big.Int).SetUint64(productID)); err != nil {
		return nil, types.NewGatewayError("getProductHistory", err)
	}
	records := *abi.ConvertType(out[0], new([]historyRecord)).(*[]historyRecord)

	events := make([]models.HistoryEvent, 0, len(records))
	for _, r := range records {
		events = append(events, models.HistoryEvent{
			Type:        r.EventType,
			Description: r.Description,
			Status:      r.Status,
			Timestamp:   time.Unix(r.Timestamp.Int64(), 0).UTC(),
		})
	}
	return events, nil
}

// GetTransactionHistory reads a product's accepted transactions.
func (c *Client) GetTransactionHistory(ctx context.Context, productID uint64) ([]models.Transaction, error) {
	cctx, cancel := c.callCtx(ctx)
	defer cancel()

	var out []interface{}
	if err := c.bound.Call(&bind.CallOpts{Context: cctx}, &out, "getTransactionHistory", new(big.Int).SetUint64(productID)); err != nil {
		return nil, types.NewGatewayError("getTransactionHistory", err)
	}
	records := *abi.ConvertType(out[0], new([]transactionRecord)).(*[]transactionRecord)

	txs := make([]models.Transaction, 0, len(records))
	for _, r := range records {
		txs = append(txs, toTransaction(r))
	}
	return txs, nil
}

// IsNewParty reports whether the address has never been registered.
func (c *Client) IsNewParty(ctx context.Context, address string) (bool, error) {
	addr, err := parseAddress(address)
	if err != nil {
		return false, types.NewGatewayError("isNewParty", err)
	}

	cctx, cancel := c.callCtx(ctx)
	defer cancel()

	var out []interface{}
	if err := c.bound.Call(&bind.CallOpts{Context: cctx}, &out, "isNewParty", addr); err != nil {
		return false, types.NewGatewayError("isNewParty", err)
	}
	return *abi.ConvertType(out[0], new(bool)).(*bool), nil
}

// CreateParty registers a party at a fixed stage.
func (c *Client) CreateParty(ctx context.Context, name, location string, stage models.Stage, address string) (types.Receipt, error) {
	addr, err := parseAddress(address)
	if err != nil {
		return types.Receipt{}, types.NewGatewayError("createParty", err)
	}

	cctx, cancel := c.callCtx(ctx)
	defer cancel()

	tx, err := c.bound.Transact(c.txOpts(cctx), "createParty", name, location, big.NewInt(int64(stage)), addr)
	if err != nil {
		return types.Receipt{}, types.NewGatewayError("createParty", err)
	}
	return c.waitMined(cctx, "createParty", tx)
}

// CreateProduct creates a product held by its creator.
func (c *Client) CreateProduct(ctx context.Context, creator, name string, quantity uint64) (types.Receipt, error) {
	addr, err := parseAddress(creator)
	if err != nil {
		return types.Receipt{}, types.NewGatewayError("createProduct", err)
	}

	cctx, cancel := c.callCtx(ctx)
	defer cancel()

	tx, err := c.bound.Transact(c.txOpts(cctx), "createProduct", addr, name, new(big.Int).SetUint64(quantity))
	if err != nil {
		return types.Receipt{}, types.NewGatewayError("createProduct", err)
	}
	return c.waitMined(cctx, "createProduct", tx)
}

// CreateTransaction submits a transaction candidate for authorization. The
// contract's answer is read first through a gas-free preflight call so a
// rejected candidate leaves no trace on the ledger; only an authorized
// candidate is followed by the real transaction.
func (c *Client) CreateTransaction(ctx context.Context, sender, receiver string, productID uint64, priceWei *big.Int, memo string) (types.CreateTransactionResult, error) {
	var res types.CreateTransactionResult

	senderAddr, err := parseAddress(sender)
	if err != nil {
		return res, types.NewGatewayError("createTransaction", err)
	}
	receiverAddr, err := parseAddress(receiver)
	if err != nil {
		return res, types.NewGatewayError("createTransaction", err)
	}
	pid := new(big.Int).SetUint64(productID)

	input, err := c.abi.Pack("createTransaction", senderAddr, receiverAddr, pid, priceWei, memo)
	if err != nil {
		return res, types.NewGatewayError("createTransaction", err)
	}

	cctx, cancel := c.callCtx(ctx)
	defer cancel()

	outBytes, err := c.eth.CallContract(cctx, goethereum.CallMsg{
		From: c.account,
		To:   &c.contractAddr,
		Data: input,
	}, nil)
	if err != nil {
		return res, types.NewGatewayError("createTransaction", err)
	}

	vals, err := c.abi.Unpack("createTransaction", outBytes)
	if err != nil {
		return res, types.NewGatewayError("createTransaction", fmt.Errorf("failed to unpack result: %w", err))
	}
	if len(vals) != 2 {
		return res, types.NewGatewayError("createTransaction", fmt.Errorf("expected 2 return values, got %d", len(vals)))
	}
	res.Status = vals[0].(*big.Int).Uint64()
	res.TransactionID = vals[1].(*big.Int).Uint64()

	if res.Status != types.StatusAuthorized {
		return res, nil
	}

	tx, err := c.bound.Transact(c.txOpts(cctx), "createTransaction", senderAddr, receiverAddr, pid, priceWei, memo)
	if err != nil {
		return types.CreateTransactionResult{}, types.NewGatewayError("createTransaction", err)
	}
	receipt, err := c.waitMined(cctx, "createTransaction", tx)
	if err != nil {
		return types.CreateTransactionResult{}, err
	}
	res.Receipt = receipt
	return res, nil
}

func (c *Client) waitMined(ctx context.Context, op string, tx *ethtypes.Transaction) (types.Receipt, error) {
	receipt, err := bind.WaitMined(ctx, c.eth, tx)
	if err != nil {
		return types.Receipt{}, types.NewGatewayError(op, fmt.Errorf("waiting for inclusion of %s: %w", tx.Hash().Hex(), err))
	}
	if receipt.Status != ethtypes.ReceiptStatusSuccessful {
		return types.Receipt{}, types.NewGatewayError(op, fmt.Errorf("transaction %s reverted", tx.Hash().Hex()))
	}
	return types.Receipt{
		TxHash:      tx.Hash().Hex(),
		BlockNumber: receipt.BlockNumber.Uint64(),
	}, nil
}
