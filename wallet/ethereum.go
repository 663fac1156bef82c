package wallet

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"log"
	"math/big"
	"strings"
	"time"

	"chaintrack/ledger/client/ethereum"
	"chaintrack/ledger/types"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
)

const transferGasLimit = 21000

// EthereumWallet signs and sends plain value transfers from the connected
// account. It shares the account and endpoint with the Ethereum gateway but
// is deliberately independent of the contract.
type EthereumWallet struct {
	eth     *ethclient.Client
	key     *ecdsa.PrivateKey
	from    common.Address
	chainID *big.Int
	timeout time.Duration
	logger  *log.Logger
}

// NewEthereumWallet connects a wallet using the gateway's chain configuration.
func NewEthereumWallet(cfg *ethereum.EthereumConfig, timeout time.Duration, logger *log.Logger) (*EthereumWallet, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(cfg.PrivateKey, "0x"))
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key: %w", err)
	}

	eth, err := ethclient.Dial(cfg.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RPC endpoint '%s': %w", cfg.RPCURL, err)
	}

	from := crypto.PubkeyToAddress(key.PublicKey)
	logger.Printf("Wallet connected: account=%s", from.Hex())

	return &EthereumWallet{
		eth:     eth,
		key:     key,
		from:    from,
		chainID: big.NewInt(cfg.ChainID),
		timeout: timeout,
		logger:  logger,
	}, nil
}

// Address returns the connected account's address.
func (w *EthereumWallet) Address() string { return w.from.Hex() }

// Close releases the RPC connection.
func (w *EthereumWallet) Close() error {
	w.eth.Close()
	return nil
}

// Transfer sends the display-unit amount to the given address and waits for
// the transfer to be included.
func (w *EthereumWallet) Transfer(ctx context.Context, toAddress, amount string) (types.Receipt, error) {
	if !common.IsHexAddress(toAddress) {
		return types.Receipt{}, fmt.Errorf("invalid destination address %q", toAddress)
	}
	to := common.HexToAddress(toAddress)

	wei, err := types.EtherToWei(amount)
	if err != nil {
		return types.Receipt{}, fmt.Errorf("invalid transfer amount: %w", err)
	}

	cctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	nonce, err := w.eth.PendingNonceAt(cctx, w.from)
	if err != nil {
		return types.Receipt{}, fmt.Errorf("failed to fetch nonce: %w", err)
	}
	gasPrice, err := w.eth.SuggestGasPrice(cctx)
	if err != nil {
		return types.Receipt{}, fmt.Errorf("failed to fetch gas price: %w", err)
	}

	tx := ethtypes.NewTransaction(nonce, to, wei, transferGasLimit, gasPrice, nil)
	signed, err := ethtypes.SignTx(tx, ethtypes.LatestSignerForChainID(w.chainID), w.key)
	if err != nil {
		return types.Receipt{}, fmt.Errorf("failed to sign transfer: %w", err)
	}

	if err := w.eth.SendTransaction(cctx, signed); err != nil {
		return types.Receipt{}, fmt.Errorf("failed to send transfer: %w", err)
	}

	receipt, err := bind.WaitMined(cctx, w.eth, signed)
	if err != nil {
		return types.Receipt{}, fmt.Errorf("waiting for inclusion of transfer %s: %w", signed.Hash().Hex(), err)
	}
	if receipt.Status != ethtypes.ReceiptStatusSuccessful {
		return types.Receipt{}, fmt.Errorf("transfer %s reverted", signed.Hash().Hex())
	}

	return types.Receipt{
		TxHash:      signed.Hash().Hex(),
		BlockNumber: receipt.BlockNumber.Uint64(),
	}, nil
}

var _ Wallet = (*EthereumWallet)(nil)
