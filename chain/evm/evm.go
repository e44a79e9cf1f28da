// Package evm implements the chain adapter for the evm family, covering the
// native currency and ERC-20 fungible tokens.
package evm

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/intentswaps/swapd/chain"
	"github.com/intentswaps/swapd/model"
	"go.uber.org/zap"
)

const erc20ABI = `[
	{"constant":true,"inputs":[{"name":"owner","type":"address"}],"name":"balanceOf","outputs":[{"name":"","type":"uint256"}],"type":"function"},
	{"constant":false,"inputs":[{"name":"to","type":"address"},{"name":"value","type":"uint256"}],"name":"transfer","outputs":[{"name":"","type":"bool"}],"type":"function"}
]`

type adapter struct {
	mu     *sync.Mutex
	logger *zap.Logger
	client *ethclient.Client
	key    *ecdsa.PrivateKey

	chainID *big.Int
	addr    common.Address
	erc20   abi.ABI
	nonce   uint64
}

func New(logger *zap.Logger, client *ethclient.Client, key *ecdsa.PrivateKey, chainID *big.Int) (chain.Adapter, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Make sure the chain ID matches our expectation, so we know we are on the right chain.
	remoteID, err := client.ChainID(ctx)
	if err != nil {
		return nil, err
	}
	if chainID.Cmp(remoteID) != 0 {
		return nil, fmt.Errorf("wrong chain ID, expect %v, got %v", chainID, remoteID)
	}

	parsed, err := abi.JSON(strings.NewReader(erc20ABI))
	if err != nil {
		return nil, err
	}
	addr := crypto.PubkeyToAddress(key.PublicKey)

	a := &adapter{
		mu:      new(sync.Mutex),
		logger:  logger,
		client:  client,
		key:     key,
		chainID: chainID,
		addr:    addr,
		erc20:   parsed,
	}

	// Get the pending nonce, we manually manage the nonce afterwards.
	a.nonce, err = client.PendingNonceAt(ctx, addr)
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (a *adapter) CustodialAddress() string {
	return a.addr.Hex()
}

// VerifyDeposit requires the claimed transaction to be mined successfully and
// the custodial balance to cover min. Balance verification only, see the
// shared custodial address caveat in the coordinator.
func (a *adapter) VerifyDeposit(ctx context.Context, asset model.Asset, custodialAddress string, min uint64, txid string) (bool, error) {
	if !common.IsHexAddress(custodialAddress) {
		return false, fmt.Errorf("invalid custodial address: %v", custodialAddress)
	}

	receipt, err := a.client.TransactionReceipt(ctx, common.HexToHash(txid))
	if err != nil {
		if err == ethereum.NotFound {
			return false, nil
		}
		return false, err
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return false, nil
	}

	balance, err := a.Balance(ctx, asset, custodialAddress)
	if err != nil {
		return false, err
	}
	return balance >= min, nil
}

func (a *adapter) Balance(ctx context.Context, asset model.Asset, address string) (uint64, error) {
	addr := common.HexToAddress(address)
	switch asset.Kind {
	case model.KindNative:
		balance, err := a.client.BalanceAt(ctx, addr, nil)
		if err != nil {
			return 0, err
		}
		return balance.Uint64(), nil
	case model.KindFungibleToken:
		data, err := a.erc20.Pack("balanceOf", addr)
		if err != nil {
			return 0, err
		}
		mint := common.HexToAddress(asset.Mint)
		result, err := a.client.CallContract(ctx, ethereum.CallMsg{To: &mint, Data: data}, nil)
		if err != nil {
			return 0, err
		}
		values, err := a.erc20.Unpack("balanceOf", result)
		if err != nil {
			return 0, err
		}
		balance, ok := values[0].(*big.Int)
		if !ok {
			return 0, fmt.Errorf("unexpected balanceOf return type")
		}
		return balance.Uint64(), nil
	default:
		return 0, fmt.Errorf("unknown asset kind: %v", asset.Kind)
	}
}

func (a *adapter) Send(ctx context.Context, asset model.Asset, to string, amount uint64) (string, error) {
	if !common.IsHexAddress(to) {
		return "", fmt.Errorf("invalid destination address: %v", to)
	}
	toAddr := common.HexToAddress(to)

	a.mu.Lock()
	defer a.mu.Unlock()

	gasPrice, err := a.client.SuggestGasPrice(ctx)
	if err != nil {
		return "", err
	}

	var tx *types.Transaction
	switch asset.Kind {
	case model.KindNative:
		tx = types.NewTx(&types.LegacyTx{
			Nonce:    a.nonce,
			GasPrice: gasPrice,
			Gas:      21000,
			To:       &toAddr,
			Value:    new(big.Int).SetUint64(amount),
		})
	case model.KindFungibleToken:
		data, err := a.erc20.Pack("transfer", toAddr, new(big.Int).SetUint64(amount))
		if err != nil {
			return "", err
		}
		mint := common.HexToAddress(asset.Mint)
		gas, err := a.client.EstimateGas(ctx, ethereum.CallMsg{From: a.addr, To: &mint, Data: data})
		if err != nil {
			return "", err
		}
		tx = types.NewTx(&types.LegacyTx{
			Nonce:    a.nonce,
			GasPrice: gasPrice,
			Gas:      gas,
			To:       &mint,
			Data:     data,
		})
	default:
		return "", fmt.Errorf("unknown asset kind: %v", asset.Kind)
	}

	signed, err := types.SignTx(tx, types.LatestSignerForChainID(a.chainID), a.key)
	if err != nil {
		return "", err
	}
	if err := a.client.SendTransaction(ctx, signed); err != nil {
		if strings.Contains(err.Error(), "nonce too low") {
			if inErr := a.calibrateNonce(); inErr != nil {
				return "", fmt.Errorf("send failed = %v, reset nonce failed = %v", err, inErr)
			}
		}
		return "", err
	}
	a.nonce++
	a.logger.Info("submitted transaction", zap.String("txid", signed.Hash().Hex()), zap.Uint64("amount", amount))
	return signed.Hash().Hex(), nil
}

func (a *adapter) calibrateNonce() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	nonce, err := a.client.PendingNonceAt(ctx, a.addr)
	if err != nil {
		return err
	}
	a.nonce = nonce
	return nil
}
