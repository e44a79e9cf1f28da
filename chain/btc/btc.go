// Package btc implements the chain adapter for the bitcoin family on top of an
// electrs style indexer.
package btc

import (
	"context"
	"fmt"
	"sync"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
	"github.com/btcsuite/btcwallet/waddrmgr"
	"github.com/catalogfi/blockchain/btc"
	"github.com/intentswaps/swapd/chain"
	"github.com/intentswaps/swapd/model"
	"go.uber.org/zap"
)

type adapter struct {
	mu           *sync.Mutex
	logger       *zap.Logger
	network      *chaincfg.Params
	client       btc.IndexerClient
	feeEstimator btc.FeeEstimator
	feeTier      string
	key          *btcec.PrivateKey
	address      btcutil.Address
}

func New(logger *zap.Logger, network *chaincfg.Params, client btc.IndexerClient, estimator btc.FeeEstimator, feeTier string, key *btcec.PrivateKey) (chain.Adapter, error) {
	addr, err := btc.PublicKeyAddress(network, waddrmgr.WitnessPubKey, key.PubKey())
	if err != nil {
		return nil, fmt.Errorf("fail to derive custodial address, %v", err)
	}

	return &adapter{
		mu:           new(sync.Mutex),
		logger:       logger,
		network:      network,
		client:       client,
		feeEstimator: estimator,
		feeTier:      feeTier,
		key:          key,
		address:      addr,
	}, nil
}

func (a *adapter) CustodialAddress() string {
	return a.address.EncodeAddress()
}

// VerifyDeposit scans the custodial address for confirmed utxos. The claimed
// txid must appear among them and the confirmed balance must cover min. This
// is balance verification, it does not earmark the deposit for one order.
func (a *adapter) VerifyDeposit(ctx context.Context, asset model.Asset, custodialAddress string, min uint64, txid string) (bool, error) {
	if asset.Kind != model.KindNative {
		return false, fmt.Errorf("unsupported asset on bitcoin: %v", asset)
	}
	addr, err := btcutil.DecodeAddress(custodialAddress, a.network)
	if err != nil {
		return false, fmt.Errorf("invalid custodial address: %v", err)
	}

	utxos, err := a.client.GetUTXOs(ctx, addr)
	if err != nil {
		return false, fmt.Errorf("failed to get UTXOs: %w", err)
	}

	total, seen := int64(0), false
	for _, utxo := range utxos {
		if utxo.Status != nil && utxo.Status.Confirmed {
			total += utxo.Amount
			if utxo.TxID == txid {
				seen = true
			}
		}
	}
	return seen && total >= int64(min), nil
}

func (a *adapter) Balance(ctx context.Context, asset model.Asset, address string) (uint64, error) {
	if asset.Kind != model.KindNative {
		return 0, fmt.Errorf("unsupported asset on bitcoin: %v", asset)
	}
	addr, err := btcutil.DecodeAddress(address, a.network)
	if err != nil {
		return 0, err
	}
	utxos, err := a.client.GetUTXOs(ctx, addr)
	if err != nil {
		return 0, err
	}
	total := int64(0)
	for _, utxo := range utxos {
		total += utxo.Amount
	}
	return uint64(total), nil
}

func (a *adapter) Send(ctx context.Context, asset model.Asset, to string, amount uint64) (string, error) {
	if asset.Kind != model.KindNative {
		return "", fmt.Errorf("unsupported asset on bitcoin: %v", asset)
	}
	toAddr, err := btcutil.DecodeAddress(to, a.network)
	if err != nil {
		return "", fmt.Errorf("invalid destination address: %v", err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	utxos, err := a.client.GetUTXOs(ctx, a.address)
	if err != nil {
		return "", err
	}
	feeRate, err := a.feeRate()
	if err != nil {
		return "", err
	}

	recipients := []btc.Recipient{
		{
			To:     toAddr.EncodeAddress(),
			Amount: int64(amount),
		},
	}
	fromScript, err := txscript.PayToAddrScript(a.address)
	if err != nil {
		return "", err
	}
	tx, err := btc.BuildTransaction(a.network, feeRate, btc.NewRawInputs(), utxos, btc.P2wpkhUpdater, recipients, a.address)
	if err != nil {
		return "", err
	}

	// Sign the inputs
	fetcher := txscript.NewMultiPrevOutFetcher(nil)
	for _, utxo := range utxos {
		hash, err := chainhash.NewHashFromStr(utxo.TxID)
		if err != nil {
			return "", err
		}
		fetcher.AddPrevOut(wire.OutPoint{
			Hash:  *hash,
			Index: utxo.Vout,
		}, wire.NewTxOut(utxo.Amount, fromScript))
	}
	for i, txIn := range tx.TxIn {
		sigHashes := txscript.NewTxSigHashes(tx, fetcher)
		txOut := fetcher.FetchPrevOutput(txIn.PreviousOutPoint)
		witness, err := txscript.WitnessSignature(tx, sigHashes, i, txOut.Value, fromScript, txscript.SigHashAll, a.key, true)
		if err != nil {
			return "", err
		}
		tx.TxIn[i].Witness = witness
	}

	if err := a.client.SubmitTx(ctx, tx); err != nil {
		return "", err
	}
	a.logger.Info("submitted transaction", zap.String("txid", tx.TxHash().String()), zap.Uint64("amount", amount))
	return tx.TxHash().String(), nil
}

func (a *adapter) feeRate() (int, error) {
	feeRates, err := a.feeEstimator.FeeSuggestion()
	if err != nil {
		return 0, err
	}

	switch a.feeTier {
	case "minimum":
		return feeRates.Minimum, nil
	case "economy":
		return feeRates.Economy, nil
	case "low":
		return feeRates.Low, nil
	case "medium":
		return feeRates.Medium, nil
	case "high":
		return feeRates.High, nil
	default:
		return feeRates.High, nil
	}
}
