// Package wallet derives the coordinator's custodial keys from a single
// mnemonic. One key per chain family, derived once.
package wallet

import (
	"crypto/ecdsa"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/tyler-smith/go-bip32"
	"github.com/tyler-smith/go-bip39"
)

const (
	indexBitcoin uint32 = 0
	indexEVM     uint32 = 60
)

type Keys struct {
	master *bip32.Key
}

func FromMnemonic(mnemonic string) (*Keys, error) {
	if !bip39.IsMnemonicValid(mnemonic) {
		return nil, fmt.Errorf("invalid mnemonic")
	}
	seed := bip39.NewSeed(mnemonic, "")
	master, err := bip32.NewMasterKey(seed)
	if err != nil {
		return nil, err
	}
	return &Keys{master: master}, nil
}

func (k *Keys) BtcKey() (*btcec.PrivateKey, error) {
	child, err := k.master.NewChildKey(indexBitcoin)
	if err != nil {
		return nil, err
	}
	key, _ := btcec.PrivKeyFromBytes(child.Key)
	return key, nil
}

func (k *Keys) EthKey() (*ecdsa.PrivateKey, error) {
	child, err := k.master.NewChildKey(indexEVM)
	if err != nil {
		return nil, err
	}
	return crypto.ToECDSA(child.Key)
}

// BtcAddress is the custodial P2WPKH address on the given network.
func (k *Keys) BtcAddress(network *chaincfg.Params) (btcutil.Address, error) {
	key, err := k.BtcKey()
	if err != nil {
		return nil, err
	}
	keyHash := btcutil.Hash160(key.PubKey().SerializeCompressed())
	return btcutil.NewAddressWitnessPubKeyHash(keyHash, network)
}

func (k *Keys) EvmAddress() (common.Address, error) {
	key, err := k.EthKey()
	if err != nil {
		return common.Address{}, err
	}
	return crypto.PubkeyToAddress(key.PublicKey), nil
}
