package model

import (
	"fmt"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/ethereum/go-ethereum/common"
)

type Chain string

const (
	Bitcoin        Chain = "bitcoin"
	BitcoinTestnet Chain = "bitcoin_testnet"
	BitcoinRegtest Chain = "bitcoin_regtest"

	Ethereum         Chain = "ethereum"
	EthereumSepolia  Chain = "ethereum_sepolia"
	EthereumLocalnet Chain = "ethereum_localnet"
)

// Family groups chains sharing one address format and one custodial key. The
// coordinator holds a single custodial address per family.
type Family string

const (
	FamilyBitcoin Family = "bitcoin"
	FamilyEVM     Family = "evm"
)

func (c Chain) IsBTC() bool {
	return c == Bitcoin || c == BitcoinTestnet || c == BitcoinRegtest
}

func (c Chain) IsEVM() bool {
	return c == Ethereum || c == EthereumSepolia || c == EthereumLocalnet
}

func (c Chain) Family() Family {
	if c.IsBTC() {
		return FamilyBitcoin
	}
	return FamilyEVM
}

func (c Chain) Params() *chaincfg.Params {
	switch c {
	case Bitcoin:
		return &chaincfg.MainNetParams
	case BitcoinTestnet:
		return &chaincfg.TestNet3Params
	case BitcoinRegtest:
		return &chaincfg.RegressionNetParams
	default:
		panic(fmt.Sprintf("params: not a bitcoin chain: %v", c))
	}
}

func (c Chain) Valid() bool {
	return c.IsBTC() || c.IsEVM()
}

type AssetKind uint8

const (
	KindNative AssetKind = iota
	KindFungibleToken
)

// Asset is a closed variant, either the base currency of a chain or a fungible
// token identified by its mint (contract address on EVM chains).
type Asset struct {
	Kind     AssetKind `json:"kind"`
	Chain    Chain     `json:"chain"`
	Mint     string    `json:"mint,omitempty"`
	Decimals uint8     `json:"decimals,omitempty"`
}

func NewNative(chain Chain) Asset {
	return Asset{Kind: KindNative, Chain: chain}
}

func NewFungibleToken(chain Chain, mint string, decimals uint8) Asset {
	return Asset{Kind: KindFungibleToken, Chain: chain, Mint: mint, Decimals: decimals}
}

// Equal requires the variant and every field to match.
func (a Asset) Equal(other Asset) bool {
	return a == other
}

func (a Asset) Family() Family {
	return a.Chain.Family()
}

func (a Asset) Validate() error {
	if !a.Chain.Valid() {
		return fmt.Errorf("unknown chain: %v", a.Chain)
	}
	switch a.Kind {
	case KindNative:
		if a.Mint != "" || a.Decimals != 0 {
			return fmt.Errorf("native asset must not carry token fields")
		}
	case KindFungibleToken:
		if a.Chain.IsBTC() {
			return fmt.Errorf("fungible tokens are not supported on %v", a.Chain)
		}
		if !common.IsHexAddress(a.Mint) {
			return fmt.Errorf("invalid token mint: %v", a.Mint)
		}
	default:
		return fmt.Errorf("unknown asset kind: %v", a.Kind)
	}
	return nil
}

func (a Asset) String() string {
	if a.Kind == KindFungibleToken {
		return fmt.Sprintf("%v:%v", a.Chain, a.Mint)
	}
	return string(a.Chain)
}

// Addresses holds one receive address per family. Empty entries mean the party
// did not supply an address for that family.
type Addresses struct {
	Btc string `json:"btc,omitempty"`
	Evm string `json:"evm,omitempty"`
}

func (a Addresses) For(family Family) string {
	switch family {
	case FamilyBitcoin:
		return a.Btc
	case FamilyEVM:
		return a.Evm
	default:
		return ""
	}
}

// ValidateAddress checks the textual form of an address for the given chain.
func ValidateAddress(chain Chain, address string) error {
	if chain.IsEVM() {
		if !common.IsHexAddress(address) {
			return fmt.Errorf("invalid evm (%v) address: %v", chain, address)
		}
		return nil
	} else if chain.IsBTC() {
		_, err := btcutil.DecodeAddress(address, chain.Params())
		return err
	}
	return fmt.Errorf("unknown chain: %v", chain)
}
