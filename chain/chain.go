// Package chain is the boundary to the blockchains the coordinator custodies
// funds on. The coordinator never talks to a chain directly, it goes through
// an Adapter for the asset's family.
package chain

import (
	"context"
	"fmt"

	"github.com/intentswaps/swapd/model"
)

type Adapter interface {

	// CustodialAddress is the address controlled by the coordinator into which
	// participants deposit funds. Derived once at construction.
	CustodialAddress() string

	// VerifyDeposit reports whether the custodial address holds at least min
	// units of the asset and the claimed txid is visible on the chain.
	VerifyDeposit(ctx context.Context, asset model.Asset, custodialAddress string, min uint64, txid string) (bool, error)

	// Send transfers amount units of the asset from custody to the given
	// address and returns the transaction id.
	Send(ctx context.Context, asset model.Asset, to string, amount uint64) (string, error)

	// Balance returns how many units of the asset the address holds.
	Balance(ctx context.Context, asset model.Asset, address string) (uint64, error)
}

// Registry maps each supported family to its adapter.
type Registry map[model.Family]Adapter

func (r Registry) For(asset model.Asset) (Adapter, error) {
	adapter, ok := r[asset.Family()]
	if !ok {
		return nil, fmt.Errorf("unsupported asset family: %v", asset.Family())
	}
	return adapter, nil
}

// CustodialAddresses returns the deposit address of every supported family.
func (r Registry) CustodialAddresses() model.Addresses {
	addrs := model.Addresses{}
	if adapter, ok := r[model.FamilyBitcoin]; ok {
		addrs.Btc = adapter.CustodialAddress()
	}
	if adapter, ok := r[model.FamilyEVM]; ok {
		addrs.Evm = adapter.CustodialAddress()
	}
	return addrs
}
