package mock

import (
	"context"
	"crypto/rand"
	"encoding/hex"

	"github.com/intentswaps/swapd/model"
)

// Adapter is a chain adapter with pluggable behaviour. Unset funcs fall back
// to verifying every deposit and returning a random txid for sends.
type Adapter struct {
	FuncCustodialAddress func() string
	FuncVerifyDeposit    func(model.Asset, string, uint64, string) (bool, error)
	FuncSend             func(model.Asset, string, uint64) (string, error)
	FuncBalance          func(model.Asset, string) (uint64, error)
}

func NewAdapter() *Adapter {
	return &Adapter{}
}

func (a *Adapter) CustodialAddress() string {
	if a.FuncCustodialAddress != nil {
		return a.FuncCustodialAddress()
	}
	return "mock-custodial-address"
}

func (a *Adapter) VerifyDeposit(_ context.Context, asset model.Asset, custodialAddress string, min uint64, txid string) (bool, error) {
	if a.FuncVerifyDeposit != nil {
		return a.FuncVerifyDeposit(asset, custodialAddress, min, txid)
	}
	return true, nil
}

func (a *Adapter) Send(_ context.Context, asset model.Asset, to string, amount uint64) (string, error) {
	if a.FuncSend != nil {
		return a.FuncSend(asset, to, amount)
	}
	return RandomTxid(), nil
}

func (a *Adapter) Balance(_ context.Context, asset model.Asset, address string) (uint64, error) {
	if a.FuncBalance != nil {
		return a.FuncBalance(asset, address)
	}
	return 0, nil
}

func RandomTxid() string {
	data := make([]byte, 32)
	if _, err := rand.Read(data); err != nil {
		panic(err)
	}
	return hex.EncodeToString(data)
}
