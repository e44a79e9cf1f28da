package coordinator

import (
	"context"

	"github.com/intentswaps/swapd/model"
)

func (c *Coordinator) GetOrder(orderID uint) (model.Order, error) {
	return c.store.Get(orderID)
}

// PendingOrders are visible to resolvers: deposit received, not yet expired.
func (c *Coordinator) PendingOrders() ([]model.Order, error) {
	return c.store.Pending(c.now())
}

// ExpiredOrders are past their deadline, unsettled and still holding at least
// one deposit. A watchdog polls these and invokes ProcessRefund.
func (c *Coordinator) ExpiredOrders() ([]model.Order, error) {
	return c.store.Expired(c.now())
}

func (c *Coordinator) MyOrders(caller string) ([]model.Order, error) {
	return c.store.ByParty(caller)
}

func (c *Coordinator) OrdersByWallet(address string) ([]model.Order, error) {
	return c.store.ByWallet(address)
}

func (c *Coordinator) CustodialAddresses() model.Addresses {
	return c.chains.CustodialAddresses()
}

func (c *Coordinator) CustodialBalance(ctx context.Context, asset model.Asset) (uint64, error) {
	adapter, err := c.chains.For(asset)
	if err != nil {
		return 0, err
	}
	return adapter.Balance(ctx, asset, adapter.CustodialAddress())
}
