package coordinator

import (
	"context"
	"fmt"

	"github.com/intentswaps/swapd/ledger"
	"github.com/intentswaps/swapd/model"
	"go.uber.org/zap"
)

// CancelOrder cancels an order before the resolver has deposited. A deposit
// the creator already made is refunded to their own address first, the order
// is only marked Cancelled once no leg remains unsettled.
func (c *Coordinator) CancelOrder(ctx context.Context, caller string, orderID uint) error {
	order, err := c.store.Get(orderID)
	if err != nil {
		return err
	}
	if order.Creator != caller {
		return ErrNotCreator
	}
	switch order.Status {
	case model.Completed:
		return ErrOrderCompleted
	case model.Cancelled:
		return ErrOrderCancelled
	}
	if order.ResolverDeposited {
		return ErrResolverDeposited
	}

	if !c.inflight.acquire(orderID) {
		return ErrOrderBusy
	}
	defer c.inflight.release(orderID)

	var refundTx string
	if order.CreatorDeposited {
		addr := order.CreatorAddress(order.FromAsset.Family())
		if addr == "" {
			return fmt.Errorf("%w: creator %v", ErrMissingAddress, order.FromAsset.Family())
		}
		refundTx, err = c.sendOnce(ctx, ledger.ActionRefundCreator, orderID, order.FromAsset, addr, order.FromAmount)
		if err != nil {
			return err
		}
	}

	if err := c.store.Update(orderID, func(o *model.Order) error {
		if o.Status.Terminal() {
			return fmt.Errorf("%w: %v", ErrWrongStatus, o.Status)
		}
		if o.ResolverDeposited {
			return ErrResolverDeposited
		}
		o.Status = model.Cancelled
		return nil
	}); err != nil {
		return err
	}

	c.logger.Info("order cancelled", zap.Uint("order id", orderID), zap.String("refund tx", refundTx))
	return nil
}

// ProcessRefund returns deposited legs to their original depositors once the
// order has expired. Anyone may invoke it. Legs already paid out or refunded
// are skipped, so invoking it on a cancelled order with nothing left to return
// fails with ErrNoDeposits.
func (c *Coordinator) ProcessRefund(ctx context.Context, _ string, orderID uint) error {
	order, err := c.store.Get(orderID)
	if err != nil {
		return err
	}
	if !order.Expired(c.now()) {
		return ErrNotExpired
	}
	if order.Status == model.Completed {
		return ErrRefundNotNeeded
	}

	fromSettled, err := c.legSettled(orderID, ledger.ActionRefundCreator, ledger.ActionPayoutResolver)
	if err != nil {
		return err
	}
	toSettled, err := c.legSettled(orderID, ledger.ActionRefundResolver, ledger.ActionPayoutCreator)
	if err != nil {
		return err
	}

	refundCreator := order.CreatorDeposited && !fromSettled
	refundResolver := order.ResolverDeposited && !toSettled
	if !refundCreator && !refundResolver {
		return ErrNoDeposits
	}

	if !c.inflight.acquire(orderID) {
		return ErrOrderBusy
	}
	defer c.inflight.release(orderID)

	logger := c.logger.With(zap.Uint("order id", orderID))

	if refundCreator {
		addr := order.CreatorAddress(order.FromAsset.Family())
		if addr == "" {
			return fmt.Errorf("%w: creator %v", ErrMissingAddress, order.FromAsset.Family())
		}
		txid, err := c.sendOnce(ctx, ledger.ActionRefundCreator, orderID, order.FromAsset, addr, order.FromAmount)
		if err != nil {
			return err
		}
		logger.Info("creator leg refunded", zap.String("txid", txid))
	}
	if refundResolver {
		addr := order.ResolverAddress(order.ToAsset.Family())
		if addr == "" {
			return fmt.Errorf("%w: resolver %v", ErrMissingAddress, order.ToAsset.Family())
		}
		txid, err := c.sendOnce(ctx, ledger.ActionRefundResolver, orderID, order.ToAsset, addr, order.ToAmount)
		if err != nil {
			return err
		}
		logger.Info("resolver leg refunded", zap.String("txid", txid))
	}

	if err := c.store.Update(orderID, func(o *model.Order) error {
		if o.Status == model.Completed {
			return ErrRefundNotNeeded
		}
		o.Status = model.Cancelled
		return nil
	}); err != nil {
		return err
	}

	logger.Info("refund processed")
	return nil
}

// legSettled reports whether any of the given actions moved the leg's funds
// out of custody already. A payout and a refund of the same leg are mutually
// exclusive, both count as settled.
func (c *Coordinator) legSettled(orderID uint, actions ...ledger.Action) (bool, error) {
	for _, action := range actions {
		_, done, err := c.ledger.Check(action, orderID)
		if err != nil {
			return false, fmt.Errorf("failed to check leg ledger: %w", err)
		}
		if done {
			return true, nil
		}
	}
	return false, nil
}
