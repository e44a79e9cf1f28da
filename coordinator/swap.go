package coordinator

import (
	"context"
	"encoding/hex"
	"fmt"

	"github.com/intentswaps/swapd/ledger"
	"github.com/intentswaps/swapd/model"
	"go.uber.org/zap"
)

// RevealSecret completes the swap. The supplied secret must hash to the
// order's committed value, then both legs are released from custody: the from
// asset to the resolver, the to asset to the creator. Each leg is recorded in
// the leg ledger before the order is touched, so a retry after a partial
// failure only re-attempts the unsettled leg.
func (c *Coordinator) RevealSecret(ctx context.Context, caller string, orderID uint, secret []byte) error {
	order, err := c.store.Get(orderID)
	if err != nil {
		return err
	}
	if order.Creator != caller {
		return ErrNotCreator
	}
	switch order.Status {
	case model.ResolverDeposited:
	case model.AwaitingDeposit, model.DepositReceived:
		return ErrResolverNotDeposited
	default:
		return fmt.Errorf("%w: %v", ErrWrongStatus, order.Status)
	}
	if order.Expired(c.now()) {
		return ErrOrderExpired
	}
	if !c.committer.Verify(secret, order.SecretHash) {
		return ErrSecretMismatch
	}

	resolverAddr := order.ResolverAddress(order.FromAsset.Family())
	if resolverAddr == "" {
		return fmt.Errorf("%w: resolver %v", ErrMissingAddress, order.FromAsset.Family())
	}
	creatorAddr := order.CreatorAddress(order.ToAsset.Family())
	if creatorAddr == "" {
		return fmt.Errorf("%w: creator %v", ErrMissingAddress, order.ToAsset.Family())
	}

	if !c.inflight.acquire(orderID) {
		return ErrOrderBusy
	}
	defer c.inflight.release(orderID)

	logger := c.logger.With(zap.Uint("order id", orderID))

	resolverTx, err := c.sendOnce(ctx, ledger.ActionPayoutResolver, orderID, order.FromAsset, resolverAddr, order.FromAmount)
	if err != nil {
		return err
	}
	creatorTx, err := c.sendOnce(ctx, ledger.ActionPayoutCreator, orderID, order.ToAsset, creatorAddr, order.ToAmount)
	if err != nil {
		return err
	}

	if err := c.store.Update(orderID, func(o *model.Order) error {
		if o.Status != model.ResolverDeposited {
			return fmt.Errorf("%w: %v", ErrWrongStatus, o.Status)
		}
		o.Secret = hex.EncodeToString(secret)
		o.Status = model.Completed
		return nil
	}); err != nil {
		return err
	}

	logger.Info("swap completed",
		zap.String("resolver tx", resolverTx),
		zap.String("creator tx", creatorTx),
	)
	return nil
}

// sendOnce releases one leg from custody unless the leg ledger shows it was
// settled before.
func (c *Coordinator) sendOnce(ctx context.Context, action ledger.Action, orderID uint, asset model.Asset, to string, amount uint64) (string, error) {
	txid, done, err := c.ledger.Check(action, orderID)
	if err != nil {
		return "", fmt.Errorf("failed to check leg ledger: %w", err)
	}
	if done {
		c.logger.Info("leg already settled, skipping send",
			zap.Uint("order id", orderID),
			zap.String("action", string(action)),
			zap.String("txid", txid),
		)
		return txid, nil
	}

	adapter, err := c.chains.For(asset)
	if err != nil {
		return "", err
	}
	txid, err = adapter.Send(ctx, asset, to, amount)
	if err != nil {
		return "", fmt.Errorf("failed to send %v leg: %w", action, err)
	}
	if err := c.ledger.Record(action, orderID, txid); err != nil {
		// The funds moved. Failing the operation here would invite a resend on
		// retry, so keep going and let the order reach a terminal status.
		c.logger.Error("failed to record settled leg",
			zap.Uint("order id", orderID),
			zap.String("action", string(action)),
			zap.String("txid", txid),
			zap.Error(err),
		)
	}
	return txid, nil
}
