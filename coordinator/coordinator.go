// Package coordinator drives the order lifecycle: which operation is legal in
// which status, who may invoke it, and how the two legs of a swap are released
// or refunded from custody.
package coordinator

import (
	"context"
	"fmt"
	"time"

	"github.com/intentswaps/swapd/chain"
	"github.com/intentswaps/swapd/commit"
	"github.com/intentswaps/swapd/ledger"
	"github.com/intentswaps/swapd/model"
	"github.com/intentswaps/swapd/store"
	"go.uber.org/zap"
)

const DefaultMinTimeout = 5 * time.Minute

type Coordinator struct {
	logger    *zap.Logger
	store     store.Store
	chains    chain.Registry
	ledger    ledger.Ledger
	committer commit.Committer
	inflight  *inFlight

	now        func() time.Time
	minTimeout time.Duration
}

type Option func(*Coordinator)

// WithClock overrides the time source, used by tests to control expiry.
func WithClock(now func() time.Time) Option {
	return func(c *Coordinator) {
		c.now = now
	}
}

func WithMinTimeout(min time.Duration) Option {
	return func(c *Coordinator) {
		c.minTimeout = min
	}
}

func New(logger *zap.Logger, orders store.Store, chains chain.Registry, legs ledger.Ledger, committer commit.Committer, opts ...Option) *Coordinator {
	c := &Coordinator{
		logger:    logger,
		store:     orders,
		chains:    chains,
		ledger:    legs,
		committer: committer,
		inflight:  newInFlight(),

		now:        time.Now,
		minTimeout: DefaultMinTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type CreateOrderRequest struct {
	FromAsset  model.Asset
	ToAsset    model.Asset
	FromAmount uint64
	ToAmount   uint64

	SecretHash string
	Timeout    time.Duration

	// Creator's receive addresses. The creator needs one for the to asset's
	// family (payout) and one for the from asset's family (refund).
	ReceiveAddresses model.Addresses
}

// CreateOrder validates the request and stores a new order in AwaitingDeposit.
// It returns the order id together with the custodial deposit addresses.
func (c *Coordinator) CreateOrder(_ context.Context, caller string, req CreateOrderRequest) (uint, model.Addresses, error) {
	if req.FromAmount == 0 || req.ToAmount == 0 {
		return 0, model.Addresses{}, ErrInvalidAmount
	}
	if req.Timeout < c.minTimeout {
		return 0, model.Addresses{}, fmt.Errorf("%w: %v < %v", ErrTimeoutTooShort, req.Timeout, c.minTimeout)
	}
	if req.SecretHash == "" {
		return 0, model.Addresses{}, ErrInvalidSecretHash
	}
	for _, asset := range []model.Asset{req.FromAsset, req.ToAsset} {
		if err := asset.Validate(); err != nil {
			return 0, model.Addresses{}, err
		}
		if _, err := c.chains.For(asset); err != nil {
			return 0, model.Addresses{}, err
		}
	}
	if err := requireAddress(req.ReceiveAddresses, req.FromAsset.Chain); err != nil {
		return 0, model.Addresses{}, err
	}
	if err := requireAddress(req.ReceiveAddresses, req.ToAsset.Chain); err != nil {
		return 0, model.Addresses{}, err
	}

	now := c.now()
	order := model.Order{
		Creator:           caller,
		FromAsset:         req.FromAsset,
		ToAsset:           req.ToAsset,
		FromAmount:        req.FromAmount,
		ToAmount:          req.ToAmount,
		SecretHash:        req.SecretHash,
		CreatorBtcAddress: req.ReceiveAddresses.Btc,
		CreatorEvmAddress: req.ReceiveAddresses.Evm,
		ExpiresAt:         now.Add(req.Timeout),
		Status:            model.AwaitingDeposit,
	}
	if err := c.store.Insert(&order); err != nil {
		return 0, model.Addresses{}, err
	}

	c.logger.Info("order created",
		zap.Uint("order id", order.ID),
		zap.String("creator", caller),
		zap.Stringer("from", req.FromAsset),
		zap.Stringer("to", req.ToAsset),
	)
	return order.ID, c.chains.CustodialAddresses(), nil
}

// ConfirmDeposit verifies the creator's deposit against the from chain and
// advances the order to DepositReceived.
func (c *Coordinator) ConfirmDeposit(ctx context.Context, caller string, orderID uint, txid string) error {
	order, err := c.store.Get(orderID)
	if err != nil {
		return err
	}
	if order.Creator != caller {
		return ErrNotCreator
	}
	if order.CreatorDeposited {
		return ErrDepositAlreadyConfirmed
	}
	if order.Status != model.AwaitingDeposit {
		return fmt.Errorf("%w: %v", ErrWrongStatus, order.Status)
	}

	if !c.inflight.acquire(orderID) {
		return ErrOrderBusy
	}
	defer c.inflight.release(orderID)

	adapter, err := c.chains.For(order.FromAsset)
	if err != nil {
		return err
	}
	verified, err := adapter.VerifyDeposit(ctx, order.FromAsset, adapter.CustodialAddress(), order.FromAmount, txid)
	if err != nil {
		return fmt.Errorf("failed to verify deposit: %w", err)
	}
	if !verified {
		return ErrDepositNotVerified
	}

	// The guard conditions are checked again under the store lock, the order
	// may have moved while the verification was in flight.
	if err := c.store.Update(orderID, func(o *model.Order) error {
		if o.CreatorDeposited {
			return ErrDepositAlreadyConfirmed
		}
		if o.Status != model.AwaitingDeposit {
			return fmt.Errorf("%w: %v", ErrWrongStatus, o.Status)
		}
		o.CreatorTxid = txid
		o.CreatorDeposited = true
		o.Status = model.DepositReceived
		return nil
	}); err != nil {
		return err
	}

	c.logger.Info("creator deposit confirmed", zap.Uint("order id", orderID), zap.String("txid", txid))
	return nil
}

// AcceptOrder assigns the caller as the order's resolver. First acceptance
// wins, the status does not change until the resolver's deposit is confirmed.
func (c *Coordinator) AcceptOrder(_ context.Context, caller string, orderID uint, addrs model.Addresses) (model.Addresses, error) {
	order, err := c.store.Get(orderID)
	if err != nil {
		return model.Addresses{}, err
	}
	if order.Status != model.DepositReceived {
		return model.Addresses{}, ErrNotOpenForAcceptance
	}
	if order.Creator == caller {
		return model.Addresses{}, ErrSelfAccept
	}
	if order.Resolver != "" {
		return model.Addresses{}, ErrAlreadyAccepted
	}
	if err := requireAddress(addrs, order.FromAsset.Chain); err != nil {
		return model.Addresses{}, err
	}
	if err := requireAddress(addrs, order.ToAsset.Chain); err != nil {
		return model.Addresses{}, err
	}
	if err := checkSelfDealing(&order, addrs); err != nil {
		return model.Addresses{}, err
	}

	if err := c.store.Update(orderID, func(o *model.Order) error {
		if o.Status != model.DepositReceived {
			return ErrNotOpenForAcceptance
		}
		if o.Resolver != "" {
			return ErrAlreadyAccepted
		}
		o.Resolver = caller
		o.SetResolverAddresses(addrs)
		return nil
	}); err != nil {
		return model.Addresses{}, err
	}

	c.logger.Info("order accepted", zap.Uint("order id", orderID), zap.String("resolver", caller))
	return c.chains.CustodialAddresses(), nil
}

// ConfirmResolverDeposit verifies the resolver's deposit against the to chain
// and advances the order to ResolverDeposited.
func (c *Coordinator) ConfirmResolverDeposit(ctx context.Context, caller string, orderID uint, txid string) error {
	order, err := c.store.Get(orderID)
	if err != nil {
		return err
	}
	if order.Resolver == "" || order.Resolver != caller {
		return ErrNotResolver
	}
	if order.ResolverDeposited {
		return ErrResolverAlreadyConfirmed
	}
	if order.Status != model.DepositReceived {
		return fmt.Errorf("%w: %v", ErrWrongStatus, order.Status)
	}

	if !c.inflight.acquire(orderID) {
		return ErrOrderBusy
	}
	defer c.inflight.release(orderID)

	adapter, err := c.chains.For(order.ToAsset)
	if err != nil {
		return err
	}
	verified, err := adapter.VerifyDeposit(ctx, order.ToAsset, adapter.CustodialAddress(), order.ToAmount, txid)
	if err != nil {
		return fmt.Errorf("failed to verify deposit: %w", err)
	}
	if !verified {
		return ErrDepositNotVerified
	}

	if err := c.store.Update(orderID, func(o *model.Order) error {
		if o.ResolverDeposited {
			return ErrResolverAlreadyConfirmed
		}
		if o.Status != model.DepositReceived {
			return fmt.Errorf("%w: %v", ErrWrongStatus, o.Status)
		}
		o.ResolverTxid = txid
		o.ResolverDeposited = true
		o.Status = model.ResolverDeposited
		return nil
	}); err != nil {
		return err
	}

	c.logger.Info("resolver deposit confirmed", zap.Uint("order id", orderID), zap.String("txid", txid))
	return nil
}

func requireAddress(addrs model.Addresses, chain model.Chain) error {
	address := addrs.For(chain.Family())
	if address == "" {
		return fmt.Errorf("%w: %v", ErrMissingAddress, chain.Family())
	}
	return model.ValidateAddress(chain, address)
}

// checkSelfDealing rejects resolver addresses textually identical to the
// creator's for the same family.
func checkSelfDealing(order *model.Order, addrs model.Addresses) error {
	for _, family := range []model.Family{model.FamilyBitcoin, model.FamilyEVM} {
		resolver := addrs.For(family)
		if resolver != "" && resolver == order.CreatorAddress(family) {
			return fmt.Errorf("%w: %v", ErrSameReceiveAddress, family)
		}
	}
	return nil
}
