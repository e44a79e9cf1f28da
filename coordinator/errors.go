package coordinator

import "errors"

// Guard rejections. Every failed guard returns one of these and leaves the
// order untouched. Adapter failures are wrapped separately and are retriable.
var (
	// validation
	ErrInvalidAmount     = errors.New("amounts must be greater than zero")
	ErrTimeoutTooShort   = errors.New("timeout below minimum")
	ErrInvalidSecretHash = errors.New("secret hash must not be empty")
	ErrMissingAddress    = errors.New("receive address not provided for asset family")

	// authorization
	ErrNotCreator  = errors.New("only order creator can perform this action")
	ErrNotResolver = errors.New("only resolver can confirm their deposit")
	ErrSelfAccept  = errors.New("cannot accept your own order")

	// state
	ErrWrongStatus              = errors.New("operation not allowed in current order status")
	ErrDepositAlreadyConfirmed  = errors.New("deposit already confirmed")
	ErrNotOpenForAcceptance     = errors.New("order not ready for acceptance")
	ErrAlreadyAccepted          = errors.New("order already has a resolver")
	ErrSameReceiveAddress       = errors.New("resolver receive address matches creator's for the same asset family")
	ErrResolverAlreadyConfirmed = errors.New("resolver deposit already confirmed")
	ErrResolverNotDeposited     = errors.New("resolver has not deposited funds yet")
	ErrOrderExpired             = errors.New("order has expired")
	ErrSecretMismatch           = errors.New("secret does not match hash")
	ErrOrderCompleted           = errors.New("cannot cancel completed order")
	ErrOrderCancelled           = errors.New("order already cancelled")
	ErrResolverDeposited        = errors.New("cannot cancel after resolver has deposited, wait for expiry to process refund")
	ErrNotExpired               = errors.New("order has not expired yet")
	ErrRefundNotNeeded          = errors.New("order completed successfully, no refund needed")
	ErrNoDeposits               = errors.New("no deposits to refund")

	// external / concurrency
	ErrDepositNotVerified = errors.New("transaction not found or insufficient amount")
	ErrOrderBusy          = errors.New("another operation is in flight for this order")
)
