package model

import (
	"time"

	"gorm.io/gorm"
)

type Status uint

// dont change sequence of status fields, persisted orders reference them by value
const (
	Unknown Status = iota
	AwaitingDeposit
	DepositReceived
	ResolverDeposited
	Completed
	Cancelled
)

func (s Status) Terminal() bool {
	return s == Completed || s == Cancelled
}

func (s Status) String() string {
	switch s {
	case AwaitingDeposit:
		return "awaiting_deposit"
	case DepositReceived:
		return "deposit_received"
	case ResolverDeposited:
		return "resolver_deposited"
	case Completed:
		return "completed"
	case Cancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Order is one proposed cross-chain exchange between a creator and a resolver.
// The embedded gorm.Model ID doubles as the order id, rows are never deleted so
// ids are monotonic and never reused.
type Order struct {
	gorm.Model

	Creator  string `json:"creator" gorm:"index"`
	Resolver string `json:"resolver" gorm:"index"`

	FromAsset  Asset  `json:"fromAsset" gorm:"embedded;embeddedPrefix:from_"`
	ToAsset    Asset  `json:"toAsset" gorm:"embedded;embeddedPrefix:to_"`
	FromAmount uint64 `json:"fromAmount"`
	ToAmount   uint64 `json:"toAmount"`

	SecretHash string `json:"secretHash"`
	Secret     string `json:"secret"`

	CreatorBtcAddress  string `json:"creatorBtcAddress" gorm:"index"`
	CreatorEvmAddress  string `json:"creatorEvmAddress" gorm:"index"`
	ResolverBtcAddress string `json:"resolverBtcAddress" gorm:"index"`
	ResolverEvmAddress string `json:"resolverEvmAddress" gorm:"index"`

	CreatorDeposited  bool   `json:"creatorDeposited"`
	ResolverDeposited bool   `json:"resolverDeposited"`
	CreatorTxid       string `json:"creatorTxid"`
	ResolverTxid      string `json:"resolverTxid"`

	ExpiresAt time.Time `json:"expiresAt"`
	Status    Status    `json:"status"`
}

func (o *Order) CreatorAddress(family Family) string {
	switch family {
	case FamilyBitcoin:
		return o.CreatorBtcAddress
	case FamilyEVM:
		return o.CreatorEvmAddress
	default:
		return ""
	}
}

func (o *Order) ResolverAddress(family Family) string {
	switch family {
	case FamilyBitcoin:
		return o.ResolverBtcAddress
	case FamilyEVM:
		return o.ResolverEvmAddress
	default:
		return ""
	}
}

func (o *Order) SetResolverAddresses(addrs Addresses) {
	o.ResolverBtcAddress = addrs.Btc
	o.ResolverEvmAddress = addrs.Evm
}

func (o *Order) Expired(now time.Time) bool {
	return !now.Before(o.ExpiresAt)
}
