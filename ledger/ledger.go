// Package ledger tracks which legs of an order have already been paid out or
// refunded. Every send goes through the ledger first, so retrying a partially
// completed release or refund never resends a settled leg.
package ledger

import (
	"fmt"
	"sync"
)

type Action string

var (
	ActionPayoutCreator  Action = "payout_creator"
	ActionPayoutResolver Action = "payout_resolver"
	ActionRefundCreator  Action = "refund_creator"
	ActionRefundResolver Action = "refund_resolver"
)

type Ledger interface {

	// Record keeps track of an action having been performed for the order,
	// together with the transaction id of the send.
	Record(action Action, orderID uint, txid string) error

	// Check returns the recorded txid if the action has been performed for the
	// order previously.
	Check(action Action, orderID uint) (string, bool, error)
}

type inMemLedger struct {
	mu      *sync.RWMutex
	actions map[string]string
}

func NewInMemLedger() Ledger {
	return &inMemLedger{
		mu:      new(sync.RWMutex),
		actions: map[string]string{},
	}
}

func (l *inMemLedger) Record(action Action, orderID uint, txid string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.actions[actionKey(action, orderID)] = txid
	return nil
}

func (l *inMemLedger) Check(action Action, orderID uint) (string, bool, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	txid, ok := l.actions[actionKey(action, orderID)]
	return txid, ok, nil
}

func actionKey(action Action, orderID uint) string {
	return fmt.Sprintf("%v-%v", action, orderID)
}
