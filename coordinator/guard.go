package coordinator

import "sync"

// inFlight marks orders that have an operation awaiting a chain adapter call.
// The store lock does not cover those awaits, so a second conflicting
// operation on the same order is rejected instead of racing the first.
type inFlight struct {
	mu   sync.Mutex
	busy map[uint]struct{}
}

func newInFlight() *inFlight {
	return &inFlight{busy: map[uint]struct{}{}}
}

func (f *inFlight) acquire(orderID uint) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.busy[orderID]; ok {
		return false
	}
	f.busy[orderID] = struct{}{}
	return true
}

func (f *inFlight) release(orderID uint) {
	f.mu.Lock()
	defer f.mu.Unlock()

	delete(f.busy, orderID)
}
