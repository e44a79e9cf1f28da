package store

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/intentswaps/swapd/model"
	"gorm.io/gorm"
)

var ErrOrderNotFound = errors.New("order not found")

// Store owns the order table. Orders are inserted and mutated, never deleted,
// so ids stay monotonic and terminal orders remain queryable for history.
type Store interface {
	Insert(order *model.Order) error
	Get(id uint) (model.Order, error)

	// Update applies the mutator to the current row and persists the result.
	// The read-modify-write runs under the store lock, an error from the
	// mutator aborts without writing.
	Update(id uint, mutate func(*model.Order) error) error

	// Pending returns orders waiting for a resolver, excluding expired ones.
	Pending(now time.Time) ([]model.Order, error)

	// Expired returns orders past their deadline that are not settled and
	// still hold at least one deposit.
	Expired(now time.Time) ([]model.Order, error)

	// ByParty returns orders the given identity created or resolved.
	ByParty(party string) ([]model.Order, error)

	// ByWallet returns orders where either side's receive address on either
	// leg matches the given address.
	ByWallet(address string) ([]model.Order, error)
}

type store struct {
	mu *sync.RWMutex
	db *gorm.DB
}

func NewStore(dialector gorm.Dialector, opts ...gorm.Option) (Store, error) {
	db, err := gorm.Open(dialector, opts...)
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&model.Order{}); err != nil {
		return nil, err
	}
	return &store{mu: new(sync.RWMutex), db: db}, nil
}

func (s *store) Insert(order *model.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if tx := s.db.Create(order); tx.Error != nil {
		return tx.Error
	}
	return nil
}

func (s *store) Get(id uint) (model.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var order model.Order
	if tx := s.db.First(&order, id); tx.Error != nil {
		if errors.Is(tx.Error, gorm.ErrRecordNotFound) {
			return model.Order{}, ErrOrderNotFound
		}
		return model.Order{}, tx.Error
	}
	return order, nil
}

func (s *store) Update(id uint, mutate func(*model.Order) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var order model.Order
	if tx := s.db.First(&order, id); tx.Error != nil {
		if errors.Is(tx.Error, gorm.ErrRecordNotFound) {
			return ErrOrderNotFound
		}
		return tx.Error
	}
	if err := mutate(&order); err != nil {
		return err
	}
	if tx := s.db.Save(&order); tx.Error != nil {
		return fmt.Errorf("failed to save order %v: %w", id, tx.Error)
	}
	return nil
}

func (s *store) Pending(now time.Time) ([]model.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var orders []model.Order
	tx := s.db.Where("status = ? AND expires_at > ?", model.DepositReceived, now).Find(&orders)
	return orders, tx.Error
}

func (s *store) Expired(now time.Time) ([]model.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var orders []model.Order
	tx := s.db.
		Where("expires_at <= ? AND status NOT IN ?", now, []model.Status{model.Completed, model.Cancelled}).
		Where("creator_deposited OR resolver_deposited").
		Find(&orders)
	return orders, tx.Error
}

func (s *store) ByParty(party string) ([]model.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var orders []model.Order
	tx := s.db.Where("creator = ? OR resolver = ?", party, party).Find(&orders)
	return orders, tx.Error
}

func (s *store) ByWallet(address string) ([]model.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var orders []model.Order
	tx := s.db.
		Where(
			"creator_btc_address = ? OR creator_evm_address = ? OR resolver_btc_address = ? OR resolver_evm_address = ?",
			address, address, address, address,
		).
		Find(&orders)
	return orders, tx.Error
}
