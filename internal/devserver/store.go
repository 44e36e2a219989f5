package devserver

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/openbid/bidwatch/internal/model"
)

// Errors
var (
	// ErrBetTooLow means the bet does not beat the standing highest bid.
	ErrBetTooLow = errors.New("bet does not beat the current highest")
)

// Store holds accepted bids.
type Store interface {
	// HighestBid returns the standing highest bid for a product.
	// ok is false when the product has no bids yet.
	HighestBid(ctx context.Context, product string) (bid model.Bid, ok bool, err error)

	// PlaceBid records a bid if it strictly beats the standing highest.
	PlaceBid(ctx context.Context, product, user string, amount int64) (model.Bid, error)

	// Close releases store resources.
	Close()
}

// MemStore is the default in-memory store.
type MemStore struct {
	mu      sync.RWMutex
	highest map[string]model.Bid
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{highest: make(map[string]model.Bid)}
}

// HighestBid returns the standing highest bid for a product.
func (s *MemStore) HighestBid(ctx context.Context, product string) (model.Bid, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	bid, ok := s.highest[product]
	return bid, ok, nil
}

// PlaceBid records a bid if it strictly beats the standing highest.
func (s *MemStore) PlaceBid(ctx context.Context, product, user string, amount int64) (model.Bid, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if current, ok := s.highest[product]; ok && amount <= current.Amount {
		return model.Bid{}, ErrBetTooLow
	}

	bid := model.Bid{
		ID:       uuid.New(),
		Product:  product,
		User:     user,
		Amount:   amount,
		PlacedAt: time.Now().UTC(),
	}
	s.highest[product] = bid
	return bid, nil
}

// Close is a no-op for the in-memory store.
func (s *MemStore) Close() {}
