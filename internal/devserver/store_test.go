package devserver

import (
	"context"
	"errors"
	"testing"
)

func TestMemStoreHighestBidEmpty(t *testing.T) {
	s := NewMemStore()
	defer s.Close()

	_, ok, err := s.HighestBid(context.Background(), "Vintage Camera")
	if err != nil {
		t.Fatalf("HighestBid() error = %v", err)
	}
	if ok {
		t.Error("expected ok=false for product with no bids")
	}
}

func TestMemStorePlaceBid(t *testing.T) {
	s := NewMemStore()
	defer s.Close()
	ctx := context.Background()

	bid, err := s.PlaceBid(ctx, "Vintage Camera", "alice", 100)
	if err != nil {
		t.Fatalf("PlaceBid() error = %v", err)
	}
	if bid.User != "alice" || bid.Amount != 100 {
		t.Errorf("bid = %+v, want alice/100", bid)
	}
	if bid.ID.String() == "00000000-0000-0000-0000-000000000000" {
		t.Error("expected a generated bid ID")
	}

	got, ok, err := s.HighestBid(ctx, "Vintage Camera")
	if err != nil || !ok {
		t.Fatalf("HighestBid() = ok=%v, err=%v", ok, err)
	}
	if got.ID != bid.ID {
		t.Errorf("highest bid ID = %s, want %s", got.ID, bid.ID)
	}
}

func TestMemStoreRejectsNonIncreasing(t *testing.T) {
	s := NewMemStore()
	defer s.Close()
	ctx := context.Background()

	if _, err := s.PlaceBid(ctx, "Vintage Camera", "alice", 100); err != nil {
		t.Fatalf("PlaceBid() error = %v", err)
	}

	for _, amount := range []int64{100, 50} {
		_, err := s.PlaceBid(ctx, "Vintage Camera", "bob", amount)
		if !errors.Is(err, ErrBetTooLow) {
			t.Errorf("PlaceBid(%d) error = %v, want ErrBetTooLow", amount, err)
		}
	}

	// The standing bid is untouched.
	got, _, _ := s.HighestBid(ctx, "Vintage Camera")
	if got.User != "alice" {
		t.Errorf("highest bid user = %q, want alice", got.User)
	}

	// A strictly higher bid still goes through.
	if _, err := s.PlaceBid(ctx, "Vintage Camera", "bob", 101); err != nil {
		t.Errorf("PlaceBid(101) error = %v", err)
	}
}

func TestMemStoreProductsIndependent(t *testing.T) {
	s := NewMemStore()
	defer s.Close()
	ctx := context.Background()

	if _, err := s.PlaceBid(ctx, "Vintage Camera", "alice", 500); err != nil {
		t.Fatalf("PlaceBid() error = %v", err)
	}
	if _, err := s.PlaceBid(ctx, "Mechanical Keyboard", "bob", 10); err != nil {
		t.Errorf("low bid on a different product rejected: %v", err)
	}
}
