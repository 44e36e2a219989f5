package model

import (
	"time"

	"github.com/google/uuid"
)

// Bid is a bid accepted by the bid authority.
type Bid struct {
	ID       uuid.UUID // Assigned by the server on acceptance
	Product  string    // Product the bid was placed on
	User     string    // Who placed it
	Amount   int64     // Whole currency units
	PlacedAt time.Time // Server acceptance time
}

// BidSnapshot is the authoritative highest bid for a product at the time
// of a pull query. A zero User means no bid exists yet for the product.
type BidSnapshot struct {
	Product string
	User    string
	Amount  int64
}

// Empty reports whether the snapshot carries no bid.
func (s BidSnapshot) Empty() bool {
	return s.User == ""
}

// BidUpdate is a push notification broadcast to every connected client
// whenever any bid is accepted for any product.
type BidUpdate struct {
	Product string
	User    string
	Amount  int64
}

// BidView is the single reconciled, display-ready highest-bid value for
// the current selection. The zero value means nothing to show.
type BidView struct {
	Product string
	User    string
	Amount  int64
}

// Empty reports whether there is nothing to display.
func (v BidView) Empty() bool {
	return v.Product == ""
}

// BetRequest is a bid submission. Built at submit time, discarded once
// its outcome is handled, never retried automatically.
type BetRequest struct {
	Username string
	Product  string
	Amount   int64
}
