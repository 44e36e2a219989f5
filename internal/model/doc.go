// Package model defines shared data types used across bidwatch.
//
// Conventions:
//   - Amounts: int64 whole currency units, never negative
//   - Products: opaque names, compared by string identity
//   - IDs: uuid.UUID for accepted bids
package model
