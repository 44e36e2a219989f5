// Package api implements the REST client for the bid authority.
//
// Pull queries (GET /product-list, GET /highest-bet) retry transient
// failures with jittered exponential backoff. Bet submission
// (POST /place-bet) is sent exactly once; retrying a bet is the
// user's decision, never the client's.
package api
