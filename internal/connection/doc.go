// Package connection implements the push-channel client.
//
// The client:
//   - Owns exactly one WebSocket connection to the bid authority
//   - Delivers every broadcast message; filtering happens downstream
//   - Redials with exponential backoff when the connection drops
//   - Is acquired with Connect and released with Close, never shared
//     as a process-wide singleton
package connection
