package connection

import (
	"errors"
	"time"
)

// Errors
var (
	ErrNotConnected    = errors.New("not connected")
	ErrStaleConnection = errors.New("connection stale (no ping)")
	ErrAlreadyClosed   = errors.New("already closed")
)

// TimestampedMessage wraps raw message data with receive timestamp.
type TimestampedMessage struct {
	Data       []byte    // Raw message bytes from WebSocket
	ReceivedAt time.Time // Local timestamp when ReadMessage() returned
}

// ClientConfig configures a push-channel client.
type ClientConfig struct {
	URL                string        // WebSocket URL (e.g., ws://localhost:8080/ws)
	PingTimeout        time.Duration // Max time without ping before considering connection stale
	WriteTimeout       time.Duration // Write deadline for sends
	BufferSize         int           // Message channel buffer size
	ReconnectBaseDelay time.Duration // First redial wait after a dropped connection
	ReconnectMaxDelay  time.Duration // Redial wait ceiling
}

// DefaultClientConfig returns sensible defaults.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		PingTimeout:        60 * time.Second,
		WriteTimeout:       5 * time.Second,
		BufferSize:         256,
		ReconnectBaseDelay: time.Second,
		ReconnectMaxDelay:  30 * time.Second,
	}
}
