package config

import "time"

// Config is the root configuration for bidwatch binaries.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Connection ConnectionConfig `yaml:"connection"`
	Bet        BetConfig        `yaml:"bet"`
	Feed       FeedConfig       `yaml:"feed"`
	DevServer  DevServerConfig  `yaml:"devserver"`
}

// ServerConfig points the client at the bid authority.
type ServerConfig struct {
	BaseURL    string        `yaml:"base_url"`
	WSURL      string        `yaml:"ws_url"`
	Timeout    time.Duration `yaml:"timeout"`
	MaxRetries int           `yaml:"max_retries"`
}

// ConnectionConfig holds push-channel settings.
type ConnectionConfig struct {
	PingTimeout        time.Duration `yaml:"ping_timeout"`
	WriteTimeout       time.Duration `yaml:"write_timeout"`
	BufferSize         int           `yaml:"buffer_size"`
	ReconnectBaseDelay time.Duration `yaml:"reconnect_base_delay"`
	ReconnectMaxDelay  time.Duration `yaml:"reconnect_max_delay"`
}

// BetConfig holds submission form settings.
type BetConfig struct {
	DefaultStake int64 `yaml:"default_stake"`
}

// FeedConfig holds reconciliation settings for the feed engine.
type FeedConfig struct {
	ReconcileInterval time.Duration `yaml:"reconcile_interval"`
}

// DevServerConfig configures the development bid authority.
type DevServerConfig struct {
	ListenAddr string   `yaml:"listen_addr"`
	Products   []string `yaml:"products"`
	Database   DBConfig `yaml:"database"`
}

// DBConfig holds an optional postgres connection for the devserver store.
// When Enabled is false bids live in memory only.
type DBConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"ssl_mode"`
	MaxConns int    `yaml:"max_conns"`
	MinConns int    `yaml:"min_conns"`
}

// Default values for optional configuration fields.
const (
	DefaultBaseURL            = "http://localhost:8080"
	DefaultWSURL              = "ws://localhost:8080/ws"
	DefaultTimeout            = 10 * time.Second
	DefaultMaxRetries         = 3
	DefaultPingTimeout        = 60 * time.Second
	DefaultWriteTimeout       = 5 * time.Second
	DefaultBufferSize         = 256
	DefaultReconnectBaseDelay = 1 * time.Second
	DefaultReconnectMaxDelay  = 30 * time.Second
	DefaultStake              = 50
	DefaultReconcileInterval  = 30 * time.Second
	DefaultListenAddr         = ":8080"
	DefaultDBPort             = 5432
	DefaultDBSSLMode          = "prefer"
	DefaultDBMaxConns         = 10
	DefaultDBMinConns         = 2
)

func (c *Config) applyDefaults() {
	if c.Server.BaseURL == "" {
		c.Server.BaseURL = DefaultBaseURL
	}
	if c.Server.WSURL == "" {
		c.Server.WSURL = DefaultWSURL
	}
	if c.Server.Timeout == 0 {
		c.Server.Timeout = DefaultTimeout
	}
	if c.Server.MaxRetries == 0 {
		c.Server.MaxRetries = DefaultMaxRetries
	}

	if c.Connection.PingTimeout == 0 {
		c.Connection.PingTimeout = DefaultPingTimeout
	}
	if c.Connection.WriteTimeout == 0 {
		c.Connection.WriteTimeout = DefaultWriteTimeout
	}
	if c.Connection.BufferSize == 0 {
		c.Connection.BufferSize = DefaultBufferSize
	}
	if c.Connection.ReconnectBaseDelay == 0 {
		c.Connection.ReconnectBaseDelay = DefaultReconnectBaseDelay
	}
	if c.Connection.ReconnectMaxDelay == 0 {
		c.Connection.ReconnectMaxDelay = DefaultReconnectMaxDelay
	}

	if c.Bet.DefaultStake == 0 {
		c.Bet.DefaultStake = DefaultStake
	}

	if c.Feed.ReconcileInterval == 0 {
		c.Feed.ReconcileInterval = DefaultReconcileInterval
	}

	if c.DevServer.ListenAddr == "" {
		c.DevServer.ListenAddr = DefaultListenAddr
	}
	if c.DevServer.Database.Enabled {
		db := &c.DevServer.Database
		if db.Port == 0 {
			db.Port = DefaultDBPort
		}
		if db.SSLMode == "" {
			db.SSLMode = DefaultDBSSLMode
		}
		if db.MaxConns == 0 {
			db.MaxConns = DefaultDBMaxConns
		}
		if db.MinConns == 0 {
			db.MinConns = DefaultDBMinConns
		}
	}
}
