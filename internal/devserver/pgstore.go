package devserver

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/openbid/bidwatch/internal/config"
	"github.com/openbid/bidwatch/internal/model"
)

// schema for the bids table. Applied by Migrate.
const schema = `
CREATE TABLE IF NOT EXISTS bids (
	id           UUID PRIMARY KEY,
	product_name TEXT NOT NULL,
	username     TEXT NOT NULL,
	amount       BIGINT NOT NULL,
	placed_at    TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS bids_product_amount_idx
	ON bids (product_name, amount DESC, placed_at DESC);
`

// BuildConnString builds a PostgreSQL connection string from config.
func BuildConnString(cfg config.DBConfig) string {
	// URL-encode password to handle special characters
	escapedPassword := url.QueryEscape(cfg.Password)

	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = "prefer"
	}

	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		cfg.User,
		escapedPassword,
		cfg.Host,
		cfg.Port,
		cfg.Name,
		sslMode,
	)
}

// PGStore persists bids in PostgreSQL.
type PGStore struct {
	pool *pgxpool.Pool
}

// NewPGStore connects a pool and verifies the connection.
func NewPGStore(ctx context.Context, cfg config.DBConfig) (*PGStore, error) {
	connStr := BuildConnString(cfg)

	poolCfg, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		return nil, fmt.Errorf("parse connection string: %w", err)
	}

	poolCfg.MinConns = int32(cfg.MinConns)
	poolCfg.MaxConns = int32(cfg.MaxConns)

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &PGStore{pool: pool}, nil
}

// Migrate applies the bids schema.
func (s *PGStore) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// HighestBid returns the standing highest bid for a product.
func (s *PGStore) HighestBid(ctx context.Context, product string) (model.Bid, bool, error) {
	const q = `
		SELECT id, username, amount, placed_at
		FROM bids
		WHERE product_name = $1
		ORDER BY amount DESC, placed_at DESC
		LIMIT 1`

	var bid model.Bid
	bid.Product = product

	err := s.pool.QueryRow(ctx, q, product).Scan(&bid.ID, &bid.User, &bid.Amount, &bid.PlacedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Bid{}, false, nil
	}
	if err != nil {
		return model.Bid{}, false, fmt.Errorf("query highest bid: %w", err)
	}

	return bid, true, nil
}

// PlaceBid records a bid if it strictly beats the standing highest.
// The check and insert run in one transaction so concurrent bids on the
// same product serialize.
func (s *PGStore) PlaceBid(ctx context.Context, product, user string, amount int64) (model.Bid, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return model.Bid{}, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	var current int64
	err = tx.QueryRow(ctx,
		`SELECT amount FROM bids WHERE product_name = $1 ORDER BY amount DESC LIMIT 1 FOR UPDATE`,
		product,
	).Scan(&current)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return model.Bid{}, fmt.Errorf("query standing bid: %w", err)
	}
	if err == nil && amount <= current {
		return model.Bid{}, ErrBetTooLow
	}

	bid := model.Bid{
		ID:       uuid.New(),
		Product:  product,
		User:     user,
		Amount:   amount,
		PlacedAt: time.Now().UTC(),
	}

	if _, err := tx.Exec(ctx,
		`INSERT INTO bids (id, product_name, username, amount, placed_at) VALUES ($1, $2, $3, $4, $5)`,
		bid.ID, bid.Product, bid.User, bid.Amount, bid.PlacedAt,
	); err != nil {
		return model.Bid{}, fmt.Errorf("insert bid: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return model.Bid{}, fmt.Errorf("commit: %w", err)
	}

	return bid, nil
}

// Close releases the pool.
func (s *PGStore) Close() {
	s.pool.Close()
}
