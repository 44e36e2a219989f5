package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/openbid/bidwatch/internal/model"
)

// highestBetWire is the response body for GET /highest-bet.
type highestBetWire struct {
	User   string `json:"user"`
	Amount int64  `json:"amount"`
}

// placeBetWire is the request body for POST /place-bet.
type placeBetWire struct {
	Username    string `json:"username"`
	ProductName string `json:"product_name"`
	Price       int64  `json:"price"`
}

// bidWire is the bid echoed back by a successful POST /place-bet.
type bidWire struct {
	ID          string    `json:"id"`
	ProductName string    `json:"product_name"`
	User        string    `json:"user"`
	Amount      int64     `json:"amount"`
	PlacedAt    time.Time `json:"placed_at"`
}

// ProductList fetches the catalog of biddable product names.
func (c *Client) ProductList(ctx context.Context) ([]string, error) {
	var products []string
	if err := c.get(ctx, "/product-list", nil, &products); err != nil {
		return nil, fmt.Errorf("get product list: %w", err)
	}
	return products, nil
}

// HighestBet fetches the authoritative highest bid for a product.
// A product with no bids yet yields an empty snapshot, not an error;
// only transport failures and server errors are returned as errors.
func (c *Client) HighestBet(ctx context.Context, product string) (model.BidSnapshot, error) {
	query := url.Values{}
	query.Set("product_name", product)

	var wire highestBetWire
	if err := c.get(ctx, "/highest-bet", query, &wire); err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.IsNotFound() {
			return model.BidSnapshot{Product: product}, nil
		}
		return model.BidSnapshot{}, fmt.Errorf("get highest bet for %s: %w", product, err)
	}

	return model.BidSnapshot{
		Product: product,
		User:    wire.User,
		Amount:  wire.Amount,
	}, nil
}

// PlaceBet submits a bet and returns the accepted bid. Any status other
// than 201 is returned as an *APIError. Never retried.
func (c *Client) PlaceBet(ctx context.Context, req model.BetRequest) (model.Bid, error) {
	body := placeBetWire{
		Username:    req.Username,
		ProductName: req.Product,
		Price:       req.Amount,
	}

	var wire bidWire
	status, err := c.post(ctx, "/place-bet", body, &wire)
	if err != nil {
		return model.Bid{}, fmt.Errorf("place bet on %s: %w", req.Product, err)
	}
	if status != http.StatusCreated {
		return model.Bid{}, &APIError{
			StatusCode: status,
			Message:    "bet not created",
		}
	}

	id, err := uuid.Parse(wire.ID)
	if err != nil {
		// The bet was accepted; a malformed id only degrades the echo.
		c.logger.Warn("unparseable bid id in response", "id", wire.ID, "error", err)
	}

	return model.Bid{
		ID:       id,
		Product:  wire.ProductName,
		User:     wire.User,
		Amount:   wire.Amount,
		PlacedAt: wire.PlacedAt,
	}, nil
}
