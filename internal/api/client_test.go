package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/openbid/bidwatch/internal/model"
)

// TestNewClient tests client construction with various options.
func TestNewClient(t *testing.T) {
	t.Run("default values", func(t *testing.T) {
		c := NewClient("http://bids.example.com")

		if c.baseURL != "http://bids.example.com" {
			t.Errorf("baseURL = %q, want %q", c.baseURL, "http://bids.example.com")
		}
		if c.httpClient.Timeout != 10*time.Second {
			t.Errorf("Timeout = %v, want %v", c.httpClient.Timeout, 10*time.Second)
		}
		if c.maxRetries != 3 {
			t.Errorf("maxRetries = %d, want %d", c.maxRetries, 3)
		}
		if c.logger == nil {
			t.Error("logger should not be nil")
		}
	})

	t.Run("with options", func(t *testing.T) {
		logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
		c := NewClient("http://bids.example.com",
			WithTimeout(5*time.Second),
			WithRetries(5, 2*time.Second),
			WithLogger(logger),
		)
		if c.httpClient.Timeout != 5*time.Second {
			t.Errorf("Timeout = %v, want %v", c.httpClient.Timeout, 5*time.Second)
		}
		if c.maxRetries != 5 {
			t.Errorf("maxRetries = %d, want %d", c.maxRetries, 5)
		}
		if c.retryBackoff != 2*time.Second {
			t.Errorf("retryBackoff = %v, want %v", c.retryBackoff, 2*time.Second)
		}
		if c.logger != logger {
			t.Error("logger not set correctly")
		}
	})
}

func TestProductList(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/product-list" {
			t.Errorf("path = %q, want /product-list", r.URL.Path)
		}
		json.NewEncoder(w).Encode([]string{"Widget", "Gadget"})
	}))
	defer server.Close()

	c := NewClient(server.URL)
	products, err := c.ProductList(context.Background())
	if err != nil {
		t.Fatalf("ProductList failed: %v", err)
	}

	if len(products) != 2 || products[0] != "Widget" || products[1] != "Gadget" {
		t.Errorf("products = %v, want [Widget Gadget]", products)
	}
}

func TestHighestBet(t *testing.T) {
	t.Run("existing bid", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if got := r.URL.Query().Get("product_name"); got != "Widget" {
				t.Errorf("product_name = %q, want Widget", got)
			}
			json.NewEncoder(w).Encode(highestBetWire{User: "alice", Amount: 100})
		}))
		defer server.Close()

		c := NewClient(server.URL)
		snap, err := c.HighestBet(context.Background(), "Widget")
		if err != nil {
			t.Fatalf("HighestBet failed: %v", err)
		}

		if snap.Product != "Widget" || snap.User != "alice" || snap.Amount != 100 {
			t.Errorf("snapshot = %+v, want Widget/alice/100", snap)
		}
	})

	t.Run("no bid yet", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(highestBetWire{})
		}))
		defer server.Close()

		c := NewClient(server.URL)
		snap, err := c.HighestBet(context.Background(), "Widget")
		if err != nil {
			t.Fatalf("HighestBet failed: %v", err)
		}
		if !snap.Empty() {
			t.Errorf("snapshot = %+v, want empty", snap)
		}
	})

	t.Run("unknown product maps to empty snapshot", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "unknown product", http.StatusNotFound)
		}))
		defer server.Close()

		c := NewClient(server.URL)
		snap, err := c.HighestBet(context.Background(), "Sprocket")
		if err != nil {
			t.Fatalf("HighestBet failed: %v", err)
		}
		if !snap.Empty() || snap.Product != "Sprocket" {
			t.Errorf("snapshot = %+v, want empty snapshot for Sprocket", snap)
		}
	})

	t.Run("server error surfaces", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		}))
		defer server.Close()

		c := NewClient(server.URL, WithRetries(0, time.Millisecond))
		if _, err := c.HighestBet(context.Background(), "Widget"); err == nil {
			t.Error("expected error for 500 response")
		}
	})

	t.Run("retries transient failures", func(t *testing.T) {
		var calls atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if calls.Add(1) < 3 {
				http.Error(w, "busy", http.StatusServiceUnavailable)
				return
			}
			json.NewEncoder(w).Encode(highestBetWire{User: "bob", Amount: 75})
		}))
		defer server.Close()

		c := NewClient(server.URL, WithRetries(3, time.Millisecond))
		snap, err := c.HighestBet(context.Background(), "Widget")
		if err != nil {
			t.Fatalf("HighestBet failed: %v", err)
		}
		if snap.User != "bob" {
			t.Errorf("User = %q, want bob", snap.User)
		}
		if got := calls.Load(); got != 3 {
			t.Errorf("calls = %d, want 3", got)
		}
	})
}

func TestPlaceBet(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				t.Errorf("method = %s, want POST", r.Method)
			}
			var body placeBetWire
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				t.Fatalf("decode body: %v", err)
			}
			if body.Username != "alice" || body.ProductName != "Widget" || body.Price != 100 {
				t.Errorf("body = %+v, want alice/Widget/100", body)
			}

			w.WriteHeader(http.StatusCreated)
			json.NewEncoder(w).Encode(bidWire{
				ID:          "7b1c8f0a-7d44-4f5a-9a3e-1c2d3e4f5a6b",
				ProductName: "Widget",
				User:        "alice",
				Amount:      100,
				PlacedAt:    time.Now().UTC(),
			})
		}))
		defer server.Close()

		c := NewClient(server.URL)
		bid, err := c.PlaceBet(context.Background(), model.BetRequest{
			Username: "alice", Product: "Widget", Amount: 100,
		})
		if err != nil {
			t.Fatalf("PlaceBet failed: %v", err)
		}
		if bid.Product != "Widget" || bid.User != "alice" || bid.Amount != 100 {
			t.Errorf("bid = %+v, want Widget/alice/100", bid)
		}
	})

	t.Run("rejected", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "bet too low", http.StatusConflict)
		}))
		defer server.Close()

		c := NewClient(server.URL)
		_, err := c.PlaceBet(context.Background(), model.BetRequest{
			Username: "alice", Product: "Widget", Amount: 1,
		})

		var apiErr *APIError
		if !errors.As(err, &apiErr) {
			t.Fatalf("error = %v, want *APIError", err)
		}
		if apiErr.StatusCode != http.StatusConflict {
			t.Errorf("StatusCode = %d, want %d", apiErr.StatusCode, http.StatusConflict)
		}
	})

	t.Run("no retry on server error", func(t *testing.T) {
		var calls atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			http.Error(w, "boom", http.StatusInternalServerError)
		}))
		defer server.Close()

		c := NewClient(server.URL, WithRetries(3, time.Millisecond))
		if _, err := c.PlaceBet(context.Background(), model.BetRequest{
			Username: "alice", Product: "Widget", Amount: 100,
		}); err == nil {
			t.Error("expected error for 500 response")
		}

		if got := calls.Load(); got != 1 {
			t.Errorf("calls = %d, want 1 (submissions must not retry)", got)
		}
	})

	t.Run("transport failure", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		server.Close() // refuse connections

		c := NewClient(server.URL)
		_, err := c.PlaceBet(context.Background(), model.BetRequest{
			Username: "alice", Product: "Widget", Amount: 100,
		})
		if err == nil {
			t.Fatal("expected transport error")
		}

		var apiErr *APIError
		if errors.As(err, &apiErr) {
			t.Errorf("transport failure should not be an *APIError, got %v", apiErr)
		}
	})
}
