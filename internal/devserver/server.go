package devserver

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"

	"github.com/openbid/bidwatch/internal/config"
)

// Wire formats shared with the client.

type highestBetWire struct {
	User   string `json:"user"`
	Amount int64  `json:"amount"`
}

type placeBetWire struct {
	Username    string `json:"username"`
	ProductName string `json:"product_name"`
	Price       int64  `json:"price"`
}

type bidWire struct {
	ID          string    `json:"id"`
	ProductName string    `json:"product_name"`
	User        string    `json:"user"`
	Amount      int64     `json:"amount"`
	PlacedAt    time.Time `json:"placed_at"`
}

type updateEnvelope struct {
	Type string     `json:"type"`
	Msg  updateWire `json:"msg"`
}

type updateWire struct {
	ProductName string `json:"product_name"`
	User        string `json:"user"`
	Amount      int64  `json:"amount"`
}

type errorWire struct {
	Error string `json:"error"`
}

// Server is the development bid authority.
type Server struct {
	cfg      config.DevServerConfig
	store    Store
	hub      *hub
	logger   *slog.Logger
	products map[string]struct{}
	upgrader websocket.Upgrader
}

// New creates a Server over the given store.
func New(cfg config.DevServerConfig, store Store, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	products := make(map[string]struct{}, len(cfg.Products))
	for _, p := range cfg.Products {
		products[p] = struct{}{}
	}

	return &Server{
		cfg:      cfg,
		store:    store,
		hub:      newHub(logger),
		logger:   logger,
		products: products,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Handler returns the HTTP handler for all endpoints.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /product-list", s.handleProductList)
	mux.HandleFunc("GET /highest-bet", s.handleHighestBet)
	mux.HandleFunc("POST /place-bet", s.handlePlaceBet)
	mux.HandleFunc("GET /ws", s.handleWS)
	return mux
}

// Run serves until the context is cancelled, then drains connections.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.cfg.ListenAddr,
		Handler: s.Handler(),
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.logger.Info("devserver listening",
			"addr", s.cfg.ListenAddr,
			"products", len(s.products),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		s.hub.closeAll()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func (s *Server) handleProductList(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.cfg.Products)
}

func (s *Server) handleHighestBet(w http.ResponseWriter, r *http.Request) {
	product := r.URL.Query().Get("product_name")
	if _, ok := s.products[product]; !ok {
		writeJSON(w, http.StatusNotFound, errorWire{Error: "unknown product"})
		return
	}

	bid, ok, err := s.store.HighestBid(r.Context(), product)
	if err != nil {
		s.logger.Error("highest bid lookup failed", "product", product, "error", err)
		writeJSON(w, http.StatusInternalServerError, errorWire{Error: "lookup failed"})
		return
	}
	if !ok {
		// No bid yet is an empty result, not an error.
		writeJSON(w, http.StatusOK, highestBetWire{})
		return
	}

	writeJSON(w, http.StatusOK, highestBetWire{User: bid.User, Amount: bid.Amount})
}

func (s *Server) handlePlaceBet(w http.ResponseWriter, r *http.Request) {
	var req placeBetWire
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorWire{Error: "malformed body"})
		return
	}

	if strings.TrimSpace(req.Username) == "" || req.Price <= 0 {
		writeJSON(w, http.StatusBadRequest, errorWire{Error: "username and positive price required"})
		return
	}
	if _, ok := s.products[req.ProductName]; !ok {
		writeJSON(w, http.StatusNotFound, errorWire{Error: "unknown product"})
		return
	}

	bid, err := s.store.PlaceBid(r.Context(), req.ProductName, req.Username, req.Price)
	if err != nil {
		if errors.Is(err, ErrBetTooLow) {
			writeJSON(w, http.StatusConflict, errorWire{Error: "bet does not beat the current highest"})
			return
		}
		s.logger.Error("place bid failed", "product", req.ProductName, "error", err)
		writeJSON(w, http.StatusInternalServerError, errorWire{Error: "store failure"})
		return
	}

	s.logger.Info("bet accepted",
		"product", bid.Product,
		"user", bid.User,
		"amount", bid.Amount,
		"bid_id", bid.ID,
	)

	writeJSON(w, http.StatusCreated, bidWire{
		ID:          bid.ID.String(),
		ProductName: bid.Product,
		User:        bid.User,
		Amount:      bid.Amount,
		PlacedAt:    bid.PlacedAt,
	})

	// Broadcast to every connected client, whatever it has selected.
	s.hub.broadcast(updateEnvelope{
		Type: "db_update",
		Msg: updateWire{
			ProductName: bid.Product,
			User:        bid.User,
			Amount:      bid.Amount,
		},
	})
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	s.hub.add(conn)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
