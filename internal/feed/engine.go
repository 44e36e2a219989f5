package feed

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/openbid/bidwatch/internal/connection"
	"github.com/openbid/bidwatch/internal/model"
	"github.com/openbid/bidwatch/internal/notify"
)

// SnapshotSource pulls the authoritative highest bid for a product.
type SnapshotSource interface {
	HighestBet(ctx context.Context, product string) (model.BidSnapshot, error)
}

// BetPlacer submits a bet to the bid authority.
type BetPlacer interface {
	PlaceBet(ctx context.Context, req model.BetRequest) (model.Bid, error)
}

// Stream is the push channel the engine drains for the whole of its
// lifetime. Satisfied by connection.Client.
type Stream interface {
	Connect(ctx context.Context) error
	Close() error
	Messages() <-chan connection.TimestampedMessage
	Errors() <-chan error
}

// Config holds engine settings.
type Config struct {
	DefaultStake      int64         // Stake the form resets to after a successful bet
	ReconcileInterval time.Duration // Periodic snapshot re-pull; <= 0 disables
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{DefaultStake: 50}
}

// Engine owns the current selection and the reconciled bid view.
type Engine struct {
	cfg    Config
	source SnapshotSource
	placer BetPlacer
	stream Stream
	sink   notify.Sink
	logger *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu        sync.Mutex
	selection string // "" = none
	gen       uint64 // bumped on every selection change and load issue
	view      model.BidView
	username  string
	stake     int64
	closed    bool
}

// New creates an Engine. The stream must not be connected yet; Start
// connects it and Stop releases it.
func New(cfg Config, source SnapshotSource, placer BetPlacer, stream Stream, sink notify.Sink, logger *slog.Logger) *Engine {
	if cfg.DefaultStake <= 0 {
		cfg.DefaultStake = DefaultConfig().DefaultStake
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		cfg:    cfg,
		source: source,
		placer: placer,
		stream: stream,
		sink:   sink,
		logger: logger,
		stake:  cfg.DefaultStake,
	}
}

// Start connects the push channel and begins draining it.
func (e *Engine) Start(ctx context.Context) error {
	e.ctx, e.cancel = context.WithCancel(ctx)

	if err := e.stream.Connect(e.ctx); err != nil {
		return err
	}

	e.wg.Add(1)
	go e.run()

	if e.cfg.ReconcileInterval > 0 {
		e.wg.Add(1)
		go e.reconcileLoop()
	}

	e.logger.Info("feed engine started", "default_stake", e.cfg.DefaultStake)
	return nil
}

// Stop tears the engine down: the selection becomes terminal, any
// in-flight snapshot result is discarded on arrival, and the push
// channel is released.
func (e *Engine) Stop(ctx context.Context) error {
	e.logger.Info("stopping feed engine")

	e.mu.Lock()
	e.closed = true
	e.selection = ""
	e.gen++
	e.view = model.BidView{}
	e.mu.Unlock()

	if e.cancel != nil {
		e.cancel()
	}
	if err := e.stream.Close(); err != nil {
		e.logger.Warn("closing push channel", "error", err)
	}

	done := make(chan struct{})
	go func() {
		e.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		e.logger.Info("feed engine stopped")
	case <-ctx.Done():
		e.logger.Warn("feed engine stop timed out")
	}

	return nil
}

// Select replaces the current selection. The empty string is the none
// sentinel. The view is cleared synchronously before any asynchronous
// work for the new scope starts; a non-none selection then triggers a
// fresh snapshot load. Redundant selections reload like any other.
func (e *Engine) Select(product string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return
	}

	e.selection = product
	e.gen++
	e.view = model.BidView{}

	if product == "" {
		return
	}

	e.loadLocked(product)
}

// Selection returns the currently selected product, or "" for none.
func (e *Engine) Selection() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.selection
}

// View returns the reconciled highest-bid view for the current
// selection. The zero value means nothing to show.
func (e *Engine) View() model.BidView {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.view
}

// loadLocked issues a snapshot load for product tagged with the live
// generation. Callers must hold e.mu.
func (e *Engine) loadLocked(product string) {
	gen := e.gen
	e.wg.Add(1)
	go e.load(gen, product)
}

// load pulls a snapshot and applies it if its generation is still live.
func (e *Engine) load(gen uint64, product string) {
	defer e.wg.Done()

	snap, err := e.source.HighestBet(e.ctx, product)

	e.mu.Lock()
	defer e.mu.Unlock()

	if gen != e.gen {
		e.logger.Debug("discarding superseded snapshot",
			"product", product,
			"generation", gen,
			"live_generation", e.gen,
		)
		return
	}

	if err != nil {
		// Pull failures leave the scope empty; no alert (the push
		// channel keeps the view alive if the server recovers).
		e.logger.Warn("snapshot load failed", "product", product, "error", err)
		e.view = model.BidView{}
		return
	}

	if snap.Empty() {
		e.view = model.BidView{}
		return
	}

	e.view = model.BidView{
		Product: product,
		User:    snap.User,
		Amount:  snap.Amount,
	}
}

// run drains the push channel until teardown.
func (e *Engine) run() {
	defer e.wg.Done()

	for {
		select {
		case <-e.ctx.Done():
			return

		case err, ok := <-e.stream.Errors():
			if !ok {
				continue
			}
			// The stream redials on its own; nothing to do but note it.
			e.logger.Warn("push channel error", "error", err)

		case msg, ok := <-e.stream.Messages():
			if !ok {
				e.logger.Info("push channel closed")
				return
			}
			e.handleMessage(msg.Data)
		}
	}
}

// reconcileLoop periodically re-pulls the selected product's snapshot.
// Pushes missed while the channel was redialing are healed on the next
// tick; each re-pull supersedes any older load still in flight.
func (e *Engine) reconcileLoop() {
	defer e.wg.Done()

	ticker := time.NewTicker(e.cfg.ReconcileInterval)
	defer ticker.Stop()

	for {
		select {
		case <-e.ctx.Done():
			return
		case <-ticker.C:
			e.mu.Lock()
			if !e.closed && e.selection != "" {
				e.gen++
				e.loadLocked(e.selection)
			}
			e.mu.Unlock()
		}
	}
}

// handleMessage applies one broadcast event to the view if it matches
// the selection read now, at delivery time.
func (e *Engine) handleMessage(data []byte) {
	update, ok, err := parseUpdate(data)
	if err != nil {
		e.logger.Warn("unparseable push message", "error", err)
		return
	}
	if !ok {
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.selection == "" || update.Product != e.selection {
		e.logger.Debug("discarding update outside selection",
			"product", update.Product,
			"selection", e.selection,
		)
		return
	}

	e.view = model.BidView{
		Product: update.Product,
		User:    update.User,
		Amount:  update.Amount,
	}
}
