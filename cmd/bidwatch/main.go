// bidwatch is an interactive terminal client for the bid authority.
// It tracks the highest bid on one selected product, reconciling REST
// snapshots with the push channel, and places bets from a prompt.
//
// Usage: go run ./cmd/bidwatch --config configs/bidwatch.example.yaml
//
// Commands at the prompt:
//
//	products          list known products
//	select <product>  watch a product
//	none              clear the selection
//	view              show the current highest bid
//	user <name>       set the bidder name
//	stake <amount>    set the bet amount
//	bet               submit the bet on the selected product
//	quit              exit
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/openbid/bidwatch/internal/api"
	"github.com/openbid/bidwatch/internal/config"
	"github.com/openbid/bidwatch/internal/connection"
	"github.com/openbid/bidwatch/internal/feed"
	"github.com/openbid/bidwatch/internal/notify"
	"github.com/openbid/bidwatch/internal/version"
)

func main() {
	configPath := flag.String("config", "configs/bidwatch.example.yaml", "path to config file")
	verbose := flag.Bool("verbose", false, "debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))

	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger.Info("bidwatch starting", "version", version.String(), "server", cfg.Server.BaseURL)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal")
		cancel()
	}()

	apiClient := api.NewClient(cfg.Server.BaseURL,
		api.WithTimeout(cfg.Server.Timeout),
		api.WithRetries(cfg.Server.MaxRetries, time.Second),
		api.WithLogger(logger),
	)

	connCfg := connection.DefaultClientConfig()
	connCfg.URL = cfg.Server.WSURL
	connCfg.PingTimeout = cfg.Connection.PingTimeout
	connCfg.WriteTimeout = cfg.Connection.WriteTimeout
	connCfg.BufferSize = cfg.Connection.BufferSize
	connCfg.ReconnectBaseDelay = cfg.Connection.ReconnectBaseDelay
	connCfg.ReconnectMaxDelay = cfg.Connection.ReconnectMaxDelay

	stream := connection.NewClient(connCfg, logger)

	// Alerts land on stdout next to the prompt.
	sink := notify.Func(func(a notify.Alert) {
		fmt.Printf("[%s] %s\n", a.Severity, a.Text)
	})

	engine := feed.New(
		feed.Config{
			DefaultStake:      cfg.Bet.DefaultStake,
			ReconcileInterval: cfg.Feed.ReconcileInterval,
		},
		apiClient, apiClient, stream, sink, logger,
	)

	if err := engine.Start(ctx); err != nil {
		logger.Error("failed to start feed engine", "error", err)
		os.Exit(1)
	}
	defer func() {
		stopCtx, stopCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer stopCancel()
		if err := engine.Stop(stopCtx); err != nil {
			logger.Warn("engine stop", "error", err)
		}
	}()

	products, err := apiClient.ProductList(ctx)
	if err != nil {
		logger.Error("failed to fetch product list", "error", err)
		os.Exit(1)
	}
	fmt.Printf("%d products available; type 'products' to list them\n", len(products))

	runPrompt(ctx, cancel, engine, products)
}

func runPrompt(ctx context.Context, cancel context.CancelFunc, engine *feed.Engine, products []string) {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	for {
		fmt.Print("> ")
		select {
		case <-ctx.Done():
			fmt.Println()
			return
		case line, ok := <-lines:
			if !ok {
				cancel()
				return
			}
			if !dispatch(ctx, cancel, engine, products, line) {
				return
			}
		}
	}
}

// dispatch handles one prompt line; false means quit.
func dispatch(ctx context.Context, cancel context.CancelFunc, engine *feed.Engine, products []string, line string) bool {
	cmd, arg, _ := strings.Cut(strings.TrimSpace(line), " ")
	arg = strings.TrimSpace(arg)

	switch cmd {
	case "":
	case "products":
		for _, p := range products {
			fmt.Println(" ", p)
		}
	case "select":
		if arg == "" {
			fmt.Println("usage: select <product>")
			break
		}
		engine.Select(arg)
		printView(engine)
	case "none":
		engine.Select("")
		fmt.Println("selection cleared")
	case "view":
		printView(engine)
	case "user":
		engine.SetUsername(arg)
	case "stake":
		amount, err := strconv.ParseInt(arg, 10, 64)
		if err != nil {
			fmt.Println("usage: stake <whole amount>")
			break
		}
		engine.SetStake(amount)
	case "bet":
		username, stake := engine.Form()
		engine.Submit(ctx, username, stake)
	case "quit", "exit":
		cancel()
		return false
	default:
		fmt.Printf("unknown command %q\n", cmd)
	}
	return true
}

func printView(engine *feed.Engine) {
	view := engine.View()
	switch {
	case view.Empty():
		fmt.Println("no selection")
	case view.User == "":
		fmt.Printf("%s: no bids yet\n", view.Product)
	default:
		fmt.Printf("%s: %s leads at %d\n", view.Product, view.User, view.Amount)
	}
}
