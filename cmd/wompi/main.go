package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/kevin07696/wompi-go/internal/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	var (
		action      = flag.String("action", "", "Action to perform: checkout-url, status, verify, serve")
		reference   = flag.String("reference", "", "Checkout reference (default: random UUID)")
		amount      = flag.String("amount", "", "Checkout amount in major units, e.g. 95000.50")
		currency    = flag.String("currency", "COP", "ISO-4217 currency code")
		expiresIn   = flag.Duration("expires-in", 0, "Checkout link lifetime, e.g. 30m (optional)")
		expiresAt   = flag.String("expires-at", "", "Checkout expiration as ISO-8601, e.g. 2023-12-31T23:59:59Z (optional)")
		redirectURL = flag.String("redirect-url", "", "URL the customer returns to after paying (optional)")
		txID        = flag.String("id", "", "Transaction ID for the status action")
		wait        = flag.Bool("wait", false, "Keep polling until the transaction status is final")
		maxAttempts = flag.Int("max-attempts", 0, "Attempts when -wait is set (default 8)")
		interval    = flag.Duration("interval", 0, "Fixed delay between polls when -wait is set, e.g. 5s (default exponential)")
		eventFile   = flag.String("file", "-", "Event JSON file for the verify action, - for stdin")
	)
	flag.Parse()

	if *action == "" {
		fmt.Println("Usage: wompi -action=<action> [options]")
		fmt.Println("Actions:")
		fmt.Println("  checkout-url - Build a signed web checkout URL")
		fmt.Println("  status       - Look up a transaction status")
		fmt.Println("  verify       - Verify the checksum of an event payload")
		fmt.Println("  serve        - Run the event receiver with metrics and health endpoints")
		os.Exit(1)
	}

	cfg, err := config.LoadFromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	logger := initLogger(cfg.Logger)
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := resolveSecrets(ctx, cfg, logger); err != nil {
		logger.Fatal("Failed to resolve Wompi secrets", zap.Error(err))
	}

	app := &App{cfg: cfg, logger: logger, out: os.Stdout}

	switch *action {
	case "checkout-url":
		err = app.CheckoutURL(CheckoutOptions{
			Reference:   *reference,
			Amount:      *amount,
			Currency:    *currency,
			ExpiresIn:   *expiresIn,
			ExpiresAt:   *expiresAt,
			RedirectURL: *redirectURL,
		})
	case "status":
		err = app.Status(ctx, *txID, StatusOptions{
			Wait:        *wait,
			MaxAttempts: *maxAttempts,
			Interval:    *interval,
		})
	case "verify":
		err = app.Verify(*eventFile, os.Stdin)
	case "serve":
		err = app.Serve(ctx)
	default:
		fmt.Printf("Unknown action: %s\n", *action)
		os.Exit(1)
	}

	if err != nil {
		logger.Error("Action failed", zap.String("action", *action), zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}
}

// initLogger builds a production JSON logger unless development mode is on
func initLogger(cfg config.LoggerConfig) *zap.Logger {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}

	zapCfg := zap.NewProductionConfig()
	if cfg.Development {
		zapCfg = zap.NewDevelopmentConfig()
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)
	zapCfg.OutputPaths = []string{"stderr"}

	logger, err := zapCfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}
