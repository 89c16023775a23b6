package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/kevin07696/wompi-go/internal/adapters/ports"
	"github.com/kevin07696/wompi-go/internal/adapters/wompi"
	"github.com/kevin07696/wompi-go/internal/config"
	"github.com/kevin07696/wompi-go/internal/services/status"
	"github.com/kevin07696/wompi-go/pkg/resilience"
	"github.com/kevin07696/wompi-go/pkg/timeutil"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// App runs CLI actions against one configuration
type App struct {
	cfg    *config.Config
	logger *zap.Logger
	out    io.Writer

	// statusClient overrides the HTTP client built from cfg (tests)
	statusClient ports.TransactionStatusClient
}

// CheckoutOptions are the flags of the checkout-url action
type CheckoutOptions struct {
	Reference   string
	Amount      string
	Currency    string
	ExpiresIn   time.Duration
	ExpiresAt   string
	RedirectURL string
}

// CheckoutURL prints a signed web checkout URL
func (a *App) CheckoutURL(opts CheckoutOptions) error {
	if opts.Amount == "" {
		return errors.New("-amount is required")
	}
	amount, err := decimal.NewFromString(opts.Amount)
	if err != nil {
		return fmt.Errorf("invalid -amount %q: %w", opts.Amount, err)
	}
	cents, err := wompi.AmountToCents(amount)
	if err != nil {
		return err
	}

	reference := opts.Reference
	if reference == "" {
		reference = uuid.NewString()
	}

	expiration, err := expirationDate(opts.ExpiresIn, opts.ExpiresAt)
	if err != nil {
		return err
	}

	checkoutURL, err := wompi.BuildCheckoutURL(
		ports.CheckoutConfig{
			BaseURL:   a.cfg.Wompi.CheckoutURL,
			PublicKey: a.cfg.Wompi.PublicKey,
		},
		&ports.CheckoutRequest{
			Reference:       reference,
			AmountInCents:   cents,
			Currency:        opts.Currency,
			IntegritySecret: a.cfg.Wompi.IntegritySecret,
			ExpirationDate:  expiration,
			RedirectURL:     opts.RedirectURL,
		},
	)
	if err != nil {
		return err
	}

	a.logger.Info("Checkout URL built",
		zap.String("reference", reference),
		zap.Int64("amount_in_cents", cents),
		zap.String("currency", opts.Currency),
	)

	_, err = fmt.Fprintln(a.out, checkoutURL)
	return err
}

// expirationDate turns -expires-in or -expires-at into the ISO-8601 form Wompi signs
func expirationDate(expiresIn time.Duration, expiresAt string) (string, error) {
	switch {
	case expiresIn != 0 && expiresAt != "":
		return "", errors.New("use either -expires-in or -expires-at, not both")
	case expiresIn < 0:
		return "", errors.New("-expires-in must be positive")
	case expiresIn > 0:
		return timeutil.FormatISO8601(timeutil.Now().Add(expiresIn)), nil
	case expiresAt != "":
		t, err := timeutil.ParseISO8601(expiresAt)
		if err != nil {
			return "", fmt.Errorf("invalid -expires-at: %w", err)
		}
		return timeutil.FormatISO8601(t), nil
	}
	return "", nil
}

// StatusOptions controls a status lookup
type StatusOptions struct {
	Wait        bool
	MaxAttempts int
	// Interval fixes the delay between polls; zero keeps the exponential default
	Interval time.Duration
}

// pollBackoff returns nil for the poller's default backoff
func pollBackoff(interval time.Duration) resilience.BackoffStrategy {
	if interval <= 0 {
		return nil
	}
	return &resilience.FixedBackoff{Delay: interval}
}

// Status prints the JSON rendering of a status lookup. With opts.Wait it
// polls until the transaction is final.
func (a *App) Status(ctx context.Context, transactionID string, opts StatusOptions) error {
	if transactionID == "" {
		return errors.New("-id is required")
	}

	client := a.statusClient
	if client == nil {
		clientCfg := wompi.DefaultClientConfig(a.cfg.Wompi.Environment, a.cfg.Wompi.PrivateKey)
		clientCfg.BaseURL = a.cfg.Wompi.BaseURL
		clientCfg.Timeout = a.cfg.Wompi.Timeout
		client = wompi.NewClientWithDefaults(clientCfg, a.logger)
	}

	var (
		result  ports.StatusResult
		pollErr error
	)
	if opts.Wait {
		poller := status.NewPoller(client, pollBackoff(opts.Interval), opts.MaxAttempts, a.logger)
		poll, err := poller.WaitForFinalStatus(ctx, transactionID)
		result, pollErr = poll.Result, err
	} else {
		result = client.GetTransactionStatus(ctx, transactionID)
	}

	if result != nil {
		out, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to render status result: %w", err)
		}
		if _, err := fmt.Fprintln(a.out, string(out)); err != nil {
			return err
		}
	}

	if pollErr != nil {
		return pollErr
	}
	if _, ok := result.(ports.StatusSuccess); !ok {
		return fmt.Errorf("status lookup for %s did not succeed", transactionID)
	}
	return nil
}

// Verify checks an event payload read from path ("-" for stdin) against the events secret
func (a *App) Verify(path string, stdin io.Reader) error {
	var (
		body []byte
		err  error
	)
	if path == "-" {
		body, err = io.ReadAll(stdin)
	} else {
		body, err = os.ReadFile(path)
	}
	if err != nil {
		return fmt.Errorf("failed to read event: %w", err)
	}

	event, err := wompi.ParseEvent(body)
	if err != nil {
		return err
	}

	valid, err := wompi.VerifyChecksum(event, a.cfg.Wompi.EventsSecret)
	if err != nil {
		return err
	}

	transaction := event.Data.Transaction
	if !valid {
		fmt.Fprintf(a.out, "invalid: checksum mismatch for transaction %s\n", transaction.ID)
		return errors.New("event checksum mismatch")
	}

	_, err = fmt.Fprintf(a.out, "valid: %s %s %s (%s %s, sent %s)\n",
		event.Event,
		transaction.ID,
		transaction.Status,
		wompi.CentsToAmount(transaction.Cents()).StringFixed(2),
		transaction.Currency,
		timeutil.FormatISO8601(timeutil.FromUnix(event.Timestamp)),
	)
	return err
}
