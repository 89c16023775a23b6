package status

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/kevin07696/wompi-go/internal/adapters/ports"
	"github.com/kevin07696/wompi-go/pkg/resilience"
	"go.uber.org/zap"
)

// DefaultMaxAttempts bounds a poll at roughly three minutes with StatusPollBackoff
const DefaultMaxAttempts = 8

var (
	// ErrAttemptsExhausted means the transaction was still not final after the last attempt
	ErrAttemptsExhausted = errors.New("transaction status not final after max attempts")

	// ErrUnexpectedPayload means a 2xx body had no readable data.status
	ErrUnexpectedPayload = errors.New("unexpected transaction status payload")
)

// PollResult is the last lookup made by a poll
type PollResult struct {
	Result   ports.StatusResult
	Status   string // data.status of the last successful lookup, empty otherwise
	Attempts int
}

// Final reports whether the poll ended on a final transaction status
func (r *PollResult) Final() bool {
	return ports.IsFinalTransactionStatus(r.Status)
}

// Poller repeats status lookups until a transaction leaves PENDING.
// Transport and unknown failures are retried; a gateway answer (4xx/5xx) ends the poll.
type Poller struct {
	client      ports.TransactionStatusClient
	backoff     resilience.BackoffStrategy
	maxAttempts int
	logger      *zap.Logger
	sleep       func(ctx context.Context, d time.Duration) error
}

// NewPoller creates a poller. A nil backoff uses StatusPollBackoff and a
// non-positive maxAttempts uses DefaultMaxAttempts.
func NewPoller(client ports.TransactionStatusClient, backoff resilience.BackoffStrategy, maxAttempts int, logger *zap.Logger) *Poller {
	if backoff == nil {
		backoff = resilience.StatusPollBackoff()
	}
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Poller{
		client:      client,
		backoff:     backoff,
		maxAttempts: maxAttempts,
		logger:      logger,
		sleep:       resilience.Sleep,
	}
}

// WaitForFinalStatus polls transactionID until its status is final.
// The returned PollResult is never nil; it holds the last lookup even when an
// error (ctx cancellation, ErrAttemptsExhausted, ErrUnexpectedPayload) is returned.
func (p *Poller) WaitForFinalStatus(ctx context.Context, transactionID string) (*PollResult, error) {
	last := &PollResult{}

	for attempt := 0; attempt < p.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return last, err
		}

		result := p.client.GetTransactionStatus(ctx, transactionID)
		last = &PollResult{Result: result, Attempts: attempt + 1}

		switch r := result.(type) {
		case ports.StatusSuccess:
			status, err := transactionStatus(r.Payload)
			if err != nil {
				return last, err
			}
			last.Status = status

			if ports.IsFinalTransactionStatus(status) {
				p.logger.Info("Transaction reached final status",
					zap.String("transaction_id", transactionID),
					zap.String("status", status),
					zap.Int("attempts", last.Attempts),
				)
				return last, nil
			}

		case ports.GatewayError:
			p.logger.Warn("Gateway rejected status lookup, not retrying",
				zap.String("transaction_id", transactionID),
				zap.Int("status_code", r.StatusCode),
			)
			return last, nil
		}

		if attempt == p.maxAttempts-1 {
			break
		}

		delay := p.backoff.NextDelay(attempt)
		p.logger.Debug("Transaction not final, retrying",
			zap.String("transaction_id", transactionID),
			zap.String("status", last.Status),
			zap.Int("attempt", last.Attempts),
			zap.Duration("delay", delay),
		)

		if err := p.sleep(ctx, delay); err != nil {
			return last, err
		}
	}

	return last, fmt.Errorf("%w (%d attempts)", ErrAttemptsExhausted, last.Attempts)
}

// transactionStatus extracts data.status from a GET /transactions/{id} body
func transactionStatus(payload []byte) (string, error) {
	var body struct {
		Data struct {
			Status string `json:"status"`
		} `json:"data"`
	}
	if err := json.Unmarshal(payload, &body); err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnexpectedPayload, err)
	}
	if body.Data.Status == "" {
		return "", fmt.Errorf("%w: missing data.status", ErrUnexpectedPayload)
	}
	return body.Data.Status, nil
}
