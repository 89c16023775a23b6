package wompi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/kevin07696/wompi-go/internal/adapters/ports"
	pkgerrors "github.com/kevin07696/wompi-go/pkg/errors"
	pkghttp "github.com/kevin07696/wompi-go/pkg/http"
	"github.com/kevin07696/wompi-go/pkg/observability"
	"go.uber.org/zap"
)

// DefaultConnectivityMessage is returned in UnknownError when a lookup fails
// for a reason other than a gateway answer or a lost response
const DefaultConnectivityMessage = "An error occurred while connecting to Wompi. Check that the client is configured correctly or try again later"

// ErrResponseTooLarge is the cause of an UnknownError when a body exceeds
// the read limit; the payload is never returned truncated
var ErrResponseTooLarge = errors.New("response body too large")

const (
	opTransactionStatus = "transaction_status"

	// Wompi status bodies are a few KB; anything past this is not a status body
	maxResponseBytes = 4 << 20
)

// ClientConfig contains connection settings for the Wompi API
type ClientConfig struct {
	// Base URL for the Wompi API
	// Sandbox: https://sandbox.wompi.co/v1
	// Production: https://production.wompi.co/v1
	BaseURL string

	// Private key sent as a bearer token (prv_test_... / prv_prod_...)
	PrivateKey string

	// HTTP client timeout, only used by NewClientWithDefaults
	Timeout time.Duration
}

// DefaultClientConfig returns default configuration for the given environment
func DefaultClientConfig(environment, privateKey string) *ClientConfig {
	baseURL := "https://production.wompi.co/v1"
	if environment == "sandbox" {
		baseURL = "https://sandbox.wompi.co/v1"
	}

	return &ClientConfig{
		BaseURL:    baseURL,
		PrivateKey: privateKey,
		Timeout:    30 * time.Second,
	}
}

// Client is a reusable, read-only handle on the Wompi API.
// It is safe for concurrent use.
type Client struct {
	baseURL    string
	baseErr    error
	headers    http.Header
	httpClient ports.HTTPClient
	logger     *zap.Logger
}

var _ ports.TransactionStatusClient = (*Client)(nil)

// NewClient creates a Wompi client with an injected HTTP client.
// No network activity happens here; an unusable base URL is reported by
// the first lookup.
func NewClient(cfg *ClientConfig, httpClient ports.HTTPClient, logger *zap.Logger) *Client {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")

	headers := make(http.Header)
	headers.Set("Content-Type", "application/json")
	headers.Set("Accept", "application/json")
	headers.Set("Authorization", "Bearer "+cfg.PrivateKey)

	return &Client{
		baseURL:    baseURL,
		baseErr:    checkBaseURL(baseURL),
		headers:    headers,
		httpClient: httpClient,
		logger:     logger,
	}
}

// NewClientWithDefaults creates a Wompi client with the pooled gateway transport
func NewClientWithDefaults(cfg *ClientConfig, logger *zap.Logger) *Client {
	httpClient := pkghttp.NewHTTPClient(pkghttp.GatewayClientConfig(), cfg.Timeout)
	return NewClient(cfg, httpClient, logger)
}

// BaseURL returns the API base URL the client was built with
func (c *Client) BaseURL() string {
	return c.baseURL
}

// GetTransactionStatus fetches GET {baseURL}/transactions/{transactionID}.
// It never fails with a Go error: the outcome is one of StatusSuccess,
// GatewayError, TransportError or UnknownError. Nothing is retried.
func (c *Client) GetTransactionStatus(ctx context.Context, transactionID string) ports.StatusResult {
	startTime := time.Now()
	result := c.get(ctx, "/transactions/"+url.PathEscape(transactionID))
	elapsed := time.Since(startTime)

	observability.RecordGatewayRequest(opTransactionStatus, outcomeOf(result), elapsed)

	switch r := result.(type) {
	case ports.StatusSuccess:
		c.logger.Info("Transaction status retrieved",
			zap.String("transaction_id", transactionID),
			zap.Int("status_code", r.StatusCode),
			zap.Duration("elapsed", elapsed),
		)
	case ports.GatewayError:
		c.logger.Warn("Wompi rejected transaction status request",
			zap.String("transaction_id", transactionID),
			zap.String("category", string(pkgerrors.CategoryGatewayError)),
			zap.Int("status_code", r.StatusCode),
			zap.ByteString("body", r.Body),
		)
	case ports.TransportError:
		c.logger.Error("No response from Wompi",
			zap.String("transaction_id", transactionID),
			zap.String("category", string(pkgerrors.CategoryNetworkError)),
			zap.String("url", r.Request.URL),
			zap.Error(r.Err),
			zap.Duration("elapsed", elapsed),
		)
	case ports.UnknownError:
		c.logger.Error("Transaction status request failed",
			zap.String("transaction_id", transactionID),
			zap.String("category", string(pkgerrors.CategorySystemError)),
			zap.Error(r.Err),
		)
	}

	return result
}

func (c *Client) get(ctx context.Context, path string) ports.StatusResult {
	if c.baseErr != nil {
		return unknown(c.baseErr)
	}

	endpoint := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return unknown(fmt.Errorf("failed to create request: %w", err))
	}
	for key, values := range c.headers {
		req.Header[key] = append([]string(nil), values...)
	}

	info := ports.RequestInfo{Method: http.MethodGet, URL: endpoint}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if isNoResponse(err) {
			info.Reason = err.Error()
			return ports.TransportError{Request: info, Err: err}
		}
		return unknown(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes+1))
	if err != nil {
		info.Reason = "failed to read response: " + err.Error()
		return ports.TransportError{Request: info, Err: fmt.Errorf("failed to read response: %w", err)}
	}
	if len(body) > maxResponseBytes {
		return unknown(fmt.Errorf("%w: status %d, more than %d bytes", ErrResponseTooLarge, resp.StatusCode, maxResponseBytes))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return ports.GatewayError{StatusCode: resp.StatusCode, Body: body}
	}
	return ports.StatusSuccess{StatusCode: resp.StatusCode, Payload: body}
}

func unknown(err error) ports.UnknownError {
	return ports.UnknownError{Message: DefaultConnectivityMessage, Err: err}
}

// checkBaseURL rejects base URLs that can never produce a request
func checkBaseURL(baseURL string) error {
	if baseURL == "" {
		return errors.New("base URL is empty")
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return fmt.Errorf("invalid base URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("base URL scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return errors.New("base URL has no host")
	}
	return nil
}

// isNoResponse reports whether err means the request left but no response
// made it back. DNS failures never reach the gateway and are excluded.
func isNoResponse(err error) bool {
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return false
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}

	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return true
	}

	var timeoutErr interface{ Timeout() bool }
	return errors.As(err, &timeoutErr) && timeoutErr.Timeout()
}

func outcomeOf(result ports.StatusResult) string {
	switch result.(type) {
	case ports.StatusSuccess:
		return observability.OutcomeSuccess
	case ports.GatewayError:
		return observability.OutcomeGatewayError
	case ports.TransportError:
		return observability.OutcomeTransportError
	}
	return observability.OutcomeUnknownError
}
