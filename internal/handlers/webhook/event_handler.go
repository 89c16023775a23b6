package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/kevin07696/wompi-go/internal/adapters/ports"
	"github.com/kevin07696/wompi-go/internal/adapters/wompi"
	pkgerrors "github.com/kevin07696/wompi-go/pkg/errors"
	"github.com/kevin07696/wompi-go/pkg/observability"
	"go.uber.org/zap"
)

// MaxBodyBytes caps an inbound event body
const MaxBodyBytes = 1 << 20

// EventSink receives events whose checksum verified. A returned error makes
// the handler answer 500 so Wompi redelivers the event.
type EventSink func(ctx context.Context, event *ports.TransactionEvent) error

// EventHandler receives Wompi event notifications
// POST /webhooks/wompi
type EventHandler struct {
	eventsSecret string
	sink         EventSink
	logger       *zap.Logger
}

// NewEventHandler creates a handler verifying checksums with eventsSecret.
// sink may be nil, in which case verified events are only acknowledged.
func NewEventHandler(eventsSecret string, sink EventSink, logger *zap.Logger) *EventHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EventHandler{
		eventsSecret: eventsSecret,
		sink:         sink,
		logger:       logger,
	}
}

// HandleEvent decodes, verifies and dispatches one event delivery
func (h *EventHandler) HandleEvent(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.respond(w, observability.WebhookEventUnverified, http.StatusRequestEntityTooLarge, "event body too large")
			return
		}
		h.respond(w, observability.WebhookEventUnverified, http.StatusBadRequest, "failed to read event body")
		return
	}

	event, err := wompi.ParseEvent(body)
	if err != nil {
		h.logger.Warn("Rejected malformed Wompi event", zap.Error(err))
		h.respond(w, observability.WebhookEventUnverified, http.StatusBadRequest, err.Error())
		return
	}

	transaction := event.Data.Transaction
	fields := []zap.Field{
		zap.String("event", event.Event),
		zap.String("transaction_id", transaction.ID),
		zap.String("status", transaction.Status),
		zap.String("environment", event.Environment),
	}

	valid, err := wompi.VerifyChecksum(event, h.eventsSecret)
	if err != nil {
		if verr, ok := pkgerrors.AsValidationError(err); ok && verr.Field == "eventKey" {
			h.logger.Error("Events secret is not configured", fields...)
			h.respond(w, observability.WebhookEventUnverified, http.StatusInternalServerError, "event verification unavailable")
			return
		}
		h.logger.Warn("Rejected malformed Wompi event", append(fields, zap.Error(err))...)
		h.respond(w, observability.WebhookEventUnverified, http.StatusBadRequest, err.Error())
		return
	}
	if !valid {
		h.logger.Warn("Wompi event checksum mismatch", fields...)
		h.respond(w, observability.WebhookEventUnverified, http.StatusUnauthorized, "invalid checksum")
		return
	}

	if h.sink != nil {
		if err := h.sink(r.Context(), event); err != nil {
			h.logger.Error("Event sink failed", append(fields, zap.Error(err))...)
			h.respond(w, event.Event, http.StatusInternalServerError, "event processing failed")
			return
		}
	}

	h.logger.Info("Accepted Wompi event", fields...)
	h.respond(w, event.Event, http.StatusOK, "")
}

// LoggingSink logs every verified transaction update
func LoggingSink(logger *zap.Logger) EventSink {
	return func(_ context.Context, event *ports.TransactionEvent) error {
		transaction := event.Data.Transaction
		logger.Info("Transaction update",
			zap.String("transaction_id", transaction.ID),
			zap.String("reference", transaction.Reference),
			zap.String("status", transaction.Status),
			zap.Int64("amount_in_cents", transaction.Cents()),
			zap.String("currency", transaction.Currency),
			zap.Bool("final", ports.IsFinalTransactionStatus(transaction.Status)),
		)
		return nil
	}
}

func (h *EventHandler) respond(w http.ResponseWriter, event string, statusCode int, message string) {
	observability.RecordWebhookEvent(event, statusCode)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	payload := map[string]string{"status": "ok"}
	if statusCode != http.StatusOK {
		payload = map[string]string{"error": message}
	}
	_ = json.NewEncoder(w).Encode(payload)
}
