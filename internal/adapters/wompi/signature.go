package wompi

import (
	"crypto/hmac"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/kevin07696/wompi-go/internal/adapters/ports"
	"github.com/kevin07696/wompi-go/pkg/crypto"
	pkgerrors "github.com/kevin07696/wompi-go/pkg/errors"
	"github.com/kevin07696/wompi-go/pkg/observability"
)

// Checksum verification results, used as metric labels
const (
	checksumValid     = "valid"
	checksumInvalid   = "invalid"
	checksumMalformed = "malformed"
)

// BuildIntegritySignature computes the signature:integrity value of a checkout.
// Fields are concatenated in this exact order with no separators:
// reference + amountInCents + currency + integritySecret + expirationDate.
// An empty expirationDate contributes nothing. The format must match Wompi's
// own computation byte for byte, so it is kept as is even though the lack of
// separators makes some field combinations ambiguous.
func BuildIntegritySignature(reference string, amountInCents int64, currency, integritySecret, expirationDate string) string {
	var b strings.Builder
	b.WriteString(reference)
	b.WriteString(strconv.FormatInt(amountInCents, 10))
	b.WriteString(currency)
	b.WriteString(integritySecret)
	b.WriteString(expirationDate)

	return crypto.HashValue(b.String())
}

// EventChecksum computes the checksum Wompi attaches to an event:
// transaction.id + transaction.status + transaction.amount_in_cents + timestamp + eventKey
func EventChecksum(event *ports.TransactionEvent, eventKey string) string {
	tx := event.Data.Transaction

	var b strings.Builder
	b.WriteString(tx.ID)
	b.WriteString(tx.Status)
	b.WriteString(strconv.FormatInt(tx.Cents(), 10))
	b.WriteString(strconv.FormatInt(event.Timestamp, 10))
	b.WriteString(eventKey)

	return crypto.HashValue(b.String())
}

// VerifyChecksum recomputes the event checksum with eventKey and compares it
// with event.signature.checksum. A mismatch returns false with a nil error.
// A structurally incomplete event or an empty key is a caller bug and returns
// a *errors.ValidationError.
func VerifyChecksum(event *ports.TransactionEvent, eventKey string) (bool, error) {
	if err := ValidateEvent(event); err != nil {
		observability.RecordChecksumVerification(checksumMalformed)
		return false, err
	}
	if eventKey == "" {
		observability.RecordChecksumVerification(checksumMalformed)
		return false, pkgerrors.NewValidationError("eventKey", "is required")
	}

	expected := EventChecksum(event, eventKey)
	valid := hmac.Equal([]byte(expected), []byte(event.Signature.Checksum))

	if valid {
		observability.RecordChecksumVerification(checksumValid)
	} else {
		observability.RecordChecksumVerification(checksumInvalid)
	}
	return valid, nil
}

// ValidateEvent checks that every field the checksum depends on is present
func ValidateEvent(event *ports.TransactionEvent) error {
	if event == nil {
		return pkgerrors.NewValidationError("event", "is required")
	}
	return validateStruct(event)
}

// ParseEvent decodes and validates a webhook body
func ParseEvent(body []byte) (*ports.TransactionEvent, error) {
	var event ports.TransactionEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return nil, pkgerrors.NewValidationError("body", "invalid JSON: "+err.Error())
	}
	if err := ValidateEvent(&event); err != nil {
		return nil, err
	}
	return &event, nil
}
