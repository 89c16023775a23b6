package wompi

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/kevin07696/wompi-go/internal/adapters/ports"
	"github.com/kevin07696/wompi-go/pkg/crypto"
	pkgerrors "github.com/kevin07696/wompi-go/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testEventKey = "your-event-key"

// loadEvent reads the recorded transaction.updated delivery
func loadEvent(t *testing.T) *ports.TransactionEvent {
	t.Helper()

	body, err := os.ReadFile(filepath.Join("testdata", "transaction_updated.json"))
	require.NoError(t, err)

	event, err := ParseEvent(body)
	require.NoError(t, err)
	return event
}

func TestBuildIntegritySignature_KnownVectors(t *testing.T) {
	tests := []struct {
		name           string
		expirationDate string
		want           string
	}{
		{
			name: "without expiration date",
			want: "6c2b5e0d35fb4ee79b36de8c1569245b93436c1ff885ff0dcd21c860033bb06a",
		},
		{
			name:           "with expiration date",
			expirationDate: "2023-12-31T23:59:59Z",
			want:           "6c764a4c6acfa3e87eb1b3e3fd49c9ceea40d7d77cdeb8a8e876f8cbed4c3e1c",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BuildIntegritySignature("myReference", 10000000, "COP", "myIntegritySecret", tt.expirationDate)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBuildIntegritySignature_ConcatenationFormat(t *testing.T) {
	got := BuildIntegritySignature("ref-1", 2500, "USD", "secret", "")

	// Direct concatenation, amount in plain base-10
	assert.Equal(t, crypto.HashValue("ref-12500USDsecret"), got)
}

func TestBuildIntegritySignature_ChangesWithEachField(t *testing.T) {
	base := BuildIntegritySignature("myReference", 10000000, "COP", "myIntegritySecret", "")

	variants := map[string]string{
		"reference": BuildIntegritySignature("otherReference", 10000000, "COP", "myIntegritySecret", ""),
		"amount":    BuildIntegritySignature("myReference", 10000001, "COP", "myIntegritySecret", ""),
		"currency":  BuildIntegritySignature("myReference", 10000000, "USD", "myIntegritySecret", ""),
		"secret":    BuildIntegritySignature("myReference", 10000000, "COP", "otherSecret", ""),
	}

	for field, sig := range variants {
		assert.NotEqual(t, base, sig, "changing %s must change the signature", field)
	}
}

func TestVerifyChecksum_RecordedEvent(t *testing.T) {
	event := loadEvent(t)

	valid, err := VerifyChecksum(event, testEventKey)

	require.NoError(t, err)
	assert.True(t, valid)
}

func TestVerifyChecksum_Mismatch(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(e *ports.TransactionEvent)
		key    string
	}{
		{
			name: "wrong event key",
			key:  "another-event-key",
		},
		{
			name:   "tampered status",
			mutate: func(e *ports.TransactionEvent) { e.Data.Transaction.Status = "DECLINED" },
		},
		{
			name:   "tampered amount",
			mutate: func(e *ports.TransactionEvent) { e.Data.Transaction.AmountInCents = centsPtr(4490001) },
		},
		{
			name:   "tampered timestamp",
			mutate: func(e *ports.TransactionEvent) { e.Timestamp = 1530291412 },
		},
		{
			name:   "tampered id",
			mutate: func(e *ports.TransactionEvent) { e.Data.Transaction.ID = "1234-1610641025-49202" },
		},
		{
			name: "checksum from another delivery",
			mutate: func(e *ports.TransactionEvent) {
				e.Signature.Checksum = "7b9fe6147e8a88f6e80682e4d392069f663f3f9df52c45614f3c94fafb5a18d2"
			},
		},
		{
			name:   "uppercase checksum is not the same string",
			mutate: func(e *ports.TransactionEvent) { e.Signature.Checksum = "C8B615C36D6002A81D1B911B22A800FEF3D989A04E5D8AE6D4038575DBD9E489" },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			event := loadEvent(t)
			if tt.mutate != nil {
				tt.mutate(event)
			}
			key := tt.key
			if key == "" {
				key = testEventKey
			}

			valid, err := VerifyChecksum(event, key)

			require.NoError(t, err)
			assert.False(t, valid)
		})
	}
}

func TestVerifyChecksum_FieldsOutsideChecksumDoNotMatter(t *testing.T) {
	event := loadEvent(t)
	event.Data.Transaction.Reference = "SOMETHING-ELSE"
	event.Data.Transaction.CustomerEmail = "other@example.com"
	event.SentAt = ""

	valid, err := VerifyChecksum(event, testEventKey)

	require.NoError(t, err)
	assert.True(t, valid)
}

func TestVerifyChecksum_MatchesEventChecksum(t *testing.T) {
	event := loadEvent(t)
	event.Data.Transaction.Status = "DECLINED"
	event.Signature.Checksum = EventChecksum(event, "k")

	valid, err := VerifyChecksum(event, "k")

	require.NoError(t, err)
	assert.True(t, valid)
	assert.Equal(t, crypto.HashValue("1234-1610641025-49201DECLINED44900001530291411k"), event.Signature.Checksum)
}

func TestVerifyChecksum_MalformedEvent(t *testing.T) {
	tests := []struct {
		name      string
		event     func(t *testing.T) *ports.TransactionEvent
		key       string
		wantField string
	}{
		{
			name:      "nil event",
			event:     func(t *testing.T) *ports.TransactionEvent { return nil },
			key:       testEventKey,
			wantField: "event",
		},
		{
			name: "missing transaction id",
			event: func(t *testing.T) *ports.TransactionEvent {
				e := loadEvent(t)
				e.Data.Transaction.ID = ""
				return e
			},
			key:       testEventKey,
			wantField: "data.transaction.id",
		},
		{
			name: "missing status",
			event: func(t *testing.T) *ports.TransactionEvent {
				e := loadEvent(t)
				e.Data.Transaction.Status = ""
				return e
			},
			key:       testEventKey,
			wantField: "data.transaction.status",
		},
		{
			name: "missing amount",
			event: func(t *testing.T) *ports.TransactionEvent {
				e := loadEvent(t)
				e.Data.Transaction.AmountInCents = nil
				return e
			},
			key:       testEventKey,
			wantField: "data.transaction.amount_in_cents",
		},
		{
			name: "negative amount",
			event: func(t *testing.T) *ports.TransactionEvent {
				e := loadEvent(t)
				e.Data.Transaction.AmountInCents = centsPtr(-1)
				return e
			},
			key:       testEventKey,
			wantField: "data.transaction.amount_in_cents",
		},
		{
			name: "missing checksum",
			event: func(t *testing.T) *ports.TransactionEvent {
				e := loadEvent(t)
				e.Signature.Checksum = ""
				return e
			},
			key:       testEventKey,
			wantField: "signature.checksum",
		},
		{
			name: "missing timestamp",
			event: func(t *testing.T) *ports.TransactionEvent {
				e := loadEvent(t)
				e.Timestamp = 0
				return e
			},
			key:       testEventKey,
			wantField: "timestamp",
		},
		{
			name:      "empty event key",
			event:     loadEvent,
			key:       "",
			wantField: "eventKey",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			valid, err := VerifyChecksum(tt.event(t), tt.key)

			require.Error(t, err)
			assert.False(t, valid)
			assert.True(t, errors.Is(err, pkgerrors.ErrInvalidArgument))

			vErr, ok := pkgerrors.AsValidationError(err)
			require.True(t, ok)
			assert.Equal(t, tt.wantField, vErr.Field)
		})
	}
}

func centsPtr(v int64) *int64 {
	return &v
}

func TestParseEvent(t *testing.T) {
	t.Run("invalid JSON", func(t *testing.T) {
		_, err := ParseEvent([]byte(`{"event":`))

		require.Error(t, err)
		assert.True(t, errors.Is(err, pkgerrors.ErrInvalidArgument))
	})

	t.Run("unknown environment", func(t *testing.T) {
		_, err := ParseEvent([]byte(`{
			"event": "transaction.updated",
			"data": {"transaction": {"id": "1", "status": "APPROVED", "amount_in_cents": 100}},
			"environment": "staging",
			"signature": {"properties": [], "checksum": "abc"},
			"timestamp": 1
		}`))

		vErr, ok := pkgerrors.AsValidationError(err)
		require.True(t, ok)
		assert.Equal(t, "environment", vErr.Field)
	})

	t.Run("amount absent from payload", func(t *testing.T) {
		_, err := ParseEvent([]byte(`{
			"event": "transaction.updated",
			"data": {"transaction": {"id": "1", "status": "APPROVED"}},
			"signature": {"properties": [], "checksum": "abc"},
			"timestamp": 1
		}`))

		vErr, ok := pkgerrors.AsValidationError(err)
		require.True(t, ok)
		assert.Equal(t, "data.transaction.amount_in_cents", vErr.Field)
	})

	t.Run("zero amount is present, not missing", func(t *testing.T) {
		event, err := ParseEvent([]byte(`{
			"event": "transaction.updated",
			"data": {"transaction": {"id": "1", "status": "APPROVED", "amount_in_cents": 0}},
			"signature": {"properties": [], "checksum": "abc"},
			"timestamp": 1
		}`))

		require.NoError(t, err)
		assert.Equal(t, int64(0), event.Data.Transaction.Cents())
	})

	t.Run("reads snake_case fields verbatim", func(t *testing.T) {
		event := loadEvent(t)

		assert.Equal(t, "transaction.updated", event.Event)
		assert.Equal(t, int64(4490000), event.Data.Transaction.Cents())
		assert.Equal(t, "NEQUI", event.Data.Transaction.PaymentMethodType)
		assert.Equal(t, "https://mitienda.com.co/pagos/redireccion", event.Data.Transaction.RedirectURL)
		assert.Nil(t, event.Data.Transaction.PaymentLinkID)
		assert.Equal(t, []string{"transaction.id", "transaction.status", "transaction.amount_in_cents"}, event.Signature.Properties)
		assert.Equal(t, int64(1530291411), event.Timestamp)
		assert.Equal(t, "prod", event.Environment)
	})
}
