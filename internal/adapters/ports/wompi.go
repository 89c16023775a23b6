package ports

import (
	"encoding/json"
)

// CheckoutConfig identifies the hosted checkout page and the merchant
type CheckoutConfig struct {
	BaseURL   string // e.g. https://checkout.wompi.co/p
	PublicKey string // pub_test_... / pub_prod_...
}

// CheckoutRequest carries the transaction fields signed into a checkout URL.
// IntegritySecret is only used to compute the signature and is never sent.
type CheckoutRequest struct {
	Reference       string `json:"reference" validate:"required"`
	AmountInCents   int64  `json:"amount_in_cents" validate:"gte=0"`
	Currency        string `json:"currency" validate:"required,iso4217"`
	IntegritySecret string `json:"-" validate:"required"`

	// Optional
	ExpirationDate string `json:"expiration_date,omitempty" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	RedirectURL    string `json:"redirect_url,omitempty" validate:"omitempty,url"`
}

// TransactionEvent is the payload Wompi posts to the events URL.
// Field names follow the gateway's snake_case JSON verbatim.
type TransactionEvent struct {
	Event       string         `json:"event"`
	Data        EventData      `json:"data"`
	Environment string         `json:"environment" validate:"omitempty,oneof=prod test"`
	Signature   EventSignature `json:"signature"`
	Timestamp   int64          `json:"timestamp" validate:"required,gt=0"`
	SentAt      string         `json:"sent_at,omitempty"`
}

// EventData wraps the transaction snapshot of an event
type EventData struct {
	Transaction Transaction `json:"transaction"`
}

// Transaction is the transaction snapshot delivered inside an event
type Transaction struct {
	ID                string          `json:"id" validate:"required"`
	Status            string          `json:"status" validate:"required"`
	AmountInCents     *int64          `json:"amount_in_cents" validate:"required,gte=0"`
	Reference         string          `json:"reference"`
	Currency          string          `json:"currency,omitempty"`
	CustomerEmail     string          `json:"customer_email,omitempty"`
	PaymentMethodType string          `json:"payment_method_type,omitempty"`
	RedirectURL       string          `json:"redirect_url,omitempty"`
	ShippingAddress   json.RawMessage `json:"shipping_address,omitempty"`
	PaymentLinkID     *string         `json:"payment_link_id,omitempty"`
	PaymentSourceID   json.RawMessage `json:"payment_source_id,omitempty"`
}

// Cents returns the amount in cents, or 0 when the event carried none.
// Validated events always carry one.
func (t Transaction) Cents() int64 {
	if t.AmountInCents == nil {
		return 0
	}
	return *t.AmountInCents
}

// EventSignature holds the checksum Wompi computed for the event
type EventSignature struct {
	Properties []string `json:"properties"`
	Checksum   string   `json:"checksum" validate:"required"`
}

// Transaction statuses reported by Wompi
const (
	TransactionStatusPending  = "PENDING"
	TransactionStatusApproved = "APPROVED"
	TransactionStatusDeclined = "DECLINED"
	TransactionStatusVoided   = "VOIDED"
	TransactionStatusError    = "ERROR"
)

// IsFinalTransactionStatus reports whether a status will not change anymore
func IsFinalTransactionStatus(status string) bool {
	switch status {
	case TransactionStatusApproved, TransactionStatusDeclined, TransactionStatusVoided, TransactionStatusError:
		return true
	}
	return false
}
