package wompi

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/kevin07696/wompi-go/internal/adapters/ports"
	pkgerrors "github.com/kevin07696/wompi-go/pkg/errors"
	"github.com/kevin07696/wompi-go/pkg/observability"
)

// Hosted checkout query parameters. Names and order are part of the
// contract with the checkout page.
const (
	ParamPublicKey          = "public-key"
	ParamReference          = "reference"
	ParamAmountInCents      = "amount-in-cents"
	ParamCurrency           = "currency"
	ParamIntegritySignature = "signature:integrity"
	ParamExpirationDate     = "expiration-date"
	ParamRedirectURL        = "redirect-url"
)

// BuildCheckoutURL signs req and returns the redirect URL for the hosted
// checkout page: {baseURL}/?public-key=...&reference=...&amount-in-cents=...
// &currency=...&signature:integrity=...[&expiration-date=...][&redirect-url=...]
func BuildCheckoutURL(cfg ports.CheckoutConfig, req *ports.CheckoutRequest) (string, error) {
	if err := validateCheckout(cfg, req); err != nil {
		observability.RecordCheckoutURL(observability.CheckoutCurrencyInvalid, "rejected")
		return "", err
	}

	signature := BuildIntegritySignature(
		req.Reference,
		req.AmountInCents,
		req.Currency,
		req.IntegritySecret,
		req.ExpirationDate,
	)

	q := make(orderedQuery, 0, 7)
	q = q.add(ParamPublicKey, cfg.PublicKey)
	q = q.add(ParamReference, req.Reference)
	q = q.add(ParamAmountInCents, strconv.FormatInt(req.AmountInCents, 10))
	q = q.add(ParamCurrency, req.Currency)
	q = q.add(ParamIntegritySignature, signature)
	if req.ExpirationDate != "" {
		q = q.add(ParamExpirationDate, req.ExpirationDate)
	}
	if req.RedirectURL != "" {
		q = q.add(ParamRedirectURL, req.RedirectURL)
	}

	observability.RecordCheckoutURL(req.Currency, "built")
	return cfg.BaseURL + "/?" + q.encode(), nil
}

func validateCheckout(cfg ports.CheckoutConfig, req *ports.CheckoutRequest) error {
	if cfg.BaseURL == "" {
		return pkgerrors.NewValidationError("baseURL", "is required")
	}
	if cfg.PublicKey == "" {
		return pkgerrors.NewValidationError("publicKey", "is required")
	}
	if req == nil {
		return pkgerrors.NewValidationError("request", "is required")
	}
	return validateStruct(req)
}

// orderedQuery keeps insertion order; url.Values.Encode sorts by key
type orderedQuery []queryParam

type queryParam struct {
	key   string
	value string
}

func (q orderedQuery) add(key, value string) orderedQuery {
	return append(q, queryParam{key: key, value: value})
}

func (q orderedQuery) encode() string {
	var b strings.Builder
	for i, p := range q {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(p.key))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(p.value))
	}
	return b.String()
}
