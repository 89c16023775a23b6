package ports

import (
	"context"
	"encoding/json"
)

// StatusResult is the outcome of a transaction status lookup.
// It is one of StatusSuccess, GatewayError, TransportError or UnknownError;
// callers switch on the concrete type.
type StatusResult interface {
	isStatusResult()
}

// StatusSuccess carries the gateway's 2xx body untouched
type StatusSuccess struct {
	StatusCode int
	Payload    []byte
}

// GatewayError means Wompi answered with a non-2xx status
type GatewayError struct {
	StatusCode int
	Body       []byte
}

// TransportError means the request went out but no complete response came back
type TransportError struct {
	Request RequestInfo
	Err     error
}

// UnknownError is the last-resort bucket: bad configuration, DNS failures,
// anything that is neither a gateway answer nor a lost response
type UnknownError struct {
	Message string
	Err     error
}

// RequestInfo describes the request that did not get a response.
// Headers are deliberately absent: they carry the private key.
type RequestInfo struct {
	Method string `json:"method"`
	URL    string `json:"url"`
	Reason string `json:"reason,omitempty"`
}

func (StatusSuccess) isStatusResult()  {}
func (GatewayError) isStatusResult()   {}
func (TransportError) isStatusResult() {}
func (UnknownError) isStatusResult()   {}

// MarshalJSON returns the payload exactly as received
func (s StatusSuccess) MarshalJSON() ([]byte, error) {
	return rawOrString(s.Payload)
}

// MarshalJSON renders {"error": <body>}
func (e GatewayError) MarshalJSON() ([]byte, error) {
	body, err := rawOrString(e.Body)
	if err != nil {
		return nil, err
	}
	return json.Marshal(errorEnvelope{Error: body})
}

// MarshalJSON renders {"error": <request info>}
func (e TransportError) MarshalJSON() ([]byte, error) {
	info := e.Request
	if info.Reason == "" && e.Err != nil {
		info.Reason = e.Err.Error()
	}
	return json.Marshal(errorEnvelope{Error: info})
}

// MarshalJSON renders {"error": <message>}
func (e UnknownError) MarshalJSON() ([]byte, error) {
	return json.Marshal(errorEnvelope{Error: e.Message})
}

type errorEnvelope struct {
	Error any `json:"error"`
}

// rawOrString keeps valid JSON verbatim and quotes anything else
func rawOrString(b []byte) ([]byte, error) {
	if len(b) > 0 && json.Valid(b) {
		return b, nil
	}
	return json.Marshal(string(b))
}

// TransactionStatusClient looks up a transaction by its Wompi id.
// Implementations never return Go errors for transport failures; the
// failure is encoded in the StatusResult.
type TransactionStatusClient interface {
	GetTransactionStatus(ctx context.Context, transactionID string) StatusResult
}
