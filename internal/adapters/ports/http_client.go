package ports

import "net/http"

// HTTPClient is the transport the gateway client sends requests through.
// *http.Client satisfies it; tests swap in fakes.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}
