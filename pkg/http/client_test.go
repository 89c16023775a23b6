package http

import (
	"crypto/tls"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewHTTPClient_GatewayProfile(t *testing.T) {
	cfg := GatewayClientConfig()

	client := NewHTTPClient(cfg, 15*time.Second)

	require.NotNil(t, client)
	assert.Equal(t, 15*time.Second, client.Timeout)

	transport, ok := client.Transport.(*http.Transport)
	require.True(t, ok)
	assert.Equal(t, cfg.MaxIdleConnsPerHost, transport.MaxIdleConnsPerHost)
	assert.Equal(t, cfg.ResponseHeaderTimeout, transport.ResponseHeaderTimeout)
	assert.Equal(t, uint16(tls.VersionTLS12), transport.TLSClientConfig.MinVersion)
	assert.True(t, transport.ForceAttemptHTTP2)
}

func TestNewHTTPClient_NilConfigUsesDefaults(t *testing.T) {
	client := NewHTTPClient(nil, 0)

	transport, ok := client.Transport.(*http.Transport)
	require.True(t, ok)
	assert.Equal(t, DefaultClientConfig().MaxIdleConns, transport.MaxIdleConns)
	assert.Zero(t, client.Timeout)
}
