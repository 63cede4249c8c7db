package liquidity

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func newTestClient(serverURL string) *Client {
	return NewClient(testLogger, WithBaseURL(serverURL))
}

func TestClient_ReturnsHighestPairLiquidity(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/0xabc", r.URL.Path)
		w.Write([]byte(`{"pairs":[
			{"liquidity":{"usd":1500.5}},
			{"liquidity":{"usd":98000}},
			{"liquidity":{"usd":12}}
		]}`))
	}))
	defer server.Close()

	usd, ok := newTestClient(server.URL).Liquidity(context.Background(), "0xabc", "evm")
	assert.True(t, ok)
	assert.InDelta(t, 98000.0, usd, 1e-9)
}

func TestClient_NoPairsIsARealAnswer(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"pairs":null}`))
	}))
	defer server.Close()

	// Unknown token: zero liquidity, but the lookup itself succeeded.
	usd, ok := newTestClient(server.URL).Liquidity(context.Background(), "0xabc", "evm")
	assert.True(t, ok)
	assert.Zero(t, usd)
}

func TestClient_Non200IsUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	_, ok := newTestClient(server.URL).Liquidity(context.Background(), "0xabc", "evm")
	assert.False(t, ok)
}

func TestClient_MalformedBodyIsUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"pairs":`))
	}))
	defer server.Close()

	_, ok := newTestClient(server.URL).Liquidity(context.Background(), "0xabc", "evm")
	assert.False(t, ok)
}

func TestClient_TimeoutIsUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	c := NewClient(testLogger,
		WithBaseURL(server.URL),
		WithHTTPClient(&http.Client{Timeout: 50 * time.Millisecond}))

	_, ok := c.Liquidity(context.Background(), "0xabc", "evm")
	assert.False(t, ok)
}
