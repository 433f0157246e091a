package fxfeed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const feedXML = `<?xml version="1.0" encoding="utf-8"?>
<rates>
  <rate month="2025-06" currency="EUR" to_usd="1.0870"/>
  <rate month="2025-06" currency="gbp" to_usd="1.27"/>
  <rate month="2025-06" currency="JPY" to_usd="bogus"/>
  <rate month="2025-06" currency="" to_usd="1.0"/>
</rates>`

func newTestFeed(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := New(Options{URL: srv.URL, MaxRetries: 1})
	require.NoError(t, err)
	return client
}

func TestClient_Fetch(t *testing.T) {
	client := newTestFeed(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/xml")
		_, _ = w.Write([]byte(feedXML))
	})

	rates, err := client.Fetch(context.Background())
	require.NoError(t, err)

	// Malformed elements are skipped, not fatal.
	require.Len(t, rates, 2)
	assert.Equal(t, "EUR", rates[0].Currency)
	assert.Equal(t, "2025-06", rates[0].Month.Key())
	assert.Equal(t, "1.087", rates[0].RateToUSD.String())
	assert.Equal(t, "GBP", rates[1].Currency)
}

func TestClient_Fetch_ServerError(t *testing.T) {
	client := newTestFeed(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	})

	_, err := client.Fetch(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status code")
}

func TestClient_Fetch_NoRates(t *testing.T) {
	client := newTestFeed(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<rates></rates>"))
	})

	_, err := client.Fetch(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no rate elements")
}

func TestClient_Fetch_AllMalformed(t *testing.T) {
	client := newTestFeed(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<rates><rate month="nope" currency="EUR" to_usd="1"/></rates>`))
	})

	_, err := client.Fetch(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "malformed")
}

func TestNew_RequiresURL(t *testing.T) {
	_, err := New(Options{})
	assert.Error(t, err)
}
