package okx

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"
)

var testCreds = Credentials{
	Key:        "key",
	Secret:     "secret",
	Passphrase: "pass",
}

func newTestGateway(t *testing.T, serverURL string, creds Credentials) *Gateway {
	t.Helper()
	t.Setenv("OKX_BASE_URL", serverURL)
	gw := NewGateway(creds)
	gw.now = func() time.Time {
		return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	}
	return gw
}

func TestRequestPrivatePathWithoutCredentials(t *testing.T) {
	hit := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hit = true
	}))
	defer server.Close()

	gw := newTestGateway(t, server.URL, Credentials{})

	_, err := gw.Request(context.Background(), http.MethodGet, "/account/balance", nil, nil)
	if !errors.Is(err, ErrAuthMissing) {
		t.Fatalf("expected ErrAuthMissing, got %v", err)
	}
	if hit {
		t.Fatalf("expected no network call for unauthenticated private path")
	}
}

func TestRequestSignsPublicPathWhenCredentialed(t *testing.T) {
	var gotHeaders http.Header
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHeaders = r.Header.Clone()
		_, _ = w.Write([]byte(`{"code":"0","msg":"","data":[]}`))
	}))
	defer server.Close()

	gw := newTestGateway(t, server.URL, testCreds)

	query := url.Values{"instId": {"BTC-USDT"}}
	if _, err := gw.Request(context.Background(), http.MethodGet, "/market/ticker", query, nil); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if gotHeaders.Get("OK-ACCESS-KEY") != "key" {
		t.Fatalf("expected api key header on credentialed public call, got %q", gotHeaders.Get("OK-ACCESS-KEY"))
	}
	if gotHeaders.Get("OK-ACCESS-PASSPHRASE") != "pass" {
		t.Fatalf("expected passphrase header, got %q", gotHeaders.Get("OK-ACCESS-PASSPHRASE"))
	}

	ts := gotHeaders.Get("OK-ACCESS-TIMESTAMP")
	if ts != "2024-01-02T03:04:05.000Z" {
		t.Fatalf("unexpected timestamp format: %q", ts)
	}

	wantSign := Sign(ts, http.MethodGet, "/api/v5/market/ticker?instId=BTC-USDT", "", "secret")
	if gotHeaders.Get("OK-ACCESS-SIGN") != wantSign {
		t.Fatalf("expected signature %q, got %q", wantSign, gotHeaders.Get("OK-ACCESS-SIGN"))
	}
}

func TestRequestPublicPathWithoutCredentialsIsUnsigned(t *testing.T) {
	var gotHeaders http.Header
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHeaders = r.Header.Clone()
		_, _ = w.Write([]byte(`{"code":"0","msg":"","data":[]}`))
	}))
	defer server.Close()

	gw := newTestGateway(t, server.URL, Credentials{})

	if _, err := gw.Request(context.Background(), http.MethodGet, "/market/tickers", nil, nil); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if gotHeaders.Get("OK-ACCESS-KEY") != "" || gotHeaders.Get("OK-ACCESS-SIGN") != "" {
		t.Fatalf("expected unsigned request without credentials")
	}
}

func TestRequestRateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	gw := newTestGateway(t, server.URL, testCreds)

	_, err := gw.Request(context.Background(), http.MethodGet, "/account/balance", nil, nil)
	if !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}
}

func TestRequestNon2xxCarriesEnvelope(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"code":"50111","msg":"Invalid OK-ACCESS-KEY"}`))
	}))
	defer server.Close()

	gw := newTestGateway(t, server.URL, testCreds)

	_, err := gw.Request(context.Background(), http.MethodGet, "/account/balance", nil, nil)
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Code != "50111" || apiErr.HTTPStatus != http.StatusUnauthorized {
		t.Fatalf("unexpected api error: %+v", apiErr)
	}
}

func TestRequestNetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // refuse connections

	gw := newTestGateway(t, server.URL, testCreds)

	_, err := gw.Request(context.Background(), http.MethodGet, "/account/balance", nil, nil)
	var netErr *NetworkError
	if !errors.As(err, &netErr) {
		t.Fatalf("expected NetworkError, got %v", err)
	}
}

func TestCallEnforcesEnvelopeCode(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"code":"51000","msg":"Parameter error","data":[]}`))
	}))
	defer server.Close()

	gw := newTestGateway(t, server.URL, testCreds)

	_, err := gw.Call(context.Background(), http.MethodGet, "/account/balance", nil, nil)
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError for non-zero envelope code, got %v", err)
	}
	if apiErr.Code != "51000" {
		t.Fatalf("unexpected code: %s", apiErr.Code)
	}
}
