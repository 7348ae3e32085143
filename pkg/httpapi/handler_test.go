package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/joripage/limit-orderbook/config"
	"github.com/joripage/limit-orderbook/pkg/metrics"
	"github.com/joripage/limit-orderbook/pkg/orderbook"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "secret"

func newTestServer(t *testing.T, cfg config.HTTPConfig) *Server {
	t.Helper()
	if cfg.APIKey == "" {
		cfg.APIKey = testKey
	}
	manager := orderbook.NewOrderBookManager(&orderbook.OrderBookManagerConfig{
		SupportedPairs: []string{"BTCZAR", "ETHZAR"},
	})
	return NewServer(cfg, manager, metrics.New(), nil)
}

func do(t *testing.T, s *Server, method, target, body string, auth bool) *httptest.ResponseRecorder {
	t.Helper()
	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, target, nil)
	} else {
		r = httptest.NewRequest(method, target, bytes.NewBufferString(body))
		r.Header.Set("Content-Type", "application/json")
	}
	if auth {
		r.Header.Set("Authorization", testKey)
	}
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, r)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestUnauthorized(t *testing.T) {
	s := newTestServer(t, config.HTTPConfig{})

	for _, target := range []string{"/orderbook", "/trades/recent"} {
		w := do(t, s, http.MethodGet, target, "", false)
		assert.Equal(t, http.StatusUnauthorized, w.Code, target)
		assert.Equal(t, "Unauthorized", w.Body.String())
	}

	r := httptest.NewRequest(http.MethodGet, "/orderbook", nil)
	r.Header.Set("Authorization", "wrong")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, r)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestHealthAndMetricsSkipAuth(t *testing.T) {
	s := newTestServer(t, config.HTTPConfig{})

	w := do(t, s, http.MethodGet, "/healthz", "", false)
	assert.Equal(t, http.StatusOK, w.Code)

	do(t, s, http.MethodPost, "/orders/limit", `{"price":1,"quantity":1,"side":"buy","currencyPair":"BTCZAR"}`, true)
	w = do(t, s, http.MethodGet, "/metrics", "", false)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `orderbook_orders_submitted_total{pair="BTCZAR",side="buy"} 1`)
}

func TestSubmitAndMatch(t *testing.T) {
	s := newTestServer(t, config.HTTPConfig{})

	w := do(t, s, http.MethodPost, "/orders/limit", `{"price":"1000","quantity":"1.5","side":"SELL","currencyPair":"btczar"}`, true)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	resp := decode[map[string]any](t, w)
	assert.Equal(t, "Order placed successfully", resp["message"])
	assert.Empty(t, resp["trades"])

	w = do(t, s, http.MethodPost, "/orders/limit", `{"price":1100,"quantity":1,"side":"buy","currencyPair":"BTCZAR"}`, true)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	resp = decode[map[string]any](t, w)
	trades, ok := resp["trades"].([]any)
	require.True(t, ok)
	require.Len(t, trades, 1)
	trade := trades[0].(map[string]any)
	assert.Equal(t, float64(1000), trade["price"])
	assert.Equal(t, float64(1), trade["quantity"])
	assert.Equal(t, "buy", trade["takerSide"])
	assert.Equal(t, "BTCZAR", trade["currencyPair"])
	assert.Equal(t, float64(1000), trade["quoteVolume"])

	w = do(t, s, http.MethodGet, "/orderbook", "", true)
	require.Equal(t, http.StatusOK, w.Code)
	depth := decode[orderbook.Depth](t, w)
	require.Len(t, depth.Asks, 1)
	assert.Empty(t, depth.Bids)
	assert.Equal(t, "0.5", depth.Asks[0].AggregatedQuantity.String())
	assert.Equal(t, 1, depth.Asks[0].OrderCount)

	w = do(t, s, http.MethodGet, "/trades/recent?currencyPair=BTCZAR", "", true)
	require.Equal(t, http.StatusOK, w.Code)
	recent := decode[[]orderbook.Trade](t, w)
	require.Len(t, recent, 1)
	assert.Equal(t, uint64(1), recent[0].SequenceID)
}

func TestPairsAreIndependent(t *testing.T) {
	s := newTestServer(t, config.HTTPConfig{})

	w := do(t, s, http.MethodPost, "/orders/limit", `{"price":10,"quantity":1,"side":"sell","currencyPair":"ETHZAR"}`, true)
	require.Equal(t, http.StatusCreated, w.Code)

	w = do(t, s, http.MethodGet, "/orderbook", "", true)
	depth := decode[orderbook.Depth](t, w)
	assert.Empty(t, depth.Asks, "default pair is BTCZAR")

	w = do(t, s, http.MethodGet, "/orderbook?currencyPair=ethzar", "", true)
	depth = decode[orderbook.Depth](t, w)
	assert.Len(t, depth.Asks, 1)
}

func TestSubmitValidation(t *testing.T) {
	s := newTestServer(t, config.HTTPConfig{})

	w := do(t, s, http.MethodPost, "/orders/limit", `{"price":0,"side":" "}`, true)
	require.Equal(t, http.StatusBadRequest, w.Code)
	errs := decode[map[string]string](t, w)
	assert.Equal(t, map[string]string{
		"price":        "Price must be positive",
		"quantity":     "Quantity must be positive",
		"side":         "Side is required",
		"currencyPair": "Currency pair is required",
	}, errs)

	w = do(t, s, http.MethodPost, "/orders/limit", `{"price":`, true)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, s, http.MethodPost, "/orders/limit", `{"price":1,"quantity":1,"side":"hold","currencyPair":"BTCZAR"}`, true)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode[map[string]string](t, w)["error"], "side")

	w = do(t, s, http.MethodPost, "/orders/limit", `{"price":1,"quantity":1,"side":"buy","currencyPair":"DOGEZAR"}`, true)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode[map[string]string](t, w)["error"], "unsupported currency pair")

	w = do(t, s, http.MethodGet, "/trades/recent?currencyPair=DOGEZAR", "", true)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, s, http.MethodGet, "/orderbook", "", true)
	depth := decode[orderbook.Depth](t, w)
	assert.Empty(t, depth.Asks)
	assert.Empty(t, depth.Bids)
}

func TestRequestIDHeader(t *testing.T) {
	s := newTestServer(t, config.HTTPConfig{})

	r := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	r.Header.Set(requestIDHeader, "abc-123")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, r)
	assert.Equal(t, "abc-123", w.Header().Get(requestIDHeader))

	w = do(t, s, http.MethodGet, "/healthz", "", false)
	assert.NotEmpty(t, w.Header().Get(requestIDHeader))
}

func TestRateLimit(t *testing.T) {
	s := newTestServer(t, config.HTTPConfig{RateLimitRPS: 0.001, RateLimitBurst: 2})

	assert.Equal(t, http.StatusOK, do(t, s, http.MethodGet, "/orderbook", "", true).Code)
	assert.Equal(t, http.StatusOK, do(t, s, http.MethodGet, "/orderbook", "", true).Code)
	w := do(t, s, http.MethodGet, "/orderbook", "", true)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), "rate limit"))

	assert.Equal(t, http.StatusOK, do(t, s, http.MethodGet, "/healthz", "", false).Code)
}

func TestDefaultPairWithBlankAllowList(t *testing.T) {
	manager := orderbook.NewOrderBookManager(&orderbook.OrderBookManagerConfig{
		SupportedPairs: []string{""},
	})
	s := NewServer(config.HTTPConfig{APIKey: testKey}, manager, metrics.New(), nil)

	assert.Equal(t, http.StatusOK, do(t, s, http.MethodGet, "/orderbook", "", true).Code)
	assert.Equal(t, http.StatusOK, do(t, s, http.MethodGet, "/trades/recent", "", true).Code)
}
