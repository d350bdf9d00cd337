package transport

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradegate/internal/circuitbreaker"
	"tradegate/pkg/core"
)

func newTestClient(t *testing.T, mutate ...func(*core.Config)) *Client {
	t.Helper()
	config := core.DefaultConfig("binance")
	for _, m := range mutate {
		m(config)
	}
	client := NewClient(config, zerolog.Nop())
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func getRequest(url string) *core.Request {
	req := core.NewRequest(core.OpGetOrderBook, http.MethodGet, "/test")
	req.URL = url
	return req
}

func TestClient_Fetch_JSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/test", r.URL.Path)
		w.Write([]byte(`{"orderId":123456789012345678,"price":"0.1"}`))
	}))
	defer server.Close()

	status, success, err := newTestClient(t).Fetch(context.Background(), getRequest(server.URL+"/test"))

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, status)
	doc, ok := success.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, json.Number("123456789012345678"), doc["orderId"])
	assert.Equal(t, "0.1", doc["price"])
}

func TestClient_Fetch_SuccessBodies(t *testing.T) {
	tests := []struct {
		name string
		body string
		want any
	}{
		{"empty", "", map[string]any{}},
		{"whitespace", "  \n", map[string]any{}},
		{"text", "pong", "pong"},
		{"array", `[1,2]`, []any{json.Number("1"), json.Number("2")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			_, success, err := newTestClient(t).Fetch(context.Background(), getRequest(server.URL))

			require.NoError(t, err)
			assert.Equal(t, tt.want, success)
		})
	}
}

func TestClient_Fetch_SendsURLVerbatim(t *testing.T) {
	const query = "symbol=BTCUSDT&side=BUY&Signature=ab%2Bcd%3D&timestamp=1"
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, query, r.URL.RawQuery)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	_, _, err := newTestClient(t).Fetch(context.Background(), getRequest(server.URL+"/test?"+query))
	require.NoError(t, err)
}

func TestClient_Fetch_PayloadAndHeaders(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, `{"symbol":"btcusdt"}`, string(body))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "key", r.Header.Get("X-Api-Key"))
		w.Write([]byte(`{"status":"ok"}`))
	}))
	defer server.Close()

	req := core.NewRequest(core.OpPlaceOrder, http.MethodPost, "/orders").
		SetHeader("Content-Type", "application/json").
		SetHeader("X-Api-Key", "key").
		SetPayload([]byte(`{"symbol":"btcusdt"}`))
	req.URL = server.URL + "/orders"

	_, success, err := newTestClient(t).Fetch(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"status": "ok"}, success)
}

func TestClient_Fetch_StatusErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   core.ErrorType
		code   core.ErrorCode
	}{
		{"unauthorized", http.StatusUnauthorized, `{"code":-2015,"msg":"Invalid API-key"}`, core.ErrorTypeAuthentication, core.ErrCodeAuth},
		{"forbidden", http.StatusForbidden, "", core.ErrorTypeAuthentication, core.ErrCodeAuth},
		{"not_found", http.StatusNotFound, "", core.ErrorTypeNotFound, core.ErrCodeNotFound},
		{"rate_limited", http.StatusTooManyRequests, "", core.ErrorTypeRateLimit, core.ErrCodeRateLimit},
		{"bad_request", http.StatusBadRequest, "bad symbol", core.ErrorTypeBadRequest, core.ErrCodeBadRequest},
		{"server_error", http.StatusBadGateway, "", core.ErrorTypeServerError, core.ErrCodeServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			status, success, err := newTestClient(t).Fetch(context.Background(), getRequest(server.URL))

			assert.Equal(t, tt.status, status)
			assert.Nil(t, success)
			var exErr *core.ExchangeError
			require.ErrorAs(t, err, &exErr)
			assert.Equal(t, tt.want, exErr.Type)
			assert.Equal(t, string(tt.code), exErr.Code)
			assert.Equal(t, tt.status, exErr.StatusCode)
			assert.Equal(t, "binance", exErr.Exchange)
		})
	}
}

func TestClient_Fetch_RawErrorKeepsBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"code":-1013,"msg":"Filter failure: LOT_SIZE"}`))
	}))
	defer server.Close()

	_, _, err := newTestClient(t).Fetch(context.Background(), getRequest(server.URL))

	var exErr *core.ExchangeError
	require.ErrorAs(t, err, &exErr)
	assert.Equal(t, map[string]any{"code": json.Number("-1013"), "msg": "Filter failure: LOT_SIZE"}, exErr.RawError)
}

func TestClient_Fetch_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}))
	defer server.Close()

	req := getRequest(server.URL)
	req.Timeout = 20 * time.Millisecond

	status, success, err := newTestClient(t).Fetch(context.Background(), req)

	assert.Zero(t, status)
	assert.Nil(t, success)
	assert.True(t, core.IsTimeoutError(err), "got %v", err)
}

func TestClient_Fetch_NetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	status, _, err := newTestClient(t).Fetch(context.Background(), getRequest(url))

	assert.Zero(t, status)
	assert.True(t, core.IsNetworkError(err), "got %v", err)
	assert.True(t, core.IsErrorCode(err, core.ErrCodeNetwork))
}

func TestClient_Fetch_TLSVerification(t *testing.T) {
	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := newTestClient(t)

	_, _, err := client.Fetch(context.Background(), getRequest(server.URL))
	assert.True(t, core.IsNetworkError(err), "self-signed certificate must be rejected")

	req := getRequest(server.URL)
	req.VerifyTLS = false
	_, _, err = client.Fetch(context.Background(), req)
	assert.NoError(t, err)

	insecure := newTestClient(t, func(c *core.Config) { c.InsecureSkipVerify = true })
	_, _, err = insecure.Fetch(context.Background(), getRequest(server.URL))
	assert.NoError(t, err)
}

func TestClient_Fetch_CircuitBreaker(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := newTestClient(t, func(c *core.Config) {
		c.CircuitBreakerFailThreshold = 2
		c.CircuitBreakerTimeout = time.Hour
	})

	for i := 0; i < 2; i++ {
		_, _, err := client.Fetch(context.Background(), getRequest(server.URL))
		assert.True(t, core.IsErrorCode(err, core.ErrCodeServerError))
	}
	assert.Equal(t, circuitbreaker.StateOpen, client.Breaker().State())

	_, _, err := client.Fetch(context.Background(), getRequest(server.URL))
	assert.ErrorIs(t, err, core.ErrCircuitBreakerOpen)
	assert.True(t, core.IsErrorCode(err, core.ErrCodeCircuitBreaker))
	assert.Equal(t, 2, calls, "open breaker fails fast")
}

func TestClient_Fetch_ClientErrorsDoNotTripBreaker(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	client := newTestClient(t, func(c *core.Config) { c.CircuitBreakerFailThreshold = 1 })

	for i := 0; i < 3; i++ {
		_, _, err := client.Fetch(context.Background(), getRequest(server.URL))
		assert.True(t, core.IsErrorCode(err, core.ErrCodeBadRequest))
	}
	assert.Equal(t, circuitbreaker.StateClosed, client.Breaker().State())
}

func TestClient_Close(t *testing.T) {
	client := NewClient(core.DefaultConfig("okex"), zerolog.Nop())
	require.NoError(t, client.Close())
	require.NoError(t, client.Close())

	_, _, err := client.Fetch(context.Background(), getRequest("http://127.0.0.1:1"))
	assert.ErrorIs(t, err, core.ErrClientClosed)
}
