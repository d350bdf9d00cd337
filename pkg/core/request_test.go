package core

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewRequest(t *testing.T) {
	req := NewRequest(OpGetOrderBook, http.MethodGet, "/api/v1/depth")

	assert.Equal(t, OpGetOrderBook, req.Op)
	assert.Equal(t, http.MethodGet, req.Method)
	assert.Equal(t, "/api/v1/depth", req.Path)
	assert.NotNil(t, req.Headers)
	assert.True(t, req.VerifyTLS)
	assert.False(t, req.RequireAuth)
}

func TestRequest_Setters(t *testing.T) {
	req := NewRequest(OpPlaceOrder, http.MethodPost, "/orders").
		SetQuery("symbol", "BTCUSDT").
		SetBody("price", "1").
		SetHeader("X-Key", "v").
		SetPayload([]byte(`{}`)).
		SetRequireAuth(true)

	assert.Equal(t, "symbol=BTCUSDT", req.Query.Encode(nil))
	assert.Equal(t, "price=1", req.Body.Encode(nil))
	assert.Equal(t, "v", req.Headers["X-Key"])
	assert.Equal(t, []byte(`{}`), req.Payload)
	assert.True(t, req.RequireAuth)
}

func TestJoinURL(t *testing.T) {
	assert.Equal(t, "https://api.binance.com/api/v3/order?a=1", JoinURL("https://api.binance.com/", "/api/v3/order", "a=1"))
	assert.Equal(t, "https://api.binance.com/api/v1/time", JoinURL("https://api.binance.com", "/api/v1/time", ""))
}
