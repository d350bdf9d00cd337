package binance

import (
	"context"
	"fmt"
	"net/http"

	"tradegate/pkg/core"
	"tradegate/pkg/exchange"
)

const (
	recvWindow = "5000"
	// batchLimit caps CancelOrders; Binance has no batch endpoint, so each id costs one request.
	batchLimit = 10
)

var depthLevels = []int{5, 10, 20, 50, 100, 500, 1000}

func init() {
	exchange.Register(Name, func(config *core.Config, opts ...exchange.ClientOption) (exchange.Exchange, error) {
		return New(config, opts...)
	})
}

// Exchange is the Binance spot adapter.
type Exchange struct {
	*exchange.Base
}

var _ exchange.Exchange = (*Exchange)(nil)

// New creates a Binance adapter. config.Credentials must hold the API key and
// secret; an empty host means ProductionURL.
func New(config *core.Config, opts ...exchange.ClientOption) (*Exchange, error) {
	base, err := exchange.NewBase(config, Protocol{}, opts...)
	if err != nil {
		return nil, err
	}
	return &Exchange{Base: base}, nil
}

func (e *Exchange) signed(op core.Operation, method, path string) *core.Request {
	return core.NewRequest(op, method, path).SetRequireAuth(true)
}

// GetAccountState returns balances and permissions of the account.
func (e *Exchange) GetAccountState(ctx context.Context) core.Result {
	req := e.signed(core.OpGetAccountState, http.MethodGet, "/api/v3/account").
		SetQuery("timestamp", e.Millis())
	return e.Do(ctx, req)
}

// GetOrderBook returns the book for symbol. depth is rounded up to the next
// level Binance serves (5, 10, 20, 50, 100, 500, 1000).
func (e *Exchange) GetOrderBook(ctx context.Context, symbol string, depth int) core.Result {
	if err := exchange.ValidateSymbol(symbol); err != nil {
		return core.Fail(err)
	}
	limit, err := exchange.DepthLevel(depth, depthLevels)
	if err != nil {
		return core.Fail(err)
	}
	req := core.NewRequest(core.OpGetOrderBook, http.MethodGet, "/api/v1/depth").
		SetQuery("symbol", symbol).
		SetQuery("limit", limit)
	return e.Do(ctx, req)
}

// PlaceOrder submits a limit (GTC) or market order.
func (e *Exchange) PlaceOrder(ctx context.Context, req *exchange.OrderRequest) core.Result {
	if err := req.Validate(); err != nil {
		return core.Fail(err)
	}

	r := e.signed(core.OpPlaceOrder, http.MethodPost, "/api/v3/order")
	r.SetBody("symbol", req.Symbol).
		SetBody("side", req.Side.String()).
		SetBody("type", req.Type.String())
	if req.Type == core.TypeLimit {
		r.SetBody("timeInForce", "GTC").
			SetBody("quantity", req.Quantity).
			SetBody("price", req.Price)
	} else {
		r.SetBody("quantity", req.Quantity)
	}
	r.SetBody("recvWindow", recvWindow).
		SetBody("newOrderRespType", "FULL").
		SetBody("timestamp", e.Millis())
	if req.ClientOrderID != "" {
		r.SetBody("newClientOrderId", req.ClientOrderID)
	}
	return e.Do(ctx, r)
}

// CancelOrder cancels one order by id or client order id.
func (e *Exchange) CancelOrder(ctx context.Context, req *exchange.CancelRequest) core.Result {
	if err := req.Validate(); err != nil {
		return core.Fail(err)
	}
	r := e.signed(core.OpCancelOrder, http.MethodDelete, "/api/v3/order")
	e.setLookup(r, req.Symbol, req.OrderID, req.ClientOrderID)
	return e.Do(ctx, r)
}

// CancelOrders cancels up to 10 orders, one request each, in order.
// Every id is attempted even after a failure. On any failure the error's
// RawError holds {"cancelled": [...], "failed": {id: error}}.
func (e *Exchange) CancelOrders(ctx context.Context, symbol string, orderIDs []string) core.Result {
	if err := exchange.ValidateBatch(symbol, orderIDs, batchLimit); err != nil {
		return core.Fail(err)
	}

	acks := make([]any, 0, len(orderIDs))
	cancelled := make([]string, 0, len(orderIDs))
	failed := make(map[string]string)
	var lastErr error
	for _, id := range orderIDs {
		result := e.CancelOrder(ctx, &exchange.CancelRequest{Symbol: symbol, OrderID: id})
		if result.Error != nil {
			failed[id] = result.Error.Error()
			lastErr = result.Error
			continue
		}
		acks = append(acks, result.Success)
		cancelled = append(cancelled, id)
	}
	if len(failed) == 0 {
		return core.Ok(acks)
	}

	e.Logger().Warn().
		Int("cancelled", len(cancelled)).
		Int("failed", len(failed)).
		Msg("batch cancel incomplete")
	return core.Fail(core.NewExchangeError(Name, core.ErrorTypeRejected, 0,
		fmt.Sprintf("%d of %d cancels failed", len(failed), len(orderIDs))).
		WithCode(core.ErrCodeBatchPartial).
		WithRaw(map[string]any{"cancelled": cancelled, "failed": failed}).
		WithCause(lastErr))
}

// GetOrderStatus returns one order by id or client order id.
func (e *Exchange) GetOrderStatus(ctx context.Context, req *exchange.OrderQuery) core.Result {
	if err := req.Validate(); err != nil {
		return core.Fail(err)
	}
	r := e.signed(core.OpGetOrderStatus, http.MethodGet, "/api/v3/order")
	e.setLookup(r, req.Symbol, req.OrderID, req.ClientOrderID)
	return e.Do(ctx, r)
}

func (e *Exchange) setLookup(r *core.Request, symbol, orderID, clientOrderID string) {
	r.SetQuery("symbol", symbol)
	if orderID != "" {
		r.SetQuery("orderId", orderID)
	}
	if clientOrderID != "" {
		r.SetQuery("origClientOrderId", clientOrderID)
	}
	r.SetQuery("timestamp", e.Millis())
}

// GetOpenOrders returns the open orders of symbol. WithLimit is ignored;
// Binance returns every open order.
func (e *Exchange) GetOpenOrders(ctx context.Context, symbol string, _ ...exchange.Option) core.Result {
	if err := exchange.ValidateSymbol(symbol); err != nil {
		return core.Fail(err)
	}
	req := e.signed(core.OpGetOpenOrders, http.MethodGet, "/api/v3/openOrders").
		SetQuery("symbol", symbol).
		SetQuery("timestamp", e.Millis())
	return e.Do(ctx, req)
}

// GetAllOrders returns active, cancelled and filled orders of symbol.
func (e *Exchange) GetAllOrders(ctx context.Context, symbol string) core.Result {
	if err := exchange.ValidateSymbol(symbol); err != nil {
		return core.Fail(err)
	}
	req := e.signed(core.OpGeneric, http.MethodGet, "/api/v3/allOrders").
		SetQuery("symbol", symbol).
		SetQuery("timestamp", e.Millis())
	return e.Do(ctx, req)
}

// GetServerTime returns the venue clock.
func (e *Exchange) GetServerTime(ctx context.Context) core.Result {
	return e.Do(ctx, core.NewRequest(core.OpGeneric, http.MethodGet, "/api/v1/time"))
}

// GetExchangeInfo returns trading rules and symbol filters.
func (e *Exchange) GetExchangeInfo(ctx context.Context) core.Result {
	return e.Do(ctx, core.NewRequest(core.OpGeneric, http.MethodGet, "/api/v1/exchangeInfo"))
}

// GetLatestTicker returns 24h statistics of symbol.
func (e *Exchange) GetLatestTicker(ctx context.Context, symbol string) core.Result {
	if err := exchange.ValidateSymbol(symbol); err != nil {
		return core.Fail(err)
	}
	req := core.NewRequest(core.OpGeneric, http.MethodGet, "/api/v1/ticker/24hr").
		SetQuery("symbol", symbol)
	return e.Do(ctx, req)
}

// CreateListenKey starts a user data stream. Listen key calls carry the API
// key header but no signature.
func (e *Exchange) CreateListenKey(ctx context.Context) core.Result {
	return e.Do(ctx, core.NewRequest(core.OpGeneric, http.MethodPost, "/api/v1/userDataStream"))
}

// KeepAliveListenKey extends a user data stream.
func (e *Exchange) KeepAliveListenKey(ctx context.Context, listenKey string) core.Result {
	return e.listenKey(ctx, http.MethodPut, listenKey)
}

// DeleteListenKey closes a user data stream.
func (e *Exchange) DeleteListenKey(ctx context.Context, listenKey string) core.Result {
	return e.listenKey(ctx, http.MethodDelete, listenKey)
}

func (e *Exchange) listenKey(ctx context.Context, method, listenKey string) core.Result {
	if listenKey == "" {
		return core.Fail(fmt.Errorf("%w: listen key is required", core.ErrInvalidParams))
	}
	req := core.NewRequest(core.OpGeneric, method, "/api/v1/userDataStream").
		SetQuery("listenKey", listenKey)
	return e.Do(ctx, req)
}
