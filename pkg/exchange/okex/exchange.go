package okex

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"strings"

	"tradegate/pkg/core"
	"tradegate/pkg/exchange"
)

const (
	maxDepth        = 200
	batchLimit      = 10
	openOrdersLimit = 100
)

func init() {
	exchange.Register(Name, func(config *core.Config, opts ...exchange.ClientOption) (exchange.Exchange, error) {
		return New(config, opts...)
	})
}

// Exchange is the OKEx v3 spot adapter.
type Exchange struct {
	*exchange.Base
}

var _ exchange.Exchange = (*Exchange)(nil)

// New creates an OKEx adapter. OKEx requires the API passphrase in addition
// to the key and secret.
func New(config *core.Config, opts ...exchange.ClientOption) (*Exchange, error) {
	if config != nil && config.Credentials != nil && config.Credentials.Passphrase == "" {
		return nil, fmt.Errorf("%w: okex requires a passphrase", core.ErrNoCredentials)
	}
	base, err := exchange.NewBase(config, Protocol{}, opts...)
	if err != nil {
		return nil, err
	}
	return &Exchange{Base: base}, nil
}

func signed(op core.Operation, method, path string) *core.Request {
	return core.NewRequest(op, method, path).SetRequireAuth(true)
}

// GetAccountState returns the spot account balances.
func (e *Exchange) GetAccountState(ctx context.Context) core.Result {
	return e.Do(ctx, signed(core.OpGetAccountState, http.MethodGet, "/api/spot/v3/accounts"))
}

// GetOrderBook returns up to 200 levels per side.
func (e *Exchange) GetOrderBook(ctx context.Context, symbol string, depth int) core.Result {
	if err := exchange.ValidateSymbol(symbol); err != nil {
		return core.Fail(err)
	}
	size, err := exchange.DepthLevel(depth, []int{maxDepth})
	if err != nil {
		return core.Fail(err)
	}
	path := "/api/spot/v3/instruments/" + url.PathEscape(symbol) + "/book"
	req := core.NewRequest(core.OpGetOrderBook, http.MethodGet, path).SetQuery("size", size)
	return e.Do(ctx, req)
}

// PlaceOrder submits a spot order. A limit order sends price and size. A
// market buy spends Quantity of the quote currency (notional); a market sell
// sells Quantity of the base currency (size).
func (e *Exchange) PlaceOrder(ctx context.Context, req *exchange.OrderRequest) core.Result {
	if err := req.Validate(); err != nil {
		return core.Fail(err)
	}

	r := signed(core.OpPlaceOrder, http.MethodPost, "/api/spot/v3/orders")
	r.SetBody("side", strings.ToLower(req.Side.String())).
		SetBody("instrument_id", req.Symbol).
		SetBody("margin_trading", "1").
		SetBody("type", strings.ToLower(req.Type.String()))
	switch {
	case req.Type == core.TypeLimit:
		r.SetBody("price", req.Price).SetBody("size", req.Quantity)
	case req.Side == core.SideBuy:
		r.SetBody("notional", req.Quantity)
	default:
		r.SetBody("size", req.Quantity)
	}
	if req.ClientOrderID != "" {
		r.SetBody("client_oid", req.ClientOrderID)
	}
	return e.Do(ctx, r)
}

// CancelOrder cancels by order id or client order id. On {"result": true}
// the success payload is the identifier that was cancelled.
func (e *Exchange) CancelOrder(ctx context.Context, req *exchange.CancelRequest) core.Result {
	if err := req.Validate(); err != nil {
		return core.Fail(err)
	}
	id := req.OrderID
	if id == "" {
		id = req.ClientOrderID
	}

	r := signed(core.OpCancelOrder, http.MethodPost, "/api/spot/v3/cancel_orders/"+url.PathEscape(id)).
		SetBody("instrument_id", req.Symbol)
	result := e.Do(ctx, r)
	if result.Error != nil {
		return result
	}
	if !acknowledged(result.Success) {
		return core.Fail(core.NewRejection(Name, http.StatusOK, "", "cancel not acknowledged", result.Success))
	}
	return core.Ok(id)
}

// CancelOrders cancels up to 10 orders of symbol in one request. Any entry
// answered with result false turns the whole result into an error holding
// the venue's answer.
func (e *Exchange) CancelOrders(ctx context.Context, symbol string, orderIDs []string) core.Result {
	if err := exchange.ValidateBatch(symbol, orderIDs, batchLimit); err != nil {
		return core.Fail(err)
	}

	var batch core.Params
	batch.Set("instrument_id", symbol).Set("order_ids", orderIDs)
	r := signed(core.OpCancelOrders, http.MethodPost, "/api/spot/v3/cancel_batch_orders").
		SetPayload(mustEncode([]core.Params{batch}))

	result := e.Do(ctx, r)
	if result.Error != nil {
		return result
	}
	if entries, ok := batchEntries(result.Success); ok {
		if slices.ContainsFunc(entries, func(entry any) bool { return !acknowledged(entry) }) {
			return core.Fail(core.NewRejection(Name, http.StatusOK, string(core.ErrCodeBatchPartial),
				"batch cancel not fully acknowledged", result.Success))
		}
	}
	return result
}

func acknowledged(v any) bool {
	m, ok := v.(map[string]any)
	if !ok {
		return false
	}
	switch r := m["result"].(type) {
	case bool:
		return r
	case string:
		return r == "true"
	}
	return false
}

// batchEntries flattens {"btc-usdt": [{...}, ...]} into its entries.
func batchEntries(v any) ([]any, bool) {
	m, ok := v.(map[string]any)
	if !ok {
		return nil, false
	}
	var entries []any
	for _, per := range m {
		switch list := per.(type) {
		case []any:
			entries = append(entries, list...)
		case map[string]any:
			entries = append(entries, list)
		}
	}
	return entries, len(entries) > 0
}

// GetOrderStatus returns one order by id or client order id.
func (e *Exchange) GetOrderStatus(ctx context.Context, req *exchange.OrderQuery) core.Result {
	if err := req.Validate(); err != nil {
		return core.Fail(err)
	}
	id := req.OrderID
	if id == "" {
		id = req.ClientOrderID
	}
	r := signed(core.OpGetOrderStatus, http.MethodGet, "/api/spot/v3/orders/"+url.PathEscape(id)).
		SetQuery("instrument_id", req.Symbol)
	return e.Do(ctx, r)
}

// GetOpenOrders returns up to WithLimit (default and maximum 100) open orders of symbol.
func (e *Exchange) GetOpenOrders(ctx context.Context, symbol string, opts ...exchange.Option) core.Result {
	if err := exchange.ValidateSymbol(symbol); err != nil {
		return core.Fail(err)
	}
	limit := openOrdersLimit
	if l := exchange.ApplyOptions(opts...).Limit; l != 0 {
		if l < 0 || l > openOrdersLimit {
			return core.Fail(fmt.Errorf("%w: limit %d outside 1..%d", core.ErrInvalidParams, l, openOrdersLimit))
		}
		limit = l
	}
	r := signed(core.OpGetOpenOrders, http.MethodGet, "/api/spot/v3/orders_pending").
		SetQuery("instrument_id", symbol).
		SetQuery("limit", limit)
	return e.Do(ctx, r)
}
