package huobi

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"tradegate/pkg/core"
	"tradegate/pkg/exchange"
)

const (
	batchLimit     = 50
	openOrdersSize = 500
)

var depthLevels = []int{5, 10, 20}

func init() {
	exchange.Register(Name, func(config *core.Config, opts ...exchange.ClientOption) (exchange.Exchange, error) {
		return New(config, opts...)
	})
}

// Exchange is the Huobi spot adapter.
//
// Private order and balance endpoints need the id of the spot account. It is
// looked up on first use and cached for the life of the adapter. Concurrent
// first callers may each look it up; the first stored value wins and is
// never replaced.
type Exchange struct {
	*exchange.Base

	mu        sync.RWMutex
	accountID string
}

var _ exchange.Exchange = (*Exchange)(nil)

func New(config *core.Config, opts ...exchange.ClientOption) (*Exchange, error) {
	base, err := exchange.NewBase(config, Protocol{}, opts...)
	if err != nil {
		return nil, err
	}
	return &Exchange{Base: base}, nil
}

func signed(op core.Operation, method, path string) *core.Request {
	return core.NewRequest(op, method, path).SetRequireAuth(true)
}

// AccountID returns the spot account id, resolving it on first use. The
// error wraps core.ErrAccountNotResolved when the listing fails or holds no
// spot account.
func (e *Exchange) AccountID(ctx context.Context) (string, error) {
	e.mu.RLock()
	id := e.accountID
	e.mu.RUnlock()
	if id != "" {
		return id, nil
	}

	result := e.GetUserAccounts(ctx)
	if result.Error != nil {
		return "", core.NewResolutionError(Name, result.Error)
	}
	id, ok := spotAccount(result.Success)
	if !ok {
		return "", core.NewResolutionError(Name, nil)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.accountID == "" {
		e.accountID = id
		e.Logger().Debug().Str("account_id", id).Msg("spot account resolved")
	}
	return e.accountID, nil
}

func spotAccount(accounts any) (string, bool) {
	list, ok := accounts.([]any)
	if !ok {
		return "", false
	}
	for _, item := range list {
		account, ok := item.(map[string]any)
		if !ok || account["type"] != "spot" {
			continue
		}
		if id := core.FormatValue(account["id"]); id != "" {
			return id, true
		}
	}
	return "", false
}

// GetUserAccounts lists every account of the user.
func (e *Exchange) GetUserAccounts(ctx context.Context) core.Result {
	return e.Do(ctx, signed(core.OpResolveAccount, http.MethodGet, "/v1/account/accounts"))
}

// GetAccountState returns the balances of the spot account.
func (e *Exchange) GetAccountState(ctx context.Context) core.Result {
	id, err := e.AccountID(ctx)
	if err != nil {
		return core.Fail(err)
	}
	path := "/v1/account/accounts/" + url.PathEscape(id) + "/balance"
	return e.Do(ctx, signed(core.OpGetAccountState, http.MethodGet, path))
}

// GetBalanceAll returns the aggregated balance of all sub-users.
func (e *Exchange) GetBalanceAll(ctx context.Context) core.Result {
	return e.Do(ctx, signed(core.OpGeneric, http.MethodGet, "/v1/subuser/aggregate-balance"))
}

// GetServerTime returns the venue clock in milliseconds.
func (e *Exchange) GetServerTime(ctx context.Context) core.Result {
	return e.Do(ctx, core.NewRequest(core.OpGeneric, http.MethodGet, "/v1/common/timestamp"))
}

// GetOrderBook returns merged depth (step0). depth is rounded up to 5, 10 or 20.
func (e *Exchange) GetOrderBook(ctx context.Context, symbol string, depth int) core.Result {
	if err := exchange.ValidateSymbol(symbol); err != nil {
		return core.Fail(err)
	}
	level, err := exchange.DepthLevel(depth, depthLevels)
	if err != nil {
		return core.Fail(err)
	}
	req := core.NewRequest(core.OpGetOrderBook, http.MethodGet, "/market/depth").
		SetQuery("symbol", symbol).
		SetQuery("type", "step0").
		SetQuery("depth", level)
	return e.Do(ctx, req)
}

// PlaceOrder submits an order on the spot account. For a market buy,
// Quantity is the quote amount to spend.
func (e *Exchange) PlaceOrder(ctx context.Context, req *exchange.OrderRequest) core.Result {
	if err := req.Validate(); err != nil {
		return core.Fail(err)
	}
	id, err := e.AccountID(ctx)
	if err != nil {
		return core.Fail(err)
	}

	r := signed(core.OpPlaceOrder, http.MethodPost, "/v1/order/orders/place")
	r.SetBody("account-id", id).
		SetBody("amount", req.Quantity)
	if req.Type == core.TypeLimit {
		r.SetBody("price", req.Price)
	}
	r.SetBody("source", "api").
		SetBody("symbol", req.Symbol).
		SetBody("type", orderType(req.Side, req.Type))
	if req.ClientOrderID != "" {
		r.SetBody("client-order-id", req.ClientOrderID)
	}
	return e.Do(ctx, r)
}

// orderType renders buy-limit, sell-limit, buy-market or sell-market.
func orderType(side core.OrderSide, kind core.OrderType) string {
	return strings.ToLower(side.String()) + "-" + strings.ToLower(kind.String())
}

// CancelOrder cancels by order id, or by client order id when no order id is given.
func (e *Exchange) CancelOrder(ctx context.Context, req *exchange.CancelRequest) core.Result {
	if err := req.Validate(); err != nil {
		return core.Fail(err)
	}
	if req.OrderID != "" {
		path := "/v1/order/orders/" + url.PathEscape(req.OrderID) + "/submitcancel"
		return e.Do(ctx, signed(core.OpCancelOrder, http.MethodPost, path))
	}
	r := signed(core.OpCancelOrder, http.MethodPost, "/v1/order/orders/submitCancelClientOrder").
		SetBody("client-order-id", req.ClientOrderID)
	return e.Do(ctx, r)
}

// CancelOrders cancels up to 50 orders in one request. Ids the venue could
// not cancel turn the result into an error holding the venue's answer.
func (e *Exchange) CancelOrders(ctx context.Context, symbol string, orderIDs []string) core.Result {
	if err := exchange.ValidateBatch(symbol, orderIDs, batchLimit); err != nil {
		return core.Fail(err)
	}
	r := signed(core.OpCancelOrders, http.MethodPost, "/v1/order/orders/batchcancel").
		SetBody("order-ids", orderIDs)

	result := e.Do(ctx, r)
	if result.Error != nil {
		return result
	}
	if data, ok := result.Success.(map[string]any); ok {
		if failed, ok := data["failed"].([]any); ok && len(failed) > 0 {
			return core.Fail(core.NewRejection(Name, http.StatusOK, string(core.ErrCodeBatchPartial),
				fmt.Sprintf("%d of %d cancels failed", len(failed), len(orderIDs)), data))
		}
	}
	return result
}

// GetOrderStatus returns one order by id or client order id.
func (e *Exchange) GetOrderStatus(ctx context.Context, req *exchange.OrderQuery) core.Result {
	if err := req.Validate(); err != nil {
		return core.Fail(err)
	}
	if req.OrderID != "" {
		path := "/v1/order/orders/" + url.PathEscape(req.OrderID)
		return e.Do(ctx, signed(core.OpGetOrderStatus, http.MethodGet, path))
	}
	r := signed(core.OpGetOrderStatus, http.MethodGet, "/v1/order/orders/getClientOrder").
		SetQuery("clientOrderId", req.ClientOrderID)
	return e.Do(ctx, r)
}

// GetOpenOrders returns up to 500 open orders of symbol on the spot account.
func (e *Exchange) GetOpenOrders(ctx context.Context, symbol string, opts ...exchange.Option) core.Result {
	if err := exchange.ValidateSymbol(symbol); err != nil {
		return core.Fail(err)
	}
	size := openOrdersSize
	if limit := exchange.ApplyOptions(opts...).Limit; limit != 0 {
		if limit < 0 || limit > openOrdersSize {
			return core.Fail(fmt.Errorf("%w: limit %d outside 1..%d", core.ErrInvalidParams, limit, openOrdersSize))
		}
		size = limit
	}
	id, err := e.AccountID(ctx)
	if err != nil {
		return core.Fail(err)
	}
	r := signed(core.OpGetOpenOrders, http.MethodGet, "/v1/order/openOrders").
		SetQuery("account-id", id).
		SetQuery("symbol", symbol).
		SetQuery("size", size)
	return e.Do(ctx, r)
}
