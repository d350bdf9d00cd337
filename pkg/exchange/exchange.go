package exchange

import (
	"context"
	"fmt"

	"github.com/cockroachdb/apd/v3"

	"tradegate/pkg/core"
)

// Exchange is the unified operation set every venue adapter implements.
// Every operation returns a core.Result holding exactly one of a success
// payload or an error. Expected failures never panic.
type Exchange interface {
	Name() string

	GetAccountState(ctx context.Context) core.Result
	GetOrderBook(ctx context.Context, symbol string, depth int) core.Result

	PlaceOrder(ctx context.Context, req *OrderRequest) core.Result
	CancelOrder(ctx context.Context, req *CancelRequest) core.Result
	CancelOrders(ctx context.Context, symbol string, orderIDs []string) core.Result
	GetOrderStatus(ctx context.Context, req *OrderQuery) core.Result
	GetOpenOrders(ctx context.Context, symbol string, opts ...Option) core.Result

	Close() error
}

// OrderRequest contains the parameters required to place a new order on an exchange.
// Price is ignored for market orders. For a market buy on venues that size
// by cost, Quantity is the quote amount to spend.
type OrderRequest struct {
	Symbol        string         `validate:"required"`
	Side          core.OrderSide `validate:"-"`
	Type          core.OrderType `validate:"-"`
	Price         *apd.Decimal   `validate:"-"`
	Quantity      apd.Decimal    `validate:"-"`
	ClientOrderID string         `validate:"omitempty,alphanum,max=64"`
}

// Validate rejects requests that must not reach the network.
func (r *OrderRequest) Validate() error {
	if r == nil {
		return fmt.Errorf("%w: nil order request", core.ErrInvalidParams)
	}
	if err := validate.Struct(r); err != nil {
		return fmt.Errorf("%w: %w", core.ErrInvalidParams, err)
	}
	if r.Side != core.SideBuy && r.Side != core.SideSell {
		return fmt.Errorf("%w: unsupported order side %s", core.ErrInvalidParams, r.Side)
	}
	if !r.Type.Valid() {
		return fmt.Errorf("%w: unsupported order type %s", core.ErrInvalidParams, r.Type)
	}
	if r.Quantity.Sign() <= 0 {
		return fmt.Errorf("%w: quantity must be positive", core.ErrInvalidParams)
	}
	if r.Type == core.TypeLimit && (r.Price == nil || r.Price.Sign() <= 0) {
		return fmt.Errorf("%w: limit order requires a positive price", core.ErrInvalidParams)
	}
	return nil
}

// CancelRequest contains the parameters required to cancel an existing order.
// Exactly one of OrderID and ClientOrderID is needed; OrderID wins when both are set.
type CancelRequest struct {
	Symbol        string
	OrderID       string
	ClientOrderID string
}

func (r *CancelRequest) Validate() error {
	if r == nil {
		return fmt.Errorf("%w: nil cancel request", core.ErrInvalidParams)
	}
	return validateLookup(r.Symbol, r.OrderID, r.ClientOrderID)
}

// OrderQuery contains the parameters required to query order status.
type OrderQuery struct {
	Symbol        string
	OrderID       string
	ClientOrderID string
}

func (q *OrderQuery) Validate() error {
	if q == nil {
		return fmt.Errorf("%w: nil order query", core.ErrInvalidParams)
	}
	return validateLookup(q.Symbol, q.OrderID, q.ClientOrderID)
}

func validateLookup(symbol, orderID, clientOrderID string) error {
	if symbol == "" {
		return fmt.Errorf("%w: symbol is required", core.ErrInvalidParams)
	}
	if orderID == "" && clientOrderID == "" {
		return fmt.Errorf("%w: order id or client order id is required", core.ErrInvalidParams)
	}
	return nil
}

// ValidateBatch checks a batch cancel against the venue's per-request cap.
// Over-cap batches are rejected, never truncated.
func ValidateBatch(symbol string, orderIDs []string, limit int) error {
	if symbol == "" {
		return fmt.Errorf("%w: symbol is required", core.ErrInvalidParams)
	}
	if len(orderIDs) == 0 {
		return fmt.Errorf("%w: no order ids", core.ErrInvalidParams)
	}
	if len(orderIDs) > limit {
		return fmt.Errorf("%w: %d order ids exceed the batch limit of %d", core.ErrInvalidParams, len(orderIDs), limit)
	}
	for _, id := range orderIDs {
		if id == "" {
			return fmt.Errorf("%w: empty order id in batch", core.ErrInvalidParams)
		}
	}
	return nil
}

// DepthLevel maps a requested book depth onto the smallest level the venue
// supports that is at least depth. levels must be ascending. A single-element
// levels slice means any depth up to that maximum is accepted as is.
func DepthLevel(depth int, levels []int) (int, error) {
	if len(levels) == 0 {
		return 0, fmt.Errorf("%w: no depth levels", core.ErrInvalidParams)
	}
	maxDepth := levels[len(levels)-1]
	if depth < 1 || depth > maxDepth {
		return 0, fmt.Errorf("%w: depth %d outside 1..%d", core.ErrInvalidParams, depth, maxDepth)
	}
	if len(levels) == 1 {
		return depth, nil
	}
	for _, level := range levels {
		if depth <= level {
			return level, nil
		}
	}
	return maxDepth, nil
}

// ValidateSymbol rejects an empty symbol.
func ValidateSymbol(symbol string) error {
	if symbol == "" {
		return fmt.Errorf("%w: symbol is required", core.ErrInvalidParams)
	}
	return nil
}
