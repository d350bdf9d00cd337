package core

// Operation represents a type of action that can be performed on an exchange.
type Operation int

// Operation constants define all supported exchange operations.
const (
	// OpGeneric is any venue call outside the unified operation set.
	OpGeneric Operation = iota
	// OpGetAccountState retrieves account balances.
	OpGetAccountState
	// OpGetOrderBook retrieves the current order book depth.
	OpGetOrderBook
	// OpPlaceOrder submits a new order to the exchange.
	OpPlaceOrder
	// OpCancelOrder cancels an existing order.
	OpCancelOrder
	// OpCancelOrders cancels several orders at once.
	OpCancelOrders
	// OpGetOrderStatus retrieves details of a specific order.
	OpGetOrderStatus
	// OpGetOpenOrders retrieves all open orders.
	OpGetOpenOrders
	// OpResolveAccount lists accounts to resolve an account identifier.
	OpResolveAccount
)

var operationNames = [...]string{
	"GENERIC",
	"GET_ACCOUNT_STATE",
	"GET_ORDER_BOOK",
	"PLACE_ORDER",
	"CANCEL_ORDER",
	"CANCEL_ORDERS",
	"GET_ORDER_STATUS",
	"GET_OPEN_ORDERS",
	"RESOLVE_ACCOUNT",
}

// String returns the string representation of the operation.
func (o Operation) String() string {
	if o < 0 || int(o) >= len(operationNames) {
		return "UNKNOWN"
	}
	return operationNames[o]
}

// IsTrading reports whether the operation changes order state.
func (o Operation) IsTrading() bool {
	switch o {
	case OpPlaceOrder, OpCancelOrder, OpCancelOrders:
		return true
	}
	return false
}
