package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOperation_String(t *testing.T) {
	tests := []struct {
		name string
		op   Operation
		want string
	}{
		{"generic", OpGeneric, "GENERIC"},
		{"get_account_state", OpGetAccountState, "GET_ACCOUNT_STATE"},
		{"get_order_book", OpGetOrderBook, "GET_ORDER_BOOK"},
		{"place_order", OpPlaceOrder, "PLACE_ORDER"},
		{"cancel_order", OpCancelOrder, "CANCEL_ORDER"},
		{"cancel_orders", OpCancelOrders, "CANCEL_ORDERS"},
		{"get_order_status", OpGetOrderStatus, "GET_ORDER_STATUS"},
		{"get_open_orders", OpGetOpenOrders, "GET_OPEN_ORDERS"},
		{"resolve_account", OpResolveAccount, "RESOLVE_ACCOUNT"},
		{"out_of_range", Operation(99), "UNKNOWN"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.op.String())
		})
	}
}

func TestOperation_IsTrading(t *testing.T) {
	assert.True(t, OpPlaceOrder.IsTrading())
	assert.True(t, OpCancelOrder.IsTrading())
	assert.True(t, OpCancelOrders.IsTrading())
	assert.False(t, OpGetOrderBook.IsTrading())
	assert.False(t, OpGetAccountState.IsTrading())
	assert.False(t, OpResolveAccount.IsTrading())
}
