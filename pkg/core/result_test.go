package core

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertExactlyOne(t *testing.T, r Result) {
	t.Helper()
	assert.True(t, (r.Success == nil) != (r.Error == nil), "exactly one of success/error must be set: %+v", r)
}

func TestResult_ExactlyOne(t *testing.T) {
	results := []Result{
		Ok(map[string]any{"a": 1}),
		Ok(nil),
		Ok("order-1"),
		Fail(errors.New("boom")),
		Fail(nil),
	}

	for _, r := range results {
		assertExactlyOne(t, r)
	}
}

func TestResult_OkNil(t *testing.T) {
	r := Ok(nil)

	assert.True(t, r.IsOK())
	assert.Equal(t, map[string]any{}, r.Success)
}

func TestResult_FailNil(t *testing.T) {
	r := Fail(nil)

	assert.False(t, r.IsOK())
	assert.ErrorIs(t, r.Error, ErrEmptyResult)
}

func TestResult_Unpack(t *testing.T) {
	v, err := Ok([]any{"x"}).Unpack()
	require.NoError(t, err)
	assert.Equal(t, []any{"x"}, v)

	v, err = Fail(ErrInvalidParams).Unpack()
	assert.Nil(t, v)
	assert.ErrorIs(t, err, ErrInvalidParams)
}

func TestResult_Decode(t *testing.T) {
	r := Ok(map[string]any{"orderId": 12345, "status": "NEW"})

	var order struct {
		OrderID int64  `json:"orderId"`
		Status  string `json:"status"`
	}
	require.NoError(t, r.Decode(&order))
	assert.Equal(t, int64(12345), order.OrderID)
	assert.Equal(t, "NEW", order.Status)

	assert.ErrorIs(t, Fail(ErrInvalidParams).Decode(&order), ErrInvalidParams)
}
