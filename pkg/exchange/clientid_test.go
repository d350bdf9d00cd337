package exchange

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

var clientIDPattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9]{0,31}$`)

func TestNewClientOrderID(t *testing.T) {
	tests := []struct {
		name   string
		prefix string
		starts string
	}{
		{"empty", "", "t"},
		{"letters", "grid", "grid"},
		{"digit_first", "7up", "t7up"},
		{"symbols_dropped", "my-bot_1", "mybot1"},
		{"long", "averyveryveryverylongprefixthatoverflows", "averyveryveryverylongprefixthato"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id := NewClientOrderID(tt.prefix)
			assert.Regexp(t, clientIDPattern, id)
			assert.True(t, len(id) <= 32)
			assert.Equal(t, tt.starts, id[:len(tt.starts)])
		})
	}

	assert.NotEqual(t, NewClientOrderID("x"), NewClientOrderID("x"))
}
