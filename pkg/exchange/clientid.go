package exchange

import (
	"strings"

	"github.com/google/uuid"
)

const maxClientOrderID = 32

// NewClientOrderID returns a random client order id that every supported
// venue accepts: it starts with a letter, is alphanumeric and at most 32
// characters long. Non-alphanumeric characters of prefix are dropped.
func NewClientOrderID(prefix string) string {
	var sb strings.Builder
	for _, r := range prefix {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			sb.WriteRune(r)
		}
	}
	id := sb.String()
	if id == "" || id[0] < 'A' || (id[0] > 'Z' && id[0] < 'a') || id[0] > 'z' {
		id = "t" + id
	}
	id += strings.ReplaceAll(uuid.NewString(), "-", "")
	if len(id) > maxClientOrderID {
		id = id[:maxClientOrderID]
	}
	return id
}
