package core

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/cockroachdb/apd/v3"
)

// FormatValue renders a parameter value the way venues expect it on the wire.
// Numbers never use exponent notation and never carry trailing zeros, so the
// same logical value always produces the same signed bytes.
func FormatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case int:
		return strconv.Itoa(val)
	case int32:
		return strconv.FormatInt(int64(val), 10)
	case int64:
		return strconv.FormatInt(val, 10)
	case uint:
		return strconv.FormatUint(uint64(val), 10)
	case uint64:
		return strconv.FormatUint(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case bool:
		return strconv.FormatBool(val)
	case json.Number:
		return val.String()
	case apd.Decimal:
		return formatDecimal(&val)
	case *apd.Decimal:
		if val == nil {
			return ""
		}
		return formatDecimal(val)
	case []string:
		return strings.Join(val, ",")
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprint(val)
	}
}

func formatDecimal(d *apd.Decimal) string {
	if d.IsZero() {
		return "0"
	}
	var reduced apd.Decimal
	reduced.Reduce(d)
	return reduced.Text('f')
}
