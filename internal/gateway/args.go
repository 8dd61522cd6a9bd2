package gateway

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// isMissing treats absent and falsy values (nil, "", false, 0, empty
// object or array) as not supplied.
func isMissing(v interface{}) bool {
	if v == nil {
		return true
	}
	switch t := v.(type) {
	case string:
		return t == ""
	case bool:
		return !t
	case float64:
		return t == 0
	case json.Number:
		f, err := t.Float64()
		return err == nil && f == 0
	case map[string]interface{}:
		return len(t) == 0
	case []interface{}:
		return len(t) == 0
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map, reflect.Slice, reflect.Array:
		return rv.Len() == 0
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return rv.IsZero()
	case reflect.Pointer, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

// stringArg renders an identifier-like argument for use in a URL path.
// JSON numbers arrive as json.Number or float64; both print without a decimal when integral.
func stringArg(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case json.Number:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}

// missingFields lists the required names whose values are missing, in order.
func missingFields(required []string, args map[string]interface{}) []string {
	var missing []string
	for _, name := range required {
		if isMissing(args[name]) {
			missing = append(missing, name)
		}
	}
	return missing
}

// requiredDetail phrases missing field names: "a is required",
// "a and b are required", "a, b, and c are required".
func requiredDetail(names []string) string {
	switch len(names) {
	case 0:
		return ""
	case 1:
		return names[0] + " is required"
	case 2:
		return names[0] + " and " + names[1] + " are required"
	default:
		return strings.Join(names[:len(names)-1], ", ") + ", and " + names[len(names)-1] + " are required"
	}
}
