package strapi

import (
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strconv"
)

// FiltersEncoding selects how the filters argument is put on the query string
type FiltersEncoding string

const (
	// EncodingJSON sends filters=<compact JSON>
	EncodingJSON FiltersEncoding = "json"
	// EncodingBrackets sends qs-style keys, e.g. filters[title][$eq]=x
	EncodingBrackets FiltersEncoding = "brackets"
)

// EncodeFilters adds the filters value to q under key. A nil value is sent as
// an empty object so the key is always present.
func EncodeFilters(q url.Values, key string, value interface{}, enc FiltersEncoding) error {
	if value == nil {
		value = map[string]interface{}{}
	}

	if enc == EncodingBrackets {
		n, err := encodeBrackets(q, key, value)
		if err != nil {
			return err
		}
		if n == 0 {
			q.Set(key, "")
		}
		return nil
	}

	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encoding filters: %w", err)
	}
	q.Set(key, string(raw))
	return nil
}

// encodeBrackets flattens value into q and reports how many pairs it added.
func encodeBrackets(q url.Values, prefix string, value interface{}) (int, error) {
	var scalar string
	switch v := value.(type) {
	case map[string]interface{}:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		total := 0
		for _, k := range keys {
			n, err := encodeBrackets(q, prefix+"["+k+"]", v[k])
			if err != nil {
				return total, err
			}
			total += n
		}
		return total, nil
	case []interface{}:
		total := 0
		for i, item := range v {
			n, err := encodeBrackets(q, prefix+"["+strconv.Itoa(i)+"]", item)
			if err != nil {
				return total, err
			}
			total += n
		}
		return total, nil
	case nil:
		scalar = ""
	case string:
		scalar = v
	case bool:
		scalar = strconv.FormatBool(v)
	case float64:
		scalar = strconv.FormatFloat(v, 'f', -1, 64)
	case json.Number:
		scalar = v.String()
	case int:
		scalar = strconv.Itoa(v)
	case int64:
		scalar = strconv.FormatInt(v, 10)
	default:
		return 0, fmt.Errorf("encoding filters: unsupported value %T at %s", value, prefix)
	}
	q.Add(prefix, scalar)
	return 1, nil
}
