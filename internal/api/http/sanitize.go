package http

import "github.com/microcosm-cc/bluemonday"

// propPolicy strips active markup from user-supplied string props at the
// API boundary. The store itself stays byte-faithful; only inbound HTTP
// payloads are filtered.
var propPolicy = bluemonday.UGCPolicy()

// sanitizeProps walks a props mapping and sanitizes every string value,
// including nested maps and slices
func sanitizeProps(props map[string]interface{}) map[string]interface{} {
	if props == nil {
		return nil
	}
	out := make(map[string]interface{}, len(props))
	for k, v := range props {
		out[k] = sanitizeValue(v)
	}
	return out
}

func sanitizeValue(v interface{}) interface{} {
	switch t := v.(type) {
	case string:
		return propPolicy.Sanitize(t)
	case map[string]interface{}:
		return sanitizeProps(t)
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, e := range t {
			out[i] = sanitizeValue(e)
		}
		return out
	default:
		return v
	}
}
