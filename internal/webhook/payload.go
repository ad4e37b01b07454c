package webhook

import (
	"encoding/json"
	"net/url"
	"strconv"
	"strings"
)

// Normalize flattens an inbound provider notification into one canonical field
// map before any extraction runs. Providers deliver either a JSON document or
// flat form-encoded fields, sometimes nesting the real fields one level under a
// "data" key; extraction stays shape-agnostic by only ever seeing this map.
func Normalize(body []byte, contentType string) map[string]string {
	if strings.Contains(contentType, "json") {
		if fields, ok := fromJSON(body); ok {
			return fields
		}
		return fromForm(body)
	}

	if fields := fromForm(body); len(fields) > 0 {
		return fields
	}
	if fields, ok := fromJSON(body); ok {
		return fields
	}
	return map[string]string{}
}

func fromJSON(body []byte) (map[string]string, bool) {
	var doc map[string]any
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, false
	}

	fields := make(map[string]string, len(doc))
	flattenInto(fields, doc)
	if nested, ok := doc["data"].(map[string]any); ok {
		flattenInto(fields, nested)
	}
	return fields, true
}

func fromForm(body []byte) map[string]string {
	fields := map[string]string{}
	values, err := url.ParseQuery(string(body))
	if err != nil {
		return fields
	}
	for key, vals := range values {
		if len(vals) > 0 && vals[0] != "" {
			fields[key] = vals[0]
		}
	}
	return fields
}

func flattenInto(dst map[string]string, src map[string]any) {
	for key, val := range src {
		switch v := val.(type) {
		case string:
			dst[key] = v
		case float64:
			dst[key] = strconv.FormatFloat(v, 'f', -1, 64)
		case bool:
			dst[key] = strconv.FormatBool(v)
		case json.Number:
			dst[key] = v.String()
		}
	}
}
