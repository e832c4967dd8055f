package webhook

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// stringify converts an id that may be sent as a JSON string or number.
func stringify(v interface{}) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case json.Number:
		return val.String()
	default:
		return ""
	}
}

// parseAmount reads an amount sent as a JSON number or a numeric string.
// Anything else is zero, amounts never fail a decode.
func parseAmount(raw json.RawMessage) decimal.Decimal {
	s := strings.TrimSpace(string(raw))
	if unquoted, ok := unquote(s); ok {
		s = strings.TrimSpace(unquoted)
	}
	if s == "" || s == "null" {
		return decimal.Zero
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// parseMetadata reads a metadata object, also when it is sent JSON-encoded
// inside a string. Any other shape yields nil.
func parseMetadata(raw json.RawMessage) map[string]interface{} {
	s := strings.TrimSpace(string(raw))
	if unquoted, ok := unquote(s); ok {
		s = strings.TrimSpace(unquoted)
	}
	if !strings.HasPrefix(s, "{") {
		return nil
	}

	var m map[string]interface{}
	dec := json.NewDecoder(bytes.NewReader([]byte(s)))
	dec.UseNumber()
	if err := dec.Decode(&m); err != nil {
		return nil
	}
	return m
}

// unquote decodes s when it is a JSON string.
func unquote(s string) (string, bool) {
	if !strings.HasPrefix(s, `"`) {
		return "", false
	}
	var out string
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		return "", false
	}
	return out, true
}
