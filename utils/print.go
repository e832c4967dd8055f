package utils

import (
	"encoding/json"
	"fmt"
	"io"
)

// PrettyPrint writes each value to w as indented JSON.
// Raw JSON bodies are re-indented instead of being encoded as base64.
func PrettyPrint(w io.Writer, v ...interface{}) error {
	for _, i := range v {
		if raw, ok := i.([]byte); ok && json.Valid(raw) {
			i = json.RawMessage(raw)
		}

		b, err := json.MarshalIndent(i, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal value: %w", err)
		}
		if _, err := fmt.Fprintln(w, string(b)); err != nil {
			return err
		}
	}
	return nil
}
