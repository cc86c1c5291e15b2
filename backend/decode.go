package backend

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

var errDecode = errors.New("decode response")

// decodeList accepts a bare JSON array or an object carrying the array under
// member or "data".
func decodeList[T any](body []byte, member string) ([]T, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 || bytes.Equal(body, []byte("null")) {
		return []T{}, nil
	}

	if body[0] == '{' {
		var envelope map[string]json.RawMessage
		if err := json.Unmarshal(body, &envelope); err != nil {
			return nil, fmt.Errorf("%w: %w", errDecode, err)
		}
		raw, ok := envelope[member]
		if !ok {
			raw, ok = envelope["data"]
		}
		if !ok {
			return nil, fmt.Errorf("%w: no %q member in response", errDecode, member)
		}
		body = raw
	}

	out := []T{}
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("%w: %w", errDecode, err)
	}
	return out, nil
}

// decodeRecord decodes a single record, unwrapping a {"success", "data"}
// envelope. An empty body yields the zero value.
func decodeRecord[T any](body []byte) (T, error) {
	var out T
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return out, nil
	}

	var envelope struct {
		Success *bool           `json:"success"`
		Data    json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Success != nil && len(envelope.Data) > 0 {
		body = envelope.Data
	}

	if err := json.Unmarshal(body, &out); err != nil {
		return out, fmt.Errorf("%w: %w", errDecode, err)
	}
	return out, nil
}
