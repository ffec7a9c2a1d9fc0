package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

// ErrEmptyMessage is returned by DecodeStrict for a zero-length frame.
var ErrEmptyMessage = errors.New("protocol: empty message")

// Decode parses a client frame. Anything that is not a JSON object yields
// the zero Inbound.
func Decode(b []byte) Inbound {
	in, _ := DecodeStrict(b)
	return in
}

// DecodeStrict parses a client frame and reports why it could not be
// decoded. Non-string "type" or "name" values are ignored. A truthy
// non-string "action" is kept in its JSON text form so it still counts as
// present.
func DecodeStrict(b []byte) (Inbound, error) {
	if len(b) == 0 {
		return Inbound{}, ErrEmptyMessage
	}

	var fields map[string]any
	if err := json.Unmarshal(b, &fields); err != nil {
		return Inbound{}, fmt.Errorf("protocol: decode message: %w", err)
	}

	var in Inbound
	if v, ok := fields["type"].(string); ok {
		in.Type = v
	}
	if v, ok := fields["name"].(string); ok {
		in.Name = v
	}
	// Falsy JSON values (false, 0, [], {}) count as a missing action.
	switch v := fields["action"].(type) {
	case nil:
	case string:
		in.Action = v
	case bool:
		if v {
			in.Action = "true"
		}
	case float64:
		if v != 0 {
			in.Action = strconv.FormatFloat(v, 'f', -1, 64)
		}
	case []any:
		if len(v) > 0 {
			in.Action = marshalAction(v)
		}
	case map[string]any:
		if len(v) > 0 {
			in.Action = marshalAction(v)
		}
	}
	return in, nil
}

// Encode serializes an outbound message.
func Encode(msg Outbound) ([]byte, error) {
	if msg.Type == "" {
		return nil, fmt.Errorf("protocol: encode message with empty type")
	}
	b, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("protocol: encode %s: %w", msg.Type, err)
	}
	return b, nil
}

func marshalAction(v any) string {
	raw, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(raw)
}
