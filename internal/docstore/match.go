package docstore

import (
	"encoding/json"
	"fmt"
	"reflect"
)

// Match evaluates q against a document body. Backends without a query language
// (memory, NATS KV) filter with it after a scan.
func Match(data json.RawMessage, q Query) (bool, error) {
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return false, fmt.Errorf("decode document: %w", err)
	}

	want, err := normalize(q.Value)
	if err != nil {
		return false, err
	}

	got, ok := doc[q.Field]
	if !ok {
		return false, nil
	}

	switch q.Op {
	case OpEqual:
		return reflect.DeepEqual(got, want), nil
	case OpArrayContains:
		items, ok := got.([]any)
		if !ok {
			return false, nil
		}
		for _, item := range items {
			if reflect.DeepEqual(item, want) {
				return true, nil
			}
		}
		return false, nil
	default:
		return false, fmt.Errorf("unsupported operator %s", q.Op)
	}
}

// Merge overlays top-level fields onto a document body
func Merge(data json.RawMessage, fields json.RawMessage) (json.RawMessage, error) {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	if doc == nil {
		doc = map[string]json.RawMessage{}
	}

	var patch map[string]json.RawMessage
	if err := json.Unmarshal(fields, &patch); err != nil {
		return nil, fmt.Errorf("decode fields: %w", err)
	}
	for k, v := range patch {
		doc[k] = v
	}

	out, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return out, nil
}

// normalize round-trips v through JSON so it compares equal to decoded document values
func normalize(v any) (any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode query value: %w", err)
	}
	var out any
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, fmt.Errorf("decode query value: %w", err)
	}
	return out, nil
}
