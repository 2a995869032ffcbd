package ledger

import (
	"bytes"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"sort"
)

// CanonicalJSON renders v as deterministic JSON: object keys sorted
// lexicographically, HTML escaping disabled, no surrounding whitespace.
// Two structurally equal values always produce identical bytes.
func CanonicalJSON(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal: %w", err)
	}

	// Round-trip through any to reach the raw structure, then re-encode
	// with sorted keys.
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("unmarshal: %w", err)
	}

	return encodePlain(sortKeys(raw))
}

// CanonicalHash is the SHA-256 of v's canonical JSON form.
func CanonicalHash(v any) (TxHash, error) {
	canonical, err := CanonicalJSON(v)
	if err != nil {
		return TxHash{}, fmt.Errorf("canonical json: %w", err)
	}
	return sha256.Sum256(canonical), nil
}

// sortKeys rewrites maps into sortedMap values so nested objects encode
// with their keys in lexical order.
func sortKeys(v any) any {
	switch val := v.(type) {
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		values := make(map[string]any, len(val))
		for _, k := range keys {
			values[k] = sortKeys(val[k])
		}
		return sortedMap{keys: keys, values: values}

	case []any:
		items := make([]any, len(val))
		for i, item := range val {
			items[i] = sortKeys(item)
		}
		return items

	default:
		return v
	}
}

// sortedMap marshals its entries in the key order captured at build time.
type sortedMap struct {
	keys   []string
	values map[string]any
}

// MarshalJSON implements json.Marshaler with sorted keys.
func (m sortedMap) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range m.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		keyJSON, err := encodePlain(k)
		if err != nil {
			return nil, err
		}
		buf.Write(keyJSON)
		buf.WriteByte(':')
		valueJSON, err := encodePlain(m.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(valueJSON)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// encodePlain marshals without HTML escaping and without the trailing
// newline json.Encoder appends.
func encodePlain(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	out := buf.Bytes()
	if len(out) > 0 && out[len(out)-1] == '\n' {
		out = out[:len(out)-1]
	}
	return out, nil
}
