package parse

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"strings"

	"github.com/spf13/cast"
)

// object is a JSON object decoded one level deep. Values stay raw until a
// field is read, so a badly typed field never poisons its siblings.
type object map[string]json.RawMessage

// decodeObject decodes raw as a JSON object.
func decodeObject(raw []byte) (object, error) {
	var o object
	if err := json.Unmarshal(raw, &o); err != nil {
		return nil, err
	}
	if o == nil {
		return nil, errors.New("null object")
	}
	return o, nil
}

// decodeJSONLines decodes a stream of concatenated JSON objects (nuclei -jsonl).
func decodeJSONLines(content string) ([]json.RawMessage, error) {
	dec := json.NewDecoder(strings.NewReader(content))
	var out []json.RawMessage
	for {
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, err
		}
		out = append(out, raw)
	}
	return out, nil
}

// value returns the decoded value of key, or nil when absent or undecodable.
func (o object) value(key string) any {
	raw, ok := o[key]
	if !ok {
		return nil
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil
	}
	return v
}

// has reports whether key is present and not null.
func (o object) has(key string) bool {
	raw, ok := o[key]
	return ok && !bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// str reads key as a trimmed string. Arrays yield their first element.
func (o object) str(key string) string {
	v := o.value(key)
	if arr, ok := v.([]any); ok {
		if len(arr) == 0 {
			return ""
		}
		v = arr[0]
	}
	if v == nil {
		return ""
	}
	if _, ok := v.(map[string]any); ok {
		return ""
	}
	return strings.TrimSpace(cast.ToString(v))
}

// obj reads key as a nested object; missing or mistyped yields nil.
func (o object) obj(key string) object {
	raw, ok := o[key]
	if !ok {
		return nil
	}
	nested, err := decodeObject(raw)
	if err != nil {
		return nil
	}
	return nested
}

// list reads key as an array. ok is false when the key is missing or not
// an array.
func (o object) list(key string) ([]any, bool) {
	arr, ok := o.value(key).([]any)
	return arr, ok
}

// truthy mirrors loose JSON truthiness: absent, null, false, "" and 0 are false.
func (o object) truthy(key string) bool {
	switch v := o.value(key).(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		return v != ""
	case float64:
		return v != 0
	default:
		return true
	}
}

// firstStr returns the first non-empty string among keys of the given objects,
// tried in order.
func firstStr(sources []object, keys ...string) string {
	for _, src := range sources {
		if src == nil {
			continue
		}
		for _, k := range keys {
			if s := src.str(k); s != "" {
				return s
			}
		}
	}
	return ""
}

// itemString converts an array element to a string. Objects are read
// through the given keys in order.
func itemString(v any, keys ...string) string {
	if m, ok := v.(map[string]any); ok {
		for _, k := range keys {
			if s := strings.TrimSpace(cast.ToString(m[k])); s != "" {
				return s
			}
		}
		return ""
	}
	return strings.TrimSpace(cast.ToString(v))
}
