package document

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
)

// CloneValue returns a deep copy of a decoded property value. Maps and
// slices produced by the JSON and YAML decoders are copied; scalars are
// returned as is.
func CloneValue(v any) any {
	switch x := v.(type) {
	case map[string]any:
		return cloneProperties(x)
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = CloneValue(e)
		}
		return out
	case []string:
		return cloneStrings(x)
	case map[string]string:
		out := make(map[string]string, len(x))
		for k, e := range x {
			out[k] = e
		}
		return out
	default:
		return v
	}
}

// Equal reports whether two property values are structurally equal.
// Values that differ only in container types ([]string vs []any, int vs
// float64) compare equal when their canonical JSON encodings match.
func Equal(a, b any) bool {
	if reflect.DeepEqual(a, b) {
		return true
	}
	ja, err := json.Marshal(a)
	if err != nil {
		return false
	}
	jb, err := json.Marshal(b)
	if err != nil {
		return false
	}
	return bytes.Equal(ja, jb)
}

// StringList converts a decoded list value into a string slice.
func StringList(v any) ([]string, error) {
	switch x := v.(type) {
	case nil:
		return nil, nil
	case []string:
		return cloneStrings(x), nil
	case []any:
		out := make([]string, len(x))
		for i, e := range x {
			s, ok := e.(string)
			if !ok {
				return nil, fmt.Errorf("list entry %d is %T, not a string", i, e)
			}
			out[i] = s
		}
		return out, nil
	default:
		return nil, fmt.Errorf("value is %T, not a list", v)
	}
}

func cloneProperties(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = CloneValue(v)
	}
	return out
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s))
	copy(out, s)
	return out
}

// takeString removes key from m and returns its string value.
func takeString(m map[string]any, key string) (string, error) {
	v, ok := m[key]
	if !ok {
		return "", nil
	}
	delete(m, key)
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%w: %s is %T, not a string", ErrInvalidElement, key, v)
	}
	return s, nil
}

// takeStrings removes key from m and returns its string list value. A
// present empty list yields a non-nil empty slice.
func takeStrings(m map[string]any, key string) ([]string, error) {
	v, ok := m[key]
	if !ok {
		return nil, nil
	}
	delete(m, key)
	ids, err := StringList(v)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidElement, key, err)
	}
	if ids == nil {
		ids = []string{}
	}
	return ids, nil
}
