package result

import (
	"fmt"
	"strings"

	"github.com/driftline/cloudclient/pkg/errors"
)

// Result is a read-only view over a decoded JSON value. Mappings become
// keyed nodes, arrays stay ordered sequences, scalars pass through
// unchanged. Wrapping never copies or rewrites the underlying value, so
// Interface always reproduces the original structure exactly.
type Result struct {
	value interface{}
}

// Wrap creates a Result over a decoded value.
func Wrap(v interface{}) Result {
	return Result{value: v}
}

// Empty returns a Result over an empty mapping.
func Empty() Result {
	return Result{value: map[string]interface{}{}}
}

// Interface returns the underlying value unchanged.
func (r Result) Interface() interface{} {
	return r.value
}

// IsNil reports whether the underlying value is absent.
func (r Result) IsNil() bool {
	return r.value == nil
}

// Get looks up a key on a mapping node.
func (r Result) Get(key string) (Result, bool) {
	m, ok := r.value.(map[string]interface{})
	if !ok {
		return Result{}, false
	}
	v, ok := m[key]
	if !ok {
		return Result{}, false
	}
	return Result{value: v}, true
}

// Field looks up a key that is expected to be present.
func (r Result) Field(key string) (Result, error) {
	v, ok := r.Get(key)
	if !ok {
		return Result{}, errors.WrapError(
			fmt.Errorf("key %q not found", key),
			errors.ErrMissingField,
			"result lookup",
		)
	}
	return v, nil
}

// Fields traverses nested mappings where every key is expected present.
func (r Result) Fields(keys ...string) (Result, error) {
	current := r
	for _, key := range keys {
		next, err := current.Field(key)
		if err != nil {
			return Result{}, err
		}
		current = next
	}
	return current, nil
}

// Path traverses nested mappings using a dotted path.
func (r Result) Path(path string) (Result, bool) {
	if path == "" {
		return Result{}, false
	}

	current := r
	for _, part := range strings.Split(path, ".") {
		next, ok := current.Get(part)
		if !ok {
			return Result{}, false
		}
		current = next
	}
	return current, true
}

// Index returns the i-th element of a sequence node.
func (r Result) Index(i int) (Result, bool) {
	arr, ok := r.value.([]interface{})
	if !ok || i < 0 || i >= len(arr) {
		return Result{}, false
	}
	return Result{value: arr[i]}, true
}

// Len returns the element count of a sequence node, or 0 otherwise.
func (r Result) Len() int {
	arr, ok := r.value.([]interface{})
	if !ok {
		return 0
	}
	return len(arr)
}

// AsString returns the value as a string.
func (r Result) AsString() (string, bool) {
	s, ok := r.value.(string)
	return s, ok
}

// AsInt returns the value as an int. JSON numbers decode as float64, so
// both representations are accepted.
func (r Result) AsInt() (int, bool) {
	switch v := r.value.(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

// AsFloat returns the value as a float64.
func (r Result) AsFloat() (float64, bool) {
	switch v := r.value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	default:
		return 0, false
	}
}

// AsBool returns the value as a bool.
func (r Result) AsBool() (bool, bool) {
	b, ok := r.value.(bool)
	return b, ok
}
