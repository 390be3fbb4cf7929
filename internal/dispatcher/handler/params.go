package handler

import (
	"errors"
	"fmt"
	"math"
)

// Params is a JSON-decoded parameter map. Getters normalize the types
// JSON decoding produces: numbers arrive as float64, so line indexes
// are accepted as float64, int, or int64.
type Params map[string]any

// ErrMissingParam reports a required parameter that was not supplied.
var ErrMissingParam = errors.New("missing parameter")

// String returns the string parameter under key.
func (p Params) String(key string) (string, error) {
	v, ok := p[key]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrMissingParam, key)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("parameter %s: expected string, got %T", key, v)
	}
	return s, nil
}

// StringOr returns the string parameter under key, or def when absent.
func (p Params) StringOr(key, def string) (string, error) {
	if _, ok := p[key]; !ok {
		return def, nil
	}
	return p.String(key)
}

// Int returns the integer parameter under key. JSON numbers are only
// accepted when they are whole.
func (p Params) Int(key string) (int, error) {
	v, ok := p[key]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrMissingParam, key)
	}
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		if n != math.Trunc(n) {
			return 0, fmt.Errorf("parameter %s: expected integer, got %v", key, n)
		}
		return int(n), nil
	default:
		return 0, fmt.Errorf("parameter %s: expected number, got %T", key, v)
	}
}

// Value returns the raw parameter under key.
func (p Params) Value(key string) (any, error) {
	v, ok := p[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingParam, key)
	}
	return v, nil
}
