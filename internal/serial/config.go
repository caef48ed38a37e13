package serial

import (
	"fmt"
)

// Config is the plain key/value parameter map of a Wrapped value.
//
// Values arrive either as native Go values (in-process round-trips) or as
// their encoding/json forms (float64, map[string]any). The accessors accept
// both.
type Config map[string]any

// Float returns the numeric value at key, or def if the key is absent or null.
func (c Config) Float(key string, def float64) (float64, error) {
	v, ok := c[key]
	if !ok || v == nil {
		return def, nil
	}
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int32:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case uint64:
		return float64(n), nil
	default:
		return 0, fmt.Errorf("config key %q: expected number, got %T", key, v)
	}
}

// Int returns the integral value at key, or def if absent.
func (c Config) Int(key string, def int) (int, error) {
	f, err := c.Float(key, float64(def))
	if err != nil {
		return 0, err
	}
	if f != float64(int(f)) {
		return 0, fmt.Errorf("config key %q: expected integer, got %v", key, f)
	}
	return int(f), nil
}

// Bool returns the boolean at key, or def if absent.
func (c Config) Bool(key string, def bool) (bool, error) {
	v, ok := c[key]
	if !ok || v == nil {
		return def, nil
	}
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("config key %q: expected bool, got %T", key, v)
	}
	return b, nil
}

// Wrapped returns the nested Wrapped value at key. found is false when the
// key is absent or null.
func (c Config) Wrapped(key string) (w Wrapped, found bool, err error) {
	v, ok := c[key]
	if !ok || v == nil {
		return Wrapped{}, false, nil
	}
	switch n := v.(type) {
	case Wrapped:
		return n, true, nil
	case *Wrapped:
		return *n, true, nil
	case map[string]any:
		name, ok := n["className"].(string)
		if !ok {
			return Wrapped{}, false, fmt.Errorf("config key %q: missing className", key)
		}
		w = Wrapped{ClassName: name}
		switch inner := n["config"].(type) {
		case nil:
		case map[string]any:
			w.Config = Config(inner)
		case Config:
			w.Config = inner
		default:
			return Wrapped{}, false, fmt.Errorf("config key %q: config must be an object, got %T", key, inner)
		}
		return w, true, nil
	default:
		return Wrapped{}, false, fmt.Errorf("config key %q: expected wrapped value, got %T", key, v)
	}
}
