package audio

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var (
	errNotNumber  = errors.New("not a number")
	errOutOfRange = errors.New("out of range")
)

// ErrUnknownCommand is wrapped by the validation error for an unrecognized
// or missing command discriminator.
var ErrUnknownCommand = errors.New("unknown command")

// ValidationError reports a bad or missing command parameter. No external
// command is run for a request that fails validation.
type ValidationError struct {
	Message string
	Err     error
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Unwrap() error { return e.Err }

func invalid(format string, args ...any) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// Params is a loosely-typed command request: a "command" discriminator plus
// action parameters, as decoded from JSON or built from CLI flags.
type Params map[string]any

// Command returns the discriminator, or "" when absent or not a string.
func (p Params) Command() string {
	s, _ := p["command"].(string)
	return strings.TrimSpace(s)
}

// Int returns a required integer parameter. Integers, floats (truncated),
// json.Number and numeric strings are accepted.
func (p Params) Int(key string) (int, error) {
	v, ok := p[key]
	if !ok || v == nil {
		return 0, invalid("%s parameter is required", key)
	}
	n, err := toInt(v)
	switch {
	case errors.Is(err, errOutOfRange):
		return 0, invalid("%s is out of range", key)
	case err != nil:
		return 0, invalid("%s must be a number", key)
	}
	return n, nil
}

// OptionalInt is like Int but returns def when the key is absent.
func (p Params) OptionalInt(key string, def int) (int, error) {
	if v, ok := p[key]; !ok || v == nil {
		return def, nil
	}
	return p.Int(key)
}

func toInt(v any) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int8:
		return int(n), nil
	case int16:
		return int(n), nil
	case int32:
		return int(n), nil
	case int64:
		return int(n), nil
	case uint:
		return int(n), nil
	case uint8:
		return int(n), nil
	case uint16:
		return int(n), nil
	case uint32:
		return int(n), nil
	case uint64:
		return int(n), nil
	case float32:
		return floatToInt(float64(n))
	case float64:
		return floatToInt(n)
	case json.Number:
		return stringToInt(n.String())
	case string:
		return stringToInt(n)
	default:
		return 0, errNotNumber
	}
}

func stringToInt(s string) (int, error) {
	s = strings.TrimSpace(s)
	if i, err := strconv.Atoi(s); err == nil {
		return i, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	switch {
	case errors.Is(err, strconv.ErrRange):
		return 0, errOutOfRange
	case err != nil:
		return 0, errNotNumber
	}
	return floatToInt(f)
}

// floatToInt truncates toward zero. NaN and infinities are not numbers;
// finite values outside int32 are out of range.
func floatToInt(f float64) (int, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, errNotNumber
	}
	if f > math.MaxInt32 || f < math.MinInt32 {
		return 0, errOutOfRange
	}
	return int(math.Trunc(f)), nil
}

// card returns the required non-negative card index.
func (p Params) card() (int, error) {
	card, err := p.Int("card")
	if err != nil {
		return 0, err
	}
	if card < 0 {
		return 0, invalid("card must be a valid card number")
	}
	return card, nil
}
