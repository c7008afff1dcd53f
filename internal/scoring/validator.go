package scoring

import (
	"bytes"
	"encoding/json"
	"fmt"
	"kvk-ranker/internal/constants"
	"math"
)

// DecodeResponse parses the extraction service's content into an untyped value.
// Numbers stay json.Number so large counts keep every digit. A body that is
// not JSON at all is a MalformedPayloadError, distinct from the semantic
// checks in ValidateResponse.
func DecodeResponse(content []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(content))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, &MalformedPayloadError{Reason: "extraction response is not valid JSON", Err: err}
	}
	if dec.More() {
		return nil, &MalformedPayloadError{Reason: "extraction response is not valid JSON"}
	}
	return raw, nil
}

// ValidateResponse narrows an untyped response to exactly eight non-negative
// integral counts. It never coerces or defaults: the first failing rule is
// reported and the caller's previous state must stay as it was.
func ValidateResponse(raw any) ([]int64, error) {
	obj, ok := raw.(map[string]any)
	if !ok {
		return nil, &ValidationError{Reason: "invalid response shape: expected an object with a 'values' list"}
	}
	list, ok := obj["values"].([]any)
	if !ok {
		return nil, &ValidationError{Reason: "invalid response shape: expected an object with a 'values' list"}
	}

	if len(list) != constants.ReadingValueCount {
		return nil, &ValidationError{
			Reason: fmt.Sprintf("wrong element count: expected %d, received %d", constants.ReadingValueCount, len(list)),
		}
	}

	values := make([]int64, len(list))
	for i, v := range list {
		n, valid := toCount(v)
		if !valid {
			return nil, &ValidationError{Reason: fmt.Sprintf("element %d is not a valid number", i+1)}
		}
		if n < 0 {
			return nil, &ValidationError{Reason: fmt.Sprintf("element %d is negative", i+1)}
		}
		values[i] = n
	}

	return values, nil
}

// toCount accepts json.Number and float64. Negative values are returned as
// they are (or as -1 when they do not fit) so the caller reports the sign.
func toCount(v any) (int64, bool) {
	var f float64
	switch num := v.(type) {
	case json.Number:
		if n, err := num.Int64(); err == nil {
			return n, n <= constants.MaxKillCount
		}
		parsed, err := num.Float64()
		if err != nil && !math.IsInf(parsed, 0) {
			return 0, false
		}
		f = parsed
	case float64:
		f = num
	default:
		return 0, false
	}

	switch {
	case math.IsNaN(f), f != math.Trunc(f):
		return 0, false
	case f < 0:
		if f < math.MinInt64 {
			return -1, true
		}
		return int64(f), true
	case f >= math.MaxInt64:
		return 0, false
	}
	n := int64(f)
	return n, n <= constants.MaxKillCount
}
