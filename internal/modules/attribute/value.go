package attribute

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// ValidateValue reports whether value is acceptable for the attribute's data
// type. The check is type-level only; required-ness is a separate policy
// enforced by the service.
//
// Values are expected in decoded-JSON form: string, bool, float64, []any.
func ValidateValue(attr *Attribute, options []*Option, value any) bool {
	switch attr.DataType {
	case TypeText:
		_, ok := value.(string)
		return ok
	case TypeNumber:
		switch v := value.(type) {
		case float64, int, int64:
			return true
		case string:
			// The whole string must parse, "12abc" is rejected.
			_, err := strconv.ParseFloat(v, 64)
			return err == nil
		}
		return false
	case TypeBoolean:
		switch v := value.(type) {
		case bool:
			return true
		case string:
			return v == "1" || v == "0" || v == "true" || v == "false"
		}
		return false
	case TypeSelect:
		s, ok := value.(string)
		if !ok {
			return false
		}
		return matchOption(options, s) != nil
	case TypeMultiSelect:
		items, ok := value.([]any)
		if !ok {
			return false
		}
		for _, it := range items {
			s, ok := it.(string)
			if !ok || matchOption(options, s) == nil {
				return false
			}
		}
		return true
	}
	return false
}

// IsValidValue is an alias of ValidateValue.
func IsValidValue(attr *Attribute, options []*Option, value any) bool {
	return ValidateValue(attr, options, value)
}

// matchOption finds the option whose value equals s exactly, or nil.
func matchOption(options []*Option, s string) *Option {
	for _, o := range options {
		if o.Value == s {
			return o
		}
	}
	return nil
}

// encodeCustomValue renders an already-validated value into its stored text
// form. MULTISELECT arrays are stored as a JSON array even when every element
// matches a predefined option.
func encodeCustomValue(dt DataType, value any) (string, error) {
	switch dt {
	case TypeMultiSelect:
		b, err := json.Marshal(value)
		if err != nil {
			return "", fmt.Errorf("encode multiselect value: %w", err)
		}
		return string(b), nil
	case TypeNumber:
		switch v := value.(type) {
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64), nil
		case int:
			return strconv.Itoa(v), nil
		case int64:
			return strconv.FormatInt(v, 10), nil
		case string:
			return v, nil
		}
	case TypeBoolean:
		switch v := value.(type) {
		case bool:
			return strconv.FormatBool(v), nil
		case string:
			return v, nil
		}
	default:
		if s, ok := value.(string); ok {
			return s, nil
		}
	}
	return "", fmt.Errorf("cannot store %T as %s", value, dt)
}

// decodeMultiValue parses a stored MULTISELECT custom value back into its
// element list.
func decodeMultiValue(stored string) ([]string, error) {
	var items []string
	if err := json.Unmarshal([]byte(stored), &items); err != nil {
		return nil, fmt.Errorf("decode multiselect value: %w", err)
	}
	return items, nil
}

// isEmptyValue reports whether a value counts as "not provided" for the
// required-attribute policy.
func isEmptyValue(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	case []any:
		return len(v) == 0
	}
	return false
}
