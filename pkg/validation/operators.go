package validation

import (
	"fmt"

	"findatex-hq/regcheck/pkg/schema/ast"
)

// evaluateOperator compares a record value against a trigger value.
// Presence has already been established by the caller.
func evaluateOperator(op ast.Operator, actual, expected any) (bool, error) {
	switch op {
	case ast.OperatorPresent:
		return true, nil

	case ast.OperatorEqual:
		return evaluateEqual(actual, expected), nil

	case ast.OperatorNotEqual:
		return !evaluateEqual(actual, expected), nil

	case ast.OperatorLessThan:
		a, e, err := toNumeric(actual, expected)
		return err == nil && a < e, err

	case ast.OperatorGreaterThan:
		a, e, err := toNumeric(actual, expected)
		return err == nil && a > e, err

	case ast.OperatorLessEqual:
		a, e, err := toNumeric(actual, expected)
		return err == nil && a <= e, err

	case ast.OperatorGreaterEqual:
		a, e, err := toNumeric(actual, expected)
		return err == nil && a >= e, err

	case ast.OperatorIn:
		return evaluateIn(actual, expected)

	case ast.OperatorNotIn:
		in, err := evaluateIn(actual, expected)
		return !in && err == nil, err

	default:
		return false, fmt.Errorf("unknown operator: %q", op)
	}
}

// evaluateEqual compares two scalars. Numbers compare by value regardless
// of their Go type; everything else compares exactly, so "1" != 1.
func evaluateEqual(actual, expected any) bool {
	if actual == nil || expected == nil {
		return actual == nil && expected == nil
	}

	actualNum, actualOK := toFloat64(actual)
	expectedNum, expectedOK := toFloat64(expected)
	if actualOK || expectedOK {
		return actualOK && expectedOK && actualNum == expectedNum
	}

	switch a := actual.(type) {
	case string:
		e, ok := expected.(string)
		return ok && a == e
	case bool:
		e, ok := expected.(bool)
		return ok && a == e
	}
	return false
}

// evaluateIn checks whether actual equals any element of the expected list.
func evaluateIn(actual, expected any) (bool, error) {
	list, ok := expected.([]any)
	if !ok {
		return false, fmt.Errorf("in operator requires a list, got %T", expected)
	}
	for _, elem := range list {
		if evaluateEqual(actual, elem) {
			return true, nil
		}
	}
	return false, nil
}

// toNumeric converts both operands for an ordered comparison.
func toNumeric(actual, expected any) (float64, float64, error) {
	a, ok := toFloat64(actual)
	if !ok {
		return 0, 0, fmt.Errorf("cannot compare %s value as a number", describe(actual))
	}
	e, ok := toFloat64(expected)
	if !ok {
		return 0, 0, fmt.Errorf("cannot compare against %s value", describe(expected))
	}
	return a, e, nil
}

// toFloat64 converts Go numeric types to float64. Strings are never
// parsed: a numeric field holding "12" is a type error, not a number.
func toFloat64(v any) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, true
	case float32:
		return float64(val), true
	case int:
		return float64(val), true
	case int8:
		return float64(val), true
	case int16:
		return float64(val), true
	case int32:
		return float64(val), true
	case int64:
		return float64(val), true
	case uint:
		return float64(val), true
	case uint8:
		return float64(val), true
	case uint16:
		return float64(val), true
	case uint32:
		return float64(val), true
	case uint64:
		return float64(val), true
	default:
		return 0, false
	}
}

// describe names the runtime shape of a record value for messages.
func describe(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case []any:
		return "list"
	case map[string]any:
		return "object"
	}
	if _, ok := toFloat64(v); ok {
		return "number"
	}
	return fmt.Sprintf("%T", v)
}
