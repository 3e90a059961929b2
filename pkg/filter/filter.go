// Package filter provides declarative predicate evaluation for change events.
package filter

import (
	"fmt"
	"strconv"
	"strings"
)

// Operator identifies a comparison applied by a single condition.
type Operator string

const (
	OperatorEquals      Operator = "="
	OperatorNotEquals   Operator = "!="
	OperatorContains    Operator = "contains"
	OperatorGreaterThan Operator = ">"
	OperatorGreaterEq   Operator = ">="
	OperatorLessThan    Operator = "<"
	OperatorLessEq      Operator = "<="
)

// Condition compares one logical column of the event data against a value.
type Condition struct {
	Column   string   `json:"column"   validate:"required"`
	Operator Operator `json:"operator" validate:"required"`
	Value    any      `json:"value"`
}

// Predicate is a conjunction of conditions. An empty predicate matches
// every event.
type Predicate struct {
	Conditions []Condition `json:"conditions"`
}

// FieldMapper resolves a logical column name against event data. The second
// return value reports whether the column is recognized for the entity type.
type FieldMapper func(data map[string]any, column string) (any, bool)

// Evaluate reports whether event data satisfies the predicate. All conditions
// must hold. A column the mapper does not recognize makes its condition
// false, never an error: absence of a field is a non-match, not a fault.
func Evaluate(data map[string]any, predicate Predicate, mapper FieldMapper) bool {
	for _, condition := range predicate.Conditions {
		if mapper == nil {
			return false
		}

		value, ok := mapper(data, condition.Column)
		if !ok {
			return false
		}

		if !matches(value, condition.Operator, condition.Value) {
			return false
		}
	}

	return true
}

func matches(actual any, operator Operator, expected any) bool {
	switch operator {
	case OperatorEquals:
		return equal(actual, expected)
	case OperatorNotEquals:
		return !equal(actual, expected)
	case OperatorContains:
		actualStr, aok := actual.(string)
		expectedStr, eok := expected.(string)

		return aok && eok && strings.Contains(actualStr, expectedStr)
	case OperatorGreaterThan, OperatorGreaterEq, OperatorLessThan, OperatorLessEq:
		return ordered(actual, operator, expected)
	default:
		return false
	}
}

// equal compares scalars through their numeric value when both sides are
// numeric, and falls back to string rendering otherwise. JSON decoding turns
// every number into float64, so persisted conditions and live event data may
// carry different concrete types for the same value.
func equal(actual, expected any) bool {
	actualNum, aok := toFloat(actual)
	expectedNum, eok := toFloat(expected)

	if aok && eok {
		return actualNum == expectedNum
	}

	return fmt.Sprintf("%v", actual) == fmt.Sprintf("%v", expected)
}

func ordered(actual any, operator Operator, expected any) bool {
	actualNum, aok := toFloat(actual)
	expectedNum, eok := toFloat(expected)

	if !aok || !eok {
		return false
	}

	switch operator {
	case OperatorGreaterThan:
		return actualNum > expectedNum
	case OperatorGreaterEq:
		return actualNum >= expectedNum
	case OperatorLessThan:
		return actualNum < expectedNum
	case OperatorLessEq:
		return actualNum <= expectedNum
	default:
		return false
	}
}

func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case string:
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, false
		}

		return parsed, true
	default:
		return 0, false
	}
}
