package filter_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hooklinehq/hookline/pkg/filter"
)

func testMapper(columns ...string) filter.FieldMapper {
	known := make(map[string]bool, len(columns))
	for _, column := range columns {
		known[column] = true
	}

	return func(data map[string]any, column string) (any, bool) {
		if !known[column] {
			return nil, false
		}

		value, ok := data[column]

		return value, ok
	}
}

func TestEvaluate_EmptyPredicateMatchesEverything(t *testing.T) {
	t.Parallel()

	assert.True(t, filter.Evaluate(map[string]any{"name": "prod"}, filter.Predicate{}, testMapper("name")))
	assert.True(t, filter.Evaluate(nil, filter.Predicate{}, nil))
}

func TestEvaluate_UnknownColumnNeverMatches(t *testing.T) {
	t.Parallel()

	predicate := filter.Predicate{
		Conditions: []filter.Condition{
			{Column: "owner", Operator: filter.OperatorEquals, Value: "ops"},
		},
	}

	data := map[string]any{"owner": "ops"}

	assert.False(t, filter.Evaluate(data, predicate, testMapper("name")))
	assert.False(t, filter.Evaluate(data, predicate, nil))
}

func TestEvaluate_Operators(t *testing.T) {
	t.Parallel()

	data := map[string]any{
		"name":    "prod-eu-dataset",
		"version": float64(4),
		"action":  "created",
	}

	mapper := testMapper("name", "version", "action")

	tests := []struct {
		name      string
		condition filter.Condition
		want      bool
	}{
		{
			name:      "equals match",
			condition: filter.Condition{Column: "name", Operator: filter.OperatorEquals, Value: "prod-eu-dataset"},
			want:      true,
		},
		{
			name:      "equals mismatch",
			condition: filter.Condition{Column: "name", Operator: filter.OperatorEquals, Value: "staging"},
			want:      false,
		},
		{
			name:      "not equals",
			condition: filter.Condition{Column: "name", Operator: filter.OperatorNotEquals, Value: "staging"},
			want:      true,
		},
		{
			name:      "contains match",
			condition: filter.Condition{Column: "name", Operator: filter.OperatorContains, Value: "eu"},
			want:      true,
		},
		{
			name:      "contains mismatch",
			condition: filter.Condition{Column: "name", Operator: filter.OperatorContains, Value: "us"},
			want:      false,
		},
		{
			name:      "contains on non-string value",
			condition: filter.Condition{Column: "version", Operator: filter.OperatorContains, Value: "4"},
			want:      false,
		},
		{
			name:      "greater than",
			condition: filter.Condition{Column: "version", Operator: filter.OperatorGreaterThan, Value: 3},
			want:      true,
		},
		{
			name:      "greater or equal boundary",
			condition: filter.Condition{Column: "version", Operator: filter.OperatorGreaterEq, Value: 4},
			want:      true,
		},
		{
			name:      "less than mismatch",
			condition: filter.Condition{Column: "version", Operator: filter.OperatorLessThan, Value: 4},
			want:      false,
		},
		{
			name:      "less or equal",
			condition: filter.Condition{Column: "version", Operator: filter.OperatorLessEq, Value: 4},
			want:      true,
		},
		{
			name:      "ordered comparison on non-numeric value",
			condition: filter.Condition{Column: "name", Operator: filter.OperatorGreaterThan, Value: 1},
			want:      false,
		},
		{
			name:      "action column equality",
			condition: filter.Condition{Column: "action", Operator: filter.OperatorEquals, Value: "created"},
			want:      true,
		},
		{
			name:      "unknown operator",
			condition: filter.Condition{Column: "name", Operator: "matches", Value: "prod"},
			want:      false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			predicate := filter.Predicate{Conditions: []filter.Condition{tt.condition}}

			assert.Equal(t, tt.want, filter.Evaluate(data, predicate, mapper))
		})
	}
}

func TestEvaluate_NumericCoercionAcrossTypes(t *testing.T) {
	t.Parallel()

	// Conditions persisted as JSON decode numbers into float64 while live
	// snapshots may carry ints; both sides must compare by value.
	data := map[string]any{"version": 4}
	mapper := testMapper("version")

	predicate := filter.Predicate{
		Conditions: []filter.Condition{
			{Column: "version", Operator: filter.OperatorEquals, Value: float64(4)},
		},
	}

	assert.True(t, filter.Evaluate(data, predicate, mapper))
}

func TestEvaluate_AllConditionsMustHold(t *testing.T) {
	t.Parallel()

	data := map[string]any{"name": "prod", "version": float64(2)}
	mapper := testMapper("name", "version")

	predicate := filter.Predicate{
		Conditions: []filter.Condition{
			{Column: "name", Operator: filter.OperatorEquals, Value: "prod"},
			{Column: "version", Operator: filter.OperatorGreaterThan, Value: 5},
		},
	}

	assert.False(t, filter.Evaluate(data, predicate, mapper))
}

func TestRegistry_MapperScopesColumnsPerSource(t *testing.T) {
	t.Parallel()

	registry := filter.NewRegistry()
	registry.Register("dataset", map[string]filter.Extractor{
		"name": filter.Column("name"),
	})

	data := map[string]any{"name": "prod", "version": 3}

	value, ok := registry.Mapper("dataset")(data, "name")
	assert.True(t, ok)
	assert.Equal(t, "prod", value)

	_, ok = registry.Mapper("dataset")(data, "version")
	assert.False(t, ok)

	_, ok = registry.Mapper("prompt")(data, "name")
	assert.False(t, ok)
}
