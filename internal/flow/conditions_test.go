package flow

import (
	"testing"

	"complyflow/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluateCondition(t *testing.T) {
	cases := []struct {
		name   string
		answer model.AnswerValue
		op     model.CompareOp
		want   model.AnswerValue
		expect bool
	}{
		{"equals bool", model.BoolValue(true), model.OpEquals, model.BoolValue(true), true},
		{"equals bool mismatch", model.BoolValue(true), model.OpEquals, model.BoolValue(false), false},
		{"equals number", model.NumberValue(3), model.OpEquals, model.NumberValue(3), true},
		{"equals text", model.TextValue("aws"), model.OpEquals, model.TextValue("aws"), true},
		{"equals across shapes is false", model.NumberValue(1), model.OpEquals, model.BoolValue(true), false},
		{"not-equals", model.TextValue("aws"), model.OpNotEquals, model.TextValue("gcp"), true},
		{"contains list member", model.ListValue([]string{"aws", "gcp"}), model.OpContains, model.TextValue("gcp"), true},
		{"contains list miss", model.ListValue([]string{"aws"}), model.OpContains, model.TextValue("gcp"), false},
		{"contains text substring", model.TextValue("hosted on aws"), model.OpContains, model.TextValue("aws"), true},
		{"contains on bool is false", model.BoolValue(true), model.OpContains, model.TextValue("true"), false},
		{"greater-than", model.NumberValue(4), model.OpGreaterThan, model.NumberValue(3), true},
		{"greater-than equal is false", model.NumberValue(3), model.OpGreaterThan, model.NumberValue(3), false},
		{"greater-than coerces bool", model.BoolValue(true), model.OpGreaterThan, model.NumberValue(0), true},
		{"greater-than non-numeric is false", model.TextValue("lots"), model.OpGreaterThan, model.NumberValue(1), false},
		{"less-than", model.NumberValue(2), model.OpLessThan, model.NumberValue(3), true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := evaluateCondition(tc.answer, tc.op, tc.want)
			require.NoError(t, err)
			assert.Equal(t, tc.expect, got)
		})
	}

	t.Run("unknown operator is an error", func(t *testing.T) {
		_, err := evaluateCondition(model.BoolValue(true), model.CompareOp("matches"), model.BoolValue(true))
		assert.Error(t, err)
	})
}

func TestIsNegative(t *testing.T) {
	assert.True(t, model.BoolValue(false).IsNegative())
	assert.False(t, model.BoolValue(true).IsNegative())
	assert.True(t, model.TextValue("no").IsNegative())
	assert.True(t, model.TextValue("Not Applicable").IsNegative())
	assert.False(t, model.TextValue("we rotate keys quarterly").IsNegative())
	assert.True(t, model.NumberValue(0).IsNegative())
	assert.False(t, model.NumberValue(3).IsNegative())
	assert.True(t, model.ListValue([]string{}).IsNegative())
	assert.False(t, model.ListValue([]string{"aws"}).IsNegative())
}
