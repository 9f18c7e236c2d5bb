package flow

import (
	"fmt"
	"strings"

	"complyflow/internal/model"
)

// evaluateCondition compares a recorded answer against a rule's comparison
// value. The operator switch is exhaustive over model.CompareOp; an unknown
// operator is a catalog authoring bug and returns an error rather than a
// silent false.
func evaluateCondition(answer model.AnswerValue, op model.CompareOp, want model.AnswerValue) (bool, error) {
	switch op {
	case model.OpEquals:
		return valuesEqual(answer, want), nil
	case model.OpNotEquals:
		return !valuesEqual(answer, want), nil
	case model.OpContains:
		return valueContains(answer, want), nil
	case model.OpGreaterThan:
		a, aok := answer.AsNumber()
		b, bok := want.AsNumber()
		return aok && bok && a > b, nil
	case model.OpLessThan:
		a, aok := answer.AsNumber()
		b, bok := want.AsNumber()
		return aok && bok && a < b, nil
	}
	return false, fmt.Errorf("unknown comparison operator %q", op)
}

// valuesEqual is strict: values of different shapes never compare equal
func valuesEqual(a, b model.AnswerValue) bool {
	switch {
	case a.Bool != nil && b.Bool != nil:
		return *a.Bool == *b.Bool
	case a.Number != nil && b.Number != nil:
		return *a.Number == *b.Number
	case a.List != nil && b.List != nil:
		if len(a.List) != len(b.List) {
			return false
		}
		for i := range a.List {
			if a.List[i] != b.List[i] {
				return false
			}
		}
		return true
	case a.Bool == nil && a.Number == nil && a.List == nil &&
		b.Bool == nil && b.Number == nil && b.List == nil:
		return a.Text == b.Text
	}
	return false
}

// valueContains checks list membership for list answers, substring
// containment for text answers, and is false for everything else.
func valueContains(answer, want model.AnswerValue) bool {
	needle := want.AsText()
	if answer.List != nil {
		for _, item := range answer.List {
			if item == needle {
				return true
			}
		}
		return false
	}
	if answer.Bool == nil && answer.Number == nil && answer.Text != "" {
		return strings.Contains(answer.Text, needle)
	}
	return false
}
