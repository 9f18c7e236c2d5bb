package conversation

import (
	"fmt"
	"strings"

	"complyflow/internal/model"
)

// FormatHint is the answer-format suffix appended to every question prompt.
// Rephrasing layers must keep it verbatim so replies stay parseable.
func FormatHint(q *model.QuestionNode) string {
	switch q.Format {
	case model.FormatYesNo:
		return "(Answer: yes or no)"
	case model.FormatMultipleChoice:
		return fmt.Sprintf("(Options: %s)", strings.Join(q.Options, ", "))
	case model.FormatMultiSelect:
		return fmt.Sprintf("(Options: %s; choose all that apply)", strings.Join(q.Options, ", "))
	case model.FormatScale:
		return fmt.Sprintf("(Enter a number between %g and %g)", q.ScaleMin, q.ScaleMax)
	}
	return ""
}

func renderQuestion(q *model.QuestionNode) string {
	hint := FormatHint(q)
	if hint == "" {
		return q.Prompt
	}
	return q.Prompt + " " + hint
}

func clarificationProse(q *model.QuestionNode, reason model.ClarificationReason) string {
	var lead string
	switch reason {
	case model.ReasonIncomplete:
		lead = "That answer was a bit short for me to work with."
	case model.ReasonContradictory:
		lead = "That answer seems to point both ways."
	case model.ReasonNeedsDetail:
		lead = "I couldn't match that to one of the expected options."
	default:
		lead = "I wasn't sure how to interpret that."
	}
	return fmt.Sprintf("%s Let me ask again: %s", lead, renderQuestion(q))
}

func acknowledge(q *model.QuestionNode, value model.AnswerValue, ctx model.AssessmentContext) string {
	if value.IsNegative() {
		return fmt.Sprintf("Understood. I've flagged %s as an area to review. Progress: %d%%.", strings.ToLower(q.Category), ctx.Progress)
	}
	return fmt.Sprintf("Got it, thanks. Progress: %d%%.", ctx.Progress)
}
