package conversation

import (
	"regexp"
	"strconv"
	"strings"

	"complyflow/internal/model"
)

var affirmativePattern = regexp.MustCompile(`(?i)^(yes|y|true)$`)

// parseReply converts a validated reply into a typed answer value.
func parseReply(q *model.QuestionNode, text string) model.AnswerValue {
	trimmed := strings.TrimSpace(text)
	lower := strings.ToLower(trimmed)

	switch q.Format {
	case model.FormatYesNo:
		return model.BoolValue(affirmativePattern.MatchString(trimmed))

	case model.FormatMultipleChoice:
		for _, opt := range q.Options {
			if strings.Contains(lower, strings.ToLower(opt)) {
				return model.TextValue(opt)
			}
		}
		return model.TextValue(trimmed)

	case model.FormatMultiSelect:
		var picked []string
		for _, opt := range q.Options {
			if strings.Contains(lower, strings.ToLower(opt)) {
				picked = append(picked, opt)
			}
		}
		if len(picked) == 0 {
			picked = []string{trimmed}
		}
		return model.ListValue(picked)

	case model.FormatScale:
		n, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			n = q.ScaleMin
		}
		if n < q.ScaleMin {
			n = q.ScaleMin
		}
		if n > q.ScaleMax {
			n = q.ScaleMax
		}
		return model.NumberValue(n)
	}

	return model.TextValue(trimmed)
}
