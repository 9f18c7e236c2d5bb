package conversation

import (
	"regexp"
	"strconv"
	"strings"

	"complyflow/internal/model"
)

var (
	yesNoPattern   = regexp.MustCompile(`(?i)^(yes|no|y|n|true|false)$`)
	hedgingPattern = regexp.MustCompile(`(?i)\b(i don'?t know|i'?m not sure|maybe|perhaps|uncertain|unclear)\b`)
)

// verdict is the outcome of validating a free-text reply
type verdict struct {
	ok        bool
	reason    model.ClarificationReason
	suggested []string
}

func accepted() verdict {
	return verdict{ok: true}
}

func rejected(reason model.ClarificationReason, suggested ...string) verdict {
	return verdict{reason: reason, suggested: suggested}
}

// validateReply checks a reply against the pending question's format.
// Yes-no replies are matched before the length check so "no" and "y" are
// not rejected as incomplete.
func validateReply(q *model.QuestionNode, text string) verdict {
	trimmed := strings.TrimSpace(text)
	lower := strings.ToLower(trimmed)

	// Structured formats validate on shape first; "no" and "3" are real
	// answers despite failing the generic length check below.
	switch q.Format {
	case model.FormatYesNo:
		if yesNoPattern.MatchString(trimmed) {
			return accepted()
		}
		if strings.Contains(lower, "yes") && strings.Contains(lower, "no") {
			return rejected(model.ReasonContradictory, "yes", "no")
		}

	case model.FormatScale:
		n, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return rejected(model.ReasonUnclear)
		}
		if n < q.ScaleMin || n > q.ScaleMax {
			return rejected(model.ReasonUnclear)
		}
		return accepted()
	}

	if len(trimmed) < 3 {
		return rejected(model.ReasonIncomplete)
	}
	if hedgingPattern.MatchString(trimmed) {
		return rejected(model.ReasonUnclear)
	}

	switch q.Format {
	case model.FormatYesNo:
		return rejected(model.ReasonUnclear, "yes", "no")

	case model.FormatMultipleChoice, model.FormatMultiSelect:
		if strings.Contains(lower, "other") || strings.Contains(lower, "none") {
			return accepted()
		}
		for _, opt := range q.Options {
			if strings.Contains(lower, strings.ToLower(opt)) {
				return accepted()
			}
		}
		return rejected(model.ReasonNeedsDetail, q.Options...)
	}

	// open-ended: anything substantive passes
	return accepted()
}
