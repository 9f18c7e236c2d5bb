package flow

import (
	"fmt"
	"time"

	"complyflow/internal/model"

	"github.com/google/uuid"
)

// recordGap appends a negative answer to the context's gap list. A gap
// already open for the same category is extended instead of duplicated;
// its severity is raised when the new question outranks it. Gaps are never
// downgraded or removed by later answers to other questions.
func recordGap(ctx *model.AssessmentContext, q model.QuestionNode, now time.Time) {
	severity := model.SeverityMedium
	if q.Priority == model.PriorityHigh {
		severity = model.SeverityHigh
	}

	for i := range ctx.Gaps {
		g := &ctx.Gaps[i]
		if g.Category != q.Category {
			continue
		}
		if !containsString(g.QuestionIDs, q.ID) {
			g.QuestionIDs = append(g.QuestionIDs, q.ID)
		}
		if severityRank(severity) > severityRank(g.Severity) {
			g.Severity = severity
		}
		g.Recommendations = appendUnique(g.Recommendations, recommendationFor(q))
		return
	}

	ctx.Gaps = append(ctx.Gaps, model.Gap{
		ID:              "g_" + uuid.New().String()[:8],
		Category:        q.Category,
		Severity:        severity,
		Description:     fmt.Sprintf("Compliance gap in %s: no affirmative control for %q", q.Category, q.Prompt),
		QuestionIDs:     []string{q.ID},
		Recommendations: []string{recommendationFor(q)},
		DetectedAt:      now,
	})
}

// dropGapsFor removes gaps attributed solely to the given question and
// detaches it from gaps shared with other questions. Used when a question
// is re-answered so its gap evidence can be rebuilt from the new value.
func dropGapsFor(gaps []model.Gap, questionID string) []model.Gap {
	out := gaps[:0]
	for _, g := range gaps {
		ids := make([]string, 0, len(g.QuestionIDs))
		for _, id := range g.QuestionIDs {
			if id != questionID {
				ids = append(ids, id)
			}
		}
		if len(ids) == 0 {
			continue
		}
		g.QuestionIDs = ids
		out = append(out, g)
	}
	return out
}

func recommendationFor(q model.QuestionNode) string {
	return fmt.Sprintf("Review %s controls addressing: %s", q.Category, q.Prompt)
}

func severityRank(s model.GapSeverity) int {
	switch s {
	case model.SeverityCritical:
		return 4
	case model.SeverityHigh:
		return 3
	case model.SeverityMedium:
		return 2
	case model.SeverityLow:
		return 1
	}
	return 0
}

func containsString(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}

func appendUnique(list []string, s string) []string {
	if containsString(list, s) {
		return list
	}
	return append(list, s)
}
