package flow

import "complyflow/internal/model"

// BuildProgressSummary computes the derived gap/progress view for one
// session, for dashboards and reporting.
func BuildProgressSummary(ctx model.AssessmentContext, catalog *Catalog) model.ProgressSummary {
	coverage := map[string]int{}
	for _, id := range ctx.AnsweredQuestions {
		if q := catalog.Get(id); q != nil {
			coverage[q.Category]++
		}
	}

	return model.ProgressSummary{
		SessionID:        ctx.SessionID,
		StandardID:       ctx.StandardID,
		Phase:            ctx.Phase,
		Progress:         ctx.Progress,
		AnsweredCount:    len(ctx.AnsweredQuestions),
		TotalQuestions:   catalog.Size(),
		CategoryCoverage: coverage,
		GapCount:         len(ctx.Gaps),
		Gaps:             ctx.Gaps,
	}
}
