package flow

import (
	"strings"

	"complyflow/internal/model"
)

// earlyStageAnswers is the answered-count threshold below which detail
// questions are held back to keep early questions broad.
const earlyStageAnswers = 5

// Selector layers answer-history analysis on top of the engine's ranking:
// categories with detected gaps are probed first, under-covered categories
// are preferred over well-covered ones, and low-priority detail questions
// are deferred until the session has some breadth.
type Selector struct {
	engine *Engine
}

// NewSelector creates a selector over an engine
func NewSelector(engine *Engine) *Selector {
	return &Selector{engine: engine}
}

// AnalyzeAnswers derives category coverage, per-category gap counts, and a
// bucketed confidence average from the context's answer history.
func (s *Selector) AnalyzeAnswers(ctx model.AssessmentContext) model.AnswerAnalysis {
	analysis := model.AnswerAnalysis{
		Coverage:  map[string]int{},
		GapCounts: map[string]int{},
	}

	var confSum float64
	var confCount int

	// AnsweredQuestions preserves answer order, unlike the answers map
	for _, id := range ctx.AnsweredQuestions {
		answer, ok := ctx.Answers[id]
		if !ok {
			continue
		}
		q := s.engine.catalog.Get(id)
		if q == nil {
			continue
		}

		if analysis.Coverage[q.Category] == 0 {
			analysis.Categories = append(analysis.Categories, q.Category)
		}
		analysis.Coverage[q.Category]++

		if answer.Value.IsNegative() {
			analysis.GapCounts[q.Category]++
			analysis.NegativeAnswers = append(analysis.NegativeAnswers, answer)
		} else {
			analysis.PositiveAnswers = append(analysis.PositiveAnswers, answer)
		}

		if answer.Confidence != nil {
			confSum += *answer.Confidence
			confCount++
		}
	}

	analysis.Confidence = model.ConfidenceMedium
	if confCount > 0 {
		switch avg := confSum / float64(confCount); {
		case avg >= 0.7:
			analysis.Confidence = model.ConfidenceHigh
		case avg < 0.4:
			analysis.Confidence = model.ConfidenceLow
		}
	}

	return analysis
}

// NextQuestion has the same contract as Engine.NextQuestion but ranks
// gap categories first, then lower coverage, then the base ordering.
func (s *Selector) NextQuestion(ctx model.AssessmentContext) (model.FlowDecision, error) {
	analysis := s.AnalyzeAnswers(ctx)
	base := s.engine.baseLess(ctx)

	less := func(a, b model.QuestionNode) bool {
		ag, bg := analysis.GapCounts[a.Category] > 0, analysis.GapCounts[b.Category] > 0
		if ag != bg {
			return ag
		}
		if ca, cb := analysis.Coverage[a.Category], analysis.Coverage[b.Category]; ca != cb {
			return ca < cb
		}
		return base(a, b)
	}

	var filter func(model.QuestionNode) bool
	if len(ctx.AnsweredQuestions) < earlyStageAnswers {
		filter = func(q model.QuestionNode) bool {
			return !(q.Priority == model.PriorityLow && strings.Contains(strings.ToLower(q.Category), "detail"))
		}
	}

	return s.engine.pick(ctx, less, filter)
}

// ProgressiveQuestions returns the current candidates matching a disclosure
// tier, for callers that present several options at once. Read-only.
func (s *Selector) ProgressiveQuestions(ctx model.AssessmentContext, level model.DisclosureLevel) []model.QuestionNode {
	candidates := s.engine.candidates(ctx, nil, nil)

	var out []model.QuestionNode
	for _, q := range candidates {
		switch level {
		case model.DisclosureBroad:
			if q.Priority == model.PriorityHigh && len(q.DependsOn) == 0 {
				out = append(out, q)
			}
		case model.DisclosureMedium:
			if q.Priority == model.PriorityMedium || len(q.DependsOn) > 0 {
				out = append(out, q)
			}
		case model.DisclosureSpecific:
			if q.Priority == model.PriorityLow || len(q.DependsOn) > 2 {
				out = append(out, q)
			}
		}
	}
	return out
}
