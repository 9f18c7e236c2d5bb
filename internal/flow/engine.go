package flow

import (
	"fmt"
	"math"
	"sort"
	"time"

	"complyflow/internal/model"
)

// ReasonExhausted is the completion signal: no candidate question remains
const ReasonExhausted = "No more questions available"

// Engine selects the next question to ask and folds submitted answers into
// an assessment context. It is synchronous and I/O-free: the catalog is
// read-only after construction and every operation takes a context value
// and returns a new one. Serializing calls against the same session is the
// caller's job; different sessions share nothing mutable.
type Engine struct {
	catalog *Catalog
}

// NewEngine creates an engine over a validated catalog
func NewEngine(catalog *Catalog) *Engine {
	return &Engine{catalog: catalog}
}

// Catalog exposes the engine's question set to read-only consumers
func (e *Engine) Catalog() *Catalog {
	return e.catalog
}

// StartAssessment produces a fresh context for a new session
func (e *Engine) StartAssessment(sessionID, userID, standardID, standardVersion string, mode model.AssessmentMode) model.AssessmentContext {
	now := time.Now()
	return model.AssessmentContext{
		SessionID:         sessionID,
		UserID:            userID,
		StandardID:        standardID,
		StandardVersion:   standardVersion,
		Mode:              mode,
		Phase:             model.PhaseInitiation,
		AnsweredQuestions: []string{},
		Answers:           map[string]model.AnswerData{},
		Gaps:              []model.Gap{},
		Progress:          0,
		StartedAt:         now,
		UpdatedAt:         now,
	}
}

// NextQuestion picks the best candidate using the base ranking: priority
// tier, then current-category affinity, then fewer declared dependencies,
// with catalog order as the stable tiebreak.
func (e *Engine) NextQuestion(ctx model.AssessmentContext) (model.FlowDecision, error) {
	return e.pick(ctx, e.baseLess(ctx), nil)
}

// pick runs the shared selection loop: build candidates, rank with less,
// drop candidates whose skip rules fire, honor branch rules on the winner.
// filter, when non-nil, pre-trims the candidate set.
func (e *Engine) pick(ctx model.AssessmentContext, less func(a, b model.QuestionNode) bool, filter func(model.QuestionNode) bool) (model.FlowDecision, error) {
	excluded := map[string]bool{}

	// Bounded by the candidate-set size: each pass excludes one more id
	for attempt := 0; attempt <= e.catalog.Size(); attempt++ {
		candidates := e.candidates(ctx, excluded, filter)
		if len(candidates) == 0 {
			return model.FlowDecision{ShouldSkip: false, Reason: ReasonExhausted}, nil
		}

		sort.SliceStable(candidates, func(i, j int) bool {
			return less(candidates[i], candidates[j])
		})
		top := candidates[0]

		keep, err := e.passesSkipRules(top, ctx)
		if err != nil {
			return model.FlowDecision{}, err
		}
		if !keep {
			excluded[top.ID] = true
			continue
		}

		if target, err := e.branchTarget(top, ctx); err != nil {
			return model.FlowDecision{}, err
		} else if target != nil {
			return model.FlowDecision{NextQuestion: target, BranchTo: target.ID}, nil
		}

		return model.FlowDecision{NextQuestion: &top}, nil
	}

	return model.FlowDecision{ShouldSkip: false, Reason: ReasonExhausted}, nil
}

// candidates returns every unanswered question whose dependencies are all
// answered, minus excluded ids and anything the filter rejects.
func (e *Engine) candidates(ctx model.AssessmentContext, excluded map[string]bool, filter func(model.QuestionNode) bool) []model.QuestionNode {
	var out []model.QuestionNode
	for _, q := range e.catalog.questions {
		if excluded[q.ID] || ctx.HasAnswered(q.ID) {
			continue
		}
		ready := true
		for _, dep := range q.DependsOn {
			if !ctx.HasAnswered(dep) {
				ready = false
				break
			}
		}
		if !ready {
			continue
		}
		if filter != nil && !filter(q) {
			continue
		}
		out = append(out, q)
	}
	return out
}

// baseLess is the ranking used by NextQuestion and as the final tiebreak
// for context-aware selection.
func (e *Engine) baseLess(ctx model.AssessmentContext) func(a, b model.QuestionNode) bool {
	return func(a, b model.QuestionNode) bool {
		if ar, br := a.Priority.Rank(), b.Priority.Rank(); ar != br {
			return ar > br
		}
		if ctx.CurrentCategory != "" {
			am, bm := a.Category == ctx.CurrentCategory, b.Category == ctx.CurrentCategory
			if am != bm {
				return am
			}
		}
		if la, lb := len(a.DependsOn), len(b.DependsOn); la != lb {
			return la < lb
		}
		return e.catalog.Order(a.ID) < e.catalog.Order(b.ID)
	}
}

// passesSkipRules evaluates a question's skip rules against recorded
// answers. Rules referencing unanswered questions are inert. A fired
// skip, or an unmet require, rejects the question.
func (e *Engine) passesSkipRules(q model.QuestionNode, ctx model.AssessmentContext) (bool, error) {
	for _, rule := range q.SkipRules {
		answer, ok := ctx.Answers[rule.QuestionID]
		if !ok {
			continue
		}
		matched, err := evaluateCondition(answer.Value, rule.Operator, rule.Value)
		if err != nil {
			return false, fmt.Errorf("skip rule on question %q: %w", q.ID, err)
		}
		switch rule.Action {
		case model.ActionSkip:
			if matched {
				return false, nil
			}
		case model.ActionRequire:
			if !matched {
				return false, nil
			}
		}
	}
	return true, nil
}

// branchTarget evaluates branch rules in order and returns the first
// fired rule's target. Targets bypass ranking entirely but must exist in
// the catalog and still be unanswered; otherwise the rule is ignored and
// the ranked candidate stands.
func (e *Engine) branchTarget(q model.QuestionNode, ctx model.AssessmentContext) (*model.QuestionNode, error) {
	for _, rule := range q.BranchRules {
		answer, ok := ctx.Answers[rule.QuestionID]
		if !ok {
			continue
		}
		matched, err := evaluateCondition(answer.Value, rule.Operator, rule.Value)
		if err != nil {
			return nil, fmt.Errorf("branch rule on question %q: %w", q.ID, err)
		}
		if !matched {
			continue
		}
		target := e.catalog.Get(rule.TargetID)
		if target == nil || ctx.HasAnswered(target.ID) {
			continue
		}
		return target, nil
	}
	return nil, nil
}

// SubmitAnswer records an answer and returns the updated context. The input
// context is not mutated; callers must persist the returned value. The
// answered-at timestamp is always overwritten here. Re-answering a question
// replaces the prior entry and rebuilds any gap attributed solely to it.
func (e *Engine) SubmitAnswer(ctx model.AssessmentContext, questionID string, value model.AnswerValue, confidence *float64) (model.AssessmentContext, error) {
	q := e.catalog.Get(questionID)
	if q == nil {
		return ctx, fmt.Errorf("unknown question id %q", questionID)
	}

	next := cloneContext(ctx)
	now := time.Now()

	if next.HasAnswered(questionID) {
		next.Gaps = dropGapsFor(next.Gaps, questionID)
	} else {
		next.AnsweredQuestions = append(next.AnsweredQuestions, questionID)
	}

	next.Answers[questionID] = model.AnswerData{
		QuestionID: questionID,
		Value:      value,
		Confidence: confidence,
		AnsweredAt: now,
	}

	total := e.catalog.Size()
	progress := int(math.Round(100 * float64(len(next.AnsweredQuestions)) / float64(total)))
	if progress > 100 {
		progress = 100
	}
	next.Progress = progress
	next.Phase = phaseFor(next)
	next.CurrentCategory = q.Category
	next.UpdatedAt = now
	if next.Progress >= 100 && next.CompletedAt == nil {
		next.CompletedAt = &now
	}

	if value.IsNegative() {
		recordGap(&next, *q, now)
	}

	return next, nil
}

// phaseFor derives the phase from progress and answer count
func phaseFor(ctx model.AssessmentContext) model.Phase {
	switch {
	case ctx.Progress >= 100:
		return model.PhaseCompletion
	case ctx.Progress > 0:
		return model.PhaseAssessment
	case len(ctx.AnsweredQuestions) > 0:
		return model.PhaseExploration
	}
	return model.PhaseInitiation
}

// cloneContext deep-copies the mutable parts of a context
func cloneContext(ctx model.AssessmentContext) model.AssessmentContext {
	next := ctx
	next.AnsweredQuestions = append([]string{}, ctx.AnsweredQuestions...)
	next.Answers = make(map[string]model.AnswerData, len(ctx.Answers))
	for k, v := range ctx.Answers {
		next.Answers[k] = v
	}
	next.Gaps = append([]model.Gap{}, ctx.Gaps...)
	return next
}
