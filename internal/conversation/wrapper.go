package conversation

import (
	"fmt"
	"strings"
	"time"

	"complyflow/internal/flow"
	"complyflow/internal/model"
)

// maxClarifyAttempts caps how many times the same question is re-asked
// before the raw reply is accepted as an open-ended answer.
const maxClarifyAttempts = 3

// fallbackConfidence is attached to answers accepted via the retry cap.
const fallbackConfidence = 0.2

var continuationPhrases = []string{"next", "continue", "go on", "proceed", "ready", "ok", "what's next", "let's continue"}

// Wrapper turns the flow engine into a turn-by-turn dialogue. It is pure:
// ProcessMessage takes a state value and returns the updated one, so callers
// own persistence and locking.
type Wrapper struct {
	engine   *flow.Engine
	selector *flow.Selector
}

func NewWrapper(engine *flow.Engine, selector *flow.Selector) *Wrapper {
	return &Wrapper{engine: engine, selector: selector}
}

// NewState begins a dialogue around an existing assessment context.
func (w *Wrapper) NewState(ctx model.AssessmentContext) model.ConversationState {
	now := time.Now().UTC()
	return model.ConversationState{
		SessionID: ctx.SessionID,
		Context:   ctx,
		State:     model.DialogueIdle,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Greet opens the dialogue and asks the first question.
func (w *Wrapper) Greet(state model.ConversationState) (model.ConversationState, model.Reply, error) {
	state, reply, err := w.askNext(state)
	if err != nil {
		return state, model.Reply{}, err
	}
	reply.Response = "Welcome to your compliance assessment. I'll walk you through a series of questions; answer in your own words.\n\n" + reply.Response
	state.Transcript[len(state.Transcript)-1].Content = reply.Response
	return state, reply, nil
}

// ProcessMessage handles one user turn and returns the updated state along
// with the assistant's reply.
func (w *Wrapper) ProcessMessage(state model.ConversationState, text string) (model.ConversationState, model.Reply, error) {
	now := time.Now().UTC()
	state.Transcript = append(state.Transcript, model.Message{Role: model.RoleUser, Content: text, SentAt: now})
	state.UpdatedAt = now

	if state.State == model.DialogueComplete {
		state, reply := w.say(state, model.Reply{
			Response: fmt.Sprintf("This assessment is already complete. %s", gapSummary(state.Context)),
			Done:     true,
		})
		return state, reply, nil
	}

	if state.PendingQuestionID != "" {
		return w.handleAnswer(state, text)
	}

	lower := strings.TrimRight(strings.ToLower(strings.TrimSpace(text)), "?!.")
	for _, phrase := range continuationPhrases {
		if lower == phrase {
			return w.askNext(state)
		}
	}
	if resp, ok := intentResponse(lower); ok {
		state, reply := w.say(state, model.Reply{Response: resp})
		return state, reply, nil
	}

	state, reply := w.say(state, model.Reply{Response: "Noted. Say \"next\" whenever you're ready to continue."})
	return state, reply, nil
}

func (w *Wrapper) handleAnswer(state model.ConversationState, text string) (model.ConversationState, model.Reply, error) {
	q := w.engine.Catalog().Get(state.PendingQuestionID)
	if q == nil {
		return state, model.Reply{}, fmt.Errorf("pending question %s not in catalog", state.PendingQuestionID)
	}

	v := validateReply(q, text)
	if !v.ok {
		state.ClarifyAttempts++
		if state.ClarifyAttempts < maxClarifyAttempts {
			state, reply := w.clarify(state, q, v)
			return state, reply, nil
		}
		// retry cap reached: take the reply at face value
		conf := fallbackConfidence
		return w.accept(state, q, model.TextValue(strings.TrimSpace(text)), &conf)
	}

	var conf *float64
	return w.accept(state, q, parseReply(q, text), conf)
}

func (w *Wrapper) accept(state model.ConversationState, q *model.QuestionNode, value model.AnswerValue, conf *float64) (model.ConversationState, model.Reply, error) {
	ctx, err := w.engine.SubmitAnswer(state.Context, q.ID, value, conf)
	if err != nil {
		return state, model.Reply{}, fmt.Errorf("submit answer for %s: %w", q.ID, err)
	}
	state.Context = ctx
	state.PendingQuestionID = ""
	state.ClarifyAttempts = 0

	ack := acknowledge(q, value, ctx)
	state, reply, err := w.askNext(state)
	if err != nil {
		return state, model.Reply{}, err
	}
	reply.Response = ack + "\n\n" + reply.Response
	state.Transcript[len(state.Transcript)-1].Content = reply.Response
	return state, reply, nil
}

func (w *Wrapper) clarify(state model.ConversationState, q *model.QuestionNode, v verdict) (model.ConversationState, model.Reply) {
	req := model.ClarificationRequest{
		QuestionID:       q.ID,
		Reason:           v.reason,
		Prompt:           clarificationProse(q, v.reason),
		SuggestedReplies: v.suggested,
		IssuedAt:         time.Now().UTC(),
	}
	state.Clarifications = append(state.Clarifications, req)
	state.State = model.DialogueClarify
	return w.say(state, model.Reply{Response: req.Prompt, Clarification: &req})
}

func (w *Wrapper) askNext(state model.ConversationState) (model.ConversationState, model.Reply, error) {
	decision, err := w.selector.NextQuestion(state.Context)
	if err != nil {
		return state, model.Reply{}, fmt.Errorf("select next question: %w", err)
	}
	if decision.NextQuestion == nil {
		state.State = model.DialogueComplete
		state.PendingQuestionID = ""
		state, reply := w.say(state, model.Reply{
			Response: fmt.Sprintf("That completes the assessment. %s", gapSummary(state.Context)),
			Done:     true,
		})
		return state, reply, nil
	}

	q := decision.NextQuestion
	state.State = model.DialogueAwaiting
	state.PendingQuestionID = q.ID
	state.ClarifyAttempts = 0
	state, reply := w.say(state, model.Reply{Response: renderQuestion(q), Question: q})
	return state, reply, nil
}

// say appends the assistant reply to the transcript and stamps the state.
func (w *Wrapper) say(state model.ConversationState, reply model.Reply) (model.ConversationState, model.Reply) {
	now := time.Now().UTC()
	state.Transcript = append(state.Transcript, model.Message{Role: model.RoleAssistant, Content: reply.Response, SentAt: now})
	state.UpdatedAt = now
	return state, reply
}

func intentResponse(lower string) (string, bool) {
	switch {
	case strings.Contains(lower, "help"):
		return "I ask one question at a time about your compliance posture. Answer in plain language; I'll ask for clarification if I can't interpret a reply.", true
	case strings.Contains(lower, "skip"):
		return "Questions can't be skipped outright, but a brief honest answer is fine and you can revisit it later.", true
	case strings.Contains(lower, "back"):
		return "To revise an earlier answer, submit it again through the assessment view; the flow will re-evaluate from there.", true
	}
	return "", false
}

func gapSummary(ctx model.AssessmentContext) string {
	switch len(ctx.Gaps) {
	case 0:
		return "No compliance gaps were identified. Well done."
	case 1:
		return "1 compliance gap was identified; see the assessment report for recommendations."
	default:
		return fmt.Sprintf("%d compliance gaps were identified; see the assessment report for recommendations.", len(ctx.Gaps))
	}
}
