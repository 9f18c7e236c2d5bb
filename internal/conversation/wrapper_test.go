package conversation

import (
	"testing"

	"complyflow/internal/flow"
	"complyflow/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newWrapper(t *testing.T, questions []model.QuestionNode) (*Wrapper, model.ConversationState) {
	t.Helper()
	catalog, err := flow.NewCatalog(questions)
	require.NoError(t, err)
	engine := flow.NewEngine(catalog)
	w := NewWrapper(engine, flow.NewSelector(engine))
	ctx := engine.StartAssessment("s_chat", "u_chat", "std_soc2", "1.0.0", model.ModeConversational)
	return w, w.NewState(ctx)
}

func basicQuestions() []model.QuestionNode {
	return []model.QuestionNode{
		{ID: "q_mfa", Prompt: "Do you enforce MFA?", Category: "access", Priority: model.PriorityHigh, Format: model.FormatYesNo},
		{ID: "q_maturity", Prompt: "Rate your access review maturity.", Category: "access", Priority: model.PriorityMedium, Format: model.FormatScale, ScaleMin: 1, ScaleMax: 5},
	}
}

func TestGreet(t *testing.T) {
	w, state := newWrapper(t, basicQuestions())

	state, reply, err := w.Greet(state)
	require.NoError(t, err)

	assert.Equal(t, model.DialogueAwaiting, state.State)
	assert.Equal(t, "q_mfa", state.PendingQuestionID)
	require.NotNil(t, reply.Question)
	assert.Contains(t, reply.Response, "Do you enforce MFA?")
	assert.Contains(t, reply.Response, "(Answer: yes or no)")
	require.Len(t, state.Transcript, 1)
	assert.Equal(t, model.RoleAssistant, state.Transcript[0].Role)
}

func TestAnswerFlow(t *testing.T) {
	w, state := newWrapper(t, basicQuestions())
	state, _, err := w.Greet(state)
	require.NoError(t, err)

	state, reply, err := w.ProcessMessage(state, "yes")
	require.NoError(t, err)

	assert.True(t, state.Context.HasAnswered("q_mfa"))
	require.NotNil(t, state.Context.Answers["q_mfa"].Value.Bool)
	assert.True(t, *state.Context.Answers["q_mfa"].Value.Bool)
	assert.Equal(t, "q_maturity", state.PendingQuestionID, "next question chained into the reply")
	assert.Contains(t, reply.Response, "Rate your access review maturity.")
	assert.Contains(t, reply.Response, "(Enter a number between 1 and 5)")
}

func TestClarification(t *testing.T) {
	t.Run("hedging reply is unclear and keeps the question pending", func(t *testing.T) {
		w, state := newWrapper(t, basicQuestions())
		state, _, err := w.Greet(state)
		require.NoError(t, err)

		state, reply, err := w.ProcessMessage(state, "maybe")
		require.NoError(t, err)

		require.NotNil(t, reply.Clarification)
		assert.Equal(t, model.ReasonUnclear, reply.Clarification.Reason)
		assert.Equal(t, "q_mfa", state.PendingQuestionID)
		assert.Equal(t, model.DialogueClarify, state.State)
		assert.Equal(t, 1, state.ClarifyAttempts)
		assert.False(t, state.Context.HasAnswered("q_mfa"))
		assert.Contains(t, reply.Response, "Do you enforce MFA?", "clarification restates the question")
	})

	t.Run("scale reply outside bounds is unclear", func(t *testing.T) {
		w, state := newWrapper(t, basicQuestions())
		state, _, err := w.Greet(state)
		require.NoError(t, err)
		state, _, err = w.ProcessMessage(state, "yes")
		require.NoError(t, err)
		require.Equal(t, "q_maturity", state.PendingQuestionID)

		state, reply, err := w.ProcessMessage(state, "7")
		require.NoError(t, err)
		require.NotNil(t, reply.Clarification)
		assert.Equal(t, model.ReasonUnclear, reply.Clarification.Reason)

		state, reply, err = w.ProcessMessage(state, "3")
		require.NoError(t, err)
		assert.Nil(t, reply.Clarification)
		require.NotNil(t, state.Context.Answers["q_maturity"].Value.Number)
		assert.Equal(t, 3.0, *state.Context.Answers["q_maturity"].Value.Number)
	})

	t.Run("contradictory yes-no reply", func(t *testing.T) {
		w, state := newWrapper(t, basicQuestions())
		state, _, err := w.Greet(state)
		require.NoError(t, err)

		_, reply, err := w.ProcessMessage(state, "well, yes and no")
		require.NoError(t, err)
		require.NotNil(t, reply.Clarification)
		assert.Equal(t, model.ReasonContradictory, reply.Clarification.Reason)
	})

	t.Run("retry cap accepts the raw reply", func(t *testing.T) {
		w, state := newWrapper(t, basicQuestions())
		state, _, err := w.Greet(state)
		require.NoError(t, err)

		var reply model.Reply
		state, reply, err = w.ProcessMessage(state, "hmm, it varies by team honestly")
		require.NoError(t, err)
		require.NotNil(t, reply.Clarification)
		state, reply, err = w.ProcessMessage(state, "it really depends on the team")
		require.NoError(t, err)
		require.NotNil(t, reply.Clarification)

		state, reply, err = w.ProcessMessage(state, "partially, for admins only")
		require.NoError(t, err)
		assert.Nil(t, reply.Clarification)

		answer := state.Context.Answers["q_mfa"]
		assert.True(t, state.Context.HasAnswered("q_mfa"))
		assert.Equal(t, "partially, for admins only", answer.Value.Text)
		require.NotNil(t, answer.Confidence)
		assert.Equal(t, 0.2, *answer.Confidence)
		assert.Equal(t, 0, state.ClarifyAttempts)
	})
}

func TestIntents(t *testing.T) {
	w, state := newWrapper(t, basicQuestions())

	state, reply, err := w.ProcessMessage(state, "help")
	require.NoError(t, err)
	assert.Contains(t, reply.Response, "one question at a time")
	assert.Empty(t, state.PendingQuestionID, "intents never alter assessment state")
	assert.Empty(t, state.Context.AnsweredQuestions)

	state, reply, err = w.ProcessMessage(state, "next")
	require.NoError(t, err)
	require.NotNil(t, reply.Question)
	assert.Equal(t, "q_mfa", state.PendingQuestionID)
}

func TestContinuationPhrases(t *testing.T) {
	for _, phrase := range []string{"next", "continue", "ready", "what's next", "let's continue", "What's next?"} {
		t.Run(phrase, func(t *testing.T) {
			w, state := newWrapper(t, basicQuestions())

			state, reply, err := w.ProcessMessage(state, phrase)
			require.NoError(t, err)

			assert.Equal(t, model.DialogueAwaiting, state.State)
			assert.Equal(t, "q_mfa", state.PendingQuestionID)
			require.NotNil(t, reply.Question)
			assert.Contains(t, reply.Response, "Do you enforce MFA?")
		})
	}
}

func TestCompletion(t *testing.T) {
	w, state := newWrapper(t, []model.QuestionNode{
		{ID: "q_only", Prompt: "Do you have a security policy?", Category: "policy", Priority: model.PriorityHigh, Format: model.FormatYesNo},
	})
	state, _, err := w.Greet(state)
	require.NoError(t, err)

	state, reply, err := w.ProcessMessage(state, "no")
	require.NoError(t, err)

	assert.True(t, reply.Done)
	assert.Equal(t, model.DialogueComplete, state.State)
	assert.Equal(t, 100, state.Context.Progress)
	assert.Contains(t, reply.Response, "1 compliance gap was identified")

	state, reply, err = w.ProcessMessage(state, "thanks")
	require.NoError(t, err)
	assert.True(t, reply.Done)
	assert.Contains(t, reply.Response, "already complete")
}
