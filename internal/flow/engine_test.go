package flow

import (
	"testing"

	"complyflow/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCatalog(t *testing.T, questions []model.QuestionNode) *Catalog {
	t.Helper()
	c, err := NewCatalog(questions)
	require.NoError(t, err)
	return c
}

func startSession(e *Engine) model.AssessmentContext {
	return e.StartAssessment("s_test", "u_test", "std_soc2", "1.0.0", model.ModeGuided)
}

func TestCatalogValidation(t *testing.T) {
	t.Run("rejects empty catalog", func(t *testing.T) {
		_, err := NewCatalog(nil)
		assert.Error(t, err)
	})

	t.Run("rejects duplicate ids", func(t *testing.T) {
		_, err := NewCatalog([]model.QuestionNode{
			{ID: "q1", Prompt: "a", Priority: model.PriorityHigh, Format: model.FormatYesNo},
			{ID: "q1", Prompt: "b", Priority: model.PriorityHigh, Format: model.FormatYesNo},
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "duplicate")
	})

	t.Run("rejects dangling dependency", func(t *testing.T) {
		_, err := NewCatalog([]model.QuestionNode{
			{ID: "q1", Prompt: "a", Priority: model.PriorityHigh, Format: model.FormatYesNo, DependsOn: []string{"ghost"}},
		})
		assert.Error(t, err)
	})

	t.Run("rejects dangling branch target", func(t *testing.T) {
		_, err := NewCatalog([]model.QuestionNode{
			{ID: "q1", Prompt: "a", Priority: model.PriorityHigh, Format: model.FormatYesNo,
				BranchRules: []model.BranchCondition{{QuestionID: "q1", Operator: model.OpEquals, Value: model.BoolValue(false), TargetID: "ghost"}}},
		})
		assert.Error(t, err)
	})
}

func TestNextQuestionRanking(t *testing.T) {
	catalog := testCatalog(t, []model.QuestionNode{
		{ID: "q_low", Prompt: "low", Category: "access-control", Priority: model.PriorityLow, Format: model.FormatYesNo},
		{ID: "q_med", Prompt: "med", Category: "access-control", Priority: model.PriorityMedium, Format: model.FormatYesNo},
		{ID: "q_high", Prompt: "high", Category: "encryption", Priority: model.PriorityHigh, Format: model.FormatYesNo},
	})
	engine := NewEngine(catalog)
	ctx := startSession(engine)

	t.Run("highest priority wins", func(t *testing.T) {
		d, err := engine.NextQuestion(ctx)
		require.NoError(t, err)
		require.NotNil(t, d.NextQuestion)
		assert.Equal(t, "q_high", d.NextQuestion.ID)
	})

	t.Run("selection is read-only and repeatable", func(t *testing.T) {
		first, err := engine.NextQuestion(ctx)
		require.NoError(t, err)
		second, err := engine.NextQuestion(ctx)
		require.NoError(t, err)
		assert.Equal(t, first.NextQuestion.ID, second.NextQuestion.ID)
		assert.Empty(t, ctx.AnsweredQuestions)
	})

	t.Run("current category breaks priority ties", func(t *testing.T) {
		tied := testCatalog(t, []model.QuestionNode{
			{ID: "q_net", Prompt: "net", Category: "network", Priority: model.PriorityMedium, Format: model.FormatYesNo},
			{ID: "q_enc", Prompt: "enc", Category: "encryption", Priority: model.PriorityMedium, Format: model.FormatYesNo},
		})
		e := NewEngine(tied)
		c := startSession(e)
		c.CurrentCategory = "encryption"

		d, err := e.NextQuestion(c)
		require.NoError(t, err)
		assert.Equal(t, "q_enc", d.NextQuestion.ID)
	})
}

func TestDependencyGating(t *testing.T) {
	catalog := testCatalog(t, []model.QuestionNode{
		{ID: "q_root", Prompt: "root", Category: "backup", Priority: model.PriorityMedium, Format: model.FormatYesNo},
		{ID: "q_child", Prompt: "child", Category: "backup", Priority: model.PriorityHigh, Format: model.FormatYesNo, DependsOn: []string{"q_root"}},
	})
	engine := NewEngine(catalog)
	ctx := startSession(engine)

	d, err := engine.NextQuestion(ctx)
	require.NoError(t, err)
	assert.Equal(t, "q_root", d.NextQuestion.ID, "child outranks root but is not ready")

	ctx, err = engine.SubmitAnswer(ctx, "q_root", model.BoolValue(true), nil)
	require.NoError(t, err)

	d, err = engine.NextQuestion(ctx)
	require.NoError(t, err)
	assert.Equal(t, "q_child", d.NextQuestion.ID)
}

func TestSkipRules(t *testing.T) {
	t.Run("fired skip excludes the question", func(t *testing.T) {
		catalog := testCatalog(t, []model.QuestionNode{
			{ID: "q_cloud", Prompt: "use cloud?", Category: "infra", Priority: model.PriorityHigh, Format: model.FormatYesNo},
			{ID: "q_cloud_vendor", Prompt: "which vendor?", Category: "infra", Priority: model.PriorityHigh, Format: model.FormatOpenEnded,
				SkipRules: []model.SkipCondition{{QuestionID: "q_cloud", Operator: model.OpEquals, Value: model.BoolValue(false), Action: model.ActionSkip}}},
			{ID: "q_other", Prompt: "other", Category: "infra", Priority: model.PriorityLow, Format: model.FormatYesNo},
		})
		engine := NewEngine(catalog)
		ctx, err := engine.SubmitAnswer(startSession(engine), "q_cloud", model.BoolValue(false), nil)
		require.NoError(t, err)

		d, err := engine.NextQuestion(ctx)
		require.NoError(t, err)
		assert.Equal(t, "q_other", d.NextQuestion.ID)
	})

	t.Run("unmet require excludes the question", func(t *testing.T) {
		catalog := testCatalog(t, []model.QuestionNode{
			{ID: "q_mfa", Prompt: "mfa?", Category: "access", Priority: model.PriorityHigh, Format: model.FormatYesNo},
			{ID: "q_mfa_scope", Prompt: "scope?", Category: "access", Priority: model.PriorityHigh, Format: model.FormatOpenEnded,
				SkipRules: []model.SkipCondition{{QuestionID: "q_mfa", Operator: model.OpEquals, Value: model.BoolValue(true), Action: model.ActionRequire}}},
			{ID: "q_fallback", Prompt: "fallback", Category: "access", Priority: model.PriorityMedium, Format: model.FormatYesNo},
		})
		engine := NewEngine(catalog)
		ctx, err := engine.SubmitAnswer(startSession(engine), "q_mfa", model.BoolValue(false), nil)
		require.NoError(t, err)

		d, err := engine.NextQuestion(ctx)
		require.NoError(t, err)
		assert.Equal(t, "q_fallback", d.NextQuestion.ID)
	})

	t.Run("rule referencing unanswered question is inert", func(t *testing.T) {
		catalog := testCatalog(t, []model.QuestionNode{
			{ID: "q_a", Prompt: "a", Category: "x", Priority: model.PriorityLow, Format: model.FormatYesNo},
			{ID: "q_b", Prompt: "b", Category: "x", Priority: model.PriorityHigh, Format: model.FormatYesNo,
				SkipRules: []model.SkipCondition{{QuestionID: "q_a", Operator: model.OpEquals, Value: model.BoolValue(true), Action: model.ActionSkip}}},
		})
		engine := NewEngine(catalog)

		d, err := engine.NextQuestion(startSession(engine))
		require.NoError(t, err)
		assert.Equal(t, "q_b", d.NextQuestion.ID)
	})
}

func TestBranchRules(t *testing.T) {
	catalog := testCatalog(t, []model.QuestionNode{
		{ID: "q_incident", Prompt: "had incidents?", Category: "ir", Priority: model.PriorityHigh, Format: model.FormatYesNo},
		{ID: "q_next_major", Prompt: "major", Category: "ir", Priority: model.PriorityHigh, Format: model.FormatYesNo,
			BranchRules: []model.BranchCondition{{QuestionID: "q_incident", Operator: model.OpEquals, Value: model.BoolValue(true), TargetID: "q_postmortem"}}},
		{ID: "q_postmortem", Prompt: "postmortems?", Category: "ir", Priority: model.PriorityLow, Format: model.FormatYesNo},
	})
	engine := NewEngine(catalog)

	t.Run("fired branch overrides ranking", func(t *testing.T) {
		ctx, err := engine.SubmitAnswer(startSession(engine), "q_incident", model.BoolValue(true), nil)
		require.NoError(t, err)

		d, err := engine.NextQuestion(ctx)
		require.NoError(t, err)
		require.NotNil(t, d.NextQuestion)
		assert.Equal(t, "q_postmortem", d.NextQuestion.ID)
		assert.Equal(t, "q_postmortem", d.BranchTo)
	})

	t.Run("unfired branch leaves ranked winner", func(t *testing.T) {
		ctx, err := engine.SubmitAnswer(startSession(engine), "q_incident", model.BoolValue(false), nil)
		require.NoError(t, err)

		d, err := engine.NextQuestion(ctx)
		require.NoError(t, err)
		assert.Equal(t, "q_next_major", d.NextQuestion.ID)
		assert.Empty(t, d.BranchTo)
	})

	t.Run("branch to answered target is ignored", func(t *testing.T) {
		ctx, err := engine.SubmitAnswer(startSession(engine), "q_incident", model.BoolValue(true), nil)
		require.NoError(t, err)
		ctx, err = engine.SubmitAnswer(ctx, "q_postmortem", model.BoolValue(true), nil)
		require.NoError(t, err)

		d, err := engine.NextQuestion(ctx)
		require.NoError(t, err)
		assert.Equal(t, "q_next_major", d.NextQuestion.ID)
	})
}

func TestSubmitAnswer(t *testing.T) {
	catalog := testCatalog(t, []model.QuestionNode{
		{ID: "q1", Prompt: "one", Category: "policy", Priority: model.PriorityHigh, Format: model.FormatYesNo},
		{ID: "q2", Prompt: "two", Category: "policy", Priority: model.PriorityMedium, Format: model.FormatYesNo},
	})
	engine := NewEngine(catalog)

	t.Run("records answer and advances progress", func(t *testing.T) {
		ctx := startSession(engine)
		next, err := engine.SubmitAnswer(ctx, "q1", model.BoolValue(true), nil)
		require.NoError(t, err)

		assert.Equal(t, []string{"q1"}, next.AnsweredQuestions)
		assert.Equal(t, 50, next.Progress)
		assert.Equal(t, model.PhaseAssessment, next.Phase)
		assert.Equal(t, "policy", next.CurrentCategory)
		assert.True(t, next.HasAnswered("q1"))
		assert.Empty(t, ctx.AnsweredQuestions, "input context must not be mutated")
	})

	t.Run("unknown question id is an error", func(t *testing.T) {
		_, err := engine.SubmitAnswer(startSession(engine), "nope", model.BoolValue(true), nil)
		assert.Error(t, err)
	})

	t.Run("negative answer opens a gap", func(t *testing.T) {
		next, err := engine.SubmitAnswer(startSession(engine), "q1", model.BoolValue(false), nil)
		require.NoError(t, err)
		require.Len(t, next.Gaps, 1)
		assert.Equal(t, model.SeverityHigh, next.Gaps[0].Severity)
		assert.Equal(t, []string{"q1"}, next.Gaps[0].QuestionIDs)
	})

	t.Run("re-answer replaces value and rebuilds its gap", func(t *testing.T) {
		ctx, err := engine.SubmitAnswer(startSession(engine), "q1", model.BoolValue(false), nil)
		require.NoError(t, err)
		require.Len(t, ctx.Gaps, 1)

		ctx, err = engine.SubmitAnswer(ctx, "q1", model.BoolValue(true), nil)
		require.NoError(t, err)
		assert.Empty(t, ctx.Gaps)
		assert.Equal(t, []string{"q1"}, ctx.AnsweredQuestions, "no duplicate entry")
		assert.Equal(t, 50, ctx.Progress)
	})

	t.Run("completion", func(t *testing.T) {
		ctx := startSession(engine)
		ctx, err := engine.SubmitAnswer(ctx, "q1", model.BoolValue(true), nil)
		require.NoError(t, err)
		ctx, err = engine.SubmitAnswer(ctx, "q2", model.BoolValue(true), nil)
		require.NoError(t, err)

		assert.Equal(t, 100, ctx.Progress)
		assert.Equal(t, model.PhaseCompletion, ctx.Phase)
		require.NotNil(t, ctx.CompletedAt)

		d, err := engine.NextQuestion(ctx)
		require.NoError(t, err)
		assert.Nil(t, d.NextQuestion)
		assert.Equal(t, ReasonExhausted, d.Reason)
	})
}

func TestFullRunToExhaustion(t *testing.T) {
	catalog := testCatalog(t, []model.QuestionNode{
		{ID: "qa", Prompt: "a", Category: "c1", Priority: model.PriorityHigh, Format: model.FormatYesNo},
		{ID: "qb", Prompt: "b", Category: "c2", Priority: model.PriorityMedium, Format: model.FormatYesNo},
		{ID: "qc", Prompt: "c", Category: "c3", Priority: model.PriorityLow, Format: model.FormatYesNo},
	})
	engine := NewEngine(catalog)
	ctx := startSession(engine)

	var asked []string
	for i := 0; i < catalog.Size(); i++ {
		d, err := engine.NextQuestion(ctx)
		require.NoError(t, err)
		require.NotNil(t, d.NextQuestion)
		asked = append(asked, d.NextQuestion.ID)

		ctx, err = engine.SubmitAnswer(ctx, d.NextQuestion.ID, model.BoolValue(true), nil)
		require.NoError(t, err)
	}

	assert.Equal(t, []string{"qa", "qb", "qc"}, asked)

	d, err := engine.NextQuestion(ctx)
	require.NoError(t, err)
	assert.Nil(t, d.NextQuestion)
	assert.Equal(t, ReasonExhausted, d.Reason)
	assert.Equal(t, 100, ctx.Progress)
}
