package service

import (
	"context"
	"testing"

	"complyflow/internal/cache"
	"complyflow/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// In-memory fakes for the Mongo and Redis interfaces

type fakeStandardRepo struct {
	standards map[string]*model.Standard
}

func (r *fakeStandardRepo) Create(_ context.Context, s *model.Standard) error {
	r.standards[s.ID] = s
	return nil
}

func (r *fakeStandardRepo) GetByID(_ context.Context, id string) (*model.Standard, error) {
	return r.standards[id], nil
}

func (r *fakeStandardRepo) List(_ context.Context) ([]*model.Standard, error) {
	var out []*model.Standard
	for _, s := range r.standards {
		out = append(out, s)
	}
	return out, nil
}

func (r *fakeStandardRepo) Update(_ context.Context, s *model.Standard) error {
	r.standards[s.ID] = s
	return nil
}

func (r *fakeStandardRepo) Delete(_ context.Context, id string) error {
	delete(r.standards, id)
	return nil
}

type fakeContextRepo struct {
	contexts map[string]*model.AssessmentContext
}

func (r *fakeContextRepo) Save(_ context.Context, a *model.AssessmentContext) error {
	copied := *a
	r.contexts[a.SessionID] = &copied
	return nil
}

func (r *fakeContextRepo) GetBySessionID(_ context.Context, sessionID string) (*model.AssessmentContext, error) {
	return r.contexts[sessionID], nil
}

func (r *fakeContextRepo) GetByUserID(_ context.Context, userID string) ([]*model.AssessmentContext, error) {
	var out []*model.AssessmentContext
	for _, a := range r.contexts {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *fakeContextRepo) GetByStandardID(_ context.Context, standardID string) ([]*model.AssessmentContext, error) {
	var out []*model.AssessmentContext
	for _, a := range r.contexts {
		if a.StandardID == standardID {
			out = append(out, a)
		}
	}
	return out, nil
}

type fakeStatsCache struct {
	counts map[string]cache.CategoryCounts
}

func (c *fakeStatsCache) IncrementCategory(_ context.Context, _, category string, answered, negative int) error {
	cc := c.counts[category]
	cc.Answered += answered
	cc.Negative += negative
	c.counts[category] = cc
	return nil
}

func (c *fakeStatsCache) GetCategoryStats(_ context.Context, _ string) (map[string]cache.CategoryCounts, error) {
	return c.counts, nil
}

func (c *fakeStatsCache) Reset(_ context.Context, _ string) error {
	c.counts = map[string]cache.CategoryCounts{}
	return nil
}

type fakeProgressCache struct {
	progress map[string]int
}

func (c *fakeProgressCache) UpdateProgress(_ context.Context, _, sessionID string, progress int) error {
	c.progress[sessionID] = progress
	return nil
}

func (c *fakeProgressCache) GetTop(_ context.Context, _ string, _ int) ([]cache.ProgressEntry, error) {
	var out []cache.ProgressEntry
	for id, p := range c.progress {
		out = append(out, cache.ProgressEntry{SessionID: id, Progress: p})
	}
	return out, nil
}

func (c *fakeProgressCache) GetRank(_ context.Context, _, sessionID string) (int64, error) {
	if _, ok := c.progress[sessionID]; ok {
		return 1, nil
	}
	return -1, nil
}

type fixture struct {
	svc      *AssessmentService
	standard *model.Standard
	contexts *fakeContextRepo
	stats    *fakeStatsCache
	progress *fakeProgressCache
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	standard := &model.Standard{
		ID:      "std_test",
		Name:    "Test Standard",
		Version: "1.0.0",
		Questions: []model.QuestionNode{
			{ID: "q_mfa", Prompt: "Is MFA enforced?", Category: "access", Priority: model.PriorityHigh, Format: model.FormatYesNo},
			{ID: "q_logs", Prompt: "Are audit logs retained?", Category: "logging", Priority: model.PriorityMedium, Format: model.FormatYesNo},
		},
	}

	standards := &fakeStandardRepo{standards: map[string]*model.Standard{standard.ID: standard}}
	contexts := &fakeContextRepo{contexts: map[string]*model.AssessmentContext{}}
	stats := &fakeStatsCache{counts: map[string]cache.CategoryCounts{}}
	progress := &fakeProgressCache{progress: map[string]int{}}

	svc := NewAssessmentService(standards, contexts, stats, progress, NewAuthService())
	return &fixture{svc: svc, standard: standard, contexts: contexts, stats: stats, progress: progress}
}

func TestStartAssessment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	resp, err := f.svc.StartAssessment(ctx, &model.StartAssessmentRequest{
		UserID:     "u_1",
		StandardID: "std_test",
	})
	require.NoError(t, err)

	assert.Equal(t, "Test Standard", resp.StandardName)
	require.NotNil(t, resp.FirstQuestion)
	assert.Equal(t, "q_mfa", resp.FirstQuestion.ID)

	claims, err := f.svc.auth.ValidateRespondentToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, resp.SessionID, claims.SessionID)
	assert.Equal(t, "std_test", claims.StandardID)

	saved := f.contexts.contexts[resp.SessionID]
	require.NotNil(t, saved)
	assert.Equal(t, model.ModeGuided, saved.Mode)
	assert.Equal(t, "1.0.0", saved.StandardVersion)
	assert.Equal(t, 0, f.progress.progress[resp.SessionID])
}

func TestStartAssessmentUnknownStandard(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.StartAssessment(context.Background(), &model.StartAssessmentRequest{
		UserID:     "u_1",
		StandardID: "std_missing",
	})
	assert.ErrorIs(t, err, ErrStandardNotFound)
}

func TestSubmitAnswerUpdatesCaches(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	start, err := f.svc.StartAssessment(ctx, &model.StartAssessmentRequest{UserID: "u_1", StandardID: "std_test"})
	require.NoError(t, err)

	resp, err := f.svc.SubmitAnswer(ctx, start.SessionID, &model.SubmitAnswerRequest{
		QuestionID: "q_mfa",
		Value:      model.BoolValue(false),
	})
	require.NoError(t, err)

	assert.True(t, resp.GapDetected)
	assert.Equal(t, 50, resp.Progress)
	require.NotNil(t, resp.NextQuestion)
	assert.Equal(t, "q_logs", resp.NextQuestion.ID)

	assert.Equal(t, cache.CategoryCounts{Answered: 1, Negative: 1}, f.stats.counts["access"])
	assert.Equal(t, 50, f.progress.progress[start.SessionID])

	saved := f.contexts.contexts[start.SessionID]
	require.NotNil(t, saved)
	assert.Len(t, saved.Gaps, 1)
}

func TestSubmitAnswerRunsToCompletion(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	start, err := f.svc.StartAssessment(ctx, &model.StartAssessmentRequest{UserID: "u_1", StandardID: "std_test"})
	require.NoError(t, err)

	_, err = f.svc.SubmitAnswer(ctx, start.SessionID, &model.SubmitAnswerRequest{QuestionID: "q_mfa", Value: model.BoolValue(true)})
	require.NoError(t, err)

	resp, err := f.svc.SubmitAnswer(ctx, start.SessionID, &model.SubmitAnswerRequest{QuestionID: "q_logs", Value: model.BoolValue(true)})
	require.NoError(t, err)

	assert.True(t, resp.Done)
	assert.Nil(t, resp.NextQuestion)
	assert.Equal(t, 100, resp.Progress)
	assert.Equal(t, model.PhaseCompletion, resp.Phase)
}

func TestSubmitAnswerUnknownSession(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.SubmitAnswer(context.Background(), "s_ghost", &model.SubmitAnswerRequest{
		QuestionID: "q_mfa",
		Value:      model.BoolValue(true),
	})
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestRetiredVersionRejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// A session pinned to a version the live standard has moved past
	f.contexts.contexts["s_old"] = &model.AssessmentContext{
		SessionID:       "s_old",
		UserID:          "u_1",
		StandardID:      "std_test",
		StandardVersion: "0.9.0",
		Answers:         map[string]model.AnswerData{},
	}

	_, err := f.svc.NextQuestion(ctx, "s_old")
	assert.ErrorIs(t, err, ErrVersionRetired)
}

func TestCompleteFreezesSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	start, err := f.svc.StartAssessment(ctx, &model.StartAssessmentRequest{UserID: "u_1", StandardID: "std_test"})
	require.NoError(t, err)

	_, err = f.svc.SubmitAnswer(ctx, start.SessionID, &model.SubmitAnswerRequest{QuestionID: "q_mfa", Value: model.BoolValue(true)})
	require.NoError(t, err)

	completed, err := f.svc.Complete(ctx, start.SessionID)
	require.NoError(t, err)
	assert.Equal(t, model.PhaseCompletion, completed.Phase)
	require.NotNil(t, completed.CompletedAt)

	// Progress stays where the respondent left it
	assert.Equal(t, 50, completed.Progress)
}

func TestGetProgressIncludesRank(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	start, err := f.svc.StartAssessment(ctx, &model.StartAssessmentRequest{UserID: "u_1", StandardID: "std_test"})
	require.NoError(t, err)

	_, err = f.svc.SubmitAnswer(ctx, start.SessionID, &model.SubmitAnswerRequest{QuestionID: "q_mfa", Value: model.BoolValue(false)})
	require.NoError(t, err)

	summary, err := f.svc.GetProgress(ctx, start.SessionID)
	require.NoError(t, err)
	assert.Equal(t, 50, summary.Progress)
	assert.Equal(t, 1, summary.AnsweredCount)
	assert.Equal(t, 1, summary.GapCount)
	assert.Equal(t, int64(1), summary.Rank)
}

func TestListByUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := f.svc.StartAssessment(ctx, &model.StartAssessmentRequest{UserID: "u_1", StandardID: "std_test"})
		require.NoError(t, err)
	}
	_, err := f.svc.StartAssessment(ctx, &model.StartAssessmentRequest{UserID: "u_2", StandardID: "std_test"})
	require.NoError(t, err)

	sessions, err := f.svc.ListByUser(ctx, "u_1")
	require.NoError(t, err)
	assert.Len(t, sessions, 2)
}
