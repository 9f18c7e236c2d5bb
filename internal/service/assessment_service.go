package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"complyflow/internal/cache"
	"complyflow/internal/flow"
	"complyflow/internal/model"
	"complyflow/internal/repository"

	"github.com/google/uuid"
)

var (
	ErrStandardNotFound = errors.New("standard not found")
	ErrSessionNotFound  = errors.New("session not found")
	ErrVersionRetired   = errors.New("standard version no longer available")
)

// AssessmentService drives guided assessments. The flow engine itself is
// pure, so this service owns the impure edges: loading catalogs, locking
// per session, persisting contexts, and fanning out events.
type AssessmentService struct {
	standardRepo  repository.StandardRepo
	contextRepo   repository.ContextRepo
	statsCache    cache.StatsCache
	progressCache cache.ProgressCache
	auth          *AuthService
	broadcaster   Broadcaster

	mu      sync.Mutex
	engines map[string]*flow.Engine // standardID@version
	locks   map[string]*sync.Mutex  // sessionID
}

// NewAssessmentService creates a new assessment service
func NewAssessmentService(
	standardRepo repository.StandardRepo,
	contextRepo repository.ContextRepo,
	statsCache cache.StatsCache,
	progressCache cache.ProgressCache,
	auth *AuthService,
) *AssessmentService {
	return &AssessmentService{
		standardRepo:  standardRepo,
		contextRepo:   contextRepo,
		statsCache:    statsCache,
		progressCache: progressCache,
		auth:          auth,
		engines:       map[string]*flow.Engine{},
		locks:         map[string]*sync.Mutex{},
	}
}

// SetBroadcaster sets the broadcaster for WebSocket events
func (s *AssessmentService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// EngineFor returns the cached engine for one standard version, building it
// on first use. Sessions pin the version they started with; if the live
// standard has moved on, their catalog is gone and the session cannot
// continue.
func (s *AssessmentService) EngineFor(ctx context.Context, standardID, version string) (*flow.Engine, error) {
	key := standardID + "@" + version

	s.mu.Lock()
	engine, ok := s.engines[key]
	s.mu.Unlock()
	if ok {
		return engine, nil
	}

	standard, err := s.standardRepo.GetByID(ctx, standardID)
	if err != nil {
		return nil, fmt.Errorf("load standard %s: %w", standardID, err)
	}
	if standard == nil {
		return nil, ErrStandardNotFound
	}
	if standard.Version != version {
		return nil, ErrVersionRetired
	}

	catalog, err := flow.NewCatalog(standard.Questions)
	if err != nil {
		return nil, fmt.Errorf("catalog for standard %s: %w", standardID, err)
	}
	engine = flow.NewEngine(catalog)

	s.mu.Lock()
	s.engines[key] = engine
	s.mu.Unlock()
	return engine, nil
}

// sessionLock returns the mutex serializing writes for one session
func (s *AssessmentService) sessionLock(sessionID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[sessionID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[sessionID] = lock
	}
	return lock
}

// StartAssessment creates a session against a standard and returns the
// respondent token plus the opening question.
func (s *AssessmentService) StartAssessment(ctx context.Context, req *model.StartAssessmentRequest) (*model.StartAssessmentResponse, error) {
	standard, err := s.standardRepo.GetByID(ctx, req.StandardID)
	if err != nil {
		return nil, fmt.Errorf("load standard: %w", err)
	}
	if standard == nil {
		return nil, ErrStandardNotFound
	}

	engine, err := s.EngineFor(ctx, standard.ID, standard.Version)
	if err != nil {
		return nil, err
	}

	mode := req.Mode
	if mode == "" {
		mode = model.ModeGuided
	}

	sessionID := "s_" + uuid.New().String()[:8]
	assessment := engine.StartAssessment(sessionID, req.UserID, standard.ID, standard.Version, mode)

	if err := s.contextRepo.Save(ctx, &assessment); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	if err := s.progressCache.UpdateProgress(ctx, standard.ID, sessionID, 0); err != nil {
		return nil, fmt.Errorf("seed progress: %w", err)
	}

	token, err := s.auth.GenerateRespondentToken(sessionID, req.UserID, standard.ID)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	decision, err := flow.NewSelector(engine).NextQuestion(assessment)
	if err != nil {
		return nil, err
	}

	if s.broadcaster != nil {
		s.broadcaster.BroadcastToObservers(standard.ID, "session_started", map[string]interface{}{
			"sessionId": sessionID,
			"userId":    req.UserID,
		})
	}

	return &model.StartAssessmentResponse{
		SessionID:     sessionID,
		Token:         token,
		StandardName:  standard.Name,
		FirstQuestion: decision.NextQuestion,
	}, nil
}

// GetSession loads one assessment context
func (s *AssessmentService) GetSession(ctx context.Context, sessionID string) (*model.AssessmentContext, error) {
	assessment, err := s.contextRepo.GetBySessionID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if assessment == nil {
		return nil, ErrSessionNotFound
	}
	return assessment, nil
}

// ListByUser returns every session a user has started
func (s *AssessmentService) ListByUser(ctx context.Context, userID string) ([]*model.AssessmentContext, error) {
	sessions, err := s.contextRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return sessions, nil
}

// NextQuestion returns the context-aware pick for a session without
// recording anything.
func (s *AssessmentService) NextQuestion(ctx context.Context, sessionID string) (*model.FlowDecision, error) {
	assessment, err := s.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	engine, err := s.EngineFor(ctx, assessment.StandardID, assessment.StandardVersion)
	if err != nil {
		return nil, err
	}
	decision, err := flow.NewSelector(engine).NextQuestion(*assessment)
	if err != nil {
		return nil, err
	}
	return &decision, nil
}

// SubmitAnswer folds one structured answer into a session and chains the
// next question. Writes for the same session are serialized here; the
// engine underneath stays lock-free.
func (s *AssessmentService) SubmitAnswer(ctx context.Context, sessionID string, req *model.SubmitAnswerRequest) (*model.SubmitAnswerResponse, error) {
	lock := s.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	assessment, err := s.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	engine, err := s.EngineFor(ctx, assessment.StandardID, assessment.StandardVersion)
	if err != nil {
		return nil, err
	}

	prevGaps := len(assessment.Gaps)
	updated, err := engine.SubmitAnswer(*assessment, req.QuestionID, req.Value, req.Confidence)
	if err != nil {
		return nil, err
	}

	if err := s.contextRepo.Save(ctx, &updated); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	q := engine.Catalog().Get(req.QuestionID)
	negative := 0
	if req.Value.IsNegative() {
		negative = 1
	}
	if err := s.statsCache.IncrementCategory(ctx, updated.StandardID, q.Category, 1, negative); err != nil {
		return nil, fmt.Errorf("update stats: %w", err)
	}
	if err := s.progressCache.UpdateProgress(ctx, updated.StandardID, sessionID, updated.Progress); err != nil {
		return nil, fmt.Errorf("update progress: %w", err)
	}

	gapDetected := len(updated.Gaps) > prevGaps
	s.publishAnswerEvents(updated, gapDetected)

	decision, err := flow.NewSelector(engine).NextQuestion(updated)
	if err != nil {
		return nil, err
	}

	done := decision.NextQuestion == nil
	if done && s.broadcaster != nil {
		s.broadcaster.BroadcastToObservers(updated.StandardID, "session_completed", map[string]interface{}{
			"sessionId": sessionID,
			"progress":  updated.Progress,
			"gapCount":  len(updated.Gaps),
		})
	}

	return &model.SubmitAnswerResponse{
		Progress:     updated.Progress,
		Phase:        updated.Phase,
		GapDetected:  gapDetected,
		NextQuestion: decision.NextQuestion,
		Done:         done,
		Reason:       decision.Reason,
	}, nil
}

func (s *AssessmentService) publishAnswerEvents(assessment model.AssessmentContext, gapDetected bool) {
	if s.broadcaster == nil {
		return
	}
	s.broadcaster.BroadcastToObservers(assessment.StandardID, "progress_update", map[string]interface{}{
		"sessionId": assessment.SessionID,
		"progress":  assessment.Progress,
		"phase":     assessment.Phase,
	})
	if gapDetected && len(assessment.Gaps) > 0 {
		s.broadcaster.BroadcastToObservers(assessment.StandardID, "gap_detected", assessment.Gaps[len(assessment.Gaps)-1])
	}
}

// GetProgress builds the progress summary for one session
func (s *AssessmentService) GetProgress(ctx context.Context, sessionID string) (*model.ProgressSummary, error) {
	assessment, err := s.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	engine, err := s.EngineFor(ctx, assessment.StandardID, assessment.StandardVersion)
	if err != nil {
		return nil, err
	}
	summary := flow.BuildProgressSummary(*assessment, engine.Catalog())
	if rank, err := s.progressCache.GetRank(ctx, assessment.StandardID, sessionID); err == nil && rank > 0 {
		summary.Rank = rank
	}
	return &summary, nil
}

// Analyze returns the selector's view of a session's answer history
func (s *AssessmentService) Analyze(ctx context.Context, sessionID string) (*model.AnswerAnalysis, error) {
	assessment, err := s.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	engine, err := s.EngineFor(ctx, assessment.StandardID, assessment.StandardVersion)
	if err != nil {
		return nil, err
	}
	analysis := flow.NewSelector(engine).AnalyzeAnswers(*assessment)
	return &analysis, nil
}

// Complete ends a session early. Unanswered questions stay unanswered; the
// context is frozen in the completion phase.
func (s *AssessmentService) Complete(ctx context.Context, sessionID string) (*model.AssessmentContext, error) {
	lock := s.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	assessment, err := s.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	assessment.Phase = model.PhaseCompletion
	if assessment.CompletedAt == nil {
		now := time.Now()
		assessment.CompletedAt = &now
		assessment.UpdatedAt = now
	}
	if err := s.contextRepo.Save(ctx, assessment); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	if s.broadcaster != nil {
		s.broadcaster.BroadcastToObservers(assessment.StandardID, "session_completed", map[string]interface{}{
			"sessionId": sessionID,
			"progress":  assessment.Progress,
			"gapCount":  len(assessment.Gaps),
		})
		// Tell the respondent before their socket goes away
		s.broadcaster.BroadcastToSession(sessionID, "session_completed", map[string]interface{}{
			"progress": assessment.Progress,
		})
		s.broadcaster.DisconnectSession(sessionID)
	}
	return assessment, nil
}
