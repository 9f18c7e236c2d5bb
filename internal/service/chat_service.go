package service

import (
	"context"
	"fmt"
	"strings"

	"complyflow/internal/cache"
	"complyflow/internal/conversation"
	"complyflow/internal/flow"
	"complyflow/internal/model"
	"complyflow/internal/repository"
)

// ChatService runs conversational assessments. The wrapper underneath is
// pure; this service loads and stores its state, keeps the derived caches
// in step with answers folded through chat, and publishes turn events.
type ChatService struct {
	conversationRepo repository.ConversationRepo
	sessionCache     cache.SessionCache
	assessments      *AssessmentService
	phrasing         *PhrasingService
	broadcaster      Broadcaster
}

// NewChatService creates a new chat service
func NewChatService(
	conversationRepo repository.ConversationRepo,
	sessionCache cache.SessionCache,
	assessments *AssessmentService,
	phrasing *PhrasingService,
) *ChatService {
	return &ChatService{
		conversationRepo: conversationRepo,
		sessionCache:     sessionCache,
		assessments:      assessments,
		phrasing:         phrasing,
	}
}

// SetBroadcaster sets the broadcaster for WebSocket events
func (s *ChatService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// StartConversation opens the dialogue for a session and greets the
// respondent with the first question.
func (s *ChatService) StartConversation(ctx context.Context, sessionID string) (*model.Reply, error) {
	lock := s.assessments.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	if existing, err := s.loadState(ctx, sessionID); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, fmt.Errorf("conversation already started for session %s", sessionID)
	}

	wrapper, engine, err := s.wrapperFor(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	assessment, err := s.assessments.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	state := wrapper.NewState(*assessment)
	state, reply, err := wrapper.Greet(state)
	if err != nil {
		return nil, err
	}
	s.applyPhrasing(ctx, &state, &reply)

	if err := s.persist(ctx, engine, nil, &state); err != nil {
		return nil, err
	}
	s.publishTurnEvents(state, reply)
	return &reply, nil
}

// ProcessMessage handles one respondent message and returns the reply
func (s *ChatService) ProcessMessage(ctx context.Context, sessionID, text string) (*model.Reply, error) {
	lock := s.assessments.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	state, err := s.loadState(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if state == nil {
		return nil, fmt.Errorf("no conversation for session %s: %w", sessionID, ErrSessionNotFound)
	}

	wrapper, engine, err := s.wrapperFor(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	before := *state
	next, reply, err := wrapper.ProcessMessage(*state, text)
	if err != nil {
		return nil, fmt.Errorf("process message: %w", err)
	}
	s.applyPhrasing(ctx, &next, &reply)

	if err := s.persist(ctx, engine, &before, &next); err != nil {
		return nil, err
	}
	s.publishTurnEvents(next, reply)
	if s.broadcaster != nil && len(next.Context.Gaps) > len(before.Context.Gaps) {
		s.broadcaster.BroadcastToObservers(next.Context.StandardID, "gap_detected", next.Context.Gaps[len(next.Context.Gaps)-1])
	}
	if reply.Done {
		// Completed conversations are served from Mongo from here on
		_ = s.sessionCache.Delete(ctx, sessionID)
	}
	return &reply, nil
}

// GetTranscript returns the stored conversation state for a session
func (s *ChatService) GetTranscript(ctx context.Context, sessionID string) (*model.ConversationState, error) {
	state, err := s.loadState(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if state == nil {
		return nil, ErrSessionNotFound
	}
	return state, nil
}

func (s *ChatService) wrapperFor(ctx context.Context, sessionID string) (*conversation.Wrapper, *flow.Engine, error) {
	assessment, err := s.assessments.GetSession(ctx, sessionID)
	if err != nil {
		return nil, nil, err
	}
	engine, err := s.assessments.EngineFor(ctx, assessment.StandardID, assessment.StandardVersion)
	if err != nil {
		return nil, nil, err
	}
	return conversation.NewWrapper(engine, flow.NewSelector(engine)), engine, nil
}

func (s *ChatService) loadState(ctx context.Context, sessionID string) (*model.ConversationState, error) {
	state, err := s.sessionCache.Get(ctx, sessionID)
	if err == nil && state != nil {
		return state, nil
	}
	state, err = s.conversationRepo.GetBySessionID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load conversation: %w", err)
	}
	return state, nil
}

// applyPhrasing swaps the raw catalog prompt inside the reply for its
// conversational rendering. The format hint sits after the prompt in the
// reply text and is left untouched.
func (s *ChatService) applyPhrasing(ctx context.Context, state *model.ConversationState, reply *model.Reply) {
	if reply.Question == nil || s.phrasing == nil {
		return
	}
	phrased := s.phrasing.RephraseQuestion(ctx, state.Context.StandardID, reply.Question, DefaultTone)
	if phrased == "" || phrased == reply.Question.Prompt {
		return
	}
	reply.Response = strings.Replace(reply.Response, reply.Question.Prompt, phrased, 1)
	if n := len(state.Transcript); n > 0 && state.Transcript[n-1].Role == model.RoleAssistant {
		state.Transcript[n-1].Content = reply.Response
	}
}

// persist writes the conversation and its embedded assessment context, then
// reconciles the derived caches when the turn folded an answer.
func (s *ChatService) persist(ctx context.Context, engine *flow.Engine, before, state *model.ConversationState) error {
	if err := s.conversationRepo.Save(ctx, state); err != nil {
		return fmt.Errorf("save conversation: %w", err)
	}
	if err := s.sessionCache.Set(ctx, state); err != nil {
		return fmt.Errorf("cache conversation: %w", err)
	}
	if err := s.assessments.contextRepo.Save(ctx, &state.Context); err != nil {
		return fmt.Errorf("save session: %w", err)
	}

	prevAnswered := 0
	if before != nil {
		prevAnswered = len(before.Context.AnsweredQuestions)
	}
	if len(state.Context.AnsweredQuestions) == prevAnswered {
		return nil
	}

	// One answer folded this turn: the last pending question before the fold
	answeredID := state.Context.AnsweredQuestions[len(state.Context.AnsweredQuestions)-1]
	q := engine.Catalog().Get(answeredID)
	if q != nil {
		negative := 0
		if state.Context.Answers[answeredID].Value.IsNegative() {
			negative = 1
		}
		if err := s.assessments.statsCache.IncrementCategory(ctx, state.Context.StandardID, q.Category, 1, negative); err != nil {
			return fmt.Errorf("update stats: %w", err)
		}
	}
	if err := s.assessments.progressCache.UpdateProgress(ctx, state.Context.StandardID, state.SessionID, state.Context.Progress); err != nil {
		return fmt.Errorf("update progress: %w", err)
	}
	return nil
}

func (s *ChatService) publishTurnEvents(state model.ConversationState, reply model.Reply) {
	if s.broadcaster == nil {
		return
	}
	standardID := state.Context.StandardID

	if reply.Clarification != nil {
		s.broadcaster.BroadcastToObservers(standardID, "clarification_issued", reply.Clarification)
	}
	if reply.Question != nil {
		s.broadcaster.BroadcastToObservers(standardID, "next_question", map[string]interface{}{
			"sessionId":  state.SessionID,
			"questionId": reply.Question.ID,
		})
	}
	s.broadcaster.BroadcastToObservers(standardID, "progress_update", map[string]interface{}{
		"sessionId": state.SessionID,
		"progress":  state.Context.Progress,
		"phase":     state.Context.Phase,
	})
	if reply.Done {
		s.broadcaster.BroadcastToObservers(standardID, "session_completed", map[string]interface{}{
			"sessionId": state.SessionID,
			"progress":  state.Context.Progress,
			"gapCount":  len(state.Context.Gaps),
		})
	}
}
