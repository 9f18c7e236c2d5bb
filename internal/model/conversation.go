package model

import "time"

// DialogueState is the conversational wrapper's per-session state
type DialogueState string

const (
	DialogueIdle     DialogueState = "idle"
	DialogueAwaiting DialogueState = "awaiting-answer"
	DialogueClarify  DialogueState = "clarifying"
	DialogueComplete DialogueState = "completion"
)

// MessageRole identifies who produced a transcript entry
type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

// Message is one transcript entry
type Message struct {
	Role    MessageRole `json:"role" bson:"role"`
	Content string      `json:"content" bson:"content"`
	SentAt  time.Time   `json:"sentAt" bson:"sentAt"`
}

// ClarificationReason explains why a reply was rejected
type ClarificationReason string

const (
	ReasonUnclear       ClarificationReason = "unclear"
	ReasonIncomplete    ClarificationReason = "incomplete"
	ReasonContradictory ClarificationReason = "contradictory"
	ReasonNeedsDetail   ClarificationReason = "needs-detail"
)

// ClarificationRequest asks the user to retry the pending question
type ClarificationRequest struct {
	QuestionID       string              `json:"questionId" bson:"questionId"`
	Reason           ClarificationReason `json:"reason" bson:"reason"`
	Prompt           string              `json:"prompt" bson:"prompt"`
	SuggestedReplies []string            `json:"suggestedReplies,omitempty" bson:"suggestedReplies,omitempty"`
	IssuedAt         time.Time           `json:"issuedAt" bson:"issuedAt"`
}

// ConversationState wraps an AssessmentContext with the chat transcript and
// the question currently awaiting an answer. One exists per session.
type ConversationState struct {
	SessionID string            `json:"sessionId" bson:"_id"`
	Context   AssessmentContext `json:"context" bson:"context"`

	State             DialogueState          `json:"state" bson:"state"`
	PendingQuestionID string                 `json:"pendingQuestionId,omitempty" bson:"pendingQuestionId,omitempty"`
	ClarifyAttempts   int                    `json:"clarifyAttempts" bson:"clarifyAttempts"` // for the pending question
	Transcript        []Message              `json:"transcript" bson:"transcript"`
	Clarifications    []ClarificationRequest `json:"clarifications" bson:"clarifications"`

	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}

// Reply is what the conversational wrapper returns for one user message
type Reply struct {
	Response      string                `json:"response"`
	Question      *QuestionNode         `json:"question,omitempty"`
	Clarification *ClarificationRequest `json:"clarification,omitempty"`
	Done          bool                  `json:"done"`
}
