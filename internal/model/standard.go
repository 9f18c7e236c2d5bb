package model

import "time"

// Standard is a persistent compliance catalog (e.g. an ISO 27001 profile).
// Its question list is immutable for the lifetime of any session started
// against it; sessions pin the version they were started with.
type Standard struct {
	ID          string         `json:"id" bson:"_id,omitempty"`
	Name        string         `json:"name" bson:"name"`
	Version     string         `json:"version" bson:"version"`
	Description string         `json:"description,omitempty" bson:"description,omitempty"`
	Questions   []QuestionNode `json:"questions" bson:"questions"`
	CreatedAt   time.Time      `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt" bson:"updatedAt"`
}

// StartAssessmentRequest is the request body for starting a session
type StartAssessmentRequest struct {
	UserID     string         `json:"userId"`
	StandardID string         `json:"standardId"`
	Mode       AssessmentMode `json:"mode,omitempty"`
}

// StartAssessmentResponse is returned when a session is created
type StartAssessmentResponse struct {
	SessionID     string        `json:"sessionId"`
	Token         string        `json:"token"`
	StandardName  string        `json:"standardName"`
	FirstQuestion *QuestionNode `json:"firstQuestion,omitempty"`
}

// SubmitAnswerRequest is the structured (non-conversational) answer body
type SubmitAnswerRequest struct {
	QuestionID string      `json:"questionId"`
	Value      AnswerValue `json:"value"`
	Confidence *float64    `json:"confidence,omitempty"`
}

// SubmitAnswerResponse carries the fold result plus the chained next question
type SubmitAnswerResponse struct {
	Progress     int           `json:"progress"`
	Phase        Phase         `json:"phase"`
	GapDetected  bool          `json:"gapDetected"`
	NextQuestion *QuestionNode `json:"nextQuestion,omitempty"`
	Done         bool          `json:"done"`
	Reason       string        `json:"reason,omitempty"`
}

// ChatRequest is the conversational message body
type ChatRequest struct {
	Text string `json:"text"`
}
