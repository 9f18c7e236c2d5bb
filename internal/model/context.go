package model

import (
	"strconv"
	"strings"
	"time"
)

// Phase tracks how far along a session is
type Phase string

const (
	PhaseInitiation  Phase = "initiation"
	PhaseExploration Phase = "exploration"
	PhaseAssessment  Phase = "assessment"
	PhaseCompletion  Phase = "completion"
)

// AssessmentMode selects how questions are delivered
type AssessmentMode string

const (
	ModeGuided         AssessmentMode = "guided"         // structured API submissions
	ModeConversational AssessmentMode = "conversational" // free-text chat
)

// AnswerValue holds one typed answer. Exactly one of the value fields is
// expected to be populated, mirroring how answer cells carry one shape each.
type AnswerValue struct {
	Bool   *bool    `json:"bool,omitempty" bson:"bool,omitempty"`
	Number *float64 `json:"number,omitempty" bson:"number,omitempty"`
	Text   string   `json:"text,omitempty" bson:"text,omitempty"`
	List   []string `json:"list,omitempty" bson:"list,omitempty"`
}

// Value constructors

func BoolValue(b bool) AnswerValue      { return AnswerValue{Bool: &b} }
func NumberValue(n float64) AnswerValue { return AnswerValue{Number: &n} }
func TextValue(s string) AnswerValue    { return AnswerValue{Text: s} }
func ListValue(l []string) AnswerValue  { return AnswerValue{List: l} }

// AsNumber coerces the value to a number. Booleans map to 1/0, text is
// parsed; unparseable values report ok=false.
func (v AnswerValue) AsNumber() (float64, bool) {
	switch {
	case v.Number != nil:
		return *v.Number, true
	case v.Bool != nil:
		if *v.Bool {
			return 1, true
		}
		return 0, true
	case v.Text != "":
		n, err := strconv.ParseFloat(strings.TrimSpace(v.Text), 64)
		if err != nil {
			return 0, false
		}
		return n, true
	}
	return 0, false
}

// AsText renders the value as a comparable string
func (v AnswerValue) AsText() string {
	switch {
	case v.Bool != nil:
		return strconv.FormatBool(*v.Bool)
	case v.Number != nil:
		return strconv.FormatFloat(*v.Number, 'f', -1, 64)
	case v.List != nil:
		return strings.Join(v.List, ",")
	}
	return v.Text
}

// IsNegative reports whether the value indicates a compliance shortfall:
// boolean false, a refusal string, a non-positive number, or an empty list.
func (v AnswerValue) IsNegative() bool {
	switch {
	case v.Bool != nil:
		return !*v.Bool
	case v.Number != nil:
		return *v.Number <= 0
	case v.List != nil:
		return len(v.List) == 0
	}
	switch strings.ToLower(strings.TrimSpace(v.Text)) {
	case "no", "false", "none", "not applicable":
		return true
	}
	return false
}

// AnswerData is one recorded answer. A later answer to the same question
// replaces the entry rather than appending.
type AnswerData struct {
	QuestionID string      `json:"questionId" bson:"questionId"`
	Value      AnswerValue `json:"value" bson:"value"`
	Confidence *float64    `json:"confidence,omitempty" bson:"confidence,omitempty"` // self-reported, 0-1
	AnsweredAt time.Time   `json:"answeredAt" bson:"answeredAt"`
}

// GapSeverity grades a detected compliance gap
type GapSeverity string

const (
	SeverityCritical GapSeverity = "critical"
	SeverityHigh     GapSeverity = "high"
	SeverityMedium   GapSeverity = "medium"
	SeverityLow      GapSeverity = "low"
)

// Gap is a compliance shortfall inferred from negative answers
type Gap struct {
	ID              string      `json:"id" bson:"id"`
	Category        string      `json:"category" bson:"category"`
	Severity        GapSeverity `json:"severity" bson:"severity"`
	Description     string      `json:"description" bson:"description"`
	QuestionIDs     []string    `json:"questionIds" bson:"questionIds"`
	Recommendations []string    `json:"recommendations,omitempty" bson:"recommendations,omitempty"`
	DetectedAt      time.Time   `json:"detectedAt" bson:"detectedAt"`
}

// AssessmentContext is the sole mutable unit of session state. Engine
// operations take it by value and return an updated copy; callers persist
// the returned value as the session's current state.
type AssessmentContext struct {
	SessionID       string         `json:"sessionId" bson:"_id"`
	UserID          string         `json:"userId" bson:"userId"`
	StandardID      string         `json:"standardId" bson:"standardId"`
	StandardVersion string         `json:"standardVersion" bson:"standardVersion"`
	Mode            AssessmentMode `json:"mode" bson:"mode"`
	Phase           Phase          `json:"phase" bson:"phase"`

	AnsweredQuestions []string              `json:"answeredQuestions" bson:"answeredQuestions"`
	Answers           map[string]AnswerData `json:"answers" bson:"answers"`
	Gaps              []Gap                 `json:"gaps" bson:"gaps"`
	CurrentCategory   string                `json:"currentCategory,omitempty" bson:"currentCategory,omitempty"`
	Progress          int                   `json:"progress" bson:"progress"` // 0-100

	StartedAt   time.Time  `json:"startedAt" bson:"startedAt"`
	UpdatedAt   time.Time  `json:"updatedAt" bson:"updatedAt"`
	CompletedAt *time.Time `json:"completedAt,omitempty" bson:"completedAt,omitempty"`
}

// HasAnswered reports whether the question has a recorded answer
func (c *AssessmentContext) HasAnswered(questionID string) bool {
	_, ok := c.Answers[questionID]
	return ok
}
