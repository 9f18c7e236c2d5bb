package model

// ConfidenceBucket coarsens average self-reported confidence
type ConfidenceBucket string

const (
	ConfidenceHigh   ConfidenceBucket = "high"
	ConfidenceMedium ConfidenceBucket = "medium"
	ConfidenceLow    ConfidenceBucket = "low"
)

// AnswerAnalysis is derived from a context's answer history and drives
// context-aware question selection.
type AnswerAnalysis struct {
	Categories      []string         `json:"categories"`      // touched, in first-seen order
	Coverage        map[string]int   `json:"coverage"`        // category -> answered count
	GapCounts       map[string]int   `json:"gapCounts"`       // category -> negative answers
	Confidence      ConfidenceBucket `json:"confidence"`      // bucketed running average
	NegativeAnswers []AnswerData     `json:"negativeAnswers"`
	PositiveAnswers []AnswerData     `json:"positiveAnswers"`
}

// FlowDecision is the outcome of asking the engine for the next question.
// A nil NextQuestion with ShouldSkip=false signals completion; Reason says why.
type FlowDecision struct {
	NextQuestion *QuestionNode `json:"nextQuestion,omitempty"`
	ShouldSkip   bool          `json:"shouldSkip"`
	Reason       string        `json:"reason,omitempty"`
	BranchTo     string        `json:"branchTo,omitempty"` // set when a branch rule fired
}

// DisclosureLevel selects a progressive-disclosure tier of candidates
type DisclosureLevel string

const (
	DisclosureBroad    DisclosureLevel = "broad"    // high priority, no dependencies
	DisclosureMedium   DisclosureLevel = "medium"   // medium priority or has dependencies
	DisclosureSpecific DisclosureLevel = "specific" // low priority or >2 dependencies
)

// ProgressSummary is the derived gap/progress projection for one session,
// consumed by dashboards and reports.
type ProgressSummary struct {
	SessionID        string         `json:"sessionId"`
	StandardID       string         `json:"standardId"`
	Phase            Phase          `json:"phase"`
	Progress         int            `json:"progress"`
	AnsweredCount    int            `json:"answeredCount"`
	TotalQuestions   int            `json:"totalQuestions"`
	CategoryCoverage map[string]int `json:"categoryCoverage"`
	GapCount         int            `json:"gapCount"`
	Gaps             []Gap          `json:"gaps"`

	// Rank is the session's 1-indexed position on the standard's progress
	// leaderboard, filled in by the service layer; 0 when unranked.
	Rank int64 `json:"rank,omitempty"`
}
