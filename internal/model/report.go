package model

import "time"

// CategoryStat aggregates answers for one category across sessions
type CategoryStat struct {
	Category string  `json:"category" bson:"category"`
	Answered int     `json:"answered" bson:"answered"`
	Negative int     `json:"negative" bson:"negative"`
	GapRate  float64 `json:"gapRate" bson:"gapRate"` // negative / answered
}

// SessionDigest is one session's line in a report
type SessionDigest struct {
	SessionID string `json:"sessionId" bson:"sessionId"`
	UserID    string `json:"userId" bson:"userId"`
	Phase     Phase  `json:"phase" bson:"phase"`
	Progress  int    `json:"progress" bson:"progress"`
	GapCount  int    `json:"gapCount" bson:"gapCount"`
}

// GapReport is a frozen cross-session overview for one standard
type GapReport struct {
	ID         string `json:"id" bson:"_id,omitempty"`
	StandardID string `json:"standardId" bson:"standardId"`

	TotalSessions     int             `json:"totalSessions" bson:"totalSessions"`
	CompletedSessions int             `json:"completedSessions" bson:"completedSessions"`
	AvgProgress       float64         `json:"avgProgress" bson:"avgProgress"`
	CategoryStats     []CategoryStat  `json:"categoryStats" bson:"categoryStats"`
	Sessions          []SessionDigest `json:"sessions" bson:"sessions"`
	TopGaps           []Gap           `json:"topGaps" bson:"topGaps"`
	Summary           string          `json:"summary,omitempty" bson:"summary,omitempty"` // AI-phrased, optional

	GeneratedAt time.Time `json:"generatedAt" bson:"generatedAt"`
}
