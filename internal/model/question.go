package model

// PriorityTier orders questions by how important they are to ask
type PriorityTier string

const (
	PriorityHigh   PriorityTier = "high"
	PriorityMedium PriorityTier = "medium"
	PriorityLow    PriorityTier = "low"
)

// Rank returns a sortable weight for the tier (higher sorts first)
func (p PriorityTier) Rank() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	}
	return 0
}

// AnswerFormat defines the expected shape of an answer
type AnswerFormat string

const (
	FormatYesNo          AnswerFormat = "yes-no"
	FormatMultipleChoice AnswerFormat = "multiple-choice"
	FormatScale          AnswerFormat = "scale"
	FormatOpenEnded      AnswerFormat = "open-ended"
	FormatMultiSelect    AnswerFormat = "multi-select"
)

// CompareOp is the closed set of comparison operators for skip/branch rules.
// Rule evaluation switches exhaustively over these; an unknown operator is a
// catalog authoring error surfaced to the caller, never a silent false.
type CompareOp string

const (
	OpEquals      CompareOp = "equals"
	OpNotEquals   CompareOp = "not-equals"
	OpContains    CompareOp = "contains"
	OpGreaterThan CompareOp = "greater-than"
	OpLessThan    CompareOp = "less-than"
)

// SkipAction decides what a skip rule does to the guarded question
type SkipAction string

const (
	ActionSkip    SkipAction = "skip"    // condition true -> question is skipped
	ActionRequire SkipAction = "require" // condition false -> question is skipped
)

// SkipCondition guards a question on a previously recorded answer.
// While the referenced question is unanswered the rule is inert.
type SkipCondition struct {
	QuestionID string      `json:"questionId" bson:"questionId"`
	Operator   CompareOp   `json:"operator" bson:"operator"`
	Value      AnswerValue `json:"value" bson:"value"`
	Action     SkipAction  `json:"action" bson:"action"`
}

// BranchCondition redirects flow to a target question when a prior answer
// satisfies the condition, overriding normal ranking.
type BranchCondition struct {
	QuestionID string      `json:"questionId" bson:"questionId"`
	Operator   CompareOp   `json:"operator" bson:"operator"`
	Value      AnswerValue `json:"value" bson:"value"`
	TargetID   string      `json:"targetId" bson:"targetId"`
}

// QuestionNode is an immutable catalog entry for one assessment question
type QuestionNode struct {
	ID       string       `json:"id" bson:"id"`
	Prompt   string       `json:"prompt" bson:"prompt"`
	Category string       `json:"category" bson:"category"` // e.g., "governance"
	Priority PriorityTier `json:"priority" bson:"priority"`
	Format   AnswerFormat `json:"format" bson:"format"`

	// Format parameters
	Options  []string `json:"options,omitempty" bson:"options,omitempty"`   // choice formats
	ScaleMin float64  `json:"scaleMin,omitempty" bson:"scaleMin,omitempty"` // scale only
	ScaleMax float64  `json:"scaleMax,omitempty" bson:"scaleMax,omitempty"` // scale only

	DependsOn   []string          `json:"dependsOn,omitempty" bson:"dependsOn,omitempty"`
	SkipRules   []SkipCondition   `json:"skipRules,omitempty" bson:"skipRules,omitempty"`
	BranchRules []BranchCondition `json:"branchRules,omitempty" bson:"branchRules,omitempty"`
}
