package flow

import (
	"fmt"

	"complyflow/internal/model"
)

// Catalog is a validated, immutable question set for one standard version.
// It is injected into the engine at construction; the engine never mutates
// it and holds no other state, so one catalog can serve many sessions.
type Catalog struct {
	questions []model.QuestionNode
	byID      map[string]int // id -> position in catalog order
}

// NewCatalog validates the question list and builds lookup indexes.
// Duplicate ids or dangling references are catalog authoring bugs and fail
// construction outright.
func NewCatalog(questions []model.QuestionNode) (*Catalog, error) {
	if len(questions) == 0 {
		return nil, fmt.Errorf("catalog has no questions")
	}

	byID := make(map[string]int, len(questions))
	for i, q := range questions {
		if q.ID == "" {
			return nil, fmt.Errorf("question at position %d has no id", i)
		}
		if _, dup := byID[q.ID]; dup {
			return nil, fmt.Errorf("duplicate question id %q", q.ID)
		}
		byID[q.ID] = i
	}

	// Every referenced id must resolve
	for _, q := range questions {
		for _, dep := range q.DependsOn {
			if _, ok := byID[dep]; !ok {
				return nil, fmt.Errorf("question %q depends on unknown id %q", q.ID, dep)
			}
		}
		for _, r := range q.SkipRules {
			if _, ok := byID[r.QuestionID]; !ok {
				return nil, fmt.Errorf("question %q skip rule references unknown id %q", q.ID, r.QuestionID)
			}
		}
		for _, r := range q.BranchRules {
			if _, ok := byID[r.QuestionID]; !ok {
				return nil, fmt.Errorf("question %q branch rule references unknown id %q", q.ID, r.QuestionID)
			}
			if _, ok := byID[r.TargetID]; !ok {
				return nil, fmt.Errorf("question %q branch rule targets unknown id %q", q.ID, r.TargetID)
			}
		}
	}

	qs := make([]model.QuestionNode, len(questions))
	copy(qs, questions)

	return &Catalog{questions: qs, byID: byID}, nil
}

// Get returns the question with the given id, or nil if absent
func (c *Catalog) Get(id string) *model.QuestionNode {
	i, ok := c.byID[id]
	if !ok {
		return nil
	}
	q := c.questions[i]
	return &q
}

// Order returns the catalog position of a question id (stable tiebreak)
func (c *Catalog) Order(id string) int {
	if i, ok := c.byID[id]; ok {
		return i
	}
	return len(c.questions)
}

// Questions returns the catalog in declaration order
func (c *Catalog) Questions() []model.QuestionNode {
	qs := make([]model.QuestionNode, len(c.questions))
	copy(qs, c.questions)
	return qs
}

// Size returns the number of questions in the catalog
func (c *Catalog) Size() int {
	return len(c.questions)
}
