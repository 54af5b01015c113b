package model

import (
	"time"
)

const DefaultProblemPoints = 10

type Problem struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	Slug           string    `json:"slug"`
	ProblemURL     *string   `json:"problem_url,omitempty"`
	Points         int       `json:"points"`
	CFContestID    *int      `json:"cf_contest_id,omitempty"`
	CFProblemIndex *string   `json:"cf_problem_index,omitempty"`
	CreatedByID    *string   `json:"created_by_id,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	Solved         bool      `json:"solved"` // for the requesting user, list views only
}

// ProblemKey identifies a problem on Codeforces: (contest id, problem index).
type ProblemKey struct {
	ContestID int
	Index     string
}

// ExternalKey returns the Codeforces key; ok is false unless both halves are set.
func (p *Problem) ExternalKey() (ProblemKey, bool) {
	if p.CFContestID == nil || p.CFProblemIndex == nil || *p.CFProblemIndex == "" {
		return ProblemKey{}, false
	}
	return ProblemKey{ContestID: *p.CFContestID, Index: *p.CFProblemIndex}, true
}
