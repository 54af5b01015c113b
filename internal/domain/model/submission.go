package model

import "time"

// Submission is a completion record: user solved problem at SolvedAt.
type Submission struct {
	ID             string    `json:"id"`
	UserID         string    `json:"user_id"`
	ProblemID      string    `json:"problem_id"`
	SolvedAt       time.Time `json:"solved_at"`
	CFSubmissionID *int64    `json:"cf_submission_id,omitempty"`
}
