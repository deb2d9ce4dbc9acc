package model

import "time"

type SolvedStatus struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	ProblemID string    `json:"problem_id"`
	CreatedAt time.Time `json:"created_at"`
}
