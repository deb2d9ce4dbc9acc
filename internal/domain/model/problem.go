package model

import (
	"time"
)

// UncategorizedName labels problems whose category row is missing.
const UncategorizedName = "Uncategorized"

type Category struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	CreatedAt time.Time `json:"created_at"`
}

type Problem struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Slug         string    `json:"slug"`
	Description  string    `json:"description"`
	Example      *string   `json:"example,omitempty"`
	CategoryID   *string   `json:"category_id,omitempty"`
	CategoryName *string   `json:"category_name,omitempty"` // For display
	Steps        []Step    `json:"steps"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ProblemSummary is the list-view projection of a problem.
type ProblemSummary struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	Slug       string  `json:"slug"`
	CategoryID *string `json:"category_id,omitempty"`
	Solved     bool    `json:"solved"`
}

type CategoryGroup struct {
	Category Category         `json:"category"`
	Problems []ProblemSummary `json:"problems"`
}
