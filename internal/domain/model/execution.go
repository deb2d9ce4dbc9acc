package model

import (
	"fmt"
	"time"
)

type OutcomeKind string

const (
	OutcomeSuccess           OutcomeKind = "Success"
	OutcomeCompilationError  OutcomeKind = "CompilationError"
	OutcomeRuntimeError      OutcomeKind = "RuntimeError"
	OutcomeStatusError       OutcomeKind = "StatusError"
	OutcomeTransportError    OutcomeKind = "TransportError"
	OutcomeMissingCredential OutcomeKind = "MissingCredential"
)

// Outcome is the single user-facing result of one remote execution.
type Outcome struct {
	Kind OutcomeKind `json:"kind"`
	// Text carries stdout, compiler output, stderr or the transport message,
	// depending on Kind.
	Text        string `json:"text"`
	StatusID    int    `json:"status_id,omitempty"`
	StatusLabel string `json:"status_label,omitempty"`
}

func (o Outcome) HasError() bool {
	return o.Kind != OutcomeSuccess
}

// Display formats the outcome the way the result panel shows it.
func (o Outcome) Display() string {
	switch o.Kind {
	case OutcomeCompilationError:
		return "Compilation Error:\n" + o.Text
	case OutcomeRuntimeError:
		return "Runtime Error:\n" + o.Text
	case OutcomeStatusError:
		return fmt.Sprintf("Execution Status: %s (ID: %d)", o.StatusLabel, o.StatusID)
	case OutcomeTransportError:
		return "Error: " + o.Text
	default:
		return o.Text
	}
}

const (
	RunStatusQueued     = "Queued"
	RunStatusProcessing = "Processing"
	RunStatusCompleted  = "Completed"
	RunStatusFailed     = "Failed"
)

// RunJob is an asynchronous code execution request and, once processed, its outcome.
type RunJob struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	Language   string    `json:"language"`
	LanguageID int       `json:"language_id"`
	SourceCode string    `json:"source_code"`
	Stdin      string    `json:"stdin,omitempty"`
	Status     string    `json:"status"`
	Attempts   int       `json:"attempts"`
	Outcome    *Outcome  `json:"outcome,omitempty"`
	LastError  *string   `json:"last_error,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (j *RunJob) Done() bool {
	return j.Status == RunStatusCompleted || j.Status == RunStatusFailed
}
