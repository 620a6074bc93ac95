package models

import "time"

// ProgressStatus is the workflow state of a ProgressRecord. "Not started"
// is represented by the absence of a record.
type ProgressStatus string

const (
	StatusInProgress ProgressStatus = "in_progress"
	StatusCompleted  ProgressStatus = "completed"
)

// ProgressRecord joins a user and a lab. There is at most one record per
// (UserID, LabID).
type ProgressRecord struct {
	UserID      string         `json:"userId"`
	LabID       int            `json:"labId"`
	Status      ProgressStatus `json:"status"`
	Score       int            `json:"score"`
	StartedAt   time.Time      `json:"startedAt"`
	CompletedAt *time.Time     `json:"completedAt"`
	Attempts    int            `json:"attempts"`
}

// Matches reports whether the record belongs to the given pair.
func (p ProgressRecord) Matches(userID string, labID int) bool {
	return p.UserID == userID && p.LabID == labID
}
