package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/cybersib/cybersib/internal/common"
)

// Difficulty classifies a lab.
type Difficulty string

const (
	DifficultyBeginner     Difficulty = "beginner"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyAdvanced     Difficulty = "advanced"
	DifficultyCTF          Difficulty = "ctf"
)

func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyBeginner, DifficultyIntermediate, DifficultyAdvanced, DifficultyCTF:
		return true
	}
	return false
}

// LabStatus tells whether a lab can be started.
type LabStatus string

const (
	LabAvailable LabStatus = "available"
	LabLocked    LabStatus = "locked"
)

// Lab is a read-only catalog entry. Points is the maximum awardable score,
// Time the estimate in minutes (0 for open-ended CTF tasks).
type Lab struct {
	ID           int        `json:"id"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	Difficulty   Difficulty `json:"difficulty"`
	Points       int        `json:"points"`
	Time         int        `json:"time"`
	Category     string     `json:"category"`
	Requirements []string   `json:"requirements"`
	Status       LabStatus  `json:"status"`
}

func (l Lab) Validate() error {
	var rules []string
	if l.ID <= 0 {
		rules = append(rules, "lab id must be positive")
	}
	if strings.TrimSpace(l.Title) == "" {
		rules = append(rules, "lab title is required")
	}
	if !l.Difficulty.Valid() {
		rules = append(rules, fmt.Sprintf("unknown difficulty %q", l.Difficulty))
	}
	if l.Points < 0 {
		rules = append(rules, "lab points must not be negative")
	}
	if l.Time < 0 {
		rules = append(rules, "lab time estimate must not be negative")
	}
	if l.Status != LabAvailable && l.Status != LabLocked {
		rules = append(rules, fmt.Sprintf("unknown lab status %q", l.Status))
	}
	return common.NewValidationError(rules...)
}

// Estimate returns the time estimate as a duration.
func (l Lab) Estimate() time.Duration {
	return time.Duration(l.Time) * time.Minute
}
