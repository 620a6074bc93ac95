package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/cybersib/cybersib/internal/common"
)

// CriterionKind selects which part of a user's standing a criterion checks.
type CriterionKind string

const (
	CriterionPoints        CriterionKind = "points"
	CriterionCompletedLabs CriterionKind = "completed_labs"
	CriterionCTFSolved     CriterionKind = "ctf_solved"
)

// Criterion unlocks an achievement once the measured value reaches Threshold.
type Criterion struct {
	Kind      CriterionKind `json:"kind"`
	Threshold int           `json:"threshold"`
}

// Standing is what achievement criteria are evaluated against.
type Standing struct {
	Points        int
	CompletedLabs int
	CTFSolved     int
}

// Met reports whether s satisfies the criterion.
func (c Criterion) Met(s Standing) bool {
	switch c.Kind {
	case CriterionPoints:
		return s.Points >= c.Threshold
	case CriterionCompletedLabs:
		return s.CompletedLabs >= c.Threshold
	case CriterionCTFSolved:
		return s.CTFSolved >= c.Threshold
	}
	return false
}

// Achievement is a catalog entry. Unlock state is per user and lives in
// AchievementUnlock, never on the catalog entry itself.
type Achievement struct {
	ID          int       `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Criterion   Criterion `json:"criterion"`
	Rare        bool      `json:"rare"`
}

func (a Achievement) Validate() error {
	var rules []string
	if a.ID <= 0 {
		rules = append(rules, "achievement id must be positive")
	}
	if strings.TrimSpace(a.Name) == "" {
		rules = append(rules, "achievement name is required")
	}
	switch a.Criterion.Kind {
	case CriterionPoints, CriterionCompletedLabs, CriterionCTFSolved:
	default:
		rules = append(rules, fmt.Sprintf("unknown criterion kind %q", a.Criterion.Kind))
	}
	if a.Criterion.Threshold < 0 {
		rules = append(rules, "criterion threshold must not be negative")
	}
	return common.NewValidationError(rules...)
}

// AchievementUnlock records that one user earned one achievement.
type AchievementUnlock struct {
	UserID        string    `json:"userId"`
	AchievementID int       `json:"achievementId"`
	UnlockedAt    time.Time `json:"unlockedAt"`
}

// UserAchievement is a catalog entry viewed from one user's perspective.
type UserAchievement struct {
	Achievement
	Unlocked   bool       `json:"unlocked"`
	UnlockedAt *time.Time `json:"unlockedAt,omitempty"`
}
