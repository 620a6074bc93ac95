package models

import (
	"strings"
	"time"

	"github.com/cybersib/cybersib/internal/common"
)

// CTFChallenge is a catalog entry. FlagHash is a one-way hash of the
// lowercased flag and is never shown.
type CTFChallenge struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Difficulty  string `json:"difficulty"`
	Points      int    `json:"points"`
	FlagHash    string `json:"flagHash"`
}

func (c CTFChallenge) Validate() error {
	var rules []string
	if strings.TrimSpace(c.ID) == "" {
		rules = append(rules, "challenge id is required")
	}
	if strings.TrimSpace(c.Title) == "" {
		rules = append(rules, "challenge title is required")
	}
	if c.Points <= 0 {
		rules = append(rules, "challenge points must be positive")
	}
	if c.FlagHash == "" {
		rules = append(rules, "challenge flag hash is required")
	}
	return common.NewValidationError(rules...)
}

// CTFSolveRecord marks one challenge solved by one user. A pair is solved
// at most once.
type CTFSolveRecord struct {
	UserID      string    `json:"userId"`
	ChallengeID string    `json:"challengeId"`
	SolvedAt    time.Time `json:"solvedAt"`
}

// UserChallenge is a catalog entry viewed from one user's perspective.
type UserChallenge struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Category    string     `json:"category"`
	Difficulty  string     `json:"difficulty"`
	Points      int        `json:"points"`
	Solved      bool       `json:"solved"`
	SolvedAt    *time.Time `json:"solvedAt,omitempty"`
	SolvedCount int        `json:"solvedCount"`
}

// CTFScoreEntry is one user's CTF tally. Username is denormalized for the
// scoreboard. The display position is derived by sort order.
type CTFScoreEntry struct {
	UserID      string `json:"userId"`
	Username    string `json:"username"`
	Score       int    `json:"score"`
	SolvedCount int    `json:"solvedCount"`
}

// LeaderboardRow is a scoreboard line with its derived position.
type LeaderboardRow struct {
	Position  int    `json:"position"`
	UserID    string `json:"userId"`
	Username  string `json:"username"`
	Score     int    `json:"score"`
	Solved    int    `json:"solved"`
	RankTitle string `json:"rankTitle"`
}
