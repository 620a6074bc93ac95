package models

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/cybersib/cybersib/internal/common"
)

// Role is a user's permission level.
type Role string

const (
	RoleStudent Role = "student"
	RoleAdmin   Role = "admin"
)

const (
	MinUsernameLength   = 3
	MinCredentialLength = 8
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// User is an account plus its progress summary.
//
// Rank is derived from Points through the configured RankLadder and is
// recomputed whenever Points change and whenever users are loaded.
type User struct {
	ID             string    `json:"id"`
	Username       string    `json:"username"`
	Email          string    `json:"email"`
	CredentialHash string    `json:"credentialHash,omitempty"`
	Group          string    `json:"group"`
	Role           Role      `json:"role"`
	Points         int       `json:"points"`
	CompletedLabs  int       `json:"completedLabs"`
	Rank           string    `json:"rank"`
	CreatedAt      time.Time `json:"createdAt"`
	LastActive     time.Time `json:"lastActive"`
	IsActive       bool      `json:"isActive"`
}

// Sanitized returns a copy without the credential hash, suitable for the
// persisted session pointer and for display.
func (u User) Sanitized() User {
	u.CredentialHash = ""
	return u
}

// ValidEmail reports whether s looks like local@domain.tld.
func ValidEmail(s string) bool {
	return emailPattern.MatchString(s)
}

// ValidateRegistration checks every registration rule and reports all
// violations at once.
func ValidateRegistration(username, email, credential string) error {
	rules := profileRules(username, email)
	if utf8.RuneCountInString(credential) < MinCredentialLength {
		rules = append(rules, "password must be at least 8 characters")
	}
	return common.NewValidationError(rules...)
}

// ValidateProfile checks the username and email rules.
func ValidateProfile(username, email string) error {
	return common.NewValidationError(profileRules(username, email)...)
}

// Usernames and emails share the login field, so a username may not look
// like an email.
func profileRules(username, email string) []string {
	var rules []string
	if utf8.RuneCountInString(username) < MinUsernameLength {
		rules = append(rules, "username must be at least 3 characters")
	}
	if strings.Contains(username, "@") {
		rules = append(rules, "username must not contain @")
	}
	if !ValidEmail(email) {
		rules = append(rules, "email must look like name@domain.tld")
	}
	return rules
}

// ValidateCredential checks only the password rule.
func ValidateCredential(credential string) error {
	if utf8.RuneCountInString(credential) < MinCredentialLength {
		return common.NewValidationError("password must be at least 8 characters")
	}
	return nil
}

// UserStats is the dashboard summary of a user's standing.
type UserStats struct {
	UserID        string `json:"userId"`
	CompletedLabs int    `json:"completedLabs"`
	LabPoints     int    `json:"labPoints"`
	CTFPoints     int    `json:"ctfPoints"`
	CTFSolved     int    `json:"ctfSolved"`
	TotalPoints   int    `json:"totalPoints"`
	Rank          string `json:"rank"`
	NextRank      string `json:"nextRank,omitempty"`
	PointsNeeded  int    `json:"pointsNeeded"`
}
