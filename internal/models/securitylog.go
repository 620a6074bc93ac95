package models

import "time"

// Severity of a security log entry.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Action is the kind of security-relevant event.
type Action string

const (
	ActionRegister          Action = "register"
	ActionRegisterFailure   Action = "register_failure"
	ActionLoginSuccess      Action = "login_success"
	ActionLoginFailure      Action = "login_failure"
	ActionLogout            Action = "logout"
	ActionSessionRestore    Action = "session_restore"
	ActionPasswordChange    Action = "password_change"
	ActionLabStart          Action = "lab_start"
	ActionLabComplete       Action = "lab_complete"
	ActionLabFailure        Action = "lab_failure"
	ActionAchievementUnlock Action = "achievement_unlock"
	ActionCTFSolve          Action = "ctf_solve"
	ActionCTFFailure        Action = "ctf_failure"
	ActionProfileUpdate     Action = "profile_update"
	ActionAccountStatus     Action = "account_status"
)

// SecurityLogEntry is one audit record. UserID is empty for anonymous or
// system events.
type SecurityLogEntry struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId,omitempty"`
	Action    Action    `json:"action"`
	Details   string    `json:"details"`
	Severity  Severity  `json:"severity"`
	Timestamp time.Time `json:"timestamp"`
}
