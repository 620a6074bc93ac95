package store

// Backing store keys, one JSON document each.
const (
	KeyUsers              = "users"
	KeyLabs               = "labs"
	KeyProgress           = "progress"
	KeyCurrentUser        = "currentUser"
	KeySettings           = "settings"
	KeyCTFScores          = "ctfScores"
	KeyCTFChallenges      = "ctfChallenges"
	KeyCTFSolves          = "ctfSolves"
	KeyAchievements       = "achievements"
	KeyAchievementUnlocks = "achievementUnlocks"
	KeySecurityLogs       = "securityLogs"
)

// Settings keys used by the core.
const (
	SettingSessionToken  = "session.token"
	SettingSessionSecret = "session.secret"
)
