// Package seed holds the deterministic first-run snapshot: the lab and
// achievement catalogs, the bootstrap accounts and their standing.
package seed

import (
	"fmt"
	"strings"
	"time"

	"github.com/cybersib/cybersib/internal/cryptox"
	"github.com/cybersib/cybersib/internal/models"
)

// Epoch is the fixed creation time of seeded records.
var Epoch = time.Date(2024, time.December, 1, 9, 0, 0, 0, time.UTC)

type Options struct {
	// DemoAccount keeps the demo/demo2024 bootstrap login.
	DemoAccount bool
	// SampleAccounts adds test_student and ctf_champion, the latter with
	// completed labs and CTF solves so the scoreboard has content.
	SampleAccounts bool
	// AdminPassword creates the admin account. Empty means no admin.
	AdminPassword string
	Ladder        models.RankLadder
}

type Snapshot struct {
	Users        []models.User
	Labs         []models.Lab
	Progress     []models.ProgressRecord
	Achievements []models.Achievement
	Unlocks      []models.AchievementUnlock
	Challenges   []models.CTFChallenge
	Solves       []models.CTFSolveRecord
	CTFScores    []models.CTFScoreEntry
}

type accountKind int

const (
	kindDemo accountKind = iota
	kindSample
	kindAdmin
)

type account struct {
	id, username, email, password, group string
	role                                 models.Role
	kind                                 accountKind
}

// Ids stay fixed whichever accounts are enabled.
var accounts = []account{
	{"1", "test_student", "test@cybersib.spt", "student2024", "IB-23", models.RoleStudent, kindSample},
	{"2", "demo", "demo@cybersib.spt", "demo2024", "Demo", models.RoleStudent, kindDemo},
	{"3", "ctf_champion", "champ@cybersib.spt", "champion2024", "IB-22", models.RoleStudent, kindSample},
	{"4", "admin", "admin@cybersib.spt", "", "Admin", models.RoleAdmin, kindAdmin},
}

func (o Options) password(a account) (string, bool) {
	switch a.kind {
	case kindDemo:
		return a.password, o.DemoAccount
	case kindSample:
		return a.password, o.SampleAccounts
	default:
		return o.AdminPassword, o.AdminPassword != ""
	}
}

// ctf_champion starts with the first three labs done and three CTF solves.
const championID = "3"

var championLabs = []int{1, 2, 3}

// Labs returns the lab catalog.
func Labs() []models.Lab {
	return []models.Lab{
		{ID: 1, Title: "Linux Basics", Description: "Core Linux commands, the file system, processes and permissions",
			Difficulty: models.DifficultyBeginner, Category: "linux", Points: 10, Time: 60,
			Requirements: []string{}, Status: models.LabAvailable},
		{ID: 2, Title: "Network Recon with Nmap", Description: "Network scanning and service discovery",
			Difficulty: models.DifficultyBeginner, Category: "networking", Points: 15, Time: 90,
			Requirements: []string{"Linux Basics"}, Status: models.LabAvailable},
		{ID: 3, Title: "SQL Injection", Description: "Finding and exploiting SQL injection",
			Difficulty: models.DifficultyIntermediate, Category: "web", Points: 25, Time: 120,
			Requirements: []string{"Linux Basics"}, Status: models.LabAvailable},
		{ID: 4, Title: "XSS Attacks", Description: "How cross-site scripting works and how to exploit it",
			Difficulty: models.DifficultyIntermediate, Category: "web", Points: 30, Time: 150,
			Requirements: []string{"SQL Injection"}, Status: models.LabAvailable},
		{ID: 5, Title: "Buffer Overflow", Description: "Exploiting a stack buffer overflow",
			Difficulty: models.DifficultyAdvanced, Category: "pwn", Points: 50, Time: 180,
			Requirements: []string{"Linux Basics"}, Status: models.LabLocked},
		{ID: 6, Title: "Forensics: Memory Analysis", Description: "Investigating a memory dump",
			Difficulty: models.DifficultyAdvanced, Category: "forensics", Points: 45, Time: 150,
			Requirements: []string{"Linux Basics"}, Status: models.LabLocked},
		{ID: 7, Title: "CTF: RSA Encryption", Description: "Break a weak RSA key",
			Difficulty: models.DifficultyCTF, Category: "crypto", Points: 75, Time: 0,
			Requirements: []string{}, Status: models.LabAvailable},
		{ID: 8, Title: "CTF: Reverse Engineering", Description: "Analyse and crack a binary",
			Difficulty: models.DifficultyCTF, Category: "reverse", Points: 100, Time: 0,
			Requirements: []string{"Buffer Overflow"}, Status: models.LabLocked},
	}
}

// Achievements returns the achievement catalog.
func Achievements() []models.Achievement {
	return []models.Achievement{
		{ID: 1, Name: "First Blood", Description: "Complete your first lab",
			Criterion: models.Criterion{Kind: models.CriterionCompletedLabs, Threshold: 1}},
		{ID: 2, Name: "CTF Newbie", Description: "Solve 5 CTF challenges",
			Criterion: models.Criterion{Kind: models.CriterionCTFSolved, Threshold: 5}},
		{ID: 3, Name: "Lab Maniac", Description: "Complete 10 labs",
			Criterion: models.Criterion{Kind: models.CriterionCompletedLabs, Threshold: 10}},
		{ID: 4, Name: "Platform Legend", Description: "Reach 2000 points",
			Criterion: models.Criterion{Kind: models.CriterionPoints, Threshold: 2000}, Rare: true},
	}
}

type challenge struct {
	id, title, description, category, difficulty string
	points                                       int
	flag                                         string
}

var challenges = []challenge{
	{"sqli-101", "SQL Injection 101", "Extract the flag through a SQL injection", "web", "easy", 50,
		"CSIB{7d5a7d5a7d5a7d5a7d5a7d5a7d5a7d5a}"},
	{"xss", "XSS Challenge", "Run a cross-site script and grab the flag", "web", "medium", 75,
		"CSIB{8e6b8e6b8e6b8e6b8e6b8e6b8e6b8e6b}"},
	{"caesar", "Basic Caesar Cipher", "Decrypt a Caesar-shifted message", "crypto", "easy", 30,
		"CSIB{9f7c9f7c9f7c9f7c9f7c9f7c9f7c9f7c}"},
	{"rsa", "RSA Challenge", "Break RSA with a short key", "crypto", "hard", 150,
		"CSIB{1a8d1a8d1a8d1a8d1a8d1a8d1a8d1a8d}"},
	{"memdump", "Memory Dump Analysis", "Find the flag in a memory dump", "forensics", "medium", 120,
		"CSIB{2b9e2b9e2b9e2b9e2b9e2b9e2b9e2b9e}"},
	{"bof", "Buffer Overflow", "Exploit a stack buffer overflow", "pwn", "hard", 200,
		"CSIB{3c0f3c0f3c0f3c0f3c0f3c0f3c0f3c0f}"},
	{"reverse-me", "Reverse Me", "Analyse the binary and recover the flag", "reverse", "hard", 180,
		"CSIB{4d104d104d104d104d104d104d104d10}"},
}

// championSolves are the challenges ctf_champion starts with solved.
var championSolves = []string{"sqli-101", "xss", "caesar"}

// Challenges returns the CTF challenge catalog with each flag hashed by h.
// Flags are compared case-insensitively, so the lowercase form is hashed.
func Challenges(h cryptox.Hasher) ([]models.CTFChallenge, error) {
	out := make([]models.CTFChallenge, 0, len(challenges))
	for _, c := range challenges {
		hash, err := h.Hash(strings.ToLower(c.flag))
		if err != nil {
			return nil, fmt.Errorf("seed challenge %s: %w", c.id, err)
		}
		ch := models.CTFChallenge{
			ID:          c.id,
			Title:       c.title,
			Description: c.description,
			Category:    c.category,
			Difficulty:  c.difficulty,
			Points:      c.points,
			FlagHash:    hash,
		}
		if err := ch.Validate(); err != nil {
			return nil, fmt.Errorf("seed challenge %s: %w", c.id, err)
		}
		out = append(out, ch)
	}
	return out, nil
}

// Build hashes the bootstrap credentials and flags with h and assembles the
// snapshot.
func Build(h cryptox.Hasher, opts Options) (*Snapshot, error) {
	chs, err := Challenges(h)
	if err != nil {
		return nil, err
	}
	snap := &Snapshot{
		Labs:         Labs(),
		Achievements: Achievements(),
		Challenges:   chs,
	}
	for _, l := range snap.Labs {
		if err := l.Validate(); err != nil {
			return nil, fmt.Errorf("seed lab %d: %w", l.ID, err)
		}
	}
	for _, a := range snap.Achievements {
		if err := a.Validate(); err != nil {
			return nil, fmt.Errorf("seed achievement %d: %w", a.ID, err)
		}
	}

	for _, a := range accounts {
		password, enabled := opts.password(a)
		if !enabled {
			continue
		}
		if err := models.ValidateCredential(password); err != nil {
			return nil, fmt.Errorf("seed user %s: %w", a.username, err)
		}
		hash, err := h.Hash(password)
		if err != nil {
			return nil, fmt.Errorf("seed user %s: %w", a.username, err)
		}
		snap.Users = append(snap.Users, models.User{
			ID:             a.id,
			Username:       a.username,
			Email:          a.email,
			CredentialHash: hash,
			Group:          a.group,
			Role:           a.role,
			Rank:           opts.Ladder.Lowest(),
			CreatedAt:      Epoch,
			LastActive:     Epoch,
			IsActive:       true,
		})
	}

	if opts.SampleAccounts {
		addChampion(snap, opts.Ladder)
	}
	return snap, nil
}

func addChampion(snap *Snapshot, ladder models.RankLadder) {
	points := 0
	for _, id := range championLabs {
		lab := snap.Labs[id-1]
		done := Epoch.Add(time.Duration(id) * time.Hour)
		snap.Progress = append(snap.Progress, models.ProgressRecord{
			UserID:      championID,
			LabID:       lab.ID,
			Status:      models.StatusCompleted,
			Score:       lab.Points,
			StartedAt:   Epoch,
			CompletedAt: &done,
			Attempts:    1,
		})
		points += lab.Points
	}

	for i := range snap.Users {
		if snap.Users[i].ID == championID {
			snap.Users[i].Points = points
			snap.Users[i].CompletedLabs = len(championLabs)
			snap.Users[i].Rank = ladder.Rank(points)
		}
	}

	score := 0
	for i, id := range championSolves {
		for _, c := range snap.Challenges {
			if c.ID == id {
				score += c.Points
			}
		}
		snap.Solves = append(snap.Solves, models.CTFSolveRecord{
			UserID:      championID,
			ChallengeID: id,
			SolvedAt:    Epoch.Add(time.Duration(24+i) * time.Hour),
		})
	}
	snap.CTFScores = []models.CTFScoreEntry{
		{UserID: championID, Username: "ctf_champion", Score: score, SolvedCount: len(championSolves)},
	}
	snap.Unlocks = []models.AchievementUnlock{
		{UserID: championID, AchievementID: 1, UnlockedAt: Epoch.Add(time.Hour)},
	}
}
