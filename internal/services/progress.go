package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/cybersib/cybersib/internal/audit"
	"github.com/cybersib/cybersib/internal/common"
	"github.com/cybersib/cybersib/internal/cryptox"
	"github.com/cybersib/cybersib/internal/logging"
	"github.com/cybersib/cybersib/internal/models"
	"github.com/cybersib/cybersib/internal/store"
)

const DefaultLeaderboardLimit = 50

// ProgressService is the progress and scoring engine.
type ProgressService interface {
	StartLab(ctx context.Context, userID string, labID int) (*models.ProgressRecord, error)
	CompleteLab(ctx context.Context, userID string, labID, score int) (*Completion, error)
	RecordCTFSolve(ctx context.Context, userID, challengeID, flag string) (*CTFSolve, error)
	Challenges(userID string) ([]models.UserChallenge, error)
	Leaderboard(limit int) []models.LeaderboardRow
	UserStats(userID string) (*models.UserStats, error)
	UserAchievements(userID string) ([]models.UserAchievement, error)
	UserProgress(userID string) ([]models.ProgressRecord, error)
}

// Completion is the outcome of CompleteLab.
type Completion struct {
	User   models.User
	Record models.ProgressRecord
	// Awarded is the number of points added to the user, 0 for a repeat.
	Awarded      int
	Repeat       bool
	PreviousRank string
	Unlocked     []models.Achievement
}

// RankChanged reports whether the completion moved the user up the ladder.
func (c *Completion) RankChanged() bool {
	return c.PreviousRank != c.User.Rank
}

// CTFSolve is the outcome of RecordCTFSolve.
type CTFSolve struct {
	Challenge models.CTFChallenge
	Entry     models.CTFScoreEntry
	Unlocked  []models.Achievement
}

type ProgressOptions struct {
	// AwardRepeatCompletions adds the score again when a completed lab is
	// completed once more.
	AwardRepeatCompletions bool
	Now                    func() time.Time
}

type progressService struct {
	store       *store.Store
	audit       *audit.Recorder
	log         logging.Logger
	ladder      models.RankLadder
	awardRepeat bool
	now         func() time.Time
}

func NewProgressService(st *store.Store, rec *audit.Recorder, log logging.Logger, opts ProgressOptions) ProgressService {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &progressService{
		store:       st,
		audit:       rec,
		log:         log.With("component", "progress"),
		ladder:      st.Ladder(),
		awardRepeat: opts.AwardRepeatCompletions,
		now:         opts.Now,
	}
}

func (p *progressService) StartLab(ctx context.Context, userID string, labID int) (*models.ProgressRecord, error) {
	cur := p.store.CurrentUser()
	if cur == nil || cur.ID != userID {
		return nil, fmt.Errorf("start lab %d: %w", labID, common.ErrUnauthenticated)
	}

	lab, ok := p.store.LabByID(labID)
	if !ok {
		return nil, fmt.Errorf("start lab %d: %w", labID, common.ErrNotFound)
	}
	if lab.Status == models.LabLocked {
		return nil, fmt.Errorf("start lab %d: %w", labID, common.ErrLabLocked)
	}

	now := p.now().UTC()
	rec, exists := p.store.FindProgress(userID, labID)
	if exists {
		rec.Status = models.StatusInProgress
		rec.Attempts++
		rec.StartedAt = now
	} else {
		rec = models.ProgressRecord{
			UserID:    userID,
			LabID:     labID,
			Status:    models.StatusInProgress,
			StartedAt: now,
			Attempts:  1,
		}
	}
	p.store.PutProgress(ctx, rec)
	p.audit.Info(ctx, userID, models.ActionLabStart, fmt.Sprintf("lab=%d attempt=%d", labID, rec.Attempts))

	return &rec, nil
}

func (p *progressService) CompleteLab(ctx context.Context, userID string, labID, score int) (*Completion, error) {
	user, ok := p.store.UserByID(userID)
	if !ok {
		return nil, fmt.Errorf("complete lab %d: user %s: %w", labID, userID, common.ErrNotFound)
	}
	lab, ok := p.store.LabByID(labID)
	if !ok {
		return nil, fmt.Errorf("complete lab %d: %w", labID, common.ErrNotFound)
	}
	rec, ok := p.store.FindProgress(userID, labID)
	if !ok {
		return nil, fmt.Errorf("complete lab %d: not started: %w", labID, common.ErrNotFound)
	}

	if score < 0 || score > lab.Points {
		p.audit.Warn(ctx, userID, models.ActionLabFailure, fmt.Sprintf("lab=%d score=%d max=%d", labID, score, lab.Points))
		return nil, fmt.Errorf("complete lab %d: %w: %w", labID, common.ErrInvalidScore,
			common.NewValidationError(fmt.Sprintf("score must be between 0 and %d", lab.Points)))
	}

	repeat := rec.Status == models.StatusCompleted
	awarded := score
	if repeat && !p.awardRepeat {
		awarded = 0
	}

	now := p.now().UTC()
	rec.Status = models.StatusCompleted
	rec.Score = score
	rec.CompletedAt = &now
	p.store.PutProgress(ctx, rec)

	prevRank := user.Rank
	user, _ = p.store.UpdateUser(ctx, userID, func(u *models.User) {
		u.Points += awarded
		if !repeat {
			u.CompletedLabs++
		}
		u.LastActive = now
	})

	p.audit.Info(ctx, userID, models.ActionLabComplete,
		fmt.Sprintf("lab=%d score=%d awarded=%d repeat=%t", labID, score, awarded, repeat))

	return &Completion{
		User:         user,
		Record:       rec,
		Awarded:      awarded,
		Repeat:       repeat,
		PreviousRank: prevRank,
		Unlocked:     p.evaluateAchievements(ctx, user),
	}, nil
}

// RecordCTFSolve checks flag against the challenge and, when it matches,
// credits the challenge points once per user and challenge.
func (p *progressService) RecordCTFSolve(ctx context.Context, userID, challengeID, flag string) (*CTFSolve, error) {
	cur := p.store.CurrentUser()
	if cur == nil || cur.ID != userID {
		return nil, fmt.Errorf("ctf solve: %w", common.ErrUnauthenticated)
	}
	user, ok := p.store.UserByID(userID)
	if !ok {
		return nil, fmt.Errorf("ctf solve: user %s: %w", userID, common.ErrNotFound)
	}
	ch, ok := p.store.ChallengeByID(challengeID)
	if !ok {
		return nil, fmt.Errorf("ctf solve: challenge %s: %w", challengeID, common.ErrNotFound)
	}
	if p.solved(userID, challengeID) {
		return nil, fmt.Errorf("ctf solve: challenge %s: %w", challengeID, common.ErrAlreadySolved)
	}

	match, err := cryptox.Verify(ch.FlagHash, strings.ToLower(strings.TrimSpace(flag)))
	if err != nil {
		p.log.Error(ctx, "stored flag hash is unreadable", "challenge", challengeID, "error", err)
	}
	if !match {
		p.audit.Warn(ctx, userID, models.ActionCTFFailure, "challenge="+challengeID)
		return nil, fmt.Errorf("ctf solve: challenge %s: %w", challengeID, common.ErrWrongFlag)
	}

	entry, added := p.store.RecordSolve(ctx, models.CTFSolveRecord{
		UserID:      userID,
		ChallengeID: challengeID,
		SolvedAt:    p.now().UTC(),
	}, user.Username, ch.Points)
	if !added {
		return nil, fmt.Errorf("ctf solve: challenge %s: %w", challengeID, common.ErrAlreadySolved)
	}

	p.audit.Info(ctx, userID, models.ActionCTFSolve,
		fmt.Sprintf("challenge=%s points=%d total=%d", challengeID, ch.Points, entry.Score))

	return &CTFSolve{Challenge: ch, Entry: entry, Unlocked: p.evaluateAchievements(ctx, user)}, nil
}

func (p *progressService) solved(userID, challengeID string) bool {
	for _, r := range p.store.UserSolves(userID) {
		if r.ChallengeID == challengeID {
			return true
		}
	}
	return false
}

// Challenges lists the catalog with the user's solve state and the number
// of users who solved each challenge.
func (p *progressService) Challenges(userID string) ([]models.UserChallenge, error) {
	if _, ok := p.store.UserByID(userID); !ok {
		return nil, fmt.Errorf("challenges: user %s: %w", userID, common.ErrNotFound)
	}

	counts := make(map[string]int)
	solvedAt := make(map[string]time.Time)
	for _, r := range p.store.Solves("") {
		counts[r.ChallengeID]++
		if r.UserID == userID {
			solvedAt[r.ChallengeID] = r.SolvedAt
		}
	}

	catalog := p.store.Challenges()
	out := make([]models.UserChallenge, 0, len(catalog))
	for _, c := range catalog {
		uc := models.UserChallenge{
			ID:          c.ID,
			Title:       c.Title,
			Category:    c.Category,
			Difficulty:  c.Difficulty,
			Points:      c.Points,
			SolvedCount: counts[c.ID],
		}
		if at, ok := solvedAt[c.ID]; ok {
			uc.Solved = true
			uc.SolvedAt = &at
		}
		out = append(out, uc)
	}
	return out, nil
}

// evaluateAchievements unlocks every catalog achievement the user now
// qualifies for and returns the new ones.
func (p *progressService) evaluateAchievements(ctx context.Context, user models.User) []models.Achievement {
	standing := p.standing(user)

	var unlocked []models.Achievement
	for _, a := range p.store.Achievements() {
		if !a.Criterion.Met(standing) {
			continue
		}
		if p.store.AddUnlock(ctx, models.AchievementUnlock{
			UserID:        user.ID,
			AchievementID: a.ID,
			UnlockedAt:    p.now().UTC(),
		}) {
			unlocked = append(unlocked, a)
			p.audit.Info(ctx, user.ID, models.ActionAchievementUnlock, a.Name)
		}
	}
	return unlocked
}

func (p *progressService) standing(user models.User) models.Standing {
	ctf, _ := p.store.CTFScore(user.ID)
	return models.Standing{
		Points:        user.Points + ctf.Score,
		CompletedLabs: user.CompletedLabs,
		CTFSolved:     ctf.SolvedCount,
	}
}

// Leaderboard orders CTF entries by score, then solved count, then
// username. A non-positive limit means DefaultLeaderboardLimit.
func (p *progressService) Leaderboard(limit int) []models.LeaderboardRow {
	if limit <= 0 {
		limit = DefaultLeaderboardLimit
	}

	entries := p.store.CTFScores()
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.SolvedCount != b.SolvedCount {
			return a.SolvedCount > b.SolvedCount
		}
		return a.Username < b.Username
	})
	if len(entries) > limit {
		entries = entries[:limit]
	}

	rows := make([]models.LeaderboardRow, 0, len(entries))
	for i, e := range entries {
		title := p.ladder.Rank(e.Score)
		if u, ok := p.store.UserByID(e.UserID); ok {
			title = u.Rank
		}
		rows = append(rows, models.LeaderboardRow{
			Position:  i + 1,
			UserID:    e.UserID,
			Username:  e.Username,
			Score:     e.Score,
			Solved:    e.SolvedCount,
			RankTitle: title,
		})
	}
	return rows
}

func (p *progressService) UserStats(userID string) (*models.UserStats, error) {
	u, ok := p.store.UserByID(userID)
	if !ok {
		return nil, fmt.Errorf("stats: user %s: %w", userID, common.ErrNotFound)
	}
	ctf, _ := p.store.CTFScore(userID)

	stats := &models.UserStats{
		UserID:        u.ID,
		CompletedLabs: u.CompletedLabs,
		LabPoints:     u.Points,
		CTFPoints:     ctf.Score,
		CTFSolved:     ctf.SolvedCount,
		TotalPoints:   u.Points + ctf.Score,
		Rank:          u.Rank,
	}
	if next, needed, ok := p.ladder.Next(u.Points); ok {
		stats.NextRank = next.Title
		stats.PointsNeeded = needed
	}
	return stats, nil
}

func (p *progressService) UserAchievements(userID string) ([]models.UserAchievement, error) {
	if _, ok := p.store.UserByID(userID); !ok {
		return nil, fmt.Errorf("achievements: user %s: %w", userID, common.ErrNotFound)
	}

	unlockedAt := make(map[int]time.Time)
	for _, u := range p.store.Unlocks(userID) {
		unlockedAt[u.AchievementID] = u.UnlockedAt
	}

	catalog := p.store.Achievements()
	out := make([]models.UserAchievement, 0, len(catalog))
	for _, a := range catalog {
		ua := models.UserAchievement{Achievement: a}
		if at, ok := unlockedAt[a.ID]; ok {
			ua.Unlocked = true
			ua.UnlockedAt = &at
		}
		out = append(out, ua)
	}
	return out, nil
}

func (p *progressService) UserProgress(userID string) ([]models.ProgressRecord, error) {
	if _, ok := p.store.UserByID(userID); !ok {
		return nil, fmt.Errorf("progress: user %s: %w", userID, common.ErrNotFound)
	}
	return p.store.Progress(userID), nil
}
