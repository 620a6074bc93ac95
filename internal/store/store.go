// Package store is the domain store: typed collections of users, labs,
// progress, achievements, CTF challenges, solves and scores and the
// security log, mirrored to a
// kvstore.Store after every mutation.
//
// The in-memory state is authoritative. A failed write is logged and kept
// in Err; it never fails the mutation that caused it.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/cybersib/cybersib/internal/common"
	"github.com/cybersib/cybersib/internal/cryptox"
	"github.com/cybersib/cybersib/internal/kvstore"
	"github.com/cybersib/cybersib/internal/logging"
	"github.com/cybersib/cybersib/internal/models"
	"github.com/cybersib/cybersib/internal/seed"
)

const DefaultLogCap = 1000

type Options struct {
	Log    logging.Logger
	Hasher cryptox.Hasher
	Ladder models.RankLadder
	// LogCap bounds the security log; DefaultLogCap when zero.
	LogCap int

	// bootstrap accounts, see seed.Options
	DemoAccount    bool
	SampleAccounts bool
	AdminPassword  string
}

type Store struct {
	mu sync.RWMutex

	kv     kvstore.Store
	log    logging.Logger
	ladder models.RankLadder
	logCap int

	users        *Collection[models.User]
	labs         *Collection[models.Lab]
	progress     *Collection[models.ProgressRecord]
	achievements *Collection[models.Achievement]
	unlocks      *Collection[models.AchievementUnlock]
	challenges   *Collection[models.CTFChallenge]
	solves       *Collection[models.CTFSolveRecord]
	ctfScores    *Collection[models.CTFScoreEntry]
	securityLogs *Collection[models.SecurityLogEntry]
	settings     map[string]string
	currentUser  *models.User

	// keys whose last write failed; Err is non-nil until each is rewritten
	failed  map[string]struct{}
	lastErr error
}

// Open loads every collection from kv. On an empty store (no users) it
// installs the seed snapshot and persists it.
func Open(ctx context.Context, kv kvstore.Store, opts Options) (*Store, error) {
	if opts.Log == nil {
		opts.Log = logging.Nop()
	}
	if opts.LogCap <= 0 {
		opts.LogCap = DefaultLogCap
	}

	s := &Store{
		kv:     kv,
		log:    opts.Log.With("component", "store"),
		ladder: opts.Ladder,
		logCap: opts.LogCap,
		failed: make(map[string]struct{}),
	}

	var (
		users        []models.User
		labs         []models.Lab
		progress     []models.ProgressRecord
		achievements []models.Achievement
		unlocks      []models.AchievementUnlock
		challenges   []models.CTFChallenge
		solves       []models.CTFSolveRecord
		ctfScores    []models.CTFScoreEntry
		logs         []models.SecurityLogEntry
		settings     map[string]string
		current      *models.User
	)
	for key, dst := range map[string]any{
		KeyUsers:              &users,
		KeyLabs:               &labs,
		KeyProgress:           &progress,
		KeyAchievements:       &achievements,
		KeyAchievementUnlocks: &unlocks,
		KeyCTFChallenges:      &challenges,
		KeyCTFSolves:          &solves,
		KeyCTFScores:          &ctfScores,
		KeySecurityLogs:       &logs,
		KeySettings:           &settings,
		KeyCurrentUser:        &current,
	} {
		if _, err := kvstore.GetJSON(ctx, kv, s.log, key, dst); err != nil {
			return nil, fmt.Errorf("%w: load %s: %v", common.ErrStorage, key, err)
		}
	}

	s.users = NewCollection(users)
	s.labs = NewCollection(labs)
	s.progress = NewCollection(progress)
	s.achievements = NewCollection(achievements)
	s.unlocks = NewCollection(unlocks)
	s.challenges = NewCollection(challenges)
	s.solves = NewCollection(solves)
	s.ctfScores = NewCollection(ctfScores)
	s.securityLogs = NewCollection(logs)
	s.settings = settings
	if s.settings == nil {
		s.settings = make(map[string]string)
	}
	s.currentUser = current

	seeded := false
	if s.users.Len() == 0 {
		if opts.Hasher == nil {
			return nil, fmt.Errorf("store: seeding requires a hasher")
		}
		snap, err := seed.Build(opts.Hasher, seed.Options{
			DemoAccount:    opts.DemoAccount,
			SampleAccounts: opts.SampleAccounts,
			AdminPassword:  opts.AdminPassword,
			Ladder:         opts.Ladder,
		})
		if err != nil {
			return nil, err
		}
		s.install(snap)
		seeded = true
		s.log.Info(ctx, "installed seed data", "users", len(snap.Users), "labs", len(snap.Labs))
	} else if s.labs.Len() == 0 || s.achievements.Len() == 0 || s.challenges.Len() == 0 {
		// catalogs are read-only; restore them if they went missing
		s.labs.Replace(seed.Labs())
		s.achievements.Replace(seed.Achievements())
		if s.challenges.Len() == 0 && opts.Hasher != nil {
			chs, err := seed.Challenges(opts.Hasher)
			if err != nil {
				return nil, err
			}
			s.challenges.Replace(chs)
		}
		seeded = true
		s.log.Warn(ctx, "catalog missing, restored from seed")
	}

	reranked := s.users.Update(
		func(u models.User) bool { return u.Rank != s.ladder.Rank(u.Points) },
		func(u *models.User) { u.Rank = s.ladder.Rank(u.Points) },
	)
	s.securityLogs.TrimFront(s.logCap)

	if s.currentUser != nil {
		if _, ok := s.users.Find(byUserID(s.currentUser.ID)); !ok {
			s.currentUser = nil
		}
	}

	switch {
	case seeded:
		if err := s.Flush(ctx); err != nil {
			return nil, err
		}
	case reranked > 0:
		s.log.Info(ctx, "ranks recomputed on load", "users", reranked)
		s.mu.Lock()
		s.persist(ctx, KeyUsers, s.users.items)
		s.mu.Unlock()
	}
	return s, nil
}

func (s *Store) install(snap *seed.Snapshot) {
	s.users.Replace(snap.Users)
	s.labs.Replace(snap.Labs)
	s.progress.Replace(snap.Progress)
	s.achievements.Replace(snap.Achievements)
	s.unlocks.Replace(snap.Unlocks)
	s.challenges.Replace(snap.Challenges)
	s.solves.Replace(snap.Solves)
	s.ctfScores.Replace(snap.CTFScores)
}

// Err returns the most recent persistence failure while any collection is
// still unsaved, or nil once every failed write has succeeded again.
func (s *Store) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}

// Close closes the backing store.
func (s *Store) Close() error {
	return s.kv.Close()
}

// persist writes one collection. Callers hold the write lock.
func (s *Store) persist(ctx context.Context, key string, v any) {
	if err := kvstore.SetJSON(ctx, s.kv, key, v); err != nil {
		s.failed[key] = struct{}{}
		s.lastErr = fmt.Errorf("%w: %s: %v", common.ErrStorage, key, err)
		s.log.Error(ctx, "persist failed", "key", key, "error", err)
		return
	}
	if _, ok := s.failed[key]; ok {
		delete(s.failed, key)
		if len(s.failed) == 0 {
			s.lastErr = nil
			s.log.Info(ctx, "storage recovered", "key", key)
		}
	}
}

// Flush writes every collection, in one batch when the backing store
// supports it.
func (s *Store) Flush(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	values := make(map[string][]byte, 11)
	for key, v := range s.snapshot() {
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("%w: encode %s: %v", common.ErrStorage, key, err)
		}
		values[key] = b
	}

	if err := kvstore.SetMany(ctx, s.kv, values); err != nil {
		s.lastErr = fmt.Errorf("%w: flush: %v", common.ErrStorage, err)
		for key := range values {
			s.failed[key] = struct{}{}
		}
		return s.lastErr
	}
	clear(s.failed)
	s.lastErr = nil
	return nil
}

func (s *Store) snapshot() map[string]any {
	return map[string]any{
		KeyUsers:              s.users.items,
		KeyLabs:               s.labs.items,
		KeyProgress:           s.progress.items,
		KeyAchievements:       s.achievements.items,
		KeyAchievementUnlocks: s.unlocks.items,
		KeyCTFChallenges:      s.challenges.items,
		KeyCTFSolves:          s.solves.items,
		KeyCTFScores:          s.ctfScores.items,
		KeySecurityLogs:       s.securityLogs.items,
		KeySettings:           s.settings,
		KeyCurrentUser:        s.currentUser,
	}
}

func byUserID(id string) func(models.User) bool {
	return func(u models.User) bool { return u.ID == id }
}

// Ladder returns the rank ladder the store recomputes ranks with.
func (s *Store) Ladder() models.RankLadder {
	return s.ladder
}

// ---- users ----

func (s *Store) Users() []models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.users.All()
}

func (s *Store) FindUser(pred func(models.User) bool) (models.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.users.Find(pred)
}

func (s *Store) UserByID(id string) (models.User, bool) {
	return s.FindUser(byUserID(id))
}

// AddUser appends u with its rank derived from its points.
func (s *Store) AddUser(ctx context.Context, u models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u.Rank = s.ladder.Rank(u.Points)
	s.users.Append(u)
	s.persist(ctx, KeyUsers, s.users.items)
}

// UpdateUser applies mutate to the user with id, recomputes the rank and
// returns the updated copy. The session pointer follows the change.
func (s *Store) UpdateUser(ctx context.Context, id string, mutate func(*models.User)) (models.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := s.users.Update(byUserID(id), func(u *models.User) {
		mutate(u)
		if u.Points < 0 {
			u.Points = 0
		}
		u.Rank = s.ladder.Rank(u.Points)
	})
	if n == 0 {
		return models.User{}, false
	}
	s.persist(ctx, KeyUsers, s.users.items)

	u, _ := s.users.Find(byUserID(id))
	if s.currentUser != nil && s.currentUser.ID == id {
		cur := u.Sanitized()
		s.currentUser = &cur
		s.persist(ctx, KeyCurrentUser, s.currentUser)
	}
	return u, true
}

// ---- catalogs ----

func (s *Store) Labs() []models.Lab {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.labs.All()
}

func (s *Store) LabByID(id int) (models.Lab, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.labs.Find(func(l models.Lab) bool { return l.ID == id })
}

func (s *Store) Achievements() []models.Achievement {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.achievements.All()
}

// ---- progress ----

// Progress returns the user's records ordered by lab id.
func (s *Store) Progress(userID string) []models.ProgressRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := s.progress.Filter(func(p models.ProgressRecord) bool { return p.UserID == userID })
	sort.Slice(out, func(i, j int) bool { return out[i].LabID < out[j].LabID })
	return out
}

func (s *Store) FindProgress(userID string, labID int) (models.ProgressRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.progress.Find(func(p models.ProgressRecord) bool { return p.Matches(userID, labID) })
}

// PutProgress inserts rec or replaces the record for the same pair.
func (s *Store) PutProgress(ctx context.Context, rec models.ProgressRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := s.progress.Update(
		func(p models.ProgressRecord) bool { return p.Matches(rec.UserID, rec.LabID) },
		func(p *models.ProgressRecord) { *p = rec },
	)
	if n == 0 {
		s.progress.Append(rec)
	}
	s.persist(ctx, KeyProgress, s.progress.items)
}

// ---- achievement unlocks ----

func (s *Store) Unlocks(userID string) []models.AchievementUnlock {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.unlocks.Filter(func(u models.AchievementUnlock) bool { return u.UserID == userID })
}

// AddUnlock records u unless the pair is already unlocked. It reports
// whether a new unlock was stored.
func (s *Store) AddUnlock(ctx context.Context, u models.AchievementUnlock) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.unlocks.Find(func(x models.AchievementUnlock) bool {
		return x.UserID == u.UserID && x.AchievementID == u.AchievementID
	}); ok {
		return false
	}
	s.unlocks.Append(u)
	s.persist(ctx, KeyAchievementUnlocks, s.unlocks.items)
	return true
}

// ---- CTF scores ----

func (s *Store) CTFScores() []models.CTFScoreEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ctfScores.All()
}

func (s *Store) CTFScore(userID string) (models.CTFScoreEntry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ctfScores.Find(func(e models.CTFScoreEntry) bool { return e.UserID == userID })
}

func (s *Store) Challenges() []models.CTFChallenge {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.challenges.All()
}

func (s *Store) ChallengeByID(id string) (models.CTFChallenge, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.challenges.Find(func(c models.CTFChallenge) bool { return c.ID == id })
}

// Solves returns every solve of the challenge, or of all challenges when
// challengeID is empty.
func (s *Store) Solves(challengeID string) []models.CTFSolveRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.solves.Filter(func(r models.CTFSolveRecord) bool {
		return challengeID == "" || r.ChallengeID == challengeID
	})
}

func (s *Store) UserSolves(userID string) []models.CTFSolveRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.solves.Filter(func(r models.CTFSolveRecord) bool { return r.UserID == userID })
}

// RecordSolve stores the solve and applies points to the user's score
// entry in one step. It reports false, changing nothing, when the pair is
// already solved.
func (s *Store) RecordSolve(ctx context.Context, r models.CTFSolveRecord, username string, points int) (models.CTFScoreEntry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.solves.Find(func(x models.CTFSolveRecord) bool {
		return x.UserID == r.UserID && x.ChallengeID == r.ChallengeID
	}); ok {
		e, _ := s.ctfScores.Find(func(x models.CTFScoreEntry) bool { return x.UserID == r.UserID })
		return e, false
	}
	s.solves.Append(r)

	e, _ := s.ctfScores.Find(func(x models.CTFScoreEntry) bool { return x.UserID == r.UserID })
	e.UserID = r.UserID
	e.Username = username
	e.Score += points
	e.SolvedCount++
	n := s.ctfScores.Update(
		func(x models.CTFScoreEntry) bool { return x.UserID == r.UserID },
		func(x *models.CTFScoreEntry) { *x = e },
	)
	if n == 0 {
		s.ctfScores.Append(e)
	}

	s.persist(ctx, KeyCTFSolves, s.solves.items)
	s.persist(ctx, KeyCTFScores, s.ctfScores.items)
	return e, true
}

// PutCTFScore inserts e or replaces the entry for the same user.
func (s *Store) PutCTFScore(ctx context.Context, e models.CTFScoreEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := s.ctfScores.Update(
		func(x models.CTFScoreEntry) bool { return x.UserID == e.UserID },
		func(x *models.CTFScoreEntry) { *x = e },
	)
	if n == 0 {
		s.ctfScores.Append(e)
	}
	s.persist(ctx, KeyCTFScores, s.ctfScores.items)
}

// ---- security log ----

// AppendLog adds e and evicts the oldest entries beyond the cap.
func (s *Store) AppendLog(ctx context.Context, e models.SecurityLogEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.securityLogs.Append(e)
	s.securityLogs.TrimFront(s.logCap)
	s.persist(ctx, KeySecurityLogs, s.securityLogs.items)
}

// Logs returns up to limit most recent entries, oldest first. A limit of
// zero or less returns everything.
func (s *Store) Logs(limit int) []models.SecurityLogEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	all := s.securityLogs.All()
	if limit > 0 && len(all) > limit {
		all = all[len(all)-limit:]
	}
	return all
}

// ---- settings ----

func (s *Store) Settings() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]string, len(s.settings))
	for k, v := range s.settings {
		out[k] = v
	}
	return out
}

func (s *Store) Setting(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.settings[key]
	return v, ok
}

func (s *Store) SetSetting(ctx context.Context, key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings[key] = value
	s.persist(ctx, KeySettings, s.settings)
}

func (s *Store) DeleteSetting(ctx context.Context, key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.settings[key]; !ok {
		return
	}
	delete(s.settings, key)
	s.persist(ctx, KeySettings, s.settings)
}

// ---- session pointer ----

// CurrentUser returns the signed-in user, or nil for a guest.
func (s *Store) CurrentUser() *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.currentUser == nil {
		return nil
	}
	u := *s.currentUser
	return &u
}

// SetCurrentUser points the session at u (nil for guest). The credential
// hash is never stored in the session pointer.
func (s *Store) SetCurrentUser(ctx context.Context, u *models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u == nil {
		s.currentUser = nil
	} else {
		cur := u.Sanitized()
		s.currentUser = &cur
	}
	s.persist(ctx, KeyCurrentUser, s.currentUser)
}
