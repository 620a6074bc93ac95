package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/cybersib/cybersib/internal/common"
	"github.com/cybersib/cybersib/internal/models"
	"github.com/cybersib/cybersib/internal/services"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
var (
	getSimpleText = GetSimpleText
	getPassword   = GetPassword
)

const hostHelp = `Account and progress commands:
  register                     create an account
  login | logout               sign in or out
  start <labID>                start a lab
  complete <labID> <score>     finish a lab with a score
  progress                     your lab progress
  achievements                 your achievements
  stats                        your standing and next rank
  challenges                   CTF challenges and what you solved
  submit <id> <flag>           submit a flag for a CTF challenge
  leaderboard [n]              CTF scoreboard
  profile                      change username, email or group
  passwd                       change your password
  disable | enable <user>      (admin) switch an account off or on
  exit | quit                  leave the program
`

func usage(text string) error {
	return common.NewValidationError("usage: " + text)
}

func (a *App) Help(ctx context.Context) {
	a.println(a.styles.Title.Render(hostHelp))
	a.Terminal(ctx, "help")
}

// Register prompts for the account fields and creates the account. It does
// not sign the new user in.
func (a *App) Register(ctx context.Context) error {
	username, err := getSimpleText(a.reader, "Username", a.out)
	if err != nil {
		return err
	}
	email, err := getSimpleText(a.reader, "Email", a.out)
	if err != nil {
		return err
	}
	group, err := getSimpleText(a.reader, "Group (optional)", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.reader, "Password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	u, err := a.auth.Register(ctx, username, email, string(password), group)
	if err != nil {
		return err
	}
	a.println(a.styles.Success.Render(fmt.Sprintf("Account %s created. Use \"login\" to sign in.", u.Username)))
	return nil
}

func (a *App) Login(ctx context.Context) error {
	name, err := getSimpleText(a.reader, "Username or email", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.reader, "Password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	u, err := a.auth.Login(ctx, name, string(password))
	if err != nil {
		return err
	}
	a.refreshStatus(ctx)
	a.println(a.styles.Success.Render(fmt.Sprintf("Welcome, %s! Rank: %s, points: %d", u.Username, u.Rank, u.Points)))
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	if _, ok := a.auth.CurrentUser(); !ok {
		a.println(a.styles.Muted.Render("Not signed in."))
		return nil
	}
	a.auth.Logout(ctx)
	a.refreshStatus(ctx)
	a.println("Signed out.")
	return nil
}

func (a *App) currentUser() (*models.User, error) {
	u, ok := a.auth.CurrentUser()
	if !ok {
		return nil, common.ErrUnauthenticated
	}
	return u, nil
}

func (a *App) Start(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usage("start <labID>")
	}
	labID, err := strconv.Atoi(args[0])
	if err != nil {
		return usage("start <labID>")
	}
	u, err := a.currentUser()
	if err != nil {
		return err
	}

	rec, err := a.progress.StartLab(ctx, u.ID, labID)
	if err != nil {
		return err
	}
	a.println(a.styles.Info.Render(fmt.Sprintf("Lab %d started (attempt %d).", labID, rec.Attempts)))
	return nil
}

func (a *App) Complete(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return usage("complete <labID> <score>")
	}
	labID, err1 := strconv.Atoi(args[0])
	score, err2 := strconv.Atoi(args[1])
	if err1 != nil || err2 != nil {
		return usage("complete <labID> <score>")
	}
	u, err := a.currentUser()
	if err != nil {
		return err
	}

	c, err := a.progress.CompleteLab(ctx, u.ID, labID, score)
	if err != nil {
		return err
	}
	a.refreshStatus(ctx)

	if c.Repeat && c.Awarded == 0 {
		a.println(a.styles.Muted.Render(fmt.Sprintf("Lab %d completed again with %d. No points for repeats.", labID, score)))
	} else {
		a.println(a.styles.Success.Render(fmt.Sprintf("Lab %d completed: +%d points (total %d).", labID, c.Awarded, c.User.Points)))
	}
	if c.RankChanged() {
		a.println(a.styles.Title.Render(fmt.Sprintf("Rank up: %s -> %s", c.PreviousRank, c.User.Rank)))
	}
	for _, ach := range c.Unlocked {
		a.println(a.styles.Title.Render("Achievement unlocked: " + ach.Name))
	}
	return nil
}

func (a *App) Progress(ctx context.Context) error {
	u, err := a.currentUser()
	if err != nil {
		return err
	}
	recs, err := a.progress.UserProgress(u.ID)
	if err != nil {
		return err
	}

	t := NewTable("Lab progress", "Lab", "Status", "Score", "Attempts", "Completed")
	for _, r := range recs {
		done := "-"
		if r.CompletedAt != nil {
			done = r.CompletedAt.Local().Format("2006-01-02 15:04")
		}
		t.AddRow(r.LabID, r.Status, r.Score, r.Attempts, done)
	}
	a.println(t.View(a.styles))
	return nil
}

func (a *App) Achievements(ctx context.Context) error {
	u, err := a.currentUser()
	if err != nil {
		return err
	}
	list, err := a.progress.UserAchievements(u.ID)
	if err != nil {
		return err
	}

	t := NewTable("Achievements", "", "Name", "Description")
	for _, ach := range list {
		mark := "[ ]"
		if ach.Unlocked {
			mark = "[x]"
		}
		name := ach.Name
		if ach.Rare {
			name += " *"
		}
		t.AddRow(mark, name, ach.Description)
	}
	a.println(t.View(a.styles))
	return nil
}

func (a *App) Stats(ctx context.Context) error {
	u, err := a.currentUser()
	if err != nil {
		return err
	}
	s, err := a.progress.UserStats(u.ID)
	if err != nil {
		return err
	}

	t := NewTable("Stats for "+u.Username, "Metric", "Value")
	t.AddRow("Rank", s.Rank)
	t.AddRow("Labs completed", s.CompletedLabs)
	t.AddRow("Lab points", s.LabPoints)
	t.AddRow("CTF points", s.CTFPoints)
	t.AddRow("CTF solved", s.CTFSolved)
	t.AddRow("Total points", s.TotalPoints)
	if s.NextRank != "" {
		t.AddRow("Next rank", fmt.Sprintf("%s (%d to go)", s.NextRank, s.PointsNeeded))
	} else {
		t.AddRow("Next rank", "top of the ladder")
	}
	a.println(t.View(a.styles))
	return nil
}

func (a *App) Leaderboard(ctx context.Context, args []string) error {
	limit := 10
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n <= 0 {
			return usage("leaderboard [n]")
		}
		limit = n
	}
	a.println(LeaderboardTable(a.progress.Leaderboard(limit)).View(a.styles))
	return nil
}

func (a *App) Challenges(ctx context.Context) error {
	u, err := a.currentUser()
	if err != nil {
		return err
	}
	list, err := a.progress.Challenges(u.ID)
	if err != nil {
		return err
	}

	t := NewTable("CTF challenges", "", "ID", "Title", "Category", "Points", "Solves")
	for _, c := range list {
		mark := "[ ]"
		if c.Solved {
			mark = "[x]"
		}
		t.AddRow(mark, c.ID, c.Title, c.Category, c.Points, c.SolvedCount)
	}
	a.println(t.View(a.styles))
	return nil
}

// Submit checks a flag for one challenge and reports the points earned.
func (a *App) Submit(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return usage("submit <challengeID> <flag>")
	}
	u, err := a.currentUser()
	if err != nil {
		return err
	}

	s, err := a.progress.RecordCTFSolve(ctx, u.ID, args[0], args[1])
	if err != nil {
		return err
	}
	a.refreshStatus(ctx)

	a.println(a.styles.Success.Render(fmt.Sprintf("Correct! %s solved: +%d CTF points (total %d).",
		s.Challenge.Title, s.Challenge.Points, s.Entry.Score)))
	for _, ach := range s.Unlocked {
		a.println(a.styles.Title.Render("Achievement unlocked: " + ach.Name))
	}
	return nil
}

// LeaderboardTable lays the scoreboard out as a table.
func LeaderboardTable(rows []models.LeaderboardRow) *Table {
	t := NewTable("CTF leaderboard", "#", "User", "Score", "Solved", "Rank")
	for _, r := range rows {
		t.AddRow(r.Position, r.Username, r.Score, r.Solved, r.RankTitle)
	}
	return t
}

// AuditTable lays security log entries out as a table, newest last.
func AuditTable(entries []models.SecurityLogEntry) *Table {
	t := NewTable("Security log", "Time", "Severity", "User", "Action", "Details")
	for _, e := range entries {
		user := e.UserID
		if user == "" {
			user = "-"
		}
		t.AddRow(e.Timestamp.Local().Format("2006-01-02 15:04:05"), e.Severity, user, e.Action, e.Details)
	}
	return t
}

func (a *App) Passwd(ctx context.Context) error {
	u, err := a.currentUser()
	if err != nil {
		return err
	}
	current, err := getPassword(a.reader, "Current password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(current)
	next, err := getPassword(a.reader, "New password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(next)

	if err := a.auth.ChangePassword(ctx, u.ID, string(current), string(next)); err != nil {
		return err
	}
	a.println(a.styles.Success.Render("Password changed."))
	return nil
}

// Profile prompts for each field; an empty answer keeps the current value.
func (a *App) Profile(ctx context.Context) error {
	u, err := a.currentUser()
	if err != nil {
		return err
	}

	var upd services.ProfileUpdate
	for _, f := range []struct {
		prompt, current string
		dst             **string
	}{
		{"Username", u.Username, &upd.Username},
		{"Email", u.Email, &upd.Email},
		{"Group", u.Group, &upd.Group},
	} {
		v, err := getSimpleText(a.reader, fmt.Sprintf("%s [%s]", f.prompt, f.current), a.out)
		if err != nil {
			return err
		}
		if v = strings.TrimSpace(v); v != "" {
			*f.dst = &v
		}
	}

	updated, err := a.auth.UpdateProfile(ctx, u.ID, upd)
	if err != nil {
		return err
	}
	a.refreshStatus(ctx)
	a.println(a.styles.Success.Render(fmt.Sprintf("Profile updated: %s <%s>, group %q.",
		updated.Username, updated.Email, updated.Group)))
	return nil
}

// SetActive is the admin switch behind "disable" and "enable".
func (a *App) SetActive(ctx context.Context, args []string, active bool) error {
	verb := "disable"
	if active {
		verb = "enable"
	}
	if len(args) != 1 {
		return usage(verb + " <username>")
	}
	u, err := a.currentUser()
	if err != nil {
		return err
	}
	target, err := a.auth.LookupUser(args[0])
	if err != nil {
		return err
	}

	updated, err := a.auth.SetActive(ctx, u.ID, target.ID, active)
	if err != nil {
		return err
	}
	state := "disabled"
	if updated.IsActive {
		state = "enabled"
	}
	a.println(a.styles.Warning.Render(fmt.Sprintf("Account %s is now %s.", updated.Username, state)))
	return nil
}

// Terminal forwards a line to the simulated shell and prints its output.
func (a *App) Terminal(ctx context.Context, line string) {
	a.printLines(a.term.Execute(ctx, line))
	a.refreshStatus(ctx)
}
