package terminal

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/cybersib/cybersib/internal/common"
	"github.com/cybersib/cybersib/internal/models"
)

// flagPattern is the submission format: CSIB{<32 hex digits>}.
var flagPattern = regexp.MustCompile(`(?i)^csib\{[0-9a-f]{32}\}$`)

func ValidFlag(token string) bool {
	return flagPattern.MatchString(token)
}

func (in *Interpreter) table() map[string]handler {
	return map[string]handler{
		"help":    in.help,
		"labs":    in.labs,
		"ctf":     in.ctf,
		"status":  in.status,
		"users":   in.users,
		"clear":   in.clear,
		"user":    in.user,
		"connect": in.connect,
		"about":   in.about,
		"demo":    in.demo,
		"scan":    in.scan,
		"whoami":  in.whoami,
		"flag":    in.flag,
	}
}

func (in *Interpreter) help(_ context.Context, out *output, _ []string) {
	out.block(`
Available commands:
  help                    show this help
  labs                    list the lab catalog
  ctf                     CTF challenges and your score
  status                  platform status
  users                   user statistics
  clear                   clear the terminal
  user info               details of the signed-in user
  user login <name> <pw>  sign in
  connect <host>          connect to a lab machine
  about                   about the project
  demo                    start the demo lab
  scan                    scan the lab network
  whoami                  who is signed in
  flag <token>            submit a flag`)
}

func (in *Interpreter) labs(_ context.Context, out *output, _ []string) {
	labs := in.reader.Labs()
	out.add(KindNormal, "Lab catalog:")
	out.blank()
	for _, l := range labs {
		state := ""
		if l.Status == models.LabLocked {
			state = " [locked]"
		}
		est := "open-ended"
		if l.Time > 0 {
			est = fmt.Sprintf("~%d min", l.Time)
		}
		out.printf("%2d. %s (%s, %d pts, %s)%s", l.ID, l.Title, l.Difficulty, l.Points, est, state)
	}
	out.blank()
	out.info(`Use "start <id>" to begin a lab`)
}

func (in *Interpreter) ctf(_ context.Context, out *output, _ []string) {
	out.add(KindNormal, "CTF challenges:")

	var order []string
	byCategory := make(map[string][]models.CTFChallenge)
	for _, c := range in.reader.Challenges() {
		if _, ok := byCategory[c.Category]; !ok {
			order = append(order, c.Category)
		}
		byCategory[c.Category] = append(byCategory[c.Category], c)
	}
	for _, cat := range order {
		out.blank()
		out.printf("[%s]", cat)
		for _, c := range byCategory[cat] {
			out.printf("  %-11s %s (%d pts, %s)", c.ID, c.Title, c.Points, c.Difficulty)
		}
	}
	out.blank()

	if u := in.reader.CurrentUser(); u != nil {
		for _, e := range in.reader.CTFScores() {
			if e.UserID == u.ID {
				out.printf("Your CTF score: %d (%d solved)", e.Score, e.SolvedCount)
			}
		}
	}
	out.info(`Use "submit <id> <flag>" to solve a challenge`)
}

func (in *Interpreter) status(_ context.Context, out *output, _ []string) {
	var available, solved int
	for _, l := range in.reader.Labs() {
		if l.Status == models.LabAvailable {
			available++
		}
	}
	for _, e := range in.reader.CTFScores() {
		solved += e.SolvedCount
	}

	out.add(KindNormal, "CyberSib system status:")
	out.success("  services online")
	out.success("  labs available")
	out.success("  CTF system running")
	out.success("  database active")
	out.blank()
	out.printf("  registered users: %d", len(in.reader.Users()))
	out.printf("  available labs:   %d", available)
	out.printf("  CTF tasks solved: %d", solved)
}

func (in *Interpreter) users(_ context.Context, out *output, _ []string) {
	users := in.reader.Users()
	var active, completed, ctfPoints int
	for _, u := range users {
		if u.IsActive {
			active++
		}
		completed += u.CompletedLabs
	}
	for _, e := range in.reader.CTFScores() {
		ctfPoints += e.Score
	}

	out.add(KindNormal, "User statistics:")
	out.printf("  registered:     %d", len(users))
	out.printf("  active:         %d", active)
	out.printf("  labs completed: %d", completed)
	out.printf("  CTF points:     %d", ctfPoints)

	sort.SliceStable(users, func(i, j int) bool { return users[i].Points > users[j].Points })
	if len(users) > 5 {
		users = users[:5]
	}
	out.blank()
	out.add(KindNormal, "Top users:")
	for i, u := range users {
		out.printf("  %d. %s - %d pts", i+1, u.Username, u.Points)
	}
}

func (in *Interpreter) clear(_ context.Context, out *output, _ []string) {
	out.reset()
	out.info("Terminal cleared.")
}

func (in *Interpreter) user(ctx context.Context, out *output, args []string) {
	if len(args) == 0 {
		out.warning("usage: user info | user login <name> <password>")
		return
	}
	switch strings.ToLower(args[0]) {
	case "info":
		u := in.reader.CurrentUser()
		if u == nil {
			out.warning("Not signed in.")
			return
		}
		out.printf("Username: %s", u.Username)
		out.printf("Email:    %s", u.Email)
		out.printf("Group:    %s", u.Group)
		out.printf("Role:     %s", u.Role)
		out.printf("Rank:     %s", u.Rank)
		out.printf("Points:   %d", u.Points)
		out.printf("Joined:   %s", u.CreatedAt.Format("2006-01-02"))
	case "login":
		if len(args) != 3 {
			out.warning("usage: user login <name> <password>")
			return
		}
		u, err := in.session.Login(ctx, args[1], args[2])
		if err != nil {
			out.errorf("Login failed: %s", common.Message(err))
			return
		}
		out.success("Signed in as " + u.Username)
	default:
		out.errorf("unknown subcommand %q", args[0])
		out.warning("usage: user info | user login <name> <password>")
	}
}

func (in *Interpreter) connect(_ context.Context, out *output, args []string) {
	if len(args) == 0 {
		out.warning("usage: connect <host>")
		return
	}
	host := args[0]
	out.warning("Connecting to " + host + "...")
	out.info("Establishing SSH session...")
	out.success("Connected to " + host + " as root")
	out.info("Welcome to the lab environment!")
}

func (in *Interpreter) about(_ context.Context, out *output, _ []string) {
	out.block(`
CyberSib - cyber range of the Siberian Polytechnic College

Version: ` + in.version + `
Location: Kemerovo, Kuzbass

Goal: a safe environment for hands-on
information security training.

License: educational`)
}

func (in *Interpreter) demo(_ context.Context, out *output, _ []string) {
	out.block(`
Starting demo access...
Connecting to the demo lab...
Virtual machine is up!
IP address: 192.168.56.101

Demo tasks:
  1. Find the hidden file on the system
  2. Gain access to the root account
  3. Extract the flag from the protected file

Flag format: CSIB{md5_hash}`)
	out.info(`Use "flag <token>" to submit`)
}

func (in *Interpreter) scan(_ context.Context, out *output, _ []string) {
	out.block(`
Scanning network...
Live hosts:

192.168.56.101 - demo lab (Kali Linux)
192.168.56.102 - vulnerable web server
192.168.56.103 - database server
192.168.56.104 - file server

Open ports on 192.168.56.102:
  22/tcp   - SSH
  80/tcp   - HTTP
  443/tcp  - HTTPS
  3306/tcp - MySQL`)
	out.info("Next step: run a penetration test")
}

func (in *Interpreter) whoami(_ context.Context, out *output, _ []string) {
	u := in.reader.CurrentUser()
	if u == nil {
		out.warning(`Not signed in. Run "demo" for demo access or log in.`)
		return
	}
	out.printf("Current user: %s", u.Username)
	out.printf("Role: %s", u.Role)
	out.printf("Group: %s", u.Group)
	out.printf("Points: %d", u.Points)
	out.printf("Labs completed: %d", u.CompletedLabs)
}

func (in *Interpreter) flag(_ context.Context, out *output, args []string) {
	if len(args) == 0 {
		out.warning("usage: flag <token>")
		return
	}
	token := args[0]
	out.info("Checking flag: " + token)
	if ValidFlag(token) {
		out.success("Flag accepted! Challenge solved.")
		return
	}
	out.errorf("Malformed flag")
	out.info("Format: CSIB{32_hex_characters}")
}
