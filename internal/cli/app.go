package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/cybersib/cybersib/internal/logging"
	"github.com/cybersib/cybersib/internal/services"
	"github.com/cybersib/cybersib/internal/terminal"
)

// Deps are the collaborators the client drives.
type Deps struct {
	Auth     services.AuthService
	Progress services.ProgressService
	Terminal *terminal.Interpreter
	Log      logging.Logger
	// Health reports the last persistence failure, if any.
	Health func() error

	In  io.Reader
	Out io.Writer
	// RefreshInterval is how often the prompt status is re-read.
	// Zero disables the watcher.
	RefreshInterval time.Duration
}

type App struct {
	auth     services.AuthService
	progress services.ProgressService
	term     *terminal.Interpreter
	log      logging.Logger
	health   func() error
	reader   *bufio.Reader
	out      io.Writer
	styles   Styles
	refresh  time.Duration

	mu        sync.Mutex
	status    string
	unhealthy bool
}

func NewApp(d Deps) *App {
	if d.In == nil {
		d.In = os.Stdin
	}
	if d.Out == nil {
		d.Out = os.Stdout
	}
	if d.Log == nil {
		d.Log = logging.Nop()
	}
	if d.Health == nil {
		d.Health = func() error { return nil }
	}
	a := &App{
		auth:     d.Auth,
		progress: d.Progress,
		term:     d.Terminal,
		log:      d.Log.With("component", "cli"),
		health:   d.Health,
		reader:   bufio.NewReader(d.In),
		out:      d.Out,
		styles:   DefaultStyles(),
		refresh:  d.RefreshInterval,
	}
	a.refreshStatus(context.Background())
	return a
}

// Run prints the welcome banner, starts the status watcher and blocks in
// the REPL until the user exits or input ends.
func (a *App) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	fmt.Fprintln(a.out, a.styles.Title.Render("CyberSib cyber range"))
	a.printLines(a.term.Welcome())

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		a.StartStatusWatcher(ctx, a.refresh)
	}()

	runREPL(ctx, a, a.Status, a.reader)

	cancel()
	wg.Wait()
}

// StartStatusWatcher re-reads the session and store health every interval
// until ctx is done.
func (a *App) StartStatusWatcher(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.refreshStatus(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (a *App) refreshStatus(ctx context.Context) {
	status := "guest"
	if u, ok := a.auth.CurrentUser(); ok {
		status = fmt.Sprintf("%s %s %dpts", u.Username, u.Rank, u.Points)
	}
	err := a.health()

	a.mu.Lock()
	defer a.mu.Unlock()
	a.status = status
	switch {
	case err != nil && !a.unhealthy:
		a.unhealthy = true
		a.log.Warn(ctx, "changes are not being saved", "error", err)
	case err == nil && a.unhealthy:
		a.unhealthy = false
		a.log.Info(ctx, "storage recovered")
	}
}

// Status is the prompt decoration: the signed-in user or "guest", with a
// marker while persistence is failing.
func (a *App) Status() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.unhealthy {
		return a.status + " !unsaved"
	}
	return a.status
}

func (a *App) println(s string) {
	fmt.Fprintln(a.out, s)
}

func (a *App) printLines(lines []terminal.Line) {
	for _, l := range lines {
		a.println(a.styles.Line(l))
	}
}
