package terminal

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/cybersib/cybersib/internal/logging"
	"github.com/cybersib/cybersib/internal/models"
)

// State is the interpreter's position in its two-state machine.
type State int32

const (
	Idle State = iota
	Processing
)

func (s State) String() string {
	if s == Processing {
		return "processing"
	}
	return "idle"
}

const DefaultPrompt = "root@cybersib-spt:~$"

// Reader is the read-only view of the domain store the commands need.
type Reader interface {
	Labs() []models.Lab
	Users() []models.User
	Challenges() []models.CTFChallenge
	CTFScores() []models.CTFScoreEntry
	CurrentUser() *models.User
}

// Session is the one write path: the login shortcut.
type Session interface {
	Login(ctx context.Context, usernameOrEmail, password string) (*models.User, error)
}

type Options struct {
	BufferLines int
	Prompt      string
	// Version is shown by the about command.
	Version string
}

type handler func(ctx context.Context, out *output, args []string)

// Interpreter runs one command line at a time. Execute is synchronous and
// safe to call from several goroutines; calls are serialized.
type Interpreter struct {
	mu       sync.Mutex
	state    atomic.Int32
	buf      *Buffer
	reader   Reader
	session  Session
	log      logging.Logger
	prompt   string
	version  string
	commands map[string]handler
}

func New(r Reader, s Session, log logging.Logger, opts Options) *Interpreter {
	if opts.Prompt == "" {
		opts.Prompt = DefaultPrompt
	}
	if opts.Version == "" {
		opts.Version = "dev"
	}
	in := &Interpreter{
		buf:     NewBuffer(opts.BufferLines),
		reader:  r,
		session: s,
		log:     log.With("component", "terminal"),
		prompt:  opts.Prompt,
		version: opts.Version,
	}
	in.commands = in.table()
	return in
}

func (in *Interpreter) State() State { return State(in.state.Load()) }

// Lines returns the whole buffer, oldest first.
func (in *Interpreter) Lines() []Line {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.buf.Lines()
}

// Welcome writes the greeting shown when the terminal opens.
func (in *Interpreter) Welcome() []Line {
	in.mu.Lock()
	defer in.mu.Unlock()
	out := &output{}
	out.info("Welcome to the CyberSib terminal!")
	out.info(`Type "help" for the list of commands`)
	out.blank()
	in.commit(out)
	return out.lines
}

// Execute echoes line as a command, runs it and returns the lines it
// produced. An empty line produces nothing.
func (in *Interpreter) Execute(ctx context.Context, line string) []Line {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}

	in.mu.Lock()
	defer in.mu.Unlock()
	in.state.Store(int32(Processing))
	defer in.state.Store(int32(Idle))

	name := strings.ToLower(fields[0])
	args := fields[1:]

	out := &output{}
	out.add(KindCommand, in.prompt+" "+echo(name, args))

	h, ok := in.commands[name]
	if !ok {
		out.errorf(`Command "%s" not found. Type "help" for the list of commands.`, name)
		in.log.Debug(ctx, "unknown command", "command", name)
	} else {
		h(ctx, out, args)
	}
	out.blank()

	in.commit(out)
	return out.lines
}

func (in *Interpreter) commit(out *output) {
	if out.clear {
		in.buf.Clear()
	}
	for _, l := range out.lines {
		in.buf.Append(l.Kind, l.Text)
	}
}

// echo rebuilds the typed command with the login password masked.
func echo(name string, args []string) string {
	parts := append([]string{name}, args...)
	if name == "user" && len(args) >= 3 && strings.EqualFold(args[0], "login") {
		for i := 3; i < len(parts); i++ {
			parts[i] = "********"
		}
	}
	return strings.Join(parts, " ")
}
