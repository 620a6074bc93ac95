package terminal

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/cybersib/cybersib/internal/common"
	"github.com/cybersib/cybersib/internal/logging"
	"github.com/cybersib/cybersib/internal/models"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeReader struct {
	labs       []models.Lab
	users      []models.User
	challenges []models.CTFChallenge
	scores     []models.CTFScoreEntry
	current    *models.User
}

func (f *fakeReader) Labs() []models.Lab                { return f.labs }
func (f *fakeReader) Users() []models.User              { return append([]models.User(nil), f.users...) }
func (f *fakeReader) Challenges() []models.CTFChallenge { return f.challenges }
func (f *fakeReader) CTFScores() []models.CTFScoreEntry { return f.scores }
func (f *fakeReader) CurrentUser() *models.User         { return f.current }

type fakeSession struct {
	r     *fakeReader
	calls []string
}

func (f *fakeSession) Login(_ context.Context, name, password string) (*models.User, error) {
	f.calls = append(f.calls, name)
	for _, u := range f.r.users {
		if u.Username == name && password == "secret123" {
			f.r.current = &u
			return &u, nil
		}
	}
	return nil, common.ErrInvalidCredentials
}

func newTestInterpreter(opts Options) (*Interpreter, *fakeReader, *fakeSession) {
	r := &fakeReader{
		labs: []models.Lab{
			{ID: 1, Title: "Linux Basics", Difficulty: models.DifficultyBeginner, Points: 10, Time: 45, Status: models.LabAvailable},
			{ID: 8, Title: "CTF Reverse", Difficulty: models.DifficultyCTF, Points: 100, Status: models.LabLocked},
		},
		users: []models.User{
			{ID: "1", Username: "alice", Points: 40, CompletedLabs: 2, IsActive: true},
			{ID: "2", Username: "bob", Points: 90, CompletedLabs: 5, IsActive: true},
		},
		challenges: []models.CTFChallenge{
			{ID: "sqli-101", Title: "SQL Injection 101", Category: "web", Difficulty: "easy", Points: 50},
			{ID: "rsa", Title: "RSA Challenge", Category: "crypto", Difficulty: "hard", Points: 150},
			{ID: "xss", Title: "XSS Challenge", Category: "web", Difficulty: "medium", Points: 75},
		},
		scores: []models.CTFScoreEntry{{UserID: "2", Username: "bob", Score: 155, SolvedCount: 3}},
	}
	s := &fakeSession{r: r}
	return New(r, s, logging.Nop(), opts), r, s
}

func texts(lines []Line) []string {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = l.Text
	}
	return out
}

func kinds(lines []Line) []Kind {
	out := make([]Kind, len(lines))
	for i, l := range lines {
		out[i] = l.Kind
	}
	return out
}

func TestFlag(t *testing.T) {
	in, _, _ := newTestInterpreter(Options{})
	ctx := context.Background()

	ok := in.Execute(ctx, "flag CSIB{deadbeefdeadbeefdeadbeefdeadbeef}")
	require.NotEmpty(t, ok)
	assert.Equal(t, KindCommand, ok[0].Kind)
	assert.Equal(t, "root@cybersib-spt:~$ flag CSIB{deadbeefdeadbeefdeadbeefdeadbeef}", ok[0].Text)
	assert.Contains(t, kinds(ok), KindSuccess)
	assert.NotContains(t, kinds(ok), KindError)

	bad := in.Execute(ctx, "flag CSIB{deadbeef00}")
	assert.Contains(t, kinds(bad), KindError)
	assert.Contains(t, texts(bad), "Malformed flag")
	assert.NotContains(t, kinds(bad), KindSuccess)
}

func TestValidFlag(t *testing.T) {
	tests := []struct {
		token string
		want  bool
	}{
		{"CSIB{deadbeefdeadbeefdeadbeefdeadbeef}", true},
		{"csib{DEADBEEFDEADBEEFDEADBEEFDEADBEEF}", true},
		{"CSIB{deadbeef}", false},
		{"CSIB{deadbeefdeadbeefdeadbeefdeadbeefa}", false},
		{"CSIB{zzzzbeefdeadbeefdeadbeefdeadbeef}", false},
		{"FLAG{deadbeefdeadbeefdeadbeefdeadbeef}", false},
		{"xCSIB{deadbeefdeadbeefdeadbeefdeadbeef}", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidFlag(tt.token))
		})
	}
}

func TestUnknownCommand(t *testing.T) {
	in, _, _ := newTestInterpreter(Options{})

	lines := in.Execute(context.Background(), "rm -rf /")
	require.Len(t, lines, 3)
	assert.Equal(t, KindError, lines[1].Kind)
	assert.Contains(t, lines[1].Text, `"rm"`)
	assert.Contains(t, lines[1].Text, "help")

	// the session keeps going
	assert.NotEmpty(t, in.Execute(context.Background(), "help"))
	assert.Equal(t, Idle, in.State())
}

func TestEmptyLineProducesNothing(t *testing.T) {
	in, _, _ := newTestInterpreter(Options{})
	assert.Nil(t, in.Execute(context.Background(), "   "))
	assert.Empty(t, in.Lines())
}

func TestCommandNameIsCaseInsensitive(t *testing.T) {
	in, _, _ := newTestInterpreter(Options{})
	lines := in.Execute(context.Background(), "HELP")
	assert.Equal(t, "Available commands:", lines[1].Text)
}

func TestEveryCommandAnswers(t *testing.T) {
	in, _, _ := newTestInterpreter(Options{})
	for _, cmd := range []string{"help", "labs", "ctf", "status", "users", "user info", "connect 10.0.0.5", "about", "demo", "scan", "whoami", "flag x"} {
		t.Run(cmd, func(t *testing.T) {
			lines := in.Execute(context.Background(), cmd)
			assert.Greater(t, len(lines), 2, "command %q printed nothing", cmd)
		})
	}
}

func TestLabsReadsCatalog(t *testing.T) {
	in, _, _ := newTestInterpreter(Options{})
	out := texts(in.Execute(context.Background(), "labs"))
	assert.Contains(t, out, " 1. Linux Basics (beginner, 10 pts, ~45 min)")
	assert.Contains(t, out, " 8. CTF Reverse (ctf, 100 pts, open-ended) [locked]")
}

func TestCTFReadsCatalog(t *testing.T) {
	in, r, _ := newTestInterpreter(Options{})
	r.current = &r.users[1]

	out := texts(in.Execute(context.Background(), "ctf"))
	assert.Equal(t, []string{
		DefaultPrompt + " ctf",
		"CTF challenges:",
		"",
		"[web]",
		"  sqli-101    SQL Injection 101 (50 pts, easy)",
		"  xss         XSS Challenge (75 pts, medium)",
		"",
		"[crypto]",
		"  rsa         RSA Challenge (150 pts, hard)",
		"",
		"Your CTF score: 155 (3 solved)",
		`Use "submit <id> <flag>" to solve a challenge`,
		"",
	}, out)
}

func TestUsersTopList(t *testing.T) {
	in, _, _ := newTestInterpreter(Options{})
	out := texts(in.Execute(context.Background(), "users"))
	assert.Contains(t, out, "  registered:     2")
	assert.Contains(t, out, "  CTF points:     155")
	assert.Contains(t, out, "  1. bob - 90 pts")
	assert.Contains(t, out, "  2. alice - 40 pts")
}

func TestUserLogin(t *testing.T) {
	in, r, s := newTestInterpreter(Options{})
	ctx := context.Background()

	lines := in.Execute(ctx, "user login alice wrong")
	assert.Equal(t, "root@cybersib-spt:~$ user login alice ********", lines[0].Text)
	assert.Contains(t, texts(lines), "Login failed: invalid username or password")
	assert.Nil(t, r.current)

	lines = in.Execute(ctx, "user login alice secret123")
	assert.Contains(t, texts(lines), "Signed in as alice")
	require.NotNil(t, r.current)
	assert.Equal(t, []string{"alice", "alice"}, s.calls)

	who := texts(in.Execute(ctx, "whoami"))
	assert.Contains(t, who, "Current user: alice")

	for _, l := range in.Lines() {
		assert.NotContains(t, l.Text, "secret123", "password leaked into the buffer")
	}
}

func TestUserUsage(t *testing.T) {
	in, _, s := newTestInterpreter(Options{})
	ctx := context.Background()

	assert.Contains(t, kinds(in.Execute(ctx, "user")), KindWarning)
	assert.Contains(t, kinds(in.Execute(ctx, "user login alice")), KindWarning)
	assert.Contains(t, kinds(in.Execute(ctx, "user delete")), KindError)
	assert.Empty(t, s.calls)
}

func TestClear(t *testing.T) {
	in, _, _ := newTestInterpreter(Options{})
	ctx := context.Background()
	in.Welcome()
	in.Execute(ctx, "help")

	in.Execute(ctx, "clear")
	assert.Equal(t, []string{"Terminal cleared.", ""}, texts(in.Lines()))
}

func TestBufferIsBounded(t *testing.T) {
	in, _, _ := newTestInterpreter(Options{BufferLines: 10})
	ctx := context.Background()

	for i := 0; i < 20; i++ {
		in.Execute(ctx, fmt.Sprintf("connect host%d", i))
	}
	lines := in.Lines()
	require.Len(t, lines, 10)
	// each connect writes six lines, so the newest ones survive
	assert.Equal(t, "Connected to host19 as root", lines[len(lines)-3].Text)
}

func TestBuffer(t *testing.T) {
	b := NewBuffer(0)
	assert.Equal(t, DefaultBufferLines, b.Cap())

	for i := 0; i < 105; i++ {
		b.Append(KindNormal, fmt.Sprint(i))
	}
	require.Equal(t, 100, b.Len())
	assert.Equal(t, "5", b.Lines()[0].Text)
	assert.Equal(t, "104", b.Lines()[99].Text)

	b.Clear()
	assert.Zero(t, b.Len())
}

func TestAboutShowsVersion(t *testing.T) {
	in, _, _ := newTestInterpreter(Options{Version: "2.1.0"})
	assert.Contains(t, texts(in.Execute(context.Background(), "about")), "Version: 2.1.0")
}
