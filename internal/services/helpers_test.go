package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/cybersib/cybersib/internal/audit"
	"github.com/cybersib/cybersib/internal/cryptox"
	"github.com/cybersib/cybersib/internal/kvstore"
	"github.com/cybersib/cybersib/internal/logging"
	"github.com/cybersib/cybersib/internal/models"
	"github.com/cybersib/cybersib/internal/store"
)

const adminPassword = "admin-pass-2025"

// testFlags are the seeded challenge flags.
var testFlags = map[string]string{
	"sqli-101":   "CSIB{7d5a7d5a7d5a7d5a7d5a7d5a7d5a7d5a}",
	"xss":        "CSIB{8e6b8e6b8e6b8e6b8e6b8e6b8e6b8e6b}",
	"caesar":     "CSIB{9f7c9f7c9f7c9f7c9f7c9f7c9f7c9f7c}",
	"rsa":        "CSIB{1a8d1a8d1a8d1a8d1a8d1a8d1a8d1a8d}",
	"memdump":    "CSIB{2b9e2b9e2b9e2b9e2b9e2b9e2b9e2b9e}",
	"bof":        "CSIB{3c0f3c0f3c0f3c0f3c0f3c0f3c0f3c0f}",
	"reverse-me": "CSIB{4d104d104d104d104d104d104d104d10}",
}

var testHasher = cryptox.NewArgon2idHasher(cryptox.Argon2Params{Time: 1, MemoryKiB: 1024, Threads: 1, KeyLen: 16, SaltLen: 8})

// seqIDs hands out "u1", "u2", ...
type seqIDs struct{ n int }

func (s *seqIDs) NewID() string {
	s.n++
	return fmt.Sprintf("u%d", s.n)
}

// clock is a settable time source.
type clock struct{ t time.Time }

func (c *clock) Now() time.Time { return c.t }

func (c *clock) Advance(d time.Duration) { c.t = c.t.Add(d) }

type env struct {
	kv       *kvstore.MemoryStore
	store    *store.Store
	auth     AuthService
	progress ProgressService
	clock    *clock
}

type envOption func(*AuthOptions, *ProgressOptions)

func withRepeatAwards() envOption {
	return func(_ *AuthOptions, p *ProgressOptions) { p.AwardRepeatCompletions = true }
}

func newEnv(t *testing.T, opts ...envOption) *env {
	t.Helper()
	return newEnvOn(t, kvstore.NewMemoryStore(), opts...)
}

func newEnvOn(t *testing.T, kv *kvstore.MemoryStore, opts ...envOption) *env {
	t.Helper()
	ctx := context.Background()

	st, err := store.Open(ctx, kv, store.Options{
		Hasher:         testHasher,
		Ladder:         models.DefaultRankLadder(),
		DemoAccount:    true,
		SampleAccounts: true,
		AdminPassword:  adminPassword,
	})
	require.NoError(t, err)

	clk := &clock{t: time.Date(2025, 2, 1, 10, 0, 0, 0, time.UTC)}
	ao := AuthOptions{TTL: time.Hour, Now: clk.Now}
	po := ProgressOptions{Now: clk.Now}
	for _, o := range opts {
		o(&ao, &po)
	}

	rec := audit.NewRecorder(st, logging.Nop(), clk.Now)
	a, err := NewAuthService(ctx, st, testHasher, &seqIDs{}, rec, logging.Nop(), ao)
	require.NoError(t, err)

	return &env{
		kv:       kv,
		store:    st,
		auth:     a,
		progress: NewProgressService(st, rec, logging.Nop(), po),
		clock:    clk,
	}
}

func (e *env) login(t *testing.T, name, password string) *models.User {
	t.Helper()
	u, err := e.auth.Login(context.Background(), name, password)
	require.NoError(t, err)
	return u
}

// solve signs in as name and submits the flag of each challenge.
func (e *env) solve(t *testing.T, name, password string, challenges ...string) {
	t.Helper()
	u := e.login(t, name, password)
	for _, id := range challenges {
		_, err := e.progress.RecordCTFSolve(context.Background(), u.ID, id, testFlags[id])
		require.NoError(t, err, id)
	}
}

func (e *env) lastLog() models.SecurityLogEntry {
	logs := e.store.Logs(1)
	if len(logs) == 0 {
		return models.SecurityLogEntry{}
	}
	return logs[0]
}
