package seed

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cybersib/cybersib/internal/common"
	"github.com/cybersib/cybersib/internal/cryptox"
	"github.com/cybersib/cybersib/internal/models"
)

var testHasher = cryptox.NewArgon2idHasher(cryptox.Argon2Params{Time: 1, MemoryKiB: 1024, Threads: 1, KeyLen: 16, SaltLen: 8})

func usernames(users []models.User) []string {
	out := make([]string, 0, len(users))
	for _, u := range users {
		out = append(out, u.Username)
	}
	return out
}

func allAccounts() Options {
	return Options{
		DemoAccount:    true,
		SampleAccounts: true,
		AdminPassword:  "admin-pass-2025",
		Ladder:         models.DefaultRankLadder(),
	}
}

func TestBuild(t *testing.T) {
	snap, err := Build(testHasher, allAccounts())
	require.NoError(t, err)

	assert.Equal(t, []string{"test_student", "demo", "ctf_champion", "admin"}, usernames(snap.Users))
	assert.Len(t, snap.Labs, 8)
	assert.Len(t, snap.Achievements, 4)

	for _, u := range snap.Users {
		assert.NotEmpty(t, u.CredentialHash)
		assert.True(t, u.IsActive)
		assert.Equal(t, Epoch, u.CreatedAt)
	}

	demo := snap.Users[1]
	ok, err := cryptox.Verify(demo.CredentialHash, "demo2024")
	require.NoError(t, err)
	assert.True(t, ok)

	champ := snap.Users[2]
	assert.Equal(t, 50, champ.Points)
	assert.Equal(t, 3, champ.CompletedLabs)
	assert.Equal(t, "Beginner", champ.Rank)
	assert.Len(t, snap.Progress, 3)
	for _, p := range snap.Progress {
		assert.Equal(t, models.StatusCompleted, p.Status)
		assert.LessOrEqual(t, p.Score, snap.Labs[p.LabID-1].Points)
	}

	admin := snap.Users[3]
	assert.Equal(t, models.RoleAdmin, admin.Role)
	ok, err = cryptox.Verify(admin.CredentialHash, "admin-pass-2025")
	require.NoError(t, err)
	assert.True(t, ok)

	require.Len(t, snap.Solves, 3)
	assert.Equal(t, []models.CTFScoreEntry{{UserID: "3", Username: "ctf_champion", Score: 155, SolvedCount: 3}}, snap.CTFScores)
}

func TestBuild_WithoutDemoAccount(t *testing.T) {
	opts := allAccounts()
	opts.DemoAccount = false
	snap, err := Build(testHasher, opts)
	require.NoError(t, err)

	assert.NotContains(t, usernames(snap.Users), "demo")
	assert.Len(t, snap.Users, 3)
}

func TestBuild_BootstrapAccountsDisabled(t *testing.T) {
	snap, err := Build(testHasher, Options{DemoAccount: true, Ladder: models.DefaultRankLadder()})
	require.NoError(t, err)

	assert.Equal(t, []string{"demo"}, usernames(snap.Users), "no admin or sample accounts unless configured")
	assert.Empty(t, snap.Progress)
	assert.Empty(t, snap.CTFScores)
	assert.Empty(t, snap.Solves)
	assert.Empty(t, snap.Unlocks)
	assert.Len(t, snap.Challenges, 7, "the challenge catalog is always seeded")
}

func TestBuild_RejectsShortAdminPassword(t *testing.T) {
	opts := allAccounts()
	opts.AdminPassword = "short"
	_, err := Build(testHasher, opts)
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrValidation)
}

func TestChallenges_FlagsAreHashedLowercase(t *testing.T) {
	chs, err := Challenges(testHasher)
	require.NoError(t, err)
	require.Len(t, chs, 7)

	sqli := chs[0]
	assert.Equal(t, "sqli-101", sqli.ID)
	assert.NotContains(t, sqli.FlagHash, "csib{")
	ok, err := cryptox.Verify(sqli.FlagHash, "csib{7d5a7d5a7d5a7d5a7d5a7d5a7d5a7d5a}")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCatalogsAreValid(t *testing.T) {
	for _, l := range Labs() {
		assert.NoError(t, l.Validate(), l.Title)
	}
	for _, a := range Achievements() {
		assert.NoError(t, a.Validate(), a.Name)
	}
}
