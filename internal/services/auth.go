package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cybersib/cybersib/internal/audit"
	"github.com/cybersib/cybersib/internal/auth"
	"github.com/cybersib/cybersib/internal/common"
	"github.com/cybersib/cybersib/internal/cryptox"
	"github.com/cybersib/cybersib/internal/idgen"
	"github.com/cybersib/cybersib/internal/logging"
	"github.com/cybersib/cybersib/internal/models"
	"github.com/cybersib/cybersib/internal/store"
)

// AuthService manages identities and the single session pointer.
//
// Contract:
//   - Register: validate, enforce uniqueness, hash, append. Does not log in.
//   - Login: username or email plus password; sets the session on success.
//   - Logout: clears the session; calling it as a guest is a no-op.
//   - RestoreSession: keeps a persisted session only if its token verifies.
//   - ChangePassword: the signed-in user replaces their own password.
//   - UpdateProfile: the signed-in user changes username, email or group.
//   - SetActive: an admin enables or disables another account.
type AuthService interface {
	Register(ctx context.Context, username, email, password, group string) (*models.User, error)
	Login(ctx context.Context, usernameOrEmail, password string) (*models.User, error)
	Logout(ctx context.Context)
	CurrentUser() (*models.User, bool)
	RestoreSession(ctx context.Context) (*models.User, error)
	ChangePassword(ctx context.Context, userID, current, next string) error
	UpdateProfile(ctx context.Context, userID string, upd ProfileUpdate) (*models.User, error)
	LookupUser(usernameOrEmail string) (*models.User, error)
	SetActive(ctx context.Context, actorID, userID string, active bool) (*models.User, error)
}

// ProfileUpdate lists the fields to change. Nil fields are kept.
type ProfileUpdate struct {
	Username *string
	Email    *string
	Group    *string
}

type AuthOptions struct {
	// Secret signs session tokens. Empty means use (or create) the secret
	// kept in the store settings.
	Secret string
	TTL    time.Duration
	Now    func() time.Time
}

type authService struct {
	store  *store.Store
	hasher cryptox.Hasher
	ids    idgen.Generator
	audit  *audit.Recorder
	log    logging.Logger
	secret []byte
	ttl    time.Duration
	now    func() time.Time

	// compared against when the user does not exist, so both failure
	// paths cost one hash verification
	dummyHash string
}

func NewAuthService(ctx context.Context, st *store.Store, hasher cryptox.Hasher, ids idgen.Generator,
	rec *audit.Recorder, log logging.Logger, opts AuthOptions) (AuthService, error) {

	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.TTL <= 0 {
		opts.TTL = 24 * time.Hour
	}

	secret := opts.Secret
	if secret == "" {
		if v, ok := st.Setting(store.SettingSessionSecret); ok && v != "" {
			secret = v
		} else {
			gen, err := common.MakeRandHexString(32)
			if err != nil {
				return nil, fmt.Errorf("generate session secret: %w", err)
			}
			secret = gen
			st.SetSetting(ctx, store.SettingSessionSecret, secret)
		}
	}

	dummy, err := hasher.Hash("cybersib-timing-equalizer")
	if err != nil {
		return nil, fmt.Errorf("prepare hasher: %w", err)
	}

	return &authService{
		store:     st,
		hasher:    hasher,
		ids:       ids,
		audit:     rec,
		log:       log.With("component", "auth"),
		secret:    []byte(secret),
		ttl:       opts.TTL,
		now:       opts.Now,
		dummyHash: dummy,
	}, nil
}

func (a *authService) Register(ctx context.Context, username, email, password, group string) (*models.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)

	if err := models.ValidateRegistration(username, email, password); err != nil {
		a.audit.Warn(ctx, "", models.ActionRegisterFailure, fmt.Sprintf("username=%q: %v", username, err))
		return nil, fmt.Errorf("register: %w", err)
	}

	if _, taken := a.store.FindUser(identityClash("", username, email)); taken {
		a.audit.Warn(ctx, "", models.ActionRegisterFailure, fmt.Sprintf("username=%q: duplicate", username))
		return nil, fmt.Errorf("register %s: %w", username, common.ErrConflict)
	}

	hash, err := a.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("register: hash credential: %w", err)
	}

	now := a.now().UTC()
	u := models.User{
		ID:             a.ids.NewID(),
		Username:       username,
		Email:          email,
		CredentialHash: hash,
		Group:          group,
		Role:           models.RoleStudent,
		CreatedAt:      now,
		LastActive:     now,
		IsActive:       true,
	}
	a.store.AddUser(ctx, u)
	a.audit.Info(ctx, u.ID, models.ActionRegister, "username="+username)

	created, _ := a.store.UserByID(u.ID)
	return &created, nil
}

func (a *authService) Login(ctx context.Context, usernameOrEmail, password string) (*models.User, error) {
	ident := strings.TrimSpace(usernameOrEmail)

	u, found := a.findByIdent(ident)

	hash := a.dummyHash
	if found {
		hash = u.CredentialHash
	}
	ok, err := a.hasher.Verify(hash, password)
	if err != nil {
		a.log.Error(ctx, "stored credential hash is unreadable", "user_id", u.ID, "error", err)
		ok = false
	}

	if !found || !ok {
		a.audit.Warn(ctx, u.ID, models.ActionLoginFailure, "ident="+ident)
		return nil, fmt.Errorf("login: %w", common.ErrInvalidCredentials)
	}
	if !u.IsActive {
		a.audit.Warn(ctx, u.ID, models.ActionLoginFailure, "account disabled")
		return nil, fmt.Errorf("login: %w", common.ErrAccountDisabled)
	}

	now := a.now()
	updated, _ := a.store.UpdateUser(ctx, u.ID, func(u *models.User) { u.LastActive = now.UTC() })
	a.store.SetCurrentUser(ctx, &updated)

	token, err := auth.GenerateToken(updated.ID, a.secret, a.ttl, now)
	if err != nil {
		// the session works for this run; it just won't survive a restart
		a.log.Error(ctx, "issue session token", "user_id", updated.ID, "error", err)
		a.store.DeleteSetting(ctx, store.SettingSessionToken)
	} else {
		a.store.SetSetting(ctx, store.SettingSessionToken, token)
	}

	a.audit.Info(ctx, updated.ID, models.ActionLoginSuccess, "username="+updated.Username)
	return &updated, nil
}

// identityClash matches any user other than selfID whose username or email
// would be ambiguous with the given pair in the shared login field.
func identityClash(selfID, username, email string) func(models.User) bool {
	return func(u models.User) bool {
		if u.ID == selfID {
			return false
		}
		return u.Username == username || strings.EqualFold(u.Email, username) ||
			strings.EqualFold(u.Email, email) || strings.EqualFold(u.Username, email)
	}
}

// findByIdent prefers an exact username match over an email match.
func (a *authService) findByIdent(ident string) (models.User, bool) {
	if u, ok := a.store.FindUser(func(u models.User) bool { return u.Username == ident }); ok {
		return u, true
	}
	return a.store.FindUser(func(u models.User) bool { return strings.EqualFold(u.Email, ident) })
}

func (a *authService) Logout(ctx context.Context) {
	cur := a.store.CurrentUser()
	a.store.SetCurrentUser(ctx, nil)
	a.store.DeleteSetting(ctx, store.SettingSessionToken)
	if cur != nil {
		a.audit.Info(ctx, cur.ID, models.ActionLogout, "username="+cur.Username)
	}
}

func (a *authService) CurrentUser() (*models.User, bool) {
	u := a.store.CurrentUser()
	return u, u != nil
}

// RestoreSession validates the persisted session. A session that fails any
// check is cleared and (nil, nil) is returned; errors are reserved for
// failures of the restore itself.
func (a *authService) RestoreSession(ctx context.Context) (*models.User, error) {
	cur := a.store.CurrentUser()
	if cur == nil {
		return nil, nil
	}

	reason := ""
	token, _ := a.store.Setting(store.SettingSessionToken)
	userID, err := auth.GetUserIDFromToken(token, a.secret, a.now())
	switch {
	case errors.Is(err, common.ErrTokenExpired):
		reason = "token expired"
	case err != nil:
		reason = "token invalid"
	case userID != cur.ID:
		reason = "token names another user"
	}

	var u models.User
	if reason == "" {
		var ok bool
		u, ok = a.store.UserByID(userID)
		switch {
		case !ok:
			reason = "user no longer exists"
		case !u.IsActive:
			reason = "account disabled"
		}
	}

	if reason != "" {
		a.store.SetCurrentUser(ctx, nil)
		a.store.DeleteSetting(ctx, store.SettingSessionToken)
		a.audit.Warn(ctx, cur.ID, models.ActionSessionRestore, reason)
		return nil, nil
	}

	a.store.SetCurrentUser(ctx, &u)
	a.audit.Info(ctx, u.ID, models.ActionSessionRestore, "username="+u.Username)
	restored := u.Sanitized()
	return &restored, nil
}

func (a *authService) ChangePassword(ctx context.Context, userID, current, next string) error {
	cur := a.store.CurrentUser()
	if cur == nil || cur.ID != userID {
		return fmt.Errorf("change password: %w", common.ErrUnauthenticated)
	}

	u, ok := a.store.UserByID(userID)
	if !ok {
		return fmt.Errorf("change password: user %s: %w", userID, common.ErrNotFound)
	}

	match, err := a.hasher.Verify(u.CredentialHash, current)
	if err != nil || !match {
		a.audit.Warn(ctx, userID, models.ActionPasswordChange, "current password rejected")
		return fmt.Errorf("change password: %w", common.ErrInvalidCredentials)
	}

	if err := models.ValidateCredential(next); err != nil {
		return fmt.Errorf("change password: %w", err)
	}

	hash, err := a.hasher.Hash(next)
	if err != nil {
		return fmt.Errorf("change password: hash credential: %w", err)
	}
	a.store.UpdateUser(ctx, userID, func(u *models.User) { u.CredentialHash = hash })
	a.audit.Info(ctx, userID, models.ActionPasswordChange, "")
	return nil
}

func (a *authService) UpdateProfile(ctx context.Context, userID string, upd ProfileUpdate) (*models.User, error) {
	cur := a.store.CurrentUser()
	if cur == nil || cur.ID != userID {
		return nil, fmt.Errorf("update profile: %w", common.ErrUnauthenticated)
	}
	u, ok := a.store.UserByID(userID)
	if !ok {
		return nil, fmt.Errorf("update profile: user %s: %w", userID, common.ErrNotFound)
	}

	username, email, group := u.Username, u.Email, u.Group
	if upd.Username != nil {
		username = strings.TrimSpace(*upd.Username)
	}
	if upd.Email != nil {
		email = strings.TrimSpace(*upd.Email)
	}
	if upd.Group != nil {
		group = strings.TrimSpace(*upd.Group)
	}

	if err := models.ValidateProfile(username, email); err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	if _, taken := a.store.FindUser(identityClash(userID, username, email)); taken {
		a.audit.Warn(ctx, userID, models.ActionProfileUpdate, fmt.Sprintf("username=%q: duplicate", username))
		return nil, fmt.Errorf("update profile: %w", common.ErrConflict)
	}

	updated, _ := a.store.UpdateUser(ctx, userID, func(u *models.User) {
		u.Username = username
		u.Email = email
		u.Group = group
	})
	if username != u.Username {
		if e, ok := a.store.CTFScore(userID); ok {
			e.Username = username
			a.store.PutCTFScore(ctx, e)
		}
	}

	a.audit.Info(ctx, userID, models.ActionProfileUpdate, fmt.Sprintf("username=%s email=%s group=%s", username, email, group))
	out := updated.Sanitized()
	return &out, nil
}

// LookupUser finds an account by username or email for display.
func (a *authService) LookupUser(usernameOrEmail string) (*models.User, error) {
	u, ok := a.findByIdent(strings.TrimSpace(usernameOrEmail))
	if !ok {
		return nil, fmt.Errorf("user %s: %w", usernameOrEmail, common.ErrNotFound)
	}
	out := u.Sanitized()
	return &out, nil
}

// SetActive requires actorID to be the signed-in admin. Admins cannot
// change their own status.
func (a *authService) SetActive(ctx context.Context, actorID, userID string, active bool) (*models.User, error) {
	cur := a.store.CurrentUser()
	if cur == nil || cur.ID != actorID {
		return nil, fmt.Errorf("set account status: %w", common.ErrUnauthenticated)
	}
	actor, ok := a.store.UserByID(actorID)
	if !ok || actor.Role != models.RoleAdmin || !actor.IsActive {
		a.audit.Warn(ctx, actorID, models.ActionAccountStatus, "target="+userID+": not an admin")
		return nil, fmt.Errorf("set account status: %w", common.ErrForbidden)
	}
	if userID == actorID {
		return nil, fmt.Errorf("set account status: %w",
			common.NewValidationError("you cannot change the status of your own account"))
	}

	updated, ok := a.store.UpdateUser(ctx, userID, func(u *models.User) { u.IsActive = active })
	if !ok {
		return nil, fmt.Errorf("set account status: user %s: %w", userID, common.ErrNotFound)
	}

	details := fmt.Sprintf("target=%s active=%t by=%s", updated.Username, active, actor.Username)
	if active {
		a.audit.Info(ctx, actorID, models.ActionAccountStatus, details)
	} else {
		a.audit.Warn(ctx, actorID, models.ActionAccountStatus, details)
	}
	out := updated.Sanitized()
	return &out, nil
}
