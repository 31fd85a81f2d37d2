package auth

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/cbmgo/financeiro/internal/audit"
	"github.com/cbmgo/financeiro/internal/platform/httpx"
)

// PermissionSource resolves the current permission actions held by a user.
// The result is embedded into the issued token as a snapshot.
type PermissionSource interface {
	PermissionsForUser(ctx context.Context, userID int64) ([]string, error)
}

// ActivityRecorder appends authentication outcomes to the activity log.
type ActivityRecorder interface {
	Record(ctx context.Context, userID *int64, action, ip string, details map[string]any) error
}

// Service wraps the authentication business rules.
type Service struct {
	repo     Repository
	perms    PermissionSource
	tokens   *TokenManager
	google   GoogleExchanger
	recorder ActivityRecorder
}

// NewService constructs a new Service.
func NewService(repo Repository, perms PermissionSource, tokens *TokenManager, google GoogleExchanger, recorder ActivityRecorder) *Service {
	return &Service{repo: repo, perms: perms, tokens: tokens, google: google, recorder: recorder}
}

// errInvalidCredentials is deliberately identical for unknown email, missing
// password hash and wrong password, so callers cannot enumerate accounts.
var errInvalidCredentials = fmt.Errorf("%w: invalid credentials", httpx.ErrUnauthorized)

// Login validates email/password credentials and issues a bearer token.
// An ACTIVE account with an empty permission set cannot log in; registration
// leaves accounts permissionless until an admin grants a role.
func (s *Service) Login(ctx context.Context, email, password, ip string) (*User, string, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		s.record(ctx, nil, audit.ActionLoginFailure, ip, map[string]any{"email": email})
		return nil, "", errInvalidCredentials
	}
	if user.PasswordHash == "" {
		s.record(ctx, &user.ID, audit.ActionLoginFailure, ip, nil)
		return nil, "", errInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.record(ctx, &user.ID, audit.ActionLoginFailure, ip, nil)
		return nil, "", errInvalidCredentials
	}
	if user.Status != StatusActive {
		s.record(ctx, &user.ID, audit.ActionLoginFailure, ip, map[string]any{"status": user.Status})
		return nil, "", errInvalidCredentials
	}
	permissions, err := s.perms.PermissionsForUser(ctx, user.ID)
	if err != nil {
		return nil, "", err
	}
	if len(permissions) == 0 {
		s.record(ctx, &user.ID, audit.ActionLoginFailure, ip, map[string]any{"reason": "sem_permissoes"})
		return nil, "", errInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID, permissions)
	if err != nil {
		return nil, "", err
	}
	s.record(ctx, &user.ID, audit.ActionLoginSuccess, ip, nil)
	return user, token, nil
}

// LoginWithGoogle exchanges an OAuth code and logs in (or provisions) the
// matching account. Every outcome writes one activity log entry.
func (s *Service) LoginWithGoogle(ctx context.Context, code, ip string) (*User, string, error) {
	profile, err := s.google.Exchange(ctx, code)
	if err != nil {
		return nil, "", fmt.Errorf("%w: google code exchange failed", httpx.ErrUnauthorized)
	}

	user, err := s.repo.FindByGoogleID(ctx, profile.ID)
	switch {
	case err == nil:
		// Known identity; fall through to the status check.
	case errors.Is(err, httpx.ErrNotFound):
		// New identity. An existing credential account with the same email
		// is never silently merged.
		if existing, emailErr := s.repo.FindByEmail(ctx, profile.Email); emailErr == nil {
			s.record(ctx, &existing.ID, audit.ActionOAuthEmailConflict, ip, map[string]any{"email": profile.Email})
			return nil, "", fmt.Errorf("%w: an account with this email already exists", httpx.ErrConflict)
		}
		user, err = s.repo.CreateGoogleUser(ctx, profile)
		if err != nil {
			return nil, "", err
		}
		s.record(ctx, &user.ID, audit.ActionOAuthAccountNew, ip, map[string]any{"email": user.Email})
		return nil, "", fmt.Errorf("%w: account created and awaiting approval", httpx.ErrForbidden)
	default:
		return nil, "", err
	}

	// Identity verified, but using the system still requires an ACTIVE
	// account.
	switch user.Status {
	case StatusActive:
	case StatusPending:
		s.record(ctx, &user.ID, audit.ActionOAuthStatusBlocked, ip, map[string]any{"status": user.Status})
		return nil, "", fmt.Errorf("%w: account awaiting approval", httpx.ErrForbidden)
	default:
		s.record(ctx, &user.ID, audit.ActionOAuthStatusBlocked, ip, map[string]any{"status": user.Status})
		return nil, "", fmt.Errorf("%w: account rejected", httpx.ErrForbidden)
	}

	permissions, err := s.perms.PermissionsForUser(ctx, user.ID)
	if err != nil {
		return nil, "", err
	}
	if len(permissions) == 0 {
		s.record(ctx, &user.ID, audit.ActionOAuthPermsBlocked, ip, nil)
		return nil, "", fmt.Errorf("%w: account has no permissions granted", httpx.ErrForbidden)
	}

	token, err := s.tokens.Issue(user.ID, permissions)
	if err != nil {
		return nil, "", err
	}
	s.record(ctx, &user.ID, audit.ActionOAuthLogin, ip, nil)
	return user, token, nil
}

func (s *Service) record(ctx context.Context, userID *int64, action, ip string, details map[string]any) {
	if s.recorder == nil {
		return
	}
	_ = s.recorder.Record(ctx, userID, action, ip, details)
}
