package users

import (
	"context"

	"golang.org/x/crypto/bcrypt"

	"github.com/cbmgo/financeiro/internal/auth"
	"github.com/cbmgo/financeiro/internal/shared"
)

// PermissionStore manages a user's granted permission set.
type PermissionStore interface {
	PermissionsForUser(ctx context.Context, userID int64) ([]string, error)
	SetUserPermissions(ctx context.Context, userID int64, actions []string) error
}

// Service wraps registration and admin user management.
type Service struct {
	repo  *Repository
	perms PermissionStore
}

// NewService constructs a Service.
func NewService(repo *Repository, perms PermissionStore) *Service {
	return &Service{repo: repo, perms: perms}
}

// Register creates an ACTIVE credential account with no permissions granted.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, req.Name, req.Email, string(hash), auth.StatusActive)
}

// List returns one page of users with their permission sets.
func (s *Service) List(ctx context.Context, page, pageSize int) ([]User, shared.Pagination, error) {
	list, meta, err := s.repo.List(ctx, page, pageSize)
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	for i := range list {
		actions, err := s.perms.PermissionsForUser(ctx, list[i].ID)
		if err != nil {
			return nil, shared.Pagination{}, err
		}
		list[i].Permissions = actions
	}
	return list, meta, nil
}

// Approve activates a pending or rejected account.
func (s *Service) Approve(ctx context.Context, id int64) (*User, error) {
	if err := s.repo.UpdateStatus(ctx, id, auth.StatusActive); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, id)
}

// Reject marks an account as rejected. Already-issued tokens stay valid
// until their natural expiry.
func (s *Service) Reject(ctx context.Context, id int64) (*User, error) {
	if err := s.repo.UpdateStatus(ctx, id, auth.StatusRejected); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, id)
}

// SetPermissions replaces the user's permission set. Tokens issued before
// the change keep their old snapshot until expiry.
func (s *Service) SetPermissions(ctx context.Context, id int64, actions []string) (*User, error) {
	user, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.perms.SetUserPermissions(ctx, id, actions); err != nil {
		return nil, err
	}
	user.Permissions, err = s.perms.PermissionsForUser(ctx, id)
	if err != nil {
		return nil, err
	}
	return user, nil
}
