// Package identity implements sign-in: credential checks, the admin
// allow-list gate, and the pending-approval gate.
package identity

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/krcapps/orderdash/internal/app/store/users"
	"github.com/krcapps/orderdash/internal/app/system/auth"
	"github.com/krcapps/orderdash/internal/domain/models"
)

var (
	// ErrInvalidCredentials covers unknown emails and wrong passwords.
	// Callers must not distinguish the two in responses.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrPendingApproval is returned for accounts awaiting admin review.
	ErrPendingApproval = errors.New("account pending approval")
)

// Service authenticates sign-in attempts against the user directory.
type Service struct {
	dir   *users.Directory
	admin users.AllowList
	log   *zap.Logger
}

func NewService(dir *users.Directory, admin users.AllowList, log *zap.Logger) *Service {
	return &Service{dir: dir, admin: admin, log: log}
}

// Login validates a credential pair and returns the session identity.
// Allow-list members sign in as admins regardless of their stored
// role; approved accounts sign in as users; pending accounts are
// rejected with ErrPendingApproval. The allow-list check happens
// first, so an admin demoted only in the directory still needs to be
// removed from the list to lose access.
func (s *Service) Login(ctx context.Context, email, password string) (*auth.SessionUser, error) {
	u, err := s.dir.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !s.dir.VerifyPassword(u, password) {
		return nil, ErrInvalidCredentials
	}

	if s.admin.Contains(u.Email) {
		s.log.Info("admin signed in", zap.String("user_id", u.ID))
		return sessionUser(u, models.RoleAdmin), nil
	}
	if !u.IsApproved() {
		return nil, ErrPendingApproval
	}

	s.log.Info("user signed in", zap.String("user_id", u.ID))
	return sessionUser(u, models.RoleUser), nil
}

func sessionUser(u *models.User, role string) *auth.SessionUser {
	return &auth.SessionUser{
		ID:    u.ID,
		Name:  u.Name,
		Email: u.Email,
		Role:  role,
	}
}
