package usecase

import (
	"context"
	"log/slog"

	"github.com/luisbfsousa/mect-sub001/internal/domain/model"
	"github.com/luisbfsousa/mect-sub001/internal/domain/repository"
	"github.com/luisbfsousa/mect-sub001/internal/identity"
)

// IdentityService maintains local user records for external identities.
type IdentityService struct {
	users  repository.UserRepository
	policy identity.Policy
	logger *slog.Logger
}

// NewIdentityService constructs IdentityService.
func NewIdentityService(users repository.UserRepository, policy identity.Policy, logger *slog.Logger) *IdentityService {
	return &IdentityService{users: users, policy: policy, logger: logger}
}

// GetOrCreateIdentity stores the identity on first sight. Later calls only ever raise the stored
// role; the store re-checks the current role so concurrent logins cannot lower it.
func (s *IdentityService) GetOrCreateIdentity(ctx context.Context, id identity.Identity) (*model.User, error) {
	user, created, err := s.users.CreateIfAbsent(ctx, id.User())
	if err != nil {
		return nil, err
	}
	if created || !s.policy.Higher(id.Role, user.Role) {
		return user, nil
	}

	stored, raised, err := s.users.RaiseRole(ctx, user.ID, id.Role, s.policy.Below(id.Role))
	if err != nil {
		return nil, err
	}
	if raised {
		s.logger.Info("user role upgraded",
			slog.String("user_id", user.ID),
			slog.String("from", string(user.Role)),
			slog.String("to", string(stored.Role)),
		)
	}
	return stored, nil
}

// EnsureCustomer inserts a minimal record for the identity if none exists. Existing records are
// never modified.
func (s *IdentityService) EnsureCustomer(ctx context.Context, id identity.Identity) (*model.User, error) {
	user, _, err := s.users.CreateIfAbsent(ctx, id.User())
	return user, err
}
