package repository

import (
	"context"

	"github.com/luisbfsousa/mect-sub001/internal/domain/model"
)

// UserRepository describes persistence operations for local identity records.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*model.User, error)
	// CreateIfAbsent inserts user unless the id exists and returns the stored record.
	CreateIfAbsent(ctx context.Context, user model.User) (*model.User, bool, error)
	// RaiseRole sets role only while the stored role is one of replaceable and reports whether
	// the record changed. The stored record is returned either way.
	RaiseRole(ctx context.Context, id string, role model.Role, replaceable []model.Role) (*model.User, bool, error)
	FindByRoleIn(ctx context.Context, roles []model.Role) ([]model.User, error)
}
